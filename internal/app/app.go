package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"taskcom/internal/config"
	"taskcom/internal/handlers"
	"taskcom/internal/logger"
	"taskcom/internal/mailer"
	"taskcom/internal/metrics"
	"taskcom/internal/middleware"
	"taskcom/internal/realtime"
	"taskcom/internal/repository"
	"taskcom/internal/repository/inmemory"
	"taskcom/internal/repository/postgres"
	"taskcom/internal/service"
	"taskcom/internal/worker"
)

type repositories struct {
	tasks         repository.TaskRepository
	properties    repository.PropertyRepository
	groups        repository.GroupRepository
	taskTypes     repository.TaskTypeRepository
	roles         repository.RoleRepository
	users         repository.UserRepository
	companies     repository.CompanyRepository
	notifications repository.NotificationRepository
	sessions      repository.SessionRepository
	recovery      repository.RecoveryRepository
}

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	worker    *worker.OverdueWorker
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Shutting down logging...")
		logger.Sync()
	})

	repos, err := a.buildRepositories(ctx)
	if err != nil {
		return err
	}

	hub := realtime.NewHub()
	notifications := service.NewNotificationService(repos.notifications, hub)

	tasks := service.NewTaskService(repos.tasks, notifications)
	directory := service.NewDirectoryService(repos.properties, repos.groups, repos.taskTypes, repos.roles)
	users := service.NewUserService(repos.users, repos.roles, repos.companies)

	var m mailer.Mailer = mailer.NopMailer{}
	if a.config.Mailer.WebhookURL != "" {
		m = mailer.NewWebhookMailer(a.config.Mailer.WebhookURL, a.config.Mailer.From)
	}
	auth := service.NewAuthService(
		repos.users, repos.roles, repos.companies, repos.sessions, repos.recovery,
		m, a.config.Auth.SessionTTL, a.config.Auth.RecoveryTTL, a.config.Mailer.RecoveryURL,
	)

	a.worker = worker.NewOverdueWorker(repos.tasks, notifications,
		a.config.Worker.Interval, a.config.Worker.BatchSize)

	taskHandler := handlers.NewTaskHandler(tasks, directory)
	directoryHandler := handlers.NewDirectoryHandler(directory)
	userHandler := handlers.NewUserHandler(users)
	authHandler := handlers.NewAuthHandler(auth)
	notificationHandler := handlers.NewNotificationHandler(notifications, hub)

	a.router = a.buildRouter(auth, &taskHandler, &directoryHandler, &userHandler, &authHandler, &notificationHandler)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return nil
}

func (a *App) buildRepositories(ctx context.Context) (*repositories, error) {
	if a.config.Repository.Type == "inmemory" {
		logger.Info("Repository: in-memory backend")

		taskStorage := inmemory.NewTaskStorage()
		userStorage := inmemory.NewUserStorage()
		propertyStorage := inmemory.NewPropertyStorage(taskStorage)
		return &repositories{
			tasks:         taskStorage,
			properties:    propertyStorage,
			groups:        inmemory.NewGroupStorage(propertyStorage),
			taskTypes:     inmemory.NewTaskTypeStorage(taskStorage),
			roles:         inmemory.NewRoleStorage(userStorage),
			users:         userStorage,
			companies:     inmemory.NewCompanyStorage(),
			notifications: inmemory.NewNotificationStorage(),
			sessions:      inmemory.NewSessionStorage(),
			recovery:      inmemory.NewRecoveryStorage(),
		}, nil
	}

	logger.Info("Repository: postgres backend")

	if err := postgres.Migrate(a.config.Database.URL); err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	storage, err := postgres.New(ctx, a.config.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Closing database pool...")
		storage.Close()
	})

	return &repositories{
		tasks:         postgres.NewTaskRepo(storage),
		properties:    postgres.NewPropertyRepo(storage),
		groups:        postgres.NewGroupRepo(storage),
		taskTypes:     postgres.NewTaskTypeRepo(storage),
		roles:         postgres.NewRoleRepo(storage),
		users:         postgres.NewUserRepo(storage),
		companies:     postgres.NewCompanyRepo(storage),
		notifications: postgres.NewNotificationRepo(storage),
		sessions:      postgres.NewSessionRepo(storage),
		recovery:      postgres.NewRecoveryRepo(storage),
	}, nil
}

func (a *App) buildRouter(
	auth *service.AuthService,
	taskHandler *handlers.TaskHandler,
	directoryHandler *handlers.DirectoryHandler,
	userHandler *handlers.UserHandler,
	authHandler *handlers.AuthHandler,
	notificationHandler *handlers.NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(metrics.Middleware)
	r.Use(middleware.RateLimit(300))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", taskHandler.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/recover", authHandler.RequestRecovery)
		r.Post("/reset", authHandler.ResetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(auth))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Post("/toggle", taskHandler.ToggleTask)
			})
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", directoryHandler.ListProperties)
			r.Post("/", directoryHandler.CreateProperty)
			r.Put("/{id}", directoryHandler.UpdateProperty)
			r.Delete("/{id}", directoryHandler.DeleteProperty)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", directoryHandler.ListGroups)
			r.Post("/", directoryHandler.CreateGroup)
			r.Delete("/{id}", directoryHandler.DeleteGroup)
		})

		r.Route("/task-types", func(r chi.Router) {
			r.Get("/", directoryHandler.ListTaskTypes)
			r.Post("/", directoryHandler.CreateTaskType)
			r.Delete("/{id}", directoryHandler.DeleteTaskType)
		})

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", directoryHandler.ListRoles)
			r.Post("/", directoryHandler.CreateRole)
			r.Delete("/{id}", directoryHandler.DeleteRole)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Get("/me", userHandler.Me)
			r.Post("/{id}/deactivate", userHandler.DeactivateUser)
			r.Get("/{id}/properties", userHandler.PropertyAssignments)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Get("/unread", notificationHandler.UnreadCount)
			r.Post("/{id}/read", notificationHandler.MarkRead)
			r.Get("/stream", notificationHandler.Stream)
		})
	})

	return r
}

// Run starts the overdue worker and the HTTP server and blocks until the
// context is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	go a.worker.Start(workerCtx)
	a.shutdowns = append(a.shutdowns, stopWorker)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Server stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown", err)
	}

	a.Shutdown()
	return nil
}

// Shutdown runs the registered cleanup functions in reverse order.
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
