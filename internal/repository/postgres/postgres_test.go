package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"taskcom/internal/config"
	"taskcom/internal/logger"
	"taskcom/internal/models"
	"taskcom/internal/repository"
	"taskcom/internal/repository/postgres"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

type PostgresTestSuite struct {
	suite.Suite
	ctx       context.Context
	container testcontainers.Container
	storage   *postgres.Storage
	connURL   string

	tasks      *postgres.TaskRepo
	properties *postgres.PropertyRepo
	roles      *postgres.RoleRepo
	users      *postgres.UserRepo
	companies  *postgres.CompanyRepo
	sessions   *postgres.SessionRepo

	// seeded per test
	companyID  uuid.UUID
	roleID     uuid.UUID
	userID     uuid.UUID
	propertyID uuid.UUID
	typeID     uuid.UUID
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connURL = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), postgres.Migrate(s.connURL))

	s.storage, err = postgres.New(s.ctx, config.DatabaseConfig{
		URL:            s.connURL,
		MaxConnections: 5,
		MinConnections: 1,
		IdleTimeout:    time.Minute,
	})
	require.NoError(s.T(), err)

	s.tasks = postgres.NewTaskRepo(s.storage)
	s.properties = postgres.NewPropertyRepo(s.storage)
	s.roles = postgres.NewRoleRepo(s.storage)
	s.users = postgres.NewUserRepo(s.storage)
	s.companies = postgres.NewCompanyRepo(s.storage)
	s.sessions = postgres.NewSessionRepo(s.storage)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connURL)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, `TRUNCATE notifications, sessions, recovery_tokens,
		property_assignments, group_assignments, tasks, users, roles,
		properties, task_types, groups, companies CASCADE`)
	require.NoError(s.T(), err)

	s.seed()
}

// seed creates the reference rows a task needs.
func (s *PostgresTestSuite) seed() {
	s.companyID = uuid.New()
	require.NoError(s.T(), s.companies.Create(s.ctx, &models.Company{
		ID: s.companyID, Name: "Acme Condos", Plan: models.PlanBasic, MaxUsers: 5,
	}))

	s.roleID = uuid.New()
	require.NoError(s.T(), s.roles.Create(s.ctx, &models.Role{
		ID: s.roleID, CompanyID: s.companyID, Name: "staff",
	}))

	s.userID = uuid.New()
	require.NoError(s.T(), s.users.Create(s.ctx, &models.User{
		ID: s.userID, CompanyID: s.companyID, Name: "Jordan",
		Email: "jordan@example.com", PasswordHash: "x", Active: true, RoleID: s.roleID,
	}))

	s.propertyID = uuid.New()
	require.NoError(s.T(), s.properties.Create(s.ctx, &models.Property{
		ID: s.propertyID, CompanyID: s.companyID, Name: "seaside", DisplayName: "Seaside Towers",
	}))

	s.typeID = uuid.New()
	typeRepo := postgres.NewTaskTypeRepo(s.storage)
	require.NoError(s.T(), typeRepo.Create(s.ctx, &models.TaskType{
		ID: s.typeID, CompanyID: s.companyID, Name: "maintenance",
	}))
}

func (s *PostgresTestSuite) newTask() *models.Task {
	return &models.Task{
		ID:         uuid.New(),
		CompanyID:  s.companyID,
		Title:      "Inspect boiler",
		CreatorID:  s.userID,
		AssigneeID: s.userID,
		PropertyID: s.propertyID,
		TypeID:     s.typeID,
		State:      models.StatePending,
		DueDate:    time.Now().AddDate(0, 0, 7),
	}
}

func (s *PostgresTestSuite) TestTaskCRUD() {
	task := s.newTask()
	require.NoError(s.T(), s.tasks.Create(s.ctx, task))
	s.Equal(1, task.Version)
	s.False(task.CreatedAt.IsZero())

	got, err := s.tasks.GetByID(s.ctx, s.companyID, task.ID)
	require.NoError(s.T(), err)
	s.Equal(task.Title, got.Title)
	s.Nil(got.UpdatedAt)

	got.Title = "renamed"
	require.NoError(s.T(), s.tasks.Update(s.ctx, got))
	s.Equal(2, got.Version)
	s.NotNil(got.UpdatedAt)

	list, err := s.tasks.ListByCompany(s.ctx, s.companyID)
	require.NoError(s.T(), err)
	s.Len(list, 1)
}

func (s *PostgresTestSuite) TestTaskVersionConflict() {
	task := s.newTask()
	require.NoError(s.T(), s.tasks.Create(s.ctx, task))

	first, err := s.tasks.GetByID(s.ctx, s.companyID, task.ID)
	require.NoError(s.T(), err)
	second, err := s.tasks.GetByID(s.ctx, s.companyID, task.ID)
	require.NoError(s.T(), err)

	first.Title = "first writer"
	require.NoError(s.T(), s.tasks.Update(s.ctx, first))

	second.Title = "second writer"
	s.ErrorIs(s.tasks.Update(s.ctx, second), repository.ErrVersionConflict)
}

func (s *PostgresTestSuite) TestTaskSoftDelete() {
	task := s.newTask()
	require.NoError(s.T(), s.tasks.Create(s.ctx, task))

	require.NoError(s.T(), s.tasks.SoftDelete(s.ctx, task))
	s.Equal(models.StateDeleted, task.State)

	got, err := s.tasks.GetByID(s.ctx, s.companyID, task.ID)
	require.NoError(s.T(), err)
	s.Equal(models.StateDeleted, got.State)
}

func (s *PostgresTestSuite) TestTaskCompanyScoping() {
	task := s.newTask()
	require.NoError(s.T(), s.tasks.Create(s.ctx, task))

	_, err := s.tasks.GetByID(s.ctx, uuid.New(), task.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTaskDueBefore() {
	overdue := s.newTask()
	overdue.DueDate = time.Now().AddDate(0, 0, -2)
	require.NoError(s.T(), s.tasks.Create(s.ctx, overdue))

	future := s.newTask()
	require.NoError(s.T(), s.tasks.Create(s.ctx, future))

	tasks, err := s.tasks.DueBefore(s.ctx, time.Now(), 10)
	require.NoError(s.T(), err)
	s.Len(tasks, 1)
	s.Equal(overdue.ID, tasks[0].ID)
}

func (s *PostgresTestSuite) TestPropertyTaxIDUnique() {
	err := s.properties.Create(s.ctx, &models.Property{
		ID: uuid.New(), CompanyID: s.companyID, Name: "a", DisplayName: "A", TaxID: "999",
	})
	require.NoError(s.T(), err)

	err = s.properties.Create(s.ctx, &models.Property{
		ID: uuid.New(), CompanyID: s.companyID, Name: "b", DisplayName: "B", TaxID: "999",
	})
	s.ErrorIs(err, repository.ErrUniqueViolation)
}

func (s *PostgresTestSuite) TestPropertyDeleteBlockedByTask() {
	task := s.newTask()
	require.NoError(s.T(), s.tasks.Create(s.ctx, task))

	err := s.properties.Delete(s.ctx, s.companyID, s.propertyID)
	s.ErrorIs(err, repository.ErrForeignKeyInUse)
}

func (s *PostgresTestSuite) TestRoleDeleteBlockedByUser() {
	err := s.roles.Delete(s.ctx, s.companyID, s.roleID)
	s.ErrorIs(err, repository.ErrForeignKeyInUse)
}

func (s *PostgresTestSuite) TestUserEmailUnique() {
	err := s.users.Create(s.ctx, &models.User{
		ID: uuid.New(), CompanyID: s.companyID, Name: "Dup",
		Email: "jordan@example.com", PasswordHash: "x", Active: true, RoleID: s.roleID,
	})
	s.ErrorIs(err, repository.ErrUniqueViolation)
}

func (s *PostgresTestSuite) TestUserPropertyAssignments() {
	require.NoError(s.T(), s.users.SetPropertyAssignments(s.ctx, s.userID, []uuid.UUID{s.propertyID}))

	ids, err := s.users.PropertyAssignments(s.ctx, s.userID)
	require.NoError(s.T(), err)
	s.Equal([]uuid.UUID{s.propertyID}, ids)

	// Replacing assignments drops the old set.
	require.NoError(s.T(), s.users.SetPropertyAssignments(s.ctx, s.userID, nil))
	ids, err = s.users.PropertyAssignments(s.ctx, s.userID)
	require.NoError(s.T(), err)
	s.Empty(ids)
}

func (s *PostgresTestSuite) TestSessionLifecycle() {
	session := &models.Session{
		Token:     "integration-token",
		UserID:    s.userID,
		CompanyID: s.companyID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(s.T(), s.sessions.Create(s.ctx, session))

	got, err := s.sessions.GetByToken(s.ctx, session.Token)
	require.NoError(s.T(), err)
	s.Equal(s.userID, got.UserID)

	require.NoError(s.T(), s.sessions.DeleteForUser(s.ctx, s.userID))
	_, err = s.sessions.GetByToken(s.ctx, session.Token)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestRecoveryConsumeOnce() {
	recovery := postgres.NewRecoveryRepo(s.storage)

	rt := &models.RecoveryToken{
		Token:     "one-shot",
		UserID:    s.userID,
		CompanyID: s.companyID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(s.T(), recovery.Create(s.ctx, rt))

	got, err := recovery.Consume(s.ctx, rt.Token)
	require.NoError(s.T(), err)
	s.Equal(s.userID, got.UserID)
	s.Equal(s.companyID, got.CompanyID)

	_, err = recovery.Consume(s.ctx, rt.Token)
	s.ErrorIs(err, repository.ErrNotFound)
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(PostgresTestSuite))
}
