package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/middleware"
	"taskcom/internal/models"
	"taskcom/internal/pipeline"
	"taskcom/internal/service"
)

type TaskHandler struct {
	Tasks     *service.TaskService
	Directory *service.DirectoryService
}

func NewTaskHandler(tasks *service.TaskService, directory *service.DirectoryService) TaskHandler {
	return TaskHandler{Tasks: tasks, Directory: directory}
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")
	healthCheck(w)
}

// ListTasks applies the status/property/assignee/type/group/date/search
// filters server side and returns one display page plus the total match
// count.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	companyID := middleware.CompanyID(r.Context())

	filters, limit, ok := parseTaskFilters(w, r)
	if !ok {
		return
	}

	tasks, err := h.Tasks.ListTasks(r.Context(), companyID)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "list_tasks"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	properties, err := h.Directory.ListProperties(r.Context(), companyID)
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_properties"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	today := time.Now()
	result := pipeline.Apply(tasks, properties, filters, limit, today)

	logger.Info("HTTP_OUT: tasks listed",
		zap.Int("total", result.Total),
		zap.Int("returned", len(result.Tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", FromTaskList(result.Tasks, today)),
		toPayload("total", result.Total),
		toPayload("has_more", result.HasMore),
	)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user := middleware.CurrentUser(r.Context())

	var request CreateTaskRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	task, err := h.Tasks.CreateTask(r.Context(), user.CompanyID, user.ID,
		request.Title, request.Description,
		request.AssigneeID, request.PropertyID, request.TypeID, request.DueDate)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "create_task"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", task.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", FromTask(task, time.Now())))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.Tasks.GetTask(r.Context(), middleware.CompanyID(r.Context()), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "get_task"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("task", FromTask(task, time.Now())))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var request UpdateTaskRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	var options []models.TaskOption
	if request.Title != nil {
		options = append(options, models.WithTitle(*request.Title))
	}
	if request.Description != nil {
		options = append(options, models.WithDescription(*request.Description))
	}
	if request.AssigneeID != nil {
		options = append(options, models.WithAssignee(*request.AssigneeID))
	}
	if request.PropertyID != nil {
		options = append(options, models.WithProperty(*request.PropertyID))
	}
	if request.TypeID != nil {
		options = append(options, models.WithType(*request.TypeID))
	}
	if request.DueDate != nil {
		options = append(options, models.WithDueDate(*request.DueDate))
	}

	task, err := h.Tasks.UpdateTask(r.Context(), middleware.CompanyID(r.Context()), id, options...)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "update_task"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: task updated",
		zap.String("task_id", task.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", FromTask(task, time.Now())))
}

// ToggleTask flips a task between pending and completed.
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.Tasks.ToggleTask(r.Context(), middleware.CompanyID(r.Context()), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "toggle_task"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("task", FromTask(task, time.Now())))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	_, err := h.Tasks.DeleteTask(r.Context(), middleware.CompanyID(r.Context()), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "delete_task"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: invalid id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid id: "+err.Error())
		return uuid.Nil, false
	}
	if id == uuid.Nil {
		responseWithError(w, http.StatusBadRequest, "id must not be empty")
		return uuid.Nil, false
	}
	return id, true
}

func parseTaskFilters(w http.ResponseWriter, r *http.Request) (pipeline.Filters, int, bool) {
	q := r.URL.Query()
	filters := pipeline.Filters{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}

	var ok bool
	if filters.PropertyID, ok = parseOptionalUUID(w, q.Get("property_id"), "property_id"); !ok {
		return filters, 0, false
	}
	if filters.AssigneeID, ok = parseOptionalUUID(w, q.Get("assignee_id"), "assignee_id"); !ok {
		return filters, 0, false
	}
	if filters.TypeID, ok = parseOptionalUUID(w, q.Get("type_id"), "type_id"); !ok {
		return filters, 0, false
	}
	if filters.GroupID, ok = parseOptionalUUID(w, q.Get("group_id"), "group_id"); !ok {
		return filters, 0, false
	}
	if filters.DueFrom, ok = parseOptionalDate(w, q.Get("due_from"), "due_from"); !ok {
		return filters, 0, false
	}
	if filters.DueTo, ok = parseOptionalDate(w, q.Get("due_to"), "due_to"); !ok {
		return filters, 0, false
	}

	limit := pipeline.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			responseWithError(w, http.StatusBadRequest, "invalid limit")
			return filters, 0, false
		}
		limit = parsed
	}

	return filters, limit, true
}

func parseOptionalUUID(w http.ResponseWriter, raw, name string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid "+name+": "+err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalDate(w http.ResponseWriter, raw, name string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid "+name+", expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
