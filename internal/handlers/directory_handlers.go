package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/middleware"
	"taskcom/internal/models"
	"taskcom/internal/service"
)

// DirectoryHandler serves the reference entities tasks hang off of:
// properties, groups, task types and roles.
type DirectoryHandler struct {
	Directory *service.DirectoryService
}

func NewDirectoryHandler(directory *service.DirectoryService) DirectoryHandler {
	return DirectoryHandler{Directory: directory}
}

func (h *DirectoryHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	properties, err := h.Directory.ListProperties(r.Context(), middleware.CompanyID(r.Context()))
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_properties"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("properties", properties))
}

func (h *DirectoryHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request CreatePropertyRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	property, err := h.Directory.CreateProperty(r.Context(), middleware.CompanyID(r.Context()),
		request.Name, request.DisplayName, request.TaxID, request.GroupID)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "create_property"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: property created",
		zap.String("property_id", property.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("property", property))
}

func (h *DirectoryHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var request UpdatePropertyRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	property, err := h.Directory.UpdateProperty(r.Context(), &models.Property{
		ID:          id,
		CompanyID:   middleware.CompanyID(r.Context()),
		Name:        request.Name,
		DisplayName: request.DisplayName,
		TaxID:       request.TaxID,
		GroupID:     request.GroupID,
	})
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "update_property"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("property", property))
}

func (h *DirectoryHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.Directory.DeleteProperty(r.Context(), middleware.CompanyID(r.Context()), id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "delete_property"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DirectoryHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	groups, err := h.Directory.ListGroups(r.Context(), middleware.CompanyID(r.Context()))
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_groups"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("groups", groups))
}

func (h *DirectoryHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request CreateGroupRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	group, err := h.Directory.CreateGroup(r.Context(), middleware.CompanyID(r.Context()), request.Name)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "create_group"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusCreated, toPayload("group", group))
}

func (h *DirectoryHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.Directory.DeleteGroup(r.Context(), middleware.CompanyID(r.Context()), id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "delete_group"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DirectoryHandler) ListTaskTypes(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	types, err := h.Directory.ListTaskTypes(r.Context(), middleware.CompanyID(r.Context()))
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_task_types"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("task_types", types))
}

func (h *DirectoryHandler) CreateTaskType(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request CreateTaskTypeRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	taskType, err := h.Directory.CreateTaskType(r.Context(), middleware.CompanyID(r.Context()),
		request.Name, request.Color)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "create_task_type"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusCreated, toPayload("task_type", taskType))
}

func (h *DirectoryHandler) DeleteTaskType(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.Directory.DeleteTaskType(r.Context(), middleware.CompanyID(r.Context()), id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "delete_task_type"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DirectoryHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	roles, err := h.Directory.ListRoles(r.Context(), middleware.CompanyID(r.Context()))
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_roles"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("roles", roles))
}

func (h *DirectoryHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request CreateRoleRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	role, err := h.Directory.CreateRole(r.Context(), middleware.CompanyID(r.Context()),
		request.Name, request.IsAdmin, request.HasAdminPermissions, request.IsClientRole)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "create_role"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusCreated, toPayload("role", role))
}

func (h *DirectoryHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.Directory.DeleteRole(r.Context(), middleware.CompanyID(r.Context()), id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "delete_role"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
