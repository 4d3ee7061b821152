package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/middleware"
	"taskcom/internal/service"
)

type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) UserHandler {
	return UserHandler{Users: users}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	users, err := h.Users.ListUsers(r.Context(), middleware.CompanyID(r.Context()))
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_users"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("users", users))
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request CreateUserRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	user, err := h.Users.CreateUser(r.Context(), middleware.CompanyID(r.Context()),
		request.Name, request.Email, request.Password, request.RoleID, request.PropertyIDs)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "create_user"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: user created",
		zap.String("user_id", user.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("user", user))
}

// DeactivateUser releases the user's seat; the row stays for history.
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.Users.Deactivate(r.Context(), middleware.CompanyID(r.Context()), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "deactivate_user"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("user", user))
}

func (h *UserHandler) PropertyAssignments(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	ids, err := h.Users.PropertyAssignments(r.Context(), middleware.CompanyID(r.Context()), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "property_assignments"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("property_ids", ids))
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user := middleware.CurrentUser(r.Context())
	responseWithJSON(w, http.StatusOK, toPayload("user", user))
}
