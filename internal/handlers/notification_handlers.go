package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/middleware"
	"taskcom/internal/realtime"
	"taskcom/internal/service"
)

type NotificationHandler struct {
	Notifications *service.NotificationService
	Hub           *realtime.Hub
}

func NewNotificationHandler(notifications *service.NotificationService, hub *realtime.Hub) NotificationHandler {
	return NotificationHandler{Notifications: notifications, Hub: hub}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user := middleware.CurrentUser(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			responseWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	notifications, err := h.Notifications.List(r.Context(), user.CompanyID, user.ID, limit)
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_notifications"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("notifications", notifications))
}

// MarkRead is best-effort: marking an already-read or missing notification
// still answers 204.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	user := middleware.CurrentUser(r.Context())
	if err := h.Notifications.MarkRead(r.Context(), user.CompanyID, user.ID, id); err != nil {
		logger.Warn("HTTP: mark read failed", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user := middleware.CurrentUser(r.Context())
	count, err := h.Notifications.UnreadCount(r.Context(), user.CompanyID, user.ID)
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "unread_count"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("unread", count))
}

// Stream upgrades the request to a websocket and keeps it open for pushes.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN: websocket")

	user := middleware.CurrentUser(r.Context())
	h.Hub.Serve(w, r, user.ID)
}
