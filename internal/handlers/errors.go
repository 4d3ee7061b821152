package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/service"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: business error",
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))

		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", businessErr.Message),
			toPayload("details", businessErr.Details),
		)
		return true
	}
	return false
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "VALIDATION_ERROR", "CLIENT_ROLE_NEEDS_PROPERTY":
		return http.StatusBadRequest
	case "DUPLICATE_NAME", "RESOURCE_IN_USE", "VERSION_CONFLICT", "INVALID_STATE":
		return http.StatusConflict
	case "TASK_DELETED":
		return http.StatusGone
	case "SEAT_LIMIT_REACHED":
		return http.StatusForbidden
	case "INVALID_CREDENTIALS", "SESSION_EXPIRED", "RECOVERY_INVALID", "RECOVERY_EXPIRED":
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
