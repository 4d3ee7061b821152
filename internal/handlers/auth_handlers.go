package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/service"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) AuthHandler {
	return AuthHandler{Auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request LoginRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	session, user, err := h.Auth.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "login"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: login",
		zap.String("user_id", user.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("token", session.Token),
		toPayload("expires_at", session.ExpiresAt),
		toPayload("user", user),
	)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	token := r.Header.Get("Authorization")
	if len(token) > 7 && token[:7] == "Bearer " {
		token = token[7:]
	}

	if err := h.Auth.Logout(r.Context(), token); err != nil {
		logger.Warn("HTTP: logout failed", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestRecovery always answers 204 so the endpoint cannot be used to probe
// which emails exist.
func (h *AuthHandler) RequestRecovery(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request RecoveryRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	if err := h.Auth.RequestRecovery(r.Context(), request.Email); err != nil {
		logger.Warn("HTTP: recovery request failed", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request ResetPasswordRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	if err := h.Auth.ResetPassword(r.Context(), request.Token, request.Password); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "reset_password"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request SignupRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	company, admin, err := h.Auth.SignupCompany(r.Context(),
		request.CompanyName, request.Plan, request.AdminName, request.AdminEmail, request.Password)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "signup"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: company signed up",
		zap.String("company_id", company.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated,
		toPayload("company", company),
		toPayload("admin", admin),
	)
}
