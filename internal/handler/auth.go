package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/service"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// AuthHandler handles account endpoints.
type AuthHandler struct {
	service   *service.AuthService
	validator *middleware.Validator
	logger    *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc *service.AuthService, v *middleware.Validator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: svc, validator: v, logger: log}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decode(w, r, h.validator, &req) {
		return
	}
	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "User already exists with this email")
			return
		}
		middleware.RequestLogger(r.Context(), h.logger).Error("registration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during registration")
		return
	}
	respond(w, http.StatusCreated, "User registered successfully", resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decode(w, r, h.validator, &req) {
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		middleware.RequestLogger(r.Context(), h.logger).Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during login")
		return
	}
	respond(w, http.StatusOK, "Login successful", resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond(w, http.StatusOK, "", map[string]any{"user": u})
}

// Logout handles POST /api/auth/logout. Tokens are stateless; the client
// discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "Logged out successfully", nil)
}

// ChangePassword handles PUT /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if !decode(w, r, h.validator, &req) {
		return
	}
	err := h.service.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), req)
	switch {
	case err == nil:
		respond(w, http.StatusOK, "Password changed successfully", nil)
	case errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
	case errors.Is(err, service.ErrSamePassword):
		writeError(w, http.StatusBadRequest, "New password must be different from current password")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		middleware.RequestLogger(r.Context(), h.logger).Error("change password failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// DeleteAccount handles DELETE /api/auth/delete-account
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req model.DeleteAccountRequest
	if !decode(w, r, h.validator, &req) {
		return
	}
	err := h.service.DeleteAccount(r.Context(), middleware.GetUserID(r.Context()), req)
	switch {
	case err == nil:
		respond(w, http.StatusOK, "Account deleted successfully", nil)
	case errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusBadRequest, "Password is incorrect")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		middleware.RequestLogger(r.Context(), h.logger).Error("delete account failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// UserHandler handles profile endpoints.
type UserHandler struct {
	service   *service.UserService
	validator *middleware.Validator
	logger    *logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc *service.UserService, v *middleware.Validator, log *logger.Logger) *UserHandler {
	return &UserHandler{service: svc, validator: v, logger: log}
}

// Profile handles GET /api/user/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Profile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond(w, http.StatusOK, "", map[string]any{"user": u})
}

// UpdateProfile handles PUT /api/user/update-profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProfileRequest
	if !decode(w, r, h.validator, &req) {
		return
	}
	u, err := h.service.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req)
	switch {
	case err == nil:
		respond(w, http.StatusOK, "Profile updated successfully", map[string]any{"user": u})
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email is already taken by another user")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		middleware.RequestLogger(r.Context(), h.logger).Error("update profile failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
