package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/admin-auth/internal/middleware"
	"github.com/stemsi/admin-auth/internal/model"
	"github.com/stemsi/admin-auth/internal/response"
	"github.com/stemsi/admin-auth/internal/service"
	"github.com/stemsi/admin-auth/internal/validator"
)

// Authenticator is the subset of service.AuthService the handler needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) string
	VerifyResetCode(ctx context.Context, email, code string) (string, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth Authenticator
	log  zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		log:  log.With().Str("component", "auth_handler").Logger(),
	}
}

// VerifyResetCodeResponse confirms a reset code is currently valid.
type VerifyResetCodeResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email"`
}

// Login godoc
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrAccountDeactivated):
			response.Fail(c, http.StatusForbidden, response.ErrAccountDeactivated)
		case errors.Is(err, service.ErrInsufficientPrivileges):
			response.Fail(c, http.StatusForbidden, response.ErrInsufficientPrivileges)
		default:
			h.internal(c, err, "Login failed")
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ForgotPassword godoc
// POST /auth/forgot-password
// Always answers with the same acknowledgement.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	response.Message(c, http.StatusOK, h.auth.ForgotPassword(c.Request.Context(), req.Email))
}

// VerifyResetCode godoc
// POST /auth/verify-reset-code
// Accepts email and code from the query string or a JSON body.
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req model.VerifyResetCodeRequest
	if fields := validator.BindQueryOrJSON(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	email, err := h.auth.VerifyResetCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetCode) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidResetCode)
			return
		}
		h.internal(c, err, "Verify reset code failed")
		return
	}

	response.Success(c, http.StatusOK, VerifyResetCodeResponse{Valid: true, Email: email})
}

// ResetPassword godoc
// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetCode):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidResetCode)
		case errors.Is(err, service.ErrAdminNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrPasswordTooLong):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"new_password": "new_password must be at most 72 bytes"})
		default:
			h.internal(c, err, "Reset password failed")
		}
		return
	}

	response.Message(c, http.StatusOK, service.ResetPasswordDone)
}

// Me godoc
// GET /auth/me
// Returns the identity carried by the bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	admin := middleware.GetAdmin(c)
	if admin == nil {
		c.Header("WWW-Authenticate", "Bearer")
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	response.Success(c, http.StatusOK, admin)
}

func (h *AuthHandler) internal(c *gin.Context, err error, msg string) {
	h.log.Error().Err(err).Str("request_id", c.GetString(response.ContextKeyRequestID)).Msg(msg)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
