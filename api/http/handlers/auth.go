package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/jobtrack/api/http/presenter"
	"github.com/artem13815/jobtrack/pkg/auth"
	"github.com/artem13815/jobtrack/pkg/security/jwt"
)

const authCookie = "token"

type AuthHandler struct {
	useCase   auth.AuthUseCase
	cookieTTL time.Duration
	log       *zap.Logger
}

func NewAuthHandler(useCase auth.AuthUseCase, cookieTTL time.Duration, log *zap.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, cookieTTL: cookieTTL, log: log}
}

// setAuthCookie mirrors the bearer token into an HTTP-only cookie.
func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    token,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Register creates an account and sends the email verification code.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ValidationResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	result, err := h.useCase.Register(c.Context(), auth.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	h.setAuthCookie(c, result.Token)
	return presenter.User(c, http.StatusCreated,
		"Registration successful. Please check your email for the verification code.",
		result.User, result.Token)
}

type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates by username or email.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	login := req.Login
	if login == "" {
		login = req.Username
	}
	if login == "" {
		login = req.Email
	}
	result, err := h.useCase.Login(c.Context(), login, req.Password)
	if err != nil {
		return fail(c, h.log, err)
	}
	h.setAuthCookie(c, result.Token)
	return presenter.User(c, http.StatusOK, "Login successful", result.User, result.Token)
}

// Logout clears the mirrored cookie. The bearer token itself simply expires.
// @Summary Logout
// @Tags    auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router  /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
	return presenter.Message(c, http.StatusOK, "Logged out successfully")
}

// Me returns the authenticated account.
// @Summary Current user
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := c.Locals(jwt.LocalUser).(auth.User)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized to access this route. Please provide a valid token.")
	}
	return presenter.User(c, http.StatusOK, "", user, "")
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyEmail confirms the account email with the mailed OTP.
// @Summary Verify email
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body verifyEmailRequest true "verification payload"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := h.useCase.VerifyEmail(c.Context(), req.Email, req.OTP); err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Message(c, http.StatusOK, "Email verified successfully")
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendVerification mails a fresh OTP. Always answers success.
// @Summary Resend verification code
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body emailRequest true "email payload"
// @Success 200 {object} map[string]any
// @Router  /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := h.useCase.ResendVerification(c.Context(), req.Email); err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Message(c, http.StatusOK, "If the account exists, a verification code has been sent")
}

// ForgotPassword mails a reset link. Never reveals whether the account exists.
// @Summary Request password reset
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body emailRequest true "email payload"
// @Success 200 {object} map[string]any
// @Router  /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := h.useCase.ForgotPassword(c.Context(), req.Email); err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Message(c, http.StatusOK, "If the account exists, a password reset email has been sent")
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword consumes the mailed token and sets a new password.
// @Summary Reset password
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body resetPasswordRequest true "reset payload"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := h.useCase.ResetPassword(c.Context(), req.Token, req.Password); err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Message(c, http.StatusOK, "Password reset successful")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the password of the authenticated account.
// @Summary Change password
// @Tags    auth
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body changePasswordRequest true "password payload"
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/password [put]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := h.useCase.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Message(c, http.StatusOK, "Password changed successfully")
}

// CheckUsername probes availability. Public.
// @Summary Check username availability
// @Tags    auth
// @Produce json
// @Param   username path string true "username"
// @Success 200 {object} map[string]any
// @Router  /auth/check-username/{username} [get]
func (h *AuthHandler) CheckUsername(c *fiber.Ctx) error {
	available, err := h.useCase.CheckUsername(c.Context(), c.Params("username"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Data(c, http.StatusOK, fiber.Map{"available": available})
}
