package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/jobtrack/api/http/presenter"
	"github.com/artem13815/jobtrack/pkg/application"
	"github.com/artem13815/jobtrack/pkg/auth"
	"github.com/artem13815/jobtrack/pkg/security/jwt"
	"github.com/artem13815/jobtrack/pkg/uploader"
	"github.com/artem13815/jobtrack/pkg/validation"
)

// fail maps domain errors onto HTTP statuses. Unknown errors are logged and
// answered with a generic 500 so internals never leak to clients.
func fail(c *fiber.Ctx, log *zap.Logger, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return presenter.ValidationFailed(c, verr)
	case errors.Is(err, application.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "Application not found")
	case errors.Is(err, application.ErrTaskNotFound):
		return presenter.Error(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, auth.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, auth.ErrUsernameTaken):
		return presenter.Error(c, http.StatusConflict, "Username already exists")
	case errors.Is(err, auth.ErrEmailTaken):
		return presenter.Error(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return presenter.Error(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrAccountDeactivated):
		return presenter.Error(c, http.StatusUnauthorized, "Account has been deactivated. Please contact support.")
	case errors.Is(err, auth.ErrInvalidToken):
		return presenter.Error(c, http.StatusBadRequest, "Invalid or expired token")
	case errors.Is(err, uploader.ErrTooLarge),
		errors.Is(err, uploader.ErrNotAnImage),
		errors.Is(err, uploader.ErrNotConfigured):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	default:
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "Server error")
	}
}

// currentUserID reads the id the auth middleware stored in locals.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals(jwt.LocalUserID).(string)
	return uuid.Parse(raw)
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}
