package presenter

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/jobtrack/pkg/validation"
)

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ValidationResponse carries per-field validation failures.
type ValidationResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors"`
}

// Data wraps a payload in the success envelope.
func Data(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// DataMessage is Data with a human-readable message.
func DataMessage(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// User is the auth envelope: the account rides under "user", optionally with
// a token alongside.
func User(c *fiber.Ctx, status int, message string, user any, token string) error {
	body := fiber.Map{
		"success": true,
		"user":    user,
	}
	if message != "" {
		body["message"] = message
	}
	if token != "" {
		body["token"] = token
	}
	return c.Status(status).JSON(body)
}

// Message reports success with no payload.
func Message(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// Error reports a failure with a single message.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{Message: message})
}

// ValidationFailed reports per-field failures with status 400.
func ValidationFailed(c *fiber.Ctx, verr *validation.Error) error {
	return c.Status(fiber.StatusBadRequest).JSON(ValidationResponse{
		Message: "Validation failed",
		Errors:  verr.Fields,
	})
}
