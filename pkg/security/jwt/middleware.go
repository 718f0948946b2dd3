package jwt

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/artem13815/jobtrack/pkg/auth"
)

// Locals keys set by the middleware.
const (
	LocalUserID = "userId"
	LocalUser   = "user"
	LocalRole   = "role"
)

// Middleware authenticates requests with a Bearer JWT (HS256) and resolves
// the referenced account. A valid token is not enough: the user must still
// exist and must be active.
type Middleware struct {
	secret []byte
	issuer string
	users  auth.UserRepository
}

func NewMiddleware(secret, issuer string, users auth.UserRepository) *Middleware {
	return &Middleware{secret: []byte(secret), issuer: issuer, users: users}
}

// Required rejects the request (401) when no valid token resolves to an
// active user. On success sets the user id and user into locals.
func (m *Middleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, errMsg := m.resolve(c)
		if errMsg != "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": errMsg,
			})
		}
		c.Locals(LocalUserID, user.ID.String())
		c.Locals(LocalUser, user)
		return c.Next()
	}
}

// Optional attaches the user when a valid token is present but never
// rejects the request.
func (m *Middleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, errMsg := m.resolve(c); errMsg == "" {
			c.Locals(LocalUserID, user.ID.String())
			c.Locals(LocalUser, user)
		}
		return c.Next()
	}
}

// RequireRole is a capability hook for role-based routes. No current route
// mounts it.
func (m *Middleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Not authorized to access this route",
		})
	}
}

// resolve returns the authenticated user, or a non-empty failure message.
func (m *Middleware) resolve(c *fiber.Ctx) (auth.User, string) {
	tokenStr := extractToken(c)
	if tokenStr == "" {
		return auth.User{}, "Not authorized to access this route. Please provide a valid token."
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return auth.User{}, "Not authorized. Invalid token."
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return auth.User{}, "Not authorized. Invalid token."
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return auth.User{}, "Not authorized. Invalid token."
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return auth.User{}, "Not authorized. Invalid token."
	}

	user, err := m.users.GetByID(c.Context(), userID)
	if err != nil {
		return auth.User{}, "Not authorized. User no longer exists."
	}
	if !user.IsActive {
		return auth.User{}, "Account has been deactivated. Please contact support."
	}
	return user, ""
}

func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// Fall back to the mirrored cookie set on login.
	return strings.TrimSpace(c.Cookies("token"))
}
