package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/jobtrack/pkg/auth"
)

type singleUserRepo struct{ user auth.User }

func (r singleUserRepo) Create(context.Context, auth.User) error { return nil }
func (r singleUserRepo) GetByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	if id != r.user.ID {
		return auth.User{}, auth.ErrNotFound
	}
	return r.user, nil
}
func (r singleUserRepo) GetByLogin(context.Context, string) (auth.User, error) {
	return r.user, nil
}
func (r singleUserRepo) GetByUsername(context.Context, string) (auth.User, error) {
	return r.user, nil
}
func (r singleUserRepo) GetByEmail(context.Context, string) (auth.User, error) {
	return r.user, nil
}
func (r singleUserRepo) GetByResetTokenHash(context.Context, string) (auth.User, error) {
	return auth.User{}, auth.ErrNotFound
}
func (r singleUserRepo) Update(context.Context, auth.User) error { return nil }

func newTestApp(t *testing.T, user auth.User) (*fiber.App, *Generator) {
	t.Helper()
	const secret = "test-secret"
	const issuer = "jobtrack"

	gen := NewGenerator(secret, issuer, time.Hour)
	mw := NewMiddleware(secret, issuer, singleUserRepo{user: user})

	app := fiber.New()
	app.Get("/protected", mw.Required(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userId": c.Locals(LocalUserID)})
	})
	return app, gen
}

func activeUser() auth.User {
	return auth.User{ID: uuid.New(), Username: "jdoe", IsActive: true}
}

func TestRequiredAcceptsBearerToken(t *testing.T) {
	user := activeUser()
	app, gen := newTestApp(t, user)

	token, err := gen.Generate(context.Background(), user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequiredAcceptsCookieFallback(t *testing.T) {
	user := activeUser()
	app, gen := newTestApp(t, user)

	token, err := gen.Generate(context.Background(), user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequiredRejectsMissingToken(t *testing.T) {
	app, _ := newTestApp(t, activeUser())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredRejectsGarbageToken(t *testing.T) {
	app, _ := newTestApp(t, activeUser())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredRejectsWrongIssuer(t *testing.T) {
	user := activeUser()
	app, _ := newTestApp(t, user)

	other := NewGenerator("test-secret", "someone-else", time.Hour)
	token, err := other.Generate(context.Background(), user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredRejectsExpiredToken(t *testing.T) {
	user := activeUser()
	app, _ := newTestApp(t, user)

	expired := NewGenerator("test-secret", "jobtrack", -time.Minute)
	token, err := expired.Generate(context.Background(), user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredRejectsDeactivatedUser(t *testing.T) {
	user := activeUser()
	user.IsActive = false
	app, gen := newTestApp(t, user)

	token, err := gen.Generate(context.Background(), user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredRejectsUnknownUser(t *testing.T) {
	user := activeUser()
	app, gen := newTestApp(t, user)

	ghost := auth.User{ID: uuid.New(), Username: "ghost", IsActive: true}
	token, err := gen.Generate(context.Background(), ghost)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalNeverRejects(t *testing.T) {
	user := activeUser()
	const secret = "test-secret"
	mw := NewMiddleware(secret, "jobtrack", singleUserRepo{user: user})

	app := fiber.New()
	app.Get("/feed", mw.Optional(), func(c *fiber.Ctx) error {
		if id, ok := c.Locals(LocalUserID).(string); ok {
			return c.JSON(fiber.Map{"userId": id})
		}
		return c.JSON(fiber.Map{"userId": nil})
	})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
