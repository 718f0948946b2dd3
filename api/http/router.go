package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/jobtrack/api/http/handlers"
	"github.com/artem13815/jobtrack/pkg/security/jwt"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(
	app *fiber.App,
	authMW *jwt.Middleware,
	auth *handlers.AuthHandler,
	user *handlers.UserHandler,
	applications *handlers.ApplicationHandler,
	analytics *handlers.AnalyticsHandler,
	health *handlers.HealthHandler,
) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", auth.Register)
	a.Post("/login", auth.Login)
	a.Post("/logout", auth.Logout)
	a.Post("/verify-email", auth.VerifyEmail)
	a.Post("/resend-verification", auth.ResendVerification)
	a.Post("/forgot-password", auth.ForgotPassword)
	a.Post("/reset-password", auth.ResetPassword)
	a.Get("/check-username/:username", auth.CheckUsername)
	a.Get("/me", authMW.Required(), auth.Me)
	a.Put("/password", authMW.Required(), auth.ChangePassword)

	u := v1.Group("/user")
	u.Get("/profile", authMW.Required(), user.Profile)
	u.Put("/profile", authMW.Required(), user.UpdateProfile)
	u.Put("/skills", authMW.Required(), user.UpdateSkills)
	u.Put("/job-preferences", authMW.Required(), user.UpdateJobPreferences)
	u.Put("/goals", authMW.Required(), user.UpdateGoals)
	u.Put("/avatar", authMW.Required(), user.UpdateAvatar)
	u.Post("/avatar/upload", authMW.Required(), user.UploadAvatar)
	u.Delete("/account", authMW.Required(), user.DeactivateAccount)
	// Public profile lookup stays last so fixed paths win.
	u.Get("/:username", user.PublicProfile)

	apps := v1.Group("/applications", authMW.Required())
	apps.Post("/", applications.Create)
	apps.Get("/", applications.List)
	apps.Get("/:id", applications.Get)
	apps.Put("/:id", applications.Update)
	apps.Delete("/:id", applications.Delete)
	apps.Patch("/:id/archive", applications.Archive)
	apps.Post("/:id/tasks", applications.AddTask)
	apps.Put("/:id/tasks/:taskId", applications.UpdateTask)
	apps.Delete("/:id/tasks/:taskId", applications.DeleteTask)
	apps.Post("/:id/timeline", applications.AddTimelineEvent)

	an := v1.Group("/analytics", authMW.Required())
	an.Get("/overview", analytics.Overview)
	an.Get("/weekly", analytics.Weekly)
	an.Get("/performance", analytics.Performance)
	an.Get("/tasks", analytics.Tasks)
	an.Get("/activity", analytics.Activity)
}
