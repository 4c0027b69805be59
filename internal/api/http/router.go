package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-service/internal/api/http/handlers"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Courses        *handlers.CoursesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	courses := api.Group("/courses")
	courses.Get("/search/:courseId", cfg.Courses.Get)
	courses.Get("/enrolled", cfg.AuthMiddleware.Handle, cfg.Courses.EnrolledCourses)
	courses.Post("/create", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleTeacher, domain.RoleAdmin), cfg.Courses.Create)
	courses.Post("/enroll/:courseId", cfg.AuthMiddleware.Handle, cfg.Courses.Enroll)
	courses.Put("/update/:id", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleTeacher, domain.RoleAdmin), cfg.Courses.Update)
	courses.Get("/", cfg.Courses.List)
}
