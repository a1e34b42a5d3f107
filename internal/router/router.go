package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/employee-task-hub/internal/handler"
	"github.com/iliyamo/employee-task-hub/internal/middleware"
	"github.com/iliyamo/employee-task-hub/internal/model"
	"github.com/iliyamo/employee-task-hub/internal/realtime"
)

// Handlers collects every handler the router wires up.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Employees *handler.EmployeeHandler
	Tasks     *handler.TaskHandler
	Messages  *handler.MessageHandler
	Realtime  *realtime.Handler
}

// Register wires all routes on the provided Echo instance. codeLimiter
// throttles the access-code endpoints; it may be a pass-through when no
// Redis backend is configured.
func Register(e *echo.Echo, h Handlers, jwtSecret string, codeLimiter echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health.Check)

	// Access-code issuance and validation. These are the only endpoints an
	// anonymous caller can hit repeatedly, so the limiter sits here.
	owner := e.Group("/owner")
	owner.POST("/create-access-code", h.Auth.OwnerCreateAccessCode, codeLimiter)
	owner.POST("/validate-access-code", h.Auth.OwnerValidateAccessCode, codeLimiter)

	employee := e.Group("/employee")
	employee.POST("/login-email", h.Auth.EmployeeLoginEmail, codeLimiter)
	employee.POST("/validate-access-code", h.Auth.EmployeeValidateAccessCode, codeLimiter)
	employee.POST("/confirm", h.Employees.Confirm)
	employee.POST("/profile", h.Employees.Profile)

	e.POST("/auth/refresh", h.Auth.Refresh)

	// Websocket upgrade authenticates via ?token= because browsers cannot
	// set headers on the upgrade request.
	e.GET("/ws", h.Realtime.Serve)

	// Owner-only employee management.
	ownerOnly := e.Group("/owner")
	ownerOnly.Use(middleware.JWTAuth(jwtSecret))
	ownerOnly.Use(middleware.RequireRole(model.RoleOwner))
	ownerOnly.POST("/create-employee", h.Employees.Create)
	ownerOnly.POST("/get-employee", h.Employees.Get)
	ownerOnly.POST("/delete-employee", h.Employees.Delete)
	ownerOnly.GET("/employees", h.Employees.List)

	tasks := e.Group("/tasks")
	tasks.Use(middleware.JWTAuth(jwtSecret))
	tasks.POST("/create", h.Tasks.Create, middleware.RequireRole(model.RoleOwner))
	tasks.GET("/all", h.Tasks.All, middleware.RequireRole(model.RoleOwner))
	tasks.GET("/my-tasks", h.Tasks.Mine)
	tasks.GET("/:id", h.Tasks.Get)
	tasks.PATCH("/:id/status", h.Tasks.UpdateStatus)

	messages := e.Group("/messages")
	messages.Use(middleware.JWTAuth(jwtSecret))
	messages.POST("/conversations/start", h.Messages.Start)
	messages.GET("/conversations", h.Messages.ListConversations)
	messages.GET("/conversations/:id", h.Messages.ConversationMessages)
	messages.POST("/send", h.Messages.Send)
	messages.GET("/contacts", h.Messages.Contacts)
}
