package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Agents         *handlers.AgentsHandler
	Tickets        *handlers.TicketsHandler
	Contacts       *handlers.ContactsHandler
	Attachments    *handlers.AttachmentsHandler
	Tenants        *handlers.TenantsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/agents/login", cfg.Agents.Login)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	protectedAuth.Post("/password/change", cfg.Agents.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)

	contacts := app.Group("/contacts", cfg.AuthMiddleware.Handle, auth.RequireRole())
	contacts.Post("/", cfg.Contacts.CreateContact)
	contacts.Get("/", cfg.Contacts.ListContacts)
	contacts.Get("/:id", cfg.Contacts.GetContact)

	attachments := app.Group("/attachments", cfg.AuthMiddleware.Handle, auth.RequireRole())
	attachments.Get("/:id", cfg.Attachments.Download)

	tenants := app.Group("/tenants", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.AgentRoleAdmin))
	tenants.Get("/", cfg.Tenants.ListTenants)
	tenants.Get("/:id", cfg.Tenants.GetTenant)
}
