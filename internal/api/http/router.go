package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/townhall/civic-service/internal/api/http/handlers"
	"github.com/townhall/civic-service/internal/auth"
	"github.com/townhall/civic-service/internal/config"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Accounts       *handlers.AccountsHandler
	Officials      *handlers.OfficialsHandler
	Towns          *handlers.TownsHandler
	TownChanges    *handlers.TownChangesHandler
	Complaints     *handlers.ComplaintsHandler
	Licenses       *handlers.LicensesHandler
	Announcements  *handlers.AnnouncementsHandler
	Bills          *handlers.BillsHandler
	Events         *handlers.EventsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Limiter        *ratelimit.Limiter
	RateLimit      config.RateLimitConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Town registry reads are public so registration forms can offer a
	// town picker.
	app.Get("/towns", cfg.Towns.List)
	app.Get("/towns/:id", cfg.Towns.Get)

	authGroup := app.Group("/auth")
	signup := authGroup.Group("", RateLimitByIP(cfg.Limiter, "signup", cfg.RateLimit.SignupPerMinute))
	signup.Post("/citizens/register", cfg.Auth.RegisterCitizen)
	signup.Post("/businesses/register", cfg.Auth.RegisterBusiness)
	signup.Post("/officials/register", cfg.Auth.RegisterOfficial)

	login := authGroup.Group("", RateLimitByIP(cfg.Limiter, "login", cfg.RateLimit.LoginPerMinute))
	login.Post("/citizens/login", cfg.Auth.LoginCitizen)
	login.Post("/businesses/login", cfg.Auth.LoginBusiness)
	login.Post("/officials/login", cfg.Auth.LoginOfficial)
	login.Post("/admin/login", cfg.Auth.AdminLogin)

	authed := app.Group("", cfg.AuthMiddleware.Handle)

	// Self-service profile is reachable before approval; everything else
	// requires an approved account.
	authed.Get("/accounts/me", cfg.Accounts.Me)
	authed.Patch("/accounts/me", cfg.Accounts.UpdateMe)
	authed.Get("/notifications", cfg.Notifications.List)
	authed.Post("/notifications/read-all", cfg.Notifications.MarkAllRead)
	authed.Post("/notifications/:id/read", cfg.Notifications.MarkRead)

	accounts := authed.Group("/accounts", auth.RequireApproved())
	accounts.Get("", cfg.Accounts.List)
	accounts.Get("/:id", cfg.Accounts.Get)
	accounts.Post("/:id/approve", cfg.Accounts.Approve)
	accounts.Post("/:id/reject", cfg.Accounts.Reject)
	accounts.Post("/:id/deactivate", cfg.Accounts.Deactivate)

	officials := authed.Group("/officials", auth.RequireSuperuser())
	officials.Get("", cfg.Officials.List)
	officials.Put("/:id/flags", cfg.Officials.SetFlags)

	townAdmin := authed.Group("/towns", auth.RequireSuperuser())
	townAdmin.Post("", cfg.Towns.Create)
	townAdmin.Put("/:id", cfg.Towns.Update)

	changes := authed.Group("/town-changes", auth.RequireApproved())
	changes.Post("", cfg.TownChanges.Create)
	changes.Get("", cfg.TownChanges.List)
	changes.Get("/:id", cfg.TownChanges.Get)
	changes.Post("/:id/approve", cfg.TownChanges.Approve)
	changes.Post("/:id/reject", cfg.TownChanges.Reject)

	complaints := authed.Group("/complaints", auth.RequireApproved())
	complaints.Post("", cfg.Complaints.Create)
	complaints.Get("", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Patch("/:id", cfg.Complaints.Update)
	complaints.Post("/:id/comments", cfg.Complaints.Comment)
	complaints.Get("/:id/comments", cfg.Complaints.Comments)
	complaints.Post("/:id/attachments", cfg.Complaints.Attach)
	complaints.Get("/:id/attachments", cfg.Complaints.Attachments)

	licenses := authed.Group("/licenses", auth.RequireApproved())
	licenses.Post("", auth.RequireRole(domain.RoleBusiness), cfg.Licenses.Apply)
	licenses.Get("", cfg.Licenses.List)
	licenses.Get("/:id", cfg.Licenses.Get)
	licenses.Post("/:id/review", auth.RequireRole(domain.RoleGovernment), cfg.Licenses.Review)

	announcements := authed.Group("/announcements", auth.RequireApproved())
	announcements.Post("", auth.RequireRole(domain.RoleGovernment), cfg.Announcements.Create)
	announcements.Get("", cfg.Announcements.List)
	announcements.Get("/:id", cfg.Announcements.Get)
	announcements.Put("/:id", auth.RequireRole(domain.RoleGovernment), cfg.Announcements.Update)
	announcements.Delete("/:id", auth.RequireRole(domain.RoleGovernment), cfg.Announcements.Delete)

	bills := authed.Group("/bills", auth.RequireApproved())
	bills.Post("", auth.RequireRole(domain.RoleGovernment), cfg.Bills.Propose)
	bills.Get("", cfg.Bills.List)
	bills.Get("/:id", cfg.Bills.Get)
	bills.Put("/:id", auth.RequireRole(domain.RoleGovernment), cfg.Bills.Update)
	bills.Delete("/:id", auth.RequireRole(domain.RoleGovernment), cfg.Bills.Delete)
	bills.Post("/:id/decide", auth.RequireRole(domain.RoleGovernment), cfg.Bills.Decide)
	bills.Put("/:id/vote", cfg.Bills.Vote)
	bills.Delete("/:id/vote", cfg.Bills.Unvote)
	bills.Post("/:id/comments", cfg.Bills.Comment)
	bills.Get("/:id/comments", cfg.Bills.Comments)

	events := authed.Group("/events", auth.RequireApproved())
	events.Post("", auth.RequireRole(domain.RoleBusiness), cfg.Events.Submit)
	events.Get("", cfg.Events.List)
	events.Get("/:id", cfg.Events.Get)
	events.Post("/:id/review", auth.RequireRole(domain.RoleGovernment), cfg.Events.Review)
	events.Post("/:id/register", cfg.Events.Register)
	events.Delete("/:id/register", cfg.Events.Unregister)
	events.Get("/:id/registrations", cfg.Events.Registrations)
}
