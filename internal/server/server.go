package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"garage-backend/internal/audit"
	"garage-backend/internal/auth"
	"garage-backend/internal/config"
	"garage-backend/internal/dashboard"
	"garage-backend/internal/inventory"
	"garage-backend/internal/jobs"
	"garage-backend/internal/models"
	"garage-backend/internal/reports"
	"garage-backend/internal/service"
)

type Deps struct {
	Service *service.Service
	Logger  logrus.FieldLogger
	// Gatherer backs /api/metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
}

func New(cfg *config.Config, deps Deps) *fiber.App {
	log := deps.Logger
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})

	app.Use(requestLogger(log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOriginList(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	svc := deps.Service
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Gatherer != nil {
		api.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(svc))
	api.Post("/auth/login", auth.LoginHandler(svc, cfg.JWTSecret, cfg.TokenTTL))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))
	adminOnly := auth.RequireRole(models.RoleAdmin)

	protected.Get("/auth/me", auth.MeHandler(svc))
	protected.Post("/auth/change-pin", auth.ChangePinHandler(svc))
	protected.Post("/admin/users", adminOnly, auth.CreateUserHandler(svc))
	protected.Get("/users/mechanics", auth.MechanicsHandler(svc))

	// Job cards
	protected.Get("/vehicles/find", jobs.FindVehicleHandler(svc))
	protected.Get("/jobcards", jobs.ListJobCardsHandler(svc))
	protected.Post("/jobcards", adminOnly, jobs.CreateJobCardHandler(svc))
	protected.Get("/jobcards/:id", jobs.GetJobCardHandler(svc))
	protected.Get("/my-jobs", jobs.MyJobsHandler(svc))
	protected.Patch("/jobcards/:id/update-status", jobs.UpdateStatusHandler(svc))
	protected.Patch("/tasks/:id/update", jobs.UpdateTaskHandler(svc))
	protected.Post("/jobcards/:id/issue-part", inventory.IssuePartHandler(svc))
	protected.Post("/jobcards/:id/create-invoice", adminOnly, jobs.CreateInvoiceHandler(svc))
	protected.Get("/jobcards/:id/invoice", jobs.GetInvoiceHandler(svc))

	// Parts; low-stock must precede :id
	protected.Get("/parts", inventory.ListPartsHandler(svc))
	protected.Get("/parts/low-stock", inventory.LowStockHandler(svc))
	protected.Post("/parts", adminOnly, inventory.CreatePartHandler(svc))
	protected.Get("/parts/:id", inventory.GetPartHandler(svc))
	protected.Put("/parts/:id", adminOnly, inventory.UpdatePartHandler(svc))
	protected.Patch("/parts/:id", adminOnly, inventory.UpdatePartHandler(svc))
	protected.Delete("/parts/:id", adminOnly, inventory.DeletePartHandler(svc))
	protected.Post("/parts/:id/restock", adminOnly, inventory.RestockHandler(svc))

	// Reports
	protected.Get("/reports", adminOnly, reports.SummaryHandler(svc))
	protected.Get("/invoices/export", adminOnly, reports.ExportInvoicesHandler(svc))
	protected.Get("/dashboard/revenue-chart", adminOnly, dashboard.RevenueChartHandler(svc))
	protected.Get("/audit-logs", adminOnly, audit.ListHandler(svc))

	return app
}

// requestLogger renders chain errors itself so the logged status is the
// one the client receives.
func requestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start).String(),
		})
		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("request")
		case status >= fiber.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
		return nil
	}
}
