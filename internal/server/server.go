// Package server assembles the HTTP application: middleware, error mapping and routes.
package server

import (
	"errors"
	"strings"

	"rental-backend/internal/apperr"
	"rental-backend/internal/audit"
	"rental-backend/internal/auth"
	"rental-backend/internal/bookings"
	"rental-backend/internal/companies"
	"rental-backend/internal/config"
	"rental-backend/internal/favorites"
	"rental-backend/internal/metrics"
	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/properties"
	"rental-backend/internal/repository"
	"rental-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ServiceName = "rental-backend"

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	Gatherer prometheus.Gatherer
}

// New builds the fiber app with every route mounted.
func New(d Deps) *fiber.App {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	app := fiber.New(fiber.Config{
		AppName:      ServiceName,
		ErrorHandler: errorHandler(d.Logger),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(d.Logger))
	app.Use(metrics.Middleware(ServiceName))

	corsOrigins := strings.Split(d.Config.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	registerRoutes(app, d)

	return app
}

func registerRoutes(app *fiber.App, d Deps) {
	repos := repository.New(d.DB)
	auditSvc := audit.NewService(d.DB)

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(d.Config))

	protected.Get("/auth/me", auth.MeHandler(repos.Users))

	// Users
	protected.Get("/users/:id", users.GetUserHandler(repos.Users))
	protected.Put("/users/:id", users.UpdateUserHandler(d.DB, repos.Users, auditSvc))
	protected.Get("/users/:id/favorites", favorites.ListFavoritesHandler(repos.Users, repos.Favorites))

	// Companies
	protected.Get("/companies/:id", companies.GetCompanyHandler(repos.Companies))
	protected.Get("/companies/:id/members", companies.ListMembersHandler(repos.Companies))

	// Properties & reviews
	protected.Get("/properties", properties.ListPropertiesHandler(repos.Properties))
	protected.Get("/properties/:id", properties.GetPropertyHandler(repos.Properties))
	protected.Get("/properties/:id/reviews", properties.ListReviewsHandler(repos.Properties, repos.Reviews))
	protected.Post("/properties/:id/reviews", properties.CreateReviewHandler(d.DB, repos.Properties, repos.Users))

	// Favorites
	protected.Post("/favorites/toggle", favorites.ToggleFavoriteHandler(d.DB, repos.Favorites, repos.Properties, auditSvc))

	// Bookings
	protected.Get("/bookings", bookings.ListBookingsHandler(repos.Bookings))
	protected.Get("/bookings/:id", bookings.GetBookingHandler(repos.Bookings))
	protected.Post("/bookings/:id/cancel", bookings.CancelBookingHandler(d.DB, repos.Bookings, auditSvc))

	// Admin only
	adminOnly := auth.RequireRole(models.RoleAdmin)

	protected.Get("/users", adminOnly, users.ListUsersHandler(repos.Users))
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler(auditSvc))
	protected.Post("/audit-logs/:id/undo", adminOnly, audit.UndoAuditLogHandler(auditSvc, repos.Users))
}

// errorHandler renders every error as {"error": message}. Lookup misses become 404 and carry
// the entity tag so clients can tell which record was absent.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		if entity, ok := apperr.NotFoundEntity(err); ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":  err.Error(),
				"entity": string(entity),
			})
		}

		log.Error("unexpected error",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Path()),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unexpected server error",
		})
	}
}
