// Package app assembles repositories, services and handlers into the HTTP
// application.
package app

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/tokens"
)

// Deps are the external resources the application runs on. Only DB and
// Config are required.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config

	// Cache backs the storefront listings when enabled.
	Cache *cache.CatalogCache

	// Events receives catalog events.
	Events services.EventPublisher

	// Audit stores the audit log. Defaults to the audit_entries table.
	Audit repositories.AuditRepository

	// Probes are reported by GET /api/health next to the database.
	Probes map[string]handlers.Probe
}

// New builds the Fiber application with every route under /api.
func New(d Deps) *fiber.App {
	cfg := d.Config

	productRepo := repositories.NewGORMProductRepository(d.DB)
	variantRepo := repositories.NewGORMVariantRepository(d.DB)
	colorRepo := repositories.NewGORMColorRepository(d.DB)
	sizeRepo := repositories.NewGORMSizeRepository(d.DB)
	adminRepo := repositories.NewGORMAdminRepository(d.DB)
	customerRepo := repositories.NewGORMCustomerRepository(d.DB)
	orderRepo := repositories.NewGORMOrderRepository(d.DB)
	sequenceRepo := repositories.NewGORMSequenceRepository(d.DB)
	auditRepo := d.Audit
	if auditRepo == nil {
		auditRepo = repositories.NewGORMAuditRepository(d.DB)
	}

	auditService := services.NewAuditService(auditRepo)
	hooks := services.Hooks{Events: d.Events, Audit: auditService}
	if d.Cache.Enabled() {
		hooks.Cache = d.Cache
	}

	issuer := tokens.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	productService := services.NewProductService(productRepo, variantRepo, sequenceRepo, hooks)
	variantService := services.NewVariantService(productRepo, colorRepo, sizeRepo, variantRepo, sequenceRepo, hooks)
	colorService := services.NewColorService(colorRepo, sequenceRepo, hooks)
	sizeService := services.NewSizeService(sizeRepo, sequenceRepo, hooks)
	adminService := services.NewAdminService(adminRepo, sequenceRepo, issuer, auditService)
	customerService := services.NewCustomerService(customerRepo, sequenceRepo, issuer)
	orderService := services.NewOrderService(orderRepo)

	validate := handlers.NewValidator()
	probes := map[string]handlers.Probe{
		"database": func(ctx context.Context) error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	for name, probe := range d.Probes {
		probes[name] = probe
	}

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	// Credentials are only allowed with an explicit origin list; fiber
	// rejects them next to the wildcard it uses for an empty list.
	origins := strings.Join(cfg.CORSOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "" && origins != "*",
	}))

	api := app.Group("/api")
	auth := middleware.AdminAuthRequired(adminService)
	customerAuth := middleware.CustomerAuthRequired(customerService)
	throttle := middleware.LoginThrottle(cfg.LoginRatePerMin)

	handlers.NewHealthHandler(probes).RegisterRoutes(api)
	handlers.NewProductHandler(productService, variantService, validate).RegisterRoutes(api, auth)
	handlers.NewColorHandler(colorService, productService, validate).RegisterRoutes(api, auth)
	handlers.NewSizeHandler(sizeService, validate).RegisterRoutes(api, auth)
	handlers.NewAdminHandler(adminService, auditService, validate).RegisterRoutes(api, auth, middleware.OptionalAdmin(adminService), throttle)
	handlers.NewCustomerHandler(customerService, validate).RegisterRoutes(api, auth, customerAuth, throttle)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, auth, customerAuth)

	return app
}
