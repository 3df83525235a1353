package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuscare/campuscare/internal/api/handler"
	"github.com/campuscare/campuscare/internal/api/middleware"
	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/service"
	"github.com/campuscare/campuscare/internal/infrastructure/ai"
	redisbus "github.com/campuscare/campuscare/internal/infrastructure/bus/redis"
	mongodb "github.com/campuscare/campuscare/internal/infrastructure/db/mongo"
	"github.com/campuscare/campuscare/internal/infrastructure/identity/clerk"
	"github.com/campuscare/campuscare/internal/pkg/config"
	"github.com/campuscare/campuscare/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("campuscare_api"))

	// --- Infrastructure ---
	provider := clerk.New(clerk.Config{
		SigningKey: cfg.Clerk.SigningKey,
		SecretKey:  cfg.Clerk.SecretKey,
		APIBase:    cfg.Clerk.APIBase,
		Timeout:    cfg.Clerk.Timeout,
	})
	classifier := ai.New(ai.Config{
		APIKey:  cfg.Classifier.APIKey,
		Model:   cfg.Classifier.Model,
		BaseURL: cfg.Classifier.BaseURL,
		Timeout: cfg.Classifier.Timeout,
	})
	bus := redisbus.NewBus(rdb, log)
	presence := redisbus.NewPresenceStore(rdb)

	identityRepo := mongodb.NewIdentityRepository(db)
	ticketRepo := mongodb.NewTicketRepository(db)
	assetRepo := mongodb.NewAssetRepository(db)
	campusRepo := mongodb.NewCampusRepository(db)

	// --- Services ---
	identityService := service.NewIdentityService(provider, identityRepo, cfg.Clerk.Timeout, log)
	ticketService := service.NewTicketService(ticketRepo, classifier, bus, cfg.Classifier.Timeout, log)
	assetService := service.NewAssetService(assetRepo, bus, log)
	campusService := service.NewCampusService(campusRepo, identityRepo, presence, bus, log)

	// --- Handlers ---
	ticketHandler := handler.NewTicketHandler(ticketService)
	assetHandler := handler.NewAssetHandler(assetService)
	campusHandler := handler.NewCampusHandler(campusService)
	userHandler := handler.NewUserHandler()

	authn := middleware.Authenticate(identityService)
	staffOnly := middleware.RequireMinimumRole(domain.RoleManager)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	platformOnly := middleware.RequireRole(domain.RoleSuperAdmin)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Campus routes ---
	campuses := e.Group("/campuses")
	campuses.GET("/active", campusHandler.ListActive)
	campuses.POST("/register", campusHandler.Register, authn)
	campuses.GET("/pending", campusHandler.ListPending, authn, platformOnly)
	campuses.PATCH("/:id/review", campusHandler.Review, authn, platformOnly)
	campuses.POST("/staff", campusHandler.InviteStaff, authn, adminOnly)
	campuses.GET("/members", campusHandler.Members, authn, adminOnly)

	// --- Ticket routes ---
	tickets := e.Group("/tickets", authn)
	tickets.POST("", ticketHandler.Create)
	tickets.GET("/my-tickets", ticketHandler.ListMine)
	tickets.GET("/all", ticketHandler.ListAll, staffOnly)
	tickets.PATCH("/:id/status", ticketHandler.UpdateStatus, staffOnly)

	// --- Asset routes ---
	assets := e.Group("/assets", authn)
	assets.POST("", assetHandler.Create, staffOnly)
	assets.GET("", assetHandler.List)
	assets.GET("/health-score", assetHandler.HealthScore)
	assets.PATCH("/:id/risk", assetHandler.UpdateRisk, staffOnly)

	// --- User routes ---
	users := e.Group("/users", authn)
	users.GET("/me", userHandler.Me)

	return e
}
