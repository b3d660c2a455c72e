package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/easystream/server/cmd/server/docs" // swagger docs
	"github.com/easystream/server/internal/module/auth"
	"github.com/easystream/server/internal/module/catalog"
	"github.com/easystream/server/internal/module/storage"
	sharedcache "github.com/easystream/server/internal/shared/cache"
	"github.com/easystream/server/internal/shared/config"
	"github.com/easystream/server/internal/shared/database"
	"github.com/easystream/server/internal/shared/logger"
	"github.com/easystream/server/internal/shared/metrics"
	"github.com/easystream/server/internal/shared/middleware"
)

// Application is the running server with its wired modules.
type Application interface {
	Router() *gin.Engine
	Stop()
}

var _ Application = (*App)(nil)

// App represents the application.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	metrics   *metrics.Metrics

	// Modules
	storageHandler *storage.Handler
	storageService *storage.Service
	catalogHandler *catalog.Handler
	jwtManager     *auth.JWTManager
	rateLimiter    *middleware.RateLimiter
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Zap logger for modules that use zap
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		metrics:   metrics.New(""),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(
			&catalog.Category{},
			&catalog.SubCategory{},
			&catalog.Subject{},
			&catalog.Teacher{},
			&catalog.Product{},
			&catalog.ProductImage{},
		); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	// Redis is optional; without it the presign endpoint is unthrottled.
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, rate limiting disabled", logger.Err(err))
		} else {
			app.redis = redisClient
			app.rateLimiter = middleware.NewRateLimiter(
				redisClient,
				cfg.Storage.PresignRateLimit,
				middleware.DefaultRateWindow,
			)
		}
	}

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

// initModules wires the storage and catalog modules.
func (a *App) initModules() error {
	client, err := storage.NewClient(&storage.ClientConfig{
		Endpoint:        a.config.Storage.Endpoint,
		Region:          a.config.Storage.Region,
		AccessKeyID:     a.config.Storage.AccessKeyID,
		SecretAccessKey: a.config.Storage.SecretAccessKey,
		Bucket:          a.config.Storage.Bucket,
	})
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}

	a.storageService = storage.NewService(client, &storage.ServiceConfig{
		PublicDomain: a.config.Storage.PublicDomain,
		Expiry:       a.config.Storage.PresignExpiry,
	}, a.zapLogger, a.metrics)
	a.storageHandler = storage.NewHandler(a.storageService)

	var verifier *storage.Verifier
	if a.config.Storage.VerifyUploads {
		verifier = storage.NewVerifier(client, a.zapLogger, a.metrics)
	}

	catalogRepo := catalog.NewRepository(a.db)
	catalogService := catalog.NewService(catalogRepo, a.storageService, verifier, a.zapLogger, a.metrics)
	a.catalogHandler = catalog.NewHandler(catalogService)

	a.jwtManager = auth.NewJWTManager(&auth.JWTConfig{
		Secret: a.config.Auth.JWTSecret,
		Issuer: a.config.Auth.Issuer,
	})

	return nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// registerRoutes registers routes for all modules. The /products mount and
// trailing slashes mirror the upstream client contract.
func (a *App) registerRoutes() {
	products := a.router.Group("/products")

	api := products.Group("/api")
	if a.rateLimiter != nil {
		api.Use(middleware.RateLimit(a.rateLimiter))
	}
	a.storageHandler.RegisterRoutes(api)
	a.catalogHandler.RegisterAPIRoutes(api)

	dashboard := products.Group("/dashboard")
	dashboard.Use(auth.RequireAuth(a.jwtManager), auth.RequireAdmin())
	a.catalogHandler.RegisterDashboardRoutes(dashboard)
}

// Router returns the gin router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.zapLogger != nil {
		_ = a.zapLogger.Sync()
	}
	if a.redis != nil {
		_ = sharedcache.Close(a.redis)
	}
	if a.db != nil {
		_ = database.Close(a.db)
	}
}
