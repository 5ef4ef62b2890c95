package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/gradebook/internal/app/controllers"
	appMigrations "github.com/yigit/gradebook/internal/app/migrations"
	appRepos "github.com/yigit/gradebook/internal/app/repositories"
	appRoutes "github.com/yigit/gradebook/internal/app/routes"
	appServices "github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/db"
	appMiddleware "github.com/yigit/gradebook/internal/middleware"
	pkgAuth "github.com/yigit/gradebook/internal/pkg/auth"
	"github.com/yigit/gradebook/internal/pkg/cache"
	"github.com/yigit/gradebook/internal/pkg/filestorage"
	"github.com/yigit/gradebook/internal/pkg/logger"
	"github.com/yigit/gradebook/internal/pkg/metrics"
	"github.com/yigit/gradebook/internal/pkg/validation"
	"github.com/yigit/gradebook/internal/pkg/websocket"
	"github.com/yigit/gradebook/internal/seed"
)

// cacheKeyPrefix namespaces statistics cache entries in a shared Redis
const cacheKeyPrefix = "gradebook:stats"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    *appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Metrics        *metrics.Metrics
	Hub            *websocket.Hub
	// Bridge is nil when Redis is disabled; the hub then delivers directly
	Bridge    *websocket.RedisBridge
	WSHandler *websocket.Handler
	Redis     *redis.Client
	Storage   filestorage.Storage
	Logger    zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// CONFIG_PATH overrides the default configs/config.yaml.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr.With().Str("component", "migrator").Logger())
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// SetupRedis connects to Redis when it is enabled and returns nil otherwise
func SetupRedis(cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled; statistics are not cached and the relay is single-instance")
		return nil, nil
	}

	rdb, err := cache.NewRedisClient(cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		return nil, err
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return rdb, nil
}

// SetupStorage opens the configured report storage backend
func SetupStorage(cfg *config.Config, lgr zerolog.Logger) (filestorage.Storage, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case config.StorageS3:
		s3cfg := cfg.Storage.S3
		store, err := filestorage.NewS3Storage(filestorage.S3Config{
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			Bucket:    s3cfg.Bucket,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			UseSSL:    s3cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		lgr.Info().Str("bucket", s3cfg.Bucket).Str("endpoint", s3cfg.Endpoint).Msg("Using S3 report storage")
		return store, nil
	default:
		store, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		lgr.Info().Str("path", cfg.Storage.LocalPath).Msg("Using local report storage")
		return store, nil
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
// ctx bounds the lifetime of the real-time relay.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, rdb *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Redis: rdb}

	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	storage, err := SetupStorage(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, err
	}
	deps.Storage = storage

	deps.Metrics = metrics.New()
	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "relay").Logger(), deps.Metrics)

	var (
		statsCache cache.Cache        = cache.Noop{}
		notifier   websocket.Notifier = deps.Hub
	)
	if rdb != nil {
		statsCache = cache.NewRedisCache(rdb, cacheKeyPrefix, cfg.CacheTTL(), deps.Metrics)
		deps.Bridge = websocket.NewRedisBridge(rdb, cfg.Redis.Channel, deps.Hub, lgr.With().Str("component", "relay-bridge").Logger())
		notifier = deps.Bridge
	}

	deps.Services = appServices.NewServices(deps.Repos, appServices.Dependencies{
		JWT:      deps.JWTService,
		Cache:    statsCache,
		Storage:  storage,
		Notifier: notifier,
		Logger:   lgr,
	})

	frames := websocket.NewMessageHandler(deps.Services.MessageService, lgr.With().Str("component", "relay").Logger())
	deps.WSHandler = websocket.NewHandler(ctx, deps.Hub, frames, cfg.Server.CORSOrigins, lgr.With().Str("component", "relay").Logger())

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Services.Resolver, lgr)

	svc := deps.Services
	deps.Controllers = &appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(svc.AuthService, lgr),
		User:       appControllers.NewUserController(svc.AuthService, lgr),
		Message:    appControllers.NewMessageController(svc.MessageService, lgr),
		Statistics: appControllers.NewStatisticsController(svc.StatisticsService, lgr),
		Dashboard:  appControllers.NewDashboardController(svc.DashboardService, lgr),
		Grade:      appControllers.NewGradeController(svc.GradeService, lgr),
		Attendance: appControllers.NewAttendanceController(svc.AttendanceService, lgr),
		Schedule:   appControllers.NewScheduleController(svc.ScheduleService, lgr),
		Lesson:     appControllers.NewLessonController(svc.LessonService, lgr),
		Search:     appControllers.NewSearchController(svc.SearchService, lgr),
		Report:     appControllers.NewReportController(svc.ReportService, lgr),
		Roster:     appControllers.NewRosterController(svc.RosterService, lgr),
	}

	seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := seed.CreateDefaultData(seedCtx, svc.AuthService, deps.Repos.SubjectRepository,
		cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr.With().Str("component", "http").Logger()),
		deps.Metrics.Middleware(),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)

	appRoutes.SetupSwagger(router)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	appRoutes.SetupRouter(router, deps.Controllers, deps.WSHandler, deps.AuthMiddleware)

	return router
}
