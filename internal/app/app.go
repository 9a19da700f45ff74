package app

import (
	"chapterflux_backend/internal/config"
	"chapterflux_backend/internal/controller"
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/internal/service"
	"chapterflux_backend/internal/util"
	"chapterflux_backend/pkg/configwatcher"
	"chapterflux_backend/pkg/database"
	"chapterflux_backend/pkg/logger"
	"chapterflux_backend/pkg/monitoring"
	"chapterflux_backend/pkg/security"
	"chapterflux_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config      *config.Config
	Router      *gin.Engine
	DB          *gorm.DB
	Redis       *redis.Client
	ConfigFile  string
	services    *services
	rateLimiter *security.RateLimiter
	tracer      *sdktrace.TracerProvider
	memoryStore *repository.MemoryExportTokenStore

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	document    *repository.DocumentRepository
	session     *repository.ReadingSessionRepository
	quiz        *repository.QuizResultRepository
	achievement *repository.AchievementRepository
	streak      *repository.ReadingStreakRepository
	exportToken repository.ExportTokenStore
}

type services struct {
	storage        *service.StorageService
	document       *service.DocumentService
	readingSession *service.ReadingSessionService
	quizResult     *service.QuizResultService
	achievement    *service.AchievementService
	stats          *service.StatsService
	export         *service.ExportService
}

type controllers struct {
	document       *controller.DocumentController
	readingSession *controller.ReadingSessionController
	quizResult     *controller.QuizResultController
	achievement    *controller.AchievementController
	stats          *controller.StatsController
	health         *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		document:    repository.NewDocumentRepository(db),
		session:     repository.NewReadingSessionRepository(db),
		quiz:        repository.NewQuizResultRepository(db),
		achievement: repository.NewAchievementRepository(db),
		streak:      repository.NewReadingStreakRepository(db),
	}

	if rdb != nil {
		repos.exportToken = repository.NewRedisExportTokenStore(rdb)
	} else {
		a.memoryStore = repository.NewMemoryExportTokenStore(time.Minute)
		repos.exportToken = a.memoryStore
	}

	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.document = service.NewDocumentService(repos.document, s.storage, cfg.Storage.MaxUploadMB)
	s.readingSession = service.NewReadingSessionService(repos.session, repos.document)
	s.quizResult = service.NewQuizResultService(repos.quiz)
	s.achievement = service.NewAchievementService(repos.achievement)
	s.stats = service.NewStatsService(
		repos.session,
		repos.document,
		repos.quiz,
		repos.streak,
		s.achievement,
		cfg.Stats,
	)
	s.export = service.NewExportService(s.stats, repos.exportToken, time.Duration(cfg.Export.TokenTTLMinutes)*time.Minute)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.stats.UpdateSettings(newCfg.Stats)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		document:       controller.NewDocumentController(s.document),
		readingSession: controller.NewReadingSessionController(s.readingSession),
		quizResult:     controller.NewQuizResultController(s.quizResult),
		achievement:    controller.NewAchievementController(s.achievement, s.stats),
		stats:          controller.NewStatsController(s.stats, s.export),
		health:         controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.rateLimiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.rateLimiter.Middleware())
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		a.rateLimiter.Update(newCfg.RateLimit.MaxRequests, time.Duration(newCfg.RateLimit.WindowMinutes)*time.Minute)
	})

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config:     cfg,
		DB:         db,
		ConfigFile: filepath.Join("configs", "config.yaml"),
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	repos := app.initRepositories(db, app.Redis)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()
	util.RegisterJSONTagNames()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("chapterflux-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		err := configwatcher.WatchConfig(watchCtx, a.ConfigFile, a.applyConfig)
		if err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 释放后台任务和外部连接
func (a *App) Close(ctx context.Context) {
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.memoryStore != nil {
		a.memoryStore.Stop()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
