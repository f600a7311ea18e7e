package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcie_study_backend/internal/config"
	"alcie_study_backend/internal/controller"
	"alcie_study_backend/internal/dataset"
	"alcie_study_backend/internal/repository"
	"alcie_study_backend/internal/service"
	"alcie_study_backend/internal/util"
	"alcie_study_backend/pkg/database"
	"alcie_study_backend/pkg/logger"
	"alcie_study_backend/pkg/monitoring"
	"alcie_study_backend/pkg/security"
	"alcie_study_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Catalog         *dataset.Catalog
	services        *services
	configCallbacks []func(*config.Config)
}

type services struct {
	sessions *service.SessionService
	exports  *service.ExportService
	storage  *service.StorageService
}

type controllers struct {
	study  *controller.StudyController
	export *controller.ExportController
	image  *controller.ImageController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，由配置监听器回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initServices(cfg *config.Config, results *repository.ResultRepository) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.sessions = service.NewSessionService(a.Catalog, results, &cfg.Study)
	s.exports = service.NewExportService(a.Catalog, s.sessions, cfg.Study.ExportDir)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		study:  controller.NewStudyController(s.sessions, a.Catalog),
		export: controller.NewExportController(s.exports),
		image:  controller.NewImageController(s.storage),
		health: controller.NewHealthController(db, a.Catalog),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	catalog, err := dataset.Load(cfg.Study.DatasetPath)
	if err != nil {
		logger.Log.Fatal("Failed to load study dataset", zap.Error(err))
		log.Fatalf("Failed to load study dataset: %v", err)
	}
	logger.Log.Info("Study dataset loaded",
		zap.Int("samples", catalog.Len()),
		zap.Int("categories", len(catalog.Metadata().Categories)))

	// 结果落库是旁路写，数据库不可用时研究流程照常进行
	var results *repository.ResultRepository
	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		if cfg.MigrateOnly {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
			log.Fatalf("Failed to initialize database: %v", err)
		}
		logger.Log.Warn("Database unavailable, responses will be kept in memory only", zap.Error(err))
		db = nil
	} else {
		results = repository.NewResultRepository(db)
	}

	app := &App{
		Config:  cfg,
		DB:      db,
		Catalog: catalog,
	}

	services := app.initServices(cfg, results)
	app.services = services
	controllers := app.initControllers(services, db)

	// 评分量表和偏好开关可热更，其余配置段需要重启
	app.RegisterConfigCallback(func(next *config.Config) {
		cfg.Study.RatingMin = next.Study.RatingMin
		cfg.Study.RatingMax = next.Study.RatingMax
		cfg.Study.RequirePreference = next.Study.RequirePreference
	})

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("alcie-study-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal && cfg.Storage.LocalPath != "" {
		router.Static("/images", cfg.Storage.LocalPath)
	}

	return app
}

// SyncImages 把本地图片目录预置到当前存储后端
func (a *App) SyncImages(ctx context.Context) (int, error) {
	return a.services.storage.SyncImages(ctx, a.Config.Study.ImagesPath)
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
