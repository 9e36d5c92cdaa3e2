package app

import (
	"context"
	"errors"
	"kreuzen_backend/internal/config"
	"kreuzen_backend/internal/controller"
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/service"
	"kreuzen_backend/internal/util"
	"kreuzen_backend/pkg/configwatcher"
	"kreuzen_backend/pkg/database"
	"kreuzen_backend/pkg/logger"
	"kreuzen_backend/pkg/monitoring"
	"kreuzen_backend/pkg/security"
	"kreuzen_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	stop            chan struct{}
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	universities *repository.CatalogRepository[model.University]
	question     *repository.QuestionRepository
	session      *repository.SessionRepository
	selection    *repository.SelectionRepository
	comment      *repository.CommentRepository
	errorReport  *repository.ErrorReportRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	storage     *service.StorageService
	question    *service.QuestionService
	session     *service.SessionService
	selection   *service.SelectionService
	catalog     *service.Catalog
	links       *service.CatalogLinkService
	comment     *service.CommentService
	errorReport *service.ErrorReportService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	question   *controller.QuestionController
	session    *controller.SessionController
	comment    *controller.CommentController
	health     *controller.HealthController
	university *controller.CatalogController[model.University, service.UniversityRequest]
	major      *controller.CatalogController[model.Major, service.MajorRequest]
	section    *controller.CatalogController[model.Section, service.SectionRequest]
	links      *controller.CatalogLinkController
	module     *controller.CatalogController[model.Module, service.ModuleRequest]
	semester   *controller.CatalogController[model.Semester, service.SemesterRequest]
	course     *controller.CatalogController[model.Course, service.CourseRequest]
	exam       *controller.CatalogController[model.Exam, service.ExamRequest]
	tag        *controller.CatalogController[model.Tag, service.TagRequest]
	hint       *controller.CatalogController[model.Hint, service.HintRequest]
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		universities: repository.NewCatalogRepository[model.University](db),
		question:     repository.NewQuestionRepository(db),
		session:      repository.NewSessionRepository(db),
		selection:    repository.NewSelectionRepository(db),
		comment:      repository.NewCommentRepository(db),
		errorReport:  repository.NewErrorReportRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	var (
		notifier service.Notifier = service.LogNotifier{}
		cache    service.CountCache
	)
	if rdb != nil {
		notifier = service.NewRedisNotifier(rdb, cfg.Mail.Outbox, cfg.Mail.Sender)
		cache = service.NewRedisCountCache(rdb)
	}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, repos.universities, notifier, cfg, db)
	s.user = service.NewUserService(repos.user, db)
	s.catalog = service.NewCatalog(db)
	s.links = service.NewCatalogLinkService(db)

	s.question = service.NewQuestionService(repos.question, repos.session, repos.selection, s.storage, db)
	s.session = service.NewSessionService(
		repos.session,
		s.question,
		db,
		cache,
		time.Duration(cfg.Session.CountCacheTTL)*time.Second,
		cfg.Session.MaxQuestions,
	)
	s.selection = service.NewSelectionService(repos.selection, s.session, s.question, db)

	s.comment = service.NewCommentService(repos.comment, s.question, db)
	s.errorReport = service.NewErrorReportService(repos.errorReport, repos.user, s.question, notifier, db)

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.user),
		user:       controller.NewUserController(s.user),
		question:   controller.NewQuestionController(s.question, cfg.Storage.MaxImageMB),
		session:    controller.NewSessionController(s.session, s.selection),
		comment:    controller.NewCommentController(s.comment, s.errorReport),
		health:     controller.NewHealthController(db, rdb),
		university: controller.NewCatalogController(s.catalog.Universities, nil),
		major:      controller.NewCatalogController(s.catalog.Majors, map[string]string{"universityId": "university_id"}),
		section:    controller.NewCatalogController(s.catalog.Sections, map[string]string{"majorId": "major_id"}),
		links:      controller.NewCatalogLinkController(s.links),
		module:     controller.NewCatalogController(s.catalog.Modules, map[string]string{"universityId": "university_id"}),
		semester:   controller.NewCatalogController(s.catalog.Semesters, nil),
		course: controller.NewCatalogController(s.catalog.Courses, map[string]string{
			"moduleId":   "module_id",
			"semesterId": "semester_id",
		}),
		exam: controller.NewCatalogController(s.catalog.Exams, map[string]string{"courseId": "course_id"}),
		tag:  controller.NewCatalogController(s.catalog.Tags, map[string]string{"moduleId": "module_id"}),
		hint: controller.NewCatalogController(s.catalog.Hints, nil),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateWindow())
	go a.limiter.Run(a.stop)
	router.Use(a.limiter.Middleware())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchConfig 配置文件变更时调整日志级别与限流
func (a *App) watchConfig(configDir string) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetMode(cfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.limiter.SetLimit(cfg.RateLimit.MaxRequests, cfg.RateWindow())
	})

	err := configwatcher.WatchConfig(configDir, func(cfg *config.Config) {
		for _, callback := range a.configCallbacks {
			callback(cfg)
		}
	}, a.stop)
	if err != nil {
		logger.Log.Warn("config hot reload disabled", zap.Error(err))
	}
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate || cfg.Database.Driver == "sqlite" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		stop:   make(chan struct{}),
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Error("Redis unavailable, continuing without cache and mail outbox", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	if err := controller.RegisterValidators(); err != nil {
		logger.Log.Fatal("Failed to register validators", zap.Error(err))
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, cfg, db, rdb)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.watchConfig(configDir)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	close(a.stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
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

	logger.Log.Info("Server exiting")
}
