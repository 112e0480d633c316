package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/studydesk-api/api/swagger"
	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/handler"
	"github.com/noah-isme/studydesk-api/internal/middleware"
	"github.com/noah-isme/studydesk-api/internal/repository"
	"github.com/noah-isme/studydesk-api/internal/repository/memory"
	"github.com/noah-isme/studydesk-api/internal/service"
	"github.com/noah-isme/studydesk-api/pkg/cache"
	"github.com/noah-isme/studydesk-api/pkg/config"
	"github.com/noah-isme/studydesk-api/pkg/database"
	"github.com/noah-isme/studydesk-api/pkg/jobs"
	"github.com/noah-isme/studydesk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/studydesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/studydesk-api/pkg/middleware/requestid"
	"github.com/noah-isme/studydesk-api/pkg/middleware/usercontext"
	"github.com/noah-isme/studydesk-api/pkg/storage"
)

// @title StudyDesk API
// @version 1.0.0
// @description Courses, assignments, grade book and student roster
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	checks := map[string]handler.ReadinessCheck{}

	stores, db, err := openStores(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open store", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
		checks["postgres"] = db.PingContext
	}

	metricsSvc := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, logr, cacheRepo.Enabled())

	validate := service.NewValidator()
	classifier := academics.NewClassifier(cfg.Calendar.WeekStart, cfg.Calendar.Location)

	courseSvc := service.NewCourseService(stores.Courses, stores.Assignments, stores.Grades, cacheSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(stores.Assignments, stores.Courses, classifier, cacheSvc, validate, logr)
	gradeSvc := service.NewGradeService(stores.Grades, stores.Courses, cacheSvc, validate, logr)
	studentSvc := service.NewStudentService(stores.Students, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Courses:     stores.Courses,
		Assignments: stores.Assignments,
		Grades:      stores.Grades,
		Classifier:  classifier,
		Cache:       cacheSvc,
		Logger:      logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:      cfg.Dashboard.CacheTTL,
			UpcomingLimit: cfg.Dashboard.UpcomingLimit,
		},
	})

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	handlers := handler.Handlers{
		Courses:     handler.NewCourseHandler(courseSvc, gradeSvc),
		Assignments: handler.NewAssignmentHandler(assignmentSvc),
		Grades:      handler.NewGradeHandler(gradeSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Dashboard:   handler.NewDashboardHandler(dashboardSvc),
		Metrics:     metricsHandler,
	}

	if cfg.Exports.Enabled {
		exportSvc, queue, err := startExports(ctx, cfg, stores, classifier, metricsSvc, validate, logr)
		if err != nil {
			logr.Fatal("failed to start exports", zap.Error(err))
		}
		defer queue.Stop()
		handlers.Exports = handler.NewExportHandler(exportSvc, logr)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(usercontext.Middleware(cfg.JWT.Secret))
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.ResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStores returns the configured repositories. The database handle is nil
// for the in-memory driver.
func openStores(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.Stores, *sqlx.DB, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return repository.Stores{}, nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return repository.Stores{}, nil, err
		}
		return repository.NewStores(db), db, nil
	case config.StoreMemory, "":
		store := memory.NewStore()
		if cfg.SeedDemoData {
			store.Seed(time.Now())
			logr.Info("in-memory store seeded with demo data")
		}
		return store.Stores(), nil, nil
	default:
		return repository.Stores{}, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// startExports wires the export service to its worker queue and starts the
// periodic cleanup of expired files.
func startExports(
	ctx context.Context,
	cfg *config.Config,
	stores repository.Stores,
	classifier academics.Classifier,
	metricsSvc *service.MetricsService,
	validate *validator.Validate,
	logr *zap.Logger,
) (*service.ExportService, *jobs.Queue[string], error) {
	files, err := storage.NewFileStore(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, err
	}

	exportSvc := service.NewExportService(service.ExportServiceParams{
		Jobs:        memory.NewExportJobStore(),
		Files:       files,
		Signer:      storage.NewSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		Courses:     stores.Courses,
		Assignments: stores.Assignments,
		Grades:      stores.Grades,
		Classifier:  classifier,
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
		Config: service.ExportServiceConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		},
	})

	queue := jobs.New[string]("exports", exportSvc.Process, jobs.Options[string]{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
		OnGiveUp: func(task jobs.Task[string], err error) {
			exportSvc.Fail(context.Background(), task.Payload, err)
		},
	})
	queue.Start(ctx)
	exportSvc.SetQueue(queue)
	metricsSvc.WatchQueue("exports", queue.Stats)

	interval := cfg.Exports.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := exportSvc.Cleanup(ctx); err != nil {
					logr.Warn("export cleanup failed", zap.Error(err))
				}
			}
		}
	}()

	return exportSvc, queue, nil
}
