package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/horunap/timetable-api/api/swagger"
	"github.com/horunap/timetable-api/internal/handler"
	"github.com/horunap/timetable-api/internal/middleware"
	"github.com/horunap/timetable-api/internal/models"
	"github.com/horunap/timetable-api/internal/repository"
	"github.com/horunap/timetable-api/internal/service"
	"github.com/horunap/timetable-api/pkg/cache"
	"github.com/horunap/timetable-api/pkg/config"
	"github.com/horunap/timetable-api/pkg/database"
	"github.com/horunap/timetable-api/pkg/jobs"
	"github.com/horunap/timetable-api/pkg/logger"
	corsmiddleware "github.com/horunap/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/horunap/timetable-api/pkg/middleware/requestid"
	"github.com/horunap/timetable-api/pkg/storage"
)

// @title Timetable API
// @version 1.0.0
// @description University course scheduling service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		redisClient = nil
	}

	fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	conflictRepo := repository.NewConflictRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	locks := service.NewScheduleLocks()

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "timetable-api",
	})
	courseSvc := service.NewCourseService(courseRepo, nil, logr)
	roomSvc := service.NewRoomService(roomRepo, nil, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, userRepo, nil, logr)

	generatorSvc := service.NewGeneratorService(
		scheduleRepo,
		courseRepo,
		roomRepo,
		userRepo,
		availabilityRepo,
		assignmentRepo,
		conflictRepo,
		locks,
		metricsSvc,
		generatorConfig(cfg.Generator, logr),
		logr,
	)
	detectorSvc := service.NewDetectorService(scheduleRepo, assignmentRepo, conflictRepo, metricsSvc, logr)
	resolverSvc := service.NewResolverService(scheduleRepo, conflictRepo, roomRepo, assignmentRepo, locks, metricsSvc, logr)

	scheduleSvc := service.NewScheduleService(
		scheduleRepo,
		assignmentRepo,
		conflictRepo,
		generatorSvc,
		detectorSvc,
		resolverSvc,
		cacheRepo,
		cfg.Stats.CacheTTL,
		nil,
		logr,
	)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, courseRepo, roomRepo, userRepo, scheduleRepo, scheduleSvc, nil, logr)
	conflictSvc := service.NewConflictService(conflictRepo, scheduleSvc, logr)

	exportSvc := service.NewExportService(
		scheduleRepo,
		assignmentRepo,
		fileStore,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			Queue: jobs.QueueConfig{
				Workers:    cfg.Exports.WorkerConcurrency,
				MaxRetries: cfg.Exports.WorkerRetries,
				Logger:     logr,
			},
		},
		logr,
	)
	exportSvc.Start(context.Background())
	defer exportSvc.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/downloads", exportHandler.Download)

	auth := api.Group("")
	auth.Use(middleware.JWT(authSvc))
	{
		auth.GET("/auth/profile", authHandler.Profile)

		staff := middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator)
		anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator, models.RoleInstructor)

		courses := auth.Group("/courses")
		{
			courses.GET("", anyRole, courseHandler.List)
			courses.GET("/:id", anyRole, courseHandler.Get)
			courses.POST("", staff, courseHandler.Create)
			courses.PUT("/:id", staff, courseHandler.Update)
			courses.DELETE("/:id", staff, courseHandler.Delete)
		}

		rooms := auth.Group("/rooms")
		{
			rooms.GET("", anyRole, roomHandler.List)
			rooms.GET("/available", anyRole, roomHandler.Available)
			rooms.GET("/:id", anyRole, roomHandler.Get)
			rooms.POST("", staff, roomHandler.Create)
			rooms.PUT("/:id", staff, roomHandler.Update)
			rooms.DELETE("/:id", staff, roomHandler.Delete)
		}

		availability := auth.Group("/availability")
		{
			availability.GET("", anyRole, availabilityHandler.List)
			availability.POST("", anyRole, availabilityHandler.Create)
			availability.PUT("/bulk", anyRole, availabilityHandler.BulkReplace)
			availability.PUT("/:id", anyRole, availabilityHandler.Update)
			availability.DELETE("/:id", anyRole, availabilityHandler.Delete)
		}

		schedules := auth.Group("/schedules")
		{
			schedules.GET("", anyRole, scheduleHandler.List)
			schedules.GET("/:id", anyRole, scheduleHandler.Get)
			schedules.POST("", staff, scheduleHandler.Create)
			schedules.PUT("/:id", staff, scheduleHandler.Update)
			schedules.DELETE("/:id", staff, scheduleHandler.Delete)
			schedules.POST("/:id/generate", staff, scheduleHandler.Generate)
			schedules.POST("/:id/resolve", staff, scheduleHandler.Resolve)
			schedules.GET("/:id/stats", anyRole, scheduleHandler.Stats)
			schedules.GET("/:id/assignments", anyRole, scheduleHandler.Assignments)
			schedules.GET("/:id/conflicts", anyRole, scheduleHandler.Conflicts)
			schedules.POST("/:id/export", staff, exportHandler.Enqueue)
		}

		assignments := auth.Group("/assignments")
		{
			assignments.GET("", anyRole, assignmentHandler.List)
			assignments.GET("/:id", anyRole, assignmentHandler.Get)
			assignments.POST("", staff, assignmentHandler.Create)
			assignments.PUT("/:id", staff, assignmentHandler.Update)
			assignments.PATCH("/:id/active", staff, assignmentHandler.SetActive)
			assignments.DELETE("/:id", staff, assignmentHandler.Delete)
		}

		conflicts := auth.Group("/conflicts")
		{
			conflicts.GET("", anyRole, conflictHandler.List)
			conflicts.GET("/:id", anyRole, conflictHandler.Get)
			conflicts.POST("/:id/resolve-manual", staff, conflictHandler.ResolveManual)
		}

		auth.GET("/exports/:job_id", anyRole, exportHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// generatorConfig converts the raw day and block strings from the environment
// into typed slot vocabulary, skipping anything unparseable.
func generatorConfig(cfg config.GeneratorConfig, logr *zap.Logger) service.GeneratorConfig {
	out := service.GeneratorConfig{MaxTrials: cfg.MaxTrials, Seed: cfg.Seed}
	for _, raw := range cfg.Days {
		day, err := models.ParseWeekday(raw)
		if err != nil {
			logr.Sugar().Warnw("ignoring unknown generator day", "day", raw)
			continue
		}
		out.Days = append(out.Days, day)
	}
	for _, raw := range cfg.Blocks {
		block, err := models.ParseTimeBlock(raw)
		if err != nil {
			logr.Sugar().Warnw("ignoring unknown generator block", "block", raw)
			continue
		}
		out.Blocks = append(out.Blocks, block)
	}
	return out
}
