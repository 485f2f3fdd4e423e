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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ElCzar/secchub-backend-sub001/api/swagger"
	"github.com/ElCzar/secchub-backend-sub001/internal/handler"
	"github.com/ElCzar/secchub-backend-sub001/internal/middleware"
	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	"github.com/ElCzar/secchub-backend-sub001/internal/repository"
	"github.com/ElCzar/secchub-backend-sub001/internal/service"
	"github.com/ElCzar/secchub-backend-sub001/pkg/cache"
	"github.com/ElCzar/secchub-backend-sub001/pkg/config"
	"github.com/ElCzar/secchub-backend-sub001/pkg/database"
	"github.com/ElCzar/secchub-backend-sub001/pkg/logger"
	corsmiddleware "github.com/ElCzar/secchub-backend-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/ElCzar/secchub-backend-sub001/pkg/middleware/requestid"
)

// @title SecChub Planning API
// @version 1.0.0
// @description Academic planning: semesters, classes, classroom conflicts and teacher assignments.
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

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	readiness := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	var metricsService *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsService = service.NewMetricsService()
	}

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, semester cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Planning.SemesterCacheTTL, logr, cfg.Planning.SemesterCacheEnabled)

	validate := validator.New()

	semesterRepo := repository.NewSemesterRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	classRepo := repository.NewClassRepository(db)
	scheduleRepo := repository.NewClassScheduleRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	assignmentRepo := repository.NewTeacherAssignmentRepository(db)

	authService := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	actorService := service.NewActorService(sectionRepo, teacherRepo, logr)
	semesterService := service.NewSemesterService(semesterRepo, sectionRepo, db, cacheService, cfg.Planning.SemesterCacheTTL, validate, logr).WithMetrics(metricsService)
	scopeService := service.NewScopeService(courseRepo, classRepo, cfg.Planning.ScopeFilterConcurrency, logr)
	conflictService := service.NewConflictService(scheduleRepo, scopeService, logr).WithMetrics(metricsService)
	classService := service.NewClassService(classRepo, scheduleRepo, courseRepo, semesterService, scopeService, conflictService, db, validate, logr)
	exportService := service.NewExportService(nil, nil, logr)
	workloadService := service.NewWorkloadService(assignmentRepo, teacherRepo, classRepo, semesterService, scopeService, exportService, logr)
	assignmentService := service.NewTeacherAssignmentService(assignmentRepo, classRepo, teacherRepo, semesterService, scopeService, workloadService, validate, logr).WithMetrics(metricsService)
	duplicationService := service.NewDuplicationService(classRepo, scheduleRepo, semesterService, scopeService, db, logr).WithMetrics(metricsService)

	semesterHandler := handler.NewSemesterHandler(semesterService)
	classHandler := handler.NewClassHandler(classService)
	scheduleHandler := handler.NewScheduleHandler(classService, conflictService, semesterService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	workloadHandler := handler.NewWorkloadHandler(workloadService)
	planningHandler := handler.NewPlanningHandler(duplicationService)
	metricsHandler := handler.NewMetricsHandler(metricsService, readiness)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}
	if cfg.Swagger.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	planners := middleware.RequireRoles(models.RoleAdmin, models.RoleSection)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleSection, models.RoleTeacher)
	admins := middleware.RequireRoles(models.RoleAdmin)
	deciders := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authService))

	semesters := api.Group("/semesters")
	semesters.GET("", semesterHandler.List)
	semesters.GET("/current", semesterHandler.Current)
	semesters.GET("/past", semesterHandler.Past)
	semesters.GET("/:id", semesterHandler.Get)
	semesters.POST("", admins, semesterHandler.Create)

	scoped := api.Group("")
	scoped.Use(middleware.ResolveActor(actorService))

	classes := scoped.Group("/classes")
	classes.GET("", staff, classHandler.List)
	classes.GET("/current", staff, classHandler.Current)
	classes.GET("/without-teacher", planners, classHandler.WithoutTeacher)
	classes.GET("/without-classroom", planners, classHandler.WithoutClassroom)
	classes.POST("", planners, classHandler.Create)
	classes.GET("/:id", staff, classHandler.Get)
	classes.PUT("/:id", planners, classHandler.Update)
	classes.DELETE("/:id", planners, classHandler.Delete)
	classes.GET("/:id/schedules", staff, classHandler.ListSchedules)
	classes.POST("/:id/schedules", planners, classHandler.AddSchedule)
	classes.GET("/:id/assignments", staff, assignmentHandler.ListForClass)
	classes.GET("/:id/available-teachers", planners, workloadHandler.AvailableTeachers)

	schedules := scoped.Group("/schedules")
	schedules.GET("/conflicts", planners, scheduleHandler.Conflicts)
	schedules.GET("/conflicts/classrooms", planners, scheduleHandler.ClassroomConflicts)
	schedules.GET("/conflicts/teachers", planners, scheduleHandler.TeacherConflicts)
	schedules.PUT("/:id", planners, scheduleHandler.Update)
	schedules.DELETE("/:id", planners, scheduleHandler.Delete)

	assignments := scoped.Group("/assignments")
	assignments.POST("", planners, assignmentHandler.Create)
	assignments.GET("", staff, assignmentHandler.List)
	assignments.GET("/pending", staff, assignmentHandler.Pending)
	assignments.GET("/:id", staff, assignmentHandler.Get)
	assignments.PUT("/:id", planners, assignmentHandler.Update)
	assignments.DELETE("/:id", planners, assignmentHandler.Delete)
	assignments.PATCH("/:id/accept", deciders, assignmentHandler.Accept)
	assignments.PATCH("/:id/reject", deciders, assignmentHandler.Reject)
	assignments.PATCH("/:id/teaching-dates", planners, assignmentHandler.TeachingDates)

	teachers := scoped.Group("/teachers")
	teachers.GET("/:id/assignments", staff, assignmentHandler.ListForTeacher)
	teachers.DELETE("/:id/classes/:classId", planners, assignmentHandler.DeleteByTeacherAndClass)
	teachers.GET("/:id/workload", planners, workloadHandler.Teacher)
	teachers.POST("/:id/extra-hours-warning", planners, workloadHandler.ExtraHoursWarning)

	scoped.GET("/workload/report", planners, workloadHandler.Report)

	planning := scoped.Group("/planning", planners)
	planning.GET("/preview/:semesterId", planningHandler.Preview)
	planning.POST("/duplicate", planningHandler.Duplicate)
	planning.POST("/duplicate/selected", planningHandler.DuplicateSelected)
	planning.POST("/apply/:semesterId", planningHandler.Apply)

	api.GET("/metrics/summary", admins, metricsHandler.Summary)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
