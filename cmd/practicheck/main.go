package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/practicheck/practicheck/internal/app"
	"github.com/practicheck/practicheck/internal/assessments"
	"github.com/practicheck/practicheck/internal/auth"
	"github.com/practicheck/practicheck/internal/courses"
	"github.com/practicheck/practicheck/internal/faculties"
	"github.com/practicheck/practicheck/internal/lecturers"
	"github.com/practicheck/practicheck/internal/logbook"
	"github.com/practicheck/practicheck/internal/platform/cache"
	"github.com/practicheck/practicheck/internal/platform/db"
	"github.com/practicheck/practicheck/internal/shared"
	"github.com/practicheck/practicheck/internal/students"
	"github.com/practicheck/practicheck/internal/tenants"
	"github.com/practicheck/practicheck/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, directory cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	audit := shared.NewActivityLogger(pool)
	notify := shared.NewNotificationStore(pool)
	hasher := auth.NewHasher(cfg.BcryptCost)
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, hasher, tokenService, jobClient, audit, logger)
	authHandler := auth.NewHandler(logger, authService, app.LoginRateLimiter(cfg))

	tenantRepo := tenants.NewRepository(pool)
	directory := tenants.NewDirectory(tenantRepo, redisClient, cfg.DirectoryCacheTTL, logger)
	tenantService := tenants.NewService(tenantRepo, directory, audit, logger)
	tenantHandler := tenants.NewHandler(logger, tenantService, directory)

	facultyService := faculties.NewService(faculties.NewRepository(pool), hasher, jobClient, directory, audit, logger)
	facultyHandler := faculties.NewHandler(logger, facultyService)

	courseService := courses.NewService(courses.NewRepository(pool), directory, audit, logger)
	courseHandler := courses.NewHandler(logger, courseService)

	studentService := students.NewService(students.NewRepository(pool), jobClient, audit, logger)
	studentHandler := students.NewHandler(logger, studentService)

	lecturerService := lecturers.NewService(lecturers.NewRepository(pool), hasher, jobClient, audit, logger)
	lecturerHandler := lecturers.NewHandler(logger, lecturerService)

	assessmentService := assessments.NewService(assessments.NewRepository(pool), notify, audit, logger)
	assessmentHandler := assessments.NewHandler(logger, assessmentService)

	logbookService := logbook.NewService(logbook.NewRepository(pool), audit, logger)
	logbookHandler := logbook.NewHandler(logger, logbookService)

	jobHandler := jobs.NewHandler(asynq.NewInspector(redisOpts), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthService:       authService,
		AuthHandler:       authHandler,
		TenantHandler:     tenantHandler,
		FacultyHandler:    facultyHandler,
		CourseHandler:     courseHandler,
		StudentHandler:    studentHandler,
		LecturerHandler:   lecturerHandler,
		AssessmentHandler: assessmentHandler,
		LogbookHandler:    logbookHandler,
		JobHandler:        jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
