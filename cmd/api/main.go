package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobboard-backend/config"
	_ "go-jobboard-backend/docs" // Important for Swagger
	"go-jobboard-backend/internal/delivery/http/middleware"
	v1 "go-jobboard-backend/internal/delivery/http/v1"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/repository/postgres"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/auth"
	"go-jobboard-backend/pkg/database"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/redis"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"
	"go-jobboard-backend/pkg/storage"
	"go-jobboard-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Job Board API
// @version         1.0
// @description     Job board backend: accounts, job postings, candidate and recruiter profiles, applications.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting job board backend", "port", cfg.Port, "env", cfg.AppEnv)

	secLogger := security.NewSecurityLogger("jobboard-api", cfg.AppEnv)
	defer func() { _ = secLogger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	var redisPinger usecase.Pinger
	redisClient, err = redis.New(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		logger.Log.Warn("Redis not configured - rate limiting is per-process and login lockout is off")
	case err != nil:
		logger.Log.Error("Failed to connect to redis, continuing without it", "error", err)
		redisClient = nil
	default:
		defer redisClient.Close()
		redisPinger = redis.Pinger{Client: redisClient}
	}

	// 5. Setup Resume Storage (optional)
	var resumes domain.ResumeStore
	if cfg.ResumeStorageConfigured() {
		s3Client, err := storage.NewS3Client(ctx, storage.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			logger.Log.Error("Failed to configure resume storage", "error", err)
			os.Exit(1)
		}
		resumes = storage.NewS3ResumeStore(s3Client, cfg.S3Bucket)
	} else {
		logger.Log.Warn("Resume storage not configured - resume uploads will answer 503")
	}

	// 6. Setup Auth primitives
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		logger.Log.Error("Invalid JWT configuration", "error", err)
		os.Exit(1)
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	// 7. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	recruiterRepo := postgres.NewRecruiterRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)

	// 8. Setup UseCases
	validate := validation.New()
	authUC := usecase.NewAuthUsecase(userRepo, hasher, tokens)
	jobUC := usecase.NewJobUsecase(jobRepo, recruiterRepo)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, resumes, validate)
	recruiterUC := usecase.NewRecruiterUsecase(recruiterRepo, validate)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, candidateRepo, recruiterRepo,
		domain.NewTransitionPolicy(cfg.StrictStatusTransitions))
	healthUC := usecase.NewHealthUsecase(dbPool, redisPinger)

	// 9. Setup Security middleware state
	loginTracker := security.NewLoginTracker(redisClient, security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		UseIPTracking: true,
	}, secLogger)
	rateLimiter := middleware.NewRateLimiter(redisClient, secLogger)
	rateLimiter.StartCleanup(ctx, 5*time.Minute)
	uploadLimiter := security.NewUploadLimiter(redisClient, cfg.UploadMaxPerMinute, cfg.UploadMaxPerDay)

	var scanner antivirus.Scanner = antivirus.NoOpScanner{}
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAVScanner(cfg.ClamAVAddress, cfg.ClamAVTimeout)
		if !clam.Available(ctx) {
			logger.Log.Warn("clamd not reachable at startup - resume uploads will answer 503 until it is", "address", cfg.ClamAVAddress)
		}
		scanner = clam
	}

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		JobUC:         jobUC,
		CandidateUC:   candidateUC,
		RecruiterUC:   recruiterUC,
		ApplicationUC: applicationUC,
		Health:        healthUC,
		Tokens:        tokens,
		LoginGuard:    loginTracker,
		RateLimiter:   rateLimiter,
		UploadQuota:   uploadLimiter,
		Scanner:       scanner,
		SecLogger:     secLogger,
		Config:        cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
