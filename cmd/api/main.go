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

	"go-recruitment-platform/config"
	_ "go-recruitment-platform/docs" // Important for Swagger
	"go-recruitment-platform/internal/cache"
	"go-recruitment-platform/internal/delivery/http/middleware"
	v1 "go-recruitment-platform/internal/delivery/http/v1"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/internal/repository/document"
	"go-recruitment-platform/internal/repository/memory"
	mongorepo "go-recruitment-platform/internal/repository/mongo"
	"go-recruitment-platform/internal/repository/postgres"
	"go-recruitment-platform/internal/usecase"
	"go-recruitment-platform/pkg/antivirus"
	"go-recruitment-platform/pkg/audit"
	"go-recruitment-platform/pkg/auth"
	"go-recruitment-platform/pkg/database"
	"go-recruitment-platform/pkg/logger"
	"go-recruitment-platform/pkg/redis"
	"go-recruitment-platform/pkg/storage"
)

// @title           Recruitment Platform API
// @version         1.0
// @description     Job board and applicant tracking backend.
// @host            localhost:8080
// @BasePath        /v1
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
	logger.Init()
	logger.Log.Info("Starting recruitment platform", "port", cfg.Port, "document_store", cfg.DocumentStore)

	auditLog := audit.New("recruitment-platform", cfg.AuditLogPath)
	defer auditLog.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 3. Setup Document Store
	store, closeStore, err := openDocumentStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open document store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 4. Setup Cache
	var cacheStore domain.CacheStore = cache.NewMemoryStore()
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory cache", "error", err)
		} else {
			cacheStore = redis.NewStore(redis.Client(), cfg.CacheInstanceName)
			defer redis.Close()
		}
	}
	cacheManager := cache.NewManager(cacheStore, cache.Config{
		JobsTTL:             cfg.JobsCacheTTL,
		PendingCompaniesTTL: cfg.PendingCompaniesCacheTTL,
		EntityTTL:           cfg.EntityCacheTTL,
	}, logger.Log)

	// 5. Setup File Storage
	var files domain.FileStorage
	if cfg.S3Bucket != "" {
		s3, err := storage.NewS3Storage(ctx, storage.Config{
			Provider:        storage.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Log.Error("Failed to configure file storage", "error", err)
			os.Exit(1)
		}
		files = s3
	} else {
		logger.Log.Warn("S3_BUCKET not set - uploads will be unavailable")
	}

	// 6. Setup Repositories
	jobRepo := document.NewJobRepository(store)
	userRepo := document.NewUserRepository(store)

	// 7. Setup UseCases
	userUC := usecase.NewUserUsecase(userRepo, cacheManager)
	jobUC := usecase.NewJobUsecase(jobRepo, userRepo, cacheManager, auditLog)
	applicationUC := usecase.NewApplicationUsecase(jobRepo, userRepo, auditLog)
	companyUC := usecase.NewCompanyUsecase(userRepo, userUC, cacheManager, auditLog)
	var uploadOpts []usecase.UploadOption
	if cfg.ClamAVAddress != "" {
		scanner := antivirus.NewClamAVScanner(cfg.ClamAVAddress, cfg.ClamAVTimeout)
		if scanner.Available(ctx) {
			logger.Log.Info("Upload scanning enabled", "scanner", scanner.Name(), "address", cfg.ClamAVAddress)
		} else {
			logger.Log.Warn("clamd not reachable, uploads will fail until it is", "address", cfg.ClamAVAddress)
		}
		uploadOpts = append(uploadOpts, usecase.WithScanner(scanner))
	} else if cfg.GinMode == "release" {
		logger.Log.Warn("CLAMAV_ADDRESS not set - uploads are not scanned for malware")
	}
	uploadUC := usecase.NewUploadUsecase(files, cfg.UploadMaxBytes, auditLog, uploadOpts...)
	healthUC := usecase.NewHealthUsecase(store, cacheStore)

	// 8. Setup Auth
	var jwksProvider *auth.Provider
	if cfg.JWKSUrl != "" {
		jwksProvider = auth.NewProvider(cfg.JWKSUrl)
	}
	authenticator := middleware.NewAuthenticator(cfg.JWTSecret, jwksProvider, userUC, auditLog)

	rateLimiter := middleware.NewRateLimiter(redis.Client(), auditLog)
	go rateLimiter.Cleanup(ctx, 5*time.Minute)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		JobUC:         jobUC,
		ApplicationUC: applicationUC,
		CompanyUC:     companyUC,
		UserUC:        userUC,
		UploadUC:      uploadUC,
		HealthUC:      healthUC,
		Auth:          authenticator,
		RateLimiter:   rateLimiter,
		Config:        cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			cancel()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// openDocumentStore connects the configured backend and prepares its schema.
func openDocumentStore(ctx context.Context, cfg *config.Config) (domain.DocumentStore, func(), error) {
	switch cfg.DocumentStore {
	case config.StoreMongo:
		client, db, err := database.NewMongoConnection(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		store := mongorepo.NewDocumentStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Log.Warn("Failed to ensure mongo indexes", "error", err)
		}
		return store, func() { _ = client.Disconnect(context.Background()) }, nil

	case config.StoreMemory:
		return memory.NewDocumentStore(), func() {}, nil

	default:
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewDocumentStore(pool)
		if err := store.Migrate(ctx, domain.CollectionJobs, domain.CollectionUsers); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	}
}
