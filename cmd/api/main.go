package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/acadease/backend/pkg/validator"

	"github.com/acadease/backend/internal/adapter/handler"
	"github.com/acadease/backend/internal/infrastructure/cache"
	classroominfra "github.com/acadease/backend/internal/infrastructure/external/classroom"
	"github.com/acadease/backend/internal/infrastructure/external/gateway"
	"github.com/acadease/backend/internal/infrastructure/storage"
	authuse "github.com/acadease/backend/internal/usecase/auth"
	classroomuse "github.com/acadease/backend/internal/usecase/classroom"
	"github.com/acadease/backend/internal/usecase/extract"
	taskuse "github.com/acadease/backend/internal/usecase/task"
	pkgai "github.com/acadease/backend/pkg/ai"
	"github.com/acadease/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	log.Println("🔧 Initializing dependencies...")

	// State and token store: Redis when available, in-process otherwise
	var store cache.Store
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		log.Println("📦 Redis disabled, using in-memory store")
		store = cache.NewMemoryStore()
	}

	// Remote data gateway
	log.Println("🌐 Initializing data gateway client...")
	gatewayClient := gateway.NewClient(&cfg.Gateway)

	// Optional media staging storage
	var mediaStore *storage.MediaStore
	if cfg.Storage.Enabled {
		log.Println("🗄️  Initializing media staging storage...")
		mediaStore, err = storage.NewMediaStore(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize media storage: %v", err)
		}
		sweeper := storage.NewSweeper(mediaStore, cfg.Storage.StagingTTL, logger)
		sweeper.Start()
		defer sweeper.Stop()
	}

	// AI pipeline clients
	log.Println("🤖 Initializing AI components...")
	speechClient := pkgai.NewSpeechClient(&cfg.Assembly)
	llmClient := pkgai.NewOpenRouterClient(&cfg.OpenRouter)
	extractService := extract.NewExtractService(speechClient, llmClient, mediaStore, logger)

	// Auth service with state change notifications
	log.Println("🔐 Initializing auth service...")
	notifier := authuse.NewNotifier()
	authService := authuse.NewAuthService(gatewayClient, notifier, logger)

	// Task service
	taskService := taskuse.NewTaskService(gatewayClient, &cfg.Gateway, logger)

	// Classroom import flow
	log.Println("🏫 Initializing classroom import...")
	googleProvider := classroominfra.NewGoogleProvider(&cfg.Google)
	stateManager := classroominfra.NewStateManager(store)
	tokenStore := classroominfra.NewTokenStore(store)
	classroomManager := classroomuse.NewManager(googleProvider, stateManager, tokenStore, taskService, notifier, logger)

	// Handlers and routes
	log.Println("🛣️  Setting up routes...")
	authHandler := handler.NewAuth(authService, logger)
	taskHandler := handler.NewTask(taskService, logger)
	aiHandler := handler.NewAI(extractService, taskService, logger)
	classroomHandler := handler.NewClassroom(classroomManager, authService, logger)

	router := handler.NewRouter(cfg, authHandler, taskHandler, aiHandler, classroomHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
