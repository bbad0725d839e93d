package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/internal/config"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit-platform/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/handler"
	"github.com/shareit-platform/service-booking/internal/repository"
	"github.com/shareit-platform/service-booking/internal/repository/memory"
	"github.com/shareit-platform/service-booking/pkg/database"
	"github.com/shareit-platform/service-booking/pkg/health"
	"github.com/shareit-platform/service-booking/pkg/kafka"
	"github.com/shareit-platform/service-booking/pkg/logger"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
	)

	// Initialize repositories
	var (
		db          *gorm.DB
		bookingRepo bookingDomain.BookingRepository
		itemRepo    itemDomain.ItemRepository
		commentRepo commentDomain.CommentRepository
		requestRepo requestDomain.ItemRequestRepository
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		bookingRepo, itemRepo, commentRepo = store.Bookings(), store.Items(), store.Comments()
		requestRepo = store.Requests()
		log.Warn("using in-memory storage, data is lost on restart")
	default:
		db = connectDatabase(cfg, log)
		bookingRepo = repository.NewGormBookingRepository(db)
		itemRepo = repository.NewGormItemRepository(db)
		commentRepo = repository.NewGormCommentRepository(db)
		requestRepo = repository.NewGormRequestRepository(db)
	}

	// Wrap the item repository with the owned-items cache when Redis is configured
	if cfg.RedisConfig.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, cache will fall back to storage", zap.Error(err))
		}
		pingCancel()

		itemRepo = repository.NewCachedItemRepository(itemRepo, rdb, cfg.RedisConfig.TTL, log)
		log.Info("owned-items cache enabled", zap.String("addr", cfg.RedisConfig.Addr))
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize application services
	projector := application.NewAvailabilityProjector(bookingRepo, itemRepo)
	bookingService := application.NewBookingService(bookingRepo, itemRepo, kafkaProducer, application.SystemClock, log)
	itemService := application.NewItemService(itemRepo, commentRepo, requestRepo, projector, application.SystemClock, log)
	commentService := application.NewCommentService(commentRepo, itemRepo, bookingRepo, application.SystemClock, log)
	requestService := application.NewRequestService(requestRepo, itemRepo, application.SystemClock, log)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterConfig{
		Logger:         log,
		Bookings:       handler.NewBookingHandler(bookingService),
		Items:          handler.NewItemHandler(itemService, commentService),
		Requests:       handler.NewRequestHandler(requestService),
		Health:         health.NewHandler(db, serviceName),
		RequestsPerMin: cfg.RateLimit.RequestsPerMinute,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// connectDatabase opens PostgreSQL and brings the schema up to date: GORM
// auto-migration in development, versioned SQL migrations elsewhere.
func connectDatabase(cfg *config.ServiceConfig, log *zap.Logger) *gorm.DB {
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.RequestModel{}, &repository.ItemModel{}, &repository.BookingModel{}, &repository.CommentModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
		return db
	}

	if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	return db
}
