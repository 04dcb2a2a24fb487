package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/xavierspacelix/jamming/internal/config"
	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/internal/handler"
	"github.com/xavierspacelix/jamming/internal/hub"
	"github.com/xavierspacelix/jamming/internal/ratelimit"
	"github.com/xavierspacelix/jamming/internal/repository"
	"github.com/xavierspacelix/jamming/internal/search"
	"github.com/xavierspacelix/jamming/internal/service"
	"github.com/xavierspacelix/jamming/pkg/database"
	pkglog "github.com/xavierspacelix/jamming/pkg/log"
	"github.com/xavierspacelix/jamming/pkg/pubsub"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "jamming",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db, &domain.RoomModel{}, &domain.EntryModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repositories
	roomRepo := repository.NewGormRoomRepository(db)
	queueRepo := repository.NewGormQueueRepository(db)

	// Shared redis client for the search cache and rate limiter
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	cancel()
	defer redisClient.Close()
	logger.Info().Msg("redis connected")

	// Broadcast hub, optionally bridged to an external bus for
	// multi-process fan-out
	broadcastHub := hub.New(cfg.Stream.SubscriberBuffer)
	defer broadcastHub.Close()

	var broadcaster service.Broadcaster = broadcastHub
	var streamer handler.Streamer = broadcastHub
	if cfg.Bus.Enabled {
		bus, err := pubsub.NewPubSub(cfg.Bus)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to event bus")
		}
		defer bus.Close()

		bridge := hub.NewBridge(ctx, broadcastHub, bus)
		broadcaster = bridge
		streamer = bridge
		logger.Info().Str("driver", cfg.Bus.Driver).Msg("event bus bridge enabled")
	}

	// Initialize services
	roomService := service.NewRoomService(roomRepo, queueRepo)
	queueService := service.NewQueueService(roomRepo, queueRepo, broadcaster, cfg.Queue.StrictReorder)

	// Media search with redis cache
	var searcher search.MediaSearcher = search.NewCachedSearcher(
		search.NewYouTubeClient(cfg.Search.YouTubeAPIKey, ""),
		redisClient,
		cfg.Search.CachePrefix,
		cfg.Search.CacheTTL,
	)

	// Rate limiting on mutation endpoints
	var limit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Prefix, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		limit = limiter.Middleware()
	}

	// Initialize HTTP handlers
	httpHandler := handler.NewHandler(roomService, queueService, searcher, limit)
	streamHandler := handler.NewStreamHandler(streamer, queueService, cfg.Stream.HeartbeatInterval)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.Use(handler.GuestMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	httpHandler.RegisterRoutes(r)
	streamHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("jamming starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server exited")
}
