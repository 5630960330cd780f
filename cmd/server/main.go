package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JJulme/manito/internal/config"
	"github.com/JJulme/manito/internal/googleauth"
	"github.com/JJulme/manito/internal/handler"
	appLogger "github.com/JJulme/manito/internal/logger"
	"github.com/JJulme/manito/internal/messaging"
	"github.com/JJulme/manito/internal/middleware"
	"github.com/JJulme/manito/internal/repository"
	"github.com/JJulme/manito/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := appLogger.New(appLogger.Config{
		Level:        cfg.Log.Level,
		Encoding:     cfg.Log.Encoding,
		Service:      "manito-notifier",
		RedactTokens: cfg.Log.RedactTokens,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	logger.Info("Logger initialized", zap.String("level", cfg.Log.Level), zap.String("env", cfg.Env))

	ctx := context.Background()

	pool, err := setupPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	profileRepo := repository.NewPgProfileRepository(pool, logger)
	missionRepo := repository.NewPgMissionRepository(pool, logger)
	resolver := service.NewRecipientResolver(profileRepo, missionRepo, logger)

	httpClient := &http.Client{Timeout: cfg.FCM.Timeout}

	sender, redisClient, err := setupSender(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notification sender", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	router := service.NewEventRouter(resolver, sender, logger)

	// --- Queue intake (optional) ---
	var consumer *messaging.Consumer
	consumerErrChan := make(chan error, 1)
	if cfg.RabbitMQ.URI != "" {
		rabbitConn, err := connectRabbitMQ(cfg.RabbitMQ.URI, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		processor := messaging.NewProcessor(logger, router)
		consumer = messaging.NewConsumer(rabbitConn, logger, cfg.RabbitMQ.Queue, cfg.RabbitMQ.Concurrency, processor)
		go func() {
			consumerErrChan <- consumer.Start()
		}()
	} else {
		logger.Info("RABBITMQ_URI not set, queue intake disabled")
	}

	// --- HTTP server ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}
	engine := gin.New()
	engine.Use(middleware.GinZapLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/health", handler.Health)
	engine.HEAD("/health", handler.Health)

	var verifier *handler.WebhookVerifier
	if cfg.Webhook.JWTSecret != "" {
		verifier, err = handler.NewWebhookVerifier(cfg.Webhook.JWTSecret, logger)
		if err != nil {
			logger.Fatal("Failed to create webhook verifier", zap.Error(err))
		}
	} else {
		logger.Warn("WEBHOOK_JWT_SECRET not set, webhook calls are not authenticated")
	}

	notificationHandler := handler.NewNotificationHandler(router, routeStyles(cfg.Responses), verifier, logger)
	notificationHandler.RegisterRoutes(engine)

	// registered after the routes so every route is instrumented
	p := ginprometheus.NewPrometheus("gin")
	p.Use(engine)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("Shutdown signal received")
	case err := <-consumerErrChan:
		logger.Error("Consumer exited, shutting down", zap.Error(err))
		consumer = nil
	}

	if consumer != nil {
		consumer.Stop()
		if err := <-consumerErrChan; err != nil {
			logger.Error("Consumer stopped with error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

func routeStyles(cfg config.ResponsesConfig) handler.RouteStyles {
	return handler.RouteStyles{
		Comment:        handler.ResponseStyle(cfg.CommentStyle),
		FriendRequest:  handler.ResponseStyle(cfg.FriendRequestStyle),
		MissionPropose: handler.ResponseStyle(cfg.MissionProposeStyle),
		MissionsUpdate: handler.ResponseStyle(cfg.MissionsUpdateStyle),
		Events:         handler.ResponseStyle(cfg.EventsStyle),
	}
}

// setupSender returns a stub sender when no credentials are configured.
// The redis client is non-nil only when the redis token cache is in use.
func setupSender(ctx context.Context, cfg *config.Config, client *http.Client, logger *zap.Logger) (service.Sender, *redis.Client, error) {
	if cfg.FCM.CredentialsPath == "" {
		logger.Warn("FCM_CREDENTIALS_PATH not set, using stub sender")
		return service.NewStubSender(logger), nil, nil
	}

	cred, err := googleauth.LoadCredentialsFile(cfg.FCM.CredentialsPath)
	if err != nil {
		return nil, nil, err
	}

	var tokens googleauth.TokenProvider = googleauth.NewJWTProvider(client, cfg.FCM.TokenURI, logger)

	var redisClient *redis.Client
	if cfg.Auth.Cache.Enabled {
		var store googleauth.TokenStore
		switch cfg.Auth.Cache.Driver {
		case config.CacheDriverRedis:
			redisClient, err = setupRedis(ctx, cfg.Auth.Cache, logger)
			if err != nil {
				return nil, nil, err
			}
			store = googleauth.NewRedisTokenStore(redisClient, logger)
		default:
			store = googleauth.NewMemoryTokenStore()
		}
		tokens = googleauth.NewCachingProvider(tokens, store, cfg.Auth.Cache.Skew, logger)
		logger.Info("Access token cache enabled", zap.String("driver", cfg.Auth.Cache.Driver), zap.Duration("skew", cfg.Auth.Cache.Skew))
	}

	switch cfg.FCM.Driver {
	case config.FCMDriverSDK:
		sender, err := service.NewFCMSDKSender(ctx, cred, tokens, logger)
		return sender, redisClient, err
	default:
		logger.Info("FCM HTTP sender initialized", zap.String("project_id", cred.ProjectID), zap.String("endpoint", cfg.FCM.Endpoint))
		return service.NewFCMHTTPSender(client, cfg.FCM.Endpoint, cred, tokens, logger), redisClient, nil
	}
}

// setupPostgres creates the pool and pings it, retrying while the database starts.
func setupPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Database.MaxConns
	}

	const maxRetries = 20
	retryDelay := 3 * time.Second
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err == nil {
			err = pool.Ping(connectCtx)
			if err != nil {
				pool.Close()
			}
		}
		cancel()
		if err == nil {
			logger.Info("Connected to PostgreSQL", zap.Int("attempt", attempt))
			return pool, nil
		}

		lastErr = err
		logger.Warn("PostgreSQL connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, lastErr)
}

func setupRedis(ctx context.Context, cfg config.TokenCacheConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("Connected to Redis", zap.String("address", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return client, nil
}

// connectRabbitMQ retries while the broker starts.
func connectRabbitMQ(uri string, logger *zap.Logger) (*amqp.Connection, error) {
	const maxRetries = 20
	retryDelay := 5 * time.Second

	var err error
	for i := 0; i < maxRetries; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Connected to RabbitMQ")
			go func() {
				closeErr := <-conn.NotifyClose(make(chan *amqp.Error, 1))
				if closeErr != nil {
					logger.Error("RabbitMQ connection closed", zap.Error(closeErr))
				}
			}()
			return conn, nil
		}
		logger.Warn("RabbitMQ connection failed, retrying...",
			zap.Error(err),
			zap.Int("retry", i+1),
			zap.Duration("delay", retryDelay),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}
