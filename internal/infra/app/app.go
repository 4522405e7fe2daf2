package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/infra/config"
	"github.com/plateful/restaurant-review-api/internal/infra/database"
	kafkainfra "github.com/plateful/restaurant-review-api/internal/infra/kafka"
	"github.com/plateful/restaurant-review-api/internal/infra/logger"
	redisinfra "github.com/plateful/restaurant-review-api/internal/infra/redis"
	"github.com/plateful/restaurant-review-api/internal/infra/security"
	"github.com/plateful/restaurant-review-api/internal/infra/storage"
	postgresrepo "github.com/plateful/restaurant-review-api/internal/repository/postgres"
	redisrepo "github.com/plateful/restaurant-review-api/internal/repository/redis"
	"github.com/plateful/restaurant-review-api/internal/transport/http/middleware"
	"github.com/plateful/restaurant-review-api/internal/transport/http/routes"
	"github.com/plateful/restaurant-review-api/internal/usecase"
)

// Application owns the long-lived infrastructure of the API process.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	blobs    *storage.GCSBlobStore
}

// New wires configuration, infrastructure, repositories, services and
// the HTTP engine into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	tokens, err := security.NewTokenService(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token service: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			app.producer = producer
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var blobStore port.BlobStore
	if cfg.Storage.Bucket != "" {
		gcs, err := storage.NewGCSBlobStore(ctx, cfg.Storage.Bucket, log)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("init blob store: %w", err)
		}
		app.blobs = gcs
		blobStore = gcs
	} else {
		log.Warn("storage bucket not configured, image uploads disabled")
	}

	repos := postgresrepo.NewRepositories(pool)

	ratingCache := redisrepo.NewRatingCacheRepository(redisClient.Client(), redisrepo.RatingCacheConfig{
		KeyPrefix: cfg.Redis.RatingKeyPrefix,
		TTL:       cfg.Redis.RatingTTL,
	})

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "plateful:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	ratingService := usecase.NewRatingService(repos.Reviews, repos.Restaurants, ratingCache, log)
	imageService := usecase.NewImageService(blobStore, cfg.Upload.MaxImageBytes)

	userService := usecase.NewUserService(repos.Users, repos.Reviews, repos.Restaurants, repos.Favorites, tokens, eventPublisher, log)
	restaurantService := usecase.NewRestaurantService(repos.Restaurants, repos.Reviews, repos.Likes, repos.Favorites, ratingService, imageService, eventPublisher, log)
	reviewService := usecase.NewReviewService(repos.Reviews, repos.Restaurants, repos.Likes, ratingService, imageService, eventPublisher, log)
	favoriteService := usecase.NewFavoriteService(repos.Favorites, repos.Restaurants, log)

	app.engine = routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Tokens:      tokens,
		RateLimiter: rateLimiter,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Users:       userService,
			Restaurants: restaurantService,
			Reviews:     reviewService,
			Favorites:   favoriteService,
			Images:      imageService,
		},
	})

	return app, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.close()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting restaurant review API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func (a *Application) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.blobs != nil {
		if err := a.blobs.Close(); err != nil {
			a.logger.Warn("close blob store", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
