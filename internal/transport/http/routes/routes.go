package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/plateful/restaurant-review-api/internal/infra/config"
	"github.com/plateful/restaurant-review-api/internal/infra/security"
	"github.com/plateful/restaurant-review-api/internal/transport/http/handlers"
	"github.com/plateful/restaurant-review-api/internal/transport/http/middleware"
	"github.com/plateful/restaurant-review-api/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Users       *usecase.UserService
	Restaurants *usecase.RestaurantService
	Reviews     *usecase.ReviewService
	Favorites   *usecase.FavoriteService
	Images      *usecase.ImageService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Tokens      *security.TokenService
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Config != nil && len(deps.Config.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	}

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else if deps.Logger != nil {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	}

	// Probes and metrics are registered before the auth middleware so
	// they stay reachable without a token.
	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.Authenticate(middleware.NewPathClassifier(), deps.Tokens, deps.Services.Users))

	userHandler := handlers.NewUserHandler(deps.Services.Users)
	userHandler.RegisterRoutes(r.Group("/users"),
		rateLimitGuards(deps, "register", registerLimit(deps)),
		rateLimitGuards(deps, "login", loginLimit(deps)))

	restaurantHandler := handlers.NewRestaurantHandler(deps.Services.Restaurants, deps.Services.Favorites, deps.Services.Users)
	restaurantHandler.RegisterRoutes(r.Group("/restaurants"))

	reviewHandler := handlers.NewReviewHandler(deps.Services.Reviews)
	reviewHandler.RegisterRoutes(r.Group("/reviews"))

	imageHandler := handlers.NewImageHandler(deps.Services.Images)
	imageHandler.RegisterRoutes(r.Group("/images"))

	return r
}

func loginLimit(deps Dependencies) int {
	if deps.Config == nil {
		return 0
	}
	return deps.Config.RateLimit.LoginMaxAttempts
}

func registerLimit(deps Dependencies) int {
	if deps.Config == nil {
		return 0
	}
	return deps.Config.RateLimit.RegisterMaxAttempts
}

func rateLimitGuards(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		return nil
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
