package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream-api/internal/config"
	"github.com/vidstream/vidstream-api/internal/handler"
	"github.com/vidstream/vidstream-api/internal/repository"
	"github.com/vidstream/vidstream-api/internal/service"
	"github.com/vidstream/vidstream-api/internal/utils"
	"github.com/vidstream/vidstream-api/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

type handlers struct {
	auth    *handler.AuthHandler
	user    *handler.UserHandler
	channel *handler.ChannelHandler
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	tokenManager := utils.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	metrics, err := observability.NewSessionMetrics(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	statsCache := service.NewChannelStatsCache(infra.Redis(), cfg.Security.StatsCacheTTL.Duration)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	sessionService := service.NewSessionService(repos.User, tokenManager, infra.Assets(), cfg.Security.BCryptCost)
	profileService := service.NewProfileService(repos.User, repos.History, infra.Assets())
	channelService := service.NewChannelService(repos.User, repos.Subscription, statsCache)

	cookies := handler.NewSessionCookies(
		tokenManager.AccessTokenExpirySeconds(),
		tokenManager.RefreshTokenExpirySeconds(),
	)

	h := handlers{
		auth:    handler.NewAuthHandler(sessionService, cookies, metrics),
		user:    handler.NewUserHandler(profileService, metrics),
		channel: handler.NewChannelHandler(channelService),
	}

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))
	router.MaxMultipartMemory = cfg.Assets.MaxUploadBytes

	setupRoutes(router, cfg, h, sessionService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h handlers,
	sessions service.SessionService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	credentialLimit := handler.RateLimitMiddleware(
		rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
	)

	authd := handler.AuthMiddleware(sessions)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", credentialLimit, h.auth.Register)
			auth.POST("/login", credentialLimit, h.auth.Login)
			auth.POST("/refresh", h.auth.Refresh)
			auth.POST("/logout", authd, h.auth.Logout)
		}

		users := api.Group("/users")
		{
			users.GET("/me", authd, h.user.GetMe)
			users.PATCH("/me", authd, h.user.UpdateProfile)
			users.PATCH("/me/avatar", authd, h.user.UpdateAvatar)
			users.PATCH("/me/cover", authd, h.user.UpdateCover)
			users.POST("/password", authd, h.auth.ChangePassword)
			users.GET("/history", authd, h.user.WatchHistory)
			users.POST("/history/:videoId", authd, h.user.RecordWatch)
			users.GET("/c/:username", handler.OptionalAuthMiddleware(sessions), h.channel.GetChannel)
		}

		subs := api.Group("/subscriptions", authd)
		{
			subs.POST("/:channelId", h.channel.Subscribe)
			subs.DELETE("/:channelId", h.channel.Unsubscribe)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
