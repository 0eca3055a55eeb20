package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vidstream/vidstream-api/internal/config"
	"github.com/vidstream/vidstream-api/pkg/database"
	"github.com/vidstream/vidstream-api/pkg/objectstore"
	"github.com/vidstream/vidstream-api/pkg/observability"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const serviceName = "vidstream-api"

// Infrastructure holds the external collaborators: store handles, asset host,
// logger, telemetry. Opened once on startup, closed on shutdown.
type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Assets() *objectstore.Client
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	assets         *objectstore.Client
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

// NewInfrastructure connects every external dependency and runs pending
// database migrations.
func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	postgres, err := database.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	i.postgres = postgres

	if err := database.Migrate(cfg.Postgres.MigrationsDir, cfg.Postgres.URL()); err != nil {
		_ = i.postgres.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	redis, err := database.NewRedis(ctx, cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = i.postgres.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	i.redis = redis

	assets, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:        cfg.Assets.Endpoint,
		AccessKeyID:     cfg.Assets.AccessKeyID,
		SecretAccessKey: cfg.Assets.SecretAccessKey,
		Bucket:          cfg.Assets.Bucket,
		UseSSL:          cfg.Assets.UseSSL,
		Region:          cfg.Assets.Region,
		PublicURL:       cfg.Assets.PublicURL,
	})
	if err != nil {
		_ = i.postgres.Close()
		_ = i.redis.Close()
		return nil, fmt.Errorf("failed to connect to object store: %w", err)
	}
	i.assets = assets

	meterProvider, metricsHandler, err := observability.InitTelemetry(serviceName)
	if err != nil {
		_ = i.postgres.Close()
		_ = i.redis.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	return i, nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Assets() *objectstore.Client {
	return i.assets
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 4)

	go func() { errs <- i.postgres.Close() }()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- i.logger.Sync() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs, <-errs, <-errs)
}
