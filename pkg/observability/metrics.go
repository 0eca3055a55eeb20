package observability

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics.
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}

// SessionMetrics counts session lifecycle events. Counters are registered on
// the global meter provider set up by InitTelemetry.
type SessionMetrics struct {
	Logins         metric.Int64Counter
	LoginFailures  metric.Int64Counter
	Refreshes      metric.Int64Counter
	RefreshReplays metric.Int64Counter
	AssetUploads   metric.Int64Counter
}

// NewSessionMetrics creates the session counters.
func NewSessionMetrics(serviceName string) (*SessionMetrics, error) {
	meter := otel.Meter(serviceName)

	m := &SessionMetrics{}
	var err error

	if m.Logins, err = meter.Int64Counter("sessions_logins_total",
		metric.WithDescription("Successful logins")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.LoginFailures, err = meter.Int64Counter("sessions_login_failures_total",
		metric.WithDescription("Login attempts rejected for bad credentials")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.Refreshes, err = meter.Int64Counter("sessions_refreshes_total",
		metric.WithDescription("Successful token refreshes")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.RefreshReplays, err = meter.Int64Counter("sessions_refresh_replays_total",
		metric.WithDescription("Refresh attempts with a superseded token")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.AssetUploads, err = meter.Int64Counter("assets_uploads_total",
		metric.WithDescription("Avatar and cover image uploads")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	return m, nil
}
