// Package middleware - Recovery middleware для обработки паник.
package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
)

// PanicsTotal - паники, перехваченные в handlers.
var PanicsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "storehub",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Panics recovered in HTTP handlers",
	},
	[]string{"route"},
)

// RecoveryConfig - конфигурация для recovery middleware.
type RecoveryConfig struct {
	Logger *slog.Logger
	// EnableStackTrace - stack в лог (выключено в production)
	EnableStackTrace bool
}

// DefaultRecoveryConfig - конфигурация по умолчанию.
func DefaultRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{
		Logger:           slog.Default(),
		EnableStackTrace: true,
	}
}

// Recovery превращает панику handler'а в 500 с обычным конвертом ошибки.
// Паника отмечается в логе, в текущем span и в счётчике storehub_http_panics_total.
func Recovery(config *RecoveryConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultRecoveryConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			ctx := c.Request.Context()
			msg := fmt.Sprint(rec)

			attrs := []slog.Attr{
				slog.String("error", msg),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("client_ip", c.ClientIP()),
			}
			if config.EnableStackTrace {
				attrs = append(attrs, slog.String("stack", string(debug.Stack())))
			}
			logger.LogAttrs(ctx, slog.LevelError, "Panic recovered", attrs...)

			span := trace.SpanFromContext(ctx)
			span.RecordError(fmt.Errorf("panic: %s", msg))
			span.SetStatus(codes.Error, "panic")

			route := c.FullPath()
			if route == "" {
				route = unmatchedRoute
			}
			PanicsTotal.WithLabelValues(route).Inc()

			common.InternalErrorResponse(c, "An unexpected error occurred")
			c.Abort()
		}()

		c.Next()
	}
}
