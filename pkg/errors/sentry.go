package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/logger"
)

// SentryConfig holds configuration for Sentry integration
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	ServerName       string
	TracesSampleRate float64
}

// InitSentry initializes the Sentry SDK. An empty DSN disables reporting
// and is not an error.
func InitSentry(config SentryConfig) (bool, error) {
	if config.DSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		ServerName:       config.ServerName,
		TracesSampleRate: config.TracesSampleRate,
		EnableTracing:    config.TracesSampleRate > 0,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
				return nil
			}
			return event
		},
		BeforeBreadcrumb: func(breadcrumb *sentry.Breadcrumb, hint *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			if breadcrumb.Category == "http" && breadcrumb.Data != nil {
				delete(breadcrumb.Data, "Authorization")
				delete(breadcrumb.Data, "Cookie")
			}
			return breadcrumb
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	return true, nil
}

// Flush flushes the Sentry buffer
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// CaptureError reports err with the request correlation ID attached.
func CaptureError(ctx context.Context, err error, tags map[string]string) *sentry.EventID {
	if err == nil {
		return nil
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	var eventID *sentry.EventID
	hub.WithScope(func(scope *sentry.Scope) {
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			scope.SetTag("correlation_id", correlationID)
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		eventID = hub.CaptureException(err)
	})
	return eventID
}

// IsBusinessError reports whether err is an expected domain outcome that
// was already answered with a 4xx status.
func IsBusinessError(err error) bool {
	var appErr *common.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code < 500
	}
	return false
}

// ShouldReportError decides whether an error seen on a request goes to Sentry.
func ShouldReportError(err error, statusCode int) bool {
	if err == nil {
		return false
	}

	if IsBusinessError(err) {
		return false
	}

	// client errors are noise except throttling
	if statusCode >= 400 && statusCode < 500 && statusCode != 429 {
		return false
	}

	return true
}
