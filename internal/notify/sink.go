package notify

import (
	"context"

	"github.com/digiberkat/storefront-go/pkg/logger"
)

// Severity classifies a user-facing notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Sink receives user-facing notifications. The cart engine and order flow
// only ever emit (severity, message) pairs; rendering is the host app's job.
type Sink interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// Func adapts a plain function to the Sink interface.
type Func func(ctx context.Context, severity Severity, message string)

func (f Func) Notify(ctx context.Context, severity Severity, message string) {
	f(ctx, severity, message)
}

// LogSink forwards notifications to the structured logger. Useful for
// headless runs and as a default when no UI sink is attached.
type LogSink struct {
	logger *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	return &LogSink{logger: logg}
}

func (s *LogSink) Notify(ctx context.Context, severity Severity, message string) {
	if s == nil || s.logger == nil {
		return
	}
	ctx = s.logger.WithField(ctx, "severity", string(severity))
	switch severity {
	case SeverityError:
		s.logger.Warn(ctx, message)
	default:
		s.logger.Info(ctx, message)
	}
}
