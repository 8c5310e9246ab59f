// Package logging builds the zap loggers shared by querysmith components.
package logging

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldProvider  = "provider"
	FieldAttempt   = "attempt"
	FieldState     = "state"
	FieldConcept   = "concept"
	FieldReason    = "reason"
	FieldStatus    = "status"
	FieldIntent    = "intent"
	FieldMode      = "mode"
	FieldCount     = "count"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

type contextKey string

const requestIDKey contextKey = "logging_request_id"

// New returns a console logger at debug level when verbose, otherwise a JSON
// logger that only emits warnings and above.
func New(verbose bool) (*zap.SugaredLogger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		l, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		return l.Sugar(), nil
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(os.Stderr),
		zap.WarnLevel,
	)
	return zap.New(core).Sugar(), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}

// Component returns a named child logger.
func Component(l *zap.SugaredLogger, name string) *zap.SugaredLogger {
	return OrNop(l).Named(name).With(FieldComponent, name)
}

// WithRequestID stores a request id for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns l with the request id of ctx attached.
func FromContext(ctx context.Context, l *zap.SugaredLogger) *zap.SugaredLogger {
	l = OrNop(l)
	if id := RequestID(ctx); id != "" {
		return l.With(FieldRequestID, id)
	}
	return l
}
