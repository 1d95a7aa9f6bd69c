package logger

import "go.uber.org/zap"

// NewNop creates a no-op logger that discards all output.
func NewNop() *DefaultLogger {
	return &DefaultLogger{logger: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger. Tests use it with zaptest/observer.
func FromZap(l *zap.Logger) *DefaultLogger {
	return &DefaultLogger{logger: l.Sugar()}
}
