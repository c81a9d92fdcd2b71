package store

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-store/errors"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the store package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the store package's logger.
// This must be called before any store operations.
func SetLogger(l *zap.Logger) {
	logger = l
}

// raise logs an invariant violation and panics with it.
func raise(err *errors.Error) {
	Logger().Error("store invariant violated",
		zap.String("phase", string(err.Phase)),
		zap.String("kind", string(err.Kind)),
		zap.String("entity", err.Entity),
		zap.String("detail", err.Detail))
	panic(err)
}
