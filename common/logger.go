package common

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	logger  *zap.Logger
	logOnce sync.Once
)

// InitLogger builds the global logger. Production config when ENV=production,
// development config otherwise.
func InitLogger() {
	logOnce.Do(func() {
		var err error
		if os.Getenv("ENV") == "production" {
			logger, err = zap.NewProduction()
		} else {
			logger, err = zap.NewDevelopment()
		}
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
	})
}

// Log returns the global logger instance.
func Log() *zap.Logger {
	if logger == nil {
		InitLogger()
	}
	return logger
}

// CloseLogger flushes buffered log entries.
func CloseLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
