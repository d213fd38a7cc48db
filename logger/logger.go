// Package logger holds the process-wide sugared logger.
package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

func Init() {
	l, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = l.Sugar()
}

// InitDevelopment switches to human-readable console output. Used by the
// terminal client and by tests.
func InitDevelopment() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = l.Sugar()
}

// Sync flushes buffered entries. Call on shutdown.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
