// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger
var fallbackOnce sync.Once

// Init initializes the package-level logger
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

// Logger returns the base zap logger, creating a production logger on first use.
func Logger() *zap.Logger {
	fallbackOnce.Do(func() {
		if baseLogger == nil {
			baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
			log = baseLogger.Sugar()
		}
	})
	return baseLogger
}

// Sugared returns the sugared logger instance
func Sugared() *zap.SugaredLogger {
	Logger()
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Debugw(msg string, keysAndValues ...interface{}) {
	Sugared().Debugw(msg, keysAndValues...)
}

func Infof(template string, args ...interface{}) {
	Sugared().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	Sugared().Infow(msg, keysAndValues...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	Sugared().Warnw(msg, keysAndValues...)
}

func Errorf(template string, args ...interface{}) {
	Sugared().Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	Sugared().Errorw(msg, keysAndValues...)
}

func Fatalf(template string, args ...interface{}) {
	Sugared().Fatalf(template, args...)
	os.Exit(1)
}
