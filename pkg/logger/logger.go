package logger

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var errAlreadyDefined = errors.New("logger already defined")

type sink interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Sync() error
}

var (
	mu       sync.RWMutex
	instance sink = zap.NewNop()
	defined  bool
)

// Setup installs the process logger. It may be called once; later calls
// return an error and keep the first logger.
func Setup(l *zap.Logger) error {
	mu.Lock()
	defer mu.Unlock()
	if defined {
		return errAlreadyDefined
	}
	instance = l
	defined = true
	return nil
}

// New builds a zap logger for the given environment and level.
func New(appEnv, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if appEnv == "local" || appEnv == "dev" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg.Level = lvl
	return cfg.Build()
}

func get() sink {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

func Debug(a ...any) { get().Debug(fmt.Sprint(a...)) }

func Info(a ...any) { get().Info(fmt.Sprint(a...)) }

func Warn(a ...any) { get().Warn(fmt.Sprint(a...)) }

func Error(a ...any) { get().Error(fmt.Sprint(a...)) }

func DebugF(format string, a ...any) { get().Debug(fmt.Sprintf(format, a...)) }

func InfoF(format string, a ...any) { get().Info(fmt.Sprintf(format, a...)) }

func WarnF(format string, a ...any) { get().Warn(fmt.Sprintf(format, a...)) }

func ErrorF(format string, a ...any) { get().Error(fmt.Sprintf(format, a...)) }

// Sync flushes buffered entries; call before exit.
func Sync() { _ = get().Sync() }
