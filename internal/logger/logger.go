package logger

import (
	"go.uber.org/zap"
)

// Log is the shared application logger. It is a no-op until Initialize runs,
// so packages can log unconditionally in tests.
var Log *zap.Logger = zap.NewNop()

func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = logger
	return nil
}
