package logger

import (
	"go.uber.org/zap"
)

// NewZapLog builds a production zap logger at the given level
// ("debug", "info", "warn", "error").
func NewZapLog(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
