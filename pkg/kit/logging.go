package kit

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	Service string
	Level   string
	// Sink receives a copy of every entry, encoded the same way as stdout.
	Sink zapcore.WriteSyncer
}

func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		if lvl, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.TimeKey = "@timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var opts []zap.Option
	if cfg.Sink != nil {
		sinkCore := zapcore.NewCore(zapcore.NewJSONEncoder(zcfg.EncoderConfig), cfg.Sink, zcfg.Level)
		opts = append(opts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, sinkCore)
		}))
	}

	l, err := zcfg.Build(opts...)
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("service", cfg.Service)), nil
}
