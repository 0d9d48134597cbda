// Package logger собирает zap-логгер сервиса.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New создает логгер. format "console" - человекочитаемый вывод для разработки, иначе JSON.
// Некорректный уровень заменяется на info.
func New(level, format string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		lvl.SetLevel(zapcore.InfoLevel)
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("не удалось создать логгер: %w", err)
	}
	return log, nil
}

// PrintfAdapter подключает zap к библиотекам, которые логируют через Printf/Println.
type PrintfAdapter struct {
	log *zap.SugaredLogger
}

func NewPrintfAdapter(log *zap.Logger) PrintfAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	return PrintfAdapter{log: log.Sugar()}
}

func (a PrintfAdapter) Printf(format string, args ...any) {
	a.log.Debugf(format, args...)
}

func (a PrintfAdapter) Println(args ...any) {
	a.log.Debugln(args...)
}
