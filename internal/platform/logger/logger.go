package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ogurasousui/hrms-lite/internal/platform/config"
	"github.com/rs/zerolog"
)

// New は log 設定から zerolog.Logger を構築します。w が nil の場合は標準出力へ書き込みます。
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logger: parse level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if w == nil {
		w = os.Stdout
	}

	switch cfg.Format {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("logger: unsupported format %q", cfg.Format)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "hrms").Logger(), nil
}
