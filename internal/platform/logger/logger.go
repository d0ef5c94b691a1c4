package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config はロガーの構築設定です。
type Config struct {
	Level  string
	Format string
	File   string
}

// New は設定に従って zerolog.Logger を構築し、グローバルロガーにも設定します。
// File を指定した場合は標準出力とファイルの両方へ書き込み、返却される close でファイルを閉じます。
func New(cfg Config) (zerolog.Logger, func() error, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logger: parse level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var stdout io.Writer = os.Stdout
	if cfg.Format == "console" {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	closeFn := func() error { return nil }
	writers := []io.Writer{stdout}
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logger: open %s: %w", cfg.File, err)
		}
		writers = append(writers, file)
		closeFn = file.Close
	}

	l := build(zerolog.MultiLevelWriter(writers...), level)
	log.Logger = l
	return l, closeFn, nil
}

func build(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "employee-management").Logger()
}

// WithContext は logger をコンテキストに格納します。
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// From はコンテキストのロガーを返します。格納されていなければグローバルロガーを返します。
func From(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}
