package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// zerologAdapter は tracelog.Logger を zerolog で実装します。
type zerologAdapter struct {
	logger zerolog.Logger
}

func (a zerologAdapter) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var event *zerolog.Event
	switch level {
	case tracelog.LogLevelTrace:
		event = a.logger.Trace()
	case tracelog.LogLevelDebug:
		event = a.logger.Debug()
	case tracelog.LogLevelInfo:
		event = a.logger.Info()
	case tracelog.LogLevelWarn:
		event = a.logger.Warn()
	default:
		event = a.logger.Error()
	}
	event.Fields(data).Str("component", "pgx").Msg(msg)
}

// NewQueryTracer は zerolog のレベルに合わせた pgx のクエリトレーサーを返します。
func NewQueryTracer(logger zerolog.Logger) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger:   zerologAdapter{logger: logger},
		LogLevel: traceLevel(logger.GetLevel()),
	}
}

func traceLevel(level zerolog.Level) tracelog.LogLevel {
	switch level {
	case zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	case zerolog.Disabled:
		return tracelog.LogLevelNone
	default:
		return tracelog.LogLevelError
	}
}
