package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// maxLoggedArg bounds how much of a single query argument reaches the log. Game documents
// are written as one JSONB argument and can be large.
const maxLoggedArg = 256

// pgxLogger adapts zerolog.Logger to pgx's tracelog interface.
type pgxLogger struct {
	logger zerolog.Logger
}

func newPgxLogger(logger zerolog.Logger) *pgxLogger {
	return &pgxLogger{logger: logger.With().Str("component", "pgx").Logger()}
}

// Log implements tracelog.Logger by mapping pgx levels to zerolog levels.
// SQL and (truncated) args are only attached at trace level.
func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var event *zerolog.Event
	switch level {
	case tracelog.LogLevelNone:
		return
	case tracelog.LogLevelTrace:
		event = l.logger.Trace()
		if s, ok := data["sql"].(string); ok {
			event = event.Str("sql", s)
		}
		if args, ok := data["args"].([]any); ok {
			event = event.Strs("args", truncateArgs(args))
		}
	case tracelog.LogLevelDebug:
		event = l.logger.Debug()
	case tracelog.LogLevelInfo:
		event = l.logger.Info()
	case tracelog.LogLevelWarn:
		event = l.logger.Warn()
	case tracelog.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info().Str("pgx_log_level", level.String())
	}

	for k, v := range data {
		switch k {
		case "sql", "args":
			continue
		case "err":
			if err, ok := v.(error); ok {
				event = event.Err(err)
				continue
			}
		}
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func truncateArgs(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		var s string
		switch v := a.(type) {
		case []byte:
			s = string(v)
		default:
			s = fmt.Sprint(v)
		}
		if len(s) > maxLoggedArg {
			s = s[:maxLoggedArg] + "..."
		}
		out[i] = s
	}
	return out
}
