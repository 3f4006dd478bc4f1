package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/andrew-d/drawbatch"
)

// setupLogging builds the CLI logger from the --log-level and --debug
// flags, plus a drawbatch logger at the matching level for store
// diagnostics. Both write to w through one zerolog.SyncWriter, since scenes
// log from concurrent goroutines.
func setupLogging(cmd *cobra.Command, w io.Writer) (zerolog.Logger, *drawbatch.Logger) {
	level, _ := cmd.Flags().GetString("log-level")
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	sw := zerolog.SyncWriter(w)
	consoleWriter := zerolog.ConsoleWriter{
		Out:        sw,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(consoleWriter).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	storeLogs := drawbatch.NewLogger(slog.NewTextHandler(sw, &slog.HandlerOptions{
		Level: slogLevel(lvl),
	}))
	return logger, storeLogs
}

func slogLevel(lvl zerolog.Level) slog.Level {
	switch {
	case lvl <= zerolog.DebugLevel:
		return slog.LevelDebug
	case lvl == zerolog.InfoLevel:
		return slog.LevelInfo
	case lvl == zerolog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
