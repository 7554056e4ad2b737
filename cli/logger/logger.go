package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

type Options struct {
	Level  string `doc:"log from debug, info, warn or error"`
	File   string `doc:"append logs to file"`
	Format string `doc:"format logs as text, json or tint"   default:"text"`
}

// level parses a level option; the empty option keeps the handler default.
func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return nil, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return nil, false
}

type newHandler func(w io.Writer, level slog.Leveler) slog.Handler

var formats = map[string]newHandler{
	"text": func(w io.Writer, level slog.Leveler) slog.Handler {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	},
	"json": func(w io.Writer, level slog.Leveler) slog.Handler {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	},
	// tint colours only the terminal.
	"tint": func(w io.Writer, level slog.Leveler) slog.Handler {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    w != os.Stdout,
		})
	},
}

// New builds the logger described by options. Options that cannot be
// honoured are reset to their defaults, and the returned logger warns
// about each of them.
func New(options *Options) *slog.Logger {
	var warnings []slog.Attr

	lvl, ok := level(options.Level)
	if !ok {
		warnings = append(warnings, slog.String("level", options.Level))
		options.Level = ""
	}

	var output io.Writer = os.Stdout
	switch options.File {
	case "", "-":
	case os.DevNull:
		return slog.New(slog.DiscardHandler)
	default:
		f, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			warnings = append(warnings, slog.String("file", options.File), slog.Any("err", err))
			options.File = ""
		} else {
			output = f
		}
	}

	format, ok := formats[strings.ToLower(options.Format)]
	if !ok {
		warnings = append(warnings, slog.String("format", options.Format))
		options.Format = "text"
		format = formats["text"]
	}

	logger := slog.New(format(output, lvl))
	if len(warnings) > 0 {
		logger.LogAttrs(context.Background(), slog.LevelWarn, "ignored logger options", warnings...)
	}
	return logger
}
