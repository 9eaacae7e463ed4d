// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"io"
	"log/slog"
)

// NewCommandLogger creates a structured logger for CLI command operations
// writing to w. When w is a terminal, uses slog.TextHandler for
// human-readable output. When it is piped or redirected (CI, scripts,
// tests), uses slog.JSONHandler for machine-parseable output.
//
// Passing a *slog.LevelVar as level lets a command raise or lower the
// threshold after loading its configuration (see [SetLogLevel]).
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(streams.Err, slog.LevelInfo).With(
//	    "command", "upsert",
//	    "vault", safe.Path(),
//	)
func NewCommandLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if IsTerminal(w) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

type levelKey struct{}

// WithLogLevel attaches the level variable behind the command logger to
// ctx.
func WithLogLevel(ctx context.Context, level *slog.LevelVar) context.Context {
	return context.WithValue(ctx, levelKey{}, level)
}

// SetLogLevel changes the command logger's threshold. It is a no-op
// when ctx carries no level variable.
func SetLogLevel(ctx context.Context, level slog.Level) {
	if variable, ok := ctx.Value(levelKey{}).(*slog.LevelVar); ok {
		variable.Set(level)
	}
}
