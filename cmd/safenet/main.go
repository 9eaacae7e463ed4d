// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command safenet manages a local secret vault.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/safenet/cmd/safenet/cli"
	"github.com/bureau-foundation/safenet/cmd/safenet/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like get on a miss)
		// return an error carrying the exit code. Don't print a
		// redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var toolErr *cli.ToolError
		if errors.As(err, &toolErr) {
			os.Exit(toolErr.Status())
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := new(slog.LevelVar)
	ctx = cli.WithLogLevel(ctx, level)
	ctx = cli.WithStreams(ctx, cli.StandardStreams())
	logger := cli.NewCommandLogger(os.Stderr, level)

	return commands.Root().Execute(ctx, os.Args[1:], logger)
}
