// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestStreamsFrom_Default(t *testing.T) {
	streams := StreamsFrom(context.Background())
	if streams.In != os.Stdin || streams.Out != os.Stdout || streams.Err != os.Stderr {
		t.Error("StreamsFrom without WithStreams should return the standard streams")
	}
}

func TestStreamsFrom_Attached(t *testing.T) {
	var out bytes.Buffer
	ctx := WithStreams(context.Background(), Streams{Out: &out})

	streams := StreamsFrom(ctx)
	if streams.Out != &out {
		t.Error("Out is not the attached writer")
	}
	if streams.Err != os.Stderr || streams.In != os.Stdin {
		t.Error("unset members should fall back to the standard streams")
	}
}

func TestNewCommandLogger_PipedIsJSON(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewCommandLogger(&buffer, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("stored secret", "target", "example.com")

	output := buffer.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("debug record written at info level: %s", output)
	}
	if !strings.Contains(output, `"msg":"stored secret"`) || !strings.Contains(output, `"target":"example.com"`) {
		t.Errorf("output = %q, want a JSON record", output)
	}
}

func TestIsTerminal_NonFile(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a bytes.Buffer is not a terminal")
	}
}

func TestSetLogLevel(t *testing.T) {
	level := new(slog.LevelVar)
	var buffer bytes.Buffer
	logger := NewCommandLogger(&buffer, level)
	ctx := WithLogLevel(context.Background(), level)

	logger.Debug("before")
	SetLogLevel(ctx, slog.LevelDebug)
	logger.Debug("after")

	output := buffer.String()
	if strings.Contains(output, "before") {
		t.Errorf("debug record written at the default level: %s", output)
	}
	if !strings.Contains(output, "after") {
		t.Errorf("debug record missing after SetLogLevel: %s", output)
	}

	// Without a level variable SetLogLevel does nothing.
	SetLogLevel(context.Background(), slog.LevelError)
}
