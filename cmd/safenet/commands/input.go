// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bureau-foundation/safenet/cmd/safenet/cli"
	"github.com/bureau-foundation/safenet/lib/secret"
)

// readPassword obtains a password for target. "-" reads the first line
// of the input stream, any other non-empty path reads that file, and an
// empty path prompts on a terminal or reads a line from piped input.
// The caller must close the returned buffer.
func readPassword(streams cli.Streams, path, target string) (*secret.Buffer, error) {
	switch {
	case path == "-":
		return secret.ReadLine(streams.In)
	case path != "":
		buffer, err := secret.ReadFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("reading --password-file: %w", err)
		}
		return buffer, nil
	}

	file, ok := streams.In.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return secret.ReadLine(streams.In)
	}

	fmt.Fprintf(streams.Err, "Password for %s: ", target)
	password, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(streams.Err)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	if len(password) == 0 {
		return nil, cli.Validation("password is empty")
	}
	return secret.NewFromBytes(password)
}

// parseMeta turns repeated --meta key=value flags into a metadata map.
// It returns nil when there are no values.
func parseMeta(values []string) (map[string]any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	meta := make(map[string]any, len(values))
	for _, value := range values {
		key, text, found := strings.Cut(value, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, cli.Validation("--meta %q: want KEY=VALUE", value)
		}
		meta[key] = text
	}
	return meta, nil
}
