// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// VaultDir creates a temporary directory with mode 0700, matching the
// mode a vault creates for its own parent directory.
//
// The directory is automatically removed when the test completes.
func VaultDir(t *testing.T) string {
	t.Helper()
	directory, err := os.MkdirTemp("", "safenet-test-*")
	if err != nil {
		t.Fatalf("creating vault directory: %v", err)
	}
	if err := os.Chmod(directory, 0o700); err != nil {
		t.Fatalf("restricting vault directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(directory)
	})
	return directory
}

// WriteFile writes contents to name inside directory with mode 0600
// and returns the absolute path.
func WriteFile(t *testing.T, directory, name, contents string) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		t.Fatalf("resolving %s: %v", path, err)
	}
	return absolutePath
}
