// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for safenet packages.
//
// [VaultDir] creates a private (0700) temporary directory for vault
// files and removes it when the test completes. [WriteFile] places a
// fixture file in such a directory and returns its path.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) for tests that fan
// work out to goroutines, so a deadlock fails the test instead of
// hanging it.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, such as distinct secret targets written by
// concurrent goroutines.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no safenet-internal dependencies.
package testutil
