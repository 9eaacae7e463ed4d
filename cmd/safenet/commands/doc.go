// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the safenet CLI command tree.
//
// Every vault command accepts --config and --vault ([VaultFlags]).
// Configuration is read from --config, then $SAFENET_CONFIG, and falls
// back to the built-in defaults when neither is set. The vault file is
// created on first use, as opening a file vault always does.
//
// Commands write results to the output stream and diagnostics to the
// error stream of the [cli.Streams] in their context. Read commands
// accept --json. "get" exits 2 when nothing matches.
package commands
