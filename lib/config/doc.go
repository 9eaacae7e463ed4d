// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for safenet.
//
// Configuration is loaded from a single file specified by either the
// SAFENET_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search: a command that
// is given neither runs on [Default].
//
// Variable expansion is performed on path and key fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Vault, Sealing, Protection, Logging
//   - [Default] -- returns a Config with a per-user JSON vault
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
//
// Rule and principal fields are parsed with lib/acl, sealing recipients
// with lib/sealed.
package config
