// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content digests for vault files.
//
// A digest of the whole vault file lets an operator notice edits made
// outside safenet: record the fingerprint after a change, and compare
// it on the next run.
//
// The API surface is three functions:
//
//   - [Sum] -- hashes an in-memory byte slice
//   - [FormatDigest] -- converts a digest to its canonical lowercase hex
//     string, used in status output and logs
//   - [ParseDigest] -- parses a hex digest back, validating length and
//     encoding
//
// This package has no dependencies on other safenet packages.
package binhash
