// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the vault's CBOR encoding configuration.
//
// The vault file is JSON by default. The compact format stores the
// same records as a CBOR array; this package holds the shared encoder
// and decoder modes so the storage schema and its tests encode
// identically. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which keeps vault fingerprints stable across rewrites of
// unchanged content.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Record types carry `json` tags only: fxamacker/cbor v2 reads `json`
// tags as a fallback when `cbor` tags are absent, so one tag controls
// field naming for both vault formats.
package codec
