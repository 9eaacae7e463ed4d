// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault stores credentials in a single file protected by
// filesystem access control.
//
// A [Secret] is a named credential: a target (the lookup key, usually a
// URL or service name), an optional username, a password, and free-form
// metadata. The password never sits on the Go heap as plain text for
// longer than an encrypt or reveal call: it is held as a
// [secret.Protected] and decrypted on demand by [Secret.Password] into
// a locked buffer the caller must close.
//
// A [StorageSchema] serializes secrets to one backing file. [FileSchema]
// implements it as a JSON array ([NewJSONSchema]) or a deterministic
// CBOR array ([NewCBORSchema]). Every read loads the whole file, and
// every write rewrites it. Records with the same identifier are
// replaced in place; new records get a fresh identifier. Target
// uniqueness is not enforced. With [WithSealing] the password field is
// additionally encrypted to age recipients at rest.
//
// Lookups take a [SearchMethod]: [MatchExact] (case-insensitive
// equality), [MatchWildcard] (anchored glob), or [MatchRegex]
// (unanchored RE2). All three ignore case. A pattern that does not
// compile yields a [*PatternError].
//
// A [Safe] pairs a schema with access control. [FileSafe] creates its
// backing file on construction, and [FileSafe.Protect] locks the file
// down: inherited rules are dropped, the administrators principal is
// made owner with read and write access, and caller rules are applied
// in order with replace semantics. [UpsertSecret] works over any Safe:
// it reuses the identifier of an existing secret with the same target
// so the record is replaced instead of duplicated.
//
// All filesystem access goes through an [environment.Environment],
// so tests run against environment.NewMemory without touching disk.
package vault
