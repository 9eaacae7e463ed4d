// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds sensitive values (vault passwords, age identities)
// in memory that the garbage collector never sees.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock, and marks it excluded from core
// dumps via madvise(MADV_DONTDUMP). On Close, the memory is zeroed,
// unlocked, and unmapped.
//
// [Protected] is the at-rest-in-memory form of a password: the plaintext
// is encrypted with XChaCha20-Poly1305 under a per-process key that
// itself lives in a Buffer, and the caller's source bytes are zeroed
// immediately. [Protected.Reveal] decrypts into a fresh Buffer that the
// caller owns and must Close.
//
// Constructors:
//
//   - [New] -- allocates a zero-filled buffer of a given size
//   - [NewFromBytes] -- copies into protected memory, zeros the source
//   - [ReadFromPath] -- reads a file (or stdin) into a buffer
//   - [Protect] -- encrypts bytes into a Protected, zeros the source
//
// Depends on golang.org/x/sys/unix and golang.org/x/crypto. No
// internal dependencies. Imported by lib/vault for secret passwords and
// by lib/sealed for age identities.
package secret
