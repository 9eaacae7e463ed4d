// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed provides age encryption and decryption for vault
// password fields. It wraps filippo.io/age for the operations the vault
// needs: generate x25519 keypairs, encrypt to one or more recipients,
// and decrypt with a private key.
//
// Ciphertext is base64-encoded so it can sit in a JSON string field of
// the vault file. Private keys and decrypted plaintext are returned as
// [secret.Buffer] values backed by mmap memory outside the Go heap.
//
// Key exports:
//
//   - [GenerateKeypair] -- new age x25519 keypair in a secret.Buffer
//   - [Encrypt] / [Decrypt] -- seal to recipients, open with an identity
//   - [LoadIdentity] -- read an age-keygen identity file
//   - [ParsePublicKey] / [ParsePrivateKey] -- key validation
//
// Used by the vault storage schemas (sealed password fields) and the
// safenet keygen command.
package sealed
