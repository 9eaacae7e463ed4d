// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package acl models access-control descriptors for vault files.
//
// A [Descriptor] carries an owner, an owning group, a protection flag,
// and an ordered list of [Rule] values. Each rule grants (Allow) or
// withholds (Deny) a set of [Rights] for one [Principal]. Rules may be
// marked Inherited when they originate from the enclosing directory
// rather than from an explicit decision about this file.
//
// Mutation follows the usual descriptor semantics:
//
//   - [Descriptor.SetProtection] disables inheritance, optionally
//     converting inherited rules to explicit ones or dropping them.
//   - [Descriptor.AddRule] merges rights into an existing explicit rule
//     for the same principal and control type, or appends a new one.
//   - [Descriptor.SetRule] replaces every explicit rule for the same
//     principal and control type, so later calls win.
//   - [Descriptor.SetOwner] changes the owner.
//
// [Descriptor.Effective] resolves the rights a principal ends up with
// (allowed minus denied), which is what the Linux binding in
// lib/environment maps onto permission bits and POSIX ACL entries. The
// on-disk POSIX ACL layout (the system.posix_acl_access extended
// attribute) is encoded and decoded by [EncodePOSIX] and [DecodePOSIX].
//
// This package performs no I/O and has no internal dependencies.
package acl
