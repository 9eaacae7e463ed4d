// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package environment abstracts the filesystem operations a vault
// needs: directory creation, existence checks, whole-file text reads
// and writes, and reading or applying an access-control descriptor.
//
// Production code uses [NewOS], which binds the operations to the
// local Linux filesystem. Ownership maps to chown, rights for the
// owner, owning group, and everyone map to permission bits, and rules
// naming other users or groups are written as a POSIX access ACL. The
// protected (no-inheritance) flag is recorded in a user extended
// attribute because Linux has no native equivalent.
//
// Tests use [NewMemory], an in-memory implementation that records
// every write and every applied descriptor so callers can assert on
// side effects without touching disk.
package environment
