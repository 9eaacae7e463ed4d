// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package environment

import "github.com/bureau-foundation/safenet/lib/acl"

// Environment is the filesystem surface used by a file-backed vault.
// Implementations must be safe for concurrent use.
type Environment interface {
	// CreateDirectory creates path and any missing parents. An
	// existing directory is not an error.
	CreateDirectory(path string) error

	// FileExists reports whether path names an existing regular file.
	FileExists(path string) bool

	// DirectoryExists reports whether path names an existing directory.
	DirectoryExists(path string) bool

	// ReadAllText returns the full contents of path. A missing file
	// reads as the empty string.
	ReadAllText(path string) (string, error)

	// WriteAllText replaces the contents of path, creating the file
	// if needed. An existing file keeps its identity, ownership, and
	// access control.
	WriteAllText(path, contents string) error

	// GetAccessControl returns the current descriptor of path.
	GetAccessControl(path string) (*acl.Descriptor, error)

	// SetAccessControl applies descriptor to path.
	SetAccessControl(path string, descriptor *acl.Descriptor) error
}

var (
	_ Environment = (*OS)(nil)
	_ Environment = (*Memory)(nil)
)
