// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package environment

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/bureau-foundation/safenet/lib/acl"
)

// NewMemory returns an empty in-memory environment whose root
// directory exists. Files created without an explicit descriptor get
// an unprotected default descriptor owned by DefaultOwner, with rules
// inherited from the enclosing directory.
func NewMemory() *Memory {
	return &Memory{
		DefaultOwner: acl.UserPrincipal("user"),
		files:        make(map[string]string),
		directories:  map[string]bool{string(filepath.Separator): true},
		descriptors:  make(map[string]*acl.Descriptor),
		writes:       make(map[string]int),
		applied:      make(map[string][]*acl.Descriptor),
	}
}

// Memory is an in-memory Environment for tests. It records writes,
// directory creation, and applied descriptors so tests can assert on
// side effects.
//
// Memory is safe for concurrent use by multiple goroutines.
type Memory struct {
	// DefaultOwner owns files that have no descriptor set. Change it
	// before creating files.
	DefaultOwner acl.Principal

	mu          sync.Mutex
	files       map[string]string
	directories map[string]bool
	descriptors map[string]*acl.Descriptor

	writes             map[string]int
	applied            map[string][]*acl.Descriptor
	createdDirectories []string

	// writeError, when set, is returned by every WriteAllText call.
	writeError error
}

// CreateDirectory marks path and all of its parents as existing.
func (m *Memory) CreateDirectory(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if _, isFile := m.files[path]; isFile {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	m.createdDirectories = append(m.createdDirectories, path)
	for {
		m.directories[path] = true
		parent := filepath.Dir(path)
		if parent == path {
			return nil
		}
		path = parent
	}
}

// FileExists reports whether path was written.
func (m *Memory) FileExists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.files[filepath.Clean(path)]
	return exists
}

// DirectoryExists reports whether path was created.
func (m *Memory) DirectoryExists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.directories[filepath.Clean(path)]
}

// ReadAllText returns the contents of path, or "" if it does not exist.
func (m *Memory) ReadAllText(path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[filepath.Clean(path)], nil
}

// WriteAllText stores contents at path. The parent directory must
// exist.
func (m *Memory) WriteAllText(path, contents string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if m.writeError != nil {
		return m.writeError
	}
	if !m.directories[filepath.Dir(path)] {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if m.directories[path] {
		return &fs.PathError{Op: "open", Path: path, Err: fmt.Errorf("is a directory")}
	}
	m.files[path] = contents
	m.writes[path]++
	return nil
}

// GetAccessControl returns a copy of the descriptor of path.
func (m *Memory) GetAccessControl(path string) (*acl.Descriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if _, exists := m.files[path]; !exists {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	if descriptor, ok := m.descriptors[path]; ok {
		return descriptor.Clone(), nil
	}
	return m.defaultDescriptor(), nil
}

// SetAccessControl stores a copy of descriptor for path.
func (m *Memory) SetAccessControl(path string, descriptor *acl.Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if _, exists := m.files[path]; !exists {
		return &fs.PathError{Op: "chmod", Path: path, Err: fs.ErrNotExist}
	}
	m.descriptors[path] = descriptor.Clone()
	m.applied[path] = append(m.applied[path], descriptor.Clone())
	return nil
}

func (m *Memory) defaultDescriptor() *acl.Descriptor {
	return acl.NewDescriptor(m.DefaultOwner, acl.GroupPrincipal(m.DefaultOwner.Name),
		acl.Rule{Principal: m.DefaultOwner, Rights: acl.Read | acl.Write, Type: acl.Allow, Inherited: true},
		acl.Rule{Principal: acl.EveryonePrincipal, Rights: acl.Read, Type: acl.Allow, Inherited: true},
	)
}

// SetFile stores contents at path without counting it as a write.
// Missing parent directories are created.
func (m *Memory) SetFile(path, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	for directory := filepath.Dir(path); !m.directories[directory]; directory = filepath.Dir(directory) {
		m.directories[directory] = true
	}
	m.files[path] = contents
}

// Writes returns how many times WriteAllText stored path.
func (m *Memory) Writes(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[filepath.Clean(path)]
}

// CreatedDirectories returns the paths passed to CreateDirectory, in
// call order.
func (m *Memory) CreatedDirectories() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.createdDirectories...)
}

// Applied returns copies of every descriptor applied to path, in call
// order.
func (m *Memory) Applied(path string) []*acl.Descriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	var applied []*acl.Descriptor
	for _, descriptor := range m.applied[filepath.Clean(path)] {
		applied = append(applied, descriptor.Clone())
	}
	return applied
}

// FailWrites makes every subsequent WriteAllText return err. Pass nil
// to restore normal behavior.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeError = err
}
