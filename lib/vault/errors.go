// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by a storage schema that has not
	// been bound to a file path.
	ErrNotConfigured = errors.New("vault: storage schema is not bound to a path")

	// ErrInvalidArgument is returned for nil secrets, nil passwords,
	// empty paths, and conflicting schema bindings.
	ErrInvalidArgument = errors.New("vault: invalid argument")

	// ErrPattern matches every *PatternError via errors.Is.
	ErrPattern = errors.New("vault: invalid search pattern")

	// ErrUnsupportedMethod is returned for a SearchMethod value outside
	// the defined set.
	ErrUnsupportedMethod = errors.New("vault: unsupported search method")

	// ErrNotImplemented is returned by operations a Safe does not
	// provide.
	ErrNotImplemented = errors.New("vault: not implemented")

	// ErrSealed is returned when reading a sealed password without an
	// identity to unseal it.
	ErrSealed = errors.New("vault: password is sealed and no identity is configured")
)

// PatternError reports a wildcard or regular expression that failed to
// compile.
type PatternError struct {
	Pattern string
	Method  SearchMethod
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("vault: invalid %s pattern %q: %v", e.Method, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPattern) true for any PatternError.
func (e *PatternError) Is(target error) bool {
	return target == ErrPattern
}
