// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"

	"github.com/bureau-foundation/safenet/lib/acl"
)

// Safe is a protected secret store.
type Safe interface {
	// Protect locks the store down to the administrators principal,
	// then applies rules in order with replace semantics.
	Protect(rules ...acl.Rule) error

	// ApplyDescriptor persists descriptor as the store's access
	// control.
	ApplyDescriptor(descriptor *acl.Descriptor) error

	// RetrieveSecret returns the secret whose target equals target
	// case-insensitively, or (nil, nil).
	RetrieveSecret(target string) (*Secret, error)

	// RetrieveSecretMatching returns the first secret whose target
	// matches pattern under method, or (nil, nil).
	RetrieveSecretMatching(pattern string, method SearchMethod) (*Secret, error)

	// SearchSecrets returns every secret whose target equals pattern.
	SearchSecrets(pattern string) ([]*Secret, error)

	// SearchSecretsMatching returns every secret whose target matches
	// pattern under method.
	SearchSecretsMatching(pattern string, method SearchMethod) ([]*Secret, error)

	// StoreSecret writes secret, replacing any record with the same
	// identifier.
	StoreSecret(secret *Secret) error

	// Secrets returns every stored secret.
	Secrets() ([]*Secret, error)
}

// UpsertSecret stores item in safe, reusing the identifier of an
// existing secret with the same target so the existing record is
// replaced rather than duplicated. Upserting the same target twice
// leaves one record.
func UpsertSecret(safe Safe, item *Secret) error {
	if item == nil {
		return fmt.Errorf("%w: secret cannot be null", ErrInvalidArgument)
	}
	existing, err := safe.RetrieveSecret(item.Target)
	if err != nil {
		return fmt.Errorf("looking up %q: %w", item.Target, err)
	}
	if existing != nil {
		item.Identifier = existing.Identifier
		existing.Close()
	}
	return safe.StoreSecret(item)
}
