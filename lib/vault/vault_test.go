// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"testing"

	"github.com/bureau-foundation/safenet/lib/environment"
)

const testVaultPath = "/var/lib/safenet/vault.json"

// newMemorySafe returns a FileSafe over an in-memory environment.
func newMemorySafe(t *testing.T, options ...Option) (*FileSafe, *environment.Memory) {
	t.Helper()
	memory := environment.NewMemory()
	options = append([]Option{WithEnvironment(memory)}, options...)
	safe, err := NewFileSafe(testVaultPath, options...)
	if err != nil {
		t.Fatalf("NewFileSafe: %v", err)
	}
	return safe, memory
}

// newTestSecret builds a secret and registers its Close with t.
func newTestSecret(t *testing.T, target, username, password string) *Secret {
	t.Helper()
	item, err := NewSecret(target, username, []byte(password))
	if err != nil {
		t.Fatalf("NewSecret(%q): %v", target, err)
	}
	t.Cleanup(func() { item.Close() })
	return item
}

// passwordOf decrypts the password of item.
func passwordOf(t *testing.T, item *Secret) string {
	t.Helper()
	buffer, err := item.Password()
	if err != nil {
		t.Fatalf("Password(%q): %v", item.Target, err)
	}
	defer buffer.Close()
	return buffer.String()
}

// store writes each secret through safe.
func store(t *testing.T, safe Safe, secrets ...*Secret) {
	t.Helper()
	for _, item := range secrets {
		if err := safe.StoreSecret(item); err != nil {
			t.Fatalf("StoreSecret(%q): %v", item.Target, err)
		}
	}
}

// allSecrets lists the safe and registers cleanup.
func allSecrets(t *testing.T, safe Safe) []*Secret {
	t.Helper()
	secrets, err := safe.Secrets()
	if err != nil {
		t.Fatalf("Secrets: %v", err)
	}
	t.Cleanup(func() { CloseAll(secrets) })
	return secrets
}
