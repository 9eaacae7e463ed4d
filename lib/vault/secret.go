// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bureau-foundation/safenet/lib/secret"
)

// Secret is one stored credential. The password is kept encrypted in
// memory and is only decrypted into a caller-owned buffer by Password.
//
// Call Close when the secret is no longer needed to scrub the
// password.
type Secret struct {
	// Identifier is assigned by the store on first write and stays
	// stable across updates. uuid.Nil means "not yet stored".
	Identifier uuid.UUID

	// Target is the lookup key, typically a URL or service name.
	Target string

	// Username is optional.
	Username string

	// Meta carries arbitrary caller data and is persisted verbatim.
	Meta map[string]any

	password *secret.Protected
}

// NewSecret returns an unstored secret. A nil password leaves the
// password unset; an empty non-nil password is stored as empty. The
// password bytes are zeroed.
func NewSecret(target, username string, password []byte) (*Secret, error) {
	result := &Secret{Target: target, Username: username}
	if password != nil {
		if err := result.SetPassword(password); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// SetPassword replaces the password. The bytes are encrypted into
// protected memory and zeroed in place before SetPassword returns. A
// nil slice is rejected; use an empty slice for an empty password.
func (s *Secret) SetPassword(password []byte) error {
	if password == nil {
		return fmt.Errorf("%w: password cannot be null", ErrInvalidArgument)
	}
	protected, err := secret.Protect(password)
	if err != nil {
		return err
	}
	s.replacePassword(protected)
	return nil
}

func (s *Secret) replacePassword(protected *secret.Protected) {
	if s.password != nil {
		s.password.Close()
	}
	s.password = protected
}

// HasPassword reports whether a password has been set.
func (s *Secret) HasPassword() bool {
	return s.password != nil
}

// Password decrypts the password into a new buffer. The caller owns the
// buffer and must Close it; an unclosed buffer keeps the plaintext in
// locked memory until the process exits.
func (s *Secret) Password() (*secret.Buffer, error) {
	if s.password == nil {
		return nil, fmt.Errorf("%w: secret %q has no password", ErrInvalidArgument, s.Target)
	}
	return s.password.Reveal()
}

// Equal reports whether s and other are the same stored secret, that
// is, whether their identifiers match. Contents are not compared.
func (s *Secret) Equal(other *Secret) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Identifier == other.Identifier
}

// Close scrubs the protected password. Idempotent.
func (s *Secret) Close() error {
	if s.password == nil {
		return nil
	}
	err := s.password.Close()
	s.password = nil
	return err
}

// LogValue renders the secret for structured logs without the
// password.
func (s *Secret) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("identifier", s.Identifier.String()),
		slog.String("target", s.Target),
		slog.String("username", s.Username),
	)
}

// CloseAll closes every secret in secrets.
func CloseAll(secrets []*Secret) {
	for _, item := range secrets {
		item.Close()
	}
}
