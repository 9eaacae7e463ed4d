// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/bureau-foundation/safenet/lib/acl"
	"github.com/bureau-foundation/safenet/lib/binhash"
	"github.com/bureau-foundation/safenet/lib/environment"
)

// Option configures a FileSafe.
type Option func(*FileSafe)

// WithSchema sets the storage schema. The default is a JSON schema over
// the safe's environment.
func WithSchema(schema StorageSchema) Option {
	return func(safe *FileSafe) {
		safe.schema = schema
	}
}

// WithEnvironment sets the filesystem environment. The default is
// environment.NewOS().
func WithEnvironment(env environment.Environment) Option {
	return func(safe *FileSafe) {
		safe.environment = env
	}
}

// WithLogger sets the logger used for debug traces. The default
// discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(safe *FileSafe) {
		safe.logger = logger
	}
}

// WithAdministrators sets the principal that owns a protected safe.
// The default is acl.Administrators.
func WithAdministrators(principal acl.Principal) Option {
	return func(safe *FileSafe) {
		safe.administrators = principal
	}
}

// FileSafe is a Safe backed by a single file whose access is restricted
// through filesystem access control.
type FileSafe struct {
	path           string
	schema         StorageSchema
	environment    environment.Environment
	logger         *slog.Logger
	administrators acl.Principal
}

// NewFileSafe opens the safe at path. If the file does not exist it is
// created empty, along with any missing parent directories. The schema
// is then bound to the absolute path. No other I/O happens here; call
// Protect to restrict access.
func NewFileSafe(path string, options ...Option) (*FileSafe, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty vault path", ErrInvalidArgument)
	}
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving vault path %q: %w", path, err)
	}

	safe := &FileSafe{
		path:           absolutePath,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		administrators: acl.Administrators,
	}
	for _, option := range options {
		option(safe)
	}
	if safe.environment == nil {
		safe.environment = environment.NewOS()
	}
	if safe.schema == nil {
		safe.schema = NewJSONSchema(safe.environment, WithSchemaLogger(safe.logger))
	}

	if !safe.environment.FileExists(absolutePath) {
		directory := filepath.Dir(absolutePath)
		if !safe.environment.DirectoryExists(directory) {
			if err := safe.environment.CreateDirectory(directory); err != nil {
				return nil, fmt.Errorf("creating vault directory %s: %w", directory, err)
			}
		}
		if err := safe.environment.WriteAllText(absolutePath, ""); err != nil {
			return nil, fmt.Errorf("creating vault %s: %w", absolutePath, err)
		}
		safe.logger.Debug("vault file created", "path", absolutePath)
	}

	if err := safe.schema.Bind(absolutePath); err != nil {
		return nil, err
	}
	return safe, nil
}

// Path returns the absolute path of the backing file.
func (s *FileSafe) Path() string {
	return s.path
}

// Schema returns the storage schema.
func (s *FileSafe) Schema() StorageSchema {
	return s.schema
}

// Administrators returns the principal that owns the safe once
// protected.
func (s *FileSafe) Administrators() acl.Principal {
	return s.administrators
}

// Protect replaces the file's access control. Inherited rules are
// dropped, the administrators principal gets read and write and
// ownership, and then each rule is applied in order, replacing any
// earlier rule for the same principal and control type. With no rules
// only the administrators keep access.
func (s *FileSafe) Protect(rules ...acl.Rule) error {
	return s.ProtectRevoking(rules)
}

// ProtectRevoking is Protect followed by dropping every rule that names
// one of revoked, written to the file in one step. The administrators
// principal cannot be revoked.
func (s *FileSafe) ProtectRevoking(rules []acl.Rule, revoked ...acl.Principal) error {
	for _, principal := range revoked {
		if principal == s.administrators {
			return fmt.Errorf("%w: cannot revoke the administrators principal %s", ErrInvalidArgument, principal)
		}
	}
	descriptor, err := s.environment.GetAccessControl(s.path)
	if err != nil {
		return fmt.Errorf("reading access control of %s: %w", s.path, err)
	}
	descriptor.SetProtection(true, false)
	descriptor.AddRule(acl.AdministratorsOwnRule(s.administrators, true))
	descriptor.SetOwner(s.administrators)
	for _, rule := range rules {
		descriptor.SetRule(rule)
	}
	for _, principal := range revoked {
		descriptor.RemoveRules(principal)
	}
	s.logger.Debug("protecting vault",
		"path", s.path,
		"administrators", s.administrators.String(),
		"rules", len(rules),
		"revoked", len(revoked),
	)
	return s.ApplyDescriptor(descriptor)
}

// ApplyDescriptor writes descriptor to the backing file.
func (s *FileSafe) ApplyDescriptor(descriptor *acl.Descriptor) error {
	if descriptor == nil {
		return fmt.Errorf("%w: descriptor cannot be null", ErrInvalidArgument)
	}
	if err := s.environment.SetAccessControl(s.path, descriptor); err != nil {
		return fmt.Errorf("applying access control to %s: %w", s.path, err)
	}
	return nil
}

// AccessControl returns the current descriptor of the backing file.
func (s *FileSafe) AccessControl() (*acl.Descriptor, error) {
	return s.environment.GetAccessControl(s.path)
}

// RetrieveSecret returns the secret whose target equals target,
// ignoring case.
func (s *FileSafe) RetrieveSecret(target string) (*Secret, error) {
	return s.RetrieveSecretMatching(target, MatchExact)
}

// RetrieveSecretMatching returns the first secret whose target matches
// pattern.
func (s *FileSafe) RetrieveSecretMatching(pattern string, method SearchMethod) (*Secret, error) {
	return s.schema.ReadSecret(pattern, method)
}

// SearchSecrets is SearchSecretsMatching with MatchExact.
func (s *FileSafe) SearchSecrets(pattern string) ([]*Secret, error) {
	return s.SearchSecretsMatching(pattern, MatchExact)
}

// SearchSecretsMatching is not provided by the file safe and always
// returns ErrNotImplemented. Use the schema's FindSecrets for
// multi-result lookups.
func (s *FileSafe) SearchSecretsMatching(pattern string, method SearchMethod) ([]*Secret, error) {
	return nil, fmt.Errorf("%w: multi-result search on a file safe", ErrNotImplemented)
}

// StoreSecret writes item through the schema.
func (s *FileSafe) StoreSecret(item *Secret) error {
	return s.schema.WriteSecret(item)
}

// UpsertSecret inserts item or replaces the secret with the same
// target.
func (s *FileSafe) UpsertSecret(item *Secret) error {
	return UpsertSecret(s, item)
}

// Secrets returns every stored secret.
func (s *FileSafe) Secrets() ([]*Secret, error) {
	return s.schema.Secrets()
}

// Fingerprint returns the hex BLAKE3-256 digest of the backing file's
// current contents.
func (s *FileSafe) Fingerprint() (string, error) {
	text, err := s.environment.ReadAllText(s.path)
	if err != nil {
		return "", fmt.Errorf("reading vault %s: %w", s.path, err)
	}
	return binhash.Sum([]byte(text)).String(), nil
}

var _ Safe = (*FileSafe)(nil)
