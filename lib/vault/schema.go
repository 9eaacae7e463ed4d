// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/bureau-foundation/safenet/lib/environment"
	"github.com/bureau-foundation/safenet/lib/sealed"
	"github.com/bureau-foundation/safenet/lib/secret"
)

// StorageSchema serializes secrets to and from one backing file.
type StorageSchema interface {
	// Bind attaches the schema to path. Binding again to the same path
	// is a no-op; binding to a different path fails with
	// ErrInvalidArgument.
	Bind(path string) error

	// Path returns the bound path, or "" if unbound.
	Path() string

	// ReadSecret returns the first secret whose target matches
	// pattern, or (nil, nil) if none does.
	ReadSecret(pattern string, method SearchMethod) (*Secret, error)

	// WriteSecret stores secret, replacing the record with the same
	// identifier or appending a new one. A secret with a nil
	// identifier is assigned a fresh one.
	WriteSecret(secret *Secret) error

	// Secrets returns every stored secret in file order.
	Secrets() ([]*Secret, error)

	// FindSecrets returns every secret whose target matches pattern,
	// in file order.
	FindSecrets(pattern string, method SearchMethod) ([]*Secret, error)
}

// SchemaOption configures a FileSchema.
type SchemaOption func(*FileSchema)

// WithSealing seals passwords at rest with age. New and updated records
// are encrypted to recipients (age1... public keys); if recipients is
// empty, the public key of identity is used. Sealed records are opened
// with identity, which may be nil for a write-only schema. The identity
// buffer is borrowed and must outlive the schema.
func WithSealing(recipients []string, identity *secret.Buffer) SchemaOption {
	return func(schema *FileSchema) {
		schema.recipients = append([]string(nil), recipients...)
		schema.identity = identity
	}
}

// WithSchemaLogger sets the logger used for debug traces.
func WithSchemaLogger(logger *slog.Logger) SchemaOption {
	return func(schema *FileSchema) {
		schema.logger = logger
	}
}

// FileSchema is a StorageSchema that keeps every record in a single
// file, read and rewritten whole through an Environment.
//
// A FileSchema serializes its own writes, so concurrent WriteSecret
// calls on one value do not lose updates. Separate schemas (or
// processes) writing the same file still can.
type FileSchema struct {
	environment environment.Environment
	format      recordFormat
	logger      *slog.Logger

	recipients []string
	identity   *secret.Buffer

	mu   sync.Mutex
	path string
}

// NewJSONSchema returns an unbound schema storing an indented JSON
// array.
func NewJSONSchema(env environment.Environment, options ...SchemaOption) *FileSchema {
	return newFileSchema(env, jsonFormat{}, options)
}

// NewCBORSchema returns an unbound schema storing a deterministic CBOR
// array.
func NewCBORSchema(env environment.Environment, options ...SchemaOption) *FileSchema {
	return newFileSchema(env, cborFormat{}, options)
}

// NewSchema returns an unbound schema for the named format, "json" or
// "cbor".
func NewSchema(format string, env environment.Environment, options ...SchemaOption) (*FileSchema, error) {
	switch format {
	case "json", "":
		return NewJSONSchema(env, options...), nil
	case "cbor":
		return NewCBORSchema(env, options...), nil
	default:
		return nil, fmt.Errorf("%w: unknown vault format %q (want json or cbor)", ErrInvalidArgument, format)
	}
}

func newFileSchema(env environment.Environment, format recordFormat, options []SchemaOption) *FileSchema {
	schema := &FileSchema{
		environment: env,
		format:      format,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(schema)
	}
	return schema
}

// Format returns "json" or "cbor".
func (s *FileSchema) Format() string {
	return s.format.name()
}

// Sealed reports whether new records are sealed with age.
func (s *FileSchema) Sealed() bool {
	return len(s.recipients) > 0 || s.identity != nil
}

// Bind attaches the schema to path.
func (s *FileSchema) Bind(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty vault path", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path != "" && s.path != path {
		return fmt.Errorf("%w: schema already bound to %s, cannot rebind to %s", ErrInvalidArgument, s.path, path)
	}
	s.path = path
	return nil
}

// Path returns the bound path.
func (s *FileSchema) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// ReadSecret returns the first secret whose target matches pattern.
// Only the matching record's password is decrypted.
func (s *FileSchema) ReadSecret(pattern string, method SearchMethod) (*Secret, error) {
	match, err := compileMatcher(pattern, method)
	if err != nil {
		return nil, err
	}
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	for index := range records {
		if match(records[index].Target) {
			return s.toSecret(&records[index])
		}
	}
	return nil, nil
}

// FindSecrets returns every secret whose target matches pattern.
func (s *FileSchema) FindSecrets(pattern string, method SearchMethod) ([]*Secret, error) {
	match, err := compileMatcher(pattern, method)
	if err != nil {
		return nil, err
	}
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	var matched []record
	for _, candidate := range records {
		if match(candidate.Target) {
			matched = append(matched, candidate)
		}
	}
	return s.toSecrets(matched)
}

// Secrets returns every stored secret.
func (s *FileSchema) Secrets() ([]*Secret, error) {
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	return s.toSecrets(records)
}

// WriteSecret stores item. Records other than the one being written are
// carried over untouched, so a write-only sealed schema can add records
// to a vault it cannot read.
func (s *FileSchema) WriteSecret(item *Secret) error {
	if item == nil {
		return fmt.Errorf("%w: secret cannot be null", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return ErrNotConfigured
	}
	records, err := s.loadLocked()
	if err != nil {
		return err
	}

	if item.Identifier == uuid.Nil {
		item.Identifier = uuid.New()
	}
	updated, err := s.toRecord(item)
	if err != nil {
		return err
	}

	replaced := false
	for index := range records {
		if records[index].Identifier == item.Identifier {
			records[index] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, updated)
	}

	text, err := s.format.encode(records)
	if err != nil {
		return fmt.Errorf("encoding vault %s: %w", s.path, err)
	}
	if err := s.environment.WriteAllText(s.path, text); err != nil {
		return fmt.Errorf("writing vault %s: %w", s.path, err)
	}
	s.logger.Debug("secret written",
		"path", s.path,
		"secret", item,
		"replaced", replaced,
		"records", len(records),
	)
	return nil
}

func (s *FileSchema) load() ([]record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileSchema) loadLocked() ([]record, error) {
	if s.path == "" {
		return nil, ErrNotConfigured
	}
	text, err := s.environment.ReadAllText(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading vault %s: %w", s.path, err)
	}
	records, err := s.format.decode(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return records, nil
}

func (s *FileSchema) toSecrets(records []record) ([]*Secret, error) {
	secrets := make([]*Secret, 0, len(records))
	for index := range records {
		item, err := s.toSecret(&records[index])
		if err != nil {
			CloseAll(secrets)
			return nil, err
		}
		secrets = append(secrets, item)
	}
	return secrets, nil
}

func (s *FileSchema) toSecret(stored *record) (*Secret, error) {
	item := &Secret{
		Identifier: stored.Identifier,
		Target:     stored.Target,
		Username:   stored.Username,
		Meta:       stored.Meta,
	}
	if stored.Password == nil {
		return item, nil
	}

	switch stored.Protection {
	case "":
		if err := item.SetPassword([]byte(*stored.Password)); err != nil {
			return nil, err
		}
	case protectionAge:
		if s.identity == nil {
			return nil, fmt.Errorf("%w: target %q", ErrSealed, stored.Target)
		}
		plaintext, err := sealed.Decrypt(*stored.Password, s.identity)
		if err != nil {
			return nil, fmt.Errorf("unsealing password for %q: %w", stored.Target, err)
		}
		defer plaintext.Close()
		protected, err := secret.ProtectBuffer(plaintext)
		if err != nil {
			return nil, err
		}
		item.replacePassword(protected)
	default:
		return nil, fmt.Errorf("%w: target %q has unknown password protection %q", ErrInvalidArgument, stored.Target, stored.Protection)
	}
	return item, nil
}

func (s *FileSchema) toRecord(item *Secret) (record, error) {
	stored := record{
		Identifier: item.Identifier,
		Target:     item.Target,
		Username:   item.Username,
		Meta:       item.Meta,
	}
	if !item.HasPassword() {
		return stored, nil
	}

	plaintext, err := item.Password()
	if err != nil {
		return record{}, err
	}
	defer plaintext.Close()

	if !s.Sealed() {
		password := plaintext.String()
		stored.Password = &password
		return stored, nil
	}

	recipients, err := s.sealingRecipients()
	if err != nil {
		return record{}, err
	}
	ciphertext, err := sealed.Encrypt(plaintext.Bytes(), recipients)
	if err != nil {
		return record{}, fmt.Errorf("sealing password for %q: %w", item.Target, err)
	}
	stored.Password = &ciphertext
	stored.Protection = protectionAge
	return stored, nil
}

func (s *FileSchema) sealingRecipients() ([]string, error) {
	if len(s.recipients) > 0 {
		return s.recipients, nil
	}
	if s.identity == nil {
		return nil, errors.New("sealing requires a recipient or an identity")
	}
	recipient, err := sealed.PublicKeyOf(s.identity)
	if err != nil {
		return nil, fmt.Errorf("deriving sealing recipient: %w", err)
	}
	return []string{recipient}, nil
}
