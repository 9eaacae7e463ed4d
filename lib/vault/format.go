// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/safenet/lib/codec"
)

// protectionAge marks a password field holding base64 age ciphertext.
const protectionAge = "age"

// record is the persisted form of a Secret. A nil Password is written
// as null and reads back as a secret without a password.
type record struct {
	Identifier uuid.UUID      `json:"identifier" cbor:"identifier"`
	Target     string         `json:"target" cbor:"target"`
	Username   string         `json:"username" cbor:"username"`
	Password   *string        `json:"password" cbor:"password"`
	Protection string         `json:"protection,omitempty" cbor:"protection,omitempty"`
	Meta       map[string]any `json:"meta" cbor:"meta"`
}

// recordFormat converts between the backing file's text and its
// records. Empty or whitespace-only text decodes to no records.
type recordFormat interface {
	name() string
	encode(records []record) (string, error)
	decode(text string) ([]record, error)
}

// jsonFormat writes an indented JSON array. Decoding accepts comments
// and trailing commas so hand-edited vault files still load.
type jsonFormat struct{}

func (jsonFormat) name() string { return "json" }

func (jsonFormat) encode(records []record) (string, error) {
	if records == nil {
		records = []record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (jsonFormat) decode(text string) ([]record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var records []record
	if err := json.Unmarshal(jsonc.ToJSON([]byte(text)), &records); err != nil {
		return nil, fmt.Errorf("decoding JSON vault: %w", err)
	}
	return records, nil
}

// cborFormat writes a deterministic CBOR array.
type cborFormat struct{}

func (cborFormat) name() string { return "cbor" }

func (cborFormat) encode(records []record) (string, error) {
	if records == nil {
		records = []record{}
	}
	data, err := codec.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (cborFormat) decode(text string) ([]record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var records []record
	if err := codec.Unmarshal([]byte(text), &records); err != nil {
		return nil, fmt.Errorf("decoding CBOR vault: %w", err)
	}
	return records, nil
}
