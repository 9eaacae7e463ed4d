// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/safenet/lib/acl"
	"github.com/bureau-foundation/safenet/lib/sealed"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "safenet.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Vault.Format != "json" {
		t.Errorf("expected format=json, got %s", cfg.Vault.Format)
	}
	if !strings.HasSuffix(cfg.Vault.Path, filepath.Join(".local", "share", "safenet", "vault.json")) {
		t.Errorf("unexpected default vault path %s", cfg.Vault.Path)
	}
	if cfg.Protection.Administrators != "root" {
		t.Errorf("expected administrators=root, got %s", cfg.Protection.Administrators)
	}
	if cfg.Sealing.Enabled() {
		t.Error("sealing should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_RequiresSafenetConfig(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SAFENET_CONFIG not set, got nil")
	}

	expectedMsg := "SAFENET_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithSafenetConfig(t *testing.T) {
	configPath := writeConfig(t, `
vault:
  path: /srv/safenet/vault.cbor
  format: cbor
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Vault.Path != "/srv/safenet/vault.cbor" {
		t.Errorf("expected path=/srv/safenet/vault.cbor, got %s", cfg.Vault.Path)
	}
	if cfg.Vault.Format != "cbor" {
		t.Errorf("expected format=cbor, got %s", cfg.Vault.Format)
	}
	// Omitted sections keep defaults.
	if cfg.Logging.Level != "info" {
		t.Errorf("expected level=info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFile(t *testing.T) {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer keypair.Close()

	configPath := writeConfig(t, `
vault:
  path: ${HOME}/vaults/team.json

sealing:
  recipients: [`+keypair.PublicKey+`]
  identity_file: ${SAFENET_TEST_KEYS:-/etc/safenet}/identity.age

protection:
  administrators: user:ops
  rules:
    - principal: alice
      rights: [read]
    - principal: backup
      kind: group
      rights: [read, write]
      type: deny
    - kind: everyone
      rights: [full]
      type: deny

logging:
  level: debug
`)
	t.Setenv("HOME", "/home/tester")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Vault.Path != "/home/tester/vaults/team.json" {
		t.Errorf("expected expanded path, got %s", cfg.Vault.Path)
	}
	if cfg.Sealing.IdentityFile != "/etc/safenet/identity.age" {
		t.Errorf("expected default-expanded identity file, got %s", cfg.Sealing.IdentityFile)
	}
	if !cfg.Sealing.Enabled() {
		t.Error("sealing should be enabled")
	}

	administrators, err := cfg.Protection.AdministratorsPrincipal()
	if err != nil {
		t.Fatalf("AdministratorsPrincipal: %v", err)
	}
	if administrators != acl.UserPrincipal("ops") {
		t.Errorf("administrators = %v, want user:ops", administrators)
	}

	rules, err := cfg.Protection.AccessRules()
	if err != nil {
		t.Fatalf("AccessRules: %v", err)
	}
	want := []acl.Rule{
		acl.AllowRule(acl.UserPrincipal("alice"), acl.Read),
		acl.DenyRule(acl.GroupPrincipal("backup"), acl.Read|acl.Write),
		acl.DenyRule(acl.EveryonePrincipal, acl.FullControl),
	}
	if len(rules) != len(want) {
		t.Fatalf("got %d rules, want %d", len(rules), len(want))
	}
	for index := range want {
		if rules[index] != want[index] {
			t.Errorf("rule %d = %v, want %v", index, rules[index], want[index])
		}
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, %v; want debug", level, err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	configPath := writeConfig(t, "vault: [unterminated")
	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// Only ${...} references expand; a variable named like a field does
	// not replace the file's value.
	t.Setenv("SAFENET_VAULT_PATH", "/env/vault.json")
	configPath := writeConfig(t, `
vault:
  path: /file/vault.json
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Vault.Path != "/file/vault.json" {
		t.Errorf("expected path=/file/vault.json from file, got %s (env vars should not override)", cfg.Vault.Path)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/safenet",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/safenet",
		},
		{
			input:    "${SAFENET_TEST_UNSET_VARIABLE:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:    "empty vault path",
			modify:  func(c *Config) { c.Vault.Path = "" },
			wantErr: "vault.path",
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.Vault.Format = "xml" },
			wantErr: "vault.format",
		},
		{
			name:    "bad recipient",
			modify:  func(c *Config) { c.Sealing.Recipients = []string{"not-a-key"} },
			wantErr: "sealing.recipients[0]",
		},
		{
			name:    "group administrators",
			modify:  func(c *Config) { c.Protection.Administrators = "group:wheel" },
			wantErr: "protection.administrators",
		},
		{
			name: "rule without rights",
			modify: func(c *Config) {
				c.Protection.Rules = []RuleConfig{{Principal: "alice"}}
			},
			wantErr: "protection.rules[0]",
		},
		{
			name: "rule with unknown kind",
			modify: func(c *Config) {
				c.Protection.Rules = []RuleConfig{{Principal: "alice", Kind: "robot", Rights: []string{"read"}}}
			},
			wantErr: "protection.rules[0]",
		},
		{
			name: "rule with unknown type",
			modify: func(c *Config) {
				c.Protection.Rules = []RuleConfig{{Principal: "alice", Rights: []string{"read"}, Type: "maybe"}}
			},
			wantErr: "protection.rules[0]",
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Logging.Level = "chatty" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Vault.Path = ""
	cfg.Logging.Level = "chatty"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, field := range []string{"vault.path", "logging.level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}
