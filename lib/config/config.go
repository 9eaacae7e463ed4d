// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/safenet/lib/acl"
	"github.com/bureau-foundation/safenet/lib/sealed"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "SAFENET_CONFIG"

// Config is the master configuration for safenet.
type Config struct {
	// Vault locates the backing file and selects its format.
	Vault VaultConfig `yaml:"vault"`

	// Sealing configures at-rest encryption of passwords.
	Sealing SealingConfig `yaml:"sealing"`

	// Protection configures the access control applied by protect.
	Protection ProtectionConfig `yaml:"protection"`

	// Logging configures the command logger.
	Logging LoggingConfig `yaml:"logging"`
}

// VaultConfig locates the vault file.
type VaultConfig struct {
	// Path is the backing file.
	// Default: ${HOME}/.local/share/safenet/vault.json
	Path string `yaml:"path"`

	// Format is "json" or "cbor".
	// Default: json
	Format string `yaml:"format"`
}

// SealingConfig configures age sealing of stored passwords. Sealing is
// enabled when either field is set.
type SealingConfig struct {
	// Recipients are age1... public keys new passwords are sealed to.
	// When empty, the public key of the identity is used.
	Recipients []string `yaml:"recipients"`

	// IdentityFile holds the AGE-SECRET-KEY-1 key used to open sealed
	// passwords. Without it the vault is write-only.
	IdentityFile string `yaml:"identity_file"`
}

// Enabled reports whether sealing is configured.
func (s SealingConfig) Enabled() bool {
	return len(s.Recipients) > 0 || s.IdentityFile != ""
}

// ProtectionConfig configures the access control applied to the vault.
type ProtectionConfig struct {
	// Administrators owns the protected vault with read and write access.
	// Accepts the principal syntax of lib/acl ("root", "user:ops").
	// Default: root
	Administrators string `yaml:"administrators"`

	// Rules are applied in order after the administrators rule.
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig is one access rule as written in the config file.
type RuleConfig struct {
	Principal string   `yaml:"principal"`
	Kind      string   `yaml:"kind"`
	Rights    []string `yaml:"rights"`
	Type      string   `yaml:"type"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration: an unsealed JSON vault in
// the user's data directory, administered by root.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Vault: VaultConfig{
			Path:   filepath.Join(homeDir, ".local", "share", "safenet", "vault.json"),
			Format: "json",
		},
		Protection: ProtectionConfig{
			Administrators: acl.Administrators.Name,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the SAFENET_CONFIG environment variable.
// It fails if the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your safenet.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields the
// file omits keep their Default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths
// and keys.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Vault.Path = expandVars(c.Vault.Path, vars)
	c.Sealing.IdentityFile = expandVars(c.Sealing.IdentityFile, vars)
	for index, recipient := range c.Sealing.Recipients {
		c.Sealing.Recipients[index] = expandVars(recipient, vars)
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if c.Vault.Path == "" {
		errs = append(errs, fmt.Errorf("vault.path is required"))
	}
	formats := []string{"json", "cbor"}
	if !contains(formats, c.Vault.Format) {
		errs = append(errs, fmt.Errorf("vault.format must be one of: %v", formats))
	}

	for index, recipient := range c.Sealing.Recipients {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			errs = append(errs, fmt.Errorf("sealing.recipients[%d]: %w", index, err))
		}
	}

	if _, err := c.Protection.AdministratorsPrincipal(); err != nil {
		errs = append(errs, fmt.Errorf("protection.administrators: %w", err))
	}
	for index, rule := range c.Protection.Rules {
		if _, err := rule.Rule(); err != nil {
			errs = append(errs, fmt.Errorf("protection.rules[%d]: %w", index, err))
		}
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// AdministratorsPrincipal parses Administrators, defaulting to
// acl.Administrators when empty.
func (p ProtectionConfig) AdministratorsPrincipal() (acl.Principal, error) {
	if p.Administrators == "" {
		return acl.Administrators, nil
	}
	principal, err := acl.ParsePrincipal(p.Administrators)
	if err != nil {
		return acl.Principal{}, err
	}
	if principal.Kind != acl.User {
		return acl.Principal{}, fmt.Errorf("administrators must be a user, got %s", principal)
	}
	return principal, nil
}

// AccessRules converts every configured rule, in order.
func (p ProtectionConfig) AccessRules() ([]acl.Rule, error) {
	rules := make([]acl.Rule, 0, len(p.Rules))
	for index, rule := range p.Rules {
		converted, err := rule.Rule()
		if err != nil {
			return nil, fmt.Errorf("protection.rules[%d]: %w", index, err)
		}
		rules = append(rules, converted)
	}
	return rules, nil
}

// Rule converts the configured rule. Kind defaults to user and Type to
// allow.
func (r RuleConfig) Rule() (acl.Rule, error) {
	var principal acl.Principal
	switch r.Kind {
	case "user", "":
		if r.Principal == "" {
			return acl.Rule{}, fmt.Errorf("principal is required")
		}
		principal = acl.UserPrincipal(r.Principal)
	case "group":
		if r.Principal == "" {
			return acl.Rule{}, fmt.Errorf("principal is required")
		}
		principal = acl.GroupPrincipal(r.Principal)
	case "everyone":
		principal = acl.EveryonePrincipal
	default:
		return acl.Rule{}, fmt.Errorf("kind must be one of: [user group everyone], got %q", r.Kind)
	}

	rights, err := acl.ParseRightsList(r.Rights)
	if err != nil {
		return acl.Rule{}, err
	}
	controlType, err := acl.ParseControlType(r.Type)
	if err != nil {
		return acl.Rule{}, err
	}
	return acl.Rule{Principal: principal, Rights: rights, Type: controlType}, nil
}

// SlogLevel parses Level. Empty means info.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
