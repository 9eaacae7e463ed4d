// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/safenet/cmd/safenet/cli"
	"github.com/bureau-foundation/safenet/lib/acl"
	"github.com/bureau-foundation/safenet/lib/config"
	"github.com/bureau-foundation/safenet/lib/environment"
	"github.com/bureau-foundation/safenet/lib/sealed"
	"github.com/bureau-foundation/safenet/lib/secret"
	"github.com/bureau-foundation/safenet/lib/vault"
)

// VaultFlags are the flags every vault command accepts.
type VaultFlags struct {
	ConfigPath string
	VaultPath  string
}

// AddFlags registers --config and --vault.
func (f *VaultFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.ConfigPath, "config", "", "config file (default $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.StringVar(&f.VaultPath, "vault", "", "vault file, overriding vault.path from the config")
}

// loadConfig resolves configuration: --config wins, then
// SAFENET_CONFIG, then the built-in defaults. --vault overrides the
// configured path. The result is validated.
func (f *VaultFlags) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case f.ConfigPath != "":
		cfg, err = config.LoadFile(f.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, cli.Validation("loading config: %w", err)
	}

	if f.VaultPath != "" {
		cfg.Vault.Path = f.VaultPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid config: %w", err)
	}
	return cfg, nil
}

// session is an open vault plus everything borrowed by it.
type session struct {
	config *config.Config
	safe   *vault.FileSafe
	schema *vault.FileSchema
	logger *slog.Logger

	identity *secret.Buffer
}

// Close releases the sealing identity, if one was loaded.
func (s *session) Close() error {
	if s.identity != nil {
		return s.identity.Close()
	}
	return nil
}

// open loads configuration and opens the vault it names, creating the
// file if it does not exist. The caller must Close the session.
func (f *VaultFlags) open(ctx context.Context, logger *slog.Logger, command string) (*session, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	if level, err := cfg.Logging.SlogLevel(); err == nil {
		cli.SetLogLevel(ctx, level)
	}
	logger = logger.With("command", command)

	administrators, err := cfg.Protection.AdministratorsPrincipal()
	if err != nil {
		return nil, cli.Validation("protection.administrators: %w", err)
	}

	result := &session{config: cfg}

	env := environment.NewOS()
	schemaOptions := []vault.SchemaOption{vault.WithSchemaLogger(logger)}
	if cfg.Sealing.Enabled() {
		if cfg.Sealing.IdentityFile != "" {
			identity, err := loadIdentity(cfg.Sealing.IdentityFile)
			if err != nil {
				return nil, err
			}
			result.identity = identity
		}
		schemaOptions = append(schemaOptions, vault.WithSealing(cfg.Sealing.Recipients, result.identity))
	}

	schema, err := vault.NewSchema(cfg.Vault.Format, env, schemaOptions...)
	if err != nil {
		result.Close()
		return nil, cli.Validation("%w", err)
	}
	safe, err := vault.NewFileSafe(cfg.Vault.Path,
		vault.WithEnvironment(env),
		vault.WithSchema(schema),
		vault.WithLogger(logger),
		vault.WithAdministrators(administrators),
	)
	if err != nil {
		result.Close()
		return nil, cli.Internal("opening vault: %w", err)
	}

	result.safe = safe
	result.schema = schema
	result.logger = logger.With("vault", safe.Path())
	return result, nil
}

func loadIdentity(path string) (*secret.Buffer, error) {
	identity, err := sealed.LoadIdentity(path)
	if err != nil {
		return nil, cli.Validation("sealing.identity_file: %w", err).
			WithHint("Run 'safenet keygen --output " + path + "' to create one.")
	}
	return identity, nil
}

// parseRuleFlags parses --allow or --deny values into rules.
func parseRuleFlags(values []string, controlType acl.ControlType) ([]acl.Rule, error) {
	rules := make([]acl.Rule, 0, len(values))
	for _, value := range values {
		rule, err := acl.ParseRule(value, controlType)
		if err != nil {
			return nil, cli.Validation("--%s: %w", controlType, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// requireArgs fails with a usage error unless args has exactly want
// elements.
func requireArgs(args []string, want int, usage string) error {
	if len(args) != want {
		return cli.Validation("expected %d argument(s), got %d\n\nUsage: %s", want, len(args), usage)
	}
	return nil
}
