// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/safenet/cmd/safenet/cli"
	"github.com/bureau-foundation/safenet/lib/acl"
)

type ProtectFlags struct {
	Allow  []string `flag:"allow" desc:"grant PRINCIPAL=RIGHTS, e.g. group:ops=r (repeatable)"`
	Deny   []string `flag:"deny" desc:"deny PRINCIPAL=RIGHTS (repeatable)"`
	Revoke []string `flag:"revoke" desc:"drop every rule for PRINCIPAL, including configured ones (repeatable)"`
}

// rules returns the configured rules followed by --allow and then
// --deny rules. Later rules replace earlier ones for the same
// principal and type.
func (f ProtectFlags) rules(configured []acl.Rule) ([]acl.Rule, error) {
	allow, err := parseRuleFlags(f.Allow, acl.Allow)
	if err != nil {
		return nil, err
	}
	deny, err := parseRuleFlags(f.Deny, acl.Deny)
	if err != nil {
		return nil, err
	}
	rules := make([]acl.Rule, 0, len(configured)+len(allow)+len(deny))
	rules = append(rules, configured...)
	rules = append(rules, allow...)
	return append(rules, deny...), nil
}

func (f ProtectFlags) revoked() ([]acl.Principal, error) {
	principals := make([]acl.Principal, 0, len(f.Revoke))
	for _, text := range f.Revoke {
		principal, err := acl.ParsePrincipal(text)
		if err != nil {
			return nil, cli.Validation("--revoke: %w", err)
		}
		principals = append(principals, principal)
	}
	return principals, nil
}

// protect locks the session's vault down with the configured rules
// plus flags.
func (s *session) protect(flags ProtectFlags) error {
	configured, err := s.config.Protection.AccessRules()
	if err != nil {
		return cli.Validation("protection.rules: %w", err)
	}
	rules, err := flags.rules(configured)
	if err != nil {
		return err
	}
	revoked, err := flags.revoked()
	if err != nil {
		return err
	}
	for _, principal := range revoked {
		if principal == s.safe.Administrators() {
			return cli.Validation("--revoke: %s is the administrators principal", principal)
		}
	}
	if err := s.safe.ProtectRevoking(rules, revoked...); err != nil {
		return cli.Internal("%w", err)
	}
	s.logger.Info("vault protected", "rules", len(rules), "revoked", len(revoked))
	return nil
}

type protectParams struct {
	Vault VaultFlags
	cli.JSONOutput
	ProtectFlags
}

func protectCommand() *cli.Command {
	var params protectParams

	return &cli.Command{
		Name:    "protect",
		Summary: "Restrict access to the vault file",
		Description: `Lock the vault file down.

Inherited permissions are dropped, the administrators principal
(protection.administrators, default root) becomes the owner with read
and write access, and then the rules from protection.rules and the
--allow and --deny flags are applied in that order. A later rule for
the same principal and type replaces an earlier one. Deny rights win
over allow rights. Finally every rule naming a --revoke principal is
dropped.

Principals are written user:NAME, group:NAME, everyone, or a bare
user name. Rights are letters (r, w, x, rw, r-x) or words (read,
write, execute, full).`,
		Usage: "safenet protect [flags]",
		Examples: []cli.Example{
			{
				Description: "Owner-only access plus read for the ops group",
				Command:     "safenet protect --allow group:ops=r",
			},
			{
				Description: "Explicitly deny a user",
				Command:     "safenet protect --deny user:guest=rwx",
			},
			{
				Description: "Drop a configured grant for this run",
				Command:     "safenet protect --revoke everyone",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("protect", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, "safenet protect [flags]"); err != nil {
				return err
			}
			session, err := params.Vault.open(ctx, logger, "protect")
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.protect(params.ProtectFlags); err != nil {
				return err
			}
			descriptor, err := session.safe.AccessControl()
			if err != nil {
				return cli.Internal("%w", err)
			}

			streams := cli.StreamsFrom(ctx)
			view := newDescriptorView(descriptor)
			if done, err := params.EmitJSON(streams.Out, view); done {
				return err
			}
			return writeDescriptor(streams.Out, view)
		},
	}
}

type initParams struct {
	Vault   VaultFlags
	Protect bool `flag:"protect" desc:"also apply protection as 'safenet protect' would"`
	ProtectFlags
}

func initCommand() *cli.Command {
	var params initParams

	return &cli.Command{
		Name:    "init",
		Summary: "Create the vault file",
		Description: `Create an empty vault at the configured path, along with any missing
parent directories (mode 0700). An existing vault is left untouched.

With --protect the new or existing file is also locked down; see
'safenet protect --help' for how rules are applied.`,
		Usage: "safenet init [flags]",
		Examples: []cli.Example{
			{
				Description: "Create and protect the default vault",
				Command:     "safenet init --protect",
			},
			{
				Description: "Create a CBOR vault at a custom location",
				Command:     "safenet init --config ./safenet.yaml --vault /srv/app/vault.cbor",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("init", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, "safenet init [flags]"); err != nil {
				return err
			}
			if !params.Protect && (len(params.Allow) > 0 || len(params.Deny) > 0 || len(params.Revoke) > 0) {
				return cli.Validation("--allow, --deny and --revoke require --protect")
			}

			cfg, err := params.Vault.loadConfig()
			if err != nil {
				return err
			}
			_, statErr := os.Stat(cfg.Vault.Path)
			existed := !errors.Is(statErr, fs.ErrNotExist)

			session, err := params.Vault.open(ctx, logger, "init")
			if err != nil {
				return err
			}
			defer session.Close()

			if params.Protect {
				if err := session.protect(params.ProtectFlags); err != nil {
					return err
				}
			}

			streams := cli.StreamsFrom(ctx)
			if existed {
				fmt.Fprintf(streams.Out, "vault already exists at %s\n", session.safe.Path())
			} else {
				fmt.Fprintf(streams.Out, "created vault at %s\n", session.safe.Path())
			}
			return nil
		},
	}
}
