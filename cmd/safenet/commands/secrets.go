// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/safenet/cmd/safenet/cli"
	"github.com/bureau-foundation/safenet/lib/vault"
)

// SearchFlags select how a pattern is matched against targets.
type SearchFlags struct {
	Method string `flag:"method,m" desc:"match method: exact, wildcard, or regex" default:"exact"`
}

func (f SearchFlags) method() (vault.SearchMethod, error) {
	method, err := vault.ParseSearchMethod(f.Method)
	if err != nil {
		return 0, cli.Validation("--method: %w", err)
	}
	return method, nil
}

// lookupError classifies a failed lookup: bad patterns are the
// caller's fault, everything else is internal.
func lookupError(err error) error {
	if errors.Is(err, vault.ErrPattern) || errors.Is(err, vault.ErrUnsupportedMethod) {
		return cli.Validation("%w", err)
	}
	return cli.Internal("%w", err)
}

type getParams struct {
	Vault VaultFlags
	cli.JSONOutput
	SearchFlags
	ShowPassword bool `flag:"show-password" desc:"print the password"`
}

func getCommand() *cli.Command {
	var params getParams

	return &cli.Command{
		Name:    "get",
		Summary: "Look up a secret by target",
		Description: `Print the first secret whose target matches the argument.

Matching ignores case. With --method wildcard the pattern is a glob
that must match the whole target; with --method regex it is an RE2
expression that may match anywhere in the target.

Exits 2 without output on stdout when nothing matches.`,
		Usage: "safenet get <target> [flags]",
		Examples: []cli.Example{
			{
				Description: "Show a credential including its password",
				Command:     "safenet get https://git.example.com --show-password",
			},
			{
				Description: "Find the first credential for any example.com host",
				Command:     "safenet get '*.example.com' --method wildcard --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("get", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, "safenet get <target> [flags]"); err != nil {
				return err
			}
			method, err := params.method()
			if err != nil {
				return err
			}

			session, err := params.Vault.open(ctx, logger, "get")
			if err != nil {
				return err
			}
			defer session.Close()

			streams := cli.StreamsFrom(ctx)
			item, err := session.safe.RetrieveSecretMatching(args[0], method)
			if err != nil {
				return lookupError(err)
			}
			if item == nil {
				fmt.Fprintf(streams.Err, "no secret matches %q\n", args[0])
				return &cli.ExitError{Code: 2}
			}
			defer item.Close()

			view, err := newSecretView(item, params.ShowPassword)
			if err != nil {
				return cli.Internal("revealing password: %w", err)
			}
			if done, err := params.EmitJSON(streams.Out, view); done {
				return err
			}
			return writeSecret(streams.Out, view)
		},
	}
}

// storeParams are shared by set and upsert.
type storeParams struct {
	Vault        VaultFlags
	Username     string   `flag:"username,u" desc:"username stored with the secret"`
	PasswordFile string   `flag:"password-file" desc:"read the password from this file, or - for stdin (default: prompt or stdin)"`
	NoPassword   bool     `flag:"no-password" desc:"store the secret without a password"`
	Meta         []string `flag:"meta" desc:"metadata as KEY=VALUE (repeatable)"`
}

// build assembles an unstored secret for target from the flags.
func (p *storeParams) build(streams cli.Streams, target string) (*vault.Secret, error) {
	if target == "" {
		return nil, cli.Validation("target is empty")
	}
	if p.NoPassword && p.PasswordFile != "" {
		return nil, cli.Validation("--no-password and --password-file are mutually exclusive")
	}
	meta, err := parseMeta(p.Meta)
	if err != nil {
		return nil, err
	}

	item, err := vault.NewSecret(target, p.Username, nil)
	if err != nil {
		return nil, err
	}
	item.Meta = meta
	if p.NoPassword {
		return item, nil
	}

	password, err := readPassword(streams, p.PasswordFile, target)
	if err != nil {
		return nil, err
	}
	defer password.Close()
	if err := item.SetPassword(password.Bytes()); err != nil {
		return nil, err
	}
	return item, nil
}

func setCommand() *cli.Command {
	var params storeParams

	return &cli.Command{
		Name:    "set",
		Summary: "Add a new secret",
		Description: `Append a new secret to the vault.

set always adds a record, even when another secret already has the
same target; use upsert to replace an existing one. The password is
read from --password-file, from stdin when it is piped, or from an
interactive prompt.`,
		Usage: "safenet set <target> [flags]",
		Examples: []cli.Example{
			{
				Description: "Store a credential, prompting for the password",
				Command:     "safenet set https://git.example.com --username alice",
			},
			{
				Description: "Store a token piped from another tool",
				Command:     "vault-export ci-token | safenet set ci.example.com --meta env=prod",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("set", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, "safenet set <target> [flags]"); err != nil {
				return err
			}
			streams := cli.StreamsFrom(ctx)
			item, err := params.build(streams, args[0])
			if err != nil {
				return err
			}
			defer item.Close()

			session, err := params.Vault.open(ctx, logger, "set")
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.safe.StoreSecret(item); err != nil {
				return cli.Internal("%w", err)
			}
			session.logger.Info("secret stored", "secret", item)
			fmt.Fprintf(streams.Out, "%s\n", item.Identifier)
			return nil
		},
	}
}

func upsertCommand() *cli.Command {
	var params storeParams

	return &cli.Command{
		Name:    "upsert",
		Summary: "Add a secret or replace the one with the same target",
		Description: `Store a secret, replacing the first existing secret whose target
equals the argument (ignoring case). The replaced record keeps its
identifier; its username, password and metadata are overwritten.
Without a match the secret is appended like set.`,
		Usage: "safenet upsert <target> [flags]",
		Examples: []cli.Example{
			{
				Description: "Rotate a password read from a file",
				Command:     "safenet upsert https://git.example.com --username alice --password-file ./new-token",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("upsert", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, "safenet upsert <target> [flags]"); err != nil {
				return err
			}
			streams := cli.StreamsFrom(ctx)
			item, err := params.build(streams, args[0])
			if err != nil {
				return err
			}
			defer item.Close()

			session, err := params.Vault.open(ctx, logger, "upsert")
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.safe.UpsertSecret(item); err != nil {
				return cli.Internal("%w", err)
			}
			session.logger.Info("secret upserted", "secret", item)
			fmt.Fprintf(streams.Out, "%s\n", item.Identifier)
			return nil
		},
	}
}

type listParams struct {
	Vault VaultFlags
	cli.JSONOutput
	SearchFlags
	Match string `flag:"match" desc:"only list secrets whose target matches this pattern"`
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List stored secrets",
		Description: `List every secret in the vault, or those whose target matches --match.

Passwords are never printed; use get --show-password for one secret.`,
		Usage: "safenet list [flags]",
		Examples: []cli.Example{
			{
				Description: "List everything",
				Command:     "safenet list",
			},
			{
				Description: "List credentials for hosts under example.com",
				Command:     "safenet list --match '*.example.com' --method wildcard --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, "safenet list [flags]"); err != nil {
				return err
			}
			method, err := params.method()
			if err != nil {
				return err
			}

			session, err := params.Vault.open(ctx, logger, "list")
			if err != nil {
				return err
			}
			defer session.Close()

			var secrets []*vault.Secret
			if params.Match != "" {
				secrets, err = session.schema.FindSecrets(params.Match, method)
			} else {
				secrets, err = session.safe.Secrets()
			}
			if err != nil {
				return lookupError(err)
			}
			defer vault.CloseAll(secrets)

			views := make([]secretView, 0, len(secrets))
			for _, item := range secrets {
				view, err := newSecretView(item, false)
				if err != nil {
					return cli.Internal("%w", err)
				}
				views = append(views, view)
			}

			streams := cli.StreamsFrom(ctx)
			if done, err := params.EmitJSON(streams.Out, views); done {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(streams.Err, "no secrets")
				return nil
			}

			writer := tabwriter.NewWriter(streams.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "TARGET\tUSERNAME\tIDENTIFIER\n")
			for _, view := range views {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", view.Target, view.Username, view.Identifier)
			}
			return writer.Flush()
		},
	}
}
