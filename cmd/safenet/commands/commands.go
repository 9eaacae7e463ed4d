// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/safenet/cmd/safenet/cli"
	"github.com/bureau-foundation/safenet/lib/version"
)

// Root builds and returns the complete safenet CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "safenet",
		Description: `safenet: a local secret vault.

Store credentials in a single file, look them up by exact target,
wildcard or regular expression, and lock the file down with
filesystem access control. Passwords can be sealed at rest with age.

Configuration comes from --config, then $SAFENET_CONFIG, then
built-in defaults (vault at ~/.local/share/safenet/vault.json).`,
		Subcommands: []*cli.Command{
			initCommand(),
			protectCommand(),
			getCommand(),
			setCommand(),
			upsertCommand(),
			listCommand(),
			keygenCommand(),
			statusCommand(),
			versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Create and lock down the vault",
				Command:     "safenet init --protect",
			},
			{
				Description: "Store or rotate a credential",
				Command:     "safenet upsert https://git.example.com --username alice",
			},
			{
				Description: "Read it back",
				Command:     "safenet get https://git.example.com --show-password",
			},
		},
	}
}

func versionCommand() *cli.Command {
	var params struct {
		cli.JSONOutput
	}

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(ctx context.Context, _ []string, _ *slog.Logger) error {
			streams := cli.StreamsFrom(ctx)
			if done, err := params.EmitJSON(streams.Out, version.Current()); done {
				return err
			}
			fmt.Fprintf(streams.Out, "safenet %s\n", version.Full())
			return nil
		},
	}
}
