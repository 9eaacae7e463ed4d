// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/safenet/cmd/safenet/cli"
	"github.com/bureau-foundation/safenet/lib/sealed"
)

type keygenParams struct {
	cli.JSONOutput
	Output string `flag:"output,o" desc:"write the identity to this file (mode 0600) instead of stdout"`
	Force  bool   `flag:"force" desc:"overwrite an existing --output file"`
}

type keygenResult struct {
	PublicKey    string `json:"public_key"`
	IdentityFile string `json:"identity_file"`
}

func keygenCommand() *cli.Command {
	var params keygenParams

	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age identity for sealing passwords",
		Description: `Generate an age X25519 keypair for at-rest sealing.

The identity file has the age-keygen layout, so age tooling can read
it. Point sealing.identity_file at it and add the printed public key
to sealing.recipients. Hosts that only store secrets need just the
recipients; they cannot read sealed passwords back.`,
		Usage: "safenet keygen [flags]",
		Examples: []cli.Example{
			{
				Description: "Create the identity used by the default config",
				Command:     "safenet keygen --output ~/.config/safenet/identity.age",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("keygen", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, "safenet keygen [flags]"); err != nil {
				return err
			}
			streams := cli.StreamsFrom(ctx)

			if params.Output == "" && params.OutputJSON {
				return cli.Validation("--json requires --output; the identity itself goes to stdout otherwise")
			}
			if params.Output != "" && !params.Force {
				if _, err := os.Stat(params.Output); err == nil {
					return cli.Validation("%s already exists", params.Output).
						WithHint("Pass --force to replace it. Passwords sealed to the old key become unreadable.")
				}
			}

			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return cli.Internal("%w", err)
			}
			defer keypair.Close()
			identity := sealed.FormatIdentityFile(keypair)

			if params.Output == "" {
				_, err := fmt.Fprint(streams.Out, identity)
				return err
			}

			if err := os.MkdirAll(filepath.Dir(params.Output), 0o700); err != nil {
				return cli.Internal("creating identity directory: %w", err)
			}
			if err := os.WriteFile(params.Output, []byte(identity), 0o600); err != nil {
				return cli.Internal("writing identity: %w", err)
			}
			// WriteFile keeps the mode of an existing file.
			if err := os.Chmod(params.Output, 0o600); err != nil {
				return cli.Internal("restricting identity file: %w", err)
			}
			logger.Info("identity written", "path", params.Output)

			result := keygenResult{PublicKey: keypair.PublicKey, IdentityFile: params.Output}
			if done, err := params.EmitJSON(streams.Out, result); done {
				return err
			}
			fmt.Fprintf(streams.Out, "public key: %s\n", keypair.PublicKey)
			return nil
		},
	}
}
