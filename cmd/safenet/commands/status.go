// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/safenet/cmd/safenet/cli"
	"github.com/bureau-foundation/safenet/lib/binhash"
	"github.com/bureau-foundation/safenet/lib/codec"
	"github.com/bureau-foundation/safenet/lib/vault"
)

type statusParams struct {
	Vault VaultFlags
	cli.JSONOutput
	Diagnose bool   `flag:"diagnose" desc:"dump a CBOR vault in diagnostic notation"`
	Expect   string `flag:"expect" desc:"exit 3 unless the fingerprint equals this hex digest"`
}

type statusView struct {
	Path          string         `json:"path"`
	Format        string         `json:"format"`
	Sealed        bool           `json:"sealed"`
	Secrets       int            `json:"secrets"`
	Size          int64          `json:"size"`
	Fingerprint   string         `json:"fingerprint"`
	AccessControl descriptorView `json:"access_control"`
}

func statusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show the vault file, its contents count, and its access control",
		Description: `Summarize the vault: location, format, whether passwords are sealed,
how many secrets it holds, a BLAKE3 fingerprint of the file, and the
current owner, group and access rules.

Compare fingerprints across runs to notice edits made outside safenet;
--expect does the comparison and exits 3 on a mismatch. With --diagnose a CBOR vault is printed in CBOR diagnostic notation.`,
		Usage: "safenet status [flags]",
		Examples: []cli.Example{
			{
				Description: "Machine-readable summary",
				Command:     "safenet status --json",
			},
			{
				Description: "Fail if the vault changed since the recorded fingerprint",
				Command:     "safenet status --expect \"$(cat vault.fingerprint)\"",
			},
			{
				Description: "Inspect a CBOR vault",
				Command:     "safenet status --vault /srv/app/vault.cbor --diagnose",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("status", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, "safenet status [flags]"); err != nil {
				return err
			}
			session, err := params.Vault.open(ctx, logger, "status")
			if err != nil {
				return err
			}
			defer session.Close()

			var expected binhash.Digest
			if params.Expect != "" {
				expected, err = binhash.ParseDigest(params.Expect)
				if err != nil {
					return cli.Validation("--expect: %w", err)
				}
			}

			streams := cli.StreamsFrom(ctx)
			if params.Diagnose {
				return diagnose(streams, session)
			}

			view, err := session.status()
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(streams.Out, view); done {
				if err != nil {
					return err
				}
				return checkFingerprint(streams, params.Expect, expected, view.Fingerprint)
			}

			writer := tabwriter.NewWriter(streams.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "path:\t%s\n", view.Path)
			fmt.Fprintf(writer, "format:\t%s\n", view.Format)
			fmt.Fprintf(writer, "sealed:\t%t\n", view.Sealed)
			fmt.Fprintf(writer, "secrets:\t%d\n", view.Secrets)
			fmt.Fprintf(writer, "size:\t%d bytes\n", view.Size)
			fmt.Fprintf(writer, "fingerprint:\t%s\n", view.Fingerprint)
			if err := writer.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(streams.Out)
			if err := writeDescriptor(streams.Out, view.AccessControl); err != nil {
				return err
			}
			return checkFingerprint(streams, params.Expect, expected, view.Fingerprint)
		},
	}
}

func (s *session) status() (statusView, error) {
	path := s.safe.Path()
	info, err := os.Stat(path)
	if err != nil {
		return statusView{}, cli.Internal("%w", err)
	}

	secrets, err := s.safe.Secrets()
	if errors.Is(err, vault.ErrSealed) {
		return statusView{}, cli.Internal("%w", err).
			WithHint("Set sealing.identity_file to open sealed passwords.")
	}
	if err != nil {
		return statusView{}, cli.Internal("%w", err)
	}
	count := len(secrets)
	vault.CloseAll(secrets)

	fingerprint, err := s.safe.Fingerprint()
	if err != nil {
		return statusView{}, cli.Internal("%w", err)
	}
	descriptor, err := s.safe.AccessControl()
	if err != nil {
		return statusView{}, cli.Internal("%w", err)
	}

	return statusView{
		Path:          path,
		Format:        s.schema.Format(),
		Sealed:        s.schema.Sealed(),
		Secrets:       count,
		Size:          info.Size(),
		Fingerprint:   fingerprint,
		AccessControl: newDescriptorView(descriptor),
	}, nil
}

// checkFingerprint returns ExitError 3 when an expected digest was
// given and actual differs from it.
func checkFingerprint(streams cli.Streams, flag string, expected binhash.Digest, actual string) error {
	if flag == "" || expected.String() == actual {
		return nil
	}
	fmt.Fprintf(streams.Err, "fingerprint mismatch: expected %s, vault is %s\n", expected, actual)
	return &cli.ExitError{Code: 3}
}

func diagnose(streams cli.Streams, s *session) error {
	if s.schema.Format() != "cbor" {
		return cli.Validation("--diagnose needs a cbor vault, %s is %s", s.safe.Path(), s.schema.Format())
	}
	data, err := os.ReadFile(s.safe.Path())
	if err != nil {
		return cli.Internal("%w", err)
	}
	if len(data) == 0 {
		fmt.Fprintln(streams.Out, "[]")
		return nil
	}
	notation, err := codec.Diagnose(data)
	if err != nil {
		return cli.Internal("decoding %s: %w", s.safe.Path(), err)
	}
	fmt.Fprintln(streams.Out, notation)
	return nil
}
