// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// quietContext discards help output so test logs stay readable.
func quietContext(help *bytes.Buffer) context.Context {
	return WithStreams(context.Background(), Streams{
		In:  strings.NewReader(""),
		Out: &bytes.Buffer{},
		Err: help,
	})
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "safenet",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(context.Context, []string, *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "get",
				Run: func(context.Context, []string, *slog.Logger) error {
					called = "get"
					return nil
				},
			},
		},
	}

	if err := root.Execute(quietContext(&bytes.Buffer{}), []string{"get"}, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "get" {
		t.Errorf("dispatched to %q, want %q", called, "get")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "safenet",
		Subcommands: []*Command{
			{
				Name: "acl",
				Subcommands: []*Command{
					{
						Name: "show",
						Run: func(_ context.Context, args []string, _ *slog.Logger) error {
							called = "acl show"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(quietContext(&bytes.Buffer{}), []string{"acl", "show", "extra-arg"}, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "acl show" {
		t.Errorf("dispatched to %q, want %q", called, "acl show")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

func TestCommand_Execute_PassesLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	var received *slog.Logger

	command := &Command{
		Name: "status",
		Run: func(_ context.Context, _ []string, l *slog.Logger) error {
			received = l
			return nil
		},
	}
	if err := command.Execute(quietContext(&bytes.Buffer{}), nil, logger); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if received != logger {
		t.Error("Run did not receive the logger passed to Execute")
	}

	// A nil logger is replaced rather than passed through.
	if err := command.Execute(quietContext(&bytes.Buffer{}), nil, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if received == nil {
		t.Error("Run received a nil logger")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var vaultPath string
	var target string

	command := &Command{
		Name: "get",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.StringVar(&vaultPath, "vault", "/default.json", "vault path")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	err := command.Execute(quietContext(&bytes.Buffer{}), []string{"--vault", "/custom.json", "https://example.com"}, nil)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if vaultPath != "/custom.json" {
		t.Errorf("vaultPath = %q, want %q", vaultPath, "/custom.json")
	}
	if target != "https://example.com" {
		t.Errorf("target = %q, want %q", target, "https://example.com")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "get",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.Bool("show-password", false, "print the password")
			flagSet.String("method", "exact", "search method")
			return flagSet
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := command.Execute(quietContext(&bytes.Buffer{}), []string{"--mehtod", "regex"}, nil)
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --method") {
		t.Errorf("error = %q, want suggestion for '--method'", errStr)
	}
	if !strings.Contains(errStr, "mehtod") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "get",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.Bool("show-password", false, "print the password")
			return flagSet
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := command.Execute(quietContext(&bytes.Buffer{}), []string{"--zzzzzzzzz"}, nil)
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "safenet",
		Subcommands: []*Command{
			{Name: "protect"},
			{Name: "upsert"},
			{Name: "version"},
		},
	}

	err := root.Execute(quietContext(&bytes.Buffer{}), []string{"upsret"}, nil)
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"upsert\"") {
		t.Errorf("error = %q, want suggestion for 'upsert'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "safenet",
		Subcommands: []*Command{
			{Name: "protect"},
			{Name: "upsert"},
		},
	}

	err := root.Execute(quietContext(&bytes.Buffer{}), []string{"zzzzzzz"}, nil)
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "safenet",
				Summary: "Local secret vault",
				Subcommands: []*Command{
					{Name: "get", Summary: "Look up a secret"},
				},
			}

			var help bytes.Buffer
			if err := root.Execute(quietContext(&help), []string{helpArg}, nil); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
			if !strings.Contains(help.String(), "Look up a secret") {
				t.Errorf("help output = %q, want the subcommand listing", help.String())
			}
		})
	}
}

func TestCommand_Execute_HelpAfterSubcommandFlags(t *testing.T) {
	ran := false
	command := &Command{
		Name:  "get",
		Usage: "safenet get <target> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.String("method", "exact", "search method")
			return flagSet
		},
		Run: func(context.Context, []string, *slog.Logger) error {
			ran = true
			return nil
		},
	}

	var help bytes.Buffer
	if err := command.Execute(quietContext(&help), []string{"--method", "regex", "--help"}, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if ran {
		t.Error("Run called despite --help")
	}
	if !strings.Contains(help.String(), "safenet get <target> [flags]") {
		t.Errorf("help output = %q, want usage line", help.String())
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "safenet",
		Subcommands: []*Command{
			{Name: "get", Summary: "Look up a secret"},
		},
	}

	var help bytes.Buffer
	err := root.Execute(quietContext(&help), []string{}, nil)
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
	if help.Len() == 0 {
		t.Error("no help written for missing subcommand")
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "safenet",
		Description: "Local secret vault.",
		Subcommands: []*Command{
			{Name: "get", Summary: "Look up a secret"},
			{Name: "protect", Summary: "Lock down the vault file"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Show the password for a target",
				Command:     "safenet get https://example.com --show-password",
			},
			{
				Description: "Grant a group read access",
				Command:     "safenet protect --allow group:ops=r",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Local secret vault.",
		"Usage:",
		"safenet <command> [flags]",
		"Commands:",
		"get",
		"Look up a secret",
		"protect",
		"Lock down the vault file",
		"Examples:",
		"safenet get https://example.com --show-password",
		"safenet protect --allow group:ops=r",
		"Run 'safenet <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "get",
		Summary: "Look up a secret",
		Usage:   "safenet get <target> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.String("method", "exact", "search method")
			flagSet.Bool("show-password", false, "print the password")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"safenet get <target> [flags]",
		"Flags:",
		"method",
		"show-password",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "safenet"}
	acl := &Command{Name: "acl", parent: root}
	show := &Command{Name: "show", parent: acl}

	if got := root.fullName(); got != "safenet" {
		t.Errorf("root.fullName() = %q, want %q", got, "safenet")
	}
	if got := acl.fullName(); got != "safenet acl" {
		t.Errorf("acl.fullName() = %q, want %q", got, "safenet acl")
	}
	if got := show.fullName(); got != "safenet acl show" {
		t.Errorf("show.fullName() = %q, want %q", got, "safenet acl show")
	}
}
