// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "sqlfrag",
		Subcommands: []*Command{
			{Name: "version", Run: func(args []string) error { called = "version"; return nil }},
			{
				Name: "db",
				Subcommands: []*Command{
					{Name: "show", Run: func(args []string) error {
						called = "db show"
						receivedArgs = args
						return nil
					}},
				},
			},
		},
	}

	if err := root.Execute([]string{"db", "show", "app.User.find"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "db show" {
		t.Errorf("dispatched to %q, want %q", called, "db show")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "app.User.find" {
		t.Errorf("args = %v, want [app.User.find]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var format string
	var paths []string

	command := &Command{
		Name: "expand",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("expand", pflag.ContinueOnError)
			flagSet.StringVar(&format, "format", "text", "output format")
			return flagSet
		},
		Run: func(args []string) error {
			paths = args
			return nil
		},
	}

	if err := command.Execute([]string{"--format", "json", "mappers/"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if format != "json" {
		t.Errorf("format = %q, want json", format)
	}
	if len(paths) != 1 || paths[0] != "mappers/" {
		t.Errorf("paths = %v", paths)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "expand",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("expand", pflag.ContinueOnError)
			flagSet.String("format", "text", "output format")
			flagSet.String("output", "", "output file")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--fromat", "json"})
	if err == nil {
		t.Fatal("Execute accepted an unknown flag")
	}
	message := err.Error()
	if !strings.Contains(message, "did you mean --format") {
		t.Errorf("error = %q, want a suggestion for --format", message)
	}
	if !strings.Contains(message, "fromat") || !strings.Contains(message, "--help") {
		t.Errorf("error = %q, should name the bad flag and point to --help", message)
	}

	err = command.Execute([]string{"--zzzzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion for a distant flag", err)
	}
}

func TestCommand_Execute_UnknownSubcommand(t *testing.T) {
	root := &Command{
		Name:        "sqlfrag",
		Subcommands: []*Command{{Name: "expand"}, {Name: "export"}, {Name: "check"}},
	}

	err := root.Execute([]string{"chekc"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "check"`) {
		t.Errorf("error = %v, want a suggestion for check", err)
	}
	err = root.Execute([]string{"zzzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion", err)
	}
}

func TestCommand_Execute_Help(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			var output bytes.Buffer
			var format string
			root := &Command{
				Name:       "sqlfrag",
				Summary:    "Expand SQL fragments",
				HelpOutput: &output,
				Subcommands: []*Command{
					{
						Name:    "expand",
						Summary: "Expand statements",
						Flags: func() *pflag.FlagSet {
							flagSet := pflag.NewFlagSet("expand", pflag.ContinueOnError)
							flagSet.StringVar(&format, "format", "text", "output format")
							return flagSet
						},
						Examples: []Example{{Description: "Expand a directory", Command: "sqlfrag expand mappers/"}},
						Run:      func(args []string) error { return nil },
					},
				},
			}

			if err := root.Execute([]string{helpArg}); err != nil {
				t.Fatalf("Execute(%s): %v", helpArg, err)
			}
			if !strings.Contains(output.String(), "expand") || !strings.Contains(output.String(), "Expand statements") {
				t.Errorf("root help = %q", output.String())
			}

			output.Reset()
			if err := root.Execute([]string{"expand", helpArg}); err != nil {
				t.Fatalf("Execute(expand %s): %v", helpArg, err)
			}
			help := output.String()
			for _, want := range []string{"sqlfrag expand [flags]", "--format", "# Expand a directory"} {
				if !strings.Contains(help, want) {
					t.Errorf("expand help missing %q:\n%s", want, help)
				}
			}
		})
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var output bytes.Buffer
	root := &Command{Name: "sqlfrag", HelpOutput: &output, Subcommands: []*Command{{Name: "expand"}}}
	if err := root.Execute(nil); err == nil {
		t.Error("Execute with no arguments succeeded")
	}
	if !strings.Contains(output.String(), "Commands:") {
		t.Errorf("help not printed: %q", output.String())
	}
}
