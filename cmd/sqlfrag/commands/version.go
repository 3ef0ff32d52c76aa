// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
	"github.com/bureau-foundation/sqlfrag/lib/version"
)

func versionCommand(env *environment) *cli.Command {
	var params cli.JSONOutput
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("version", &params) },
		Run: func(args []string) error {
			build := version.Current()
			if done, err := params.EmitJSON(env.stdout, build); done {
				return err
			}
			_, err := fmt.Fprintf(env.stdout, "sqlfrag %s\n", build.Full())
			return err
		},
	}
}
