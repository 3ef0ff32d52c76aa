// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
	"github.com/bureau-foundation/sqlfrag/lib/statementstore"
)

type showParams struct {
	cli.JSONOutput
	Database string `flag:"db" desc:"SQLite database written by export (required)"`
}

func showCommand(env *environment) *cli.Command {
	var params showParams
	return &cli.Command{
		Name:    "show",
		Summary: "List exported statements, or print one",
		Usage:   "sqlfrag show --db FILE [ID]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("show", &params) },
		Run: func(args []string) error {
			if params.Database == "" {
				return fmt.Errorf("--db is required")
			}
			if len(args) > 1 {
				return fmt.Errorf("show takes at most one statement id, got %d", len(args))
			}

			ctx := context.Background()
			store, err := statementstore.Open(ctx, statementstore.Config{Path: params.Database})
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				record, found, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("statement %q not found in %s", args[0], params.Database)
				}
				if done, err := params.EmitJSON(env.stdout, record); done {
					return err
				}
				fmt.Fprintf(env.stdout, "-- %s (%s, %s, %s)\n%s;\n",
					record.ID, record.Kind, record.Source, record.Digest.Short(), record.Text)
				return nil
			}

			records, err := store.List(ctx)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(env.stdout, records); done {
				return err
			}
			table := tabwriter.NewWriter(env.stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(table, "ID\tKIND\tSOURCE\tDIGEST\n")
			for _, record := range records {
				fmt.Fprintf(table, "%s\t%s\t%s\t%s\n", record.ID, record.Kind, record.Source, record.Digest.Short())
			}
			return table.Flush()
		},
	}
}
