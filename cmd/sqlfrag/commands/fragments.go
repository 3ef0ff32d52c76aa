// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
)

type fragmentsParams struct {
	buildParams
	cli.JSONOutput
}

type fragmentJSON struct {
	ID         string `json:"id"`
	DatabaseID string `json:"database_id,omitempty"`
	Source     string `json:"source"`
}

func fragmentsCommand(env *environment) *cli.Command {
	var params fragmentsParams
	return &cli.Command{
		Name:    "fragments",
		Summary: "List the SQL fragments selected for the database id",
		Usage:   "sqlfrag fragments [flags] PATH...",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("fragments", &params) },
		Run: func(args []string) error {
			ws, err := params.open(env, args)
			if err != nil {
				return err
			}
			if err := ws.builder.AddFiles(ws.files...); err != nil {
				return err
			}

			fragments := ws.builder.Registry().All()
			listing := make([]fragmentJSON, len(fragments))
			for i, fragment := range fragments {
				listing[i] = fragmentJSON{ID: fragment.ID, DatabaseID: fragment.DatabaseID, Source: fragment.Source}
			}
			if done, err := params.EmitJSON(env.stdout, listing); done {
				return err
			}

			table := tabwriter.NewWriter(env.stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(table, "ID\tDATABASE\tSOURCE\n")
			for _, fragment := range listing {
				databaseID := fragment.DatabaseID
				if databaseID == "" {
					databaseID = "-"
				}
				fmt.Fprintf(table, "%s\t%s\t%s\n", fragment.ID, databaseID, fragment.Source)
			}
			return table.Flush()
		},
	}
}
