// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
	"github.com/bureau-foundation/sqlfrag/lib/statementstore"
)

type exportParams struct {
	buildParams
	cli.JSONOutput
	Database string `flag:"db" desc:"SQLite database to write (required)"`
	Prune    bool   `flag:"prune" desc:"delete stored statements missing from this build"`
}

func exportCommand(env *environment) *cli.Command {
	var params exportParams
	return &cli.Command{
		Name:    "export",
		Summary: "Write expanded statements to a SQLite database",
		Description: `Expand every statement and upsert it into the statements table of a
SQLite database, keyed by qualified id. Statements whose digest is
unchanged are not rewritten.`,
		Usage: "sqlfrag export --db FILE [flags] PATH...",
		Examples: []cli.Example{
			{Description: "Refresh a statement catalog", Command: "sqlfrag export --db statements.db --prune mappers/"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("export", &params) },
		Run: func(args []string) error {
			if params.Database == "" {
				return fmt.Errorf("--db is required")
			}
			ws, statements, err := params.build(env, args)
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, err := statementstore.Open(ctx, statementstore.Config{Path: params.Database, Logger: ws.logger})
			if err != nil {
				return err
			}
			result, err := store.Save(ctx, statements, statementstore.SaveOptions{Prune: params.Prune})
			if closeErr := store.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(env.stdout, result); done {
				return err
			}
			fmt.Fprintf(env.stdout, "%s: %d inserted, %d updated, %d unchanged, %d deleted\n",
				params.Database, result.Inserted, result.Updated, result.Unchanged, result.Deleted)
			return nil
		},
	}
}
