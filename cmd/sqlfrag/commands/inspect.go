// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
	"github.com/bureau-foundation/sqlfrag/lib/bundle"
	"github.com/bureau-foundation/sqlfrag/lib/codec"
)

type inspectParams struct {
	cli.JSONOutput
	Raw bool `flag:"raw" desc:"print the payload in CBOR diagnostic notation"`
}

type inspectJSON struct {
	Version     uint8                 `json:"version"`
	Compression string                `json:"compression"`
	Size        uint64                `json:"size"`
	Digest      string                `json:"digest"`
	DatabaseID  string                `json:"database_id,omitempty"`
	Statements  []bundleStatementJSON `json:"statements"`
}

type bundleStatementJSON struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Source string `json:"source"`
	Digest string `json:"digest"`
	Body   string `json:"body"`
}

func inspectCommand(env *environment) *cli.Command {
	var params inspectParams
	return &cli.Command{
		Name:    "inspect",
		Summary: "Print the header and statements of a bundle",
		Usage:   "sqlfrag inspect [--raw] BUNDLE",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("inspect", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("inspect takes exactly one bundle file")
			}
			if params.Raw {
				return inspectRaw(env, args[0])
			}

			read, header, err := bundle.ReadFile(args[0])
			if err != nil {
				return err
			}
			report := inspectJSON{
				Version:     header.Version,
				Compression: header.Compression.String(),
				Size:        header.Size,
				Digest:      header.Digest.String(),
				DatabaseID:  read.DatabaseID,
				Statements:  make([]bundleStatementJSON, len(read.Statements)),
			}
			for i, entry := range read.Statements {
				report.Statements[i] = bundleStatementJSON{
					ID:     entry.ID,
					Kind:   entry.Kind,
					Source: entry.Source,
					Digest: entry.Digest.String(),
					Body:   entry.Body,
				}
			}
			if done, err := params.EmitJSON(env.stdout, report); done {
				return err
			}

			fmt.Fprintf(env.stdout, "version %d, %s, %d bytes, digest %s\n",
				header.Version, header.Compression, header.Size, header.Digest.Short())
			if read.DatabaseID != "" {
				fmt.Fprintf(env.stdout, "database id %s\n", read.DatabaseID)
			}
			table := tabwriter.NewWriter(env.stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(table, "ID\tKIND\tSOURCE\tDIGEST\n")
			for _, entry := range read.Statements {
				fmt.Fprintf(table, "%s\t%s\t%s\t%s\n", entry.ID, entry.Kind, entry.Source, entry.Digest.Short())
			}
			return table.Flush()
		},
	}
}

func inspectRaw(env *environment, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer file.Close()

	_, payload, err := bundle.ReadPayload(file)
	if err != nil {
		return err
	}
	notation, err := codec.Diagnose(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.stdout, notation)
	return err
}
