// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
	"github.com/bureau-foundation/sqlfrag/lib/bundle"
	"github.com/bureau-foundation/sqlfrag/lib/config"
)

type expandParams struct {
	buildParams
	Format      string `flag:"format,f" desc:"output format: text, xml, json or cbor (default from config)"`
	Output      string `flag:"output,o" desc:"write to a file instead of stdout"`
	Compression string `flag:"compression" desc:"cbor bundle compression: none, zstd or lz4 (default from config)"`
	Color       string `flag:"color" desc:"colorize text output: auto, always or never (default from config)"`
}

func expandCommand(env *environment) *cli.Command {
	var params expandParams
	return &cli.Command{
		Name:    "expand",
		Summary: "Expand every statement and print it",
		Description: `Expand every statement in the given mapper files and directories.

Includes are resolved across all files, so fragments may be defined in
any mapper. Text output is the statement SQL with whitespace collapsed,
highlighted when writing to a terminal. The cbor format writes a
statement bundle readable with 'sqlfrag inspect'.`,
		Usage: "sqlfrag expand [flags] PATH...",
		Examples: []cli.Example{
			{Description: "Expand a directory of mappers for MySQL", Command: "sqlfrag expand --database-id mysql mappers/"},
			{Description: "Write a compressed bundle", Command: "sqlfrag expand -f cbor -o statements.sqlfrag mappers/"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("expand", &params) },
		Run:   func(args []string) error { return runExpand(env, &params, args) },
	}
}

func runExpand(env *environment, params *expandParams, args []string) error {
	ws, statements, err := params.build(env, args)
	if err != nil {
		return err
	}
	output := ws.config.Output
	format := firstNonEmpty(params.Format, output.Format)
	if !slices.Contains([]string{config.FormatText, config.FormatXML, config.FormatJSON, config.FormatCBOR}, format) {
		return fmt.Errorf("unknown format %q", format)
	}

	var w io.Writer = env.stdout
	var file *os.File
	if params.Output != "" {
		file, err = os.Create(params.Output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer file.Close()
		w = file
	}

	switch format {
	case config.FormatXML:
		err = renderXML(w, statements)
	case config.FormatJSON:
		err = cli.WriteJSON(w, toJSON(statements))
	case config.FormatCBOR:
		if params.Output == "" && cli.IsTerminal(w) {
			return fmt.Errorf("refusing to write a binary bundle to a terminal; use --output")
		}
		compression, parseErr := bundle.ParseCompression(firstNonEmpty(params.Compression, output.Compression))
		if parseErr != nil {
			return parseErr
		}
		var header bundle.Header
		header, err = bundle.Write(w, bundle.FromStatements(ws.config.DatabaseID, statements), compression)
		if err == nil {
			ws.logger.Info("wrote bundle",
				"statements", len(statements),
				"compression", header.Compression.String(),
				"size", header.Size,
				"digest", header.Digest.Short(),
			)
		}
	default:
		color := firstNonEmpty(params.Color, output.Color)
		err = newTextRenderer(w, colorProfile(w, color)).render(statements)
	}
	if err == nil && file != nil {
		err = file.Close()
	}
	if err != nil {
		return fmt.Errorf("writing %s output: %w", format, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
