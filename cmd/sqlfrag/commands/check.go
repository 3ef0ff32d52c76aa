// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
	"github.com/bureau-foundation/sqlfrag/lib/mapper"
)

type checkParams struct {
	buildParams
	cli.JSONOutput
}

// problem is one failure found by check. Statement is empty for
// failures that affect a whole file.
type problem struct {
	Source    string `json:"source"`
	Statement string `json:"statement,omitempty"`
	Error     string `json:"error"`
}

type checkReport struct {
	OK         bool      `json:"ok"`
	Files      int       `json:"files"`
	Fragments  int       `json:"fragments"`
	Statements int       `json:"statements"`
	Problems   []problem `json:"problems"`
}

func checkCommand(env *environment) *cli.Command {
	var params checkParams
	return &cli.Command{
		Name:    "check",
		Summary: "Report mappers and statements that fail to expand",
		Description: `Load every mapper and expand every statement, reporting all problems
instead of stopping at the first. Exits with status 1 if any were found.`,
		Usage: "sqlfrag check [flags] PATH...",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("check", &params) },
		Run:   func(args []string) error { return runCheck(env, &params, args) },
	}
}

func runCheck(env *environment, params *checkParams, args []string) error {
	ws, err := params.open(env, args)
	if err != nil {
		return err
	}

	report := checkReport{Files: len(ws.files), Problems: []problem{}}
	for _, path := range ws.files {
		parsed, err := mapper.ParseFile(path)
		if err == nil {
			err = ws.builder.AddMapper(parsed)
		}
		if err != nil {
			report.Problems = append(report.Problems, problem{Source: path, Error: err.Error()})
		}
	}

	statements, err := ws.builder.Build()
	var incomplete *mapper.IncompleteError
	switch {
	case errors.As(err, &incomplete):
		for _, statement := range incomplete.Statements {
			report.Problems = append(report.Problems, problem{
				Source:    statement.Source,
				Statement: statement.ID,
				Error:     statement.Err.Error(),
			})
		}
		statements = ws.builder.Statements()
	case err != nil:
		report.Problems = append(report.Problems, problem{Error: err.Error()})
	}
	report.Fragments = ws.builder.Registry().Len()
	report.Statements = len(statements)
	report.OK = len(report.Problems) == 0

	if done, err := params.EmitJSON(env.stdout, report); done {
		if err != nil {
			return err
		}
	} else {
		for _, found := range report.Problems {
			switch {
			case found.Statement != "":
				fmt.Fprintf(env.stdout, "%s: %s: %s\n", found.Source, found.Statement, found.Error)
			case found.Source != "":
				fmt.Fprintf(env.stdout, "%s: %s\n", found.Source, found.Error)
			default:
				fmt.Fprintln(env.stdout, found.Error)
			}
		}
		fmt.Fprintf(env.stdout, "%d files, %d fragments, %d statements, %d problems\n",
			report.Files, report.Fragments, report.Statements, len(report.Problems))
	}

	if !report.OK {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
