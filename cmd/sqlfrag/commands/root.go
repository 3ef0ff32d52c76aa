// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the sqlfrag command tree.
package commands

import (
	"io"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
)

// environment carries the streams every command writes to.
type environment struct {
	stdout io.Writer
	stderr io.Writer
}

// Root returns the sqlfrag command tree. Results go to stdout; logs
// and help go to stderr.
func Root(stdout, stderr io.Writer) *cli.Command {
	env := &environment{stdout: stdout, stderr: stderr}
	return &cli.Command{
		Name: "sqlfrag",
		Description: `sqlfrag: expand <include refid> fragments in MyBatis-style mapper XML.

Statements are expanded with the variables of the selected database
and written as highlighted SQL, XML, JSON, a CBOR bundle, or a SQLite
table.`,
		HelpOutput: stderr,
		Subcommands: []*cli.Command{
			expandCommand(env),
			fragmentsCommand(env),
			checkCommand(env),
			exportCommand(env),
			showCommand(env),
			inspectCommand(env),
			versionCommand(env),
		},
	}
}
