// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the sqlfrag
// binary.
//
// A [Command] tree is dispatched by the first positional argument;
// leaf commands parse their flags with pflag and receive the remaining
// arguments. Flags are usually declared as tagged struct fields and
// bound with [FlagsFromParams]:
//
//	type exportParams struct {
//	    cli.JSONOutput
//	    Database string `flag:"db" desc:"SQLite database to write"`
//	    Prune    bool   `flag:"prune" desc:"delete statements missing from the build"`
//	}
//
// Unknown commands and flags are answered with the closest known name
// by edit distance. A command that has already reported its outcome
// returns an [*ExitError] so main exits with its code and prints
// nothing further.
package cli
