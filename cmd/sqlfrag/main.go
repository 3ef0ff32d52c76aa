// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/commands"
)

func main() {
	if err := commands.Root(os.Stdout, os.Stderr).Execute(os.Args[1:]); err != nil {
		// Commands that already reported their outcome return an
		// ExitError; don't add an "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
