// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

type pairFlags struct {
	Pairs []string
}

func (p *pairFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringArrayVar(&p.Pairs, "pair", nil, "name=value pair")
}

func TestBindFlags(t *testing.T) {
	type params struct {
		JSONOutput
		Pairs    pairFlags
		Format   string   `flag:"format,f" desc:"output format" default:"text"`
		Verbose  bool     `flag:"verbose,v" desc:"verbose logging"`
		Depth    int      `flag:"depth" desc:"max depth" default:"64"`
		Paths    []string `flag:"path" desc:"paths"`
		Untagged string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if p.Format != "text" || p.Depth != 64 {
		t.Errorf("defaults not applied: %+v", p)
	}

	err := flagSet.Parse([]string{
		"--json", "-f", "xml", "-v", "--depth", "3",
		"--path", "a,b", "--pair", "x=1,2", "--pair", "y=3",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.OutputJSON || p.Format != "xml" || !p.Verbose || p.Depth != 3 {
		t.Errorf("params = %+v", p)
	}
	if len(p.Paths) != 2 || p.Paths[1] != "b" {
		t.Errorf("Paths = %v", p.Paths)
	}
	if len(p.Pairs.Pairs) != 2 || p.Pairs.Pairs[0] != "x=1,2" {
		t.Errorf("Pairs = %v", p.Pairs.Pairs)
	}
}

func TestBindFlags_Rejects(t *testing.T) {
	var notPointer struct{}
	if err := BindFlags(notPointer, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted a non-pointer")
	}

	var unsupported struct {
		Rate float32 `flag:"rate"`
	}
	if err := BindFlags(&unsupported, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted an unsupported field type")
	}

	var badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	if err := BindFlags(&badDefault, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted an unparsable default")
	}
}

func TestEmitJSON(t *testing.T) {
	var output bytes.Buffer
	var nilSlice []string

	quiet := JSONOutput{}
	if done, err := quiet.EmitJSON(&output, nilSlice); done || err != nil || output.Len() != 0 {
		t.Errorf("EmitJSON without --json = %v, %v, %q", done, err, output.String())
	}

	loud := JSONOutput{OutputJSON: true}
	done, err := loud.EmitJSON(&output, nilSlice)
	if !done || err != nil {
		t.Fatalf("EmitJSON = %v, %v", done, err)
	}
	if strings.TrimSpace(output.String()) != "[]" {
		t.Errorf("nil slice encoded as %q, want []", output.String())
	}
}

func TestExitError(t *testing.T) {
	var err error = &ExitError{Code: 3}
	coder, ok := err.(interface{ ExitCode() int })
	if !ok || coder.ExitCode() != 3 {
		t.Errorf("ExitError does not report its code")
	}
	if err.Error() != "exit code 3" {
		t.Errorf("Error = %q", err.Error())
	}
}
