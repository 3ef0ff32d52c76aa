// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
	"github.com/bureau-foundation/sqlfrag/lib/config"
	"github.com/bureau-foundation/sqlfrag/lib/mapper"
	"github.com/bureau-foundation/sqlfrag/lib/scope"
)

// variableFlags collects repeated --var name=value flags. Values may
// contain commas, so they are not split.
type variableFlags struct {
	Values []string
}

func (v *variableFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringArrayVar(&v.Values, "var", nil, "set a variable as name=value (repeatable, overrides config)")
}

func (v *variableFlags) entries() ([]scope.Entry, error) {
	entries := make([]scope.Entry, 0, len(v.Values))
	for _, value := range v.Values {
		name, rest, found := strings.Cut(value, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("--var %q: want name=value", value)
		}
		entries = append(entries, scope.Entry{Name: name, Value: rest})
	}
	return entries, nil
}

// buildParams are the flags shared by every command that loads
// mappers.
type buildParams struct {
	Variables  variableFlags
	ConfigPath string `flag:"config,c" desc:"config file (default: $SQLFRAG_CONFIG)"`
	DatabaseID string `flag:"database-id" desc:"database id selecting specific fragments and statements"`
	Verbose    bool   `flag:"verbose,v" desc:"log every resolved include"`
}

// workspace is a loaded configuration and a builder holding every
// mapper named on the command line or in the config.
type workspace struct {
	config  *config.Config
	builder *mapper.Builder
	files   []string
	logger  *slog.Logger
}

func (p *buildParams) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case p.ConfigPath != "":
		cfg, err = config.LoadFile(p.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if p.DatabaseID != "" {
		cfg.DatabaseID = p.DatabaseID
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// open loads the config and creates a builder for the mapper files
// under paths (or the config's mappers when paths is empty). Files are
// not added yet.
func (p *buildParams) open(env *environment, paths []string) (*workspace, error) {
	logger := cli.NewCommandLogger(env.stderr, p.Verbose)

	cfg, err := p.loadConfig()
	if err != nil {
		return nil, err
	}

	base, err := cfg.Scope()
	if err != nil {
		return nil, err
	}
	overrides, err := p.Variables.entries()
	if err != nil {
		return nil, err
	}
	base = base.Overlay(overrides...)

	if len(paths) == 0 {
		paths = cfg.Mappers
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no mapper paths given and none configured")
	}
	files, err := mapper.FindFiles(paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no mapper files found under %s", strings.Join(paths, ", "))
	}

	logger.Debug("loading mappers",
		"files", len(files),
		"database_id", cfg.DatabaseID,
		"variables", base.Len(),
	)
	builder := mapper.NewBuilder(mapper.BuilderConfig{
		DatabaseID:  cfg.DatabaseID,
		Variables:   base,
		Interpolate: cfg.Interpolator().Interpolate,
		MaxDepth:    cfg.MaxIncludeDepth,
		Logger:      logger,
	})
	return &workspace{config: cfg, builder: builder, files: files, logger: logger}, nil
}

// build adds every file and builds all statements.
func (p *buildParams) build(env *environment, paths []string) (*workspace, []*mapper.Statement, error) {
	ws, err := p.open(env, paths)
	if err != nil {
		return nil, nil, err
	}
	if err := ws.builder.AddFiles(ws.files...); err != nil {
		return nil, nil, err
	}
	statements, err := ws.builder.Build()
	if err != nil {
		var incomplete *mapper.IncompleteError
		if errors.As(err, &incomplete) {
			return nil, nil, fmt.Errorf("%w\n\nRun 'sqlfrag check' for a per-statement report.", err)
		}
		return nil, nil, err
	}
	return ws, statements, nil
}
