// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/sqlfrag/lib/include"
	"github.com/bureau-foundation/sqlfrag/lib/scope"
	"github.com/bureau-foundation/sqlfrag/lib/testutil"
)

func entriesString(entries []scope.Entry) string {
	parts := make([]string, len(entries))
	for i, entry := range entries {
		parts[i] = entry.Name + "=" + entry.Value
	}
	return strings.Join(parts, ",")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output.Format != FormatText {
		t.Errorf("expected format=text, got %s", cfg.Output.Format)
	}
	if cfg.Output.Color != ColorAuto {
		t.Errorf("expected color=auto, got %s", cfg.Output.Color)
	}
	if cfg.Output.Compression != CompressionZstd {
		t.Errorf("expected compression=zstd, got %s", cfg.Output.Compression)
	}
	if cfg.MaxIncludeDepth != include.DefaultMaxDepth {
		t.Errorf("expected max_include_depth=%d, got %d", include.DefaultMaxDepth, cfg.MaxIncludeDepth)
	}
	if cfg.Directory() != "" {
		t.Errorf("default config has directory %q", cfg.Directory())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SQLFRAG_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "SQLFRAG_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	directory := t.TempDir()
	configPath := testutil.WriteFile(t, directory, "sqlfrag.yaml", "database_id: mysql\n")
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseID != "mysql" {
		t.Errorf("expected database_id=mysql, got %s", cfg.DatabaseID)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("unset fields should keep defaults, format=%s", cfg.Output.Format)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SQLFRAG_TEST_MAPPERS", "/srv/mappers")
	directory := t.TempDir()
	configPath := testutil.WriteFile(t, directory, "sqlfrag.yaml", `
database_id: oracle

variables:
  zeta: last
  alpha: "1"
  empty:

variable_files:
  - vars.yaml

interpolation:
  enable_default_value: true
  default_value_separator: "?:"

max_include_depth: 8

mappers:
  - ${SQLFRAG_TEST_MAPPERS}
  - relative/dir
  - ${SQLFRAG_CONFIG_DIR}/anchored

output:
  format: json
  color: never
  compression: lz4
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.DatabaseID != "oracle" {
		t.Errorf("database_id = %s", cfg.DatabaseID)
	}
	if got := entriesString(cfg.Variables); got != "zeta=last,alpha=1,empty=" {
		t.Errorf("variables = %s, want file order", got)
	}
	if !cfg.Interpolation.EnableDefaultValue || cfg.Interpolation.DefaultValueSeparator != "?:" {
		t.Errorf("interpolation = %+v", cfg.Interpolation)
	}
	if parser := cfg.Interpolator(); !parser.EnableDefault || parser.Separator != "?:" {
		t.Errorf("Interpolator = %+v", parser)
	}
	if cfg.MaxIncludeDepth != 8 {
		t.Errorf("max_include_depth = %d", cfg.MaxIncludeDepth)
	}
	wantMappers := []string{
		"/srv/mappers",
		filepath.Join(directory, "relative", "dir"),
		filepath.Join(directory, "anchored"),
	}
	if strings.Join(cfg.Mappers, "|") != strings.Join(wantMappers, "|") {
		t.Errorf("mappers = %v, want %v", cfg.Mappers, wantMappers)
	}
	if cfg.VariableFiles[0] != filepath.Join(directory, "vars.yaml") {
		t.Errorf("variable_files = %v", cfg.VariableFiles)
	}
	if cfg.Output != (OutputConfig{Format: FormatJSON, Color: ColorNever, Compression: CompressionLZ4}) {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Directory() != directory {
		t.Errorf("Directory = %q, want %q", cfg.Directory(), directory)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	directory := t.TempDir()

	if _, err := LoadFile(filepath.Join(directory, "missing.yaml")); err == nil {
		t.Error("LoadFile accepted a missing file")
	}

	nested := testutil.WriteFile(t, directory, "nested.yaml", "variables:\n  a:\n    b: c\n")
	if _, err := LoadFile(nested); err == nil || !strings.Contains(err.Error(), "scalar") {
		t.Errorf("nested variable error = %v", err)
	}

	list := testutil.WriteFile(t, directory, "list.yaml", "variables:\n  - a\n")
	if _, err := LoadFile(list); err == nil || !strings.Contains(err.Error(), "mapping") {
		t.Errorf("list variables error = %v", err)
	}
}

func TestScope_Precedence(t *testing.T) {
	directory := t.TempDir()
	testutil.WriteFile(t, directory, "base.yaml", "table: from_yaml\nschema: yaml\n")
	testutil.WriteFile(t, directory, "extra.jsonc", `{
  // later files win over earlier ones
  "schema": "jsonc",
  "limit": 10,
  "enabled": true,
  "nothing": null,
}`)
	testutil.WriteFile(t, directory, "oracle.json", `{"schema": "ORACLE_FILE"}`)
	configPath := testutil.WriteFile(t, directory, "sqlfrag.yaml", `
database_id: oracle
variable_files: [base.yaml, extra.jsonc]
variables:
  table: inline
databases:
  oracle:
    variable_files: [oracle.json]
    variables:
      table: ORACLE
  mysql:
    variables:
      table: MYSQL
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	vars, err := cfg.Scope()
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	if got := entriesString(vars.Entries()); got != "table=ORACLE,schema=ORACLE_FILE,limit=10,enabled=true,nothing=" {
		t.Errorf("scope = %s", got)
	}

	cfg.DatabaseID = ""
	vars, err = cfg.Scope()
	if err != nil {
		t.Fatalf("Scope without database: %v", err)
	}
	if got := entriesString(vars.Entries()); got != "table=inline,schema=jsonc,limit=10,enabled=true,nothing=" {
		t.Errorf("scope without database = %s", got)
	}
}

func TestScope_MissingVariableFile(t *testing.T) {
	cfg := Default()
	cfg.VariableFiles = []string{filepath.Join(t.TempDir(), "absent.yaml")}
	if _, err := cfg.Scope(); err == nil {
		t.Error("Scope accepted a missing variable file")
	}
}

func TestLoadVariables_RejectsNonObjects(t *testing.T) {
	directory := t.TempDir()
	for name, content := range map[string]string{
		"array.json":  `["a"]`,
		"nested.json": `{"a": {"b": 1}}`,
		"broken.json": `{"a": `,
		"list.yaml":   "- a\n",
	} {
		path := testutil.WriteFile(t, directory, name, content)
		if _, err := LoadVariables(path); err == nil {
			t.Errorf("LoadVariables(%s) succeeded", name)
		}
	}

	empty := testutil.WriteFile(t, directory, "empty.json", "")
	variables, err := LoadVariables(empty)
	if err != nil || len(variables) != 0 {
		t.Errorf("LoadVariables(empty) = %v, %v", variables, err)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("SQLFRAG_TEST_FROM_ENV", "env")
	t.Setenv("SQLFRAG_TEST_EMPTY", "")
	t.Setenv(ConfigDirVariable, "/ignored")

	cfg := &Config{directory: "/etc/sqlfrag"}
	vars := cfg.pathScope()
	tests := []struct {
		input    string
		expected string
	}{
		{"${SQLFRAG_CONFIG_DIR}/mappers", "/etc/sqlfrag/mappers"},
		{"${SQLFRAG_TEST_FROM_ENV}/x", "/etc/sqlfrag/env/x"},
		{"/srv/${SQLFRAG_TEST_MISSING:-default}", "/srv/default"},
		{"/srv/${SQLFRAG_TEST_FROM_ENV:-default}", "/srv/env"},
		{"/srv/${SQLFRAG_TEST_EMPTY:-default}x", "/srv/defaultx"},
		{"/srv/${SQLFRAG_TEST_MISSING}", "/srv/${SQLFRAG_TEST_MISSING}"},
		{"relative/dir", "/etc/sqlfrag/relative/dir"},
		{"", ""},
	}
	for _, tt := range tests {
		if result := cfg.expandPath(tt.input, vars); result != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}

	unanchored := &Config{}
	if got := unanchored.expandPath("relative", unanchored.pathScope()); got != "relative" {
		t.Errorf("expandPath without a config directory = %q, want relative", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default config", func(c *Config) {}, ""},
		{"invalid format", func(c *Config) { c.Output.Format = "yaml" }, "output.format"},
		{"invalid color", func(c *Config) { c.Output.Color = "sometimes" }, "output.color"},
		{"invalid compression", func(c *Config) { c.Output.Compression = "gzip" }, "output.compression"},
		{"negative depth", func(c *Config) { c.MaxIncludeDepth = -1 }, "max_include_depth"},
		{"whitespace database id", func(c *Config) { c.DatabaseID = "my sql" }, "database_id"},
		{"empty separator", func(c *Config) {
			c.Interpolation.EnableDefaultValue = true
			c.Interpolation.DefaultValueSeparator = ""
		}, "default_value_separator"},
		{"empty variable name", func(c *Config) { c.Variables = Variables{{Name: "", Value: "x"}} }, "variables[0]"},
		{"empty mapper path", func(c *Config) { c.Mappers = []string{""} }, "mappers[0]"},
		{"empty database variable name", func(c *Config) {
			c.Databases = map[string]*DatabaseConfig{"pg": {Variables: Variables{{Value: "x"}}}}
		}, "databases.pg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = "bad"
	cfg.Output.Color = "bad"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted bad output settings")
	}
	if !strings.Contains(err.Error(), "output.format") || !strings.Contains(err.Error(), "output.color") {
		t.Errorf("Validate() = %v, want both problems", err)
	}
}

func TestLoadFile_DoesNotReadEnvironmentIntoVariables(t *testing.T) {
	t.Setenv("table", "from_env")
	directory := t.TempDir()
	configPath := testutil.WriteFile(t, directory, "sqlfrag.yaml", "variables:\n  table: ${table}\n")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := cfg.Variables[0].Value; got != "${table}" {
		t.Errorf("variable value = %q, want it left for fragment interpolation", got)
	}
}
