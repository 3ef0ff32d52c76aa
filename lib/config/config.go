// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/sqlfrag/lib/include"
	"github.com/bureau-foundation/sqlfrag/lib/interpolate"
	"github.com/bureau-foundation/sqlfrag/lib/scope"
)

// EnvironmentVariable names the config file for [Load].
const EnvironmentVariable = "SQLFRAG_CONFIG"

// Output formats.
const (
	FormatText = "text"
	FormatXML  = "xml"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Bundle compression algorithms.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
)

var (
	formats      = []string{FormatText, FormatXML, FormatJSON, FormatCBOR}
	colorModes   = []string{ColorAuto, ColorAlways, ColorNever}
	compressions = []string{CompressionNone, CompressionZstd, CompressionLZ4}
)

// Config is the complete sqlfrag configuration.
type Config struct {
	// DatabaseID selects database-specific fragments and statements.
	DatabaseID string `yaml:"database_id"`

	// Variables are the base variables for included fragments.
	Variables Variables `yaml:"variables"`

	// VariableFiles are read before Variables, in order.
	VariableFiles []string `yaml:"variable_files"`

	// Databases holds variables that apply only under one database id.
	Databases map[string]*DatabaseConfig `yaml:"databases"`

	// Interpolation configures ${...} placeholder handling.
	Interpolation InterpolationConfig `yaml:"interpolation"`

	// MaxIncludeDepth bounds include nesting.
	MaxIncludeDepth int `yaml:"max_include_depth"`

	// Mappers lists mapper files and directories to load when a
	// command is given no paths.
	Mappers []string `yaml:"mappers"`

	// Output configures the expand command.
	Output OutputConfig `yaml:"output"`

	// directory holds the config file; empty for Default.
	directory string
}

// DatabaseConfig contains settings applied when DatabaseID matches.
type DatabaseConfig struct {
	Variables     Variables `yaml:"variables"`
	VariableFiles []string  `yaml:"variable_files"`
}

// InterpolationConfig configures placeholder handling.
type InterpolationConfig struct {
	// EnableDefaultValue enables ${name:default} placeholders.
	EnableDefaultValue bool `yaml:"enable_default_value"`

	// DefaultValueSeparator separates a name from its default.
	// Default: ":"
	DefaultValueSeparator string `yaml:"default_value_separator"`
}

// OutputConfig configures rendered output.
type OutputConfig struct {
	// Format is one of text, xml, json, cbor. Default: text
	Format string `yaml:"format"`

	// Color is one of auto, always, never. Default: auto
	Color string `yaml:"color"`

	// Compression applies to cbor bundles: none, zstd, lz4.
	// Default: zstd
	Compression string `yaml:"compression"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Interpolation: InterpolationConfig{
			DefaultValueSeparator: interpolate.DefaultSeparator,
		},
		MaxIncludeDepth: include.DefaultMaxDepth,
		Output: OutputConfig{
			Format:      FormatText,
			Color:       ColorAuto,
			Compression: CompressionZstd,
		},
	}
}

// Load loads configuration from the file named by SQLFRAG_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your sqlfrag.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, merged over [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.directory = filepath.Dir(absolute)
	cfg.expandPaths()
	return cfg, nil
}

// Directory returns the directory of the loaded config file, or empty
// for a default configuration.
func (c *Config) Directory() string {
	return c.directory
}

// ConfigDirVariable is bound to the directory of the loaded config
// file when path fields are expanded.
const ConfigDirVariable = "SQLFRAG_CONFIG_DIR"

// pathParser expands ${NAME} and ${NAME:-fallback} in path fields.
var pathParser = interpolate.Parser{EnableDefault: true, Separator: ":-"}

// pathScope returns the variables visible to path fields: the
// non-empty process environment with [ConfigDirVariable] laid over it.
// Empty variables are left out so ${NAME:-fallback} falls back on them.
func (c *Config) pathScope() *scope.Scope {
	environ := os.Environ()
	entries := make([]scope.Entry, 0, len(environ)+1)
	for _, pair := range environ {
		if name, value, ok := strings.Cut(pair, "="); ok && name != "" && value != "" {
			entries = append(entries, scope.Entry{Name: name, Value: value})
		}
	}
	vars := scope.New(entries...)
	if c.directory != "" {
		vars = vars.Overlay(scope.Entry{Name: ConfigDirVariable, Value: c.directory})
	}
	return vars
}

// expandPath interpolates path and anchors a relative result at the
// config directory. Unknown placeholders without a fallback are kept.
func (c *Config) expandPath(path string, vars *scope.Scope) string {
	path = pathParser.Interpolate(path, vars)
	if path == "" || filepath.IsAbs(path) || c.directory == "" {
		return path
	}
	return filepath.Join(c.directory, path)
}

func (c *Config) expandPaths() {
	vars := c.pathScope()
	fields := [][]string{c.Mappers, c.VariableFiles}
	for _, database := range c.Databases {
		if database != nil {
			fields = append(fields, database.VariableFiles)
		}
	}
	for _, paths := range fields {
		for i := range paths {
			paths[i] = c.expandPath(paths[i], vars)
		}
	}
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error

	if strings.ContainsFunc(c.DatabaseID, unicode.IsSpace) {
		errs = append(errs, fmt.Errorf("database_id %q contains whitespace", c.DatabaseID))
	}
	if c.MaxIncludeDepth < 0 {
		errs = append(errs, fmt.Errorf("max_include_depth must not be negative, got %d", c.MaxIncludeDepth))
	}
	if c.Interpolation.EnableDefaultValue && c.Interpolation.DefaultValueSeparator == "" {
		errs = append(errs, fmt.Errorf("interpolation.default_value_separator is required when enable_default_value is set"))
	}
	for i, entry := range c.Variables {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("variables[%d] has an empty name", i))
		}
	}
	for id, database := range c.Databases {
		if id == "" {
			errs = append(errs, fmt.Errorf("databases contains an empty database id"))
		}
		if database == nil {
			continue
		}
		for i, entry := range database.Variables {
			if entry.Name == "" {
				errs = append(errs, fmt.Errorf("databases.%s.variables[%d] has an empty name", id, i))
			}
		}
	}
	for i, path := range c.Mappers {
		if path == "" {
			errs = append(errs, fmt.Errorf("mappers[%d] is empty", i))
		}
	}
	if !slices.Contains(formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of: %v", formats))
	}
	if !slices.Contains(colorModes, c.Output.Color) {
		errs = append(errs, fmt.Errorf("output.color must be one of: %v", colorModes))
	}
	if !slices.Contains(compressions, c.Output.Compression) {
		errs = append(errs, fmt.Errorf("output.compression must be one of: %v", compressions))
	}

	return errors.Join(errs...)
}

// Interpolator returns the placeholder parser described by the
// interpolation section.
func (c *Config) Interpolator() interpolate.Parser {
	return interpolate.Parser{
		EnableDefault: c.Interpolation.EnableDefaultValue,
		Separator:     c.Interpolation.DefaultValueSeparator,
	}
}

// Scope builds the base variable scope: variable files, then inline
// variables, then the files and variables of the section matching
// DatabaseID.
func (c *Config) Scope() (*scope.Scope, error) {
	var entries []scope.Entry
	for _, path := range c.VariableFiles {
		loaded, err := LoadVariables(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, loaded...)
	}
	entries = append(entries, c.Variables...)

	if database := c.Databases[c.DatabaseID]; database != nil && c.DatabaseID != "" {
		for _, path := range database.VariableFiles {
			loaded, err := LoadVariables(path)
			if err != nil {
				return nil, err
			}
			entries = append(entries, loaded...)
		}
		entries = append(entries, database.Variables...)
	}
	return scope.New(entries...), nil
}

// yamlNull reports whether node is an explicit or implicit null.
func yamlNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
