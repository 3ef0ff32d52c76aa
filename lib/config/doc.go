// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads sqlfrag's YAML configuration.
//
// Configuration is loaded from a single file named either by the
// SQLFRAG_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery of files in the working
// directory or the home directory. Commands run without either use
// [Default].
//
// The file declares the database id, the base variables substituted
// into included fragments, the mapper paths to load, and output
// settings:
//
//	database_id: mysql
//	variables:
//	  schema: app
//	  alias: u
//	variable_files:
//	  - ${SQLFRAG_CONFIG_DIR}/vars.jsonc
//	mappers:
//	  - ./mappers
//	databases:
//	  oracle:
//	    variables:
//	      schema: APP
//	output:
//	  format: text
//
// Variables keep the order in which they are written. [Config.Scope]
// reads variable files first (in order), then the inline variables,
// then the section under databases matching the database id; later
// definitions of a name win. Variable files may be YAML, JSON or JSONC
// (JSON with comments and trailing commas).
//
// ${VAR} and ${VAR:-default} patterns are expanded in path fields
// after loading, from HOME, SQLFRAG_CONFIG_DIR (the directory holding
// the config file) and the process environment. Relative paths are
// resolved against the config file's directory. Variable values are
// never expanded from the environment.
package config
