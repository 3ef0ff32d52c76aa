// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/sqlfrag/lib/scope"
)

// Variables is an ordered list of variable bindings written as a YAML
// mapping of names to scalar values.
type Variables []scope.Entry

// UnmarshalYAML decodes a mapping, keeping key order.
func (v *Variables) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if yamlNull(node) {
		*v = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: variables must be a mapping of names to values", node.Line)
	}
	entries := make(Variables, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: variable %q must have a scalar value", value.Line, key.Value)
		}
		text := value.Value
		if yamlNull(value) {
			text = ""
		}
		entries = append(entries, scope.Entry{Name: key.Value, Value: text})
	}
	*v = entries
	return nil
}

// LoadVariables reads a variable file. Files ending in .json or .jsonc
// are JSON with optional comments and trailing commas; anything else is
// YAML. Either way the top level must be an object of scalar values.
func LoadVariables(path string) (Variables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variable file: %w", err)
	}

	var variables Variables
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		variables, err = decodeJSONVariables(jsonc.ToJSON(data))
	default:
		err = yaml.Unmarshal(data, &variables)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing variable file %s: %w", path, err)
	}
	return variables, nil
}

// decodeJSONVariables walks the token stream so that object key order
// is kept.
func decodeJSONVariables(data []byte) (Variables, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	token, err := decoder.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top level must be an object")
	}

	var variables Variables
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		name, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", token)
		}
		token, err = decoder.Token()
		if err != nil {
			return nil, err
		}
		var value string
		switch typed := token.(type) {
		case string:
			value = typed
		case json.Number:
			value = typed.String()
		case bool:
			value = fmt.Sprint(typed)
		case nil:
			value = ""
		default:
			return nil, fmt.Errorf("variable %q must have a scalar value", name)
		}
		variables = append(variables, scope.Entry{Name: name, Value: value})
	}
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return variables, nil
}
