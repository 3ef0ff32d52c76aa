// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package interpolate replaces ${name} placeholders with values from a
// [scope.Scope].
//
// Placeholders whose name is not bound are left exactly as written, so
// text can pass through several scopes and be completed in stages. A
// backslash before the opening token (\${) produces a literal "${";
// a backslash before a closing brace inside a placeholder (\}) makes
// the brace part of the name. An opening token with no closing brace
// leaves the remainder of the text unchanged.
//
// [Parser] optionally supports default values (${name:fallback}) with
// a configurable separator. [Default] is the zero Parser's Interpolate
// method, with default values disabled.
package interpolate

import (
	"strings"

	"github.com/bureau-foundation/sqlfrag/lib/scope"
)

const (
	openToken  = "${"
	closeToken = "}"

	// DefaultSeparator splits a placeholder name from its default
	// value when default values are enabled.
	DefaultSeparator = ":"
)

// Func interpolates text against vars. Implementations must be pure:
// the same inputs always produce the same output.
type Func func(text string, vars *scope.Scope) string

// Parser configures placeholder handling. The zero value is ready to
// use.
type Parser struct {
	// EnableDefault turns on ${name<Separator>fallback} syntax.
	EnableDefault bool

	// Separator splits name from fallback. Empty means
	// [DefaultSeparator].
	Separator string
}

// Default interpolates with default values disabled.
var Default Func = Parser{}.Interpolate

// Interpolate replaces every placeholder in text.
func (p Parser) Interpolate(text string, vars *scope.Scope) string {
	start := strings.Index(text, openToken)
	if start < 0 {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	offset := 0

	for start >= 0 {
		if start > 0 && text[start-1] == '\\' {
			// Escaped opening token: drop the backslash, keep "${".
			builder.WriteString(text[offset : start-1])
			builder.WriteString(openToken)
			offset = start + len(openToken)
			start = indexFrom(text, openToken, offset)
			continue
		}

		builder.WriteString(text[offset:start])
		expressionStart := start + len(openToken)
		expression, end, closed := scanExpression(text, expressionStart)
		if !closed {
			builder.WriteString(text[start:])
			return builder.String()
		}
		builder.WriteString(p.resolve(expression, vars))
		offset = end + len(closeToken)
		start = indexFrom(text, openToken, offset)
	}

	builder.WriteString(text[offset:])
	return builder.String()
}

// scanExpression reads a placeholder body beginning at from. It
// returns the unescaped body, the index of the closing token and
// whether one was found.
func scanExpression(text string, from int) (string, int, bool) {
	var expression strings.Builder
	offset := from
	for {
		end := indexFrom(text, closeToken, offset)
		if end < 0 {
			return "", 0, false
		}
		if end > offset && text[end-1] == '\\' {
			expression.WriteString(text[offset : end-1])
			expression.WriteString(closeToken)
			offset = end + len(closeToken)
			continue
		}
		expression.WriteString(text[offset:end])
		return expression.String(), end, true
	}
}

func (p Parser) resolve(expression string, vars *scope.Scope) string {
	name := expression
	fallback, hasFallback := "", false
	if p.EnableDefault {
		separator := p.Separator
		if separator == "" {
			separator = DefaultSeparator
		}
		if index := strings.Index(expression, separator); index >= 0 {
			name = expression[:index]
			fallback = expression[index+len(separator):]
			hasFallback = true
		}
	}
	if value, ok := vars.Lookup(name); ok {
		return value
	}
	if hasFallback {
		return fallback
	}
	return openToken + expression + closeToken
}

func indexFrom(text, token string, from int) int {
	if from >= len(text) {
		return -1
	}
	index := strings.Index(text[from:], token)
	if index < 0 {
		return -1
	}
	return from + index
}
