// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/sqlfrag/cmd/sqlfrag/cli"
	"github.com/bureau-foundation/sqlfrag/lib/config"
	"github.com/bureau-foundation/sqlfrag/lib/dom"
	"github.com/bureau-foundation/sqlfrag/lib/mapper"
)

const highlightStyle = "monokai"

// colorProfile picks the terminal profile for w under mode. Ascii means
// no escape sequences.
func colorProfile(w io.Writer, mode string) termenv.Profile {
	switch mode {
	case config.ColorNever:
		return termenv.Ascii
	case config.ColorAlways:
		if cli.IsTerminal(w) {
			if profile := termenv.NewOutput(w).EnvColorProfile(); profile != termenv.Ascii {
				return profile
			}
		}
		return termenv.ANSI256
	default:
		if !cli.IsTerminal(w) {
			return termenv.Ascii
		}
		return termenv.NewOutput(w).EnvColorProfile()
	}
}

// chromaFormatter maps a profile to a chroma terminal formatter name.
func chromaFormatter(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal16"
	default:
		return ""
	}
}

// textRenderer writes statements as SQL with a styled header line.
type textRenderer struct {
	w         io.Writer
	formatter string
	header    lipgloss.Style
	detail    lipgloss.Style
}

func newTextRenderer(w io.Writer, profile termenv.Profile) *textRenderer {
	// SetColorProfile is needed because the renderer otherwise
	// re-detects the profile from the environment.
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)
	return &textRenderer{
		w:         w,
		formatter: chromaFormatter(profile),
		header:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:    renderer.NewStyle().Faint(true),
	}
}

func (r *textRenderer) render(statements []*mapper.Statement) error {
	for i, statement := range statements {
		if i > 0 {
			if _, err := fmt.Fprintln(r.w); err != nil {
				return err
			}
		}
		details := string(statement.Kind) + ", " + statement.Source
		if statement.DatabaseID != "" {
			details += ", " + statement.DatabaseID
		}
		_, err := fmt.Fprintf(r.w, "%s %s\n", r.header.Render("-- "+statement.ID), r.detail.Render("("+details+")"))
		if err != nil {
			return err
		}
		if err := r.highlight(statement.Text() + ";\n"); err != nil {
			return err
		}
	}
	return nil
}

func (r *textRenderer) highlight(sql string) error {
	if r.formatter == "" {
		_, err := io.WriteString(r.w, sql)
		return err
	}
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, sql, "sql", r.formatter, highlightStyle); err != nil {
		_, err = io.WriteString(r.w, sql)
		return err
	}
	_, err := io.WriteString(r.w, buffer.String())
	return err
}

// renderXML writes each expanded statement element on its own line.
func renderXML(w io.Writer, statements []*mapper.Statement) error {
	for _, statement := range statements {
		if err := dom.Render(w, statement.Node); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// statementJSON is the JSON form of an expanded statement.
type statementJSON struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	DatabaseID string `json:"database_id,omitempty"`
	Source     string `json:"source"`
	Digest     string `json:"digest"`
	Body       string `json:"body"`
	Text       string `json:"text"`
}

func toJSON(statements []*mapper.Statement) []statementJSON {
	result := make([]statementJSON, len(statements))
	for i, statement := range statements {
		result[i] = statementJSON{
			ID:         statement.ID,
			Kind:       string(statement.Kind),
			DatabaseID: statement.DatabaseID,
			Source:     statement.Source,
			Digest:     statement.Digest().String(),
			Body:       statement.Body(),
			Text:       statement.Text(),
		}
	}
	return result
}
