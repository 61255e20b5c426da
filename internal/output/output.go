// Package output renders CLI results as a styled table, JSON or YAML and
// prints colored status notices.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format selects how results are printed.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func Success(w io.Writer, format string, a ...any) {
	successColor.Fprintf(w, "✓ "+format+"\n", a...)
}

func Error(w io.Writer, format string, a ...any) {
	errorColor.Fprintf(w, "✗ "+format+"\n", a...)
}

func Info(w io.Writer, format string, a ...any) {
	infoColor.Fprintf(w, format+"\n", a...)
}

func Warn(w io.Writer, format string, a ...any) {
	warnColor.Fprintf(w, "⚠ "+format+"\n", a...)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Table collects rows for a bordered terminal table.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers, rows: [][]string{}}
}

func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render returns the table as a string.
func (t *Table) Render() string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(t.headers...).
		Rows(t.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return tbl.Render()
}

// Write renders v in the requested format. Table output uses tableFn, which
// callers supply because only they know the columns.
func Write(w io.Writer, f Format, v any, tableFn func() *Table) error {
	switch f {
	case FormatJSON:
		return JSON(w, v)
	case FormatYAML:
		return YAML(w, v)
	default:
		_, err := fmt.Fprintln(w, tableFn().Render())
		return err
	}
}
