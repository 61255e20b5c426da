package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type row struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

func sampleTable() *Table {
	t := NewTable("NAME", "VALUE")
	t.AddRow("ATLAS V R/B", "12.04")
	t.AddRow("CZ-2C R/B", "30.41")
	return t
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"table": FormatTable, "JSON": FormatJSON, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestTableRender(t *testing.T) {
	out := sampleTable().Render()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "ATLAS V R/B")
	assert.Contains(t, out, "30.41")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, []row{{"a", 1.5}}, sampleTable))

	var got []row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []row{{"a", 1.5}}, got)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, []row{{"a", 1.5}}, sampleTable))

	var got []row
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []row{{"a", 1.5}}, got)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, nil, sampleTable))
	assert.Contains(t, buf.String(), "CZ-2C R/B")
}

func TestNotices(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	Success(&buf, "reached %s", "n2yo")
	Warn(&buf, "slow")
	Error(&buf, "down")
	Info(&buf, "plain")

	assert.Equal(t, "✓ reached n2yo\n⚠ slow\n✗ down\nplain\n", buf.String())
}
