// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/rowsync/internal/attrs"
	"github.com/tfctl/rowsync/internal/filters"
	"github.com/tfctl/rowsync/internal/snapshot"
)

var inboxSections = []Section{
	{
		ID:    "inbox",
		Title: "Inbox",
		Rows: []Row{
			{Key: "inv-1", Text: "Pay rent"},
			{Key: "inv-2", Text: "fix: leaking tap"},
			{Key: "Call mom", Text: "Call mom"},
		},
	},
	{ID: "archive", Rows: []Row{}},
}

func parseFile(t *testing.T, name string, opts Options) *Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	doc, err := Parse(name, data, opts)
	require.NoError(t, err)
	return doc
}

func TestParse_Formats(t *testing.T) {
	for _, name := range []string{"inbox.yaml", "inbox.json", "inbox.hcl"} {
		t.Run(name, func(t *testing.T) {
			doc := parseFile(t, name, Options{})
			assert.Equal(t, name, doc.Source)
			assert.False(t, doc.Editing)
			assert.Equal(t, inboxSections, doc.Sections)
			assert.NotEmpty(t, doc.Raw)
		})
	}
}

func TestParse_SameRawAcrossFormats(t *testing.T) {
	yml := parseFile(t, "inbox.yaml", Options{})
	js := parseFile(t, "inbox.json", Options{})
	assert.JSONEq(t, string(yml.Raw), string(js.Raw))
}

func TestParse_Attrs(t *testing.T) {
	t.Run("remapped key and text", func(t *testing.T) {
		list := attrs.Defaults()
		require.NoError(t, list.Set("meta.id:key,title:text:U"))

		doc := parseFile(t, "nested.json", Options{Attrs: list})
		require.Len(t, doc.Sections, 1)
		assert.Equal(t, []Row{
			{Key: "7", Text: "WRITE REPORT"},
			{Key: "8", Text: "REVIEW PLAN"},
		}, doc.Sections[0].Rows)
	})

	t.Run("included extra appended", func(t *testing.T) {
		list := attrs.Defaults()
		require.NoError(t, list.Set("prio"))

		doc := parseFile(t, "inbox.yaml", Options{Attrs: list})
		assert.Equal(t, []Row{
			{Key: "inv-1", Text: "Pay rent 3"},
			{Key: "inv-2", Text: "fix: leaking tap 1"},
			{Key: "Call mom", Text: "Call mom"},
		}, doc.Sections[0].Rows)
	})

	t.Run("excluded attr only filters", func(t *testing.T) {
		list := attrs.Defaults()
		require.NoError(t, list.Set("meta.id:key,title:text,!due"))
		f, err := filters.Parse("due")
		require.NoError(t, err)

		doc := parseFile(t, "nested.json", Options{Attrs: list, Filters: f})
		assert.Equal(t, []Row{{Key: "7", Text: "Write report"}}, doc.Sections[0].Rows)
	})
}

func TestParse_Filters(t *testing.T) {
	list := attrs.Defaults()
	require.NoError(t, list.Set("!prio,!done"))

	tests := []struct {
		spec string
		want []string
	}{
		{"prio>2", []string{"inv-1"}},
		{"done", []string{"inv-2"}},
		{"!done", []string{"inv-1", "Call mom"}},
		{"text@a", []string{"inv-1", "inv-2", "Call mom"}},
		{"key^inv", []string{"inv-1", "inv-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			f, err := filters.Parse(tt.spec)
			require.NoError(t, err)

			doc := parseFile(t, "inbox.yaml", Options{Attrs: list, Filters: f})
			var keys []string
			for _, r := range doc.Sections[0].Rows {
				keys = append(keys, r.Key)
			}
			assert.Equal(t, tt.want, keys)
			assert.Empty(t, doc.Sections[1].Rows)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		wantErr string
	}{
		{"invalid yaml", "a.yaml", "sections: [", "invalid yaml"},
		{"invalid json", "a.json", `{"sections": [`, "invalid json"},
		{"invalid hcl", "a.hcl", `section "x" {`, "invalid hcl"},
		{"unknown hcl block", "a.hcl", `group "x" {}`, "a.hcl"},
		{"hcl bad expression", "a.hcl", `section "x" { rows = nosuch("a") }`, "rows"},
		{"not a mapping", "a.yaml", "- a\n- b\n", "must be a mapping"},
		{"sections not a list", "a.yaml", "sections: inbox\n", "sections must be a list"},
		{"section not a mapping", "a.yaml", "sections: [inbox]\n", "section 0 must be a mapping"},
		{"rows not a list", "a.yaml", "sections: [{id: a, rows: x}]\n", "rows must be a list"},
		{"empty row", "a.yaml", "sections: [{id: a, rows: [~]}]\n", "row 0 is empty"},
		{"row without key or text", "a.yaml", "sections: [{id: a, rows: [{prio: 1}]}]\n", "neither key nor text"},
		{"missing id", "a.yaml", "sections: [{rows: [a]}]\n", "has no id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.file, []byte(tt.data), Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_Duplicate(t *testing.T) {
	data, err := os.ReadFile("testdata/duplicate.yaml")
	require.NoError(t, err)

	_, err = Parse("duplicate.yaml", data, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate section id "inbox" at 0 and 1`)
}

func TestParse_EmptyAndEditing(t *testing.T) {
	doc, err := Parse("empty.yaml", []byte(""), Options{})
	require.NoError(t, err)
	assert.Empty(t, doc.Sections)
	assert.JSONEq(t, `{"sections":[]}`, string(doc.Raw))

	doc, err = Parse("edit.yaml", []byte("editing: true\nsections: [{id: a, rows: [1, 2.5, true]}]\n"), Options{})
	require.NoError(t, err)
	assert.True(t, doc.Editing)
	assert.Equal(t, []Row{{"1", "1"}, {"2.5", "2.5"}, {"true", "true"}}, doc.Sections[0].Rows)
}

func TestParse_ExplicitFormat(t *testing.T) {
	doc, err := Parse("list.txt", []byte(`{"sections":[{"id":"a","rows":["x"]}]}`), Options{Format: FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, "a", doc.Sections[0].ID)

	_, err = Parse("list.txt", []byte("x"), Options{Format: Format("toml")})
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Format
	}{
		{"a.yaml", "", FormatYAML},
		{"a.YML", "", FormatYAML},
		{"a.json", "", FormatJSON},
		{"a.hcl", "", FormatHCL},
		{"-", `{"sections":[]}`, FormatJSON},
		{"-", "sections: []", FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.data, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.name, []byte(tt.data)))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "YAML": FormatYAML, "yml": FormatYAML, "json": FormatJSON, " hcl ": FormatHCL} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("toml")
	assert.Error(t, err)
}

func TestDocument_Snapshot(t *testing.T) {
	doc := parseFile(t, "inbox.yaml", Options{})
	doc.Editing = true

	snap := doc.Snapshot()
	assert.True(t, snap.Editing())
	assert.Equal(t, []string{"inbox", "archive"}, snap.Sections())
	assert.Equal(t, 3, snap.Count("inbox"))
	assert.Equal(t, 0, snap.Count("archive"))

	row, ok := snap.Object(snapshot.IndexPath{Section: 0, Row: 1})
	require.True(t, ok)
	assert.Equal(t, Row{Key: "inv-2", Text: "fix: leaking tap"}, row)

	// The snapshot does not share rows with the document.
	doc.Sections[0].Rows[0].Text = "changed"
	row, _ = snap.Object(snapshot.IndexPath{Section: 0, Row: 0})
	assert.Equal(t, "Pay rent", row.Text)
}

func TestDocument_Accessors(t *testing.T) {
	doc := parseFile(t, "inbox.yaml", Options{})

	title, ok := doc.Title("inbox")
	assert.True(t, ok)
	assert.Equal(t, "Inbox", title)

	_, ok = doc.Title("archive")
	assert.False(t, ok)
	_, ok = doc.Title("nope")
	assert.False(t, ok)

	assert.Equal(t, 3, doc.RowCount())
}

func TestRow(t *testing.T) {
	assert.Equal(t, "a", Row{Key: "a", Text: "a"}.String())
	assert.Equal(t, "inv-1 Pay rent", Row{Key: "inv-1", Text: "Pay rent"}.String())

	assert.True(t, SameKey(Row{Key: "a", Text: "x"}, Row{Key: "a", Text: "y"}))
	assert.False(t, SameKey(Row{Key: "a"}, Row{Key: "b"}))
}
