// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/tfctl/rowsync/internal/attrs"
	"github.com/tfctl/rowsync/internal/differ"
	"github.com/tfctl/rowsync/internal/document"
	"github.com/tfctl/rowsync/internal/snapshot"
)

// Op names used in script entries.
const (
	OpInsertSection = "insert section"
	OpDeleteSection = "delete section"
	OpReload        = "reload"
	OpInsert        = "insert"
	OpDelete        = "delete"
	OpMove          = "move"
	OpEditing       = "editing"
)

// Entry is one line of a rendered edit script. At is in new coordinates
// except for deletes, which address the old document; From is only set for
// moves.
type Entry struct {
	Op      string `json:"op" yaml:"op"`
	At      string `json:"at" yaml:"at"`
	From    string `json:"from,omitempty" yaml:"from,omitempty"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
	Key     string `json:"key,omitempty" yaml:"key,omitempty"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
}

// ScriptAttrs is the default column set for script entries.
func ScriptAttrs() attrs.AttrList {
	var list attrs.AttrList
	for _, name := range []string{"op", "at", "from", "section", "key", "text"} {
		list = append(list, attrs.Attr{Key: name, OutputKey: name, Include: true})
	}
	return list
}

// Entries lists script in batch order: section inserts, section deletes,
// reloads, inserts, deletes, moves and finally the editing toggle.
func Entries(old, new *document.Document, script differ.Script) []Entry {
	var out []Entry

	for _, s := range script.Sections.Inserted {
		out = append(out, Entry{Op: OpInsertSection, At: strconv.Itoa(s), Section: sectionID(new, s)})
	}
	for _, s := range script.Sections.Deleted {
		out = append(out, Entry{Op: OpDeleteSection, At: strconv.Itoa(s), Section: sectionID(old, s)})
	}

	rowEntry := func(op string, doc *document.Document, at snapshot.IndexPath) Entry {
		e := Entry{Op: op, At: at.String(), Section: sectionID(doc, at.Section)}
		if row, ok := rowAt(doc, at); ok {
			e.Key, e.Text = row.Key, row.Text
		}
		return e
	}
	for _, at := range script.Reloads {
		out = append(out, rowEntry(OpReload, new, at))
	}
	for _, at := range script.Inserts {
		out = append(out, rowEntry(OpInsert, new, at))
	}
	for _, at := range script.Deletes {
		out = append(out, rowEntry(OpDelete, old, at))
	}
	for _, m := range script.Moves {
		e := rowEntry(OpMove, new, m.To)
		e.From = m.From.String()
		out = append(out, e)
	}

	if script.EditingChanged {
		state := "off"
		if new.Editing {
			state = "on"
		}
		out = append(out, Entry{Op: OpEditing, Text: state})
	}
	return out
}

// MarshalEntries renders entries as the JSON array SliceDiceSpit reads.
func MarshalEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal script: %w", err)
	}
	return b, nil
}

// Summary describes a script in one line, e.g. "2 inserts, 1 delete and 1
// move".
func Summary(script differ.Script) string {
	c := script.Counts()
	var parts []string
	add := func(n int, singular, plural string) {
		if n > 0 {
			parts = append(parts, english.Plural(n, singular, plural))
		}
	}
	add(c.SectionInserts, "section insert", "")
	add(c.SectionDeletes, "section delete", "")
	add(c.Reloads, "reload", "")
	add(c.Inserts, "insert", "")
	add(c.Deletes, "delete", "")
	add(c.Moves, "move", "")
	if script.EditingChanged {
		parts = append(parts, "editing toggled")
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return english.WordSeries(parts, "and")
}

// Header names the documents being compared and their sizes.
func Header(old, new *document.Document) string {
	return fmt.Sprintf("%s (%s, %s) -> %s (%s, %s)",
		old.Source, english.Plural(old.RowCount(), "row", ""), humanize.Bytes(uint64(len(old.Raw))),
		new.Source, english.Plural(new.RowCount(), "row", ""), humanize.Bytes(uint64(len(new.Raw))))
}

func sectionID(doc *document.Document, index int) string {
	if index < 0 || index >= len(doc.Sections) {
		return ""
	}
	return doc.Sections[index].ID
}

func rowAt(doc *document.Document, at snapshot.IndexPath) (document.Row, bool) {
	if at.Section < 0 || at.Section >= len(doc.Sections) {
		return document.Row{}, false
	}
	rows := doc.Sections[at.Section].Rows
	if at.Row < 0 || at.Row >= len(rows) {
		return document.Row{}, false
	}
	return rows[at.Row], true
}
