// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"

	"github.com/tfctl/rowsync/internal/snapshot"
)

// Row is one list row. Key identifies the row across versions and Text is
// what is displayed; two rows are the same object only if both match.
type Row struct {
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

func (r Row) String() string {
	if r.Key == r.Text {
		return r.Key
	}
	return r.Key + " " + r.Text
}

// SameKey reports whether a and b are versions of the same row. It is the
// identity check used for strict reload classification.
func SameKey(a, b Row) bool {
	return a.Key == b.Key
}

// Section is one titled group of rows.
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Rows  []Row  `json:"rows" yaml:"rows"`
}

// Document is a parsed snapshot document. Raw holds its normalized JSON.
type Document struct {
	Source   string    `json:"source" yaml:"source"`
	Editing  bool      `json:"editing" yaml:"editing"`
	Sections []Section `json:"sections" yaml:"sections"`
	Raw      []byte    `json:"-" yaml:"-"`
}

// Validate checks that every section has a distinct, non-empty id.
func (d *Document) Validate() error {
	seen := make(map[string]int, len(d.Sections))
	for i, s := range d.Sections {
		if s.ID == "" {
			return fmt.Errorf("%s: section %d has no id", d.Source, i)
		}
		if prev, ok := seen[s.ID]; ok {
			return fmt.Errorf("%s: duplicate section id %q at %d and %d", d.Source, s.ID, prev, i)
		}
		seen[s.ID] = i
	}
	return nil
}

// Snapshot builds the snapshot the document describes. The document must be
// valid.
func (d *Document) Snapshot() snapshot.Snapshot[string, Row] {
	snap := snapshot.New[string, Row](d.Editing)
	for _, s := range d.Sections {
		snap.Create(s.ID)
		snap.Append(s.Rows, s.ID)
	}
	return snap
}

// Title returns the title of the section with the given id.
func (d *Document) Title(id string) (string, bool) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s.Title, s.Title != ""
		}
	}
	return "", false
}

// RowCount is the number of rows across all sections.
func (d *Document) RowCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Rows)
	}
	return n
}
