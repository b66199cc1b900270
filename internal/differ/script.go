// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"github.com/tfctl/rowsync/internal/snapshot"
)

// SectionChange tags the shape of a section level diff.
type SectionChange int

const (
	// SectionsStable means both snapshots have the same number of sections.
	SectionsStable SectionChange = iota
	// SectionsGrow means sections were added at the tail.
	SectionsGrow
	// SectionsShrink means sections were removed from the tail.
	SectionsShrink
)

func (c SectionChange) String() string {
	switch c {
	case SectionsGrow:
		return "grow"
	case SectionsShrink:
		return "shrink"
	default:
		return "stable"
	}
}

// MarshalText lets the change render by name in JSON and YAML output.
func (c SectionChange) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// SectionDiff is the positional comparison of two section counts. Sections at
// indices [0, Retained) are compared row by row; everything past that was
// either inserted or deleted wholesale.
type SectionDiff struct {
	Change   SectionChange `json:"change" yaml:"change"`
	Retained int           `json:"retained" yaml:"retained"`
	Inserted []int         `json:"inserted,omitempty" yaml:"inserted,omitempty"`
	Deleted  []int         `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// Move pairs the old coordinate of a row with its new coordinate. Both are in
// the same section.
type Move struct {
	From snapshot.IndexPath `json:"from" yaml:"from"`
	To   snapshot.IndexPath `json:"to" yaml:"to"`
}

// Rows is the classified diff of a single section.
type Rows struct {
	Reloads []snapshot.IndexPath
	Inserts []snapshot.IndexPath
	Deletes []snapshot.IndexPath
	Moves   []Move
}

// Script is the full edit script between two snapshots. Row coordinates in
// Deletes and Move.From refer to the old snapshot; Inserts and Move.To refer
// to the new one. Reloads are positional and valid in both.
type Script struct {
	Sections       SectionDiff          `json:"sections" yaml:"sections"`
	Reloads        []snapshot.IndexPath `json:"reloads,omitempty" yaml:"reloads,omitempty"`
	Inserts        []snapshot.IndexPath `json:"inserts,omitempty" yaml:"inserts,omitempty"`
	Deletes        []snapshot.IndexPath `json:"deletes,omitempty" yaml:"deletes,omitempty"`
	Moves          []Move               `json:"moves,omitempty" yaml:"moves,omitempty"`
	EditingChanged bool                 `json:"editingChanged,omitempty" yaml:"editingChanged,omitempty"`
}

// Counts summarizes a script.
type Counts struct {
	SectionInserts int `json:"sectionInserts" yaml:"sectionInserts"`
	SectionDeletes int `json:"sectionDeletes" yaml:"sectionDeletes"`
	Reloads        int `json:"reloads" yaml:"reloads"`
	Inserts        int `json:"inserts" yaml:"inserts"`
	Deletes        int `json:"deletes" yaml:"deletes"`
	Moves          int `json:"moves" yaml:"moves"`
}

// Total is the number of individual operations counted.
func (c Counts) Total() int {
	return c.SectionInserts + c.SectionDeletes + c.Reloads + c.Inserts + c.Deletes + c.Moves
}

// Structural reports whether applying s changes the shape of the list, that
// is whether it inserts, deletes or moves any section or row.
func (s Script) Structural() bool {
	return len(s.Sections.Inserted) > 0 ||
		len(s.Sections.Deleted) > 0 ||
		len(s.Inserts) > 0 ||
		len(s.Deletes) > 0 ||
		len(s.Moves) > 0
}

// IsEmpty reports whether s contains no operation at all, editing toggle
// included.
func (s Script) IsEmpty() bool {
	return !s.Structural() && len(s.Reloads) == 0 && !s.EditingChanged
}

func (s Script) Counts() Counts {
	return Counts{
		SectionInserts: len(s.Sections.Inserted),
		SectionDeletes: len(s.Sections.Deleted),
		Reloads:        len(s.Reloads),
		Inserts:        len(s.Inserts),
		Deletes:        len(s.Deletes),
		Moves:          len(s.Moves),
	}
}
