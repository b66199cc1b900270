// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"
	"slices"
)

// Snapshot is the target rendering state of a sectioned list. S identifies a
// section and O is a row object. Rows are matched across snapshots purely by
// equality, so two rows representing the same logical item must compare
// equal.
//
// The zero value is an empty, non-editing snapshot ready for Create.
type Snapshot[S comparable, O comparable] struct {
	editing  bool
	sections []S
	objects  map[S][]O
}

// New returns an empty snapshot with the given editing mode.
func New[S comparable, O comparable](editing bool) Snapshot[S, O] {
	return Snapshot[S, O]{
		editing: editing,
		objects: make(map[S][]O),
	}
}

// Editing reports whether the list should be shown in editing mode.
func (s Snapshot[S, O]) Editing() bool {
	return s.editing
}

// WithEditing returns a copy of s with the editing flag set.
func (s Snapshot[S, O]) WithEditing(editing bool) Snapshot[S, O] {
	c := s.Clone()
	c.editing = editing
	return c
}

// SectionCount returns the number of sections.
func (s Snapshot[S, O]) SectionCount() int {
	return len(s.sections)
}

// Sections returns a copy of the ordered section identifiers.
func (s Snapshot[S, O]) Sections() []S {
	return slices.Clone(s.sections)
}

// Count returns the number of rows in section, or 0 if it is absent.
func (s Snapshot[S, O]) Count(section S) int {
	return len(s.objects[section])
}

// Object returns the row at the given coordinate. The second result is false
// when either index is out of range.
func (s Snapshot[S, O]) Object(at IndexPath) (O, bool) {
	var zero O
	if at.Section < 0 || at.Section >= len(s.sections) || at.Row < 0 {
		return zero, false
	}
	rows := s.objects[s.sections[at.Section]]
	if at.Row >= len(rows) {
		return zero, false
	}
	return rows[at.Row], true
}

// Objects returns a copy of the rows of section.
func (s Snapshot[S, O]) Objects(section S) ([]O, bool) {
	rows, ok := s.objects[section]
	if !ok {
		return nil, false
	}
	return slices.Clone(rows), true
}

// Rows returns the rows of the section at index without copying. Callers must
// not modify the result. Out of range indices yield nil.
func (s Snapshot[S, O]) Rows(index int) []O {
	if index < 0 || index >= len(s.sections) {
		return nil
	}
	return s.objects[s.sections[index]]
}

// SectionIndex returns the position of section.
func (s Snapshot[S, O]) SectionIndex(section S) (int, bool) {
	i := slices.Index(s.sections, section)
	return i, i >= 0
}

// Section returns the identifier of the section at index.
func (s Snapshot[S, O]) Section(index int) (S, bool) {
	var zero S
	if index < 0 || index >= len(s.sections) {
		return zero, false
	}
	return s.sections[index], true
}

// IndexPathWhere returns the coordinate of the first row satisfying pred.
// Sections are scanned in no particular order, so callers must not depend on
// which row is returned when several match.
func (s Snapshot[S, O]) IndexPathWhere(pred func(O) bool) (IndexPath, bool) {
	for section, rows := range s.objects {
		row := slices.IndexFunc(rows, pred)
		if row < 0 {
			continue
		}
		if si, ok := s.SectionIndex(section); ok {
			return IndexPath{Section: si, Row: row}, true
		}
	}
	return IndexPath{}, false
}

// Create appends a new, empty section. Creating a section that already exists
// is a programming error and panics.
func (s *Snapshot[S, O]) Create(section S) {
	if slices.Contains(s.sections, section) {
		panic(fmt.Sprintf("snapshot: section %v already exists", section))
	}
	s.sections = append(s.sections, section)
}

// Append sets the rows of a section previously added with Create, replacing
// any rows it already had. Appending to an unknown section panics.
func (s *Snapshot[S, O]) Append(objects []O, section S) {
	if !slices.Contains(s.sections, section) {
		panic(fmt.Sprintf("snapshot: section %v does not exist", section))
	}
	if s.objects == nil {
		s.objects = make(map[S][]O)
	}
	s.objects[section] = slices.Clone(objects)
}

// Clone returns a deep copy of s.
func (s Snapshot[S, O]) Clone() Snapshot[S, O] {
	c := Snapshot[S, O]{
		editing:  s.editing,
		sections: slices.Clone(s.sections),
		objects:  make(map[S][]O, len(s.objects)),
	}
	for section, rows := range s.objects {
		c.objects[section] = slices.Clone(rows)
	}
	return c
}

// Equal reports whether s and other have the same editing flag, the same
// sections in the same order and equal rows in every section.
func (s Snapshot[S, O]) Equal(other Snapshot[S, O]) bool {
	if s.editing != other.editing || !slices.Equal(s.sections, other.sections) {
		return false
	}
	for _, section := range s.sections {
		if !slices.Equal(s.objects[section], other.objects[section]) {
			return false
		}
	}
	return true
}

// replaceRow swaps a single row in place. The section's row slice is copied
// first so snapshots sharing it are unaffected.
func (s *Snapshot[S, O]) replaceRow(at IndexPath, object O) bool {
	if at.Section < 0 || at.Section >= len(s.sections) || at.Row < 0 {
		return false
	}
	section := s.sections[at.Section]
	rows := s.objects[section]
	if at.Row >= len(rows) {
		return false
	}
	rows = slices.Clone(rows)
	rows[at.Row] = object
	s.objects[section] = rows
	return true
}

// WithObject returns a copy of s where the row at the given coordinate is
// replaced by object. The second result is false, and s is returned
// unchanged, when the coordinate is out of range.
func (s Snapshot[S, O]) WithObject(at IndexPath, object O) (Snapshot[S, O], bool) {
	c := s.shallow()
	if !c.replaceRow(at, object) {
		return s, false
	}
	return c, true
}

// WithObjects returns a copy of s where section's rows are replaced. The
// second result is false when section is not part of s.
func (s Snapshot[S, O]) WithObjects(section S, objects []O) (Snapshot[S, O], bool) {
	if _, ok := s.objects[section]; !ok && !slices.Contains(s.sections, section) {
		return s, false
	}
	c := s.shallow()
	c.objects[section] = slices.Clone(objects)
	return c, true
}

// shallow copies the section list and the map but shares row slices.
func (s Snapshot[S, O]) shallow() Snapshot[S, O] {
	c := Snapshot[S, O]{
		editing:  s.editing,
		sections: slices.Clone(s.sections),
		objects:  make(map[S][]O, len(s.objects)),
	}
	for section, rows := range s.objects {
		c.objects[section] = rows
	}
	return c
}
