// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package surface

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tfctl/rowsync/internal/reconciler"
	"github.com/tfctl/rowsync/internal/snapshot"
)

// opKind names a batch mutation.
type opKind string

const (
	opInsertSections opKind = "insert sections"
	opDeleteSections opKind = "delete sections"
	opReloadSections opKind = "reload sections"
	opReloadRows     opKind = "reload rows"
	opInsertRows     opKind = "insert rows"
	opDeleteRows     opKind = "delete rows"
)

type op struct {
	kind     opKind
	sections []int
	paths    []snapshot.IndexPath
	t        reconciler.Transition
}

func (o op) String() string {
	var parts []string
	for _, s := range o.sections {
		parts = append(parts, fmt.Sprint(s))
	}
	for _, p := range o.paths {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("%s [%s] %s", o.kind, strings.Join(parts, " "), o.t)
}

// recorder is the reconciler.Batch handed to updates closures. emit, when
// set, sees every op as it is recorded.
type recorder struct {
	ops  []op
	emit func(op)
}

func (r *recorder) add(kind opKind, sections []int, paths []snapshot.IndexPath, t reconciler.Transition) {
	o := op{kind: kind, sections: slices.Clone(sections), paths: slices.Clone(paths), t: t}
	r.ops = append(r.ops, o)
	if r.emit != nil {
		r.emit(o)
	}
}

func (r *recorder) InsertSections(indices []int, t reconciler.Transition) {
	r.add(opInsertSections, indices, nil, t)
}

func (r *recorder) DeleteSections(indices []int, t reconciler.Transition) {
	r.add(opDeleteSections, indices, nil, t)
}

func (r *recorder) ReloadSections(indices []int, t reconciler.Transition) {
	r.add(opReloadSections, indices, nil, t)
}

func (r *recorder) ReloadRows(paths []snapshot.IndexPath, t reconciler.Transition) {
	r.add(opReloadRows, nil, paths, t)
}

func (r *recorder) InsertRows(paths []snapshot.IndexPath, t reconciler.Transition) {
	r.add(opInsertRows, nil, paths, t)
}

func (r *recorder) DeleteRows(paths []snapshot.IndexPath, t reconciler.Transition) {
	r.add(opDeleteRows, nil, paths, t)
}

// Change is what the last batch did to a row.
type Change int

const (
	Unchanged Change = iota
	Inserted
	Reloaded
)

func (c Change) String() string {
	switch c {
	case Inserted:
		return "inserted"
	case Reloaded:
		return "reloaded"
	default:
		return "unchanged"
	}
}

// slot is one displayed row. cell is nil while the row is off screen; stale
// asks for a fresh cell from the data source.
type slot struct {
	cell   *Cell
	stale  bool
	change Change
	t      reconciler.Transition
}

// list mirrors what a list view displays. It applies batches the way a table
// view does: deletes and reloads address the list before the batch, inserts
// and reloads address it after, and the result must agree with the data
// source. Rows the batch does not touch keep their cells.
type list struct {
	ds       reconciler.DataSource[*Cell]
	sections [][]slot
	titles   []string

	// offset and visible select the window of rows that hold cells. visible
	// 0 puts every row on screen.
	offset  int
	visible int
}

// Row is a rendered row.
type Row struct {
	Text       string
	Change     Change
	Transition reconciler.Transition
	OnScreen   bool
}

// Section is a rendered section.
type Section struct {
	Title string
	Rows  []Row
}

func (l *list) reload() {
	n := l.ds.NumberOfSections()
	l.sections = make([][]slot, n)
	for s := range n {
		l.sections[s] = freshRows(l.ds.NumberOfRows(s), Unchanged, reconciler.TransitionNone)
	}
	l.refreshTitles()
	l.materialize()
}

func freshRows(n int, change Change, t reconciler.Transition) []slot {
	rows := make([]slot, n)
	for i := range rows {
		rows[i] = slot{stale: true, change: change, t: t}
	}
	return rows
}

func (l *list) refreshTitles() {
	l.titles = make([]string, len(l.sections))
	for s := range l.sections {
		l.titles[s], _ = l.ds.HeaderTitle(s)
	}
}

func (l *list) onScreen(n int) bool {
	return l.visible <= 0 || (n >= l.offset && n < l.offset+l.visible)
}

// materialize gives window rows a cell and takes it from everything else.
func (l *list) materialize() {
	n := 0
	for s := range l.sections {
		for r := range l.sections[s] {
			sl := &l.sections[s][r]
			switch {
			case !l.onScreen(n):
				sl.cell, sl.stale = nil, false
			case sl.cell == nil || sl.stale:
				sl.cell, _ = l.ds.CellForRow(snapshot.At(s, r))
				sl.stale = false
			}
			n++
		}
	}
}

func index(ops []op, kind opKind) map[int]reconciler.Transition {
	m := map[int]reconciler.Transition{}
	for _, o := range ops {
		if o.kind == kind {
			for _, s := range o.sections {
				m[s] = o.t
			}
		}
	}
	return m
}

func indexPaths(ops []op, kind opKind) map[int]map[int]reconciler.Transition {
	m := map[int]map[int]reconciler.Transition{}
	for _, o := range ops {
		if o.kind != kind {
			continue
		}
		for _, p := range o.paths {
			if m[p.Section] == nil {
				m[p.Section] = map[int]reconciler.Transition{}
			}
			m[p.Section][p.Row] = o.t
		}
	}
	return m
}

// apply runs one batch. On error the list is left untouched.
func (l *list) apply(ops []op) error {
	delSec := index(ops, opDeleteSections)
	relSec := index(ops, opReloadSections)
	insSec := index(ops, opInsertSections)
	delRows := indexPaths(ops, opDeleteRows)
	relRows := indexPaths(ops, opReloadRows)
	insRows := indexPaths(ops, opInsertRows)

	old := l.sections
	for _, m := range []map[int]reconciler.Transition{delSec, relSec} {
		for s := range m {
			if s < 0 || s >= len(old) {
				return fmt.Errorf("invalid update: section %d does not exist", s)
			}
		}
	}
	for _, m := range []map[int]map[int]reconciler.Transition{delRows, relRows} {
		for s, rows := range m {
			if s < 0 || s >= len(old) {
				return fmt.Errorf("invalid update: section %d does not exist", s)
			}
			if _, gone := delSec[s]; gone {
				return fmt.Errorf("invalid update: rows of deleted section %d addressed", s)
			}
			for r := range rows {
				if r < 0 || r >= len(old[s]) {
					return fmt.Errorf("invalid update: row %s does not exist", snapshot.At(s, r))
				}
			}
		}
	}

	// Deletes, in old coordinates. A reloaded row is deleted here and
	// inserted again at the same index below.
	kept := make([][]slot, 0, len(old))
	keptFrom := make([]int, 0, len(old))
	for s, rows := range old {
		if _, gone := delSec[s]; gone {
			continue
		}
		next := make([]slot, 0, len(rows))
		for r, sl := range rows {
			if _, gone := delRows[s][r]; gone {
				continue
			}
			if _, gone := relRows[s][r]; gone {
				continue
			}
			sl.change, sl.t = Unchanged, reconciler.TransitionNone
			next = append(next, sl)
		}
		kept = append(kept, next)
		keptFrom = append(keptFrom, s)
	}

	// Section inserts, in new coordinates.
	total := len(kept) + len(insSec)
	for s := range insSec {
		if s < 0 || s >= total {
			return fmt.Errorf("invalid update: section insert at %d beyond %d sections", s, total)
		}
	}
	result := make([][]slot, 0, total)
	k := 0
	for s := range total {
		if t, ok := insSec[s]; ok {
			result = append(result, freshRows(l.ds.NumberOfRows(s), Inserted, t))
			continue
		}
		if t, ok := relSec[keptFrom[k]]; ok {
			result = append(result, freshRows(l.ds.NumberOfRows(s), Reloaded, t))
		} else {
			result = append(result, kept[k])
		}
		k++
	}

	// Row inserts and reloads, in new coordinates and ascending order. Reload
	// indices are the same before and after the batch.
	type insert struct {
		row    int
		change Change
		t      reconciler.Transition
	}
	pending := map[int][]insert{}
	for change, m := range map[Change]map[int]map[int]reconciler.Transition{Inserted: insRows, Reloaded: relRows} {
		for s, rows := range m {
			for r, t := range rows {
				pending[s] = append(pending[s], insert{row: r, change: change, t: t})
			}
		}
	}
	for s, ins := range pending {
		if s < 0 || s >= len(result) {
			return fmt.Errorf("invalid update: insert into missing section %d", s)
		}
		if _, ok := insSec[s]; ok {
			return fmt.Errorf("invalid update: rows inserted into new section %d", s)
		}
		slices.SortFunc(ins, func(a, b insert) int { return a.row - b.row })
		for _, in := range ins {
			if in.row < 0 || in.row > len(result[s]) {
				return fmt.Errorf("invalid update: insert at %s beyond %d rows", snapshot.At(s, in.row), len(result[s]))
			}
			result[s] = slices.Insert(result[s], in.row, slot{stale: true, change: in.change, t: in.t})
		}
	}

	if n := l.ds.NumberOfSections(); len(result) != n {
		return fmt.Errorf("invalid update: %d sections after update, data source has %d", len(result), n)
	}
	for s := range result {
		if n := l.ds.NumberOfRows(s); len(result[s]) != n {
			return fmt.Errorf("invalid update: section %d has %d rows after update, data source has %d", s, len(result[s]), n)
		}
	}

	l.sections = result
	l.refreshTitles()
	l.materialize()
	return nil
}

// clearMarks forgets what the last batch did.
func (l *list) clearMarks() {
	for s := range l.sections {
		for r := range l.sections[s] {
			l.sections[s][r].change = Unchanged
			l.sections[s][r].t = reconciler.TransitionNone
		}
	}
}

func (l *list) count() int {
	n := 0
	for _, rows := range l.sections {
		n += len(rows)
	}
	return n
}

func (l *list) scroll(delta int) {
	if l.visible <= 0 {
		return
	}
	l.offset = max(0, min(l.offset+delta, l.count()-l.visible))
	l.materialize()
}

func (l *list) visibleRows() []snapshot.IndexPath {
	var paths []snapshot.IndexPath
	n := 0
	for s := range l.sections {
		for r := range l.sections[s] {
			if l.onScreen(n) {
				paths = append(paths, snapshot.At(s, r))
			}
			n++
		}
	}
	return paths
}

func (l *list) cellAt(at snapshot.IndexPath) (*Cell, bool) {
	if at.Section < 0 || at.Section >= len(l.sections) || at.Row < 0 || at.Row >= len(l.sections[at.Section]) {
		return nil, false
	}
	c := l.sections[at.Section][at.Row].cell
	return c, c != nil
}

// render returns the displayed list. Rows without a cell are read from the
// data source, as if scrolled to.
func (l *list) render() []Section {
	out := make([]Section, len(l.sections))
	n := 0
	for s, rows := range l.sections {
		out[s].Title = l.titles[s]
		out[s].Rows = make([]Row, len(rows))
		for r, sl := range rows {
			row := Row{Change: sl.change, Transition: sl.t, OnScreen: l.onScreen(n)}
			if sl.cell != nil {
				row.Text = sl.cell.Text
			} else if c, ok := l.ds.CellForRow(snapshot.At(s, r)); ok {
				row.Text = c.Text
			}
			out[s].Rows[r] = row
			n++
		}
	}
	return out
}
