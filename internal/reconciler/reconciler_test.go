// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package reconciler

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/rowsync/internal/differ"
	"github.com/tfctl/rowsync/internal/snapshot"
)

type fakeCell struct {
	text       string
	configured int
}

// fakeSurface records every call it receives. The first `visible` rows, in
// section then row order, are considered on screen.
type fakeSurface struct {
	ds      DataSource[*fakeCell]
	ops     []string
	visible int
	cells   map[snapshot.IndexPath]*fakeCell

	deferCompletion bool
	pending         func(bool)
}

func newFakeSurface(visible int) *fakeSurface {
	return &fakeSurface{visible: visible, cells: map[snapshot.IndexPath]*fakeCell{}}
}

func (f *fakeSurface) record(format string, args ...any) {
	f.ops = append(f.ops, fmt.Sprintf(format, args...))
}

func (f *fakeSurface) refresh() {
	f.cells = map[snapshot.IndexPath]*fakeCell{}
	n := 0
	for s := range f.ds.NumberOfSections() {
		for r := range f.ds.NumberOfRows(s) {
			if n == f.visible {
				return
			}
			at := snapshot.At(s, r)
			if cell, ok := f.ds.CellForRow(at); ok {
				f.cells[at] = cell
			}
			n++
		}
	}
}

func (f *fakeSurface) SetDataSource(ds DataSource[*fakeCell]) { f.ds = ds }

func (f *fakeSurface) ReloadData() {
	f.record("reload")
	f.refresh()
}

func (f *fakeSurface) SetEditing(editing, animated bool) {
	f.record("editing %t %t", editing, animated)
}

func (f *fakeSurface) PerformBatch(updates func(Batch), completion func(bool)) {
	f.record("begin")
	updates(f)
	f.record("end")
	f.refresh()
	if f.deferCompletion {
		f.pending = completion
		return
	}
	completion(true)
}

func (f *fakeSurface) VisibleRows() []snapshot.IndexPath {
	var out []snapshot.IndexPath
	for at := range f.cells {
		out = append(out, at)
	}
	snapshot.SortIndexPaths(out)
	return out
}

func (f *fakeSurface) CellAt(at snapshot.IndexPath) (*fakeCell, bool) {
	c, ok := f.cells[at]
	return c, ok
}

func (f *fakeSurface) InsertSections(indices []int, t Transition) {
	f.record("insertSections %v %s", indices, t)
}

func (f *fakeSurface) DeleteSections(indices []int, t Transition) {
	f.record("deleteSections %v %s", indices, t)
}

func (f *fakeSurface) ReloadSections(indices []int, t Transition) {
	f.record("reloadSections %v %s", indices, t)
}

func (f *fakeSurface) ReloadRows(paths []snapshot.IndexPath, t Transition) {
	f.record("reloadRows %v %s", paths, t)
}

func (f *fakeSurface) InsertRows(paths []snapshot.IndexPath, t Transition) {
	f.record("insertRows %v %s", paths, t)
}

func (f *fakeSurface) DeleteRows(paths []snapshot.IndexPath, t Transition) {
	f.record("deleteRows %v %s", paths, t)
}

func dequeue(Surface[*fakeCell], snapshot.IndexPath, string, string) *fakeCell {
	return &fakeCell{}
}

func configure(cell *fakeCell, _ snapshot.IndexPath, section, object string) {
	cell.text = section + ":" + object
	cell.configured++
}

func newReconciler(t *testing.T, visible int, opts ...Option[string, string]) (*Reconciler[string, string, *fakeCell], *fakeSurface) {
	t.Helper()
	f := newFakeSurface(visible)
	r := New[string, string, *fakeCell](f, dequeue, configure, opts...)
	require.Same(t, r, f.ds)
	return r, f
}

type sec struct {
	id   string
	rows []string
}

func snap(editing bool, sections ...sec) snapshot.Snapshot[string, string] {
	s := snapshot.New[string, string](editing)
	for _, sec := range sections {
		s.Create(sec.id)
		s.Append(sec.rows, sec.id)
	}
	return s
}

func rows(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// start brings a reconciler to an initial snapshot and clears the log.
func start(r *Reconciler[string, string, *fakeCell], f *fakeSurface, s snapshot.Snapshot[string, string]) {
	r.Apply(s, AnimateNone(), nil)
	f.ops = nil
}

type completions struct {
	calls []bool
}

func (c *completions) fn(finished bool) { c.calls = append(c.calls, finished) }

func TestApplyNone(t *testing.T) {
	r, f := newReconciler(t, 10)
	next := snap(true, sec{"a", rows("xy")})

	var done completions
	r.Apply(next, AnimateNone(), done.fn)

	assert.Equal(t, []string{"editing true false", "reload"}, f.ops)
	assert.Equal(t, []bool{true}, done.calls)
	assert.True(t, r.Snapshot().Equal(next))
	assert.Equal(t, "a:y", f.cells[snapshot.At(0, 1)].text)
}

func TestApplyKeepsPrivateCopy(t *testing.T) {
	r, _ := newReconciler(t, 10)
	next := snap(false, sec{"a", rows("xy")})
	r.Apply(next, AnimateNone(), nil)

	next.Append(rows("z"), "a")
	assert.Equal(t, 2, r.Snapshot().Count("a"))

	got := r.Snapshot()
	got.Append(rows("q"), "a")
	assert.Equal(t, 2, r.Snapshot().Count("a"))
}

func TestApplyRowsBatchOrder(t *testing.T) {
	r, f := newReconciler(t, 10)
	start(r, f, snap(false, sec{"a", rows("abcd")}))

	next := snap(true, sec{"a", rows("aBde")}, sec{"b", rows("z")})

	var done completions
	r.Apply(next, AnimateRows(TransitionFade, TransitionLeft, TransitionRight), done.fn)

	assert.Equal(t, []string{
		"begin",
		"insertSections [1] automatic",
		"reloadRows [0.1] fade",
		"insertRows [0.3] left",
		"deleteRows [0.2] right",
		"editing true true",
		"end",
	}, f.ops)
	assert.Equal(t, []bool{true}, done.calls)
	assert.True(t, r.Snapshot().Equal(next))
	assert.False(t, r.InFlight())
}

func TestApplyRowsSectionShrink(t *testing.T) {
	r, f := newReconciler(t, 10)
	start(r, f, snap(false, sec{"a", rows("ab")}, sec{"b", rows("c")}, sec{"c", rows("d")}))

	next := snap(false, sec{"a", rows("ab")})
	r.Apply(next, AnimateRows(TransitionAutomatic, TransitionAutomatic, TransitionAutomatic), nil)

	assert.Equal(t, []string{"begin", "deleteSections [1 2] automatic", "end"}, f.ops)
	assert.True(t, r.Snapshot().Equal(next))
}

func TestApplyRowsMovesAreNotIssued(t *testing.T) {
	r, f := newReconciler(t, 10)
	start(r, f, snap(false, sec{"a", rows("abc")}))

	next := snap(false, sec{"a", rows("bca")})
	r.Apply(next, AnimateRows(TransitionFade, TransitionFade, TransitionFade), nil)

	assert.Equal(t, []string{"begin", "end"}, f.ops)
	assert.True(t, r.Snapshot().Equal(next))
}

func TestApplyRowsWithMoveUpdates(t *testing.T) {
	r, f := newReconciler(t, 10, WithMoveUpdates[string, string]())
	start(r, f, snap(false, sec{"a", rows("abcd")}))

	next := snap(false, sec{"a", rows("bcda")})
	r.Apply(next, AnimateRows(TransitionFade, TransitionLeft, TransitionRight), nil)

	assert.Equal(t, []string{
		"begin",
		"insertRows [0.3] left",
		"deleteRows [0.0] right",
		"end",
	}, f.ops)
	assert.True(t, r.Snapshot().Equal(next))
}

func TestApplyRowsIdempotent(t *testing.T) {
	r, f := newReconciler(t, 10)
	s := snap(false, sec{"a", rows("abc")}, sec{"b", rows("d")})
	start(r, f, s)

	var done completions
	r.Apply(s.Clone(), AnimateRows(TransitionFade, TransitionFade, TransitionFade), done.fn)

	assert.Empty(t, f.ops)
	assert.Equal(t, []bool{true}, done.calls)
	assert.True(t, r.Snapshot().Equal(s))
}

func TestApplyRowsFastPath(t *testing.T) {
	r, f := newReconciler(t, 2)
	start(r, f, snap(false, sec{"a", rows("abcd")}))

	before := map[snapshot.IndexPath]int{}
	for at, c := range f.cells {
		before[at] = c.configured
	}
	require.Len(t, before, 2)

	// Row 1 is on screen, row 3 is not.
	next := snap(false, sec{"a", rows("aBcD")})

	var done completions
	r.Apply(next, AnimateRows(TransitionFade, TransitionFade, TransitionFade), done.fn)

	assert.Empty(t, f.ops, "no structural mutation")
	assert.Equal(t, []bool{true}, done.calls)
	assert.True(t, r.Snapshot().Equal(next))

	assert.Equal(t, before[snapshot.At(0, 0)], f.cells[snapshot.At(0, 0)].configured)
	assert.Equal(t, before[snapshot.At(0, 1)]+1, f.cells[snapshot.At(0, 1)].configured)
	assert.Equal(t, "a:B", f.cells[snapshot.At(0, 1)].text)

	// The off-screen row picks up the new value when requested.
	cell, ok := r.CellForRow(snapshot.At(0, 3))
	require.True(t, ok)
	assert.Equal(t, "a:D", cell.text)
}

func TestApplyRowsFastPathMatchesFullReload(t *testing.T) {
	initial := snap(false, sec{"a", rows("abc")}, sec{"b", rows("de")})
	next := snap(false, sec{"a", rows("aXc")}, sec{"b", rows("dY")})

	fast, ff := newReconciler(t, 10)
	start(fast, ff, initial)
	fast.Apply(next, AnimateRows(TransitionFade, TransitionFade, TransitionFade), nil)
	require.Empty(t, ff.ops)

	full, fs := newReconciler(t, 10)
	start(full, fs, initial)
	full.Apply(next, AnimateNone(), nil)

	text := func(f *fakeSurface) map[snapshot.IndexPath]string {
		out := map[snapshot.IndexPath]string{}
		for at, c := range f.cells {
			out[at] = c.text
		}
		return out
	}
	assert.Equal(t, text(fs), text(ff))
}

func TestApplyRowsEditingOnly(t *testing.T) {
	r, f := newReconciler(t, 10)
	start(r, f, snap(false, sec{"a", rows("ab")}))

	r.Apply(snap(true, sec{"a", rows("ab")}), AnimateRows(TransitionFade, TransitionFade, TransitionFade), nil)

	assert.Equal(t, []string{"editing true true"}, f.ops)
	assert.True(t, r.Snapshot().Editing())
}

func TestApplyInFlight(t *testing.T) {
	r, f := newReconciler(t, 10)
	start(r, f, snap(false, sec{"a", rows("ab")}))
	f.deferCompletion = true

	var done completions
	next := snap(false, sec{"a", rows("abc")})
	r.Apply(next, AnimateRows(TransitionFade, TransitionFade, TransitionFade), done.fn)

	assert.True(t, r.InFlight())
	assert.Empty(t, done.calls)
	assert.True(t, r.Snapshot().Equal(next), "data is adopted before the batch completes")

	assert.Panics(t, func() {
		r.Apply(snap(false, sec{"a", rows("a")}), AnimateNone(), nil)
	})

	require.NotNil(t, f.pending)
	f.pending(false)

	assert.False(t, r.InFlight())
	assert.Equal(t, []bool{false}, done.calls)

	assert.NotPanics(t, func() {
		r.Apply(snap(false, sec{"a", rows("a")}), AnimateNone(), nil)
	})
}

func TestApplySections(t *testing.T) {
	tests := []struct {
		name string
		from snapshot.Snapshot[string, string]
		to   snapshot.Snapshot[string, string]
		want []string
	}{
		{
			name: "grow",
			from: snap(false, sec{"a", rows("x")}, sec{"b", rows("y")}),
			to:   snap(false, sec{"a", rows("x")}, sec{"b", rows("yz")}, sec{"c", nil}),
			want: []string{"begin", "reloadSections [0 1] fade", "insertSections [2] fade", "end"},
		},
		{
			name: "shrink with editing",
			from: snap(false, sec{"a", rows("x")}, sec{"b", rows("y")}),
			to:   snap(true, sec{"a", rows("q")}),
			want: []string{"begin", "reloadSections [0] fade", "deleteSections [1] fade", "editing true true", "end"},
		},
		{
			name: "from empty",
			from: snap(false),
			to:   snap(false, sec{"a", rows("x")}),
			want: []string{"begin", "insertSections [0] fade", "end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, f := newReconciler(t, 10)
			start(r, f, tt.from)

			var done completions
			r.Apply(tt.to, AnimateSections(TransitionFade), done.fn)

			assert.Equal(t, tt.want, f.ops)
			assert.Equal(t, []bool{true}, done.calls)
			assert.True(t, r.Snapshot().Equal(tt.to))
		})
	}
}

func TestDetach(t *testing.T) {
	r, f := newReconciler(t, 10)
	start(r, f, snap(false, sec{"a", rows("ab")}))
	r.Detach()

	var done completions
	r.Apply(snap(false, sec{"a", rows("abc")}), AnimateNone(), done.fn)

	assert.Empty(t, f.ops)
	assert.Empty(t, done.calls)
	assert.Equal(t, 2, r.Snapshot().Count("a"))

	r.Update("Z", snapshot.At(0, 0))
	got, _ := r.Snapshot().Object(snapshot.At(0, 0))
	assert.Equal(t, "Z", got)

	r.SetEditing(true, true)
	assert.Empty(t, f.ops)
	assert.True(t, r.Snapshot().Editing())
}

func TestUpdate(t *testing.T) {
	r, f := newReconciler(t, 1)
	start(r, f, snap(false, sec{"a", rows("ab")}))
	before := r.Snapshot()

	r.Update("X", snapshot.At(0, 0))
	assert.Equal(t, "a:X", f.cells[snapshot.At(0, 0)].text)

	// Off screen: the snapshot changes, no cell is touched.
	r.Update("Y", snapshot.At(0, 1))
	got, _ := r.Snapshot().Object(snapshot.At(0, 1))
	assert.Equal(t, "Y", got)
	assert.Len(t, f.cells, 1)

	// Out of range is ignored.
	r.Update("Z", snapshot.At(0, 5))
	r.Update("Z", snapshot.At(3, 0))
	assert.Equal(t, 2, r.Snapshot().Count("a"))

	assert.Empty(t, f.ops)

	got, _ = before.Object(snapshot.At(0, 0))
	assert.Equal(t, "a", got, "earlier snapshots are unaffected")
}

func TestUpdateSection(t *testing.T) {
	r, f := newReconciler(t, 10)
	start(r, f, snap(false, sec{"a", rows("ab")}, sec{"b", rows("c")}))

	r.UpdateSection("missing", rows("x"), AnimateNone())
	assert.Empty(t, f.ops)

	r.UpdateSection("b", rows("cd"), AnimateRows(TransitionFade, TransitionTop, TransitionBottom))
	assert.Equal(t, []string{"begin", "insertRows [1.1] top", "end"}, f.ops)

	objects, ok := r.Snapshot().Objects("b")
	require.True(t, ok)
	assert.Equal(t, rows("cd"), objects)
}

func TestUpdateWithoutReload(t *testing.T) {
	r, f := newReconciler(t, 10)
	start(r, f, snap(false, sec{"a", rows("ab")}))

	r.UpdateWithoutReload("missing", rows("x"))
	r.UpdateWithoutReload("a", rows("xyz"))

	assert.Empty(t, f.ops)
	assert.Equal(t, 3, r.Snapshot().Count("a"))
}

func TestSetEditing(t *testing.T) {
	r, f := newReconciler(t, 10)
	r.SetEditing(true, true)

	assert.Equal(t, []string{"editing true true"}, f.ops)
	assert.True(t, r.Snapshot().Editing())
}

func TestDataSource(t *testing.T) {
	titles := WithHeaderTitle[string, string](func(section string) (string, bool) {
		if section == "b" {
			return "", false
		}
		return "Section " + section, true
	})
	r, f := newReconciler(t, 10, titles)
	start(r, f, snap(false, sec{"a", rows("xy")}, sec{"b", nil}))

	assert.Equal(t, 2, r.NumberOfSections())
	assert.Equal(t, 2, r.NumberOfRows(0))
	assert.Equal(t, 0, r.NumberOfRows(1))
	assert.Equal(t, 0, r.NumberOfRows(7))

	cell, ok := r.CellForRow(snapshot.At(0, 1))
	require.True(t, ok)
	assert.Equal(t, "a:y", cell.text)
	assert.Equal(t, 1, cell.configured)

	_, ok = r.CellForRow(snapshot.At(1, 0))
	assert.False(t, ok)

	title, ok := r.HeaderTitle(0)
	assert.True(t, ok)
	assert.Equal(t, "Section a", title)

	_, ok = r.HeaderTitle(1)
	assert.False(t, ok)
	_, ok = r.HeaderTitle(9)
	assert.False(t, ok)

	plain, _ := newReconciler(t, 10)
	_, ok = plain.HeaderTitle(0)
	assert.False(t, ok)
}

func TestWithDiffOptions(t *testing.T) {
	type row struct {
		Key  int
		Text string
	}

	f := newFakeSurface(10)
	r := New[string, row, *fakeCell](f,
		func(Surface[*fakeCell], snapshot.IndexPath, string, row) *fakeCell { return &fakeCell{} },
		func(*fakeCell, snapshot.IndexPath, string, row) {},
		WithDiffOptions[string, row](differ.Options[row]{
			Engine:   differ.EngineLCS,
			SameSlot: func(old, new row) bool { return old.Key == new.Key },
		}),
	)

	from := snapshot.New[string, row](false)
	from.Create("a")
	from.Append([]row{{1, "one"}, {2, "two"}}, "a")
	r.Apply(from, AnimateNone(), nil)
	f.ops = nil

	to := snapshot.New[string, row](false)
	to.Create("a")
	to.Append([]row{{1, "one"}, {3, "three"}}, "a")
	r.Apply(to, AnimateRows(TransitionFade, TransitionFade, TransitionFade), nil)

	assert.True(t, slices.Contains(f.ops, "insertRows [0.1] fade"))
	assert.True(t, slices.Contains(f.ops, "deleteRows [0.1] fade"))
}

func TestParseModeAndTransition(t *testing.T) {
	m, err := ParseMode("Rows")
	require.NoError(t, err)
	assert.Equal(t, ModeRows, m)
	assert.Equal(t, "sections", ModeSections.String())

	_, err = ParseMode("bounce")
	assert.Error(t, err)

	tr, err := ParseTransition("bottom")
	require.NoError(t, err)
	assert.Equal(t, TransitionBottom, tr)
	assert.Equal(t, "transition(42)", Transition(42).String())

	_, err = ParseTransition("spin")
	assert.Error(t, err)
}
