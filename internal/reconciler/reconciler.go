// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"slices"

	"github.com/apex/log"

	"github.com/tfctl/rowsync/internal/differ"
	"github.com/tfctl/rowsync/internal/snapshot"
)

// Dequeue obtains a cell for a row from the surface, typically from a reuse
// pool.
type Dequeue[S comparable, O comparable, C any] func(surface Surface[C], at snapshot.IndexPath, section S, object O) C

// Configure fills a cell with the content of a row. It is called after every
// dequeue and again whenever a visible row is refreshed in place.
type Configure[S comparable, O comparable, C any] func(cell C, at snapshot.IndexPath, section S, object O)

type settings[S comparable, O comparable] struct {
	headerTitle func(section S) (string, bool)
	diff        differ.Options[O]
	moves       bool
}

// Option customizes a Reconciler.
type Option[S comparable, O comparable] func(*settings[S, O])

// WithHeaderTitle supplies section header titles to the surface.
func WithHeaderTitle[S comparable, O comparable](fn func(section S) (string, bool)) Option[S, O] {
	return func(s *settings[S, O]) {
		s.headerTitle = fn
	}
}

// WithDiffOptions sets the options used for row level diffs.
func WithDiffOptions[S comparable, O comparable](opts differ.Options[O]) Option[S, O] {
	return func(s *settings[S, O]) {
		s.diff = opts
	}
}

// WithMoveUpdates issues every detected move as a delete of its old row and
// an insert at its new row, using the delete and insert transitions. Without
// it moved rows are left out of row batches and keep their old cells until
// they are reloaded.
func WithMoveUpdates[S comparable, O comparable]() Option[S, O] {
	return func(s *settings[S, O]) {
		s.moves = true
	}
}

// Reconciler keeps a Surface in step with a sequence of snapshots. It owns a
// private copy of the snapshot currently displayed and, on every Apply, works
// out and issues the mutations that take the surface to the new one.
//
// A Reconciler is not safe for concurrent use. All calls must come from the
// goroutine that drives the surface.
type Reconciler[S comparable, O comparable, C any] struct {
	surface   Surface[C]
	dequeue   Dequeue[S, O, C]
	configure Configure[S, O, C]
	settings  settings[S, O]

	current  snapshot.Snapshot[S, O]
	inFlight bool
}

// New creates a Reconciler with an empty snapshot and installs it as the
// surface's data source.
func New[S comparable, O comparable, C any](surface Surface[C], dequeue Dequeue[S, O, C], configure Configure[S, O, C], opts ...Option[S, O]) *Reconciler[S, O, C] {
	r := &Reconciler[S, O, C]{
		surface:   surface,
		dequeue:   dequeue,
		configure: configure,
		current:   snapshot.New[S, O](false),
	}
	for _, opt := range opts {
		opt(&r.settings)
	}

	surface.SetDataSource(r)
	return r
}

// Snapshot returns a copy of the snapshot currently displayed.
func (r *Reconciler[S, O, C]) Snapshot() snapshot.Snapshot[S, O] {
	return r.current.Clone()
}

// InFlight reports whether a batch was handed to the surface and has not
// completed yet.
func (r *Reconciler[S, O, C]) InFlight() bool {
	return r.inFlight
}

// Detach drops the surface. Later calls to Apply do nothing and Update only
// changes the snapshot.
func (r *Reconciler[S, O, C]) Detach() {
	r.surface = nil
}

// Apply makes next the current snapshot and updates the surface according to
// animation. completion, which may be nil, is called once the surface is done.
// For non-animated and reload only changes that happens before Apply returns.
//
// Calling Apply while a batch is still in flight panics.
func (r *Reconciler[S, O, C]) Apply(next snapshot.Snapshot[S, O], animation Animation, completion func(finished bool)) {
	if r.surface == nil {
		log.Debugf("apply: surface detached, ignoring snapshot")
		return
	}
	if r.inFlight {
		panic("reconciler: Apply called while a batch is in flight")
	}

	next = next.Clone()

	switch animation.Mode {
	case ModeSections:
		r.applySections(next, animation.Transition, completion)
	case ModeRows:
		r.applyRows(next, animation, completion)
	default:
		log.Debugf("apply: full reload of %d sections", next.SectionCount())
		r.current = next
		r.surface.SetEditing(next.Editing(), false)
		r.surface.ReloadData()
		complete(completion, true)
	}
}

func (r *Reconciler[S, O, C]) applySections(next snapshot.Snapshot[S, O], t Transition, completion func(bool)) {
	sections := differ.DiffSections(r.current.SectionCount(), next.SectionCount())
	editingChanged := r.current.Editing() != next.Editing()

	log.Debugf("apply: section batch %s retained=%d", sections.Change, sections.Retained)

	r.batch(func(b Batch) {
		r.current = next
		if sections.Retained > 0 {
			retained := make([]int, sections.Retained)
			for i := range retained {
				retained[i] = i
			}
			b.ReloadSections(retained, t)
		}
		if len(sections.Inserted) > 0 {
			b.InsertSections(sections.Inserted, t)
		}
		if len(sections.Deleted) > 0 {
			b.DeleteSections(sections.Deleted, t)
		}
		if editingChanged {
			r.surface.SetEditing(next.Editing(), true)
		}
	}, completion)
}

func (r *Reconciler[S, O, C]) applyRows(next snapshot.Snapshot[S, O], animation Animation, completion func(bool)) {
	script := differ.Diff(r.current, next, r.settings.diff)
	inserts, deletes := script.Inserts, script.Deletes
	if r.settings.moves && len(script.Moves) > 0 {
		inserts, deletes = slices.Clone(inserts), slices.Clone(deletes)
		for _, m := range script.Moves {
			deletes = append(deletes, m.From)
			inserts = append(inserts, m.To)
		}
		snapshot.SortIndexPaths(inserts)
		snapshot.SortIndexPaths(deletes)
	}

	if !script.Structural() {
		log.Debugf("apply: fast path, %d reloads", len(script.Reloads))
		r.current = next
		if len(script.Reloads) > 0 {
			r.reconfigureVisible(script.Reloads)
		}
		if script.EditingChanged {
			r.surface.SetEditing(next.Editing(), true)
		}
		complete(completion, true)
		return
	}

	r.batch(func(b Batch) {
		r.current = next
		if len(script.Sections.Inserted) > 0 {
			b.InsertSections(script.Sections.Inserted, TransitionAutomatic)
		}
		if len(script.Sections.Deleted) > 0 {
			b.DeleteSections(script.Sections.Deleted, TransitionAutomatic)
		}
		if len(script.Reloads) > 0 {
			b.ReloadRows(script.Reloads, animation.Reload)
		}
		if len(inserts) > 0 {
			b.InsertRows(inserts, animation.Insert)
		}
		if len(deletes) > 0 {
			b.DeleteRows(deletes, animation.Delete)
		}
		if script.EditingChanged {
			r.surface.SetEditing(next.Editing(), true)
		}
	}, completion)
}

// batch runs updates inside one surface transaction and tracks it as in
// flight until the surface reports completion.
func (r *Reconciler[S, O, C]) batch(updates func(Batch), completion func(bool)) {
	r.inFlight = true
	r.surface.PerformBatch(updates, func(finished bool) {
		r.inFlight = false
		complete(completion, finished)
	})
}

// reconfigureVisible refreshes the on-screen cells among paths. Rows that are
// off screen pick up the new content when they are next requested.
func (r *Reconciler[S, O, C]) reconfigureVisible(paths []snapshot.IndexPath) {
	wanted := make(map[snapshot.IndexPath]bool, len(paths))
	for _, p := range paths {
		wanted[p] = true
	}

	for _, at := range r.surface.VisibleRows() {
		if !wanted[at] {
			continue
		}
		cell, ok := r.surface.CellAt(at)
		if !ok {
			continue
		}
		object, ok := r.current.Object(at)
		if !ok {
			continue
		}
		section, _ := r.current.Section(at.Section)
		r.configure(cell, at, section, object)
	}
}

// Update replaces a single row of the current snapshot and refreshes its cell
// if it is on screen. Out of range coordinates are ignored.
func (r *Reconciler[S, O, C]) Update(object O, at snapshot.IndexPath) {
	next, ok := r.current.WithObject(at, object)
	if !ok {
		return
	}
	r.current = next

	if r.surface == nil {
		return
	}
	cell, ok := r.surface.CellAt(at)
	if !ok {
		return
	}
	section, _ := r.current.Section(at.Section)
	r.configure(cell, at, section, object)
}

// UpdateSection replaces the rows of one section and applies the result.
func (r *Reconciler[S, O, C]) UpdateSection(section S, objects []O, animation Animation) {
	next, ok := r.current.WithObjects(section, objects)
	if !ok {
		log.Warnf("update section: section %v is not in the snapshot", section)
		return
	}
	r.Apply(next, animation, nil)
}

// UpdateWithoutReload replaces the rows of one section without telling the
// surface. The caller is responsible for the surface catching up.
func (r *Reconciler[S, O, C]) UpdateWithoutReload(section S, objects []O) {
	next, ok := r.current.WithObjects(section, objects)
	if !ok {
		log.Warnf("update section: section %v is not in the snapshot", section)
		return
	}
	r.current = next
}

// SetEditing changes the editing flag of the current snapshot and forwards it
// to the surface.
func (r *Reconciler[S, O, C]) SetEditing(editing, animated bool) {
	r.current = r.current.WithEditing(editing)
	if r.surface != nil {
		r.surface.SetEditing(editing, animated)
	}
}

// NumberOfSections implements DataSource.
func (r *Reconciler[S, O, C]) NumberOfSections() int {
	return r.current.SectionCount()
}

// NumberOfRows implements DataSource.
func (r *Reconciler[S, O, C]) NumberOfRows(section int) int {
	return len(r.current.Rows(section))
}

// CellForRow implements DataSource.
func (r *Reconciler[S, O, C]) CellForRow(at snapshot.IndexPath) (C, bool) {
	var zero C
	object, ok := r.current.Object(at)
	if !ok {
		return zero, false
	}
	section, _ := r.current.Section(at.Section)

	cell := r.dequeue(r.surface, at, section, object)
	r.configure(cell, at, section, object)
	return cell, true
}

// HeaderTitle implements DataSource.
func (r *Reconciler[S, O, C]) HeaderTitle(section int) (string, bool) {
	if r.settings.headerTitle == nil {
		return "", false
	}
	id, ok := r.current.Section(section)
	if !ok {
		return "", false
	}
	return r.settings.headerTitle(id)
}

func complete(completion func(bool), finished bool) {
	if completion != nil {
		completion(finished)
	}
}
