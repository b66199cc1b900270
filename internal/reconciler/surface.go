// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"fmt"
	"strings"

	"github.com/tfctl/rowsync/internal/snapshot"
)

// Transition is the visual style a surface uses for a row or section change.
type Transition int

const (
	TransitionAutomatic Transition = iota
	TransitionFade
	TransitionLeft
	TransitionRight
	TransitionTop
	TransitionBottom
	TransitionNone
)

var transitionNames = []string{"automatic", "fade", "left", "right", "top", "bottom", "none"}

func (t Transition) String() string {
	if t < 0 || int(t) >= len(transitionNames) {
		return fmt.Sprintf("transition(%d)", int(t))
	}
	return transitionNames[t]
}

// ParseTransition maps a name back to a Transition.
func ParseTransition(name string) (Transition, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range transitionNames {
		if n == name {
			return Transition(i), nil
		}
	}
	return TransitionAutomatic, fmt.Errorf("unknown transition %q", name)
}

// Surface is the list view a Reconciler drives. Implementations own cell
// reuse and the execution of transitions; the reconciler only tells them what
// changed. C is the surface's cell handle type.
type Surface[C any] interface {
	// SetDataSource installs the object the surface reads counts and cells
	// from.
	SetDataSource(ds DataSource[C])

	// ReloadData discards every cell and re-reads the data source.
	ReloadData()

	SetEditing(editing, animated bool)

	// PerformBatch runs updates synchronously as one transaction and calls
	// completion once the surface has finished animating it. completion may
	// run later than PerformBatch returns.
	PerformBatch(updates func(Batch), completion func(finished bool))

	// VisibleRows returns the coordinates currently on screen.
	VisibleRows() []snapshot.IndexPath

	// CellAt returns the on-screen cell at a coordinate, if there is one.
	CellAt(at snapshot.IndexPath) (C, bool)
}

// Batch collects the structural mutations of a single transaction.
type Batch interface {
	InsertSections(indices []int, t Transition)
	DeleteSections(indices []int, t Transition)
	ReloadSections(indices []int, t Transition)
	ReloadRows(paths []snapshot.IndexPath, t Transition)
	InsertRows(paths []snapshot.IndexPath, t Transition)
	DeleteRows(paths []snapshot.IndexPath, t Transition)
}

// DataSource answers the surface's questions about the current snapshot.
type DataSource[C any] interface {
	NumberOfSections() int
	NumberOfRows(section int) int
	CellForRow(at snapshot.IndexPath) (C, bool)
	HeaderTitle(section int) (string, bool)
}

// Mode selects how Apply moves the surface to a new snapshot.
type Mode int

const (
	// ModeNone reloads the whole surface without animation.
	ModeNone Mode = iota
	// ModeSections animates section level changes only and reloads retained
	// sections wholesale.
	ModeSections
	// ModeRows animates row level changes.
	ModeRows
)

var modeNames = []string{"none", "sections", "rows"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode maps a name back to a Mode.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return ModeNone, fmt.Errorf("unknown animation %q (want none, sections or rows)", name)
}

// Animation is the animation style handed to Apply.
type Animation struct {
	Mode Mode

	// Transition is used for section changes in ModeSections.
	Transition Transition

	// Reload, Insert and Delete are the row transitions for ModeRows.
	Reload Transition
	Insert Transition
	Delete Transition
}

// AnimateNone requests a full, non-animated reload.
func AnimateNone() Animation {
	return Animation{Mode: ModeNone}
}

// AnimateSections requests section level animation with transition t.
func AnimateSections(t Transition) Animation {
	return Animation{Mode: ModeSections, Transition: t}
}

// AnimateRows requests row level animation with the given transitions.
func AnimateRows(reload, insert, delete Transition) Animation {
	return Animation{Mode: ModeRows, Reload: reload, Insert: insert, Delete: delete}
}
