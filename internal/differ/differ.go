// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"github.com/apex/log"

	"github.com/tfctl/rowsync/internal/snapshot"
)

// Diff computes the edit script that turns old into new. Sections are compared
// by position (see DiffSections) and the rows of every retained section are
// compared with DiffRows. Rows never move between sections.
func Diff[S comparable, O comparable](old, new snapshot.Snapshot[S, O], opts Options[O]) Script {
	script := Script{
		Sections:       DiffSections(old.SectionCount(), new.SectionCount()),
		EditingChanged: old.Editing() != new.Editing(),
	}

	for i := range script.Sections.Retained {
		rows := DiffRows(old.Rows(i), new.Rows(i), i, opts)
		script.Reloads = append(script.Reloads, rows.Reloads...)
		script.Inserts = append(script.Inserts, rows.Inserts...)
		script.Deletes = append(script.Deletes, rows.Deletes...)
		script.Moves = append(script.Moves, rows.Moves...)
	}

	c := script.Counts()
	log.Debugf("diff: sections=%s reloads=%d inserts=%d deletes=%d moves=%d editing=%t",
		script.Sections.Change, c.Reloads, c.Inserts, c.Deletes, c.Moves, script.EditingChanged)

	return script
}

// DiffSections compares two section counts positionally. Growth and shrinkage
// are assumed to happen at the tail; sections inserted, deleted or reordered
// in the middle are not detected and show up as row changes instead.
func DiffSections(oldCount, newCount int) SectionDiff {
	switch {
	case oldCount < newCount:
		return SectionDiff{
			Change:   SectionsGrow,
			Retained: oldCount,
			Inserted: span(oldCount, newCount),
		}
	case oldCount > newCount:
		return SectionDiff{
			Change:   SectionsShrink,
			Retained: newCount,
			Deleted:  span(newCount, oldCount),
		}
	default:
		return SectionDiff{Change: SectionsStable, Retained: oldCount}
	}
}

func span(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
