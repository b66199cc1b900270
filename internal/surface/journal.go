// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tfctl/rowsync/internal/log"
	"github.com/tfctl/rowsync/internal/reconciler"
	"github.com/tfctl/rowsync/internal/snapshot"
)

// Journal is a text surface. It prints every call it receives, one per line,
// and keeps a mirror of the list so the result can be rendered and checked.
// Batches complete synchronously.
type Journal struct {
	w      io.Writer
	list   list
	styles journalStyles

	batches int
	indent  string
	err     error
}

type journalStyles struct {
	muted, insert, delete, reload, title lipgloss.Style
}

// JournalOption customizes a Journal.
type JournalOption func(*Journal)

// WithVisible limits the rows considered on screen to the first n. 0 means
// all rows.
func WithVisible(n int) JournalOption {
	return func(j *Journal) { j.list.visible = n }
}

// NewJournal returns a Journal writing to w. Styling follows what w supports.
func NewJournal(w io.Writer, opts ...JournalOption) *Journal {
	r := lipgloss.NewRenderer(w)
	j := &Journal{
		w: w,
		styles: journalStyles{
			muted:  r.NewStyle().Faint(true),
			insert: r.NewStyle().Foreground(lipgloss.Color("2")),
			delete: r.NewStyle().Foreground(lipgloss.Color("1")),
			reload: r.NewStyle().Foreground(lipgloss.Color("3")),
			title:  r.NewStyle().Bold(true),
		},
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Journal) printf(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(j.w, j.indent+style.Render(fmt.Sprintf(format, args...)))
}

// SetDataSource implements reconciler.Surface.
func (j *Journal) SetDataSource(ds reconciler.DataSource[*Cell]) {
	j.list.ds = ds
}

// ReloadData implements reconciler.Surface.
func (j *Journal) ReloadData() {
	j.printf(j.styles.muted, "reload data")
	j.list.reload()
}

// SetEditing implements reconciler.Surface.
func (j *Journal) SetEditing(editing, animated bool) {
	state := "off"
	if editing {
		state = "on"
	}
	if animated {
		state += " animated"
	}
	j.printf(j.styles.muted, "editing %s", state)
}

// PerformBatch implements reconciler.Surface. A batch the mirror rejects is
// reported, recorded in Err and followed by a full reload; its completion
// then receives false.
func (j *Journal) PerformBatch(updates func(reconciler.Batch), completion func(finished bool)) {
	j.batches++
	j.printf(j.styles.muted, "batch %d {", j.batches)
	rec := &recorder{emit: func(o op) {
		style := j.styles.reload
		switch o.kind {
		case opInsertSections, opInsertRows:
			style = j.styles.insert
		case opDeleteSections, opDeleteRows:
			style = j.styles.delete
		}
		j.printf(style, "%s", o)
	}}
	j.indent = "  "
	updates(rec)
	j.indent = ""
	j.printf(j.styles.muted, "}")

	finished := true
	if err := j.list.apply(rec.ops); err != nil {
		log.Errorf("batch %d: %v", j.batches, err)
		j.printf(j.styles.delete, "  ! %v", err)
		if j.err == nil {
			j.err = err
		}
		j.list.reload()
		finished = false
	}

	if completion != nil {
		completion(finished)
	}
}

// VisibleRows implements reconciler.Surface.
func (j *Journal) VisibleRows() []snapshot.IndexPath {
	return j.list.visibleRows()
}

// CellAt implements reconciler.Surface.
func (j *Journal) CellAt(at snapshot.IndexPath) (*Cell, bool) {
	return j.list.cellAt(at)
}

// Err returns the first batch the mirror rejected, if any.
func (j *Journal) Err() error {
	return j.err
}

// Batches is the number of batches performed.
func (j *Journal) Batches() int {
	return j.batches
}

// Sections returns the list as displayed.
func (j *Journal) Sections() []Section {
	return j.list.render()
}

// Render formats the displayed list. Rows changed by the last batch are
// marked + (inserted) or ~ (reloaded).
func (j *Journal) Render() string {
	var b strings.Builder
	for s, sec := range j.list.render() {
		title := sec.Title
		if title == "" {
			title = fmt.Sprintf("section %d", s)
		}
		b.WriteString(j.styles.title.Render(title))
		b.WriteString("\n")
		for _, row := range sec.Rows {
			switch row.Change {
			case Inserted:
				b.WriteString(j.styles.insert.Render("+ " + row.Text))
			case Reloaded:
				b.WriteString(j.styles.reload.Render("~ " + row.Text))
			default:
				b.WriteString("  " + row.Text)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
