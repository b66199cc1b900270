// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package surface

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/rowsync/internal/document"
	"github.com/tfctl/rowsync/internal/reconciler"
	"github.com/tfctl/rowsync/internal/snapshot"
)

func TestTerminalBatchSettles(t *testing.T) {
	v1, v2 := parse(t, todoV1), parse(t, todoV2)
	term := NewTerminal(0)
	r := NewRowReconciler(term, v2.Title)
	r.Apply(v1.Snapshot(), reconciler.AnimateNone(), nil)
	assert.False(t, term.Busy())

	var finished []bool
	r.Apply(v2.Snapshot(), reconciler.AnimateRows(reconciler.TransitionFade, reconciler.TransitionLeft, reconciler.TransitionRight), func(ok bool) {
		finished = append(finished, ok)
	})

	assert.True(t, term.Busy())
	assert.True(t, r.InFlight())
	assert.Empty(t, finished)
	assert.True(t, term.editing)
	assert.Equal(t, Reloaded, term.list.render()[0].Rows[1].Change)

	term.Settle()
	assert.False(t, term.Busy())
	assert.False(t, r.InFlight())
	assert.Equal(t, []bool{true}, finished)
	assert.Equal(t, Unchanged, term.list.render()[0].Rows[1].Change)
	assert.NoError(t, term.Err())

	// Settling with nothing in flight is harmless.
	term.Settle()
	assert.Equal(t, []bool{true}, finished)
}

func TestTerminalRejectsBadBatch(t *testing.T) {
	term := NewTerminal(0)
	ds := &stubSource{rows: [][]string{{"a"}}}
	term.SetDataSource(ds)
	term.ReloadData()

	ds.rows = [][]string{}
	var finished []bool
	term.PerformBatch(func(reconciler.Batch) {}, func(ok bool) { finished = append(finished, ok) })

	assert.Equal(t, []bool{false}, finished)
	assert.False(t, term.Busy())
	require.Error(t, term.Err())
	assert.Empty(t, term.list.sections)
}

// playback returns frames that step a reconciler through docs, animating
// rows after the first.
func playback(t *testing.T, term *Terminal, docs ...*document.Document) []Frame {
	t.Helper()
	r := NewRowReconciler(term, func(id string) (string, bool) {
		for _, d := range docs {
			if title, ok := d.Title(id); ok {
				return title, true
			}
		}
		return "", false
	}, reconciler.WithMoveUpdates[string, document.Row]())

	frames := make([]Frame, len(docs))
	for i, d := range docs {
		animation := reconciler.AnimateRows(reconciler.TransitionFade, reconciler.TransitionLeft, reconciler.TransitionRight)
		if i == 0 {
			animation = reconciler.AnimateNone()
		}
		snap := d.Snapshot()
		frames[i] = Frame{
			Name: d.Source,
			Apply: func(completion func(bool)) {
				r.Apply(snap, animation, completion)
			},
		}
	}
	return frames
}

func TestModelPlayback(t *testing.T) {
	term := NewTerminal(0)
	m := NewModel(term, playback(t, term, parse(t, todoV1), parse(t, todoV2)), time.Second, time.Millisecond)

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, stepMsg{seq: 0}, msg)

	// Frame 1 reloads and schedules frame 2.
	_, cmd = m.Update(msg)
	require.NotNil(t, cmd)
	assert.False(t, term.Busy())
	assert.Contains(t, m.View(), "1/2 test.yaml")

	// A stale tick is ignored.
	_, cmd = m.Update(stepMsg{seq: m.seq - 1})
	assert.Nil(t, cmd)

	// Frame 2 is a batch and waits to settle.
	_, cmd = m.Update(stepMsg{seq: m.seq})
	require.NotNil(t, cmd)
	assert.True(t, term.Busy())
	assert.False(t, m.Done())
	view := m.View()
	assert.Contains(t, view, "2/2")
	assert.Contains(t, view, "≡ B ·")
	assert.Contains(t, view, "≡ d ←")

	_, cmd = m.Update(settleMsg{})
	assert.Nil(t, cmd)
	assert.True(t, m.Done())
	assert.Contains(t, m.View(), "done")
	assert.Equal(t, [][]string{{"a", "B", "c", "d"}, {"x"}}, texts(&term.list))
}

func TestModelKeys(t *testing.T) {
	term := NewTerminal(0)
	m := NewModel(term, playback(t, term, parse(t, todoV1), parse(t, todoV2)), time.Second, time.Millisecond)

	press := func(r rune) tea.Cmd {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		return cmd
	}

	assert.Nil(t, press('p'))
	assert.True(t, m.paused)
	assert.Contains(t, m.View(), "paused")

	// Stepping by hand works while paused.
	press('n')
	assert.Equal(t, 1, m.next)
	press('n')
	assert.Equal(t, 2, m.next)
	assert.True(t, term.Busy())

	// n does nothing while a batch settles.
	assert.Nil(t, press('n'))

	press('?')
	assert.True(t, m.help.ShowAll)

	cmd := press('q')
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelWindow(t *testing.T) {
	term := NewTerminal(0)
	m := NewModel(term, playback(t, term, parse(t, todoV2)), time.Second, time.Millisecond)
	m.Update(m.Init()())

	m.Update(tea.WindowSizeMsg{Width: 80, Height: chrome + 2 + 2})
	assert.Equal(t, 2, term.list.visible)
	assert.Equal(t, []snapshot.IndexPath{snapshot.At(0, 0), snapshot.At(0, 1)}, term.VisibleRows())

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, []snapshot.IndexPath{snapshot.At(0, 3), snapshot.At(1, 0)}, term.VisibleRows())
	_, ok := term.CellAt(snapshot.At(0, 0))
	assert.False(t, ok)

	view := m.View()
	assert.Contains(t, view, "section 1")
	assert.NotContains(t, view, "Todo\n  a")

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, []snapshot.IndexPath{snapshot.At(0, 2), snapshot.At(0, 3)}, term.VisibleRows())
}
