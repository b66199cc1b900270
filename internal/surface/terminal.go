// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package surface

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tfctl/rowsync/internal/log"
	"github.com/tfctl/rowsync/internal/reconciler"
	"github.com/tfctl/rowsync/internal/snapshot"
)

// Terminal is an interactive surface rendered by a bubbletea program. A batch
// stays in flight, highlighted, until Settle is called.
type Terminal struct {
	list    list
	editing bool
	pending func(bool)
	err     error
}

// NewTerminal returns a Terminal showing visible rows at a time; 0 shows all.
func NewTerminal(visible int) *Terminal {
	return &Terminal{list: list{visible: visible}}
}

// SetDataSource implements reconciler.Surface.
func (t *Terminal) SetDataSource(ds reconciler.DataSource[*Cell]) {
	t.list.ds = ds
}

// ReloadData implements reconciler.Surface.
func (t *Terminal) ReloadData() {
	t.list.reload()
}

// SetEditing implements reconciler.Surface.
func (t *Terminal) SetEditing(editing, _ bool) {
	t.editing = editing
}

// PerformBatch implements reconciler.Surface.
func (t *Terminal) PerformBatch(updates func(reconciler.Batch), completion func(finished bool)) {
	rec := &recorder{}
	updates(rec)

	if err := t.list.apply(rec.ops); err != nil {
		log.Errorf("terminal batch: %v", err)
		t.err = err
		t.list.reload()
		if completion != nil {
			completion(false)
		}
		return
	}

	if completion == nil {
		completion = func(bool) {}
	}
	t.pending = completion
}

// VisibleRows implements reconciler.Surface.
func (t *Terminal) VisibleRows() []snapshot.IndexPath {
	return t.list.visibleRows()
}

// CellAt implements reconciler.Surface.
func (t *Terminal) CellAt(at snapshot.IndexPath) (*Cell, bool) {
	return t.list.cellAt(at)
}

// Busy reports whether a batch is waiting to settle.
func (t *Terminal) Busy() bool {
	return t.pending != nil
}

// Settle ends the in-flight batch, if any, and clears its highlights.
func (t *Terminal) Settle() {
	t.list.clearMarks()
	if done := t.pending; done != nil {
		t.pending = nil
		done(true)
	}
}

// Err returns the last batch the terminal rejected.
func (t *Terminal) Err() error {
	return t.err
}

// Frame is one step of a playback. Apply moves the reconciler to the frame's
// snapshot and calls completion when the surface is done with it.
type Frame struct {
	Name  string
	Apply func(completion func(finished bool))
}

type (
	stepMsg   struct{ seq int }
	settleMsg struct{}
)

type keyMap struct {
	Pause key.Binding
	Next  key.Binding
	Up    key.Binding
	Down  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Pause, k.Next}, {k.Up, k.Down}, {k.Help, k.Quit}}
}

var keys = keyMap{
	Pause: key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
	Next:  key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next frame")),
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#623CE4"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	insertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	reloadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// chrome is the number of lines View uses besides rows and section titles.
const chrome = 4

// Model plays frames through a Terminal.
type Model struct {
	term     *Terminal
	frames   []Frame
	next     int
	interval time.Duration
	flash    time.Duration

	paused bool
	seq    int
	status string
	help   help.Model
}

// NewModel returns a model that applies a frame every interval and holds each
// batch highlighted for flash before settling it.
func NewModel(term *Terminal, frames []Frame, interval, flash time.Duration) *Model {
	return &Model{
		term:     term,
		frames:   frames,
		interval: interval,
		flash:    flash,
		help:     help.New(),
	}
}

// Init applies the first frame straight away.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return stepMsg{seq: m.seq} }
}

// Done reports whether every frame has been applied and settled.
func (m *Model) Done() bool {
	return m.next >= len(m.frames) && !m.term.Busy()
}

func (m *Model) schedule(d time.Duration) tea.Cmd {
	if m.paused || m.next >= len(m.frames) {
		return nil
	}
	m.seq++
	seq := m.seq
	return tea.Tick(d, func(time.Time) tea.Msg { return stepMsg{seq: seq} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
			if m.paused || m.term.Busy() {
				return m, nil
			}
			return m, m.schedule(0)
		case key.Matches(msg, keys.Next):
			return m, m.step()
		case key.Matches(msg, keys.Up):
			m.term.list.scroll(-1)
		case key.Matches(msg, keys.Down):
			m.term.list.scroll(1)
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.term.list.visible = max(1, msg.Height-chrome-len(m.term.list.sections))
		m.term.list.scroll(0)
		return m, nil

	case stepMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.step()

	case settleMsg:
		m.term.Settle()
		return m, m.schedule(m.interval)
	}

	return m, nil
}

// step applies the next frame unless a batch is still settling.
func (m *Model) step() tea.Cmd {
	if m.term.Busy() || m.next >= len(m.frames) {
		return nil
	}

	f := m.frames[m.next]
	m.next++
	m.status = fmt.Sprintf("%d/%d %s", m.next, len(m.frames), f.Name)
	log.Debugf("play frame %s", m.status)

	f.Apply(func(finished bool) {
		if !finished {
			m.status += " (reloaded)"
		}
	})

	if m.term.Busy() {
		return tea.Tick(m.flash, func(time.Time) tea.Msg { return settleMsg{} })
	}
	return m.schedule(m.interval)
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	state := "playing"
	switch {
	case m.Done():
		state = "done"
	case m.paused:
		state = "paused"
	}
	b.WriteString(headerStyle.Render("rowsync play") + " " + mutedStyle.Render(state+" · "+m.status))
	b.WriteString("\n\n")

	for s, sec := range m.term.list.render() {
		var lines []string
		for _, row := range sec.Rows {
			if row.OnScreen {
				lines = append(lines, m.renderRow(row))
			}
		}
		if len(lines) == 0 {
			continue
		}
		title := sec.Title
		if title == "" {
			title = fmt.Sprintf("section %d", s)
		}
		b.WriteString(titleStyle.Render(title) + "\n")
		b.WriteString(strings.Join(lines, "\n") + "\n")
	}

	if err := m.term.Err(); err != nil {
		b.WriteString(errorStyle.Render(err.Error()) + "\n")
	}
	b.WriteString("\n" + m.help.View(keys))
	return b.String()
}

var glyphs = map[reconciler.Transition]string{
	reconciler.TransitionAutomatic: "•",
	reconciler.TransitionFade:      "·",
	reconciler.TransitionLeft:      "←",
	reconciler.TransitionRight:     "→",
	reconciler.TransitionTop:       "↑",
	reconciler.TransitionBottom:    "↓",
}

func (m *Model) renderRow(row Row) string {
	prefix := "  "
	if m.term.editing {
		prefix = "≡ "
	}

	glyph, animated := glyphs[row.Transition]
	if row.Change == Unchanged || !animated {
		return prefix + row.Text
	}

	text := prefix + row.Text + " " + glyph
	if row.Change == Inserted {
		return insertStyle.Render(text)
	}
	return reloadStyle.Render(text)
}

// Run plays m in a bubbletea program and returns once the user quits.
func Run(m *Model, opts ...tea.ProgramOption) error {
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}
