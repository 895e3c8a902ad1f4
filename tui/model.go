// Package tui is the interactive terminal front end: a bubbletea program that
// edits the board under a cursor and animates searches run by a
// session.Controller.
//
// The event loop only reads snapshots from the controller. Every call that may
// cancel or await a run, quitting included, is issued from a tea.Cmd, so input
// handling never stalls, and search events reach the view through
// Renderer.Updates.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/pathfind"
	"github.com/katalvlaran/gridpath/render"
	"github.com/katalvlaran/gridpath/session"
)

// frameMsg reports that the canvas changed.
type frameMsg struct{}

// statusMsg carries the outcome of a controller call.
type statusMsg struct {
	text string
	err  error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#14B8A6"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

const helpText = "arrows/hjkl move · s start · e end · space wall · 1-5 algorithm · " +
	"enter run/stop · d drag end · r maze · c clear · R reset · q quit"

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	ctrl     *session.Controller
	view     *Renderer
	cursor   gridgraph.Position
	drag     bool
	moves    *dragMoves
	color    bool
	status   string
	err      error
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithColor toggles lipgloss styling of the board.
func WithColor(on bool) Option {
	return func(m *Model) { m.color = on }
}

// WithContext bounds controller calls issued by the model.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// New returns a model driving ctrl, whose renderer must be r.
func New(ctrl *session.Controller, r *Renderer, opts ...Option) Model {
	m := Model{ctx: context.Background(), ctrl: ctrl, view: r, moves: &dragMoves{}, color: true}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Cursor returns the cursor position.
func (m Model) Cursor() gridgraph.Position { return m.cursor }

// Dragging reports whether cursor moves drag the end marker.
func (m Model) Dragging() bool { return m.drag }

// Status returns the last status line and error.
func (m Model) Status() (string, error) { return m.status, m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForFrame()
}

func (m Model) waitForFrame() tea.Cmd {
	ch := m.view.Updates()
	return func() tea.Msg {
		<-ch
		return frameMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		return m, m.waitForFrame()
	case statusMsg:
		m.status, m.err = msg.text, msg.err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		m.quitting = true
		ctrl := m.ctrl
		return m, func() tea.Msg {
			ctrl.Close()
			return tea.QuitMsg{}
		}

	case "up", "k":
		return m.move(-1, 0)
	case "down", "j":
		return m.move(1, 0)
	case "left", "h":
		return m.move(0, -1)
	case "right", "l":
		return m.move(0, 1)

	case "s":
		p := m.cursor
		return m, m.do(func() (string, error) {
			return fmt.Sprintf("start %v", p), m.ctrl.SetStart(p)
		})
	case "e":
		p := m.cursor
		return m, m.do(func() (string, error) {
			return fmt.Sprintf("end %v", p), m.ctrl.SetEnd(p)
		})
	case " ", "x":
		p := m.cursor
		return m, m.do(func() (string, error) {
			blocked, err := m.ctrl.ToggleObstacle(p)
			if blocked {
				return fmt.Sprintf("wall %v", p), err
			}
			return fmt.Sprintf("open %v", p), err
		})

	case "1", "2", "3", "4", "5":
		alg := pathfind.Algorithms()[key[0]-'1']
		return m, m.do(func() (string, error) {
			return "algorithm " + alg.String(), m.ctrl.SelectAlgorithm(alg.String())
		})

	case "enter":
		return m, m.do(func() (string, error) {
			if m.ctrl.State() != session.Idle {
				m.ctrl.Stop()
				return "stopped", nil
			}
			h, err := m.ctrl.Start(m.ctx)
			if err != nil {
				return "", err
			}
			return "running " + h.Algorithm.String(), nil
		})

	case "d":
		m.drag = !m.drag
		if m.drag {
			m.status, m.err = "drag: cursor moves the end", nil
		} else {
			m.status, m.err = "drag off", nil
		}
		return m, nil

	case "r":
		return m, m.do(func() (string, error) { return "maze generated", m.ctrl.GenerateMaze() })
	case "c":
		return m, m.do(func() (string, error) { m.ctrl.ClearObstacles(); return "walls cleared", nil })
	case "R":
		return m, m.do(func() (string, error) { m.ctrl.Reset(); return "board reset", nil })
	}
	return m, nil
}

// move shifts the cursor inside the board. In drag mode the end marker
// follows it and the last algorithm re-runs. Only the newest drag move is
// applied: bubbletea runs commands concurrently, so an older one may reach
// the controller after a newer one.
func (m Model) move(dr, dc int) (tea.Model, tea.Cmd) {
	rows, cols := m.ctrl.Board().Dimensions()
	next := m.cursor.Add(dr, dc)
	if next.Row < 0 || next.Row >= rows || next.Col < 0 || next.Col >= cols {
		return m, nil
	}
	m.cursor = next
	if !m.drag {
		return m, nil
	}
	seq := m.moves.issue()
	return m, func() tea.Msg {
		applied, err := m.moves.apply(seq, func() error {
			_, err := m.ctrl.MoveEndpoint(m.ctx, next)
			return err
		})
		if !applied {
			return nil
		}
		if err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: fmt.Sprintf("end %v", next)}
	}
}

// dragMoves orders drag commands by the keypress that issued them.
type dragMoves struct {
	latest atomic.Uint64
	mu     sync.Mutex // serialises apply
}

func (d *dragMoves) issue() uint64 { return d.latest.Add(1) }

// apply runs fn unless a newer move has been issued since seq. The lock is
// held across fn, so a stale move cannot land after a newer one.
func (d *dragMoves) apply(seq uint64, fn func() error) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.latest.Load() {
		return false, nil
	}
	return true, fn()
}

// do runs fn off the event loop and reports its outcome.
func (m Model) do(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		text, err := fn()
		return statusMsg{text: text, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.ctrl.Snapshot()

	var sb strings.Builder
	header := fmt.Sprintf("gridpath  %s  %s", snap.Algorithm, snap.State)
	if m.drag {
		header += "  [drag]"
	}
	sb.WriteString(titleStyle.Render(header))
	sb.WriteString("\n\n")
	sb.WriteString(render.Frame(m.ctrl.Board(), m.view.Canvas,
		render.WithColor(m.color), render.WithCursor(m.cursor)))
	sb.WriteByte('\n')

	visited, path := m.view.Counts()
	line := fmt.Sprintf("visited %d  path %d", visited, path)
	if snap.Last != nil {
		line += fmt.Sprintf("  last: %s %s cost %d", snap.Last.Algorithm, snap.Last.Outcome, snap.Last.Cost)
	}
	if snap.Start != nil && snap.End != nil && !snap.Reachable {
		line += "  end unreachable"
	}
	sb.WriteString(statusStyle.Render(line))
	sb.WriteByte('\n')

	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render(describe(m.err)))
	case m.status != "":
		sb.WriteString(statusStyle.Render(m.status))
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(helpText))
	sb.WriteByte('\n')
	return sb.String()
}

// describe shortens the errors a user can trigger from the keyboard.
func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrBusy):
		return "busy: stop the run first"
	case errors.Is(err, pathfind.ErrMissingEndpoints):
		return "place a start (s) and an end (e) first"
	case errors.Is(err, gridgraph.ErrObstacleCell):
		return "that cell is a wall"
	}
	return err.Error()
}

// Run starts the program on the alternate screen and blocks until quit or ctx
// is done. The controller is closed on return.
func Run(ctx context.Context, ctrl *session.Controller, r *Renderer, opts ...Option) error {
	defer ctrl.Close()
	m := New(ctrl, r, append([]Option{WithContext(ctx)}, opts...)...)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
