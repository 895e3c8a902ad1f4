package server

import (
	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/pathfind"
	"github.com/katalvlaran/gridpath/session"
)

// Event types pushed to websocket clients.
const (
	EventVisited = "visited"
	EventCurrent = "current"
	EventPath    = "path"
	EventClear   = "clear"
	EventBoard   = "board"
	EventResult  = "result"
	EventError   = "error"
)

// Cell is a board coordinate on the wire.
type Cell struct {
	Row int `json:"row" validate:"gte=0"`
	Col int `json:"col" validate:"gte=0"`
}

// Position converts c to a gridgraph.Position.
func (c Cell) Position() gridgraph.Position { return gridgraph.Pos(c.Row, c.Col) }

func cellOf(p gridgraph.Position) *Cell { return &Cell{Row: p.Row, Col: p.Col} }

// Event is one server→client message.
type Event struct {
	Type    string      `json:"type"`
	Cell    *Cell       `json:"cell,omitempty"`
	Board   *BoardView  `json:"board,omitempty"`
	Result  *ResultView `json:"result,omitempty"`
	RunID   string      `json:"runId,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Action is one client→server command, over the websocket or POST /api/actions.
type Action struct {
	Action    string   `json:"action" validate:"required,oneof=select start stop moveEnd setStart setEnd toggle clearObstacles reset maze"`
	Algorithm string   `json:"algorithm,omitempty" validate:"required_if=Action select"`
	Cell      *Cell    `json:"cell,omitempty"`
	Density   *float64 `json:"density,omitempty" validate:"omitempty,gte=0,lte=1"`
	Seed      int64    `json:"seed,omitempty"`
}

// needsCell lists the actions that address a cell.
var needsCell = map[string]bool{
	"moveEnd":  true,
	"setStart": true,
	"setEnd":   true,
	"toggle":   true,
}

// BoardView is the board plus controller state.
type BoardView struct {
	Rows      int         `json:"rows"`
	Cols      int         `json:"cols"`
	Start     *Cell       `json:"start,omitempty"`
	End       *Cell       `json:"end,omitempty"`
	Obstacles []Cell      `json:"obstacles"`
	Reachable bool        `json:"reachable"`
	State     string      `json:"state"`
	Algorithm string      `json:"algorithm"`
	Last      *ResultView `json:"last,omitempty"`
}

// ResultView summarises a finished run.
type ResultView struct {
	Algorithm string `json:"algorithm"`
	Outcome   string `json:"outcome"`
	Visited   int    `json:"visited"`
	Path      []Cell `json:"path"`
	Cost      int    `json:"cost"`
}

func boardView(s session.Snapshot) *BoardView {
	v := &BoardView{
		Rows:      s.Rows,
		Cols:      s.Cols,
		Obstacles: make([]Cell, 0, len(s.Obstacles)),
		Reachable: s.Reachable,
		State:     s.State.String(),
		Algorithm: s.Algorithm.String(),
		Last:      resultView(s.Last),
	}
	if s.Start != nil {
		v.Start = cellOf(*s.Start)
	}
	if s.End != nil {
		v.End = cellOf(*s.End)
	}
	for _, p := range s.Obstacles {
		v.Obstacles = append(v.Obstacles, *cellOf(p))
	}
	return v
}

func resultView(r *pathfind.Result) *ResultView {
	if r == nil {
		return nil
	}
	v := &ResultView{
		Algorithm: r.Algorithm.String(),
		Outcome:   r.Outcome.String(),
		Visited:   len(r.Visited),
		Path:      make([]Cell, 0, len(r.Path)),
		Cost:      r.Cost,
	}
	for _, p := range r.Path {
		v.Path = append(v.Path, *cellOf(p))
	}
	return v
}
