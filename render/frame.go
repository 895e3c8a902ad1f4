package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/katalvlaran/gridpath/gridgraph"
)

// Plain-mode runes for the search overlay. Board runes come from gridgraph.
const (
	RuneVisited = 'o'
	RuneCurrent = '@'
	RunePath    = '*'
	RuneCursor  = '+'
)

// Palette colours.
var (
	ColorOpen     = lipgloss.Color("#0F1923")
	ColorObstacle = lipgloss.Color("#2C4A54")
	ColorVisited  = lipgloss.Color("#16858E")
	ColorCurrent  = lipgloss.Color("#F4D03F")
	ColorPath     = lipgloss.Color("#2CD7C7")
	ColorStart    = lipgloss.Color("#27AE60")
	ColorEnd      = lipgloss.Color("#E74C3C")
)

// Palette holds one style per cell kind. Each cell is two columns wide.
type Palette struct {
	Open     lipgloss.Style
	Obstacle lipgloss.Style
	Visited  lipgloss.Style
	Current  lipgloss.Style
	Path     lipgloss.Style
	Start    lipgloss.Style
	End      lipgloss.Style
	Cursor   lipgloss.Style
}

// DefaultPalette returns the teal scheme used by the terminal UI.
func DefaultPalette() Palette {
	cell := lipgloss.NewStyle().Width(2)
	return Palette{
		Open:     cell.Background(ColorOpen),
		Obstacle: cell.Background(ColorObstacle),
		Visited:  cell.Background(ColorVisited),
		Current:  cell.Background(ColorCurrent),
		Path:     cell.Background(ColorPath),
		Start:    cell.Background(ColorStart).Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		End:      cell.Background(ColorEnd).Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		Cursor:   lipgloss.NewStyle().Reverse(true),
	}
}

type frameConfig struct {
	color     bool
	palette   Palette
	cursor    gridgraph.Position
	hasCursor bool
}

// FrameOption customizes Frame.
type FrameOption func(*frameConfig)

// WithColor switches between lipgloss cells (true) and one rune per cell.
func WithColor(on bool) FrameOption {
	return func(c *frameConfig) { c.color = on }
}

// WithPalette overrides the colour styles. Implies nothing about WithColor.
func WithPalette(p Palette) FrameOption {
	return func(c *frameConfig) { c.palette = p }
}

// WithCursor highlights p (the TUI selection).
func WithCursor(p gridgraph.Position) FrameOption {
	return func(c *frameConfig) { c.cursor, c.hasCursor = p, true }
}

// kind is the resolved appearance of one cell.
type kind uint8

const (
	kindOpen kind = iota
	kindObstacle
	kindVisited
	kindCurrent
	kindPath
	kindStart
	kindEnd
)

// Frame draws board b with overlay c (which may be nil). Endpoints are drawn
// over the overlay. Plain mode emits gridgraph runes plus o/@/* and ends every
// row with '\n'.
func Frame(b *gridgraph.Board, c *Canvas, opts ...FrameOption) string {
	cfg := frameConfig{palette: DefaultPalette()}
	for _, opt := range opts {
		opt(&cfg)
	}

	rows, cols := b.Dimensions()
	start, hasStart := b.Start()
	end, hasEnd := b.End()

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			p := gridgraph.Pos(r, col)
			k := kindOpen
			switch {
			case hasStart && p == start:
				k = kindStart
			case hasEnd && p == end:
				k = kindEnd
			case b.IsObstacle(p):
				k = kindObstacle
			case c != nil:
				switch c.State(p) {
				case Path:
					k = kindPath
				case Current:
					k = kindCurrent
				case Visited:
					k = kindVisited
				}
			}
			isCursor := cfg.hasCursor && p == cfg.cursor
			if cfg.color {
				sb.WriteString(cfg.styled(k, isCursor))
			} else {
				sb.WriteRune(plainRune(k, isCursor))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func plainRune(k kind, cursor bool) rune {
	if cursor {
		return RuneCursor
	}
	switch k {
	case kindObstacle:
		return gridgraph.RuneObstacle
	case kindVisited:
		return RuneVisited
	case kindCurrent:
		return RuneCurrent
	case kindPath:
		return RunePath
	case kindStart:
		return gridgraph.RuneStart
	case kindEnd:
		return gridgraph.RuneEnd
	default:
		return gridgraph.RuneOpen
	}
}

func (cfg frameConfig) styled(k kind, cursor bool) string {
	pal := cfg.palette
	var st lipgloss.Style
	text := "  "
	switch k {
	case kindObstacle:
		st = pal.Obstacle
	case kindVisited:
		st = pal.Visited
	case kindCurrent:
		st = pal.Current
	case kindPath:
		st = pal.Path
	case kindStart:
		st, text = pal.Start, "S "
	case kindEnd:
		st, text = pal.End, "E "
	default:
		st = pal.Open
	}
	if cursor {
		st = st.Inherit(pal.Cursor)
		if k != kindStart && k != kindEnd {
			text = "[]"
		}
	}
	return st.Render(text)
}

// Legend is a one-line key for plain frames.
func Legend() string {
	return "S start  E end  # wall  o visited  @ current  * path"
}
