// Package canvas draws the board into a grid of terminal cells.
//
// Board units map to cells through a fixed cell size, so one cell covers
// cellWidth × cellHeight board units. Connection segments are cached and
// rebuilt whenever the board reports a change.
package canvas

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/museboard/museboard/internal/core/links"
	"github.com/museboard/museboard/internal/core/spatial"
	"github.com/museboard/museboard/internal/services/board"
	"github.com/museboard/museboard/internal/ui/styles"
)

// EmptyHint is shown on an empty board
const EmptyHint = "Click anywhere to add an idea • e to expand a topic"

// Source is the board as seen by the renderer
type Source interface {
	Snapshot() board.Snapshot
	Heal() int
	Subscribe(obs board.Observer) func()
}

// Overlay carries interaction state that changes how nodes are drawn
type Overlay struct {
	DraggingID string
	EditingID  string
	Draft      string
}

type styleKind int

const (
	kindBlank styleKind = iota
	kindLine
	kindNode
	kindSelected
	kindDragging
	kindEditing
	kindText
	kindDelete
	kindHint
)

type cell struct {
	s    string // "" marks the second half of a wide rune
	kind styleKind
}

// Canvas renders board snapshots
type Canvas struct {
	mu          sync.Mutex
	source      Source
	styles      *styles.Styles
	cellW       float64
	cellH       float64
	width       int
	height      int
	segments    []links.Segment
	dirty       bool
	rebuilds    int
	unsubscribe func()
}

// New creates a canvas bound to source
func New(source Source, st *styles.Styles, cellW, cellH float64) *Canvas {
	c := &Canvas{
		source: source,
		styles: st,
		cellW:  cellW,
		cellH:  cellH,
		dirty:  true,
	}
	c.unsubscribe = source.Subscribe(c.onChange)
	return c
}

func (c *Canvas) onChange(board.Event) {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Close detaches the canvas from the board
func (c *Canvas) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// SetSize sets the drawable area in cells
func (c *Canvas) SetSize(width, height int) {
	c.width = max(width, 0)
	c.height = max(height, 0)
}

// Size returns the drawable area in cells
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// BoardSize returns the board dimensions covered by the drawable area
func (c *Canvas) BoardSize() (float64, float64) {
	return float64(c.width) * c.cellW, float64(c.height) * c.cellH
}

// ToBoard maps a cell to the board point at its center
func (c *Canvas) ToBoard(col, row int) spatial.Point {
	return spatial.Point{
		X: (float64(col) + 0.5) * c.cellW,
		Y: (float64(row) + 0.5) * c.cellH,
	}
}

// ToCell maps a board point to the cell containing it
func (c *Canvas) ToCell(p spatial.Point) (int, int) {
	return int(math.Floor(p.X / c.cellW)), int(math.Floor(p.Y / c.cellH))
}

// Segments returns the cached connection segments, rebuilding them if the
// board changed since the last call.
func (c *Canvas) Segments(snap board.Snapshot) []links.Segment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirty {
		c.segments = links.Collect(snap.Ideas, snap.Geometry)
		c.dirty = false
		c.rebuilds++
	}
	return c.segments
}

// Render heals out-of-bounds nodes and draws the board
func (c *Canvas) Render(ov Overlay) string {
	if c.width == 0 || c.height == 0 {
		return ""
	}

	c.source.Heal()
	snap := c.source.Snapshot()
	grid := newGrid(c.width, c.height)

	for _, seg := range c.Segments(snap) {
		c.drawSegment(grid, seg)
	}

	for _, idea := range snap.Ideas {
		kind := kindNode
		text := idea.Text
		switch {
		case idea.ID == ov.EditingID:
			kind = kindEditing
			text = ov.Draft + "▏"
		case idea.ID == ov.DraggingID:
			kind = kindDragging
		case snap.IsSelected(idea.ID):
			kind = kindSelected
		}
		c.drawNode(grid, snap.Geometry, idea.X, idea.Y, text, kind)
	}

	if len(snap.Ideas) == 0 {
		hint := runewidth.Truncate(EmptyHint, c.width, "…")
		col := max((c.width-runewidth.StringWidth(hint))/2, 0)
		grid.text(col, c.height/2, hint, kindHint)
	}

	return c.paint(grid)
}

func (c *Canvas) drawSegment(g *grid, seg links.Segment) {
	x0, y0 := c.ToCell(seg.From)
	x1, y1 := c.ToCell(seg.To)
	ch := lineRune(x1-x0, y1-y0)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		g.set(x0, y0, string(ch), kindLine)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// lineRune picks a glyph for the overall slope of a segment
func lineRune(dx, dy int) rune {
	switch {
	case abs(dx) >= 2*abs(dy):
		return '─'
	case abs(dy) >= 2*abs(dx):
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (c *Canvas) drawNode(g *grid, geo spatial.Geometry, x, y float64, text string, kind styleKind) {
	r := geo.NodeRect(x, y)
	left, top := c.ToCell(spatial.Point{X: r.X, Y: r.Y})
	right := int(math.Ceil((r.X+r.W)/c.cellW)) - 1
	bottom := int(math.Ceil((r.Y+r.H)/c.cellH)) - 1
	right = max(right, left+2)
	bottom = max(bottom, top+2)

	for col := left; col <= right; col++ {
		for row := top; row <= bottom; row++ {
			var s string
			switch {
			case row == top && col == left:
				s = "╭"
			case row == top && col == right:
				s = "╮"
			case row == bottom && col == left:
				s = "╰"
			case row == bottom && col == right:
				s = "╯"
			case row == top || row == bottom:
				s = "─"
			case col == left || col == right:
				s = "│"
			default:
				s = " "
			}
			g.set(col, row, s, kind)
		}
	}

	inner := right - left - 1
	label := runewidth.Truncate(text, inner, "…")
	textKind := kindText
	if kind == kindEditing {
		textKind = kindEditing
	}
	g.text(left+1+max((inner-runewidth.StringWidth(label))/2, 0), top+(bottom-top)/2, label, textKind)

	if kind != kindEditing {
		dcol, drow := c.ToCell(geo.DeleteRect(x, y).Center())
		g.set(dcol, drow, "×", kindDelete)
	}
}

func (c *Canvas) paint(g *grid) string {
	lines := make([]string, g.h)
	for row := 0; row < g.h; row++ {
		var b strings.Builder
		var run strings.Builder
		runKind := kindBlank
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(c.style(runKind).Render(run.String()))
				run.Reset()
			}
		}
		for col := 0; col < g.w; col++ {
			cl := g.cells[row][col]
			if cl.kind != runKind {
				flush()
				runKind = cl.kind
			}
			run.WriteString(cl.s)
		}
		flush()
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (c *Canvas) style(k styleKind) lipgloss.Style {
	switch k {
	case kindLine:
		return c.styles.Connection
	case kindNode:
		return c.styles.Node
	case kindSelected:
		return c.styles.NodeSelected
	case kindDragging:
		return c.styles.NodeDragging
	case kindEditing:
		return c.styles.NodeEditing
	case kindText:
		return c.styles.NodeText
	case kindDelete:
		return c.styles.DeleteMark
	case kindHint:
		return c.styles.EmptyHint
	default:
		return c.styles.Canvas
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
