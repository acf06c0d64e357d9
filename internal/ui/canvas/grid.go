package canvas

import "github.com/mattn/go-runewidth"

type grid struct {
	w, h  int
	cells [][]cell
}

func newGrid(w, h int) *grid {
	cells := make([][]cell, h)
	for row := range cells {
		cells[row] = make([]cell, w)
		for col := range cells[row] {
			cells[row][col] = cell{s: " "}
		}
	}
	return &grid{w: w, h: h, cells: cells}
}

func (g *grid) inside(col, row int) bool {
	return col >= 0 && col < g.w && row >= 0 && row < g.h
}

// set writes a single-width glyph, repairing any wide rune it overlaps
func (g *grid) set(col, row int, s string, kind styleKind) {
	if !g.inside(col, row) {
		return
	}
	cur := g.cells[row][col]
	if cur.s == "" && col > 0 {
		g.cells[row][col-1] = cell{s: " ", kind: g.cells[row][col-1].kind}
	}
	if col+1 < g.w && g.cells[row][col+1].s == "" {
		g.cells[row][col+1] = cell{s: " ", kind: kind}
	}
	g.cells[row][col] = cell{s: s, kind: kind}
}

// text writes s starting at col, clipping at the grid edge
func (g *grid) text(col, row int, s string, kind styleKind) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if w == 2 {
			if !g.inside(col+1, row) {
				return
			}
			g.set(col+1, row, " ", kind)
			g.set(col, row, string(r), kind)
			g.cells[row][col+1] = cell{s: "", kind: kind}
		} else {
			g.set(col, row, string(r), kind)
		}
		col += w
	}
}
