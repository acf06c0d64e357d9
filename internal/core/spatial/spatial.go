// Package spatial provides the pure geometry of the board.
//
// All coordinates are board units with the origin at the top-left corner.
// An idea's (X, Y) is the top-left corner of its node rectangle; every node
// has the same size. Clamp is the single rule that keeps a node inside the
// board:
//
//	x' = max(0, min(x, boardW - nodeW))
//	y' = max(0, min(y, boardH - nodeH))
//
// Clamp is idempotent, so it is safe to re-apply on every render pass.
package spatial

// Point is a position in board units
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in board units
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r. Bounds are inclusive on every
// edge so that a point on a node's border hits the node.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center returns the geometric center of r
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Geometry holds the board and node dimensions
type Geometry struct {
	BoardWidth  float64
	BoardHeight float64
	NodeWidth   float64
	NodeHeight  float64
}

// Clamp constrains (x, y) so a node of nodeW×nodeH placed there lies entirely
// inside a boardW×boardH board. When the board is smaller than a node the
// result is pinned to 0.
func Clamp(x, y, nodeW, nodeH, boardW, boardH float64) (float64, float64) {
	return clampAxis(x, boardW-nodeW), clampAxis(y, boardH-nodeH)
}

func clampAxis(v, limit float64) float64 {
	return max(0, min(v, limit))
}

// Clamp constrains (x, y) to this geometry
func (g Geometry) Clamp(x, y float64) (float64, float64) {
	return Clamp(x, y, g.NodeWidth, g.NodeHeight, g.BoardWidth, g.BoardHeight)
}

// InBounds reports whether a node at (x, y) already satisfies Clamp
func (g Geometry) InBounds(x, y float64) bool {
	cx, cy := g.Clamp(x, y)
	return cx == x && cy == y
}

// NodeRect returns the rectangle of a node placed at (x, y)
func (g Geometry) NodeRect(x, y float64) Rect {
	return Rect{X: x, Y: y, W: g.NodeWidth, H: g.NodeHeight}
}

// NodeCenter returns the center of a node placed at (x, y)
func (g Geometry) NodeCenter(x, y float64) Point {
	return g.NodeRect(x, y).Center()
}

// CenteredAt returns the clamped origin of a node centered under p
func (g Geometry) CenteredAt(p Point) (float64, float64) {
	return g.Clamp(p.X-g.NodeWidth/2, p.Y-g.NodeHeight/2)
}
