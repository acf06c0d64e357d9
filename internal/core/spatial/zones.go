package spatial

// Zone identifies which part of the board a point lands on
type Zone int

const (
	ZoneEmpty  Zone = iota // No node under the point
	ZoneBody               // Node frame: click selects, press starts a drag
	ZoneText               // Text line: click edits
	ZoneDelete             // Delete control in the top-right corner
)

func (z Zone) String() string {
	switch z {
	case ZoneEmpty:
		return "empty"
	case ZoneBody:
		return "body"
	case ZoneText:
		return "text"
	case ZoneDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Node layout, as fractions of the node size. The node is split in three
// horizontal bands; the middle band holds the text and the top band carries
// the delete control at its right end.
const (
	bandFraction   = 1.0 / 3.0
	deleteFraction = 0.15
	textInset      = 0.05
)

// DeleteRect returns the delete control area of a node at (x, y)
func (g Geometry) DeleteRect(x, y float64) Rect {
	w := g.NodeWidth * deleteFraction
	return Rect{X: x + g.NodeWidth - w, Y: y, W: w, H: g.NodeHeight * bandFraction}
}

// TextRect returns the text area of a node at (x, y)
func (g Geometry) TextRect(x, y float64) Rect {
	inset := g.NodeWidth * textInset
	band := g.NodeHeight * bandFraction
	return Rect{X: x + inset, Y: y + band, W: g.NodeWidth - 2*inset, H: band}
}

// ZoneAt classifies p relative to a node at (x, y). Points outside the node
// rectangle are ZoneEmpty; the node rectangle itself is inclusive.
func (g Geometry) ZoneAt(x, y float64, p Point) Zone {
	if !g.NodeRect(x, y).Contains(p) {
		return ZoneEmpty
	}
	if g.DeleteRect(x, y).Contains(p) {
		return ZoneDelete
	}
	if g.TextRect(x, y).Contains(p) {
		return ZoneText
	}
	return ZoneBody
}
