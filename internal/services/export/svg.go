package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"
	"github.com/museboard/museboard/internal/core/links"
	"github.com/museboard/museboard/internal/services/board"
)

// Monospace advance at fontSize, used to budget label columns
const charAdvance = fontSize * 0.6

const (
	svgBackground = "fill:#eff1f5"
	svgLine       = "stroke:#8c8fa1;stroke-width:1.5"
	svgNode       = "fill:#ffffff;stroke:#4c4f69;stroke-width:1"
	svgSelected   = "fill:#dce8fd;stroke:#1e66f5;stroke-width:2"
	svgText       = "font-family:monospace;font-size:12px;fill:#4c4f69;text-anchor:middle;dominant-baseline:middle"
)

// WriteSVG writes the board as an SVG document
func (e *Exporter) WriteSVG(w io.Writer, snap board.Snapshot) error {
	g := snap.Geometry
	width := int(math.Ceil(g.BoardWidth))
	height := int(math.Ceil(g.BoardHeight))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid board size %vx%v", g.BoardWidth, g.BoardHeight)
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, svgBackground)

	canvas.Gid("connections")
	for seg := range links.Segments(snap.Ideas, g) {
		canvas.Line(px(seg.From.X), px(seg.From.Y), px(seg.To.X), px(seg.To.Y), svgLine)
	}
	canvas.Gend()

	columns := int((g.NodeWidth - 2*textPadding) / charAdvance)
	canvas.Gid("ideas")
	for _, idea := range snap.Ideas {
		r := g.NodeRect(idea.X, idea.Y)
		style := svgNode
		if snap.IsSelected(idea.ID) {
			style = svgSelected
		}
		canvas.Roundrect(px(r.X), px(r.Y), px(r.W), px(r.H), int(cornerRadius), int(cornerRadius), style)

		c := r.Center()
		canvas.Text(px(c.X), px(c.Y), runewidth.Truncate(idea.Text, columns, "…"), svgText)
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func px(v float64) int {
	return int(math.Round(v))
}
