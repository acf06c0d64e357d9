package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/museboard/museboard/internal/core/links"
	"github.com/museboard/museboard/internal/services/board"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	fontSize     = 12.0
	cornerRadius = 6.0
	textPadding  = 8.0
)

var (
	backgroundColor = color.RGBA{R: 0xef, G: 0xf1, B: 0xf5, A: 0xff}
	nodeColor       = color.White
	selectedColor   = color.RGBA{R: 0xdc, G: 0xe8, B: 0xfd, A: 0xff}
	borderColor     = color.RGBA{R: 0x4c, G: 0x4f, B: 0x69, A: 0xff}
	accentColor     = color.RGBA{R: 0x1e, G: 0x66, B: 0xf5, A: 0xff}
	lineColor       = color.RGBA{R: 0x8c, G: 0x8f, B: 0xa1, A: 0xff}
	textColor       = color.RGBA{R: 0x4c, G: 0x4f, B: 0x69, A: 0xff}
)

var (
	fontOnce sync.Once
	monoFont *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		monoFont, fontErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, fontErr
}

// WritePNG rasterizes the board: connection lines first, then nodes on top
func (e *Exporter) WritePNG(w io.Writer, snap board.Snapshot) error {
	g := snap.Geometry
	width := int(math.Ceil(g.BoardWidth))
	height := int(math.Ceil(g.BoardHeight))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid board size %vx%v", g.BoardWidth, g.BoardHeight)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	ttfFont, err := loadFont()
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()
	dc.SetFontFace(face)

	dc.SetLineWidth(1.5)
	dc.SetColor(lineColor)
	for seg := range links.Segments(snap.Ideas, g) {
		dc.DrawLine(seg.From.X, seg.From.Y, seg.To.X, seg.To.Y)
		dc.Stroke()
	}

	for _, idea := range snap.Ideas {
		r := g.NodeRect(idea.X, idea.Y)
		selected := snap.IsSelected(idea.ID)

		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, cornerRadius)
		if selected {
			dc.SetColor(selectedColor)
		} else {
			dc.SetColor(nodeColor)
		}
		dc.FillPreserve()
		if selected {
			dc.SetColor(accentColor)
			dc.SetLineWidth(2)
		} else {
			dc.SetColor(borderColor)
			dc.SetLineWidth(1)
		}
		dc.Stroke()

		label := fitText(idea.Text, r.W-2*textPadding, func(s string) float64 {
			w, _ := dc.MeasureString(s)
			return w
		})
		c := r.Center()
		dc.SetColor(textColor)
		dc.DrawStringAnchored(label, c.X, c.Y, 0.5, 0.35)
	}

	return dc.EncodePNG(w)
}

// fitText shortens text with an ellipsis until measure reports it fits
func fitText(text string, maxWidth float64, measure func(string) float64) string {
	if measure(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + "…"
		if measure(candidate) <= maxWidth {
			return candidate
		}
	}
	return "…"
}
