// Package export writes board snapshots to PNG, SVG and JSON files.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/museboard/museboard/internal/domain"
	"github.com/museboard/museboard/internal/services/board"
	"golang.org/x/sync/errgroup"
)

// Format is an export file format
type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format for %q (want .png, .svg or .json)", path)
	}
}

// Exporter renders board snapshots
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an exporter
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// Document is the JSON export layout
type Document struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	NodeWidth  float64       `json:"nodeWidth"`
	NodeHeight float64       `json:"nodeHeight"`
	Ideas      []domain.Idea `json:"ideas"`
	Selected   []string      `json:"selected"`
}

// WriteJSON writes the snapshot as an indented JSON document
func (e *Exporter) WriteJSON(w io.Writer, snap board.Snapshot) error {
	doc := Document{
		Width:      snap.Geometry.BoardWidth,
		Height:     snap.Geometry.BoardHeight,
		NodeWidth:  snap.Geometry.NodeWidth,
		NodeHeight: snap.Geometry.NodeHeight,
		Ideas:      snap.Ideas,
		Selected:   snap.Selected,
	}
	if doc.Ideas == nil {
		doc.Ideas = []domain.Idea{}
	}
	if doc.Selected == nil {
		doc.Selected = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Write renders snap in the given format
func (e *Exporter) Write(w io.Writer, format Format, snap board.Snapshot) error {
	switch format {
	case FormatPNG:
		return e.WritePNG(w, snap)
	case FormatSVG:
		return e.WriteSVG(w, snap)
	case FormatJSON:
		return e.WriteJSON(w, snap)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// SaveFile writes snap to path, choosing the format from the extension
func (e *Exporter) SaveFile(path string, snap board.Snapshot) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := e.Write(f, format, snap); err != nil {
		f.Close()
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	e.logger.Info("board exported", "path", path, "format", format, "count", len(snap.Ideas))
	return nil
}

// SaveAll writes snap to every path concurrently. The first failure cancels
// the files not yet started and is returned.
func (e *Exporter) SaveAll(ctx context.Context, paths []string, snap board.Snapshot) error {
	for _, p := range paths {
		if _, err := FormatFromPath(p); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return e.SaveFile(p, snap)
		})
	}
	return g.Wait()
}
