// Package links derives the connection line segments drawn between ideas.
//
// Connections are stored directionally on each idea but drawn undirected:
// A→B and B→A produce a single segment. Targets that no longer resolve to an
// idea are skipped. The sequence is recomputed from scratch on every call;
// boards hold tens of nodes so there is no incremental bookkeeping.
package links

import (
	"iter"

	"github.com/museboard/museboard/internal/core/spatial"
	"github.com/museboard/museboard/internal/domain"
)

// Segment is a straight line between two idea centers
type Segment struct {
	FromID string
	ToID   string
	From   spatial.Point
	To     spatial.Point
}

type pairKey struct {
	a, b string
}

func keyFor(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Segments lazily yields one segment per connected pair, in board order
func Segments(ideas []domain.Idea, g spatial.Geometry) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		byID := make(map[string]*domain.Idea, len(ideas))
		for i := range ideas {
			byID[ideas[i].ID] = &ideas[i]
		}

		seen := make(map[pairKey]bool)
		for i := range ideas {
			from := &ideas[i]
			for _, targetID := range from.Connections {
				if targetID == from.ID {
					continue
				}
				to, ok := byID[targetID]
				if !ok {
					continue
				}
				key := keyFor(from.ID, to.ID)
				if seen[key] {
					continue
				}
				seen[key] = true

				seg := Segment{
					FromID: from.ID,
					ToID:   to.ID,
					From:   g.NodeCenter(from.X, from.Y),
					To:     g.NodeCenter(to.X, to.Y),
				}
				if !yield(seg) {
					return
				}
			}
		}
	}
}

// Collect materializes Segments into a slice
func Collect(ideas []domain.Idea, g spatial.Geometry) []Segment {
	var out []Segment
	for seg := range Segments(ideas, g) {
		out = append(out, seg)
	}
	return out
}
