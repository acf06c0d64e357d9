package domain

import "slices"

// DefaultIdeaText is the text given to ideas created by clicking the board
const DefaultIdeaText = "New idea"

// Idea is a node on the board.
//
// Connections is an ordered set of target ids. It never contains the idea's own
// id, but targets may dangle (point at ideas that no longer exist).
type Idea struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Connections []string `json:"connections"`
}

// Clone returns a deep copy so callers never share the connection slice
func (i Idea) Clone() Idea {
	c := i
	c.Connections = slices.Clone(i.Connections)
	if c.Connections == nil {
		c.Connections = []string{}
	}
	return c
}

// ConnectedTo returns true if the idea has an outgoing connection to id
func (i Idea) ConnectedTo(id string) bool {
	return slices.Contains(i.Connections, id)
}

// IdeaPatch describes a partial update. Nil fields are left untouched.
type IdeaPatch struct {
	Text *string
	X    *float64
	Y    *float64
}

// TextPatch builds a patch that only replaces text
func TextPatch(text string) IdeaPatch {
	return IdeaPatch{Text: &text}
}

// MovePatch builds a patch that only replaces the position
func MovePatch(x, y float64) IdeaPatch {
	return IdeaPatch{X: &x, Y: &y}
}

// Moves returns true if the patch touches the position
func (p IdeaPatch) Moves() bool {
	return p.X != nil || p.Y != nil
}

// IsEmpty returns true if the patch changes nothing
func (p IdeaPatch) IsEmpty() bool {
	return p.Text == nil && !p.Moves()
}
