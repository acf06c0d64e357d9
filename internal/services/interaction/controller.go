// Package interaction turns pointer and keyboard events into board mutations.
//
// The controller is a small state machine:
//
//	Idle ──press on node body──▶ Dragging ──release / leave──▶ Idle
//	Idle ──click on node text / double-click──▶ Editing ──commit / cancel──▶ Idle
//
// A press followed by a release without movement is a click: on empty space
// it adds an idea centered under the pointer, on a node body it toggles the
// selection, on the delete control it removes the node.
package interaction

import (
	"log/slog"
	"time"

	"github.com/museboard/museboard/internal/core/spatial"
	"github.com/museboard/museboard/internal/domain"
)

// State is the controller's current interaction state
type State int

const (
	StateIdle State = iota
	StateDragging
	StateEditing
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateDragging:
		return "DRAG"
	case StateEditing:
		return "EDIT"
	default:
		return "UNKNOWN"
	}
}

// Board is the subset of the board service the controller mutates through
type Board interface {
	Geometry() spatial.Geometry
	Ideas() []domain.Idea
	Idea(id string) (domain.Idea, bool)
	AddIdea(text string, x, y float64) domain.Idea
	UpdateIdea(id string, patch domain.IdeaPatch) bool
	RemoveIdea(id string) bool
	ToggleSelection(id string) bool
}

// Action reports what an event did
type Action int

const (
	ActionNone Action = iota
	ActionAdded
	ActionToggled
	ActionDragStarted
	ActionMoved
	ActionDropped
	ActionEditStarted
	ActionEditCommitted
	ActionEditCanceled
	ActionDeleted
)

// Result is returned from every event handler
type Result struct {
	Action Action
	IdeaID string
}

// press remembers where a pointer-down landed until the matching release
type press struct {
	at     spatial.Point
	ideaID string
	zone   spatial.Zone
}

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces time.Now, for double-click detection in tests
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithDoubleClick sets the maximum gap between two clicks of a double-click
func WithDoubleClick(d time.Duration) Option {
	return func(c *Controller) {
		c.doubleClick = d
	}
}

// Controller handles pointer/keyboard interaction against a Board
type Controller struct {
	board  Board
	logger *slog.Logger
	state  State

	pending *press

	// Dragging
	dragID string
	grab   spatial.Point // pointer minus node origin at press time
	moved  bool

	// Editing
	editID   string
	draft    string
	original string

	// Double-click detection
	lastClickID string
	lastClickAt time.Time
	doubleClick time.Duration
	now         func() time.Time
}

// NewController creates a controller in the Idle state
func NewController(board Board, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		board:       board,
		logger:      logger,
		state:       StateIdle,
		doubleClick: 400 * time.Millisecond,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// DraggingID returns the id being dragged, if any
func (c *Controller) DraggingID() string {
	if c.state != StateDragging {
		return ""
	}
	return c.dragID
}

// EditingID returns the id being edited, if any
func (c *Controller) EditingID() string {
	if c.state != StateEditing {
		return ""
	}
	return c.editID
}

// Draft returns the uncommitted text of the idea being edited
func (c *Controller) Draft() string {
	return c.draft
}

// HitTest returns the topmost idea under p and the zone that was hit.
// Later ideas are drawn on top, so the search runs back to front.
func (c *Controller) HitTest(p spatial.Point) (domain.Idea, spatial.Zone) {
	g := c.board.Geometry()
	ideas := c.board.Ideas()
	for i := len(ideas) - 1; i >= 0; i-- {
		idea := ideas[i]
		if zone := g.ZoneAt(idea.X, idea.Y, p); zone != spatial.ZoneEmpty {
			return idea, zone
		}
	}
	return domain.Idea{}, spatial.ZoneEmpty
}

// PointerDown handles a primary button press at p
func (c *Controller) PointerDown(p spatial.Point) Result {
	if c.state == StateEditing {
		// Pressing elsewhere takes focus away from the editor.
		c.CommitEdit()
	}
	if c.state != StateIdle {
		return Result{}
	}

	idea, zone := c.HitTest(p)
	c.pending = &press{at: p, ideaID: idea.ID, zone: zone}

	if zone != spatial.ZoneBody {
		return Result{}
	}

	c.state = StateDragging
	c.dragID = idea.ID
	c.grab = spatial.Point{X: p.X - idea.X, Y: p.Y - idea.Y}
	c.moved = false
	c.logger.Debug("drag started", "id", idea.ID)
	return Result{Action: ActionDragStarted, IdeaID: idea.ID}
}

// PointerMove handles pointer motion. While dragging, every move is clamped
// and written to the board immediately.
func (c *Controller) PointerMove(p spatial.Point) Result {
	if c.state != StateDragging {
		return Result{}
	}
	// A move onto the press point before the node has moved is a no-op
	if !c.moved && c.pending != nil && p == c.pending.at {
		return Result{}
	}

	x, y := p.X-c.grab.X, p.Y-c.grab.Y
	if !c.board.UpdateIdea(c.dragID, domain.MovePatch(x, y)) {
		// The idea disappeared under the pointer (board replaced or cleared).
		id := c.dragID
		c.endDrag()
		return Result{Action: ActionDropped, IdeaID: id}
	}
	c.moved = true
	return Result{Action: ActionMoved, IdeaID: c.dragID}
}

// PointerUp handles a primary button release at p
func (c *Controller) PointerUp(p spatial.Point) Result {
	pending := c.pending
	c.pending = nil

	switch c.state {
	case StateDragging:
		id, moved := c.dragID, c.moved
		c.endDrag()
		if moved {
			return Result{Action: ActionDropped, IdeaID: id}
		}
		return c.clickBody(id)

	case StateIdle:
		if pending == nil {
			return Result{}
		}
		return c.click(p, pending)
	}
	return Result{}
}

// PointerLeave ends a drag when the pointer leaves the board. The last
// clamped position is kept.
func (c *Controller) PointerLeave() Result {
	c.pending = nil
	if c.state != StateDragging {
		return Result{}
	}
	id := c.dragID
	c.endDrag()
	return Result{Action: ActionDropped, IdeaID: id}
}

// Click is a press and release at the same point
func (c *Controller) Click(p spatial.Point) Result {
	c.PointerDown(p)
	return c.PointerUp(p)
}

// DoubleClick starts editing the node under p
func (c *Controller) DoubleClick(p spatial.Point) Result {
	if c.state != StateIdle {
		return Result{}
	}
	idea, zone := c.HitTest(p)
	if zone == spatial.ZoneEmpty || zone == spatial.ZoneDelete {
		return Result{}
	}
	return c.BeginEdit(idea.ID)
}

func (c *Controller) endDrag() {
	c.state = StateIdle
	c.dragID = ""
	c.moved = false
}

func (c *Controller) click(p spatial.Point, pending *press) Result {
	idea, zone := c.HitTest(p)
	if idea.ID != pending.ideaID || zone != pending.zone {
		// Released somewhere else than pressed: not a click.
		return Result{}
	}

	switch zone {
	case spatial.ZoneEmpty:
		x, y := c.board.Geometry().CenteredAt(p)
		added := c.board.AddIdea(domain.DefaultIdeaText, x, y)
		return Result{Action: ActionAdded, IdeaID: added.ID}
	case spatial.ZoneText:
		return c.BeginEdit(idea.ID)
	case spatial.ZoneDelete:
		return c.Delete(idea.ID)
	case spatial.ZoneBody:
		return c.clickBody(idea.ID)
	}
	return Result{}
}

func (c *Controller) clickBody(id string) Result {
	now := c.now()
	if id == c.lastClickID && now.Sub(c.lastClickAt) <= c.doubleClick {
		c.lastClickID = ""
		return c.BeginEdit(id)
	}
	c.lastClickID = id
	c.lastClickAt = now

	if !c.board.ToggleSelection(id) {
		return Result{}
	}
	return Result{Action: ActionToggled, IdeaID: id}
}

// BeginEdit enters Editing for id. Only allowed from Idle.
func (c *Controller) BeginEdit(id string) Result {
	if c.state != StateIdle {
		return Result{}
	}
	idea, ok := c.board.Idea(id)
	if !ok {
		return Result{}
	}
	c.state = StateEditing
	c.editID = id
	c.original = idea.Text
	c.draft = idea.Text
	c.logger.Debug("edit started", "id", id)
	return Result{Action: ActionEditStarted, IdeaID: id}
}

// SetDraft replaces the uncommitted text while editing
func (c *Controller) SetDraft(text string) {
	if c.state == StateEditing {
		c.draft = text
	}
}

// CommitEdit writes the draft to the board and returns to Idle
func (c *Controller) CommitEdit() Result {
	if c.state != StateEditing {
		return Result{}
	}
	id, draft := c.editID, c.draft
	c.endEdit()
	c.board.UpdateIdea(id, domain.TextPatch(draft))
	return Result{Action: ActionEditCommitted, IdeaID: id}
}

// CancelEdit drops the draft without touching the board
func (c *Controller) CancelEdit() Result {
	if c.state != StateEditing {
		return Result{}
	}
	id := c.editID
	c.draft = c.original
	c.endEdit()
	return Result{Action: ActionEditCanceled, IdeaID: id}
}

func (c *Controller) endEdit() {
	c.state = StateIdle
	c.editID = ""
	c.original = ""
}

// Delete removes an idea. Only allowed from Idle.
func (c *Controller) Delete(id string) Result {
	if c.state != StateIdle {
		return Result{}
	}
	if !c.board.RemoveIdea(id) {
		return Result{}
	}
	if c.lastClickID == id {
		c.lastClickID = ""
	}
	return Result{Action: ActionDeleted, IdeaID: id}
}
