package interaction

import (
	"fmt"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/museboard/museboard/internal/core/spatial"
	"github.com/museboard/museboard/internal/domain"
	"github.com/museboard/museboard/internal/services/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGeometry = spatial.Geometry{BoardWidth: 500, BoardHeight: 500, NodeWidth: 180, NodeHeight: 50}

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestController(t *testing.T) (*Controller, *board.Service, *fakeClock) {
	t.Helper()
	n := 0
	b := board.NewService(testGeometry, slog.Default(), board.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("idea-%d", n)
	}))
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewController(b, slog.Default(), WithClock(clock.Now), WithDoubleClick(400*time.Millisecond))
	return c, b, clock
}

// bodyPoint is a point on the node frame, away from the text and delete zones
func bodyPoint(idea domain.Idea) spatial.Point {
	return spatial.Point{X: idea.X + 20, Y: idea.Y + 5}
}

func textPoint(idea domain.Idea) spatial.Point {
	return spatial.Point{X: idea.X + 90, Y: idea.Y + 25}
}

func deletePoint(idea domain.Idea) spatial.Point {
	return spatial.Point{X: idea.X + 175, Y: idea.Y + 3}
}

func TestClickEmptySpace_AddsCenteredIdea(t *testing.T) {
	c, b, _ := newTestController(t)

	res := c.Click(spatial.Point{X: 150, Y: 65})

	assert.Equal(t, ActionAdded, res.Action)
	idea, ok := b.Idea(res.IdeaID)
	require.True(t, ok)
	assert.Equal(t, 60.0, idea.X)
	assert.Equal(t, 40.0, idea.Y)
	assert.Equal(t, domain.DefaultIdeaText, idea.Text)
	assert.Equal(t, StateIdle, c.State())
}

func TestClickEmptySpace_NearEdgeIsClamped(t *testing.T) {
	c, b, _ := newTestController(t)

	res := c.Click(spatial.Point{X: 499, Y: 499})

	idea, _ := b.Idea(res.IdeaID)
	assert.Equal(t, 320.0, idea.X)
	assert.Equal(t, 450.0, idea.Y)
}

func TestClickNode_TogglesSelection(t *testing.T) {
	c, b, clock := newTestController(t)
	idea := b.AddIdea("a", 100, 100)

	res := c.Click(bodyPoint(idea))
	assert.Equal(t, ActionToggled, res.Action)
	assert.True(t, b.IsSelected(idea.ID))

	clock.Advance(time.Second)
	c.Click(bodyPoint(idea))
	assert.False(t, b.IsSelected(idea.ID))
	assert.Equal(t, 1, b.Count(), "clicking a node never adds one")
}

func TestClickOnNodeBoundary_PrefersNode(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("a", 100, 100)

	// Exactly on the left edge of the node rectangle.
	res := c.Click(spatial.Point{X: 100, Y: 110})

	assert.Equal(t, ActionToggled, res.Action)
	assert.Equal(t, 1, b.Count())
	assert.True(t, b.IsSelected(idea.ID))
}

func TestClickText_StartsEditing(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("original", 100, 100)

	res := c.Click(textPoint(idea))

	assert.Equal(t, ActionEditStarted, res.Action)
	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, idea.ID, c.EditingID())
	assert.Equal(t, "original", c.Draft())
}

func TestEditing_Commit(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("original", 100, 100)
	c.BeginEdit(idea.ID)

	c.SetDraft("changed")
	res := c.CommitEdit()

	assert.Equal(t, ActionEditCommitted, res.Action)
	assert.Equal(t, StateIdle, c.State())
	got, _ := b.Idea(idea.ID)
	assert.Equal(t, "changed", got.Text)
}

func TestEditing_CancelRestores(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("original", 100, 100)
	c.BeginEdit(idea.ID)
	events := 0
	b.Subscribe(func(board.Event) { events++ })

	c.SetDraft("changed")
	res := c.CancelEdit()

	assert.Equal(t, ActionEditCanceled, res.Action)
	got, _ := b.Idea(idea.ID)
	assert.Equal(t, "original", got.Text)
	assert.Equal(t, 0, events, "cancel must not mutate the board")
}

func TestEditing_FocusLossCommits(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("original", 100, 100)
	c.BeginEdit(idea.ID)
	c.SetDraft("changed")

	// Clicking empty space commits and then handles the click.
	c.Click(spatial.Point{X: 400, Y: 400})

	got, _ := b.Idea(idea.ID)
	assert.Equal(t, "changed", got.Text)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 2, b.Count())
}

func TestEditing_IdeaDeletedMeanwhile(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("original", 100, 100)
	c.BeginEdit(idea.ID)
	b.RemoveIdea(idea.ID)

	res := c.CommitEdit()

	assert.Equal(t, ActionEditCommitted, res.Action)
	assert.Equal(t, 0, b.Count())
	assert.Equal(t, StateIdle, c.State())
}

func TestDoubleClick(t *testing.T) {
	c, b, clock := newTestController(t)
	idea := b.AddIdea("a", 100, 100)

	c.Click(bodyPoint(idea))
	clock.Advance(200 * time.Millisecond)
	res := c.Click(bodyPoint(idea))

	assert.Equal(t, ActionEditStarted, res.Action)
	assert.Equal(t, StateEditing, c.State())

	c.CancelEdit()
	res = c.DoubleClick(textPoint(idea))
	assert.Equal(t, ActionEditStarted, res.Action)
}

func TestDrag_MovesWithGrabOffset(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("a", 100, 100)
	start := bodyPoint(idea) // grab offset (20, 5)

	res := c.PointerDown(start)
	require.Equal(t, ActionDragStarted, res.Action)
	assert.Equal(t, StateDragging, c.State())
	assert.Equal(t, idea.ID, c.DraggingID())

	c.PointerMove(spatial.Point{X: 220, Y: 205})
	got, _ := b.Idea(idea.ID)
	assert.Equal(t, 200.0, got.X)
	assert.Equal(t, 200.0, got.Y)

	res = c.PointerUp(spatial.Point{X: 220, Y: 205})
	assert.Equal(t, ActionDropped, res.Action)
	assert.Equal(t, StateIdle, c.State())
	assert.False(t, b.IsSelected(idea.ID), "a drag is not a click")
}

func TestDrag_LeaveKeepsLastPosition(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("a", 100, 100)

	c.PointerDown(bodyPoint(idea))
	c.PointerMove(spatial.Point{X: 1000, Y: 1000})
	res := c.PointerLeave()

	assert.Equal(t, ActionDropped, res.Action)
	assert.Equal(t, StateIdle, c.State())
	got, _ := b.Idea(idea.ID)
	assert.Equal(t, 320.0, got.X)
	assert.Equal(t, 450.0, got.Y)
}

func TestDrag_RandomMovesStayInBounds(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("a", 100, 100)
	rng := rand.New(rand.NewSource(3))

	c.PointerDown(bodyPoint(idea))
	for i := 0; i < 1000; i++ {
		p := spatial.Point{X: rng.Float64()*4000 - 2000, Y: rng.Float64()*4000 - 2000}
		c.PointerMove(p)

		got, _ := b.Idea(idea.ID)
		assert.True(t, testGeometry.InBounds(got.X, got.Y), "move %d left node at (%v, %v)", i, got.X, got.Y)
	}
	c.PointerUp(spatial.Point{})
	assert.Equal(t, StateIdle, c.State())
}

func TestDrag_ReturnToPressPoint(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("a", 100, 100)
	start := bodyPoint(idea)

	c.PointerDown(start)
	res := c.PointerMove(spatial.Point{X: start.X + 10, Y: start.Y})
	require.Equal(t, ActionMoved, res.Action)
	got, _ := b.Idea(idea.ID)
	require.Equal(t, 110.0, got.X)

	res = c.PointerMove(start)
	assert.Equal(t, ActionMoved, res.Action)
	c.PointerUp(start)

	got, _ = b.Idea(idea.ID)
	assert.Equal(t, 100.0, got.X)
	assert.Equal(t, 100.0, got.Y)
	assert.False(t, b.IsSelected(idea.ID))
}

func TestNewController_NilLogger(t *testing.T) {
	b := board.NewService(testGeometry, nil)
	c := NewController(b, nil)
	assert.NotPanics(t, func() {
		c.PointerDown(spatial.Point{X: 250, Y: 250})
		res := c.PointerUp(spatial.Point{X: 250, Y: 250})
		c.Delete(res.IdeaID)
	})
}

func TestDrag_IdeaRemovedDuringDrag(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("a", 100, 100)

	c.PointerDown(bodyPoint(idea))
	b.Clear()
	res := c.PointerMove(spatial.Point{X: 300, Y: 300})

	assert.Equal(t, ActionDropped, res.Action)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 0, b.Count())
}

func TestDelete(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("a", 100, 100)
	other := b.AddIdea("b", 300, 300)
	b.Connect(other.ID, idea.ID)

	res := c.Click(deletePoint(idea))

	assert.Equal(t, ActionDeleted, res.Action)
	assert.False(t, b.Has(idea.ID))
	got, _ := b.Idea(other.ID)
	assert.Empty(t, got.Connections)
}

func TestDelete_OnlyFromIdle(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("a", 100, 100)
	c.BeginEdit(idea.ID)

	res := c.Delete(idea.ID)

	assert.Equal(t, ActionNone, res.Action)
	assert.True(t, b.Has(idea.ID))
}

func TestRelease_ElsewhereIsNotAClick(t *testing.T) {
	c, b, _ := newTestController(t)
	idea := b.AddIdea("a", 100, 100)

	c.PointerDown(spatial.Point{X: 400, Y: 400})
	res := c.PointerUp(textPoint(idea))

	assert.Equal(t, ActionNone, res.Action)
	assert.Equal(t, 1, b.Count())
}

func TestHitTest_TopmostWins(t *testing.T) {
	c, b, _ := newTestController(t)
	b.AddIdea("below", 100, 100)
	top := b.AddIdea("above", 110, 100)

	got, zone := c.HitTest(spatial.Point{X: 150, Y: 105})

	assert.Equal(t, top.ID, got.ID)
	assert.Equal(t, spatial.ZoneBody, zone)
}
