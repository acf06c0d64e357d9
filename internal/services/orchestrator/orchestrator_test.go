package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/museboard/museboard/internal/config"
	"github.com/museboard/museboard/internal/core/spatial"
	"github.com/museboard/museboard/internal/domain"
	"github.com/museboard/museboard/internal/services/backend"
	"github.com/museboard/museboard/internal/services/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend returns scripted answers and can fail a given call
type fakeBackend struct {
	ideas        []string
	failRefineAt int // 1-based refine call that fails, 0 = never
	failAll      error
	refineCalls  []string
	translations []string
	summarized   []string
}

func (f *fakeBackend) Expand(_ context.Context, _ string) ([]string, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	return f.ideas, nil
}

func (f *fakeBackend) Refine(_ context.Context, text string) (string, error) {
	f.refineCalls = append(f.refineCalls, text)
	if f.failAll != nil {
		return "", f.failAll
	}
	if len(f.refineCalls) == f.failRefineAt {
		return "", errors.New("quota exceeded")
	}
	return text + "!", nil
}

func (f *fakeBackend) Summarize(_ context.Context, texts []string) (string, error) {
	if f.failAll != nil {
		return "", f.failAll
	}
	f.summarized = texts
	return fmt.Sprintf("%d ideas", len(texts)), nil
}

func (f *fakeBackend) Translate(_ context.Context, text, language string) (string, error) {
	if f.failAll != nil {
		return "", f.failAll
	}
	f.translations = append(f.translations, language)
	return "t(" + text + ")", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBoard(width, height float64) *board.Service {
	n := 0
	return board.NewService(
		spatial.Geometry{BoardWidth: width, BoardHeight: height, NodeWidth: 160, NodeHeight: 48},
		testLogger(),
		board.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("idea-%d", n)
		}),
	)
}

func newOrchestrator(b Board, fb backend.IdeaBackend) *Orchestrator {
	return New(b, fb, testLogger(), WithPicker(func(int) int { return 0 }))
}

func texts(ideas []domain.Idea) []string {
	out := make([]string, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Text
	}
	return out
}

func TestExpand_LaysOutGrid(t *testing.T) {
	b := newBoard(1000, 800)
	b.AddIdea("old", 0, 0)
	b.ToggleSelection("idea-1")

	fb := &fakeBackend{ideas: []string{"a", "b", "c", "d", "e", "f", "g"}}
	o := newOrchestrator(b, fb)

	cmd, err := o.Expand("startup")
	require.NoError(t, err)
	assert.True(t, o.State().IsLoading())

	require.NoError(t, o.Run(cmd))

	ideas := b.Ideas()
	require.Len(t, ideas, 7)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g"}, texts(ideas))
	want := [][2]float64{
		{150, 120}, {330, 120}, {510, 120},
		{150, 240}, {330, 240}, {510, 240},
		{150, 360},
	}
	for i, idea := range ideas {
		assert.Equal(t, want[i][0], idea.X, "idea %d x", i)
		assert.Equal(t, want[i][1], idea.Y, "idea %d y", i)
	}
	assert.Zero(t, b.SelectionCount())
	assert.Equal(t, domain.PhaseIdle, o.State().Phase)
	assert.Empty(t, o.State().LastError)
}

func TestExpand_ClampsToBoard(t *testing.T) {
	b := newBoard(400, 200)
	o := newOrchestrator(b, &fakeBackend{ideas: []string{"a", "b", "c", "d"}})

	cmd, err := o.Expand("x")
	require.NoError(t, err)
	require.NoError(t, o.Run(cmd))

	for _, idea := range b.Ideas() {
		assert.LessOrEqual(t, idea.X, 240.0)
		assert.LessOrEqual(t, idea.Y, 152.0)
	}
}

func TestValidation_DoesNotChangePhase(t *testing.T) {
	b := newBoard(1000, 800)
	fb := &fakeBackend{}
	o := newOrchestrator(b, fb)

	tests := []struct {
		name string
		call func() (tea.Cmd, error)
	}{
		{name: "empty prompt", call: func() (tea.Cmd, error) { return o.Expand("   ") }},
		{name: "empty selection", call: func() (tea.Cmd, error) { return o.RefineSelection() }},
		{name: "summarize empty board", call: o.Summarize},
		{name: "translate empty board", call: o.Translate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := tt.call()
			assert.Nil(t, cmd)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, domain.PhaseIdle, o.State().Phase)
		})
	}
	assert.Empty(t, fb.refineCalls)
}

func TestBusy_RejectsSecondOperation(t *testing.T) {
	b := newBoard(1000, 800)
	b.AddIdea("a", 0, 0)
	o := newOrchestrator(b, &fakeBackend{ideas: []string{"x"}})

	cmd, err := o.Summarize()
	require.NoError(t, err)

	_, err = o.Expand("topic")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, domain.OpSummarize, o.State().Operation)

	require.NoError(t, o.Run(cmd))
	_, err = o.Expand("topic")
	assert.NoError(t, err)
}

func TestRefine_PartialFailure(t *testing.T) {
	b := newBoard(1000, 800)
	for _, text := range []string{"one", "two", "three"} {
		idea := b.AddIdea(text, 0, 0)
		b.ToggleSelection(idea.ID)
	}
	fb := &fakeBackend{failRefineAt: 2}
	o := newOrchestrator(b, fb)

	cmd, err := o.RefineSelection()
	require.NoError(t, err)
	err = o.Run(cmd)

	require.Error(t, err)
	var be *domain.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, domain.OpRefine, be.Op)

	assert.Equal(t, []string{"one!", "two", "three"}, texts(b.Ideas()))
	assert.Equal(t, []string{"one", "two"}, fb.refineCalls, "loop stops at first failure")
	assert.Equal(t, 3, b.SelectionCount())

	state := o.State()
	assert.Equal(t, domain.PhaseError, state.Phase)
	assert.Contains(t, state.LastError, "quota exceeded")
}

func TestRefine_CompleteClearsSelection(t *testing.T) {
	b := newBoard(1000, 800)
	b.AddIdea("one", 0, 0)
	b.AddIdea("two", 0, 0)
	b.ToggleSelection("idea-2")
	o := newOrchestrator(b, &fakeBackend{})

	cmd, err := o.RefineSelection()
	require.NoError(t, err)
	require.NoError(t, o.Run(cmd))

	assert.Equal(t, []string{"one", "two!"}, texts(b.Ideas()))
	assert.Zero(t, b.SelectionCount())
	assert.Equal(t, domain.PhaseIdle, o.State().Phase)
}

func TestRefine_TargetDeletedInFlight(t *testing.T) {
	b := newBoard(1000, 800)
	b.AddIdea("one", 0, 0)
	b.AddIdea("two", 0, 0)
	fb := &fakeBackend{}
	o := newOrchestrator(b, fb)

	cmd, err := o.Refine([]string{"idea-1", "idea-2"})
	require.NoError(t, err)

	msg := cmd()
	b.RemoveIdea("idea-1")
	next := o.Update(msg)
	require.NotNil(t, next)
	require.NoError(t, o.Run(next))

	assert.Equal(t, []string{"two!"}, texts(b.Ideas()))
	assert.Equal(t, domain.PhaseIdle, o.State().Phase)
}

func TestRefine_SkipsIdeasAlreadyGone(t *testing.T) {
	b := newBoard(1000, 800)
	b.AddIdea("one", 0, 0)
	fb := &fakeBackend{}
	o := newOrchestrator(b, fb)

	cmd, err := o.Refine([]string{"missing", "idea-1"})
	require.NoError(t, err)
	require.NoError(t, o.Run(cmd))

	assert.Equal(t, []string{"one"}, fb.refineCalls)
}

func TestSummarize_HoldsResultOutsideBoard(t *testing.T) {
	b := newBoard(1000, 800)
	b.AddIdea("a", 0, 0)
	b.AddIdea("b", 0, 0)
	fb := &fakeBackend{}
	o := newOrchestrator(b, fb)

	cmd, err := o.Summarize()
	require.NoError(t, err)
	require.NoError(t, o.Run(cmd))

	assert.Equal(t, "2 ideas", o.Summary())
	assert.Equal(t, []string{"a", "b"}, fb.summarized)
	assert.Equal(t, 2, b.Count())
}

func TestTranslate_AddsConnectedIdeas(t *testing.T) {
	b := newBoard(1000, 800)
	for i, text := range []string{"a", "b", "c", "d"} {
		b.AddIdea(text, float64(100*i), 100)
	}
	fb := &fakeBackend{}
	o := newOrchestrator(b, fb)

	cmd, err := o.Translate()
	require.NoError(t, err)
	require.NoError(t, o.Run(cmd))

	ideas := b.Ideas()
	require.Len(t, ideas, 7)
	assert.Equal(t, []string{"spanish", "spanish", "spanish"}, fb.translations)

	for i, added := range ideas[4:] {
		src := ideas[i]
		assert.Equal(t, src.Text+" → t("+src.Text+")", added.Text)
		assert.Equal(t, src.X+50, added.X)
		assert.Equal(t, src.Y+50, added.Y)
		assert.Equal(t, []string{src.ID}, added.Connections)
	}
}

func TestTranslate_UsesCurrentSourcePosition(t *testing.T) {
	b := newBoard(1000, 800)
	b.AddIdea("a", 0, 0)
	o := newOrchestrator(b, &fakeBackend{})

	cmd, err := o.Translate()
	require.NoError(t, err)

	msg := cmd()
	b.UpdateIdea("idea-1", domain.MovePatch(300, 200))
	require.NoError(t, o.Run(o.Update(msg)))

	added, ok := b.Idea("idea-2")
	require.True(t, ok)
	assert.Equal(t, 350.0, added.X)
	assert.Equal(t, 250.0, added.Y)
}

func TestClearBoard_DuringTranslate(t *testing.T) {
	b := newBoard(1000, 800)
	b.AddIdea("a", 0, 0)
	b.AddIdea("b", 0, 0)
	o := newOrchestrator(b, &fakeBackend{})

	cmd, err := o.Translate()
	require.NoError(t, err)

	msg := cmd()
	o.ClearBoard()
	require.NoError(t, o.Run(o.Update(msg)))

	assert.Zero(t, b.Count())
	assert.Equal(t, domain.PhaseIdle, o.State().Phase)
}

func TestErrorThenSuccessClearsLastError(t *testing.T) {
	b := newBoard(1000, 800)
	fb := &fakeBackend{failAll: errors.New("offline"), ideas: []string{"a"}}
	o := newOrchestrator(b, fb)

	cmd, err := o.Expand("topic")
	require.NoError(t, err)
	require.Error(t, o.Run(cmd))
	assert.Equal(t, domain.PhaseError, o.State().Phase)
	assert.Equal(t, "backend expand: offline", o.State().LastError)
	assert.Zero(t, b.Count(), "board untouched on failure")

	fb.failAll = nil
	cmd, err = o.Expand("topic")
	require.NoError(t, err)
	assert.Equal(t, "backend expand: offline", o.State().LastError)
	require.NoError(t, o.Run(cmd))
	assert.Equal(t, domain.PhaseIdle, o.State().Phase)
	assert.Empty(t, o.State().LastError)
}

func TestUpdate_IgnoresForeignMessages(t *testing.T) {
	o := newOrchestrator(newBoard(1000, 800), &fakeBackend{})
	assert.Nil(t, o.Update(tea.KeyMsg{}))
	assert.Nil(t, o.Update(refineStepMsg{id: "x"}), "no refine in flight")
}

func TestGridPosition(t *testing.T) {
	o := New(newBoard(1000, 800), &fakeBackend{}, testLogger(), WithLayout(config.LayoutConfig{
		Columns: 2, OriginX: 10, OriginY: 20, ColumnPitch: 100, RowPitch: 50,
	}))

	x, y := o.GridPosition(3)
	assert.Equal(t, 110.0, x)
	assert.Equal(t, 70.0, y)
}

func TestWithMockBackend(t *testing.T) {
	b := newBoard(1200, 800)
	o := newOrchestrator(b, backend.NewMock(0, testLogger()))

	cmd, err := o.Expand("coffee")
	require.NoError(t, err)
	require.NoError(t, o.Run(cmd))
	assert.Equal(t, 7, b.Count())

	cmd, err = o.Translate()
	require.NoError(t, err)
	require.NoError(t, o.Run(cmd))
	assert.Equal(t, 10, b.Count())

	ideas := b.Ideas()
	assert.Equal(t, "Core Concept → [es] Core Concept", ideas[7].Text)
	assert.Equal(t, []string{ideas[2].ID}, ideas[9].Connections)
}

func TestNew_NilLogger(t *testing.T) {
	b := board.NewService(spatial.Geometry{BoardWidth: 1200, BoardHeight: 800, NodeWidth: 160, NodeHeight: 48}, nil)
	o := New(b, backend.NewMock(0, nil), nil)

	cmd, err := o.Expand("coffee")
	require.NoError(t, err)
	require.NotPanics(t, func() {
		require.NoError(t, o.Run(cmd))
	})
	assert.Equal(t, 7, b.Count())
}
