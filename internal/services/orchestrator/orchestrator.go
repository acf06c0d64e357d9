// Package orchestrator drives idea-backend operations against the board.
//
// Every backend call runs as a tea.Cmd and its result comes back through
// Update as a message, so results are merged on the same timeline as user
// input. Batch operations are a chain of single-call steps: each step's
// result message schedules the next call.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/museboard/museboard/internal/config"
	"github.com/museboard/museboard/internal/domain"
	"github.com/museboard/museboard/internal/services/backend"
)

// Board is the subset of the board service the orchestrator mutates
type Board interface {
	Ideas() []domain.Idea
	Idea(id string) (domain.Idea, bool)
	Count() int
	SelectedIDs() []string
	AddIdea(text string, x, y float64) domain.Idea
	UpdateIdea(id string, patch domain.IdeaPatch) bool
	ReplaceAll(ideas []domain.Idea)
	Connect(from, to string) bool
	ClearSelection()
	Clear()
}

// OperationFinishedMsg is emitted once an operation reaches idle or error
type OperationFinishedMsg struct {
	Op  domain.Operation
	Err error
}

type expandResultMsg struct {
	ideas []string
	err   error
}

type refineStepMsg struct {
	id   string
	text string
	err  error
}

type summarizeResultMsg struct {
	text string
	err  error
}

type translateStepMsg struct {
	sourceID    string
	original    string
	translation string
	err         error
}

// run is the bookkeeping for the operation in flight
type run struct {
	op       domain.Operation
	pending  []string // ids still to process, fixed when the operation started
	language string
	steps    int
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLayout sets the grid used by expand
func WithLayout(l config.LayoutConfig) Option {
	return func(o *Orchestrator) { o.layout = l }
}

// WithTranslate sets translate languages, subset size and placement offset
func WithTranslate(t config.TranslateConfig) Option {
	return func(o *Orchestrator) { o.translate = t }
}

// WithTimeout bounds every backend call
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithPicker replaces the random source used to choose a translate language.
// pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(o *Orchestrator) { o.pick = pick }
}

// Orchestrator owns the operation state and applies backend results to the board
type Orchestrator struct {
	mu        sync.RWMutex
	state     domain.OperationState
	summary   string
	current   *run
	board     Board
	backend   backend.IdeaBackend
	layout    config.LayoutConfig
	translate config.TranslateConfig
	timeout   time.Duration
	pick      func(n int) int
	logger    *slog.Logger
}

// New creates an orchestrator with the default layout and translate settings
func New(board Board, b backend.IdeaBackend, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := config.DefaultConfig()
	o := &Orchestrator{
		board:     board,
		backend:   b,
		layout:    defaults.Layout,
		translate: defaults.Translate,
		timeout:   time.Duration(defaults.Backend.TimeoutMs) * time.Millisecond,
		pick:      rand.IntN,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current operation state
func (o *Orchestrator) State() domain.OperationState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Summary returns the last summarize result
func (o *Orchestrator) Summary() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.summary
}

// GridPosition returns the expand layout position of the i-th idea
func (o *Orchestrator) GridPosition(i int) (float64, float64) {
	cols := max(o.layout.Columns, 1)
	x := o.layout.OriginX + float64(i%cols)*o.layout.ColumnPitch
	y := o.layout.OriginY + float64(i/cols)*o.layout.RowPitch
	return x, y
}

// begin moves to loading. It fails with ErrBusy while another operation runs.
func (o *Orchestrator) begin(op domain.Operation, r *run) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Phase == domain.PhaseLoading {
		return &domain.ValidationError{Op: op, Err: domain.ErrBusy}
	}
	r.op = op
	o.current = r
	// LastError survives until an operation succeeds
	o.state = domain.OperationState{Phase: domain.PhaseLoading, Operation: op, LastError: o.state.LastError}
	o.logger.Debug("operation started", "op", op)
	return nil
}

func (o *Orchestrator) succeed() tea.Cmd {
	o.mu.Lock()
	r := o.current
	o.current = nil
	o.state = domain.OperationState{Phase: domain.PhaseIdle, Operation: r.op}
	o.mu.Unlock()

	o.logger.Info("operation completed", "op", r.op, "steps", r.steps)
	return finished(r.op, nil)
}

func (o *Orchestrator) fail(err error) tea.Cmd {
	o.mu.Lock()
	r := o.current
	o.current = nil
	var be *domain.BackendError
	if !errors.As(err, &be) {
		be = &domain.BackendError{Op: r.op, Err: err}
	}
	o.state = domain.OperationState{Phase: domain.PhaseError, Operation: r.op, LastError: be.Error()}
	o.mu.Unlock()

	o.logger.Warn("operation failed", "op", r.op, "steps", r.steps, "error", be)
	return finished(r.op, be)
}

func finished(op domain.Operation, err error) tea.Cmd {
	return func() tea.Msg {
		return OperationFinishedMsg{Op: op, Err: err}
	}
}

// call runs fn with a per-call timeout on the command goroutine
func (o *Orchestrator) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := o.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return fn(ctx)
	}
}

// Expand asks the backend for ideas about prompt and replaces the board with
// them laid out on the grid.
func (o *Orchestrator) Expand(prompt string) (tea.Cmd, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &domain.ValidationError{Op: domain.OpExpand, Message: "enter a topic to expand"}
	}
	if err := o.begin(domain.OpExpand, &run{}); err != nil {
		return nil, err
	}

	b := o.backend
	return o.call(func(ctx context.Context) tea.Msg {
		ideas, err := b.Expand(ctx, prompt)
		return expandResultMsg{ideas: ideas, err: err}
	}), nil
}

// Refine rewrites the given ideas one at a time, stopping at the first failure.
// The selection is cleared only when every step succeeded.
func (o *Orchestrator) Refine(ids []string) (tea.Cmd, error) {
	if len(ids) == 0 {
		return nil, &domain.ValidationError{Op: domain.OpRefine, Message: "select ideas to refine first"}
	}
	r := &run{pending: append([]string(nil), ids...)}
	if err := o.begin(domain.OpRefine, r); err != nil {
		return nil, err
	}
	return o.nextRefine(), nil
}

// RefineSelection refines the current selection in board order
func (o *Orchestrator) RefineSelection() (tea.Cmd, error) {
	return o.Refine(o.board.SelectedIDs())
}

// nextRefine issues the call for the next pending idea that still exists
func (o *Orchestrator) nextRefine() tea.Cmd {
	for {
		o.mu.Lock()
		r := o.current
		if len(r.pending) == 0 {
			o.mu.Unlock()
			o.board.ClearSelection()
			return o.succeed()
		}
		id := r.pending[0]
		r.pending = r.pending[1:]
		o.mu.Unlock()

		idea, ok := o.board.Idea(id)
		if !ok {
			o.logger.Debug("refine target gone", "id", id)
			continue
		}

		b := o.backend
		text := idea.Text
		return o.call(func(ctx context.Context) tea.Msg {
			refined, err := b.Refine(ctx, text)
			return refineStepMsg{id: id, text: refined, err: err}
		})
	}
}

// Summarize condenses every idea on the board into a display-only summary
func (o *Orchestrator) Summarize() (tea.Cmd, error) {
	ideas := o.board.Ideas()
	if len(ideas) == 0 {
		return nil, &domain.ValidationError{Op: domain.OpSummarize, Message: "add ideas before summarizing"}
	}
	if err := o.begin(domain.OpSummarize, &run{}); err != nil {
		return nil, err
	}

	texts := make([]string, len(ideas))
	for i, idea := range ideas {
		texts[i] = idea.Text
	}
	b := o.backend
	return o.call(func(ctx context.Context) tea.Msg {
		text, err := b.Summarize(ctx, texts)
		return summarizeResultMsg{text: text, err: err}
	}), nil
}

// Translate translates the first few ideas into one randomly chosen language.
// Each translation becomes a new idea next to its source, connected to it.
func (o *Orchestrator) Translate() (tea.Cmd, error) {
	ideas := o.board.Ideas()
	if len(ideas) == 0 {
		return nil, &domain.ValidationError{Op: domain.OpTranslate, Message: "add ideas before translating"}
	}
	if len(o.translate.Languages) == 0 {
		return nil, &domain.ValidationError{Op: domain.OpTranslate, Message: "no target languages configured"}
	}

	limit := min(o.translate.Limit, len(ideas))
	r := &run{
		pending:  make([]string, 0, limit),
		language: o.translate.Languages[o.pick(len(o.translate.Languages))],
	}
	for _, idea := range ideas[:limit] {
		r.pending = append(r.pending, idea.ID)
	}
	if err := o.begin(domain.OpTranslate, r); err != nil {
		return nil, err
	}
	o.logger.Debug("translating", "language", r.language, "count", limit)
	return o.nextTranslate(), nil
}

func (o *Orchestrator) nextTranslate() tea.Cmd {
	for {
		o.mu.Lock()
		r := o.current
		if len(r.pending) == 0 {
			o.mu.Unlock()
			return o.succeed()
		}
		id := r.pending[0]
		r.pending = r.pending[1:]
		language := r.language
		o.mu.Unlock()

		idea, ok := o.board.Idea(id)
		if !ok {
			o.logger.Debug("translate source gone", "id", id)
			continue
		}

		b := o.backend
		text := idea.Text
		return o.call(func(ctx context.Context) tea.Msg {
			out, err := b.Translate(ctx, text, language)
			return translateStepMsg{sourceID: id, original: text, translation: out, err: err}
		})
	}
}

// ClearBoard empties the board and drops the held summary. It is allowed while
// an operation is in flight; late results no-op by id lookup.
func (o *Orchestrator) ClearBoard() {
	o.board.Clear()
	o.mu.Lock()
	o.summary = ""
	o.mu.Unlock()
	o.logger.Debug("board cleared")
}

// Update applies a backend result and returns the next step, if any.
// Messages that are not orchestrator results return nil.
func (o *Orchestrator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case expandResultMsg:
		if !o.active(domain.OpExpand) {
			return nil
		}
		if msg.err != nil {
			return o.fail(msg.err)
		}
		o.step()
		o.applyExpand(msg.ideas)
		return o.succeed()

	case refineStepMsg:
		if !o.active(domain.OpRefine) {
			return nil
		}
		if msg.err != nil {
			return o.fail(msg.err)
		}
		o.step()
		if !o.board.UpdateIdea(msg.id, domain.TextPatch(msg.text)) {
			o.logger.Debug("refine result dropped", "id", msg.id)
		}
		return o.nextRefine()

	case summarizeResultMsg:
		if !o.active(domain.OpSummarize) {
			return nil
		}
		if msg.err != nil {
			return o.fail(msg.err)
		}
		o.step()
		o.mu.Lock()
		o.summary = msg.text
		o.mu.Unlock()
		return o.succeed()

	case translateStepMsg:
		if !o.active(domain.OpTranslate) {
			return nil
		}
		if msg.err != nil {
			return o.fail(msg.err)
		}
		o.step()
		o.applyTranslation(msg)
		return o.nextTranslate()
	}
	return nil
}

func (o *Orchestrator) active(op domain.Operation) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current != nil && o.current.op == op
}

func (o *Orchestrator) step() {
	o.mu.Lock()
	o.current.steps++
	o.mu.Unlock()
}

func (o *Orchestrator) applyExpand(texts []string) {
	ideas := make([]domain.Idea, 0, len(texts))
	for i, text := range texts {
		x, y := o.GridPosition(i)
		ideas = append(ideas, domain.Idea{Text: text, X: x, Y: y})
	}
	o.board.ReplaceAll(ideas)
}

// applyTranslation places the translated idea relative to the source's
// current position. A source deleted meanwhile drops the result.
func (o *Orchestrator) applyTranslation(msg translateStepMsg) {
	src, ok := o.board.Idea(msg.sourceID)
	if !ok {
		o.logger.Debug("translation dropped", "source", msg.sourceID)
		return
	}
	text := fmt.Sprintf("%s → %s", msg.original, strings.TrimSpace(msg.translation))
	added := o.board.AddIdea(text, src.X+o.translate.OffsetX, src.Y+o.translate.OffsetY)
	o.board.Connect(added.ID, src.ID)
}

// Run drives cmd and every step it produces until the operation finishes.
// It is the headless counterpart of the bubbletea loop.
func (o *Orchestrator) Run(cmd tea.Cmd) error {
	for cmd != nil {
		msg := cmd()
		if fin, ok := msg.(OperationFinishedMsg); ok {
			return fin.Err
		}
		cmd = o.Update(msg)
	}
	return nil
}
