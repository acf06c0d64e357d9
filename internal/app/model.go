// Package app contains the main application model and TEA implementation.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/museboard/museboard/internal/config"
	"github.com/museboard/museboard/internal/domain"
	"github.com/museboard/museboard/internal/services/backend"
	"github.com/museboard/museboard/internal/services/board"
	"github.com/museboard/museboard/internal/services/export"
	"github.com/museboard/museboard/internal/services/interaction"
	"github.com/museboard/museboard/internal/services/orchestrator"
	"github.com/museboard/museboard/internal/types"
	"github.com/museboard/museboard/internal/ui/canvas"
	"github.com/museboard/museboard/internal/ui/overlay"
	"github.com/museboard/museboard/internal/ui/styles"
	"github.com/museboard/museboard/internal/ui/toast"
)

// Re-export Mode type and constants for convenience
type Mode = types.Mode

const (
	ModeNormal = types.ModeNormal
	ModeDrag   = types.ModeDrag
	ModeEdit   = types.ModeEdit
	ModePrompt = types.ModePrompt
)

// Re-export Toast type and constants for convenience
type Toast = types.Toast
type ToastLevel = types.ToastLevel

const (
	ToastInfo    = types.ToastInfo
	ToastSuccess = types.ToastSuccess
	ToastWarning = types.ToastWarning
	ToastError   = types.ToastError
)

// Overlay ids, echoed back in overlay.SelectionMsg
const (
	promptExpand  = "expand"
	promptExport  = "export"
	confirmClear  = "clear"
	defaultExport = "museboard.png"
)

const (
	tickInterval   = time.Second
	healthInterval = 30 * time.Second
)

// Model is the main application state
type Model struct {
	// Core services
	board        *board.Service
	controller   *interaction.Controller
	orchestrator *orchestrator.Orchestrator
	exporter     *export.Exporter
	health       *backend.HealthChecker

	// Rendering
	canvas *canvas.Canvas
	styles *styles.Styles

	// UI state
	overlayStack *overlay.Stack
	editInput    textinput.Model
	toasts       []Toast
	spinner      spinner.Model
	isOnline     bool

	// Terminal size
	width  int
	height int

	// Configuration
	config *config.Config

	logger *slog.Logger
	now    func() time.Time
}

// New creates a new application model. ideas is the backend the
// orchestrator calls; the board starts empty.
func New(cfg *config.Config, ideas backend.IdeaBackend, logger *slog.Logger) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	ti := textinput.New()
	ti.CharLimit = 200
	ti.Prompt = ""

	st := styles.New()
	boardSvc := board.NewService(cfg.Board.Geometry(), logger)

	return Model{
		board: boardSvc,
		controller: interaction.NewController(boardSvc, logger,
			interaction.WithDoubleClick(time.Duration(cfg.UI.DoubleClickMs)*time.Millisecond),
		),
		orchestrator: orchestrator.New(boardSvc, ideas, logger,
			orchestrator.WithLayout(cfg.Layout),
			orchestrator.WithTranslate(cfg.Translate),
			orchestrator.WithTimeout(time.Duration(cfg.Backend.TimeoutMs)*time.Millisecond),
		),
		exporter:     export.NewExporter(logger),
		health:       backend.HealthCheckerFor(cfg.Backend.Provider, cfg.Backend.BaseURL),
		canvas:       canvas.New(boardSvc, st, cfg.UI.CellWidth, cfg.UI.CellHeight),
		styles:       st,
		overlayStack: overlay.NewStack(),
		editInput:    ti,
		toasts:       []Toast{},
		spinner:      s,
		isOnline:     true, // Optimistically assume online
		config:       cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Mode derives the current mode from overlays and the interaction state
func (m Model) Mode() Mode {
	if !m.overlayStack.IsEmpty() {
		return ModePrompt
	}
	switch m.controller.State() {
	case interaction.StateDragging:
		return ModeDrag
	case interaction.StateEditing:
		return ModeEdit
	default:
		return ModeNormal
	}
}

// Init returns the initial command for the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.health.CheckCmd(),
		tickEvery(tickInterval),
	)
}

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeBoard()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.overlayStack.IsEmpty() {
			return m.handleOverlayKey(msg)
		}
		if m.controller.State() == interaction.StateEditing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if !m.overlayStack.IsEmpty() {
			return m, nil
		}
		return m.handleMouse(msg)

	// Overlay messages
	case overlay.CloseOverlayMsg:
		m.overlayStack.Pop()
		return m, nil

	case overlay.SelectionMsg:
		m.overlayStack.Update(msg)
		return m.handleSelection(msg)

	case overlay.SummaryCopiedMsg:
		if msg.Err != nil {
			m.addToast(ToastError, "Copy failed: "+msg.Err.Error())
		} else {
			m.addToast(ToastSuccess, "Summary copied to clipboard")
		}
		return m, nil

	case orchestrator.OperationFinishedMsg:
		return m.handleFinished(msg)

	case exportDoneMsg:
		if msg.err != nil {
			m.addToast(ToastError, "Export failed: "+msg.err.Error())
		} else {
			m.addToast(ToastSuccess, "Exported "+msg.path)
		}
		return m, nil

	case backend.HealthMsg:
		if msg.Online != m.isOnline {
			m.logger.Info("backend reachability changed", "online", msg.Online)
		}
		m.isOnline = msg.Online
		return m, m.health.PollCmd(healthInterval)

	case tickMsg:
		m.expireToasts()
		return m, tickEvery(tickInterval)
	}

	// Remaining messages are orchestrator steps or overlay internals
	// (cursor blink, viewport scroll).
	if cmd := m.orchestrator.Update(msg); cmd != nil {
		return m, cmd
	}
	if m.overlayStack.IsEmpty() && m.controller.State() == interaction.StateEditing {
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)
		return m, cmd
	}
	return m, m.overlayStack.Update(msg)
}

// resizeBoard fits the board to the drawable area, keeping node dimensions
func (m *Model) resizeBoard() {
	m.canvas.SetSize(m.width, max(m.height-1, 0))
	w, h := m.canvas.BoardSize()
	if w <= 0 || h <= 0 {
		return
	}
	g := m.board.Geometry()
	g.BoardWidth = max(w, g.NodeWidth)
	g.BoardHeight = max(h, g.NodeHeight)
	m.board.Resize(g)
}

// handleKey handles keyboard input in normal mode
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.canvas.Close()
		return m, tea.Quit

	case "?":
		return m, m.overlayStack.Push(overlay.NewHelpOverlay())

	case "e":
		prompt := overlay.NewPromptOverlay(promptExpand, "Expand Topic", "What are we brainstorming?", "").
			WithHint("Replaces the board with generated ideas")
		return m, m.overlayStack.Push(prompt)

	case "r":
		return m.startOperation(m.orchestrator.RefineSelection())

	case "s":
		return m.startOperation(m.orchestrator.Summarize())

	case "t":
		return m.startOperation(m.orchestrator.Translate())

	case "S":
		summary := m.orchestrator.Summary()
		if summary == "" {
			m.addToast(ToastInfo, "No summary yet. Press s to summarize")
			return m, nil
		}
		return m, m.overlayStack.Push(overlay.NewSummaryOverlay(summary))

	case "c":
		m.connectSelection()
		return m, nil

	case "esc":
		m.board.ClearSelection()
		return m, nil

	case "X":
		if m.board.Count() == 0 {
			return m, nil
		}
		dialog := overlay.NewConfirmDialog(confirmClear, "Clear Board",
			fmt.Sprintf("Remove all %d ideas?", m.board.Count()))
		return m, m.overlayStack.Push(dialog)

	case "x":
		prompt := overlay.NewPromptOverlay(promptExport, "Export Board", "path.png | path.svg | path.json", defaultExport).
			WithHint("Format follows the file extension")
		return m, m.overlayStack.Push(prompt)
	}

	return m, nil
}

// handleOverlayKey routes keyboard input to the top overlay
func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.canvas.Close()
		return m, tea.Quit
	}
	cmd := m.overlayStack.Update(msg)
	return m, cmd
}

// handleEditKey feeds keys to the in-place editor
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.controller.CommitEdit()
		m.editInput.Blur()
		return m, nil
	case "esc":
		m.controller.CancelEdit()
		m.editInput.Blur()
		return m, nil
	case "ctrl+c":
		m.canvas.Close()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	m.controller.SetDraft(m.editInput.Value())
	return m, cmd
}

// handleMouse translates terminal mouse events into pointer events
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	_, rows := m.canvas.Size()
	inside := msg.Y >= 0 && msg.Y < rows && msg.X >= 0 && msg.X < m.width
	p := m.canvas.ToBoard(msg.X, msg.Y)

	var res interaction.Result
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return m, nil
		}
		res = m.controller.PointerDown(p)
	case tea.MouseActionMotion:
		if !inside {
			res = m.controller.PointerLeave()
			break
		}
		res = m.controller.PointerMove(p)
	case tea.MouseActionRelease:
		if !inside {
			res = m.controller.PointerLeave()
			break
		}
		res = m.controller.PointerUp(p)
	}

	return m.afterInteraction(res)
}

// afterInteraction keeps the in-place editor in step with the controller
func (m Model) afterInteraction(res interaction.Result) (tea.Model, tea.Cmd) {
	if m.controller.State() != interaction.StateEditing {
		m.editInput.Blur()
		return m, nil
	}
	if res.Action == interaction.ActionEditStarted {
		m.editInput.SetValue(m.controller.Draft())
		m.editInput.CursorEnd()
		return m, m.editInput.Focus()
	}
	return m, nil
}

// handleSelection acts on a submitted overlay
func (m Model) handleSelection(msg overlay.SelectionMsg) (tea.Model, tea.Cmd) {
	switch msg.Key {
	case promptExpand:
		res, ok := msg.Value.(overlay.PromptResult)
		if !ok {
			return m, nil
		}
		return m.startOperation(m.orchestrator.Expand(res.Value))

	case promptExport:
		res, ok := msg.Value.(overlay.PromptResult)
		if !ok {
			return m, nil
		}
		return m, m.exportCmd(res.Value)

	case confirmClear:
		res, ok := msg.Value.(overlay.ConfirmResult)
		if !ok || !res.Confirmed {
			return m, nil
		}
		m.orchestrator.ClearBoard()
		if m.controller.State() == interaction.StateEditing {
			m.controller.CancelEdit()
			m.editInput.Blur()
		}
		m.addToast(ToastInfo, "Board cleared")
		return m, nil
	}
	return m, nil
}

// startOperation reports validation failures as toasts
func (m Model) startOperation(cmd tea.Cmd, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		if domain.IsValidation(err) {
			m.addToast(ToastWarning, err.Error())
		} else {
			m.addToast(ToastError, err.Error())
		}
		return m, nil
	}
	return m, cmd
}

// handleFinished reports the outcome of an operation
func (m Model) handleFinished(msg orchestrator.OperationFinishedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		var be *domain.BackendError
		if errors.As(msg.Err, &be) {
			m.logger.Warn("operation failed", "op", msg.Op, "error", msg.Err)
		}
		m.addToast(ToastError, msg.Err.Error())
		return m, nil
	}

	switch msg.Op {
	case domain.OpExpand:
		m.addToast(ToastSuccess, fmt.Sprintf("Generated %d ideas", m.board.Count()))
	case domain.OpRefine:
		m.addToast(ToastSuccess, "Ideas refined")
	case domain.OpTranslate:
		m.addToast(ToastSuccess, "Translations added")
	case domain.OpSummarize:
		return m, m.overlayStack.Push(overlay.NewSummaryOverlay(m.orchestrator.Summary()))
	}
	return m, nil
}

// connectSelection chains the selected ideas in selection order
func (m *Model) connectSelection() {
	ids := m.board.SelectedIDs()
	if len(ids) < 2 {
		m.addToast(ToastWarning, "Select at least two ideas to connect")
		return
	}
	linked := 0
	for i := 0; i+1 < len(ids); i++ {
		if m.board.Connect(ids[i], ids[i+1]) {
			linked++
		}
	}
	m.board.ClearSelection()
	m.addToast(ToastSuccess, fmt.Sprintf("Connected %d ideas", linked+1))
}

// addToast adds a toast notification to the list
func (m *Model) addToast(level ToastLevel, message string) {
	m.toasts = append(m.toasts, types.NewToast(level, message, m.now(), types.DefaultToastTTL))
	m.toasts = toast.Prune(m.toasts, m.now())
}

// expireToasts removes expired toasts from the list
func (m *Model) expireToasts() {
	m.toasts = toast.Prune(m.toasts, m.now())
}

// Message types for async operations

type tickMsg time.Time

type exportDoneMsg struct {
	path string
	err  error
}

// Commands

// exportCmd writes the current board snapshot to path
func (m Model) exportCmd(path string) tea.Cmd {
	snap := m.board.Snapshot()
	exporter := m.exporter
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: exporter.SaveFile(path, snap)}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
