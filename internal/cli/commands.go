package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/museboard/museboard/internal/config"
	"github.com/museboard/museboard/internal/domain"
	"github.com/museboard/museboard/internal/services/backend"
	"github.com/museboard/museboard/internal/services/board"
	"github.com/museboard/museboard/internal/services/export"
	"github.com/museboard/museboard/internal/services/orchestrator"
)

// Dependencies holds all the services needed for CLI commands
type Dependencies struct {
	Config   *config.Config
	Backend  backend.IdeaBackend
	Exporter *export.Exporter
	Logger   *slog.Logger
}

// NewDependencies creates a new Dependencies instance with all required services
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	ideas, err := backend.New(cfg.Backend, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}

	return &Dependencies{
		Config:   cfg,
		Backend:  ideas,
		Exporter: export.NewExporter(logger),
		Logger:   logger,
	}, nil
}

// GenerateOptions selects the steps run after expanding the prompt
type GenerateOptions struct {
	RefineAll bool
	Translate bool
	Summarize bool

	PNG  string
	SVG  string
	JSON string
}

// exportPaths returns the requested export targets
func (o GenerateOptions) exportPaths() []string {
	var paths []string
	for _, p := range []string{o.PNG, o.SVG, o.JSON} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// GenerateCommand expands prompt on a fresh board, runs the selected
// follow-up operations and prints the resulting board to w
func GenerateCommand(ctx context.Context, deps *Dependencies, w io.Writer, prompt string, opts GenerateOptions) error {
	cfg := deps.Config
	boardSvc := board.NewService(cfg.Board.Geometry(), deps.Logger)
	orch := orchestrator.New(boardSvc, deps.Backend, deps.Logger,
		orchestrator.WithLayout(cfg.Layout),
		orchestrator.WithTranslate(cfg.Translate),
		orchestrator.WithTimeout(deps.timeout()),
	)

	deps.Logger.Info("generating board", "prompt", prompt)

	steps := []struct {
		enabled bool
		op      domain.Operation
		start   func() (tea.Cmd, error)
	}{
		{true, domain.OpExpand, func() (tea.Cmd, error) { return orch.Expand(prompt) }},
		{opts.RefineAll, domain.OpRefine, func() (tea.Cmd, error) { return orch.Refine(idsOf(boardSvc.Ideas())) }},
		{opts.Translate, domain.OpTranslate, orch.Translate},
		{opts.Summarize, domain.OpSummarize, orch.Summarize},
	}

	for _, step := range steps {
		if !step.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd, err := step.start()
		if err != nil {
			return fmt.Errorf("failed to start %s: %w", step.op, err)
		}
		if err := orch.Run(cmd); err != nil {
			return fmt.Errorf("%s failed: %w", step.op, err)
		}
		deps.Logger.Debug("step finished", "op", step.op, "count", boardSvc.Count())
	}

	snap := boardSvc.Snapshot()
	printBoard(w, snap)

	if opts.Summarize {
		fmt.Fprintf(w, "\nSummary:\n%s\n", orch.Summary())
	}

	if paths := opts.exportPaths(); len(paths) > 0 {
		if err := deps.Exporter.SaveAll(ctx, paths, snap); err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(w, "✓ Exported %s\n", p)
		}
	}

	return nil
}

// printBoard lists the ideas as a table
func printBoard(w io.Writer, snap board.Snapshot) {
	fmt.Fprintf(w, "Ideas (%d):\n\n", len(snap.Ideas))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tX\tY\tTEXT\tCONNECTS TO")
	fmt.Fprintln(tw, "--\t-\t-\t----\t-----------")

	short := make(map[string]string, len(snap.Ideas))
	for _, idea := range snap.Ideas {
		short[idea.ID] = shortID(idea.ID)
	}

	for _, idea := range snap.Ideas {
		targets := make([]string, 0, len(idea.Connections))
		for _, id := range idea.Connections {
			if s, ok := short[id]; ok {
				targets = append(targets, s)
			}
		}
		fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%s\t%s\n",
			short[idea.ID], idea.X, idea.Y,
			runewidth.Truncate(idea.Text, 60, "..."),
			strings.Join(targets, ", "))
	}

	tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func idsOf(ideas []domain.Idea) []string {
	ids := make([]string, len(ideas))
	for i, idea := range ideas {
		ids[i] = idea.ID
	}
	return ids
}

// timeout is the per-call backend deadline
func (d *Dependencies) timeout() time.Duration {
	return time.Duration(d.Config.Backend.TimeoutMs) * time.Millisecond
}
