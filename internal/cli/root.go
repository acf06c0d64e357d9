// Package cli wires configuration, logging and services into cobra commands.
package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/museboard/museboard/internal/app"
	"github.com/museboard/museboard/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

// App holds the persistent flags shared by every command
type App struct {
	ConfigDir string
	Provider  string
	LogLevel  string
}

// NewRootCmd builds the museboard command tree
func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:          "museboard",
		Short:        "MuseBoard: an AI-assisted brainstorming board in the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  museboard

  # Expand a topic headlessly and export it
  museboard generate "space tourism" --refine-all --png board.png
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(a)
		},
	}

	cmd.PersistentFlags().StringVar(&a.ConfigDir, "config-dir", envOr("MUSEBOARD_CONFIG_DIR", ""), "Directory holding .museboard.json or .museboard.yaml (default: current directory)")
	cmd.PersistentFlags().StringVar(&a.Provider, "provider", envOr("MUSEBOARD_PROVIDER", ""), "Idea backend (mock|ollama), overrides the config file")
	cmd.PersistentFlags().StringVar(&a.LogLevel, "log-level", "", "Log level (debug|info|warn|error), overrides the config file")

	cmd.AddCommand(newGenerateCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig reads the config file and applies flag overrides
func (a *App) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.ConfigDir == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadConfig(a.ConfigDir)
	}
	if err != nil {
		return nil, err
	}

	if a.Provider != "" {
		cfg.Backend.Provider = a.Provider
	}
	if a.LogLevel != "" {
		cfg.Log.Level = a.LogLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTUI(a *App) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns stdout, so logs go to the configured file
	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg.Log.Level)

	deps, err := NewDependencies(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting museboard", "version", Version, "provider", cfg.Backend.Provider)

	model := app.New(cfg, deps.Backend, logger)
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func newGenerateCmd(a *App) *cobra.Command {
	var opts GenerateOptions

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Expand a topic into a board without the TUI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)

			deps, err := NewDependencies(cfg, logger)
			if err != nil {
				return err
			}
			return GenerateCommand(cmd.Context(), deps, cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.RefineAll, "refine-all", false, "Refine every generated idea")
	cmd.Flags().BoolVar(&opts.Translate, "translate", false, "Translate the first ideas into a random configured language")
	cmd.Flags().BoolVar(&opts.Summarize, "summarize", false, "Print a summary of the board")
	cmd.Flags().StringVar(&opts.PNG, "png", "", "Export the board as PNG to this path")
	cmd.Flags().StringVar(&opts.SVG, "svg", "", "Export the board as SVG to this path")
	cmd.Flags().StringVar(&opts.JSON, "json", "", "Export the board as JSON to this path")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the museboard version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "museboard %s\n", Version)
			return err
		},
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
