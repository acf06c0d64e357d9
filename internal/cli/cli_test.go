package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/museboard/museboard/internal/config"
	"github.com/museboard/museboard/internal/services/backend"
	"github.com/museboard/museboard/internal/services/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps(t *testing.T) *Dependencies {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Dependencies{
		Config:   config.DefaultConfig(),
		Backend:  backend.NewMock(0, logger),
		Exporter: export.NewExporter(logger),
		Logger:   logger,
	}
}

// writeConfig puts a fast mock config into a fresh directory
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yml := "backend:\n  provider: mock\n  mockLatencyMs: -1\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".museboard.yaml"), []byte(yml), 0644))
	return dir
}

func TestGenerateCommand_ExpandOnly(t *testing.T) {
	var out bytes.Buffer
	err := GenerateCommand(context.Background(), testDeps(t), &out, "space tourism", GenerateOptions{})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Ideas (7):")
	assert.Contains(t, got, "Core Concept")
	assert.Contains(t, got, "Timeline Planning")
	assert.NotContains(t, got, "Summary:")
}

func TestGenerateCommand_AllSteps(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "board.json")
	svgPath := filepath.Join(dir, "board.svg")

	var out bytes.Buffer
	err := GenerateCommand(context.Background(), testDeps(t), &out, "space tourism", GenerateOptions{
		RefineAll: true,
		Translate: true,
		Summarize: true,
		JSON:      jsonPath,
		SVG:       svgPath,
	})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Ideas (10):", "three translations are added")
	assert.Contains(t, got, "(refined for clarity and impact)")
	assert.Contains(t, got, "→")
	assert.Contains(t, got, "Summary:\nSummary: ")
	assert.Contains(t, got, "✓ Exported "+jsonPath)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc export.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Ideas, 10)

	_, err = os.Stat(svgPath)
	assert.NoError(t, err)
}

func TestGenerateCommand_RejectsBlankPrompt(t *testing.T) {
	err := GenerateCommand(context.Background(), testDeps(t), io.Discard, "   ", GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start expand")
}

func TestGenerateCommand_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := GenerateCommand(ctx, testDeps(t), io.Discard, "topic", GenerateOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDependencies_UnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend.Provider = "nope"
	_, err := NewDependencies(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestRootCmd_Version(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "museboard "+Version+"\n", out.String())
}

func TestRootCmd_Generate(t *testing.T) {
	dir := writeConfig(t)
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config-dir", dir, "generate", "space", "tourism", "--summarize"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Ideas (7):")
	assert.Contains(t, out.String(), "Summary: Core Concept")
}

func TestRootCmd_GenerateNeedsPrompt(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"generate"})
	assert.Error(t, cmd.Execute())
}

func TestLoadConfig_Overrides(t *testing.T) {
	dir := writeConfig(t)

	a := &App{ConfigDir: dir, LogLevel: "debug"}
	cfg, err := a.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, -1, cfg.Backend.MockLatencyMs)

	a = &App{ConfigDir: dir, Provider: "carrier-pigeon"}
	_, err = a.loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadConfig_DefaultsToWorkingDirectory(t *testing.T) {
	dir := writeConfig(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := (&App{}).loadConfig()
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Backend.MockLatencyMs)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestOpenLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "museboard.log")
	w, err := openLogFile(path)
	require.NoError(t, err)

	logger := newLogger(w, "info")
	logger.Debug("hidden")
	logger.Info("shown", "count", 3)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=shown count=3")
	assert.False(t, strings.Contains(string(data), "hidden"))

	discard, err := openLogFile("")
	require.NoError(t, err)
	assert.NoError(t, discard.Close())
}
