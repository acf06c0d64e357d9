package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/museboard/museboard/internal/core/spatial"
	"gopkg.in/yaml.v3"
)

// Config represents the full MuseBoard configuration
type Config struct {
	Board     BoardConfig     `json:"board" yaml:"board"`
	Layout    LayoutConfig    `json:"layout" yaml:"layout"`
	Translate TranslateConfig `json:"translate" yaml:"translate"`
	Backend   BackendConfig   `json:"backend" yaml:"backend"`
	UI        UIConfig        `json:"ui" yaml:"ui"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// BoardConfig sizes the board and its nodes in board units
type BoardConfig struct {
	Width      float64 `json:"width" yaml:"width" validate:"gt=0"`
	Height     float64 `json:"height" yaml:"height" validate:"gt=0"`
	NodeWidth  float64 `json:"nodeWidth" yaml:"nodeWidth" validate:"gt=0,ltefield=Width"`
	NodeHeight float64 `json:"nodeHeight" yaml:"nodeHeight" validate:"gt=0,ltefield=Height"`
}

// LayoutConfig is the grid used to place expanded ideas. A zero field takes
// its default, so an origin on the board edge is not expressible.
type LayoutConfig struct {
	Columns     int     `json:"columns" yaml:"columns" validate:"gte=1"`
	OriginX     float64 `json:"originX" yaml:"originX" validate:"gte=0"`
	OriginY     float64 `json:"originY" yaml:"originY" validate:"gte=0"`
	ColumnPitch float64 `json:"columnPitch" yaml:"columnPitch" validate:"gt=0"`
	RowPitch    float64 `json:"rowPitch" yaml:"rowPitch" validate:"gt=0"`
}

// TranslateConfig controls the translate operation. A zero offset on both
// axes takes the default offset.
type TranslateConfig struct {
	Languages []string `json:"languages" yaml:"languages" validate:"min=1,dive,required"`
	Limit     int      `json:"limit" yaml:"limit" validate:"gte=1"`
	OffsetX   float64  `json:"offsetX" yaml:"offsetX"`
	OffsetY   float64  `json:"offsetY" yaml:"offsetY"`
}

// BackendConfig selects and configures the idea provider. MockLatencyMs of 0
// takes the default; -1 answers immediately.
type BackendConfig struct {
	Provider      string        `json:"provider" yaml:"provider" validate:"oneof=mock ollama"`
	BaseURL       string        `json:"baseURL" yaml:"baseURL" validate:"omitempty,url"`
	Model         string        `json:"model" yaml:"model" validate:"required_if=Provider ollama"`
	TimeoutMs     int           `json:"timeoutMs" yaml:"timeoutMs" validate:"gt=0"`
	MockLatencyMs int           `json:"mockLatencyMs" yaml:"mockLatencyMs" validate:"gte=-1"`
	Breaker       BreakerConfig `json:"breaker" yaml:"breaker"`
}

// BreakerConfig configures the remote provider circuit breaker
type BreakerConfig struct {
	MaxRequests      uint32  `json:"maxRequests" yaml:"maxRequests" validate:"gte=1"`
	IntervalSec      int     `json:"intervalSec" yaml:"intervalSec" validate:"gte=0"`
	TimeoutSec       int     `json:"timeoutSec" yaml:"timeoutSec" validate:"gt=0"`
	FailureThreshold float64 `json:"failureThreshold" yaml:"failureThreshold" validate:"gt=0,lte=1"`
	MinRequests      uint32  `json:"minRequests" yaml:"minRequests" validate:"gte=1"`
}

// UIConfig maps the board onto terminal cells
type UIConfig struct {
	CellWidth     float64 `json:"cellWidth" yaml:"cellWidth" validate:"gt=0"`
	CellHeight    float64 `json:"cellHeight" yaml:"cellHeight" validate:"gt=0"`
	DoubleClickMs int     `json:"doubleClickMs" yaml:"doubleClickMs" validate:"gt=0"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	File  string `json:"file" yaml:"file"`
}

// Geometry returns the board geometry described by the config
func (b BoardConfig) Geometry() spatial.Geometry {
	return spatial.Geometry{
		BoardWidth:  b.Width,
		BoardHeight: b.Height,
		NodeWidth:   b.NodeWidth,
		NodeHeight:  b.NodeHeight,
	}
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Board: BoardConfig{
			Width:      1200,
			Height:     500,
			NodeWidth:  160,
			NodeHeight: 48,
		},
		Layout: LayoutConfig{
			Columns:     3,
			OriginX:     150,
			OriginY:     120,
			ColumnPitch: 180,
			RowPitch:    120,
		},
		Translate: TranslateConfig{
			Languages: []string{"spanish", "french", "hindi"},
			Limit:     3,
			OffsetX:   50,
			OffsetY:   50,
		},
		Backend: BackendConfig{
			Provider:      "mock",
			BaseURL:       "http://localhost:11434",
			Model:         "llama3",
			TimeoutMs:     30000,
			MockLatencyMs: 400,
			Breaker: BreakerConfig{
				MaxRequests:      1,
				IntervalSec:      60,
				TimeoutSec:       30,
				FailureThreshold: 0.6,
				MinRequests:      3,
			},
		},
		UI: UIConfig{
			CellWidth:     10,
			CellHeight:    16,
			DoubleClickMs: 400,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(homeDir, ".museboard", "logs", "museboard.log"),
		},
	}
}

// LoadConfig loads configuration from project path with priority:
// 1. .museboard.json in project root (with version migration support)
// 2. .museboard.yaml / .museboard.yml
// 3. Defaults
//
// The result is merged with defaults and validated.
func LoadConfig(projectPath string) (*Config, error) {
	cfg, err := readConfig(projectPath)
	if err != nil {
		return nil, err
	}
	cfg = MergeWithDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfig(projectPath string) (*Config, error) {
	jsonPath := filepath.Join(projectPath, ".museboard.json")
	if data, err := os.ReadFile(jsonPath); err == nil {
		cfg, err := ParseVersionedConfig(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse .museboard.json: %w", err)
		}
		return cfg, nil
	}

	for _, name := range []string{".museboard.yaml", ".museboard.yml"} {
		data, err := os.ReadFile(filepath.Join(projectPath, name))
		if err != nil {
			continue
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return &cfg, nil
	}

	return DefaultConfig(), nil
}

// SaveConfig saves configuration to the specified path with version information.
// Paths ending in .yaml or .yml are written as YAML.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = MarshalVersionedConfig(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeWithDefaults fills in missing values with defaults
func MergeWithDefaults(cfg *Config) *Config {
	defaults := DefaultConfig()

	// Board
	if cfg.Board.Width == 0 {
		cfg.Board.Width = defaults.Board.Width
	}
	if cfg.Board.Height == 0 {
		cfg.Board.Height = defaults.Board.Height
	}
	if cfg.Board.NodeWidth == 0 {
		cfg.Board.NodeWidth = defaults.Board.NodeWidth
	}
	if cfg.Board.NodeHeight == 0 {
		cfg.Board.NodeHeight = defaults.Board.NodeHeight
	}

	// Layout
	if cfg.Layout.Columns == 0 {
		cfg.Layout.Columns = defaults.Layout.Columns
	}
	if cfg.Layout.OriginX == 0 {
		cfg.Layout.OriginX = defaults.Layout.OriginX
	}
	if cfg.Layout.OriginY == 0 {
		cfg.Layout.OriginY = defaults.Layout.OriginY
	}
	if cfg.Layout.ColumnPitch == 0 {
		cfg.Layout.ColumnPitch = defaults.Layout.ColumnPitch
	}
	if cfg.Layout.RowPitch == 0 {
		cfg.Layout.RowPitch = defaults.Layout.RowPitch
	}

	// Translate
	if len(cfg.Translate.Languages) == 0 {
		cfg.Translate.Languages = defaults.Translate.Languages
	}
	if cfg.Translate.Limit == 0 {
		cfg.Translate.Limit = defaults.Translate.Limit
	}
	if cfg.Translate.OffsetX == 0 && cfg.Translate.OffsetY == 0 {
		cfg.Translate.OffsetX = defaults.Translate.OffsetX
		cfg.Translate.OffsetY = defaults.Translate.OffsetY
	}

	// Backend
	if cfg.Backend.Provider == "" {
		cfg.Backend.Provider = defaults.Backend.Provider
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = defaults.Backend.BaseURL
	}
	if cfg.Backend.Model == "" {
		cfg.Backend.Model = defaults.Backend.Model
	}
	if cfg.Backend.TimeoutMs == 0 {
		cfg.Backend.TimeoutMs = defaults.Backend.TimeoutMs
	}
	if cfg.Backend.MockLatencyMs == 0 {
		cfg.Backend.MockLatencyMs = defaults.Backend.MockLatencyMs
	}
	if cfg.Backend.Breaker.MaxRequests == 0 {
		cfg.Backend.Breaker.MaxRequests = defaults.Backend.Breaker.MaxRequests
	}
	if cfg.Backend.Breaker.IntervalSec == 0 {
		cfg.Backend.Breaker.IntervalSec = defaults.Backend.Breaker.IntervalSec
	}
	if cfg.Backend.Breaker.TimeoutSec == 0 {
		cfg.Backend.Breaker.TimeoutSec = defaults.Backend.Breaker.TimeoutSec
	}
	if cfg.Backend.Breaker.FailureThreshold == 0 {
		cfg.Backend.Breaker.FailureThreshold = defaults.Backend.Breaker.FailureThreshold
	}
	if cfg.Backend.Breaker.MinRequests == 0 {
		cfg.Backend.Breaker.MinRequests = defaults.Backend.Breaker.MinRequests
	}

	// UI
	if cfg.UI.CellWidth == 0 {
		cfg.UI.CellWidth = defaults.UI.CellWidth
	}
	if cfg.UI.CellHeight == 0 {
		cfg.UI.CellHeight = defaults.UI.CellHeight
	}
	if cfg.UI.DoubleClickMs == 0 {
		cfg.UI.DoubleClickMs = defaults.UI.DoubleClickMs
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaults.Log.File
	}

	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the config against its struct tags
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load is a convenience function that loads config from current directory
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadConfig(cwd)
}
