// Package config provides JSON-based editor configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDir     = "pdfmarkup"
	configFile = "config.json"
)

// Config is the editor configuration. Zero values are replaced by Default on Load.
type Config struct {
	// Addr is the listen address of the websocket bridge. Empty disables the bridge.
	Addr string `json:"addr"`
	// Advertise publishes the bridge over mDNS.
	Advertise bool `json:"advertise"`

	// FontURL takes precedence over FontPath. Both empty selects the built-in Go Regular font.
	FontURL  string `json:"font_url,omitempty"`
	FontPath string `json:"font_path,omitempty"`

	DefaultColor string  `json:"default_color"`
	TextSize     float64 `json:"text_size"`
	LogLevel     string  `json:"log_level"`

	WindowWidth  float32 `json:"window_width"`
	WindowHeight float32 `json:"window_height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         ":8888",
		DefaultColor: "#000",
		TextSize:     18,
		LogLevel:     "info",
		WindowWidth:  1024,
		WindowHeight: 768,
	}
}

// Path returns ~/.config/pdfmarkup/config.json (or the platform equivalent).
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, appDir, configFile)
}

// Load reads the configuration at path. A missing file yields Default without error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var file Config
	if err := json.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.merge(file)
	return cfg, cfg.Validate()
}

// merge copies the non-zero fields of o over c.
func (c *Config) merge(o Config) {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	c.Advertise = c.Advertise || o.Advertise
	if o.FontURL != "" {
		c.FontURL = o.FontURL
	}
	if o.FontPath != "" {
		c.FontPath = o.FontPath
	}
	if o.DefaultColor != "" {
		c.DefaultColor = o.DefaultColor
	}
	if o.TextSize > 0 {
		c.TextSize = o.TextSize
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.WindowWidth > 0 {
		c.WindowWidth = o.WindowWidth
	}
	if o.WindowHeight > 0 {
		c.WindowHeight = o.WindowHeight
	}
}

// Validate reports configuration values the editor cannot use.
func (c Config) Validate() error {
	if c.TextSize <= 0 {
		return fmt.Errorf("text_size must be positive, got %v", c.TextSize)
	}
	if !strings.HasPrefix(c.DefaultColor, "#") {
		return fmt.Errorf("default_color must be a hex color, got %q", c.DefaultColor)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Save writes the configuration to path, creating parent directories.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Level returns the slog level named by LogLevel, falling back to Info.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
