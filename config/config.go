// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads the renderer configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the host application stores the configuration.
const DefaultPath = "/data/data/io.twoyi/files/renderer.yaml"

// Config holds the renderer configuration.
type Config struct {
	Renderer Renderer `yaml:"renderer"`
	// Device is the pipe device node.
	Device string `yaml:"device"`
	// Rootfs is the guest container root.
	Rootfs string `yaml:"rootfs"`
	// GuestLog receives the guest init output.
	GuestLog string  `yaml:"guest_log"`
	Display  Display `yaml:"display"`
	Debug    Debug   `yaml:"debug"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Renderer selects the rendering path. It is read once at start.
type Renderer struct {
	New bool `yaml:"new"`
}

// Display holds the surface metrics sent with Initialize.
type Display struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	XDPI   int `yaml:"xdpi"`
	YDPI   int `yaml:"ydpi"`
	FPS    int `yaml:"fps"`
}

// Debug controls the diagnostic recorder and socket taps.
type Debug struct {
	Enabled   bool   `yaml:"enabled"`
	Dir       string `yaml:"dir"`
	Taps      bool   `yaml:"taps"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Device:   "/dev/qemu_pipe",
		Rootfs:   "/data/data/io.twoyi/rootfs",
		GuestLog: "/data/data/io.twoyi/log.txt",
		Display: Display{
			Width:  720,
			Height: 1280,
			XDPI:   320,
			YDPI:   320,
			FPS:    60,
		},
		Debug: Debug{
			Dir:       "/data/data/io.twoyi/files/twoyi_renderer_debug",
			MaxSizeMB: 8,
		},
		LogLevel: "info",
	}
}

// Load reads the configuration from the given YAML file path.
// Fields absent from the file keep their defaults. If the file does not
// exist, Load returns Default with no error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size %dx%d must be positive", c.Display.Width, c.Display.Height))
	}
	if c.Display.FPS <= 0 {
		errs = append(errs, fmt.Errorf("display fps %d must be positive", c.Display.FPS))
	}
	if c.Display.XDPI < 0 || c.Display.YDPI < 0 {
		errs = append(errs, fmt.Errorf("display dpi %dx%d must not be negative", c.Display.XDPI, c.Display.YDPI))
	}
	if c.Device == "" {
		errs = append(errs, errors.New("device must be set"))
	}
	if c.Debug.MaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("debug max_size_mb %d must not be negative", c.Debug.MaxSizeMB))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the slog level for LogLevel, defaulting to Info.
func (c *Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}
