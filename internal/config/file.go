// Package config loads the viewer configuration file and holds the
// settings that can change at runtime.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors the TOML file.
type Config struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	Loader LoaderConfig `toml:"loader"`
	Camera CameraConfig `toml:"camera"`
	Sync   SyncConfig   `toml:"sync"`
	Log    LogConfig    `toml:"log"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type RenderConfig struct {
	// SelectionColor is packed RGB, e.g. 0x047efb.
	SelectionColor int32   `toml:"selection_color"`
	GhostOpacity   float32 `toml:"ghost_opacity"`
	FPSLimit       int     `toml:"fps_limit"`
	Wireframe      bool    `toml:"wireframe"`
}

type LoaderConfig struct {
	Workers     int `toml:"workers"`
	QueueSize   int `toml:"queue_size"`
	MaxPerFrame int `toml:"max_per_frame"`
}

type CameraConfig struct {
	FOV  float32 `toml:"fov"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

// SyncConfig enables camera sharing. Listen hosts a hub on that address;
// URL joins one.
type SyncConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Listen  string `toml:"listen"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{Width: 1280, Height: 800, Title: "geoview", VSync: false},
		Render: RenderConfig{SelectionColor: 0x047efb, GhostOpacity: 0.1, FPSLimit: 60},
		Loader: LoaderConfig{Workers: 4, QueueSize: 256, MaxPerFrame: 512},
		Camera: CameraConfig{FOV: 55, Near: 0.1, Far: 100000},
		Sync:   SyncConfig{URL: "ws://127.0.0.1:8787/sync"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Normalize()
	return c, nil
}

// Save writes c to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Normalize clamps values into their usable ranges.
func (c *Config) Normalize() {
	if c.Window.Width < 320 {
		c.Window.Width = 320
	}
	if c.Window.Height < 240 {
		c.Window.Height = 240
	}
	c.Render.SelectionColor &= 0xFFFFFF
	c.Render.GhostOpacity = clamp32(c.Render.GhostOpacity, 0, 1)
	c.Render.FPSLimit = clampFPS(c.Render.FPSLimit)
	if c.Loader.Workers < 1 {
		c.Loader.Workers = 1
	}
	if c.Loader.Workers > 64 {
		c.Loader.Workers = 64
	}
	if c.Loader.QueueSize < 1 {
		c.Loader.QueueSize = 1
	}
	if c.Loader.MaxPerFrame < 0 {
		c.Loader.MaxPerFrame = 0
	}
	c.Camera.FOV = clamp32(c.Camera.FOV, 10, 120)
	if c.Camera.Near <= 0 {
		c.Camera.Near = 0.1
	}
	if c.Camera.Far <= c.Camera.Near {
		c.Camera.Far = c.Camera.Near * 1e6
	}
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
