package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lisflood-diag/internal/charts"
	"lisflood-diag/internal/tss"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Reader    ReaderConfig    `yaml:"reader"`
	Charts    ChartsConfig    `yaml:"charts"`
	Reservoir ReservoirConfig `yaml:"reservoir"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"data_dir"`
	// Env is "production" to run gin in release mode.
	Env string `yaml:"env"`
}

type ReaderConfig struct {
	// Squeeze is a pointer so an absent key keeps the default (true).
	Squeeze      *bool    `yaml:"squeeze"`
	MissingValue *float64 `yaml:"missing_value"`
}

type ChartsConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Cmap      string  `yaml:"cmap"`
	LineWidth float64 `yaml:"line_width"`
}

// ReservoirConfig holds relative filling limits (0..1) drawn on reservoir
// charts. Unset limits are not drawn.
type ReservoirConfig struct {
	Conservative *float64 `yaml:"clim"`
	Normal       *float64 `yaml:"nlim"`
	Flood        *float64 `yaml:"flim"`
	FlowMax      float64  `yaml:"flow_max"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", DataDir: "."},
		Charts: ChartsConfig{Cmap: "viridis", LineWidth: 1},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads config over the defaults, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// Relative data dirs are interpreted relative to the config file.
	if c.Server.DataDir != "" && !filepath.IsAbs(c.Server.DataDir) {
		c.Server.DataDir = filepath.Join(filepath.Dir(path), c.Server.DataDir)
	}
	return c, nil
}

// ApplyEnv overlays the API_PORT, DATA_DIR and API_ENV environment variables.
func (c *Config) ApplyEnv() {
	if port := os.Getenv("API_PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		c.Server.DataDir = dir
	}
	if env := os.Getenv("API_ENV"); env != "" {
		c.Server.Env = env
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.DataDir == "" {
		return errors.New("server.data_dir is required")
	}
	if c.Charts.Width < 0 || c.Charts.Height < 0 {
		return fmt.Errorf("charts size must be non-negative, got %gx%g", c.Charts.Width, c.Charts.Height)
	}
	if c.Charts.LineWidth < 0 {
		return fmt.Errorf("charts.line_width must be non-negative, got %g", c.Charts.LineWidth)
	}
	if _, err := charts.ColorMap(c.Charts.Cmap); err != nil {
		return fmt.Errorf("charts.cmap invalid: %w", err)
	}
	limits := []struct {
		key string
		v   *float64
	}{
		{"reservoir.clim", c.Reservoir.Conservative},
		{"reservoir.nlim", c.Reservoir.Normal},
		{"reservoir.flim", c.Reservoir.Flood},
	}
	for _, l := range limits {
		if l.v != nil && (*l.v < 0 || *l.v > 1) {
			return fmt.Errorf("%s must be within [0, 1], got %g", l.key, *l.v)
		}
	}
	return nil
}

// ReaderOptions converts the reader section into TSS read options.
func (c *Config) ReaderOptions() *tss.Options {
	opts := tss.DefaultOptions()
	if c.Reader.Squeeze != nil {
		opts.Squeeze = *c.Reader.Squeeze
	}
	opts.MissingValue = c.Reader.MissingValue
	return opts
}

// ReservoirOptions converts the reservoir and charts sections into chart
// options.
func (c *Config) ReservoirOptions() charts.ReservoirOptions {
	return charts.ReservoirOptions{
		Conservative: c.Reservoir.Conservative,
		Normal:       c.Reservoir.Normal,
		Flood:        c.Reservoir.Flood,
		FlowMax:      c.Reservoir.FlowMax,
		Width:        c.Charts.Width,
		Height:       c.Charts.Height,
	}
}

// MapOptions converts the charts section into map/time-series options.
func (c *Config) MapOptions() charts.MapOptions {
	return charts.MapOptions{
		Cmap:      c.Charts.Cmap,
		LineWidth: c.Charts.LineWidth,
		Width:     c.Charts.Width,
		Height:    c.Charts.Height,
	}
}
