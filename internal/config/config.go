// Package config provides configuration management for the navigation server.
//
// Config file locations (priority order):
//  1. $INDOORNAV_CONFIG
//  2. ./indoornav.yaml
//  3. $XDG_CONFIG_HOME/indoornav/config.yaml
//  4. ~/.config/indoornav/config.yaml
//  5. /etc/indoornav/config.yaml
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"indoornav/internal/builder"
	"indoornav/internal/domain"
	"indoornav/internal/floorplan"
	"indoornav/internal/geometry"
	"indoornav/internal/pathfind"
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(15 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Database.Path == "" {
		c.Database.Path = "./indoornav.db"
	}
	if c.Database.KeepBuilds == 0 {
		c.Database.KeepBuilds = 50
	}

	def := builder.DefaultParams()
	p := &c.Builder.Params
	if p.MaxConnectionDistance == 0 {
		p.MaxConnectionDistance = def.MaxConnectionDistance
	}
	if p.MaxNeighbors == 0 {
		p.MaxNeighbors = def.MaxNeighbors
	}
	if p.FallbackCandidates == 0 {
		p.FallbackCandidates = def.FallbackCandidates
	}
	if p.RoomLinks == 0 {
		p.RoomLinks = def.RoomLinks
	}
	if p.RoomFallbackDistance == 0 {
		p.RoomFallbackDistance = def.RoomFallbackDistance
	}
	if p.SampleInterval == 0 {
		p.SampleInterval = def.SampleInterval
	}
	if c.Builder.CurveSteps == 0 {
		c.Builder.CurveSteps = geometry.DefaultCurveSteps
	}

	if c.Search.IterationFactor == 0 {
		c.Search.IterationFactor = pathfind.DefaultIterationFactor
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(500 * time.Millisecond)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid config: %s failed %s %s", e.Namespace(), e.Tag(), e.Param())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FloorOrder returns the configured floor order, or nil to defer to the definition
func (c *Config) FloorOrder() domain.FloorOrder {
	if len(c.Building.Floors) == 0 {
		return nil
	}
	out := make(domain.FloorOrder, 0, len(c.Building.Floors))
	for _, f := range c.Building.Floors {
		out = append(out, domain.FloorID(f))
	}
	return out
}

// PlanOptions returns the floor plan scanning options
func (c *Config) PlanOptions() floorplan.Options {
	return floorplan.Options{CurveSteps: c.Builder.CurveSteps}
}

// SlogLevel returns the slog level for the configured name
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing to w in the configured format
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Definition: %s, Floors: %v\n", c.Building.Definition, c.Building.Floors)
	summary += fmt.Sprintf("Linking: max_distance=%g neighbors=%d room_links=%d, Search: factor=%d cap=%d\n",
		c.Builder.MaxConnectionDistance, c.Builder.MaxNeighbors, c.Builder.RoomLinks, c.Search.IterationFactor, c.Search.MaxIterations)
	summary += fmt.Sprintf("Watch: %v (debounce %s), Log: %s/%s",
		c.Watch.Enabled, c.Watch.Debounce.Duration(), c.Log.Level, c.Log.Format)
	return summary
}
