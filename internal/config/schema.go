package config

import (
	"time"

	"indoornav/internal/builder"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Building BuildingConfig `yaml:"building"`
	Builder  BuilderConfig  `yaml:"builder"`
	Search   SearchConfig   `yaml:"search"`
	Watch    WatchConfig    `yaml:"watch"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr         string   `yaml:"addr" validate:"required"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
	// KeepBuilds bounds the stored build history
	KeepBuilds int `yaml:"keep_builds" validate:"gte=1"`
}

// BuildingConfig points at the building definition.
// Floors listed here override the floor order found in the definition.
type BuildingConfig struct {
	Definition string   `yaml:"definition"`
	Floors     []string `yaml:"floors,omitempty" validate:"dive,required"`
}

// BuilderConfig tunes graph construction from floor plans
type BuilderConfig struct {
	builder.Params `yaml:",inline"`
	CurveSteps     int `yaml:"curve_steps" validate:"gte=1"`
}

// SearchConfig tunes route search
type SearchConfig struct {
	// IterationFactor times the node count bounds A* iterations
	IterationFactor int `yaml:"iteration_factor" validate:"gte=1"`
	// MaxIterations is a hard cap on top of the factor; 0 disables it
	MaxIterations int `yaml:"max_iterations" validate:"gte=0"`
}

// WatchConfig controls rebuilding when source files change
type WatchConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Debounce Duration `yaml:"debounce"`
}

// LogConfig controls logging output
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
