// Package config provides configuration loading for snn from YAML files.
// Zero values fall back to the engine defaults in internal/constants, so an
// empty or missing file yields a fully working configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Publicoprivado/snn/internal/constants"
	"gopkg.in/yaml.v3"
)

// Config contains all snn settings.
type Config struct {
	// Simulation contains engine timing and threshold settings.
	Simulation SimulationConfig `yaml:"simulation"`

	// Logging contains operational log settings.
	Logging LoggingConfig `yaml:"logging"`

	// Trace contains firing-trace recorder settings.
	Trace TraceConfig `yaml:"trace"`
}

// SimulationConfig configures engine timing. Durations are in milliseconds
// to match how the thresholds are usually discussed.
type SimulationConfig struct {
	// TickMs is the driver frame interval.
	TickMs int64 `yaml:"tick_ms"`

	// RefractoryMs is the post-firing window during which a neuron accepts
	// no charge and cannot re-fire.
	RefractoryMs int64 `yaml:"refractory_ms"`

	// FiringMs is how long a neuron stays in the Firing state.
	FiringMs int64 `yaml:"firing_ms"`

	// BiasTickMs is the recurring DC bias delivery interval.
	BiasTickMs int64 `yaml:"bias_tick_ms"`

	// SweepMs is the interval of the edge validation sweep.
	SweepMs int64 `yaml:"sweep_ms"`

	// NoteIntervalMs is the process-wide minimum spacing between notes.
	NoteIntervalMs int64 `yaml:"note_interval_ms"`

	// ProximityThreshold is the auto-wiring distance in world units.
	ProximityThreshold float64 `yaml:"proximity_threshold"`

	// Seed seeds the random sources (edge speeds, delivery jitter).
	// Zero means derive from wall time.
	Seed int64 `yaml:"seed"`
}

// LoggingConfig configures the operational logger.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `yaml:"level"`
}

// TraceConfig configures the firing-trace recorder.
type TraceConfig struct {
	// Path is the SQLite trace database location. Empty disables recording.
	Path string `yaml:"path"`
}

// DefaultConfig returns the configuration matching the engine constants.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickMs:             16,
			RefractoryMs:       constants.RefractoryPeriod.Milliseconds(),
			FiringMs:           constants.FiringDuration.Milliseconds(),
			BiasTickMs:         constants.BiasTickPeriod.Milliseconds(),
			SweepMs:            constants.ValidationSweepPeriod.Milliseconds(),
			NoteIntervalMs:     constants.MinNoteInterval.Milliseconds(),
			ProximityThreshold: constants.ProximityThreshold,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the configuration from path. A missing file returns the
// defaults; a present file has its zero-valued fields filled with defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	merge(cfg, &loaded)
	return cfg, nil
}

// merge copies non-zero fields of loaded over the defaults in cfg.
func merge(cfg, loaded *Config) {
	if loaded.Simulation.TickMs > 0 {
		cfg.Simulation.TickMs = loaded.Simulation.TickMs
	}
	if loaded.Simulation.RefractoryMs > 0 {
		cfg.Simulation.RefractoryMs = loaded.Simulation.RefractoryMs
	}
	if loaded.Simulation.FiringMs > 0 {
		cfg.Simulation.FiringMs = loaded.Simulation.FiringMs
	}
	if loaded.Simulation.BiasTickMs > 0 {
		cfg.Simulation.BiasTickMs = loaded.Simulation.BiasTickMs
	}
	if loaded.Simulation.SweepMs > 0 {
		cfg.Simulation.SweepMs = loaded.Simulation.SweepMs
	}
	if loaded.Simulation.NoteIntervalMs > 0 {
		cfg.Simulation.NoteIntervalMs = loaded.Simulation.NoteIntervalMs
	}
	if loaded.Simulation.ProximityThreshold > 0 {
		cfg.Simulation.ProximityThreshold = loaded.Simulation.ProximityThreshold
	}
	if loaded.Simulation.Seed != 0 {
		cfg.Simulation.Seed = loaded.Simulation.Seed
	}
	if loaded.Logging.Level != "" {
		cfg.Logging.Level = loaded.Logging.Level
	}
	if loaded.Trace.Path != "" {
		cfg.Trace.Path = loaded.Trace.Path
	}
}

// Tick returns the frame interval as a duration.
func (c *SimulationConfig) Tick() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// NoteInterval returns the minimum note spacing as a duration.
func (c *SimulationConfig) NoteInterval() time.Duration {
	return time.Duration(c.NoteIntervalMs) * time.Millisecond
}
