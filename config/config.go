// Package config loads the simulation configuration from YAML
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/mapsim/engine"
)

var (
	ErrUnknownStreet = errors.New("unknown street")
	ErrDuplicateID   = errors.New("duplicate id")
)

// Config is the root document
type Config struct {
	Clock  ClockConfig   `yaml:"clock"`
	Frame  FrameConfig   `yaml:"frame"`
	Map    MapConfig     `yaml:"map"`
	Agents []AgentConfig `yaml:"agents"`
	Audio  AudioConfig   `yaml:"audio"`
}

// ClockConfig maps onto engine.SchedulerConfig
type ClockConfig struct {
	MovementPrecision float64 `yaml:"movement_precision"`
	UnitScale         float64 `yaml:"unit_scale"`
	PauseMode         string  `yaml:"pause_mode"`
	FailurePolicy     string  `yaml:"failure_policy"`
}

// FrameConfig configures the host frame loop
type FrameConfig struct {
	FPS int `yaml:"fps"`
}

// MapConfig describes static map features
type MapConfig struct {
	Streets []StreetConfig `yaml:"streets"`
	Units   []UnitConfig   `yaml:"units"`
}

// StreetConfig is a polyline given as [x, y] pairs
type StreetConfig struct {
	ID     string       `yaml:"id"`
	Points [][2]float64 `yaml:"points"`
}

// UnitConfig is a rectangular building footprint
type UnitConfig struct {
	ID    string `yaml:"id"`
	Glyph string `yaml:"glyph"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	W     int    `yaml:"w"`
	H     int    `yaml:"h"`
}

// AgentConfig places a walker on a street
type AgentConfig struct {
	ID     string  `yaml:"id"`
	Glyph  string  `yaml:"glyph"`
	Street string  `yaml:"street"`
	Speed  float64 `yaml:"speed"`  // Cells per simulation second
	Offset float64 `yaml:"offset"` // Starting distance along the street
}

// AudioConfig toggles lifecycle cues
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// Default returns a small self-contained scenario in millisecond host units
func Default() *Config {
	return &Config{
		Clock: ClockConfig{
			MovementPrecision: 0.01,
			UnitScale:         0.001,
			PauseMode:         engine.PauseFreeze.String(),
			FailurePolicy:     engine.FailFast.String(),
		},
		Frame: FrameConfig{FPS: engine.DefaultFPS},
		Map: MapConfig{
			Streets: []StreetConfig{
				{ID: "main", Points: [][2]float64{{2, 4}, {60, 4}}},
				{ID: "cross", Points: [][2]float64{{30, 1}, {30, 18}, {55, 18}}},
			},
			Units: []UnitConfig{
				{ID: "hall", Glyph: "H", X: 5, Y: 6, W: 9, H: 5},
				{ID: "depot", Glyph: "D", X: 36, Y: 8, W: 11, H: 6},
			},
		},
		Agents: []AgentConfig{
			{ID: "w1", Glyph: "a", Street: "main", Speed: 8},
			{ID: "w2", Glyph: "b", Street: "main", Speed: 5, Offset: 30},
			{ID: "w3", Glyph: "c", Street: "cross", Speed: 6},
		},
		Audio: AudioConfig{Volume: 0.3},
	}
}

// Load reads and validates a YAML file; fields absent from the file keep their Default values
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// Validate rejects values that would fail later in the scheduler or the world builder
func (c *Config) Validate() error {
	if _, err := c.Scheduler(); err != nil {
		return err
	}
	if c.Frame.FPS < 0 {
		return &engine.ConfigurationError{Field: "frame.fps", Value: c.Frame.FPS, Err: errors.New("must not be negative")}
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return &engine.ConfigurationError{Field: "audio.volume", Value: c.Audio.Volume, Err: errors.New("must be within [0, 1]")}
	}

	ids := make(map[string]struct{})
	claim := func(field, id string) error {
		if id == "" {
			return &engine.ConfigurationError{Field: field, Value: id, Err: errors.New("id is required")}
		}
		if _, ok := ids[id]; ok {
			return &engine.ConfigurationError{Field: field, Value: id, Err: ErrDuplicateID}
		}
		ids[id] = struct{}{}
		return nil
	}

	streets := make(map[string]struct{}, len(c.Map.Streets))
	for _, st := range c.Map.Streets {
		if err := claim("map.streets.id", st.ID); err != nil {
			return err
		}
		if len(st.Points) < 2 {
			return &engine.ConfigurationError{Field: "map.streets.points", Value: st.ID, Err: errors.New("needs at least two points")}
		}
		streets[st.ID] = struct{}{}
	}
	for _, u := range c.Map.Units {
		if err := claim("map.units.id", u.ID); err != nil {
			return err
		}
		if u.W < 2 || u.H < 2 {
			return &engine.ConfigurationError{Field: "map.units.size", Value: u.ID, Err: errors.New("width and height must be at least 2")}
		}
	}
	for _, a := range c.Agents {
		if err := claim("agents.id", a.ID); err != nil {
			return err
		}
		if _, ok := streets[a.Street]; !ok {
			return &engine.ConfigurationError{Field: "agents.street", Value: a.Street, Err: ErrUnknownStreet}
		}
		if a.Speed < 0 {
			return &engine.ConfigurationError{Field: "agents.speed", Value: a.Speed, Err: errors.New("must not be negative")}
		}
	}
	return nil
}

// Scheduler converts the clock section into an engine.SchedulerConfig
func (c *Config) Scheduler() (engine.SchedulerConfig, error) {
	sc := engine.SchedulerConfig{
		MovementPrecision: c.Clock.MovementPrecision,
		UnitScale:         c.Clock.UnitScale,
	}
	if err := engine.ValidatePrecision(sc.MovementPrecision); err != nil {
		return sc, err
	}
	if err := engine.ValidateUnitScale(sc.UnitScale); err != nil {
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &cfgErr) {
			cfgErr.Field = "clock.unit_scale"
		}
		return sc, err
	}

	mode, err := engine.ParsePauseMode(c.Clock.PauseMode)
	if err != nil {
		return sc, &engine.ConfigurationError{Field: "clock.pause_mode", Value: c.Clock.PauseMode, Err: err}
	}
	sc.PauseMode = mode

	policy, err := engine.ParseFailurePolicy(c.Clock.FailurePolicy)
	if err != nil {
		return sc, &engine.ConfigurationError{Field: "clock.failure_policy", Value: c.Clock.FailurePolicy, Err: err}
	}
	sc.FailurePolicy = policy
	return sc, nil
}

// Glyph returns the first rune of s, or fallback when s is empty
func Glyph(s string, fallback rune) rune {
	for _, r := range s {
		return r
	}
	return fallback
}
