package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/labsim/internal/challenge"
	"github.com/san-kum/labsim/internal/dynamo"
)

const (
	DefaultFPS           = 30
	DefaultMaxDelta      = 0.04
	DefaultTrailCapacity = 500
	DefaultDuration      = 10.0
	DefaultDataDir       = "./runs"
)

type Config struct {
	Experiment    string  `yaml:"experiment"`
	Integrator    string  `yaml:"integrator"`
	Seed          int64   `yaml:"seed"`
	FPS           int     `yaml:"fps"`
	MaxDelta      float64 `yaml:"max_delta"`
	Duration      float64 `yaml:"duration"`
	LogLevel      string  `yaml:"log_level"`
	DataDir       string  `yaml:"data_dir"`
	TrailCapacity int     `yaml:"trail_capacity"`
	Sound         bool    `yaml:"sound"`
	Theme         string  `yaml:"theme"`

	Projectile ProjectileConfig `yaml:"projectile"`
	Pendulum   PendulumConfig   `yaml:"pendulum"`
	Circuit    CircuitConfig    `yaml:"circuit"`

	// Challenges replaces the built-in challenge list per experiment.
	Challenges map[string][]challenge.Spec `yaml:"challenges,omitempty"`
}

type ProjectileConfig struct {
	Angle        float64 `yaml:"angle"`
	Velocity     float64 `yaml:"velocity"`
	Gravity      float64 `yaml:"gravity"`
	Mass         float64 `yaml:"mass"`
	TimeScale    float64 `yaml:"time_scale"`
	LaunchHeight float64 `yaml:"launch_height"`
	GroundOffset float64 `yaml:"ground_offset"`
	LandingGuard float64 `yaml:"landing_guard"`
	Epsilon      float64 `yaml:"epsilon"`
	PreviewSteps int     `yaml:"preview_steps"`
	SavedShots   int     `yaml:"saved_shots"`
}

type PendulumConfig struct {
	Length        float64 `yaml:"length"`
	Gravity       float64 `yaml:"gravity"`
	Amplitude     float64 `yaml:"amplitude"`
	Damping       float64 `yaml:"damping"`
	Mass          float64 `yaml:"mass"`
	PhaseCapacity int     `yaml:"phase_capacity"`
}

type CircuitConfig struct {
	Voltage     float64 `yaml:"voltage"`
	Resistance  float64 `yaml:"resistance"`
	On          bool    `yaml:"on"`
	Markers     int     `yaml:"markers"`
	SpeedFactor float64 `yaml:"speed_factor"`
	SparkPower  float64 `yaml:"spark_power"`
	DangerPower float64 `yaml:"danger_power"`
	SparkRate   float64 `yaml:"spark_rate"`
}

func DefaultConfig() *Config {
	return &Config{
		Experiment:    "projectile",
		Integrator:    "symplectic",
		Seed:          1,
		FPS:           DefaultFPS,
		MaxDelta:      DefaultMaxDelta,
		Duration:      DefaultDuration,
		LogLevel:      "info",
		DataDir:       DefaultDataDir,
		TrailCapacity: DefaultTrailCapacity,
		Theme:         "default",
		Projectile: ProjectileConfig{
			Angle:        45,
			Velocity:     20,
			Gravity:      9.8,
			Mass:         1,
			TimeScale:    1.2,
			LandingGuard: 0.1,
			Epsilon:      0.01,
			PreviewSteps: 80,
			SavedShots:   5,
		},
		Pendulum: PendulumConfig{
			Length:        2,
			Gravity:       9.8,
			Amplitude:     30,
			Mass:          0.5,
			PhaseCapacity: 600,
		},
		Circuit: CircuitConfig{
			Voltage:     12,
			Resistance:  10,
			On:          true,
			Markers:     20,
			SpeedFactor: 0.08,
			SparkPower:  40,
			DangerPower: 50,
			SparkRate:   5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the solvers treat as preconditions.
func (c *Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("fps must be positive")
	case c.MaxDelta <= 0:
		return fmt.Errorf("max_delta must be positive")
	case c.Projectile.Gravity <= 0 || c.Pendulum.Gravity <= 0:
		return fmt.Errorf("gravity must be positive")
	case c.Pendulum.Length <= 0:
		return fmt.Errorf("pendulum length must be positive")
	case c.Circuit.Resistance <= 0:
		return fmt.Errorf("circuit resistance must be positive")
	case c.Projectile.TimeScale <= 0:
		return fmt.Errorf("projectile time_scale must be positive")
	}
	for exp, specs := range c.Challenges {
		for _, s := range specs {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("challenges[%s]: %w", exp, err)
			}
		}
	}
	return nil
}

func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

func (c *Config) MaxDeltaDuration() time.Duration {
	return time.Duration(c.MaxDelta * float64(time.Second))
}

func (p ProjectileConfig) Params() dynamo.Params {
	return dynamo.Params{
		"angle":    p.Angle,
		"velocity": p.Velocity,
		"gravity":  p.Gravity,
		"mass":     p.Mass,
	}
}

func (p PendulumConfig) Params() dynamo.Params {
	return dynamo.Params{
		"length":    p.Length,
		"gravity":   p.Gravity,
		"amplitude": p.Amplitude,
		"damping":   p.Damping,
		"mass":      p.Mass,
	}
}

func (c CircuitConfig) Params() dynamo.Params {
	on := 0.0
	if c.On {
		on = 1
	}
	return dynamo.Params{
		"voltage":    c.Voltage,
		"resistance": c.Resistance,
		"power":      on,
	}
}

// Params returns the starting parameter set for experiment.
func (c *Config) Params(experiment string) (dynamo.Params, error) {
	switch experiment {
	case "projectile":
		return c.Projectile.Params(), nil
	case "pendulum":
		return c.Pendulum.Params(), nil
	case "ohms-law":
		return c.Circuit.Params(), nil
	}
	return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownExperiment, experiment)
}

// ApplyParams writes overrides back into the experiment's block.
func (c *Config) ApplyParams(experiment string, p dynamo.Params) error {
	for _, k := range p.Keys() {
		v := p[k]
		var ok bool
		switch experiment {
		case "projectile":
			ok = setField(map[string]*float64{
				"angle": &c.Projectile.Angle, "velocity": &c.Projectile.Velocity,
				"gravity": &c.Projectile.Gravity, "mass": &c.Projectile.Mass,
			}, k, v)
		case "pendulum":
			ok = setField(map[string]*float64{
				"length": &c.Pendulum.Length, "gravity": &c.Pendulum.Gravity,
				"amplitude": &c.Pendulum.Amplitude, "damping": &c.Pendulum.Damping,
				"mass": &c.Pendulum.Mass,
			}, k, v)
		case "ohms-law":
			if k == "power" {
				c.Circuit.On = v >= 0.5
				ok = true
			} else {
				ok = setField(map[string]*float64{
					"voltage": &c.Circuit.Voltage, "resistance": &c.Circuit.Resistance,
				}, k, v)
			}
		default:
			return fmt.Errorf("%w: %s", dynamo.ErrUnknownExperiment, experiment)
		}
		if !ok {
			return &dynamo.ParamError{Name: k, Wrapped: dynamo.ErrUnknownParam}
		}
	}
	return nil
}

func setField(fields map[string]*float64, name string, v float64) bool {
	f, ok := fields[name]
	if ok {
		*f = v
	}
	return ok
}
