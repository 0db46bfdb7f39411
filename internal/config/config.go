// Package config loads the YAML application configuration and maps it
// onto the engine's typed tuning. Missing values fall back to engine
// defaults; invalid values are rejected at load, never clamped.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/exerrika/muve/internal/engine"
	"github.com/exerrika/muve/internal/feed"
)

// EngineConfig is the YAML shape of the pipeline tuning. Durations are in
// milliseconds to keep recordings and configs unit-consistent.
type EngineConfig struct {
	SamplePeriodMs    int     `yaml:"sample_period_ms"`
	SmoothingAlpha    float64 `yaml:"smoothing_alpha"`
	AccelWeight       float64 `yaml:"accel_weight"`
	CalmThreshold     float64 `yaml:"calm_threshold"`
	ModerateThreshold float64 `yaml:"moderate_threshold"`
	ActiveThreshold   float64 `yaml:"active_threshold"`
	StabilityPeriodMs int     `yaml:"stability_period_ms"`
	TransitionDelayMs int     `yaml:"transition_delay_ms"`
	RampSteps         int     `yaml:"ramp_steps"`
	RampIntervalMs    int     `yaml:"ramp_interval_ms"`
	InitialVolume     float64 `yaml:"initial_volume"`
}

// FeedConfig selects and parameterizes the sensor source.
type FeedConfig struct {
	// Source is one of "simulate", "replay", "mqtt".
	Source string          `yaml:"source"`
	Seed   uint32          `yaml:"seed"`
	Replay ReplayConfig    `yaml:"replay"`
	MQTT   feed.MQTTConfig `yaml:"mqtt"`
}

type ReplayConfig struct {
	Path string `yaml:"path"`
	Loop bool   `yaml:"loop"`
}

// AudioConfig selects the playback sink.
type AudioConfig struct {
	// Output is "tone" or "silent".
	Output     string `yaml:"output"`
	SampleRate int    `yaml:"sample_rate"`
}

// LogConfig controls the structured session log.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the top-level structure of muve.yaml.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Feed   FeedConfig   `yaml:"feed"`
	Audio  AudioConfig  `yaml:"audio"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Feed:  FeedConfig{Source: "simulate"},
		Audio: AudioConfig{Output: "tone", SampleRate: 44100},
		Log:   LogConfig{Level: "info", File: "muve-session.log"},
	}
}

// Load reads and parses a YAML config file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// EngineConfig converts the YAML tuning into the engine's typed config,
// filling unset values with engine defaults and validating the result.
func (c Config) EngineConfig() (engine.Config, error) {
	ec := engine.DefaultConfig()
	e := c.Engine

	if e.SamplePeriodMs != 0 {
		ec.SamplePeriod = time.Duration(e.SamplePeriodMs) * time.Millisecond
	}
	if e.SmoothingAlpha != 0 {
		ec.SmoothingAlpha = e.SmoothingAlpha
	}
	if e.AccelWeight != 0 {
		ec.AccelWeight = e.AccelWeight
	}
	if e.CalmThreshold != 0 {
		ec.Thresholds.Calm = e.CalmThreshold
	}
	if e.ModerateThreshold != 0 {
		ec.Thresholds.Moderate = e.ModerateThreshold
	}
	if e.ActiveThreshold != 0 {
		ec.Thresholds.Active = e.ActiveThreshold
	}
	if e.StabilityPeriodMs != 0 {
		ec.StabilityPeriod = time.Duration(e.StabilityPeriodMs) * time.Millisecond
	}
	if e.TransitionDelayMs != 0 {
		ec.TransitionDelay = time.Duration(e.TransitionDelayMs) * time.Millisecond
	}
	if e.RampSteps != 0 {
		ec.RampSteps = e.RampSteps
	}
	if e.RampIntervalMs != 0 {
		ec.RampInterval = time.Duration(e.RampIntervalMs) * time.Millisecond
	}
	if e.InitialVolume != 0 {
		ec.InitialVolume = e.InitialVolume
	}

	if err := ec.Validate(); err != nil {
		return engine.Config{}, err
	}
	return ec, nil
}
