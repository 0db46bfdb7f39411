package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/exerrika/muve/internal/motion"
)

// Engine timing defaults.
const (
	DefaultSamplePeriod    = 100 * time.Millisecond
	DefaultStabilityPeriod = 3 * time.Second
	DefaultTransitionDelay = 1 * time.Second
	DefaultRampSteps       = 10
	DefaultRampInterval    = 50 * time.Millisecond
	DefaultInitialVolume   = 0.8
)

// ErrInvalidConfig is returned when engine parameters are out of range.
// Construction rejects bad values outright; nothing is silently clamped.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Config carries every tunable of the processing pipeline. Zero values are
// not usable; start from DefaultConfig and override.
type Config struct {
	// SamplePeriod is the expected cadence of the sensor feed. It is
	// informational for the engine (feeds own their tickers) but bounds
	// the pending-progress display.
	SamplePeriod time.Duration

	// SmoothingAlpha is the exponential smoothing factor, in (0,1).
	SmoothingAlpha float64

	// AccelWeight is the fusion weight of the acceleration channel in
	// [0,1]; the rotation channel gets the complement.
	AccelWeight float64

	// Thresholds are the classification boundaries.
	Thresholds motion.Thresholds

	// StabilityPeriod is how long a new classification must persist
	// before it is confirmed.
	StabilityPeriod time.Duration

	// TransitionDelay is the minimum spacing between two transitions.
	TransitionDelay time.Duration

	// RampSteps and RampInterval shape each crossfade phase.
	RampSteps    int
	RampInterval time.Duration

	// InitialVolume is the playback volume before any ramp, in [0,1].
	InitialVolume float64
}

// DefaultConfig returns the stock engine tuning.
func DefaultConfig() Config {
	return Config{
		SamplePeriod:    DefaultSamplePeriod,
		SmoothingAlpha:  motion.DefaultSmoothingAlpha,
		AccelWeight:     motion.DefaultAccelWeight,
		Thresholds:      motion.DefaultThresholds(),
		StabilityPeriod: DefaultStabilityPeriod,
		TransitionDelay: DefaultTransitionDelay,
		RampSteps:       DefaultRampSteps,
		RampInterval:    DefaultRampInterval,
		InitialVolume:   DefaultInitialVolume,
	}
}

// Validate checks every parameter range.
func (c Config) Validate() error {
	if c.SmoothingAlpha <= 0 || c.SmoothingAlpha >= 1 {
		return fmt.Errorf("%w: smoothing alpha %v outside (0,1)", ErrInvalidConfig, c.SmoothingAlpha)
	}
	if c.AccelWeight < 0 || c.AccelWeight > 1 {
		return fmt.Errorf("%w: accel weight %v outside [0,1]", ErrInvalidConfig, c.AccelWeight)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.SamplePeriod <= 0 {
		return fmt.Errorf("%w: sample period %v must be positive", ErrInvalidConfig, c.SamplePeriod)
	}
	if c.StabilityPeriod <= 0 {
		return fmt.Errorf("%w: stability period %v must be positive", ErrInvalidConfig, c.StabilityPeriod)
	}
	if c.TransitionDelay < 0 {
		return fmt.Errorf("%w: transition delay %v must not be negative", ErrInvalidConfig, c.TransitionDelay)
	}
	if c.RampSteps <= 0 {
		return fmt.Errorf("%w: ramp steps %d must be positive", ErrInvalidConfig, c.RampSteps)
	}
	if c.RampInterval <= 0 {
		return fmt.Errorf("%w: ramp interval %v must be positive", ErrInvalidConfig, c.RampInterval)
	}
	if c.InitialVolume < 0 || c.InitialVolume > 1 {
		return fmt.Errorf("%w: initial volume %v outside [0,1]", ErrInvalidConfig, c.InitialVolume)
	}
	return nil
}
