package motion

import (
	"errors"
	"fmt"
)

// Level is a discrete movement intensity. Levels are ordered: comparisons
// with < and > are meaningful.
type Level int

const (
	Calm Level = iota
	Moderate
	Active
	Energetic
)

// String returns the human-readable level name.
func (l Level) String() string {
	switch l {
	case Calm:
		return "calm"
	case Moderate:
		return "moderate"
	case Active:
		return "active"
	case Energetic:
		return "energetic"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Levels lists all intensity levels in ascending order.
var Levels = []Level{Calm, Moderate, Active, Energetic}

// ParseLevel converts a level name to a Level.
func ParseLevel(name string) (Level, error) {
	for _, l := range Levels {
		if l.String() == name {
			return l, nil
		}
	}
	return Calm, fmt.Errorf("unknown intensity level %q", name)
}

// Classifier tuning defaults, in fused-magnitude units.
const (
	DefaultCalmThreshold     = 0.2
	DefaultModerateThreshold = 0.8
	DefaultActiveThreshold   = 1.5
)

// ErrInvalidThresholds is returned when classification boundaries are not
// strictly increasing positive values.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds are the upper bounds of the Calm, Moderate and Active bands.
// Anything at or above Active classifies as Energetic.
type Thresholds struct {
	Calm     float64
	Moderate float64
	Active   float64
}

// DefaultThresholds returns the stock classification boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Calm:     DefaultCalmThreshold,
		Moderate: DefaultModerateThreshold,
		Active:   DefaultActiveThreshold,
	}
}

// Validate rejects boundaries that are not strictly increasing, or a calm
// boundary that is not positive. Invalid thresholds are never clamped.
func (t Thresholds) Validate() error {
	if t.Calm <= 0 {
		return fmt.Errorf("%w: calm boundary %v must be positive", ErrInvalidThresholds, t.Calm)
	}
	if t.Moderate <= t.Calm || t.Active <= t.Moderate {
		return fmt.Errorf("%w: boundaries %v/%v/%v must be strictly increasing",
			ErrInvalidThresholds, t.Calm, t.Moderate, t.Active)
	}
	return nil
}

// Classify maps a fused magnitude to its intensity level. The mapping is
// total and monotonic; negative inputs (which the filter cannot produce)
// read as zero.
func (t Thresholds) Classify(combined float64) Level {
	switch {
	case combined < t.Calm:
		return Calm
	case combined < t.Moderate:
		return Moderate
	case combined < t.Active:
		return Active
	default:
		return Energetic
	}
}
