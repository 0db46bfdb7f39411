package motion

import (
	"errors"
	"fmt"
	"math"
)

// SessionStats accumulates the fused-magnitude extrema observed during a
// sensor session. It feeds threshold calibration.
type SessionStats struct {
	Min     float64
	Max     float64
	Samples int
}

// Observe folds one fused magnitude into the stats.
func (s *SessionStats) Observe(combined float64) {
	if s.Samples == 0 || combined < s.Min {
		s.Min = combined
	}
	if s.Samples == 0 || combined > s.Max {
		s.Max = combined
	}
	s.Samples++
}

// Reset clears the accumulated extrema.
func (s *SessionStats) Reset() {
	*s = SessionStats{}
}

// Calibrator recomputes classification thresholds from session statistics.
// The engine exposes the injection point; the strategy itself is
// replaceable.
type Calibrator interface {
	Calibrate(stats SessionStats) (Thresholds, error)
}

// ErrCalibration is returned when a strategy cannot derive usable
// thresholds from the observed session.
var ErrCalibration = errors.New("calibration failed")

// ExtremaCalibrator splits the observed magnitude range at fixed fractions.
// With too little spread between min and max the session is unusable and
// calibration fails rather than producing degenerate boundaries.
type ExtremaCalibrator struct {
	CalmFraction     float64 // default 0.15
	ModerateFraction float64 // default 0.45
	ActiveFraction   float64 // default 0.75
}

// NewExtremaCalibrator returns the stock extrema strategy.
func NewExtremaCalibrator() *ExtremaCalibrator {
	return &ExtremaCalibrator{
		CalmFraction:     0.15,
		ModerateFraction: 0.45,
		ActiveFraction:   0.75,
	}
}

// minCalibrationSpread is the smallest usable max-min magnitude range.
const minCalibrationSpread = 0.05

// Calibrate derives thresholds from the session extrema.
func (c *ExtremaCalibrator) Calibrate(stats SessionStats) (Thresholds, error) {
	if stats.Samples == 0 {
		return Thresholds{}, fmt.Errorf("%w: no samples observed", ErrCalibration)
	}
	span := stats.Max - stats.Min
	if span < minCalibrationSpread || math.IsNaN(span) {
		return Thresholds{}, fmt.Errorf("%w: magnitude spread too small", ErrCalibration)
	}
	t := Thresholds{
		Calm:     stats.Min + span*c.CalmFraction,
		Moderate: stats.Min + span*c.ModerateFraction,
		Active:   stats.Min + span*c.ActiveFraction,
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, fmt.Errorf("%w: %v", ErrCalibration, err)
	}
	return t, nil
}
