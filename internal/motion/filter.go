package motion

import (
	"errors"
	"fmt"
)

// Filter tuning defaults. The fusion weights favour acceleration because
// translation tracks overall body movement better than wrist rotation.
const (
	DefaultSmoothingAlpha = 0.3
	DefaultAccelWeight    = 0.7
)

// ErrInvalidFilter is returned when filter parameters are outside their
// valid ranges. Construction fails outright; values are never clamped.
var ErrInvalidFilter = errors.New("invalid filter configuration")

// Smoothed is the filter output for one sample: per-channel smoothed
// magnitudes plus the fused scalar that feeds classification.
type Smoothed struct {
	Accel    float64 // smoothed acceleration magnitude (g)
	Gyro     float64 // smoothed rotation-rate magnitude (rad/s)
	Combined float64 // accelWeight*Accel + (1-accelWeight)*Gyro
}

// Filter applies exponential smoothing to the per-sample magnitudes of
// both inertial channels and fuses them into a single scalar.
//
// Smoothing state starts at zero and converges toward the raw magnitude
// without overshoot; Reset returns it to zero when the sensor session ends.
type Filter struct {
	alpha       float64
	accelWeight float64

	accel float64
	gyro  float64
}

// NewFilter creates a filter with smoothing factor alpha in (0,1) and an
// acceleration fusion weight in [0,1]. The gyro weight is the complement.
func NewFilter(alpha, accelWeight float64) (*Filter, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("%w: smoothing alpha %v outside (0,1)", ErrInvalidFilter, alpha)
	}
	if accelWeight < 0 || accelWeight > 1 {
		return nil, fmt.Errorf("%w: accel weight %v outside [0,1]", ErrInvalidFilter, accelWeight)
	}
	return &Filter{alpha: alpha, accelWeight: accelWeight}, nil
}

// Update ingests one sample and returns the refreshed smoothed state.
func (f *Filter) Update(s Sample) Smoothed {
	f.accel = f.accel*(1-f.alpha) + s.Accel.Norm()*f.alpha
	f.gyro = f.gyro*(1-f.alpha) + s.Gyro.Norm()*f.alpha
	return f.Snapshot()
}

// Snapshot returns the current smoothed state without ingesting a sample.
func (f *Filter) Snapshot() Smoothed {
	return Smoothed{
		Accel:    f.accel,
		Gyro:     f.gyro,
		Combined: f.accel*f.accelWeight + f.gyro*(1-f.accelWeight),
	}
}

// Reset clears smoothing state back to zero.
func (f *Filter) Reset() {
	f.accel = 0
	f.gyro = 0
}
