package engine

import "github.com/exerrika/muve/internal/motion"

// Observer receives engine events. Delivery is synchronous and in emission
// order; there is no queueing and no backpressure. Callbacks run with the
// engine lock held, so an observer must not call back into the engine.
type Observer interface {
	// SmoothedUpdated fires on every processed sample with the smoothed
	// per-channel magnitudes.
	SmoothedUpdated(accel, gyro float64)

	// IntensityChanged fires when the per-sample classification moves to
	// a different level. This is the raw, undebounced signal.
	IntensityChanged(level motion.Level)

	// TransitionConfirmed fires for every debounced confirmation, before
	// the suppression guards run. A confirmation may therefore be
	// reported without any playback action following it.
	TransitionConfirmed(level motion.Level)

	// TransitionProgress fires when a crossfade starts (true) and when it
	// completes or is cancelled (false).
	TransitionProgress(inProgress bool)
}

// ObserverFuncs adapts free functions to the Observer interface. Nil
// fields are skipped.
type ObserverFuncs struct {
	OnSmoothed  func(accel, gyro float64)
	OnIntensity func(level motion.Level)
	OnConfirmed func(level motion.Level)
	OnProgress  func(inProgress bool)
}

func (o ObserverFuncs) SmoothedUpdated(accel, gyro float64) {
	if o.OnSmoothed != nil {
		o.OnSmoothed(accel, gyro)
	}
}

func (o ObserverFuncs) IntensityChanged(level motion.Level) {
	if o.OnIntensity != nil {
		o.OnIntensity(level)
	}
}

func (o ObserverFuncs) TransitionConfirmed(level motion.Level) {
	if o.OnConfirmed != nil {
		o.OnConfirmed(level)
	}
}

func (o ObserverFuncs) TransitionProgress(inProgress bool) {
	if o.OnProgress != nil {
		o.OnProgress(inProgress)
	}
}
