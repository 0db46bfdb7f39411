// Package engine coordinates motion classification with adaptive playback
// transitions: it debounces intensity changes, applies suppression guards,
// and sequences crossfaded track swaps. The engine owns its debouncer and
// ramp controller outright and holds non-owning handles to the sensor,
// track and audio collaborators.
package engine

import (
	"errors"

	"github.com/exerrika/muve/internal/motion"
)

// ErrSensorUnavailable is returned by Start when the sensor feed cannot
// begin. No engine state is left active in that case.
var ErrSensorUnavailable = errors.New("sensor feed unavailable")

// TrackRef identifies a playable track and the intensity level it is
// associated with. The redundant-match guard compares against this level.
type TrackRef interface {
	TrackTitle() string
	TrackLevel() motion.Level
}

// TrackSelector is the track-selection collaborator. SelectTrack picks and
// starts a track for the given level, reporting false when the catalog has
// nothing suitable; CurrentTrack reports what is playing now.
type TrackSelector interface {
	SelectTrack(level motion.Level) (TrackRef, bool)
	CurrentTrack() (TrackRef, bool)
}

// AudioOutput is the playback volume collaborator. Only the ramp controller
// calls it; v is always in [0,1].
type AudioOutput interface {
	SetVolume(v float64)
}

// SensorFeed pushes motion samples into the engine at the sampling cadence.
// Start must fail without emitting samples when the source cannot begin;
// Stop must not emit after it returns.
type SensorFeed interface {
	Start(emit func(motion.Sample)) error
	Stop()
}

// Style is the musical style a confirmed intensity level maps to.
type Style string

const (
	StyleSmooth Style = "smooth"
	StyleSwing  Style = "swing"
	StyleBebop  Style = "bebop"
	StyleFusion Style = "fusion"
)

// StyleFor maps an intensity level to its playback style. The table is
// fixed and total.
func StyleFor(level motion.Level) Style {
	switch level {
	case motion.Calm:
		return StyleSmooth
	case motion.Moderate:
		return StyleSwing
	case motion.Active:
		return StyleBebop
	default:
		return StyleFusion
	}
}
