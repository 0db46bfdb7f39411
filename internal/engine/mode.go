package engine

import (
	"go.uber.org/zap"

	"github.com/exerrika/muve/internal/motion"
)

// Mode selects the transition policy: automatic (sensor-driven) or manual.
type Mode int

const (
	ModeAuto Mode = iota
	ModeManual
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeManual {
		return "manual"
	}
	return "auto"
}

// Mode returns the active transition policy.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// EnableAuto switches to sensor-driven transitions. If a session is
// active, the current classified level is re-injected into the debouncer
// as a fresh observation: it still has to hold for the full stability
// period before anything is confirmed.
func (e *Engine) EnableAuto() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModeAuto {
		return
	}
	e.mode = ModeAuto
	e.log.Info("auto mode enabled")
	if e.running && e.haveLevel {
		e.deb.Observe(e.level)
	}
}

// DisableAuto switches to manual transitions. Any pending candidate is
// dropped silently; a crossfade already in flight keeps running.
func (e *Engine) DisableAuto() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModeManual {
		return
	}
	e.mode = ModeManual
	e.deb.Reset()
	e.log.Info("auto mode disabled")
}

// ManualSelect forces manual mode and asks the track collaborator for the
// given level directly, bypassing the debouncer, the suppression guards
// and the crossfade.
func (e *Engine) ManualSelect(level motion.Level) (TrackRef, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.mode = ModeManual
	e.deb.Reset()
	if e.tracks == nil {
		return nil, false
	}
	track, ok := e.tracks.SelectTrack(level)
	if !ok {
		e.log.Warn("manual selection found no track", zap.Stringer("level", level))
		return nil, false
	}
	e.log.Info("manual selection",
		zap.String("track", track.TrackTitle()), zap.Stringer("level", level))
	return track, true
}
