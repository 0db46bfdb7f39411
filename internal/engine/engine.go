package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/exerrika/muve/internal/motion"
	"github.com/exerrika/muve/internal/timing"
)

// Deps are the engine's collaborators. Feed, Tracks and Audio are
// non-owning handles; nil entries are tolerated and simply disable the
// corresponding action. Scheduler defaults to wall-clock timers, Logger to
// a no-op logger and Calibrator to the extrema strategy.
type Deps struct {
	Feed       SensorFeed
	Tracks     TrackSelector
	Audio      AudioOutput
	Scheduler  timing.Scheduler
	Logger     *zap.Logger
	Calibrator motion.Calibrator
}

// Engine is the adaptive transition engine. All mutable state is guarded
// by one mutex shared with the debouncer and ramp controller; sample
// ingestion, timer expiries and ramp steps all serialize through it, which
// gives the single-writer discipline the design assumes.
type Engine struct {
	cfg   Config
	log   *zap.Logger
	sched timing.Scheduler

	feed   SensorFeed
	tracks TrackSelector
	audio  AudioOutput

	mu         sync.Mutex
	running    bool
	mode       Mode
	filter     *motion.Filter
	thresholds motion.Thresholds
	calibrator motion.Calibrator
	stats      motion.SessionStats
	deb        *Debouncer
	ramp       *Ramp
	observers  []Observer

	smoothed  motion.Smoothed
	level     motion.Level
	haveLevel bool

	// Transition state: at most one crossfade in flight, and the time the
	// last accepted transition started (zero until the first one).
	inProgress bool
	lastChange time.Time

	volume      float64 // pre-ramp volume captured for the next crossfade
	lastApplied float64 // most recent value pushed to the audio output
}

// New validates the configuration and assembles an engine. Construction
// performs no I/O; the sensor feed starts only on Start.
func New(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	filter, err := motion.NewFilter(cfg.SmoothingAlpha, cfg.AccelWeight)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	sched := deps.Scheduler
	if sched == nil {
		sched = timing.NewWall()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	calibrator := deps.Calibrator
	if calibrator == nil {
		calibrator = motion.NewExtremaCalibrator()
	}

	e := &Engine{
		cfg:         cfg,
		log:         log,
		sched:       sched,
		feed:        deps.Feed,
		tracks:      deps.Tracks,
		audio:       deps.Audio,
		mode:        ModeAuto,
		filter:      filter,
		thresholds:  cfg.Thresholds,
		calibrator:  calibrator,
		volume:      cfg.InitialVolume,
		lastApplied: cfg.InitialVolume,
	}
	e.deb = NewDebouncer(&e.mu, sched, cfg.StabilityPeriod, e.confirmLocked)
	e.ramp = NewRamp(&e.mu, sched, volumeTap{e}, cfg.RampSteps, cfg.RampInterval)
	return e, nil
}

// volumeTap forwards ramp steps to the audio collaborator while recording
// the last applied value for status reporting. Runs under the engine lock.
type volumeTap struct {
	e *Engine
}

func (t volumeTap) SetVolume(v float64) {
	t.e.lastApplied = v
	if t.e.audio != nil {
		t.e.audio.SetVolume(v)
	}
}

// Start begins the sensor session. It fails with ErrSensorUnavailable when
// the feed cannot begin, leaving no partial state active.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("%w: already running", ErrSensorUnavailable)
	}
	if e.feed == nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: no feed configured", ErrSensorUnavailable)
	}
	e.running = true
	e.stats.Reset()
	e.mu.Unlock()

	if err := e.feed.Start(e.handleSample); err != nil {
		e.mu.Lock()
		e.running = false
		e.filter.Reset()
		e.deb.Reset()
		e.stats.Reset()
		e.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}

	// Establish the starting volume so the first fade has a known v0.
	e.mu.Lock()
	e.applyVolumeLocked(e.volume)
	e.mu.Unlock()

	e.log.Info("sensor session started",
		zap.Duration("sample_period", e.cfg.SamplePeriod),
		zap.Duration("stability_period", e.cfg.StabilityPeriod))
	return nil
}

// Stop ends the sensor session: the feed stops, the stability timer is
// cancelled and smoothing state resets to zero. A crossfade in flight is
// cancelled without completing its pending track swap; volume stays at the
// last stepped value.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	feed := e.feed
	e.mu.Unlock()

	// The feed may be mid-emit; stopping outside the lock lets that
	// sample drain through handleSample instead of deadlocking.
	feed.Stop()

	e.mu.Lock()
	e.deb.Reset()
	e.filter.Reset()
	e.smoothed = motion.Smoothed{}
	e.haveLevel = false
	if e.ramp.Active() {
		e.ramp.Cancel()
	}
	if e.inProgress {
		e.inProgress = false
		e.emitProgressLocked(false)
	}
	e.mu.Unlock()

	e.log.Info("sensor session stopped")
}

// handleSample is the feed callback: one sample in, smoothed state,
// classification and debouncing out.
func (e *Engine) handleSample(s motion.Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.smoothed = e.filter.Update(s)
	e.stats.Observe(e.smoothed.Combined)
	for _, o := range e.observers {
		o.SmoothedUpdated(e.smoothed.Accel, e.smoothed.Gyro)
	}

	level := e.thresholds.Classify(e.smoothed.Combined)
	if !e.haveLevel || level != e.level {
		e.level = level
		e.haveLevel = true
		for _, o := range e.observers {
			o.IntensityChanged(level)
		}
	}

	if e.mode == ModeAuto {
		e.deb.Observe(level)
	}
}

// confirmLocked is the orchestrator: it runs for every debounced
// confirmation, applies the suppression guards and sequences the
// crossfaded swap. Called with the engine lock held.
func (e *Engine) confirmLocked(level motion.Level) {
	for _, o := range e.observers {
		o.TransitionConfirmed(level)
	}

	style := StyleFor(level)
	now := e.sched.Now()

	// Interruption policy: reject while a crossfade is busy. The
	// debouncer keeps observing, so a level that still differs will be
	// confirmed again after a fresh stability period.
	if e.inProgress {
		e.log.Debug("transition rejected, crossfade busy", zap.Stringer("level", level))
		return
	}

	// Guard A: the current track already matches the confirmed level.
	if e.tracks != nil {
		if cur, ok := e.tracks.CurrentTrack(); ok && cur.TrackLevel() == level {
			e.log.Debug("transition suppressed, track already matches",
				zap.Stringer("level", level), zap.String("track", cur.TrackTitle()))
			return
		}
	}

	// Guard B: cooldown since the last accepted transition.
	if !e.lastChange.IsZero() && now.Sub(e.lastChange) < e.cfg.TransitionDelay {
		e.log.Debug("transition suppressed, cooldown",
			zap.Stringer("level", level),
			zap.Duration("since_last", now.Sub(e.lastChange)))
		return
	}

	e.inProgress = true
	e.lastChange = now
	e.emitProgressLocked(true)
	e.log.Info("transition started",
		zap.Stringer("level", level), zap.String("style", string(style)))

	v0 := e.volume
	e.ramp.FadeOut(v0, func() {
		e.swapTrackLocked(level, style)
		e.ramp.FadeIn(v0, func() {
			e.inProgress = false
			e.emitProgressLocked(false)
			e.log.Info("transition complete", zap.Stringer("level", level))
		})
	})
}

// swapTrackLocked asks the track collaborator for the confirmed level.
// Failure is local and non-fatal: existing playback stays as it was and
// the fade-in still restores volume.
func (e *Engine) swapTrackLocked(level motion.Level, style Style) {
	if e.tracks == nil {
		return
	}
	track, ok := e.tracks.SelectTrack(level)
	if !ok {
		e.log.Warn("no track available, keeping current playback",
			zap.Stringer("level", level), zap.String("style", string(style)))
		return
	}
	e.log.Info("track selected",
		zap.String("track", track.TrackTitle()),
		zap.Stringer("level", level),
		zap.String("style", string(style)))
}

// Calibrate runs the injected threshold strategy over the statistics of
// the current (or most recent) session and installs the result. Thresholds
// persist until the next calibration.
func (e *Engine) Calibrate() (motion.Thresholds, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.calibrator.Calibrate(e.stats)
	if err != nil {
		return e.thresholds, err
	}
	e.thresholds = t
	e.log.Info("thresholds recalibrated",
		zap.Float64("calm", t.Calm),
		zap.Float64("moderate", t.Moderate),
		zap.Float64("active", t.Active))
	return t, nil
}

// SetVolume sets the pre-ramp playback volume. While a crossfade is in
// flight only the captured target changes; the device volume follows on
// the next fade-in.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
	if !e.ramp.Active() {
		e.applyVolumeLocked(v)
	}
}

func (e *Engine) applyVolumeLocked(v float64) {
	e.lastApplied = v
	if e.audio != nil {
		e.audio.SetVolume(v)
	}
}

// Subscribe registers an observer. Registration order is delivery order.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

func (e *Engine) emitProgressLocked(inProgress bool) {
	for _, o := range e.observers {
		o.TransitionProgress(inProgress)
	}
}

// Thresholds returns the active classification boundaries.
func (e *Engine) Thresholds() motion.Thresholds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thresholds
}

// Status is a point-in-time snapshot for presentation layers.
type Status struct {
	Running  bool
	Mode     Mode
	Smoothed motion.Smoothed

	Level     motion.Level
	HaveLevel bool

	Confirmed    motion.Level
	Pending      bool
	PendingLevel motion.Level
	PendingFor   time.Duration

	InProgress bool
	Volume     float64

	TrackTitle string
	TrackLevel motion.Level
	HasTrack   bool

	Thresholds motion.Thresholds
}

// Status returns a consistent snapshot of the engine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Running:    e.running,
		Mode:       e.mode,
		Smoothed:   e.smoothed,
		Level:      e.level,
		HaveLevel:  e.haveLevel,
		Confirmed:  e.deb.Confirmed(),
		InProgress: e.inProgress,
		Volume:     e.lastApplied,
		Thresholds: e.thresholds,
	}
	if candidate, since, ok := e.deb.Pending(); ok {
		st.Pending = true
		st.PendingLevel = candidate
		st.PendingFor = e.sched.Now().Sub(since)
	}
	if e.tracks != nil {
		if cur, ok := e.tracks.CurrentTrack(); ok {
			st.HasTrack = true
			st.TrackTitle = cur.TrackTitle()
			st.TrackLevel = cur.TrackLevel()
		}
	}
	return st
}
