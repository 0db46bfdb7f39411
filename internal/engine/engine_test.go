package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/exerrika/muve/internal/motion"
	"github.com/exerrika/muve/internal/timing"
)

type fakeFeed struct {
	startErr error
	emit     func(motion.Sample)
	started  bool
	stopped  bool
}

func (f *fakeFeed) Start(emit func(motion.Sample)) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.emit = emit
	f.started = true
	return nil
}

func (f *fakeFeed) Stop() { f.stopped = true }

type fakeTrack struct {
	title string
	level motion.Level
}

func (t fakeTrack) TrackTitle() string       { return t.title }
func (t fakeTrack) TrackLevel() motion.Level { return t.level }

type fakeTracks struct {
	selected []motion.Level
	current  *fakeTrack
	empty    bool
}

func (f *fakeTracks) SelectTrack(level motion.Level) (TrackRef, bool) {
	f.selected = append(f.selected, level)
	if f.empty {
		return nil, false
	}
	f.current = &fakeTrack{title: "track-" + level.String(), level: level}
	return *f.current, true
}

func (f *fakeTracks) CurrentTrack() (TrackRef, bool) {
	if f.current == nil {
		return nil, false
	}
	return *f.current, true
}

// engineHarness wires an engine to fakes and records every observer event.
type engineHarness struct {
	sched  *timing.Manual
	feed   *fakeFeed
	tracks *fakeTracks
	out    *volumeLog
	eng    *Engine

	intensity []motion.Level
	confirmed []motion.Level
	progress  []bool
}

// testConfig uses a heavy smoothing factor so one or two samples settle the
// classification; the stock alpha needs dozens and would obscure the
// debounce timing under test.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothingAlpha = 0.9
	return cfg
}

func newEngineHarness(t *testing.T, cfg Config) *engineHarness {
	t.Helper()
	h := &engineHarness{
		sched:  timing.NewManual(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		feed:   &fakeFeed{},
		tracks: &fakeTracks{},
		out:    &volumeLog{},
	}
	eng, err := New(cfg, Deps{
		Feed:      h.feed,
		Tracks:    h.tracks,
		Audio:     h.out,
		Scheduler: h.sched,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.eng = eng
	eng.Subscribe(ObserverFuncs{
		OnIntensity: func(level motion.Level) { h.intensity = append(h.intensity, level) },
		OnConfirmed: func(level motion.Level) { h.confirmed = append(h.confirmed, level) },
		OnProgress:  func(inProgress bool) { h.progress = append(h.progress, inProgress) },
	})
	return h
}

func (h *engineHarness) start(t *testing.T) {
	t.Helper()
	if err := h.eng.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

// emitMagnitude pushes n samples whose fused magnitude converges to mag.
func (h *engineHarness) emitMagnitude(mag float64, n int) {
	for i := 0; i < n; i++ {
		h.feed.emit(motion.Sample{
			Accel: motion.Vec3{X: mag},
			Gyro:  motion.Vec3{Y: mag},
			At:    h.sched.Now(),
		})
	}
}

func TestEngineStartFailure(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.feed.startErr = errors.New("device busy")

	err := h.eng.Start()
	if err == nil {
		t.Fatal("Start with failing feed expected error, got nil")
	}
	if !errors.Is(err, ErrSensorUnavailable) {
		t.Errorf("error %v is not ErrSensorUnavailable", err)
	}
	if h.eng.Status().Running {
		t.Error("engine reports running after failed start")
	}
}

func TestEngineStartStop(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.start(t)

	if !h.feed.started {
		t.Fatal("feed not started")
	}
	st := h.eng.Status()
	if !st.Running {
		t.Error("status not running after start")
	}
	if st.Volume != 0.8 {
		t.Errorf("initial volume = %v, want 0.8", st.Volume)
	}

	h.emitMagnitude(1.2, 3)
	h.eng.Stop()

	if !h.feed.stopped {
		t.Error("feed not stopped")
	}
	st = h.eng.Status()
	if st.Running {
		t.Error("status still running after stop")
	}
	if st.Smoothed != (motion.Smoothed{}) {
		t.Errorf("smoothed state after stop = %+v, want zero", st.Smoothed)
	}
}

func TestEngineClassifiesAndNotifies(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.start(t)

	h.emitMagnitude(1.2, 2)
	if len(h.intensity) == 0 || h.intensity[len(h.intensity)-1] != motion.Active {
		t.Errorf("intensity events = %v, want ending in active", h.intensity)
	}

	st := h.eng.Status()
	if !st.HaveLevel || st.Level != motion.Active {
		t.Errorf("status level = %v (have=%v), want active", st.Level, st.HaveLevel)
	}
}

func TestEngineFullTransition(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.start(t)

	h.emitMagnitude(2.0, 3)
	h.sched.Advance(3 * time.Second)

	if len(h.confirmed) != 1 || h.confirmed[0] != motion.Energetic {
		t.Fatalf("confirmed = %v, want [energetic]", h.confirmed)
	}
	if len(h.progress) != 1 || !h.progress[0] {
		t.Fatalf("progress = %v, want [true] while crossfading", h.progress)
	}

	// Fade out: 10 steps down to exact silence, then the swap.
	h.sched.Advance(500 * time.Millisecond)
	if got := h.tracks.selected; len(got) != 1 || got[0] != motion.Energetic {
		t.Fatalf("selected = %v, want [energetic] after fade-out", got)
	}

	// Fade in: back to the captured volume, transition complete.
	h.sched.Advance(500 * time.Millisecond)
	if len(h.progress) != 2 || h.progress[1] {
		t.Fatalf("progress = %v, want [true false]", h.progress)
	}

	values := h.out.values
	if len(values) != 21 { // initial apply + 10 down + 10 up
		t.Fatalf("recorded %d volume writes, want 21", len(values))
	}
	if values[10] != 0 {
		t.Errorf("fade-out endpoint = %v, want exactly 0", values[10])
	}
	if last := values[20]; math.Abs(last-0.8) > 1e-12 {
		t.Errorf("fade-in endpoint = %v, want exactly 0.8", last)
	}

	st := h.eng.Status()
	if st.InProgress {
		t.Error("still in progress after fade-in completed")
	}
	if !st.HasTrack || st.TrackLevel != motion.Energetic {
		t.Errorf("status track = %q/%v, want the energetic selection", st.TrackTitle, st.TrackLevel)
	}
}

func TestEngineSuppressesRedundantMatch(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.tracks.current = &fakeTrack{title: "already energetic", level: motion.Energetic}
	h.start(t)

	h.emitMagnitude(2.0, 3)
	h.sched.Advance(3 * time.Second)

	// The confirmation is still reported, but no playback action follows.
	if len(h.confirmed) != 1 || h.confirmed[0] != motion.Energetic {
		t.Fatalf("confirmed = %v, want [energetic]", h.confirmed)
	}
	if len(h.tracks.selected) != 0 {
		t.Errorf("selected = %v, want no selection", h.tracks.selected)
	}
	if len(h.progress) != 0 {
		t.Errorf("progress = %v, want no crossfade", h.progress)
	}
	if len(h.out.values) != 1 { // the initial volume apply only
		t.Errorf("volume writes = %v, want only the initial apply", h.out.values)
	}
}

func TestEngineSuppressesDuringCooldown(t *testing.T) {
	cfg := testConfig()
	cfg.TransitionDelay = time.Hour
	h := newEngineHarness(t, cfg)
	h.start(t)

	// First transition runs to completion.
	h.emitMagnitude(2.0, 3)
	h.sched.Advance(3 * time.Second)
	h.sched.Advance(time.Second)
	if len(h.tracks.selected) != 1 {
		t.Fatalf("selected = %v, want one selection", h.tracks.selected)
	}

	// A second confirmed change lands well inside the cooldown window.
	h.emitMagnitude(0.05, 4)
	h.sched.Advance(3 * time.Second)

	if len(h.confirmed) != 2 || h.confirmed[1] != motion.Calm {
		t.Fatalf("confirmed = %v, want [energetic calm]", h.confirmed)
	}
	if len(h.tracks.selected) != 1 {
		t.Errorf("selected = %v, want the cooldown to suppress the second swap", h.tracks.selected)
	}
	if len(h.progress) != 2 {
		t.Errorf("progress = %v, want only the first crossfade's pair", h.progress)
	}
}

func TestEngineRejectsConfirmationWhileCrossfading(t *testing.T) {
	cfg := testConfig()
	cfg.RampInterval = time.Second // each phase takes 10s
	h := newEngineHarness(t, cfg)
	h.start(t)

	h.emitMagnitude(2.0, 3)
	h.sched.Advance(3 * time.Second)
	if len(h.progress) != 1 || !h.progress[0] {
		t.Fatalf("progress = %v, want crossfade in flight", h.progress)
	}

	// A calm period confirms while the fade-out is still stepping; the
	// transition must be rejected, not queued.
	h.emitMagnitude(0.05, 4)
	h.sched.Advance(3 * time.Second)
	if len(h.confirmed) != 2 {
		t.Fatalf("confirmed = %v, want two confirmations", h.confirmed)
	}

	// Let the original crossfade finish: only the energetic swap happened.
	h.sched.Advance(20 * time.Second)
	if got := h.tracks.selected; len(got) != 1 || got[0] != motion.Energetic {
		t.Errorf("selected = %v, want [energetic] only", got)
	}
	if len(h.progress) != 2 || h.progress[1] {
		t.Errorf("progress = %v, want [true false]", h.progress)
	}
}

func TestEngineStopCancelsCrossfade(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.start(t)

	h.emitMagnitude(2.0, 3)
	h.sched.Advance(3 * time.Second)
	h.sched.Advance(150 * time.Millisecond) // three fade-out steps

	h.eng.Stop()

	if len(h.progress) != 2 || h.progress[1] {
		t.Fatalf("progress = %v, want the cancelled crossfade reported done", h.progress)
	}
	writes := len(h.out.values)
	if last := h.out.values[writes-1]; math.Abs(last-0.56) > 1e-12 {
		t.Errorf("volume after stop = %v, want 0.56 (the last completed step)", last)
	}

	// No further steps fire after the session ends.
	h.sched.Advance(time.Minute)
	if len(h.out.values) != writes {
		t.Errorf("ramp stepped after stop: %v", h.out.values[writes:])
	}
	if len(h.tracks.selected) != 0 {
		t.Errorf("selected = %v, want the pending swap dropped", h.tracks.selected)
	}
}

func TestEngineManualSelectBypassesPipeline(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.start(t)

	track, ok := h.eng.ManualSelect(motion.Active)
	if !ok {
		t.Fatal("ManualSelect reported no track")
	}
	if track.TrackLevel() != motion.Active {
		t.Errorf("manual track level = %v, want active", track.TrackLevel())
	}
	if got := h.eng.Mode(); got != ModeManual {
		t.Errorf("mode = %v, want manual", got)
	}
	if len(h.progress) != 0 {
		t.Errorf("progress = %v, want no crossfade for manual selection", h.progress)
	}

	// Sensor-driven confirmations are disabled in manual mode.
	h.emitMagnitude(2.0, 3)
	h.sched.Advance(time.Minute)
	if len(h.confirmed) != 0 {
		t.Errorf("confirmed = %v, want none in manual mode", h.confirmed)
	}
}

func TestEngineModeSwitchRestartsStabilityClock(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.start(t)

	// Hold a candidate almost to confirmation, then bounce through manual
	// mode: the candidate is dropped and must re-earn its full period.
	h.emitMagnitude(2.0, 3)
	h.sched.Advance(3*time.Second - time.Millisecond)
	h.eng.DisableAuto()
	h.eng.EnableAuto()

	h.sched.Advance(3*time.Second - time.Millisecond)
	if len(h.confirmed) != 0 {
		t.Fatalf("confirmed = %v before the fresh period elapsed", h.confirmed)
	}
	h.sched.Advance(time.Millisecond)
	if len(h.confirmed) != 1 || h.confirmed[0] != motion.Energetic {
		t.Errorf("confirmed = %v, want [energetic]", h.confirmed)
	}
}

func TestEngineSetVolume(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.start(t)

	h.eng.SetVolume(1.5)
	if got := h.eng.Status().Volume; got != 1.0 {
		t.Errorf("volume after SetVolume(1.5) = %v, want clamped 1.0", got)
	}
	h.eng.SetVolume(-0.2)
	if got := h.eng.Status().Volume; got != 0 {
		t.Errorf("volume after SetVolume(-0.2) = %v, want clamped 0", got)
	}
	h.eng.SetVolume(0.5)
	if last := h.out.values[len(h.out.values)-1]; last != 0.5 {
		t.Errorf("applied volume = %v, want 0.5", last)
	}
}

func TestEngineSetVolumeDeferredDuringCrossfade(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.start(t)

	h.emitMagnitude(2.0, 3)
	h.sched.Advance(3 * time.Second)
	h.sched.Advance(100 * time.Millisecond) // two fade-out steps

	h.eng.SetVolume(0.4)
	// The device volume is untouched mid-fade, and the running crossfade
	// still restores the volume it captured; the new target takes effect
	// from the next crossfade.
	if last := h.out.values[len(h.out.values)-1]; math.Abs(last-0.64) > 1e-12 {
		t.Errorf("volume mid-fade = %v, want 0.64 (the ramp's last step)", last)
	}

	h.sched.Advance(time.Second)
	if last := h.out.values[len(h.out.values)-1]; math.Abs(last-0.8) > 1e-12 {
		t.Errorf("fade-in endpoint = %v, want the captured 0.8", last)
	}
}

func TestEngineCalibrate(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.start(t)

	// No usable spread yet: calibration fails, thresholds stay stock.
	if _, err := h.eng.Calibrate(); err == nil {
		t.Error("Calibrate with no samples expected error, got nil")
	}
	if got := h.eng.Thresholds(); got != motion.DefaultThresholds() {
		t.Errorf("thresholds after failed calibration = %+v, want defaults", got)
	}

	h.emitMagnitude(0.05, 4)
	h.emitMagnitude(2.0, 6)
	got, err := h.eng.Calibrate()
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("calibrated thresholds %+v invalid: %v", got, err)
	}
	if h.eng.Thresholds() != got {
		t.Error("calibrated thresholds not installed")
	}
}

func TestEngineEmptyCatalogKeepsPlayback(t *testing.T) {
	h := newEngineHarness(t, testConfig())
	h.tracks.empty = true
	h.start(t)

	h.emitMagnitude(2.0, 3)
	h.sched.Advance(3 * time.Second)
	h.sched.Advance(time.Second)

	// Selection failed, but the crossfade still completes and restores
	// volume.
	if len(h.tracks.selected) != 1 {
		t.Fatalf("selected calls = %d, want 1", len(h.tracks.selected))
	}
	if len(h.progress) != 2 || h.progress[1] {
		t.Errorf("progress = %v, want completed crossfade", h.progress)
	}
	if last := h.out.values[len(h.out.values)-1]; math.Abs(last-0.8) > 1e-12 {
		t.Errorf("volume after failed swap = %v, want restored 0.8", last)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "alpha", mutate: func(c *Config) { c.SmoothingAlpha = 1.5 }},
		{name: "accel weight", mutate: func(c *Config) { c.AccelWeight = -1 }},
		{name: "thresholds", mutate: func(c *Config) { c.Thresholds.Moderate = 0.1 }},
		{name: "sample period", mutate: func(c *Config) { c.SamplePeriod = 0 }},
		{name: "stability period", mutate: func(c *Config) { c.StabilityPeriod = 0 }},
		{name: "transition delay", mutate: func(c *Config) { c.TransitionDelay = -time.Second }},
		{name: "ramp steps", mutate: func(c *Config) { c.RampSteps = 0 }},
		{name: "ramp interval", mutate: func(c *Config) { c.RampInterval = 0 }},
		{name: "initial volume", mutate: func(c *Config) { c.InitialVolume = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, Deps{}); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New with bad %s: error = %v, want ErrInvalidConfig", tt.name, err)
			}
		})
	}
}

func TestStyleForIsTotal(t *testing.T) {
	want := map[motion.Level]Style{
		motion.Calm:      StyleSmooth,
		motion.Moderate:  StyleSwing,
		motion.Active:    StyleBebop,
		motion.Energetic: StyleFusion,
	}
	for level, style := range want {
		if got := StyleFor(level); got != style {
			t.Errorf("StyleFor(%v) = %v, want %v", level, got, style)
		}
	}
}
