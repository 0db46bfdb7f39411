package feed

import (
	"math"
	"sync"
	"time"

	"github.com/exerrika/muve/internal/motion"
)

// simPhase is one segment of the simulated workout loop.
type simPhase struct {
	name     string
	duration time.Duration
	accelMag float64 // g
	gyroMag  float64 // rad/s
}

// defaultPhases cycles rest → walk → jog → sprint → cooldown, long enough
// in each segment for a stability period to elapse.
var defaultPhases = []simPhase{
	{name: "rest", duration: 8 * time.Second, accelMag: 0.05, gyroMag: 0.04},
	{name: "walk", duration: 10 * time.Second, accelMag: 0.45, gyroMag: 0.5},
	{name: "jog", duration: 10 * time.Second, accelMag: 1.1, gyroMag: 1.2},
	{name: "sprint", duration: 10 * time.Second, accelMag: 2.0, gyroMag: 2.4},
	{name: "cooldown", duration: 10 * time.Second, accelMag: 0.4, gyroMag: 0.45},
}

// Sim is a deterministic motion generator for demos and tests. It walks a
// fixed phase loop and jitters each sample with a seeded LCG, so two runs
// with the same seed produce identical streams.
type Sim struct {
	period time.Duration
	phases []simPhase
	rng    uint32

	mu   sync.Mutex
	stop chan struct{}
	done sync.WaitGroup
}

// NewSim creates a simulator at the given cadence. A zero period uses the
// default; a zero seed is a valid seed.
func NewSim(period time.Duration, seed uint32) *Sim {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Sim{
		period: period,
		phases: defaultPhases,
		rng:    seed,
	}
}

// Start implements engine.SensorFeed.
func (s *Sim) Start(emit func(motion.Sample)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})
	s.done.Add(1)
	go s.run(emit, s.stop)
	return nil
}

// Stop implements engine.SensorFeed. It returns once emission has ceased.
func (s *Sim) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	s.done.Wait()
}

func (s *Sim) run(emit Emit, stop chan struct{}) {
	defer s.done.Done()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	var elapsed time.Duration
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			phase := s.phaseAt(elapsed)
			elapsed += s.period
			emit(s.sampleFor(phase))
		}
	}
}

func (s *Sim) phaseAt(elapsed time.Duration) simPhase {
	var total time.Duration
	for _, p := range s.phases {
		total += p.duration
	}
	elapsed %= total
	for _, p := range s.phases {
		if elapsed < p.duration {
			return p
		}
		elapsed -= p.duration
	}
	return s.phases[0]
}

// next is an LCG (Numerical Recipes parameters) returning values in
// [-1,1]. Deterministic noise keeps simulated sessions reproducible.
func (s *Sim) next() float64 {
	s.rng = s.rng*1664525 + 1013904223
	return (float64(s.rng)/float64(math.MaxUint32))*2 - 1
}

func (s *Sim) sampleFor(p simPhase) (out motion.Sample) {
	accel := p.accelMag * (1 + 0.12*s.next())
	gyro := p.gyroMag * (1 + 0.12*s.next())

	// Spread the magnitude over the axes with a wandering direction so
	// the stream looks like worn-device data rather than a constant.
	ax, ay := s.next(), s.next()
	out.Accel.X = accel * 0.6 * ax
	out.Accel.Y = accel * 0.6 * ay
	out.Accel.Z = accel * axisRemainder(0.6*ax, 0.6*ay)
	gx, gy := s.next(), s.next()
	out.Gyro.X = gyro * 0.6 * gx
	out.Gyro.Y = gyro * 0.6 * gy
	out.Gyro.Z = gyro * axisRemainder(0.6*gx, 0.6*gy)
	out.At = time.Now()
	return out
}

// axisRemainder returns the z component that makes a unit direction out of
// the x and y fractions, keeping the vector norm equal to the magnitude.
func axisRemainder(fx, fy float64) float64 {
	rest := 1 - fx*fx - fy*fy
	if rest < 0 {
		return 0
	}
	return math.Sqrt(rest)
}
