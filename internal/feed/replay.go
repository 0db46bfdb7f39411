package feed

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/exerrika/muve/internal/motion"
)

// replayHeader is the expected CSV column order: the wire encoding as
// written by common phone sensor loggers.
var replayHeader = []string{
	"timestamp_ns",
	"accel_x", "accel_y", "accel_z",
	"gyro_x", "gyro_y", "gyro_z",
}

// Replay feeds a recorded CSV session back into the engine at the
// configured cadence. The file is parsed fully at Start so a malformed
// recording fails fast instead of mid-session.
type Replay struct {
	path   string
	period time.Duration
	loop   bool

	samples []motion.Sample

	mu   sync.Mutex
	stop chan struct{}
	done sync.WaitGroup
}

// NewReplay creates a replay feed over the given CSV file.
func NewReplay(path string, period time.Duration, loop bool) *Replay {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Replay{path: path, period: period, loop: loop}
}

// Start implements engine.SensorFeed.
func (r *Replay) Start(emit func(motion.Sample)) error {
	samples, err := loadRecording(r.path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		return nil
	}
	r.samples = samples
	r.stop = make(chan struct{})
	r.done.Add(1)
	go r.run(emit, r.stop)
	return nil
}

// Stop implements engine.SensorFeed.
func (r *Replay) Stop() {
	r.mu.Lock()
	stop := r.stop
	r.stop = nil
	r.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	r.done.Wait()
}

func (r *Replay) run(emit Emit, stop chan struct{}) {
	defer r.done.Done()

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if i >= len(r.samples) {
				if !r.loop {
					return
				}
				i = 0
			}
			emit(r.samples[i])
			i++
		}
	}
}

// loadRecording parses a CSV sample log. A header row matching
// replayHeader is accepted and skipped.
func loadRecording(path string) ([]motion.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(replayHeader)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse recording %s: %w", path, err)
	}

	samples := make([]motion.Sample, 0, len(records))
	for i, rec := range records {
		if i == 0 && rec[0] == replayHeader[0] {
			continue
		}
		var w wire
		fields := []*float64{&w.AccelX, &w.AccelY, &w.AccelZ, &w.GyroX, &w.GyroY, &w.GyroZ}
		w.TimestampNs, err = strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("recording %s row %d: bad timestamp %q", path, i+1, rec[0])
		}
		for j, dst := range fields {
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("recording %s row %d: bad value %q", path, i+1, rec[j+1])
			}
			*dst = v
		}
		samples = append(samples, w.sample())
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("recording %s contains no samples", path)
	}
	return samples, nil
}
