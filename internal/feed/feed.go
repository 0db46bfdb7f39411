// Package feed implements sensor feeds that push motion samples into the
// engine at a fixed cadence: a deterministic simulator, a CSV replay
// source, and an MQTT subscriber for live phone/bridge data.
package feed

import (
	"time"

	"github.com/exerrika/muve/internal/motion"
)

// Emit is the engine-facing delivery callback.
type Emit func(motion.Sample)

// DefaultPeriod is the stock sampling cadence.
const DefaultPeriod = 100 * time.Millisecond

// wire is the flat sample encoding shared by the replay CSV schema and the
// MQTT JSON payload: a nanosecond timestamp plus the six inertial axes.
type wire struct {
	TimestampNs int64   `json:"timestamp_ns"`
	AccelX      float64 `json:"accel_x"`
	AccelY      float64 `json:"accel_y"`
	AccelZ      float64 `json:"accel_z"`
	GyroX       float64 `json:"gyro_x"`
	GyroY       float64 `json:"gyro_y"`
	GyroZ       float64 `json:"gyro_z"`
}

func (w wire) sample() motion.Sample {
	at := time.Now()
	if w.TimestampNs > 0 {
		at = time.Unix(0, w.TimestampNs)
	}
	return motion.Sample{
		Accel: motion.Vec3{X: w.AccelX, Y: w.AccelY, Z: w.AccelZ},
		Gyro:  motion.Vec3{X: w.GyroX, Y: w.GyroY, Z: w.GyroZ},
		At:    at,
	}
}
