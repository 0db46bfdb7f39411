// Package motion turns raw inertial samples into smoothed, classified
// movement intensity. It is the numeric front half of the engine: pure,
// deterministic, and free of timers or collaborators.
package motion

import (
	"math"
	"time"
)

// Vec3 is a 3-axis sensor reading.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sample is one inertial measurement: user acceleration in g and rotation
// rate in rad/s, timestamped at acquisition. Samples are produced by a
// sensor feed and consumed exactly once by the filter.
type Sample struct {
	Accel Vec3      `json:"accel"`
	Gyro  Vec3      `json:"gyro"`
	At    time.Time `json:"at"`
}

// dominanceFloor is the divisor guard for Dominance. Magnitudes below this
// are indistinguishable from sensor noise, so the ratio saturates instead
// of blowing up.
const dominanceFloor = 1e-3

// Dominance reports how rotation-heavy a movement is as the ratio of gyro
// magnitude to accel magnitude. A near-zero accel magnitude is treated as
// the floor value, so a twist with no translation reads as a large ratio
// rather than a fault.
func Dominance(accelMag, gyroMag float64) float64 {
	if accelMag < dominanceFloor {
		accelMag = dominanceFloor
	}
	return gyroMag / accelMag
}
