package ui

import "github.com/exerrika/muve/internal/motion"

// SmoothedMsg carries the filtered magnitudes for one sample.
type SmoothedMsg struct {
	Accel float64
	Gyro  float64
}

// IntensityMsg reports a change of the raw per-sample classification.
type IntensityMsg struct {
	Level motion.Level
}

// ConfirmedMsg reports a debounced transition confirmation.
type ConfirmedMsg struct {
	Level motion.Level
}

// ProgressMsg reports crossfade start/finish.
type ProgressMsg struct {
	InProgress bool
}

// FeedStoppedMsg reports that the sensor session ended.
type FeedStoppedMsg struct{}
