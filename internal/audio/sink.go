// Package audio implements the playback-volume collaborator. The engine
// only ever calls SetVolume; track rendering is a thin tone synthesizer so
// crossfades are audible end to end without any media decoding.
package audio

// Pattern is the minimal description a sink needs to render a track: a
// root pitch and a pulse rate that conveys the style's tempo.
type Pattern struct {
	RootHz float64
	BeatHz float64
}

// Sink is a playback device: volume control for the ramp plus pattern
// playback for the track catalog.
type Sink interface {
	SetVolume(v float64)
	Play(p Pattern)
	Close()
}

// Null is a Sink that renders nothing. Used headless and in tests.
type Null struct{}

func (Null) SetVolume(float64) {}
func (Null) Play(Pattern)      {}
func (Null) Close()            {}
