package audio

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/gen2brain/malgo"
)

// ToneSink renders the current pattern as a pulsed sine tone on the
// default playback device. Volume changes apply on the next buffer, which
// is well under one ramp step at typical buffer sizes.
type ToneSink struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	mu      sync.Mutex
	volume  float64
	pattern Pattern
	phase   float64
	beat    float64
	rate    float64
}

// NewToneSink opens the default playback device at the given sample rate.
func NewToneSink(sampleRate int) (*ToneSink, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %v", err)
	}

	s := &ToneSink{
		ctx:  ctx,
		rate: float64(sampleRate),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSamples, pInputSamples []byte, framecount uint32) {
			if len(pOutputSamples) == 0 {
				return
			}
			out := unsafe.Slice((*float32)(unsafe.Pointer(&pOutputSamples[0])), int(framecount))
			s.render(out)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("init playback device: %v", err)
	}
	s.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("start playback device: %v", err)
	}
	return s, nil
}

// SetVolume implements the engine's audio collaborator contract.
func (s *ToneSink) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
}

// Play switches the rendered pattern. Phase continuity is not preserved
// across switches; the crossfade has already taken volume to zero when a
// swap happens, so no click is audible.
func (s *ToneSink) Play(p Pattern) {
	s.mu.Lock()
	s.pattern = p
	s.phase = 0
	s.beat = 0
	s.mu.Unlock()
}

// Close stops playback and releases the device.
func (s *ToneSink) Close() {
	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	if s.ctx != nil {
		_ = s.ctx.Uninit()
		s.ctx.Free()
		s.ctx = nil
	}
}

// peakAmplitude keeps the synthesized tone comfortably below clipping.
const peakAmplitude = 0.25

// render fills one device buffer. Runs on the audio thread.
func (s *ToneSink) render(out []float32) {
	s.mu.Lock()
	volume := s.volume
	pattern := s.pattern
	phase := s.phase
	beat := s.beat
	s.mu.Unlock()

	if pattern.RootHz <= 0 || volume <= 0 {
		for i := range out {
			out[i] = 0
		}
		s.advance(len(out), pattern)
		return
	}

	phaseStep := 2 * math.Pi * pattern.RootHz / s.rate
	beatStep := 2 * math.Pi * pattern.BeatHz / s.rate
	for i := range out {
		// Pulse envelope: a raised cosine at the beat rate, so faster
		// styles audibly drive harder.
		env := 1.0
		if pattern.BeatHz > 0 {
			env = 0.55 + 0.45*math.Cos(beat)
			beat += beatStep
		}
		out[i] = float32(peakAmplitude * volume * env * math.Sin(phase))
		phase += phaseStep
	}

	s.mu.Lock()
	s.phase = math.Mod(phase, 2*math.Pi)
	s.beat = math.Mod(beat, 2*math.Pi)
	s.mu.Unlock()
}

func (s *ToneSink) advance(frames int, pattern Pattern) {
	if pattern.RootHz <= 0 {
		return
	}
	s.mu.Lock()
	s.phase = math.Mod(s.phase+2*math.Pi*pattern.RootHz*float64(frames)/s.rate, 2*math.Pi)
	s.beat = math.Mod(s.beat+2*math.Pi*pattern.BeatHz*float64(frames)/s.rate, 2*math.Pi)
	s.mu.Unlock()
}
