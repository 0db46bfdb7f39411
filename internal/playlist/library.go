// Package playlist provides the in-memory track catalog the engine selects
// from. Each track is tagged with an intensity level and a musical style;
// repeated selections at the same level rotate through that level's
// entries.
package playlist

import (
	"sync"

	"github.com/exerrika/muve/internal/audio"
	"github.com/exerrika/muve/internal/engine"
	"github.com/exerrika/muve/internal/motion"
)

// Track is one catalog entry. Pattern describes how the tone sink renders
// the track when real audio files are out of scope.
type Track struct {
	Title   string
	Level   motion.Level
	Style   engine.Style
	Pattern audio.Pattern
}

// TrackTitle implements engine.TrackRef.
func (t Track) TrackTitle() string {
	return t.Title
}

// TrackLevel implements engine.TrackRef.
func (t Track) TrackLevel() motion.Level {
	return t.Level
}

// Player starts playback of a selected track. The tone sink implements it;
// tests use fakes.
type Player interface {
	Play(p audio.Pattern)
}

// Library is a Level-indexed catalog implementing engine.TrackSelector.
// Selection is non-fatal by design: an empty level simply reports no
// track, and the current selection stays untouched.
type Library struct {
	mu      sync.Mutex
	byLevel map[motion.Level][]Track
	next    map[motion.Level]int
	current *Track
	player  Player
}

// NewLibrary builds a library over the given tracks. A nil player is
// allowed; selection then only records the current track.
func NewLibrary(tracks []Track, player Player) *Library {
	l := &Library{
		byLevel: make(map[motion.Level][]Track),
		next:    make(map[motion.Level]int),
		player:  player,
	}
	for _, t := range tracks {
		l.byLevel[t.Level] = append(l.byLevel[t.Level], t)
	}
	return l
}

// SelectTrack implements engine.TrackSelector: it picks the next track for
// the level, starts it on the player and makes it current.
func (l *Library) SelectTrack(level motion.Level) (engine.TrackRef, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	candidates := l.byLevel[level]
	if len(candidates) == 0 {
		return nil, false
	}
	idx := l.next[level] % len(candidates)
	l.next[level] = idx + 1
	track := candidates[idx]
	l.current = &track
	if l.player != nil {
		l.player.Play(track.Pattern)
	}
	return track, true
}

// CurrentTrack implements engine.TrackSelector.
func (l *Library) CurrentTrack() (engine.TrackRef, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return nil, false
	}
	return *l.current, true
}

// Builtin returns the stock demo catalog: two tracks per style so rotation
// is observable.
func Builtin() []Track {
	return []Track{
		{Title: "Velvet Hour", Level: motion.Calm, Style: engine.StyleSmooth, Pattern: audio.Pattern{RootHz: 196.00, BeatHz: 1.1}},
		{Title: "Low Lamplight", Level: motion.Calm, Style: engine.StyleSmooth, Pattern: audio.Pattern{RootHz: 220.00, BeatHz: 0.9}},
		{Title: "Sidewalk Shuffle", Level: motion.Moderate, Style: engine.StyleSwing, Pattern: audio.Pattern{RootHz: 261.63, BeatHz: 2.2}},
		{Title: "Uptown Stride", Level: motion.Moderate, Style: engine.StyleSwing, Pattern: audio.Pattern{RootHz: 293.66, BeatHz: 2.6}},
		{Title: "Corner Pocket Run", Level: motion.Active, Style: engine.StyleBebop, Pattern: audio.Pattern{RootHz: 329.63, BeatHz: 4.2}},
		{Title: "Double-Time Alley", Level: motion.Active, Style: engine.StyleBebop, Pattern: audio.Pattern{RootHz: 349.23, BeatHz: 4.8}},
		{Title: "Voltage Bridge", Level: motion.Energetic, Style: engine.StyleFusion, Pattern: audio.Pattern{RootHz: 392.00, BeatHz: 6.5}},
		{Title: "Chrome Horizon", Level: motion.Energetic, Style: engine.StyleFusion, Pattern: audio.Pattern{RootHz: 440.00, BeatHz: 7.0}},
	}
}
