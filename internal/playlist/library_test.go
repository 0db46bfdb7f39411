package playlist

import (
	"testing"

	"github.com/exerrika/muve/internal/audio"
	"github.com/exerrika/muve/internal/engine"
	"github.com/exerrika/muve/internal/motion"
)

type playLog struct {
	patterns []audio.Pattern
}

func (p *playLog) Play(pattern audio.Pattern) {
	p.patterns = append(p.patterns, pattern)
}

func testTracks() []Track {
	return []Track{
		{Title: "calm one", Level: motion.Calm, Style: engine.StyleSmooth, Pattern: audio.Pattern{RootHz: 200}},
		{Title: "calm two", Level: motion.Calm, Style: engine.StyleSmooth, Pattern: audio.Pattern{RootHz: 220}},
		{Title: "fast one", Level: motion.Energetic, Style: engine.StyleFusion, Pattern: audio.Pattern{RootHz: 400}},
	}
}

func TestLibrarySelectRotates(t *testing.T) {
	player := &playLog{}
	lib := NewLibrary(testTracks(), player)

	var titles []string
	for i := 0; i < 4; i++ {
		track, ok := lib.SelectTrack(motion.Calm)
		if !ok {
			t.Fatalf("selection %d reported no track", i)
		}
		titles = append(titles, track.TrackTitle())
	}

	want := []string{"calm one", "calm two", "calm one", "calm two"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("rotation = %v, want %v", titles, want)
		}
	}
	if len(player.patterns) != 4 {
		t.Errorf("player started %d times, want 4", len(player.patterns))
	}
}

func TestLibraryCurrentTrack(t *testing.T) {
	lib := NewLibrary(testTracks(), nil)

	if _, ok := lib.CurrentTrack(); ok {
		t.Error("fresh library reports a current track")
	}

	selected, ok := lib.SelectTrack(motion.Energetic)
	if !ok {
		t.Fatal("selection reported no track")
	}
	current, ok := lib.CurrentTrack()
	if !ok {
		t.Fatal("no current track after selection")
	}
	if current.TrackTitle() != selected.TrackTitle() {
		t.Errorf("current = %q, want %q", current.TrackTitle(), selected.TrackTitle())
	}
	if current.TrackLevel() != motion.Energetic {
		t.Errorf("current level = %v, want energetic", current.TrackLevel())
	}
}

func TestLibraryEmptyLevelKeepsCurrent(t *testing.T) {
	lib := NewLibrary(testTracks(), nil)
	lib.SelectTrack(motion.Calm)

	// No moderate tracks in the catalog: selection fails and the current
	// track is untouched.
	if _, ok := lib.SelectTrack(motion.Moderate); ok {
		t.Error("selection at an empty level reported a track")
	}
	current, ok := lib.CurrentTrack()
	if !ok || current.TrackLevel() != motion.Calm {
		t.Errorf("current after failed selection = %v/%v, want the calm track", current, ok)
	}
}

func TestBuiltinCatalogCoversEveryLevel(t *testing.T) {
	byLevel := make(map[motion.Level]int)
	for _, track := range Builtin() {
		byLevel[track.Level]++
		if want := engine.StyleFor(track.Level); track.Style != want {
			t.Errorf("track %q style = %v, want %v for level %v", track.Title, track.Style, want, track.Level)
		}
		if track.Pattern.RootHz <= 0 || track.Pattern.BeatHz <= 0 {
			t.Errorf("track %q has an empty tone pattern", track.Title)
		}
	}
	for _, level := range motion.Levels {
		if byLevel[level] < 2 {
			t.Errorf("level %v has %d tracks, want at least 2 so rotation is observable", level, byLevel[level])
		}
	}
}
