package mpris

import (
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestExtract(t *testing.T) {
	bag := map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("X"),
		"xesam:album":  dbus.MakeVariant("Y"),
		"xesam:artist": dbus.MakeVariant([]string{"Z"}),
		"xesam:url":    dbus.MakeVariant("file:///music/x.flac"),
		"mpris:length": dbus.MakeVariant(int64(5_000_000)),
		"mpris:artUrl": dbus.MakeVariant("https://example.com/x.jpg"),
	}
	got := Extract(bag, 1_000_000, StatusPlaying)
	want := TrackState{
		Title:    "X",
		Album:    "Y",
		Artist:   "Z",
		URL:      "file:///music/x.flac",
		ArtURL:   "https://example.com/x.jpg",
		Length:   5_000_000,
		Position: 1_000_000,
		Status:   StatusPlaying,
	}
	if got != want {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}
	if r := got.Remaining(); r != 4_000_000 {
		t.Errorf("Remaining() = %d, want 4000000", r)
	}
}

func TestExtract_Defaults(t *testing.T) {
	bags := []map[string]dbus.Variant{
		nil,
		{},
		{"xesam:title": dbus.MakeVariant("")},
		{"xesam:title": dbus.MakeVariant(42), "xesam:artist": dbus.MakeVariant(true)},
		{"mpris:length": dbus.MakeVariant("long")},
		{"mpris:length": dbus.MakeVariant(int64(0))},
	}
	for i, bag := range bags {
		got := Extract(bag, 0, StatusPaused)
		if got.Title != "Unknown title" {
			t.Errorf("bag %d: title = %q", i, got.Title)
		}
		if got.Album != "Unknown album" {
			t.Errorf("bag %d: album = %q", i, got.Album)
		}
		if got.Artist != "Unknown artist" {
			t.Errorf("bag %d: artist = %q", i, got.Artist)
		}
		if got.URL != "Unknown url" {
			t.Errorf("bag %d: url = %q", i, got.URL)
		}
		if got.ArtURL != "" {
			t.Errorf("bag %d: art url = %q", i, got.ArtURL)
		}
		if got.Length != 1 {
			t.Errorf("bag %d: length = %d, want 1", i, got.Length)
		}
	}
}

func TestExtract_Artists(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{[]string{"A", "B"}, "A B"},
		{"Solo", "Solo"},
		{[]any{"A", 3, "C"}, "A C"},
		{[]string{}, "Unknown artist"},
	}
	for _, tt := range tests {
		got := Extract(map[string]dbus.Variant{"xesam:artist": dbus.MakeVariant(tt.value)}, 0, StatusStopped)
		if got.Artist != tt.want {
			t.Errorf("artist %v: got %q, want %q", tt.value, got.Artist, tt.want)
		}
	}
}

func TestExtract_LengthWidths(t *testing.T) {
	for _, v := range []any{int64(300), uint64(300), int32(300), uint32(300), float64(300)} {
		got := Extract(map[string]dbus.Variant{"mpris:length": dbus.MakeVariant(v)}, 0, StatusPlaying)
		if got.Length != 300 {
			t.Errorf("length %T: got %d, want 300", v, got.Length)
		}
	}
}

func TestExtract_NegativePosition(t *testing.T) {
	got := Extract(nil, -50, StatusPlaying)
	if got.Position != 0 {
		t.Errorf("Position = %d, want 0", got.Position)
	}
	if got.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", got.Remaining())
	}
}

func TestRemaining_PastEnd(t *testing.T) {
	tr := TrackState{Length: 10, Position: 20}
	if r := tr.Remaining(); r != 0 {
		t.Errorf("Remaining() = %d, want 0", r)
	}
}

func TestParsePlaybackStatus(t *testing.T) {
	for _, s := range []string{"Playing", "Paused", "Stopped"} {
		if st, ok := ParsePlaybackStatus(s); !ok || string(st) != s {
			t.Errorf("ParsePlaybackStatus(%q) = %q, %v", s, st, ok)
		}
	}
	for _, s := range []string{"", "playing", "Buffering"} {
		if _, ok := ParsePlaybackStatus(s); ok {
			t.Errorf("ParsePlaybackStatus(%q) should fail", s)
		}
	}
}
