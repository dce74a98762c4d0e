package presence

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dweymouth/mpris-rpc/backend/mpris"
)

var testNow = time.Unix(1_700_000_000, 0)

func scenarioTrack(status mpris.PlaybackStatus) mpris.TrackState {
	return mpris.TrackState{
		Title:    "X",
		Album:    "Y",
		Artist:   "Z",
		URL:      "file:///music/x.flac",
		Length:   5_000_000,
		Position: 1_000_000,
		Status:   status,
	}
}

func TestBuild_Playing(t *testing.T) {
	p, ok := NewBuilder(Options{}).Build("spotify", scenarioTrack(mpris.StatusPlaying), testNow)
	if !ok {
		t.Fatal("payload suppressed")
	}
	if p.Details != "X" || p.State != "Z - Y" {
		t.Errorf("got details %q state %q", p.Details, p.State)
	}
	end, ok := p.EndTimestamp()
	if !ok || end != testNow.Unix()+4 {
		t.Errorf("end timestamp = %d, %v; want %d", end, ok, testNow.Unix()+4)
	}
	want := Assets{LargeText: "Listening with Spotify", LargeImage: "spotify", SmallText: "Playing", SmallImage: "playing"}
	if p.Assets != want {
		t.Errorf("assets = %+v, want %+v", p.Assets, want)
	}
}

func TestBuild_Paused(t *testing.T) {
	for _, st := range []mpris.PlaybackStatus{mpris.StatusPaused, mpris.StatusStopped} {
		p, ok := NewBuilder(Options{}).Build("spotify", scenarioTrack(st), testNow)
		if !ok {
			t.Fatal("payload suppressed")
		}
		if _, ok := p.EndTimestamp(); ok {
			t.Errorf("%s: end timestamp should be absent", st)
		}
		if p.Assets.SmallText != "Paused" || p.Assets.SmallImage != "paused" {
			t.Errorf("%s: small assets = %q/%q", st, p.Assets.SmallText, p.Assets.SmallImage)
		}
	}
}

func TestBuild_EndNeverInPast(t *testing.T) {
	tr := scenarioTrack(mpris.StatusPlaying)
	tr.Position = tr.Length + 10_000_000
	p, _ := NewBuilder(Options{}).Build("vlc", tr, testNow)
	if end, _ := p.EndTimestamp(); end < testNow.Unix() {
		t.Errorf("end %d before now %d", end, testNow.Unix())
	}
}

func TestBuild_EndHugeLength(t *testing.T) {
	tr := scenarioTrack(mpris.StatusPlaying)
	tr.Length = 10_000_000_000_000_000
	tr.Position = 0
	p, _ := NewBuilder(Options{}).Build("vlc", tr, testNow)
	end, ok := p.EndTimestamp()
	if !ok || end < testNow.Unix() {
		t.Errorf("end = %d, %v; want at or after now %d", end, ok, testNow.Unix())
	}
}

func TestBuild_Truncation(t *testing.T) {
	tr := scenarioTrack(mpris.StatusPaused)
	tr.Title = strings.Repeat("語", 200)
	tr.Artist = strings.Repeat("é", 100)
	tr.Album = strings.Repeat("b", 100)
	p, _ := NewBuilder(Options{}).Build("vlc", tr, testNow)
	for name, s := range map[string]string{"details": p.Details, "state": p.State} {
		if n := utf8.RuneCountInString(s); n != MaxFieldLength {
			t.Errorf("%s has %d runes, want %d", name, n, MaxFieldLength)
		}
		if !utf8.ValidString(s) {
			t.Errorf("%s is not valid utf8", name)
		}
	}
	short := scenarioTrack(mpris.StatusPaused)
	short.Title = "日本"
	p, _ = NewBuilder(Options{}).Build("vlc", short, testNow)
	if p.Details != "日本" {
		t.Errorf("short title changed: %q", p.Details)
	}
}

func TestBuild_LocalFilesOnly(t *testing.T) {
	b := NewBuilder(Options{LocalFilesOnly: true})
	tr := scenarioTrack(mpris.StatusPlaying)
	if _, ok := b.Build("vlc", tr, testNow); !ok {
		t.Error("local file should be published")
	}
	tr.URL = "FILE:///music/x.flac"
	if _, ok := b.Build("vlc", tr, testNow); !ok {
		t.Error("scheme match should be case insensitive")
	}
	for _, u := range []string{"https://open.spotify.com/track/123", "Unknown url", ""} {
		tr.URL = u
		if _, ok := b.Build("spotify", tr, testNow); ok {
			t.Errorf("url %q should be suppressed", u)
		}
	}
	tr.URL = "https://open.spotify.com/track/123"
	if _, ok := NewBuilder(Options{}).Build("spotify", tr, testNow); !ok {
		t.Error("filter disabled should publish streams")
	}
}

func TestBuild_ArtURL(t *testing.T) {
	tr := scenarioTrack(mpris.StatusPlaying)
	tr.ArtURL = "https://i.scdn.co/image/abc"
	p, _ := NewBuilder(Options{UseArtURL: true}).Build("spotify", tr, testNow)
	if p.Assets.LargeImage != tr.ArtURL {
		t.Errorf("large image = %q", p.Assets.LargeImage)
	}
	tr.ArtURL = "file:///tmp/cover.jpg"
	p, _ = NewBuilder(Options{UseArtURL: true}).Build("spotify", tr, testNow)
	if p.Assets.LargeImage != "spotify" {
		t.Errorf("local art should not be used, got %q", p.Assets.LargeImage)
	}
}

func TestLargeImage(t *testing.T) {
	tests := []struct {
		session string
		opts    Options
		want    string
	}{
		{"spotify", Options{}, "spotify"},
		{"vlc.instance4242", Options{}, "vlc"},
		{"Lollypop", Options{}, "lollypop"},
		{"Élisa", Options{}, "elisa"},
		{"someplayer", Options{}, "logo"},
		{"someplayer", Options{FallbackImage: "music"}, "music"},
		{"someplayer", Options{PlayerImages: map[string]string{"someplayer": "custom"}}, "custom"},
		{"vlc", Options{PlayerImages: map[string]string{"vlc": "vlc_alt"}}, "vlc_alt"},
	}
	for _, tt := range tests {
		if got := NewBuilder(tt.opts).largeImage(tt.session); got != tt.want {
			t.Errorf("largeImage(%q) = %q, want %q", tt.session, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"vlc.instance99", "VLC"},
		{"spotify", "Spotify"},
		{"tauon", "Tauon"},
		{"someplayer.instance1", "Someplayer"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPayloadJSON(t *testing.T) {
	p, _ := NewBuilder(Options{}).Build("spotify", scenarioTrack(mpris.StatusPaused), testNow)
	b, err := json.Marshal(&p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if strings.Contains(s, "timestamps") {
		t.Errorf("paused payload has timestamps: %s", s)
	}
	for _, key := range []string{`"state":"Z - Y"`, `"details":"X"`, `"small_image":"paused"`, `"type":2`} {
		if !strings.Contains(s, key) {
			t.Errorf("missing %s in %s", key, s)
		}
	}
}
