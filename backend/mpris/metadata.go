package mpris

import (
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"
)

const (
	keyTitle  = "xesam:title"
	keyAlbum  = "xesam:album"
	keyArtist = "xesam:artist"
	keyURL    = "xesam:url"
	keyArtURL = "mpris:artUrl"
	keyLength = "mpris:length"

	// used when a player omits mpris:length, so the remaining time is never undefined
	defaultLength types.Microseconds = 1
)

// Extract maps a Metadata property bag into a TrackState. It never fails:
// missing or mistyped entries produce the documented defaults.
func Extract(bag map[string]dbus.Variant, position types.Microseconds, status PlaybackStatus) TrackState {
	t := TrackState{
		Title:    stringOr(bag, keyTitle, "Unknown title"),
		Album:    stringOr(bag, keyAlbum, "Unknown album"),
		Artist:   "Unknown artist",
		URL:      stringOr(bag, keyURL, "Unknown url"),
		ArtURL:   stringOr(bag, keyArtURL, ""),
		Length:   defaultLength,
		Position: max(position, 0),
		Status:   status,
	}
	if a := artists(bag); a != "" {
		t.Artist = a
	}
	if l, ok := integer(bag[keyLength]); ok && l > 0 {
		t.Length = types.Microseconds(l)
	}
	return t
}

func stringOr(bag map[string]dbus.Variant, key, def string) string {
	v, ok := bag[key]
	if !ok {
		return def
	}
	if s, ok := v.Value().(string); ok && s != "" {
		return s
	}
	return def
}

// xesam:artist is a list of strings, though some players send a bare string.
func artists(bag map[string]dbus.Variant) string {
	v, ok := bag[keyArtist]
	if !ok {
		return ""
	}
	switch a := v.Value().(type) {
	case []string:
		return strings.Join(a, " ")
	case string:
		return a
	case []any:
		names := make([]string, 0, len(a))
		for _, n := range a {
			if s, ok := n.(string); ok {
				names = append(names, s)
			}
		}
		return strings.Join(names, " ")
	}
	return ""
}

// mpris:length should be int64 but players are inconsistent about
// the integer width they send.
func integer(v dbus.Variant) (int64, bool) {
	switch n := v.Value().(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
