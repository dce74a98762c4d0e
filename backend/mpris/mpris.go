package mpris

import (
	"github.com/quarckster/go-mpris-server/pkg/types"
)

const (
	BusNamePrefix   = "org.mpris.MediaPlayer2."
	ObjectPath      = "/org/mpris/MediaPlayer2"
	PlayerInterface = "org.mpris.MediaPlayer2.Player"

	dbusInterface       = "org.freedesktop.DBus"
	propertiesInterface = "org.freedesktop.DBus.Properties"
	listNamesMethod     = dbusInterface + ".ListNames"
	propertiesGetMethod = propertiesInterface + ".Get"

	PropPlaybackStatus = "PlaybackStatus"
	PropMetadata       = "Metadata"
	PropPosition       = "Position"

	SignalPropertiesChanged = "PropertiesChanged"
	SignalSeeked            = "Seeked"
)

// SessionID names one media player instance on the bus: the part of its
// well-known name after BusNamePrefix, e.g. "spotify" or "vlc.instance4242".
type SessionID string

// BusName returns the full well-known bus name of the session.
func (s SessionID) BusName() string {
	return BusNamePrefix + string(s)
}

type PlaybackStatus = types.PlaybackStatus

const (
	StatusPlaying = types.PlaybackStatusPlaying
	StatusPaused  = types.PlaybackStatusPaused
	StatusStopped = types.PlaybackStatusStopped
)

// ParsePlaybackStatus validates a raw PlaybackStatus property value.
func ParsePlaybackStatus(s string) (PlaybackStatus, bool) {
	switch st := PlaybackStatus(s); st {
	case StatusPlaying, StatusPaused, StatusStopped:
		return st, true
	}
	return "", false
}

// TrackState is the normalized view of what a session is currently playing.
// All string fields are always populated.
type TrackState struct {
	Title  string
	Album  string
	Artist string
	URL    string
	ArtURL string // empty if the player does not expose artwork

	Length   types.Microseconds
	Position types.Microseconds
	Status   PlaybackStatus
}

// Remaining returns the playback time left in the track, never negative.
func (t TrackState) Remaining() types.Microseconds {
	if r := t.Length - t.Position; r > 0 {
		return r
	}
	return 0
}
