package presence

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charlievieth/strcase"
	"github.com/dweymouth/mpris-rpc/backend/mpris"
	"github.com/dweymouth/mpris-rpc/sharedutil"
)

// MaxFieldLength is the longest state or details string Discord accepts, in runes.
const MaxFieldLength = 128

// longest remaining time representable as a time.Duration, in microseconds
const maxRemaining = math.MaxInt64 / int64(time.Microsecond)

type Options struct {
	// Only announce tracks played from local files (file:// URLs).
	LocalFilesOnly bool

	// Use the track's https artwork URL as the large image when available.
	UseArtURL bool

	// Image key used for players with no known asset.
	FallbackImage string

	// Overrides of player image keys, keyed by normalized player name.
	PlayerImages map[string]string
}

type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Build maps the state of a session into a presence payload. ok is false if
// the payload should not be published at all.
func (b *Builder) Build(session mpris.SessionID, track mpris.TrackState, now time.Time) (p Payload, ok bool) {
	if b.opts.LocalFilesOnly && !strcase.HasPrefix(track.URL, "file://") {
		return Payload{}, false
	}

	p = Payload{
		Type:    ActivityListening,
		State:   sharedutil.TruncateRunes(fmt.Sprintf("%s - %s", track.Artist, track.Album), MaxFieldLength),
		Details: sharedutil.TruncateRunes(track.Title, MaxFieldLength),
		Assets: Assets{
			LargeText:  sharedutil.TruncateRunes("Listening with "+DisplayName(string(session)), MaxFieldLength),
			LargeImage: b.largeImage(string(session)),
			SmallText:  "Playing",
			SmallImage: imagePlaying,
		},
	}
	if b.opts.UseArtURL && strings.HasPrefix(track.ArtURL, "https://") {
		p.Assets.LargeImage = track.ArtURL
	}

	if track.Status == mpris.StatusPlaying {
		remaining := time.Duration(min(int64(track.Remaining()), maxRemaining)) * time.Microsecond
		p.Timestamps = &Timestamps{End: now.Add(remaining).Unix()}
	} else {
		p.Assets.SmallText = "Paused"
		p.Assets.SmallImage = imagePaused
	}
	return p, true
}
