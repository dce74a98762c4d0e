package presence

import (
	"strings"

	"github.com/deluan/sanitize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultFallbackImage = "logo"

	imagePlaying = "playing"
	imagePaused  = "paused"
)

// knownPlayers maps normalized player names to the asset keys uploaded to
// the Discord application, plus the name shown in the large image tooltip.
var knownPlayers = map[string]struct {
	image   string
	display string
}{
	"amarok":     {"amarok", "Amarok"},
	"audacious":  {"audacious", "Audacious"},
	"chromium":   {"chromium", "Chromium"},
	"clementine": {"clementine", "Clementine"},
	"cmus":       {"cmus", "cmus"},
	"elisa":      {"elisa", "Elisa"},
	"firefox":    {"firefox", "Firefox"},
	"lollypop":   {"lollypop", "Lollypop"},
	"mpd":        {"mpd", "MPD"},
	"mpv":        {"mpv", "mpv"},
	"rhythmbox":  {"rhythmbox", "Rhythmbox"},
	"spotify":    {"spotify", "Spotify"},
	"strawberry": {"strawberry", "Strawberry"},
	"supersonic": {"supersonic", "Supersonic"},
	"vlc":        {"vlc", "VLC"},
}

// NormalizePlayerName reduces a session name to its registry key:
// "VLC.instance4242" and "vlc" both become "vlc".
func NormalizePlayerName(session string) string {
	name, _, _ := strings.Cut(session, ".instance")
	return strings.ToLower(sanitize.Accents(name))
}

// DisplayName returns a human readable player name.
func DisplayName(session string) string {
	if p, ok := knownPlayers[NormalizePlayerName(session)]; ok {
		return p.display
	}
	name, _, _ := strings.Cut(session, ".instance")
	return cases.Title(language.English).String(name)
}

func (b *Builder) largeImage(session string) string {
	key := NormalizePlayerName(session)
	if img, ok := b.opts.PlayerImages[key]; ok && img != "" {
		return img
	}
	if p, ok := knownPlayers[key]; ok {
		return p.image
	}
	if b.opts.FallbackImage != "" {
		return b.opts.FallbackImage
	}
	return DefaultFallbackImage
}
