//go:build !windows

package discord

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// Discord listens on discord-ipc-{0..9} in the first writable runtime or temp
// dir it finds. Flatpak and snap builds nest the socket one level deeper.
var sandboxDirs = []string{
	"",
	"app/com.discordapp.Discord",
	"app/com.discordapp.DiscordCanary",
	"app/dev.vencord.Vesktop",
	"snap.discord",
	"snap.discord-canary",
}

func candidatePaths() []string {
	var dirs []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if d := os.Getenv(env); d != "" {
			dirs = append(dirs, d)
		}
	}
	dirs = append(dirs, "/tmp")

	paths := make([]string, 0, len(dirs)*len(sandboxDirs)*maxPipes)
	for _, d := range dirs {
		for _, sub := range sandboxDirs {
			for i := 0; i < maxPipes; i++ {
				paths = append(paths, filepath.Join(d, sub, fmt.Sprintf("%s%d", pipePrefix, i)))
			}
		}
	}
	return paths
}

// FindSocket returns the path of the first Discord IPC socket present on disk.
func FindSocket() (string, error) {
	for _, p := range candidatePaths() {
		if fi, err := os.Stat(p); err == nil && fi.Mode()&os.ModeSocket != 0 {
			return p, nil
		}
	}
	return "", ErrNoSocket
}

// Dial establishes a connection to the Discord IPC socket.
func Dial() (net.Conn, error) {
	p, err := FindSocket()
	if err != nil {
		return nil, err
	}
	return net.DialTimeout("unix", p, dialTimeout)
}
