//go:build windows

package discord

import (
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

func candidatePaths() []string {
	paths := make([]string, 0, maxPipes)
	for i := 0; i < maxPipes; i++ {
		paths = append(paths, fmt.Sprintf(`\\.\pipe\%s%d`, pipePrefix, i))
	}
	return paths
}

// FindSocket returns the name of the first Discord IPC pipe accepting connections.
// Named pipes have no filesystem entry, so probing means dialing.
func FindSocket() (string, error) {
	probeTimeout := 100 * time.Millisecond
	for _, p := range candidatePaths() {
		if conn, err := winio.DialPipe(p, &probeTimeout); err == nil {
			conn.Close()
			return p, nil
		}
	}
	return "", ErrNoSocket
}

func Dial() (net.Conn, error) {
	timeout := dialTimeout
	for _, p := range candidatePaths() {
		if conn, err := winio.DialPipe(p, &timeout); err == nil {
			return conn, nil
		}
	}
	return nil, ErrNoSocket
}
