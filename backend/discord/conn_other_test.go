//go:build !windows

package discord

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestCandidatePaths_Order(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("TMPDIR", "")
	t.Setenv("TMP", "")
	t.Setenv("TEMP", "")
	paths := candidatePaths()
	if paths[0] != "/run/user/1000/discord-ipc-0" {
		t.Errorf("first candidate = %q", paths[0])
	}
	if paths[maxPipes-1] != "/run/user/1000/discord-ipc-9" {
		t.Errorf("last plain candidate = %q", paths[maxPipes-1])
	}
	if paths[maxPipes] != "/run/user/1000/app/com.discordapp.Discord/discord-ipc-0" {
		t.Errorf("first flatpak candidate = %q", paths[maxPipes])
	}
	if last := paths[len(paths)-1]; filepath.Dir(filepath.Dir(last)) != "/tmp" {
		t.Errorf("last candidate = %q", last)
	}
}

func TestFindSocket(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	plain := filepath.Join(dir, "discord-ipc-3")
	if err := os.WriteFile(plain, nil, 0600); err != nil {
		t.Fatal(err)
	}
	sock := filepath.Join(dir, "discord-ipc-5")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer l.Close()

	got, err := FindSocket()
	if err != nil {
		t.Fatal(err)
	}
	if got != sock {
		t.Errorf("FindSocket = %q, want %q (regular files must be skipped)", got, sock)
	}
}

func TestDial(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	l, err := net.Listen("unix", filepath.Join(dir, "discord-ipc-0"))
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer l.Close()
	go func() {
		if c, err := l.Accept(); err == nil {
			c.Close()
		}
	}()
	conn, err := Dial()
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()
}

func TestProbe_NoSocket(t *testing.T) {
	dir := t.TempDir()
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		t.Setenv(env, dir)
	}
	if _, err := FindSocket(); err != nil && !errors.Is(err, ErrNoSocket) {
		t.Errorf("unexpected error %v", err)
	}
}
