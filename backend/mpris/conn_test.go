package mpris

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

func playerSignal(member string) *dbus.Signal {
	iface := propertiesInterface
	if member == SignalSeeked {
		iface = PlayerInterface
	}
	return &dbus.Signal{Path: ObjectPath, Name: iface + "." + member}
}

func TestWaitSignal_Timeout(t *testing.T) {
	ch := make(chan *dbus.Signal)
	got, err := waitSignal(context.Background(), ch, 10*time.Millisecond)
	if got || err != nil {
		t.Errorf("waitSignal = %v, %v; want false, nil", got, err)
	}
}

func TestWaitSignal_DrainsQueue(t *testing.T) {
	ch := make(chan *dbus.Signal, 4)
	ch <- playerSignal(SignalPropertiesChanged)
	ch <- playerSignal(SignalSeeked)
	ch <- playerSignal(SignalPropertiesChanged)
	got, err := waitSignal(context.Background(), ch, time.Second)
	if !got || err != nil {
		t.Fatalf("waitSignal = %v, %v; want true, nil", got, err)
	}
	if len(ch) != 0 {
		t.Errorf("%d signals left in queue", len(ch))
	}
}

func TestWaitSignal_IgnoresUnrelated(t *testing.T) {
	ch := make(chan *dbus.Signal, 2)
	ch <- &dbus.Signal{Path: "/org/freedesktop/DBus", Name: "org.freedesktop.DBus.NameAcquired"}
	ch <- nil
	got, err := waitSignal(context.Background(), ch, 10*time.Millisecond)
	if got || err != nil {
		t.Errorf("waitSignal = %v, %v; want false, nil", got, err)
	}
}

func TestWaitSignal_Closed(t *testing.T) {
	ch := make(chan *dbus.Signal)
	close(ch)
	_, err := waitSignal(context.Background(), ch, time.Second)
	var busErr *BusError
	if !errors.As(err, &busErr) {
		t.Errorf("expected BusError, got %v", err)
	}
}

func TestWaitSignal_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := waitSignal(ctx, make(chan *dbus.Signal), time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
