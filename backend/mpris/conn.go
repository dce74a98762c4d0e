package mpris

import (
	"context"
	"errors"
	"time"

	"github.com/godbus/dbus/v5"
)

var errSignalsClosed = errors.New("signal channel closed")

// Conn is a session bus connection implementing Bus, plus a poll-style
// subscription to player change signals.
type Conn struct {
	conn        *dbus.Conn
	callTimeout time.Duration
	signals     chan *dbus.Signal
}

// ConnectSessionBus connects to the desktop session bus. callTimeout bounds
// every individual method call; zero means no bound beyond the caller's context.
func ConnectSessionBus(callTimeout time.Duration) (*Conn, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, &BusError{Op: "connect", Err: err}
	}
	return &Conn{conn: conn, callTimeout: callTimeout}, nil
}

func (c *Conn) ListNames(ctx context.Context) ([]string, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var names []string
	err := c.conn.BusObject().CallWithContext(ctx, listNamesMethod, 0).Store(&names)
	return names, err
}

func (c *Conn) GetProperty(ctx context.Context, session SessionID, property string) (dbus.Variant, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var v dbus.Variant
	err := c.conn.Object(session.BusName(), ObjectPath).
		CallWithContext(ctx, propertiesGetMethod, 0, PlayerInterface, property).
		Store(&v)
	return v, err
}

// Subscribe adds match rules for PropertiesChanged and Seeked on the MPRIS
// object path of every player. Deliveries are read back with WaitSignal.
func (c *Conn) Subscribe() error {
	rules := [][]dbus.MatchOption{
		{
			dbus.WithMatchObjectPath(ObjectPath),
			dbus.WithMatchInterface(propertiesInterface),
			dbus.WithMatchMember(SignalPropertiesChanged),
		},
		{
			dbus.WithMatchObjectPath(ObjectPath),
			dbus.WithMatchInterface(PlayerInterface),
			dbus.WithMatchMember(SignalSeeked),
		},
	}
	for _, r := range rules {
		if err := c.conn.AddMatchSignal(r...); err != nil {
			return &BusError{Op: "AddMatch", Err: err}
		}
	}
	c.signals = make(chan *dbus.Signal, 32)
	c.conn.Signal(c.signals)
	return nil
}

// WaitSignal blocks until a player signal arrives or timeout elapses.
// Signals queued behind the first are drained, since one resync covers them all.
func (c *Conn) WaitSignal(ctx context.Context, timeout time.Duration) (bool, error) {
	return waitSignal(ctx, c.signals, timeout)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.callTimeout)
}

func waitSignal(ctx context.Context, ch <-chan *dbus.Signal, timeout time.Duration) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
			return false, nil
		case sig, ok := <-ch:
			if !ok {
				return false, &BusError{Op: "receive signal", Err: errSignalsClosed}
			}
			if !isPlayerSignal(sig) {
				continue
			}
			return true, drain(ch)
		}
	}
}

func drain(ch <-chan *dbus.Signal) error {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return &BusError{Op: "receive signal", Err: errSignalsClosed}
			}
		default:
			return nil
		}
	}
}

// The bus also delivers unicast signals like NameAcquired regardless of match rules.
func isPlayerSignal(sig *dbus.Signal) bool {
	if sig == nil || sig.Path != ObjectPath {
		return false
	}
	switch sig.Name {
	case propertiesInterface + "." + SignalPropertiesChanged, PlayerInterface + "." + SignalSeeked:
		return true
	}
	return false
}
