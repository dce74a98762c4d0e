package mpris

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// ErrPlayerGone is returned when a session answers a property read with a
// D-Bus error reply, typically because the player quit after being listed.
var ErrPlayerGone = errors.New("player left the bus")

// BusError reports a failed D-Bus call or subscription. It usually means the
// session bus itself has gone away.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("dbus %s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// ProtocolViolation reports a session returning a value outside the
// fixed MPRIS contract for one of its properties.
type ProtocolViolation struct {
	Session  SessionID
	Property string
	Value    any
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("player %q reported invalid %s %v", e.Session, e.Property, e.Value)
}

// getError classifies a failed property read. Error replies come from the
// bus daemon or the player and only concern that session; anything else is
// a transport failure.
func getError(session SessionID, property string, err error) error {
	var reply dbus.Error
	if errors.As(err, &reply) {
		return fmt.Errorf("%w: %s %s: %w", ErrPlayerGone, session, property, err)
	}
	return &BusError{Op: "Get " + property, Err: err}
}
