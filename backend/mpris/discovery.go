package mpris

import (
	"context"
	"errors"
	"strings"

	"github.com/dweymouth/mpris-rpc/sharedutil"
	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"
)

// Bus is the subset of the session bus needed to read MPRIS players.
type Bus interface {
	ListNames(ctx context.Context) ([]string, error)
	GetProperty(ctx context.Context, session SessionID, property string) (dbus.Variant, error)
}

// Client reads player sessions off a Bus.
type Client struct {
	bus Bus
}

func NewClient(bus Bus) *Client {
	return &Client{bus: bus}
}

// Sessions lists all registered MPRIS sessions in bus enumeration order.
func (c *Client) Sessions(ctx context.Context) ([]SessionID, error) {
	names, err := c.bus.ListNames(ctx)
	if err != nil {
		return nil, &BusError{Op: "ListNames", Err: err}
	}
	return sharedutil.FilterMapSlice(names, func(n string) (SessionID, bool) {
		s, ok := strings.CutPrefix(n, BusNamePrefix)
		return SessionID(s), ok && s != ""
	}), nil
}

// FindActivePlayer returns the first session that is Playing. If none is,
// the last enumerated session is returned instead. Sessions that vanish while
// being queried are skipped, so ok is false when no session answers at all.
func (c *Client) FindActivePlayer(ctx context.Context) (session SessionID, ok bool, err error) {
	sessions, err := c.Sessions(ctx)
	if err != nil {
		return "", false, err
	}
	for _, s := range sessions {
		st, err := c.PlaybackStatus(ctx, s)
		if errors.Is(err, ErrPlayerGone) {
			continue
		}
		if err != nil {
			return "", false, err
		}
		session, ok = s, true
		if st == StatusPlaying {
			break
		}
	}
	return session, ok, nil
}

func (c *Client) PlaybackStatus(ctx context.Context, session SessionID) (PlaybackStatus, error) {
	v, err := c.bus.GetProperty(ctx, session, PropPlaybackStatus)
	if err != nil {
		return "", getError(session, PropPlaybackStatus, err)
	}
	raw, isStr := v.Value().(string)
	st, valid := ParsePlaybackStatus(raw)
	if !isStr || !valid {
		return "", &ProtocolViolation{Session: session, Property: PropPlaybackStatus, Value: v.Value()}
	}
	return st, nil
}

// ReadTrack reads status, metadata and position of a session. It returns an
// error wrapping ErrPlayerGone if the session quit in the meantime.
func (c *Client) ReadTrack(ctx context.Context, session SessionID) (TrackState, error) {
	st, err := c.PlaybackStatus(ctx, session)
	if err != nil {
		return TrackState{}, err
	}
	v, err := c.bus.GetProperty(ctx, session, PropMetadata)
	if err != nil {
		return TrackState{}, getError(session, PropMetadata, err)
	}
	bag, _ := v.Value().(map[string]dbus.Variant)
	pos, err := c.position(ctx, session)
	if err != nil {
		return TrackState{}, err
	}
	return Extract(bag, pos, st), nil
}

// Players that reply with a D-Bus error for Position (typically NotSupported)
// are read as being at the start of the track.
func (c *Client) position(ctx context.Context, session SessionID) (types.Microseconds, error) {
	v, err := c.bus.GetProperty(ctx, session, PropPosition)
	if err != nil {
		var dbusErr dbus.Error
		if errors.As(err, &dbusErr) {
			return 0, nil
		}
		return 0, &BusError{Op: "Get " + PropPosition, Err: err}
	}
	n, _ := integer(v)
	return types.Microseconds(n), nil
}
