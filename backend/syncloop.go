package backend

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dweymouth/mpris-rpc/backend/mpris"
	"github.com/dweymouth/mpris-rpc/backend/presence"
)

// PlayerSource finds and reads media player sessions.
type PlayerSource interface {
	FindActivePlayer(ctx context.Context) (mpris.SessionID, bool, error)
	ReadTrack(ctx context.Context, session mpris.SessionID) (mpris.TrackState, error)
}

// SignalSource reports whether a player change signal arrived within timeout.
type SignalSource interface {
	WaitSignal(ctx context.Context, timeout time.Duration) (bool, error)
}

// PresenceClient is the outbound rich presence link.
type PresenceClient interface {
	Probe() error
	Connect() error
	Reconnect() error
	SetActivity(*presence.Payload) error
	Close() error
}

type LinkState int

const (
	LinkDisconnected LinkState = iota
	LinkConnected
)

func (l LinkState) String() string {
	if l == LinkConnected {
		return "connected"
	}
	return "disconnected"
}

// SyncLoop mirrors the active player to the presence client. All of its
// state is owned by the goroutine calling Run.
type SyncLoop struct {
	// Log every publish.
	Verbose bool

	cfg     SyncConfig
	players PlayerSource
	signals SignalSource
	client  PresenceClient
	builder *presence.Builder
	reloads <-chan *Config

	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	link        LinkState
	lastPublish time.Time // zero until the first successful publish
	hasClosed   bool      // presence already cleared for "no player"
	pending     bool      // a payload was held back by the throttle
}

func NewSyncLoop(cfg *Config, players PlayerSource, signals SignalSource, client PresenceClient) *SyncLoop {
	return &SyncLoop{
		cfg:     cfg.Sync,
		players: players,
		signals: signals,
		client:  client,
		builder: presence.NewBuilder(cfg.PresenceOptions()),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// SetConfigReloads sets a channel of updated configs, applied between iterations.
func (s *SyncLoop) SetConfigReloads(ch <-chan *Config) {
	s.reloads = ch
}

func (s *SyncLoop) Link() LinkState {
	return s.link
}

// Run connects to the presence client, retrying forever, then synchronizes
// until ctx is done or the bus fails. It returns nil on cancellation.
func (s *SyncLoop) Run(ctx context.Context) error {
	if err := s.awaitConnect(ctx); err != nil {
		return ignoreCanceled(err)
	}
	for {
		if err := s.step(ctx); err != nil {
			return ignoreCanceled(err)
		}
	}
}

func (s *SyncLoop) awaitConnect(ctx context.Context) error {
	logged := false
	for {
		err := s.client.Probe()
		if err == nil {
			err = s.client.Connect()
		}
		if err == nil {
			s.link = LinkConnected
			s.hasClosed = true // nothing published yet, so nothing to clear
			log.Println("Connected to Discord")
			return nil
		}
		if !logged {
			log.Printf("Waiting for Discord: %v", err)
			logged = true
		}
		if err := s.sleep(ctx, s.cfg.ConnectBackoff()); err != nil {
			return err
		}
	}
}

// step runs one iteration of the loop.
func (s *SyncLoop) step(ctx context.Context) error {
	s.applyReloads()

	signalled, err := s.signals.WaitSignal(ctx, s.waitTimeout())
	if err != nil {
		return err
	}

	var active, synced bool
	if signalled || s.due() {
		if signalled {
			if err := s.sleep(ctx, s.cfg.ResyncDelay()); err != nil {
				return err
			}
		}
		if active, err = s.resync(ctx); err != nil {
			return err
		}
		synced = true
	} else {
		if _, active, err = s.players.FindActivePlayer(ctx); err != nil {
			return err
		}
	}

	if active {
		s.hasClosed = false
	} else if !s.hasClosed {
		s.clearPresence()
	}

	if !signalled && !synced {
		return s.sleep(ctx, s.cfg.IdleDelay())
	}
	return nil
}

// due reports whether a resync is owed without a signal: the last publish
// is stale, or a throttled payload can now go out.
func (s *SyncLoop) due() bool {
	since := s.now().Sub(s.lastPublish)
	if s.lastPublish.IsZero() || since >= s.cfg.StaleInterval() {
		return true
	}
	return s.pending && since >= s.cfg.ThrottleInterval()
}

// A throttled payload shortens the wait so it is sent as soon as allowed.
func (s *SyncLoop) waitTimeout() time.Duration {
	timeout := s.cfg.SignalTimeout()
	if s.pending {
		left := s.cfg.ThrottleInterval() - s.now().Sub(s.lastPublish)
		timeout = min(timeout, max(left, time.Millisecond))
	}
	return timeout
}

// resync reads the active player and publishes its presence.
// It reports whether a player was found. A player that quits while being
// read counts as no player.
func (s *SyncLoop) resync(ctx context.Context) (bool, error) {
	session, ok, err := s.players.FindActivePlayer(ctx)
	if err != nil || !ok {
		return false, err
	}
	track, err := s.players.ReadTrack(ctx, session)
	if errors.Is(err, mpris.ErrPlayerGone) {
		log.Printf("Player %s went away: %v", session, err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	payload, ok := s.builder.Build(session, track, s.now())
	if !ok {
		s.pending = false
		return true, nil
	}
	s.publish(&payload)
	return true, nil
}

// publish sends p unless the throttle forbids it. A failed publish is
// answered with exactly one reconnect attempt.
func (s *SyncLoop) publish(p *presence.Payload) {
	now := s.now()
	if !s.lastPublish.IsZero() && now.Sub(s.lastPublish) < s.cfg.ThrottleInterval() {
		s.pending = true
		return
	}
	if err := s.client.SetActivity(p); err != nil {
		log.Printf("Error setting activity: %v", err)
		s.reconnect()
		return
	}
	s.link = LinkConnected
	s.lastPublish = now
	s.pending = false
	if s.Verbose {
		log.Printf("Published presence: %s | %s", p.Details, p.State)
	}
}

// clearPresence drops the link once after the last player disappears,
// which makes Discord remove the activity.
func (s *SyncLoop) clearPresence() {
	s.pending = false
	s.hasClosed = true
	s.reconnect()
}

func (s *SyncLoop) reconnect() {
	if err := s.client.Reconnect(); err != nil {
		if s.link == LinkConnected {
			log.Printf("Lost connection to Discord: %v", err)
		}
		s.link = LinkDisconnected
		return
	}
	if s.link == LinkDisconnected {
		log.Println("Reconnected to Discord")
	}
	s.link = LinkConnected
}

func (s *SyncLoop) applyReloads() {
	if s.reloads == nil {
		return
	}
	select {
	case cfg, ok := <-s.reloads:
		if !ok {
			s.reloads = nil
			return
		}
		s.cfg = cfg.Sync
		s.builder = presence.NewBuilder(cfg.PresenceOptions())
		log.Println("Applied updated config")
	default:
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
