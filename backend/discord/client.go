package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/dweymouth/mpris-rpc/backend/presence"
	"github.com/google/uuid"
)

const (
	pipePrefix     = "discord-ipc-"
	maxPipes       = 10
	dialTimeout    = 2 * time.Second
	defaultTimeout = 5 * time.Second
)

var (
	ErrNoSocket     = errors.New("no discord ipc socket found")
	ErrNotConnected = errors.New("not connected to discord")
	ErrHandshake    = errors.New("discord handshake failed")
)

// Client is a rich presence connection to a local Discord client.
// It is not safe for concurrent use.
type Client struct {
	appID   string
	pid     int
	timeout time.Duration
	dial    func() (net.Conn, error)
	conn    net.Conn
}

func NewClient(appID string) *Client {
	return &Client{
		appID:   appID,
		pid:     os.Getpid(),
		timeout: defaultTimeout,
		dial:    Dial,
	}
}

// Probe reports whether a Discord IPC endpoint currently exists.
func (c *Client) Probe() error {
	_, err := FindSocket()
	return err
}

func (c *Client) Connected() bool {
	return c.conn != nil
}

// Connect dials the IPC endpoint and performs the handshake.
// It is a no-op if already connected.
func (c *Client) Connect() error {
	if c.conn != nil {
		return nil
	}
	conn, err := c.dial()
	if err != nil {
		return err
	}
	if err := c.handshake(conn); err != nil {
		conn.Close()
		return err
	}
	c.conn = conn
	return nil
}

// Reconnect drops the current connection, if any, and connects again.
// Discord clears the activity of a client whose connection closes.
func (c *Client) Reconnect() error {
	c.Close()
	return c.Connect()
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	// best effort: tell Discord we're going away before dropping the socket
	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	_ = writeFrame(c.conn, OpClose, handshake{V: rpcVersion, ClientID: c.appID})
	err := c.conn.Close()
	c.conn = nil
	return err
}

// SetActivity publishes p as this client's activity.
func (c *Client) SetActivity(p *presence.Payload) error {
	return c.setActivity(p)
}

// ClearActivity removes this client's activity without disconnecting.
func (c *Client) ClearActivity() error {
	return c.setActivity(nil)
}

func (c *Client) setActivity(p *presence.Payload) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	cmd := command{
		Cmd:   cmdSetActivity,
		Args:  activityArgs{PID: c.pid, Activity: p},
		Nonce: uuid.NewString(),
	}
	if err := c.call(cmd); err != nil {
		// the socket is in an unknown state after a failed exchange
		c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) handshake(conn net.Conn) error {
	conn.SetDeadline(time.Now().Add(c.timeout))
	defer conn.SetDeadline(time.Time{})

	if err := writeFrame(conn, OpHandshake, handshake{V: rpcVersion, ClientID: c.appID}); err != nil {
		return err
	}
	op, body, err := readFrame(conn)
	if err != nil {
		return err
	}
	if op == OpClose {
		return fmt.Errorf("%w: %w", ErrHandshake, closeError(body))
	}
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if op != OpFrame || r.Cmd != cmdDispatch || r.Evt != evtReady {
		return fmt.Errorf("%w: unexpected %s/%s", ErrHandshake, r.Cmd, r.Evt)
	}
	return nil
}

// call sends cmd and waits for the response carrying its nonce,
// answering pings along the way.
func (c *Client) call(cmd command) error {
	c.conn.SetDeadline(time.Now().Add(c.timeout))
	defer func() {
		if c.conn != nil {
			c.conn.SetDeadline(time.Time{})
		}
	}()

	if err := writeFrame(c.conn, OpFrame, cmd); err != nil {
		return err
	}
	for {
		op, body, err := readFrame(c.conn)
		if err != nil {
			return err
		}
		switch op {
		case OpPing:
			pong := json.RawMessage(body)
			if len(pong) == 0 {
				pong = nil
			}
			if err := writeFrame(c.conn, OpPong, pong); err != nil {
				return err
			}
			continue
		case OpClose:
			return closeError(body)
		case OpFrame:
		default:
			log.Printf("Ignoring unexpected discord frame opcode %d", op)
			continue
		}

		var r response
		if err := json.Unmarshal(body, &r); err != nil {
			return err
		}
		if r.Nonce != cmd.Nonce {
			continue // unrelated dispatch
		}
		if r.Evt == evtError {
			var e Error
			if err := json.Unmarshal(r.Data, &e); err != nil {
				return fmt.Errorf("discord error: %s", r.Data)
			}
			return &e
		}
		return nil
	}
}

func closeError(body []byte) error {
	var e Error
	if err := json.Unmarshal(body, &e); err != nil {
		return errors.New("connection closed by discord")
	}
	return &e
}
