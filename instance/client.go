// Package instance runs one headless game instance against a relay over
// WebSocket.
package instance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"snake-arena/constants"
	"snake-arena/game"
	"snake-arena/models"
	"snake-arena/protocol"
)

var (
	ErrSendQueueFull = errors.New("uplink queue full")
	ErrNoWelcome     = errors.New("connection closed before welcome")
)

type Options struct {
	RelayURL    string
	Token       string
	Name        string
	Premium     bool
	Broadcaster bool
	Autopilot   bool
	// Seed drives the autopilot only; zero picks a random one.
	Seed    int64
	Results game.ResultSink
}

// Client owns the relay connection and the game manager built from the
// welcome message.
type Client struct {
	opts   Options
	conn   *websocket.Conn
	send   chan []byte
	frames chan protocol.Frame

	mu    sync.Mutex
	gm    *game.Manager
	ready chan struct{}
}

// Dial connects to the relay with the token as bearer credential.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+opts.Token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, opts.RelayURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial relay %s: %w (status %d)", opts.RelayURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial relay %s: %w", opts.RelayURL, err)
	}

	return &Client{
		opts:   opts,
		conn:   conn,
		send:   make(chan []byte, constants.SEND_BUFFER),
		frames: make(chan protocol.Frame, constants.SEND_BUFFER),
		ready:  make(chan struct{}),
	}, nil
}

// Manager returns the game manager once the welcome has arrived.
func (c *Client) Manager() (*game.Manager, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gm, c.gm != nil
}

// Ready is closed when the welcome has been applied.
func (c *Client) Ready() <-chan struct{} { return c.ready }

// Publish queues an uplink envelope. It never blocks the simulation.
func (c *Client) Publish(m protocol.Message) error {
	b, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	select {
	case c.send <- b:
		return nil
	default:
		return fmt.Errorf("publish %s: %w", m.Tag(), ErrSendQueueFull)
	}
}

// Run pumps the connection and applies frames until ctx is done or the relay
// goes away.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.conn.Close()

	readErr := make(chan error, 1)
	go c.writePump(ctx)
	go func() {
		readErr <- c.readPump(ctx)
		cancel()
	}()

	select {
	case <-c.ready:
	case <-ctx.Done():
		select {
		case err := <-readErr:
			if err != nil {
				return err
			}
			return ErrNoWelcome
		default:
			return ctx.Err()
		}
	}

	gm, _ := c.Manager()
	var afterFrame func()
	if c.opts.Autopilot {
		afterFrame = NewAutopilot(gm, c.account(gm.SelfID()), c.opts.Broadcaster, c.opts.Seed).Step
	}
	err := gm.Run(ctx, c.frames, afterFrame)
	if err == nil {
		select {
		case err = <-readErr:
		default:
		}
	}
	return err
}

func (c *Client) account(id string) models.AccountData {
	return models.AccountData{ID: id, Name: c.opts.Name, IsPremium: c.opts.Premium}
}

func (c *Client) readPump(ctx context.Context) error {
	defer close(c.frames)

	c.conn.SetReadLimit(constants.MAX_MESSAGE_SIZE * constants.SEND_BUFFER)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read relay: %w", err)
		}

		for _, line := range bytes.Split(message, []byte{'\n'}) {
			if len(line) == 0 {
				continue
			}
			if err := c.handle(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (c *Client) handle(ctx context.Context, line []byte) error {
	env, err := protocol.DecodeEnvelope(line)
	if err != nil {
		log.Printf("Skipping undecodable downlink: %v", err)
		return nil
	}

	switch env.T {
	case protocol.MsgWelcome:
		w, err := protocol.DecodePayload[protocol.Welcome](env)
		if err != nil {
			return fmt.Errorf("decode welcome: %w", err)
		}
		c.welcome(w)
	case protocol.MsgFrame:
		f, err := protocol.DecodePayload[protocol.Frame](env)
		if err != nil {
			log.Printf("Skipping undecodable frame: %v", err)
			return nil
		}
		select {
		case c.frames <- f:
		case <-ctx.Done():
			return nil
		}
	default:
		log.Printf("Ignoring downlink %q", env.T)
	}
	return nil
}

func (c *Client) welcome(w protocol.Welcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gm != nil {
		log.Printf("Ignoring repeated welcome for %s", w.SelfID)
		return
	}

	session := w.Session
	if w.FPS > 0 {
		session.FPS = w.FPS
	}
	c.gm = game.NewManager(game.Options{
		Session:   session,
		SelfID:    w.SelfID,
		SessionID: w.SessionID,
		Active:    w.Active,
		Seed:      w.Seed,
		Publisher: c,
		Results:   c.opts.Results,
	})
	log.Printf("Joined session %s as %s (active=%v)", w.SessionID, w.SelfID, w.Active)
	close(c.ready)
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(constants.PING_PERIOD)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
