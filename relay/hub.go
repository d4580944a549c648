// Package relay is the broadcast medium between game instances. It collects
// uplink envelopes, stamps them with a sequence number and the sender, and
// emits one frame per tick to every attached client.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"snake-arena/config"
	"snake-arena/lobby"
	"snake-arena/models"
	"snake-arena/protocol"
)

var (
	ErrUnknownClient = errors.New("client is not attached")
	ErrDuplicate     = errors.New("client is already attached")
	ErrRejected      = errors.New("sender may not publish this message")
)

type Hub struct {
	mu sync.Mutex

	session   config.Session
	sessionID string
	seed      int64
	startOn   int

	clients  *lobby.Service
	activeID string
	started  bool

	age     uint64
	seq     uint64
	pending []protocol.Event
	journal [][]byte
}

// NewHub creates a relay session. The clock starts once startOn clients are
// attached.
func NewHub(session config.Session, seed int64, startOn int) *Hub {
	if startOn < 1 {
		startOn = 1
	}
	return &Hub{
		session:   session,
		sessionID: uuid.New().String(),
		seed:      seed,
		startOn:   startOn,
		clients:   lobby.NewService(),
	}
}

func (h *Hub) SessionID() string { return h.sessionID }

func (h *Hub) Age() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.age
}

func (h *Hub) Clients() []*models.Client {
	return h.clients.Snapshot()
}

// Attach registers c and returns what it must receive before any live frame:
// the welcome followed by the journal. The first client ever attached is the
// active instance.
func (h *Hub) Attach(c *models.Client) ([][]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.Active = h.activeID == ""
	if !h.clients.Add(c) {
		c.Active = false
		return nil, fmt.Errorf("attach %s: %w", c.ID, ErrDuplicate)
	}
	if c.Active {
		h.activeID = c.ID
	}

	welcome, err := protocol.EncodeEnvelope(protocol.MsgWelcome, protocol.Welcome{
		SelfID:    c.ID,
		SessionID: h.sessionID,
		Active:    c.Active,
		Seed:      h.seed,
		FPS:       h.session.FPS,
		Session:   h.session,
	})
	if err != nil {
		h.clients.Remove(c.ID)
		return nil, err
	}

	backlog := make([][]byte, 0, len(h.journal)+1)
	backlog = append(backlog, welcome)
	backlog = append(backlog, h.journal...)
	log.Printf("Instance %s connected (active=%v, replaying %d frames)", c.ID, c.Active, len(h.journal))
	return backlog, nil
}

// Detach removes the client and closes its send queue.
func (h *Hub) Detach(id string) {
	h.mu.Lock()
	c, ok := h.clients.Remove(id)
	if ok {
		close(c.Send)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	if c.Active {
		log.Printf("Active instance %s disconnected, no instance will be promoted", id)
		return
	}
	log.Printf("Instance %s disconnected", id)
}

// Receive queues one uplink envelope from id for the next frame.
func (h *Hub) Receive(id string, raw []byte) error {
	c, ok := h.clients.Get(id)
	if !ok {
		return fmt.Errorf("receive from %s: %w", id, ErrUnknownClient)
	}
	env, err := protocol.DecodeEnvelope(raw)
	if err != nil {
		return fmt.Errorf("receive from %s: %w", id, err)
	}
	if !protocol.Permit(env, id, c.Broadcaster, c.Active) {
		return fmt.Errorf("receive %s from %s: %w", env.T, id, ErrRejected)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	h.pending = append(h.pending, protocol.Event{Seq: h.seq, From: id, Envelope: env})
	return nil
}

// Tick closes the current age and sends its frame to every client. A client
// whose queue is full is dropped.
func (h *Hub) Tick() (protocol.Frame, error) {
	h.mu.Lock()
	h.age++
	f := protocol.Frame{Age: h.age, Events: h.pending}
	h.pending = nil
	b, err := protocol.EncodeEnvelope(protocol.MsgFrame, f)
	if err != nil {
		h.mu.Unlock()
		return f, err
	}
	if len(f.Events) > 0 {
		h.journal = append(h.journal, b)
	}

	var slow []string
	for _, c := range h.clients.Snapshot() {
		select {
		case c.Send <- b:
		default:
			slow = append(slow, c.ID)
		}
	}
	h.mu.Unlock()

	for _, id := range slow {
		log.Printf("Dropping instance %s: send queue full at age %d", id, f.Age)
		h.Detach(id)
	}
	return f, nil
}

// Run drives the clock at the session rate until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	fps := h.session.FPS
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !h.ready() {
				continue
			}
			if _, err := h.Tick(); err != nil {
				log.Printf("Failed to emit frame: %v", err)
			}
		}
	}
}

func (h *Hub) ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started && h.clients.Len() >= h.startOn {
		h.started = true
		log.Printf("Relay clock started for session %s with %d instances", h.sessionID, h.clients.Len())
	}
	return h.started
}
