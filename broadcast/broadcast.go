// Package broadcast abstracts the medium every game instance publishes to and
// receives frames from.
package broadcast

import (
	"errors"
	"fmt"
	"sync"

	"snake-arena/protocol"
)

var ErrNotAllowed = errors.New("sender may not publish this message")

// Publisher puts a message on the broadcast medium. Every instance, the sender
// included, observes it in a later frame.
type Publisher interface {
	Publish(m protocol.Message) error
}

// Loopback is an in-process bus. Step closes the current tick and returns the
// frame every member must apply. The first member to join is active.
type Loopback struct {
	mu      sync.Mutex
	age     uint64
	seq     uint64
	pending []protocol.Event
	members []*Member
	journal []protocol.Frame
}

type Member struct {
	bus         *Loopback
	id          string
	broadcaster bool
	active      bool
}

func NewLoopback() *Loopback {
	return &Loopback{}
}

func (b *Loopback) Join(id string, broadcaster bool) *Member {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := &Member{
		bus:         b,
		id:          id,
		broadcaster: broadcaster,
		active:      len(b.members) == 0,
	}
	b.members = append(b.members, m)
	return m
}

// Step emits the frame for the next age with everything published since the
// previous step, in publish order.
func (b *Loopback) Step() protocol.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.age++
	f := protocol.Frame{Age: b.age, Events: b.pending}
	b.pending = nil
	if len(f.Events) > 0 {
		b.journal = append(b.journal, f)
	}
	return f
}

// Journal returns every non-empty frame emitted so far.
func (b *Loopback) Journal() []protocol.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]protocol.Frame(nil), b.journal...)
}

func (m *Member) ID() string   { return m.id }
func (m *Member) Active() bool { return m.active }

func (m *Member) Publish(msg protocol.Message) error {
	b, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	env, err := protocol.DecodeEnvelope(b)
	if err != nil {
		return err
	}
	if !protocol.Permit(env, m.id, m.broadcaster, m.active) {
		return fmt.Errorf("publish %s from %s: %w", msg.Tag(), m.id, ErrNotAllowed)
	}

	m.bus.mu.Lock()
	defer m.bus.mu.Unlock()
	m.bus.seq++
	m.bus.pending = append(m.bus.pending, protocol.Event{Seq: m.bus.seq, From: m.id, Envelope: env})
	return nil
}
