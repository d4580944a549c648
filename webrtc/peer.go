// Package webrtc carries relay traffic over a WebRTC data channel for
// instances that cannot hold a WebSocket open.
package webrtc

import (
	"bytes"
	"log"
	"sync"

	"github.com/pion/webrtc/v3"

	"snake-arena/constants"
	"snake-arena/models"
)

// Relay is the part of the relay hub a data channel talks to.
type Relay interface {
	Attach(c *models.Client) ([][]byte, error)
	Detach(id string)
	Receive(id string, raw []byte) error
}

type PeerConnection struct {
	PeerConnection *webrtc.PeerConnection
	DataChannel    *webrtc.DataChannel
	Client         *models.Client

	mutex    sync.Mutex
	attached bool
}

type Manager struct {
	relay   Relay
	iceURLs []string
	peers   map[string]*PeerConnection
	mutex   sync.RWMutex
}

func NewManager(relay Relay, iceURLs []string) *Manager {
	return &Manager{
		relay:   relay,
		iceURLs: iceURLs,
		peers:   make(map[string]*PeerConnection),
	}
}

func (m *Manager) CreatePeerConnection(client *models.Client) (*PeerConnection, error) {
	peerConnection, err := webrtc.NewPeerConnection(m.getICEConfiguration())
	if err != nil {
		return nil, err
	}

	peerConnection.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		log.Printf("ICE Connection State for %s: %s", client.ID, state.String())
		if state == webrtc.ICEConnectionStateDisconnected || state == webrtc.ICEConnectionStateFailed {
			log.Printf("ICE Connection failed for %s, removing peer", client.ID)
			m.RemovePeer(client.ID)
		}
	})

	dataChannel, err := peerConnection.CreateDataChannel(constants.DATA_CHANNEL_NAME, nil)
	if err != nil {
		peerConnection.Close()
		return nil, err
	}

	peer := &PeerConnection{
		PeerConnection: peerConnection,
		DataChannel:    dataChannel,
		Client:         client,
	}

	dataChannel.OnOpen(func() {
		log.Printf("DataChannel opened for instance %s", client.ID)
		if err := m.attach(peer); err != nil {
			log.Printf("Failed to attach %s to relay: %v", client.ID, err)
			m.RemovePeer(client.ID)
		}
	})

	dataChannel.OnMessage(func(msg webrtc.DataChannelMessage) {
		for _, line := range bytes.Split(msg.Data, []byte{'\n'}) {
			if len(line) == 0 {
				continue
			}
			if err := m.relay.Receive(client.ID, line); err != nil {
				log.Printf("Dropping uplink from %s: %v", client.ID, err)
			}
		}
	})

	dataChannel.OnClose(func() {
		log.Printf("DataChannel closed for instance %s", client.ID)
		m.RemovePeer(client.ID)
	})

	dataChannel.OnError(func(err error) {
		log.Printf("DataChannel error for %s: %v", client.ID, err)
	})

	m.mutex.Lock()
	old := m.peers[client.ID]
	m.peers[client.ID] = peer
	m.mutex.Unlock()
	if old != nil {
		old.close(m.relay)
	}

	return peer, nil
}

// attach joins the relay, replays the backlog and then forwards live frames
// until the relay closes the client's queue.
func (m *Manager) attach(peer *PeerConnection) error {
	backlog, err := m.relay.Attach(peer.Client)
	if err != nil {
		return err
	}
	peer.mutex.Lock()
	peer.attached = true
	peer.mutex.Unlock()

	for _, b := range backlog {
		if err := peer.DataChannel.SendText(string(b)); err != nil {
			return err
		}
	}

	go func() {
		for b := range peer.Client.Send {
			if err := peer.DataChannel.SendText(string(b)); err != nil {
				log.Printf("Failed to send frame to %s: %v", peer.Client.ID, err)
			}
		}
		peer.DataChannel.Close()
	}()
	return nil
}

func (m *Manager) GetPeer(id string) (*PeerConnection, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	peer, exists := m.peers[id]
	return peer, exists
}

func (m *Manager) RemovePeer(id string) {
	m.mutex.Lock()
	peer, exists := m.peers[id]
	if exists {
		delete(m.peers, id)
	}
	m.mutex.Unlock()

	if exists {
		peer.close(m.relay)
	}
}

func (p *PeerConnection) close(relay Relay) {
	p.mutex.Lock()
	attached := p.attached
	p.attached = false
	p.mutex.Unlock()

	if attached {
		relay.Detach(p.Client.ID)
	}
	if p.PeerConnection != nil {
		p.PeerConnection.Close()
	}
}

// getICEConfiguration returns the ICE server configuration from the
// configured STUN and TURN urls.
func (m *Manager) getICEConfiguration() webrtc.Configuration {
	cfg := webrtc.Configuration{
		ICETransportPolicy: webrtc.ICETransportPolicyAll,
	}
	if len(m.iceURLs) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: m.iceURLs}}
	}
	return cfg
}
