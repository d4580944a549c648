package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"snake-arena/auth"
	"snake-arena/constants"
	"snake-arena/models"
	"snake-arena/relay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// RelayHandler attaches WebSocket instances to the relay hub. It expects
// auth.Middleware in front of it.
type RelayHandler struct {
	hub *relay.Hub
}

func NewRelayHandler(hub *relay.Hub) *RelayHandler {
	return &RelayHandler{hub: hub}
}

func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &models.Client{
		ID:          claims.PlayerID,
		Name:        claims.Name,
		Premium:     claims.Premium,
		Broadcaster: claims.Broadcaster,
		Send:        make(chan []byte, constants.SEND_BUFFER),
		JoinedAt:    time.Now(),
	}

	backlog, err := h.hub.Attach(client)
	if err != nil {
		log.Printf("Rejecting instance %s: %v", client.ID, err)
		reason := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, closeReason(err))
		conn.WriteControl(websocket.CloseMessage, reason, time.Now().Add(constants.WRITE_WAIT))
		conn.Close()
		return
	}

	// The backlog goes out before the pump so live frames cannot overtake it.
	for _, b := range backlog {
		conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Printf("Failed to replay backlog to %s: %v", client.ID, err)
			h.hub.Detach(client.ID)
			conn.Close()
			return
		}
	}

	go h.writePump(client, conn)
	h.readPump(client, conn)
}

func closeReason(err error) string {
	if errors.Is(err, relay.ErrDuplicate) {
		return "already connected"
	}
	return "attach failed"
}

func (h *RelayHandler) readPump(client *models.Client, conn *websocket.Conn) {
	defer func() {
		h.hub.Detach(client.ID)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(constants.PONG_WAIT))
	conn.SetReadLimit(constants.MAX_MESSAGE_SIZE)
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(constants.PONG_WAIT))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", client.ID, err)
			}
			break
		}

		for _, line := range bytes.Split(message, []byte{'\n'}) {
			if len(line) == 0 {
				continue
			}
			if err := h.hub.Receive(client.ID, line); err != nil {
				log.Printf("Dropping uplink from %s: %v", client.ID, err)
			}
		}
	}
}

func (h *RelayHandler) writePump(client *models.Client, conn *websocket.Conn) {
	ticker := time.NewTicker(constants.PING_PERIOD)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued frames
			n := len(client.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(constants.WRITE_WAIT))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
