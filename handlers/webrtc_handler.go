package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pion/webrtc/v3"

	"snake-arena/auth"
	"snake-arena/constants"
	"snake-arena/models"
	webrtcManager "snake-arena/webrtc"
)

const gatherTimeout = 5 * time.Second

type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

type OfferRequest struct {
	Offer SessionDescription `json:"offer"`
}

type OfferResponse struct {
	PlayerID string             `json:"player_id"`
	Answer   SessionDescription `json:"answer"`
}

// WebRTCHandler attaches instances to the relay over a data channel. The
// client posts its offer and receives an answer with the gathered candidates.
type WebRTCHandler struct {
	webrtcManager *webrtcManager.Manager
}

func NewWebRTCHandler(webrtcManager *webrtcManager.Manager) *WebRTCHandler {
	return &WebRTCHandler{webrtcManager: webrtcManager}
}

// HandleOffer handles WebRTC offer from client
func (h *WebRTCHandler) HandleOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var offerData OfferRequest
	if err := json.Unmarshal(body, &offerData); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if offerData.Offer.SDP == "" {
		http.Error(w, "Offer is required", http.StatusBadRequest)
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

	peer, err := h.webrtcManager.CreatePeerConnection(client)
	if err != nil {
		http.Error(w, "Failed to create peer connection: "+err.Error(), http.StatusInternalServerError)
		return
	}
	fail := func(msg string, err error) {
		log.Printf("WebRTC negotiation with %s failed: %s: %v", client.ID, msg, err)
		h.webrtcManager.RemovePeer(client.ID)
		http.Error(w, msg, http.StatusInternalServerError)
	}

	offer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  offerData.Offer.SDP,
	}
	if err := peer.PeerConnection.SetRemoteDescription(offer); err != nil {
		fail("Failed to set remote description", err)
		return
	}

	answer, err := peer.PeerConnection.CreateAnswer(nil)
	if err != nil {
		fail("Failed to create answer", err)
		return
	}

	gatherComplete := webrtc.GatheringCompletePromise(peer.PeerConnection)
	if err := peer.PeerConnection.SetLocalDescription(answer); err != nil {
		fail("Failed to set local description", err)
		return
	}

	select {
	case <-gatherComplete:
	case <-time.After(gatherTimeout):
		log.Printf("ICE gathering for %s timed out, answering with partial candidates", client.ID)
	case <-r.Context().Done():
		h.webrtcManager.RemovePeer(client.ID)
		return
	}

	local := peer.PeerConnection.LocalDescription()
	response := OfferResponse{
		PlayerID: client.ID,
		Answer: SessionDescription{
			Type: local.Type.String(),
			SDP:  local.SDP,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode answer for %s: %v", client.ID, err)
	}
}
