package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/pion/webrtc/v3"

	"snake-arena/auth"
	webrtcManager "snake-arena/webrtc"
)

type ICECandidate struct {
	Candidate     string  `json:"candidate"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex"`
	SDPMid        *string `json:"sdpMid"`
}

// ICEHandler applies candidates the client trickles after its offer.
type ICEHandler struct {
	webrtcManager *webrtcManager.Manager
}

func NewICEHandler(webrtcManager *webrtcManager.Manager) *ICEHandler {
	return &ICEHandler{webrtcManager: webrtcManager}
}

// HandleICECandidate adds one remote candidate to the sender's connection.
func (h *ICEHandler) HandleICECandidate(w http.ResponseWriter, r *http.Request) {
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

	var candidate ICECandidate
	if err := json.Unmarshal(body, &candidate); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	peer, ok := h.webrtcManager.GetPeer(claims.PlayerID)
	if !ok {
		http.Error(w, "No pending connection", http.StatusNotFound)
		return
	}

	err = peer.PeerConnection.AddICECandidate(webrtc.ICECandidateInit{
		Candidate:     candidate.Candidate,
		SDPMid:        candidate.SDPMid,
		SDPMLineIndex: candidate.SDPMLineIndex,
	})
	if err != nil {
		log.Printf("Rejected ICE candidate from %s: %v", claims.PlayerID, err)
		http.Error(w, "Invalid candidate", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// CORS answers preflight requests and tags every response for browser
// clients.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enableCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
