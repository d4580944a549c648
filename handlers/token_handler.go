package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"snake-arena/auth"
)

type TokenRequest struct {
	Name        string `json:"name"`
	Premium     bool   `json:"premium"`
	Broadcaster bool   `json:"broadcaster"`
}

type TokenResponse struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

// TokenHandler hands out a fresh player id and a token bound to it.
type TokenHandler struct {
	issuer *auth.Issuer
}

func NewTokenHandler(issuer *auth.Issuer) *TokenHandler {
	return &TokenHandler{issuer: issuer}
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var req TokenRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	id := uuid.New().String()
	token, err := h.issuer.GenerateToken(id, req.Name, req.Premium, req.Broadcaster)
	if err != nil {
		log.Printf("Failed to issue token for %s: %v", req.Name, err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{PlayerID: id, Token: token})
}
