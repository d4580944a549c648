package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snake-arena/auth"
	"snake-arena/config"
	"snake-arena/game"
	"snake-arena/handlers"
	"snake-arena/instance"
	"snake-arena/relay"
	"snake-arena/sim"
	"snake-arena/storage/resultlog"
	"snake-arena/webrtc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case "relay":
		err = runRelay(ctx, cfg)
	case "instance":
		err = runInstance(ctx, cfg)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%s stopped: %v", cfg.Mode, err)
	}
}

func runRelay(ctx context.Context, cfg config.Config) error {
	seed, err := sim.NewSeed()
	if err != nil {
		return err
	}
	hub := relay.NewHub(cfg.Session, seed, cfg.RelayStartOn)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	webrtcManager := webrtc.NewManager(hub, cfg.ICEURLs)

	authed := auth.Middleware(issuer)
	webrtcHandler := handlers.NewWebRTCHandler(webrtcManager)
	iceHandler := handlers.NewICEHandler(webrtcManager)

	mux := http.NewServeMux()
	// Identity for instances
	mux.Handle("/token", handlers.CORS(handlers.NewTokenHandler(issuer)))
	// Relay over WebSocket
	mux.Handle("/ws", authed(handlers.NewRelayHandler(hub)))
	// Relay over a WebRTC data channel
	mux.Handle("/webrtc/offer", handlers.CORS(authed(http.HandlerFunc(webrtcHandler.HandleOffer))))
	mux.Handle("/webrtc/ice", handlers.CORS(authed(http.HandlerFunc(iceHandler.HandleICECandidate))))

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go hub.Run(ctx)

	log.Printf("Relay starting on port %s (session %s, clock starts at %d instances)", cfg.Port, hub.SessionID(), cfg.RelayStartOn)
	log.Printf("Relay endpoints: /token, /ws, /webrtc/offer, /webrtc/ice")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func runInstance(ctx context.Context, cfg config.Config) error {
	var results game.ResultSink
	if cfg.ResultDB != "" {
		store, err := resultlog.Open(cfg.ResultDB)
		if err != nil {
			return err
		}
		defer store.Close()
		results = store
	}

	tok, err := instance.FetchToken(ctx, cfg.RelayURL, handlers.TokenRequest{
		Name:        cfg.Instance.Name,
		Premium:     cfg.Instance.Premium,
		Broadcaster: cfg.Instance.Broadcaster,
	})
	if err != nil {
		return err
	}

	client, err := instance.Dial(ctx, instance.Options{
		RelayURL:    cfg.RelayURL,
		Token:       tok.Token,
		Name:        cfg.Instance.Name,
		Premium:     cfg.Instance.Premium,
		Broadcaster: cfg.Instance.Broadcaster,
		Autopilot:   cfg.Instance.Autopilot,
		Seed:        cfg.Instance.Seed,
		Results:     results,
	})
	if err != nil {
		return err
	}

	log.Printf("Instance %s (%s) connected to %s", cfg.Instance.Name, tok.PlayerID, cfg.RelayURL)
	return client.Run(ctx)
}
