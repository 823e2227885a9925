package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/config"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/handler"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/router"
	"github.com/Peptide90/SubstationMimicSim-sub000/internal/service"
)

// API is the HTTP + WebSocket API application.
type API struct {
	cfg *config.Config
	srv *http.Server
	reg *service.RoomRegistry
	hub *service.RoomHub
}

// NewAPI creates the API application: validates config, wires the hub,
// registry and handlers, builds the router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	hub := service.NewRoomHub(cfg.WSMaxMessageSize, cfg.WSReadBufferSize, cfg.WSWriteBufferSize, logger)
	reg := service.NewRoomRegistry(cfg, logger, service.RealClock{})
	reg.SetNotifier(hub)

	roomHandler := handler.NewRoomHandler(reg, cfg.WSBaseURL)
	roomWS := handler.NewRoomWSHandler(hub, reg, logger)
	health := handler.NewHealthHandler()

	r := router.New(roomHandler, roomWS, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, srv: srv, reg: reg, hub: hub}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled; then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	addr := a.srv.Addr
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", addr)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Ready:         %s/ready", base)
	log.Printf("  Rooms:         %s/rooms", base)
	log.Printf("  WebSocket:     ws://%s:%s/ws/room/:code/:player_id", host, a.cfg.HTTPPort)

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	a.reg.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
