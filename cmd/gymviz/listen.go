package main

import (
	"fmt"
	"log/slog"
	"net"

	"tailscale.com/tsnet"

	"github.com/cabinz/gym-track-visualizer/internal/config"
	"github.com/cabinz/gym-track-visualizer/internal/server"
)

// listener is a net.Listener that also owns the tsnet node behind it, if any.
type listener struct {
	net.Listener
	node *tsnet.Server
}

func (l *listener) close() {
	l.Listener.Close()
	if l.node != nil {
		l.node.Close()
	}
}

// listen opens the tailnet listener when tailscale is enabled, wiring its
// WhoIs client into srv, and a plain TCP listener otherwise.
func listen(cfg *config.Config, srv *server.Server, log *slog.Logger) (*listener, error) {
	if !cfg.Tailscale.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("listening on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", ln.Addr().String(), "identity", "dev user")
		return &listener{Listener: ln}, nil
	}

	node := &tsnet.Server{Hostname: cfg.Tailscale.Hostname, Dir: cfg.Tailscale.StateDir}
	if err := node.Start(); err != nil {
		return nil, fmt.Errorf("starting tsnet: %w", err)
	}
	lc, err := node.LocalClient()
	if err != nil {
		node.Close()
		return nil, fmt.Errorf("tsnet local client: %w", err)
	}
	ln, err := node.Listen("tcp", ":80")
	if err != nil {
		node.Close()
		return nil, fmt.Errorf("tsnet listen: %w", err)
	}
	srv.SetTailscale(lc)
	log.Info("server starting", "hostname", cfg.Tailscale.Hostname, "identity", "tailscale")
	return &listener{Listener: ln, node: node}, nil
}
