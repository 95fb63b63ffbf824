// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The deskctl Authors

package feed

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Event is the JSON shape sent to websocket clients.
type Event struct {
	Time     string `json:"t"`
	HeightMM int    `json:"height_mm"`
	Speed    int16  `json:"speed"`
}

// Server streams telemetry events to websocket clients at /ws.
type Server struct {
	broadcaster *Broadcaster
	log         *slog.Logger
	upgrader    websocket.Upgrader
}

// NewServer creates a feed server over the given broadcaster.
func NewServer(b *Broadcaster, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		broadcaster: b,
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  256,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the HTTP routes of the feed server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	s.log.Debug("feed client connected", "remote", r.RemoteAddr)

	ch, unsub := s.broadcaster.Subscribe()
	defer unsub()

	// Drain client frames so close handshakes are noticed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-clientGone:
			s.log.Debug("feed client disconnected", "remote", r.RemoteAddr)
			return
		case sample, ok := <-ch:
			if !ok {
				return
			}
			event := Event{
				Time:     sample.At.Format(time.RFC3339Nano),
				HeightMM: sample.HeightMM,
				Speed:    sample.Speed,
			}
			if err := conn.WriteJSON(event); err != nil {
				s.log.Debug("feed client write failed", "remote", r.RemoteAddr, "err", err)
				return
			}
		}
	}
}
