// Package server exposes the engine's JSON command protocol over a
// websocket. The engine itself is not safe for concurrent use, so every
// command from every connection is serialized through one mutex.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkwok/lifecore/engine"
	"github.com/mkwok/lifecore/protocol"
)

// Server serves one shared engine instance to websocket clients.
type Server struct {
	eng *engine.Engine
	mu  sync.Mutex

	upgrader websocket.Upgrader
	http     *http.Server
}

// New wraps eng in a websocket server listening on addr.
func New(eng *engine.Engine, addr string) *Server {
	s := &Server{
		eng: eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the route table for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving websocket clients until Shutdown.
func (s *Server) ListenAndServe() error {
	slog.Info("listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains in-flight handlers.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()
	slog.Info("client connected", "remote", conn.RemoteAddr())

	for {
		kind, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("client read failed", "remote", conn.RemoteAddr(), "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		s.mu.Lock()
		resp := s.eng.HandleCommand(raw)
		s.mu.Unlock()

		out, err := json.Marshal(resp)
		if err != nil {
			out, _ = json.Marshal(protocol.ErrorResponse("internal error encoding response"))
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			slog.Warn("client write failed", "remote", conn.RemoteAddr(), "err", err)
			return
		}
	}
}
