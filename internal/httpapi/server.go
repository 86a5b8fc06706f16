// Package httpapi is the minimal live surface spec.md's Non-goals allow:
// an event stream over WebSocket and a search endpoint, nothing more.
// Grounded on the teacher's relay HTTP handlers (net/http.ServeMux with
// method-prefixed patterns, coder/websocket.Accept for upgrades) scaled
// down to this daemon's two routes. Prometheus metrics are scraped from a
// separate listener (internal/metrics.Serve), not from this mux, so this
// surface stays exactly what the spec allows.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/memri-app/memri/internal/assistant"
	"github.com/memri-app/memri/internal/events"
	"github.com/memri-app/memri/internal/store"
)

// writeTimeout bounds how long a single WebSocket frame write may take
// before the connection is considered dead, mirroring the teacher's
// relay app-dashboard socket.
const writeTimeout = 5 * time.Second

// Server is the live event + search HTTP surface. It owns no state beyond
// references to the Hub and Store it fronts.
type Server struct {
	hub   *events.Hub
	store *store.Store
	log   *slog.Logger
	mux   *http.ServeMux
}

// New builds a Server wired to hub (for /events) and st (for /search).
func New(hub *events.Hub, st *store.Store, log *slog.Logger) *Server {
	s := &Server{hub: hub, store: st, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /events", s.handleEvents)
	s.mux.HandleFunc("GET /search", s.handleSearch)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleEvents upgrades to WebSocket and forwards every Hub broadcast to
// the browser until the connection or the request context ends.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	connID := uuid.NewString()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn("events: accept failed", "conn", connID, "error", err)
		return
	}
	defer conn.CloseNow()

	ch, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()
	s.log.Debug("events: subscriber connected", "conn", connID)
	defer s.log.Debug("events: subscriber disconnected", "conn", connID)

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case data, ok := <-ch:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// searchResponse is the JSON shape returned from /search.
type searchResponse struct {
	Query   string                  `json:"query"`
	Results []store.CaptureMetadata `json:"results"`
}

// handleSearch runs the assistant's query builder over the raw "q"
// parameter, lets explicit start/end parameters override the bounds it
// derived, then wraps store.SearchCaptures.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("q")
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	query, startMs, endMs := assistant.Build(time.Now(), raw)
	if v := r.URL.Query().Get("start"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			startMs = &parsed
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			endMs = &parsed
		}
	}

	results, err := s.store.SearchCaptures(r.Context(), query, startMs, endMs, limit)
	if err != nil {
		s.log.Warn("search failed", "error", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(searchResponse{Query: query, Results: results})
}
