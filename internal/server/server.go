// Package server exposes neoncake over HTTP: a health check, the app status
// and tracking switch, a WebSocket frame stream for browser viewers and an
// MJPEG camera preview.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/neoncake/internal/app"
	"github.com/ayusman/neoncake/internal/capture"
)

// Controller is the part of the app the server reads and controls.
type Controller interface {
	Status() app.Status
	SetTracking(enabled bool)
}

// Config holds the server configuration. Nil fields disable their routes.
type Config struct {
	StaticDir string
	Hub       *FrameHub
	Preview   *capture.Preview
	App       Controller
}

// Server represents the HTTP server for neoncake.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.HandleFunc("/api/tracking", s.handleTracking)
	}
	if s.config.Hub != nil {
		s.mux.Handle("/api/frames", s.config.Hub)
	}
	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}
	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Tracking    bool       `json:"tracking"`
	HandPresent bool       `json:"hand_present"`
	Openness    float64    `json:"openness"`
	Rotation    [3]float64 `json:"rotation"`
	Frames      uint64     `json:"frames"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse(s.config.App.Status()))
}

// TrackingRequest is the body of POST /api/tracking.
type TrackingRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Enabled == nil {
		http.Error(w, "enabled is required", http.StatusBadRequest)
		return
	}

	s.config.App.SetTracking(*req.Enabled)
	st := s.config.App.Status()
	st.Tracking = *req.Enabled
	writeJSON(w, http.StatusOK, statusResponse(st))
}

func statusResponse(st app.Status) StatusResponse {
	return StatusResponse{
		Tracking:    st.Tracking,
		HandPresent: st.HandPresent,
		Openness:    st.Openness,
		Rotation:    st.Rotation,
		Frames:      st.Frames,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// ShutdownTimeout bounds how long Run waits for open requests on shutdown.
const ShutdownTimeout = 2 * time.Second

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("Listening on %s", addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		// Streaming responses never go idle on their own.
		return srv.Close()
	}
	return nil
}
