// Package api implements the local HTTP control surface from spec.md
// §4.6/§6: a stateless, task-per-request layer over the snippet store and
// daemon status, bound to 127.0.0.1 for external front-ends (CLI, TUI,
// GUI) to consume.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kir-gadjello/expando/internal/logging"
	"github.com/kir-gadjello/expando/internal/store"
)

// StatusFunc reports daemon liveness without api importing internal/daemon
// directly — internal/daemon wires a Server and consumes its Port, so the
// dependency only runs one way.
type StatusFunc func() (running bool, pid int)

// envelope is the response shape every route shares (spec.md §4.6).
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *string     `json:"error"`
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeErr(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	writeJSON(w, status, envelope{Success: false, Error: &msg})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Details is the response shape for GET /api/daemon/details (spec.md §6).
type Details struct {
	Running    bool   `json:"running"`
	PID        int    `json:"pid"`
	ConfigPath string `json:"config_path"`
	APIServer  struct {
		Port int    `json:"port"`
		URL  string `json:"url"`
	} `json:"api_server"`
	// RecentIdleText is the observer's typed-text buffer since the last
	// word boundary, for diagnosing why a shortcut failed to arm (e.g.
	// confirming the trigger character actually reached the hook). Empty
	// when the daemon hasn't wired a source (SetRecentTextSource).
	RecentIdleText string `json:"recent_idle_text,omitempty"`
}

// Server hosts the control API. Handlers are stateless; all shared state
// is *store.Store, itself synchronized by its own file/process locks
// (spec.md §4.6).
type Server struct {
	store      *store.Store
	configPath string
	status     StatusFunc
	log        *logging.Logger

	listener net.Listener
	port     int

	recentText func() string
}

// SetRecentTextSource wires a read-through accessor for the observer's
// idle-text diagnostic buffer into /api/daemon/details. fn must be safe to
// call concurrently from the API's request goroutines, e.g. a closure over
// an atomic.Pointer[string] the observer task publishes into.
func (s *Server) SetRecentTextSource(fn func() string) {
	s.recentText = fn
}

// New wires handlers against st. configPath feeds the /api/daemon/details
// diagnostic route; status reports daemon liveness for that route and for
// /api/daemon/status.
func New(st *store.Store, configPath string, status StatusFunc, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Default()
	}
	return &Server{store: st, configPath: configPath, status: status, log: log}
}

// Listen binds the first free port in [low, low+n), per spec.md §4.6.
func (s *Server) Listen(low, n int) error {
	for port := low; port < low+n; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			s.listener = ln
			s.port = port
			return nil
		}
	}
	return fmt.Errorf("api: no free port found in range [%d, %d)", low, low+n)
}

// Port returns the bound port (valid only after a successful Listen).
func (s *Server) Port() int { return s.port }

// Serve blocks, accepting connections until ctx is canceled. Request
// handling is task-per-request, matching net/http's default
// goroutine-per-connection model — spec.md §5's "Control-API tasks:
// task-per-request model over an async runtime".
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Handler: s.mux()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(s.listener) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/snippets", s.handleSnippets)
	mux.HandleFunc("/api/snippet", s.handleSnippet)
	mux.HandleFunc("/api/daemon/status", s.handleDaemonStatus)
	mux.HandleFunc("/api/daemon/details", s.handleDaemonDetails)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]string{"status": "ok"})
}

type snippetBody struct {
	Shortcut string `json:"shortcut"`
	Snippet  string `json:"snippet"`
}

func (s *Server) handleSnippets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeOK(w, s.store.List())

	case http.MethodPost:
		var body snippetBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		entry, err := s.store.Add(body.Shortcut, body.Snippet)
		if err != nil {
			writeErr(w, http.StatusConflict, err)
			return
		}
		writeOK(w, entry)

	case http.MethodPut:
		var body snippetBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		entry, err := s.store.Update(body.Shortcut, body.Snippet)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeOK(w, entry)

	case http.MethodDelete:
		shortcut := r.URL.Query().Get("shortcut")
		if err := s.store.Delete(shortcut); err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeOK(w, nil)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSnippet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	shortcut := r.URL.Query().Get("shortcut")
	entry, ok := s.store.Get(shortcut)
	if !ok {
		writeOK(w, nil)
		return
	}
	writeOK(w, entry)
}

func (s *Server) handleDaemonStatus(w http.ResponseWriter, r *http.Request) {
	running, _ := s.status()
	writeOK(w, running)
}

func (s *Server) handleDaemonDetails(w http.ResponseWriter, r *http.Request) {
	running, pid := s.status()
	details := Details{Running: running, PID: pid, ConfigPath: s.configPath}
	details.APIServer.Port = s.port
	details.APIServer.URL = fmt.Sprintf("http://127.0.0.1:%d", s.port)
	if s.recentText != nil {
		details.RecentIdleText = s.recentText()
	}
	writeOK(w, details)
}
