package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/weft-dev/weft/pkg/snapshot"
)

// Source produces point-in-time snapshots of a store. Implementations
// own whatever locking the store needs; the inspector runs on its own
// goroutines and never touches the store directly.
type Source interface {
	Snapshot() (*snapshot.Snapshot, error)
}

// Config configures the inspector server.
type Config struct {
	// Addr is the listen address (default: "127.0.0.1:7676").
	Addr string

	// Source provides graph snapshots for /graph and /nodes/{id}.
	Source Source

	// Feed streams live events over /live. Optional; without it the
	// /live route responds 404.
	Feed *Feed

	// Metrics is mounted at /metrics when set, typically
	// promhttp.Handler().
	Metrics http.Handler

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// WriteTimeout bounds each WebSocket write (default: 10s).
	WriteTimeout time.Duration

	// PingInterval is the WebSocket keepalive cadence (default: 30s).
	PingInterval time.Duration
}

// Server is the devtools HTTP/WebSocket server.
type Server struct {
	config     Config
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server
}

// New creates an inspector server. Source is required.
func New(config Config) *Server {
	if config.Addr == "" {
		config.Addr = "127.0.0.1:7676"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.PingInterval == 0 {
		config.PingInterval = 30 * time.Second
	}

	s := &Server{
		config: config,
		logger: config.Logger.With("component", "inspect"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The inspector binds to loopback by default; the devtools
			// frontend may be served from anywhere.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/nodes/{id}", s.handleNode)
	if config.Feed != nil {
		r.Get("/live", s.handleLive)
	}
	if config.Metrics != nil {
		r.Handle("/metrics", config.Metrics)
	}
	s.router = r

	return s
}

// Handler returns the inspector's HTTP handler, for mounting into an
// existing server or into httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and blocks until Shutdown or
// failure.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("inspector listening", "addr", s.config.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.config.Source.Snapshot()
	if err != nil {
		s.logger.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Error("graph encode failed", "error", err)
	}
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid node id", http.StatusBadRequest)
		return
	}

	snap, err := s.config.Source.Snapshot()
	if err != nil {
		s.logger.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	for _, node := range snap.Nodes {
		if uint64(node.ID) == id {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(node); err != nil {
				s.logger.Error("node encode failed", "error", err)
			}
			return
		}
	}
	http.Error(w, "node not found", http.StatusNotFound)
}

// handleLive upgrades to WebSocket and streams feed events as JSON
// messages until the client disconnects.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := s.config.Feed.Subscribe()
	defer s.config.Feed.Unsubscribe(events)

	// Drain client frames so control messages are processed and a close
	// is noticed promptly.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure) {
					s.logger.Error("write error", "error", err)
				}
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
