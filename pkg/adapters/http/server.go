// Package http exposes the controller to the client application: snapshot
// reads, a live feed stream, and an endpoint accepting update documents.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tendril/internal/dto"
	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// MaxUpdateBytes bounds a POST /updates body.
const MaxUpdateBytes = 1 << 20

// Server serves snapshots and accepts updates. It implements
// ports.SnapshotSink; Updates returns the ports.UpdateSource fed by
// POST /updates.
type Server struct {
	Streams *StreamManager

	updates *memory.Queue
	metrics http.Handler
	version string
	logger  *slog.Logger

	mu         sync.RWMutex
	components domain.ComponentSet
	events     []domain.EventDef
	feed       domain.Feed
}

type Option func(*Server)

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by GET /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		updates: memory.NewQueue(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// Updates returns the queue of accepted update documents.
func (s *Server) Updates() *memory.Queue {
	return s.updates
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/components", s.GetComponents)
	r.Get("/events", s.GetEvents)
	r.Get("/feed", s.GetFeed)
	r.Get("/feed/stream", s.StreamFeed)
	r.Post("/updates", s.PostUpdate)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe runs the server on addr until ctx is cancelled, then shuts
// it down, giving outstanding requests a deadline for completion.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("Graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		return nil
	}
}

// -- SnapshotSink --

func (s *Server) PublishComponents(_ context.Context, components domain.ComponentSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components = components
	return nil
}

func (s *Server) PublishEvents(_ context.Context, events []domain.EventDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	return nil
}

// PublishFeed keeps the feed and broadcasts what changed to stream clients.
func (s *Server) PublishFeed(_ context.Context, feed domain.Feed) error {
	s.mu.Lock()
	diff := domain.DiffFeed(s.feed, feed)
	s.feed = feed
	s.mu.Unlock()

	if diff == nil {
		return nil
	}
	data, err := json.Marshal(diff)
	if err != nil {
		return fmt.Errorf("failed to marshal feed diff: %w", err)
	}
	s.Streams.Broadcast(string(data))
	return nil
}

// -- Handlers --

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.version != "" {
		resp["version"] = s.version
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

// GetComponents handles the GET /components request.
func (s *Server) GetComponents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	components := s.components
	s.mu.RUnlock()
	if components == nil {
		components = domain.ComponentSet{}
	}
	writeJSON(w, s.logger, http.StatusOK, components)
}

// GetEvents handles the GET /events request.
func (s *Server) GetEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	events := s.events
	s.mu.RUnlock()
	if events == nil {
		events = []domain.EventDef{}
	}
	writeJSON(w, s.logger, http.StatusOK, events)
}

// GetFeed handles the GET /feed request.
func (s *Server) GetFeed(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	feed := s.feed
	s.mu.RUnlock()
	if feed == nil {
		feed = domain.Feed{}
	}
	writeJSON(w, s.logger, http.StatusOK, feed)
}

// PostUpdate handles the POST /updates request. The body has the shape of a
// client update document; it is queued and applied on the next sync.
func (s *Server) PostUpdate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxUpdateBytes+1))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(data) > MaxUpdateBytes {
		http.Error(w, "Update too large", http.StatusRequestEntityTooLarge)
		return
	}

	update, err := dto.DecodeDefinitionJSON(data)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid update: %v", err), http.StatusBadRequest)
		s.logger.Warn("PostUpdate: Invalid update", "error", err)
		return
	}
	if update.IsEmpty() {
		http.Error(w, "Update carries neither COMPONENTS nor EVENTS", http.StatusBadRequest)
		return
	}

	s.updates.Push(update)
	s.logger.Info("Update queued", "components", update.Components.Len(), "events", len(update.Events))
	writeJSON(w, s.logger, http.StatusAccepted, map[string]int{"queued": s.updates.Len()})
}

// StreamFeed handles the GET /feed/stream request (SSE). The first message
// carries the whole current feed; later ones only what changed. An optional
// kinds=COUNTER,TIMER parameter restricts the stream to those kinds.
func (s *Server) StreamFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("StreamFeed: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var kinds map[domain.Kind]bool
	if raw := r.URL.Query().Get("kinds"); raw != "" {
		kinds = make(map[domain.Kind]bool)
		for _, k := range strings.Split(raw, ",") {
			kinds[domain.Kind(strings.ToUpper(strings.TrimSpace(k)))] = true
		}
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	s.mu.RLock()
	initial := domain.DiffFeed(nil, s.feed)
	s.mu.RUnlock()
	if msg, ok := filterDiff(initial, kinds); ok {
		fmt.Fprintf(w, "data: %s\n\n", msg)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if kinds != nil {
				var diff domain.FeedDiff
				if err := json.Unmarshal([]byte(msg), &diff); err != nil {
					continue
				}
				if msg, ok = filterDiff(&diff, kinds); !ok {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// filterDiff keeps only the watched kinds. Removals are always kept since
// they are not grouped by kind.
func filterDiff(diff *domain.FeedDiff, kinds map[domain.Kind]bool) (string, bool) {
	if diff.IsEmpty() {
		return "", false
	}
	if kinds != nil {
		filtered := &domain.FeedDiff{Removed: diff.Removed}
		for kind, values := range diff.Changed {
			if !kinds[kind] {
				continue
			}
			if filtered.Changed == nil {
				filtered.Changed = make(map[domain.Kind]map[string]domain.Value)
			}
			filtered.Changed[kind] = values
		}
		if filtered.IsEmpty() {
			return "", false
		}
		diff = filtered
	}
	data, err := json.Marshal(diff)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}
