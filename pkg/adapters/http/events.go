package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/storyline/internal/logging"
	"github.com/aretw0/storyline/pkg/domain"
)

// StreamManager fans lifecycle events out to Server-Sent Events subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
	closed      bool
	logger      *slog.Logger
}

// NewStreamManager creates a manager without subscribers.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel. The returned func unsubscribes and closes it.
// After Close the channel is returned already closed.
func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 32)
	if sm.closed {
		close(ch)
		return ch, func() {}
	}
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast sends msg to every subscriber. Slow subscribers lose messages.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// Close ends every subscription, which makes the SSE handlers return.
// It is safe to call more than once.
func (sm *StreamManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.closed = true
	for ch := range sm.subscribers {
		delete(sm.subscribers, ch)
		close(ch)
	}
}

// Subscribers returns the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Hooks returns lifecycle hooks that broadcast every event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	launch := func(_ context.Context, e *domain.LaunchEvent) { sm.publish(launchPayload(e)) }
	item := func(_ context.Context, e *domain.ItemEvent) { sm.publish(itemPayload(e)) }
	return domain.LifecycleHooks{
		OnLaunchStart:  launch,
		OnLaunchFinish: launch,
		OnServiceDown:  launch,
		OnItemStart:    item,
		OnItemFinish:   item,
	}
}

// eventPayload is the JSON shape of a streamed event. Errors are flattened to text.
type eventPayload struct {
	Type       domain.EventType `json:"type"`
	LaunchID   domain.ItemID    `json:"launch_id,omitempty"`
	ItemID     domain.ItemID    `json:"item_id,omitempty"`
	ParentID   domain.ItemID    `json:"parent_id,omitempty"`
	ItemType   domain.ItemType  `json:"item_type,omitempty"`
	Name       string           `json:"name,omitempty"`
	Status     domain.Status    `json:"status,omitempty"`
	DurationMS int64            `json:"duration_ms,omitempty"`
	Forced     bool             `json:"forced,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func launchPayload(e *domain.LaunchEvent) eventPayload {
	p := eventPayload{Type: e.Type, LaunchID: e.LaunchID, Name: e.Name}
	if e.Err != nil {
		p.Error = e.Err.Error()
	}
	return p
}

func itemPayload(e *domain.ItemEvent) eventPayload {
	p := eventPayload{
		Type:       e.Type,
		LaunchID:   e.LaunchID,
		ItemID:     e.ItemID,
		ParentID:   e.ParentID,
		ItemType:   e.ItemType,
		Name:       e.Name,
		Status:     e.Status,
		DurationMS: e.Duration.Milliseconds(),
		Forced:     e.Forced,
	}
	if e.Err != nil {
		p.Error = e.Err.Error()
	}
	return p
}

func (sm *StreamManager) publish(p eventPayload) {
	data, err := json.Marshal(p)
	if err != nil {
		sm.logger.Error("SSE: Failed to encode event", "err", err)
		return
	}
	sm.Broadcast(string(data))
}

// SubscribeEvents handles GET /events (SSE). An optional ?type= filter keeps one event type.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	filter := domain.EventType(r.URL.Query().Get("type"))

	ch, cancel := s.streams.Subscribe()
	defer cancel()
	s.logger.Info("SSE: Client subscribed", "filter", filter)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if filter != "" {
				var p eventPayload
				if err := json.Unmarshal([]byte(msg), &p); err == nil && p.Type != filter {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
