package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Emitter writes server-sent events to a long-lived response. It is safe
// for concurrent use: the heartbeat goroutine and the generation path
// share one connection.
type Emitter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewEmitter prepares the response for SSE. The headers disable
// intermediary buffering and caching so events reach the client promptly.
func NewEmitter(w http.ResponseWriter) (*Emitter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Emitter{w: w, flusher: flusher}, nil
}

// Event writes one typed event with a JSON payload and flushes it.
func (e *Emitter) Event(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event, err)
	}
	e.flusher.Flush()
	return nil
}

// Comment writes a protocol-level comment frame. Conforming clients
// ignore it; intermediaries see traffic and keep the connection open.
func (e *Emitter) Comment(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := fmt.Fprintf(e.w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("failed to write comment: %w", err)
	}
	e.flusher.Flush()
	return nil
}
