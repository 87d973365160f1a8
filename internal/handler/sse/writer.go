package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// EventWriter writes named SSE events with JSON payloads to a streaming
// response. Not safe for concurrent use; the handler serializes writes.
type EventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewEventWriter prepares the response for SSE and returns a writer. Returns
// an error if the underlying ResponseWriter cannot flush.
func NewEventWriter(w http.ResponseWriter) (*EventWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &EventWriter{w: w, flusher: flusher}, nil
}

// WriteEvent writes one named event with a JSON-encoded payload and flushes.
func (e *EventWriter) WriteEvent(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("write event failed: %w", err)
	}

	e.flusher.Flush()
	return nil
}

// WriteKeepAlive writes an SSE comment line (ignored by clients) and flushes.
// Returns error if the connection is closed.
func (e *EventWriter) WriteKeepAlive() error {
	if _, err := fmt.Fprintf(e.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}

	e.flusher.Flush()

	// Zero-byte write to detect closed connections.
	if _, err := e.w.Write([]byte{}); err != nil {
		return fmt.Errorf("connection closed: %w", err)
	}

	return nil
}
