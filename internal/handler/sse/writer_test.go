package sse

import (
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestEventWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewEventWriter(rec)
	if err != nil {
		t.Fatalf("NewEventWriter() error = %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q", cc)
	}

	if err := w.WriteEvent("delta", map[string]string{"text": "hello"}); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}

	got := rec.Body.String()
	want := "event: delta\ndata: {\"text\":\"hello\"}\n\n"
	if got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if !rec.Flushed {
		t.Errorf("response not flushed after event")
	}
}

func TestEventWriterKeepAlive(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewEventWriter(rec)
	if err != nil {
		t.Fatalf("NewEventWriter() error = %v", err)
	}

	if err := w.WriteKeepAlive(); err != nil {
		t.Fatalf("WriteKeepAlive() error = %v", err)
	}
	if !strings.HasPrefix(rec.Body.String(), ": keepalive") {
		t.Errorf("body = %q, want SSE comment", rec.Body.String())
	}
}

type countingWriter struct {
	writes int
	fail   bool
}

func (c *countingWriter) WriteKeepAlive() error {
	c.writes++
	if c.fail {
		return errTestClosed
	}
	return nil
}

var errTestClosed = &closedError{}

type closedError struct{}

func (*closedError) Error() string { return "connection closed" }

func TestTickerKeepAliveStops(t *testing.T) {
	writer := &countingWriter{}
	ka := NewTickerKeepAlive(5 * time.Millisecond)

	stopped := ka.Start(writer, discardLogger())
	time.Sleep(25 * time.Millisecond)
	ka.Stop()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("keep-alive did not stop")
	}
	if writer.writes == 0 {
		t.Errorf("no keep-alive writes happened")
	}
}

func TestTickerKeepAliveStopsOnWriteFailure(t *testing.T) {
	writer := &countingWriter{fail: true}
	ka := NewTickerKeepAlive(time.Millisecond)
	defer ka.Stop()

	stopped := ka.Start(writer, discardLogger())
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("keep-alive did not stop after write failure")
	}
}

func TestTickerKeepAliveStopIdempotent(t *testing.T) {
	ka := NewTickerKeepAlive(time.Minute)
	ka.Start(&countingWriter{}, discardLogger())
	ka.Stop()
	ka.Stop() // must not panic
}
