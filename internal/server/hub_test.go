package server

import (
	"context"
	"testing"
	"time"
)

func TestHubRunStopsOnContextCancel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	h.Broadcast([]byte(`{"type":"state"}`))
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub loop did not stop on context cancellation")
	}
}
