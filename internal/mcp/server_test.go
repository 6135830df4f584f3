package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeDaemon(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"windows": []map[string]any{
				{
					"type": "tasks", "open": true, "maximized": false, "z": 3,
					"rect":    map[string]int{"x": 10, "y": 20, "width": 360, "height": 420},
					"gesture": "idle",
				},
			},
			"playback": map[string]any{
				"playlist_id": "builtin-midnight-study",
				"track_index": 2,
				"track":       map[string]string{"title": "Window Seat", "artist": "Cloud Motel"},
				"playing":     true,
				"volume":      60,
			},
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/api/windows/jukebox/open" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown window kind"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"playing": true, "volume": 60})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, &calls
}

func TestWindowToolsHitDaemonEndpoints(t *testing.T) {
	ts, calls := fakeDaemon(t)
	s := NewServer(ts.URL)

	_, out, err := s.handleOpenWindow(context.Background(), nil, WindowInput{Type: "notes"})
	if err != nil {
		t.Fatalf("open_window: %v", err)
	}
	if out.Status != "ok" {
		t.Fatalf("expected ok status, got %q", out.Status)
	}
	if got := (*calls)[len(*calls)-1]; got != "POST /api/windows/notes/open" {
		t.Fatalf("unexpected daemon call %q", got)
	}
}

func TestWindowToolSurfacesDaemonError(t *testing.T) {
	ts, _ := fakeDaemon(t)
	s := NewServer(ts.URL)

	_, _, err := s.handleOpenWindow(context.Background(), nil, WindowInput{Type: "jukebox"})
	if err == nil {
		t.Fatal("expected error for unknown window kind")
	}
}

func TestListWindowsMapsState(t *testing.T) {
	ts, _ := fakeDaemon(t)
	s := NewServer(ts.URL)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("expected 1 window, got %d", out.Count)
	}
	w := out.Windows[0]
	if w.Type != "tasks" || w.Z != 3 || w.Width != 360 {
		t.Fatalf("unexpected window entry: %+v", w)
	}
}

func TestNowPlayingMapsSnapshot(t *testing.T) {
	ts, _ := fakeDaemon(t)
	s := NewServer(ts.URL)

	_, out, err := s.handleNowPlaying(context.Background(), nil, PlaybackInput{})
	if err != nil {
		t.Fatalf("now_playing: %v", err)
	}
	if out.TrackTitle != "Window Seat" || out.TrackIndex != 2 || !out.Playing {
		t.Fatalf("unexpected now playing: %+v", out)
	}
}

func TestEmptyWindowTypeRejected(t *testing.T) {
	s := NewServer("http://127.0.0.1:0")

	_, _, err := s.handleCloseWindow(context.Background(), nil, WindowInput{})
	if err == nil {
		t.Fatal("expected error for empty window type")
	}
}
