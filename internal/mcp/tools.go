package mcp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// apiWindow mirrors the daemon's window snapshot entry.
type apiWindow struct {
	Type      string `json:"type"`
	Open      bool   `json:"open"`
	Maximized bool   `json:"maximized"`
	Z         int    `json:"z"`
	Rect      struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"rect"`
	Gesture string `json:"gesture"`
}

// apiPlayback mirrors the daemon's playback snapshot.
type apiPlayback struct {
	PlaylistID string `json:"playlist_id"`
	TrackIndex int    `json:"track_index"`
	Track      *struct {
		Title  string `json:"title"`
		Artist string `json:"artist"`
	} `json:"track"`
	Playing  bool    `json:"playing"`
	Volume   int     `json:"volume"`
	Muted    bool    `json:"muted"`
	Shuffle  bool    `json:"shuffle"`
	Progress float64 `json:"progress"`
}

type apiState struct {
	Windows  []apiWindow `json:"windows"`
	Playback apiPlayback `json:"playback"`
}

func (s *Server) windowAction(ctx context.Context, args WindowInput, action string) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if args.Type == "" {
		return nil, WindowOutput{}, fmt.Errorf("type is required")
	}
	path := "/api/windows/" + url.PathEscape(args.Type) + "/" + action
	if err := s.call(ctx, http.MethodPost, path, nil, nil); err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Type: args.Type, Status: "ok"}, nil
}

func (s *Server) handleOpenWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowAction(ctx, args, "open")
}

func (s *Server) handleCloseWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowAction(ctx, args, "close")
}

func (s *Server) handleToggleWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowAction(ctx, args, "toggle")
}

func (s *Server) handleFocusWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowAction(ctx, args, "focus")
}

func (s *Server) handleListWindows(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	var state apiState
	if err := s.call(ctx, http.MethodGet, "/api/state", nil, &state); err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]WindowEntry, 0, len(state.Windows))}
	for _, w := range state.Windows {
		out.Windows = append(out.Windows, WindowEntry{
			Type:      w.Type,
			Open:      w.Open,
			Maximized: w.Maximized,
			Z:         w.Z,
			X:         w.Rect.X,
			Y:         w.Rect.Y,
			Width:     w.Rect.Width,
			Height:    w.Rect.Height,
			Gesture:   w.Gesture,
		})
	}
	out.Count = len(out.Windows)
	return nil, out, nil
}

func (s *Server) playbackAction(ctx context.Context, action string) (*mcpsdk.CallToolResult, NowPlayingOutput, error) {
	var snap apiPlayback
	if err := s.call(ctx, http.MethodPost, "/api/playback/"+action, nil, &snap); err != nil {
		return nil, NowPlayingOutput{}, err
	}
	return nil, nowPlayingFrom(snap), nil
}

func nowPlayingFrom(snap apiPlayback) NowPlayingOutput {
	out := NowPlayingOutput{
		PlaylistID: snap.PlaylistID,
		TrackIndex: snap.TrackIndex,
		Playing:    snap.Playing,
		Volume:     snap.Volume,
		Muted:      snap.Muted,
		Shuffle:    snap.Shuffle,
		Progress:   snap.Progress,
	}
	if snap.Track != nil {
		out.TrackTitle = snap.Track.Title
		out.TrackArtist = snap.Track.Artist
	}
	return out
}

func (s *Server) handlePlay(ctx context.Context, _ *mcpsdk.CallToolRequest, _ PlaybackInput) (*mcpsdk.CallToolResult, NowPlayingOutput, error) {
	return s.playbackAction(ctx, "play")
}

func (s *Server) handlePause(ctx context.Context, _ *mcpsdk.CallToolRequest, _ PlaybackInput) (*mcpsdk.CallToolResult, NowPlayingOutput, error) {
	return s.playbackAction(ctx, "pause")
}

func (s *Server) handleNextTrack(ctx context.Context, _ *mcpsdk.CallToolRequest, _ PlaybackInput) (*mcpsdk.CallToolResult, NowPlayingOutput, error) {
	return s.playbackAction(ctx, "next")
}

func (s *Server) handlePreviousTrack(ctx context.Context, _ *mcpsdk.CallToolRequest, _ PlaybackInput) (*mcpsdk.CallToolResult, NowPlayingOutput, error) {
	return s.playbackAction(ctx, "previous")
}

func (s *Server) handleSetVolume(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetVolumeInput) (*mcpsdk.CallToolResult, NowPlayingOutput, error) {
	var snap apiPlayback
	body := map[string]int{"volume": args.Volume}
	if err := s.call(ctx, http.MethodPost, "/api/playback/volume", body, &snap); err != nil {
		return nil, NowPlayingOutput{}, err
	}
	return nil, nowPlayingFrom(snap), nil
}

func (s *Server) handleNowPlaying(ctx context.Context, _ *mcpsdk.CallToolRequest, _ PlaybackInput) (*mcpsdk.CallToolResult, NowPlayingOutput, error) {
	var state apiState
	if err := s.call(ctx, http.MethodGet, "/api/state", nil, &state); err != nil {
		return nil, NowPlayingOutput{}, err
	}
	return nil, nowPlayingFrom(state.Playback), nil
}

func (s *Server) handleListPlaylists(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListPlaylistsInput) (*mcpsdk.CallToolResult, ListPlaylistsOutput, error) {
	var lists []struct {
		ID     string     `json:"id"`
		Title  string     `json:"title"`
		Tracks []struct{} `json:"tracks"`
	}
	if err := s.call(ctx, http.MethodGet, "/api/playlists/", nil, &lists); err != nil {
		return nil, ListPlaylistsOutput{}, err
	}
	out := ListPlaylistsOutput{Playlists: make([]PlaylistEntry, 0, len(lists))}
	for _, p := range lists {
		out.Playlists = append(out.Playlists, PlaylistEntry{
			ID:         p.ID,
			Title:      p.Title,
			TrackCount: len(p.Tracks),
		})
	}
	return nil, out, nil
}

func (s *Server) handleActivatePlaylist(ctx context.Context, _ *mcpsdk.CallToolRequest, args ActivatePlaylistInput) (*mcpsdk.CallToolResult, NowPlayingOutput, error) {
	if args.ID == "" {
		return nil, NowPlayingOutput{}, fmt.Errorf("id is required")
	}
	var snap apiPlayback
	path := "/api/playlists/" + url.PathEscape(args.ID) + "/activate"
	if err := s.call(ctx, http.MethodPost, path, nil, &snap); err != nil {
		return nil, NowPlayingOutput{}, err
	}
	return nil, nowPlayingFrom(snap), nil
}
