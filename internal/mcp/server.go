package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "lofideck"
	ServerVersion = "0.1.0"
)

// Server is the MCP control surface for a running lofideck daemon. Tools
// are thin wrappers over the daemon's HTTP API, so an MCP client can drive
// the desk and the player the same way a browser does.
type Server struct {
	mcpServer *mcpsdk.Server
	baseURL   string
	client    *http.Client
}

// NewServer creates an MCP server that talks to the daemon at baseURL.
func NewServer(baseURL string) *Server {
	s := &Server{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a desktop window and bring it to the front. Fixed types: tasks, notes, timer, calendar, settings, playlist, customLinks, widgets. Custom widgets use widget-<id>.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a desktop window. Closing an already-closed window is a no-op; its position and stacking rank are kept for the next open.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_window",
		Description: "Toggle a desktop window: open it if closed, close it if open.",
	}, s.handleToggleWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Raise a window to the top of the stack without changing its open state.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List all open windows back-to-front with geometry, maximize state and current gesture.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "play",
		Description: "Resume playback of the current track.",
	}, s.handlePlay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pause",
		Description: "Pause playback.",
	}, s.handlePause)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "next_track",
		Description: "Advance to the next track, honoring shuffle order and wrapping at the end of the playlist.",
	}, s.handleNextTrack)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "previous_track",
		Description: "Step back to the previous track, honoring shuffle order and wrapping at the start of the playlist.",
	}, s.handlePreviousTrack)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_volume",
		Description: "Set playback volume (0-100). Setting a positive volume while muted also unmutes.",
	}, s.handleSetVolume)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "now_playing",
		Description: "Report the current playback state: track, position, volume, mute and shuffle.",
	}, s.handleNowPlaying)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_playlists",
		Description: "List saved playlists.",
	}, s.handleListPlaylists)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate_playlist",
		Description: "Load a playlist by id and make it the active one. Re-activating the current playlist keeps the playing track.",
	}, s.handleActivatePlaylist)
}

// call performs one HTTP request against the daemon and decodes the JSON
// response into out when out is non-nil.
func (s *Server) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable at %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
