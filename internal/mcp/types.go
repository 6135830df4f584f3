package mcp

// WindowInput names the window a tool acts on.
type WindowInput struct {
	Type string `json:"type" jsonschema:"required,Window type: tasks, notes, timer, calendar, settings, playlist, customLinks, widgets, or widget-<id> for a custom widget"`
}

// WindowOutput reports the result of a window operation.
type WindowOutput struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// WindowEntry describes one open window.
type WindowEntry struct {
	Type      string `json:"type"`
	Open      bool   `json:"open"`
	Maximized bool   `json:"maximized"`
	Z         int    `json:"z"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Gesture   string `json:"gesture"`
}

// ListWindowsInput has no parameters.
type ListWindowsInput struct{}

// ListWindowsOutput lists open windows back-to-front.
type ListWindowsOutput struct {
	Windows []WindowEntry `json:"windows"`
	Count   int           `json:"count"`
}

// PlaybackInput has no parameters.
type PlaybackInput struct{}

// SetVolumeInput is the input for the set_volume tool.
type SetVolumeInput struct {
	Volume int `json:"volume" jsonschema:"required,Volume from 0 to 100"`
}

// NowPlayingOutput reports the playback state.
type NowPlayingOutput struct {
	PlaylistID  string  `json:"playlist_id"`
	TrackIndex  int     `json:"track_index"`
	TrackTitle  string  `json:"track_title,omitempty"`
	TrackArtist string  `json:"track_artist,omitempty"`
	Playing     bool    `json:"playing"`
	Volume      int     `json:"volume"`
	Muted       bool    `json:"muted"`
	Shuffle     bool    `json:"shuffle"`
	Progress    float64 `json:"progress"`
}

// ListPlaylistsInput has no parameters.
type ListPlaylistsInput struct{}

// PlaylistEntry summarizes one saved playlist.
type PlaylistEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TrackCount int    `json:"track_count"`
}

// ListPlaylistsOutput lists saved playlists.
type ListPlaylistsOutput struct {
	Playlists []PlaylistEntry `json:"playlists"`
}

// ActivatePlaylistInput is the input for the activate_playlist tool.
type ActivatePlaylistInput struct {
	ID string `json:"id" jsonschema:"required,Playlist id to activate"`
}
