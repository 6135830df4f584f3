package playback

import "fmt"

// Track is a named, time-bounded sub-segment of one continuous video,
// presented to the user as an individually playable song. Offsets are
// seconds from the start of the video.
type Track struct {
	ID        string  `json:"id" yaml:"id"`
	VideoID   string  `json:"video_id" yaml:"video_id"`
	StartTime float64 `json:"start_time" yaml:"start_time"`
	EndTime   float64 `json:"end_time" yaml:"end_time"`
	Title     string  `json:"title" yaml:"title"`
	Artist    string  `json:"artist" yaml:"artist"`
}

// Duration returns the track's own span in seconds.
func (t Track) Duration() float64 {
	return t.EndTime - t.StartTime
}

// Contains reports whether sec falls inside [StartTime, EndTime).
func (t Track) Contains(sec float64) bool {
	return sec >= t.StartTime && sec < t.EndTime
}

// Catalog is the ordered list of tracks belonging to one active playlist,
// all sub-ranges of a single video timeline. The playback engine assumes
// only each track's own bounds, never adjacency.
type Catalog struct {
	PlaylistID string  `json:"playlist_id"`
	Title      string  `json:"title"`
	VideoID    string  `json:"video_id"`
	Tracks     []Track `json:"tracks"`
}

// Len returns the number of tracks.
func (c Catalog) Len() int {
	return len(c.Tracks)
}

// Validate checks every track's bounds.
func (c Catalog) Validate() error {
	for i, t := range c.Tracks {
		if t.StartTime < 0 {
			return fmt.Errorf("track %d (%s): negative start %v", i, t.Title, t.StartTime)
		}
		if t.EndTime <= t.StartTime {
			return fmt.Errorf("track %d (%s): end %v not after start %v", i, t.Title, t.EndTime, t.StartTime)
		}
	}
	return nil
}
