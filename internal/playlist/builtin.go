package playlist

import "github.com/lofideck/lofideck/internal/playback"

// BuiltinID is the id of the bundled default playlist.
const BuiltinID = "builtin-midnight-study"

// Builtin returns the bundled default playlist: one hour-long stream split
// into track boundaries. Used until the user activates a saved playlist.
func Builtin() Playlist {
	const video = "jfKfPfyJRdk"
	mk := func(id string, start, end float64, title, artist string) playback.Track {
		return playback.Track{
			ID: id, VideoID: video,
			StartTime: start, EndTime: end,
			Title: title, Artist: artist,
		}
	}
	return Playlist{
		ID:      BuiltinID,
		Title:   "midnight study session",
		VideoID: video,
		Tracks: []playback.Track{
			mk("ms-01", 0, 184, "first light", "cloudkeeper"),
			mk("ms-02", 184, 371, "paper lanterns", "cloudkeeper"),
			mk("ms-03", 371, 540, "half-remembered rain", "tape ghost"),
			mk("ms-04", 540, 745, "late train home", "tape ghost"),
			mk("ms-05", 745, 918, "window seat", "mono no aware"),
			mk("ms-06", 918, 1102, "warm static", "mono no aware"),
			mk("ms-07", 1102, 1297, "ferns and vinyl", "dustloop"),
			mk("ms-08", 1297, 1486, "slow orbit", "dustloop"),
			mk("ms-09", 1486, 1653, "kettle song", "attic light"),
			mk("ms-10", 1653, 1841, "margin notes", "attic light"),
			mk("ms-11", 1841, 2030, "courtyard dusk", "low tide theory"),
			mk("ms-12", 2030, 2211, "borrowed time", "low tide theory"),
			mk("ms-13", 2211, 2404, "quiet hours", "cloudkeeper"),
			mk("ms-14", 2404, 2582, "last page", "tape ghost"),
			mk("ms-15", 2582, 2766, "streetlamp halo", "dustloop"),
			mk("ms-16", 2766, 2951, "closing loop", "attic light"),
		},
	}
}
