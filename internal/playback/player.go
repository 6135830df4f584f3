package playback

// PlayerState mirrors the state values reported by the external
// video-embedding player.
type PlayerState int

const (
	StateUnstarted PlayerState = iota
	StatePlaying
	StatePaused
	StateEnded
	StateBuffering
	StateCued
)

func (s PlayerState) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateBuffering:
		return "buffering"
	case StateCued:
		return "cued"
	default:
		return "unknown"
	}
}

// Player is the narrow contract the controller needs from the external
// video-embedding player. The concrete handle lives in the browser; the
// transport binding forwards these calls and feeds player events back via
// Controller.Initialize, HandleStateChange and HandleError.
type Player interface {
	Play()
	Pause()
	SeekTo(seconds float64)
	CurrentTime() float64
	Duration() float64
	LoadVideo(videoID string, start float64)
	SetVolume(v int)
	Mute()
	Unmute()
}

// ParseState maps a state name reported over the wire back to a
// PlayerState. Unknown names map to StateUnstarted, which the controller
// ignores.
func ParseState(s string) PlayerState {
	switch s {
	case "playing":
		return StatePlaying
	case "paused":
		return StatePaused
	case "ended":
		return StateEnded
	case "buffering":
		return StateBuffering
	case "cued":
		return StateCued
	default:
		return StateUnstarted
	}
}
