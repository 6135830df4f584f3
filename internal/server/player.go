package server

import (
	"encoding/json"
	"sync"
	"time"
)

// remotePlayer bridges playback commands to the browser client that hosts
// the embedded video player. Commands go out over the websocket; the
// client reports time and duration back with playerTime events. Between
// reports the playhead is extrapolated from the last report while
// playing, which keeps the boundary watch accurate at its one second
// cadence without a matching report rate from the browser.
type remotePlayer struct {
	send func([]byte)

	mu       sync.Mutex
	time     float64
	timeAt   time.Time
	duration float64
	playing  bool
}

type playerCommand struct {
	Type    string  `json:"type"`
	Action  string  `json:"action"`
	Seconds float64 `json:"seconds,omitempty"`
	VideoID string  `json:"videoId,omitempty"`
	Start   float64 `json:"start,omitempty"`
	Volume  int     `json:"volume,omitempty"`
}

func newRemotePlayer(send func([]byte)) *remotePlayer {
	return &remotePlayer{send: send}
}

func (p *remotePlayer) command(cmd playerCommand) {
	cmd.Type = "playerCommand"
	data, err := json.Marshal(cmd)
	if err != nil {
		return
	}
	p.send(data)
}

func (p *remotePlayer) Play() {
	p.mu.Lock()
	p.playing = true
	p.timeAt = time.Now()
	p.mu.Unlock()
	p.command(playerCommand{Action: "play"})
}

func (p *remotePlayer) Pause() {
	p.mu.Lock()
	if p.playing {
		p.time += time.Since(p.timeAt).Seconds()
	}
	p.playing = false
	p.mu.Unlock()
	p.command(playerCommand{Action: "pause"})
}

func (p *remotePlayer) SeekTo(seconds float64) {
	p.mu.Lock()
	p.time = seconds
	p.timeAt = time.Now()
	p.mu.Unlock()
	p.command(playerCommand{Action: "seek", Seconds: seconds})
}

func (p *remotePlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return p.time + time.Since(p.timeAt).Seconds()
	}
	return p.time
}

func (p *remotePlayer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *remotePlayer) LoadVideo(videoID string, start float64) {
	p.mu.Lock()
	p.time = start
	p.timeAt = time.Now()
	p.mu.Unlock()
	p.command(playerCommand{Action: "load", VideoID: videoID, Start: start})
}

func (p *remotePlayer) SetVolume(volume int) {
	p.command(playerCommand{Action: "volume", Volume: volume})
}

func (p *remotePlayer) Mute() {
	p.command(playerCommand{Action: "mute"})
}

func (p *remotePlayer) Unmute() {
	p.command(playerCommand{Action: "unmute"})
}

// report records a time and duration sample from the hosting client.
func (p *remotePlayer) report(seconds, duration float64, playing bool) {
	p.mu.Lock()
	p.time = seconds
	p.timeAt = time.Now()
	p.duration = duration
	p.playing = playing
	p.mu.Unlock()
}
