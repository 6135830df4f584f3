package playback

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// BoundaryInterval is the boundary-watch polling rate. Track boundaries are
// second-granular, so higher resolution buys nothing.
const BoundaryInterval = time.Second

const (
	maxVolume     = 100
	defaultVolume = 50
)

// Snapshot is the externally visible playback state.
type Snapshot struct {
	PlaylistID  string  `json:"playlist_id"`
	TrackIndex  int     `json:"track_index"`
	Track       *Track  `json:"track,omitempty"`
	Playing     bool    `json:"playing"`
	Volume      int     `json:"volume"`
	Muted       bool    `json:"muted"`
	Shuffle     bool    `json:"shuffle"`
	PlayerReady bool    `json:"player_ready"`
	CurrentTime float64 `json:"current_time"`
	Progress    float64 `json:"progress"`
}

// Controller makes a single continuous video stream behave like a discrete
// multi-track playlist: it watches the playhead and advances when it crosses
// the current track's end offset, and routes all play/seek/volume commands
// through the readiness gate so nothing reaches the player before it is
// bound.
type Controller struct {
	mu  sync.Mutex
	log *slog.Logger

	player Player
	ready  bool

	catalog Catalog
	idx     int

	// pendingIdx holds a track selection requested while the player was
	// unready, applied once readiness arrives. -1 means none.
	pendingIdx int

	playing bool
	volume  int
	muted   bool
	preMute int

	shuffle bool
	order   []int
	rng     *rand.Rand

	watchCancel context.CancelFunc
	interval    time.Duration

	onChange func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval overrides the boundary-watch polling interval.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithRand injects a deterministic random source for shuffle.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

// NewController creates an unbound controller. Commands issued before
// Initialize are queued or dropped, never a crash.
func NewController(log *slog.Logger, opts ...Option) *Controller {
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		log:        log,
		pendingIdx: -1,
		volume:     defaultVolume,
		preMute:    defaultVolume,
		interval:   BoundaryInterval,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers a callback fired after state mutations, outside the
// lock. The callback must only signal, never call back in synchronously.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Initialize binds the controller to a ready player instance. Calling it
// again with the already-bound handle is a no-op. A track selected while
// unready is applied now rather than dropped.
func (c *Controller) Initialize(p Player) {
	c.mu.Lock()
	defer c.notifyUnlock()
	if c.ready && c.player == p {
		return
	}
	c.player = p
	c.ready = true

	p.SetVolume(c.volume)
	if c.muted {
		p.Mute()
	}

	if c.pendingIdx >= 0 && c.pendingIdx < c.catalog.Len() {
		idx := c.pendingIdx
		c.pendingIdx = -1
		c.selectTrackLocked(idx)
	} else if c.catalog.Len() > 0 {
		c.cueCurrentLocked()
		if c.playing {
			c.player.Play()
			c.startWatchLocked()
		}
	}
}

// Ready reports whether a player is bound.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// cueCurrentLocked loads the catalog's video cued at the current track's
// start without starting playback.
func (c *Controller) cueCurrentLocked() {
	tr := c.catalog.Tracks[c.idx]
	c.player.LoadVideo(c.catalog.VideoID, tr.StartTime)
}

// Play starts playback of the current track. If the playhead sits outside
// the current track's span (stale position from a previous selection), it
// seeks to the track start first.
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.notifyUnlock()
	if c.catalog.Len() == 0 {
		return
	}
	c.playing = true
	if !c.ready {
		return
	}
	tr := c.catalog.Tracks[c.idx]
	if !tr.Contains(c.player.CurrentTime()) {
		c.player.SeekTo(tr.StartTime)
	}
	c.player.Play()
	c.startWatchLocked()
}

// Pause pauses playback and stops the boundary watch.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.notifyUnlock()
	c.playing = false
	c.stopWatchLocked()
	if c.ready {
		c.player.Pause()
	}
}

// PlayTrack selects a track by catalog index and plays it. Out-of-range
// indices are rejected with no state change.
func (c *Controller) PlayTrack(index int) error {
	c.mu.Lock()
	defer c.notifyUnlock()
	if index < 0 || index >= c.catalog.Len() {
		return fmt.Errorf("track index %d out of range [0,%d)", index, c.catalog.Len())
	}
	c.playing = true
	c.selectTrackLocked(index)
	return nil
}

// SeekToTrack selects a track by catalog index without changing the
// playing/paused state: if playback was active the new track keeps playing,
// otherwise it is cued paused at its start.
func (c *Controller) SeekToTrack(index int) error {
	c.mu.Lock()
	defer c.notifyUnlock()
	if index < 0 || index >= c.catalog.Len() {
		return fmt.Errorf("track index %d out of range [0,%d)", index, c.catalog.Len())
	}
	c.selectTrackLocked(index)
	return nil
}

// selectTrackLocked applies a validated track selection: set the index,
// seek the player to the new start, and continue or stay paused per the
// current playing state. While unready the selection is parked instead.
func (c *Controller) selectTrackLocked(index int) {
	c.idx = index
	if !c.ready {
		c.pendingIdx = index
		return
	}
	tr := c.catalog.Tracks[index]
	c.player.SeekTo(tr.StartTime)
	if c.playing {
		c.player.Play()
		// Restart the watch so the new selection gets a fresh poll cycle.
		c.stopWatchLocked()
		c.startWatchLocked()
	} else {
		c.player.Pause()
	}
}

// NextTrack advances to the next track in shuffle-aware order, wrapping at
// the end of the catalog.
func (c *Controller) NextTrack() {
	c.step(1)
}

// PreviousTrack steps back in shuffle-aware order, wrapping at the start.
func (c *Controller) PreviousTrack() {
	c.step(-1)
}

func (c *Controller) step(dir int) {
	c.mu.Lock()
	defer c.notifyUnlock()
	next := c.nextIndexLocked(dir)
	if next < 0 {
		return
	}
	c.selectTrackLocked(next)
}

// nextIndexLocked computes the neighbouring track index. With shuffle on it
// steps through the shuffled permutation from the current track's position
// within it; with shuffle off it steps through raw catalog order. Both
// directions wrap.
func (c *Controller) nextIndexLocked(dir int) int {
	n := c.catalog.Len()
	if n == 0 {
		return -1
	}
	if !c.shuffle || len(c.order) != n {
		return ((c.idx+dir)%n + n) % n
	}
	pos := 0
	for i, v := range c.order {
		if v == c.idx {
			pos = i
			break
		}
	}
	pos = ((pos+dir)%n + n) % n
	return c.order[pos]
}

// ToggleShuffle flips shuffle mode. Turning it on regenerates the shuffled
// permutation (Fisher–Yates); turning it off leaves the current track index
// unchanged and only future navigation order reverts.
func (c *Controller) ToggleShuffle() {
	c.mu.Lock()
	defer c.notifyUnlock()
	c.shuffle = !c.shuffle
	if c.shuffle {
		c.reshuffleLocked()
	}
}

func (c *Controller) reshuffleLocked() {
	n := c.catalog.Len()
	c.order = make([]int, n)
	for i := range c.order {
		c.order[i] = i
	}
	c.rng.Shuffle(n, func(i, j int) {
		c.order[i], c.order[j] = c.order[j], c.order[i]
	})
}

// LoadPlaylist replaces the active catalog wholesale. Reloading the playlist
// that is already active preserves the current track index; a different
// playlist resets to track 0, paused and cued. Playback never starts
// implicitly.
func (c *Controller) LoadPlaylist(cat Catalog) error {
	if err := cat.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	c.mu.Lock()
	defer c.notifyUnlock()

	samePlaylist := cat.PlaylistID != "" && cat.PlaylistID == c.catalog.PlaylistID
	c.catalog = cat
	if !samePlaylist || c.idx >= cat.Len() {
		c.idx = 0
		c.playing = false
		c.stopWatchLocked()
	}
	if c.shuffle {
		c.reshuffleLocked()
	}
	if cat.Len() == 0 {
		c.playing = false
		c.stopWatchLocked()
		return nil
	}
	if c.ready {
		c.cueCurrentLocked()
		if c.playing {
			c.player.Play()
		}
	} else {
		c.pendingIdx = c.idx
	}
	return nil
}

// Catalog returns the active catalog.
func (c *Controller) Catalog() Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog
}

// SetVolume sets the player volume, clamped to [0,100]. Raising the volume
// above zero while muted unmutes.
func (c *Controller) SetVolume(v int) {
	c.mu.Lock()
	defer c.notifyUnlock()
	if v < 0 {
		v = 0
	}
	if v > maxVolume {
		v = maxVolume
	}
	c.volume = v
	if v > 0 && c.muted {
		c.muted = false
		if c.ready {
			c.player.Unmute()
		}
	}
	if c.ready {
		c.player.SetVolume(v)
	}
}

// ToggleMute mutes, remembering the pre-mute volume, or unmutes restoring
// exactly that value.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	defer c.notifyUnlock()
	if c.muted {
		c.muted = false
		c.volume = c.preMute
		if c.ready {
			c.player.Unmute()
			c.player.SetVolume(c.volume)
		}
		return
	}
	c.preMute = c.volume
	c.muted = true
	if c.ready {
		c.player.Mute()
	}
}

// TrackProgress returns elapsed percentage within the current track's own
// span: 0 at the track start, 100 at its end.
func (c *Controller) TrackProgress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}

func (c *Controller) progressLocked() float64 {
	if !c.ready || c.catalog.Len() == 0 {
		return 0
	}
	tr := c.catalog.Tracks[c.idx]
	span := tr.Duration()
	if span <= 0 {
		return 0
	}
	p := (c.player.CurrentTime() - tr.StartTime) / span * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Snapshot returns the current playback state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		PlaylistID:  c.catalog.PlaylistID,
		TrackIndex:  c.idx,
		Playing:     c.playing,
		Volume:      c.volume,
		Muted:       c.muted,
		Shuffle:     c.shuffle,
		PlayerReady: c.ready,
	}
	if c.idx >= 0 && c.idx < c.catalog.Len() {
		tr := c.catalog.Tracks[c.idx]
		s.Track = &tr
	}
	if c.ready {
		s.CurrentTime = c.player.CurrentTime()
		s.Progress = c.progressLocked()
	}
	return s
}

// HandleStateChange processes a state-change event from the external player.
// A natural end advances to the next track; the boundary watch follows the
// playing/paused transitions so every start has a paired stop.
func (c *Controller) HandleStateChange(st PlayerState) {
	c.mu.Lock()
	defer c.notifyUnlock()
	switch st {
	case StatePlaying:
		c.playing = true
		c.startWatchLocked()
	case StatePaused:
		c.playing = false
		c.stopWatchLocked()
	case StateEnded:
		c.advanceLocked()
	}
}

// HandleError processes a playback error from the external player. Recovery
// policy is to treat the error as end-of-track and advance, so one bad embed
// never freezes the session.
func (c *Controller) HandleError(code int) {
	c.mu.Lock()
	defer c.notifyUnlock()
	c.log.Warn("player error, advancing to next track", "code", code, "track", c.idx)
	c.advanceLocked()
}

func (c *Controller) advanceLocked() {
	next := c.nextIndexLocked(1)
	if next < 0 {
		c.playing = false
		c.stopWatchLocked()
		return
	}
	c.selectTrackLocked(next)
}

// startWatchLocked starts the boundary-watch loop if it is not already
// running. Paired with stopWatchLocked on pause, teardown and track change.
func (c *Controller) startWatchLocked() {
	if c.watchCancel != nil || !c.ready {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.watchCancel = cancel
	go c.watch(ctx)
}

func (c *Controller) stopWatchLocked() {
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
}

// watch polls the playhead and advances when it crosses the current track's
// end offset. It only ever reads the player's clock.
func (c *Controller) watch(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollBoundary()
		}
	}
}

func (c *Controller) pollBoundary() {
	c.mu.Lock()
	defer c.notifyUnlock()
	if !c.ready || !c.playing || c.catalog.Len() == 0 {
		return
	}
	tr := c.catalog.Tracks[c.idx]
	if c.player.CurrentTime() >= tr.EndTime {
		c.advanceLocked()
	}
}

// Teardown stops the boundary watch. Late callbacks after teardown are
// ignored by the context check inside watch.
func (c *Controller) Teardown() {
	c.mu.Lock()
	c.stopWatchLocked()
	c.mu.Unlock()
}

// notifyUnlock releases the lock and fires the change callback.
func (c *Controller) notifyUnlock() {
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
