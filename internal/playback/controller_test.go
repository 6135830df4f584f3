package playback

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlayer records commands and lets tests move the playhead.
type fakePlayer struct {
	playing  bool
	time     float64
	duration float64
	volume   int
	muted    bool
	videoID  string
	seeks    []float64
}

func (p *fakePlayer) Play()                { p.playing = true }
func (p *fakePlayer) Pause()               { p.playing = false }
func (p *fakePlayer) CurrentTime() float64 { p.ensure(); return p.time }
func (p *fakePlayer) Duration() float64    { return p.duration }
func (p *fakePlayer) SetVolume(v int)      { p.volume = v }
func (p *fakePlayer) Mute()                { p.muted = true }
func (p *fakePlayer) Unmute()              { p.muted = false }

func (p *fakePlayer) SeekTo(sec float64) {
	p.time = sec
	p.seeks = append(p.seeks, sec)
}

func (p *fakePlayer) LoadVideo(videoID string, start float64) {
	p.videoID = videoID
	p.time = start
}

func (p *fakePlayer) ensure() {}

func testCatalog() Catalog {
	return Catalog{
		PlaylistID: "lofi-mix-1",
		Title:      "late night mix",
		VideoID:    "dQw4w9WgXcQ",
		Tracks: []Track{
			{ID: "t0", VideoID: "dQw4w9WgXcQ", StartTime: 0, EndTime: 205, Title: "opener", Artist: "a"},
			{ID: "t1", VideoID: "dQw4w9WgXcQ", StartTime: 205, EndTime: 328, Title: "middle", Artist: "b"},
			{ID: "t2", VideoID: "dQw4w9WgXcQ", StartTime: 328, EndTime: 500, Title: "closer", Artist: "c"},
		},
	}
}

func newReadyController(t *testing.T) (*Controller, *fakePlayer) {
	t.Helper()
	c := NewController(nil, WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, c.LoadPlaylist(testCatalog()))
	p := &fakePlayer{duration: 3600}
	c.Initialize(p)
	t.Cleanup(c.Teardown)
	return c, p
}

func TestBoundaryAdvance(t *testing.T) {
	c, p := newReadyController(t)
	require.NoError(t, c.PlayTrack(1)) // {205, 328}

	p.time = 328
	c.pollBoundary()

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.TrackIndex, "should advance past end offset")
	assert.Equal(t, 328.0, p.seeks[len(p.seeks)-1], "should seek to next track's start")
	assert.True(t, p.playing, "advance keeps playing")
}

func TestBoundaryAdvance_WrapsAtCatalogEnd(t *testing.T) {
	c, p := newReadyController(t)
	require.NoError(t, c.PlayTrack(2)) // last track {328, 500}

	p.time = 500
	c.pollBoundary()

	assert.Equal(t, 0, c.Snapshot().TrackIndex)
}

func TestBoundaryPoll_NoopBeforeEnd(t *testing.T) {
	c, p := newReadyController(t)
	require.NoError(t, c.PlayTrack(1))

	p.time = 327
	c.pollBoundary()

	assert.Equal(t, 1, c.Snapshot().TrackIndex)
}

func TestWrapAroundNavigation(t *testing.T) {
	c, _ := newReadyController(t)
	require.NoError(t, c.SeekToTrack(0))

	c.NextTrack()
	c.NextTrack()
	c.NextTrack()
	assert.Equal(t, 0, c.Snapshot().TrackIndex, "three nexts over a 3-track catalog wrap to start")

	c.PreviousTrack()
	assert.Equal(t, 2, c.Snapshot().TrackIndex, "previous from first wraps to last")
}

func TestShufflePermutationCoversAllIndices(t *testing.T) {
	c, _ := newReadyController(t)
	c.ToggleShuffle()

	c.mu.Lock()
	order := append([]int(nil), c.order...)
	c.mu.Unlock()

	require.Len(t, order, 3)
	seen := make(map[int]bool)
	for _, v := range order {
		assert.False(t, seen[v], "duplicate index %d", v)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 3)
		seen[v] = true
	}
}

func TestShuffleNavigationFollowsPermutation(t *testing.T) {
	c, _ := newReadyController(t)
	c.ToggleShuffle()

	c.mu.Lock()
	order := append([]int(nil), c.order...)
	idx := c.idx
	c.mu.Unlock()

	pos := 0
	for i, v := range order {
		if v == idx {
			pos = i
			break
		}
	}
	want := order[(pos+1)%len(order)]

	c.NextTrack()
	assert.Equal(t, want, c.Snapshot().TrackIndex)
}

func TestToggleShuffleOff_KeepsCurrentIndex(t *testing.T) {
	c, _ := newReadyController(t)
	require.NoError(t, c.SeekToTrack(1))

	c.ToggleShuffle()
	c.ToggleShuffle()

	assert.Equal(t, 1, c.Snapshot().TrackIndex)
	assert.False(t, c.Snapshot().Shuffle)
}

func TestMuteUnmuteRoundTrip(t *testing.T) {
	c, p := newReadyController(t)
	c.SetVolume(42)

	c.ToggleMute()
	assert.True(t, p.muted)

	c.ToggleMute()
	assert.False(t, p.muted)
	assert.Equal(t, 42, c.Snapshot().Volume)
	assert.Equal(t, 42, p.volume)
}

func TestSetVolume_ClampsAndUnmutes(t *testing.T) {
	c, p := newReadyController(t)

	c.SetVolume(150)
	assert.Equal(t, 100, c.Snapshot().Volume)
	c.SetVolume(-5)
	assert.Equal(t, 0, c.Snapshot().Volume)

	c.ToggleMute()
	c.SetVolume(30)
	assert.False(t, c.Snapshot().Muted, "raising volume while muted unmutes")
	assert.False(t, p.muted)
}

func TestTrackProgress_AtBounds(t *testing.T) {
	c, p := newReadyController(t)
	require.NoError(t, c.SeekToTrack(1)) // {205, 328}

	p.time = 205
	assert.Equal(t, 0.0, c.TrackProgress())

	p.time = 328
	assert.Equal(t, 100.0, c.TrackProgress())

	p.time = 266.5
	assert.InDelta(t, 50.0, c.TrackProgress(), 0.01)
}

func TestPlay_SeeksWhenPlayheadOutsideTrack(t *testing.T) {
	c, p := newReadyController(t)
	require.NoError(t, c.SeekToTrack(1))

	p.time = 10 // stale position from a previous selection
	c.Play()

	assert.Equal(t, 205.0, p.time, "play must first seek back into the track span")
	assert.True(t, p.playing)
}

func TestCommandsBeforeReadiness_QueuedNotDropped(t *testing.T) {
	c := NewController(nil, WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, c.LoadPlaylist(testCatalog()))
	t.Cleanup(c.Teardown)

	// No player bound yet: nothing may crash.
	require.NoError(t, c.PlayTrack(2))
	c.Play()
	c.SetVolume(70)

	p := &fakePlayer{duration: 3600}
	c.Initialize(p)

	snap := c.Snapshot()
	assert.True(t, snap.PlayerReady)
	assert.Equal(t, 2, snap.TrackIndex, "pending selection applied on ready")
	assert.Equal(t, 328.0, p.time, "player cued at the pending track's start")
	assert.True(t, p.playing, "queued play applied on ready")
	assert.Equal(t, 70, p.volume)
}

func TestInitialize_Idempotent(t *testing.T) {
	c, p := newReadyController(t)
	require.NoError(t, c.PlayTrack(1))
	seeks := len(p.seeks)

	c.Initialize(p)
	assert.Len(t, p.seeks, seeks, "re-initializing with the bound handle must not reseek")
}

func TestPlayerError_AdvancesToNextTrack(t *testing.T) {
	c, _ := newReadyController(t)
	require.NoError(t, c.PlayTrack(0))

	c.HandleError(150)

	assert.Equal(t, 1, c.Snapshot().TrackIndex)
}

func TestEndedState_Advances(t *testing.T) {
	c, _ := newReadyController(t)
	require.NoError(t, c.PlayTrack(1))

	c.HandleStateChange(StateEnded)

	assert.Equal(t, 2, c.Snapshot().TrackIndex)
}

func TestEmptyCatalog_AllNavigationNoops(t *testing.T) {
	c := NewController(nil)
	p := &fakePlayer{}
	c.Initialize(p)
	t.Cleanup(c.Teardown)

	c.Play()
	c.NextTrack()
	c.PreviousTrack()
	assert.Error(t, c.PlayTrack(0))

	snap := c.Snapshot()
	assert.False(t, snap.Playing)
	assert.Equal(t, 0, snap.TrackIndex)
}

func TestPlayTrack_OutOfRangeRejected(t *testing.T) {
	c, _ := newReadyController(t)
	require.NoError(t, c.PlayTrack(1))

	assert.Error(t, c.PlayTrack(3))
	assert.Error(t, c.PlayTrack(-1))
	assert.Equal(t, 1, c.Snapshot().TrackIndex, "failed selection must not change state")
}

func TestLoadPlaylist_SameIDPreservesIndex(t *testing.T) {
	c, _ := newReadyController(t)
	require.NoError(t, c.SeekToTrack(2))

	require.NoError(t, c.LoadPlaylist(testCatalog()))
	assert.Equal(t, 2, c.Snapshot().TrackIndex)
}

func TestLoadPlaylist_NewIDResetsToZeroPaused(t *testing.T) {
	c, p := newReadyController(t)
	require.NoError(t, c.PlayTrack(2))

	other := testCatalog()
	other.PlaylistID = "lofi-mix-2"
	other.VideoID = "abc123xyz00"
	require.NoError(t, c.LoadPlaylist(other))

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.TrackIndex)
	assert.False(t, snap.Playing, "loading a playlist never starts playback implicitly")
	assert.Equal(t, "abc123xyz00", p.videoID)
}

func TestLoadPlaylist_RejectsInvalidBounds(t *testing.T) {
	c, _ := newReadyController(t)
	bad := testCatalog()
	bad.Tracks[1].EndTime = bad.Tracks[1].StartTime
	assert.Error(t, c.LoadPlaylist(bad))
}
