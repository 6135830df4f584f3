package playlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lofideck/lofideck/internal/playback"
	"github.com/lofideck/lofideck/internal/store"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	s, err := store.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewManager(s, nil)
}

func testPlaylist() Playlist {
	return Playlist{
		Title:   "rainy sunday",
		VideoID: "abc123def45",
		Tracks: []playback.Track{
			{ID: "r1", VideoID: "abc123def45", StartTime: 0, EndTime: 120, Title: "drizzle", Artist: "x"},
			{ID: "r2", VideoID: "abc123def45", StartTime: 120, EndTime: 260, Title: "downpour", Artist: "y"},
		},
	}
}

func TestSaveAssignsIDAndRoundTrips(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	saved, err := m.Save(ctx, testPlaylist())
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := m.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "rainy sunday", got.Title)
	require.Len(t, got.Tracks, 2)
	assert.Equal(t, 120.0, got.Tracks[0].EndTime)
}

func TestSaveRejectsInvalidBounds(t *testing.T) {
	m := newManager(t)
	p := testPlaylist()
	p.Tracks[0].EndTime = 0

	_, err := m.Save(context.Background(), p)
	assert.Error(t, err)
}

func TestGetBuiltinAlwaysResolves(t *testing.T) {
	m := newManager(t)

	got, err := m.Get(context.Background(), BuiltinID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Tracks)
	assert.NoError(t, got.Catalog().Validate())
}

func TestDeleteRemovesPlaylist(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	saved, err := m.Save(ctx, testPlaylist())
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, saved.ID))

	_, err = m.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImportFile(t *testing.T) {
	m := newManager(t)
	path := filepath.Join(t.TempDir(), "mix.yaml")
	content := `
title: "evening mix"
video_id: "zzz999yyy88"
tracks:
  - id: e1
    video_id: "zzz999yyy88"
    start_time: 0
    end_time: 300
    title: "dusk"
    artist: "someone"
  - id: e2
    video_id: "zzz999yyy88"
    start_time: 300
    end_time: 640
    title: "night"
    artist: "someone else"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	p, err := m.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "evening mix", p.Title)
	require.Len(t, p.Tracks, 2)
	assert.Equal(t, 640.0, p.Tracks[1].EndTime)

	// Imported playlists are persisted.
	got, err := m.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "evening mix", got.Title)
}
