package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lofideck/lofideck/internal/geom"
	"github.com/lofideck/lofideck/internal/wm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDocuments_SetGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "notes", "n1", map[string]any{"text": "hello"}, false))

	raw, err := s.Get(ctx, "notes", "n1")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "hello", doc["text"])

	require.NoError(t, s.Delete(ctx, "notes", "n1"))
	_, err = s.Get(ctx, "notes", "n1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op.
	require.NoError(t, s.Delete(ctx, "notes", "n1"))
}

func TestDocuments_SetMergePreservesOtherFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "prefs", "me", map[string]any{"volume": 42, "theme": "dusk"}, false))
	require.NoError(t, s.Set(ctx, "prefs", "me", map[string]any{"volume": 70}, true))

	raw, err := s.Get(ctx, "prefs", "me")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, float64(70), doc["volume"])
	assert.Equal(t, "dusk", doc["theme"])
}

func TestDocuments_UpdateMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.Update(context.Background(), "prefs", "ghost", map[string]any{"volume": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocuments_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "playlists", "old", map[string]any{"title": "old"}, false))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.Set(ctx, "playlists", "new", map[string]any{"title": "new"}, false))

	docs, err := s.List(ctx, "playlists")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "old", docs[1].ID)
}

func TestKV_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetKV("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetKV("k", []byte(`{"a":1}`)))
	require.NoError(t, s.SetKV("k", []byte(`{"a":2}`)))

	v, err := s.GetKV("k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(v))
}

func TestGeometryAdapter_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	g := NewGeometry(s)

	// Empty store loads as empty, not an error.
	m, err := g.LoadGeometry()
	require.NoError(t, err)
	assert.Empty(t, m)

	in := map[string]geom.Rect{
		"notes":      {X: 10, Y: 20, Width: 380, Height: 460},
		"widget-abc": {X: 80, Y: 80, Width: 480, Height: 360},
	}
	require.NoError(t, g.SaveGeometry(in))

	out, err := g.LoadGeometry()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWindowStatesAdapter_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	w := NewWindowStates(s)

	in := map[string]wm.State{
		"tasks": {Open: true, Maximized: false, Z: 3},
		"timer": {Open: false, Z: 1},
	}
	require.NoError(t, w.SaveStates(in, 3))

	out, maxZ, err := w.LoadStates()
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 3, maxZ)
}
