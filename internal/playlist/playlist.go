package playlist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lofideck/lofideck/internal/playback"
	"github.com/lofideck/lofideck/internal/store"
)

const collection = "playlists"

// Playlist is a user-owned set of track boundaries over one video. Exactly
// one playlist is active in the playback controller at a time.
type Playlist struct {
	ID      string           `json:"id" yaml:"id"`
	Title   string           `json:"title" yaml:"title"`
	VideoID string           `json:"video_id" yaml:"video_id"`
	Tracks  []playback.Track `json:"tracks" yaml:"tracks"`
}

// Catalog converts the playlist into the playback engine's catalog form.
func (p Playlist) Catalog() playback.Catalog {
	return playback.Catalog{
		PlaylistID: p.ID,
		Title:      p.Title,
		VideoID:    p.VideoID,
		Tracks:     p.Tracks,
	}
}

// Manager persists playlists and resolves them for activation.
type Manager struct {
	log   *slog.Logger
	store *store.Store
}

// NewManager creates a playlist manager over the document store.
func NewManager(s *store.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{log: log, store: s}
}

// List returns all saved playlists, newest first.
func (m *Manager) List(ctx context.Context) ([]Playlist, error) {
	docs, err := m.store.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]Playlist, 0, len(docs))
	for _, doc := range docs {
		var p Playlist
		if err := json.Unmarshal(doc.Data, &p); err != nil {
			m.log.Warn("skipping corrupt playlist document", "id", doc.ID, "error", err)
			continue
		}
		p.ID = doc.ID
		out = append(out, p)
	}
	return out, nil
}

// Get returns one playlist by id. The built-in playlist id always resolves.
func (m *Manager) Get(ctx context.Context, id string) (Playlist, error) {
	if id == BuiltinID {
		return Builtin(), nil
	}
	raw, err := m.store.Get(ctx, collection, id)
	if err != nil {
		return Playlist{}, err
	}
	var p Playlist
	if err := json.Unmarshal(raw, &p); err != nil {
		return Playlist{}, fmt.Errorf("decode playlist %s: %w", id, err)
	}
	p.ID = id
	return p, nil
}

// Save persists a playlist, assigning an id when absent, and returns it.
func (m *Manager) Save(ctx context.Context, p Playlist) (Playlist, error) {
	if err := p.Catalog().Validate(); err != nil {
		return Playlist{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := m.store.Set(ctx, collection, p.ID, p, false); err != nil {
		return Playlist{}, err
	}
	return p, nil
}

// Delete removes a playlist.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, collection, id)
}

// ImportFile reads a playlist from a yaml file and persists it.
func (m *Manager) ImportFile(ctx context.Context, path string) (Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Playlist{}, fmt.Errorf("read playlist file: %w", err)
	}
	var p Playlist
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Playlist{}, fmt.Errorf("parse playlist file %s: %w", path, err)
	}
	return m.Save(ctx, p)
}
