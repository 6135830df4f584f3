package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lofideck/lofideck/internal/store"
)

const collection = "preferences"

// Preferences holds optional per-user settings. Nil fields fall through to
// the next layer.
type Preferences struct {
	Volume         *int    `json:"volume,omitempty"`
	Muted          *bool   `json:"muted,omitempty"`
	Theme          *string `json:"theme,omitempty"`
	Background     *string `json:"background,omitempty"`
	ActivePlaylist *string `json:"active_playlist,omitempty"`

	// Favorites is the full set of favorited track ids; nil means "leave
	// the stored set alone", an empty slice clears it.
	Favorites *[]string `json:"favorites,omitempty"`
}

// Resolved is the fully-merged read model consumed by settings and by
// background/window-style rendering.
type Resolved struct {
	Volume         int      `json:"volume"`
	Muted          bool     `json:"muted"`
	Theme          string   `json:"theme"`
	Background     string   `json:"background"`
	ActivePlaylist string   `json:"active_playlist"`
	Favorites      []string `json:"favorites"`
}

// IsFavorite reports whether a track id is in the favorites set.
func (r Resolved) IsFavorite(trackID string) bool {
	for _, id := range r.Favorites {
		if id == trackID {
			return true
		}
	}
	return false
}

func defaults() Resolved {
	return Resolved{
		Volume: 50,
		Theme:  "dusk",
	}
}

// Facade merges stored per-user preferences with local session overrides
// into one read model. Local overrides win; neither layer is required.
type Facade struct {
	mu     sync.Mutex
	log    *slog.Logger
	store  *store.Store
	userID string
	local  Preferences
}

// New creates a facade for one user.
func New(s *store.Store, userID string, log *slog.Logger) *Facade {
	if log == nil {
		log = slog.Default()
	}
	return &Facade{log: log, store: s, userID: userID}
}

// SetLocal replaces the session-local override layer.
func (f *Facade) SetLocal(p Preferences) {
	f.mu.Lock()
	f.local = p
	f.mu.Unlock()
}

// Resolve returns defaults overlaid with stored preferences overlaid with
// local overrides. A missing stored document is not an error.
func (f *Facade) Resolve(ctx context.Context) (Resolved, error) {
	out := defaults()

	var stored Preferences
	raw, err := f.store.Get(ctx, collection, f.userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// first session
	case err != nil:
		return out, fmt.Errorf("load preferences: %w", err)
	default:
		if err := json.Unmarshal(raw, &stored); err != nil {
			f.log.Warn("corrupt preferences document, using defaults", "user", f.userID, "error", err)
		}
	}

	f.mu.Lock()
	local := f.local
	f.mu.Unlock()

	apply(&out, stored)
	apply(&out, local)
	return out, nil
}

// Save merges partial preference fields into the stored document.
func (f *Facade) Save(ctx context.Context, p Preferences) error {
	if err := f.store.Set(ctx, collection, f.userID, p, true); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func apply(out *Resolved, p Preferences) {
	if p.Volume != nil {
		out.Volume = *p.Volume
	}
	if p.Muted != nil {
		out.Muted = *p.Muted
	}
	if p.Theme != nil {
		out.Theme = *p.Theme
	}
	if p.Background != nil {
		out.Background = *p.Background
	}
	if p.ActivePlaylist != nil {
		out.ActivePlaylist = *p.ActivePlaylist
	}
	if p.Favorites != nil {
		out.Favorites = append([]string(nil), (*p.Favorites)...)
	}
}

// ToggleFavorite adds the track id to the favorites set, or removes it when
// already present, and persists the updated set. Returns the new membership.
func (f *Facade) ToggleFavorite(ctx context.Context, trackID string) (bool, error) {
	resolved, err := f.Resolve(ctx)
	if err != nil {
		return false, err
	}
	next := make([]string, 0, len(resolved.Favorites)+1)
	found := false
	for _, id := range resolved.Favorites {
		if id == trackID {
			found = true
			continue
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, trackID)
	}
	if err := f.Save(ctx, Preferences{Favorites: &next}); err != nil {
		return false, err
	}
	return !found, nil
}
