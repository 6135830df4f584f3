package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lofideck/lofideck/internal/geom"
	"github.com/lofideck/lofideck/internal/wm"
)

// GetKV returns the raw value for a key, or ErrNotFound.
func (s *Store) GetKV(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return []byte(value), nil
}

// SetKV writes a key/value pair.
func (s *Store) SetKV(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

const (
	keyGeometry  = "wm/geometry"
	keyWinStates = "wm/states"
)

// Geometry adapts the KV bucket to wm.GeometryStore.
type Geometry struct {
	s *Store
}

// NewGeometry returns the wm geometry persistence adapter.
func NewGeometry(s *Store) *Geometry {
	return &Geometry{s: s}
}

func (g *Geometry) LoadGeometry() (map[string]geom.Rect, error) {
	raw, err := g.s.GetKV(keyGeometry)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m map[string]geom.Rect
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	return m, nil
}

func (g *Geometry) SaveGeometry(m map[string]geom.Rect) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode geometry: %w", err)
	}
	return g.s.SetKV(keyGeometry, raw)
}

// WindowStates adapts the KV bucket to wm.StateStore.
type WindowStates struct {
	s *Store
}

// NewWindowStates returns the wm lifecycle-state persistence adapter.
func NewWindowStates(s *Store) *WindowStates {
	return &WindowStates{s: s}
}

type windowStatesDoc struct {
	States map[string]wm.State `json:"states"`
	MaxZ   int                 `json:"max_z"`
}

func (w *WindowStates) LoadStates() (map[string]wm.State, int, error) {
	raw, err := w.s.GetKV(keyWinStates)
	if errors.Is(err, ErrNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	var doc windowStatesDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, fmt.Errorf("decode window states: %w", err)
	}
	return doc.States, doc.MaxZ, nil
}

func (w *WindowStates) SaveStates(states map[string]wm.State, maxZ int) error {
	raw, err := json.Marshal(windowStatesDoc{States: states, MaxZ: maxZ})
	if err != nil {
		return fmt.Errorf("encode window states: %w", err)
	}
	return w.s.SetKV(keyWinStates, raw)
}
