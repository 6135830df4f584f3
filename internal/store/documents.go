package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Document is one stored record of a collection.
type Document struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Get returns the document data for (collection, id).
func (s *Store) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return json.RawMessage(data), nil
}

// Set writes a document. With merge, top-level fields of value are merged
// into the existing document instead of replacing it wholesale.
func (s *Store) Set(ctx context.Context, collection, id string, value any, merge bool) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if merge {
		if existing, err := s.Get(ctx, collection, id); err == nil {
			if merged, err := mergeJSON(existing, data); err == nil {
				data = merged
			}
		}
	}
	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, id, string(data), now, now)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges partial fields into an existing document. Missing documents
// return ErrNotFound.
func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	existing, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	patch, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("encode patch %s/%s: %w", collection, id, err)
	}
	merged, err := mergeJSON(existing, patch)
	if err != nil {
		return fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(merged), time.Now().UnixMilli(), collection, id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing document is a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// List returns all documents of a collection, newest first.
func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = ?
		ORDER BY created_at DESC`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var data string
		var created, updated int64
		if err := rows.Scan(&doc.ID, &data, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		doc.Data = json.RawMessage(data)
		doc.CreatedAt = time.UnixMilli(created)
		doc.UpdatedAt = time.UnixMilli(updated)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// mergeJSON shallow-merges the top-level fields of patch into base.
func mergeJSON(base, patch json.RawMessage) (json.RawMessage, error) {
	var b, p map[string]any
	if err := json.Unmarshal(base, &b); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(patch, &p); err != nil {
		return nil, err
	}
	for k, v := range p {
		b[k] = v
	}
	return json.Marshal(b)
}
