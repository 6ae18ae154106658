// Package store persists generated scripts and cached PR aggregates.
package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"prcast/pkg/db"
	"prcast/pkg/model"
)

// ScriptStore is the persistence interface the API layer depends on.
type ScriptStore interface {
	SaveScript(ctx context.Context, repo string, prNumber int, script *model.VideoScript) error
	GetScript(ctx context.Context, id string) (*model.VideoScript, error)
	ListRecent(ctx context.Context, limit int) ([]ScriptSummary, error)

	SaveAggregate(ctx context.Context, repo string, prNumber int, agg *model.PRAggregate) error
	GetAggregate(ctx context.Context, repo string, prNumber int, maxAge time.Duration) (*model.PRAggregate, error)

	Close() error
}

// ScriptSummary is one row of the script history listing.
type ScriptSummary struct {
	ID           string    `json:"id"`
	Repo         string    `json:"repo"`
	PRNumber     int       `json:"pr_number"`
	TemplateType string    `json:"template_type"`
	Audience     string    `json:"audience"`
	Target       float64   `json:"target_seconds"`
	Total        float64   `json:"total_seconds"`
	Quality      float64   `json:"quality"`
	CreatedAt    time.Time `json:"created_at"`
}

// SQLiteStore implements ScriptStore on the shared DB handle.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveScript stores a script as gzipped JSON alongside its queryable facts.
func (s *SQLiteStore) SaveScript(ctx context.Context, repo string, prNumber int, script *model.VideoScript) error {
	payload, err := compressJSON(script)
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}

	var quality float64
	if script.Metadata.Quality != nil {
		quality = script.Metadata.Quality.Overall
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO scripts (id, repo, pr_number, template_type, audience, target_seconds, total_seconds, quality, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		script.ID, repo, prNumber,
		script.Metadata.TemplateType, string(script.Audience.Primary),
		script.TargetDuration, script.TotalDuration(), quality, payload)
	if err != nil {
		return fmt.Errorf("insert script: %w", err)
	}
	return nil
}

// GetScript loads one stored script by ID. Returns nil without error when
// the ID is unknown.
func (s *SQLiteStore) GetScript(ctx context.Context, id string) (*model.VideoScript, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM scripts WHERE id = ?`, id)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}

	var script model.VideoScript
	if err := decompressJSON(payload, &script); err != nil {
		return nil, fmt.Errorf("decode script %s: %w", id, err)
	}
	return &script, nil
}

// ListRecent returns the newest stored scripts, newest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]ScriptSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, repo, pr_number, template_type, audience, target_seconds, total_seconds, quality, created_at
		 FROM scripts ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScriptSummary
	for rows.Next() {
		var sum ScriptSummary
		var quality sql.NullFloat64
		if err := rows.Scan(&sum.ID, &sum.Repo, &sum.PRNumber, &sum.TemplateType,
			&sum.Audience, &sum.Target, &sum.Total, &quality, &sum.CreatedAt); err != nil {
			return nil, err
		}
		if quality.Valid {
			sum.Quality = quality.Float64
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// SaveAggregate caches the fetched PR data so repeat generations skip the API.
func (s *SQLiteStore) SaveAggregate(ctx context.Context, repo string, prNumber int, agg *model.PRAggregate) error {
	payload, err := compressJSON(agg)
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO aggregates (repo, pr_number, payload, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		repo, prNumber, payload)
	if err != nil {
		return fmt.Errorf("insert aggregate: %w", err)
	}
	return nil
}

// GetAggregate returns a cached aggregate no older than maxAge, or nil.
func (s *SQLiteStore) GetAggregate(ctx context.Context, repo string, prNumber int, maxAge time.Duration) (*model.PRAggregate, error) {
	deadline := time.Now().Add(-maxAge).UTC().Format("2006-01-02 15:04:05")
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM aggregates WHERE repo = ? AND pr_number = ? AND created_at >= ?`,
		repo, prNumber, deadline)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var agg model.PRAggregate
	if err := decompressJSON(payload, &agg); err != nil {
		return nil, fmt.Errorf("decode aggregate %s#%d: %w", repo, prNumber, err)
	}
	return &agg, nil
}

func compressJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressJSON(payload []byte, v any) error {
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	if err := zr.Close(); err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
