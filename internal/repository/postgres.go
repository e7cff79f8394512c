package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the pgx-backed implementation of Repository.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a new Postgres repository on the given pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// Ping verifies the backend connection.
func (r *Postgres) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// jsonArg marshals a map for a JSONB parameter, keeping nil as SQL NULL.
func jsonArg(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return b, nil
}

// jsonMap unmarshals a JSONB column into a map, mapping NULL to an empty
// map so callers never see nil schemas.
func jsonMap(b []byte) map[string]any {
	if len(b) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// nullable maps an empty string onto SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// orEmpty maps a nullable text column onto the empty string.
func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// formatTimestamp renders a stored timestamp in the display format the
// console uses throughout.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
