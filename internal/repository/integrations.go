package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nexusai/console/pkg/models"
)

func scanIntegration(row pgx.Row) (*models.Integration, error) {
	var (
		in     models.Integration
		icon   *string
		fields []byte
	)
	if err := row.Scan(&in.ID, &in.Name, &in.Type, &icon, &fields); err != nil {
		return nil, err
	}
	in.Icon = orEmpty(icon)
	in.ConfigFields = []models.ConfigField{}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &in.ConfigFields); err != nil {
			return nil, fmt.Errorf("failed to decode config fields: %w", err)
		}
	}
	return &in, nil
}

// ListIntegrations returns the provider catalog ordered by name.
func (r *Postgres) ListIntegrations(ctx context.Context) ([]*models.Integration, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, name, type, icon, config_fields FROM integrations ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	defer rows.Close()

	var list []*models.Integration
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan integration: %w", err)
		}
		list = append(list, in)
	}
	return list, rows.Err()
}

// GetIntegration returns one catalog entry, or (nil, nil) when absent.
func (r *Postgres) GetIntegration(ctx context.Context, id string) (*models.Integration, error) {
	in, err := scanIntegration(r.db.QueryRow(ctx,
		"SELECT id, name, type, icon, config_fields FROM integrations WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return in, nil
}

// CreateIntegration inserts a custom catalog entry.
func (r *Postgres) CreateIntegration(ctx context.Context, in *models.Integration) (*models.Integration, error) {
	fields, err := json.Marshal(in.ConfigFields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config fields: %w", err)
	}
	created, err := scanIntegration(r.db.QueryRow(ctx,
		`INSERT INTO integrations (id, name, type, icon, config_fields)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, type, icon, config_fields`,
		in.ID, in.Name, in.Type, nullable(in.Icon), fields))
	if err != nil {
		return nil, fmt.Errorf("failed to create integration: %w", err)
	}
	return created, nil
}

// SeedIntegrations upserts the built-in catalog by id. Seeding an already
// populated catalog rewrites the same rows, so repeated seeding is a
// no-op.
func (r *Postgres) SeedIntegrations(ctx context.Context, list []*models.Integration) error {
	for _, in := range list {
		fields, err := json.Marshal(in.ConfigFields)
		if err != nil {
			return fmt.Errorf("failed to encode config fields: %w", err)
		}
		_, err = r.db.Exec(ctx,
			`INSERT INTO integrations (id, name, type, icon, config_fields)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET
				name          = EXCLUDED.name,
				type          = EXCLUDED.type,
				icon          = EXCLUDED.icon,
				config_fields = EXCLUDED.config_fields`,
			in.ID, in.Name, in.Type, nullable(in.Icon), fields)
		if err != nil {
			return fmt.Errorf("failed to seed integration %s: %w", in.ID, err)
		}
	}
	return nil
}
