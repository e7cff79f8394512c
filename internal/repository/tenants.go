package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nexusai/console/pkg/models"
)

const tenantColumns = "id, name, color, crm_type, internal_schema, output_template, created_at, updated_at"

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var (
		id, name, color, crmType string
		internal, output         []byte
		createdAt, updatedAt     time.Time
	)
	if err := row.Scan(&id, &name, &color, &crmType, &internal, &output, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return &models.Tenant{
		ID:             id,
		Name:           name,
		Color:          color,
		CRMType:        models.ParseCRMType(crmType),
		InternalSchema: jsonMap(internal),
		OutputTemplate: jsonMap(output),
		Credentials:    []*models.Credential{},
		OutputRoutes:   []*models.OutputRoute{},
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// ListTenants returns every tenant ordered by name. Owned collections are
// returned empty; composite loads assemble them separately.
func (r *Postgres) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := r.db.Query(ctx, "SELECT "+tenantColumns+" FROM tenants ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

// GetTenant returns the tenant with the given id, or (nil, nil) when no
// such row exists.
func (r *Postgres) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	tenant, err := scanTenant(r.db.QueryRow(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

// CreateTenant inserts a tenant and returns the canonical row.
func (r *Postgres) CreateTenant(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	internal, err := jsonArg(tenant.InternalSchema)
	if err != nil {
		return nil, err
	}
	output, err := jsonArg(tenant.OutputTemplate)
	if err != nil {
		return nil, err
	}

	color := tenant.Color
	if color == "" {
		color = "bg-blue-600"
	}
	crmType := tenant.CRMType
	if crmType == "" {
		crmType = models.CRMNone
	}

	created, err := scanTenant(r.db.QueryRow(ctx,
		`INSERT INTO tenants (name, color, crm_type, internal_schema, output_template)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+tenantColumns,
		tenant.Name, color, string(crmType), internal, output))
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return created, nil
}

// UpdateTenant applies a partial update and returns the canonical row.
// Nil patch fields leave the stored value untouched.
func (r *Postgres) UpdateTenant(ctx context.Context, id string, patch TenantPatch) (*models.Tenant, error) {
	internal, err := jsonArg(patch.InternalSchema)
	if err != nil {
		return nil, err
	}
	output, err := jsonArg(patch.OutputTemplate)
	if err != nil {
		return nil, err
	}

	var crmType *string
	if patch.CRMType != nil {
		s := string(*patch.CRMType)
		crmType = &s
	}

	updated, err := scanTenant(r.db.QueryRow(ctx,
		`UPDATE tenants SET
			name            = COALESCE($2, name),
			color           = COALESCE($3, color),
			crm_type        = COALESCE($4, crm_type),
			internal_schema = COALESCE($5, internal_schema),
			output_template = COALESCE($6, output_template),
			updated_at      = now()
		 WHERE id = $1
		 RETURNING `+tenantColumns,
		id, patch.Name, patch.Color, crmType, internal, output))
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return updated, nil
}

// DeleteTenant removes a tenant. Credentials, routes, headers, execution
// history and CRM config rows go with it via the schema's cascades.
func (r *Postgres) DeleteTenant(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM tenants WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	return nil
}

// GetCRMConfig returns a tenant's transformer configuration, or (nil, nil)
// when none has been saved yet.
func (r *Postgres) GetCRMConfig(ctx context.Context, tenantID string) (*models.CRMConfig, error) {
	var webhook, instructions, source *string
	err := r.db.QueryRow(ctx,
		"SELECT webhook_url, ai_instructions, source_json FROM crm_configs WHERE tenant_id = $1",
		tenantID).Scan(&webhook, &instructions, &source)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crm config: %w", err)
	}
	return &models.CRMConfig{
		WebhookURL:     orEmpty(webhook),
		AIInstructions: orEmpty(instructions),
		SourceJSON:     orEmpty(source),
	}, nil
}

// UpsertCRMConfig writes a tenant's transformer configuration, creating
// the row on first save.
func (r *Postgres) UpsertCRMConfig(ctx context.Context, tenantID string, cfg models.CRMConfig) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO crm_configs (tenant_id, webhook_url, ai_instructions, source_json)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tenant_id) DO UPDATE SET
			webhook_url     = EXCLUDED.webhook_url,
			ai_instructions = EXCLUDED.ai_instructions,
			source_json     = EXCLUDED.source_json,
			updated_at      = now()`,
		tenantID, nullable(cfg.WebhookURL), nullable(cfg.AIInstructions), nullable(cfg.SourceJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert crm config: %w", err)
	}
	return nil
}
