package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nexusai/console/pkg/models"
)

const credentialColumns = "id, tenant_id, provider_id, alias, credential_id, status, last_tested, expires_at"

func scanCredential(row pgx.Row) (*models.Credential, error) {
	var (
		cred      models.Credential
		status    string
		expiresAt *string
	)
	if err := row.Scan(&cred.ID, &cred.TenantID, &cred.ProviderID, &cred.Alias,
		&cred.CredentialRef, &status, &cred.LastTested, &expiresAt); err != nil {
		return nil, err
	}
	cred.Status = models.ParseCredentialStatus(status)
	cred.ExpiresAt = orEmpty(expiresAt)
	return &cred, nil
}

// ListCredentials returns a tenant's credentials ordered by alias.
func (r *Postgres) ListCredentials(ctx context.Context, tenantID string) ([]*models.Credential, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE tenant_id = $1 ORDER BY alias", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

// CreateCredential inserts a credential. The opaque credential reference
// is minted by the database default; whatever the caller put in
// CredentialRef is ignored so client code can never smuggle one in.
func (r *Postgres) CreateCredential(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	status := cred.Status
	if status == "" {
		status = models.StatusDisconnected
	}
	created, err := scanCredential(r.db.QueryRow(ctx,
		`INSERT INTO credentials (tenant_id, provider_id, alias, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+credentialColumns,
		cred.TenantID, cred.ProviderID, cred.Alias, string(status), nullable(cred.ExpiresAt)))
	if err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}
	return created, nil
}

// UpdateCredential applies a partial update and returns the canonical row.
func (r *Postgres) UpdateCredential(ctx context.Context, id string, patch CredentialPatch) (*models.Credential, error) {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	updated, err := scanCredential(r.db.QueryRow(ctx,
		`UPDATE credentials SET
			alias       = COALESCE($2, alias),
			status      = COALESCE($3, status),
			last_tested = COALESCE($4, last_tested),
			expires_at  = COALESCE($5, expires_at)
		 WHERE id = $1
		 RETURNING `+credentialColumns,
		id, patch.Alias, status, patch.LastTested, patch.ExpiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to update credential: %w", err)
	}
	return updated, nil
}

// DeleteCredential removes a credential.
func (r *Postgres) DeleteCredential(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM credentials WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
