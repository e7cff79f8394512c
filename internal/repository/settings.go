package repository

import (
	"context"
	"fmt"

	"github.com/nexusai/console/pkg/models"
)

// ListEnvVars returns every global variable ordered by key. Values come
// back as stored; masking is a render-time concern, not a storage one.
func (r *Postgres) ListEnvVars(ctx context.Context) ([]*models.EnvVar, error) {
	rows, err := r.db.Query(ctx, "SELECT id, key, value, is_secret FROM env_vars ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list env vars: %w", err)
	}
	defer rows.Close()

	var vars []*models.EnvVar
	for rows.Next() {
		var v models.EnvVar
		if err := rows.Scan(&v.ID, &v.Key, &v.Value, &v.IsSecret); err != nil {
			return nil, fmt.Errorf("failed to scan env var: %w", err)
		}
		vars = append(vars, &v)
	}
	return vars, rows.Err()
}

// CreateEnvVar inserts a global variable and returns the canonical row.
func (r *Postgres) CreateEnvVar(ctx context.Context, v *models.EnvVar) (*models.EnvVar, error) {
	var created models.EnvVar
	err := r.db.QueryRow(ctx,
		"INSERT INTO env_vars (key, value, is_secret) VALUES ($1, $2, $3) RETURNING id, key, value, is_secret",
		v.Key, v.Value, v.IsSecret).Scan(&created.ID, &created.Key, &created.Value, &created.IsSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create env var: %w", err)
	}
	return &created, nil
}

// UpdateEnvVar applies a partial update and returns the canonical row.
func (r *Postgres) UpdateEnvVar(ctx context.Context, id string, patch EnvVarPatch) (*models.EnvVar, error) {
	var updated models.EnvVar
	err := r.db.QueryRow(ctx,
		`UPDATE env_vars SET
			key       = COALESCE($2, key),
			value     = COALESCE($3, value),
			is_secret = COALESCE($4, is_secret)
		 WHERE id = $1
		 RETURNING id, key, value, is_secret`,
		id, patch.Key, patch.Value, patch.IsSecret).
		Scan(&updated.ID, &updated.Key, &updated.Value, &updated.IsSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to update env var: %w", err)
	}
	return &updated, nil
}

// DeleteEnvVar removes a global variable.
func (r *Postgres) DeleteEnvVar(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM env_vars WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete env var: %w", err)
	}
	return nil
}

// ListPermissions returns every stored permission ordered by user email.
func (r *Postgres) ListPermissions(ctx context.Context) ([]*models.UserPermission, error) {
	return r.queryPermissions(ctx,
		"SELECT id, user_email, role, scope FROM user_permissions ORDER BY user_email")
}

// PermissionsByEmail returns the permissions assigned to one user.
func (r *Postgres) PermissionsByEmail(ctx context.Context, email string) ([]*models.UserPermission, error) {
	return r.queryPermissions(ctx,
		"SELECT id, user_email, role, scope FROM user_permissions WHERE user_email = $1", email)
}

func (r *Postgres) queryPermissions(ctx context.Context, sql string, args ...any) ([]*models.UserPermission, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var perms []*models.UserPermission
	for rows.Next() {
		var p models.UserPermission
		if err := rows.Scan(&p.ID, &p.UserEmail, &p.Role, &p.Scope); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perms = append(perms, &p)
	}
	return perms, rows.Err()
}

// CreatePermission inserts a permission and returns the canonical row.
func (r *Postgres) CreatePermission(ctx context.Context, p *models.UserPermission) (*models.UserPermission, error) {
	var created models.UserPermission
	err := r.db.QueryRow(ctx,
		"INSERT INTO user_permissions (user_email, role, scope) VALUES ($1, $2, $3) RETURNING id, user_email, role, scope",
		p.UserEmail, p.Role, p.Scope).Scan(&created.ID, &created.UserEmail, &created.Role, &created.Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}
	return &created, nil
}

// UpdatePermission applies a partial update and returns the canonical row.
func (r *Postgres) UpdatePermission(ctx context.Context, id string, patch PermissionPatch) (*models.UserPermission, error) {
	var updated models.UserPermission
	err := r.db.QueryRow(ctx,
		`UPDATE user_permissions SET
			user_email = COALESCE($2, user_email),
			role       = COALESCE($3, role),
			scope      = COALESCE($4, scope)
		 WHERE id = $1
		 RETURNING id, user_email, role, scope`,
		id, patch.UserEmail, patch.Role, patch.Scope).
		Scan(&updated.ID, &updated.UserEmail, &updated.Role, &updated.Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to update permission: %w", err)
	}
	return &updated, nil
}

// DeletePermission removes a permission.
func (r *Postgres) DeletePermission(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM user_permissions WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete permission: %w", err)
	}
	return nil
}
