// Package repository translates between the backend's storage
// representation (snake_case columns, nullable JSON blobs) and the domain
// model. Lookups that find nothing return (nil, nil) so callers branch on
// "present vs absent" instead of error type; every mutation returns the
// canonical row as persisted.
package repository

import (
	"context"

	"github.com/nexusai/console/pkg/models"
)

// TenantPatch carries the fields of a partial tenant update. Nil fields
// are left unchanged.
type TenantPatch struct {
	Name           *string
	Color          *string
	CRMType        *models.CRMType
	InternalSchema map[string]any
	OutputTemplate map[string]any
}

// CredentialPatch carries the fields of a partial credential update.
// The credential reference is deliberately absent: it is minted by the
// backend at creation time and never rewritten.
type CredentialPatch struct {
	Alias      *string
	Status     *models.CredentialStatus
	LastTested *string
	ExpiresAt  *string
}

// RoutePatch carries the fields of a partial route update. A nil Headers
// slice preserves the stored headers; a non-nil slice fully replaces them.
type RoutePatch struct {
	Name         *string
	URL          *string
	Method       *models.HTTPMethod
	BodyTemplate *string
	Group        *string
	IsActive     *bool
	Headers      []*models.Header
}

// EnvVarPatch carries the fields of a partial env var update.
type EnvVarPatch struct {
	Key      *string
	Value    *string
	IsSecret *bool
}

// PermissionPatch carries the fields of a partial permission update.
type PermissionPatch struct {
	UserEmail *string
	Role      *string
	Scope     *string
}

// Repository is the storage contract for every entity family the console
// manages.
type Repository interface {
	Ping(ctx context.Context) error

	// Tenants. Deleting a tenant cascades to its credentials, routes,
	// headers and execution history at the persistence layer.
	ListTenants(ctx context.Context) ([]*models.Tenant, error)
	GetTenant(ctx context.Context, id string) (*models.Tenant, error)
	CreateTenant(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, id string, patch TenantPatch) (*models.Tenant, error)
	DeleteTenant(ctx context.Context, id string) error
	GetCRMConfig(ctx context.Context, tenantID string) (*models.CRMConfig, error)
	UpsertCRMConfig(ctx context.Context, tenantID string, cfg models.CRMConfig) error

	// Credentials. Create mints the opaque credential reference inside
	// the backend; the caller never supplies one.
	ListCredentials(ctx context.Context, tenantID string) ([]*models.Credential, error)
	CreateCredential(ctx context.Context, cred *models.Credential) (*models.Credential, error)
	UpdateCredential(ctx context.Context, id string, patch CredentialPatch) (*models.Credential, error)
	DeleteCredential(ctx context.Context, id string) error

	// Output routes with their headers and bounded execution history.
	ListRoutes(ctx context.Context, tenantID string) ([]*models.OutputRoute, error)
	CreateRoute(ctx context.Context, route *models.OutputRoute) (*models.OutputRoute, error)
	UpdateRoute(ctx context.Context, id string, patch RoutePatch) (*models.OutputRoute, error)
	DeleteRoute(ctx context.Context, id string) error
	AppendExecution(ctx context.Context, routeID string, exec *models.OutputExecution) (*models.OutputExecution, error)

	// Integration catalog. Seed upserts by id so repeated seeding is a
	// no-op.
	ListIntegrations(ctx context.Context) ([]*models.Integration, error)
	GetIntegration(ctx context.Context, id string) (*models.Integration, error)
	CreateIntegration(ctx context.Context, in *models.Integration) (*models.Integration, error)
	SeedIntegrations(ctx context.Context, list []*models.Integration) error

	// Global environment variables.
	ListEnvVars(ctx context.Context) ([]*models.EnvVar, error)
	CreateEnvVar(ctx context.Context, v *models.EnvVar) (*models.EnvVar, error)
	UpdateEnvVar(ctx context.Context, id string, patch EnvVarPatch) (*models.EnvVar, error)
	DeleteEnvVar(ctx context.Context, id string) error

	// User permissions (storage only, no enforcement).
	ListPermissions(ctx context.Context) ([]*models.UserPermission, error)
	PermissionsByEmail(ctx context.Context, email string) ([]*models.UserPermission, error)
	CreatePermission(ctx context.Context, p *models.UserPermission) (*models.UserPermission, error)
	UpdatePermission(ctx context.Context, id string, patch PermissionPatch) (*models.UserPermission, error)
	DeletePermission(ctx context.Context, id string) error

	// Execution logs and their steps.
	ListExecutionLogs(ctx context.Context, tenantID string, limit int) ([]*models.ExecutionLog, error)
	GetExecutionLog(ctx context.Context, id string) (*models.ExecutionLog, error)
	CreateExecutionLog(ctx context.Context, log *models.ExecutionLog) (*models.ExecutionLog, error)
	UpdateExecutionLogStatus(ctx context.Context, id string, status models.ExecutionStatus, duration string) error
}
