package store

import (
	"context"
	"time"

	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/pkg/models"
)

// AddTenant creates a tenant and makes it the active one, mirroring the
// admin flow where a freshly created tenant is what the operator works on
// next.
func (s *Store) AddTenant(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	created, err := s.repo.CreateTenant(ctx, tenant)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	s.tenants = append(s.tenants, created)
	s.activeID = created.ID
	s.mu.Unlock()
	return created.Clone(), nil
}

// UpdateTenant applies a partial update. The backend response is the
// source of truth for the tenant row itself; the client-held credential
// and route collections are not part of the update payload and are
// carried over unchanged.
func (s *Store) UpdateTenant(ctx context.Context, id string, patch repository.TenantPatch) (*models.Tenant, error) {
	updated, err := s.repo.UpdateTenant(ctx, id, patch)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tenant := range s.tenants {
		if tenant.ID == id {
			updated.Credentials = tenant.Credentials
			updated.OutputRoutes = tenant.OutputRoutes
			updated.CRMConfig = tenant.CRMConfig
			s.tenants[i] = updated
			return updated.Clone(), nil
		}
	}
	s.tenants = append(s.tenants, updated)
	return updated.Clone(), nil
}

// UpdateCRMConfig saves a tenant's transformer configuration.
func (s *Store) UpdateCRMConfig(ctx context.Context, tenantID string, cfg models.CRMConfig) error {
	if err := s.repo.UpsertCRMConfig(ctx, tenantID, cfg); err != nil {
		return s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tenant := s.findTenantLocked(tenantID); tenant != nil {
		saved := cfg
		tenant.CRMConfig = &saved
	}
	return nil
}

// DeleteTenant removes a tenant; the backend cascades to its credentials
// and routes. When the deleted tenant was active, the first remaining
// tenant in list order becomes active — or none, if the list is empty.
// The removal and reselection happen under one lock so no reader ever
// observes an active pointer to a deleted tenant.
func (s *Store) DeleteTenant(ctx context.Context, id string) error {
	if err := s.repo.DeleteTenant(ctx, id); err != nil {
		return s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.tenants[:0]
	for _, tenant := range s.tenants {
		if tenant.ID != id {
			remaining = append(remaining, tenant)
		}
	}
	s.tenants = remaining
	if s.activeID == id {
		s.activeID = ""
		if len(s.tenants) > 0 {
			s.activeID = s.tenants[0].ID
		}
	}
	return nil
}

// SetActiveTenant switches the active tenant. An empty id clears the
// selection.
func (s *Store) SetActiveTenant(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.activeID = ""
		return nil
	}
	if s.findTenantLocked(id) == nil {
		return ErrNotFound
	}
	s.activeID = id
	return nil
}

// AddCredential creates a credential for a tenant. The opaque credential
// reference in the returned entity comes from the backend; the store
// never mints one.
func (s *Store) AddCredential(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	created, err := s.repo.CreateCredential(ctx, cred)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tenant := s.findTenantLocked(created.TenantID); tenant != nil {
		tenant.Credentials = append(tenant.Credentials, created)
	}
	return created, nil
}

// UpdateCredential applies a partial credential update.
func (s *Store) UpdateCredential(ctx context.Context, id string, patch repository.CredentialPatch) (*models.Credential, error) {
	updated, err := s.repo.UpdateCredential(ctx, id, patch)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceCredentialLocked(updated)
	return updated, nil
}

func (s *Store) replaceCredentialLocked(cred *models.Credential) {
	for _, tenant := range s.tenants {
		for i, existing := range tenant.Credentials {
			if existing.ID == cred.ID {
				tenant.Credentials[i] = cred
				return
			}
		}
	}
}

// DeleteCredential removes a credential.
func (s *Store) DeleteCredential(ctx context.Context, id string) error {
	if err := s.repo.DeleteCredential(ctx, id); err != nil {
		return s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tenant := range s.tenants {
		for i, cred := range tenant.Credentials {
			if cred.ID == id {
				tenant.Credentials = append(tenant.Credentials[:i], tenant.Credentials[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// TestCredential runs the connection tester against a credential and
// persists the resulting status with a fresh lastTested stamp. The local
// entity only changes once the backend has the canonical result.
func (s *Store) TestCredential(ctx context.Context, id string) (*models.Credential, error) {
	s.mu.Lock()
	var target *models.Credential
	for _, tenant := range s.tenants {
		for _, cred := range tenant.Credentials {
			if cred.ID == id {
				c := *cred
				target = &c
			}
		}
	}
	s.mu.Unlock()
	if target == nil {
		return nil, s.fail(ctx, ErrNotFound)
	}

	status, testErr := s.tester.Test(ctx, target)
	if testErr != nil {
		status = models.StatusError
	}

	lastTested := time.Now().UTC().Format("2006-01-02 15:04:05")
	updated, err := s.repo.UpdateCredential(ctx, id, repository.CredentialPatch{
		Status:     &status,
		LastTested: &lastTested,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	s.replaceCredentialLocked(updated)
	s.mu.Unlock()
	return updated, testErr
}
