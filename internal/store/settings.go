package store

import (
	"context"

	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/pkg/models"
)

// AddGlobalVar creates a global variable.
func (s *Store) AddGlobalVar(ctx context.Context, v *models.EnvVar) (*models.EnvVar, error) {
	created, err := s.repo.CreateEnvVar(ctx, v)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	s.globalVars = append(s.globalVars, created)
	s.mu.Unlock()
	return created, nil
}

// UpdateGlobalVar applies a partial update to a global variable.
func (s *Store) UpdateGlobalVar(ctx context.Context, id string, patch repository.EnvVarPatch) (*models.EnvVar, error) {
	updated, err := s.repo.UpdateEnvVar(ctx, id, patch)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.globalVars {
		if v.ID == id {
			s.globalVars[i] = updated
			break
		}
	}
	return updated, nil
}

// DeleteGlobalVar removes a global variable.
func (s *Store) DeleteGlobalVar(ctx context.Context, id string) error {
	if err := s.repo.DeleteEnvVar(ctx, id); err != nil {
		return s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.globalVars {
		if v.ID == id {
			s.globalVars = append(s.globalVars[:i], s.globalVars[i+1:]...)
			break
		}
	}
	return nil
}

// AddPermission creates a permission assignment.
func (s *Store) AddPermission(ctx context.Context, p *models.UserPermission) (*models.UserPermission, error) {
	created, err := s.repo.CreatePermission(ctx, p)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	s.permissions = append(s.permissions, created)
	s.mu.Unlock()
	return created, nil
}

// UpdatePermission applies a partial update to a permission.
func (s *Store) UpdatePermission(ctx context.Context, id string, patch repository.PermissionPatch) (*models.UserPermission, error) {
	updated, err := s.repo.UpdatePermission(ctx, id, patch)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.permissions {
		if p.ID == id {
			s.permissions[i] = updated
			break
		}
	}
	return updated, nil
}

// DeletePermission removes a permission assignment.
func (s *Store) DeletePermission(ctx context.Context, id string) error {
	if err := s.repo.DeletePermission(ctx, id); err != nil {
		return s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.permissions {
		if p.ID == id {
			s.permissions = append(s.permissions[:i], s.permissions[i+1:]...)
			break
		}
	}
	return nil
}
