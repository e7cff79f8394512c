package store

import (
	"context"

	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/pkg/models"
)

// AddRoute creates an output route for a tenant.
func (s *Store) AddRoute(ctx context.Context, route *models.OutputRoute) (*models.OutputRoute, error) {
	created, err := s.repo.CreateRoute(ctx, route)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tenant := s.findTenantLocked(created.TenantID); tenant != nil {
		tenant.OutputRoutes = append(tenant.OutputRoutes, created)
	}
	return created.Clone(), nil
}

// UpdateRoute applies a partial route update. Headers follow the patch
// semantics (nil preserves, non-nil replaces); the execution history is
// client-held state the update payload never touches, so the prior
// history is carried over onto the reconciled entity.
func (s *Store) UpdateRoute(ctx context.Context, id string, patch repository.RoutePatch) (*models.OutputRoute, error) {
	updated, err := s.repo.UpdateRoute(ctx, id, patch)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tenant := range s.tenants {
		for i, route := range tenant.OutputRoutes {
			if route.ID == id {
				updated.History = route.History
				tenant.OutputRoutes[i] = updated
				return updated.Clone(), nil
			}
		}
	}
	return updated.Clone(), nil
}

// DeleteRoute removes a route; headers and history cascade at the
// backend.
func (s *Store) DeleteRoute(ctx context.Context, id string) error {
	if err := s.repo.DeleteRoute(ctx, id); err != nil {
		return s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tenant := range s.tenants {
		for i, route := range tenant.OutputRoutes {
			if route.ID == id {
				tenant.OutputRoutes = append(tenant.OutputRoutes[:i], tenant.OutputRoutes[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// DispatchRoute sends vars through a route's dispatcher and records the
// resulting execution. The reconciled history is most-recent-first and
// capped; the backend trims at write time and the local copy mirrors it.
func (s *Store) DispatchRoute(ctx context.Context, id string, vars map[string]string) (*models.OutputExecution, error) {
	s.mu.Lock()
	target := s.findRouteLocked(id).Clone()
	s.mu.Unlock()
	if target == nil {
		return nil, s.fail(ctx, ErrNotFound)
	}

	result, err := s.dispatcher.Dispatch(ctx, target, vars)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	created, err := s.repo.AppendExecution(ctx, id, &models.OutputExecution{
		RouteID:  id,
		Status:   result.Status,
		Payload:  result.Payload,
		Response: result.Response,
		Duration: result.Duration,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if live := s.findRouteLocked(id); live != nil {
		history := append([]*models.OutputExecution{created}, live.History...)
		if len(history) > models.ExecutionHistoryCap {
			history = history[:models.ExecutionHistoryCap]
		}
		live.History = history
	}
	return created, nil
}

func (s *Store) findRouteLocked(id string) *models.OutputRoute {
	for _, tenant := range s.tenants {
		for _, route := range tenant.OutputRoutes {
			if route.ID == id {
				return route
			}
		}
	}
	return nil
}
