package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/internal/services"
	"github.com/nexusai/console/pkg/models"
)

// NoOpLogger for testing
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(msg string, args ...interface{}) {}
func (l *NoOpLogger) Info(msg string, args ...interface{})  {}
func (l *NoOpLogger) Error(msg string, args ...interface{}) {}

// StubTransformer returns a canned preview.
type StubTransformer struct {
	Result string
	Err    error
}

func (s *StubTransformer) TransformPreview(ctx context.Context, req services.TransformRequest) (string, error) {
	return s.Result, s.Err
}

// FailingTester always reports an unreachable provider.
type FailingTester struct{}

func (f *FailingTester) Test(ctx context.Context, cred *models.Credential) (models.CredentialStatus, error) {
	return models.StatusError, fmt.Errorf("provider unreachable")
}

// MockRepository satisfies repository.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepository) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockRepository) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockRepository) CreateTenant(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockRepository) UpdateTenant(ctx context.Context, id string, patch repository.TenantPatch) (*models.Tenant, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockRepository) DeleteTenant(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) GetCRMConfig(ctx context.Context, tenantID string) (*models.CRMConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CRMConfig), args.Error(1)
}

func (m *MockRepository) UpsertCRMConfig(ctx context.Context, tenantID string, cfg models.CRMConfig) error {
	return m.Called(ctx, tenantID, cfg).Error(0)
}

func (m *MockRepository) ListCredentials(ctx context.Context, tenantID string) ([]*models.Credential, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Credential), args.Error(1)
}

func (m *MockRepository) CreateCredential(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *MockRepository) UpdateCredential(ctx context.Context, id string, patch repository.CredentialPatch) (*models.Credential, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *MockRepository) DeleteCredential(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListRoutes(ctx context.Context, tenantID string) ([]*models.OutputRoute, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OutputRoute), args.Error(1)
}

func (m *MockRepository) CreateRoute(ctx context.Context, route *models.OutputRoute) (*models.OutputRoute, error) {
	args := m.Called(ctx, route)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OutputRoute), args.Error(1)
}

func (m *MockRepository) UpdateRoute(ctx context.Context, id string, patch repository.RoutePatch) (*models.OutputRoute, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OutputRoute), args.Error(1)
}

func (m *MockRepository) DeleteRoute(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) AppendExecution(ctx context.Context, routeID string, exec *models.OutputExecution) (*models.OutputExecution, error) {
	args := m.Called(ctx, routeID, exec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OutputExecution), args.Error(1)
}

func (m *MockRepository) ListIntegrations(ctx context.Context) ([]*models.Integration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Integration), args.Error(1)
}

func (m *MockRepository) GetIntegration(ctx context.Context, id string) (*models.Integration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Integration), args.Error(1)
}

func (m *MockRepository) CreateIntegration(ctx context.Context, in *models.Integration) (*models.Integration, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Integration), args.Error(1)
}

func (m *MockRepository) SeedIntegrations(ctx context.Context, list []*models.Integration) error {
	return m.Called(ctx, list).Error(0)
}

func (m *MockRepository) ListEnvVars(ctx context.Context) ([]*models.EnvVar, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EnvVar), args.Error(1)
}

func (m *MockRepository) CreateEnvVar(ctx context.Context, v *models.EnvVar) (*models.EnvVar, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EnvVar), args.Error(1)
}

func (m *MockRepository) UpdateEnvVar(ctx context.Context, id string, patch repository.EnvVarPatch) (*models.EnvVar, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EnvVar), args.Error(1)
}

func (m *MockRepository) DeleteEnvVar(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListPermissions(ctx context.Context) ([]*models.UserPermission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserPermission), args.Error(1)
}

func (m *MockRepository) PermissionsByEmail(ctx context.Context, email string) ([]*models.UserPermission, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserPermission), args.Error(1)
}

func (m *MockRepository) CreatePermission(ctx context.Context, p *models.UserPermission) (*models.UserPermission, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPermission), args.Error(1)
}

func (m *MockRepository) UpdatePermission(ctx context.Context, id string, patch repository.PermissionPatch) (*models.UserPermission, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPermission), args.Error(1)
}

func (m *MockRepository) DeletePermission(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListExecutionLogs(ctx context.Context, tenantID string, limit int) ([]*models.ExecutionLog, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExecutionLog), args.Error(1)
}

func (m *MockRepository) GetExecutionLog(ctx context.Context, id string) (*models.ExecutionLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExecutionLog), args.Error(1)
}

func (m *MockRepository) CreateExecutionLog(ctx context.Context, log *models.ExecutionLog) (*models.ExecutionLog, error) {
	args := m.Called(ctx, log)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExecutionLog), args.Error(1)
}

func (m *MockRepository) UpdateExecutionLogStatus(ctx context.Context, id string, status models.ExecutionStatus, duration string) error {
	return m.Called(ctx, id, status, duration).Error(0)
}

func newTestStore(repo repository.Repository) *Store {
	return New(repo,
		&services.SimulatedConnectionTester{},
		&services.SimulatedRouteDispatcher{},
		&StubTransformer{Result: "{}"},
		&NoOpLogger{},
	)
}

// expectHydration wires up the full read-model load for a tenant list.
// Tenant credentials and routes come back empty unless the tenant entity
// already carries them.
func expectHydration(repo *MockRepository, tenants []*models.Tenant) {
	repo.On("ListTenants", mock.Anything).Return(tenants, nil)
	for _, tenant := range tenants {
		creds := tenant.Credentials
		if creds == nil {
			creds = []*models.Credential{}
		}
		routes := tenant.OutputRoutes
		if routes == nil {
			routes = []*models.OutputRoute{}
		}
		repo.On("ListCredentials", mock.Anything, tenant.ID).Return(creds, nil)
		repo.On("ListRoutes", mock.Anything, tenant.ID).Return(routes, nil)
		repo.On("GetCRMConfig", mock.Anything, tenant.ID).Return(nil, nil)
	}
	repo.On("ListEnvVars", mock.Anything).Return([]*models.EnvVar{}, nil)
	repo.On("ListPermissions", mock.Anything).Return([]*models.UserPermission{}, nil)
	repo.On("ListIntegrations", mock.Anything).Return([]*models.Integration{{ID: "slack", Name: "Slack Internal"}}, nil)
	repo.On("ListExecutionLogs", mock.Anything, "", 50).Return([]*models.ExecutionLog{}, nil)
}

func login(t *testing.T, s *Store) {
	t.Helper()
	_, err := s.Login(context.Background(), "admin@nexus.ai", "password")
	assert.NoError(t, err)
}

func TestStoreLogin(t *testing.T) {
	t.Run("valid login hydrates and activates the first tenant", func(t *testing.T) {
		repo := new(MockRepository)
		expectHydration(repo, []*models.Tenant{
			{ID: "t-1", Name: "Nexus Core"},
			{ID: "t-2", Name: "Orbit Labs"},
		})

		s := newTestStore(repo)
		session, err := s.Login(context.Background(), "admin@nexus.ai", "password")

		assert.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.True(t, s.Authenticated())
		assert.Len(t, s.Tenants(), 2)
		assert.Equal(t, "t-1", s.ActiveTenant().ID)
		repo.AssertExpectations(t)
	})

	t.Run("invalid credentials never touch the backend", func(t *testing.T) {
		repo := new(MockRepository)

		s := newTestStore(repo)
		_, err := s.Login(context.Background(), "admin@nexus.ai", "wrong")

		assert.Error(t, err)
		assert.False(t, s.Authenticated())
		repo.AssertNotCalled(t, "ListTenants", mock.Anything)
	})

	t.Run("hydration failure fails the login and revokes the session", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListTenants", mock.Anything).Return(nil, fmt.Errorf("backend down"))

		s := newTestStore(repo)
		_, err := s.Login(context.Background(), "admin@nexus.ai", "password")

		assert.Error(t, err)
		assert.False(t, s.Authenticated())
		assert.Empty(t, s.Tenants())
	})

	t.Run("empty tenant list leaves no active tenant", func(t *testing.T) {
		repo := new(MockRepository)
		expectHydration(repo, []*models.Tenant{})

		s := newTestStore(repo)
		login(t, s)

		assert.Nil(t, s.ActiveTenant())
	})
}

func TestStoreLogout(t *testing.T) {
	repo := new(MockRepository)
	expectHydration(repo, []*models.Tenant{{ID: "t-1", Name: "Nexus Core"}})

	s := newTestStore(repo)
	login(t, s)

	s.Logout()

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Tenants())
	assert.Nil(t, s.ActiveTenant())
	assert.Empty(t, s.GlobalVars())
	assert.Empty(t, s.Integrations())
}

func TestHydrationSeedsEmptyCatalog(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListTenants", mock.Anything).Return([]*models.Tenant{}, nil)
	repo.On("ListEnvVars", mock.Anything).Return([]*models.EnvVar{}, nil)
	repo.On("ListPermissions", mock.Anything).Return([]*models.UserPermission{}, nil)
	repo.On("ListExecutionLogs", mock.Anything, "", 50).Return([]*models.ExecutionLog{}, nil)

	// First read finds nothing, seed runs, second read returns the
	// built-in catalog.
	builtins := BuiltinIntegrations()
	repo.On("ListIntegrations", mock.Anything).Return([]*models.Integration{}, nil).Once()
	repo.On("SeedIntegrations", mock.Anything, mock.MatchedBy(func(list []*models.Integration) bool {
		return len(list) == len(builtins)
	})).Return(nil).Once()
	repo.On("ListIntegrations", mock.Anything).Return(builtins, nil).Once()

	s := newTestStore(repo)
	login(t, s)

	assert.Len(t, s.Integrations(), len(builtins))
	repo.AssertExpectations(t)
}

func TestAddTenantBecomesActive(t *testing.T) {
	repo := new(MockRepository)
	expectHydration(repo, []*models.Tenant{{ID: "t-1", Name: "Nexus Core"}})
	repo.On("CreateTenant", mock.Anything, mock.Anything).Return(&models.Tenant{ID: "t-2", Name: "Orbit Labs"}, nil)

	s := newTestStore(repo)
	login(t, s)

	created, err := s.AddTenant(context.Background(), &models.Tenant{Name: "Orbit Labs"})

	assert.NoError(t, err)
	assert.Equal(t, "t-2", created.ID)
	assert.Equal(t, "t-2", s.ActiveTenant().ID)
	assert.Len(t, s.Tenants(), 2)
}

func TestDeleteTenant(t *testing.T) {
	setup := func() (*MockRepository, *Store) {
		repo := new(MockRepository)
		expectHydration(repo, []*models.Tenant{
			{ID: "t-1", Name: "Nexus Core"},
			{ID: "t-2", Name: "Orbit Labs"},
			{ID: "t-3", Name: "Vega Ops"},
		})
		s := newTestStore(repo)
		login(t, s)
		return repo, s
	}

	t.Run("deleting the active tenant activates the first remaining", func(t *testing.T) {
		repo, s := setup()
		repo.On("DeleteTenant", mock.Anything, "t-1").Return(nil)

		assert.NoError(t, s.DeleteTenant(context.Background(), "t-1"))

		assert.Len(t, s.Tenants(), 2)
		assert.Equal(t, "t-2", s.ActiveTenant().ID)
	})

	t.Run("deleting a non-active tenant keeps the selection", func(t *testing.T) {
		repo, s := setup()
		repo.On("DeleteTenant", mock.Anything, "t-3").Return(nil)

		assert.NoError(t, s.DeleteTenant(context.Background(), "t-3"))

		assert.Equal(t, "t-1", s.ActiveTenant().ID)
	})

	t.Run("deleting the last tenant clears the selection", func(t *testing.T) {
		repo, s := setup()
		for _, id := range []string{"t-1", "t-2", "t-3"} {
			repo.On("DeleteTenant", mock.Anything, id).Return(nil)
			assert.NoError(t, s.DeleteTenant(context.Background(), id))
		}

		assert.Empty(t, s.Tenants())
		assert.Nil(t, s.ActiveTenant())
	})

	t.Run("backend failure leaves the list untouched", func(t *testing.T) {
		repo, s := setup()
		repo.On("DeleteTenant", mock.Anything, "t-1").Return(fmt.Errorf("backend down"))

		assert.Error(t, s.DeleteTenant(context.Background(), "t-1"))

		assert.Len(t, s.Tenants(), 3)
		assert.Equal(t, "t-1", s.ActiveTenant().ID)
	})
}

func TestSetActiveTenant(t *testing.T) {
	repo := new(MockRepository)
	expectHydration(repo, []*models.Tenant{
		{ID: "t-1", Name: "Nexus Core"},
		{ID: "t-2", Name: "Orbit Labs"},
	})

	s := newTestStore(repo)
	login(t, s)

	assert.NoError(t, s.SetActiveTenant("t-2"))
	assert.Equal(t, "t-2", s.ActiveTenant().ID)

	assert.ErrorIs(t, s.SetActiveTenant("t-missing"), ErrNotFound)
	assert.Equal(t, "t-2", s.ActiveTenant().ID)

	assert.NoError(t, s.SetActiveTenant(""))
	assert.Nil(t, s.ActiveTenant())
}

func TestUpdateTenantCarriesChildCollections(t *testing.T) {
	repo := new(MockRepository)
	tenant := &models.Tenant{
		ID:   "t-1",
		Name: "Nexus Core",
		Credentials: []*models.Credential{
			{ID: "c-1", TenantID: "t-1", Alias: "Drive Prod"},
		},
		OutputRoutes: []*models.OutputRoute{
			{ID: "r-1", TenantID: "t-1", Name: "Primary Webhook"},
		},
	}
	expectHydration(repo, []*models.Tenant{tenant})

	newName := "Nexus Prime"
	repo.On("UpdateTenant", mock.Anything, "t-1", mock.Anything).
		Return(&models.Tenant{ID: "t-1", Name: newName}, nil)

	s := newTestStore(repo)
	login(t, s)

	updated, err := s.UpdateTenant(context.Background(), "t-1", repository.TenantPatch{Name: &newName})

	assert.NoError(t, err)
	assert.Equal(t, "Nexus Prime", updated.Name)
	// The update payload never carries children; the prior collections
	// survive the reconcile.
	assert.Len(t, updated.Credentials, 1)
	assert.Len(t, updated.OutputRoutes, 1)
}

func TestUpdateRoutePreservesHistory(t *testing.T) {
	repo := new(MockRepository)
	tenant := &models.Tenant{
		ID: "t-1",
		OutputRoutes: []*models.OutputRoute{
			{
				ID:       "r-1",
				TenantID: "t-1",
				Name:     "Primary Webhook",
				History: []*models.OutputExecution{
					{ID: "e-1", RouteID: "r-1", Status: 200},
				},
			},
		},
	}
	expectHydration(repo, []*models.Tenant{tenant})

	newName := "Renamed Webhook"
	repo.On("UpdateRoute", mock.Anything, "r-1", mock.Anything).
		Return(&models.OutputRoute{ID: "r-1", TenantID: "t-1", Name: newName}, nil)

	s := newTestStore(repo)
	login(t, s)

	updated, err := s.UpdateRoute(context.Background(), "r-1", repository.RoutePatch{Name: &newName})

	assert.NoError(t, err)
	assert.Equal(t, "Renamed Webhook", updated.Name)
	assert.Len(t, updated.History, 1)
	assert.Equal(t, "e-1", updated.History[0].ID)
}

func TestDispatchRoute(t *testing.T) {
	t.Run("records the execution most-recent-first", func(t *testing.T) {
		repo := new(MockRepository)
		tenant := &models.Tenant{
			ID: "t-1",
			OutputRoutes: []*models.OutputRoute{
				{
					ID:           "r-1",
					TenantID:     "t-1",
					URL:          "https://hooks.example.com",
					BodyTemplate: `{"text": "hi {{name}}"}`,
					History: []*models.OutputExecution{
						{ID: "e-old", RouteID: "r-1"},
					},
				},
			},
		}
		expectHydration(repo, []*models.Tenant{tenant})

		repo.On("AppendExecution", mock.Anything, "r-1", mock.MatchedBy(func(exec *models.OutputExecution) bool {
			return exec.Status == 200 && exec.Payload["text"] == "hi Ada"
		})).Return(&models.OutputExecution{ID: "e-new", RouteID: "r-1", Status: 200}, nil)

		s := newTestStore(repo)
		login(t, s)

		created, err := s.DispatchRoute(context.Background(), "r-1", map[string]string{"name": "Ada"})

		assert.NoError(t, err)
		assert.Equal(t, "e-new", created.ID)

		history := s.ActiveTenant().OutputRoutes[0].History
		assert.Equal(t, "e-new", history[0].ID)
		assert.Equal(t, "e-old", history[1].ID)
	})

	t.Run("history never exceeds the cap", func(t *testing.T) {
		repo := new(MockRepository)
		full := make([]*models.OutputExecution, models.ExecutionHistoryCap)
		for i := range full {
			full[i] = &models.OutputExecution{ID: fmt.Sprintf("e-%d", i), RouteID: "r-1"}
		}
		tenant := &models.Tenant{
			ID: "t-1",
			OutputRoutes: []*models.OutputRoute{
				{ID: "r-1", TenantID: "t-1", BodyTemplate: `{}`, History: full},
			},
		}
		expectHydration(repo, []*models.Tenant{tenant})
		repo.On("AppendExecution", mock.Anything, "r-1", mock.Anything).
			Return(&models.OutputExecution{ID: "e-new", RouteID: "r-1", Status: 200}, nil)

		s := newTestStore(repo)
		login(t, s)

		_, err := s.DispatchRoute(context.Background(), "r-1", nil)

		assert.NoError(t, err)
		history := s.ActiveTenant().OutputRoutes[0].History
		assert.Len(t, history, models.ExecutionHistoryCap)
		assert.Equal(t, "e-new", history[0].ID)
		// The oldest entry fell off the end.
		assert.Equal(t, fmt.Sprintf("e-%d", models.ExecutionHistoryCap-2), history[models.ExecutionHistoryCap-1].ID)
	})

	t.Run("unknown route rejects", func(t *testing.T) {
		repo := new(MockRepository)
		expectHydration(repo, []*models.Tenant{{ID: "t-1"}})

		s := newTestStore(repo)
		login(t, s)

		_, err := s.DispatchRoute(context.Background(), "r-missing", nil)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTestCredential(t *testing.T) {
	hydrateWithCredential := func(repo *MockRepository) {
		tenant := &models.Tenant{
			ID: "t-1",
			Credentials: []*models.Credential{
				{ID: "c-1", TenantID: "t-1", Alias: "Drive Prod", Status: models.StatusDisconnected},
			},
		}
		expectHydration(repo, []*models.Tenant{tenant})
	}

	t.Run("success persists connected with a fresh stamp", func(t *testing.T) {
		repo := new(MockRepository)
		hydrateWithCredential(repo)
		repo.On("UpdateCredential", mock.Anything, "c-1", mock.MatchedBy(func(patch repository.CredentialPatch) bool {
			return patch.Status != nil && *patch.Status == models.StatusConnected &&
				patch.LastTested != nil && *patch.LastTested != ""
		})).Return(&models.Credential{ID: "c-1", TenantID: "t-1", Status: models.StatusConnected}, nil)

		s := newTestStore(repo)
		login(t, s)

		updated, err := s.TestCredential(context.Background(), "c-1")

		assert.NoError(t, err)
		assert.Equal(t, models.StatusConnected, updated.Status)
		assert.Equal(t, models.StatusConnected, s.ActiveTenant().Credentials[0].Status)
		repo.AssertExpectations(t)
	})

	t.Run("tester failure persists the error status", func(t *testing.T) {
		repo := new(MockRepository)
		hydrateWithCredential(repo)
		repo.On("UpdateCredential", mock.Anything, "c-1", mock.MatchedBy(func(patch repository.CredentialPatch) bool {
			return patch.Status != nil && *patch.Status == models.StatusError
		})).Return(&models.Credential{ID: "c-1", TenantID: "t-1", Status: models.StatusError}, nil)

		s := New(repo, &FailingTester{}, &services.SimulatedRouteDispatcher{}, &StubTransformer{}, &NoOpLogger{})
		login(t, s)

		updated, err := s.TestCredential(context.Background(), "c-1")

		assert.Error(t, err)
		assert.Equal(t, models.StatusError, updated.Status)
	})

	t.Run("unknown credential rejects", func(t *testing.T) {
		repo := new(MockRepository)
		hydrateWithCredential(repo)

		s := newTestStore(repo)
		login(t, s)

		_, err := s.TestCredential(context.Background(), "c-missing")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRenderedGlobalVars(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListTenants", mock.Anything).Return([]*models.Tenant{}, nil)
	repo.On("ListEnvVars", mock.Anything).Return([]*models.EnvVar{
		{ID: "v-1", Key: "GEMINI_API_VERSION", Value: "v2-preview", IsSecret: false},
		{ID: "v-2", Key: "ENCRYPTION_KEY", Value: "AKIA_NEXUS_8829", IsSecret: true},
	}, nil)
	repo.On("ListPermissions", mock.Anything).Return([]*models.UserPermission{}, nil)
	repo.On("ListIntegrations", mock.Anything).Return([]*models.Integration{{ID: "slack"}}, nil)
	repo.On("ListExecutionLogs", mock.Anything, "", 50).Return([]*models.ExecutionLog{}, nil)

	s := newTestStore(repo)
	login(t, s)

	rendered := s.RenderedGlobalVars()

	assert.Equal(t, "v2-preview", rendered[0].Value)
	assert.NotEqual(t, "AKIA_NEXUS_8829", rendered[1].Value)
	assert.NotContains(t, rendered[1].Value, "AKIA")

	// The stored value is untouched.
	assert.Equal(t, "AKIA_NEXUS_8829", s.GlobalVars()[1].Value)
}

func TestRenderedExecutionLogs(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListTenants", mock.Anything).Return([]*models.Tenant{}, nil)
	repo.On("ListEnvVars", mock.Anything).Return([]*models.EnvVar{}, nil)
	repo.On("ListPermissions", mock.Anything).Return([]*models.UserPermission{}, nil)
	repo.On("ListIntegrations", mock.Anything).Return([]*models.Integration{{ID: "slack"}}, nil)
	repo.On("ListExecutionLogs", mock.Anything, "", 50).Return([]*models.ExecutionLog{
		{
			ID:     "log-1",
			Status: models.ExecSuccess,
			Steps: []*models.ExecutionStep{
				{
					Name:       "push",
					Status:     models.StepCompleted,
					PayloadOut: map[string]any{"token": "abc", "status": "ok"},
				},
			},
		},
	}, nil)

	s := newTestStore(repo)
	login(t, s)

	rendered := s.RenderedExecutionLogs()

	out := rendered[0].Steps[0].PayloadOut
	assert.NotEqual(t, "abc", out["token"])
	assert.Equal(t, "ok", out["status"])
}

func TestWriteThroughFailureLeavesStateUntouched(t *testing.T) {
	repo := new(MockRepository)
	expectHydration(repo, []*models.Tenant{{ID: "t-1", Name: "Nexus Core"}})

	newName := "Ghost"
	repo.On("UpdateTenant", mock.Anything, "t-1", mock.Anything).
		Return(nil, fmt.Errorf("backend down"))

	s := newTestStore(repo)
	login(t, s)

	_, err := s.UpdateTenant(context.Background(), "t-1", repository.TenantPatch{Name: &newName})

	assert.Error(t, err)
	assert.Equal(t, "Nexus Core", s.Tenants()[0].Name)
}

func TestTransformPreview(t *testing.T) {
	t.Run("uses the active tenant's configuration", func(t *testing.T) {
		repo := new(MockRepository)
		expectHydration(repo, []*models.Tenant{{ID: "t-1", CRMType: models.CRMSalesforce}})

		s := newTestStore(repo)
		login(t, s)

		preview, err := s.TransformPreview(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, "{}", preview)
	})

	t.Run("no active tenant rejects", func(t *testing.T) {
		repo := new(MockRepository)
		expectHydration(repo, []*models.Tenant{})

		s := newTestStore(repo)
		login(t, s)

		_, err := s.TransformPreview(context.Background())

		assert.ErrorIs(t, err, ErrNoActiveTenant)
	})
}

func TestTenantsReturnsDeepCopies(t *testing.T) {
	repo := new(MockRepository)
	expectHydration(repo, []*models.Tenant{{
		ID:   "t-1",
		Name: "Nexus Core",
		Credentials: []*models.Credential{
			{ID: "c-1", TenantID: "t-1", Alias: "Prod Slack", Status: models.StatusConnected},
		},
		OutputRoutes: []*models.OutputRoute{
			{ID: "r-1", TenantID: "t-1", Name: "Primary Webhook", Headers: []*models.Header{
				{ID: "h-1", Key: "Authorization", Value: "Bearer demo_token"},
			}},
		},
	}})

	s := newTestStore(repo)
	login(t, s)

	snapshot := s.Tenants()[0]
	snapshot.Name = "scribbled"
	snapshot.Credentials[0].Alias = "scribbled"
	snapshot.Credentials = append(snapshot.Credentials, &models.Credential{ID: "c-extra"})
	snapshot.OutputRoutes[0].Headers[0].Value = "scribbled"

	live := s.ActiveTenant()
	assert.Equal(t, "Nexus Core", live.Name)
	assert.Len(t, live.Credentials, 1)
	assert.Equal(t, "Prod Slack", live.Credentials[0].Alias)
	assert.Equal(t, "Bearer demo_token", live.OutputRoutes[0].Headers[0].Value)
}

func TestSnapshotIsStableAcrossLaterCommands(t *testing.T) {
	repo := new(MockRepository)
	expectHydration(repo, []*models.Tenant{{ID: "t-1", Name: "Nexus Core"}})
	repo.On("CreateCredential", mock.Anything, mock.Anything).
		Return(&models.Credential{ID: "c-new", TenantID: "t-1", Status: models.StatusDisconnected}, nil)

	s := newTestStore(repo)
	login(t, s)

	snapshot := s.ActiveTenant()
	_, err := s.AddCredential(context.Background(), &models.Credential{TenantID: "t-1", ProviderID: "slack"})
	assert.NoError(t, err)

	assert.Empty(t, snapshot.Credentials)
	assert.Len(t, s.ActiveTenant().Credentials, 1)
}

func TestConcurrentRenderAndMutate(t *testing.T) {
	repo := new(MockRepository)
	expectHydration(repo, []*models.Tenant{{ID: "t-1", Name: "Nexus Core"}})
	repo.On("CreateCredential", mock.Anything, mock.Anything).
		Return(&models.Credential{ID: "c-new", TenantID: "t-1", Status: models.StatusDisconnected}, nil)

	s := newTestStore(repo)
	login(t, s)

	const iterations = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if _, err := json.Marshal(s.Tenants()); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if _, err := s.AddCredential(context.Background(), &models.Credential{TenantID: "t-1", ProviderID: "slack"}); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	assert.Len(t, s.ActiveTenant().Credentials, iterations)
}
