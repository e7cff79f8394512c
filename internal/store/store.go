// Package store holds the console's in-process authority for what the UI
// currently believes is true: the tenant list, the active tenant, global
// settings, and the command surface that mutates them. Every command is
// write-through: local state is reconciled from the backend's canonical
// response, never assumed from the request, and a failed call leaves
// local state untouched.
package store

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/nexusai/console/internal/auth"
	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/internal/secrets"
	"github.com/nexusai/console/internal/services"
	"github.com/nexusai/console/pkg/models"
)

// Logger is the logging interface the store needs.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// Store is the application state store.
type Store struct {
	repo        repository.Repository
	tester      services.ConnectionTester
	dispatcher  services.RouteDispatcher
	transformer services.Transformer
	sessions    *auth.Manager
	logger      Logger

	hydrations    metric.Int64Counter
	commandErrors metric.Int64Counter

	mu            sync.Mutex
	authenticated bool
	session       *auth.Session
	tenants       []*models.Tenant
	activeID      string
	globalVars    []*models.EnvVar
	permissions   []*models.UserPermission
	integrations  []*models.Integration
	logs          []*models.ExecutionLog
}

// New creates a Store over the given repository and capability clients.
func New(repo repository.Repository, tester services.ConnectionTester, dispatcher services.RouteDispatcher, transformer services.Transformer, logger Logger) *Store {
	meter := otel.Meter("github.com/nexusai/console/internal/store")
	hydrations, _ := meter.Int64Counter("console.store.hydrations")
	commandErrors, _ := meter.Int64Counter("console.store.command_errors")

	return &Store{
		repo:          repo,
		tester:        tester,
		dispatcher:    dispatcher,
		transformer:   transformer,
		sessions:      auth.NewManager(),
		logger:        logger,
		hydrations:    hydrations,
		commandErrors: commandErrors,
	}
}

// Sessions exposes the session manager for transport middleware.
func (s *Store) Sessions() *auth.Manager {
	return s.sessions
}

// fail counts a failed command and passes the error through unchanged.
func (s *Store) fail(ctx context.Context, err error) error {
	if err != nil {
		s.commandErrors.Add(ctx, 1)
	}
	return err
}

// Login validates the credential pair and, on success, performs a full
// hydration before marking the session authenticated. A hydration failure
// fails the login as a whole so there is no half-loaded state.
func (s *Store) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	session, err := s.sessions.Login(email, password)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	if err := s.hydrate(ctx); err != nil {
		s.sessions.Logout(session.Token)
		return nil, s.fail(ctx, err)
	}

	s.mu.Lock()
	s.authenticated = true
	s.session = session
	s.mu.Unlock()
	return session, nil
}

// Logout is a pure local reset: it revokes the session and clears every
// in-memory collection. No remote teardown happens, so an immediate
// re-login behaves like a first login.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.sessions.Logout(s.session.Token)
	}
	s.authenticated = false
	s.session = nil
	s.tenants = nil
	s.activeID = ""
	s.globalVars = nil
	s.permissions = nil
	s.integrations = nil
	s.logs = nil
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// hydrate loads the full read model: the tenant list, then each tenant's
// credentials and routes concurrently (never serialized across tenants),
// then the global collections concurrently. An empty integration catalog
// is seeded from the built-in provider list before being exposed.
func (s *Store) hydrate(ctx context.Context) error {
	tenants, err := s.repo.ListTenants(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, tenant := range tenants {
		tenant := tenant
		g.Go(func() error {
			creds, err := s.repo.ListCredentials(gctx, tenant.ID)
			if err != nil {
				return err
			}
			tenant.Credentials = creds
			return nil
		})
		g.Go(func() error {
			routes, err := s.repo.ListRoutes(gctx, tenant.ID)
			if err != nil {
				return err
			}
			tenant.OutputRoutes = routes
			return nil
		})
		g.Go(func() error {
			cfg, err := s.repo.GetCRMConfig(gctx, tenant.ID)
			if err != nil {
				return err
			}
			tenant.CRMConfig = cfg
			return nil
		})
	}

	var (
		vars  []*models.EnvVar
		perms []*models.UserPermission
		cat   []*models.Integration
		logs  []*models.ExecutionLog
	)
	g.Go(func() (err error) {
		vars, err = s.repo.ListEnvVars(gctx)
		return err
	})
	g.Go(func() (err error) {
		perms, err = s.repo.ListPermissions(gctx)
		return err
	})
	g.Go(func() error {
		existing, err := s.repo.ListIntegrations(gctx)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			if err := s.repo.SeedIntegrations(gctx, BuiltinIntegrations()); err != nil {
				return err
			}
			existing, err = s.repo.ListIntegrations(gctx)
			if err != nil {
				return err
			}
		}
		cat = existing
		return nil
	})
	g.Go(func() (err error) {
		logs, err = s.repo.ListExecutionLogs(gctx, "", 50)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants = tenants
	s.globalVars = vars
	s.permissions = perms
	s.integrations = cat
	s.logs = logs
	// The first loaded tenant becomes active only when nothing is;
	// switching tenants stays an explicit user action across reloads.
	if s.activeID == "" && len(tenants) > 0 {
		s.activeID = tenants[0].ID
	}
	if s.activeID != "" && s.findTenantLocked(s.activeID) == nil {
		s.activeID = ""
		if len(tenants) > 0 {
			s.activeID = tenants[0].ID
		}
	}
	s.hydrations.Add(ctx, 1)
	return nil
}

func (s *Store) findTenantLocked(id string) *models.Tenant {
	for _, tenant := range s.tenants {
		if tenant.ID == id {
			return tenant
		}
	}
	return nil
}

// Tenants returns the current tenant list in list order. The entries are
// deep copies: commands mutate the live aggregates in place under the
// store lock, so handing out the live pointers would let a concurrent
// render race those writes.
func (s *Store) Tenants() []*models.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Tenant, len(s.tenants))
	for i, tenant := range s.tenants {
		out[i] = tenant.Clone()
	}
	return out
}

// ActiveTenant returns a deep copy of the active tenant, or nil when none
// is selected.
func (s *Store) ActiveTenant() *models.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == "" {
		return nil
	}
	return s.findTenantLocked(s.activeID).Clone()
}

// GlobalVars returns the stored global variables. Secret values are
// present as stored; use RenderedGlobalVars for anything user-visible.
func (s *Store) GlobalVars() []*models.EnvVar {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.EnvVar, len(s.globalVars))
	copy(out, s.globalVars)
	return out
}

// RenderedGlobalVars returns the global variables with every secret value
// replaced by the fixed-length mask.
func (s *Store) RenderedGlobalVars() []*models.EnvVar {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.EnvVar, 0, len(s.globalVars))
	for _, v := range s.globalVars {
		rendered := *v
		if v.IsSecret {
			rendered.Value = secrets.MaskValue(v.Value)
		}
		out = append(out, &rendered)
	}
	return out
}

// Permissions returns the stored permission assignments.
func (s *Store) Permissions() []*models.UserPermission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.UserPermission, len(s.permissions))
	copy(out, s.permissions)
	return out
}

// Integrations returns the provider catalog.
func (s *Store) Integrations() []*models.Integration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Integration, len(s.integrations))
	copy(out, s.integrations)
	return out
}

// RenderedExecutionLogs returns the loaded execution logs with every
// sensitive step output field masked, ready for display.
func (s *Store) RenderedExecutionLogs() []*models.ExecutionLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.ExecutionLog, 0, len(s.logs))
	for _, log := range s.logs {
		rendered := *log
		rendered.Steps = make([]*models.ExecutionStep, 0, len(log.Steps))
		for _, step := range log.Steps {
			masked := *step
			masked.PayloadOut = secrets.MaskPayloadMap(step.PayloadOut)
			rendered.Steps = append(rendered.Steps, &masked)
		}
		out = append(out, &rendered)
	}
	return out
}

// TransformPreview runs the generative transformer against the active
// tenant's schemas and CRM configuration, returning the model's raw JSON
// text for display.
func (s *Store) TransformPreview(ctx context.Context) (string, error) {
	s.mu.Lock()
	tenant := s.findTenantLocked(s.activeID).Clone()
	s.mu.Unlock()
	if tenant == nil {
		return "", s.fail(ctx, ErrNoActiveTenant)
	}

	req := services.TransformRequest{
		CRMType:         tenant.CRMType,
		IngestionSchema: tenant.InternalSchema,
		OutputSchema:    tenant.OutputTemplate,
	}
	if tenant.CRMConfig != nil {
		req.SourceJSON = tenant.CRMConfig.SourceJSON
		req.Instructions = tenant.CRMConfig.AIInstructions
	}

	preview, err := s.transformer.TransformPreview(ctx, req)
	if err != nil {
		return "", s.fail(ctx, err)
	}
	return preview, nil
}
