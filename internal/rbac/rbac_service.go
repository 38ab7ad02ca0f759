package rbac

import (
	"context"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"aegira/internal/authz"
	"aegira/internal/domain"
	rbacerrors "aegira/internal/rbac/errors"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadCompanyPolicy(companyID string) error
	Enforce(req domain.EnforceRequest) (bool, error)
	Resolve(ctx context.Context, companyID, workerID string) (authz.Context, error)

	ListRoles(ctx context.Context, companyID string) ([]domain.RoleResponse, error)
	ListPermissions(ctx context.Context) ([]domain.PermissionResponse, error)
}

type service struct {
	enforcer *casbin.Enforcer
	repo     Repository
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{enforcer: enforcer, repo: repo, logger: l}
}

// LoadCompanyPolicy rebuilds the in-memory policy from the database. The
// enforcer holds a single company's policy at a time, so callers must hold
// the service mutex across load and enforce.
func (s *service) loadCompanyPolicyLocked(companyID string) error {
	s.enforcer.ClearPolicy()

	workerRoles, err := s.repo.GetWorkerRoles(companyID)
	if err != nil {
		return err
	}
	for _, wr := range workerRoles {
		if _, err := s.enforcer.AddGroupingPolicy(wr.WorkerID, wr.RoleID, companyID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(companyID)
	if err != nil {
		return err
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, companyID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	return nil
}

func (s *service) LoadCompanyPolicy(companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCompanyPolicyLocked(companyID)
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadCompanyPolicyLocked(req.CompanyID); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.WorkerID, req.CompanyID, req.Resource, req.Action)
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// capabilityChecks maps resource/action pairs onto actor capability flags.
var capabilityChecks = []struct {
	resource string
	action   string
	apply    func(*authz.Context)
}{
	{"absence", "review", func(a *authz.Context) { a.CanReviewAbsence = true }},
	{"sweep", "run", func(a *authz.Context) { a.CanRunSweeps = true }},
	{"holiday", "manage", func(a *authz.Context) { a.CanManageHolidays = true }},
	{"report", "read", func(a *authz.Context) { a.CanReadTeamReport = true }},
}

// Resolve snapshots the worker's capabilities so services can make
// authorization decisions without reaching back into the enforcer mid
// transaction.
func (s *service) Resolve(ctx context.Context, companyID, workerID string) (authz.Context, error) {
	if companyID == "" || workerID == "" {
		return authz.Context{}, rbacerrors.ErrMissingIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadCompanyPolicyLocked(companyID); err != nil {
		return authz.Context{}, err
	}

	actor := authz.Context{ActorID: workerID}
	for _, check := range capabilityChecks {
		allowed, err := s.enforcer.Enforce(workerID, companyID, check.resource, check.action)
		if err != nil {
			return authz.Context{}, err
		}
		if allowed {
			check.apply(&actor)
		}
	}
	return actor, nil
}

func (s *service) ListRoles(ctx context.Context, companyID string) ([]domain.RoleResponse, error) {
	roles, err := s.repo.ListRoles(companyID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RoleResponse, 0, len(roles))
	for _, role := range roles {
		perms, err := s.repo.GetPermissionsByRoleID(role.ID)
		if err != nil {
			return nil, err
		}
		permNames := make([]string, 0, len(perms))
		for _, p := range perms {
			permNames = append(permNames, p.Resource+":"+p.Action)
		}
		result = append(result, domain.RoleResponse{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
			Permissions: permNames,
		})
	}
	return result, nil
}

func (s *service) ListPermissions(ctx context.Context) ([]domain.PermissionResponse, error) {
	perms, err := s.repo.ListPermissions()
	if err != nil {
		return nil, err
	}

	result := make([]domain.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		result = append(result, domain.PermissionResponse{
			ID:       p.ID,
			Resource: p.Resource,
			Action:   p.Action,
			Label:    p.Label,
			Category: p.Category,
		})
	}
	return result, nil
}
