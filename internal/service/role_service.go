package service

import (
	"context"
	"fmt"

	"formsly/internal/model"
	"formsly/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type UpdateRolePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" binding:"required"`
}

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsSystem    bool                 `json:"is_system"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
	UpdateRolePermissions(ctx context.Context, roleID string, req UpdateRolePermissionsRequest) (*RoleResponse, error)
	GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error)
	SeedDefaultRolesAndPermissions(ctx context.Context) error
}

type roleService struct {
	repo repository.RoleRepository
}

func NewRoleService(repo repository.RoleRepository) RoleService {
	return &roleService{repo: repo}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, nil
}

func (s *roleService) UpdateRolePermissions(ctx context.Context, roleID string, req UpdateRolePermissionsRequest) (*RoleResponse, error) {
	id, err := uuid.Parse(roleID)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	permIDs := make([]uuid.UUID, 0, len(req.PermissionIDs))
	for _, pid := range req.PermissionIDs {
		parsed, parseErr := uuid.Parse(pid)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid permission id '%s': %w", pid, parseErr)
		}
		permIDs = append(permIDs, parsed)
	}

	if err := s.repo.ReplacePermissions(ctx, id, permIDs); err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}

	roles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload role: %w", err)
	}
	for _, r := range roles {
		if r.ID == id {
			resp := toRoleResponse(r)
			return &resp, nil
		}
	}
	return nil, fmt.Errorf("role not found")
}

func (s *roleService) GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error) {
	codes, err := s.repo.GetPermissionsByRoleName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("role '%s' not found: %w", roleName, err)
	}
	return codes, nil
}

// SeedDefaultRolesAndPermissions creates the default permissions and roles if not already present
func (s *roleService) SeedDefaultRolesAndPermissions(ctx context.Context) error {
	defaultPermissions := []model.Permission{
		{Code: "dashboard.read", Name: "View dashboard", Group: "dashboard"},
		{Code: "forms.read", Name: "View forms", Group: "forms"},
		{Code: "forms.manage", Name: "Manage forms and signer chains", Group: "forms"},
		{Code: "requests.read", Name: "View requests", Group: "requests"},
		{Code: "requests.write", Name: "Submit and cancel requests", Group: "requests"},
		{Code: "requests.approve", Name: "Approve or reject requests", Group: "requests"},
		{Code: "teams.read", Name: "View teams", Group: "teams"},
		{Code: "teams.manage", Name: "Manage teams and membership", Group: "teams"},
		{Code: "users.read", Name: "View users", Group: "users"},
		{Code: "users.write", Name: "Manage users", Group: "users"},
		{Code: "users.delete", Name: "Delete users", Group: "users"},
		{Code: "audit.read", Name: "View activity history", Group: "audit"},
		{Code: "roles.manage", Name: "Manage role permissions", Group: "roles"},
	}

	for i := range defaultPermissions {
		if err := s.repo.FindOrCreatePermission(ctx, &defaultPermissions[i]); err != nil {
			return fmt.Errorf("failed to seed permission '%s': %w", defaultPermissions[i].Code, err)
		}
	}

	permByCode := make(map[string]model.Permission, len(defaultPermissions))
	for _, p := range defaultPermissions {
		permByCode[p.Code] = p
	}

	roleDefinitions := map[string]struct {
		Description string
		PermCodes   []string
	}{
		"admin": {
			Description: "Full system access",
			PermCodes: []string{
				"dashboard.read",
				"forms.read", "forms.manage",
				"requests.read", "requests.write", "requests.approve",
				"teams.read", "teams.manage",
				"users.read", "users.write", "users.delete",
				"audit.read", "roles.manage",
			},
		},
		"member": {
			Description: "Submit requests, act on assigned decisions",
			PermCodes: []string{
				"dashboard.read",
				"forms.read",
				"requests.read", "requests.write", "requests.approve",
				"teams.read",
				"users.read",
			},
		},
	}

	for roleName, def := range roleDefinitions {
		role := model.Role{
			Name:        roleName,
			Description: def.Description,
			IsSystem:    true,
		}
		if err := s.repo.FindOrCreateRole(ctx, &role); err != nil {
			return fmt.Errorf("failed to seed role '%s': %w", roleName, err)
		}

		permIDs := make([]uuid.UUID, 0, len(def.PermCodes))
		for _, code := range def.PermCodes {
			if p, ok := permByCode[code]; ok {
				permIDs = append(permIDs, p.ID)
			}
		}
		if err := s.repo.ReplacePermissions(ctx, role.ID, permIDs); err != nil {
			return fmt.Errorf("failed to assign permissions to role '%s': %w", roleName, err)
		}
	}

	return nil
}

// --- Helpers ---

func toRoleResponse(r model.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, toPermissionResponse(p))
	}

	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: perms,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toPermissionResponse(p model.Permission) PermissionResponse {
	return PermissionResponse{
		ID:    p.ID.String(),
		Code:  p.Code,
		Name:  p.Name,
		Group: p.Group,
	}
}
