package auth

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Permission is an atomic named capability. Permissions are never combined
// or parameterized.
type Permission string

const (
	PermViewReports         Permission = "view_reports"
	PermCreateReport        Permission = "create_report"
	PermEditOwnReport       Permission = "edit_own_report"
	PermEditAnyReport       Permission = "edit_any_report"
	PermDeleteAnyReport     Permission = "delete_any_report"
	PermPublishReport       Permission = "publish_report"
	PermManageUsers         Permission = "manage_users"
	PermManageAPIKeys       Permission = "manage_api_keys"
	PermViewAnalytics       Permission = "view_analytics"
	PermManageMeetingNotes  Permission = "manage_meeting_notes"
	PermManageCompanyTables Permission = "manage_company_tables"
)

// rolePermissions is the single compiled-in role → permission table. Higher
// tiers are supersets of lower ones; that property is maintained by hand
// when the table changes, not enforced structurally.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermViewReports,
	},
	RoleAnalyst: {
		PermViewReports,
		PermCreateReport,
		PermEditOwnReport,
		PermViewAnalytics,
	},
	RoleEditor: {
		PermViewReports,
		PermCreateReport,
		PermEditOwnReport,
		PermEditAnyReport,
		PermDeleteAnyReport,
		PermPublishReport,
		PermViewAnalytics,
		PermManageMeetingNotes,
		PermManageCompanyTables,
	},
	RoleAdmin: {
		PermViewReports,
		PermCreateReport,
		PermEditOwnReport,
		PermEditAnyReport,
		PermDeleteAnyReport,
		PermPublishReport,
		PermManageUsers,
		PermManageAPIKeys,
		PermViewAnalytics,
		PermManageMeetingNotes,
		PermManageCompanyTables,
	},
}

//go:embed model.conf
var casbinModelContent string

// newEnforcer builds an in-memory Casbin enforcer seeded from the
// compiled-in table. No adapter is attached: the policy set is static for
// the lifetime of the process.
func newEnforcer() (casbin.IEnforcer, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	for role, perms := range rolePermissions {
		for _, perm := range perms {
			if _, err := enforcer.AddPolicy(string(role), string(perm)); err != nil {
				return nil, fmt.Errorf("seed policy %s/%s: %w", role, perm, err)
			}
		}
	}

	return enforcer, nil
}

// PermissionsFor returns the permission set a role grants. Unknown role
// values yield an empty set, never an error.
func PermissionsFor(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return []Permission{}
	}
	return append([]Permission(nil), perms...)
}
