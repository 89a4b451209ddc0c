package auth

import (
	"errors"
	"log"

	"github.com/casbin/casbin/v2"
)

// ErrUnauthorized signals that a principal exists but lacks the required
// permission or role. The Require* wrappers return it so callers can
// short-circuit instead of branching on a boolean.
var ErrUnauthorized = errors.New("unauthorized: insufficient permissions")

// Authorizer answers permission questions for principals. All decision
// methods are read-only; the enforcer's policy set never changes after
// construction, so an Authorizer is safe for concurrent use.
//
// Every role comparison in the codebase lives here: handlers consult the
// guard rather than re-deriving role logic.
type Authorizer struct {
	enforcer casbin.IEnforcer
}

// NewAuthorizer builds the guard over the compiled-in permission table.
func NewAuthorizer() (*Authorizer, error) {
	enforcer, err := newEnforcer()
	if err != nil {
		return nil, err
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// HasPermission reports whether the principal's role grants the permission.
// A nil principal never holds any permission.
func (a *Authorizer) HasPermission(p *Principal, perm Permission) bool {
	if p == nil {
		return false
	}
	allowed, err := a.enforcer.Enforce(string(p.Role), string(perm))
	if err != nil {
		log.Printf("authorizer: enforce %s/%s: %v", p.Role, perm, err)
		return false
	}
	return allowed
}

// CanEditReport reports whether the principal may edit a report authored by
// authorID. The broad grant (edit_any_report) short-circuits first; the
// narrow grant (edit_own_report) additionally requires an identity match.
func (a *Authorizer) CanEditReport(p *Principal, authorID string) bool {
	if p == nil {
		return false
	}
	if a.HasPermission(p, PermEditAnyReport) {
		return true
	}
	return a.HasPermission(p, PermEditOwnReport) && p.UserID == authorID
}

// CanDeleteReport reports whether the principal may delete reports.
func (a *Authorizer) CanDeleteReport(p *Principal) bool {
	return a.HasPermission(p, PermDeleteAnyReport)
}

// CanPublishReport reports whether the principal may publish reports.
func (a *Authorizer) CanPublishReport(p *Principal) bool {
	return a.HasPermission(p, PermPublishReport)
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (a *Authorizer) IsAdmin(p *Principal) bool {
	return p != nil && p.Role == RoleAdmin
}

// IsElevated reports whether the principal is an editor or higher.
func (a *Authorizer) IsElevated(p *Principal) bool {
	if p == nil {
		return false
	}
	return p.Role == RoleAdmin || p.Role == RoleEditor
}

// RequirePermission converts a failed HasPermission check into
// ErrUnauthorized.
func (a *Authorizer) RequirePermission(p *Principal, perm Permission) error {
	if !a.HasPermission(p, perm) {
		return ErrUnauthorized
	}
	return nil
}

// RequireAdmin converts a failed IsAdmin check into ErrUnauthorized.
func (a *Authorizer) RequireAdmin(p *Principal) error {
	if !a.IsAdmin(p) {
		return ErrUnauthorized
	}
	return nil
}
