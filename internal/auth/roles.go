package auth

// Role is one mutually exclusive privilege tier. A principal holds exactly
// one role at a time. The set is closed; unknown values resolve to an empty
// permission set rather than an error.
type Role string

const (
	// RoleViewer can read published research.
	RoleViewer Role = "VIEWER"
	// RoleAnalyst authors reports and may edit their own drafts.
	RoleAnalyst Role = "ANALYST"
	// RoleEditor curates all research content. The legacy record-management
	// helper called this tier MANAGER; EDITOR is the canonical name.
	RoleEditor Role = "EDITOR"
	// RoleAdmin additionally manages users and API keys.
	RoleAdmin Role = "ADMIN"
)

// Roles lists the defined roles in ascending privilege order.
func Roles() []Role {
	return []Role{RoleViewer, RoleAnalyst, RoleEditor, RoleAdmin}
}

// ParseRole maps a stored role string onto the canonical enumeration.
// The legacy "MANAGER" spelling is folded into EDITOR.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleViewer, RoleAnalyst, RoleEditor, RoleAdmin:
		return Role(s), true
	}
	if s == "MANAGER" {
		return RoleEditor, true
	}
	return "", false
}

// Principal is the authenticated identity carried by a verified session
// token. It exists only for the duration of request handling; the signed
// token is its only persisted form.
type Principal struct {
	// UserID is the opaque subject identifier, immutable once issued.
	UserID string
	// Email is display/lookup metadata; never consulted for authorization.
	Email string
	// Role is the principal's single privilege tier.
	Role Role
}
