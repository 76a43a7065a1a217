// Package authz decides whether a session may run an operation.
//
// Decisions depend only on the session role and the operation's
// requirement. The store principal's grants remain the final check.
package authz

import (
	"errors"
	"strings"

	"github.com/reliefops/relief/pkg/session"
)

// ErrUnauthorized is returned when a role is not in the required set
var ErrUnauthorized = errors.New("unauthorized")

// ErrLoginRequired is returned when the session has no role
var ErrLoginRequired = errors.New("login required")

// Decision is the outcome of Check
type Decision int

const (
	Allowed Decision = iota
	DeniedLogin
	DeniedUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case DeniedLogin:
		return "login required"
	case DeniedUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Err returns the error matching a denial, nil when allowed.
func (d Decision) Err() error {
	switch d {
	case Allowed:
		return nil
	case DeniedLogin:
		return ErrLoginRequired
	}
	return ErrUnauthorized
}

// Requirement is a predicate over roles
type Requirement struct {
	roles []session.Role
	exact bool
}

// Exact admits one role only.
func Exact(role session.Role) Requirement {
	return Requirement{roles: []session.Role{role}, exact: true}
}

// AnyOf admits any of the given roles.
func AnyOf(roles ...session.Role) Requirement {
	return Requirement{roles: append([]session.Role(nil), roles...)}
}

// Admits reports whether role satisfies the requirement.
func (r Requirement) Admits(role session.Role) bool {
	if role == session.RoleNone {
		return false
	}
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func (r Requirement) String() string {
	names := make([]string, len(r.roles))
	for i, role := range r.roles {
		names[i] = role.String()
	}
	if r.exact {
		return names[0]
	}
	return "any of " + strings.Join(names, ", ")
}

// Check decides for s. A session without a role is sent to login; a
// session whose role is outside the requirement is refused and kept as is.
func Check(s *session.Session, req Requirement) Decision {
	if !s.Authenticated() {
		return DeniedLogin
	}
	if !req.Admits(s.Role()) {
		return DeniedUnauthorized
	}
	return Allowed
}

// Policy requirements for the operation groups.
var (
	RecordAccess     = Exact(session.RoleAdmin)
	MutatingWorkflow = AnyOf(session.RoleAdmin, session.RoleOperator)
	ReadOnly         = AnyOf(session.RoleAdmin, session.RoleOperator, session.RoleViewer)
)
