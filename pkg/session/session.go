package session

import (
	"context"
	"errors"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for the request Session.
	Key ContextKey = "session"
)

// Session is the state of one user session. It is not safe for concurrent
// use; each request works on its own copy.
type Session struct {
	username  string
	role      Role
	principal Principal
}

// New returns an empty, unauthenticated session.
func New() *Session {
	return &Session{}
}

// Establish populates the session. Role and principal are set together or
// not at all.
func (s *Session) Establish(username string, role Role, principal Principal) error {
	if username == "" {
		return errors.New("session: username is required")
	}
	if role == RoleNone || !role.IsARole() {
		return errors.New("session: a role is required")
	}
	if principal.IsZero() {
		return errors.New("session: a store principal is required")
	}
	s.username = username
	s.role = role
	s.principal = principal
	return nil
}

// Clear drops every field of the session.
func (s *Session) Clear() {
	*s = Session{}
}

// Authenticated reports whether the session was established.
func (s *Session) Authenticated() bool {
	return s != nil && s.role != RoleNone
}

// Username returns the UI account name, "" when unauthenticated.
func (s *Session) Username() string {
	if s == nil {
		return ""
	}
	return s.username
}

// Role returns the session role, RoleNone when unauthenticated.
func (s *Session) Role() Role {
	if s == nil {
		return RoleNone
	}
	return s.role
}

// Principal returns the bound store principal.
func (s *Session) Principal() (Principal, bool) {
	if !s.Authenticated() {
		return Principal{}, false
	}
	return s.principal, true
}

// VisibleEntities filters the CRUD entity names for the session. Admin sees
// all of them, everyone else none.
func (s *Session) VisibleEntities(all []string) []string {
	if s.Role() != RoleAdmin {
		return []string{}
	}
	names := make([]string, len(all))
	copy(names, all)
	return names
}

// Get retrieves the Session from ctx.
func Get(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(Key).(*Session)
	return s, ok
}

// Set stores the Session in ctx.
func Set(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, Key, s)
}
