package credentials

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/session"
)

var (
	// ErrAuthCredential is returned for an unknown user or a wrong password
	ErrAuthCredential = errors.New("invalid username or password")

	// ErrAuthPrincipal is returned when the mapped store principal cannot connect
	ErrAuthPrincipal = errors.New("store principal rejected")
)

// Router selects the store principal for each session.
type Router struct {
	registry  atomic.Pointer[Registry]
	conn      db.Connector
	anonymous session.Principal
}

// NewRouter returns a Router over reg. conn opens the verification
// connection of each login and must not hand out pooled connections.
func NewRouter(reg *Registry, conn db.Connector, anonymous session.Principal) *Router {
	r := &Router{conn: conn, anonymous: anonymous}
	r.registry.Store(reg)
	return r
}

// Replace swaps the account registry.
func (r *Router) Replace(reg *Registry) {
	r.registry.Store(reg)
}

// Registry returns the current account registry.
func (r *Router) Registry() *Registry {
	return r.registry.Load()
}

// Anonymous returns the principal used by unauthenticated sessions.
func (r *Router) Anonymous() session.Principal {
	return r.anonymous
}

// Authenticate checks username and password and then verifies the mapped
// principal with its own connection.
func (r *Router) Authenticate(ctx context.Context, username, password string) (Account, session.Principal, error) {
	reg := r.registry.Load()
	if reg == nil {
		return Account{}, session.Principal{}, fmt.Errorf("%w: %v", ErrAuthCredential, errNoRegistry)
	}

	account, principal, ok := reg.Lookup(username)
	if !ok {
		return Account{}, session.Principal{}, ErrAuthCredential
	}
	if subtle.ConstantTimeCompare([]byte(account.Password), []byte(password)) != 1 {
		return Account{}, session.Principal{}, ErrAuthCredential
	}

	if err := db.Verify(ctx, r.conn, principal); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("principal", principal.User).Msg("principal verification failed")
		return Account{}, session.Principal{}, fmt.Errorf("%w: %v", ErrAuthPrincipal, err)
	}
	return account, principal, nil
}

// Login authenticates and establishes s. On any failure s is left cleared.
func (r *Router) Login(ctx context.Context, s *session.Session, username, password string) error {
	s.Clear()

	account, principal, err := r.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}
	return s.Establish(account.Username, account.Role, principal)
}

// Restore re-establishes s from a persisted username and role. The session
// is cleared when the account is gone or its role changed.
func (r *Router) Restore(s *session.Session, username string, role session.Role) bool {
	s.Clear()

	account, principal, ok := r.registry.Load().Lookup(username)
	if !ok || account.Role != role {
		return false
	}
	return s.Establish(account.Username, account.Role, principal) == nil
}

// ResolveForSession returns the principal s runs as.
func (r *Router) ResolveForSession(s *session.Session) session.Principal {
	if p, ok := s.Principal(); ok {
		return p
	}
	return r.anonymous
}
