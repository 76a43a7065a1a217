package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/session"
)

// CookieName is the name of the session cookie
const CookieName = "relief_session"

// SessionLoader restores the request Session from the session cookie.
type SessionLoader struct {
	Codec    *session.Codec
	Accounts *credentials.Router
}

// NewSessionLoader creates the session middleware
func NewSessionLoader(codec *session.Codec, accounts *credentials.Router) *SessionLoader {
	return &SessionLoader{Codec: codec, Accounts: accounts}
}

// Middleware puts a Session in the request context. Requests without a
// valid cookie get an empty session; a cookie naming a vanished account or
// a changed role is dropped.
func (l *SessionLoader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.New()

		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			username, role, err := l.Codec.Decode(c.Value)
			switch {
			case err != nil:
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("discarding session cookie")
				ClearCookie(w)
			case !l.Accounts.Restore(s, username, role):
				zerolog.Ctx(r.Context()).Info().Str("user", username).Msg("session no longer matches an account")
				ClearCookie(w)
			}
		}

		next.ServeHTTP(w, r.WithContext(session.Set(r.Context(), s)))
	})
}

// IssueCookie persists an established session.
func (l *SessionLoader) IssueCookie(w http.ResponseWriter, s *session.Session) error {
	token, err := l.Codec.Encode(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(l.Codec.TTL() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionFrom returns the request session, an empty one when the
// middleware did not run.
func SessionFrom(r *http.Request) *session.Session {
	if s, ok := session.Get(r.Context()); ok && s != nil {
		return s
	}
	return session.New()
}
