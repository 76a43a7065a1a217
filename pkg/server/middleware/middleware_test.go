package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefops/relief/pkg/authz"
	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/metrics"
	"github.com/reliefops/relief/pkg/session"
)

var testKey = bytes.Repeat([]byte("m"), 32)

func newLoader(t *testing.T) *SessionLoader {
	t.Helper()
	reg, err := credentials.NewRegistry(
		credentials.Account{
			Username:  "admin",
			Password:  "admin123",
			Role:      session.RoleAdmin,
			Principal: credentials.PrincipalSettings{User: "relief_admin", Password: "pw"},
		},
		credentials.Account{
			Username:  "viewer",
			Password:  "viewer123",
			Role:      session.RoleViewer,
			Principal: credentials.PrincipalSettings{User: "relief_viewer", Password: "pw"},
		},
	)
	require.NoError(t, err)

	codec, err := session.NewCodec(testKey, time.Hour)
	require.NoError(t, err)
	return NewSessionLoader(codec, credentials.NewRouter(reg, nil, session.Principal{User: "relief_guest"}))
}

func cookieFor(t *testing.T, l *SessionLoader, username string, role session.Role, user string) *http.Cookie {
	t.Helper()
	s := session.New()
	require.NoError(t, s.Establish(username, role, session.Principal{User: user}))
	w := httptest.NewRecorder()
	require.NoError(t, l.IssueCookie(w, s))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

// captureSession returns a handler recording the session it saw.
func captureSession(out **session.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*out = SessionFrom(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionLoader(t *testing.T) {
	l := newLoader(t)

	t.Run("no cookie yields an empty session", func(t *testing.T) {
		var seen *session.Session
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		w := httptest.NewRecorder()

		l.Middleware(captureSession(&seen)).ServeHTTP(w, req)

		require.NotNil(t, seen)
		assert.False(t, seen.Authenticated())
	})

	t.Run("valid cookie restores the account principal", func(t *testing.T) {
		var seen *session.Session
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(cookieFor(t, l, "viewer", session.RoleViewer, "relief_viewer"))
		w := httptest.NewRecorder()

		l.Middleware(captureSession(&seen)).ServeHTTP(w, req)

		require.True(t, seen.Authenticated())
		assert.Equal(t, session.RoleViewer, seen.Role())
		p, _ := seen.Principal()
		assert.Equal(t, "relief_viewer", p.User)
		assert.Equal(t, "pw", p.Password)
	})

	t.Run("role change drops the session", func(t *testing.T) {
		var seen *session.Session
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(cookieFor(t, l, "viewer", session.RoleAdmin, "relief_viewer"))
		w := httptest.NewRecorder()

		l.Middleware(captureSession(&seen)).ServeHTTP(w, req)

		assert.False(t, seen.Authenticated())
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CookieName, cookies[0].Name)
		assert.Less(t, cookies[0].MaxAge, 0)
	})

	t.Run("tampered cookie is discarded", func(t *testing.T) {
		var seen *session.Session
		c := cookieFor(t, l, "admin", session.RoleAdmin, "relief_admin")
		c.Value += "x"
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(c)
		w := httptest.NewRecorder()

		l.Middleware(captureSession(&seen)).ServeHTTP(w, req)

		assert.False(t, seen.Authenticated())
	})
}

func TestGuard(t *testing.T) {
	l := newLoader(t)
	m := metrics.New()

	router := mux.NewRouter()
	router.Use(l.Middleware)
	crud := router.PathPrefix("/crud").Subrouter()
	crud.Use(Guard(authz.RecordAccess, m))
	crud.HandleFunc("/{tab}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous is sent to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/crud/Victim", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, LoginPath, w.Header().Get("Location"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "login_required", body["error"])
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/crud/Victim", nil)
		req.AddCookie(cookieFor(t, l, "viewer", session.RoleViewer, "relief_viewer"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Location"))
		assert.Empty(t, w.Result().Cookies(), "session is preserved")
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/crud/Victim", nil)
		req.AddCookie(cookieFor(t, l, "admin", session.RoleAdmin, "relief_admin"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
	}))

	t.Run("propagates a given id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Contains(t, buf.String(), `"req_id":"abc-123"`)
	})

	t.Run("generates an id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestInstrument(t *testing.T) {
	m := metrics.New()
	router := mux.NewRouter()
	router.Use(Instrument(m))
	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTeapot, w.Code)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() != "relief_http_request_duration_seconds" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == "/status" && labels["code"] == "418" {
				found = true
				assert.Equal(t, uint64(1), metric.GetHistogram().GetSampleCount())
			}
		}
	}
	assert.True(t, found)
}
