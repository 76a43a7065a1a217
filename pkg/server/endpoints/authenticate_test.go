package endpoints

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "relief_session" {
			return c
		}
	}
	return nil
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials establish a session", func(t *testing.T) {
		env := newTestEnv(t)
		env.conn.Mock.ExpectPing()

		w := env.do(t, "POST", "/login", "", url.Values{"username": {"operator"}, "password": {"operator123"}})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var data LoginResponse
		resp := decodeData(t, w, &data)
		assert.Equal(t, LevelSuccess, resp.Notice.Level)
		assert.Equal(t, LoginResponse{Username: "operator", Role: "Operator", Principal: "relief_operator"}, data)
		assert.NotContains(t, w.Body.String(), "operator-pw")

		c := sessionCookie(w)
		require.NotNil(t, c)
		assert.NotEmpty(t, c.Value)
		assert.True(t, c.HttpOnly)

		assert.Equal(t, 1, env.conn.Opened())
		assert.Equal(t, 1, env.conn.Released())
		assert.NoError(t, env.conn.VerifyExpectations())
		assert.Contains(t, env.audit.String(), "operator logged in as Operator using principal relief_operator")
	})

	t.Run("the issued cookie authenticates later requests", func(t *testing.T) {
		env := newTestEnv(t)
		env.conn.Mock.ExpectPing()

		w := env.do(t, "POST", "/login", "", url.Values{"username": {"viewer"}, "password": {"viewer123"}})
		require.Equal(t, http.StatusOK, w.Code)

		req := httptest.NewRequest("GET", "/whoami", nil)
		req.AddCookie(sessionCookie(w))
		w = httptest.NewRecorder()
		env.srv.Router.ServeHTTP(w, req)

		var who WhoamiResponse
		decodeData(t, w, &who)
		assert.True(t, who.Authenticated)
		assert.Equal(t, "Viewer", who.Role)
	})

	t.Run("wrong password is rejected without touching the store", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, "POST", "/login", "", url.Values{"username": {"admin"}, "password": {"nope"}})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "auth_credential", resp.Error)
		assert.Equal(t, LevelDanger, resp.Notice.Level)

		c := sessionCookie(w)
		require.NotNil(t, c)
		assert.Less(t, c.MaxAge, 0)
		assert.Equal(t, 0, env.conn.Opened())
		assert.Contains(t, env.audit.String(), "admin failed to log in")
	})

	t.Run("principal that cannot connect is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.conn.Mock.ExpectPing().WillReturnError(errors.New("password authentication failed"))

		w := env.do(t, "POST", "/login", "", url.Values{"username": {"admin"}, "password": {"admin123"}})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "auth_principal", decode(t, w).Error)
		assert.Equal(t, 1, env.conn.Released())
	})

	t.Run("accepts a JSON body", func(t *testing.T) {
		env := newTestEnv(t)
		env.conn.Mock.ExpectPing()

		req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"username":"admin","password":"admin123"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.srv.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("malformed JSON body is invalid input", func(t *testing.T) {
		env := newTestEnv(t)

		req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"username":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.srv.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_input", decode(t, w).Error)
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "POST", "/logout", "admin", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)
	assert.Contains(t, env.audit.String(), "admin logged out")
}
