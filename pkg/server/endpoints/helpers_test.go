package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reliefops/relief/pkg/audit"
	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/metrics"
	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/session"
)

var (
	guestPrincipal    = session.Principal{User: "relief_guest"}
	adminPrincipal    = session.Principal{User: "relief_admin", Password: "admin-pw"}
	operatorPrincipal = session.Principal{User: "relief_operator", Password: "operator-pw"}
	viewerPrincipal   = session.Principal{User: "relief_viewer", Password: "viewer-pw"}
)

type testEnv struct {
	srv       *server.Server
	records   *MockRecordsStore
	workflows *MockWorkflowStore
	reports   *MockReportsStore
	health    *MockHealthStore
	conn      *db.MockConnector
	audit     *bytes.Buffer
}

func account(username, password string, role session.Role, p session.Principal) credentials.Account {
	return credentials.Account{
		Username:  username,
		Password:  password,
		Role:      role,
		Principal: credentials.PrincipalSettings{User: p.User, Password: p.Password},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	reg, err := credentials.NewRegistry(
		account("admin", "admin123", session.RoleAdmin, adminPrincipal),
		account("operator", "operator123", session.RoleOperator, operatorPrincipal),
		account("viewer", "viewer123", session.RoleViewer, viewerPrincipal),
	)
	require.NoError(t, err)

	conn, err := db.NewMockConnector()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	codec, err := session.NewCodec(bytes.Repeat([]byte("e"), 32), time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		records:   &MockRecordsStore{},
		workflows: &MockWorkflowStore{},
		reports:   &MockReportsStore{},
		health:    &MockHealthStore{},
		conn:      conn,
		audit:     &bytes.Buffer{},
	}
	env.srv = server.NewServer(
		server.Stores{
			Records:   env.records,
			Workflows: env.workflows,
			Reports:   env.reports,
			Health:    env.health,
		},
		credentials.NewRouter(reg, conn, guestPrincipal),
		codec,
		metrics.New(),
		"127.0.0.1",
		"0",
	)
	RegisterAll(env.srv)

	env.srv.Audit = audit.New(audit.Settings{AppName: "relief"}, audit.WithWriter(env.audit))

	return env
}

// cookie returns a session cookie for one of the test accounts.
func (e *testEnv) cookie(t *testing.T, username string) *http.Cookie {
	t.Helper()
	acct, p, ok := e.srv.Accounts.Registry().Lookup(username)
	require.True(t, ok)

	s := session.New()
	require.NoError(t, s.Establish(acct.Username, acct.Role, p))
	token, err := e.srv.Sessions.Encode(s)
	require.NoError(t, err)
	return &http.Cookie{Name: "relief_session", Value: token}
}

// do sends a request as username; "" sends it without a session.
func (e *testEnv) do(t *testing.T, method, target, username string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if username != "" {
		req.AddCookie(e.cookie(t, username))
	}
	w := httptest.NewRecorder()
	e.srv.Router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) assertExpectations(t *testing.T) {
	e.records.AssertExpectations(t)
	e.workflows.AssertExpectations(t)
	e.reports.AssertExpectations(t)
	e.health.AssertExpectations(t)
}

type testResponse struct {
	Notice *Notice         `json:"notice"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) testResponse {
	t.Helper()
	resp := decode(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, out), string(resp.Data))
	return resp
}
