package gorm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/session"
)

var (
	adminPrincipal  = session.Principal{User: "relief_admin", Password: "admin-pw"}
	viewerPrincipal = session.Principal{User: "relief_viewer", Password: "viewer-pw"}
)

func newMockConnector(t *testing.T) *db.MockConnector {
	t.Helper()
	conn, err := db.NewMockConnector()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
