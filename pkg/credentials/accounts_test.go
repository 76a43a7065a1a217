package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefops/relief/pkg/datakey"
	"github.com/reliefops/relief/pkg/session"
)

const plainAccounts = `
accounts:
  - username: admin
    password: admin123
    role: Admin
    principal:
      user: relief_admin
      password: admin-pw
  - username: operator
    password: op123
    role: operator
    principal:
      user: relief_operator
      password: op-pw
  - username: viewer
    password: view123
    role: Viewer
    principal:
      user: relief_viewer
`

func TestParseRegistry(t *testing.T) {
	reg, err := ParseRegistry([]byte(plainAccounts), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())

	account, principal, ok := reg.Lookup("operator")
	require.True(t, ok)
	assert.Equal(t, session.RoleOperator, account.Role)
	assert.Equal(t, session.Principal{User: "relief_operator", Password: "op-pw"}, principal)

	names := []string{}
	for _, a := range reg.Accounts() {
		names = append(names, a.Username)
	}
	assert.Equal(t, []string{"admin", "operator", "viewer"}, names)

	_, _, ok = reg.Lookup("nobody")
	assert.False(t, ok)
}

func TestParseRegistryRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown role", content: "accounts:\n  - {username: a, password: p, role: Superuser, principal: {user: u}}\n"},
		{name: "missing principal user", content: "accounts:\n  - {username: a, password: p, role: Admin}\n"},
		{name: "missing password", content: "accounts:\n  - {username: a, role: Admin, principal: {user: u}}\n"},
		{name: "duplicate", content: "accounts:\n  - {username: a, password: p, role: Admin, principal: {user: u}}\n  - {username: a, password: q, role: Viewer, principal: {user: v}}\n"},
		{name: "empty", content: "accounts: []\n"},
		{name: "not yaml", content: "accounts: [\n"},
		{name: "encrypted without key", content: "accounts:\n  - {username: a, password: p, role: Admin, principal: {user: u, password: eA==, password_encrypted: true}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(tt.content), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistryEncryptedPassword(t *testing.T) {
	key, err := datakey.Generate()
	require.NoError(t, err)
	cipher, err := datakey.FromBase64(key)
	require.NoError(t, err)

	sealed, err := datakey.EncryptString(cipher, "relief_admin", "s3cret")
	require.NoError(t, err)

	content := "accounts:\n" +
		"  - username: admin\n" +
		"    password: admin123\n" +
		"    role: Admin\n" +
		"    principal:\n" +
		"      user: relief_admin\n" +
		"      password: " + sealed + "\n" +
		"      password_encrypted: true\n"
	path := filepath.Join(t.TempDir(), "accounts.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	reg, err := LoadRegistry(path, cipher)
	require.NoError(t, err)
	_, principal, ok := reg.Lookup("admin")
	require.True(t, ok)
	assert.Equal(t, "s3cret", principal.Password)

	other, err := datakey.New(make([]byte, datakey.KeySize))
	require.NoError(t, err)
	_, err = LoadRegistry(path, other)
	assert.Error(t, err)
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yml"), nil)
	assert.Error(t, err)
}
