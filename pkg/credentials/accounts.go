package credentials

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/reliefops/relief/pkg/datakey"
	"github.com/reliefops/relief/pkg/session"
)

var validate = validator.New()

// Account is a UI login and the store principal it runs as.
type Account struct {
	Username  string            `yaml:"username" validate:"required"`
	Password  string            `yaml:"password" validate:"required"`
	Role      session.Role      `yaml:"role" validate:"required"`
	Principal PrincipalSettings `yaml:"principal"`
}

// PrincipalSettings is the store principal as written in the accounts file.
type PrincipalSettings struct {
	User              string `yaml:"user" validate:"required"`
	Password          string `yaml:"password"`
	PasswordEncrypted bool   `yaml:"password_encrypted"`
}

type accountsFile struct {
	Accounts []Account `yaml:"accounts" validate:"required,min=1,dive"`
}

// Registry is an immutable set of accounts keyed by username.
type Registry struct {
	order    []string
	accounts map[string]Account
	secrets  map[string]session.Principal
}

// NewRegistry builds a registry from accounts whose principal passwords are
// already in clear text.
func NewRegistry(accounts ...Account) (*Registry, error) {
	return buildRegistry(accounts, nil)
}

// LoadRegistry reads an accounts file. cipher may be nil when no principal
// password is encrypted.
func LoadRegistry(path string, cipher datakey.Cipher) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file %s: %w", path, err)
	}
	return ParseRegistry(data, cipher)
}

// ParseRegistry parses accounts file content.
func ParseRegistry(data []byte, cipher datakey.Cipher) (*Registry, error) {
	var file accountsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid accounts: %w", err)
	}
	return buildRegistry(file.Accounts, cipher)
}

func buildRegistry(accounts []Account, cipher datakey.Cipher) (*Registry, error) {
	r := &Registry{
		accounts: make(map[string]Account, len(accounts)),
		secrets:  make(map[string]session.Principal, len(accounts)),
	}
	for _, a := range accounts {
		if err := validate.Struct(a); err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", a.Username, err)
		}
		if !a.Role.IsARole() || a.Role == session.RoleNone {
			return nil, fmt.Errorf("account %q: unknown role", a.Username)
		}
		if _, dup := r.accounts[a.Username]; dup {
			return nil, fmt.Errorf("duplicate account %q", a.Username)
		}

		password := a.Principal.Password
		if a.Principal.PasswordEncrypted {
			if cipher == nil {
				return nil, fmt.Errorf("account %q: encrypted principal password needs RELIEF_DATA_KEY", a.Username)
			}
			plain, err := datakey.DecryptString(cipher, a.Principal.User, password)
			if err != nil {
				return nil, fmt.Errorf("account %q: failed to decrypt principal password: %w", a.Username, err)
			}
			password = plain
		}

		r.order = append(r.order, a.Username)
		r.accounts[a.Username] = a
		r.secrets[a.Username] = session.Principal{User: a.Principal.User, Password: password}
	}
	return r, nil
}

// Lookup returns the account and its decrypted principal.
func (r *Registry) Lookup(username string) (Account, session.Principal, bool) {
	if r == nil {
		return Account{}, session.Principal{}, false
	}
	a, ok := r.accounts[username]
	if !ok {
		return Account{}, session.Principal{}, false
	}
	return a, r.secrets[username], true
}

// Accounts returns the accounts in file order.
func (r *Registry) Accounts() []Account {
	if r == nil {
		return nil
	}
	out := make([]Account, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.accounts[name])
	}
	return out
}

// Len returns the number of accounts.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

var errNoRegistry = errors.New("no accounts loaded")
