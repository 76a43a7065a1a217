package session

// Principal is a store-level identity. Its grants in the store are the real
// enforcement boundary; the UI role only decides what is offered.
type Principal struct {
	User     string
	Password string
}

// IsZero reports whether the principal names no user.
func (p Principal) IsZero() bool {
	return p.User == ""
}

// String returns the user name only.
func (p Principal) String() string {
	return p.User
}
