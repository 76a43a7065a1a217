package session

//go:generate go run github.com/dmarkham/enumer -type Role -trimprefix Role -json -yaml -output role.gen.go

// Role is the UI role granted to an account.
type Role int

const (
	RoleNone Role = iota
	RoleAdmin
	RoleOperator
	RoleViewer
)
