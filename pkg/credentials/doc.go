// Package credentials maps UI accounts to store principals.
//
// Accounts are read from a YAML file:
//
//	accounts:
//	  - username: admin
//	    password: admin123
//	    role: Admin
//	    principal:
//	      user: relief_admin
//	      password: R2NtLi4u
//	      password_encrypted: true
//
// A principal password marked password_encrypted is sealed with the data
// key (see package datakey) using the principal user as additional data.
//
// The Router authenticates logins, verifies the mapped principal against
// the store and picks the principal every request runs as. Sessions
// without a login run as the configured anonymous principal.
package credentials
