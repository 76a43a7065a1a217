// Package session holds the per-request session state of the relief server.
//
// A Session is either empty or carries an authenticated username together
// with its Role and the store Principal used for every query of that
// session. Establish and Clear are the only transitions; a role can never be
// set without a principal.
//
// Sessions survive between requests as a signed token (see Codec) that only
// names the account and role. The principal is resolved again from the
// account registry when the token is restored, so store passwords never leave
// the server.
package session
