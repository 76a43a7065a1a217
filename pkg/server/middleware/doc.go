// Package middleware holds the HTTP middleware of the relief server:
// session restoration from the session cookie, the role Guard, request
// logging and latency instrumentation.
package middleware
