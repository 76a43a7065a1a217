package endpoints

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/reliefops/relief/pkg/authz"
	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/server/middleware"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	loader := middleware.NewSessionLoader(srv.Sessions, srv.Accounts)

	logger := zerolog.Nop()
	if zerolog.DefaultContextLogger != nil {
		logger = *zerolog.DefaultContextLogger
	}
	srv.Router.Use(
		middleware.RequestLogger(logger),
		middleware.Instrument(srv.Metrics),
		loader.Middleware,
	)

	RegisterStatusEndpoints(srv)
	RegisterMetricsEndpoint(srv)
	RegisterAuthenticateEndpoints(srv, loader)
	RegisterWhoamiEndpoint(srv)
	RegisterCrudEndpoints(srv)
	RegisterDBOpsEndpoints(srv)
	RegisterQueriesEndpoints(srv)
}

// guarded wraps h in the role Guard for req.
func guarded(srv *server.Server, req authz.Requirement, h http.HandlerFunc) http.Handler {
	return middleware.Guard(req, srv.Metrics)(h)
}
