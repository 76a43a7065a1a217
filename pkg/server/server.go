package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/reliefops/relief/pkg/audit"
	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/metrics"
	"github.com/reliefops/relief/pkg/schema"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/session"
	"github.com/reliefops/relief/pkg/workflow"
)

// Stores groups the store implementations the endpoints run against.
type Stores struct {
	Records   store.RecordsStore
	Workflows store.WorkflowStore
	Reports   store.ReportsStore
	Health    store.HealthStore
}

type Server struct {
	Router   *mux.Router
	Schema   *schema.Registry
	Accounts *credentials.Router
	Sessions *session.Codec
	Metrics  *metrics.Metrics

	// Audit records logins and mutations; nil records nothing.
	Audit *audit.Auditor

	RecordsStore store.RecordsStore
	HealthStore  store.HealthStore
	Workflows    *workflow.Service

	srv *http.Server
}

func NewServer(
	stores Stores,
	accounts *credentials.Router,
	sessions *session.Codec,
	m *metrics.Metrics,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(os.Stdout, router),
		Addr:         net.JoinHostPort(host, port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:       router,
		Schema:       schema.Default,
		Accounts:     accounts,
		Sessions:     sessions,
		Metrics:      m,
		RecordsStore: stores.Records,
		HealthStore:  stores.Health,
		Workflows:    workflow.NewService(stores.Workflows, stores.Reports),
		srv:          srv,
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// StartWithListener serves on an already bound listener.
func (s *Server) StartWithListener(l net.Listener) error {
	return s.srv.Serve(l)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}
