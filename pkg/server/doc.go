// Package server provides the HTTP server for relief.
//
// The server wires the record engine, the workflow layer and the credential
// router behind a gorilla/mux router. Requests are logged in the Apache
// combined format by gorilla/handlers.
//
// # Server Setup
//
//	srv := server.NewServer(stores, accounts, sessions, metrics, "127.0.0.1", "8000")
//	endpoints.RegisterAll(srv)
//	log.Fatal(srv.Start())
//
// # Components
//
//   - Router: HTTP request router
//   - Schema: entity registry behind the CRUD tabs
//   - Accounts: credential router mapping UI accounts to store principals
//   - Sessions: session cookie codec
//   - Metrics: Prometheus collectors
//   - RecordsStore, HealthStore, Workflows: the store surface
//
// # Endpoints
//
// Endpoints are registered via the endpoints subpackage:
//
//   - POST /login, POST /logout, GET /whoami - session management
//   - GET /crud/{tab}, POST /crud/{tab} - generic records (Admin)
//   - /dbops/... - stored procedures, functions and trigger demonstrations
//   - GET /, /queries/... - read-only reports
//   - GET /status, GET /metrics - health and Prometheus metrics
package server
