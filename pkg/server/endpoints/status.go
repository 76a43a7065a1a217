package endpoints

import (
	"net/http"
	"os"

	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/server/store"
)

// StatusResponse represents the response from /status
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status endpoint (no auth required)
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/status", handleStatus(s.HealthStore, s.Accounts)).Methods("GET")
}

func version() string {
	if v := os.Getenv("RELIEF_VERSION_DISPLAY"); v != "" {
		return v
	}
	return "0.1.0"
}

// handleStatus checks the store is reachable as the anonymous principal.
func handleStatus(healthStore store.HealthStore, accounts *credentials.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(r.Context(), accounts.Anonymous()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
				Status:  "error",
				Version: version(),
				Error:   "database connectivity check failed",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, StatusResponse{
			Status:  "ok",
			Version: version(),
		})
	}
}

// RegisterMetricsEndpoint exposes the Prometheus registry
func RegisterMetricsEndpoint(s *server.Server) {
	s.Router.Handle("/metrics", s.Metrics.Handler()).Methods("GET")
}
