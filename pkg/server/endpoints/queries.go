package endpoints

import (
	"net/http"

	"github.com/reliefops/relief/pkg/authz"
	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/server/middleware"
)

// RegisterQueriesEndpoints registers the dashboard and the read-only reports
func RegisterQueriesEndpoints(s *server.Server) {
	r := s.Router

	r.Handle("/", guarded(s, authz.ReadOnly, handleDashboard(s))).Methods("GET")
	r.Handle("/queries/above-average", guarded(s, authz.ReadOnly, handleAboveAverage(s))).Methods("GET")
	r.Handle("/queries/distributions", guarded(s, authz.ReadOnly, handleDistributions(s))).Methods("GET")
	r.Handle("/queries/resource-totals", guarded(s, authz.ReadOnly, handleResourceTotals(s))).Methods("GET")
}

// respondWithReport sends rows, with a warning notice when there are none.
func respondWithReport[T any](w http.ResponseWriter, rows []T, empty string) {
	if len(rows) == 0 {
		respondWithNotice(w, http.StatusOK, LevelWarning, empty, []T{})
		return
	}
	respondWithData(w, rows)
}

func handleDashboard(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))
		dash, err := s.Workflows.Dashboard(r.Context(), principal)
		s.Metrics.Operation("dashboard", outcome(err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithData(w, dash)
	}
}

func handleAboveAverage(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))

		rows, err := s.Workflows.AboveAverage(r.Context(), principal, q.Get("camp_id"), q.Get("date"))
		s.Metrics.Operation("above_average", outcome(err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithReport(w, rows, "No one above camp average for that date/camp.")
	}
}

func handleDistributions(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))

		rows, err := s.Workflows.Distributions(r.Context(), principal, q.Get("from"), q.Get("to"), q.Get("camp_id"))
		s.Metrics.Operation("distributions", outcome(err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithReport(w, rows, "No rows in window.")
	}
}

func handleResourceTotals(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))

		rows, err := s.Workflows.ResourceTotals(r.Context(), principal, q.Get("camp_id"), q.Get("from"), q.Get("to"))
		s.Metrics.Operation("resource_totals", outcome(err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithReport(w, rows, "No distributions for that camp/date range.")
	}
}
