package endpoints

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reliefops/relief/pkg/audit"
	"github.com/reliefops/relief/pkg/authz"
	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/server/middleware"
	"github.com/reliefops/relief/pkg/workflow"
)

// CountResponse is the victim count of a camp.
type CountResponse struct {
	CampID string `json:"camp_id"`
	Count  int64  `json:"count"`
}

// RegisterDBOpsEndpoints registers the stored procedure, function and
// trigger demonstration endpoints
func RegisterDBOpsEndpoints(s *server.Server) {
	r := s.Router

	r.Handle("/dbops/distribute", guarded(s, authz.MutatingWorkflow, handleDistributeAid(s))).Methods("POST")
	r.Handle("/dbops/assign", guarded(s, authz.MutatingWorkflow, handleAssignVolunteer(s))).Methods("POST")
	r.Handle("/dbops/occupancy/{camp}", guarded(s, authz.ReadOnly, handleOccupancy(s))).Methods("GET")
	r.Handle("/dbops/victims/{camp}/count", guarded(s, authz.ReadOnly, handleCountVictims(s))).Methods("GET")
	r.Handle("/dbops/triggers/{demo:negative|insert|delete}", guarded(s, authz.MutatingWorkflow, handleTrigger(s))).Methods("POST")
}

// logWorkflow counts and audits one workflow invocation.
func logWorkflow(s *server.Server, r *http.Request, operation string, params map[string]string, err error) {
	s.Metrics.Operation(operation, outcome(err))

	sess := middleware.SessionFrom(r)
	event := audit.WorkflowEvent{
		Username:  sess.Username(),
		Principal: s.Accounts.ResolveForSession(sess).User,
		ClientIP:  clientIP(r),
		Operation: operation,
		Params:    params,
		Success:   err == nil,
	}
	if err != nil {
		event.ErrorMessage = errorMessage(err)
	}
	s.Audit.Log(r.Context(), event)
}

func handleDistributeAid(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		get, err := requestValues(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		in := workflow.DistributeAidInput{
			VolunteerID: get("volunteer_id"),
			VictimID:    get("victim_id"),
			ResourceID:  get("resource_id"),
			Qty:         get("qty"),
			Date:        get("date"),
		}

		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))
		err = s.Workflows.DistributeAid(r.Context(), principal, in)
		logWorkflow(s, r, "distribute_aid", map[string]string{
			"volunteer_id": in.VolunteerID,
			"victim_id":    in.VictimID,
			"resource_id":  in.ResourceID,
			"qty":          in.Qty,
			"date":         in.Date,
		}, err)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithNotice(w, http.StatusOK, LevelSuccess, "DistributeAid() executed.", nil)
	}
}

func handleAssignVolunteer(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		get, err := requestValues(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		in := workflow.AssignVolunteerInput{
			CampID:      get("camp_id"),
			VolunteerID: get("volunteer_id"),
			Date:        get("date"),
		}

		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))
		err = s.Workflows.AssignVolunteer(r.Context(), principal, in)
		logWorkflow(s, r, "assign_volunteer", map[string]string{
			"camp_id":      in.CampID,
			"volunteer_id": in.VolunteerID,
			"date":         in.Date,
		}, err)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithNotice(w, http.StatusOK, LevelSuccess, "assign_volunteer() executed.", nil)
	}
}

func handleOccupancy(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		camp := mux.Vars(r)["camp"]
		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))

		occ, err := s.Workflows.OccupancyFor(r.Context(), principal, camp)
		s.Metrics.Operation("camp_occupancy_for", outcome(err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		if !occ.Available {
			respondWithNotice(w, http.StatusOK, LevelWarning,
				fmt.Sprintf("No data to compute occupancy for Camp %s.", camp), occ)
			return
		}
		respondWithNotice(w, http.StatusOK, LevelInfo,
			fmt.Sprintf("camp_occupancy_for(%s) = %g%%", camp, occ.Percent), occ)
	}
}

func handleCountVictims(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		camp := mux.Vars(r)["camp"]
		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))

		n, err := s.Workflows.CountVictims(r.Context(), principal, camp)
		s.Metrics.Operation("count_victims_in_camp", outcome(err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithNotice(w, http.StatusOK, LevelInfo,
			fmt.Sprintf("Victims in Camp %s: %d", camp, n), CountResponse{CampID: camp, Count: n})
	}
}

func handleTrigger(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		get, err := requestValues(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		in := workflow.TriggerInput{
			VolunteerID: get("volunteer_id"),
			VictimID:    get("victim_id"),
			ResourceID:  get("resource_id"),
			Qty:         get("qty"),
			Date:        get("date"),
		}
		params := map[string]string{
			"volunteer_id": in.VolunteerID,
			"victim_id":    in.VictimID,
			"resource_id":  in.ResourceID,
			"qty":          in.Qty,
			"date":         in.Date,
		}
		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))

		switch mux.Vars(r)["demo"] {
		case "negative":
			res, err := s.Workflows.NegativeQuantity(r.Context(), principal, in)
			logWorkflow(s, r, "trigger.negative_quantity", params, err)
			if err != nil {
				respondWithError(w, r, err)
				return
			}
			if !res.Blocked {
				respondWithNotice(w, http.StatusOK, LevelWarning,
					"Unexpected: negative quantity insert was not blocked.", res)
				return
			}
			respondWithNotice(w, http.StatusOK, LevelSuccess,
				"BEFORE INSERT trigger blocked negative qty as expected. Error: "+res.Message+". "+describeEffect(res.Effect), res)

		case "insert":
			effect, err := s.Workflows.InsertDecrementsStock(r.Context(), principal, in)
			logWorkflow(s, r, "trigger.insert_decrements_stock", params, err)
			if err != nil {
				respondWithError(w, r, err)
				return
			}
			respondWithNotice(w, http.StatusOK, LevelInfo, "AFTER INSERT trigger executed. "+describeEffect(effect), effect)

		case "delete":
			effect, err := s.Workflows.DeleteRestoresStock(r.Context(), principal, in)
			logWorkflow(s, r, "trigger.delete_restores_stock", params, err)
			if err != nil {
				respondWithError(w, r, err)
				return
			}
			level := LevelInfo
			if effect.Affected == 0 {
				level = LevelWarning
			}
			respondWithNotice(w, http.StatusOK, level, "AFTER DELETE trigger executed. "+describeEffect(effect), effect)
		}
	}
}

func describeEffect(e *workflow.Effect) string {
	return fmt.Sprintf("Stock for Camp %d, Resource %d: %s -> %s",
		e.Camp, e.Resource, qtyString(e.Before), qtyString(e.After))
}

func qtyString(q *int64) string {
	if q == nil {
		return "None"
	}
	return fmt.Sprint(*q)
}
