package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/reliefops/relief/pkg/audit"
	"github.com/reliefops/relief/pkg/authz"
	"github.com/reliefops/relief/pkg/schema"
	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/server/middleware"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/workflow"
)

// CRUD form actions
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// TableResponse is one CRUD tab.
type TableResponse struct {
	Entity  string      `json:"entity"`
	Table   string      `json:"table"`
	Key     []string    `json:"key"`
	Columns []string    `json:"columns"`
	Rows    []store.Row `json:"rows"`
}

// MutationResponse reports the rows a mutation touched.
type MutationResponse struct {
	Action   string `json:"action"`
	Affected int64  `json:"affected"`
}

// RegisterCrudEndpoints registers the generic record endpoints (Admin only)
func RegisterCrudEndpoints(s *server.Server) {
	crud := s.Router.PathPrefix("/crud").Subrouter()
	crud.Use(middleware.Guard(authz.RecordAccess, s.Metrics))

	crud.HandleFunc("/{tab}", handleListRecords(s)).Methods("GET")
	crud.HandleFunc("/{tab}", handleMutateRecords(s)).Methods("POST")
}

func describeTab(s *server.Server, r *http.Request) (string, schema.TableDescriptor, error) {
	tab, err := url.PathUnescape(mux.Vars(r)["tab"])
	if err != nil {
		return "", schema.TableDescriptor{}, fmt.Errorf("%w: %q", schema.ErrNotFound, mux.Vars(r)["tab"])
	}
	desc, err := s.Schema.Describe(tab)
	return tab, desc, err
}

func handleListRecords(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab, desc, err := describeTab(s, r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		principal := s.Accounts.ResolveForSession(middleware.SessionFrom(r))
		rows, err := s.RecordsStore.List(r.Context(), principal, desc)
		s.Metrics.Operation("crud.list", outcome(err))
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		if rows == nil {
			rows = []store.Row{}
		}

		respondWithData(w, TableResponse{
			Entity:  tab,
			Table:   desc.Name(),
			Key:     desc.Key().Columns(),
			Columns: desc.Columns(),
			Rows:    rows,
		})
	}
}

func handleMutateRecords(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab, desc, err := describeTab(s, r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		get, err := requestValues(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		sess := middleware.SessionFrom(r)
		principal := s.Accounts.ResolveForSession(sess)
		values := schema.ParseFieldValues(desc, get)
		action := get("action")

		var affected int64
		var message string
		switch action {
		case ActionAdd:
			err = s.RecordsStore.Insert(r.Context(), principal, desc, values)
			affected, message = 1, "Row added."
		case ActionUpdate:
			affected, err = s.RecordsStore.Update(r.Context(), principal, desc, values)
			message = "Row updated."
		case ActionDelete:
			affected, err = s.RecordsStore.Delete(r.Context(), principal, desc, values)
			message = "Row deleted."
		default:
			err = fmt.Errorf("%w: unknown action %q", workflow.ErrInvalidInput, action)
		}

		s.Metrics.Operation("crud."+action, outcome(err))
		event := audit.RecordEvent{
			Username:  sess.Username(),
			Principal: principal.User,
			ClientIP:  clientIP(r),
			Entity:    tab,
			Action:    action,
			Key:       keyValues(desc, values),
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = errorMessage(err)
			s.Audit.Log(r.Context(), event)
			respondWithError(w, r, err)
			return
		}
		s.Audit.Log(r.Context(), event)

		level := LevelSuccess
		if affected == 0 {
			level, message = LevelWarning, "No matching row."
		}
		respondWithNotice(w, http.StatusOK, level, message, MutationResponse{Action: action, Affected: affected})
	}
}

// keyValues renders the present key columns for the audit trail.
func keyValues(desc schema.TableDescriptor, values schema.FieldValues) map[string]string {
	key := map[string]string{}
	for _, c := range desc.Key().Columns() {
		if values.Present(c) {
			key[c] = fmt.Sprint(values.Get(c))
		}
	}
	return key
}
