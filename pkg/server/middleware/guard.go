package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reliefops/relief/pkg/authz"
	"github.com/reliefops/relief/pkg/metrics"
)

// LoginPath is where unauthenticated requests are sent
const LoginPath = "/login"

type denial struct {
	Notice struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notice"`
	Error string `json:"error"`
}

// Guard rejects requests whose session does not satisfy req. Sessions
// without a role get 401 with a Location pointing at the login route; a
// role outside req gets 403 and the session is kept.
func Guard(req authz.Requirement, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := authz.Check(SessionFrom(r), req)
			switch decision {
			case authz.Allowed:
				next.ServeHTTP(w, r)
				return
			case authz.DeniedLogin:
				w.Header().Set("Location", LoginPath)
				writeDenial(w, http.StatusUnauthorized, "Please log in", "login_required")
			default:
				writeDenial(w, http.StatusForbidden, "Unauthorized", "unauthorized")
			}
			m.Operation(routeName(r), metrics.OutcomeDenied)
		})
	}
}

func writeDenial(w http.ResponseWriter, code int, message, kind string) {
	var body denial
	body.Notice.Level = "danger"
	body.Notice.Message = message
	body.Error = kind

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// routeName is the matched route template, or the raw path outside mux.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}
