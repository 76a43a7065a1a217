package endpoints

import (
	"net/http"

	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/server/middleware"
)

// WhoamiResponse represents the response from the /whoami endpoint. The
// principal password is never included.
type WhoamiResponse struct {
	Authenticated bool     `json:"authenticated"`
	Username      string   `json:"username,omitempty"`
	Role          string   `json:"role"`
	Principal     string   `json:"principal"`
	Tabs          []string `json:"tabs"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	s.Router.HandleFunc("/whoami", handleWhoami(s)).Methods("GET")
}

func handleWhoami(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r)
		principal := s.Accounts.ResolveForSession(sess)

		respondWithData(w, WhoamiResponse{
			Authenticated: sess.Authenticated(),
			Username:      sess.Username(),
			Role:          sess.Role().String(),
			Principal:     principal.User,
			Tabs:          sess.VisibleEntities(s.Schema.Entities()),
		})
	}
}
