package endpoints

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/reliefops/relief/pkg/audit"
	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/metrics"
	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/server/middleware"
)

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Principal string `json:"principal"`
}

// RegisterAuthenticateEndpoints registers POST /login and POST /logout
func RegisterAuthenticateEndpoints(s *server.Server, loader *middleware.SessionLoader) {
	s.Router.HandleFunc(middleware.LoginPath, handleLogin(s, loader)).Methods("POST")
	s.Router.HandleFunc("/logout", handleLogout(s)).Methods("POST")
}

func handleLogin(s *server.Server, loader *middleware.SessionLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := requestValues(r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		username := values("username")

		sess := middleware.SessionFrom(r)
		err = s.Accounts.Login(r.Context(), sess, username, values("password"))
		if err == nil {
			err = loader.IssueCookie(w, sess)
		}
		if err != nil {
			sess.Clear()
			middleware.ClearCookie(w)

			loginOutcome := metrics.OutcomeDenied
			if !errors.Is(err, credentials.ErrAuthCredential) {
				loginOutcome = metrics.OutcomeError
			}
			s.Metrics.Login(loginOutcome)
			s.Audit.Log(r.Context(), audit.LoginEvent{
				Username:     username,
				ClientIP:     clientIP(r),
				Success:      false,
				ErrorMessage: err.Error(),
			})
			respondWithError(w, r, err)
			return
		}

		p, _ := sess.Principal()
		s.Metrics.Login(metrics.OutcomeSuccess)
		s.Audit.Log(r.Context(), audit.LoginEvent{
			Username:  sess.Username(),
			Role:      sess.Role().String(),
			Principal: p.User,
			ClientIP:  clientIP(r),
			Success:   true,
		})
		zerolog.Ctx(r.Context()).Info().Str("user", sess.Username()).Str("role", sess.Role().String()).Msg("logged in")

		respondWithNotice(w, http.StatusOK, LevelSuccess, "Logged in as "+sess.Role().String(), LoginResponse{
			Username:  sess.Username(),
			Role:      sess.Role().String(),
			Principal: p.User,
		})
	}
}

func handleLogout(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r)
		if sess.Authenticated() {
			s.Audit.Log(r.Context(), audit.LogoutEvent{Username: sess.Username(), ClientIP: clientIP(r)})
		}
		sess.Clear()
		middleware.ClearCookie(w)
		respondWithNotice(w, http.StatusOK, LevelInfo, "Logged out", nil)
	}
}
