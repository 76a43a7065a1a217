package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reliefops/relief/pkg/authz"
	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/metrics"
	"github.com/reliefops/relief/pkg/schema"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/workflow"
)

// Notice levels
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

// Notice is a user-facing message.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Response is the envelope of every JSON response.
type Response struct {
	Notice *Notice     `json:"notice,omitempty"`
	Data   interface{} `json:"data"`
	Error  string      `json:"error,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithData(w http.ResponseWriter, data interface{}) {
	respondWithJSON(w, http.StatusOK, Response{Data: data})
}

func respondWithNotice(w http.ResponseWriter, code int, level, message string, data interface{}) {
	respondWithJSON(w, code, Response{Notice: &Notice{Level: level, Message: message}, Data: data})
}

// respondWithError turns an error of the taxonomy into a notice.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := classify(err)
	message := errorMessage(err)
	if code == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	respondWithJSON(w, code, Response{
		Notice: &Notice{Level: LevelDanger, Message: message},
		Error:  kind,
	})
}

// classify maps an error to an HTTP status and an error kind.
func classify(err error) (int, string) {
	var failure *workflow.Failure
	switch {
	case errors.Is(err, schema.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrUnsupportedOperation):
		return http.StatusMethodNotAllowed, "unsupported_operation"
	case errors.Is(err, store.ErrMissingKey):
		return http.StatusBadRequest, "missing_key"
	case errors.Is(err, workflow.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, workflow.ErrVictimNotInCamp):
		return http.StatusBadRequest, "victim_not_in_camp"
	case errors.Is(err, credentials.ErrAuthCredential):
		return http.StatusUnauthorized, "auth_credential"
	case errors.Is(err, credentials.ErrAuthPrincipal):
		return http.StatusServiceUnavailable, "auth_principal"
	case errors.Is(err, authz.ErrLoginRequired):
		return http.StatusUnauthorized, "login_required"
	case errors.Is(err, authz.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.As(err, &failure) && failure.Kind == workflow.KindMissingReference:
		return http.StatusConflict, string(workflow.KindMissingReference)
	case errors.Is(err, store.ErrConstraintViolation):
		return http.StatusConflict, string(workflow.KindConstraint)
	case errors.Is(err, store.ErrPermissionDenied):
		return http.StatusForbidden, string(workflow.KindPermission)
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable, string(workflow.KindUnavailable)
	}
	return http.StatusInternalServerError, string(workflow.KindOther)
}

// errorMessage prefers the store's own explanation.
func errorMessage(err error) string {
	var failure *workflow.Failure
	if errors.As(err, &failure) {
		return failure.Error()
	}
	var ce *store.ConstraintError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

// outcome is the metrics outcome of err.
func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch code, _ := classify(err); code {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusMethodNotAllowed:
		return metrics.OutcomeInvalid
	case http.StatusConflict:
		return metrics.OutcomeRejected
	case http.StatusUnauthorized, http.StatusForbidden:
		return metrics.OutcomeDenied
	}
	return metrics.OutcomeError
}

// requestValues returns a lookup over the request's form or JSON body.
// Query parameters are included for form requests.
func requestValues(r *http.Request) (func(string) string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		body := map[string]interface{}{}
		if r.Body != nil {
			dec := json.NewDecoder(r.Body)
			dec.UseNumber()
			if err := dec.Decode(&body); err != nil {
				return nil, fmt.Errorf("%w: malformed JSON body", workflow.ErrInvalidInput)
			}
		}
		return func(name string) string {
			switch v := body[name].(type) {
			case nil:
				return r.URL.Query().Get(name)
			case string:
				return v
			case json.Number:
				return v.String()
			default:
				return fmt.Sprint(v)
			}
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrInvalidInput, err)
	}
	return r.Form.Get, nil
}

// clientIP returns the address the request came from.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
