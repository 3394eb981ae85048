package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations"
	"github.com/apisbr/apisbr/pkg/tabular"
)

// FormatParam selects the table encoding of a response (json by default).
const FormatParam = "format"

var contentTypes = map[tabular.Format]string{
	tabular.FormatTable: "text/plain; charset=utf-8",
	tabular.FormatCSV:   "text/csv; charset=utf-8",
	tabular.FormatJSON:  "application/json",
	tabular.FormatYAML:  "application/yaml",
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Similar map[string]string `json:"similar,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("encode response", "error", err)
	}
}

// writeTable encodes t in the format named by the request's format
// parameter.
func (s *Server) writeTable(w http.ResponseWriter, r *http.Request, t *tabular.Table) {
	format := tabular.FormatJSON
	if raw := r.URL.Query().Get(FormatParam); raw != "" {
		f, err := tabular.ParseFormat(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		format = f
	}
	w.Header().Set("Content-Type", contentTypes[format])
	if err := t.Write(w, format); err != nil {
		s.logger.Warn("write table", "error", err)
	}
}

// writeError maps err to a status code and an ErrorBody.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", requestIDFromContext(r.Context()))
	}
	writeJSON(w, status, body)
}

func errorResponse(err error) (int, ErrorBody) {
	body := ErrorBody{Code: string(apierrors.GetCode(err)), Message: apierrors.UserMessage(err)}

	var noMatch *integrations.NoMatchError
	switch {
	case errors.As(err, &noMatch):
		body.Code = string(apierrors.ErrCodeNoMatch)
		body.Message = "no match found for " + noMatch.Query
		body.Similar = noMatch.Similar
		return http.StatusNotFound, body
	case apierrors.IsValidation(err):
		return http.StatusBadRequest, body
	case errors.Is(err, integrations.ErrNotFound), apierrors.Is(err, apierrors.ErrCodeNotFound):
		return http.StatusNotFound, withCode(body, apierrors.ErrCodeNotFound)
	case errors.Is(err, integrations.ErrUnauthorized), apierrors.Is(err, apierrors.ErrCodeUnauthorized):
		return http.StatusUnauthorized, withCode(body, apierrors.ErrCodeUnauthorized)
	case errors.Is(err, integrations.ErrInvalidResponse):
		return http.StatusBadGateway, withCode(body, apierrors.ErrCodeInvalidResponse)
	case errors.Is(err, integrations.ErrNetwork), apierrors.Is(err, apierrors.ErrCodeNetwork):
		return http.StatusBadGateway, withCode(body, apierrors.ErrCodeNetwork)
	}
	return http.StatusInternalServerError, withCode(body, apierrors.ErrCodeInternal)
}

func withCode(b ErrorBody, code apierrors.Code) ErrorBody {
	if b.Code == "" {
		b.Code = string(code)
	}
	return b
}
