package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	derrors "github.com/matzehuels/dithermask/pkg/errors"
	"github.com/matzehuels/dithermask/pkg/observability"
)

// errorBody is the JSON form of an error response.
type errorBody struct {
	Code      derrors.Code `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
}

// statusOf maps an error to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case derrors.IsInvalid(err) && derrors.GetCode(err) != derrors.ErrCodeTooLarge:
		return http.StatusBadRequest
	}
	switch derrors.GetCode(err) {
	case derrors.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case derrors.ErrCodeNonConvergence:
		return http.StatusUnprocessableEntity
	case derrors.ErrCodeNotFound, derrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case derrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// writeError writes err as a JSON error response. Internal errors are
// reported without their details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := errorBody{
		Code:      derrors.GetCode(err),
		Message:   derrors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	}
	if status == http.StatusInternalServerError || body.Code == "" {
		if status == http.StatusServiceUnavailable {
			body.Code, body.Message = derrors.ErrCodeInternal, "request timed out"
		} else {
			body.Code, body.Message = derrors.ErrCodeInternal, "internal error"
		}
	}
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errNotFound(path string) error {
	return derrors.New(derrors.ErrCodeNotFound, "no route for %s", path)
}
