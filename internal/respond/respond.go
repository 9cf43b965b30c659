// Package respond writes JSON responses and the shared error envelope.
package respond

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
)

// ServerErrorMessage is the only text clients ever see for unexpected failures.
const ServerErrorMessage = "Server Error"

// Envelope is the body of every error response.
type Envelope struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes an error envelope with a fixed status and message.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: false, Error: msg})
}

// Error maps err onto the envelope. Expected failures keep their message;
// anything else is logged with a stack and answered with a generic 500.
func Error(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	if e, ok := apperr.As(err); ok {
		JSON(w, e.HTTPStatus(), Envelope{Success: false, Error: e.Message, Errors: e.Fields})
		return
	}

	log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"stack":  string(debug.Stack()),
	}).WithError(err).Error("unhandled request error")
	Message(w, http.StatusInternalServerError, ServerErrorMessage)
}
