package server

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
)

// envelope is the common response wrapper every admin endpoint returns:
// {code, message, data, timestamp}.
type envelope struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, http.StatusOK, "OK", "ok", data)
}

func writeCreated(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, http.StatusCreated, "CREATED", "created", data)
}

func writeEnvelope(w http.ResponseWriter, status int, code, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Code:      code,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeAppError maps an error to the HTTP status and envelope the error
// handling contract specifies: BadRequest->400, NotFound->404,
// Conflict->409, ValidationFailed/Internal/EngineError->500.
func writeAppError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		writeEnvelope(w, http.StatusInternalServerError, apperrors.CodeInternal, err.Error(), nil)
		return
	}
	writeEnvelope(w, appErr.HTTPStatus(), appErr.Code, appErr.Message, nil)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeAppError(w, apperrors.BadRequestError(message))
}
