package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoicegen/internal/services"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error maps a service error to its HTTP response. Unclassified errors
// become opaque 500s; classified ones carry kind, message, and field.
func Error(w http.ResponseWriter, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	status := http.StatusInternalServerError
	switch se.Kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindInvalidTransition, services.KindConflict:
		status = http.StatusConflict
	case services.KindMissingClient:
		status = http.StatusUnprocessableEntity
	case services.KindNotFound:
		status = http.StatusNotFound
	}
	var details any
	if se.Field != "" {
		details = map[string]string{se.Field: se.Message}
	}
	JSON(w, status, ErrorResponse{Error: string(se.Kind), Message: se.Message, Details: details})
}
