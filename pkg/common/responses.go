package common

import (
	"encoding/json"
	"net/http"

	pkgerrors "formulahub-backend/pkg/errors"
)

// RespondJSON sends a JSON response with the given status code
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError sends an error response in the standard envelope
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

// RespondAppError maps a core error to its HTTP representation. Internal
// causes are never leaked to the client.
func RespondAppError(w http.ResponseWriter, err error) {
	status := pkgerrors.HTTPStatus(err)
	message := "internal server error"
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		switch appErr.Type {
		case pkgerrors.ErrorTypeValidation,
			pkgerrors.ErrorTypeNotFound,
			pkgerrors.ErrorTypeConflict,
			pkgerrors.ErrorTypeUnauthorized:
			message = appErr.Message
		}
	}
	RespondError(w, status, message)
}

// ParseJSONBody parses a JSON request body with a size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	return decoder.Decode(v)
}
