// Package error defines the wire format for API errors.
package error

import (
	"encoding/json"
	"net/http"
)

// Error is the JSON body written for every non-2xx response.
// Fields is only populated for validation failures and maps a
// request field to the list of messages explaining the rejection.
type Error struct {
	Code    ErrorCode           `json:"code"`
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
	ErrorID string              `json:"error_id"`
}

func (e *Error) Error() string {
	return e.Message
}

func encode(w http.ResponseWriter, body *Error) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Status)
	return json.NewEncoder(w).Encode(body)
}

// EncodeError writes the error code's canonical status with the given message.
func EncodeError(w http.ResponseWriter, code ErrorCode, message, requestID string) error {
	return encode(w, &Error{
		Code:    code,
		Status:  code.StatusCode(),
		Message: message,
		ErrorID: requestID,
	})
}

// EncodeValidationError writes a 400 with a field to messages mapping.
func EncodeValidationError(w http.ResponseWriter, fields map[string][]string, requestID string) error {
	return encode(w, &Error{
		Code:    ValidationError,
		Status:  ValidationError.StatusCode(),
		Message: "validation failed",
		Fields:  fields,
		ErrorID: requestID,
	})
}

func EncodeInternalError(w http.ResponseWriter, requestID string) error {
	return EncodeError(w, InternalServerError, "Internal Server Error", requestID)
}
