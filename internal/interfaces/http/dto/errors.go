package dto

import "net/http"

// Transport-level error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes (transport codes and domain codes
// surfaced as-is) to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:      http.StatusInternalServerError,
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,

	// Malformed input -> 400 Bad Request
	"INVALID_EVENT_REF":     http.StatusBadRequest,
	"INVALID_AMOUNT":        http.StatusBadRequest,
	"INVALID_INPUT":         http.StatusBadRequest,
	"INVALID_MOVEMENT_TYPE": http.StatusBadRequest,

	// Unknown resources -> 404 Not Found
	"NOT_FOUND":            http.StatusNotFound,
	"CASH_EVENT_NOT_FOUND": http.StatusNotFound,
	"HANDOVER_NOT_FOUND":   http.StatusNotFound,
	"MOVEMENT_NOT_FOUND":   http.StatusNotFound,
	"DEPOSIT_NOT_FOUND":    http.StatusNotFound,

	// State conflicts -> 409 Conflict
	"ALREADY_EXISTS":              http.StatusConflict,
	"CONCURRENCY_CONFLICT":        http.StatusConflict,
	"CASH_EVENT_ALREADY_ACCEPTED": http.StatusConflict,
	"DUPLICATE_DEPOSIT":           http.StatusConflict,
	"ORDER_ALREADY_ASSIGNED":      http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"INVALID_STATE":              http.StatusUnprocessableEntity,
	"NO_COLLECTIBLE_CASH":        http.StatusUnprocessableEntity,
	"NO_CUSTODIAN":               http.StatusUnprocessableEntity,
	"REPLACEMENT_ORDER":          http.StatusUnprocessableEntity,
	"HANDOVER_EMPTY":             http.StatusUnprocessableEntity,
	"HANDOVER_CLOSED":            http.StatusUnprocessableEntity,
	"MOVEMENT_NOT_APPROVABLE":    http.StatusUnprocessableEntity,
	"DEPOSIT_TOLERANCE_EXCEEDED": http.StatusUnprocessableEntity,

	// Auth codes raised by the domain layer
	"UNAUTHORIZED": http.StatusUnauthorized,
	"FORBIDDEN":    http.StatusForbidden,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
