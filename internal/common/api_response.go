package common

import (
	"encoding/json"
	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/models/dtos"
	"net/http"
	"time"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	msg := message
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      msg,
		ResponseTime: GetResponseTime(initTime),
	}

	writeJSON(w, code, response)
}

// RespondCodedError sends an error response that carries a machine-readable code
// plus whatever context the caller needs to render it (current value, limit).
func RespondCodedError(w http.ResponseWriter, initTime time.Time, code string, message string, details any, statusCode int) {
	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Code:         code,
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         details,
	}

	writeJSON(w, statusCode, response)
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
	}
}
