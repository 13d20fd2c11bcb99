package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"infinite-experiment/clanledger/internal/auth"
	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/models/dtos"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handlers struct {
	deps     *Dependencies
	validate *validator.Validate
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps:     deps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// decodeAndValidate binds the JSON body into dst and runs its validate tags.
// On failure it writes the response and returns false.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, initTime time.Time, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondCodedError(w, initTime, constants.ErrCodeInvalidInput, "Invalid JSON body", nil, http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		common.RespondCodedError(w, initTime, validationCode(err), validationMessage(err), nil, http.StatusBadRequest)
		return false
	}
	return true
}

// validationCode reports out-of-range numbers as INVALID_AMOUNT so clients see
// the same code the ledger itself would return.
func validationCode(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return constants.ErrCodeInvalidInput
	}
	for _, fe := range verrs {
		if strings.HasSuffix(fe.Field(), "ID") {
			return constants.ErrCodeInvalidInput
		}
		switch fe.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
			continue
		}
		return constants.ErrCodeInvalidInput
	}
	return constants.ErrCodeInvalidAmount
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return "Invalid request: " + strings.Join(parts, "; ")
}

// requireClaims returns the caller's claims, writing 401 when absent.
func requireClaims(w http.ResponseWriter, r *http.Request, initTime time.Time) auth.UserClaims {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
	}
	return claims
}

// pathInt64 parses a positive integer URL parameter, writing 400 on failure.
func pathInt64(w http.ResponseWriter, r *http.Request, initTime time.Time, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		common.RespondCodedError(w, initTime, constants.ErrCodeInvalidInput,
			fmt.Sprintf("%s must be a positive integer", name), nil, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

// queryLimit reads ?limit=, returning 0 when absent so services apply their default.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return n
}

// handleLedgerError maps ledger rejections to coded HTTP responses.
func handleLedgerError(w http.ResponseWriter, r *http.Request, initTime time.Time, err error) {
	var le *engine.LedgerError
	if !errors.As(err, &le) {
		logging.Error("Unhandled error", "path", r.URL.Path, "error", err)
		common.RespondError(w, initTime, nil, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	message := le.Message
	if message == "" {
		message = constants.GetErrorMessage(le.Code)
	}

	var details any
	if le.Current != 0 || le.Limit != 0 {
		details = dtos.ErrorDetails{Current: le.Current, Limit: le.Limit}
	}

	status := mapErrorCodeToHTTPStatus(le.Code)
	if status >= http.StatusInternalServerError {
		logging.Error("Ledger operation failed", "path", r.URL.Path, "code", le.Code, "error", le.Err)
	}
	common.RespondCodedError(w, initTime, le.Code, message, details, status)
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(errorCode string) int {
	switch errorCode {
	// 429 Too Many Requests - retry later
	case constants.ErrCodeRateLimited, constants.ErrCodeDailyCapExceeded, constants.ErrCodeClanCapExceeded:
		return http.StatusTooManyRequests

	// 409 Conflict
	case constants.ErrCodeDuplicate, constants.ErrCodeDuplicateClan:
		return http.StatusConflict

	// 404 Not Found - Resource doesn't exist
	case constants.ErrCodeNotFound, constants.ErrCodeClanNotFound:
		return http.StatusNotFound

	// 400 Bad Request - Client errors (user action required)
	case constants.ErrCodeInvalidAmount, constants.ErrCodeInvalidClanName,
		constants.ErrCodeInvalidInput, constants.ErrCodeUserNotInClan:
		return http.StatusBadRequest

	case constants.ErrCodeForbidden:
		return http.StatusForbidden

	// 503 Service Unavailable - Retryable store failure
	case constants.ErrCodePersistenceFailure:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func toAwardResponse(res *engine.AwardResult) dtos.AwardResponse {
	achievements := res.NewAchievements
	if achievements == nil {
		achievements = []string{}
	}
	return dtos.AwardResponse{
		UserID:          res.UserID,
		ClanName:        res.ClanName,
		Applied:         res.Amount,
		ClanPoints:      res.ClanPoints,
		UserPoints:      res.UserPoints,
		NewAchievements: achievements,
	}
}

func forbidden(w http.ResponseWriter, initTime time.Time) {
	common.RespondCodedError(w, initTime, constants.ErrCodeForbidden,
		constants.GetErrorMessage(constants.ErrCodeForbidden), nil, http.StatusForbidden)
}
