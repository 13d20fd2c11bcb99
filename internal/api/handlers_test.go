package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/models/dtos"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	cases := map[string]int{
		constants.ErrCodeRateLimited:        http.StatusTooManyRequests,
		constants.ErrCodeDailyCapExceeded:   http.StatusTooManyRequests,
		constants.ErrCodeClanCapExceeded:    http.StatusTooManyRequests,
		constants.ErrCodeDuplicateClan:      http.StatusConflict,
		constants.ErrCodeDuplicate:          http.StatusConflict,
		constants.ErrCodeClanNotFound:       http.StatusNotFound,
		constants.ErrCodeNotFound:           http.StatusNotFound,
		constants.ErrCodeInvalidAmount:      http.StatusBadRequest,
		constants.ErrCodeInvalidClanName:    http.StatusBadRequest,
		constants.ErrCodeUserNotInClan:      http.StatusBadRequest,
		constants.ErrCodeForbidden:          http.StatusForbidden,
		constants.ErrCodePersistenceFailure: http.StatusServiceUnavailable,
		"SOMETHING_ELSE":                    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, mapErrorCodeToHTTPStatus(code), code)
	}
}

func TestValidationCode(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.Struct(dtos.AdjustPointsReq{UserID: 1, Amount: 10001})
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeInvalidAmount, validationCode(err))

	err = v.Struct(dtos.AdjustPointsReq{Amount: 5})
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeInvalidInput, validationCode(err), "missing user id is not an amount problem")

	err = v.Struct(dtos.SeasonalEventReq{Name: "Fest", StartDate: "10/14/2026", EndDate: "2026-10-20", Multiplier: 2})
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeInvalidInput, validationCode(err))
	assert.Contains(t, validationMessage(err), "StartDate")
}

func TestHandleLedgerError(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handleLedgerError(rr, req, time.Now(), engine.NewLimitError(constants.ErrCodeClanCapExceeded, 19990, 20000))

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	var resp dtos.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, constants.ErrCodeClanCapExceeded, resp.Code)
	assert.Equal(t, constants.GetErrorMessage(constants.ErrCodeClanCapExceeded), resp.Message)
	details := resp.Data.(map[string]any)
	assert.Equal(t, 19990.0, details["current"])
	assert.Equal(t, 20000.0, details["limit"])

	rr = httptest.NewRecorder()
	handleLedgerError(rr, req, time.Now(), errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
