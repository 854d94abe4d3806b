package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmukasa/savings-challenge-engine/internal/service"
	"github.com/jmukasa/savings-challenge-engine/internal/storage/memory"
)

func setupLedgerTest(t *testing.T) (*http.ServeMux, uuid.UUID) {
	t.Helper()

	store := memory.NewStore()
	recorder := service.NewRecorder(store, nil)
	balances := service.NewBalanceService(store, store, store)
	h := NewLedgerHandler(recorder, balances)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/accounts/{accountID}/deposits", h.CreateDeposit)
	mux.HandleFunc("GET /api/v1/accounts/{accountID}/statement", h.GetStatement)
	mux.HandleFunc("GET /api/v1/accounts/{accountID}/entries", h.ListEntries)
	return mux, uuid.New()
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestLedgerHandler_CreateDeposit(t *testing.T) {
	mux, accountID := setupLedgerTest(t)
	path := fmt.Sprintf("/api/v1/accounts/%s/deposits", accountID)

	rec, resp := doJSON(t, mux, http.MethodPost, path, `{"amount":"25000","date":"2025-06-15"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "25000.00", data["amount"])
	assert.Equal(t, "2025-06-15", data["entry_date"])
	assert.Equal(t, float64(3), data["next_week"])
	assert.Equal(t, "5000.00", data["carry_forward"])
}

func TestLedgerHandler_CreateDepositErrors(t *testing.T) {
	mux, accountID := setupLedgerTest(t)
	path := fmt.Sprintf("/api/v1/accounts/%s/deposits", accountID)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "malformed body", path: path, body: `{`, wantCode: http.StatusBadRequest, wantErr: "INVALID_REQUEST"},
		{name: "unparseable amount", path: path, body: `{"amount":"abc"}`, wantCode: http.StatusBadRequest, wantErr: "INVALID_AMOUNT"},
		{name: "negative amount", path: path, body: `{"amount":"-100"}`, wantCode: http.StatusBadRequest, wantErr: "INVALID_AMOUNT"},
		{name: "excess precision", path: path, body: `{"amount":"100.555"}`, wantCode: http.StatusBadRequest, wantErr: "EXCESS_PRECISION"},
		{name: "bad date", path: path, body: `{"amount":"100","date":"15/06/2025"}`, wantCode: http.StatusBadRequest, wantErr: "INVALID_REQUEST"},
		{
			name:     "bad account id",
			path:     "/api/v1/accounts/not-a-uuid/deposits",
			body:     `{"amount":"100"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doJSON(t, mux, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestLedgerHandler_GetStatement(t *testing.T) {
	mux, accountID := setupLedgerTest(t)

	_, resp := doJSON(t, mux, http.MethodPost,
		fmt.Sprintf("/api/v1/accounts/%s/deposits", accountID),
		fmt.Sprintf(`{"amount":"35000","date":"%s"}`, time.Now().UTC().Format(time.DateOnly)))
	require.True(t, resp.Success)

	rec, resp := doJSON(t, mux, http.MethodGet,
		fmt.Sprintf("/api/v1/accounts/%s/statement", accountID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.NotNil(t, data["progress"])
}

func TestLedgerHandler_ListEntries(t *testing.T) {
	mux, accountID := setupLedgerTest(t)
	deposits := fmt.Sprintf("/api/v1/accounts/%s/deposits", accountID)

	for range 3 {
		_, resp := doJSON(t, mux, http.MethodPost, deposits, `{"amount":"10000","date":"2025-06-15"}`)
		require.True(t, resp.Success)
	}

	rec, resp := doJSON(t, mux, http.MethodGet,
		fmt.Sprintf("/api/v1/accounts/%s/entries", accountID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	entries, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, entries, 3)

	_, resp = doJSON(t, mux, http.MethodGet,
		fmt.Sprintf("/api/v1/accounts/%s/entries?offset=1&limit=1", accountID), "")
	require.True(t, resp.Success)
	entries, ok = resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, entries, 1)
}
