package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/jmukasa/savings-challenge-engine/internal/service"
	"github.com/shopspring/decimal"
)

type LedgerHandler struct {
	recorder *service.Recorder
	balances *service.BalanceService
}

func NewLedgerHandler(recorder *service.Recorder, balances *service.BalanceService) *LedgerHandler {
	return &LedgerHandler{recorder: recorder, balances: balances}
}

type depositRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date"` // YYYY-MM-DD; defaults to today
}

type entryResponse struct {
	ID              uuid.UUID             `json:"id"`
	AccountID       uuid.UUID             `json:"account_id"`
	Kind            domain.EntryKind      `json:"kind"`
	Amount          string                `json:"amount"`
	EntryDate       string                `json:"entry_date"`
	Reference       string                `json:"reference,omitempty"`
	CoveredWeeks    []domain.WeekCoverage `json:"covered_weeks,omitempty"`
	CarryForward    string                `json:"carry_forward"`
	CumulativeTotal string                `json:"cumulative_total"`
	NextWeek        int                   `json:"next_week"`
}

func toEntryResponse(e *domain.LedgerEntry) entryResponse {
	return entryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		Kind:            e.Kind,
		Amount:          e.Amount.StringFixed(2),
		EntryDate:       e.EntryDate.Format(time.DateOnly),
		Reference:       e.Reference,
		CoveredWeeks:    e.CoveredWeeks,
		CarryForward:    e.CarryForward.StringFixed(2),
		CumulativeTotal: e.CumulativeTotal.StringFixed(2),
		NextWeek:        e.NextWeek,
	}
}

func (h *LedgerHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathUUID(w, r, "accountID")
	if !ok {
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondAppError(w, ErrInvalidAmount, nil)
		return
	}
	date, ok := parseDateOrToday(w, req.Date)
	if !ok {
		return
	}

	entry, err := h.recorder.RecordDeposit(r.Context(), accountID, amount, date)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *LedgerHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathUUID(w, r, "accountID")
	if !ok {
		return
	}

	st, err := h.balances.Statement(r.Context(), accountID, time.Now().UTC())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, st)
}

func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathUUID(w, r, "accountID")
	if !ok {
		return
	}

	entries, err := h.balances.Entries(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	entries = paginate(entries, r.URL.Query().Get("offset"), r.URL.Query().Get("limit"))

	out := make([]entryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}
	RespondSuccess(w, http.StatusOK, out)
}

func paginate(entries []domain.LedgerEntry, offsetStr, limitStr string) []domain.LedgerEntry {
	offset := 0
	if n, err := strconv.Atoi(offsetStr); err == nil && n > 0 {
		offset = n
	}
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]

	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseDateOrToday(w http.ResponseWriter, s string) (time.Time, bool) {
	if s == "" {
		return time.Now().UTC(), true
	}
	date, err := time.Parse(time.DateOnly, s)
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return time.Time{}, false
	}
	return date, true
}
