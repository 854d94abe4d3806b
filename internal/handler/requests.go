package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/jmukasa/savings-challenge-engine/internal/service"
	"github.com/shopspring/decimal"
)

type RequestHandler struct {
	approvals *service.ApprovalService
}

func NewRequestHandler(approvals *service.ApprovalService) *RequestHandler {
	return &RequestHandler{approvals: approvals}
}

type submitRequestBody struct {
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
	Reason string `json:"reason"`

	// Investment-only fields.
	RatePct    string `json:"rate_pct"`
	TermMonths int    `json:"term_months"`
}

type approveRequestBody struct {
	Date string `json:"date"` // YYYY-MM-DD; defaults to today
}

type rejectRequestBody struct {
	Notes string `json:"notes"`
}

type requestResponse struct {
	ID          uuid.UUID            `json:"id"`
	AccountID   uuid.UUID            `json:"account_id"`
	Kind        domain.RequestKind   `json:"kind"`
	Amount      string               `json:"amount"`
	Reason      string               `json:"reason,omitempty"`
	Status      domain.RequestStatus `json:"status"`
	RatePct     string               `json:"rate_pct,omitempty"`
	TermMonths  int                  `json:"term_months,omitempty"`
	AdminNotes  string               `json:"admin_notes,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	ProcessedAt *time.Time           `json:"processed_at,omitempty"`
}

func toRequestResponse(req *domain.ApprovalRequest) requestResponse {
	out := requestResponse{
		ID:          req.ID,
		AccountID:   req.AccountID,
		Kind:        req.Kind,
		Amount:      req.Amount.StringFixed(2),
		Reason:      req.Reason,
		Status:      req.Status,
		TermMonths:  req.TermMonths,
		AdminNotes:  req.AdminNotes,
		CreatedAt:   req.CreatedAt,
		ProcessedAt: req.ProcessedAt,
	}
	if req.Kind == domain.RequestKindInvestment {
		out.RatePct = req.RatePct.String()
	}
	return out
}

func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathUUID(w, r, "accountID")
	if !ok {
		return
	}

	var body submitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		RespondAppError(w, ErrInvalidAmount, nil)
		return
	}

	in := service.SubmitRequestInput{
		AccountID:  accountID,
		Kind:       domain.RequestKind(body.Kind),
		Amount:     amount,
		Reason:     body.Reason,
		TermMonths: body.TermMonths,
	}
	if body.RatePct != "" {
		ratePct, err := decimal.NewFromString(body.RatePct)
		if err != nil {
			RespondAppError(w, ErrInvalidRate, nil)
			return
		}
		in.RatePct = ratePct
	}

	req, err := h.approvals.Submit(r.Context(), in)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toRequestResponse(req))
}

// Approve resolves the request and, for withdrawals and contributions,
// returns the ledger entry it posted.
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathUUID(w, r, "requestID")
	if !ok {
		return
	}

	var body approveRequestBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
	}
	date, ok := parseDateOrToday(w, body.Date)
	if !ok {
		return
	}

	entry, err := h.approvals.Approve(r.Context(), requestID, date)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	if entry == nil {
		RespondSuccess(w, http.StatusOK, nil)
		return
	}
	RespondSuccess(w, http.StatusOK, toEntryResponse(entry))
}

func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathUUID(w, r, "requestID")
	if !ok {
		return
	}

	var body rejectRequestBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
	}

	if err := h.approvals.Reject(r.Context(), requestID, body.Notes); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}
