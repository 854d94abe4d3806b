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

type InvestmentHandler struct {
	investments *service.InvestmentService
}

func NewInvestmentHandler(investments *service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investments: investments}
}

type openInvestmentRequest struct {
	Principal  string `json:"principal"`
	RatePct    string `json:"rate_pct"`
	TermMonths int    `json:"term_months"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD; defaults to today
}

type investmentResponse struct {
	ID               uuid.UUID               `json:"id"`
	AccountID        uuid.UUID               `json:"account_id"`
	Principal        string                  `json:"principal"`
	RatePct          string                  `json:"rate_pct"`
	TermMonths       int                     `json:"term_months"`
	StartDate        string                  `json:"start_date"`
	MaturityDate     string                  `json:"maturity_date"`
	Status           domain.InvestmentStatus `json:"status"`
	InterestPosted   bool                    `json:"interest_posted"`
	InterestExpected string                  `json:"interest_expected"`
	InterestAccrued  string                  `json:"interest_accrued"`
	DaysToMaturity   int                     `json:"days_to_maturity"`
	ProgressPercent  string                  `json:"progress_percent"`
}

func toInvestmentResponse(inv *domain.Investment, asOf time.Time) investmentResponse {
	return investmentResponse{
		ID:               inv.ID,
		AccountID:        inv.AccountID,
		Principal:        inv.Principal.StringFixed(2),
		RatePct:          inv.RatePct.String(),
		TermMonths:       inv.TermMonths,
		StartDate:        inv.StartDate.Format(time.DateOnly),
		MaturityDate:     inv.MaturityDate().Format(time.DateOnly),
		Status:           inv.Status,
		InterestPosted:   inv.InterestPosted,
		InterestExpected: inv.TotalInterestExpected().StringFixed(2),
		InterestAccrued:  inv.InterestAccrued(asOf).StringFixed(2),
		DaysToMaturity:   inv.DaysUntilMaturity(asOf),
		ProgressPercent:  inv.ProgressPercent(asOf).StringFixed(1),
	}
}

func (h *InvestmentHandler) Open(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathUUID(w, r, "accountID")
	if !ok {
		return
	}

	var req openInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		RespondAppError(w, ErrInvalidAmount, nil)
		return
	}
	ratePct, err := decimal.NewFromString(req.RatePct)
	if err != nil {
		RespondAppError(w, ErrInvalidRate, nil)
		return
	}
	startDate, ok := parseDateOrToday(w, req.StartDate)
	if !ok {
		return
	}

	inv, err := h.investments.Open(r.Context(), accountID, principal, ratePct, req.TermMonths, startDate)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toInvestmentResponse(inv, time.Now().UTC()))
}

func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathUUID(w, r, "accountID")
	if !ok {
		return
	}

	invs, err := h.investments.ListByAccount(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	now := time.Now().UTC()
	out := make([]investmentResponse, 0, len(invs))
	for i := range invs {
		out = append(out, toInvestmentResponse(&invs[i], now))
	}
	RespondSuccess(w, http.StatusOK, out)
}

func (h *InvestmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "investmentID")
	if !ok {
		return
	}

	inv, err := h.investments.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toInvestmentResponse(inv, time.Now().UTC()))
}

// CheckMaturity triggers a maturity check for one investment. Responds with
// the posted interest entry, or an empty body when the check was a no-op.
func (h *InvestmentHandler) CheckMaturity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "investmentID")
	if !ok {
		return
	}

	entry, err := h.investments.CheckMaturity(r.Context(), id, time.Now().UTC())
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
