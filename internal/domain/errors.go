package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrExcessPrecision       = errors.New("amount has more than two decimal places")
	ErrInvalidTerm           = errors.New("term must be at least one month")
	ErrInvalidRate           = errors.New("rate must be between 0 and 100")
	ErrDuplicateReference    = errors.New("reference already posted for this account")
	ErrRequestNotPending     = errors.New("request is not in pending state")
	ErrInsufficientAvailable = errors.New("amount exceeds available balance")
	ErrInvalidRequest        = errors.New("invalid request")
)
