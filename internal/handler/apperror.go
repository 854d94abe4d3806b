package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount         = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrExcessPrecision       = &AppError{http.StatusBadRequest, "EXCESS_PRECISION", "Amount must have at most two decimal places"}
	ErrInvalidTerm           = &AppError{http.StatusBadRequest, "INVALID_TERM", "Term must be at least one month"}
	ErrInvalidRate           = &AppError{http.StatusBadRequest, "INVALID_RATE", "Rate must be between 0 and 100"}
	ErrRequestNotPending     = &AppError{http.StatusConflict, "REQUEST_NOT_PENDING", "Request has already been processed"}
	ErrInsufficientAvailable = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_AVAILABLE_BALANCE", "Amount exceeds available balance"}
)
