package shared

import (
	"errors"
	"net/http"

	"github.com/tillbook/tillbook/internal/platform/httpx"
)

// RespondError maps core accounting errors onto RFC7807 problem responses.
func RespondError(w http.ResponseWriter, err error) {
	var unbalanced *UnbalancedError
	switch {
	case errors.As(err, &unbalanced):
		httpx.Problem(w, http.StatusBadRequest, "Unbalanced Entry", unbalanced.Error())
	case errors.Is(err, ErrTooFewLines), errors.Is(err, ErrInvalidLine):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Entry", err.Error())
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrJournalNotFound),
		errors.Is(err, ErrSubcategoryNotFound), errors.Is(err, ErrRecordNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrDuplicateVoucher), errors.Is(err, ErrDuplicateNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrAccountLocked), errors.Is(err, ErrSubcategoryLocked):
		httpx.Problem(w, http.StatusConflict, "Locked", err.Error())
	case errors.Is(err, ErrNumberExhausted):
		httpx.Problem(w, http.StatusServiceUnavailable, "Busy", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
