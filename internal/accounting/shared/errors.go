package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrInvalidLine indicates a line with both or neither side set.
	ErrInvalidLine = errors.New("accounting: line must be debit or credit, not both or neither")
	// ErrDuplicateVoucher indicates the source record already has a voucher.
	ErrDuplicateVoucher = errors.New("accounting: source record already has a voucher")
	// ErrDuplicateCode indicates the account code is taken.
	ErrDuplicateCode = errors.New("accounting: account code already exists")
	// ErrDuplicateNumber indicates a document number collision.
	ErrDuplicateNumber = errors.New("accounting: document number already exists")
	// ErrNumberExhausted indicates the numbering retry budget ran out.
	ErrNumberExhausted = errors.New("accounting: document numbering retries exhausted")
	// ErrAccountLocked indicates the account has ledger activity or is system-owned.
	ErrAccountLocked = errors.New("accounting: account is locked")
	// ErrSubcategoryLocked indicates the subcategory is referenced by accounts or postings.
	ErrSubcategoryLocked = errors.New("accounting: subcategory is locked")
	// ErrAccountNotFound indicates missing account.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrJournalNotFound indicates missing entry.
	ErrJournalNotFound = errors.New("accounting: journal entry not found")
	// ErrSubcategoryNotFound indicates missing subcategory.
	ErrSubcategoryNotFound = errors.New("accounting: subcategory not found")
	// ErrRecordNotFound indicates a missing source record.
	ErrRecordNotFound = errors.New("accounting: source record not found")
)

// UnbalancedError reports the totals of a rejected entry.
type UnbalancedError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("accounting: entry does not balance (debits %s, credits %s)", e.Debits, e.Credits)
}
