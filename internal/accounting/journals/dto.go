package journals

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbook/tillbook/internal/accounting/numbering"
	"github.com/tillbook/tillbook/internal/accounting/shared"
)

// balanceTolerance is the absolute slack allowed between debit and credit
// totals before an entry is rejected.
var balanceTolerance = decimal.New(1, -2)

// LineInput describes one posting line.
type LineInput struct {
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// PostingInput groups the fields required to post a journal entry.
type PostingInput struct {
	EntryDate   time.Time
	Reference   string
	Description string
	Lines       []LineInput
	// SourcePurchaseRecordID links the entry to the purchase record it
	// vouchers. When nil the poster still tries to parse a
	// "Purchase Record #<id>" marker out of Description.
	SourcePurchaseRecordID *int64
	// VoucherKind, when set, names the voucher series explicitly and takes
	// precedence over the reference/description text markers.
	VoucherKind *numbering.DocumentKind
	CreatedBy   int64
}

// UpdateInput replaces entry fields and the full line set.
type UpdateInput struct {
	EntryDate   time.Time
	Reference   string
	Description string
	Lines       []LineInput
	ActorID     int64
}

// Totals sums the debit and credit sides.
func Totals(lines []LineInput) (debits, credits decimal.Decimal) {
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits, credits
}

// validateLines runs the shared posting checks in order: line count and
// account presence, then the balance invariant, then per-line exclusivity.
func validateLines(lines []LineInput) error {
	if len(lines) < 2 {
		return shared.ErrTooFewLines
	}
	for idx, line := range lines {
		if line.AccountID == 0 {
			return fmt.Errorf("journals: line %d missing account: %w", idx, shared.ErrInvalidLine)
		}
	}
	debits, credits := Totals(lines)
	if debits.Sub(credits).Abs().GreaterThan(balanceTolerance) {
		return &shared.UnbalancedError{Debits: debits, Credits: credits}
	}
	for idx, line := range lines {
		debitSet := line.Debit.IsPositive() && line.Credit.IsZero()
		creditSet := line.Credit.IsPositive() && line.Debit.IsZero()
		if !debitSet && !creditSet {
			return fmt.Errorf("journals: line %d: %w", idx, shared.ErrInvalidLine)
		}
	}
	return nil
}

// Validate ensures posting input meets the core invariants.
func (in PostingInput) Validate() error {
	if in.EntryDate.IsZero() {
		return fmt.Errorf("journals: entry date required")
	}
	if in.VoucherKind != nil && !in.VoucherKind.Valid() {
		return fmt.Errorf("journals: unknown voucher kind %q", *in.VoucherKind)
	}
	return validateLines(in.Lines)
}

// Validate ensures update input meets the same line invariants as posting.
func (in UpdateInput) Validate() error {
	if in.EntryDate.IsZero() {
		return fmt.Errorf("journals: entry date required")
	}
	return validateLines(in.Lines)
}
