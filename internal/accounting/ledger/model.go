package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbook/tillbook/internal/accounting/accounts"
)

// Line is one posting retrieved with its entry context, in ledger order.
type Line struct {
	LineID      int64
	EntryID     int64
	EntryNumber string
	EntryDate   time.Time
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Row is a ledger line with its cumulative running balance.
type Row struct {
	Line
	RunningBalance decimal.Decimal
}

// AccountLedger is the statement for one account over a date range.
type AccountLedger struct {
	AccountID      int64
	AccountCode    string
	AccountName    string
	Category       accounts.Category
	OpeningBalance decimal.Decimal
	Entries        []Row
	ClosingBalance decimal.Decimal
}

// AccountBalance aggregates one account's movement over a range.
type AccountBalance struct {
	AccountID      int64
	Code           string
	Name           string
	Category       accounts.Category
	OpeningBalance decimal.Decimal
	TotalDebits    decimal.Decimal
	TotalCredits   decimal.Decimal
	Balance        decimal.Decimal
}

// AccountActivity ranks an account by posting count.
type AccountActivity struct {
	AccountID        int64
	Name             string
	TransactionCount int64
}

// DateRange bounds a ledger query; nil means unbounded on that side.
// Bounds are inclusive.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}
