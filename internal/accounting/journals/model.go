package journals

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is one balanced transaction with its lines.
type JournalEntry struct {
	ID                     int64
	EntryNumber            string
	VoucherNumber          *string
	EntryDate              time.Time
	Reference              string
	Description            string
	SourcePurchaseRecordID *int64
	CreatedBy              int64
	CreatedAt              time.Time
	UpdatedAt              time.Time
	Lines                  []JournalEntryLine
}

// JournalEntryLine stores the debit or credit posted to one account.
type JournalEntryLine struct {
	ID             int64
	JournalEntryID int64
	AccountID      int64
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Description    string
}

// PurchaseRecord is the slice of the purchase record row the poster touches.
type PurchaseRecord struct {
	ID                 int64
	RecordNumber       string
	VoucherCreated     bool
	VoucherAmount      decimal.Decimal
	JournalEntryNumber *string
}
