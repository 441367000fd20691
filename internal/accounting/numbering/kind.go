package numbering

import (
	"fmt"
	"time"
)

// DocumentKind identifies a numbered financial document series.
type DocumentKind string

const (
	KindJournalEntry    DocumentKind = "journal_entry"
	KindPurchaseVoucher DocumentKind = "purchase_voucher"
	KindPaymentVoucher  DocumentKind = "payment_voucher"
	KindSalesVoucher    DocumentKind = "sales_voucher"
	KindSalesRecord     DocumentKind = "sales_record"
	KindPurchaseRecord  DocumentKind = "purchase_record"
	KindExpenseRecord   DocumentKind = "expense_record"
)

// Prefix returns the human-readable series prefix.
func (k DocumentKind) Prefix() string {
	switch k {
	case KindJournalEntry:
		return "JE"
	case KindPurchaseVoucher:
		return "PV"
	case KindPaymentVoucher:
		return "PAY"
	case KindSalesVoucher:
		return "SV"
	case KindSalesRecord:
		return "SR"
	case KindPurchaseRecord:
		return "PR"
	case KindExpenseRecord:
		return "ER"
	default:
		return string(k)
	}
}

// Valid reports whether k names a known series.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindJournalEntry, KindPurchaseVoucher, KindPaymentVoucher, KindSalesVoucher,
		KindSalesRecord, KindPurchaseRecord, KindExpenseRecord:
		return true
	}
	return false
}

// PeriodKey computes the numbering window for a document date. All series are
// fiscal-year scoped ("2025/26" for a 2025-dated document) except expense
// records, which restart per calendar year.
func (k DocumentKind) PeriodKey(date time.Time) string {
	year := date.Year()
	if k == KindExpenseRecord {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%d/%02d", year, (year+1)%100)
}

// Format renders the full document number for a period and sequence value.
func (k DocumentKind) Format(period string, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", k.Prefix(), period, seq)
}
