package journals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tillbook/tillbook/internal/accounting/accounts"
	"github.com/tillbook/tillbook/internal/accounting/numbering"
)

// Subcategories treated as immediate payment sources. A purchase voucher that
// credits one of these settles in cash, so it numbers as a payment voucher.
var cashSubcategories = map[string]struct{}{
	"Cash on Hand": {},
	"Bank Account": {},
}

var (
	rePurchaseRecordRef = regexp.MustCompile(`Purchase Record #(\d+)`)
	reSalesRecordRef    = regexp.MustCompile(`SALES-(\d+)`)
)

// ClassifyVoucher infers the voucher series from the legacy text markers in
// the reference and description fields. Markers match case-sensitively, so
// ordinary lowercase prose ("daily sales close") never mints a voucher. The
// second return is false when the entry carries no voucher.
func ClassifyVoucher(reference, description string) (numbering.DocumentKind, bool) {
	text := reference + " " + description
	switch {
	case strings.Contains(text, "PURCHASE-VOUCHER") || strings.Contains(text, "PURCH"):
		return numbering.KindPurchaseVoucher, true
	case strings.Contains(text, "PAYMENT-VOUCHER"):
		return numbering.KindPaymentVoucher, true
	case strings.Contains(text, "SALES"):
		return numbering.KindSalesVoucher, true
	default:
		return "", false
	}
}

// AccountInfo carries the account attributes classification needs.
type AccountInfo struct {
	Category    accounts.Category
	Subcategory string
}

// PaidFromCashOrBank reports whether any credited line hits an asset account
// in a cash or bank subcategory.
func PaidFromCashOrBank(lines []LineInput, info map[int64]AccountInfo) bool {
	for _, line := range lines {
		if !line.Credit.IsPositive() {
			continue
		}
		acc, ok := info[line.AccountID]
		if !ok || acc.Category != accounts.CategoryAsset {
			continue
		}
		if _, ok := cashSubcategories[acc.Subcategory]; ok {
			return true
		}
	}
	return false
}

// ParsePurchaseRecordID extracts the id from a "Purchase Record #<id>" marker.
func ParsePurchaseRecordID(description string) (int64, bool) {
	return parseRef(rePurchaseRecordRef, description)
}

// ParseSalesRecordID extracts the id from a "SALES-<id>" reference.
func ParseSalesRecordID(reference string) (int64, bool) {
	return parseRef(reSalesRecordRef, reference)
}

func parseRef(re *regexp.Regexp, text string) (int64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
