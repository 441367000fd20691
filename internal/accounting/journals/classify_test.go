package journals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tillbook/tillbook/internal/accounting/accounts"
	"github.com/tillbook/tillbook/internal/accounting/numbering"
)

func TestClassifyVoucherMarkers(t *testing.T) {
	cases := []struct {
		name        string
		reference   string
		description string
		want        numbering.DocumentKind
		ok          bool
	}{
		{"purchase voucher marker", "PURCHASE-VOUCHER", "", numbering.KindPurchaseVoucher, true},
		{"purch shorthand", "", "PURCH depot order", numbering.KindPurchaseVoucher, true},
		{"payment voucher marker", "PAYMENT-VOUCHER", "", numbering.KindPaymentVoucher, true},
		{"sales marker", "SALES-17", "", numbering.KindSalesVoucher, true},
		{"sales in description", "", "End of day SALES summary", numbering.KindSalesVoucher, true},
		{"no marker", "REF-1", "opening balances", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := ClassifyVoucher(tc.reference, tc.description)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, tc.want, kind)
			}
		})
	}
}

// A text containing both purchase and sales markers resolves in marker order:
// purchase wins.
func TestClassifyVoucherMarkerPrecedence(t *testing.T) {
	kind, ok := ClassifyVoucher("PURCHASE-VOUCHER", "SALES related purchase")
	require.True(t, ok)
	require.Equal(t, numbering.KindPurchaseVoucher, kind)
}

// Lowercase prose must not consume a voucher series; the markers are literal.
func TestClassifyVoucherIgnoresLowercaseProse(t *testing.T) {
	cases := []struct {
		reference   string
		description string
	}{
		{"", "Daily sales close"},
		{"", "purchased cleaning supplies"},
		{"staff purchases reimbursed", ""},
		{"purchase-voucher", ""},
		{"payment-voucher", ""},
	}
	for _, tc := range cases {
		_, ok := ClassifyVoucher(tc.reference, tc.description)
		require.False(t, ok, "reference=%q description=%q", tc.reference, tc.description)
	}
}

func TestPaidFromCashOrBank(t *testing.T) {
	lines := []LineInput{
		{AccountID: 1, Debit: decimal.NewFromInt(100)},
		{AccountID: 2, Credit: decimal.NewFromInt(100)},
	}

	info := map[int64]AccountInfo{
		2: {Category: accounts.CategoryAsset, Subcategory: "Cash on Hand"},
	}
	require.True(t, PaidFromCashOrBank(lines, info))

	info[2] = AccountInfo{Category: accounts.CategoryAsset, Subcategory: "Bank Account"}
	require.True(t, PaidFromCashOrBank(lines, info))

	// A credited liability account is on credit terms, not a cash settlement.
	info[2] = AccountInfo{Category: accounts.CategoryLiability, Subcategory: "Cash on Hand"}
	require.False(t, PaidFromCashOrBank(lines, info))

	info[2] = AccountInfo{Category: accounts.CategoryAsset, Subcategory: "Inventory"}
	require.False(t, PaidFromCashOrBank(lines, info))
}

func TestPaidFromCashOrBankIgnoresDebitedCashAccounts(t *testing.T) {
	lines := []LineInput{
		{AccountID: 1, Debit: decimal.NewFromInt(50)},
		{AccountID: 2, Credit: decimal.NewFromInt(50)},
	}
	info := map[int64]AccountInfo{
		1: {Category: accounts.CategoryAsset, Subcategory: "Cash on Hand"},
		2: {Category: accounts.CategoryLiability, Subcategory: "Accounts Payable"},
	}
	require.False(t, PaidFromCashOrBank(lines, info))
}

func TestParsePurchaseRecordID(t *testing.T) {
	id, ok := ParsePurchaseRecordID("Voucher for Purchase Record #42 (dry goods)")
	require.True(t, ok)
	require.Equal(t, int64(42), id)

	_, ok = ParsePurchaseRecordID("no marker here")
	require.False(t, ok)
}

func TestParseSalesRecordID(t *testing.T) {
	id, ok := ParseSalesRecordID("SALES-318")
	require.True(t, ok)
	require.Equal(t, int64(318), id)

	_, ok = ParseSalesRecordID("SALES-")
	require.False(t, ok)
}
