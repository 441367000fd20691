package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tillbook/tillbook/internal/accounting/ledger"
)

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code    string
	Name    string
	Opening decimal.Decimal
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Closing decimal.Decimal
}

// TrialBalanceGroup aggregates accounts sharing a category code block.
type TrialBalanceGroup struct {
	Key      string
	Accounts []TrialBalanceAccount
	Opening  decimal.Decimal
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Closing  decimal.Decimal
}

// TrialBalance is the final structure rendered by callers.
type TrialBalance struct {
	Groups       []TrialBalanceGroup
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
	TotalOpening decimal.Decimal
	TotalClosing decimal.Decimal
}

// groupKey groups by the leading code digit, which encodes the category.
func groupKey(code string) string {
	if len(code) > 0 {
		return code[:1]
	}
	return code
}

// BuildTrialBalance converts account balances into grouped trial balance data.
func BuildTrialBalance(balances []ledger.AccountBalance) TrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	for _, bal := range balances {
		key := groupKey(bal.Code)
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key}
			groups[key] = grp
			keys = append(keys, key)
		}
		row := TrialBalanceAccount{
			Code:    bal.Code,
			Name:    bal.Name,
			Opening: bal.OpeningBalance,
			Debit:   bal.TotalDebits,
			Credit:  bal.TotalCredits,
			Closing: bal.Balance,
		}
		grp.Accounts = append(grp.Accounts, row)
		grp.Opening = grp.Opening.Add(row.Opening)
		grp.Debit = grp.Debit.Add(row.Debit)
		grp.Credit = grp.Credit.Add(row.Credit)
		grp.Closing = grp.Closing.Add(row.Closing)
	}

	sort.Strings(keys)
	result := TrialBalance{}
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool {
			return grp.Accounts[i].Code < grp.Accounts[j].Code
		})
		result.Groups = append(result.Groups, *grp)
		result.TotalOpening = result.TotalOpening.Add(grp.Opening)
		result.TotalDebit = result.TotalDebit.Add(grp.Debit)
		result.TotalCredit = result.TotalCredit.Add(grp.Credit)
		result.TotalClosing = result.TotalClosing.Add(grp.Closing)
	}
	return result
}
