package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tillbook/tillbook/internal/accounting/accounts"
	"github.com/tillbook/tillbook/internal/accounting/ledger"
)

// ProfitAndLossAccount represents an income or expense account summary.
type ProfitAndLossAccount struct {
	Code   string
	Name   string
	Amount decimal.Decimal
}

// ProfitAndLossSection groups accounts by nature.
type ProfitAndLossSection struct {
	Label    string
	Accounts []ProfitAndLossAccount
	Total    decimal.Decimal
}

// ProfitAndLoss contains the structured output for the report.
type ProfitAndLoss struct {
	Income    ProfitAndLossSection
	Expense   ProfitAndLossSection
	NetIncome decimal.Decimal
}

// BuildProfitAndLoss aggregates income and expense balances. Balances arrive
// already folded onto each account's normal side, so income amounts are
// positive when credits exceed debits and expense amounts when debits do.
func BuildProfitAndLoss(balances []ledger.AccountBalance) ProfitAndLoss {
	income := ProfitAndLossSection{Label: "Income"}
	expense := ProfitAndLossSection{Label: "Expense"}

	for _, bal := range balances {
		movement := bal.Balance.Sub(bal.OpeningBalance)
		row := ProfitAndLossAccount{Code: bal.Code, Name: bal.Name, Amount: movement}
		switch bal.Category {
		case accounts.CategoryIncome:
			income.Accounts = append(income.Accounts, row)
			income.Total = income.Total.Add(row.Amount)
		case accounts.CategoryExpense:
			expense.Accounts = append(expense.Accounts, row)
			expense.Total = expense.Total.Add(row.Amount)
		}
	}

	sort.Slice(income.Accounts, func(i, j int) bool { return income.Accounts[i].Code < income.Accounts[j].Code })
	sort.Slice(expense.Accounts, func(i, j int) bool { return expense.Accounts[i].Code < expense.Accounts[j].Code })

	return ProfitAndLoss{
		Income:    income,
		Expense:   expense,
		NetIncome: income.Total.Sub(expense.Total),
	}
}
