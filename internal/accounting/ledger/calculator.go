package ledger

import "github.com/shopspring/decimal"

// applyMovement folds one (debit, credit) pair into a balance on the
// account's normal side: debit-normal accounts grow with debits,
// credit-normal accounts with credits.
func applyMovement(balance decimal.Decimal, debitNormal bool, debit, credit decimal.Decimal) decimal.Decimal {
	if debitNormal {
		return balance.Add(debit).Sub(credit)
	}
	return balance.Add(credit).Sub(debit)
}

// runningBalances folds lines into per-row cumulative balances. The second
// return is the closing balance, which equals opening when lines is empty.
func runningBalances(opening decimal.Decimal, debitNormal bool, lines []Line) ([]Row, decimal.Decimal) {
	rows := make([]Row, 0, len(lines))
	balance := opening
	for _, line := range lines {
		balance = applyMovement(balance, debitNormal, line.Debit, line.Credit)
		rows = append(rows, Row{Line: line, RunningBalance: balance})
	}
	return rows, balance
}
