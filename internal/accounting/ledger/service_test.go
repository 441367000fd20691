package ledger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tillbook/tillbook/internal/accounting/accounts"
	"github.com/tillbook/tillbook/internal/accounting/shared"
)

type fakeLedgerRepo struct {
	accounts map[int64]accounts.Account
	lines    map[int64][]Line
	// totalsErr injects per-account aggregation failures.
	totalsErr map[int64]error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		accounts:  make(map[int64]accounts.Account),
		lines:     make(map[int64][]Line),
		totalsErr: make(map[int64]error),
	}
}

func (f *fakeLedgerRepo) GetAccount(ctx context.Context, id int64) (accounts.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeLedgerRepo) ListAccounts(ctx context.Context) ([]accounts.Account, error) {
	out := make([]accounts.Account, 0, len(f.accounts))
	for id := int64(1); id <= int64(len(f.accounts)); id++ {
		if a, ok := f.accounts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) SumBefore(ctx context.Context, accountID int64, rng DateRange) (decimal.Decimal, decimal.Decimal, error) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range f.lines[accountID] {
		if rng.Start != nil && line.EntryDate.Before(*rng.Start) {
			debits = debits.Add(line.Debit)
			credits = credits.Add(line.Credit)
		}
	}
	return debits, credits, nil
}

func (f *fakeLedgerRepo) LinesInRange(ctx context.Context, accountID int64, rng DateRange) ([]Line, error) {
	var out []Line
	for _, line := range f.lines[accountID] {
		if rng.Start != nil && line.EntryDate.Before(*rng.Start) {
			continue
		}
		if rng.End != nil && line.EntryDate.After(*rng.End) {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

func (f *fakeLedgerRepo) Totals(ctx context.Context, accountID int64, rng DateRange) (decimal.Decimal, decimal.Decimal, error) {
	if err := f.totalsErr[accountID]; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	debits, credits := decimal.Zero, decimal.Zero
	lines, _ := f.LinesInRange(ctx, accountID, rng)
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits, credits, nil
}

func (f *fakeLedgerRepo) TopByActivity(ctx context.Context, limit int) ([]AccountActivity, error) {
	out := []AccountActivity{{AccountID: 1, Name: "Main Cash", TransactionCount: 12}}
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func day(y, m, dd int) time.Time {
	return time.Date(y, time.Month(m), dd, 0, 0, 0, 0, time.UTC)
}

func TestAccountLedgerRunningBalances(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.accounts[1] = accounts.Account{ID: 1, Code: "1001", Name: "Main Cash", Category: accounts.CategoryAsset, OpeningBalance: decimal.NewFromInt(1000)}
	repo.lines[1] = []Line{
		{LineID: 1, EntryDate: day(2025, 8, 1), Debit: decimal.NewFromInt(100)},
		{LineID: 2, EntryDate: day(2025, 8, 2), Debit: decimal.NewFromInt(70)},
	}
	svc := NewService(repo, slog.Default())

	ledger, err := svc.AccountLedger(context.Background(), 1, DateRange{})
	require.NoError(t, err)
	require.True(t, ledger.OpeningBalance.Equal(decimal.NewFromInt(1000)))
	require.Len(t, ledger.Entries, 2)
	require.True(t, ledger.Entries[0].RunningBalance.Equal(decimal.NewFromInt(1100)))
	require.True(t, ledger.Entries[1].RunningBalance.Equal(decimal.NewFromInt(1170)))
	require.True(t, ledger.ClosingBalance.Equal(decimal.NewFromInt(1170)))
}

func TestAccountLedgerAdjustsOpeningForPriorActivity(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.accounts[1] = accounts.Account{ID: 1, Code: "1001", Name: "Main Cash", Category: accounts.CategoryAsset, OpeningBalance: decimal.NewFromInt(1000)}
	repo.lines[1] = []Line{
		{LineID: 1, EntryDate: day(2025, 7, 15), Debit: decimal.NewFromInt(500)},
		{LineID: 2, EntryDate: day(2025, 8, 3), Credit: decimal.NewFromInt(200)},
	}
	svc := NewService(repo, slog.Default())

	start := day(2025, 8, 1)
	ledger, err := svc.AccountLedger(context.Background(), 1, DateRange{Start: &start})
	require.NoError(t, err)
	require.True(t, ledger.OpeningBalance.Equal(decimal.NewFromInt(1500)))
	require.Len(t, ledger.Entries, 1)
	require.True(t, ledger.ClosingBalance.Equal(decimal.NewFromInt(1300)))
}

func TestAccountLedgerUnknownAccount(t *testing.T) {
	svc := NewService(newFakeLedgerRepo(), slog.Default())
	_, err := svc.AccountLedger(context.Background(), 99, DateRange{})
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestAllAccountBalances(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.accounts[1] = accounts.Account{ID: 1, Code: "1001", Name: "Main Cash", Category: accounts.CategoryAsset, OpeningBalance: decimal.NewFromInt(100)}
	repo.accounts[2] = accounts.Account{ID: 2, Code: "4001", Name: "Food Sales", Category: accounts.CategoryIncome}
	repo.lines[1] = []Line{{LineID: 1, EntryDate: day(2025, 8, 1), Debit: decimal.NewFromInt(40)}}
	repo.lines[2] = []Line{{LineID: 2, EntryDate: day(2025, 8, 1), Credit: decimal.NewFromInt(40)}}
	svc := NewService(repo, slog.Default())

	balances, err := svc.AllAccountBalances(context.Background(), DateRange{})
	require.NoError(t, err)
	require.Len(t, balances, 2)
	require.True(t, balances[0].Balance.Equal(decimal.NewFromInt(140)))
	require.True(t, balances[1].Balance.Equal(decimal.NewFromInt(40)))
}

// One broken account degrades to its opening balance instead of failing the
// whole report.
func TestAllAccountBalancesFailSoft(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.accounts[1] = accounts.Account{ID: 1, Code: "1001", Name: "Main Cash", Category: accounts.CategoryAsset, OpeningBalance: decimal.NewFromInt(100)}
	repo.accounts[2] = accounts.Account{ID: 2, Code: "1002", Name: "Operating Bank", Category: accounts.CategoryAsset, OpeningBalance: decimal.NewFromInt(900)}
	repo.lines[1] = []Line{{LineID: 1, EntryDate: day(2025, 8, 1), Debit: decimal.NewFromInt(40)}}
	repo.totalsErr[2] = errors.New("aggregate timeout")
	svc := NewService(repo, slog.Default())

	balances, err := svc.AllAccountBalances(context.Background(), DateRange{})
	require.NoError(t, err)
	require.Len(t, balances, 2)
	require.True(t, balances[0].Balance.Equal(decimal.NewFromInt(140)))
	require.True(t, balances[1].Balance.Equal(decimal.NewFromInt(900)))
	require.True(t, balances[1].TotalDebits.IsZero())
}

func TestTopAccountsByActivityDefaultsLimit(t *testing.T) {
	svc := NewService(newFakeLedgerRepo(), slog.Default())
	top, err := svc.TopAccountsByActivity(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
}
