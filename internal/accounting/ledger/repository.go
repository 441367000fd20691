package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tillbook/tillbook/internal/accounting/accounts"
	"github.com/tillbook/tillbook/internal/accounting/shared"
)

// Repository reads ledger data. The calculator never writes.
type Repository interface {
	GetAccount(ctx context.Context, id int64) (accounts.Account, error)
	ListAccounts(ctx context.Context) ([]accounts.Account, error)
	// SumBefore totals debits and credits strictly before the given date.
	SumBefore(ctx context.Context, accountID int64, before DateRange) (debits, credits decimal.Decimal, err error)
	// LinesInRange returns postings within the inclusive range in stable
	// ledger order: entry date, then entry id, then line id.
	LinesInRange(ctx context.Context, accountID int64, rng DateRange) ([]Line, error)
	// Totals aggregates debits and credits within the inclusive range.
	Totals(ctx context.Context, accountID int64, rng DateRange) (debits, credits decimal.Decimal, err error)
	TopByActivity(ctx context.Context, limit int) ([]AccountActivity, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed read repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetAccount(ctx context.Context, id int64) (accounts.Account, error) {
	var a accounts.Account
	err := r.db.QueryRow(ctx, `SELECT id, name, code, category, subcategory, ledger_group, opening_balance, description, is_locked, created_at, updated_at
FROM accounts WHERE id=$1`, id).
		Scan(&a.ID, &a.Name, &a.Code, &a.Category, &a.Subcategory, &a.LedgerGroup, &a.OpeningBalance, &a.Description, &a.IsLocked, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return a, err
}

func (r *repository) ListAccounts(ctx context.Context) ([]accounts.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, code, category, subcategory, ledger_group, opening_balance, description, is_locked, created_at, updated_at
FROM accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []accounts.Account
	for rows.Next() {
		var a accounts.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Code, &a.Category, &a.Subcategory, &a.LedgerGroup, &a.OpeningBalance, &a.Description, &a.IsLocked, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) SumBefore(ctx context.Context, accountID int64, rng DateRange) (decimal.Decimal, decimal.Decimal, error) {
	var debits, credits decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
FROM journal_entry_lines l JOIN journal_entries e ON e.id = l.journal_entry_id
WHERE l.account_id = $1 AND e.entry_date < $2`, accountID, rng.Start).Scan(&debits, &credits)
	return debits, credits, err
}

func (r *repository) LinesInRange(ctx context.Context, accountID int64, rng DateRange) ([]Line, error) {
	query := `SELECT l.id, e.id, e.entry_number, e.entry_date, l.description, l.debit_amount, l.credit_amount
FROM journal_entry_lines l JOIN journal_entries e ON e.id = l.journal_entry_id
WHERE l.account_id = $1
  AND ($2::date IS NULL OR e.entry_date >= $2)
  AND ($3::date IS NULL OR e.entry_date <= $3)
ORDER BY e.entry_date ASC, e.id ASC, l.id ASC`
	rows, err := r.db.Query(ctx, query, accountID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.LineID, &line.EntryID, &line.EntryNumber, &line.EntryDate, &line.Description, &line.Debit, &line.Credit); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (r *repository) Totals(ctx context.Context, accountID int64, rng DateRange) (decimal.Decimal, decimal.Decimal, error) {
	var debits, credits decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
FROM journal_entry_lines l JOIN journal_entries e ON e.id = l.journal_entry_id
WHERE l.account_id = $1
  AND ($2::date IS NULL OR e.entry_date >= $2)
  AND ($3::date IS NULL OR e.entry_date <= $3)`, accountID, rng.Start, rng.End).Scan(&debits, &credits)
	return debits, credits, err
}

func (r *repository) TopByActivity(ctx context.Context, limit int) ([]AccountActivity, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.name, COUNT(l.id) AS tx_count
FROM accounts a JOIN journal_entry_lines l ON l.account_id = a.id
GROUP BY a.id, a.name
ORDER BY tx_count DESC, a.name ASC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountActivity
	for rows.Next() {
		var act AccountActivity
		if err := rows.Scan(&act.AccountID, &act.Name, &act.TransactionCount); err != nil {
			return nil, err
		}
		out = append(out, act)
	}
	return out, rows.Err()
}
