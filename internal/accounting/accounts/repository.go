package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillbook/tillbook/internal/accounting/shared"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	List(ctx context.Context) ([]Account, error)
	Get(ctx context.Context, id int64) (Account, error)
	ListSubcategories(ctx context.Context) ([]Subcategory, error)
	MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	GetAccountForUpdate(ctx context.Context, id int64) (Account, error)
	InsertAccount(ctx context.Context, a Account) (Account, error)
	UpdateAccount(ctx context.Context, a Account) error
	DeleteAccount(ctx context.Context, id int64) error
	HasLedgerActivity(ctx context.Context, accountID int64) (bool, error)
	MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error)

	GetSubcategoryForUpdate(ctx context.Context, id int64) (Subcategory, error)
	InsertSubcategory(ctx context.Context, s Subcategory) (Subcategory, error)
	UpdateSubcategory(ctx context.Context, s Subcategory) error
	DeleteSubcategory(ctx context.Context, id int64) error
	AccountsReferencingSubcategory(ctx context.Context, name string) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, name, code, category, subcategory, ledger_group, opening_balance, description, is_locked, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Code, &a.Category, &a.Subcategory, &a.LedgerGroup, &a.OpeningBalance, &a.Description, &a.IsLocked, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, err
}

func (r *repository) ListSubcategories(ctx context.Context) ([]Subcategory, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, category, parent_id, created_at, updated_at FROM subcategories ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subcategory
	for rows.Next() {
		var s Subcategory
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.ParentID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	return maxCodeWithPrefix(ctx, r.db, prefix)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx pgx.Tx
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func maxCodeWithPrefix(ctx context.Context, q querier, prefix string) (string, error) {
	var code string
	err := q.QueryRow(ctx, `SELECT code FROM accounts WHERE code LIKE $1 || '%' ORDER BY code::bigint DESC LIMIT 1`, prefix).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return code, err
}

func (r *txRepository) MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	return maxCodeWithPrefix(ctx, r.tx, prefix)
}

func (r *txRepository) GetAccountForUpdate(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, err
}

func (r *txRepository) InsertAccount(ctx context.Context, a Account) (Account, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO accounts (name, code, category, subcategory, ledger_group, opening_balance, description, is_locked)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at, updated_at`,
		a.Name, a.Code, a.Category, a.Subcategory, a.LedgerGroup, a.OpeningBalance, a.Description, a.IsLocked)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return a, nil
}

func (r *txRepository) UpdateAccount(ctx context.Context, a Account) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET name=$2, code=$3, category=$4, subcategory=$5, ledger_group=$6, opening_balance=$7, description=$8, updated_at=NOW() WHERE id=$1`,
		a.ID, a.Name, a.Code, a.Category, a.Subcategory, a.LedgerGroup, a.OpeningBalance, a.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateCode
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) DeleteAccount(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

// HasLedgerActivity is the single source of truth for account locking. It
// scans journal lines plus the three purchase-record account references.
func (r *txRepository) HasLedgerActivity(ctx context.Context, accountID int64) (bool, error) {
	var active bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entry_lines WHERE account_id=$1)
OR EXISTS (SELECT 1 FROM purchase_records WHERE purchase_account_id=$1 OR payment_account_id=$1 OR supplier_account_id=$1)`, accountID).Scan(&active)
	return active, err
}

func (r *txRepository) GetSubcategoryForUpdate(ctx context.Context, id int64) (Subcategory, error) {
	var s Subcategory
	err := r.tx.QueryRow(ctx, `SELECT id, name, category, parent_id, created_at, updated_at FROM subcategories WHERE id=$1 FOR UPDATE`, id).
		Scan(&s.ID, &s.Name, &s.Category, &s.ParentID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Subcategory{}, shared.ErrSubcategoryNotFound
	}
	return s, err
}

func (r *txRepository) InsertSubcategory(ctx context.Context, s Subcategory) (Subcategory, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO subcategories (name, category, parent_id) VALUES ($1,$2,$3) RETURNING id, created_at, updated_at`,
		s.Name, s.Category, s.ParentID).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Subcategory{}, err
	}
	return s, nil
}

func (r *txRepository) UpdateSubcategory(ctx context.Context, s Subcategory) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE subcategories SET name=$2, category=$3, parent_id=$4, updated_at=NOW() WHERE id=$1`,
		s.ID, s.Name, s.Category, s.ParentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrSubcategoryNotFound
	}
	return nil
}

func (r *txRepository) DeleteSubcategory(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM subcategories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrSubcategoryNotFound
	}
	return nil
}

// AccountsReferencingSubcategory counts accounts declaring the name as either
// their subcategory or ledger group. Locking follows the name, not an id,
// because subcategory names are denormalized onto the account row.
func (r *txRepository) AccountsReferencingSubcategory(ctx context.Context, name string) (int64, error) {
	var n int64
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE subcategory=$1 OR ledger_group=$1`, name).Scan(&n)
	return n, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
