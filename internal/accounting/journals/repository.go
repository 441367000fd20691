package journals

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tillbook/tillbook/internal/accounting/numbering"
	"github.com/tillbook/tillbook/internal/accounting/shared"
)

// Repository encapsulates DB operations for journal entries.
type Repository interface {
	List(ctx context.Context) ([]JournalEntry, error)
	Get(ctx context.Context, id int64) (JournalEntry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a posting transaction. It
// doubles as the numbering source so generated numbers and their inserts
// share one transaction.
type TxRepository interface {
	numbering.Source

	InsertJournalEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	InsertJournalLines(ctx context.Context, entryID int64, lines []LineInput) error
	GetJournalForUpdate(ctx context.Context, id int64) (JournalEntry, error)
	UpdateJournalEntry(ctx context.Context, entry JournalEntry) error
	ReplaceJournalLines(ctx context.Context, entryID int64, lines []LineInput) error
	DeleteJournalEntry(ctx context.Context, id int64) error

	GetAccountInfo(ctx context.Context, accountIDs []int64) (map[int64]AccountInfo, error)
	GetPurchaseRecordForUpdate(ctx context.Context, id int64) (PurchaseRecord, error)
	EntryExistsForPurchaseRecord(ctx context.Context, recordID int64) (bool, error)
	MarkPurchaseRecordVoucher(ctx context.Context, recordID int64, amount decimal.Decimal, entryNumber string) error
	MarkSalesRecordVoucher(ctx context.Context, recordID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, entry_number, voucher_number, entry_date, reference, description, source_purchase_record_id, COALESCE(created_by, 0), created_at, updated_at`

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.EntryNumber, &e.VoucherNumber, &e.EntryDate, &e.Reference, &e.Description, &e.SourcePurchaseRecordID, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repository) List(ctx context.Context) ([]JournalEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries ORDER BY entry_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (JournalEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrJournalNotFound
		}
		return JournalEntry{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, journal_entry_id, account_id, debit_amount, credit_amount, description
FROM journal_entry_lines WHERE journal_entry_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line JournalEntryLine
		if err := rows.Scan(&line.ID, &line.JournalEntryID, &line.AccountID, &line.Debit, &line.Credit, &line.Description); err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx, numbers: numbering.NewSQLSource(tx)}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx      pgx.Tx
	numbers *numbering.SQLSource
}

func (r *txRepository) MaxNumberLike(ctx context.Context, kind numbering.DocumentKind, pattern string) (string, error) {
	return r.numbers.MaxNumberLike(ctx, kind, pattern)
}

func (r *txRepository) InsertJournalEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (entry_number, voucher_number, entry_date, reference, description, source_purchase_record_id, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at, updated_at`,
		entry.EntryNumber, entry.VoucherNumber, entry.EntryDate, entry.Reference, entry.Description, entry.SourcePurchaseRecordID, nullInt(entry.CreatedBy))
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return JournalEntry{}, shared.ErrDuplicateNumber
		}
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertJournalLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_entry_lines (journal_entry_id, account_id, debit_amount, credit_amount, description)
VALUES ($1,$2,$3,$4,$5)`, entryID, line.AccountID, line.Debit, line.Credit, line.Description); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetJournalForUpdate(ctx context.Context, id int64) (JournalEntry, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return JournalEntry{}, shared.ErrJournalNotFound
	}
	return entry, err
}

func (r *txRepository) UpdateJournalEntry(ctx context.Context, entry JournalEntry) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET entry_date=$2, reference=$3, description=$4, updated_at=NOW() WHERE id=$1`,
		entry.ID, entry.EntryDate, entry.Reference, entry.Description)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrJournalNotFound
	}
	return nil
}

// ReplaceJournalLines swaps the full line set: delete all, insert the new set.
func (r *txRepository) ReplaceJournalLines(ctx context.Context, entryID int64, lines []LineInput) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE journal_entry_id=$1`, entryID); err != nil {
		return err
	}
	return r.InsertJournalLines(ctx, entryID, lines)
}

func (r *txRepository) DeleteJournalEntry(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrJournalNotFound
	}
	return nil
}

func (r *txRepository) GetAccountInfo(ctx context.Context, accountIDs []int64) (map[int64]AccountInfo, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, category, subcategory FROM accounts WHERE id = ANY($1)`, accountIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	info := make(map[int64]AccountInfo, len(accountIDs))
	for rows.Next() {
		var id int64
		var acc AccountInfo
		if err := rows.Scan(&id, &acc.Category, &acc.Subcategory); err != nil {
			return nil, err
		}
		info[id] = acc
	}
	return info, rows.Err()
}

func (r *txRepository) GetPurchaseRecordForUpdate(ctx context.Context, id int64) (PurchaseRecord, error) {
	var rec PurchaseRecord
	err := r.tx.QueryRow(ctx, `SELECT id, record_number, voucher_created, COALESCE(voucher_amount, 0), journal_entry_number
FROM purchase_records WHERE id=$1 FOR UPDATE`, id).
		Scan(&rec.ID, &rec.RecordNumber, &rec.VoucherCreated, &rec.VoucherAmount, &rec.JournalEntryNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseRecord{}, shared.ErrRecordNotFound
	}
	return rec, err
}

func (r *txRepository) EntryExistsForPurchaseRecord(ctx context.Context, recordID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE source_purchase_record_id=$1)`, recordID).Scan(&exists)
	return exists, err
}

func (r *txRepository) MarkPurchaseRecordVoucher(ctx context.Context, recordID int64, amount decimal.Decimal, entryNumber string) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE purchase_records SET voucher_created=TRUE, voucher_amount=$2, journal_entry_number=$3, updated_at=NOW() WHERE id=$1`,
		recordID, amount, entryNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrRecordNotFound
	}
	return nil
}

func (r *txRepository) MarkSalesRecordVoucher(ctx context.Context, recordID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE sales_records SET voucher_created=TRUE, updated_at=NOW() WHERE id=$1`, recordID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrRecordNotFound
	}
	return nil
}

func nullInt(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
