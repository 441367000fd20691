package numbering

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by pgxpool.Pool and pgx.Tx alike, so a source can run
// inside the caller's transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// series maps each kind to the table and column its numbers live in.
var series = map[DocumentKind]struct{ table, column string }{
	KindJournalEntry:    {"journal_entries", "entry_number"},
	KindPurchaseVoucher: {"journal_entries", "voucher_number"},
	KindPaymentVoucher:  {"journal_entries", "voucher_number"},
	KindSalesVoucher:    {"journal_entries", "voucher_number"},
	KindSalesRecord:     {"sales_records", "record_number"},
	KindPurchaseRecord:  {"purchase_records", "record_number"},
	KindExpenseRecord:   {"expense_records", "record_number"},
}

// SQLSource reads stored maxima straight from the owning tables.
type SQLSource struct {
	q Querier
}

// NewSQLSource constructs a source over a pool or transaction.
func NewSQLSource(q Querier) *SQLSource {
	return &SQLSource{q: q}
}

// MaxNumberLike returns the largest stored number matching pattern, compared
// as a string. Correct while the 4-digit zero-padded suffix holds.
func (s *SQLSource) MaxNumberLike(ctx context.Context, kind DocumentKind, pattern string) (string, error) {
	loc, ok := series[kind]
	if !ok {
		return "", fmt.Errorf("numbering: unknown document kind %q", kind)
	}
	query := fmt.Sprintf(`SELECT %[1]s FROM %[2]s WHERE %[1]s LIKE $1 ORDER BY %[1]s DESC LIMIT 1`, loc.column, loc.table)
	var number string
	err := s.q.QueryRow(ctx, query, pattern).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return number, err
}
