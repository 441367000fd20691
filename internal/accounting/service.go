package accounting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillbook/tillbook/internal/accounting/numbering"
)

// Service is the facade the sales, purchase, and expense record modules use
// to stamp their own document numbers (SR-/PR-/ER- series). The generated
// number is not reserved; callers insert it in the same transaction as the
// record and retry on a uniqueness violation.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs the facade over the shared pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// NextRecordNumber returns the next number in the kind's series for the
// document date.
func (s *Service) NextRecordNumber(ctx context.Context, kind numbering.DocumentKind, date time.Time) (string, error) {
	gen := numbering.NewGenerator(numbering.NewSQLSource(s.pool))
	return gen.Next(ctx, kind, date)
}
