package ledger

import (
	"context"
	"log/slog"
)

// Service computes ledger statements and aggregate balances. All state lives
// in the database; nothing is cached between calls.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs the ledger calculator.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AccountLedger returns the opening balance, per-line running balances, and
// closing balance for one account over an inclusive date range.
func (s *Service) AccountLedger(ctx context.Context, accountID int64, rng DateRange) (AccountLedger, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return AccountLedger{}, err
	}
	debitNormal := account.Category.DebitNormal()
	opening := account.OpeningBalance
	if rng.Start != nil {
		priorDebits, priorCredits, err := s.repo.SumBefore(ctx, accountID, rng)
		if err != nil {
			return AccountLedger{}, err
		}
		opening = applyMovement(opening, debitNormal, priorDebits, priorCredits)
	}
	lines, err := s.repo.LinesInRange(ctx, accountID, rng)
	if err != nil {
		return AccountLedger{}, err
	}
	rows, closing := runningBalances(opening, debitNormal, lines)
	return AccountLedger{
		AccountID:      account.ID,
		AccountCode:    account.Code,
		AccountName:    account.Name,
		Category:       account.Category,
		OpeningBalance: opening,
		Entries:        rows,
		ClosingBalance: closing,
	}, nil
}

// AllAccountBalances computes aggregate balances for every account in the
// chart, each independently. A failing account does not abort the report; it
// degrades to its opening balance with zero movement.
func (s *Service) AllAccountBalances(ctx context.Context, rng DateRange) ([]AccountBalance, error) {
	accts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountBalance, 0, len(accts))
	for _, account := range accts {
		row := AccountBalance{
			AccountID:      account.ID,
			Code:           account.Code,
			Name:           account.Name,
			Category:       account.Category,
			OpeningBalance: account.OpeningBalance,
			Balance:        account.OpeningBalance,
		}
		if err := s.fillBalance(ctx, &row, account.Category.DebitNormal(), rng); err != nil {
			if s.logger != nil {
				s.logger.Warn("account balance degraded", slog.Int64("account_id", account.ID), slog.Any("error", err))
			}
			// Fail-soft: keep the opening-balance row.
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Service) fillBalance(ctx context.Context, row *AccountBalance, debitNormal bool, rng DateRange) error {
	opening := row.OpeningBalance
	if rng.Start != nil {
		priorDebits, priorCredits, err := s.repo.SumBefore(ctx, row.AccountID, rng)
		if err != nil {
			return err
		}
		opening = applyMovement(opening, debitNormal, priorDebits, priorCredits)
	}
	debits, credits, err := s.repo.Totals(ctx, row.AccountID, rng)
	if err != nil {
		return err
	}
	row.OpeningBalance = opening
	row.TotalDebits = debits
	row.TotalCredits = credits
	row.Balance = applyMovement(opening, debitNormal, debits, credits)
	return nil
}

// TopAccountsByActivity ranks accounts by posting count, ties broken by name.
func (s *Service) TopAccountsByActivity(ctx context.Context, limit int) ([]AccountActivity, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopByActivity(ctx, limit)
}
