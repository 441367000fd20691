package journals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tillbook/tillbook/internal/accounting/numbering"
	"github.com/tillbook/tillbook/internal/accounting/shared"
	internalShared "github.com/tillbook/tillbook/internal/shared"
)

// AuditPort records posting events.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// MetricsPort counts posting outcomes.
type MetricsPort interface {
	JournalPosted(voucherKind string)
	NumberingRetry()
}

// Service validates and atomically persists journal entries, assigning
// entry and voucher numbers inside the posting transaction.
type Service struct {
	repo        Repository
	audit       AuditPort
	metrics     MetricsPort
	maxAttempts int
	now         func() time.Time
}

// NewService constructs the posting service. maxAttempts bounds the
// regenerate-and-retry loop on document number collisions; values below 1
// fall back to the default.
func NewService(repo Repository, audit AuditPort, metrics MetricsPort, maxAttempts int) *Service {
	if maxAttempts < 1 {
		maxAttempts = numbering.DefaultMaxAttempts
	}
	return &Service{repo: repo, audit: audit, metrics: metrics, maxAttempts: maxAttempts, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context) ([]JournalEntry, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (JournalEntry, error) {
	return s.repo.Get(ctx, id)
}

// Post validates input and persists the entry, its lines, and any linked
// source record update in one transaction. Number collisions under
// concurrent posting roll the transaction back and re-run generation.
func (s *Service) Post(ctx context.Context, input PostingInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	var err error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		entry, err = s.postOnce(ctx, input)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrDuplicateNumber) {
			return JournalEntry{}, err
		}
		if s.metrics != nil {
			s.metrics.NumberingRetry()
		}
	}
	if errors.Is(err, shared.ErrDuplicateNumber) {
		return JournalEntry{}, shared.ErrNumberExhausted
	}
	if err != nil {
		return JournalEntry{}, err
	}
	if s.metrics != nil {
		prefix := "none"
		if entry.VoucherNumber != nil {
			prefix = strings.SplitN(*entry.VoucherNumber, "-", 2)[0]
		}
		s.metrics.JournalPosted(prefix)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  input.CreatedBy,
			Action:   "journal.post",
			Entity:   "journal_entry",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta: map[string]any{
				"entry_number":   entry.EntryNumber,
				"voucher_number": entry.VoucherNumber,
			},
			At: s.now(),
		})
	}
	return entry, nil
}

func (s *Service) postOnce(ctx context.Context, input PostingInput) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sourceID := input.SourcePurchaseRecordID
		if sourceID == nil {
			if id, ok := ParsePurchaseRecordID(input.Description); ok {
				sourceID = &id
			}
		}
		if sourceID != nil {
			record, err := tx.GetPurchaseRecordForUpdate(ctx, *sourceID)
			if err != nil {
				return err
			}
			if record.VoucherCreated {
				return shared.ErrDuplicateVoucher
			}
			linked, err := tx.EntryExistsForPurchaseRecord(ctx, *sourceID)
			if err != nil {
				return err
			}
			if linked {
				return shared.ErrDuplicateVoucher
			}
		}

		voucherKind, hasVoucher, err := s.resolveVoucherKind(ctx, tx, input)
		if err != nil {
			return err
		}

		gen := numbering.NewGenerator(tx)
		entryNumber, err := gen.Next(ctx, numbering.KindJournalEntry, input.EntryDate)
		if err != nil {
			return err
		}
		var voucherNumber *string
		if hasVoucher {
			number, err := gen.Next(ctx, voucherKind, input.EntryDate)
			if err != nil {
				return err
			}
			voucherNumber = &number
		}

		inserted, err := tx.InsertJournalEntry(ctx, JournalEntry{
			EntryNumber:            entryNumber,
			VoucherNumber:          voucherNumber,
			EntryDate:              input.EntryDate,
			Reference:              input.Reference,
			Description:            input.Description,
			SourcePurchaseRecordID: sourceID,
			CreatedBy:              input.CreatedBy,
		})
		if err != nil {
			return err
		}
		if err := tx.InsertJournalLines(ctx, inserted.ID, input.Lines); err != nil {
			return err
		}

		if sourceID != nil {
			debits, _ := Totals(input.Lines)
			if err := tx.MarkPurchaseRecordVoucher(ctx, *sourceID, debits, entryNumber); err != nil {
				return err
			}
		}
		if hasVoucher && voucherKind == numbering.KindSalesVoucher {
			if salesID, ok := ParseSalesRecordID(input.Reference); ok {
				if err := tx.MarkSalesRecordVoucher(ctx, salesID); err != nil {
					return err
				}
			}
		}

		inserted.Lines = toLines(inserted.ID, input.Lines)
		entry = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

// resolveVoucherKind applies the explicit tag when present, otherwise the
// legacy text markers, then reroutes cash-settled purchases to the payment
// series.
func (s *Service) resolveVoucherKind(ctx context.Context, tx TxRepository, input PostingInput) (numbering.DocumentKind, bool, error) {
	var kind numbering.DocumentKind
	var ok bool
	if input.VoucherKind != nil {
		kind, ok = *input.VoucherKind, true
	} else {
		kind, ok = ClassifyVoucher(input.Reference, input.Description)
	}
	if !ok {
		return "", false, nil
	}
	if kind == numbering.KindPurchaseVoucher {
		ids := make([]int64, 0, len(input.Lines))
		for _, line := range input.Lines {
			if line.Credit.IsPositive() {
				ids = append(ids, line.AccountID)
			}
		}
		if len(ids) > 0 {
			info, err := tx.GetAccountInfo(ctx, ids)
			if err != nil {
				return "", false, err
			}
			if PaidFromCashOrBank(input.Lines, info) {
				kind = numbering.KindPaymentVoucher
			}
		}
	}
	return kind, true, nil
}

// Update replaces entry fields and the full line set. Entry and voucher
// numbers are kept; voucher flags on linked source records are deliberately
// left as they are, matching the historical behaviour even though a deleted
// or edited voucher then leaves the record pointing at a stale entry number.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetJournalForUpdate(ctx, id)
		if err != nil {
			return err
		}
		current.EntryDate = input.EntryDate
		current.Reference = input.Reference
		current.Description = input.Description
		if err := tx.UpdateJournalEntry(ctx, current); err != nil {
			return err
		}
		if err := tx.ReplaceJournalLines(ctx, id, input.Lines); err != nil {
			return err
		}
		current.Lines = toLines(id, input.Lines)
		entry = current
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "journal.update",
			Entity:   "journal_entry",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"entry_number": entry.EntryNumber},
			At:       s.now(),
		})
	}
	return entry, nil
}

// Delete removes the entry; lines go with it by cascade. Source record
// voucher flags are not reset (see Update).
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetJournalForUpdate(ctx, id); err != nil {
			return err
		}
		return tx.DeleteJournalEntry(ctx, id)
	})
	if err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  actorID,
			Action:   "journal.delete",
			Entity:   "journal_entry",
			EntityID: fmt.Sprintf("%d", id),
			At:       s.now(),
		})
	}
	return nil
}

func toLines(entryID int64, lines []LineInput) []JournalEntryLine {
	out := make([]JournalEntryLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, JournalEntryLine{
			JournalEntryID: entryID,
			AccountID:      line.AccountID,
			Debit:          line.Debit,
			Credit:         line.Credit,
			Description:    line.Description,
		})
	}
	return out
}
