package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	acctshared "github.com/tillbook/tillbook/internal/accounting/shared"
	internalShared "github.com/tillbook/tillbook/internal/shared"
)

// AuditPort records chart of accounts mutations.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service owns account entities and enforces code uniqueness and the
// immutability of accounts with ledger activity.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the chart of accounts service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateAccountInput carries the fields accepted on account creation.
type CreateAccountInput struct {
	Name           string
	Code           string
	Category       Category
	Subcategory    string
	LedgerGroup    string
	OpeningBalance decimal.Decimal
	Description    string
	ActorID        int64
}

// UpdateAccountInput carries the replacement fields for an account.
type UpdateAccountInput struct {
	Name           string
	Code           string
	Category       Category
	Subcategory    string
	LedgerGroup    string
	OpeningBalance decimal.Decimal
	Description    string
	ActorID        int64
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListSubcategories(ctx context.Context) ([]Subcategory, error) {
	return s.repo.ListSubcategories(ctx)
}

// CreateAccount inserts a new account, generating the code when omitted.
func (s *Service) CreateAccount(ctx context.Context, input CreateAccountInput) (Account, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Account{}, errors.New("accounts: name required")
	}
	var created Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		code := strings.TrimSpace(input.Code)
		if code == "" {
			gen := NewCodeGenerator(tx)
			next, err := gen.NextCode(ctx, input.Category)
			if err != nil {
				return err
			}
			code = next
		}
		inserted, err := tx.InsertAccount(ctx, Account{
			Name:           input.Name,
			Code:           code,
			Category:       input.Category,
			Subcategory:    input.Subcategory,
			LedgerGroup:    input.LedgerGroup,
			OpeningBalance: input.OpeningBalance,
			Description:    input.Description,
		})
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, input.ActorID, "account.create", created.ID, map[string]any{"code": created.Code})
	return created, nil
}

// UpdateAccount replaces account fields. Accounts with ledger activity or
// the system lock flag are refused wholesale.
func (s *Service) UpdateAccount(ctx context.Context, id int64, input UpdateAccountInput) (Account, error) {
	var updated Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetAccountForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.IsLocked {
			return acctshared.ErrAccountLocked
		}
		active, err := tx.HasLedgerActivity(ctx, id)
		if err != nil {
			return err
		}
		if active {
			return acctshared.ErrAccountLocked
		}
		updated = current
		updated.Name = input.Name
		updated.Code = input.Code
		updated.Category = input.Category
		updated.Subcategory = input.Subcategory
		updated.LedgerGroup = input.LedgerGroup
		updated.OpeningBalance = input.OpeningBalance
		updated.Description = input.Description
		return tx.UpdateAccount(ctx, updated)
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, input.ActorID, "account.update", id, map[string]any{"code": updated.Code})
	return updated, nil
}

// DeleteAccount removes an account with no ledger activity.
func (s *Service) DeleteAccount(ctx context.Context, id, actorID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetAccountForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.IsLocked {
			return acctshared.ErrAccountLocked
		}
		active, err := tx.HasLedgerActivity(ctx, id)
		if err != nil {
			return err
		}
		if active {
			return acctshared.ErrAccountLocked
		}
		return tx.DeleteAccount(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorID, "account.delete", id, nil)
	return nil
}

// HasLedgerActivity reports whether any journal line or purchase record
// references the account.
func (s *Service) HasLedgerActivity(ctx context.Context, accountID int64) (bool, error) {
	var active bool
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		active, err = tx.HasLedgerActivity(ctx, accountID)
		return err
	})
	return active, err
}

// CreateSubcategory inserts a named grouping under a category.
func (s *Service) CreateSubcategory(ctx context.Context, sub Subcategory, actorID int64) (Subcategory, error) {
	if strings.TrimSpace(sub.Name) == "" {
		return Subcategory{}, errors.New("accounts: subcategory name required")
	}
	var created Subcategory
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertSubcategory(ctx, sub)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	if err != nil {
		return Subcategory{}, err
	}
	s.record(ctx, actorID, "subcategory.create", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

// UpdateSubcategory renames a subcategory unless any account references it.
func (s *Service) UpdateSubcategory(ctx context.Context, id int64, sub Subcategory, actorID int64) (Subcategory, error) {
	var updated Subcategory
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetSubcategoryForUpdate(ctx, id)
		if err != nil {
			return err
		}
		refs, err := tx.AccountsReferencingSubcategory(ctx, current.Name)
		if err != nil {
			return err
		}
		if refs > 0 {
			return acctshared.ErrSubcategoryLocked
		}
		updated = current
		updated.Name = sub.Name
		updated.Category = sub.Category
		updated.ParentID = sub.ParentID
		return tx.UpdateSubcategory(ctx, updated)
	})
	if err != nil {
		return Subcategory{}, err
	}
	s.record(ctx, actorID, "subcategory.update", id, map[string]any{"name": updated.Name})
	return updated, nil
}

// DeleteSubcategory removes a subcategory unless any account references it.
func (s *Service) DeleteSubcategory(ctx context.Context, id, actorID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetSubcategoryForUpdate(ctx, id)
		if err != nil {
			return err
		}
		refs, err := tx.AccountsReferencingSubcategory(ctx, current.Name)
		if err != nil {
			return err
		}
		if refs > 0 {
			return acctshared.ErrSubcategoryLocked
		}
		return tx.DeleteSubcategory(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorID, "subcategory.delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entity := "account"
	if strings.HasPrefix(action, "subcategory.") {
		entity = "subcategory"
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
		At:       s.now(),
	})
}
