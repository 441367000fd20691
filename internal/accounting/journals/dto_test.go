package journals

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tillbook/tillbook/internal/accounting/numbering"
	"github.com/tillbook/tillbook/internal/accounting/shared"
)

func validPostingInput() PostingInput {
	return PostingInput{
		EntryDate:   time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Description: "till reconciliation",
		Lines: []LineInput{
			{AccountID: 1, Debit: decimal.NewFromInt(500)},
			{AccountID: 2, Credit: decimal.NewFromInt(500)},
		},
	}
}

func TestPostingInputValid(t *testing.T) {
	require.NoError(t, validPostingInput().Validate())
}

func TestPostingInputRequiresTwoLines(t *testing.T) {
	in := validPostingInput()
	in.Lines = in.Lines[:1]
	require.ErrorIs(t, in.Validate(), shared.ErrTooFewLines)
}

func TestPostingInputRequiresEntryDate(t *testing.T) {
	in := validPostingInput()
	in.EntryDate = time.Time{}
	require.Error(t, in.Validate())
}

func TestPostingInputRejectsMissingAccount(t *testing.T) {
	in := validPostingInput()
	in.Lines[1].AccountID = 0
	require.ErrorIs(t, in.Validate(), shared.ErrInvalidLine)
}

func TestPostingInputUnbalanced(t *testing.T) {
	in := validPostingInput()
	in.Lines[1].Credit = decimal.NewFromInt(300)

	err := in.Validate()
	var unbalanced *shared.UnbalancedError
	require.True(t, errors.As(err, &unbalanced))
	require.True(t, unbalanced.Debits.Equal(decimal.NewFromInt(500)))
	require.True(t, unbalanced.Credits.Equal(decimal.NewFromInt(300)))
}

func TestPostingInputToleratesRoundingSlack(t *testing.T) {
	in := validPostingInput()
	in.Lines[1].Credit = decimal.RequireFromString("499.99")
	require.NoError(t, in.Validate())

	in.Lines[1].Credit = decimal.RequireFromString("499.98")
	err := in.Validate()
	var unbalanced *shared.UnbalancedError
	require.True(t, errors.As(err, &unbalanced))
}

// An entry that is unbalanced AND carries a both-sides line must report the
// balance violation, not the line violation.
func TestPostingInputBalanceCheckedBeforeExclusivity(t *testing.T) {
	in := validPostingInput()
	in.Lines[1] = LineInput{AccountID: 2, Debit: decimal.NewFromInt(10), Credit: decimal.NewFromInt(300)}

	err := in.Validate()
	var unbalanced *shared.UnbalancedError
	require.True(t, errors.As(err, &unbalanced))
}

func TestPostingInputRejectsBothSidesSet(t *testing.T) {
	in := validPostingInput()
	in.Lines = []LineInput{
		{AccountID: 1, Debit: decimal.NewFromInt(250), Credit: decimal.NewFromInt(250)},
		{AccountID: 2, Debit: decimal.NewFromInt(250), Credit: decimal.NewFromInt(250)},
	}
	require.ErrorIs(t, in.Validate(), shared.ErrInvalidLine)
}

func TestPostingInputRejectsEmptyLine(t *testing.T) {
	in := validPostingInput()
	in.Lines = append(in.Lines, LineInput{AccountID: 3})
	require.ErrorIs(t, in.Validate(), shared.ErrInvalidLine)
}

func TestPostingInputRejectsUnknownVoucherKind(t *testing.T) {
	in := validPostingInput()
	bogus := numbering.DocumentKind("mystery")
	in.VoucherKind = &bogus
	require.Error(t, in.Validate())
}

func TestTotals(t *testing.T) {
	debits, credits := Totals([]LineInput{
		{AccountID: 1, Debit: decimal.NewFromInt(120)},
		{AccountID: 2, Debit: decimal.NewFromInt(30)},
		{AccountID: 3, Credit: decimal.NewFromInt(150)},
	})
	require.True(t, debits.Equal(decimal.NewFromInt(150)))
	require.True(t, credits.Equal(decimal.NewFromInt(150)))
}
