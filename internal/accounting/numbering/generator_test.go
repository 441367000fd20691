package numbering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubSource struct {
	max     string
	err     error
	pattern string
	kind    DocumentKind
}

func (s *stubSource) MaxNumberLike(ctx context.Context, kind DocumentKind, pattern string) (string, error) {
	s.kind = kind
	s.pattern = pattern
	return s.max, s.err
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodKeyFiscalYear(t *testing.T) {
	require.Equal(t, "2025/26", KindJournalEntry.PeriodKey(date(2025, 12, 31)))
	require.Equal(t, "2026/27", KindJournalEntry.PeriodKey(date(2026, 1, 1)))
	require.Equal(t, "2099/00", KindPurchaseVoucher.PeriodKey(date(2099, 6, 15)))
}

func TestPeriodKeyExpenseRecordsUseCalendarYear(t *testing.T) {
	require.Equal(t, "2025", KindExpenseRecord.PeriodKey(date(2025, 12, 31)))
	require.Equal(t, "2026", KindExpenseRecord.PeriodKey(date(2026, 1, 1)))
}

func TestNextFirstInSeries(t *testing.T) {
	src := &stubSource{}
	gen := NewGenerator(src)

	number, err := gen.Next(context.Background(), KindJournalEntry, date(2025, 4, 10))
	require.NoError(t, err)
	require.Equal(t, "JE-2025/26-0001", number)
	require.Equal(t, "JE-2025/26-%", src.pattern)
}

func TestNextIncrementsStoredMax(t *testing.T) {
	src := &stubSource{max: "PV-2025/26-0041"}
	gen := NewGenerator(src)

	number, err := gen.Next(context.Background(), KindPurchaseVoucher, date(2025, 7, 1))
	require.NoError(t, err)
	require.Equal(t, "PV-2025/26-0042", number)
}

func TestNextParsesLegacyFormats(t *testing.T) {
	cases := []struct {
		name   string
		kind   DocumentKind
		stored string
		want   string
	}{
		{"year only", KindJournalEntry, "JE-2025-0107", "JE-2025/26-0108"},
		{"bare journal", KindJournalEntry, "JE-93", "JE-2025/26-0094"},
		{"payment current", KindPaymentVoucher, "PAY-2025/26-0009", "PAY-2025/26-0010"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := NewGenerator(&stubSource{max: tc.stored})
			number, err := gen.Next(context.Background(), tc.kind, date(2025, 8, 20))
			require.NoError(t, err)
			require.Equal(t, tc.want, number)
		})
	}
}

func TestNextRejectsMalformedStoredNumber(t *testing.T) {
	gen := NewGenerator(&stubSource{max: "garbage"})
	_, err := gen.Next(context.Background(), KindJournalEntry, date(2025, 8, 20))
	require.Error(t, err)
}

func TestNextRejectsUnknownKind(t *testing.T) {
	gen := NewGenerator(&stubSource{})
	_, err := gen.Next(context.Background(), DocumentKind("mystery"), date(2025, 8, 20))
	require.Error(t, err)
}

func TestFormatPadsToFourDigits(t *testing.T) {
	require.Equal(t, "SR-2025/26-0007", KindSalesRecord.Format("2025/26", 7))
	require.Equal(t, "ER-2025-12345", KindExpenseRecord.Format("2025", 12345))
}
