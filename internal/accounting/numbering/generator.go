package numbering

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DefaultMaxAttempts bounds the generate-insert retry loop callers run when a
// concurrent writer takes the same number.
const DefaultMaxAttempts = 5

// Source finds the highest stored number in a series. Implementations order
// by the number string descending; that matches numeric order only while the
// suffix stays fixed-width, so a wider padding would need integer comparison
// instead.
type Source interface {
	// MaxNumberLike returns the lexicographically largest document number
	// matching the SQL LIKE pattern, or "" when the series is empty.
	MaxNumberLike(ctx context.Context, kind DocumentKind, pattern string) (string, error)
}

var (
	reCurrent = regexp.MustCompile(`^[A-Z]+-\d{4}/\d{2}-(\d+)$`)
	reLegacy  = regexp.MustCompile(`^[A-Z]+-\d{4}-(\d+)$`)
	// Very old journal entries carried no year segment at all.
	reBare = regexp.MustCompile(`^JE-(\d+)$`)
)

// Generator derives the next document number for a kind and date. It never
// reserves the number; callers insert it in the same transaction and retry on
// a uniqueness violation.
type Generator struct {
	source Source
}

// NewGenerator constructs a Generator over a number source.
func NewGenerator(source Source) *Generator {
	return &Generator{source: source}
}

// Next returns the next formatted number for the series, e.g. "JE-2025/26-0007".
func (g *Generator) Next(ctx context.Context, kind DocumentKind, date time.Time) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("numbering: unknown document kind %q", kind)
	}
	period := kind.PeriodKey(date)
	pattern := kind.Prefix() + "-" + period + "-%"
	max, err := g.source.MaxNumberLike(ctx, kind, pattern)
	if err != nil {
		return "", err
	}
	seq := 1
	if max != "" {
		suffix, ok := parseSuffix(max)
		if !ok {
			return "", fmt.Errorf("numbering: malformed document number %q", max)
		}
		seq = suffix + 1
	}
	return kind.Format(period, seq), nil
}

// parseSuffix extracts the numeric tail from any of the historical formats.
func parseSuffix(number string) (int, bool) {
	for _, re := range []*regexp.Regexp{reCurrent, reLegacy, reBare} {
		if m := re.FindStringSubmatch(number); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}
