package accounts

import (
	"context"
	"fmt"
	"strconv"
)

// CodeSource reads the highest code currently stored for a prefix.
type CodeSource interface {
	// MaxCodeWithPrefix returns the largest account code (compared as an
	// integer) whose first digit matches prefix, or "" when none exist.
	MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error)
}

// CodeGenerator assigns the next unused account code within a category block.
// It only reads; the unique index on accounts.code decides races at insert.
type CodeGenerator struct {
	source CodeSource
}

// NewCodeGenerator constructs the generator over a code source.
func NewCodeGenerator(source CodeSource) *CodeGenerator {
	return &CodeGenerator{source: source}
}

// NextCode produces the next code for the category, e.g. "1001" then "1002".
func (g *CodeGenerator) NextCode(ctx context.Context, category Category) (string, error) {
	prefix := category.CodePrefix()
	max, err := g.source.MaxCodeWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	if max == "" {
		return prefix + "001", nil
	}
	suffix, err := strconv.Atoi(max[len(prefix):])
	if err != nil {
		return "", fmt.Errorf("accounts: malformed code %q: %w", max, err)
	}
	// Suffixes past 999 simply widen the field.
	return fmt.Sprintf("%s%03d", prefix, suffix+1), nil
}
