package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category enumerates chart of accounts categories.
type Category string

const (
	CategoryAsset     Category = "asset"
	CategoryLiability Category = "liability"
	CategoryEquity    Category = "equity"
	CategoryIncome    Category = "income"
	CategoryExpense   Category = "expense"
)

// CodePrefix returns the leading code digit for the category.
// Unrecognized categories fall back to the asset block.
func (c Category) CodePrefix() string {
	switch c {
	case CategoryAsset:
		return "1"
	case CategoryLiability:
		return "2"
	case CategoryEquity:
		return "3"
	case CategoryIncome:
		return "4"
	case CategoryExpense:
		return "5"
	default:
		return "1"
	}
}

// DebitNormal reports whether the category's balance grows with debits.
func (c Category) DebitNormal() bool {
	return c == CategoryAsset || c == CategoryExpense
}

// Account models a chart of accounts node.
type Account struct {
	ID             int64
	Name           string
	Code           string
	Category       Category
	Subcategory    string
	LedgerGroup    string
	OpeningBalance decimal.Decimal
	Description    string
	IsLocked       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Subcategory is a named grouping under a category, optionally nested one
// level via ParentID to represent ledger groups.
type Subcategory struct {
	ID        int64
	Name      string
	Category  Category
	ParentID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
