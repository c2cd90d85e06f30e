package workshop

import (
	"math"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Widths of the stored columns. Input past them is rejected as invalid
// instead of failing in the database.
const (
	MaxStock    = math.MaxInt32 // INTEGER
	MaxNameLen  = 100
	MaxTextLen  = 255
	MaxPhoneLen = 20
	MaxRegNoLen = 20
)

var (
	// MaxUnitPrice is the exclusive bound of a numeric(10,2) price.
	MaxUnitPrice = decimal.New(1, 8)
	// MaxAmount is the exclusive bound of a numeric(12,2) invoice amount.
	MaxAmount = decimal.New(1, 10)
)

// CheckLen rejects v when it has more than max characters.
func CheckLen(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return Invalid("%s must be at most %d characters", field, max)
	}
	return nil
}

// CheckStock rejects a stock figure outside [0, MaxStock].
func CheckStock(field string, n int) error {
	if n < 0 || n > MaxStock {
		return Invalid("%s must be between 0 and %d", field, MaxStock)
	}
	return nil
}
