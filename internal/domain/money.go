package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the precision every stored amount carries (NUMERIC(12,2)).
const AmountPlaces = 2

var maxAmount = decimal.New(1, 10)

// ValidateAmount rejects amounts the store cannot hold exactly: non-positive
// values, sub-cent precision and values past the column's ten integer digits.
func ValidateAmount(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", ErrValidation, field)
	}
	if !v.Equal(v.Truncate(AmountPlaces)) {
		return fmt.Errorf("%w: %s must have at most %d decimals", ErrValidation, field, AmountPlaces)
	}
	if v.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: %s is too large", ErrValidation, field)
	}
	return nil
}
