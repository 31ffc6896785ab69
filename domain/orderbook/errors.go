package orderbook

import (
	"math"

	"github.com/cockroachdb/errors"
)

var (
	// ErrValidation marks a request whose quantity or price is out of range.
	ErrValidation = errors.New("validation error")
	// ErrInvalidArgument marks a side or order type outside its enumeration.
	ErrInvalidArgument = errors.New("invalid argument")
)

func validateQty(qty int64) error {
	if qty <= 0 {
		return errors.Mark(errors.Newf("quantity must be positive, got %d", qty), ErrValidation)
	}
	return nil
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return errors.Mark(errors.Newf("price must be finite, got %v", price), ErrValidation)
	}
	if price <= 0 {
		return errors.Mark(errors.Newf("price must be positive, got %v", price), ErrValidation)
	}
	return nil
}

// validateCapacity keeps a side's resting total, and so every level
// total on it, within int64.
func validateCapacity(resting, qty int64) error {
	if resting > math.MaxInt64-qty {
		return errors.Mark(errors.Newf("quantity %d would overflow resting total %d", qty, resting), ErrValidation)
	}
	return nil
}

func invalidArg(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}
