package store

import "errors"

var (
	// ErrMerchantNotFound is returned when no merchant matches the lookup
	ErrMerchantNotFound = errors.New("merchant not found")

	// ErrMerchantConflict is returned when a merchant with the same
	// integration and Beans card id already exists
	ErrMerchantConflict = errors.New("merchant already exists")

	// ErrReviewConflict is returned when a review resource id is already stored
	ErrReviewConflict = errors.New("review already exists")

	// ErrUnsupportedDriver is returned for unknown DATABASE_DRIVER values
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrInvalidStrategy is returned for unknown batch selection strategies
	ErrInvalidStrategy = errors.New("invalid selection strategy")
)
