package toydb

import "errors"

// Rejections returned by mutating operations. They are wrapped with the
// offending values; compare with errors.Is.
var (
	ErrUnknownUser       = errors.New("unknown user")
	ErrUnknownProduct    = errors.New("unknown product")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrNegativeStock     = errors.New("stock must not be negative")
	ErrInvalidAge        = errors.New("age must not be negative")
)

// IsRejection reports whether err is one of the validation rejections above.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrUnknownUser,
		ErrUnknownProduct,
		ErrInsufficientStock,
		ErrInvalidQuantity,
		ErrNegativeStock,
		ErrInvalidAge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
