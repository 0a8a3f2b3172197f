package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientInventory: no single lot can supply the requested quantity.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrInventoryExceeded: a cart increment would pass the product's total stock.
	ErrInventoryExceeded = errors.New("inventory exceeded")
	// ErrInventoryRace: a lot ran short at commit time. Re-assemble and retry.
	ErrInventoryRace = errors.New("inventory changed by a concurrent checkout")
	ErrEmptyCart     = errors.New("cart is empty")
	ErrPersistence   = errors.New("persistence failure")
	// ErrCheckoutInProgress: the same session is already checking out.
	ErrCheckoutInProgress = errors.New("checkout already in progress")

	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")

	// Login failures
	ErrUnknownAccount = errors.New("account not found")
	ErrWrongPassword  = errors.New("password incorrect")
)

// LineError ties a cart line failure to its product.
type LineError struct {
	ProductID int64
	Quantity  int
	// Available is the stock on hand when the caller looked it up.
	Available int
	Err       error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("product %d (qty %d): %v", e.ProductID, e.Quantity, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
