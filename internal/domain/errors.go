package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by cart operations
var (
	ErrOutOfStock         = errors.New("requested quantity is out of stock")
	ErrItemNotFound       = errors.New("item not found in cart")
	ErrAddFailed          = errors.New("add product failed")
	ErrTransportFailure   = errors.New("stock or product lookup failed")
	ErrPersistenceFailure = errors.New("cart persistence failed")
)

// Op names a cart operation
type Op string

const (
	OpAdd       Op = "add"
	OpRemove    Op = "remove"
	OpSetAmount Op = "set_amount"
	OpLoad      Op = "load"
)

// CartError describes a failed cart operation.
// errors.Is matches both Kind and the underlying cause.
type CartError struct {
	Op        Op
	Kind      error
	ProductID ProductID
	Err       error
}

func (e *CartError) Error() string {
	msg := fmt.Sprintf("%s product %d: %v", e.Op, e.ProductID, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CartError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the text shown to the user
func (e *CartError) Message() string {
	switch {
	case errors.Is(e.Kind, ErrOutOfStock):
		return "Requested quantity is out of stock"
	case errors.Is(e.Kind, ErrPersistenceFailure):
		return "Failed to save cart"
	}
	switch e.Op {
	case OpAdd:
		return "Failed to add product"
	case OpRemove:
		return "Failed to remove product"
	case OpSetAmount:
		return "Failed to update product amount"
	default:
		return "Failed to load cart"
	}
}

// KindName returns a stable short name for the error kind
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, ErrAddFailed):
		return "add_failed"
	case errors.Is(err, ErrTransportFailure):
		return "transport_failure"
	case errors.Is(err, ErrPersistenceFailure):
		return "persistence_failure"
	default:
		return "unknown"
	}
}
