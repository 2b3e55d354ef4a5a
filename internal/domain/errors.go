package domain

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

func (k ErrorKind) String() string {
	return string(k)
}

const (
	KindInvalidSource      ErrorKind = "invalid_source"
	KindFetchTimeout       ErrorKind = "fetch_timeout"
	KindFetchAuthRequired  ErrorKind = "fetch_auth_required"
	KindFetchFailed        ErrorKind = "fetch_failed"
	KindUnreadableWorkbook ErrorKind = "unreadable_workbook"
	KindEmptyCatalog       ErrorKind = "empty_catalog"
	KindNoValidProducts    ErrorKind = "no_valid_products"
	KindProductNotFound    ErrorKind = "product_not_found"
	KindLineNotFound       ErrorKind = "line_not_found"
	KindOutOfStock         ErrorKind = "out_of_stock"
	KindInsufficientStock  ErrorKind = "insufficient_stock"
	KindInvalidQuantity    ErrorKind = "invalid_quantity"
	KindInvalidPrice       ErrorKind = "invalid_price"
	KindEmptyCart          ErrorKind = "empty_cart"
)

// Error is the typed failure returned by catalog and cart operations.
// Sentinels below match any Error of the same kind via errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string

	// NoValidProducts diagnostics
	Headers  []string
	RowCount int

	// FetchFailed / FetchAuthRequired diagnostics
	StatusCode int
	Attempts   []string

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ReplaceAll(e.Kind.String(), "_", " ")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidSource      = &Error{Kind: KindInvalidSource}
	ErrFetchTimeout       = &Error{Kind: KindFetchTimeout}
	ErrFetchAuthRequired  = &Error{Kind: KindFetchAuthRequired}
	ErrFetchFailed        = &Error{Kind: KindFetchFailed}
	ErrUnreadableWorkbook = &Error{Kind: KindUnreadableWorkbook}
	ErrEmptyCatalog       = &Error{Kind: KindEmptyCatalog}
	ErrNoValidProducts    = &Error{Kind: KindNoValidProducts}
	ErrProductNotFound    = &Error{Kind: KindProductNotFound}
	ErrLineNotFound       = &Error{Kind: KindLineNotFound}
	ErrOutOfStock         = &Error{Kind: KindOutOfStock}
	ErrInsufficientStock  = &Error{Kind: KindInsufficientStock}
	ErrInvalidQuantity    = &Error{Kind: KindInvalidQuantity}
	ErrInvalidPrice       = &Error{Kind: KindInvalidPrice}
	ErrEmptyCart          = &Error{Kind: KindEmptyCart}
)

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of a typed error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
