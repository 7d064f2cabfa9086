package domain

import (
	"errors"
	"fmt"
)

type ErrorClass int

const (
	ClassValidation ErrorClass = iota + 1
	ClassBusiness
)

func (c ErrorClass) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassBusiness:
		return "business"
	default:
		return "internal"
	}
}

// ErrorKind is the closed set of failures the service reports to callers.
// Each kind has a stable code and a message template; a kind is itself an
// error so it can be returned and matched with errors.Is directly.
type ErrorKind int

const (
	ErrItemRequestNull ErrorKind = iota + 1
	ErrItemIDRequired
	ErrItemNameRequired
	ErrItemPriceRequired
	ErrItemPriceNotPositive
	ErrItemDuplicate
	ErrItemNotFound

	ErrInventoryRequestNull
	ErrInventoryIDRequired
	ErrInventoryItemIDRequired
	ErrInventoryQtyRequired
	ErrInventoryQtyNotPositive
	ErrInventoryTypeRequired
	ErrInventoryTypeInvalid
	ErrInventoryDuplicate
	ErrInventoryNotFound
	ErrInventoryItemNotFound
	ErrInventoryUpdateUnsupported

	ErrOrderRequestNull
	ErrOrderNoRequired
	ErrOrderItemIDRequired
	ErrOrderQtyInvalid
	ErrOrderInsufficientStock
	ErrOrderDuplicate
	ErrOrderNotFound
	ErrOrderItemNotFound

	ErrMalformedRequest
	ErrEndpointNotFound
	ErrInternal
)

type kindInfo struct {
	code    string
	message string
	class   ErrorClass
}

var kinds = map[ErrorKind]kindInfo{
	ErrItemRequestNull:      {"ITEM-VAL-000", "Request body cannot be null", ClassValidation},
	ErrItemIDRequired:       {"ITEM-VAL-001", "Item ID is required", ClassValidation},
	ErrItemNameRequired:     {"ITEM-VAL-002", "Item name is required", ClassValidation},
	ErrItemPriceRequired:    {"ITEM-VAL-003", "Item price is required", ClassValidation},
	ErrItemPriceNotPositive: {"ITEM-VAL-004", "Item price must be greater than 0", ClassValidation},
	ErrItemDuplicate:        {"ITEM-001", "Item ID already exists", ClassBusiness},
	ErrItemNotFound:         {"ITEM-404", "Item not found", ClassBusiness},

	ErrInventoryRequestNull:       {"INV-VAL-000", "Request body cannot be null", ClassValidation},
	ErrInventoryIDRequired:        {"INV-VAL-001", "Inventory ID is required", ClassValidation},
	ErrInventoryItemIDRequired:    {"INV-VAL-002", "Item ID is required", ClassValidation},
	ErrInventoryQtyRequired:       {"INV-VAL-003", "Quantity is required", ClassValidation},
	ErrInventoryQtyNotPositive:    {"INV-VAL-004", "Quantity must be greater than 0", ClassValidation},
	ErrInventoryTypeRequired:      {"INV-VAL-005", "Inventory type is required", ClassValidation},
	ErrInventoryTypeInvalid:       {"INV-VAL-006", "Inventory type must be 'T' or 'W'", ClassValidation},
	ErrInventoryDuplicate:         {"INV-001", "Inventory ID already exists", ClassBusiness},
	ErrInventoryNotFound:          {"INV-404", "Inventory not found", ClassBusiness},
	ErrInventoryItemNotFound:      {"INV-ITEM-404", "Item not found", ClassBusiness},
	ErrInventoryUpdateUnsupported: {"INV-UPD-000", "Inventory update is not supported: movements are append-only", ClassBusiness},

	ErrOrderRequestNull:       {"ORD-VAL-000", "Request body cannot be null", ClassValidation},
	ErrOrderNoRequired:        {"ORD-VAL-001", "Order number is required", ClassValidation},
	ErrOrderItemIDRequired:    {"ORD-VAL-002", "Item ID is required", ClassValidation},
	ErrOrderQtyInvalid:        {"ORD-VAL-003", "Quantity must be greater than 0", ClassValidation},
	ErrOrderInsufficientStock: {"ORD-001", "Insufficient stock", ClassBusiness},
	ErrOrderDuplicate:         {"ORD-002", "Order number already exists", ClassBusiness},
	ErrOrderNotFound:          {"ORD-404", "Order not found", ClassBusiness},
	ErrOrderItemNotFound:      {"ORD-ITEM-404", "Item not found", ClassBusiness},

	ErrMalformedRequest: {"VAL-400", "Malformed request: %s", ClassValidation},
	ErrEndpointNotFound: {"ERR-404", "Endpoint not found: %s", ClassBusiness},
	ErrInternal:         {"ERR-500", "Internal server error", 0},
}

func (k ErrorKind) Code() string {
	return kinds[k].code
}

func (k ErrorKind) Class() ErrorClass {
	return kinds[k].class
}

// Message renders the kind's template with args.
func (k ErrorKind) Message(args ...any) string {
	info, ok := kinds[k]
	if !ok {
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
	if len(args) == 0 {
		return info.message
	}
	return fmt.Sprintf(info.message, args...)
}

func (k ErrorKind) Error() string {
	return k.Code() + ": " + kinds[k].message
}

// Error is an ErrorKind with a rendered message, for kinds whose template
// takes arguments.
type Error struct {
	Kind    ErrorKind
	Message string
}

func Errorf(kind ErrorKind, args ...any) *Error {
	return &Error{Kind: kind, Message: kind.Message(args...)}
}

// WithMessage keeps the kind's code but reports msg instead of its template.
func (k ErrorKind) WithMessage(msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

func (e *Error) Error() string {
	return e.Kind.Code() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Classify reports the kind and rendered message carried by err. Errors
// outside the closed set come back as ErrInternal with ok set to false.
func Classify(err error) (kind ErrorKind, message string, ok bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, de.Message, true
	}
	if errors.As(err, &kind) {
		return kind, kind.Message(), true
	}
	return ErrInternal, ErrInternal.Message(), false
}
