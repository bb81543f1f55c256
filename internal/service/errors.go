package service

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product: name required, price must be >= 0")
	ErrOutOfStock      = errors.New("out of stock")

	ErrTableNotFound = errors.New("table not found")
	ErrTableOccupied = errors.New("table occupied")
	ErrInvalidTable  = errors.New("invalid table: name and section required")
	ErrTableMismatch = errors.New("order does not belong to table")

	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderClosed        = errors.New("order closed")
	ErrInvalidCloseStatus = errors.New("close status must be paid or no_payment")
	ErrOrderNotSettleable = errors.New("only no_payment orders can be settled")

	ErrItemNotFound      = errors.New("order item not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidItemType   = errors.New("item type must be paid or complimentary")
	ErrComplimentaryItem = errors.New("complimentary items are not paid for")
	ErrItemAlreadyPaid   = errors.New("order item already paid")
	ErrItemNotPaid       = errors.New("order item is not paid")

	ErrInvalidPeriod = errors.New("invalid report period")
)
