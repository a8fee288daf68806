package service

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRefreshInvalid     = errors.New("refresh token invalid or expired")

	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryInUse     = errors.New("category has products")
	ErrProductNotFound   = errors.New("product not found")
	ErrVariationNotFound = errors.New("variation not found")
	ErrSlugAlreadyExists = errors.New("slug already exists")
	ErrNameAlreadyExists = errors.New("name already exists")

	ErrCartItemNotFound = errors.New("cart item not found")
	ErrQuantityInvalid  = errors.New("quantity must be > 0")

	ErrCartNotFound          = errors.New("cart not found")
	ErrCartAlreadyCheckedOut = errors.New("cart has already been checked out")
	ErrCartEmpty             = errors.New("cart is empty")

	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderNotCancellable     = errors.New("order can no longer be cancelled")
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	ErrShipmentNotFound = errors.New("shipment not found")

	ErrPaymentNotFound  = errors.New("payment not found")
	ErrOrderNotOwned    = errors.New("cannot pay for someone else's order")
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	ErrAmountInvalid    = errors.New("amount must be > 0")
)
