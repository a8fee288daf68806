package service

import (
	"context"

	"ecommerce-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AddCartItemInput struct {
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	Quantity    uint32
}

// CartView — корзина вместе с посчитанной суммой позиций
type CartView struct {
	models.Cart
	Total decimal.Decimal `json:"total"`
}

type CartService interface {
	// Открытая корзина пользователя; создаётся лениво при первом обращении
	GetOpenCart(ctx context.Context) (*CartView, error)
	ListCarts(ctx context.Context, limit, offset int) ([]CartView, int64, error)
	GetCart(ctx context.Context, id uuid.UUID) (*CartView, error)

	AddItem(ctx context.Context, in AddCartItemInput) (*models.CartItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, quantity uint32) (*models.CartItem, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
}
