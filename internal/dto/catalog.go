package dto

import "github.com/shopspring/decimal"

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Slug        string  `json:"slug" binding:"required,max=255"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
	ClearParent bool    `json:"clear_parent"`
}

type CreateProductRequest struct {
	CategoryID  string          `json:"category_id" binding:"required,uuid"`
	Name        string          `json:"name" binding:"required,max=255"`
	Slug        string          `json:"slug" binding:"required,max=255"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Quantity    uint32          `json:"quantity"`
}

type UpdateProductRequest struct {
	CategoryID  *string          `json:"category_id"`
	Name        *string          `json:"name"`
	Slug        *string          `json:"slug"`
	Description *string          `json:"description"`
	SKU         *string          `json:"sku"`
	Brand       *string          `json:"brand"`
	Price       *decimal.Decimal `json:"price"`
}

type CreateVariationRequest struct {
	Name     string          `json:"name" binding:"required,max=255"`
	Value    string          `json:"value" binding:"required,max=255"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Quantity uint32          `json:"quantity"`
}

type UpdateVariationRequest struct {
	Name  *string          `json:"name"`
	Value *string          `json:"value"`
	SKU   *string          `json:"sku"`
	Price *decimal.Decimal `json:"price"`
}

// SetStockRequest — новое абсолютное значение остатка
type SetStockRequest struct {
	Quantity uint32 `json:"quantity"`
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
