package service

import (
	"context"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description string
	ParentID    *uuid.UUID
}

type UpdateCategoryInput struct {
	Name        *string
	Slug        *string
	Description *string
	ParentID    *uuid.UUID
	ClearParent bool
}

type CreateProductInput struct {
	CategoryID  uuid.UUID
	Name        string
	Slug        string
	Description string
	SKU         string
	Brand       string
	Price       decimal.Decimal
	Quantity    uint32
}

type UpdateProductInput struct {
	CategoryID  *uuid.UUID
	Name        *string
	Slug        *string
	Description *string
	SKU         *string
	Brand       *string
	Price       *decimal.Decimal
}

type CreateVariationInput struct {
	ProductID uuid.UUID
	Name      string
	Value     string
	SKU       string
	Price     decimal.Decimal
	Quantity  uint32
}

type UpdateVariationInput struct {
	Name  *string
	Value *string
	SKU   *string
	Price *decimal.Decimal
}

type CatalogService interface {
	CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, f repository.CategoryListFilter) ([]models.Category, int64, error)

	CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, f repository.ProductListFilter) ([]models.Product, int64, error)

	CreateVariation(ctx context.Context, in CreateVariationInput) (*models.ProductVariation, error)
	GetVariation(ctx context.Context, id uuid.UUID) (*models.ProductVariation, error)
	UpdateVariation(ctx context.Context, id uuid.UUID, in UpdateVariationInput) (*models.ProductVariation, error)
	DeleteVariation(ctx context.Context, id uuid.UUID) error
	ListVariations(ctx context.Context, f repository.VariationListFilter) ([]models.ProductVariation, int64, error)

	// Установка остатка через очередь задач: быстрый ответ API, запись в
	// хранилище делает воркер
	SetProductStock(ctx context.Context, id uuid.UUID, quantity uint32) error
	SetVariationStock(ctx context.Context, id uuid.UUID, quantity uint32) error

	// Применение остатка воркером
	ApplyProductStock(ctx context.Context, id uuid.UUID, quantity uint32) error
	ApplyVariationStock(ctx context.Context, id uuid.UUID, quantity uint32) error

	// Периодическая зачистка: товары с нулевым запасом и без доступных
	// вариаций помечаются как отсутствующие
	DisableOutOfStockProducts(ctx context.Context) (int64, error)
}
