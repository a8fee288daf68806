package repository

import (
	"context"
	"errors"

	"ecommerce-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductListFilter struct {
	CategoryID *uuid.UUID
	InStock    *bool
	MinPrice   *string
	MaxPrice   *string
	Query      string // поиск по name/description/brand
	OrderBy    string // price | created_at | quantity, префикс "-" — по убыванию
	Limit      int
	Offset     int
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)

	// Списание с отсечкой в ноль: quantity = max(quantity - qty, 0),
	// in_stock пересчитывается из нового остатка. Вызывается только внутри
	// транзакции оформления заказа.
	DecrementStockClamped(ctx context.Context, id uuid.UUID, qty uint32) error
	// Установка остатка воркером синхронизации
	SetStock(ctx context.Context, id uuid.UUID, quantity uint32) (bool, error)
	// Пересчёт in_stock родителя: собственный остаток либо хотя бы одна
	// вариация в наличии
	RefreshInStockFromVariations(ctx context.Context, id uuid.UUID) error
	// Периодическая сверка: гасит in_stock у товаров с нулевым остатком
	// без вариаций в наличии. Возвращает число исправленных строк.
	DisableOutOfStock(ctx context.Context) (int64, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Variations").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Variations").First(&p, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.InStock != nil {
		q = q.Where("in_stock = ?", *f.InStock)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Query != "" {
		pat := "%" + f.Query + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ? OR brand ILIKE ?", pat, pat, pat)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch f.OrderBy {
	case "price":
		order = "price ASC"
	case "-price":
		order = "price DESC"
	case "quantity":
		order = "quantity ASC"
	case "-quantity":
		order = "quantity DESC"
	case "created_at":
		order = "created_at ASC"
	case "-created_at", "":
		// по умолчанию — новые первыми
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.Product
	err := q.Order(order).Limit(f.Limit).Offset(f.Offset).Preload("Variations").Find(&list).Error
	return list, total, err
}

func (r *productRepo) DecrementStockClamped(ctx context.Context, id uuid.UUID, qty uint32) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE products
SET quantity  = GREATEST(quantity - @q, 0),
    in_stock  = GREATEST(quantity - @q, 0) > 0,
    updated_at = now()
WHERE id = @pid
`, map[string]any{"pid": id, "q": int64(qty)}).Error
}

func (r *productRepo) SetStock(ctx context.Context, id uuid.UUID, quantity uint32) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET quantity  = @q,
    in_stock  = @q > 0,
    updated_at = now()
WHERE id = @pid
`, map[string]any{"pid": id, "q": int64(quantity)})
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) RefreshInStockFromVariations(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE products p
SET in_stock = (p.quantity > 0 OR EXISTS (
	SELECT 1 FROM product_variations v
	WHERE v.product_id = p.id AND v.in_stock
)),
    updated_at = now()
WHERE p.id = @pid
`, map[string]any{"pid": id}).Error
}

func (r *productRepo) DisableOutOfStock(ctx context.Context) (int64, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products p
SET in_stock = false,
    updated_at = now()
WHERE p.quantity = 0
  AND p.in_stock = true
  AND NOT EXISTS (
	SELECT 1 FROM product_variations v
	WHERE v.product_id = p.id AND v.in_stock
  )
`)
	return tx.RowsAffected, tx.Error
}
