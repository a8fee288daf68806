package repository

import (
	"context"
	"errors"

	"ecommerce-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VariationListFilter struct {
	ProductID *uuid.UUID
	Name      string
	Value     string
	Query     string // поиск по name/value/sku
	Limit     int
	Offset    int
}

type VariationRepo interface {
	Create(ctx context.Context, v *models.ProductVariation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductVariation, error)
	GetForProduct(ctx context.Context, id, productID uuid.UUID) (*models.ProductVariation, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f VariationListFilter) ([]models.ProductVariation, int64, error)

	// Списание с отсечкой в ноль, как у товара
	DecrementStockClamped(ctx context.Context, id uuid.UUID, qty uint32) error
	SetStock(ctx context.Context, id uuid.UUID, quantity uint32) (bool, error)
}

type variationRepo struct{ db *gorm.DB }

func NewVariationRepo(db *gorm.DB) VariationRepo { return &variationRepo{db: db} }

func (r *variationRepo) Create(ctx context.Context, v *models.ProductVariation) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *variationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductVariation, error) {
	var v models.ProductVariation
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &v, err
}

func (r *variationRepo) GetForProduct(ctx context.Context, id, productID uuid.UUID) (*models.ProductVariation, error) {
	var v models.ProductVariation
	err := r.db.WithContext(ctx).First(&v, "id = ? AND product_id = ?", id, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &v, err
}

func (r *variationRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.ProductVariation{}).Where("id = ?", id).Updates(fields).Error
}

func (r *variationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ProductVariation{}, "id = ?", id).Error
}

func (r *variationRepo) List(ctx context.Context, f VariationListFilter) ([]models.ProductVariation, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ProductVariation{})

	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}
	if f.Value != "" {
		q = q.Where("value = ?", f.Value)
	}
	if f.Query != "" {
		pat := "%" + f.Query + "%"
		q = q.Where("name ILIKE ? OR value ILIKE ? OR sku ILIKE ?", pat, pat, pat)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.ProductVariation
	err := q.Order("product_id, name, value").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

func (r *variationRepo) DecrementStockClamped(ctx context.Context, id uuid.UUID, qty uint32) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE product_variations
SET quantity = GREATEST(quantity - @q, 0),
    in_stock = GREATEST(quantity - @q, 0) > 0
WHERE id = @vid
`, map[string]any{"vid": id, "q": int64(qty)}).Error
}

func (r *variationRepo) SetStock(ctx context.Context, id uuid.UUID, quantity uint32) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE product_variations
SET quantity = @q,
    in_stock = @q > 0
WHERE id = @vid
`, map[string]any{"vid": id, "q": int64(quantity)})
	return tx.RowsAffected > 0, tx.Error
}
