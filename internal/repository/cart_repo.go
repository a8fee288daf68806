package repository

import (
	"context"
	"errors"

	"ecommerce-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepo interface {
	Create(ctx context.Context, c *models.Cart) error
	// Единственная открытая корзина пользователя; nil, если её нет
	GetOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error)
	// Блокирует строку корзины до конца транзакции (SELECT ... FOR UPDATE).
	// Используется оформлением заказа против двойного checkout.
	GetByIDForUserLocked(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Cart, int64, error)
	MarkCheckedOut(ctx context.Context, id uuid.UUID) error
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) CartRepo { return &cartRepo{db: db} }

func (r *cartRepo) Create(ctx context.Context, c *models.Cart) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cartRepo) GetOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		First(&c, "user_id = ? AND checked_out = false", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cartRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&c, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cartRepo) GetByIDForUserLocked(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cartRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Cart, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Cart{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var list []models.Cart
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Preload("Items").Find(&list).Error
	return list, total, err
}

func (r *cartRepo) MarkCheckedOut(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Cart{}).Where("id = ?", id).Update("checked_out", true).Error
}

type CartItemRepo interface {
	Create(ctx context.Context, item *models.CartItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	// Поиск строки по сочетанию (корзина, товар, вариация); вариация может
	// отсутствовать
	Find(ctx context.Context, cartID, productID uuid.UUID, variationID *uuid.UUID) (*models.CartItem, error)
	ListByCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	IncrementQuantity(ctx context.Context, id uuid.UUID, delta uint32) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity uint32) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type cartItemRepo struct{ db *gorm.DB }

func NewCartItemRepo(db *gorm.DB) CartItemRepo { return &cartItemRepo{db: db} }

func (r *cartItemRepo) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var it models.CartItem
	err := r.db.WithContext(ctx).First(&it, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &it, err
}

func (r *cartItemRepo) Find(ctx context.Context, cartID, productID uuid.UUID, variationID *uuid.UUID) (*models.CartItem, error) {
	q := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID)
	if variationID != nil {
		q = q.Where("variation_id = ?", *variationID)
	} else {
		q = q.Where("variation_id IS NULL")
	}

	var it models.CartItem
	err := q.First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &it, err
}

func (r *cartItemRepo) ListByCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var list []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Variation").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *cartItemRepo) IncrementQuantity(ctx context.Context, id uuid.UUID, delta uint32) error {
	return r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", int64(delta))).Error
}

func (r *cartItemRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity uint32) error {
	return r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).
		Update("quantity", int64(quantity)).Error
}

func (r *cartItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}
