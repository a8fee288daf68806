package repository

import (
	"context"
	"errors"

	"ecommerce-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShipmentListFilter struct {
	UserID *uuid.UUID // nil — все отправления (админ)
	Limit  int
	Offset int
}

type ShipmentRepo interface {
	Create(ctx context.Context, s *models.Shipment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	List(ctx context.Context, f ShipmentListFilter) ([]models.Shipment, int64, error)
}

type shipmentRepo struct{ db *gorm.DB }

func NewShipmentRepo(db *gorm.DB) ShipmentRepo { return &shipmentRepo{db: db} }

func (r *shipmentRepo) Create(ctx context.Context, s *models.Shipment) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shipmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var sh models.Shipment
	err := r.db.WithContext(ctx).First(&sh, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sh, err
}

func (r *shipmentRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error) {
	var sh models.Shipment
	err := r.db.WithContext(ctx).First(&sh, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sh, err
}

func (r *shipmentRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Shipment{}).Where("id = ?", id).Updates(fields).Error
}

func (r *shipmentRepo) List(ctx context.Context, f ShipmentListFilter) ([]models.Shipment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Shipment{})

	if f.UserID != nil {
		q = q.Joins("JOIN orders ON orders.id = shipments.order_id").
			Where("orders.user_id = ?", *f.UserID)
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

	var list []models.Shipment
	err := q.Order("shipments.order_id").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}
