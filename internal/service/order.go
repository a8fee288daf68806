package service

import (
	"context"
	"time"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"

	"github.com/google/uuid"
)

type CheckoutInput struct {
	CartID        uuid.UUID
	Address       string
	PhoneNumber   string
	PaymentMethod string
}

type UpdateShipmentInput struct {
	TrackingNumber   *string
	Carrier          *string
	Status           *models.ShipmentStatus
	ExpectedDelivery *time.Time
}

type OrderService interface {
	// Оформление заказа из открытой корзины: атомарно создаёт заказ,
	// списывает остатки и закрывает корзину
	Checkout(ctx context.Context, in CheckoutInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f repository.OrderListFilter) ([]models.Order, int64, error)
	// Отмена владельцем, пока заказ не оплачен
	CancelOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// Смена статуса админом с проверкой допустимых переходов
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)

	GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	GetShipmentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error)
	ListShipments(ctx context.Context, limit, offset int) ([]models.Shipment, int64, error)
	UpdateShipment(ctx context.Context, id uuid.UUID, in UpdateShipmentInput) (*models.Shipment, error)
}
