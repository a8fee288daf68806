package service

import (
	"context"
	"time"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Допустимые переходы статуса заказа
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped: {models.OrderStatusDelivered},
}

// Допустимые переходы статуса отправления
var shipmentTransitions = map[models.ShipmentStatus][]models.ShipmentStatus{
	models.ShipmentStatusPending:   {models.ShipmentStatusShipped},
	models.ShipmentStatusShipped:   {models.ShipmentStatusInTransit, models.ShipmentStatusDelivered, models.ShipmentStatusReturned},
	models.ShipmentStatusInTransit: {models.ShipmentStatusDelivered, models.ShipmentStatusReturned},
}

func transitionAllowed[S comparable](table map[S][]S, from, to S) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

type orderService struct {
	repo  *repository.Repository
	tasks TaskQueue
	log   *zap.Logger
	now   func() time.Time
}

func NewOrderService(repo *repository.Repository, tasks TaskQueue, log *zap.Logger) OrderService {
	return &orderService{
		repo:  repo,
		tasks: tasks,
		log:   log,
		now:   time.Now,
	}
}

func (s *orderService) Checkout(ctx context.Context, in CheckoutInput) (*models.Order, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	method := in.PaymentMethod
	if method == "" {
		method = "mpesa"
	}

	var order *models.Order

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		// FOR UPDATE отсекает параллельный checkout той же корзины
		cart, err := tx.Carts.GetByIDForUserLocked(ctx, in.CartID, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return ErrCartNotFound
		}
		if cart.CheckedOut {
			return ErrCartAlreadyCheckedOut
		}

		items, err := tx.CartItems.ListByCart(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		order = &models.Order{
			UserID:        userID,
			Address:       in.Address,
			PhoneNumber:   in.PhoneNumber,
			PaymentMethod: method,
			Status:        models.OrderStatusPending,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			total = total.Add(line)

			orderItems = append(orderItems, models.OrderItem{
				OrderID:     order.ID,
				ProductID:   it.ProductID,
				VariationID: it.VariationID,
				Quantity:    it.Quantity,
				Price:       it.Price,
			})

			// Списание с зажимом в ноль: перепроданная позиция не роняет
			// оформление, остаток просто обнуляется
			if it.VariationID != nil {
				if err := tx.Variations.DecrementStockClamped(ctx, *it.VariationID, it.Quantity); err != nil {
					return err
				}
				if err := tx.Products.RefreshInStockFromVariations(ctx, it.ProductID); err != nil {
					return err
				}
			} else {
				if err := tx.Products.DecrementStockClamped(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		if err := tx.OrderItems.BulkCreate(ctx, orderItems); err != nil {
			return err
		}
		if err := tx.Orders.UpdateTotal(ctx, order.ID, total); err != nil {
			return err
		}
		order.TotalAmount = total
		order.Items = orderItems

		if err := tx.Carts.MarkCheckedOut(ctx, cart.ID); err != nil {
			return err
		}

		shipment := &models.Shipment{
			OrderID: order.ID,
			Status:  models.ShipmentStatusPending,
		}
		if err := tx.Shipments.Create(ctx, shipment); err != nil {
			return err
		}
		order.Shipment = shipment
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Письмо с подтверждением уходит только после фиксации транзакции
	if err := s.tasks.EnqueueOrderConfirmation(ctx, order.ID); err != nil {
		s.log.Warn("не удалось поставить задачу подтверждения заказа", zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	s.log.Info("заказ оформлен",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	if role == models.RoleAdmin {
		order, err = s.repo.Orders.GetByID(ctx, id)
	} else {
		order, err = s.repo.Orders.GetByIDForUser(ctx, id, userID)
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, f repository.OrderListFilter) ([]models.Order, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}

	// Не-админ видит только свои заказы
	if role != models.RoleAdmin {
		f.UserID = &userID
	}
	return s.repo.Orders.List(ctx, f)
}

func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	if role == models.RoleAdmin {
		order, err = s.repo.Orders.GetByID(ctx, id)
	} else {
		order, err = s.repo.Orders.GetByIDForUser(ctx, id, userID)
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.Status != models.OrderStatusPending {
		return nil, ErrOrderNotCancellable
	}

	if err := s.repo.Orders.UpdateStatus(ctx, id, models.OrderStatusCancelled); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusCancelled
	return order, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	order, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if !transitionAllowed(orderTransitions, order.Status, status) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.repo.Orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status

	s.log.Info("статус заказа изменён",
		zap.String("order_id", id.String()),
		zap.String("status", string(status)),
	)
	return order, nil
}

func (s *orderService) shipmentForUser(ctx context.Context, sh *models.Shipment, userID uuid.UUID, role models.Role) (*models.Shipment, error) {
	if sh == nil {
		return nil, ErrShipmentNotFound
	}
	if role == models.RoleAdmin {
		return sh, nil
	}
	order, err := s.repo.Orders.GetByIDForUser(ctx, sh.OrderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrShipmentNotFound
	}
	return sh, nil
}

func (s *orderService) GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	sh, err := s.repo.Shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.shipmentForUser(ctx, sh, userID, role)
}

func (s *orderService) GetShipmentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	sh, err := s.repo.Shipments.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.shipmentForUser(ctx, sh, userID, role)
}

func (s *orderService) ListShipments(ctx context.Context, limit, offset int) ([]models.Shipment, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}

	f := repository.ShipmentListFilter{Limit: limit, Offset: offset}
	if role != models.RoleAdmin {
		f.UserID = &userID
	}
	return s.repo.Shipments.List(ctx, f)
}

func (s *orderService) UpdateShipment(ctx context.Context, id uuid.UUID, in UpdateShipmentInput) (*models.Shipment, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	sh, err := s.repo.Shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, ErrShipmentNotFound
	}

	fields := map[string]any{}
	if in.TrackingNumber != nil {
		fields["tracking_number"] = *in.TrackingNumber
	}
	if in.Carrier != nil {
		fields["carrier"] = *in.Carrier
	}
	if in.ExpectedDelivery != nil {
		fields["expected_delivery"] = *in.ExpectedDelivery
	}
	if in.Status != nil && *in.Status != sh.Status {
		if !transitionAllowed(shipmentTransitions, sh.Status, *in.Status) {
			return nil, ErrInvalidStatusTransition
		}
		fields["status"] = *in.Status

		now := s.now()
		switch *in.Status {
		case models.ShipmentStatusShipped:
			// Фиксируем момент отгрузки один раз
			if sh.ShippedAt == nil {
				fields["shipped_at"] = now
			}
		case models.ShipmentStatusDelivered:
			if sh.DeliveredAt == nil {
				fields["delivered_at"] = now
			}
		}
	}

	if len(fields) > 0 {
		if err := s.repo.Shipments.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	// Доставленное отправление переводит сам заказ в delivered
	if in.Status != nil {
		switch *in.Status {
		case models.ShipmentStatusShipped:
			s.syncOrderStatus(ctx, sh.OrderID, models.OrderStatusShipped)
		case models.ShipmentStatusDelivered:
			s.syncOrderStatus(ctx, sh.OrderID, models.OrderStatusDelivered)
		}
	}

	return s.repo.Shipments.GetByID(ctx, id)
}

func (s *orderService) syncOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) {
	order, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil || order == nil {
		return
	}
	if !transitionAllowed(orderTransitions, order.Status, status) {
		return
	}
	if err := s.repo.Orders.UpdateStatus(ctx, orderID, status); err != nil {
		s.log.Warn("не удалось синхронизировать статус заказа", zap.String("order_id", orderID.String()), zap.Error(err))
	}
}
