package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ecommerce-backend/internal/migrate"
	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/service"
	"ecommerce-backend/pkg/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockTaskQueue записывает поставленные задачи
type MockTaskQueue struct {
	mu sync.Mutex

	ProductStockSyncs   []uuid.UUID
	VariationStockSyncs []uuid.UUID
	PaymentProcesses    []uuid.UUID
	OrderConfirmations  []uuid.UUID
	WelcomeEmails       []uuid.UUID

	Err error
}

func (m *MockTaskQueue) EnqueueProductStockSync(ctx context.Context, productID uuid.UUID, quantity uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProductStockSyncs = append(m.ProductStockSyncs, productID)
	return m.Err
}

func (m *MockTaskQueue) EnqueueVariationStockSync(ctx context.Context, variationID uuid.UUID, quantity uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VariationStockSyncs = append(m.VariationStockSyncs, variationID)
	return m.Err
}

func (m *MockTaskQueue) EnqueuePaymentProcess(ctx context.Context, paymentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentProcesses = append(m.PaymentProcesses, paymentID)
	return m.Err
}

func (m *MockTaskQueue) EnqueueOrderConfirmation(ctx context.Context, orderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderConfirmations = append(m.OrderConfirmations, orderID)
	return m.Err
}

func (m *MockTaskQueue) EnqueueWelcomeEmail(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WelcomeEmails = append(m.WelcomeEmails, userID)
	return m.Err
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func customerCtx(userID uuid.UUID) context.Context {
	ctx := service.WithUserID(context.Background(), userID)
	return service.WithRole(ctx, models.RoleCustomer)
}

func adminCtx(userID uuid.UUID) context.Context {
	ctx := service.WithUserID(context.Background(), userID)
	return service.WithRole(ctx, models.RoleAdmin)
}

type checkoutFixture struct {
	repos   *repository.Repository
	userID  uuid.UUID
	cart    *models.Cart
	product *models.Product
	varied  *models.Product
	vrn     *models.ProductVariation
}

func seedCheckout(t *testing.T, db *gorm.DB) checkoutFixture {
	t.Helper()
	repos := repository.New(db)
	ctx := context.Background()

	cat := &models.Category{Name: "Audio " + uuid.NewString(), Slug: "audio-" + uuid.NewString()}
	if err := repos.Categories.Create(ctx, cat); err != nil {
		t.Fatalf("category: %v", err)
	}

	product := &models.Product{
		CategoryID: cat.ID,
		Name:       "Headphones",
		Slug:       "headphones-" + uuid.NewString(),
		Price:      decimal.RequireFromString("100.00"),
		Quantity:   5,
		InStock:    true,
	}
	if err := repos.Products.Create(ctx, product); err != nil {
		t.Fatalf("product: %v", err)
	}

	varied := &models.Product{
		CategoryID: cat.ID,
		Name:       "Speaker",
		Slug:       "speaker-" + uuid.NewString(),
		Price:      decimal.RequireFromString("80.00"),
		Quantity:   0,
		InStock:    true,
	}
	if err := repos.Products.Create(ctx, varied); err != nil {
		t.Fatalf("varied product: %v", err)
	}
	vrn := &models.ProductVariation{
		ProductID: varied.ID,
		Name:      "color",
		Value:     "black",
		Price:     decimal.RequireFromString("85.50"),
		Quantity:  2,
		InStock:   true,
	}
	if err := repos.Variations.Create(ctx, vrn); err != nil {
		t.Fatalf("variation: %v", err)
	}

	userID := uuid.New()
	cart := &models.Cart{UserID: userID}
	if err := repos.Carts.Create(ctx, cart); err != nil {
		t.Fatalf("cart: %v", err)
	}

	items := []models.CartItem{
		{CartID: cart.ID, ProductID: product.ID, Quantity: 2, Price: product.Price},
		{CartID: cart.ID, ProductID: varied.ID, VariationID: &vrn.ID, Quantity: 1, Price: vrn.Price},
	}
	for i := range items {
		if err := repos.CartItems.Create(ctx, &items[i]); err != nil {
			t.Fatalf("cart item: %v", err)
		}
	}

	return checkoutFixture{repos: repos, userID: userID, cart: cart, product: product, varied: varied, vrn: vrn}
}

func TestOrderService_Checkout(t *testing.T) {
	db := setupDB(t)
	fx := seedCheckout(t, db)

	queue := &MockTaskQueue{}
	svc := service.NewOrderService(fx.repos, queue, zap.NewNop())

	order, err := svc.Checkout(customerCtx(fx.userID), service.CheckoutInput{
		CartID:      fx.cart.ID,
		Address:     "Moi Avenue 12, Nairobi",
		PhoneNumber: "254700000001",
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// 2 * 100.00 + 1 * 85.50
	want := decimal.RequireFromString("285.50")
	if !order.TotalAmount.Equal(want) {
		t.Fatalf("total expected %s got %s", want, order.TotalAmount)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("status expected pending got %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if order.Shipment == nil || order.Shipment.Status != models.ShipmentStatusPending {
		t.Fatalf("shipment must be created as pending, got %+v", order.Shipment)
	}

	ctx := context.Background()
	gotProduct, _ := fx.repos.Products.GetByID(ctx, fx.product.ID)
	if gotProduct.Quantity != 3 {
		t.Fatalf("product stock expected 3 got %d", gotProduct.Quantity)
	}
	gotVrn, _ := fx.repos.Variations.GetByID(ctx, fx.vrn.ID)
	if gotVrn.Quantity != 1 {
		t.Fatalf("variation stock expected 1 got %d", gotVrn.Quantity)
	}

	gotCart, _ := fx.repos.Carts.GetByIDForUser(ctx, fx.cart.ID, fx.userID)
	if !gotCart.CheckedOut {
		t.Fatalf("cart must be checked out")
	}

	if len(queue.OrderConfirmations) != 1 || queue.OrderConfirmations[0] != order.ID {
		t.Fatalf("order confirmation must be enqueued once, got %v", queue.OrderConfirmations)
	}

	// Повторный checkout той же корзины отклоняется
	_, err = svc.Checkout(customerCtx(fx.userID), service.CheckoutInput{
		CartID:      fx.cart.ID,
		Address:     "Moi Avenue 12, Nairobi",
		PhoneNumber: "254700000001",
	})
	if !errors.Is(err, service.ErrCartAlreadyCheckedOut) {
		t.Fatalf("expected ErrCartAlreadyCheckedOut, got %v", err)
	}
	if len(queue.OrderConfirmations) != 1 {
		t.Fatalf("failed checkout must not enqueue confirmation")
	}
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)

	userID := uuid.New()
	cart := &models.Cart{UserID: userID}
	if err := repos.Carts.Create(context.Background(), cart); err != nil {
		t.Fatalf("cart: %v", err)
	}

	svc := service.NewOrderService(repos, &MockTaskQueue{}, zap.NewNop())

	_, err := svc.Checkout(customerCtx(userID), service.CheckoutInput{
		CartID:      cart.ID,
		Address:     "Somewhere",
		PhoneNumber: "254700000001",
	})
	if !errors.Is(err, service.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestOrderService_Checkout_ForeignCart(t *testing.T) {
	db := setupDB(t)
	fx := seedCheckout(t, db)

	svc := service.NewOrderService(fx.repos, &MockTaskQueue{}, zap.NewNop())

	_, err := svc.Checkout(customerCtx(uuid.New()), service.CheckoutInput{
		CartID:      fx.cart.ID,
		Address:     "Somewhere",
		PhoneNumber: "254700000001",
	})
	if !errors.Is(err, service.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound for foreign cart, got %v", err)
	}
}

func TestOrderService_StatusTransitions(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	userID := uuid.New()
	order := &models.Order{UserID: userID, Address: "a", PhoneNumber: "p"}
	if err := repos.Orders.Create(ctx, order); err != nil {
		t.Fatalf("order: %v", err)
	}

	svc := service.NewOrderService(repos, &MockTaskQueue{}, zap.NewNop())
	admin := adminCtx(uuid.New())

	// pending -> delivered запрещён
	if _, err := svc.UpdateOrderStatus(admin, order.ID, models.OrderStatusDelivered); !errors.Is(err, service.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}

	got, err := svc.UpdateOrderStatus(admin, order.ID, models.OrderStatusPaid)
	if err != nil {
		t.Fatalf("pending->paid: %v", err)
	}
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("status expected paid got %s", got.Status)
	}

	// Не-админ менять статус не может
	if _, err := svc.UpdateOrderStatus(customerCtx(userID), order.ID, models.OrderStatusShipped); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Оплаченный заказ уже нельзя отменить владельцу
	if _, err := svc.CancelOrder(customerCtx(userID), order.ID); !errors.Is(err, service.ErrOrderNotCancellable) {
		t.Fatalf("expected ErrOrderNotCancellable, got %v", err)
	}
}

func TestOrderService_CancelPending(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	userID := uuid.New()
	order := &models.Order{UserID: userID, Address: "a", PhoneNumber: "p"}
	if err := repos.Orders.Create(ctx, order); err != nil {
		t.Fatalf("order: %v", err)
	}

	svc := service.NewOrderService(repos, &MockTaskQueue{}, zap.NewNop())

	got, err := svc.CancelOrder(customerCtx(userID), order.ID)
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if got.Status != models.OrderStatusCancelled {
		t.Fatalf("status expected cancelled got %s", got.Status)
	}
}

func TestOrderService_GetShipmentByOrder(t *testing.T) {
	db := setupDB(t)
	fx := seedCheckout(t, db)

	svc := service.NewOrderService(fx.repos, &MockTaskQueue{}, zap.NewNop())

	order, err := svc.Checkout(customerCtx(fx.userID), service.CheckoutInput{
		CartID:      fx.cart.ID,
		Address:     "Moi Avenue 12, Nairobi",
		PhoneNumber: "254700000001",
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	sh, err := svc.GetShipmentByOrder(customerCtx(fx.userID), order.ID)
	if err != nil {
		t.Fatalf("GetShipmentByOrder: %v", err)
	}
	if sh.OrderID != order.ID || sh.Status != models.ShipmentStatusPending {
		t.Fatalf("unexpected shipment: %+v", sh)
	}

	// Чужой пользователь отправление заказа не видит
	if _, err := svc.GetShipmentByOrder(customerCtx(uuid.New()), order.ID); !errors.Is(err, service.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}

	if _, err := svc.GetShipmentByOrder(customerCtx(fx.userID), uuid.New()); !errors.Is(err, service.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound for unknown order, got %v", err)
	}

	lines, err := fx.repos.OrderItems.GetByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(lines))
	}
}
