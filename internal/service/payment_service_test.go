package service_test

import (
	"context"
	"errors"
	"testing"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MockPaymentRepo
type MockPaymentRepo struct {
	CreateFunc             func(ctx context.Context, p *models.Payment) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByIDForUserFunc     func(ctx context.Context, id, userID uuid.UUID) (*models.Payment, error)
	GetByTransactionIDFunc func(ctx context.Context, transactionID string) (*models.Payment, error)
	ListFunc               func(ctx context.Context, f repository.PaymentListFilter) ([]models.Payment, int64, error)
	HasSuccessForOrderFunc func(ctx context.Context, orderID uuid.UUID) (bool, error)
	SetTransactionIDFunc   func(ctx context.Context, id uuid.UUID, transactionID string) error
	UpdateStatusFunc       func(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *MockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPaymentRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Payment, error) {
	if m.GetByIDForUserFunc != nil {
		return m.GetByIDForUserFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockPaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	if m.GetByTransactionIDFunc != nil {
		return m.GetByTransactionIDFunc(ctx, transactionID)
	}
	return nil, nil
}

func (m *MockPaymentRepo) List(ctx context.Context, f repository.PaymentListFilter) ([]models.Payment, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return nil, 0, nil
}

func (m *MockPaymentRepo) HasSuccessForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	if m.HasSuccessForOrderFunc != nil {
		return m.HasSuccessForOrderFunc(ctx, orderID)
	}
	return false, nil
}

func (m *MockPaymentRepo) SetTransactionID(ctx context.Context, id uuid.UUID, transactionID string) error {
	if m.SetTransactionIDFunc != nil {
		return m.SetTransactionIDFunc(ctx, id, transactionID)
	}
	return nil
}

func (m *MockPaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

// MockOrderRepo
type MockOrderRepo struct {
	CreateFunc         func(ctx context.Context, o *models.Order) error
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUserFunc func(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	UpdateStatusFunc   func(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	UpdateTotalFunc    func(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	ListFunc           func(ctx context.Context, f repository.OrderListFilter) ([]models.Order, int64, error)
}

func (m *MockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	return nil
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrderRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	if m.GetByIDForUserFunc != nil {
		return m.GetByIDForUserFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockOrderRepo) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	if m.UpdateTotalFunc != nil {
		return m.UpdateTotalFunc(ctx, id, total)
	}
	return nil
}

func (m *MockOrderRepo) List(ctx context.Context, f repository.OrderListFilter) ([]models.Order, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return nil, 0, nil
}

// MockGateway
type MockGateway struct {
	STKPushFunc func(ctx context.Context, phoneNumber string, amount decimal.Decimal, accountReference, description string) (*service.STKPushResult, error)
	Calls       int
}

func (m *MockGateway) STKPush(ctx context.Context, phoneNumber string, amount decimal.Decimal, accountReference, description string) (*service.STKPushResult, error) {
	m.Calls++
	if m.STKPushFunc != nil {
		return m.STKPushFunc(ctx, phoneNumber, amount, accountReference, description)
	}
	return &service.STKPushResult{MerchantRequestID: "mr-1", CheckoutRequestID: "ws_CO_1"}, nil
}

func TestPaymentService_Initiate_RejectsPaidOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	orders := &MockOrderRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: orderID, UserID: userID, Status: models.OrderStatusPaid, TotalAmount: decimal.RequireFromString("50.00")}, nil
		},
	}
	payments := &MockPaymentRepo{
		HasSuccessForOrderFunc: func(ctx context.Context, id uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	gateway := &MockGateway{}
	queue := &MockTaskQueue{}

	repos := &repository.Repository{Orders: orders, Payments: payments}
	svc := service.NewPaymentService(repos, gateway, queue, zap.NewNop())

	_, err := svc.Initiate(customerCtx(userID), service.InitiatePaymentInput{
		OrderID:     &orderID,
		PhoneNumber: "254700000001",
	})
	if !errors.Is(err, service.ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}
	// Отказ происходит до обращения к шлюзу и до постановки задачи
	if gateway.Calls != 0 {
		t.Fatalf("gateway must not be called")
	}
	if len(queue.PaymentProcesses) != 0 {
		t.Fatalf("no task must be enqueued")
	}
}

func TestPaymentService_Initiate_RejectsForeignOrder(t *testing.T) {
	orderID := uuid.New()
	owner := uuid.New()

	orders := &MockOrderRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: orderID, UserID: owner, Status: models.OrderStatusPending}, nil
		},
	}

	repos := &repository.Repository{Orders: orders, Payments: &MockPaymentRepo{}}
	svc := service.NewPaymentService(repos, &MockGateway{}, &MockTaskQueue{}, zap.NewNop())

	_, err := svc.Initiate(customerCtx(uuid.New()), service.InitiatePaymentInput{
		OrderID:     &orderID,
		PhoneNumber: "254700000001",
	})
	if !errors.Is(err, service.ErrOrderNotOwned) {
		t.Fatalf("expected ErrOrderNotOwned, got %v", err)
	}
}

func TestPaymentService_Initiate_EnqueuesProcessing(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	paymentID := uuid.New()

	orders := &MockOrderRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: orderID, UserID: userID, Status: models.OrderStatusPending, TotalAmount: decimal.RequireFromString("120.00")}, nil
		},
	}
	payments := &MockPaymentRepo{
		CreateFunc: func(ctx context.Context, p *models.Payment) error {
			p.ID = paymentID
			return nil
		},
	}
	queue := &MockTaskQueue{}

	repos := &repository.Repository{Orders: orders, Payments: payments}
	svc := service.NewPaymentService(repos, &MockGateway{}, queue, zap.NewNop())

	payment, err := svc.Initiate(customerCtx(userID), service.InitiatePaymentInput{
		OrderID:     &orderID,
		PhoneNumber: "254700000001",
	})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if !payment.Amount.Equal(decimal.RequireFromString("120.00")) {
		t.Fatalf("amount must come from the order, got %s", payment.Amount)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Fatalf("status expected pending got %s", payment.Status)
	}
	if len(queue.PaymentProcesses) != 1 || queue.PaymentProcesses[0] != paymentID {
		t.Fatalf("payment processing must be enqueued, got %v", queue.PaymentProcesses)
	}
}

func TestPaymentService_Process_Idempotent(t *testing.T) {
	paymentID := uuid.New()
	txID := "ws_CO_42"

	var setTx []string
	payments := &MockPaymentRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
			// Платёж уже получил CheckoutRequestID от предыдущей доставки
			return &models.Payment{ID: paymentID, Status: models.PaymentStatusPending, TransactionID: &txID}, nil
		},
		SetTransactionIDFunc: func(ctx context.Context, id uuid.UUID, transactionID string) error {
			setTx = append(setTx, transactionID)
			return nil
		},
	}
	gateway := &MockGateway{}

	repos := &repository.Repository{Payments: payments}
	svc := service.NewPaymentService(repos, gateway, &MockTaskQueue{}, zap.NewNop())

	if err := svc.Process(context.Background(), paymentID); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if gateway.Calls != 0 {
		t.Fatalf("repeat delivery must not hit the gateway")
	}
	if len(setTx) != 0 {
		t.Fatalf("transaction id must not be overwritten")
	}
}

func TestPaymentService_Process_GatewayErrorKeepsPending(t *testing.T) {
	paymentID := uuid.New()

	var statuses []models.PaymentStatus
	payments := &MockPaymentRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
			return &models.Payment{ID: paymentID, Status: models.PaymentStatusPending, Amount: decimal.RequireFromString("10.00"), PhoneNumber: "254700000001"}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
			statuses = append(statuses, status)
			return nil
		},
	}
	gateway := &MockGateway{
		STKPushFunc: func(ctx context.Context, phone string, amount decimal.Decimal, ref, desc string) (*service.STKPushResult, error) {
			return nil, errors.New("gateway down")
		},
	}

	repos := &repository.Repository{Payments: payments}
	svc := service.NewPaymentService(repos, gateway, &MockTaskQueue{}, zap.NewNop())

	// Ошибка уходит наверх для повторной доставки, платёж остаётся pending:
	// push мог дойти до плательщика, failed ставит только callback
	if err := svc.Process(context.Background(), paymentID); err == nil {
		t.Fatalf("expected gateway error")
	}
	if len(statuses) != 0 {
		t.Fatalf("payment status must stay pending, got %v", statuses)
	}
}

func TestPaymentService_HandleCallback(t *testing.T) {
	paymentID := uuid.New()
	orderID := uuid.New()
	txID := "ws_CO_7"

	status := models.PaymentStatusPending
	var orderStatuses []models.OrderStatus

	payments := &MockPaymentRepo{
		GetByTransactionIDFunc: func(ctx context.Context, transactionID string) (*models.Payment, error) {
			if transactionID != txID {
				return nil, nil
			}
			return &models.Payment{ID: paymentID, OrderID: &orderID, Status: status}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uuid.UUID, s models.PaymentStatus) error {
			status = s
			return nil
		},
	}
	orders := &MockOrderRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: orderID, Status: models.OrderStatusPending}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uuid.UUID, s models.OrderStatus) error {
			orderStatuses = append(orderStatuses, s)
			return nil
		},
	}

	repos := &repository.Repository{Payments: payments, Orders: orders}
	svc := service.NewPaymentService(repos, &MockGateway{}, &MockTaskQueue{}, zap.NewNop())

	cb := service.CallbackInput{CheckoutRequestID: txID, ResultCode: 0, ReceiptNumber: "QK12345"}
	if err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if status != models.PaymentStatusSuccess {
		t.Fatalf("payment expected success got %s", status)
	}
	if len(orderStatuses) != 1 || orderStatuses[0] != models.OrderStatusPaid {
		t.Fatalf("order must be marked paid, got %v", orderStatuses)
	}

	// Повторная доставка того же callback ничего не меняет
	if err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("repeat HandleCallback: %v", err)
	}
	if len(orderStatuses) != 1 {
		t.Fatalf("repeat callback must be a no-op, got %v", orderStatuses)
	}

	// Неизвестный CheckoutRequestID
	err := svc.HandleCallback(context.Background(), service.CallbackInput{CheckoutRequestID: "unknown"})
	if !errors.Is(err, service.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestPaymentService_HandleCallback_Failure(t *testing.T) {
	paymentID := uuid.New()
	txID := "ws_CO_9"

	status := models.PaymentStatusPending
	payments := &MockPaymentRepo{
		GetByTransactionIDFunc: func(ctx context.Context, transactionID string) (*models.Payment, error) {
			return &models.Payment{ID: paymentID, Status: status}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uuid.UUID, s models.PaymentStatus) error {
			status = s
			return nil
		},
	}

	repos := &repository.Repository{Payments: payments}
	svc := service.NewPaymentService(repos, &MockGateway{}, &MockTaskQueue{}, zap.NewNop())

	err := svc.HandleCallback(context.Background(), service.CallbackInput{
		CheckoutRequestID: txID,
		ResultCode:        1032,
		ResultDesc:        "Request cancelled by user",
	})
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if status != models.PaymentStatusFailed {
		t.Fatalf("payment expected failed got %s", status)
	}
}
