package service

import (
	"context"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InitiatePaymentInput struct {
	OrderID     *uuid.UUID
	PhoneNumber string
	// Сумма обязательна только для платежа без заказа; при наличии заказа
	// берётся его итог
	Amount      *decimal.Decimal
	Description string
}

// CallbackInput — разобранный результат от платёжного шлюза
type CallbackInput struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
}

type PaymentService interface {
	// Создаёт платёж в статусе pending и ставит задачу на STK push
	Initiate(ctx context.Context, in InitiatePaymentInput) (*models.Payment, error)
	// Воркер: вызывает шлюз и записывает CheckoutRequestID
	Process(ctx context.Context, paymentID uuid.UUID) error
	// Идемпотентная обработка callback от шлюза
	HandleCallback(ctx context.Context, in CallbackInput) error

	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context, f repository.PaymentListFilter) ([]models.Payment, int64, error)
}
