package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskQueue — ручка продьюсера фоновых задач. Передаётся сервисам явно,
// доставка как минимум один раз, обработчики обязаны переживать дубли.
type TaskQueue interface {
	EnqueueProductStockSync(ctx context.Context, productID uuid.UUID, quantity uint32) error
	EnqueueVariationStockSync(ctx context.Context, variationID uuid.UUID, quantity uint32) error
	EnqueuePaymentProcess(ctx context.Context, paymentID uuid.UUID) error
	EnqueueOrderConfirmation(ctx context.Context, orderID uuid.UUID) error
	EnqueueWelcomeEmail(ctx context.Context, userID uuid.UUID) error
}

// STKPushResult — идентификаторы запроса, выданные платёжным шлюзом
type STKPushResult struct {
	MerchantRequestID string
	CheckoutRequestID string
}

// PaymentGateway инициирует push-платёж у внешнего провайдера
type PaymentGateway interface {
	STKPush(ctx context.Context, phoneNumber string, amount decimal.Decimal, accountReference, description string) (*STKPushResult, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type Claims struct {
	UserID uuid.UUID
	Role   string
	Exp    time.Time
}

type TokenProvider interface {
	SignAccess(ctx context.Context, sub uuid.UUID, role string, ttl time.Duration) (string, time.Time, error)
	NewRefresh(ctx context.Context, sub uuid.UUID, ttl time.Duration) (opaque string, hash string, exp time.Time, err error)
	ParseAndValidateAccess(ctx context.Context, token string) (*Claims, error)
}
