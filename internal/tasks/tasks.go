package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Имена фоновых задач, общие для продьюсера и воркера
const (
	TaskProductStockSync   = "update_product_stock"
	TaskVariationStockSync = "update_variation_stock"
	TaskPaymentProcess     = "process_payment"
	TaskOrderConfirmation  = "send_order_confirmation_email"
	TaskWelcomeEmail       = "send_welcome_email"
)

// Envelope — конверт задачи в Kafka: имя плюс сырой payload
type Envelope struct {
	Task    string          `json:"task"`
	Payload json.RawMessage `json:"payload"`
}

type StockSyncPayload struct {
	ID       uuid.UUID `json:"id"`
	Quantity uint32    `json:"quantity"`
}

type PaymentProcessPayload struct {
	PaymentID uuid.UUID `json:"payment_id"`
}

type OrderConfirmationPayload struct {
	OrderID uuid.UUID `json:"order_id"`
}

type WelcomeEmailPayload struct {
	UserID uuid.UUID `json:"user_id"`
}
