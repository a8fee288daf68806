package dto

import (
	"ecommerce-backend/internal/models"

	"github.com/shopspring/decimal"
)

type InitiatePaymentRequest struct {
	OrderID     *string          `json:"order_id"`
	PhoneNumber string           `json:"phone_number" binding:"required"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
}

type InitiatePaymentResponse struct {
	Message string          `json:"message"`
	Payment *models.Payment `json:"payment"`
}

// Структура callback от M-Pesa: Body.stkCallback
type MpesaCallbackRequest struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string `json:"Name"`
					Value any    `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// ReceiptNumber достаёт номер квитанции из метаданных callback
func (r *MpesaCallbackRequest) ReceiptNumber() string {
	for _, item := range r.Body.StkCallback.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			if s, ok := item.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}

// Ответ, который ожидает шлюз
type MpesaCallbackResponse struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}
