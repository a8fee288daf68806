package dto

type AddCartItemRequest struct {
	ProductID   string  `json:"product_id" binding:"required,uuid"`
	VariationID *string `json:"variation_id"`
	Quantity    uint32  `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity uint32 `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	CartID        string `json:"cart_id" binding:"required,uuid"`
	Address       string `json:"address" binding:"required"`
	PhoneNumber   string `json:"phone_number" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateShipmentRequest struct {
	TrackingNumber   *string `json:"tracking_number"`
	Carrier          *string `json:"carrier"`
	Status           *string `json:"status"`
	ExpectedDelivery *string `json:"expected_delivery"` // YYYY-MM-DD
}
