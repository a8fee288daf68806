package handlers

import (
	"errors"
	"net/http"

	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	payments service.PaymentService
	log      *zap.Logger
}

func NewPaymentHandler(payments service.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	orderID, err := parseOptionalUUID(req.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order_id", nil))
		return
	}

	payment, err := h.payments.Initiate(c.Request.Context(), service.InitiatePaymentInput{
		OrderID:     orderID,
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.InitiatePaymentResponse{
		Message: "Payment initiated. Await STK prompt on your phone.",
		Payment: payment,
	})
}

// Callback принимает результат STK push от шлюза. Без авторизации:
// аутентификация источника — по известному только шлюзу CheckoutRequestID.
// Всегда отвечает кодом 0, иначе шлюз будет ретраить бесконечно.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req dto.MpesaCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("malformed gateway callback", zap.Error(err))
		c.JSON(http.StatusOK, dto.MpesaCallbackResponse{ResultCode: 0, ResultDesc: "Accepted"})
		return
	}

	cb := req.Body.StkCallback
	err := h.payments.HandleCallback(c.Request.Context(), service.CallbackInput{
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
		ReceiptNumber:     req.ReceiptNumber(),
	})
	if err != nil && !errors.Is(err, service.ErrPaymentNotFound) {
		h.log.Error("gateway callback failed", zap.String("checkout_request_id", cb.CheckoutRequestID), zap.Error(err))
	}

	c.JSON(http.StatusOK, dto.MpesaCallbackResponse{ResultCode: 0, ResultDesc: "Accepted"})
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	limit, offset := pagination(c)

	f := repository.PaymentListFilter{Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		status := models.PaymentStatus(s)
		f.Status = &status
	}

	payments, total, err := h.payments.ListPayments(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[models.Payment]{Items: payments, Total: total})
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
