package handlers

import (
	"net/http"
	"time"

	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid cart_id", nil))
		return
	}

	order, err := h.orders.Checkout(c.Request.Context(), service.CheckoutInput{
		CartID:        cartID,
		Address:       req.Address,
		PhoneNumber:   req.PhoneNumber,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	limit, offset := pagination(c)

	f := repository.OrderListFilter{Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		status := models.OrderStatus(s)
		f.Status = &status
	}

	orders, total, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[models.Order]{Items: orders, Total: total})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListShipments(c *gin.Context) {
	limit, offset := pagination(c)
	shipments, total, err := h.orders.ListShipments(c.Request.Context(), limit, offset)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[models.Shipment]{Items: shipments, Total: total})
}

func (h *OrderHandler) GetOrderShipment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	shipment, err := h.orders.GetShipmentByOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h *OrderHandler) GetShipment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	shipment, err := h.orders.GetShipment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h *OrderHandler) UpdateShipment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	in := service.UpdateShipmentInput{
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
	}
	if req.Status != nil {
		status := models.ShipmentStatus(*req.Status)
		in.Status = &status
	}
	if req.ExpectedDelivery != nil {
		t, err := time.Parse("2006-01-02", *req.ExpectedDelivery)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid expected_delivery, want YYYY-MM-DD", nil))
			return
		}
		in.ExpectedDelivery = &t
	}

	shipment, err := h.orders.UpdateShipment(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}
