package handlers

import (
	"net/http"

	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts service.CartService
	log   *zap.Logger
}

func NewCartHandler(carts service.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

func (h *CartHandler) GetOpenCart(c *gin.Context) {
	cart, err := h.carts.GetOpenCart(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) ListCarts(c *gin.Context) {
	limit, offset := pagination(c)
	carts, total, err := h.carts.ListCarts(c.Request.Context(), limit, offset)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[service.CartView]{Items: carts, Total: total})
}

func (h *CartHandler) GetCart(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	cart, err := h.carts.GetCart(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product_id", nil))
		return
	}
	variationID, err := parseOptionalUUID(req.VariationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid variation_id", nil))
		return
	}

	item, err := h.carts.AddItem(c.Request.Context(), service.AddCartItemInput{
		ProductID:   productID,
		VariationID: variationID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	item, err := h.carts.UpdateItem(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.carts.RemoveItem(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
