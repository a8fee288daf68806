package handlers

import (
	"errors"
	"net/http"

	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondServiceError переводит доменные ошибки сервиса в HTTP-ответы
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("authentication required"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("insufficient permissions"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid username or password"))
	case errors.Is(err, service.ErrRefreshInvalid):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("refresh token invalid or expired"))
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, dto.NewConflictError("user with this email or username already exists"))
	case errors.Is(err, service.ErrSlugAlreadyExists):
		c.JSON(http.StatusConflict, dto.NewConflictError("slug already exists"))
	case errors.Is(err, service.ErrNameAlreadyExists):
		c.JSON(http.StatusConflict, dto.NewConflictError("name already exists"))
	case errors.Is(err, service.ErrCategoryInUse):
		c.JSON(http.StatusConflict, dto.NewConflictError("category still has products"))

	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("user not found"))
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("category not found"))
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("product not found"))
	case errors.Is(err, service.ErrVariationNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("variation not found"))
	case errors.Is(err, service.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("cart item not found"))
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
	case errors.Is(err, service.ErrShipmentNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("shipment not found"))
	case errors.Is(err, service.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("payment not found"))

	case errors.Is(err, service.ErrCartNotFound):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Cart not found.", nil))
	case errors.Is(err, service.ErrCartAlreadyCheckedOut):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Cart has already been checked out.", nil))
	case errors.Is(err, service.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Cart is empty.", nil))
	case errors.Is(err, service.ErrQuantityInvalid):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Quantity must be greater than zero.", nil))
	case errors.Is(err, service.ErrAmountInvalid):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Amount must be greater than zero.", nil))
	case errors.Is(err, service.ErrOrderNotOwned):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Cannot pay for someone else's order.", nil))
	case errors.Is(err, service.ErrOrderAlreadyPaid):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Order is already paid.", nil))
	case errors.Is(err, service.ErrOrderNotCancellable):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Order can no longer be cancelled.", nil))
	case errors.Is(err, service.ErrInvalidStatusTransition):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("Invalid status transition.", nil))

	default:
		log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}
