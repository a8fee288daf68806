package handlers

import (
	"net/http"
	"strconv"

	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog service.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// --- Категории ---

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	limit, offset := pagination(c)
	items, total, err := h.catalog.ListCategories(c.Request.Context(), repository.CategoryListFilter{
		Query:  c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[models.Category]{Items: items, Total: total})
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid parent_id", nil))
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), service.CreateCategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    parentID,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	category, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid parent_id", nil))
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), id, service.UpdateCategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    parentID,
		ClearParent: req.ClearParent,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Товары ---

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	limit, offset := pagination(c)

	f := repository.ProductListFilter{
		Query:   c.Query("search"),
		OrderBy: c.Query("ordering"),
		Limit:   limit,
		Offset:  offset,
	}
	if s := c.Query("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid category_id", nil))
			return
		}
		f.CategoryID = &id
	}
	if s := c.Query("in_stock"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid in_stock", nil))
			return
		}
		f.InStock = &v
	}
	if s := c.Query("min_price"); s != "" {
		f.MinPrice = &s
	}
	if s := c.Query("max_price"); s != "" {
		f.MaxPrice = &s
	}

	items, total, err := h.catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	// Аннотации листинга: discount=0.1 добавляет discounted_price,
	// stock_value добавляет price*quantity
	if s := c.Query("discount"); s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			factor := decimal.NewFromInt(1).Sub(d)
			for i := range items {
				v := items[i].Price.Mul(factor).Round(2)
				items[i].DiscountedPrice = &v
			}
		}
	}
	if _, ok := c.GetQuery("stock_value"); ok {
		for i := range items {
			v := items[i].Price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
			items[i].StockValue = &v
		}
	}

	c.JSON(http.StatusOK, dto.ListResponse[models.Product]{Items: items, Total: total})
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid category_id", nil))
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), service.CreateProductInput{
		CategoryID:  categoryID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SKU:         req.SKU,
		Brand:       req.Brand,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid category_id", nil))
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, service.UpdateProductInput{
		CategoryID:  categoryID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SKU:         req.SKU,
		Brand:       req.Brand,
		Price:       req.Price,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) SetProductStock(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	if err := h.catalog.SetProductStock(c.Request.Context(), id, req.Quantity); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// --- Вариации ---

func (h *CatalogHandler) ListVariations(c *gin.Context) {
	limit, offset := pagination(c)

	f := repository.VariationListFilter{
		Name:   c.Query("name"),
		Value:  c.Query("value"),
		Query:  c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}
	if s := c.Query("product_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product_id", nil))
			return
		}
		f.ProductID = &id
	}

	items, total, err := h.catalog.ListVariations(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[models.ProductVariation]{Items: items, Total: total})
}

func (h *CatalogHandler) CreateVariation(c *gin.Context) {
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateVariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	variation, err := h.catalog.CreateVariation(c.Request.Context(), service.CreateVariationInput{
		ProductID: productID,
		Name:      req.Name,
		Value:     req.Value,
		SKU:       req.SKU,
		Price:     req.Price,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, variation)
}

func (h *CatalogHandler) GetVariation(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	variation, err := h.catalog.GetVariation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, variation)
}

func (h *CatalogHandler) UpdateVariation(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateVariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	variation, err := h.catalog.UpdateVariation(c.Request.Context(), id, service.UpdateVariationInput{
		Name:  req.Name,
		Value: req.Value,
		SKU:   req.SKU,
		Price: req.Price,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, variation)
}

func (h *CatalogHandler) DeleteVariation(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteVariation(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) SetVariationStock(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	if err := h.catalog.SetVariationStock(c.Request.Context(), id, req.Quantity); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
