package service

import (
	"context"
	"errors"
	"strings"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type catalogService struct {
	repo  *repository.Repository
	tasks TaskQueue
	log   *zap.Logger
}

func NewCatalogService(repo *repository.Repository, tasks TaskQueue, log *zap.Logger) CatalogService {
	return &catalogService{repo: repo, tasks: tasks, log: log}
}

func requireAdmin(ctx context.Context) error {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// Уникальные индексы по name/slug превращаем в доменные ошибки
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugAlreadyExists
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "slug"):
		return ErrSlugAlreadyExists
	case strings.Contains(msg, "name") && strings.Contains(msg, "duplicate"):
		return ErrNameAlreadyExists
	case strings.Contains(msg, "ux_variations_product_name_value"):
		return ErrNameAlreadyExists
	}
	return err
}

// --- Категории ---

func (s *catalogService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.repo.Categories.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrCategoryNotFound
		}
	}

	c := &models.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		ParentID:    in.ParentID,
	}
	if err := s.repo.Categories.Create(ctx, c); err != nil {
		return nil, mapUniqueViolation(err)
	}
	return c, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.repo.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in UpdateCategoryInput) (*models.Category, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	c, err := s.repo.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Slug != nil {
		fields["slug"] = *in.Slug
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.ClearParent {
		fields["parent_id"] = nil
	} else if in.ParentID != nil {
		parent, err := s.repo.Categories.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrCategoryNotFound
		}
		fields["parent_id"] = *in.ParentID
	}

	if len(fields) > 0 {
		if err := s.repo.Categories.UpdateFields(ctx, id, fields); err != nil {
			return nil, mapUniqueViolation(err)
		}
	}
	return s.repo.Categories.GetByID(ctx, id)
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	c, err := s.repo.Categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCategoryNotFound
	}

	inUse, err := s.repo.Categories.HasProducts(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrCategoryInUse
	}

	return s.repo.Categories.Delete(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context, f repository.CategoryListFilter) ([]models.Category, int64, error) {
	return s.repo.Categories.List(ctx, f)
}

// --- Товары ---

func (s *catalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	if in.Price.IsNegative() {
		return nil, ErrAmountInvalid
	}

	category, err := s.repo.Categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	p := &models.Product{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		SKU:         in.SKU,
		Brand:       in.Brand,
		Price:       in.Price,
		Quantity:    in.Quantity,
		InStock:     in.Quantity > 0,
	}
	if err := s.repo.Products.Create(ctx, p); err != nil {
		return nil, mapUniqueViolation(err)
	}
	return p, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *catalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.repo.Products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	fields := map[string]any{}
	if in.CategoryID != nil {
		category, err := s.repo.Categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
		fields["category_id"] = *in.CategoryID
	}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Slug != nil {
		fields["slug"] = *in.Slug
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.SKU != nil {
		fields["sku"] = *in.SKU
	}
	if in.Brand != nil {
		fields["brand"] = *in.Brand
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, ErrAmountInvalid
		}
		fields["price"] = *in.Price
	}

	if len(fields) > 0 {
		if err := s.repo.Products.UpdateFields(ctx, id, fields); err != nil {
			return nil, mapUniqueViolation(err)
		}
	}
	return s.repo.Products.GetByID(ctx, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}

	return s.repo.Products.Delete(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, f repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.Products.List(ctx, f)
}

// --- Вариации ---

func (s *catalogService) CreateVariation(ctx context.Context, in CreateVariationInput) (*models.ProductVariation, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	if in.Price.IsNegative() {
		return nil, ErrAmountInvalid
	}

	product, err := s.repo.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	v := &models.ProductVariation{
		ProductID: in.ProductID,
		Name:      in.Name,
		Value:     in.Value,
		SKU:       in.SKU,
		Price:     in.Price,
		Quantity:  in.Quantity,
		InStock:   in.Quantity > 0,
	}
	if err := s.repo.Variations.Create(ctx, v); err != nil {
		return nil, mapUniqueViolation(err)
	}

	// Доступная вариация возвращает товар в наличие
	if err := s.repo.Products.RefreshInStockFromVariations(ctx, in.ProductID); err != nil {
		s.log.Warn("не удалось пересчитать наличие товара", zap.String("product_id", in.ProductID.String()), zap.Error(err))
	}
	return v, nil
}

func (s *catalogService) GetVariation(ctx context.Context, id uuid.UUID) (*models.ProductVariation, error) {
	v, err := s.repo.Variations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVariationNotFound
	}
	return v, nil
}

func (s *catalogService) UpdateVariation(ctx context.Context, id uuid.UUID, in UpdateVariationInput) (*models.ProductVariation, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	v, err := s.repo.Variations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVariationNotFound
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Value != nil {
		fields["value"] = *in.Value
	}
	if in.SKU != nil {
		fields["sku"] = *in.SKU
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, ErrAmountInvalid
		}
		fields["price"] = *in.Price
	}

	if len(fields) > 0 {
		if err := s.repo.Variations.UpdateFields(ctx, id, fields); err != nil {
			return nil, mapUniqueViolation(err)
		}
	}
	return s.repo.Variations.GetByID(ctx, id)
}

func (s *catalogService) DeleteVariation(ctx context.Context, id uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	v, err := s.repo.Variations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrVariationNotFound
	}

	if err := s.repo.Variations.Delete(ctx, id); err != nil {
		return err
	}
	return s.repo.Products.RefreshInStockFromVariations(ctx, v.ProductID)
}

func (s *catalogService) ListVariations(ctx context.Context, f repository.VariationListFilter) ([]models.ProductVariation, int64, error) {
	return s.repo.Variations.List(ctx, f)
}

// --- Остатки ---

func (s *catalogService) SetProductStock(ctx context.Context, id uuid.UUID, quantity uint32) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}

	return s.tasks.EnqueueProductStockSync(ctx, id, quantity)
}

func (s *catalogService) SetVariationStock(ctx context.Context, id uuid.UUID, quantity uint32) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	v, err := s.repo.Variations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrVariationNotFound
	}

	return s.tasks.EnqueueVariationStockSync(ctx, id, quantity)
}

func (s *catalogService) ApplyProductStock(ctx context.Context, id uuid.UUID, quantity uint32) error {
	found, err := s.repo.Products.SetStock(ctx, id, quantity)
	if err != nil {
		return err
	}
	if !found {
		return ErrProductNotFound
	}
	return nil
}

func (s *catalogService) ApplyVariationStock(ctx context.Context, id uuid.UUID, quantity uint32) error {
	v, err := s.repo.Variations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrVariationNotFound
	}

	if _, err := s.repo.Variations.SetStock(ctx, id, quantity); err != nil {
		return err
	}
	return s.repo.Products.RefreshInStockFromVariations(ctx, v.ProductID)
}

func (s *catalogService) DisableOutOfStockProducts(ctx context.Context) (int64, error) {
	n, err := s.repo.Products.DisableOutOfStock(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("товары без остатка сняты с продажи", zap.Int64("count", n))
	}
	return n, nil
}
