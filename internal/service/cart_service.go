package service

import (
	"context"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type cartService struct {
	repo *repository.Repository
}

func NewCartService(repo *repository.Repository) CartService {
	return &cartService{repo: repo}
}

func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (s *cartService) openCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.Carts.GetOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &models.Cart{UserID: userID}
	if err := s.repo.Carts.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) GetOpenCart(ctx context.Context) (*CartView, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := s.openCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.CartItems.ListByCart(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return &CartView{Cart: *cart, Total: cartTotal(items)}, nil
}

func (s *cartService) ListCarts(ctx context.Context, limit, offset int) ([]CartView, int64, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}

	carts, total, err := s.repo.Carts.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	views := make([]CartView, 0, len(carts))
	for _, c := range carts {
		views = append(views, CartView{Cart: c, Total: cartTotal(c.Items)})
	}
	return views, total, nil
}

func (s *cartService) GetCart(ctx context.Context, id uuid.UUID) (*CartView, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.Carts.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	return &CartView{Cart: *cart, Total: cartTotal(cart.Items)}, nil
}

func (s *cartService) AddItem(ctx context.Context, in AddCartItemInput) (*models.CartItem, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if in.Quantity == 0 {
		return nil, ErrQuantityInvalid
	}

	product, err := s.repo.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	// Снимок цены: вариация, если указана, иначе сам товар
	price := product.Price
	if in.VariationID != nil {
		variation, err := s.repo.Variations.GetForProduct(ctx, *in.VariationID, in.ProductID)
		if err != nil {
			return nil, err
		}
		if variation == nil {
			return nil, ErrVariationNotFound
		}
		price = variation.Price
	}

	cart, err := s.openCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Повторное добавление того же сочетания товар+вариация суммирует количество
	existing, err := s.repo.CartItems.Find(ctx, cart.ID, in.ProductID, in.VariationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.repo.CartItems.IncrementQuantity(ctx, existing.ID, in.Quantity); err != nil {
			return nil, err
		}
		return s.repo.CartItems.GetByID(ctx, existing.ID)
	}

	item := &models.CartItem{
		CartID:      cart.ID,
		ProductID:   in.ProductID,
		VariationID: in.VariationID,
		Quantity:    in.Quantity,
		Price:       price,
	}
	if err := s.repo.CartItems.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) ownedOpenItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	item, err := s.repo.CartItems.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}

	cart, err := s.repo.Carts.GetByIDForUser(ctx, item.CartID, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartItemNotFound
	}
	if cart.CheckedOut {
		return nil, ErrCartAlreadyCheckedOut
	}
	return item, nil
}

func (s *cartService) UpdateItem(ctx context.Context, itemID uuid.UUID, quantity uint32) (*models.CartItem, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		return nil, ErrQuantityInvalid
	}

	item, err := s.ownedOpenItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CartItems.UpdateQuantity(ctx, item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	item, err := s.ownedOpenItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	return s.repo.CartItems.Delete(ctx, item.ID)
}
