package service_test

import (
	"context"
	"errors"
	"testing"

	"ecommerce-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCartService_AddItem_MergesDuplicates(t *testing.T) {
	db := setupDB(t)
	fx := seedCheckout(t, db)
	svc := service.NewCartService(fx.repos)
	ctx := customerCtx(uuid.New())

	first, err := svc.AddItem(ctx, service.AddCartItemInput{ProductID: fx.product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if !first.Price.Equal(fx.product.Price) {
		t.Fatalf("price snapshot expected %s got %s", fx.product.Price, first.Price)
	}

	// Повторное добавление суммирует количество в той же строке
	second, err := svc.AddItem(ctx, service.AddCartItemInput{ProductID: fx.product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("AddItem repeat: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate add must reuse the same row")
	}
	if second.Quantity != 5 {
		t.Fatalf("quantity expected 5 got %d", second.Quantity)
	}

	// Та же позиция с вариацией — отдельная строка со снимком цены вариации
	varied, err := svc.AddItem(ctx, service.AddCartItemInput{ProductID: fx.varied.ID, VariationID: &fx.vrn.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem variation: %v", err)
	}
	if varied.ID == first.ID {
		t.Fatalf("variation line must be separate")
	}
	if !varied.Price.Equal(fx.vrn.Price) {
		t.Fatalf("variation price snapshot expected %s got %s", fx.vrn.Price, varied.Price)
	}

	cart, err := svc.GetOpenCart(ctx)
	if err != nil {
		t.Fatalf("GetOpenCart: %v", err)
	}
	// 5 * 100.00 + 1 * 85.50
	want := decimal.RequireFromString("585.50")
	if !cart.Total.Equal(want) {
		t.Fatalf("total expected %s got %s", want, cart.Total)
	}
}

func TestCartService_AddItem_Validation(t *testing.T) {
	db := setupDB(t)
	fx := seedCheckout(t, db)
	svc := service.NewCartService(fx.repos)
	ctx := customerCtx(uuid.New())

	if _, err := svc.AddItem(ctx, service.AddCartItemInput{ProductID: fx.product.ID, Quantity: 0}); !errors.Is(err, service.ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}
	if _, err := svc.AddItem(ctx, service.AddCartItemInput{ProductID: uuid.New(), Quantity: 1}); !errors.Is(err, service.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	foreign := uuid.New()
	if _, err := svc.AddItem(ctx, service.AddCartItemInput{ProductID: fx.product.ID, VariationID: &foreign, Quantity: 1}); !errors.Is(err, service.ErrVariationNotFound) {
		t.Fatalf("expected ErrVariationNotFound, got %v", err)
	}
}

func TestCartService_UpdateAndRemoveItem(t *testing.T) {
	db := setupDB(t)
	fx := seedCheckout(t, db)
	svc := service.NewCartService(fx.repos)
	userCtx := customerCtx(uuid.New())

	item, err := svc.AddItem(userCtx, service.AddCartItemInput{ProductID: fx.product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	updated, err := svc.UpdateItem(userCtx, item.ID, 7)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Quantity != 7 {
		t.Fatalf("quantity expected 7 got %d", updated.Quantity)
	}

	if _, err := svc.UpdateItem(userCtx, item.ID, 0); !errors.Is(err, service.ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}

	// Чужой пользователь строку не видит
	if _, err := svc.UpdateItem(customerCtx(uuid.New()), item.ID, 1); !errors.Is(err, service.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound for foreign user, got %v", err)
	}

	if err := svc.RemoveItem(userCtx, item.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := svc.RemoveItem(userCtx, item.ID); !errors.Is(err, service.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound after removal, got %v", err)
	}
}

func TestCartService_ClosedCartItemsFrozen(t *testing.T) {
	db := setupDB(t)
	fx := seedCheckout(t, db)
	ctx := context.Background()

	// Помечаем корзину оформленной напрямую
	if err := fx.repos.Carts.MarkCheckedOut(ctx, fx.cart.ID); err != nil {
		t.Fatalf("MarkCheckedOut: %v", err)
	}

	items, err := fx.repos.CartItems.ListByCart(ctx, fx.cart.ID)
	if err != nil || len(items) == 0 {
		t.Fatalf("ListByCart: %v %v", items, err)
	}

	svc := service.NewCartService(fx.repos)
	if _, err := svc.UpdateItem(customerCtx(fx.userID), items[0].ID, 3); !errors.Is(err, service.ErrCartAlreadyCheckedOut) {
		t.Fatalf("expected ErrCartAlreadyCheckedOut, got %v", err)
	}

	// Открытая корзина создаётся заново, старые строки в неё не попадают
	open, err := svc.GetOpenCart(customerCtx(fx.userID))
	if err != nil {
		t.Fatalf("GetOpenCart: %v", err)
	}
	if open.ID == fx.cart.ID {
		t.Fatalf("open cart must be a fresh one")
	}
	if len(open.Items) != 0 {
		t.Fatalf("fresh cart must be empty, got %d items", len(open.Items))
	}
}
