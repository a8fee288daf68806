package repository

import "gorm.io/gorm"

type Repository struct {
	DB         *gorm.DB
	Users      UserRepo
	Refresh    RefreshRepo
	Categories CategoryRepo
	Products   ProductRepo
	Variations VariationRepo
	Carts      CartRepo
	CartItems  CartItemRepo
	Orders     OrderRepo
	OrderItems OrderItemRepo
	Shipments  ShipmentRepo
	Payments   PaymentRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:         db,
		Users:      NewUserRepo(db),
		Refresh:    NewRefreshRepo(db),
		Categories: NewCategoryRepo(db),
		Products:   NewProductRepo(db),
		Variations: NewVariationRepo(db),
		Carts:      NewCartRepo(db),
		CartItems:  NewCartItemRepo(db),
		Orders:     NewOrderRepo(db),
		OrderItems: NewOrderItemRepo(db),
		Shipments:  NewShipmentRepo(db),
		Payments:   NewPaymentRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// Глобальная транзакция на весь набор репо
func (r *Repository) WithTx(fn func(tx *Repository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
