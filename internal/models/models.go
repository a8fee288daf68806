package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Статусы — строковые типы, значения фиксируются CHECK-ограничениями в миграции.

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusReturned  ShipmentStatus = "returned"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Username  string    `gorm:"type:text;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Role      Role      `gorm:"type:text;not null;default:'customer'" json:"role"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Profile *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (User) TableName() string { return "users" }

type UserProfile struct {
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Phone   string    `gorm:"type:text;not null;default:''" json:"phone"`
	Address string    `gorm:"type:text;not null;default:''" json:"address"`
}

func (UserProfile) TableName() string { return "user_profiles" }

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Hash      string    `gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string     `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Slug        string     `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"-"`
	Children []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Name        string          `gorm:"type:text;not null;index" json:"name"`
	Slug        string          `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Description string          `gorm:"type:text;not null;default:''" json:"description"`
	SKU         string          `gorm:"type:text;not null;default:''" json:"sku"`
	Brand       string          `gorm:"type:text;not null;default:''" json:"brand"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null;index" json:"price"`
	// Запас самого товара, когда нет вариаций
	// in_stock пишется явно, без DEFAULT: иначе gorm теряет false при вставке
	Quantity  uint32    `gorm:"type:int;not null;default:0" json:"quantity"`
	InStock   bool      `gorm:"not null;index" json:"in_stock"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Category   *Category          `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Variations []ProductVariation `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variations,omitempty"`

	// Вычисляемые поля листинга, заполняются по запросу
	DiscountedPrice *decimal.Decimal `gorm:"-" json:"discounted_price,omitempty"`
	StockValue      *decimal.Decimal `gorm:"-" json:"stock_value,omitempty"`
}

func (Product) TableName() string { return "products" }

type ProductVariation struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_variations_product_name_value" json:"product_id"`
	Name      string          `gorm:"type:text;not null;uniqueIndex:ux_variations_product_name_value" json:"name"`
	Value     string          `gorm:"type:text;not null;uniqueIndex:ux_variations_product_name_value" json:"value"`
	SKU       string          `gorm:"type:text;not null;default:''" json:"sku"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity  uint32          `gorm:"type:int;not null;default:0" json:"quantity"`
	InStock   bool            `gorm:"not null" json:"in_stock"`
}

func (ProductVariation) TableName() string { return "product_variations" }

type Cart struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CheckedOut bool      `gorm:"not null;default:false;index" json:"checked_out"`
	CreatedAt  time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Cart) TableName() string { return "carts" }

type CartItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null" json:"product_id"`
	VariationID *uuid.UUID `gorm:"type:uuid" json:"variation_id,omitempty"`
	Quantity    uint32     `gorm:"type:int;not null;default:1" json:"quantity"`
	// Снимок цены в момент добавления, при изменении количества не пересчитывается
	Price decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`

	Product   *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variation *ProductVariation `gorm:"foreignKey:VariationID" json:"variation,omitempty"`
}

func (CartItem) TableName() string { return "cart_items" }

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`
	Address       string          `gorm:"type:text;not null" json:"address"`
	PhoneNumber   string          `gorm:"type:text;not null" json:"phone_number"`
	PaymentMethod string          `gorm:"type:text;not null;default:'mpesa'" json:"payment_method"`
	Status        OrderStatus     `gorm:"type:text;not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time       `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Shipment *Shipment   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"shipment,omitempty"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null" json:"product_id"`
	VariationID *uuid.UUID `gorm:"type:uuid" json:"variation_id,omitempty"`
	Quantity    uint32     `gorm:"type:int;not null;default:1" json:"quantity"`
	// Снимок цены единицы на момент оформления заказа
	Price decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`

	Product   *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variation *ProductVariation `gorm:"foreignKey:VariationID" json:"variation,omitempty"`
}

func (OrderItem) TableName() string { return "order_items" }

type Shipment struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	TrackingNumber   *string        `gorm:"type:text" json:"tracking_number,omitempty"`
	Carrier          string         `gorm:"type:text;not null;default:''" json:"carrier"`
	Status           ShipmentStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	ShippedAt        *time.Time     `json:"shipped_at,omitempty"`
	ExpectedDelivery *time.Time     `gorm:"type:date" json:"expected_delivery,omitempty"`
	DeliveredAt      *time.Time     `json:"delivered_at,omitempty"`
}

func (Shipment) TableName() string { return "shipments" }

type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderID     *uuid.UUID      `gorm:"type:uuid;index" json:"order_id,omitempty"`
	PhoneNumber string          `gorm:"type:text;not null" json:"phone_number"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	// CheckoutRequestID от шлюза; пустой, пока шлюз не ответил
	TransactionID *string       `gorm:"type:text;uniqueIndex" json:"transaction_id,omitempty"`
	Status        PaymentStatus `gorm:"type:text;not null;default:'pending';index" json:"status"`
	Method        string        `gorm:"type:text;not null;default:'mpesa'" json:"method"`
	Description   string        `gorm:"type:text;not null;default:''" json:"description"`
	CreatedAt     time.Time     `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:now()" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
