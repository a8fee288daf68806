package migrate

import (
	"context"

	"ecommerce-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto для gen_random_uuid()
	CreateChecks           bool // CHECK-ограничения целостности
	CreateIndexes          bool // индексы и UNIQUE поверх GORM-тегов
	CreateUpdatedAtTrigger bool // триггер обновления updated_at
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных")

	if opt.CreateExtensions {
		if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
	}

	log.Info("Создание таблиц")
	if err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Product{},
		&models.ProductVariation{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Shipment{},
		&models.Payment{},
	); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		if err := db.WithContext(ctx).Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_carts_updated ON carts;
CREATE TRIGGER trg_carts_updated
BEFORE UPDATE ON carts
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_payments_updated ON payments;
CREATE TRIGGER trg_payments_updated
BEFORE UPDATE ON payments
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("Не удалось создать триггеры updated_at", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('pending','paid','shipped','delivered','cancelled'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для статусов заказов", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE shipments
  DROP CONSTRAINT IF EXISTS chk_shipments_status_allowed;
ALTER TABLE shipments
  ADD CONSTRAINT chk_shipments_status_allowed
  CHECK (status IN ('pending','shipped','in_transit','delivered','returned'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для статусов доставки", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE payments
  DROP CONSTRAINT IF EXISTS chk_payments_status_allowed;
ALTER TABLE payments
  ADD CONSTRAINT chk_payments_status_allowed
  CHECK (status IN ('pending','success','failed'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для статусов платежей", zap.Error(err))
			return err
		}

		// Запасы и количества не уходят в минус
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_quantity_non_negative;
ALTER TABLE products
  ADD CONSTRAINT chk_products_quantity_non_negative CHECK (quantity >= 0);

ALTER TABLE product_variations
  DROP CONSTRAINT IF EXISTS chk_variations_quantity_non_negative;
ALTER TABLE product_variations
  ADD CONSTRAINT chk_variations_quantity_non_negative CHECK (quantity >= 0);

ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS chk_cart_items_quantity_gt_zero;
ALTER TABLE cart_items
  ADD CONSTRAINT chk_cart_items_quantity_gt_zero CHECK (quantity > 0);

ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_quantity_gt_zero CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для количеств", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_total_non_negative;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_total_non_negative CHECK (total_amount >= 0);

ALTER TABLE payments
  DROP CONSTRAINT IF EXISTS chk_payments_amount_positive;
ALTER TABLE payments
  ADD CONSTRAINT chk_payments_amount_positive CHECK (amount > 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для сумм", zap.Error(err))
			return err
		}
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов")

		// Уникальность позиции корзины: для вариаций покрывает составной индекс,
		// для строк без вариации нужен частичный — NULL в PostgreSQL не
		// считаются равными друг другу.
		if err := db.WithContext(ctx).Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_cart_items_cart_product_variation
ON cart_items (cart_id, product_id, variation_id)
WHERE variation_id IS NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS ux_cart_items_cart_product_no_variation
ON cart_items (cart_id, product_id)
WHERE variation_id IS NULL;
`).Error; err != nil {
			log.Error("Не удалось создать уникальные индексы cart_items", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_user_created
ON orders (user_id, created_at DESC);

CREATE INDEX IF NOT EXISTS ix_products_category_price
ON products (category_id, price);

CREATE INDEX IF NOT EXISTS ix_products_in_stock_price
ON products (in_stock, price);

CREATE INDEX IF NOT EXISTS ix_payments_user_created
ON payments (user_id, created_at DESC);
`).Error; err != nil {
			log.Error("Не удалось создать индексы", zap.Error(err))
			return err
		}
	}

	log.Info("Миграция базы данных успешно завершена")
	return nil
}
