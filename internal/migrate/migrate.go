package migrate

import (
	"context"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateChecks  bool // CHECK-constraint для целостности (только postgres)
	CreateIndexes bool // индексы и UNIQUE
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateChecks:  true,
		CreateIndexes: true,
	}
}

type step struct {
	name string
	sql  string
}

var checkSteps = []step{
	{"orders.status", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('active','paid','no_payment'));`},
	{"orders.closed_at", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_closed_at;
ALTER TABLE orders ADD CONSTRAINT chk_orders_closed_at
  CHECK ((status = 'active') = (closed_at IS NULL));`},
	{"orders.total_amount", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_total_non_negative;
ALTER TABLE orders ADD CONSTRAINT chk_orders_total_non_negative
  CHECK (total_amount >= 0);`},
	{"dining_tables.status", `
ALTER TABLE dining_tables DROP CONSTRAINT IF EXISTS chk_tables_status_allowed;
ALTER TABLE dining_tables ADD CONSTRAINT chk_tables_status_allowed
  CHECK (status IN ('available','occupied'));`},
	{"dining_tables.current_order_id", `
ALTER TABLE dining_tables DROP CONSTRAINT IF EXISTS chk_tables_current_order;
ALTER TABLE dining_tables ADD CONSTRAINT chk_tables_current_order
  CHECK ((status = 'occupied') = (current_order_id IS NOT NULL));`},
	{"order_items.quantity", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0);`},
	{"order_items.type", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_type_allowed;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_type_allowed
  CHECK (type IN ('paid','complimentary'));`},
	{"order_items.complimentary", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_complimentary;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_complimentary
  CHECK (type <> 'complimentary' OR (price = 0 AND is_paid = false));`},
	{"order_items.price", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_price_non_negative;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_price_non_negative
  CHECK (price >= 0);`},
	{"products.price", `
ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_price_non_negative;
ALTER TABLE products ADD CONSTRAINT chk_products_price_non_negative
  CHECK (price >= 0);`},
}

var indexSteps = []step{
	// не больше одного активного заказа на стол
	{"ux_orders_active_table", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_active_table
ON orders (table_id) WHERE status = 'active';`},
	{"ix_orders_status_created", `
CREATE INDEX IF NOT EXISTS ix_orders_status_created
ON orders (status, created_at DESC);`},
}

func MigrateDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных POS", zap.String("dialect", db.Dialector.Name()))
	db = db.WithContext(ctx)

	log.Info("Создание таблиц")
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.StockLogEntry{},
	); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}
	log.Info("Таблицы успешно созданы")

	// sqlite не поддерживает ALTER TABLE ... ADD CONSTRAINT
	if opt.CreateChecks && db.Dialector.Name() == "postgres" {
		log.Info("Создание CHECK-ограничений")
		if err := runSteps(db, log, checkSteps); err != nil {
			return err
		}
		log.Info("CHECK-ограничения успешно созданы")
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов")
		if err := runSteps(db, log, indexSteps); err != nil {
			return err
		}
		log.Info("Индексы успешно созданы")
	}

	log.Info("Миграция базы данных POS успешно завершена")
	return nil
}

func runSteps(db *gorm.DB, log *zap.Logger, steps []step) error {
	for _, s := range steps {
		if err := db.Exec(s.sql).Error; err != nil {
			log.Error("Шаг миграции не выполнен", zap.String("step", s.name), zap.Error(err))
			return err
		}
	}
	return nil
}
