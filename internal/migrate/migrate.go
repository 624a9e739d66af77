package migrate

import (
	"context"

	"bakery-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto для gen_random_uuid()
	CreateChecks           bool // CHECK-constraint для целостности
	CreateIndexes          bool // индексы аналитики, пакетных операций и UNIQUE каталога
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

type step struct {
	name string
	sql  string
}

var checkSteps = []step{
	{"actors.role", `
ALTER TABLE actors DROP CONSTRAINT IF EXISTS chk_actors_role_allowed;
ALTER TABLE actors ADD CONSTRAINT chk_actors_role_allowed
  CHECK (role IN ('MAIN_STORE','STORE','FACTORY'));`},
	{"cakes.price", `
ALTER TABLE cakes DROP CONSTRAINT IF EXISTS chk_cakes_price_non_negative;
ALTER TABLE cakes ADD CONSTRAINT chk_cakes_price_non_negative CHECK (price_cents >= 0);`},
	{"order_lines.state", `
ALTER TABLE order_lines DROP CONSTRAINT IF EXISTS chk_order_lines_state_allowed;
ALTER TABLE order_lines ADD CONSTRAINT chk_order_lines_state_allowed
  CHECK (state IN ('PLACED','ACCEPTED','REJECTED','SHIPPED','RECEIVED','RECEIVED_WITH_CONDITION'));`},
	{"order_lines.quantity", `
ALTER TABLE order_lines DROP CONSTRAINT IF EXISTS chk_order_lines_quantity_gt_zero;
ALTER TABLE order_lines ADD CONSTRAINT chk_order_lines_quantity_gt_zero CHECK (quantity > 0);`},
	{"order_lines.price", `
ALTER TABLE order_lines DROP CONSTRAINT IF EXISTS chk_order_lines_price_non_negative;
ALTER TABLE order_lines ADD CONSTRAINT chk_order_lines_price_non_negative CHECK (price_cents >= 0);`},
	// у дизайнерского заказа нет RECEIVED_WITH_CONDITION
	{"designer_orders.state", `
ALTER TABLE designer_orders DROP CONSTRAINT IF EXISTS chk_designer_orders_state_allowed;
ALTER TABLE designer_orders ADD CONSTRAINT chk_designer_orders_state_allowed
  CHECK (state IN ('PLACED','ACCEPTED','REJECTED','SHIPPED','RECEIVED'));`},
	{"designer_orders.quantity", `
ALTER TABLE designer_orders DROP CONSTRAINT IF EXISTS chk_designer_orders_quantity_gt_zero;
ALTER TABLE designer_orders ADD CONSTRAINT chk_designer_orders_quantity_gt_zero CHECK (quantity > 0);`},
	{"designer_orders.price", `
ALTER TABLE designer_orders DROP CONSTRAINT IF EXISTS chk_designer_orders_price_non_negative;
ALTER TABLE designer_orders ADD CONSTRAINT chk_designer_orders_price_non_negative CHECK (price_cents >= 0);`},
}

var indexSteps = []step{
	{"ux_actors_phone", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_actors_phone ON actors (phone) WHERE phone <> '';`},
	{"ux_cakes_name_weight", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_cakes_name_weight ON cakes (lower(name), weight);`},
	// выборка accept-all / ship-all
	{"ix_order_lines_batch", `
CREATE INDEX IF NOT EXISTS ix_order_lines_batch
ON order_lines (main_order_id, assigned_factory, state);`},
	// аналитика по магазину
	{"ix_order_lines_placed_by_state", `
CREATE INDEX IF NOT EXISTS ix_order_lines_placed_by_state ON order_lines (placed_by, state);`},
	{"ix_main_orders_placed_by_created", `
CREATE INDEX IF NOT EXISTS ix_main_orders_placed_by_created ON main_orders (placed_by, created_at DESC);`},
	{"ix_designer_orders_placed_by_created", `
CREATE INDEX IF NOT EXISTS ix_designer_orders_placed_by_created ON designer_orders (placed_by, created_at DESC);`},
}

func MigrateBakeryDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	db = db.WithContext(ctx)
	log.Info("Начало миграции базы данных пекарни")

	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
	}

	log.Info("Создание таблиц")
	if err := db.AutoMigrate(
		&models.Actor{},
		&models.Cake{},
		&models.MainOrder{},
		&models.OrderLine{},
		&models.DesignerOrder{},
	); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}
	log.Info("Таблицы успешно созданы")

	if opt.CreateUpdatedAtTrigger {
		log.Info("Создание триггеров updated_at")
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_cakes_updated ON cakes;
CREATE TRIGGER trg_cakes_updated BEFORE UPDATE ON cakes
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_order_lines_updated ON order_lines;
CREATE TRIGGER trg_order_lines_updated BEFORE UPDATE ON order_lines
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_designer_orders_updated ON designer_orders;
CREATE TRIGGER trg_designer_orders_updated BEFORE UPDATE ON designer_orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("Не удалось создать триггеры updated_at", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")
		for _, s := range checkSteps {
			if err := db.Exec(s.sql).Error; err != nil {
				log.Error("Не удалось создать CHECK", zap.String("check", s.name), zap.Error(err))
				return err
			}
		}
		log.Info("CHECK-ограничения успешно созданы")
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов")
		for _, s := range indexSteps {
			if err := db.Exec(s.sql).Error; err != nil {
				log.Error("Не удалось создать индекс", zap.String("index", s.name), zap.Error(err))
				return err
			}
		}
		log.Info("Индексы успешно созданы")
	}

	log.Info("Миграция базы данных пекарни успешно завершена")
	return nil
}
