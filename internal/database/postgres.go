package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Storage определяет интерфейс для работы с хранилищем заказов, курьеров и справочников.
// Изменения заказа выполняются только внутри InTx под блокировкой строки.
type Storage interface {
	// InTx выполняет fn в одной транзакции. Ошибка fn или паника откатывают транзакцию.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)
	GetCourier(ctx context.Context, courierID int64) (*model.Courier, error)
	GetInstitution(ctx context.Context, institutionID int64) (*model.Institution, error)
	GetGlobalSettings(ctx context.Context) (*model.GlobalSettings, error)
	ListBranches(ctx context.Context, institutionID int64) ([]model.Branch, error)
	ListAllBranches(ctx context.Context) ([]model.Branch, error)
	GetProducts(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	GetOptions(ctx context.Context, ids []int64) (map[int64]model.Option, error)

	// ListOrdersForReconciliation возвращает принятые заказы во внешней кухне с незавершенным статусом ресторана.
	ListOrdersForReconciliation(ctx context.Context) ([]model.Order, error)
	SetRestaurantStatus(ctx context.Context, orderID int64, status model.RestaurantStatus) error
	SetExternalID(ctx context.Context, orderID int64, externalID string) error
	StampPreparingStart(ctx context.Context, orderID int64, at time.Time) error

	GetTelegramMessage(ctx context.Context, orderID int64) (*model.TelegramMessage, error)
	SaveTelegramMessage(ctx context.Context, msg *model.TelegramMessage) error

	Close() error
}

// postgresStorage обеспечивает взаимодействие с базой данных PostgreSQL.
// Это конкретная реализация интерфейса Storage.
type postgresStorage struct {
	db          *sqlx.DB
	lockTimeout time.Duration
	log         *zap.Logger
	tracer      trace.Tracer
}

// New создает подключение к БД, применяет миграции и возвращает
// экземпляр, реализующий интерфейс Storage.
func New(dbURL, migrationsPath string, lockTimeout time.Duration, log *zap.Logger) (Storage, error) {
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	if err := runMigrations(dbURL, migrationsPath, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка применения миграций: %w", err)
	}

	return &postgresStorage{
		db:          db,
		lockTimeout: lockTimeout,
		log:         log,
		tracer:      otel.Tracer("postgres-storage"),
	}, nil
}

// runMigrations выполняет миграции БД до последней версии.
func runMigrations(dbURL, migrationsPath string, log *zap.Logger) error {
	log.Info("Поиск и применение миграций", zap.String("path", migrationsPath))

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр миграции: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("не удалось получить версию миграции: %w", err)
	}
	if dirty {
		log.Warn("БД в 'грязном' состоянии (dirty), рекомендуется проверка", zap.Uint("version", version))
	}

	log.Info("Миграции успешно применены", zap.Uint("version", version))
	return nil
}

func (s *postgresStorage) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	ctx, span := s.tracer.Start(ctx, "DB.InTx")
	defer span.End()

	return s.inTx(ctx, func(ctx context.Context, t *pgTx) error {
		return fn(ctx, t)
	})
}

func (s *postgresStorage) inTx(ctx context.Context, fn func(ctx context.Context, t *pgTx) error) (err error) {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		metrics.DBErrors.WithLabelValues("begin").Inc()
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.log.Error("Ошибка отката транзакции", zap.NamedError("cause", err), zap.Error(rbErr))
			}
		}
	}()

	if s.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err = sqlTx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("не удалось установить lock_timeout: %w", err)
		}
	}

	if err = fn(ctx, &pgTx{tx: sqlTx, tracer: s.tracer}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		metrics.DBErrors.WithLabelValues("commit").Inc()
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

func (s *postgresStorage) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	ctx, span := s.tracer.Start(ctx, "DB.GetOrder")
	defer span.End()

	order, err := loadOrder(ctx, s.db, orderID, false)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			metrics.DBErrors.WithLabelValues("get_order").Inc()
		}
		return nil, err
	}
	return order, nil
}

func (s *postgresStorage) GetCourier(ctx context.Context, courierID int64) (*model.Courier, error) {
	ctx, span := s.tracer.Start(ctx, "DB.GetCourier")
	defer span.End()

	var c model.Courier
	if err := s.db.GetContext(ctx, &c, `SELECT `+courierColumns+` FROM couriers WHERE id = $1`, courierID); err != nil {
		return nil, fmt.Errorf("не удалось получить курьера %d: %w", courierID, classify(err))
	}
	return &c, nil
}

func (s *postgresStorage) GetInstitution(ctx context.Context, institutionID int64) (*model.Institution, error) {
	ctx, span := s.tracer.Start(ctx, "DB.GetInstitution")
	defer span.End()

	return getInstitution(ctx, s.db, institutionID)
}

func (s *postgresStorage) GetGlobalSettings(ctx context.Context) (*model.GlobalSettings, error) {
	ctx, span := s.tracer.Start(ctx, "DB.GetGlobalSettings")
	defer span.End()

	var row struct {
		model.DeliverySettings
		model.CommissionSettings
	}
	query := `SELECT min_distance, min_delivery_price, price_per_km, self_pickup_percent, delivery_by_own_percent, ordinary_percent
		FROM global_settings WHERE id = 1`
	if err := s.db.GetContext(ctx, &row, query); err != nil {
		metrics.DBErrors.WithLabelValues("get_global_settings").Inc()
		return nil, fmt.Errorf("не удалось получить настройки платформы: %w", classify(err))
	}
	return &model.GlobalSettings{Delivery: row.DeliverySettings, Commission: row.CommissionSettings}, nil
}

func (s *postgresStorage) ListBranches(ctx context.Context, institutionID int64) ([]model.Branch, error) {
	ctx, span := s.tracer.Start(ctx, "DB.ListBranches")
	defer span.End()

	return listBranches(ctx, s.db, `SELECT `+branchColumns+` FROM branches WHERE institution_id = $1 ORDER BY id`, institutionID)
}

// ListAllBranches извлекает все филиалы для прогрева кэша.
func (s *postgresStorage) ListAllBranches(ctx context.Context) ([]model.Branch, error) {
	ctx, span := s.tracer.Start(ctx, "DB.ListAllBranches")
	defer span.End()

	return listBranches(ctx, s.db, `SELECT `+branchColumns+` FROM branches WHERE NOT is_deleted ORDER BY institution_id, id`)
}

func (s *postgresStorage) GetProducts(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	ctx, span := s.tracer.Start(ctx, "DB.GetProducts")
	defer span.End()

	var products []model.Product
	query := `SELECT id, uuid, name, price, spic_id, package_code, vat FROM products WHERE id = ANY($1)`
	if err := s.db.SelectContext(ctx, &products, query, pq.Array(ids)); err != nil {
		metrics.DBErrors.WithLabelValues("get_products").Inc()
		return nil, fmt.Errorf("не удалось получить продукты: %w", err)
	}

	result := make(map[int64]model.Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (s *postgresStorage) GetOptions(ctx context.Context, ids []int64) (map[int64]model.Option, error) {
	ctx, span := s.tracer.Start(ctx, "DB.GetOptions")
	defer span.End()

	result := make(map[int64]model.Option, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var options []model.Option
	query := `SELECT id, uuid, title, adding_price FROM product_options WHERE id = ANY($1)`
	if err := s.db.SelectContext(ctx, &options, query, pq.Array(ids)); err != nil {
		metrics.DBErrors.WithLabelValues("get_options").Inc()
		return nil, fmt.Errorf("не удалось получить опции: %w", err)
	}
	for _, o := range options {
		result[o.ID] = o
	}
	return result, nil
}

func (s *postgresStorage) ListOrdersForReconciliation(ctx context.Context) ([]model.Order, error) {
	ctx, span := s.tracer.Start(ctx, "DB.ListOrdersForReconciliation")
	defer span.End()

	var ids []int64
	query := `SELECT id FROM orders
		WHERE status = $1 AND external_id IS NOT NULL
		AND (restaurant_status IS NULL OR restaurant_status = ANY($2))
		ORDER BY id`
	open := pq.Array([]string{
		string(model.RestaurantNew), string(model.RestaurantCooking), string(model.RestaurantAccepted),
	})
	if err := s.db.SelectContext(ctx, &ids, query, model.StatusAccepted, open); err != nil {
		metrics.DBErrors.WithLabelValues("list_reconciliation").Inc()
		return nil, fmt.Errorf("не удалось получить заказы для сверки: %w", err)
	}

	orders := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		o, err := loadOrder(ctx, s.db, id, false)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (s *postgresStorage) SetRestaurantStatus(ctx context.Context, orderID int64, status model.RestaurantStatus) error {
	ctx, span := s.tracer.Start(ctx, "DB.SetRestaurantStatus")
	defer span.End()

	return s.lockedExec(ctx, "set_restaurant_status", orderID,
		`UPDATE orders SET restaurant_status = $2 WHERE id = $1`, orderID, status)
}

func (s *postgresStorage) SetExternalID(ctx context.Context, orderID int64, externalID string) error {
	ctx, span := s.tracer.Start(ctx, "DB.SetExternalID")
	defer span.End()

	return s.lockedExec(ctx, "set_external_id", orderID,
		`UPDATE orders SET external_id = $2 WHERE id = $1`, orderID, externalID)
}

func (s *postgresStorage) StampPreparingStart(ctx context.Context, orderID int64, at time.Time) error {
	ctx, span := s.tracer.Start(ctx, "DB.StampPreparingStart")
	defer span.End()

	return s.lockedExec(ctx, "stamp_preparing_start", orderID,
		`UPDATE order_timelines SET preparing_start_at = $2 WHERE order_id = $1`, orderID, at)
}

func (s *postgresStorage) GetTelegramMessage(ctx context.Context, orderID int64) (*model.TelegramMessage, error) {
	ctx, span := s.tracer.Start(ctx, "DB.GetTelegramMessage")
	defer span.End()

	var msg model.TelegramMessage
	query := `SELECT order_id, message_id, message_id2, text FROM telegram_messages WHERE order_id = $1`
	if err := s.db.GetContext(ctx, &msg, query, orderID); err != nil {
		return nil, fmt.Errorf("не удалось получить сообщение заказа %d: %w", orderID, classify(err))
	}
	return &msg, nil
}

func (s *postgresStorage) SaveTelegramMessage(ctx context.Context, msg *model.TelegramMessage) error {
	ctx, span := s.tracer.Start(ctx, "DB.SaveTelegramMessage")
	defer span.End()

	query := `INSERT INTO telegram_messages (order_id, message_id, message_id2, text) VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id) DO UPDATE
		SET message_id = EXCLUDED.message_id, message_id2 = EXCLUDED.message_id2, text = EXCLUDED.text`
	return s.exec(ctx, "save_telegram_message", query, msg.OrderID, msg.MessageID, msg.MessageID2, msg.Text)
}

func (s *postgresStorage) exec(ctx context.Context, op, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		metrics.DBErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("ошибка запроса %s: %w", op, classify(err))
	}
	return nil
}

// lockedExec выполняет точечную запись в своей транзакции под блокировкой строки заказа.
func (s *postgresStorage) lockedExec(ctx context.Context, op string, orderID int64, query string, args ...any) error {
	return s.inTx(ctx, func(ctx context.Context, t *pgTx) error {
		if err := t.lockOrderRow(ctx, orderID); err != nil {
			return err
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			metrics.DBErrors.WithLabelValues(op).Inc()
			return fmt.Errorf("ошибка запроса %s: %w", op, classify(err))
		}
		return nil
	})
}

// Close закрывает соединение с БД.
func (s *postgresStorage) Close() error {
	return s.db.Close()
}
