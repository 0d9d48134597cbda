package database

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/trace"
)

// Tx - операции внутри транзакции. Все изменения заказа, баланса и журнала идут через нее.
type Tx interface {
	// LockOrder загружает заказ целиком с блокировкой строки (SELECT ... FOR UPDATE).
	LockOrder(ctx context.Context, orderID int64) (*model.Order, error)
	// LockCourier загружает курьера с блокировкой строки.
	LockCourier(ctx context.Context, courierID int64) (*model.Courier, error)

	// CreateOrder сохраняет новый заказ с группами, позициями, таймлайном и проставляет идентификаторы.
	CreateOrder(ctx context.Context, order *model.Order) error
	// UpdateOrder сохраняет поля заказа, суммы групп и позиций.
	UpdateOrder(ctx context.Context, order *model.Order) error
	UpdateTimeline(ctx context.Context, timeline *model.Timeline) error
	PickOperator(ctx context.Context) (*int64, error)

	UpdateCourierStatus(ctx context.Context, courierID int64, status model.CourierStatus) error
	// CountActiveCourierOrders считает заказы курьера в статусах accepted и shipped, кроме excludeOrderID.
	CountActiveCourierOrders(ctx context.Context, courierID, excludeOrderID int64) (int, error)
	// RecordCourierTransaction блокирует курьера, добавляет запись в журнал и меняет баланс.
	RecordCourierTransaction(ctx context.Context, tr *model.Transaction) error
	AdjustInstitutionBalance(ctx context.Context, institutionID, delta int64) error

	CreatePayment(ctx context.Context, payment *model.Payment) error

	GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error)
	HasPromoUsage(ctx context.Context, userID, promoID int64) (bool, error)
	CreatePromoUsage(ctx context.Context, usage *model.PromoUsage) error
	DeletePromoUsage(ctx context.Context, userID, orderID int64) error
}

type pgTx struct {
	tx     *sqlx.Tx
	tracer trace.Tracer
}

func (t *pgTx) LockOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	ctx, span := t.tracer.Start(ctx, "DB.LockOrder")
	defer span.End()

	return loadOrder(ctx, t.tx, orderID, true)
}

// lockOrderRow берет только блокировку строки заказа, без загрузки агрегата.
func (t *pgTx) lockOrderRow(ctx context.Context, orderID int64) error {
	var id int64
	if err := t.tx.GetContext(ctx, &id, `SELECT id FROM orders WHERE id = $1 FOR UPDATE`, orderID); err != nil {
		return fmt.Errorf("не удалось заблокировать заказ %d: %w", orderID, classify(err))
	}
	return nil
}

func (t *pgTx) LockCourier(ctx context.Context, courierID int64) (*model.Courier, error) {
	ctx, span := t.tracer.Start(ctx, "DB.LockCourier")
	defer span.End()

	var c model.Courier
	if err := t.tx.GetContext(ctx, &c, `SELECT `+courierColumns+` FROM couriers WHERE id = $1 FOR UPDATE`, courierID); err != nil {
		return nil, fmt.Errorf("не удалось заблокировать курьера %d: %w", courierID, classify(err))
	}
	return &c, nil
}

func (t *pgTx) CreateOrder(ctx context.Context, o *model.Order) (err error) {
	ctx, span := t.tracer.Start(ctx, "DB.CreateOrder")
	defer span.End()
	defer func() {
		if err != nil {
			metrics.DBErrors.WithLabelValues("create_order").Inc()
		}
	}()

	orderQuery := `INSERT INTO orders (status, payment_method, products_sum, delivering_sum, total_sum, discount_sum,
		package_amount, package_quantity, is_paid, is_process, self_pickup, customer_id, customer_phone, courier_id,
		operator_id, preparing_time, external_id, receipt_id, card_token, restaurant_status, note, latitude, longitude,
		street, delivery_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		RETURNING id`
	if err = t.tx.GetContext(ctx, &o.ID, orderQuery,
		o.Status, o.PaymentMethod, o.ProductsSum, o.DeliveringSum, o.TotalSum, o.DiscountSum,
		o.PackageAmount, o.PackageQuantity, o.IsPaid, o.IsProcess, o.SelfPickup, o.CustomerID, o.CustomerPhone, o.CourierID,
		o.OperatorID, o.PreparingTime, o.ExternalID, o.ReceiptID, o.CardToken, o.RestaurantStatus, o.Note,
		o.Address.Latitude, o.Address.Longitude, o.Address.Street, o.DeliveryTime, o.CreatedAt,
	); err != nil {
		return fmt.Errorf("ошибка сохранения заказа: %w", classify(err))
	}

	for gi := range o.Groups {
		g := &o.Groups[gi]
		g.OrderID = o.ID
		groupQuery := `INSERT INTO order_item_groups (order_id, institution_id, branch_id, products_sum, delivering_sum, total_sum, commission)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		if err = t.tx.GetContext(ctx, &g.ID, groupQuery,
			o.ID, g.Institution.ID, g.Branch.ID, g.ProductsSum, g.DeliveringSum, g.TotalSum, g.Commission,
		); err != nil {
			return fmt.Errorf("ошибка сохранения группы заказа: %w", classify(err))
		}

		for ii := range g.Items {
			if err = t.insertItem(ctx, g.ID, &g.Items[ii]); err != nil {
				return err
			}
		}
	}

	o.Timeline.OrderID = o.ID
	timelineQuery := `INSERT INTO order_timelines (order_id, preparing_start_at) VALUES ($1, $2)`
	if _, err = t.tx.ExecContext(ctx, timelineQuery, o.ID, o.Timeline.PreparingStartAt); err != nil {
		return fmt.Errorf("ошибка сохранения таймлайна: %w", classify(err))
	}
	return nil
}

func (t *pgTx) insertItem(ctx context.Context, groupID int64, it *model.Item) error {
	it.GroupID = groupID

	options := it.Options
	if options == nil {
		options = []model.Option{}
	}
	optionsArg, err := jsonArg(options)
	if err != nil {
		return fmt.Errorf("ошибка сериализации опций: %w", err)
	}
	var incidentArg any
	if it.IncidentProduct != nil {
		if incidentArg, err = jsonArg(it.IncidentProduct); err != nil {
			return fmt.Errorf("ошибка сериализации замены: %w", err)
		}
	}

	query := `INSERT INTO order_items (group_id, product_id, product_uuid, product_name, price, spic_id, package_code, vat,
		count, total_sum, options, is_incident, incident_product)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	if err := t.tx.GetContext(ctx, &it.ID, query,
		groupID, it.Product.ID, it.Product.UUID, it.Product.Name, it.Product.Price, it.Product.SpicID, it.Product.PackageCode,
		it.Product.VAT, it.Count, it.TotalSum, optionsArg, it.IsIncident, incidentArg,
	); err != nil {
		return fmt.Errorf("ошибка сохранения позиции: %w", classify(err))
	}
	return nil
}

func (t *pgTx) UpdateOrder(ctx context.Context, o *model.Order) error {
	ctx, span := t.tracer.Start(ctx, "DB.UpdateOrder")
	defer span.End()

	query := `UPDATE orders SET status = $2, products_sum = $3, delivering_sum = $4, total_sum = $5, discount_sum = $6,
		is_paid = $7, is_process = $8, courier_id = $9, preparing_time = $10, external_id = $11, receipt_id = $12,
		restaurant_status = $13
		WHERE id = $1`
	if _, err := t.tx.ExecContext(ctx, query,
		o.ID, o.Status, o.ProductsSum, o.DeliveringSum, o.TotalSum, o.DiscountSum,
		o.IsPaid, o.IsProcess, o.CourierID, o.PreparingTime, o.ExternalID, o.ReceiptID, o.RestaurantStatus,
	); err != nil {
		metrics.DBErrors.WithLabelValues("update_order").Inc()
		return fmt.Errorf("ошибка обновления заказа %d: %w", o.ID, classify(err))
	}

	for _, g := range o.Groups {
		groupQuery := `UPDATE order_item_groups SET products_sum = $2, delivering_sum = $3, total_sum = $4, commission = $5 WHERE id = $1`
		if _, err := t.tx.ExecContext(ctx, groupQuery, g.ID, g.ProductsSum, g.DeliveringSum, g.TotalSum, g.Commission); err != nil {
			metrics.DBErrors.WithLabelValues("update_order").Inc()
			return fmt.Errorf("ошибка обновления группы %d: %w", g.ID, classify(err))
		}
		for _, it := range g.Items {
			if _, err := t.tx.ExecContext(ctx, `UPDATE order_items SET total_sum = $2 WHERE id = $1`, it.ID, it.TotalSum); err != nil {
				metrics.DBErrors.WithLabelValues("update_order").Inc()
				return fmt.Errorf("ошибка обновления позиции %d: %w", it.ID, classify(err))
			}
		}
	}
	return nil
}

func (t *pgTx) UpdateTimeline(ctx context.Context, tl *model.Timeline) error {
	ctx, span := t.tracer.Start(ctx, "DB.UpdateTimeline")
	defer span.End()

	query := `INSERT INTO order_timelines (order_id, preparing_start_at, preparing_completed_at, courier_assign_at,
		courier_arrived_at, courier_take_it_at, shipped_at, delivered_at, rejected_at, preparing_lates, courier_lates)
		VALUES (:order_id, :preparing_start_at, :preparing_completed_at, :courier_assign_at, :courier_arrived_at,
		:courier_take_it_at, :shipped_at, :delivered_at, :rejected_at, :preparing_lates, :courier_lates)
		ON CONFLICT (order_id) DO UPDATE SET
		preparing_start_at = EXCLUDED.preparing_start_at, preparing_completed_at = EXCLUDED.preparing_completed_at,
		courier_assign_at = EXCLUDED.courier_assign_at, courier_arrived_at = EXCLUDED.courier_arrived_at,
		courier_take_it_at = EXCLUDED.courier_take_it_at, shipped_at = EXCLUDED.shipped_at,
		delivered_at = EXCLUDED.delivered_at, rejected_at = EXCLUDED.rejected_at,
		preparing_lates = EXCLUDED.preparing_lates, courier_lates = EXCLUDED.courier_lates`
	if _, err := t.tx.NamedExecContext(ctx, query, tl); err != nil {
		metrics.DBErrors.WithLabelValues("update_timeline").Inc()
		return fmt.Errorf("ошибка обновления таймлайна заказа %d: %w", tl.OrderID, classify(err))
	}
	return nil
}

// PickOperator выбирает активного оператора с наименьшим числом незавершенных заказов.
// Без операторов возвращает nil.
func (t *pgTx) PickOperator(ctx context.Context) (*int64, error) {
	ctx, span := t.tracer.Start(ctx, "DB.PickOperator")
	defer span.End()

	query := `SELECT op.id FROM operators op
		LEFT JOIN orders o ON o.operator_id = op.id AND o.status NOT IN ($1, $2)
		WHERE op.is_active
		GROUP BY op.id
		ORDER BY COUNT(o.id), op.id
		LIMIT 1`
	var id int64
	err := classify(t.tx.GetContext(ctx, &id, query, model.StatusClosed, model.StatusRejected))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось выбрать оператора: %w", err)
	}
	return &id, nil
}

func (t *pgTx) UpdateCourierStatus(ctx context.Context, courierID int64, status model.CourierStatus) error {
	ctx, span := t.tracer.Start(ctx, "DB.UpdateCourierStatus")
	defer span.End()

	if _, err := t.tx.ExecContext(ctx, `UPDATE couriers SET status = $2 WHERE id = $1`, courierID, status); err != nil {
		metrics.DBErrors.WithLabelValues("update_courier_status").Inc()
		return fmt.Errorf("ошибка обновления статуса курьера %d: %w", courierID, classify(err))
	}
	return nil
}

func (t *pgTx) CountActiveCourierOrders(ctx context.Context, courierID, excludeOrderID int64) (int, error) {
	ctx, span := t.tracer.Start(ctx, "DB.CountActiveCourierOrders")
	defer span.End()

	var n int
	query := `SELECT COUNT(*) FROM orders WHERE courier_id = $1 AND status IN ($2, $3) AND id <> $4`
	if err := t.tx.GetContext(ctx, &n, query, courierID, model.StatusAccepted, model.StatusShipped, excludeOrderID); err != nil {
		return 0, fmt.Errorf("не удалось посчитать заказы курьера %d: %w", courierID, err)
	}
	return n, nil
}

func (t *pgTx) RecordCourierTransaction(ctx context.Context, tr *model.Transaction) error {
	ctx, span := t.tracer.Start(ctx, "DB.RecordCourierTransaction")
	defer span.End()

	if _, err := t.LockCourier(ctx, tr.CourierID); err != nil {
		return err
	}

	insert := `INSERT INTO courier_transactions (courier_id, order_id, amount, type, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := t.tx.GetContext(ctx, &tr.ID, insert, tr.CourierID, tr.OrderID, tr.Amount, tr.Type, tr.Name, tr.CreatedAt); err != nil {
		metrics.DBErrors.WithLabelValues("record_transaction").Inc()
		return fmt.Errorf("ошибка записи в журнал курьера %d: %w", tr.CourierID, classify(err))
	}

	if _, err := t.tx.ExecContext(ctx, `UPDATE couriers SET balance = balance + $2 WHERE id = $1`, tr.CourierID, tr.Delta()); err != nil {
		metrics.DBErrors.WithLabelValues("record_transaction").Inc()
		return fmt.Errorf("ошибка изменения баланса курьера %d: %w", tr.CourierID, classify(err))
	}

	metrics.LedgerEntries.WithLabelValues(tr.Name, string(tr.Type)).Inc()
	return nil
}

func (t *pgTx) AdjustInstitutionBalance(ctx context.Context, institutionID, delta int64) error {
	ctx, span := t.tracer.Start(ctx, "DB.AdjustInstitutionBalance")
	defer span.End()

	if _, err := t.tx.ExecContext(ctx, `UPDATE institutions SET balance = balance + $2 WHERE id = $1`, institutionID, delta); err != nil {
		metrics.DBErrors.WithLabelValues("adjust_institution_balance").Inc()
		return fmt.Errorf("ошибка изменения баланса заведения %d: %w", institutionID, classify(err))
	}
	return nil
}

func (t *pgTx) CreatePayment(ctx context.Context, p *model.Payment) error {
	ctx, span := t.tracer.Start(ctx, "DB.CreatePayment")
	defer span.End()

	query := `INSERT INTO payments (uuid, order_id, payment_type, payment_method, amount, receipt_required, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := t.tx.GetContext(ctx, &p.ID, query, p.UUID, p.OrderID, p.PaymentType, p.PaymentMethod, p.Amount, p.ReceiptRequired, p.CreatedAt); err != nil {
		metrics.DBErrors.WithLabelValues("create_payment").Inc()
		return fmt.Errorf("ошибка сохранения платежа заказа %d: %w", p.OrderID, classify(err))
	}
	return nil
}

func (t *pgTx) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	ctx, span := t.tracer.Start(ctx, "DB.GetPromoCode")
	defer span.End()

	var p model.PromoCode
	if err := t.tx.GetContext(ctx, &p, `SELECT `+promoColumns+` FROM promo_codes WHERE code = $1`, code); err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

func (t *pgTx) HasPromoUsage(ctx context.Context, userID, promoID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM promo_code_usages WHERE user_id = $1 AND promo_code_id = $2)`
	if err := t.tx.GetContext(ctx, &exists, query, userID, promoID); err != nil {
		return false, fmt.Errorf("не удалось проверить использование промокода: %w", err)
	}
	return exists, nil
}

func (t *pgTx) CreatePromoUsage(ctx context.Context, u *model.PromoUsage) error {
	ctx, span := t.tracer.Start(ctx, "DB.CreatePromoUsage")
	defer span.End()

	query := `INSERT INTO promo_code_usages (user_id, promo_code_id, order_id, used_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := t.tx.GetContext(ctx, &u.ID, query, u.UserID, u.PromoCodeID, u.OrderID, u.UsedAt); err != nil {
		return classify(err)
	}
	return nil
}

func (t *pgTx) DeletePromoUsage(ctx context.Context, userID, orderID int64) error {
	ctx, span := t.tracer.Start(ctx, "DB.DeletePromoUsage")
	defer span.End()

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM promo_code_usages WHERE user_id = $1 AND order_id = $2`, userID, orderID); err != nil {
		metrics.DBErrors.WithLabelValues("delete_promo_usage").Inc()
		return fmt.Errorf("ошибка удаления использования промокода: %w", classify(err))
	}
	return nil
}
