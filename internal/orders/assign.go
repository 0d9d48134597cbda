package orders

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/assignment"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/i18n"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AssignResult - ответ курьеру на попытку взять заказ.
type AssignResult struct {
	Status  bool         `json:"status"`
	Message i18n.Message `json:"message"`
	Order   *model.Order `json:"order,omitempty"`
}

// Cancel отменяет заказ. Без ignoreConstraints отмена возможна только в первую минуту
// и пока на заказ не назначен курьер.
func (c *Controller) Cancel(ctx context.Context, orderID int64, ignoreConstraints bool) (*model.Order, error) {
	var guard func(*model.Order) error
	if !ignoreConstraints {
		guard = func(o *model.Order) error {
			if o.CourierID != nil || c.now().Sub(o.CreatedAt) > cancelWindow {
				return ErrCancelNotAllowed
			}
			return nil
		}
	}
	return c.update(ctx, orderID, model.StatusRejected, nil, guard)
}

// AssignCourier назначает курьера на заказ. Отказ валидатора и отсутствующий заказ
// возвращаются в результате со Status=false, а не ошибкой.
func (c *Controller) AssignCourier(ctx context.Context, orderID, courierID int64) (*AssignResult, error) {
	ctx, span := c.tracer.Start(ctx, "Orders.AssignCourier", trace.WithAttributes(
		attribute.Int64("order_id", orderID), attribute.Int64("courier_id", courierID)))
	defer span.End()

	log := c.log.With(zap.Int64("order_id", orderID), zap.Int64("courier_id", courierID))

	var order *model.Order
	var rejection *assignment.Rejection
	err := c.storage.InTx(ctx, func(ctx context.Context, tx database.Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		courier, err := tx.LockCourier(ctx, courierID)
		if errors.Is(err, database.ErrNotFound) {
			return ErrCourierNotFound
		}
		if err != nil {
			return err
		}

		active, err := tx.CountActiveCourierOrders(ctx, courierID, orderID)
		if err != nil {
			return err
		}
		if rejection = assignment.Validate(o, courier, active); rejection != nil {
			return nil
		}

		now := c.now()
		o.CourierID = &courierID
		o.Courier = courier
		o.Timeline.CourierAssignAt = &now
		o.Timeline.PreparingStartAt = &now

		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.UpdateTimeline(ctx, &o.Timeline); err != nil {
			return err
		}
		if err := tx.UpdateCourierStatus(ctx, courierID, model.CourierDelivering); err != nil {
			return err
		}
		courier.Status = model.CourierDelivering
		order = o
		return nil
	})

	switch {
	case errors.Is(err, database.ErrNotFound):
		metrics.CourierAssignments.WithLabelValues("not_found").Inc()
		log.Warn("заказ для назначения курьера не найден")
		return &AssignResult{Status: false, Message: i18n.OrderNotFound}, nil
	case err != nil:
		metrics.CourierAssignments.WithLabelValues("error").Inc()
		log.Error("ошибка назначения курьера", zap.Error(err))
		return nil, fmt.Errorf("назначение курьера %d на заказ %d: %w", courierID, orderID, err)
	case rejection != nil:
		metrics.CourierAssignments.WithLabelValues(string(rejection.Reason)).Inc()
		log.Info("назначение курьера отклонено", zap.String("reason", string(rejection.Reason)))
		return &AssignResult{Status: false, Message: rejection.Message}, nil
	}
	c.Invalidate(ctx, orderID)

	id := strconv.FormatInt(order.ID, 10)
	actions := []notify.Action{
		customerPush("На ваш заказ №"+id+" назначен курьер",
			"К заказу №"+id+" назначен курьер. Ожидайте доставку в ближайшее время."),
		notify.ChatSend{Kind: notify.SendCourier},
		notify.Realtime{Channels: []notify.ChannelKind{notify.ChannelCourier, notify.ChannelOperator, notify.ChannelInstitution}},
		notify.ReadyPool{},
	}
	if g := order.Group(); c.kitchen != nil && g != nil && g.Institution.KitchenIntegrated() && !order.HasExternalKitchen() {
		actions = append(actions, notify.Call{Name: "kitchen_create", Fn: c.createKitchenOrder})
	}
	actions = append(actions, institutionPush("Заказ №"+id+" принят курьером", ""))
	c.notifier.Enqueue(order, actions...)

	metrics.CourierAssignments.WithLabelValues("success").Inc()
	log.Info("курьер назначен на заказ")
	return &AssignResult{Status: true, Order: order}, nil
}

// createKitchenOrder передает заказ во внешнюю кухонную систему и сохраняет полученный id.
func (c *Controller) createKitchenOrder(ctx context.Context, o *model.Order) error {
	externalID, err := c.kitchen.CreateOrder(ctx, o)
	if err != nil {
		return fmt.Errorf("создание заказа во внешней кухне: %w", err)
	}
	if err := c.storage.SetExternalID(ctx, o.ID, externalID); err != nil {
		return err
	}
	c.Invalidate(ctx, o.ID)
	c.log.Info("заказ передан во внешнюю кухню", zap.Int64("order_id", o.ID), zap.String("external_id", externalID))
	return nil
}

// TopUp пополняет баланс курьера через журнал.
func (c *Controller) TopUp(ctx context.Context, courierID, amount int64) (*model.Transaction, error) {
	ctx, span := c.tracer.Start(ctx, "Orders.TopUp", trace.WithAttributes(attribute.Int64("courier_id", courierID)))
	defer span.End()

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	tr := &model.Transaction{
		CourierID: courierID,
		Amount:    amount,
		Type:      model.TransactionIn,
		Name:      model.LedgerTopUp,
		CreatedAt: c.now(),
	}
	err := c.storage.InTx(ctx, func(ctx context.Context, tx database.Tx) error {
		return tx.RecordCourierTransaction(ctx, tr)
	})
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrCourierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("пополнение баланса курьера %d: %w", courierID, err)
	}
	c.log.Info("баланс курьера пополнен", zap.Int64("courier_id", courierID), zap.Int64("amount", amount))
	return tr, nil
}
