// Package orders ведет заказ по жизненному циклу: создание, смена статусов, назначение курьера
// и расчеты с курьером и заведением.
package orders

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/cache"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"order_lifecycle/internal/payment"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// cancelWindow - сколько времени клиент может сам отменить заказ.
const cancelWindow = time.Minute

// Deps - зависимости контроллера. Kitchen и Cache могут быть nil, Clock по умолчанию time.Now.
type Deps struct {
	Storage  database.Storage
	Notifier Notifier
	Payments Payments
	Kitchen  Kitchen
	Cache    cache.Cache
	Pricing  Pricing
	Branches Branches
	Logger   *zap.Logger
	Clock    func() time.Time
}

// Controller - единственная точка изменения заказа.
type Controller struct {
	storage  database.Storage
	notifier Notifier
	payments Payments
	kitchen  Kitchen
	cache    cache.Cache
	pricing  Pricing
	branches Branches
	log      *zap.Logger
	now      func() time.Time
	tracer   trace.Tracer
}

func NewController(deps Deps) (*Controller, error) {
	if deps.Storage == nil {
		return nil, errors.New("orders: storage is required")
	}
	if deps.Notifier == nil {
		return nil, errors.New("orders: notifier is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("orders: payments are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Controller{
		storage:  deps.Storage,
		notifier: deps.Notifier,
		payments: deps.Payments,
		kitchen:  deps.Kitchen,
		cache:    deps.Cache,
		pricing:  deps.Pricing,
		branches: deps.Branches,
		log:      deps.Logger,
		now:      deps.Clock,
		tracer:   otel.Tracer("orders-controller"),
	}, nil
}

// Get возвращает заказ, сначала из кэша.
func (c *Controller) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	ctx, span := c.tracer.Start(ctx, "Orders.Get", trace.WithAttributes(attribute.Int64("order_id", orderID)))
	defer span.End()

	key := cache.OrderKey(orderID)
	if c.cache != nil {
		if v, ok := c.cache.Get(ctx, key); ok {
			if o, ok := v.(*model.Order); ok {
				return o.Clone(), nil
			}
		}
	}

	o, err := c.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("заказ %d: %w", orderID, err)
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, o.Clone())
	}
	return o, nil
}

func (c *Controller) Invalidate(ctx context.Context, orderID int64) {
	if c.cache != nil {
		c.cache.Delete(ctx, cache.OrderKey(orderID))
	}
}

// transition - результат смены статуса внутри транзакции.
type transition struct {
	order   *model.Order
	actions []notify.Action
	// after - рассылки отдельными заданиями после основного.
	after [][]notify.Action
	// failure - ошибка оплаты; заказ при этом сохраняется в статусе created.
	failure error
}

func (t *transition) notify(actions ...notify.Action) {
	t.actions = append(t.actions, actions...)
}

func customerPush(title, body string) notify.PushMessage {
	return notify.PushMessage{Audience: notify.AudienceCustomer, Title: title, Body: body}
}

func institutionPush(title, body string) notify.PushMessage {
	return notify.PushMessage{Audience: notify.AudienceInstitution, Title: title, Body: body}
}

// UpdateStatus переводит заказ в новый статус под блокировкой строки и выполняет побочные действия статуса.
// preparingTime учитывается только при переходе в accepted.
func (c *Controller) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, preparingTime *int) (*model.Order, error) {
	return c.update(ctx, orderID, status, preparingTime, nil)
}

// update выполняет смену статуса. guard проверяет заблокированный заказ до проверки перехода.
func (c *Controller) update(ctx context.Context, orderID int64, status model.OrderStatus, preparingTime *int, guard func(*model.Order) error) (*model.Order, error) {
	ctx, span := c.tracer.Start(ctx, "Orders.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order_id", orderID), attribute.String("status", string(status))))
	defer span.End()

	log := c.log.With(zap.Int64("order_id", orderID), zap.String("status", string(status)))
	start := time.Now()

	var tr transition
	err := c.storage.InTx(ctx, func(ctx context.Context, tx database.Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(o); err != nil {
				return err
			}
		}
		if err := checkTransition(o, status); err != nil {
			return err
		}

		tr = transition{order: o}
		if err := c.apply(ctx, tx, &tr, status, preparingTime); err != nil {
			return err
		}

		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		return tx.UpdateTimeline(ctx, &o.Timeline)
	})
	metrics.TransitionDuration.WithLabelValues(string(status)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StatusTransitions.WithLabelValues(string(status), resultLabel(err)).Inc()
		if IsClientError(err) {
			log.Info("смена статуса отклонена", zap.Error(err))
		} else {
			log.Error("ошибка смены статуса", zap.Error(err))
		}
		return nil, fmt.Errorf("заказ %d -> %s: %w", orderID, status, err)
	}
	c.Invalidate(ctx, orderID)

	o := tr.order
	if o.Status != model.StatusCreated {
		tr.notify(notify.Realtime{Channels: notify.StatusChannels})
	}
	c.notifier.Enqueue(o, tr.actions...)
	for _, next := range tr.after {
		c.notifier.Enqueue(o, next...)
	}

	if tr.failure != nil {
		metrics.StatusTransitions.WithLabelValues(string(status), "payment_failed").Inc()
		log.Warn("оплата не прошла, заказ возвращен в created", zap.Error(tr.failure))
		return o, tr.failure
	}
	metrics.StatusTransitions.WithLabelValues(string(status), "success").Inc()
	log.Info("статус заказа изменен")
	return o, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrSameStatus):
		return "same_status"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid"
	case errors.Is(err, ErrCourierRequired):
		return "no_courier"
	case errors.Is(err, ErrInProcess):
		return "in_process"
	case errors.Is(err, database.ErrLockTimeout):
		return "lock_timeout"
	default:
		return "error"
	}
}

func (c *Controller) apply(ctx context.Context, tx database.Tx, tr *transition, status model.OrderStatus, preparingTime *int) error {
	o := tr.order
	now := c.now()
	o.Status = status

	switch status {
	case model.StatusAccepted:
		return c.accept(ctx, tr, preparingTime)
	case model.StatusIncident:
		tr.notify(notify.ReadyPool{}, notify.ChatEdit{Kind: notify.EditIncident})
	case model.StatusRejected:
		return c.reject(ctx, tx, tr, now)
	case model.StatusClosed:
		return c.close(ctx, tx, tr, now)
	case model.StatusShipped:
		o.Timeline.ShippedAt = &now
		o.Timeline.PreparingCompletedAt = &now
		o.Timeline.PreparingLates = 0
		if o.PreparingTime != nil && o.Timeline.PreparingStartAt != nil {
			o.Timeline.PreparingLates = int(now.Sub(*o.Timeline.PreparingStartAt).Minutes())
		}
	case model.StatusReady:
		o.Timeline.PreparingCompletedAt = &now
	}
	return nil
}

func (c *Controller) accept(ctx context.Context, tr *transition, preparingTime *int) error {
	o := tr.order
	if o.IsProcess {
		return ErrInProcess
	}
	id := strconv.FormatInt(o.ID, 10)

	acceptedPush := customerPush("Ваш заказ №"+id+" принят заведением", "Ваш заказ принят и скоро будет готов!")
	if o.HasExternalKitchen() {
		acceptedPush = customerPush("Ваш заказ №"+id+" был принят, ждём подтверждения заведения",
			"Ожидаем подтверждения заказа от ресторана. Это может занять до 10-15 минут.")
	}
	pools := func() {
		if !o.DeliveryByOwn() {
			tr.notify(notify.CourierPool{}, notify.ReadyPool{})
		}
	}

	switch {
	case o.PaymentMethod == model.PaymentPayme && !o.IsPaid:
		res, err := c.payments.Charge(ctx, o)
		if err != nil {
			reason := payment.Reason(err)
			o.Status = model.StatusCreated
			tr.notify(
				customerPush("Ошибка оплаты для заказа №"+id, reason),
				notify.ChatEdit{Kind: notify.EditPaymeError, Detail: reason},
			)
			tr.failure = fmt.Errorf("%w: %w", ErrPaymentFailed, err)
			return nil
		}
		o.IsPaid = true
		if res != nil && res.ReceiptID != "" {
			receipt := res.ReceiptID
			o.ReceiptID = &receipt
		}
		pools()
		tr.notify(acceptedPush, customerPush("Оплата прошла!", "Спасибо! Платёж успешно завершён для заказа №"+id+"."))
	case o.PaymentMethod == model.PaymentCash:
		tr.notify(acceptedPush)
		pools()
	}

	if preparingTime != nil && *preparingTime > 0 {
		minutes := *preparingTime
		o.PreparingTime = &minutes
		tr.notify(notify.ChatEdit{Kind: notify.EditAccepted, Minutes: minutes})
	}
	return nil
}

func (c *Controller) reject(ctx context.Context, tx database.Tx, tr *transition, now time.Time) error {
	o := tr.order
	id := strconv.FormatInt(o.ID, 10)
	o.Timeline.RejectedAt = &now

	if err := tx.DeletePromoUsage(ctx, o.CustomerID, o.ID); err != nil {
		return err
	}
	tr.notify(
		notify.ReadyPool{},
		customerPush("Ваш заказ №"+id+" был отклонён", "Заведение не смогло принять заказ."),
		notify.ChatEdit{Kind: notify.EditCancel},
		institutionPush("Заказ №"+id+" отменен", ""),
	)

	o.IsPaid = false
	if o.PaymentMethod == model.PaymentPayme {
		tr.after = append(tr.after, []notify.Action{
			notify.Call{Name: "payme_cancel", Fn: c.payments.Cancel},
			customerPush("Платёж отменён", "Ваш платёж был отменён."),
		})
	}
	return nil
}

func (c *Controller) close(ctx context.Context, tx database.Tx, tr *transition, now time.Time) error {
	o := tr.order
	id := strconv.FormatInt(o.ID, 10)
	g := o.Group()
	if g == nil {
		return fmt.Errorf("у заказа %d нет групп", o.ID)
	}

	o.Timeline.DeliveredAt = &now
	tr.notify(customerPush("Ваш заказ №"+id+" был доставлен", "Ваш заказ был доставлен! Оставьте отзыв пожалуйста."))

	if o.Timeline.CourierTakeItAt != nil {
		minutes := int(now.Sub(*o.Timeline.CourierTakeItAt).Minutes())
		o.Timeline.CourierLates = 0
		if limit := g.Institution.MaxDeliveryTime; minutes > limit {
			o.Timeline.CourierLates = minutes - limit
		}
	} else {
		c.log.Warn("у заказа нет времени выдачи курьеру, опоздание не считается", zap.Int64("order_id", o.ID))
	}

	if !o.IsPaid {
		p := &model.Payment{
			UUID:            uuid.NewString(),
			OrderID:         o.ID,
			PaymentType:     model.PaymentIncome,
			PaymentMethod:   o.PaymentMethod,
			Amount:          o.TotalSum,
			ReceiptRequired: c.payments.ReceiptRequired(),
			CreatedAt:       now,
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}
		o.IsPaid = true
		if p.ReceiptRequired {
			tr.notify(notify.Call{Name: "fiscal_receipt", Fn: func(ctx context.Context, o *model.Order) error {
				c.payments.IssueReceipt(ctx, p, o)
				return nil
			}})
		}
	}

	return settle(ctx, tx, o, now)
}
