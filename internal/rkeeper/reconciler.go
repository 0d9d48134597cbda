package rkeeper

import (
	"context"
	"fmt"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=reconciler.go -destination=./mocks/reconciler_mock.go -package=mocks

// Store - записи заказов, которые меняет сверка.
type Store interface {
	ListOrdersForReconciliation(ctx context.Context) ([]model.Order, error)
	SetRestaurantStatus(ctx context.Context, orderID int64, status model.RestaurantStatus) error
	StampPreparingStart(ctx context.Context, orderID int64, at time.Time) error
}

// StatusSource отдает статус заказа в кухонной системе.
type StatusSource interface {
	GetOrderStatus(ctx context.Context, inst *model.Institution, externalID string) (model.RestaurantStatus, error)
}

// Orders - смена статуса заказа через общий контроллер.
type Orders interface {
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, preparingTime *int) (*model.Order, error)
	Invalidate(ctx context.Context, orderID int64)
}

type Notifier interface {
	Enqueue(order *model.Order, actions ...notify.Action) string
}

// Reconciler периодически опрашивает кухню по принятым заказам и переносит ее статусы в заказ.
type Reconciler struct {
	store    Store
	kitchen  StatusSource
	orders   Orders
	notifier Notifier
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewReconciler(store Store, kitchen StatusSource, orders Orders, n Notifier, interval time.Duration, log *zap.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		kitchen:  kitchen,
		orders:   orders,
		notifier: n,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run опрашивает кухню каждые interval до отмены контекста.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.log.Info("Сверка с кухонной системой запущена", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Сверка с кухонной системой остановлена")
			return
		case <-ticker.C:
			if err := r.Poll(ctx); err != nil {
				r.log.Error("ошибка сверки с кухней", zap.Error(err))
			}
		}
	}
}

// Poll выполняет один проход сверки. Ошибка по отдельному заказу не прерывает проход.
func (r *Reconciler) Poll(ctx context.Context) error {
	list, err := r.store.ListOrdersForReconciliation(ctx)
	if err != nil {
		metrics.ReconciliationPolls.WithLabelValues("error").Inc()
		return err
	}
	for i := range list {
		result := r.reconcile(ctx, &list[i])
		metrics.ReconciliationPolls.WithLabelValues(result).Inc()
	}
	return nil
}

func known(s model.RestaurantStatus) bool {
	switch s {
	case model.RestaurantNew, model.RestaurantCooking, model.RestaurantAccepted,
		model.RestaurantReady, model.RestaurantCancelled:
		return true
	}
	return false
}

func (r *Reconciler) reconcile(ctx context.Context, o *model.Order) string {
	g := o.Group()
	if g == nil || !o.HasExternalKitchen() {
		return "skipped"
	}
	log := r.log.With(zap.Int64("order_id", o.ID), zap.String("external_id", *o.ExternalID))

	status, err := r.kitchen.GetOrderStatus(ctx, &g.Institution, *o.ExternalID)
	if err != nil {
		log.Warn("не удалось получить статус с кухни", zap.Error(err))
		return "error"
	}
	if !known(status) {
		log.Warn("неизвестный статус кухни", zap.String("status", string(status)))
		return "skipped"
	}
	if o.RestaurantStatus != nil && *o.RestaurantStatus == status {
		return "unchanged"
	}

	if err := r.store.SetRestaurantStatus(ctx, o.ID, status); err != nil {
		log.Error("не удалось сохранить статус кухни", zap.Error(err))
		return "error"
	}
	o.RestaurantStatus = &status
	r.orders.Invalidate(ctx, o.ID)
	log.Info("статус кухни изменился", zap.String("status", string(status)))

	switch status {
	case model.RestaurantAccepted:
		now := r.now()
		if err := r.store.StampPreparingStart(ctx, o.ID, now); err != nil {
			log.Error("не удалось отметить начало приготовления", zap.Error(err))
			return "error"
		}
		r.orders.Invalidate(ctx, o.ID)
		o.Timeline.PreparingStartAt = &now
		r.notifier.Enqueue(o, notify.PushMessage{
			Audience: notify.AudienceCustomer,
			Title:    fmt.Sprintf("Ваш заказ №%d принят заведением", o.ID),
			Body:     "Ваш заказ принят заведением и скоро будет готов!",
		})
	case model.RestaurantReady:
		return r.move(ctx, log, o.ID, model.StatusReady)
	case model.RestaurantCancelled:
		return r.move(ctx, log, o.ID, model.StatusRejected)
	}
	return "changed"
}

func (r *Reconciler) move(ctx context.Context, log *zap.Logger, orderID int64, status model.OrderStatus) string {
	if _, err := r.orders.UpdateStatus(ctx, orderID, status, nil); err != nil {
		log.Warn("не удалось сменить статус по данным кухни", zap.String("status", string(status)), zap.Error(err))
		return "error"
	}
	return "changed"
}
