package rkeeper

import (
	"context"
	"errors"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"order_lifecycle/internal/rkeeper/mocks"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

type reconcilerEnv struct {
	r        *Reconciler
	store    *mocks.MockStore
	kitchen  *mocks.MockStatusSource
	orders   *mocks.MockOrders
	notifier *mocks.MockNotifier
	now      time.Time
}

func newReconcilerEnv(t *testing.T) *reconcilerEnv {
	ctrl := gomock.NewController(t)
	e := &reconcilerEnv{
		store:    mocks.NewMockStore(ctrl),
		kitchen:  mocks.NewMockStatusSource(ctrl),
		orders:   mocks.NewMockOrders(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	e.r = NewReconciler(e.store, e.kitchen, e.orders, e.notifier, time.Minute, zaptest.NewLogger(t))
	e.r.now = func() time.Time { return e.now }
	return e
}

func accepted(id int64, external string, rs *model.RestaurantStatus) model.Order {
	return model.Order{
		ID:               id,
		Status:           model.StatusAccepted,
		ExternalID:       ptr(external),
		RestaurantStatus: rs,
		Groups:           []model.ItemGroup{{Institution: model.Institution{ID: 3}}},
	}
}

func TestReconciler_ReadyMovesOrder(t *testing.T) {
	e := newReconcilerEnv(t)
	e.store.EXPECT().ListOrdersForReconciliation(gomock.Any()).
		Return([]model.Order{accepted(1, "rk-1", ptr(model.RestaurantCooking))}, nil)
	e.kitchen.EXPECT().GetOrderStatus(gomock.Any(), gomock.Any(), "rk-1").Return(model.RestaurantReady, nil)
	gomock.InOrder(
		e.store.EXPECT().SetRestaurantStatus(gomock.Any(), int64(1), model.RestaurantReady).Return(nil),
		e.orders.EXPECT().Invalidate(gomock.Any(), int64(1)),
		e.orders.EXPECT().UpdateStatus(gomock.Any(), int64(1), model.StatusReady, nil).Return(&model.Order{}, nil),
	)

	require.NoError(t, e.r.Poll(context.Background()))
}

func TestReconciler_CancelledRejectsOrder(t *testing.T) {
	e := newReconcilerEnv(t)
	e.store.EXPECT().ListOrdersForReconciliation(gomock.Any()).Return([]model.Order{accepted(2, "rk-2", nil)}, nil)
	e.kitchen.EXPECT().GetOrderStatus(gomock.Any(), gomock.Any(), "rk-2").Return(model.RestaurantCancelled, nil)
	e.store.EXPECT().SetRestaurantStatus(gomock.Any(), int64(2), model.RestaurantCancelled).Return(nil)
	e.orders.EXPECT().Invalidate(gomock.Any(), int64(2))
	e.orders.EXPECT().UpdateStatus(gomock.Any(), int64(2), model.StatusRejected, nil).Return(&model.Order{}, nil)

	require.NoError(t, e.r.Poll(context.Background()))
}

func TestReconciler_AcceptedStampsAndNotifies(t *testing.T) {
	e := newReconcilerEnv(t)
	e.store.EXPECT().ListOrdersForReconciliation(gomock.Any()).
		Return([]model.Order{accepted(3, "rk-3", ptr(model.RestaurantNew))}, nil)
	e.kitchen.EXPECT().GetOrderStatus(gomock.Any(), gomock.Any(), "rk-3").Return(model.RestaurantAccepted, nil)
	e.store.EXPECT().SetRestaurantStatus(gomock.Any(), int64(3), model.RestaurantAccepted).Return(nil)
	e.store.EXPECT().StampPreparingStart(gomock.Any(), int64(3), e.now).Return(nil)
	e.orders.EXPECT().Invalidate(gomock.Any(), int64(3)).Times(2)
	e.notifier.EXPECT().Enqueue(gomock.Any(), notify.PushMessage{
		Audience: notify.AudienceCustomer,
		Title:    "Ваш заказ №3 принят заведением",
		Body:     "Ваш заказ принят заведением и скоро будет готов!",
	}).DoAndReturn(func(o *model.Order, _ ...notify.Action) string {
		require.NotNil(t, o.Timeline.PreparingStartAt)
		assert.Equal(t, e.now, *o.Timeline.PreparingStartAt)
		return "job-1"
	})

	require.NoError(t, e.r.Poll(context.Background()))
}

func TestReconciler_UnchangedAndFailuresDoNotStopPass(t *testing.T) {
	e := newReconcilerEnv(t)
	e.store.EXPECT().ListOrdersForReconciliation(gomock.Any()).Return([]model.Order{
		accepted(4, "rk-4", ptr(model.RestaurantCooking)),
		accepted(5, "rk-5", nil),
		accepted(6, "rk-6", nil),
		accepted(7, "rk-7", nil),
	}, nil)
	e.kitchen.EXPECT().GetOrderStatus(gomock.Any(), gomock.Any(), "rk-4").Return(model.RestaurantCooking, nil)
	e.kitchen.EXPECT().GetOrderStatus(gomock.Any(), gomock.Any(), "rk-5").Return(model.RestaurantStatus(""), errors.New("timeout"))
	e.kitchen.EXPECT().GetOrderStatus(gomock.Any(), gomock.Any(), "rk-6").Return(model.RestaurantStatus("DELIVERED"), nil)
	e.kitchen.EXPECT().GetOrderStatus(gomock.Any(), gomock.Any(), "rk-7").Return(model.RestaurantCooking, nil)
	e.store.EXPECT().SetRestaurantStatus(gomock.Any(), int64(7), model.RestaurantCooking).Return(nil)
	e.orders.EXPECT().Invalidate(gomock.Any(), int64(7))

	require.NoError(t, e.r.Poll(context.Background()))
}

func TestReconciler_ListError(t *testing.T) {
	e := newReconcilerEnv(t)
	e.store.EXPECT().ListOrdersForReconciliation(gomock.Any()).Return(nil, errors.New("db down"))

	assert.Error(t, e.r.Poll(context.Background()))
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	e := newReconcilerEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		e.r.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run не завершился после отмены контекста")
	}
}
