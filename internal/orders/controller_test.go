package orders

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/assignment"
	"order_lifecycle/internal/cache"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/i18n"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"order_lifecycle/internal/orders/mocks"
	"order_lifecycle/internal/payment"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// recorder запоминает поставленные в очередь рассылки.
type recorder struct {
	mu   sync.Mutex
	jobs [][]notify.Action
}

func (r *recorder) Enqueue(_ *model.Order, actions ...notify.Action) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, actions)
	return "job-" + strconv.Itoa(len(r.jobs))
}

func (r *recorder) last() []notify.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.jobs) == 0 {
		return nil
	}
	return r.jobs[len(r.jobs)-1]
}

type env struct {
	store    *memStore
	notifier *recorder
	payments *mocks.MockPayments
	kitchen  *mocks.MockKitchen
	branches *mocks.MockBranches
	pricing  *mocks.MockPricing
	clock    time.Time
	c        *Controller
}

func newEnv(t *testing.T) *env {
	ctrl := gomock.NewController(t)
	e := &env{
		store:    newMemStore(),
		notifier: &recorder{},
		payments: mocks.NewMockPayments(ctrl),
		kitchen:  mocks.NewMockKitchen(ctrl),
		branches: mocks.NewMockBranches(ctrl),
		pricing:  mocks.NewMockPricing(ctrl),
		clock:    now,
	}
	inst := institution()
	e.store.state.institutions[inst.ID] = &inst
	e.store.state.couriers[7] = &model.Courier{ID: 7, FirstName: "Бахтиёр", Phone: "998901234567",
		Status: model.CourierFree, Transport: model.TransportCar, Balance: 200000}
	e.store.state.operators = []int64{1}

	c, err := NewController(Deps{
		Storage:  e.store,
		Notifier: e.notifier,
		Payments: e.payments,
		Kitchen:  e.kitchen,
		Pricing:  e.pricing,
		Branches: e.branches,
		Logger:   zaptest.NewLogger(t),
		Clock:    func() time.Time { return e.clock },
	})
	require.NoError(t, err)
	e.c = c
	return e
}

func (e *env) put(o *model.Order) {
	e.store.state.orders[o.ID] = o
}

func institution() model.Institution {
	pct := 10.0
	return model.Institution{
		ID:              3,
		Name:            "Плов Центр",
		Balance:         100000,
		MaxDeliveryTime: 40,
		Commission:      model.CommissionSettings{OrdinaryPercent: &pct},
	}
}

func cashOrder(id int64) *model.Order {
	return &model.Order{
		ID:            id,
		Status:        model.StatusCreated,
		PaymentMethod: model.PaymentCash,
		ProductsSum:   50000,
		DeliveringSum: 10000,
		TotalSum:      60000,
		CustomerID:    100,
		CreatedAt:     now,
		Groups: []model.ItemGroup{{
			ID:            id * 10,
			OrderID:       id,
			Institution:   institution(),
			Branch:        model.Branch{ID: 9, InstitutionID: 3, Name: "Чиланзар"},
			ProductsSum:   50000,
			DeliveringSum: 10000,
			TotalSum:      60000,
			Commission:    5000,
			Items: []model.Item{{
				ID:       1,
				Product:  model.Product{ID: 1, Name: "Плов", Price: 50000},
				Count:    1,
				TotalSum: 50000,
			}},
		}},
		Timeline: model.Timeline{OrderID: id},
	}
}

func withCourier(o *model.Order, status model.OrderStatus) *model.Order {
	courierID := int64(7)
	o.CourierID = &courierID
	o.Status = status
	return o
}

func ptr[T any](v T) *T { return &v }

func TestUpdateStatus_SameStatusAlwaysFails(t *testing.T) {
	for _, st := range model.AllStatuses {
		t.Run(string(st), func(t *testing.T) {
			e := newEnv(t)
			e.put(withCourier(cashOrder(42), st))

			_, err := e.c.UpdateStatus(context.Background(), 42, st, nil)
			assert.ErrorIs(t, err, ErrSameStatus)
			assert.Empty(t, e.notifier.jobs)
			assert.Equal(t, st, e.store.order(42).Status)
		})
	}
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	e := newEnv(t)
	e.put(withCourier(cashOrder(42), model.StatusClosed))

	_, err := e.c.UpdateStatus(context.Background(), 42, model.StatusAccepted, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_CourierRequired(t *testing.T) {
	e := newEnv(t)
	o := cashOrder(42)
	o.Status = model.StatusAccepted
	e.put(o)

	_, err := e.c.UpdateStatus(context.Background(), 42, model.StatusReady, nil)
	assert.ErrorIs(t, err, ErrCourierRequired)
	assert.Equal(t, "Заказу еще не назначен курьер.", Message(err).Ru)

	// инцидент от курьера не зависит
	_, err = e.c.UpdateStatus(context.Background(), 42, model.StatusIncident, nil)
	require.NoError(t, err)
	assert.Equal(t, []notify.Action{
		notify.ReadyPool{},
		notify.ChatEdit{Kind: notify.EditIncident},
		notify.Realtime{Channels: notify.StatusChannels},
	}, e.notifier.last())
}

func TestUpdateStatus_SelfPickupNeedsNoCourier(t *testing.T) {
	e := newEnv(t)
	o := cashOrder(42)
	o.Status = model.StatusAccepted
	o.SelfPickup = true
	e.put(o)

	got, err := e.c.UpdateStatus(context.Background(), 42, model.StatusReady, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, got.Status)
	assert.Equal(t, now, *e.store.order(42).Timeline.PreparingCompletedAt)
}

func TestUpdateStatus_AcceptCash(t *testing.T) {
	e := newEnv(t)
	e.put(cashOrder(42))

	got, err := e.c.UpdateStatus(context.Background(), 42, model.StatusAccepted, ptr(20))
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, got.Status)
	assert.Equal(t, 20, *e.store.order(42).PreparingTime)

	assert.Equal(t, []notify.Action{
		notify.PushMessage{Audience: notify.AudienceCustomer, Title: "Ваш заказ №42 принят заведением", Body: "Ваш заказ принят и скоро будет готов!"},
		notify.CourierPool{},
		notify.ReadyPool{},
		notify.ChatEdit{Kind: notify.EditAccepted, Minutes: 20},
		notify.Realtime{Channels: notify.StatusChannels},
	}, e.notifier.last())
}

func TestUpdateStatus_AcceptExternalKitchenOwnDelivery(t *testing.T) {
	e := newEnv(t)
	o := cashOrder(42)
	o.ExternalID = ptr("a1b2")
	o.Groups[0].Institution.DeliveryByOwn = true
	e.put(o)

	_, err := e.c.UpdateStatus(context.Background(), 42, model.StatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, []notify.Action{
		notify.PushMessage{Audience: notify.AudienceCustomer,
			Title: "Ваш заказ №42 был принят, ждём подтверждения заведения",
			Body:  "Ожидаем подтверждения заказа от ресторана. Это может занять до 10-15 минут."},
		notify.Realtime{Channels: notify.StatusChannels},
	}, e.notifier.last())
}

func TestUpdateStatus_AcceptInProcess(t *testing.T) {
	e := newEnv(t)
	o := cashOrder(42)
	o.IsProcess = true
	e.put(o)

	_, err := e.c.UpdateStatus(context.Background(), 42, model.StatusAccepted, nil)
	assert.ErrorIs(t, err, ErrInProcess)
	assert.Equal(t, model.StatusCreated, e.store.order(42).Status)
}

func paymeOrder(id int64) *model.Order {
	o := cashOrder(id)
	o.PaymentMethod = model.PaymentPayme
	o.CardToken = ptr("card-token")
	return o
}

func TestUpdateStatus_PaymeChargeFailureRevertsToCreated(t *testing.T) {
	e := newEnv(t)
	o := paymeOrder(42)
	o.Status = model.StatusPending
	e.put(o)

	e.payments.EXPECT().Charge(gomock.Any(), gomock.Any()).
		Return(nil, &payment.GatewayError{Code: -31630, Message: "Недостаточно средств на карте"})

	got, err := e.c.UpdateStatus(context.Background(), 42, model.StatusAccepted, ptr(30))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, "Оплата не прошла. Недостаточно средств на карте", Message(err).Ru)

	require.NotNil(t, got)
	stored := e.store.order(42)
	assert.Equal(t, model.StatusCreated, stored.Status)
	assert.False(t, stored.IsPaid)
	assert.Nil(t, stored.PreparingTime)

	assert.Equal(t, []notify.Action{
		notify.PushMessage{Audience: notify.AudienceCustomer, Title: "Ошибка оплаты для заказа №42", Body: "Недостаточно средств на карте"},
		notify.ChatEdit{Kind: notify.EditPaymeError, Detail: "Недостаточно средств на карте"},
	}, e.notifier.last())
}

func TestUpdateStatus_PaymeChargeSuccess(t *testing.T) {
	e := newEnv(t)
	e.put(paymeOrder(42))

	e.payments.EXPECT().Charge(gomock.Any(), gomock.Any()).
		Return(&payment.ChargeResult{ReceiptID: "rcpt-1", State: 4, Paid: true}, nil)

	_, err := e.c.UpdateStatus(context.Background(), 42, model.StatusAccepted, nil)
	require.NoError(t, err)

	stored := e.store.order(42)
	assert.True(t, stored.IsPaid)
	assert.Equal(t, "rcpt-1", *stored.ReceiptID)
	assert.Equal(t, []notify.Action{
		notify.CourierPool{},
		notify.ReadyPool{},
		notify.PushMessage{Audience: notify.AudienceCustomer, Title: "Ваш заказ №42 принят заведением", Body: "Ваш заказ принят и скоро будет готов!"},
		notify.PushMessage{Audience: notify.AudienceCustomer, Title: "Оплата прошла!", Body: "Спасибо! Платёж успешно завершён для заказа №42."},
		notify.Realtime{Channels: notify.StatusChannels},
	}, e.notifier.last())
}

func TestUpdateStatus_AcceptWithoutChargeSkipsAcceptedPush(t *testing.T) {
	paidPayme := paymeOrder(42)
	paidPayme.IsPaid = true
	terminal := cashOrder(42)
	terminal.PaymentMethod = model.PaymentTerminal

	for name, o := range map[string]*model.Order{"paid payme": paidPayme, "terminal": terminal} {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			e.put(o)

			got, err := e.c.UpdateStatus(context.Background(), 42, model.StatusAccepted, ptr(15))
			require.NoError(t, err)
			assert.Equal(t, model.StatusAccepted, got.Status)
			assert.Equal(t, []notify.Action{
				notify.ChatEdit{Kind: notify.EditAccepted, Minutes: 15},
				notify.Realtime{Channels: notify.StatusChannels},
			}, e.notifier.last())
		})
	}
}

func TestUpdateStatus_RejectPaidPayme(t *testing.T) {
	e := newEnv(t)
	o := paymeOrder(42)
	o.Status = model.StatusAccepted
	o.IsPaid = true
	o.ReceiptID = ptr("rcpt-1")
	e.put(o)
	e.store.state.usages = []model.PromoUsage{{ID: 1, UserID: 100, PromoCodeID: 5, OrderID: 42}}

	_, err := e.c.UpdateStatus(context.Background(), 42, model.StatusRejected, nil)
	require.NoError(t, err)

	stored := e.store.order(42)
	assert.False(t, stored.IsPaid)
	assert.Equal(t, now, *stored.Timeline.RejectedAt)
	assert.Empty(t, e.store.state.usages)

	require.Len(t, e.notifier.jobs, 2)
	assert.Equal(t, []notify.Action{
		notify.ReadyPool{},
		notify.PushMessage{Audience: notify.AudienceCustomer, Title: "Ваш заказ №42 был отклонён", Body: "Заведение не смогло принять заказ."},
		notify.ChatEdit{Kind: notify.EditCancel},
		notify.PushMessage{Audience: notify.AudienceInstitution, Title: "Заказ №42 отменен"},
		notify.Realtime{Channels: notify.StatusChannels},
	}, e.notifier.jobs[0])

	refund := e.notifier.jobs[1]
	require.Len(t, refund, 2)
	call, ok := refund[0].(notify.Call)
	require.True(t, ok)
	assert.Equal(t, notify.PushMessage{Audience: notify.AudienceCustomer, Title: "Платёж отменён", Body: "Ваш платёж был отменён."}, refund[1])

	e.payments.EXPECT().Cancel(gomock.Any(), stored).Return(nil)
	require.NoError(t, call.Fn(context.Background(), stored))
}

func TestCancel(t *testing.T) {
	t.Run("в первую минуту", func(t *testing.T) {
		e := newEnv(t)
		e.put(cashOrder(42))
		e.clock = now.Add(30 * time.Second)

		got, err := e.c.Cancel(context.Background(), 42, false)
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, got.Status)
	})

	t.Run("позже минуты", func(t *testing.T) {
		e := newEnv(t)
		e.put(cashOrder(42))
		e.clock = now.Add(2 * time.Minute)

		_, err := e.c.Cancel(context.Background(), 42, false)
		assert.ErrorIs(t, err, ErrCancelNotAllowed)
		assert.Equal(t, model.StatusCreated, e.store.order(42).Status)
	})

	t.Run("с курьером", func(t *testing.T) {
		e := newEnv(t)
		e.put(withCourier(cashOrder(42), model.StatusAccepted))

		_, err := e.c.Cancel(context.Background(), 42, false)
		assert.ErrorIs(t, err, ErrCancelNotAllowed)
	})

	t.Run("без ограничений", func(t *testing.T) {
		e := newEnv(t)
		e.put(withCourier(cashOrder(42), model.StatusAccepted))
		e.clock = now.Add(time.Hour)

		_, err := e.c.Cancel(context.Background(), 42, true)
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, e.store.order(42).Status)
	})
}

func TestAssignCourier_Success(t *testing.T) {
	e := newEnv(t)
	o := cashOrder(42)
	o.Status = model.StatusAccepted
	o.Groups[0].Institution.KitchenClientID = ptr("client")
	o.Groups[0].Institution.KitchenClientSecret = ptr("secret")
	o.Groups[0].Institution.KitchenEndpoint = ptr("https://kitchen.example")
	e.put(o)

	res, err := e.c.AssignCourier(context.Background(), 42, 7)
	require.NoError(t, err)
	require.True(t, res.Status)
	assert.Equal(t, int64(7), *res.Order.CourierID)

	stored := e.store.order(42)
	assert.Equal(t, int64(7), *stored.CourierID)
	assert.Equal(t, now, *stored.Timeline.CourierAssignAt)
	assert.Equal(t, now, *stored.Timeline.PreparingStartAt)
	assert.Equal(t, model.CourierDelivering, e.store.courier(7).Status)

	actions := e.notifier.last()
	require.Len(t, actions, 6)
	assert.Equal(t, notify.PushMessage{Audience: notify.AudienceCustomer,
		Title: "На ваш заказ №42 назначен курьер",
		Body:  "К заказу №42 назначен курьер. Ожидайте доставку в ближайшее время."}, actions[0])
	assert.Equal(t, notify.ChatSend{Kind: notify.SendCourier}, actions[1])
	assert.Equal(t, notify.Realtime{Channels: []notify.ChannelKind{notify.ChannelCourier, notify.ChannelOperator, notify.ChannelInstitution}}, actions[2])
	assert.Equal(t, notify.ReadyPool{}, actions[3])
	call, ok := actions[4].(notify.Call)
	require.True(t, ok)
	assert.Equal(t, "kitchen_create", call.Name)
	assert.Equal(t, notify.PushMessage{Audience: notify.AudienceInstitution, Title: "Заказ №42 принят курьером"}, actions[5])

	e.kitchen.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return("ext-uuid", nil)
	require.NoError(t, call.Fn(context.Background(), res.Order))
	assert.Equal(t, "ext-uuid", e.store.external[42])
}

func TestAssignCourier_ActiveLimitThenFreed(t *testing.T) {
	e := newEnv(t)
	e.put(withCourier(cashOrder(1), model.StatusAccepted))
	e.put(withCourier(cashOrder(2), model.StatusAccepted))
	e.put(withCourier(cashOrder(3), model.StatusShipped))
	o := cashOrder(42)
	o.Status = model.StatusAccepted
	e.put(o)

	res, err := e.c.AssignCourier(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.False(t, res.Status)
	assert.Equal(t, assignment.Validate(o, &model.Courier{}, assignment.MaxActiveOrders).Message, res.Message)
	assert.Nil(t, e.store.order(42).CourierID)

	e.payments.EXPECT().ReceiptRequired().Return(false)
	_, err = e.c.UpdateStatus(context.Background(), 3, model.StatusClosed, nil)
	require.NoError(t, err)

	res, err = e.c.AssignCourier(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.True(t, res.Status)
}

func TestAssignCourier_NotFound(t *testing.T) {
	e := newEnv(t)

	res, err := e.c.AssignCourier(context.Background(), 404, 7)
	require.NoError(t, err)
	assert.False(t, res.Status)
	assert.Equal(t, i18n.OrderNotFound, res.Message)
}

func TestAssignCourier_UnknownCourier(t *testing.T) {
	e := newEnv(t)
	e.put(cashOrder(42))

	_, err := e.c.AssignCourier(context.Background(), 42, 99)
	assert.ErrorIs(t, err, ErrCourierNotFound)
}

func TestClose_CourierCollectedCash(t *testing.T) {
	e := newEnv(t)
	holding := e.store.state.institutions[3]
	holding.IsHolding = true

	o := withCourier(cashOrder(42), model.StatusShipped)
	o.Groups[0].Institution.IsHolding = true
	o.DiscountSum = 5000
	o.TotalSum = 55000
	o.Timeline.CourierTakeItAt = ptr(now.Add(-55 * time.Minute))
	e.put(o)

	e.payments.EXPECT().ReceiptRequired().Return(true)

	_, err := e.c.UpdateStatus(context.Background(), 42, model.StatusClosed, nil)
	require.NoError(t, err)

	ledger := e.store.ledger()
	require.Len(t, ledger, 2)
	assert.Equal(t, model.TransactionOut, ledger[0].Type)
	assert.Equal(t, model.LedgerOrderAmount, ledger[0].Name)
	assert.Equal(t, int64(50000), ledger[0].Amount)
	assert.Equal(t, model.TransactionIn, ledger[1].Type)
	assert.Equal(t, model.LedgerPromoCode, ledger[1].Name)
	assert.Equal(t, int64(5000), ledger[1].Amount)

	assert.Equal(t, int64(200000-50000+5000), e.store.courier(7).Balance)
	assert.Equal(t, int64(100000-5000), e.store.institution(3).Balance)

	stored := e.store.order(42)
	assert.Equal(t, 15, stored.Timeline.CourierLates)
	assert.True(t, stored.IsPaid)
	require.Len(t, e.store.state.payments, 1)
	assert.Equal(t, int64(55000), e.store.state.payments[0].Amount)
	assert.True(t, e.store.state.payments[0].ReceiptRequired)

	var receipt *notify.Call
	for _, a := range e.notifier.last() {
		if c, ok := a.(notify.Call); ok && c.Name == "fiscal_receipt" {
			receipt = &c
		}
	}
	require.NotNil(t, receipt)
	e.payments.EXPECT().IssueReceipt(gomock.Any(), gomock.Any(), stored)
	require.NoError(t, receipt.Fn(context.Background(), stored))
}

func TestClose_PaymeSettlement(t *testing.T) {
	e := newEnv(t)
	o := withCourier(paymeOrder(42), model.StatusShipped)
	o.IsPaid = true
	e.put(o)

	_, err := e.c.UpdateStatus(context.Background(), 42, model.StatusClosed, nil)
	require.NoError(t, err)

	ledger := e.store.ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, model.LedgerDelivering, ledger[0].Name)
	assert.Equal(t, int64(10000), ledger[0].Amount)
	assert.Equal(t, int64(100000-5000+50000), e.store.institution(3).Balance)
	assert.Empty(t, e.store.state.payments)
}

func TestLifecycle_CashOrder(t *testing.T) {
	e := newEnv(t)
	e.put(cashOrder(42))
	e.payments.EXPECT().ReceiptRequired().Return(false)
	ctx := context.Background()

	_, err := e.c.UpdateStatus(ctx, 42, model.StatusAccepted, nil)
	require.NoError(t, err)

	res, err := e.c.AssignCourier(ctx, 42, 7)
	require.NoError(t, err)
	require.True(t, res.Status)

	for _, st := range []model.OrderStatus{model.StatusReady, model.StatusShipped, model.StatusClosed} {
		e.clock = e.clock.Add(10 * time.Minute)
		_, err := e.c.UpdateStatus(ctx, 42, st, nil)
		require.NoError(t, err, st)
	}

	stored := e.store.order(42)
	assert.Equal(t, model.StatusClosed, stored.Status)
	assert.Equal(t, 0, stored.Timeline.PreparingLates)
	assert.Equal(t, model.CourierFree, e.store.courier(7).Status)
	assert.Equal(t, int64(100000-5000), e.store.institution(3).Balance)
	assert.Empty(t, e.store.ledger())
	require.Len(t, e.store.state.payments, 1)
	assert.Equal(t, model.PaymentIncome, e.store.state.payments[0].PaymentType)
	assert.Equal(t, int64(60000), e.store.state.payments[0].Amount)
}

func TestTopUp(t *testing.T) {
	e := newEnv(t)

	_, err := e.c.TopUp(context.Background(), 7, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = e.c.TopUp(context.Background(), 99, 1000)
	assert.ErrorIs(t, err, ErrCourierNotFound)

	tr, err := e.c.TopUp(context.Background(), 7, 15000)
	require.NoError(t, err)
	assert.Equal(t, model.LedgerTopUp, tr.Name)
	assert.Nil(t, tr.OrderID)
	assert.Equal(t, int64(215000), e.store.courier(7).Balance)
}

func TestGet_UsesCacheAndInvalidates(t *testing.T) {
	e := newEnv(t)
	e.c.cache = cache.NewLRUCache(10, time.Minute)
	e.put(cashOrder(42))
	ctx := context.Background()

	o, err := e.c.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCreated, o.Status)

	e.store.state.orders[42].Note = "изменено в обход контроллера"
	o, err = e.c.Get(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, o.Note)

	_, err = e.c.UpdateStatus(ctx, 42, model.StatusAccepted, nil)
	require.NoError(t, err)
	o, err = e.c.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, o.Status)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, i18n.OrderNotFound, Message(fmt.Errorf("заказ 1: %w", database.ErrNotFound)))
	assert.Equal(t, "Заказ сейчас обновляется, попробуйте еще раз.", Message(database.ErrLockTimeout).Ru)
	assert.Equal(t, internalError, Message(errors.New("boom")))
	assert.False(t, IsClientError(errors.New("boom")))
	assert.True(t, IsClientError(assignment.Validate(&model.Order{SelfPickup: true}, &model.Courier{}, 0)))
}
