package bot

import (
	"context"
	"fmt"
	"order_lifecycle/internal/bot/mocks"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"order_lifecycle/internal/orders"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data string
		want Callback
		ok   bool
	}{
		{"order:accept:42:20", Callback{Action: ActionAccept, OrderID: 42, Minutes: 20}, true},
		{"order:reject:42:", Callback{Action: ActionReject, OrderID: 42}, true},
		{"order:ready:42", Callback{Action: ActionReady, OrderID: 42}, true},
		{"order:accept:42:", Callback{}, false},
		{"order:fly:42:", Callback{}, false},
		{"order:ready:abc:", Callback{}, false},
		{"order:ready:42:x", Callback{}, false},
		{"promo:ready:42:", Callback{}, false},
		{"", Callback{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseCallback(tt.data)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrBadCallback)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCallback_RoundTrip(t *testing.T) {
	for _, b := range notify.NewOrderKeyboard(7)[0] {
		cb, err := ParseCallback(b.Data)
		require.NoError(t, err)
		assert.Equal(t, ActionAccept, cb.Action)
		assert.Equal(t, int64(7), cb.OrderID)
	}
}

func newHandler(t *testing.T) (*Handler, *mocks.MockOrders) {
	m := mocks.NewMockOrders(gomock.NewController(t))
	h := NewHandler(m, zaptest.NewLogger(t))
	h.now = func() time.Time { return now }
	return h, m
}

func order(status model.OrderStatus) *model.Order {
	start := now.Add(-30 * time.Minute)
	minutes := 20
	return &model.Order{
		ID:            42,
		Status:        status,
		PreparingTime: &minutes,
		Groups:        []model.ItemGroup{{Institution: model.Institution{ID: 3}}},
		Timeline:      model.Timeline{PreparingStartAt: &start},
	}
}

func ownDelivery(o *model.Order) *model.Order {
	o.Groups[0].Institution.DeliveryByOwn = true
	return o
}

func TestHandle_UnknownButton(t *testing.T) {
	h, _ := newHandler(t)
	r := h.Handle(context.Background(), Press{Data: "order:fly:1:"})
	assert.Equal(t, alert("Неизвестная команда"), r)
}

func TestHandle_Accept(t *testing.T) {
	h, m := newHandler(t)
	minutes := 20
	m.EXPECT().UpdateStatus(gomock.Any(), int64(42), model.StatusAccepted, &minutes).Return(order(model.StatusAccepted), nil)

	r := h.Handle(context.Background(), Press{Data: "order:accept:42:20"})
	assert.Equal(t, Reply{}, r)
}

func TestHandle_ControllerErrorBecomesAlert(t *testing.T) {
	h, m := newHandler(t)
	m.EXPECT().UpdateStatus(gomock.Any(), int64(42), model.StatusRejected, nil).
		Return(nil, fmt.Errorf("заказ 42 -> rejected: %w", orders.ErrSameStatus))

	r := h.Handle(context.Background(), Press{Data: "order:reject:42:"})
	assert.True(t, r.ShowAlert)
	assert.Equal(t, "Заказ уже в этом статусе.", r.Alert)
	assert.False(t, r.SetKeyboard)
}

func TestHandle_PrepareAlreadyCooking(t *testing.T) {
	h, m := newHandler(t)
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(order(model.StatusCooking), nil)

	r := h.Handle(context.Background(), Press{Data: "order:prepare:42:"})
	assert.Equal(t, "Заказ уже в процессе...", r.Alert)
	assert.True(t, r.SetKeyboard)
	assert.Nil(t, r.Keyboard)
}

func TestHandle_Prepare(t *testing.T) {
	h, m := newHandler(t)
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(order(model.StatusAccepted), nil)
	m.EXPECT().UpdateStatus(gomock.Any(), int64(42), model.StatusCooking, nil).Return(order(model.StatusCooking), nil)

	r := h.Handle(context.Background(), Press{Data: "order:prepare:42:"})
	assert.Equal(t, keyboard(nil), r)
}

func TestHandle_ReadyTooEarly(t *testing.T) {
	h, m := newHandler(t)
	o := order(model.StatusCooking)
	*o.PreparingTime = 40
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(o, nil)

	r := h.Handle(context.Background(), Press{Data: "order:ready:42:"})
	assert.Equal(t, alert("Заказ еще не готов!"), r)
}

func TestHandle_ReadyWithoutStart(t *testing.T) {
	h, m := newHandler(t)
	o := order(model.StatusCooking)
	o.Timeline.PreparingStartAt = nil
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(o, nil)

	r := h.Handle(context.Background(), Press{Data: "order:ready:42:"})
	assert.Equal(t, "Заказ еще не готов!", r.Alert)
}

func TestHandle_ReadyOwnDelivery(t *testing.T) {
	h, m := newHandler(t)
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(ownDelivery(order(model.StatusCooking)), nil)
	m.EXPECT().UpdateStatus(gomock.Any(), int64(42), model.StatusReady, nil).Return(order(model.StatusReady), nil)

	r := h.Handle(context.Background(), Press{Data: "order:ready:42:"})
	assert.True(t, r.SetKeyboard)
	assert.Equal(t, notify.Keyboard{{{Text: "В пути", Data: "order:shipping:42:"}}}, r.Keyboard)
}

func TestHandle_ReadyAlready(t *testing.T) {
	h, m := newHandler(t)
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(order(model.StatusReady), nil)

	r := h.Handle(context.Background(), Press{Data: "order:ready:42:"})
	assert.Equal(t, "Заказ был готов недавно!", r.Alert)
	assert.True(t, r.SetKeyboard)
}

func TestHandle_ShippingOwnDelivery(t *testing.T) {
	h, m := newHandler(t)
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(ownDelivery(order(model.StatusReady)), nil)
	m.EXPECT().UpdateStatus(gomock.Any(), int64(42), model.StatusShipped, nil).Return(order(model.StatusShipped), nil)

	r := h.Handle(context.Background(), Press{Data: "order:shipping:42:"})
	assert.Equal(t, notify.Keyboard{{
		{Text: "Завершить", Data: "order:close:42:"},
		{Text: "Статус: в пути", Data: "order:status:42:"},
	}}, r.Keyboard)
}

func TestHandle_CloseAlready(t *testing.T) {
	h, m := newHandler(t)
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(order(model.StatusClosed), nil)

	r := h.Handle(context.Background(), Press{Data: "order:close:42:"})
	assert.Equal(t, "Заказ был закрыт недавно!", r.Alert)
}

func TestHandle_Close(t *testing.T) {
	h, m := newHandler(t)
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(order(model.StatusShipped), nil)
	m.EXPECT().UpdateStatus(gomock.Any(), int64(42), model.StatusClosed, nil).Return(order(model.StatusClosed), nil)

	r := h.Handle(context.Background(), Press{Data: "order:close:42:"})
	assert.Equal(t, notify.Keyboard{{{Text: "Статус: закрыт", Data: "order:status:42:"}}}, r.Keyboard)
}

func TestHandle_Courier(t *testing.T) {
	t.Run("без курьера", func(t *testing.T) {
		h, m := newHandler(t)
		m.EXPECT().Get(gomock.Any(), int64(42)).Return(order(model.StatusAccepted), nil)

		r := h.Handle(context.Background(), Press{Data: "order:courier:42:", Text: "Заказ №42"})
		assert.Equal(t, alert("У заведения пока нет курьера"), r)
	})

	t.Run("дописывает контакты", func(t *testing.T) {
		h, m := newHandler(t)
		o := order(model.StatusAccepted)
		o.Courier = &model.Courier{FirstName: "Бахтиёр", Phone: "+998901234567"}
		m.EXPECT().Get(gomock.Any(), int64(42)).Return(o, nil)

		r := h.Handle(context.Background(), Press{Data: "order:courier:42:", Text: "Заказ №42"})
		assert.Equal(t, "Заказ №42\n\nИнформация о курьере:\nИмя: Бахтиёр\nНомер телефона: +998901234567 -", r.Text)
	})

	t.Run("контакты уже есть", func(t *testing.T) {
		h, m := newHandler(t)
		o := order(model.StatusAccepted)
		o.Courier = &model.Courier{FirstName: "Бахтиёр"}
		m.EXPECT().Get(gomock.Any(), int64(42)).Return(o, nil)

		r := h.Handle(context.Background(), Press{Data: "order:courier:42:", Text: "Номер телефона: +998 -"})
		assert.Equal(t, Reply{}, r)
	})
}

func TestHandle_StatusReplacesLastButton(t *testing.T) {
	h, m := newHandler(t)
	m.EXPECT().Get(gomock.Any(), int64(42)).Return(order(model.StatusShipped), nil)

	current := notify.Keyboard{{
		{Text: "Завершить", Data: "order:close:42:"},
		{Text: "Статус: готов", Data: "order:status:42:"},
	}}
	r := h.Handle(context.Background(), Press{Data: "order:status:42:", Keyboard: current})
	assert.Equal(t, notify.Keyboard{{
		{Text: "Завершить", Data: "order:close:42:"},
		{Text: "Статус: в пути", Data: "order:status:42:"},
	}}, r.Keyboard)
	assert.Equal(t, "Статус: готов", current[0][1].Text)
}
