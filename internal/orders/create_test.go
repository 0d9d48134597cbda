package orders

import (
	"context"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"order_lifecycle/internal/promo"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var dest = model.Address{Latitude: 41.3, Longitude: 69.25, Street: "Мукими 7"}

func globalSettings() *model.GlobalSettings {
	pct := 15.0
	return &model.GlobalSettings{
		Delivery:   model.DeliverySettings{MinDistance: 3, MinDeliveryPrice: 10000, PricePerKm: 1000},
		Commission: model.CommissionSettings{OrdinaryPercent: &pct},
	}
}

func openBranch() *model.Branch {
	addr := model.Address{Latitude: 41.31, Longitude: 69.27}
	b := &model.Branch{
		ID: 9, InstitutionID: 3, Name: "Чиланзар", IsActive: true, IsOpen: true, Address: &addr,
		MinPreorderMinutes: 60, MaxPreorderDays: 3, PreparingTime: 20, MaxDeliveryTime: 40,
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		b.Schedule = append(b.Schedule, model.ScheduleEntry{
			BranchID: 9, DayOfWeek: model.WeekdayOf(d),
			StartTime: model.NewClockTime(9, 0), EndTime: model.NewClockTime(23, 0), IsActive: true,
		})
	}
	return b
}

func newCreateEnv(t *testing.T) *env {
	e := newEnv(t)
	e.store.products[1] = model.Product{ID: 1, Name: "Плов", Price: 25000}
	e.store.options[5] = model.Option{ID: 5, Title: "Сыр", AddingPrice: 5000}
	e.pricing.EXPECT().GlobalSettings(gomock.Any()).Return(globalSettings(), nil).AnyTimes()
	return e
}

func request() CreateRequest {
	return CreateRequest{
		CustomerID:    100,
		CustomerPhone: "998901112233",
		PaymentMethod: model.PaymentCash,
		Address:       dest,
		Groups: []CreateGroup{{
			InstitutionID: 3,
			Items:         []CreateItem{{ProductID: 1, Count: 2, OptionIDs: []int64{5}}},
		}},
	}
}

func TestCreate(t *testing.T) {
	e := newCreateEnv(t)
	e.branches.EXPECT().Suitable(gomock.Any(), int64(3), dest).Return(openBranch(), nil)
	e.pricing.EXPECT().DeliverySum(gomock.Any(), gomock.Any(), dest, gomock.Any(), gomock.Any()).Return(int64(10000), nil)

	o, err := e.c.Create(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, model.StatusCreated, o.Status)
	assert.Equal(t, int64(60000), o.ProductsSum)
	assert.Equal(t, int64(10000), o.DeliveringSum)
	assert.Equal(t, int64(70000), o.TotalSum)
	assert.Equal(t, int64(1), *o.OperatorID)
	assert.Equal(t, int64(6000), o.Groups[0].Commission)
	assert.Equal(t, int64(9), o.Groups[0].Branch.ID)
	assert.Equal(t, now, o.CreatedAt)

	stored := e.store.order(o.ID)
	require.NotNil(t, stored)
	assert.Equal(t, o.TotalSum, stored.TotalSum)

	assert.Equal(t, []notify.Action{
		notify.PushMessage{Audience: notify.AudienceInstitution, Title: "Новый заказ", Body: "У вас новый заказ!", Sound: NewOrderSound},
		notify.ChatSend{Kind: notify.SendNewOrder},
		notify.Realtime{Channels: []notify.ChannelKind{notify.ChannelInstitution, notify.ChannelOperator, notify.ChannelClient}},
	}, e.notifier.last())
}

func TestCreate_PromoBelowMinimum(t *testing.T) {
	e := newCreateEnv(t)
	e.store.state.promos["SALE"] = &model.PromoCode{
		ID: 5, Code: "SALE", Status: model.PromoActive, IsActive: true, Sum: 5000, MinOrderSum: 30000,
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
	}
	e.branches.EXPECT().Suitable(gomock.Any(), int64(3), dest).Return(openBranch(), nil)

	req := request()
	req.SelfPickup = true
	req.PromoCode = "SALE"
	req.Groups[0].Items = []CreateItem{{ProductID: 1, Count: 1}}

	_, err := e.c.Create(context.Background(), req)
	assert.ErrorIs(t, err, promo.ErrBelowMinimum)
	assert.Empty(t, e.store.state.orders)
	assert.Empty(t, e.notifier.jobs)
}

func TestCreate_PromoSecondUseRejected(t *testing.T) {
	e := newCreateEnv(t)
	e.store.state.promos["SALE"] = &model.PromoCode{
		ID: 5, Code: "SALE", Status: model.PromoActive, IsActive: true, Sum: 5000,
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
	}
	e.branches.EXPECT().Suitable(gomock.Any(), int64(3), dest).Return(openBranch(), nil).Times(2)

	req := request()
	req.SelfPickup = true
	req.PromoCode = "SALE"

	o, err := e.c.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), o.DiscountSum)
	assert.Equal(t, int64(55000), o.TotalSum)
	require.Len(t, e.store.state.usages, 1)
	assert.Equal(t, o.ID, e.store.state.usages[0].OrderID)

	_, err = e.c.Create(context.Background(), req)
	assert.ErrorIs(t, err, promo.ErrAlreadyUsed)
	assert.Len(t, e.store.state.orders, 1)
}

func TestCreate_RevokablePromoReturnedAfterReject(t *testing.T) {
	e := newCreateEnv(t)
	e.store.state.promos["ONCE"] = &model.PromoCode{
		ID: 6, Code: "ONCE", Status: model.PromoActive, IsActive: true, Revokable: true, Sum: 5000,
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
	}
	e.branches.EXPECT().Suitable(gomock.Any(), int64(3), dest).Return(openBranch(), nil).Times(2)

	req := request()
	req.SelfPickup = true
	req.PromoCode = "ONCE"

	first, err := e.c.Create(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, e.store.state.usages, 1)

	_, err = e.c.Cancel(context.Background(), first.ID, false)
	require.NoError(t, err)
	assert.Empty(t, e.store.state.usages)
	assert.True(t, e.store.state.promos["ONCE"].IsActive)

	second, err := e.c.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), second.DiscountSum)
	require.Len(t, e.store.state.usages, 1)
	assert.Equal(t, second.ID, e.store.state.usages[0].OrderID)
}

func TestCreate_InstitutionUnavailable(t *testing.T) {
	e := newCreateEnv(t)
	e.branches.EXPECT().Suitable(gomock.Any(), int64(3), dest).Return(nil, nil)

	_, err := e.c.Create(context.Background(), request())
	assert.ErrorIs(t, err, ErrInstitutionUnavailable)
}

func TestCreate_UnknownProduct(t *testing.T) {
	e := newCreateEnv(t)
	e.branches.EXPECT().Suitable(gomock.Any(), int64(3), dest).Return(openBranch(), nil)
	e.pricing.EXPECT().DeliverySum(gomock.Any(), gomock.Any(), dest, gomock.Any(), gomock.Any()).Return(int64(10000), nil)

	req := request()
	req.Groups[0].Items[0].ProductID = 77

	_, err := e.c.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestCreate_NoOperator(t *testing.T) {
	e := newCreateEnv(t)
	e.store.state.operators = nil
	e.branches.EXPECT().Suitable(gomock.Any(), int64(3), dest).Return(openBranch(), nil)
	e.pricing.EXPECT().DeliverySum(gomock.Any(), gomock.Any(), dest, gomock.Any(), gomock.Any()).Return(int64(10000), nil)

	_, err := e.c.Create(context.Background(), request())
	assert.ErrorIs(t, err, ErrNoOperator)
	assert.Empty(t, e.store.state.orders)
}

func TestCreate_Preorder(t *testing.T) {
	e := newCreateEnv(t)
	e.branches.EXPECT().Select(gomock.Any(), int64(3), dest).Return(openBranch(), nil).AnyTimes()
	e.pricing.EXPECT().DeliverySum(gomock.Any(), gomock.Any(), dest, gomock.Any(), gomock.Any()).Return(int64(10000), nil).AnyTimes()

	tests := []struct {
		name string
		at   time.Time
		ok   bool
	}{
		{"слишком рано", now.Add(30 * time.Minute), false},
		{"слишком далеко", now.AddDate(0, 0, 4), false},
		{"ночью филиал закрыт", time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC), false},
		{"через два часа", now.Add(2 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request()
			at := tt.at
			req.DeliveryTime = &at

			o, err := e.c.Create(context.Background(), req)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrPreorderTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.StatusPreOrder, o.Status)
		})
	}
}

func TestCheckPreorderTime_LeadTime(t *testing.T) {
	b := openBranch()
	b.MinPreorderMinutes = 30

	// 45 минут вперед проходит минимальный срок, но не покрывает 20 минут готовки и 40 доставки
	err := checkPreorderTime(b, now.Add(45*time.Minute), now)
	assert.ErrorIs(t, err, ErrPreorderTime)
	assert.Contains(t, err.Error(), "не хватает времени")

	assert.NoError(t, checkPreorderTime(b, now.Add(61*time.Minute), now))
}
