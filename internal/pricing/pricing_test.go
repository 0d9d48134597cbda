package pricing

import (
	"context"
	"errors"
	"order_lifecycle/internal/cache"
	"order_lifecycle/internal/generator"
	"order_lifecycle/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tariff = model.DeliverySettings{MinDistance: 3, MinDeliveryPrice: 10000, PricePerKm: 1000}

func TestDeliveryPrice_BelowMinDistance(t *testing.T) {
	assert.Equal(t, int64(10000), DeliveryPrice(tariff, 1.5))
}

func TestDeliveryPrice_Linear(t *testing.T) {
	assert.Equal(t, int64(20000), DeliveryPrice(tariff, 10))
	// 10000 + 1000*4.26 = 14260 -> 14300
	assert.Equal(t, int64(14300), DeliveryPrice(tariff, 4.26))
}

func TestRoundHalfEven(t *testing.T) {
	assert.Equal(t, int64(12400), RoundHalfEven(12450, 2), "половина округляется к четной сотне")
	assert.Equal(t, int64(12600), RoundHalfEven(12550, 2))
	assert.Equal(t, int64(1240), RoundHalfEven(1245, 1))
	assert.Equal(t, int64(1260), RoundHalfEven(1255, 1))
}

type settingsStub struct {
	gs    *model.GlobalSettings
	err   error
	calls int
}

func (s *settingsStub) GetGlobalSettings(context.Context) (*model.GlobalSettings, error) {
	s.calls++
	return s.gs, s.err
}

type finderStub struct{ branch *model.Branch }

func (f finderStub) Suitable(context.Context, int64, model.Address) (*model.Branch, error) {
	return f.branch, nil
}

func TestCalculator_FreeDelivery(t *testing.T) {
	calc := NewCalculator(&settingsStub{}, nil)
	sum, err := calc.DeliverySum(context.Background(), &model.Institution{FreeDelivery: true}, model.Address{}, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestCalculator_InstitutionTariffWins(t *testing.T) {
	own := model.DeliverySettings{MinDistance: 100, MinDeliveryPrice: 7000}
	calc := NewCalculator(&settingsStub{err: errors.New("не должен вызываться")}, nil)

	sum, err := calc.DeliverySum(context.Background(), &model.Institution{Delivery: &own}, model.Address{}, nil, &tariff)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), sum)
}

func TestCalculator_ResolvesBranchAndGlobalTariff(t *testing.T) {
	dest := model.Address{Latitude: 41, Longitude: 69}
	branch := &model.Branch{Address: &model.Address{Latitude: 41 + 10/111.19, Longitude: 69}}
	src := &settingsStub{gs: &model.GlobalSettings{Delivery: tariff}}
	calc := NewCalculator(NewCachedSettings(src, cache.NewLRUCache(4, 0)), finderStub{branch: branch})

	sum, err := calc.DeliverySum(context.Background(), &model.Institution{ID: 1}, dest, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), sum)

	_, err = calc.DeliverySum(context.Background(), &model.Institution{ID: 1}, dest, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "глобальные настройки должны браться из кэша")
}

func TestCalculator_NoBranchMeansZeroDistance(t *testing.T) {
	calc := NewCalculator(&settingsStub{}, finderStub{})
	sum, err := calc.DeliverySum(context.Background(), &model.Institution{ID: 1}, model.Address{}, nil, &tariff)
	require.NoError(t, err)
	assert.Equal(t, tariff.MinDeliveryPrice, sum)
}

func pct(v float64) *float64 { return &v }

func TestCommissionPercent_Tiers(t *testing.T) {
	global := model.CommissionSettings{SelfPickupPercent: pct(3), DeliveryByOwnPercent: pct(7), OrdinaryPercent: pct(15)}
	inst := model.Institution{Commission: model.CommissionSettings{OrdinaryPercent: pct(12)}}

	assert.Equal(t, 12.0, CommissionPercent(inst, false, global))
	assert.Equal(t, 3.0, CommissionPercent(inst, true, global))

	inst.DeliveryByOwn = true
	assert.Equal(t, 7.0, CommissionPercent(inst, false, global))
	assert.Equal(t, 0.0, CommissionPercent(model.Institution{}, false, model.CommissionSettings{}))
}

func TestCommission_RoundsToTens(t *testing.T) {
	// 125 -> 120, 135 -> 140: половина к четному десятку
	assert.Equal(t, int64(120), Commission(1000, 12.5))
	assert.Equal(t, int64(140), Commission(1000, 13.5))
	assert.Equal(t, int64(7500), Commission(50000, 15))
}

func TestRecalculate_ExcludesIncidentItemsAndCountsPackage(t *testing.T) {
	order := model.Order{
		DiscountSum:     5000,
		PackageAmount:   2000,
		PackageQuantity: 0,
		Groups: []model.ItemGroup{{
			DeliveringSum: 10000,
			Institution:   model.Institution{Commission: model.CommissionSettings{OrdinaryPercent: pct(10)}},
			Items: []model.Item{
				{Product: model.Product{Price: 20000}, Count: 2, Options: []model.Option{{AddingPrice: 1000}}},
				{Product: model.Product{Price: 9000}, Count: 1, IsIncident: true},
			},
		}},
	}

	out := Recalculate(order, model.CommissionSettings{})

	g := out.Groups[0]
	assert.Equal(t, int64(42000), g.Items[0].TotalSum)
	assert.Equal(t, int64(9000), g.Items[1].TotalSum)
	assert.Equal(t, int64(42000), g.ProductsSum)
	assert.Equal(t, int64(52000), g.TotalSum)
	assert.Equal(t, int64(4200), g.Commission)
	assert.Equal(t, int64(44000), out.ProductsSum)
	assert.Equal(t, int64(49000), out.TotalSum)
	assert.Zero(t, order.Groups[0].Items[0].TotalSum, "исходный заказ не меняется")
}

func TestRecalculate_TotalInvariant(t *testing.T) {
	gen := generator.New(42)
	for i := int64(1); i <= 200; i++ {
		order := Recalculate(gen.Order(i), model.CommissionSettings{OrdinaryPercent: pct(10)})
		require.Equal(t, order.ProductsSum+order.DeliveringSum-order.DiscountSum, order.TotalSum, "заказ %d", i)

		var expected int64
		for _, g := range order.Groups {
			expected += g.ProductsSum
		}
		if order.PackageAmount > 0 {
			expected += PackageSum(order.PackageAmount, order.PackageQuantity)
		}
		require.Equal(t, expected, order.ProductsSum)
	}
}
