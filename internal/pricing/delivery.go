// Package pricing считает стоимость доставки, комиссию платформы и суммы заказа.
package pricing

import (
	"context"
	"fmt"
	"math"
	"order_lifecycle/internal/cache"
	"order_lifecycle/internal/geo"
	"order_lifecycle/internal/model"
)

// SettingsSource отдает глобальные настройки платформы.
type SettingsSource interface {
	GetGlobalSettings(ctx context.Context) (*model.GlobalSettings, error)
}

// BranchFinder подбирает филиал, открытый сейчас.
type BranchFinder interface {
	Suitable(ctx context.Context, institutionID int64, dest model.Address) (*model.Branch, error)
}

// Calculator считает стоимость доставки для заказа.
type Calculator struct {
	settings SettingsSource
	branches BranchFinder
}

func NewCalculator(settings SettingsSource, branches BranchFinder) *Calculator {
	return &Calculator{settings: settings, branches: branches}
}

// GlobalSettings возвращает глобальные настройки платформы.
func (c *Calculator) GlobalSettings(ctx context.Context) (*model.GlobalSettings, error) {
	s, err := c.settings.GetGlobalSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить настройки платформы: %w", err)
	}
	return s, nil
}

// DeliverySum считает стоимость доставки от филиала до адреса заказа.
// Если филиал не передан, он подбирается среди открытых сейчас; без филиала расстояние считается нулевым.
// global может быть nil - тогда тариф берется из настроек платформы.
func (c *Calculator) DeliverySum(ctx context.Context, inst *model.Institution, dest model.Address, branch *model.Branch, global *model.DeliverySettings) (int64, error) {
	if inst.FreeDelivery {
		return 0, nil
	}

	settings := inst.Delivery
	if settings == nil {
		settings = global
	}
	if settings == nil {
		gs, err := c.GlobalSettings(ctx)
		if err != nil {
			return 0, err
		}
		settings = &gs.Delivery
	}

	if branch == nil && c.branches != nil {
		b, err := c.branches.Suitable(ctx, inst.ID, dest)
		if err != nil {
			return 0, err
		}
		branch = b
	}

	distance := 0.0
	if branch != nil && branch.Address != nil {
		distance = geo.Distance(*branch.Address, dest)
	}
	return DeliveryPrice(*settings, distance), nil
}

// DeliveryPrice применяет тариф к расстоянию в километрах.
func DeliveryPrice(s model.DeliverySettings, distanceKm float64) int64 {
	if distanceKm < s.MinDistance {
		return s.MinDeliveryPrice
	}
	return RoundHalfEven(float64(s.MinDeliveryPrice)+float64(s.PricePerKm)*distanceKm, 2)
}

// RoundHalfEven округляет до 10^digits, половины - к четному (как round(x, -digits)).
func RoundHalfEven(x float64, digits int) int64 {
	unit := math.Pow(10, float64(digits))
	return int64(math.RoundToEven(x/unit) * unit)
}

// CachedSettings кэширует глобальные настройки платформы.
type CachedSettings struct {
	source SettingsSource
	cache  cache.Cache
}

func NewCachedSettings(source SettingsSource, c cache.Cache) *CachedSettings {
	return &CachedSettings{source: source, cache: c}
}

func (s *CachedSettings) GetGlobalSettings(ctx context.Context) (*model.GlobalSettings, error) {
	if v, ok := s.cache.Get(ctx, cache.GlobalSettingsKey); ok {
		if gs, ok := v.(*model.GlobalSettings); ok {
			return gs, nil
		}
	}
	gs, err := s.source.GetGlobalSettings(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.GlobalSettingsKey, gs)
	return gs, nil
}
