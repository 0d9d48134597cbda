package pricing

import "order_lifecycle/internal/model"

// CommissionPercent выбирает процент комиссии: самовывоз, собственная доставка заведения или обычный заказ.
// Незаданный процент заведения берется из настроек платформы.
func CommissionPercent(inst model.Institution, selfPickup bool, global model.CommissionSettings) float64 {
	own, fallback := inst.Commission.OrdinaryPercent, global.OrdinaryPercent
	switch {
	case selfPickup:
		own, fallback = inst.Commission.SelfPickupPercent, global.SelfPickupPercent
	case inst.DeliveryByOwn:
		own, fallback = inst.Commission.DeliveryByOwnPercent, global.DeliveryByOwnPercent
	}
	if own != nil {
		return *own
	}
	if fallback != nil {
		return *fallback
	}
	return 0
}

// Commission - доля платформы от суммы продуктов, округленная до десятков.
func Commission(productsSum int64, percent float64) int64 {
	return RoundHalfEven(float64(productsSum)*percent/100, 1)
}
