// Package assignment проверяет, может ли курьер взять заказ.
package assignment

import (
	"order_lifecycle/internal/i18n"
	"order_lifecycle/internal/model"
)

// MaxActiveOrders - сколько заказов в статусах accepted/shipped курьер может держать одновременно.
const MaxActiveOrders = 3

type Reason string

const (
	ReasonSelfPickup       Reason = "self_pickup"
	ReasonOwnDelivery      Reason = "own_delivery"
	ReasonAlreadyAssigned  Reason = "already_assigned"
	ReasonActiveLimit      Reason = "active_limit"
	ReasonNotEnoughBalance Reason = "not_enough_balance"
)

// Rejection - отказ в назначении с текстом для курьера.
type Rejection struct {
	Reason  Reason
	Message i18n.Message
}

func (r *Rejection) Error() string {
	return string(r.Reason) + ": " + r.Message.Ru
}

var messages = map[Reason]i18n.Message{
	ReasonSelfPickup: {
		Uz: "Kechirasiz, bu buyurtmani mijoz o‘zi olib ketishni tanlagan.",
		Ru: "Извините, клиент выбрал самовывоз для этого заказа.",
		En: "Sorry, the customer has chosen to pick up this order themselves.",
	},
	ReasonOwnDelivery: {
		Uz: "Ushbu buyurtma muassasaning o'z yetkazib berish xizmati tomonidan yetkazib berilishi kerak.",
		Ru: "Данный заказ должен быть доставлен собственной службой доставки учреждения.",
		En: "This order must be delivered by the institution's own delivery service.",
	},
	ReasonAlreadyAssigned: {
		Uz: "Kechirasiz, bu buyurtma allaqachon boshqa kuryerga topshirilgan.",
		Ru: "Извините, этот заказ уже передан другому курьеру.",
		En: "Sorry, this order has already been assigned to another courier.",
	},
	ReasonActiveLimit: {
		Uz: "Kechirasiz, sizda ruxsat etilgan limit doirasida faol buyurtmalar mavjud. Yangi buyurtma olish uchun avval mavjud buyurtmalarni yakunlang.",
		Ru: "Извините, у вас уже есть активные заказы в пределах допустимого лимита. Пожалуйста, завершите текущие заказы, прежде чем принимать новые.",
		En: "Sorry, you already have active orders within your allowed limit. Please complete your current orders before accepting a new one.",
	},
	ReasonNotEnoughBalance: {
		Uz: "Kechirasiz, buyurtmani rasmiylashtirish uchun balansingizda yetarli mablag' mavjud emas.",
		Ru: "Извините, на вашем балансе недостаточно средств для оформления заказа.",
		En: "Sorry, you don't have enough balance to complete the order.",
	},
}

func reject(r Reason) *Rejection {
	return &Rejection{Reason: r, Message: messages[r]}
}

// Validate проверяет назначение курьера на заказ. activeOrders - число заказов курьера
// в статусах accepted и shipped. Возвращает nil, если назначение разрешено.
//
// Проверки идут по порядку: самовывоз, собственная доставка заведения, уже назначенный курьер,
// лимит активных заказов, баланс курьера для наличных заказов, которые он выкупает сам.
func Validate(order *model.Order, courier *model.Courier, activeOrders int) *Rejection {
	if order.SelfPickup {
		return reject(ReasonSelfPickup)
	}
	if order.DeliveryByOwn() {
		return reject(ReasonOwnDelivery)
	}
	if order.CourierID != nil {
		return reject(ReasonAlreadyAssigned)
	}
	if activeOrders >= MaxActiveOrders {
		return reject(ReasonActiveLimit)
	}
	if CourierPaysUpfront(order) && courier.Balance < order.TotalSum {
		return reject(ReasonNotEnoughBalance)
	}
	return nil
}

// CourierPaysUpfront - наличный заказ, который курьер выкупает за свой счет:
// заказ ушел во внешнюю кухонную систему или заведение работает через холдинг.
func CourierPaysUpfront(order *model.Order) bool {
	if order.PaymentMethod != model.PaymentCash {
		return false
	}
	g := order.Group()
	return order.HasExternalKitchen() || (g != nil && g.Institution.IsHolding)
}
