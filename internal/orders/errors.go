package orders

import (
	"errors"
	"order_lifecycle/internal/assignment"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/i18n"
	"order_lifecycle/internal/payment"
	"order_lifecycle/internal/promo"
)

var (
	ErrSameStatus        = errors.New("заказ уже в этом статусе")
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
	ErrCourierRequired   = errors.New("заказу не назначен курьер")
	ErrInProcess         = errors.New("заказ уже обрабатывается")
	ErrPaymentFailed     = errors.New("оплата не прошла")
	ErrCancelNotAllowed  = errors.New("заказ нельзя отменить")
	ErrCourierNotFound   = errors.New("курьер не найден")

	ErrInstitutionUnavailable = errors.New("заведение сейчас не принимает заказы")
	ErrUnknownProduct         = errors.New("продукт не найден")
	ErrNoOperator             = errors.New("нет доступных операторов")
	ErrPreorderTime           = errors.New("некорректное время предзаказа")
	ErrInvalidAmount          = errors.New("сумма должна быть положительной")
)

var messages = []struct {
	err error
	msg i18n.Message
}{
	{database.ErrNotFound, i18n.OrderNotFound},
	{ErrSameStatus, i18n.Message{
		Uz: "Buyurtma allaqachon shu holatda.",
		Ru: "Заказ уже в этом статусе.",
		En: "The order already has this status.",
	}},
	{ErrInvalidTransition, i18n.Message{
		Uz: "Buyurtmani bu holatga o'tkazib bo'lmaydi.",
		Ru: "Заказ нельзя перевести в этот статус.",
		En: "The order cannot be moved to this status.",
	}},
	{ErrCourierRequired, i18n.Message{
		Uz: "Buyurtmaga hali kuryer biriktirilmagan.",
		Ru: "Заказу еще не назначен курьер.",
		En: "No courier has been assigned to the order yet.",
	}},
	{ErrInProcess, i18n.Message{
		Uz: "Buyurtma allaqachon qayta ishlanmoqda.",
		Ru: "Заказ уже обрабатывается.",
		En: "The order is already being processed.",
	}},
	{ErrPaymentFailed, i18n.Message{
		Uz: "To'lov amalga oshmadi.",
		Ru: "Оплата не прошла.",
		En: "Payment failed.",
	}},
	{ErrCancelNotAllowed, i18n.Message{
		Uz: "Buyurtmani bekor qilib bo'lmaydi.",
		Ru: "Заказ нельзя отменить.",
		En: "The order cannot be cancelled.",
	}},
	{ErrCourierNotFound, i18n.Message{
		Uz: "Kuryer topilmadi.",
		Ru: "Курьер не найден.",
		En: "Courier not found.",
	}},
	{ErrInstitutionUnavailable, i18n.Message{
		Uz: "Muassasa hozir buyurtma qabul qilmayapti.",
		Ru: "Заведение сейчас не принимает заказы.",
		En: "The institution is not accepting orders right now.",
	}},
	{ErrUnknownProduct, i18n.Message{
		Uz: "Mahsulot topilmadi.",
		Ru: "Продукт не найден.",
		En: "Product not found.",
	}},
	{ErrNoOperator, i18n.Message{
		Uz: "Buyurtma uchun bo'sh operator yo'q.",
		Ru: "Нет доступных операторов для назначения на заказ.",
		En: "No operators are available for the order.",
	}},
	{ErrPreorderTime, i18n.Message{
		Uz: "Oldindan buyurtma vaqti noto'g'ri.",
		Ru: "Некорректное время предзаказа.",
		En: "Invalid pre-order time.",
	}},
	{ErrInvalidAmount, i18n.Message{
		Uz: "Summa musbat bo'lishi kerak.",
		Ru: "Сумма должна быть положительной.",
		En: "The amount must be positive.",
	}},
	{database.ErrLockTimeout, i18n.Message{
		Uz: "Buyurtma hozir yangilanmoqda, qayta urinib ko'ring.",
		Ru: "Заказ сейчас обновляется, попробуйте еще раз.",
		En: "The order is being updated, please try again.",
	}},
	{promo.ErrNotFound, i18n.Message{
		Uz: "Promokod topilmadi.",
		Ru: "Промокод не найден.",
		En: "Promo code not found.",
	}},
	{promo.ErrInactive, i18n.Message{
		Uz: "Promokod faol emas.",
		Ru: "Промокод неактивен.",
		En: "The promo code is not active.",
	}},
	{promo.ErrAlreadyUsed, i18n.Message{
		Uz: "Siz bu promokoddan allaqachon foydalangansiz.",
		Ru: "Вы уже использовали этот промокод.",
		En: "You have already used this promo code.",
	}},
	{promo.ErrBelowMinimum, i18n.Message{
		Uz: "Buyurtma summasi promokod uchun yetarli emas.",
		Ru: "Сумма заказа меньше минимальной для промокода.",
		En: "The order total is below the promo code minimum.",
	}},
}

var internalError = i18n.Message{
	Uz: "Ichki xatolik yuz berdi.",
	Ru: "Произошла внутренняя ошибка.",
	En: "Internal error.",
}

// Message возвращает текст ошибки для пользователя. Отказ в назначении курьера несет свой текст,
// для ошибки оплаты в русский текст добавляется ответ шлюза.
func Message(err error) i18n.Message {
	var rej *assignment.Rejection
	if errors.As(err, &rej) {
		return rej.Message
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			msg := m.msg
			if m.err == ErrPaymentFailed {
				msg.Ru += " " + payment.Reason(err)
			}
			return msg
		}
	}
	return internalError
}

// IsClientError - ошибка вызвана запросом, а не сбоем сервиса.
func IsClientError(err error) bool {
	var rej *assignment.Rejection
	if errors.As(err, &rej) {
		return true
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return false
}
