package api

import (
	"errors"
	"net/http"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/i18n"
	"order_lifecycle/internal/orders"
	"order_lifecycle/internal/promo"
)

var invalidRequest = i18n.Message{
	Uz: "So'rov noto'g'ri to'ldirilgan.",
	Ru: "Некорректный запрос.",
	En: "Invalid request.",
}

// errorResponse - тело ответа с ошибкой. Detail - сообщение на языке из Accept-Language,
// Fields - нарушенные правила по полям запроса.
type errorResponse struct {
	Error   string            `json:"error"`
	Message i18n.Message      `json:"message"`
	Detail  string            `json:"detail"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// statusFor сопоставляет ошибку контроллера HTTP-статусу и коду ошибки.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, orders.ErrCourierNotFound),
		errors.Is(err, promo.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, orders.ErrPaymentFailed):
		return http.StatusPaymentRequired, "payment_failed"
	case errors.Is(err, database.ErrLockTimeout), errors.Is(err, orders.ErrInProcess),
		errors.Is(err, orders.ErrSameStatus), errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrCourierRequired), errors.Is(err, orders.ErrCancelNotAllowed):
		return http.StatusConflict, "conflict"
	case orders.IsClientError(err):
		return http.StatusUnprocessableEntity, "rejected"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
