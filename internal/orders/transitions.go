package orders

import "order_lifecycle/internal/model"

// transitions - допустимые переходы статусов. Закрытый и отмененный заказы не меняются.
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPreOrder: {model.StatusCreated, model.StatusRejected},
	model.StatusCreated:  {model.StatusPending, model.StatusAccepted, model.StatusRejected},
	model.StatusPending:  {model.StatusAccepted, model.StatusRejected},
	model.StatusAccepted: {model.StatusCooking, model.StatusReady, model.StatusIncident, model.StatusShipped, model.StatusRejected},
	model.StatusCooking:  {model.StatusReady, model.StatusIncident, model.StatusShipped, model.StatusRejected},
	model.StatusIncident: {model.StatusAccepted, model.StatusCooking, model.StatusReady, model.StatusShipped, model.StatusRejected},
	model.StatusReady:    {model.StatusShipped, model.StatusIncident, model.StatusRejected, model.StatusClosed},
	model.StatusShipped:  {model.StatusClosed, model.StatusRejected},
}

// CanTransition сообщает, разрешен ли переход from -> to.
func CanTransition(from, to model.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// checkTransition проверяет переход и наличие курьера.
// Курьер нужен, когда заказ ушел дальше стадии создания, целевой статус зависит от курьера
// и заказ везет курьер платформы.
func checkTransition(o *model.Order, to model.OrderStatus) error {
	if o.Status == to {
		return ErrSameStatus
	}
	if !CanTransition(o.Status, to) {
		return ErrInvalidTransition
	}

	switch o.Status {
	case model.StatusPreOrder, model.StatusCreated, model.StatusPending:
		return nil
	}
	if to == model.StatusRejected || to == model.StatusIncident {
		return nil
	}
	if o.NeedsPlatformCourier() && o.CourierID == nil {
		return ErrCourierRequired
	}
	return nil
}
