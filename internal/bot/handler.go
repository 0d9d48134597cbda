package bot

import (
	"context"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"order_lifecycle/internal/orders"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=handler.go -destination=./mocks/orders_mock.go -package=mocks Orders

// Orders - операции над заказами, доступные боту.
type Orders interface {
	Get(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, preparingTime *int) (*model.Order, error)
}

// Press - нажатие кнопки: данные кнопки, текущий текст сообщения и его клавиатура.
type Press struct {
	Data     string
	Text     string
	Keyboard notify.Keyboard
}

// Reply - ответ на нажатие. Text непустой - сообщение редактируется;
// SetKeyboard - клавиатура заменяется на Keyboard (nil убирает кнопки).
type Reply struct {
	Alert       string
	ShowAlert   bool
	Text        string
	Keyboard    notify.Keyboard
	SetKeyboard bool
}

func alert(text string) Reply {
	return Reply{Alert: text, ShowAlert: true}
}

func keyboard(kb notify.Keyboard) Reply {
	return Reply{Keyboard: kb, SetKeyboard: true}
}

type Handler struct {
	orders Orders
	log    *zap.Logger
	now    func() time.Time
}

func NewHandler(o Orders, log *zap.Logger) *Handler {
	return &Handler{orders: o, log: log, now: time.Now}
}

// Handle выполняет действие кнопки. Ошибки возвращаются сотруднику всплывающим сообщением.
func (h *Handler) Handle(ctx context.Context, p Press) Reply {
	cb, err := ParseCallback(p.Data)
	if err != nil {
		h.log.Warn("непонятная кнопка", zap.String("data", p.Data), zap.Error(err))
		return alert("Неизвестная команда")
	}
	log := h.log.With(zap.String("action", string(cb.Action)), zap.Int64("order_id", cb.OrderID))

	var r Reply
	switch cb.Action {
	case ActionAccept:
		r, err = h.accept(ctx, cb)
	case ActionReject:
		r, err = h.reject(ctx, cb)
	case ActionPrepare:
		r, err = h.prepare(ctx, cb)
	case ActionReady:
		r, err = h.ready(ctx, cb)
	case ActionShipping:
		r, err = h.shipping(ctx, cb)
	case ActionClose:
		r, err = h.close(ctx, cb)
	case ActionCourier:
		r, err = h.courier(ctx, cb, p.Text)
	case ActionStatus:
		r, err = h.status(ctx, cb, p.Keyboard)
	}
	if err != nil {
		if orders.IsClientError(err) {
			log.Info("действие кнопки отклонено", zap.Error(err))
		} else {
			log.Error("ошибка действия кнопки", zap.Error(err))
		}
		return alert(orders.Message(err).Ru)
	}
	return r
}

func (h *Handler) accept(ctx context.Context, cb Callback) (Reply, error) {
	minutes := cb.Minutes
	if _, err := h.orders.UpdateStatus(ctx, cb.OrderID, model.StatusAccepted, &minutes); err != nil {
		return Reply{}, err
	}
	return Reply{}, nil
}

func (h *Handler) reject(ctx context.Context, cb Callback) (Reply, error) {
	if _, err := h.orders.UpdateStatus(ctx, cb.OrderID, model.StatusRejected, nil); err != nil {
		return Reply{}, err
	}
	return Reply{}, nil
}

func (h *Handler) prepare(ctx context.Context, cb Callback) (Reply, error) {
	o, err := h.orders.Get(ctx, cb.OrderID)
	if err != nil {
		return Reply{}, err
	}
	if o.Status == model.StatusCooking {
		r := alert("Заказ уже в процессе...")
		r.SetKeyboard = true
		return r, nil
	}
	if _, err := h.orders.UpdateStatus(ctx, cb.OrderID, model.StatusCooking, nil); err != nil {
		return Reply{}, err
	}
	return keyboard(nil), nil
}

// prepared - время приготовления с момента начала истекло.
func (h *Handler) prepared(o *model.Order) bool {
	start := o.Timeline.PreparingStartAt
	if start == nil {
		return false
	}
	minutes := 0
	if o.PreparingTime != nil {
		minutes = *o.PreparingTime
	}
	return h.now().After(start.Add(time.Duration(minutes) * time.Minute))
}

func (h *Handler) ready(ctx context.Context, cb Callback) (Reply, error) {
	o, err := h.orders.Get(ctx, cb.OrderID)
	if err != nil {
		return Reply{}, err
	}
	if !h.prepared(o) {
		return alert("Заказ еще не готов!"), nil
	}
	if o.Status == model.StatusReady {
		r := alert("Заказ был готов недавно!")
		r.SetKeyboard = true
		return r, nil
	}

	if _, err := h.orders.UpdateStatus(ctx, cb.OrderID, model.StatusReady, nil); err != nil {
		return Reply{}, err
	}
	var kb notify.Keyboard
	if o.DeliveryByOwn() {
		kb = notify.Keyboard{{{Text: "В пути", Data: notify.CallbackData(string(ActionShipping), o.ID, 0)}}}
	}
	return keyboard(kb), nil
}

func (h *Handler) shipping(ctx context.Context, cb Callback) (Reply, error) {
	o, err := h.orders.Get(ctx, cb.OrderID)
	if err != nil {
		return Reply{}, err
	}
	if o.Status == model.StatusShipped {
		r := alert("Заказ был доставлен недавно!")
		r.SetKeyboard = true
		return r, nil
	}

	updated, err := h.orders.UpdateStatus(ctx, cb.OrderID, model.StatusShipped, nil)
	if err != nil {
		return Reply{}, err
	}
	var row []notify.Button
	if o.DeliveryByOwn() {
		row = append(row, notify.Button{Text: "Завершить", Data: notify.CallbackData(string(ActionClose), o.ID, 0)})
	}
	row = append(row, statusButton(updated))
	return keyboard(notify.Keyboard{row}), nil
}

func (h *Handler) close(ctx context.Context, cb Callback) (Reply, error) {
	o, err := h.orders.Get(ctx, cb.OrderID)
	if err != nil {
		return Reply{}, err
	}
	if o.Status == model.StatusClosed {
		r := alert("Заказ был закрыт недавно!")
		r.SetKeyboard = true
		return r, nil
	}

	updated, err := h.orders.UpdateStatus(ctx, cb.OrderID, model.StatusClosed, nil)
	if err != nil {
		return Reply{}, err
	}
	return keyboard(notify.Keyboard{{statusButton(updated)}}), nil
}

// courier дописывает к сообщению контакты курьера. Дописанное сообщение заканчивается на "-".
func (h *Handler) courier(ctx context.Context, cb Callback, text string) (Reply, error) {
	o, err := h.orders.Get(ctx, cb.OrderID)
	if err != nil {
		return Reply{}, err
	}
	if o.Courier == nil {
		return alert("У заведения пока нет курьера"), nil
	}
	if strings.HasSuffix(text, "-") {
		return Reply{}, nil
	}
	info := "\n\nИнформация о курьере:\nИмя: " + o.Courier.FirstName +
		"\nНомер телефона: +" + strings.TrimPrefix(o.Courier.Phone, "+") + " -"
	return Reply{Text: text + info}, nil
}

// status заменяет последнюю кнопку первого ряда кнопкой с текущим статусом.
func (h *Handler) status(ctx context.Context, cb Callback, current notify.Keyboard) (Reply, error) {
	o, err := h.orders.Get(ctx, cb.OrderID)
	if err != nil {
		return Reply{}, err
	}

	kb := make(notify.Keyboard, len(current))
	for i, row := range current {
		kb[i] = append([]notify.Button(nil), row...)
	}
	if len(kb) == 0 || len(kb[0]) == 0 {
		return keyboard(notify.Keyboard{{statusButton(o)}}), nil
	}
	kb[0][len(kb[0])-1] = statusButton(o)
	return keyboard(kb), nil
}

func statusButton(o *model.Order) notify.Button {
	return notify.Button{
		Text: "Статус: " + o.Status.Display(),
		Data: notify.CallbackData(string(ActionStatus), o.ID, 0),
	}
}
