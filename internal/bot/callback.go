// Package bot обрабатывает нажатия кнопок под сообщениями о заказах в чатах заведений.
package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadCallback = errors.New("некорректные данные кнопки")

// Action - действие кнопки.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionPrepare  Action = "prepare"
	ActionReady    Action = "ready"
	ActionShipping Action = "shipping"
	ActionClose    Action = "close"
	ActionCourier  Action = "courier"
	ActionStatus   Action = "status"
)

var actions = map[Action]bool{
	ActionAccept: true, ActionReject: true, ActionPrepare: true, ActionReady: true,
	ActionShipping: true, ActionClose: true, ActionCourier: true, ActionStatus: true,
}

// Callback - разобранные данные кнопки order:<action>:<id>[:<minutes>].
type Callback struct {
	Action  Action
	OrderID int64
	Minutes int
}

// ParseCallback разбирает данные кнопки. Время приготовления обязательно только для accept.
func ParseCallback(data string) (Callback, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 3 || len(parts) > 4 || parts[0] != "order" {
		return Callback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}

	cb := Callback{Action: Action(parts[1])}
	if !actions[cb.Action] {
		return Callback{}, fmt.Errorf("%w: неизвестное действие %q", ErrBadCallback, parts[1])
	}

	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id <= 0 {
		return Callback{}, fmt.Errorf("%w: id заказа %q", ErrBadCallback, parts[2])
	}
	cb.OrderID = id

	if len(parts) == 4 && parts[3] != "" {
		m, err := strconv.Atoi(parts[3])
		if err != nil || m <= 0 {
			return Callback{}, fmt.Errorf("%w: время приготовления %q", ErrBadCallback, parts[3])
		}
		cb.Minutes = m
	}
	if cb.Action == ActionAccept && cb.Minutes == 0 {
		return Callback{}, fmt.Errorf("%w: не указано время приготовления", ErrBadCallback)
	}
	return cb, nil
}
