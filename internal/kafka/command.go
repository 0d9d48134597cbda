package kafka

import (
	"order_lifecycle/internal/model"
	"time"
)

type CommandType string

const (
	CommandStatus CommandType = "status"
	CommandCancel CommandType = "cancel"
	CommandAssign CommandType = "assign"
)

// Command - команда над заказом от другого сервиса. Ключ сообщения - id заказа,
// поэтому команды одного заказа читаются по порядку.
type Command struct {
	ID                string            `json:"id" validate:"required"`
	Type              CommandType       `json:"type" validate:"required,oneof=status cancel assign"`
	OrderID           int64             `json:"order_id" validate:"required,gt=0"`
	Status            model.OrderStatus `json:"status,omitempty" validate:"required_if=Type status,omitempty,order_status"`
	PreparingTime     *int              `json:"preparing_time,omitempty" validate:"omitempty,gt=0"`
	CourierID         int64             `json:"courier_id,omitempty" validate:"required_if=Type assign"`
	IgnoreConstraints bool              `json:"ignore_constraints,omitempty"`
	IssuedAt          time.Time         `json:"issued_at"`
}
