package notify

import (
	"context"
	"order_lifecycle/internal/model"
)

//go:generate mockgen -source=ports.go -destination=./mocks/ports_mock.go -package=mocks

// Publisher публикует событие в realtime-канал (institution_{id}, operator, courier, client_{id}, ready_orders).
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// ChatBot отправляет и редактирует сообщения в чатах заведений.
type ChatBot interface {
	Send(ctx context.Context, chatID int64, text string, keyboard Keyboard) (messageID int64, err error)
	Edit(ctx context.Context, chatID, messageID int64, text string) error
}

// Pusher отправляет push-уведомление в топик.
type Pusher interface {
	Send(ctx context.Context, push Push) error
}

// MessageStore хранит id отправленных в Telegram сообщений заказа.
type MessageStore interface {
	GetTelegramMessage(ctx context.Context, orderID int64) (*model.TelegramMessage, error)
	SaveTelegramMessage(ctx context.Context, msg *model.TelegramMessage) error
}

// Push - уведомление в топик. DataOnly - без системного баннера, заголовок и текст уходят в data.
type Push struct {
	Topic    string
	Title    string
	Body     string
	Data     map[string]string
	DataOnly bool
	Sound    string
}

// Button - кнопка inline-клавиатуры с данными callback.
type Button struct {
	Text string
	Data string
}

// Keyboard - ряды кнопок. nil - сообщение без клавиатуры.
type Keyboard [][]Button
