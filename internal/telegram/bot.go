// Package telegram - транспорт Telegram Bot API: отправка и правка сообщений о заказах
// и long polling нажатий кнопок.
package telegram

import (
	"context"
	"fmt"
	"order_lifecycle/internal/logger"
	"order_lifecycle/internal/notify"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// API - методы tgbotapi.BotAPI, которыми пользуется сервис.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot реализует notify.ChatBot.
type Bot struct {
	api API
	log *zap.Logger
}

// New подключается к Bot API. Логи библиотеки уходят в zap на уровне debug.
func New(token string, log *zap.Logger) (*Bot, error) {
	if err := tgbotapi.SetLogger(logger.NewPrintfAdapter(log)); err != nil {
		return nil, fmt.Errorf("логгер telegram: %w", err)
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Telegram: %w", err)
	}
	log.Info("Telegram-бот подключен", zap.String("username", api.Self.UserName))
	return NewWithAPI(api, log), nil
}

func NewWithAPI(api API, log *zap.Logger) *Bot {
	return &Bot{api: api, log: log}
}

// API возвращает клиент для опроса обновлений.
func (b *Bot) API() API {
	return b.api
}

func (b *Bot) Send(ctx context.Context, chatID int64, text string, keyboard notify.Keyboard) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = markup(keyboard)
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("отправка в чат %d: %w", chatID, err)
	}
	return int64(sent.MessageID), nil
}

// Edit заменяет текст сообщения. Клавиатура сообщения при этом убирается.
func (b *Bot) Edit(ctx context.Context, chatID, messageID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, int(messageID), text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Request(edit); err != nil {
		return fmt.Errorf("правка сообщения %d в чате %d: %w", messageID, chatID, err)
	}
	return nil
}

// markup переводит клавиатуру в формат Bot API. Пустая клавиатура убирает кнопки.
func markup(kb notify.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, r := range kb {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func keyboardOf(m *tgbotapi.InlineKeyboardMarkup) notify.Keyboard {
	if m == nil {
		return nil
	}
	kb := make(notify.Keyboard, 0, len(m.InlineKeyboard))
	for _, r := range m.InlineKeyboard {
		row := make([]notify.Button, 0, len(r))
		for _, b := range r {
			btn := notify.Button{Text: b.Text}
			if b.CallbackData != nil {
				btn.Data = *b.CallbackData
			}
			row = append(row, btn)
		}
		kb = append(kb, row)
	}
	return kb
}
