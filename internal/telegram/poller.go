package telegram

import (
	"context"
	"order_lifecycle/internal/bot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Handler обрабатывает нажатие кнопки.
type Handler interface {
	Handle(ctx context.Context, p bot.Press) bot.Reply
}

// Poller получает обновления long polling и передает нажатия кнопок в Handler.
type Poller struct {
	api     API
	handler Handler
	log     *zap.Logger
	timeout int
}

func NewPoller(api API, h Handler, log *zap.Logger) *Poller {
	return &Poller{api: api, handler: h, log: log, timeout: 60}
}

// Run читает обновления до отмены контекста. Нажатия обрабатываются по одному.
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.api.GetUpdatesChan(u)
	p.log.Info("Telegram polling запущен")

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			p.log.Info("Telegram polling остановлен")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.CallbackQuery != nil {
				p.handle(ctx, upd.CallbackQuery)
			}
		}
	}
}

func (p *Poller) handle(ctx context.Context, q *tgbotapi.CallbackQuery) {
	press := bot.Press{Data: q.Data}
	msg := q.Message
	if msg != nil {
		press.Text = msg.Text
		press.Keyboard = keyboardOf(msg.ReplyMarkup)
	}

	r := p.handler.Handle(ctx, press)

	if msg != nil && msg.Chat != nil {
		if edit, ok := editFor(msg, r); ok {
			if _, err := p.api.Request(edit); err != nil {
				p.log.Warn("не удалось обновить сообщение",
					zap.Int64("chat_id", msg.Chat.ID), zap.Int("message_id", msg.MessageID), zap.Error(err))
			}
		}
	}

	answer := tgbotapi.NewCallback(q.ID, r.Alert)
	answer.ShowAlert = r.ShowAlert
	if _, err := p.api.Request(answer); err != nil {
		p.log.Warn("не удалось ответить на нажатие", zap.String("callback_id", q.ID), zap.Error(err))
	}
}

// editFor выбирает правку сообщения по ответу обработчика.
// При замене только текста текущая клавиатура сохраняется.
func editFor(msg *tgbotapi.Message, r bot.Reply) (tgbotapi.Chattable, bool) {
	chatID, id := msg.Chat.ID, msg.MessageID
	switch {
	case r.Text != "" && r.SetKeyboard:
		return tgbotapi.NewEditMessageTextAndMarkup(chatID, id, r.Text, markup(r.Keyboard)), true
	case r.Text != "":
		edit := tgbotapi.NewEditMessageText(chatID, id, r.Text)
		edit.ReplyMarkup = msg.ReplyMarkup
		return edit, true
	case r.SetKeyboard:
		return tgbotapi.NewEditMessageReplyMarkup(chatID, id, markup(r.Keyboard)), true
	default:
		return nil, false
	}
}
