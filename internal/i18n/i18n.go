// Package i18n хранит пользовательские сообщения на трех языках платформы.
package i18n

import (
	"golang.org/x/text/language"
)

// Message - текст на узбекском, русском и английском.
type Message struct {
	Uz string `json:"uz"`
	Ru string `json:"ru"`
	En string `json:"en"`
}

// Поддерживаемые языки. Первый - язык по умолчанию.
var supported = []language.Tag{language.Russian, language.Uzbek, language.English}

var matcher = language.NewMatcher(supported)

// In возвращает текст на языке, лучше всего подходящем под заголовок Accept-Language.
// Пустой или непонятный заголовок дает русский текст.
func (m Message) In(acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	switch supported[idx] {
	case language.Uzbek:
		return m.Uz
	case language.English:
		return m.En
	default:
		return m.Ru
	}
}

// IsZero - сообщение не задано.
func (m Message) IsZero() bool {
	return m.Uz == "" && m.Ru == "" && m.En == ""
}

var OrderNotFound = Message{
	Uz: "Buyurtma topilmadi.",
	Ru: "Заказ не найден.",
	En: "Order not found.",
}
