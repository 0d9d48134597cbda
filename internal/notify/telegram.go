package notify

import (
	"fmt"
	"html"
	"order_lifecycle/internal/model"
	"strconv"
	"strings"
)

// AcceptPrompt завершает сообщение о новом заказе, если заведение принимает заказы через бота.
// В сохраненный текст сообщения подсказка не попадает.
const AcceptPrompt = "<b>Чтобы принять заказ, выберите время приготовления в минутах</b>"

// PreparingTimes - варианты времени приготовления на клавиатуре нового заказа.
var PreparingTimes = []int{15, 20, 30, 40, 50, 60}

var transportIcons = map[model.Transport]string{
	model.TransportCar:     "🚙",
	model.TransportScooter: "🛵",
	model.TransportFoot:    "🚶‍♂️",
}

var transportNames = map[model.Transport]string{
	model.TransportCar:     "🚙 машина",
	model.TransportScooter: "🛵 скутер",
	model.TransportFoot:    "🚶‍♂️ пешком",
}

// CallbackData кодирует действие кнопки: order:<action>:<id>:<minutes>.
func CallbackData(action string, orderID int64, minutes int) string {
	m := ""
	if minutes > 0 {
		m = strconv.Itoa(minutes)
	}
	return fmt.Sprintf("order:%s:%d:%s", action, orderID, m)
}

// NewOrderKeyboard - кнопки времени приготовления по три в ряд и кнопка отказа.
func NewOrderKeyboard(orderID int64) Keyboard {
	var kb Keyboard
	var row []Button
	for _, m := range PreparingTimes {
		row = append(row, Button{Text: fmt.Sprintf("🕐 %d мин", m), Data: CallbackData("accept", orderID, m)})
		if len(row) == 3 {
			kb = append(kb, row)
			row = nil
		}
	}
	return append(kb, []Button{{Text: "❌ Отклонить", Data: CallbackData("reject", orderID, 0)}})
}

// ReadyKeyboard - единственная кнопка "Готов" после назначения курьера.
func ReadyKeyboard(orderID int64) Keyboard {
	return Keyboard{{{Text: "Готов", Data: CallbackData("ready", orderID, 0)}}}
}

// keyboardFor выбирает клавиатуру сообщения. Заведения без заказов через бота кнопок не получают.
func keyboardFor(kind SendKind, o *model.Order, branch *model.Branch) Keyboard {
	if !branch.TelegramOrdersEnabled {
		return nil
	}
	switch kind {
	case SendNewOrder:
		return NewOrderKeyboard(o.ID)
	case SendCourier:
		return ReadyKeyboard(o.ID)
	default:
		return nil
	}
}

// formatSum разделяет разряды запятой: 50000 -> 50,000.
func formatSum(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func paymentMethodDisplay(m model.PaymentMethod) string {
	switch m {
	case model.PaymentPayme:
		return "💳 Payme"
	case model.PaymentCash:
		return "💵 Наличные"
	default:
		return "Неизвестно"
	}
}

func itemLine(it model.Item) string {
	name := it.Product.Name
	switch {
	case it.IsIncident && it.IncidentProduct != nil:
		name = it.IncidentProduct.Name + " (Замена)"
	case it.IncidentProduct != nil:
		name = it.IncidentProduct.Name + " (Новый продукт)"
	}

	options := ""
	if len(it.Options) > 0 {
		titles := make([]string, len(it.Options))
		for i, o := range it.Options {
			titles[i] = html.EscapeString(o.Title)
		}
		options = "(" + strings.Join(titles, " - ") + ")"
	}
	return fmt.Sprintf("- %s%s x %d = %s сум", html.EscapeString(name), options, it.Count, formatSum(it.TotalSum))
}

// NewOrderText - сообщение о новом заказе для чатов филиала группы.
func NewOrderText(o *model.Order, g *model.ItemGroup) string {
	lines := make([]string, len(g.Items))
	for i, it := range g.Items {
		lines[i] = itemLine(it)
	}

	pkg := ""
	if o.PackageQuantity > 0 {
		pkg = fmt.Sprintf("<i>- Пакет х %d = %d</i>\n", o.PackageQuantity, o.PackageQuantity*o.PackageAmount)
	}
	note := ""
	if o.Note != "" {
		note = "\n<b>Комментарий к заказу:</b>\n<i>" + html.EscapeString(o.Note) + "</i>"
	}
	prompt := ""
	if g.Branch.TelegramOrdersEnabled {
		prompt = AcceptPrompt
	}

	return fmt.Sprintf(`
<b>🆕 Новый заказ №%d</b>

<b>Заведение - %s</b>
<b>Метод оплаты:</b> <i>%s</i>

<b>🧺 В корзине:</b>
<i>%s</i>
%s
Сумма продуктов: <b>%s сум</b>
К оплате: <b>%s сум</b>
%s
%s
`,
		o.ID, html.EscapeString(g.Branch.Name), paymentMethodDisplay(o.PaymentMethod),
		strings.Join(lines, "\n"), pkg, formatSum(g.ProductsSum), formatSum(o.ProductsSum), note, prompt)
}

// CourierText - сообщение о назначенном курьере.
func CourierText(o *model.Order, c *model.Courier) string {
	transport, ok := transportNames[c.Transport]
	if !ok {
		transport = "неизвестный транспорт"
	}
	return fmt.Sprintf("<b>%s Заказ №%d принят курьером, начинайте готовить.\n\n", transportIcons[c.Transport], o.ID) +
		"Информация о курьере:</b>\n" +
		"Имя: " + html.EscapeString(c.FirstName) + "\n" +
		"Номер телефона: +" + strings.TrimPrefix(c.Phone, "+") + "\n" +
		"Транспорт: " + transport
}

// CancelText - короткое сообщение об отмене заказа.
func CancelText(orderID int64) string {
	return fmt.Sprintf("<b>❌ Заказ №%d отменен</b>.", orderID)
}

// EditedText дописывает баннер к сохраненному тексту сообщения.
func EditedText(text string, e ChatEdit) string {
	base := strings.TrimRight(text, "\n")
	switch e.Kind {
	case EditAccepted:
		return base + fmt.Sprintf("\n✅ <b>Заказ принят</b>\n⏳ Время приготовления: <b>%d мин</b>", e.Minutes)
	case EditIncident:
		return base + "\n<b>❗️ Замена продукта в заказе</b>"
	case EditPaymeError:
		return base + "\n<b>❌ Ошибка оплаты</b>\n" + html.EscapeString(e.Detail)
	case EditCancel:
		return base + "\n<b>❌ Заказ отменен</b>."
	default:
		return base
	}
}

// ParseChatIDs разбирает список чатов филиала через пробел. Некорректные id пропускаются.
func ParseChatIDs(s string) (ids []int64, invalid []string) {
	for _, f := range strings.Fields(s) {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			invalid = append(invalid, f)
			continue
		}
		ids = append(ids, id)
	}
	return ids, invalid
}
