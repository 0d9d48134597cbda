package notify

import (
	"order_lifecycle/internal/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *model.Order {
	courierID := int64(7)
	return &model.Order{
		ID:              42,
		Status:          model.StatusCreated,
		PaymentMethod:   model.PaymentCash,
		ProductsSum:     54000,
		DeliveringSum:   10000,
		TotalSum:        64000,
		PackageAmount:   2000,
		PackageQuantity: 2,
		CustomerID:      100,
		CustomerPhone:   "+998901234567",
		CourierID:       &courierID,
		Note:            "без <лука>",
		Address:         model.Address{Latitude: 41.3, Longitude: 69.2},
		Groups: []model.ItemGroup{{
			ID:            5,
			Institution:   model.Institution{ID: 3, Name: "Плов Центр"},
			Branch:        model.Branch{ID: 9, Name: "Чиланзар", TelegramChatIDs: "-1001 -1002", TelegramOrdersEnabled: true},
			ProductsSum:   50000,
			DeliveringSum: 10000,
			TotalSum:      60000,
			Items: []model.Item{
				{Product: model.Product{Name: "Плов"}, Count: 2, TotalSum: 50000, Options: []model.Option{{Title: "большой"}, {Title: "с яйцом"}}},
			},
		}},
		Courier: &model.Courier{ID: 7, FirstName: "Азиз", Phone: "+998907654321", Transport: model.TransportScooter},
	}
}

func TestNewOrderKeyboard(t *testing.T) {
	kb := NewOrderKeyboard(42)

	require.Len(t, kb, 3)
	assert.Len(t, kb[0], 3)
	assert.Len(t, kb[1], 3)
	require.Len(t, kb[2], 1)
	assert.Equal(t, Button{Text: "🕐 15 мин", Data: "order:accept:42:15"}, kb[0][0])
	assert.Equal(t, Button{Text: "🕐 60 мин", Data: "order:accept:42:60"}, kb[1][2])
	assert.Equal(t, Button{Text: "❌ Отклонить", Data: "order:reject:42:"}, kb[2][0])
}

func TestKeyboardFor(t *testing.T) {
	o := testOrder()
	b := &o.Groups[0].Branch

	assert.Len(t, keyboardFor(SendNewOrder, o, b), 3)
	assert.Equal(t, ReadyKeyboard(42), keyboardFor(SendCourier, o, b))
	assert.Nil(t, keyboardFor(SendCancel, o, b))

	b.TelegramOrdersEnabled = false
	assert.Nil(t, keyboardFor(SendNewOrder, o, b))
}

func TestFormatSum(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		50000:   "50,000",
		1234567: "1,234,567",
		-250000: "-250,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatSum(in), "sum %d", in)
	}
}

func TestNewOrderText(t *testing.T) {
	o := testOrder()
	text := NewOrderText(o, o.Group())

	assert.Contains(t, text, "<b>🆕 Новый заказ №42</b>")
	assert.Contains(t, text, "<b>Заведение - Чиланзар</b>")
	assert.Contains(t, text, "<i>💵 Наличные</i>")
	assert.Contains(t, text, "- Плов(большой - с яйцом) x 2 = 50,000 сум")
	assert.Contains(t, text, "<i>- Пакет х 2 = 4000</i>")
	assert.Contains(t, text, "Сумма продуктов: <b>50,000 сум</b>")
	assert.Contains(t, text, "К оплате: <b>54,000 сум</b>")
	assert.Contains(t, text, "<i>без &lt;лука&gt;</i>")
	assert.True(t, strings.Contains(text, AcceptPrompt))

	o.Groups[0].Branch.TelegramOrdersEnabled = false
	assert.NotContains(t, NewOrderText(o, o.Group()), AcceptPrompt)
}

func TestNewOrderText_Incident(t *testing.T) {
	o := testOrder()
	o.PaymentMethod = model.PaymentPayme
	o.Groups[0].Items = append(o.Groups[0].Items,
		model.Item{Product: model.Product{Name: "Самса"}, Count: 1, TotalSum: 8000, IsIncident: true, IncidentProduct: &model.Product{Name: "Манты"}},
	)

	text := NewOrderText(o, o.Group())
	assert.Contains(t, text, "<i>💳 Payme</i>")
	assert.Contains(t, text, "- Манты (Замена) x 1 = 8,000 сум")
}

func TestCourierText(t *testing.T) {
	o := testOrder()
	text := CourierText(o, o.Courier)

	assert.True(t, strings.HasPrefix(text, "<b>🛵 Заказ №42 принят курьером, начинайте готовить.\n\n"))
	assert.Contains(t, text, "Имя: Азиз\n")
	assert.Contains(t, text, "Номер телефона: +998907654321\n")
	assert.True(t, strings.HasSuffix(text, "Транспорт: 🛵 скутер"))
}

func TestEditedText(t *testing.T) {
	base := "заказ\n\n"

	assert.Equal(t, "заказ\n✅ <b>Заказ принят</b>\n⏳ Время приготовления: <b>20 мин</b>",
		EditedText(base, ChatEdit{Kind: EditAccepted, Minutes: 20}))
	assert.Equal(t, "заказ\n<b>❗️ Замена продукта в заказе</b>", EditedText(base, ChatEdit{Kind: EditIncident}))
	assert.Equal(t, "заказ\n<b>❌ Ошибка оплаты</b>\nкарта заблокирована",
		EditedText(base, ChatEdit{Kind: EditPaymeError, Detail: "карта заблокирована"}))
	assert.Equal(t, "заказ\n<b>❌ Заказ отменен</b>.", EditedText(base, ChatEdit{Kind: EditCancel}))
}

func TestEditedText_Accumulates(t *testing.T) {
	text := EditedText("заказ", ChatEdit{Kind: EditAccepted, Minutes: 15})
	text = EditedText(text, ChatEdit{Kind: EditIncident})

	assert.Contains(t, text, "Заказ принят")
	assert.Contains(t, text, "Замена продукта")
}

func TestParseChatIDs(t *testing.T) {
	ids, invalid := ParseChatIDs(" -1001  -1002 abc ")

	assert.Equal(t, []int64{-1001, -1002}, ids)
	assert.Equal(t, []string{"abc"}, invalid)
}
