package generator

import (
	"order_lifecycle/internal/model"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Generator создает правдоподобные случайные заказы, курьеров и филиалы
// для тестов и симулятора нагрузки.
type Generator struct {
	f *gofakeit.Faker
}

// New создает генератор. Одинаковый seed дает одинаковые данные; 0 - случайный seed.
func New(seed int64) *Generator {
	return &Generator{f: gofakeit.New(seed)}
}

// Tashkent - центр области, вокруг которого генерируются адреса.
var Tashkent = model.Address{Latitude: 41.311, Longitude: 69.279}

// Address возвращает точку в пределах ~10 км от центра.
func (g *Generator) Address() model.Address {
	return model.Address{
		Latitude:  Tashkent.Latitude + g.f.Float64Range(-0.09, 0.09),
		Longitude: Tashkent.Longitude + g.f.Float64Range(-0.09, 0.09),
		Street:    g.f.Street(),
	}
}

// Institution создает заведение с процентом комиссии.
func (g *Generator) Institution(id int64) model.Institution {
	pct := float64(g.f.Number(5, 20))
	return model.Institution{
		ID:              id,
		Name:            g.f.Company(),
		Balance:         int64(g.f.Number(0, 1000)) * 1000,
		MaxDeliveryTime: g.f.RandomInt([]int{30, 40, 45, 60}),
		Commission:      model.CommissionSettings{OrdinaryPercent: &pct},
	}
}

// Branch создает филиал, открытый ежедневно с 08:00 до 23:00.
func (g *Generator) Branch(id, institutionID int64) model.Branch {
	addr := g.Address()
	b := model.Branch{
		ID:                    id,
		InstitutionID:         institutionID,
		Name:                  g.f.Street(),
		IsActive:              true,
		IsOpen:                true,
		Address:               &addr,
		TelegramChatIDs:       "-100" + g.f.DigitN(9),
		TelegramOrdersEnabled: true,
		MinPreorderMinutes:    60,
		MaxPreorderDays:       3,
		PreparingTime:         20,
		MaxDeliveryTime:       40,
		PackageSpicID:         g.f.DigitN(17),
		PackageCode:           g.f.DigitN(7),
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		b.Schedule = append(b.Schedule, model.ScheduleEntry{
			BranchID:  id,
			DayOfWeek: model.WeekdayOf(d),
			StartTime: model.NewClockTime(8, 0),
			EndTime:   model.NewClockTime(23, 0),
			IsActive:  true,
		})
	}
	return b
}

// Item создает позицию с 0-2 опциями. Цены кратны 500 сум.
func (g *Generator) Item() model.Item {
	item := model.Item{
		Product: model.Product{
			ID:    int64(g.f.Number(1, 100000)),
			UUID:  g.f.UUID(),
			Name:  g.f.ProductName(),
			Price: int64(g.f.Number(6, 120)) * 500,
			VAT:   12,
		},
		Count: int64(g.f.Number(1, 4)),
	}
	for i := 0; i < g.f.Number(0, 2); i++ {
		item.Options = append(item.Options, model.Option{
			ID:          int64(g.f.Number(1, 100000)),
			UUID:        g.f.UUID(),
			Title:       g.f.Adjective(),
			AddingPrice: int64(g.f.Number(0, 10)) * 500,
		})
	}
	return item
}

// Courier создает свободного курьера.
func (g *Generator) Courier(id int64) model.Courier {
	return model.Courier{
		ID:        id,
		UserID:    id + 1000,
		FirstName: g.f.FirstName(),
		Phone:     "998" + g.f.DigitN(9),
		Status:    model.CourierFree,
		Transport: model.Transport(g.f.RandomString([]string{"car", "scooter", "foot"})),
		Balance:   int64(g.f.Number(0, 500)) * 1000,
	}
}

// Order создает заказ в статусе created с одной группой позиций. Суммы позиций и заказа не заполнены.
func (g *Generator) Order(id int64) model.Order {
	inst := g.Institution(int64(g.f.Number(1, 500)))
	branch := g.Branch(int64(g.f.Number(1, 5000)), inst.ID)

	group := model.ItemGroup{
		ID:            id * 10,
		OrderID:       id,
		Institution:   inst,
		Branch:        branch,
		DeliveringSum: int64(g.f.Number(10, 40)) * 1000,
	}
	for i := 0; i < g.f.Number(1, 5); i++ {
		group.Items = append(group.Items, g.Item())
	}

	order := model.Order{
		ID:              id,
		Status:          model.StatusCreated,
		PaymentMethod:   model.PaymentMethod(g.f.RandomString([]string{"cash", "payme"})),
		CustomerID:      int64(g.f.Number(1, 100000)),
		CustomerPhone:   "998" + g.f.DigitN(9),
		Address:         g.Address(),
		Note:            g.f.Sentence(5),
		PackageAmount:   int64(g.f.RandomInt([]int{0, 0, 2000})),
		PackageQuantity: int64(g.f.Number(0, 2)),
		CreatedAt:       time.Now().Add(-time.Duration(g.f.Number(1, 30)) * time.Minute),
		Groups:          []model.ItemGroup{group},
	}
	if g.f.Bool() {
		order.DiscountSum = int64(g.f.RandomInt([]int{5000, 10000, 15000}))
	}
	return order
}

// lifecycle - путь заказа, по которому симулятор двигает заказы.
var lifecycle = map[model.OrderStatus]model.OrderStatus{
	model.StatusCreated:  model.StatusAccepted,
	model.StatusAccepted: model.StatusCooking,
	model.StatusCooking:  model.StatusReady,
	model.StatusReady:    model.StatusShipped,
	model.StatusShipped:  model.StatusClosed,
}

// Next возвращает следующий статус заказа. Изредка заказ уходит в incident.
// Для терминальных статусов ok=false.
func (g *Generator) Next(current model.OrderStatus) (model.OrderStatus, bool) {
	if current == model.StatusCooking && g.f.Number(1, 20) == 1 {
		return model.StatusIncident, true
	}
	if current == model.StatusIncident {
		return model.StatusCooking, true
	}
	next, ok := lifecycle[current]
	return next, ok
}

// PreparingTime - время приготовления в минутах, которое называет заведение.
func (g *Generator) PreparingTime() int {
	return g.f.RandomInt([]int{10, 15, 20, 30, 45})
}

// Chance возвращает true с вероятностью 1/n.
func (g *Generator) Chance(n int) bool {
	return g.f.Number(1, n) == 1
}

// Pick возвращает случайное число из [lo, hi].
func (g *Generator) Pick(lo, hi int64) int64 {
	return int64(g.f.Number(int(lo), int(hi)))
}
