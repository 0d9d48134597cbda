package pricing

import "order_lifecycle/internal/model"

// ItemSum - стоимость позиции: цена продукта с опциями, умноженная на количество.
func ItemSum(item model.Item) int64 {
	price := item.Product.Price
	for _, opt := range item.Options {
		price += opt.AddingPrice
	}
	return price * item.Count
}

// PackageSum - стоимость пакетов; без указанного количества считается один пакет.
func PackageSum(amount, quantity int64) int64 {
	if quantity <= 0 {
		quantity = 1
	}
	return amount * quantity
}

// Recalculate возвращает копию заказа с пересчитанными суммами позиций, групп и заказа.
// Замененные позиции (инцидент) в суммы не входят. Скидка и стоимость доставки групп не меняются.
// После пересчета TotalSum == ProductsSum + DeliveringSum - DiscountSum.
func Recalculate(o model.Order, global model.CommissionSettings) model.Order {
	out := *o.Clone()

	var products, delivering int64
	for gi := range out.Groups {
		g := &out.Groups[gi]

		var groupProducts int64
		for ii := range g.Items {
			it := &g.Items[ii]
			it.TotalSum = ItemSum(*it)
			if !it.IsIncident {
				groupProducts += it.TotalSum
			}
		}

		g.ProductsSum = groupProducts
		g.TotalSum = groupProducts + g.DeliveringSum
		g.Commission = Commission(groupProducts, CommissionPercent(g.Institution, out.SelfPickup, global))

		products += groupProducts
		delivering += g.DeliveringSum
	}

	if out.PackageAmount > 0 {
		products += PackageSum(out.PackageAmount, out.PackageQuantity)
	}

	out.ProductsSum = products
	out.DeliveringSum = delivering
	out.TotalSum = products + delivering - out.DiscountSum
	return out
}
