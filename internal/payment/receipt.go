package payment

import "order_lifecycle/internal/model"

// Фискальные коды строки доставки в чеке Payme.
const (
	DeliverySPIC        = "10112006004000000"
	DeliveryPackageCode = "1202229"
)

// ReceiptItem - позиция чека Payme. Суммы в тийинах.
type ReceiptItem struct {
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Count       int64  `json:"count"`
	Code        string `json:"code"`
	PackageCode string `json:"package_code"`
	VATPercent  int    `json:"vat_percent"`
	Discount    int64  `json:"discount"`
}

func tiyin(sum int64) int64 { return sum * 100 }

// ReceiptItems собирает позиции чека: товары без замененных, пакет и доставку.
// Скидка распределяется по товарам по порядку, пока не закончится.
func ReceiptItems(o *model.Order) []ReceiptItem {
	g := o.Group()
	if g == nil {
		return nil
	}

	var items []ReceiptItem
	remainder := o.DiscountSum
	for _, it := range g.Items {
		if it.IsIncident {
			continue
		}

		price := it.Product.Price
		for _, opt := range it.Options {
			price += opt.AddingPrice
		}
		amount := price * it.Count

		var discount int64
		if remainder > 0 {
			discount = tiyin(min(remainder, amount))
			remainder -= amount
		}

		items = append(items, ReceiptItem{
			Title:       it.Product.Name,
			Price:       tiyin(price),
			Count:       it.Count,
			Code:        it.Product.SpicID,
			PackageCode: it.Product.PackageCode,
			VATPercent:  it.Product.VAT,
			Discount:    discount,
		})
	}

	if o.PackageAmount > 0 {
		items = append(items, ReceiptItem{
			Title:       "Пакет",
			Price:       tiyin(o.PackageAmount),
			Count:       max(o.PackageQuantity, 1),
			Code:        g.Branch.PackageSpicID,
			PackageCode: g.Branch.PackageCode,
			VATPercent:  g.Branch.PackageVAT,
		})
	}

	if g.DeliveringSum > 0 {
		items = append(items, ReceiptItem{
			Title:       "Служба доставки еды",
			Price:       tiyin(g.DeliveringSum),
			Count:       1,
			Code:        DeliverySPIC,
			PackageCode: DeliveryPackageCode,
		})
	}
	return items
}
