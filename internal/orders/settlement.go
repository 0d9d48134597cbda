package orders

import (
	"context"
	"fmt"
	"order_lifecycle/internal/assignment"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/model"
	"time"
)

// settle проводит расчеты по закрытому заказу в транзакции смены статуса.
//
// Заведение платит комиссию. При оплате через Payme деньги за продукты приходят заведению,
// а курьеру начисляется доставка. Наличный заказ, выкупленный курьером, списывает с курьера сумму
// продуктов, а скидку по промокоду платформа возвращает курьеру.
func settle(ctx context.Context, tx database.Tx, o *model.Order, now time.Time) error {
	g := o.Group()

	delta := -g.Commission
	if o.PaymentMethod == model.PaymentPayme {
		delta += g.ProductsSum
	}
	if err := tx.AdjustInstitutionBalance(ctx, g.Institution.ID, delta); err != nil {
		return err
	}

	if o.CourierID == nil {
		return nil
	}
	courierID := *o.CourierID

	var entries []*model.Transaction
	entry := func(amount int64, typ model.TransactionType, name string) {
		orderID := o.ID
		entries = append(entries, &model.Transaction{
			CourierID: courierID,
			OrderID:   &orderID,
			Amount:    amount,
			Type:      typ,
			Name:      name,
			CreatedAt: now,
		})
	}

	switch o.PaymentMethod {
	case model.PaymentPayme:
		entry(o.DeliveringSum, model.TransactionIn, model.LedgerDelivering)
	case model.PaymentCash:
		if assignment.CourierPaysUpfront(o) {
			entry(o.ProductsSum, model.TransactionOut, model.LedgerOrderAmount)
		}
		if o.DiscountSum > 0 {
			entry(o.DiscountSum, model.TransactionIn, model.LedgerPromoCode)
		}
	}
	for _, e := range entries {
		if err := tx.RecordCourierTransaction(ctx, e); err != nil {
			return err
		}
	}

	active, err := tx.CountActiveCourierOrders(ctx, courierID, o.ID)
	if err != nil {
		return err
	}
	if active == 0 {
		if err := tx.UpdateCourierStatus(ctx, courierID, model.CourierFree); err != nil {
			return fmt.Errorf("освобождение курьера: %w", err)
		}
	}
	return nil
}
