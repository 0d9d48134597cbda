// Package promo проверяет и применяет промокоды к заказу.
package promo

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/model"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
)

var (
	ErrNotFound     = errors.New("промокод не найден")
	ErrInactive     = errors.New("промокод неактивен")
	ErrAlreadyUsed  = errors.New("промокод уже использован")
	ErrBelowMinimum = errors.New("сумма заказа меньше минимальной для промокода")
)

// Store - операции хранилища, нужные промокодам. Реализуется транзакцией database.Tx.
type Store interface {
	GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error)
	HasPromoUsage(ctx context.Context, userID, promoID int64) (bool, error)
	CreatePromoUsage(ctx context.Context, usage *model.PromoUsage) error
}

// Usable - промокод активен и действует в момент now.
func Usable(p *model.PromoCode, now time.Time) bool {
	return p.Status == model.PromoActive && p.IsActive &&
		!now.Before(p.StartDate) && !now.After(p.EndDate)
}

// Validate находит промокод и проверяет, что клиент может его применить.
func Validate(ctx context.Context, store Store, code string, customerID int64, now time.Time) (*model.PromoCode, error) {
	ctx, span := otel.Tracer("promo").Start(ctx, "Promo.Validate")
	defer span.End()

	p, err := store.GetPromoCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось получить промокод: %w", err)
	}
	if !Usable(p, now) {
		return nil, ErrInactive
	}

	used, err := store.HasPromoUsage(ctx, customerID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("не удалось проверить использование промокода: %w", err)
	}
	if used {
		return nil, ErrAlreadyUsed
	}
	return p, nil
}

// Discount возвращает фиксированную скидку промокода.
// total - сумма продуктов и доставки; она не может быть меньше минимальной суммы заказа и самой скидки.
func Discount(p *model.PromoCode, total int64) (int64, error) {
	if total < p.MinOrderSum || total < p.Sum {
		return 0, fmt.Errorf("%w: %d < %d", ErrBelowMinimum, total, max(p.MinOrderSum, p.Sum))
	}
	return p.Sum, nil
}

// Use записывает использование промокода внутри транзакции создания заказа.
// Повторное применение ограничивает уникальная пара (клиент, промокод), сам промокод остается активным.
func Use(ctx context.Context, store Store, p *model.PromoCode, customerID, orderID int64, now time.Time) error {
	err := store.CreatePromoUsage(ctx, &model.PromoUsage{
		UserID:      customerID,
		PromoCodeID: p.ID,
		OrderID:     orderID,
		UsedAt:      now,
	})
	if errors.Is(err, database.ErrDuplicate) {
		return ErrAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("не удалось записать использование промокода: %w", err)
	}
	return nil
}
