// Package payment проводит оплату заказов через Payme и фискализирует чеки в ОФД.
package payment

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=trigger.go -destination=./mocks/trigger_mock.go -package=mocks

var ErrNoCardToken = errors.New("у заказа нет сохраненной карты")

// ChargeResult - итог списания.
type ChargeResult struct {
	ReceiptID string
	State     int
	Paid      bool
}

// Gateway - платежный шлюз.
type Gateway interface {
	MakePayment(ctx context.Context, o *model.Order, token string, items []ReceiptItem) (*ChargeResult, error)
	CancelPayment(ctx context.Context, receiptID string) error
}

// Fiscal - фискализация чеков.
type Fiscal interface {
	CreateSaleReceipt(ctx context.Context, p *model.Payment, o *model.Order) error
}

// Trigger запускает платежные операции заказа с ограничением по времени.
type Trigger struct {
	gateway       Gateway
	fiscal        Fiscal
	fiscalEnabled bool
	timeout       time.Duration
	log           *zap.Logger
}

func NewTrigger(gateway Gateway, fiscal Fiscal, fiscalEnabled bool, timeout time.Duration, log *zap.Logger) *Trigger {
	return &Trigger{gateway: gateway, fiscal: fiscal, fiscalEnabled: fiscalEnabled, timeout: timeout, log: log}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Charge списывает сумму заказа с сохраненной карты клиента.
func (t *Trigger) Charge(ctx context.Context, o *model.Order) (*ChargeResult, error) {
	if o.CardToken == nil || *o.CardToken == "" {
		metrics.PaymentCalls.WithLabelValues("payme", "charge", "no_card").Inc()
		return nil, ErrNoCardToken
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.gateway.MakePayment(ctx, o, *o.CardToken, ReceiptItems(o))
	metrics.PaymentCalls.WithLabelValues("payme", "charge", result(err)).Inc()
	if err != nil {
		return res, fmt.Errorf("оплата заказа %d: %w", o.ID, err)
	}
	t.log.Info("заказ оплачен", zap.Int64("order_id", o.ID), zap.String("receipt_id", res.ReceiptID))
	return res, nil
}

// Cancel отменяет чек заказа. Без чека отменять нечего.
func (t *Trigger) Cancel(ctx context.Context, o *model.Order) error {
	if o.ReceiptID == nil || *o.ReceiptID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	err := t.gateway.CancelPayment(ctx, *o.ReceiptID)
	metrics.PaymentCalls.WithLabelValues("payme", "cancel", result(err)).Inc()
	if err != nil {
		return fmt.Errorf("отмена чека %s заказа %d: %w", *o.ReceiptID, o.ID, err)
	}
	return nil
}

// ReceiptRequired - нужна ли фискализация поступлений.
func (t *Trigger) ReceiptRequired() bool {
	return t.fiscalEnabled
}

// IssueReceipt фискализирует поступление. Ошибка ОФД не отменяет закрытие заказа:
// она логируется, и чек можно отправить повторно.
func (t *Trigger) IssueReceipt(ctx context.Context, p *model.Payment, o *model.Order) {
	if !t.fiscalEnabled || !p.ReceiptRequired {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	err := t.fiscal.CreateSaleReceipt(ctx, p, o)
	metrics.PaymentCalls.WithLabelValues("ofd", "sale_receipt", result(err)).Inc()
	if err != nil {
		t.log.Error("не удалось фискализировать платеж",
			zap.Int64("order_id", o.ID), zap.String("payment_uuid", p.UUID), zap.Error(err))
	}
}

// Reason возвращает текст ошибки для клиента.
func Reason(err error) string {
	var gw *GatewayError
	if errors.As(err, &gw) && gw.Message != "" {
		return gw.Message
	}
	if errors.Is(err, ErrNoCardToken) {
		return "Карта для оплаты не найдена"
	}
	return "Неизвестная ошибка"
}
