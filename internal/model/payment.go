package model

import "time"

type PaymentType string

const (
	PaymentIncome PaymentType = "INCOME"
	PaymentRefund PaymentType = "REFUND"
)

// Payment - запись о поступлении денег по заказу.
type Payment struct {
	ID              int64         `json:"id" db:"id"`
	UUID            string        `json:"uuid" db:"uuid"`
	OrderID         int64         `json:"order_id" db:"order_id"`
	PaymentType     PaymentType   `json:"payment_type" db:"payment_type"`
	PaymentMethod   PaymentMethod `json:"payment_method" db:"payment_method"`
	Amount          int64         `json:"amount" db:"amount"`
	ReceiptRequired bool          `json:"receipt_required" db:"receipt_required"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}
