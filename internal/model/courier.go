package model

import "time"

type CourierStatus string

const (
	CourierFree          CourierStatus = "free"
	CourierInInstitution CourierStatus = "in_institution"
	CourierDelivering    CourierStatus = "delivering"
	CourierInactive      CourierStatus = "inactive"
)

type Transport string

const (
	TransportCar     Transport = "car"
	TransportScooter Transport = "scooter"
	TransportBicycle Transport = "bicycle"
	TransportFoot    Transport = "foot"
)

type Courier struct {
	ID        int64         `json:"id" db:"id"`
	UserID    int64         `json:"user_id" db:"user_id"`
	FirstName string        `json:"first_name" db:"first_name"`
	Phone     string        `json:"phone" db:"phone"`
	Status    CourierStatus `json:"status" db:"status"`
	Transport Transport     `json:"transport" db:"transport"`
	Balance   int64         `json:"balance" db:"balance"`
}

type TransactionType string

const (
	TransactionIn  TransactionType = "in"
	TransactionOut TransactionType = "out"
)

// Названия записей журнала.
const (
	LedgerDelivering  = "delivering"
	LedgerOrderAmount = "order_amount"
	LedgerPromoCode   = "promo_code"
	LedgerTopUp       = "topup"
)

// Transaction - неизменяемая запись журнала баланса курьера.
type Transaction struct {
	ID        int64           `json:"id" db:"id"`
	CourierID int64           `json:"courier_id" db:"courier_id"`
	OrderID   *int64          `json:"order_id" db:"order_id"`
	Amount    int64           `json:"amount" db:"amount"`
	Type      TransactionType `json:"type" db:"type"`
	Name      string          `json:"name" db:"name"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Delta возвращает изменение баланса со знаком.
func (t *Transaction) Delta() int64 {
	if t.Type == TransactionOut {
		return -t.Amount
	}
	return t.Amount
}
