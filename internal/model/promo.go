package model

import "time"

type PromoStatus string

const (
	PromoActive   PromoStatus = "active"
	PromoInactive PromoStatus = "inactive"
)

type PromoCode struct {
	ID          int64       `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Code        string      `json:"code" db:"code"`
	Status      PromoStatus `json:"status" db:"status"`
	Sum         int64       `json:"sum" db:"sum"`
	MinOrderSum int64       `json:"min_order_sum" db:"min_order_sum"`
	Revokable   bool        `json:"revokable" db:"revokable"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	StartDate   time.Time   `json:"start_date" db:"start_date"`
	EndDate     time.Time   `json:"end_date" db:"end_date"`
}

// PromoUsage - факт применения промокода. Пара (user, promo) уникальна.
type PromoUsage struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	PromoCodeID int64     `db:"promo_code_id"`
	OrderID     int64     `db:"order_id"`
	UsedAt      time.Time `db:"used_at"`
}
