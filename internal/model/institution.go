package model

import "time"

// DeliverySettings - тариф доставки (глобальный или заведения).
type DeliverySettings struct {
	MinDistance      float64 `json:"min_distance" db:"min_distance"`
	MinDeliveryPrice int64   `json:"min_delivery_price" db:"min_delivery_price"`
	PricePerKm       int64   `json:"price_per_km" db:"price_per_km"`
}

// CommissionSettings - проценты комиссии платформы.
type CommissionSettings struct {
	SelfPickupPercent    *float64 `json:"self_pickup_percent" db:"self_pickup_percent"`
	DeliveryByOwnPercent *float64 `json:"delivery_by_own_percent" db:"delivery_by_own_percent"`
	OrdinaryPercent      *float64 `json:"ordinary_percent" db:"ordinary_percent"`
}

// GlobalSettings - настройки платформы по умолчанию.
type GlobalSettings struct {
	Delivery   DeliverySettings   `json:"delivery" db:"delivery"`
	Commission CommissionSettings `json:"commission" db:"commission"`
}

type Institution struct {
	ID              int64  `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	FreeDelivery    bool   `json:"free_delivery" db:"free_delivery"`
	DeliveryByOwn   bool   `json:"delivery_by_own" db:"delivery_by_own"`
	IsHolding       bool   `json:"is_holding" db:"is_holding"`
	Balance         int64  `json:"balance" db:"balance"`
	MaxDeliveryTime int    `json:"max_delivery_time" db:"max_delivery_time"`

	Delivery   *DeliverySettings  `json:"delivery_settings,omitempty" db:"-"`
	Commission CommissionSettings `json:"commission" db:"commission"`

	KitchenClientID     *string `json:"-" db:"kitchen_client_id"`
	KitchenClientSecret *string `json:"-" db:"kitchen_client_secret"`
	KitchenEndpoint     *string `json:"-" db:"kitchen_endpoint"`
}

// KitchenIntegrated - заведение подключено к внешней кухонной системе.
func (i *Institution) KitchenIntegrated() bool {
	return i.KitchenClientID != nil && i.KitchenClientSecret != nil && i.KitchenEndpoint != nil &&
		*i.KitchenClientID != "" && *i.KitchenClientSecret != ""
}

type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// WeekdayOf переводит time.Weekday в значение расписания.
func WeekdayOf(d time.Weekday) Weekday {
	return [...]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}[d]
}

// ClockTime - время суток в минутах от полуночи.
type ClockTime int

func NewClockTime(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

func ClockOf(t time.Time) ClockTime { return NewClockTime(t.Hour(), t.Minute()) }

type ScheduleEntry struct {
	BranchID  int64     `json:"-" db:"branch_id"`
	DayOfWeek Weekday   `json:"day_of_week" db:"day_of_week"`
	StartTime ClockTime `json:"start_time" db:"start_time"`
	EndTime   ClockTime `json:"end_time" db:"end_time"`
	IsActive  bool      `json:"is_active" db:"is_active"`
}

type Branch struct {
	ID                    int64    `json:"id" db:"id"`
	InstitutionID         int64    `json:"institution_id" db:"institution_id"`
	Name                  string   `json:"name" db:"name"`
	IsActive              bool     `json:"is_active" db:"is_active"`
	IsDeleted             bool     `json:"is_deleted" db:"is_deleted"`
	IsOpen                bool     `json:"is_open" db:"is_open"`
	Address               *Address `json:"address" db:"address"`
	MinOrderAmount        int64    `json:"min_order_amount" db:"min_order_amount"`
	PackageSpicID         string   `json:"package_spic_id" db:"package_spic_id"`
	PackageCode           string   `json:"package_code" db:"package_code"`
	PackageVAT            int      `json:"package_vat" db:"package_vat"`
	TelegramChatIDs       string   `json:"telegram_id_str" db:"telegram_id_str"`
	TelegramOrdersEnabled bool     `json:"is_telegram_orders_enabled" db:"is_telegram_orders_enabled"`
	MinPreorderMinutes    int      `json:"min_preorder_minutes" db:"min_preorder_minutes"`
	MaxPreorderDays       int      `json:"max_preorder_days" db:"max_preorder_days"`
	PreparingTime         int      `json:"preparing_time" db:"preparing_time"`
	MaxDeliveryTime       int      `json:"max_delivery_time" db:"max_delivery_time"`
	PlacesID              string   `json:"places_id" db:"places_id"`

	Schedule []ScheduleEntry `json:"schedule" db:"-"`
}
