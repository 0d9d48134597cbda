package model

import "time"

// OrderStatus - статус заказа в жизненном цикле.
type OrderStatus string

const (
	StatusPreOrder OrderStatus = "pre-order"
	StatusCreated  OrderStatus = "created"
	StatusPending  OrderStatus = "pending"
	StatusAccepted OrderStatus = "accepted"
	StatusCooking  OrderStatus = "cooking"
	StatusRejected OrderStatus = "rejected"
	StatusReady    OrderStatus = "ready"
	StatusIncident OrderStatus = "incident"
	StatusShipped  OrderStatus = "shipped"
	StatusClosed   OrderStatus = "closed"
)

// AllStatuses перечисляет статусы в порядке жизненного цикла.
var AllStatuses = []OrderStatus{
	StatusPreOrder, StatusCreated, StatusPending, StatusAccepted, StatusCooking,
	StatusIncident, StatusReady, StatusShipped, StatusClosed, StatusRejected,
}

var statusNames = map[OrderStatus]string{
	StatusPreOrder: "пред-заказ",
	StatusCreated:  "создан",
	StatusPending:  "ожидает оплаты",
	StatusAccepted: "принят",
	StatusCooking:  "готовится",
	StatusRejected: "отменен",
	StatusReady:    "готов",
	StatusIncident: "инцидент",
	StatusShipped:  "в пути",
	StatusClosed:   "закрыт",
}

// Display - название статуса для сотрудников заведения.
func (s OrderStatus) Display() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return string(s)
}

// IsTerminal сообщает, что из статуса нет переходов.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusRejected
}

// Valid проверяет, что статус известен.
func (s OrderStatus) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentPayme    PaymentMethod = "payme"
	PaymentTerminal PaymentMethod = "terminal"
)

// RestaurantStatus - статус заказа во внешней кухонной системе.
type RestaurantStatus string

const (
	RestaurantNew       RestaurantStatus = "NEW"
	RestaurantAccepted  RestaurantStatus = "ACCEPTED_BY_RESTAURANT"
	RestaurantCooking   RestaurantStatus = "COOKING"
	RestaurantCancelled RestaurantStatus = "CANCELLED"
	RestaurantReady     RestaurantStatus = "READY"
)

type Address struct {
	Latitude  float64 `json:"latitude" db:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" db:"longitude" validate:"gte=-180,lte=180"`
	Street    string  `json:"street,omitempty" db:"street"`
}

type Order struct {
	ID               int64             `json:"id" db:"id"`
	Status           OrderStatus       `json:"status" db:"status"`
	PaymentMethod    PaymentMethod     `json:"payment_method" db:"payment_method"`
	ProductsSum      int64             `json:"products_sum" db:"products_sum"`
	DeliveringSum    int64             `json:"delivering_sum" db:"delivering_sum"`
	TotalSum         int64             `json:"total_sum" db:"total_sum"`
	DiscountSum      int64             `json:"discount_sum" db:"discount_sum"`
	PackageAmount    int64             `json:"package_amount" db:"package_amount"`
	PackageQuantity  int64             `json:"package_quantity" db:"package_quantity"`
	IsPaid           bool              `json:"is_paid" db:"is_paid"`
	IsProcess        bool              `json:"is_process" db:"is_process"`
	SelfPickup       bool              `json:"self_pickup" db:"self_pickup"`
	CustomerID       int64             `json:"customer_id" db:"customer_id"`
	CustomerPhone    string            `json:"customer_phone" db:"customer_phone"`
	CourierID        *int64            `json:"courier_id" db:"courier_id"`
	OperatorID       *int64            `json:"operator_id" db:"operator_id"`
	PreparingTime    *int              `json:"preparing_time" db:"preparing_time"`
	ExternalID       *string           `json:"external_id" db:"external_id"`
	ReceiptID        *string           `json:"receipt_id" db:"receipt_id"`
	CardToken        *string           `json:"-" db:"card_token"`
	RestaurantStatus *RestaurantStatus `json:"restaurant_status" db:"restaurant_status"`
	Note             string            `json:"note" db:"note"`
	Address          Address           `json:"address" db:"address"`
	DeliveryTime     *time.Time        `json:"delivery_time" db:"delivery_time"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`

	Groups   []ItemGroup      `json:"item_groups" db:"-"`
	Timeline Timeline         `json:"timeline" db:"-"`
	Message  *TelegramMessage `json:"-" db:"-"`
	Courier  *Courier         `json:"courier,omitempty" db:"-"`
}

// Group возвращает первую группу заказа. На практике заказ обслуживает одно заведение.
func (o *Order) Group() *ItemGroup {
	if len(o.Groups) == 0 {
		return nil
	}
	return &o.Groups[0]
}

// HasExternalKitchen - заказ передан во внешнюю кухонную систему.
func (o *Order) HasExternalKitchen() bool {
	return o.ExternalID != nil && *o.ExternalID != ""
}

// DeliveryByOwn - заведение доставляет своими курьерами.
func (o *Order) DeliveryByOwn() bool {
	g := o.Group()
	return g != nil && g.Institution.DeliveryByOwn
}

// NeedsPlatformCourier - заказу нужен курьер платформы.
func (o *Order) NeedsPlatformCourier() bool {
	return !o.SelfPickup && !o.DeliveryByOwn()
}

// Clone возвращает копию заказа для асинхронной обработки.
func (o *Order) Clone() *Order {
	c := *o
	c.Groups = make([]ItemGroup, len(o.Groups))
	for i, g := range o.Groups {
		g.Items = append([]Item(nil), g.Items...)
		c.Groups[i] = g
	}
	if o.Message != nil {
		m := *o.Message
		c.Message = &m
	}
	if o.Courier != nil {
		cr := *o.Courier
		c.Courier = &cr
	}
	return &c
}

type ItemGroup struct {
	ID            int64       `json:"id" db:"id"`
	OrderID       int64       `json:"-" db:"order_id"`
	Institution   Institution `json:"institution" db:"institution"`
	Branch        Branch      `json:"branch" db:"branch"`
	ProductsSum   int64       `json:"products_sum" db:"products_sum"`
	DeliveringSum int64       `json:"delivering_sum" db:"delivering_sum"`
	TotalSum      int64       `json:"total_sum" db:"total_sum"`
	Commission    int64       `json:"commission" db:"commission"`
	Items         []Item      `json:"items" db:"-"`
}

type Item struct {
	ID              int64    `json:"id" db:"id"`
	GroupID         int64    `json:"-" db:"group_id"`
	Product         Product  `json:"product" db:"product"`
	Count           int64    `json:"count" db:"count"`
	TotalSum        int64    `json:"total_sum" db:"total_sum"`
	Options         []Option `json:"options" db:"-"`
	IsIncident      bool     `json:"is_incident" db:"is_incident"`
	IncidentProduct *Product `json:"incident_product,omitempty" db:"-"`
}

type Product struct {
	ID          int64  `json:"id" db:"id"`
	UUID        string `json:"uuid" db:"uuid"`
	Name        string `json:"name" db:"name"`
	Price       int64  `json:"price" db:"price"`
	SpicID      string `json:"spic_id" db:"spic_id"`
	PackageCode string `json:"package_code" db:"package_code"`
	VAT         int    `json:"vat" db:"vat"`
}

type Option struct {
	ID          int64  `json:"id" db:"id"`
	UUID        string `json:"uuid" db:"uuid"`
	Title       string `json:"title" db:"title"`
	AddingPrice int64  `json:"adding_price" db:"adding_price"`
}

// Timeline - отметки времени этапов заказа.
type Timeline struct {
	OrderID              int64      `json:"-" db:"order_id"`
	PreparingStartAt     *time.Time `json:"preparing_start_at" db:"preparing_start_at"`
	PreparingCompletedAt *time.Time `json:"preparing_completed_at" db:"preparing_completed_at"`
	CourierAssignAt      *time.Time `json:"courier_assign_at" db:"courier_assign_at"`
	CourierArrivedAt     *time.Time `json:"courier_arrived_at" db:"courier_arrived_at"`
	CourierTakeItAt      *time.Time `json:"courier_take_it_at" db:"courier_take_it_at"`
	ShippedAt            *time.Time `json:"shipped_at" db:"shipped_at"`
	DeliveredAt          *time.Time `json:"delivered_at" db:"delivered_at"`
	RejectedAt           *time.Time `json:"rejected_at" db:"rejected_at"`
	PreparingLates       int        `json:"preparing_lates" db:"preparing_lates"`
	CourierLates         int        `json:"courier_lates" db:"courier_lates"`
}

// TelegramMessage хранит id отправленных сообщений, чтобы следующие статусы редактировали их.
type TelegramMessage struct {
	OrderID    int64  `db:"order_id"`
	MessageID  *int64 `db:"message_id"`
	MessageID2 *int64 `db:"message_id2"`
	Text       string `db:"text"`
}
