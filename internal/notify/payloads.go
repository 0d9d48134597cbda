package notify

import (
	"order_lifecycle/internal/model"
	"time"
)

const payloadDate = "2006-01-02"

// InstitutionPayload - снимок заказа для панели заведения.
type InstitutionPayload struct {
	Type            string              `json:"type"`
	Status          model.OrderStatus   `json:"status"`
	PaymentType     model.PaymentMethod `json:"payment_type"`
	OrderID         int64               `json:"order_id"`
	GroupID         int64               `json:"group_id"`
	Courier         *int64              `json:"courier"`
	ProductsSum     int64               `json:"products_sum"`
	TotalSum        int64               `json:"total_sum"`
	PreparingTime   *int                `json:"preparing_time"`
	InstitutionName string              `json:"institution_name"`
	BranchName      string              `json:"branch_name"`
	CreatedAt       string              `json:"created_at"`
}

// OperatorPayload дополнительно содержит телефон клиента и стоимость доставки.
type OperatorPayload struct {
	InstitutionPayload
	PhoneNumber   string `json:"phone_number"`
	DeliveringSum int64  `json:"delivering_sum"`
}

// CourierPayload - снимок для приложения курьеров. Числа передаются строками.
type CourierPayload struct {
	Type            string              `json:"type"`
	Status          model.OrderStatus   `json:"status"`
	PaymentType     model.PaymentMethod `json:"payment_type"`
	OrderID         int64               `json:"order_id,string"`
	GroupID         int64               `json:"group_id,string"`
	Courier         *int64              `json:"courier"`
	PreparingTime   *int                `json:"preparing_time"`
	PhoneNumber     string              `json:"phone_number"`
	ProductsSum     int64               `json:"products_sum,string"`
	DeliveringSum   int64               `json:"delivering_sum,string"`
	InstitutionName string              `json:"institution_name"`
}

// ClientPayload - статус заказа для клиента.
type ClientPayload struct {
	Type    string            `json:"type"`
	Status  model.OrderStatus `json:"status"`
	OrderID int64             `json:"order_id"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Prices struct {
	DiscountAmount   int64 `json:"discount_amount"`
	DeliveryAmount   int64 `json:"delivery_amount"`
	RestaurantAmount int64 `json:"restaurant_amount"`
	TotalAmount      int64 `json:"total_amount"`
}

// ReadyPayload - заказ в пуле доступных курьерам заказов.
type ReadyPayload struct {
	Type                string              `json:"type"`
	ID                  int64               `json:"id"`
	InstitutionName     string              `json:"institution_name"`
	ProductsSum         int64               `json:"products_sum"`
	DeliveringSum       int64               `json:"delivering_sum"`
	Prices              Prices              `json:"prices"`
	Status              model.OrderStatus   `json:"status"`
	PaymentMethod       model.PaymentMethod `json:"payment_method"`
	AddressTo           Coordinates         `json:"address_to"`
	AddressFrom         *Coordinates        `json:"address_from"`
	CustomerPhoneNumber string              `json:"customer_phone_number"`
	PreparingTime       *int                `json:"preparing_time"`
	DeliveryTime        *time.Time          `json:"delivery_time"`
}

func institutionPayload(o *model.Order, g *model.ItemGroup) InstitutionPayload {
	return InstitutionPayload{
		Type:            "order_data",
		Status:          o.Status,
		PaymentType:     o.PaymentMethod,
		OrderID:         o.ID,
		GroupID:         g.ID,
		Courier:         o.CourierID,
		ProductsSum:     g.ProductsSum,
		TotalSum:        g.TotalSum + o.PackageQuantity*o.PackageAmount,
		PreparingTime:   o.PreparingTime,
		InstitutionName: g.Institution.Name,
		BranchName:      g.Branch.Name,
		CreatedAt:       o.CreatedAt.Format(payloadDate),
	}
}

func operatorPayload(o *model.Order, g *model.ItemGroup) OperatorPayload {
	p := OperatorPayload{
		InstitutionPayload: institutionPayload(o, g),
		PhoneNumber:        o.CustomerPhone,
		DeliveringSum:      g.DeliveringSum,
	}
	p.TotalSum = g.TotalSum
	return p
}

func courierPayload(o *model.Order, g *model.ItemGroup) CourierPayload {
	return CourierPayload{
		Type:            "order_data",
		Status:          o.Status,
		PaymentType:     o.PaymentMethod,
		OrderID:         o.ID,
		GroupID:         g.ID,
		Courier:         o.CourierID,
		PreparingTime:   o.PreparingTime,
		PhoneNumber:     o.CustomerPhone,
		ProductsSum:     g.ProductsSum,
		DeliveringSum:   g.DeliveringSum,
		InstitutionName: g.Institution.Name,
	}
}

func clientPayload(o *model.Order) ClientPayload {
	return ClientPayload{Type: "order", Status: o.Status, OrderID: o.ID}
}

func readyPayload(o *model.Order) ReadyPayload {
	p := ReadyPayload{
		Type:          "send_order_status",
		ID:            o.ID,
		ProductsSum:   o.ProductsSum,
		DeliveringSum: o.DeliveringSum,
		Prices: Prices{
			DiscountAmount:   o.DiscountSum,
			DeliveryAmount:   o.DeliveringSum,
			RestaurantAmount: o.ProductsSum,
			TotalAmount:      o.DeliveringSum + o.ProductsSum - o.DiscountSum,
		},
		Status:              o.Status,
		PaymentMethod:       o.PaymentMethod,
		AddressTo:           Coordinates{Latitude: o.Address.Latitude, Longitude: o.Address.Longitude},
		CustomerPhoneNumber: o.CustomerPhone,
		PreparingTime:       o.PreparingTime,
		DeliveryTime:        o.DeliveryTime,
	}
	if g := o.Group(); g != nil {
		p.InstitutionName = g.Institution.Name
		if a := g.Branch.Address; a != nil {
			p.AddressFrom = &Coordinates{Latitude: a.Latitude, Longitude: a.Longitude}
		}
	}
	return p
}
