package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"order_lifecycle/internal/model"
)

// Плоские строки таблиц. В модели часть полей вложенная или необязательная.

type institutionRow struct {
	ID                   int64           `db:"id"`
	Name                 string          `db:"name"`
	FreeDelivery         bool            `db:"free_delivery"`
	DeliveryByOwn        bool            `db:"delivery_by_own"`
	IsHolding            bool            `db:"is_holding"`
	Balance              int64           `db:"balance"`
	MaxDeliveryTime      int             `db:"max_delivery_time"`
	MinDistance          sql.NullFloat64 `db:"min_distance"`
	MinDeliveryPrice     sql.NullInt64   `db:"min_delivery_price"`
	PricePerKm           sql.NullInt64   `db:"price_per_km"`
	SelfPickupPercent    *float64        `db:"self_pickup_percent"`
	DeliveryByOwnPercent *float64        `db:"delivery_by_own_percent"`
	OrdinaryPercent      *float64        `db:"ordinary_percent"`
	KitchenClientID      *string         `db:"kitchen_client_id"`
	KitchenClientSecret  *string         `db:"kitchen_client_secret"`
	KitchenEndpoint      *string         `db:"kitchen_endpoint"`
}

const institutionColumns = `id, name, free_delivery, delivery_by_own, is_holding, balance, max_delivery_time,
	min_distance, min_delivery_price, price_per_km, self_pickup_percent, delivery_by_own_percent, ordinary_percent,
	kitchen_client_id, kitchen_client_secret, kitchen_endpoint`

func (r institutionRow) toModel() model.Institution {
	inst := model.Institution{
		ID:              r.ID,
		Name:            r.Name,
		FreeDelivery:    r.FreeDelivery,
		DeliveryByOwn:   r.DeliveryByOwn,
		IsHolding:       r.IsHolding,
		Balance:         r.Balance,
		MaxDeliveryTime: r.MaxDeliveryTime,
		Commission: model.CommissionSettings{
			SelfPickupPercent:    r.SelfPickupPercent,
			DeliveryByOwnPercent: r.DeliveryByOwnPercent,
			OrdinaryPercent:      r.OrdinaryPercent,
		},
		KitchenClientID:     r.KitchenClientID,
		KitchenClientSecret: r.KitchenClientSecret,
		KitchenEndpoint:     r.KitchenEndpoint,
	}
	// Тариф заведения действует, только если задан полностью.
	if r.MinDistance.Valid && r.MinDeliveryPrice.Valid && r.PricePerKm.Valid {
		inst.Delivery = &model.DeliverySettings{
			MinDistance:      r.MinDistance.Float64,
			MinDeliveryPrice: r.MinDeliveryPrice.Int64,
			PricePerKm:       r.PricePerKm.Int64,
		}
	}
	return inst
}

type branchRow struct {
	ID                    int64           `db:"id"`
	InstitutionID         int64           `db:"institution_id"`
	Name                  string          `db:"name"`
	IsActive              bool            `db:"is_active"`
	IsDeleted             bool            `db:"is_deleted"`
	IsOpen                bool            `db:"is_open"`
	Latitude              sql.NullFloat64 `db:"latitude"`
	Longitude             sql.NullFloat64 `db:"longitude"`
	Street                string          `db:"street"`
	MinOrderAmount        int64           `db:"min_order_amount"`
	PackageSpicID         string          `db:"package_spic_id"`
	PackageCode           string          `db:"package_code"`
	PackageVAT            int             `db:"package_vat"`
	TelegramChatIDs       string          `db:"telegram_id_str"`
	TelegramOrdersEnabled bool            `db:"is_telegram_orders_enabled"`
	MinPreorderMinutes    int             `db:"min_preorder_minutes"`
	MaxPreorderDays       int             `db:"max_preorder_days"`
	PreparingTime         int             `db:"preparing_time"`
	MaxDeliveryTime       int             `db:"max_delivery_time"`
	PlacesID              string          `db:"places_id"`
}

const branchColumns = `id, institution_id, name, is_active, is_deleted, is_open, latitude, longitude, street,
	min_order_amount, package_spic_id, package_code, package_vat, telegram_id_str, is_telegram_orders_enabled,
	min_preorder_minutes, max_preorder_days, preparing_time, max_delivery_time, places_id`

func (r branchRow) toModel() model.Branch {
	b := model.Branch{
		ID:                    r.ID,
		InstitutionID:         r.InstitutionID,
		Name:                  r.Name,
		IsActive:              r.IsActive,
		IsDeleted:             r.IsDeleted,
		IsOpen:                r.IsOpen,
		MinOrderAmount:        r.MinOrderAmount,
		PackageSpicID:         r.PackageSpicID,
		PackageCode:           r.PackageCode,
		PackageVAT:            r.PackageVAT,
		TelegramChatIDs:       r.TelegramChatIDs,
		TelegramOrdersEnabled: r.TelegramOrdersEnabled,
		MinPreorderMinutes:    r.MinPreorderMinutes,
		MaxPreorderDays:       r.MaxPreorderDays,
		PreparingTime:         r.PreparingTime,
		MaxDeliveryTime:       r.MaxDeliveryTime,
		PlacesID:              r.PlacesID,
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		b.Address = &model.Address{Latitude: r.Latitude.Float64, Longitude: r.Longitude.Float64, Street: r.Street}
	}
	return b
}

type groupRow struct {
	ID            int64 `db:"id"`
	OrderID       int64 `db:"order_id"`
	InstitutionID int64 `db:"institution_id"`
	BranchID      int64 `db:"branch_id"`
	ProductsSum   int64 `db:"products_sum"`
	DeliveringSum int64 `db:"delivering_sum"`
	TotalSum      int64 `db:"total_sum"`
	Commission    int64 `db:"commission"`
}

type itemRow struct {
	ID              int64  `db:"id"`
	GroupID         int64  `db:"group_id"`
	ProductID       int64  `db:"product_id"`
	ProductUUID     string `db:"product_uuid"`
	ProductName     string `db:"product_name"`
	Price           int64  `db:"price"`
	SpicID          string `db:"spic_id"`
	PackageCode     string `db:"package_code"`
	VAT             int    `db:"vat"`
	Count           int64  `db:"count"`
	TotalSum        int64  `db:"total_sum"`
	Options         []byte `db:"options"`
	IsIncident      bool   `db:"is_incident"`
	IncidentProduct []byte `db:"incident_product"`
}

func (r itemRow) toModel() (model.Item, error) {
	item := model.Item{
		ID:      r.ID,
		GroupID: r.GroupID,
		Product: model.Product{
			ID:          r.ProductID,
			UUID:        r.ProductUUID,
			Name:        r.ProductName,
			Price:       r.Price,
			SpicID:      r.SpicID,
			PackageCode: r.PackageCode,
			VAT:         r.VAT,
		},
		Count:      r.Count,
		TotalSum:   r.TotalSum,
		IsIncident: r.IsIncident,
	}
	if len(r.Options) > 0 {
		if err := json.Unmarshal(r.Options, &item.Options); err != nil {
			return item, fmt.Errorf("некорректные опции позиции %d: %w", r.ID, err)
		}
	}
	if len(r.IncidentProduct) > 0 {
		var p model.Product
		if err := json.Unmarshal(r.IncidentProduct, &p); err != nil {
			return item, fmt.Errorf("некорректная замена позиции %d: %w", r.ID, err)
		}
		item.IncidentProduct = &p
	}
	return item, nil
}

// jsonArg сериализует значение для jsonb-колонки. nil дает NULL.
func jsonArg(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

const orderColumns = `o.id, o.status, o.payment_method, o.products_sum, o.delivering_sum, o.total_sum, o.discount_sum,
	o.package_amount, o.package_quantity, o.is_paid, o.is_process, o.self_pickup, o.customer_id, o.customer_phone,
	o.courier_id, o.operator_id, o.preparing_time, o.external_id, o.receipt_id, o.card_token, o.restaurant_status,
	o.note, o.latitude "address.latitude", o.longitude "address.longitude", o.street "address.street",
	o.delivery_time, o.created_at`

const courierColumns = `id, user_id, first_name, phone, status, transport, balance`

const timelineColumns = `order_id, preparing_start_at, preparing_completed_at, courier_assign_at, courier_arrived_at,
	courier_take_it_at, shipped_at, delivered_at, rejected_at, preparing_lates, courier_lates`

const promoColumns = `id, name, code, status, sum, min_order_sum, revokable, is_active, start_date, end_date`
