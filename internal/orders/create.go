package orders

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/branch"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"order_lifecycle/internal/pricing"
	"order_lifecycle/internal/promo"
	"time"

	"go.uber.org/zap"
)

// NewOrderSound - звук уведомления заведения о новом заказе.
const NewOrderSound = "new_order_2.mp3"

type CreateItem struct {
	ProductID int64   `json:"product_id" validate:"required"`
	Count     int64   `json:"count" validate:"gte=1"`
	OptionIDs []int64 `json:"option_ids"`
}

type CreateGroup struct {
	InstitutionID int64        `json:"institution_id" validate:"required"`
	Items         []CreateItem `json:"items" validate:"required,min=1,dive"`
}

// CreateRequest - заказ клиента. DeliveryTime делает заказ предзаказом.
type CreateRequest struct {
	CustomerID      int64               `json:"customer_id" validate:"required"`
	CustomerPhone   string              `json:"customer_phone" validate:"omitempty,phone_uz"`
	PaymentMethod   model.PaymentMethod `json:"payment_method" validate:"required,oneof=cash payme terminal"`
	CardToken       *string             `json:"card_token"`
	SelfPickup      bool                `json:"self_pickup"`
	Address         model.Address       `json:"address"`
	Note            string              `json:"note"`
	PromoCode       string              `json:"promo_code"`
	PackageAmount   int64               `json:"package_amount" validate:"gte=0"`
	PackageQuantity int64               `json:"package_quantity" validate:"gte=0"`
	DeliveryTime    *time.Time          `json:"delivery_time"`
	Groups          []CreateGroup       `json:"item_groups" validate:"required,min=1,dive"`
}

// Create оформляет заказ: подбирает филиалы, считает суммы, доставку, скидку и комиссию,
// назначает оператора и записывает использование промокода в одной транзакции.
func (c *Controller) Create(ctx context.Context, req CreateRequest) (*model.Order, error) {
	ctx, span := c.tracer.Start(ctx, "Orders.Create")
	defer span.End()

	if c.pricing == nil || c.branches == nil {
		return nil, errors.New("orders: pricing and branches are required to create orders")
	}
	now := c.now()

	global, err := c.pricing.GlobalSettings(ctx)
	if err != nil {
		return nil, err
	}

	o, err := c.buildOrder(ctx, req, global, now)
	if err != nil {
		return nil, err
	}

	err = c.storage.InTx(ctx, func(ctx context.Context, tx database.Tx) error {
		var code *model.PromoCode
		if req.PromoCode != "" {
			p, err := promo.Validate(ctx, tx, req.PromoCode, req.CustomerID, now)
			if err != nil {
				return err
			}
			discount, err := promo.Discount(p, o.ProductsSum+o.DeliveringSum)
			if err != nil {
				return err
			}
			o.DiscountSum = discount
			*o = pricing.Recalculate(*o, global.Commission)
			code = p
		}

		operatorID, err := tx.PickOperator(ctx)
		if err != nil {
			return err
		}
		if operatorID == nil {
			return ErrNoOperator
		}
		o.OperatorID = operatorID

		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		if code != nil {
			return promo.Use(ctx, tx, code, req.CustomerID, o.ID, now)
		}
		return nil
	})
	if err != nil {
		if IsClientError(err) {
			c.log.Info("заказ не создан", zap.Int64("customer_id", req.CustomerID), zap.Error(err))
		} else {
			c.log.Error("ошибка создания заказа", zap.Int64("customer_id", req.CustomerID), zap.Error(err))
		}
		return nil, fmt.Errorf("создание заказа: %w", err)
	}

	c.notifier.Enqueue(o,
		notify.PushMessage{Audience: notify.AudienceInstitution, Title: "Новый заказ", Body: "У вас новый заказ!", Sound: NewOrderSound},
		notify.ChatSend{Kind: notify.SendNewOrder},
		notify.Realtime{Channels: []notify.ChannelKind{notify.ChannelInstitution, notify.ChannelOperator, notify.ChannelClient}},
	)
	metrics.StatusTransitions.WithLabelValues(string(o.Status), "created").Inc()
	c.log.Info("заказ создан", zap.Int64("order_id", o.ID), zap.Int64("total_sum", o.TotalSum))
	return o, nil
}

// buildOrder собирает заказ из каталога и считает суммы без скидки.
func (c *Controller) buildOrder(ctx context.Context, req CreateRequest, global *model.GlobalSettings, now time.Time) (*model.Order, error) {
	preorder := req.DeliveryTime != nil

	var productIDs, optionIDs []int64
	for _, g := range req.Groups {
		for _, it := range g.Items {
			productIDs = append(productIDs, it.ProductID)
			optionIDs = append(optionIDs, it.OptionIDs...)
		}
	}
	products, err := c.storage.GetProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	options, err := c.storage.GetOptions(ctx, optionIDs)
	if err != nil {
		return nil, err
	}

	o := &model.Order{
		Status:          model.StatusCreated,
		PaymentMethod:   req.PaymentMethod,
		PackageAmount:   req.PackageAmount,
		PackageQuantity: req.PackageQuantity,
		SelfPickup:      req.SelfPickup,
		CustomerID:      req.CustomerID,
		CustomerPhone:   req.CustomerPhone,
		CardToken:       req.CardToken,
		Note:            req.Note,
		Address:         req.Address,
		DeliveryTime:    req.DeliveryTime,
		CreatedAt:       now,
	}
	if preorder {
		o.Status = model.StatusPreOrder
	}

	for _, rg := range req.Groups {
		inst, err := c.storage.GetInstitution(ctx, rg.InstitutionID)
		if err != nil {
			return nil, fmt.Errorf("заведение %d: %w", rg.InstitutionID, err)
		}

		var b *model.Branch
		if preorder {
			b, err = c.branches.Select(ctx, inst.ID, req.Address)
		} else {
			b, err = c.branches.Suitable(ctx, inst.ID, req.Address)
		}
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, fmt.Errorf("%w: %s", ErrInstitutionUnavailable, inst.Name)
		}
		if preorder {
			if err := checkPreorderTime(b, *req.DeliveryTime, now); err != nil {
				return nil, err
			}
		}

		g := model.ItemGroup{Institution: *inst, Branch: *b}
		if !req.SelfPickup {
			if g.DeliveringSum, err = c.pricing.DeliverySum(ctx, inst, req.Address, b, &global.Delivery); err != nil {
				return nil, err
			}
		}

		for _, ri := range rg.Items {
			p, ok := products[ri.ProductID]
			if !ok {
				return nil, fmt.Errorf("%w: %d", ErrUnknownProduct, ri.ProductID)
			}
			item := model.Item{Product: p, Count: ri.Count}
			for _, id := range ri.OptionIDs {
				opt, ok := options[id]
				if !ok {
					return nil, fmt.Errorf("%w: опция %d", ErrUnknownProduct, id)
				}
				item.Options = append(item.Options, opt)
			}
			g.Items = append(g.Items, item)
		}
		o.Groups = append(o.Groups, g)
	}

	out := pricing.Recalculate(*o, global.Commission)
	return &out, nil
}

// checkPreorderTime проверяет время предзаказа: не раньше минимального срока, не дальше допустимого
// числа дней, в часы работы филиала и с запасом на приготовление и доставку.
func checkPreorderTime(b *model.Branch, at, now time.Time) error {
	if at.Before(now.Add(time.Duration(b.MinPreorderMinutes) * time.Minute)) {
		return fmt.Errorf("%w: время доставки должно быть не раньше чем через %d минут", ErrPreorderTime, b.MinPreorderMinutes)
	}
	if at.After(now.AddDate(0, 0, b.MaxPreorderDays)) {
		return fmt.Errorf("%w: предзаказ возможен только на %d дней вперед", ErrPreorderTime, b.MaxPreorderDays)
	}
	if !branch.OpenBySchedule(b.Schedule, at) {
		return fmt.Errorf("%w: заведение не работает в указанное время", ErrPreorderTime)
	}
	lead := time.Duration(b.PreparingTime+b.MaxDeliveryTime) * time.Minute
	if at.Add(-lead).Before(now) {
		return fmt.Errorf("%w: не хватает времени на приготовление и доставку", ErrPreorderTime)
	}
	return nil
}
