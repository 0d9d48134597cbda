package orders

import (
	"context"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/notify"
	"order_lifecycle/internal/payment"
)

//go:generate mockgen -source=ports.go -destination=./mocks/ports_mock.go -package=mocks

// Notifier ставит рассылки в очередь после коммита.
type Notifier interface {
	Enqueue(order *model.Order, actions ...notify.Action) string
}

// Payments - платежные операции заказа.
type Payments interface {
	Charge(ctx context.Context, o *model.Order) (*payment.ChargeResult, error)
	Cancel(ctx context.Context, o *model.Order) error
	ReceiptRequired() bool
	IssueReceipt(ctx context.Context, p *model.Payment, o *model.Order)
}

// Kitchen создает заказ во внешней кухонной системе и возвращает его внешний id.
type Kitchen interface {
	CreateOrder(ctx context.Context, o *model.Order) (string, error)
}

// Branches подбирает филиал для новой группы заказа.
type Branches interface {
	Suitable(ctx context.Context, institutionID int64, dest model.Address) (*model.Branch, error)
	Select(ctx context.Context, institutionID int64, dest model.Address) (*model.Branch, error)
}

// Pricing считает доставку и отдает настройки платформы.
type Pricing interface {
	GlobalSettings(ctx context.Context) (*model.GlobalSettings, error)
	DeliverySum(ctx context.Context, inst *model.Institution, dest model.Address, branch *model.Branch, global *model.DeliverySettings) (int64, error)
}
