package notify

import (
	"context"
	"order_lifecycle/internal/model"
	"strconv"
)

// Action - шаг рассылки. Шаги одного задания выполняются по порядку.
type Action interface {
	step() string
}

// ChannelKind - realtime-канал заказа.
type ChannelKind string

const (
	ChannelInstitution ChannelKind = "institution"
	ChannelOperator    ChannelKind = "operator"
	ChannelCourier     ChannelKind = "courier"
	ChannelClient      ChannelKind = "client"
)

// Realtime публикует снимок заказа в перечисленные каналы.
type Realtime struct {
	Channels []ChannelKind
}

// StatusChannels - каналы, которые получают каждое изменение статуса.
var StatusChannels = []ChannelKind{ChannelCourier, ChannelInstitution, ChannelOperator, ChannelClient}

// ReadyPool обновляет заказ в пуле доступных курьерам заказов.
type ReadyPool struct{}

// CourierPool рассылает курьерам уведомление о новом заказе.
type CourierPool struct{}

type Audience string

const (
	AudienceCustomer    Audience = "customer"
	AudienceInstitution Audience = "institution"
)

// PushMessage отправляет уведомление клиенту или заведению заказа.
type PushMessage struct {
	Audience Audience
	Title    string
	Body     string
	Sound    string
}

type SendKind string

const (
	SendNewOrder SendKind = "new"
	SendCourier  SendKind = "courier"
	SendCancel   SendKind = "cancel"
)

// ChatSend отправляет новое сообщение в чаты филиала и в чат-зеркало.
type ChatSend struct {
	Kind SendKind
}

type EditKind string

const (
	EditAccepted   EditKind = "accepted"
	EditIncident   EditKind = "incident"
	EditPaymeError EditKind = "payme_error"
	EditCancel     EditKind = "cancel"
)

// ChatEdit дописывает баннер к ранее отправленному сообщению заказа.
// Minutes нужен для EditAccepted, Detail - для EditPaymeError.
// После EditCancel в чаты уходит отдельное короткое сообщение об отмене.
type ChatEdit struct {
	Kind    EditKind
	Minutes int
	Detail  string
}

// Call выполняет внешний вызов в общей очереди заказа, например передачу заказа во внешнюю кухню.
type Call struct {
	Name string
	Fn   func(ctx context.Context, o *model.Order) error
}

func (Realtime) step() string    { return "realtime" }
func (ReadyPool) step() string   { return "ready_pool" }
func (CourierPool) step() string { return "courier_pool" }
func (p PushMessage) step() string {
	return "push_" + string(p.Audience)
}
func (s ChatSend) step() string { return "chat_send_" + string(s.Kind) }
func (e ChatEdit) step() string { return "chat_edit_" + string(e.Kind) }
func (c Call) step() string     { return "call_" + c.Name }

// Имена каналов и топиков.
const (
	ReadyOrdersChannel = "ready_orders"
	OperatorChannel    = "operator"
	CourierChannel     = "courier"
	CouriersTopic      = "couriers"
)

func InstitutionChannel(institutionID int64) string {
	return "institution_" + strconv.FormatInt(institutionID, 10)
}

func ClientChannel(customerID int64) string {
	return "client_" + strconv.FormatInt(customerID, 10)
}
