package orders

import (
	"context"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/model"
	"sync"
	"time"
)

// memState - данные хранилища в памяти. Транзакция работает с копией и подменяет состояние при коммите.
type memState struct {
	orders       map[int64]*model.Order
	couriers     map[int64]*model.Courier
	institutions map[int64]*model.Institution
	promos       map[string]*model.PromoCode
	usages       []model.PromoUsage
	ledger       []model.Transaction
	payments     []model.Payment
	operators    []int64
	nextID       int64
}

func (s *memState) clone() *memState {
	c := &memState{
		orders:       make(map[int64]*model.Order, len(s.orders)),
		couriers:     make(map[int64]*model.Courier, len(s.couriers)),
		institutions: make(map[int64]*model.Institution, len(s.institutions)),
		promos:       make(map[string]*model.PromoCode, len(s.promos)),
		usages:       append([]model.PromoUsage(nil), s.usages...),
		ledger:       append([]model.Transaction(nil), s.ledger...),
		payments:     append([]model.Payment(nil), s.payments...),
		operators:    append([]int64(nil), s.operators...),
		nextID:       s.nextID,
	}
	for k, v := range s.orders {
		c.orders[k] = v.Clone()
	}
	for k, v := range s.couriers {
		cp := *v
		c.couriers[k] = &cp
	}
	for k, v := range s.institutions {
		cp := *v
		c.institutions[k] = &cp
	}
	for k, v := range s.promos {
		cp := *v
		c.promos[k] = &cp
	}
	return c
}

type memStore struct {
	mu       sync.Mutex
	state    *memState
	products map[int64]model.Product
	options  map[int64]model.Option
	global   model.GlobalSettings
	messages map[int64]*model.TelegramMessage
	external map[int64]string
}

func newMemStore() *memStore {
	return &memStore{
		state: &memState{
			orders:       map[int64]*model.Order{},
			couriers:     map[int64]*model.Courier{},
			institutions: map[int64]*model.Institution{},
			promos:       map[string]*model.PromoCode{},
			nextID:       1000,
		},
		products: map[int64]model.Product{},
		options:  map[int64]model.Option{},
		messages: map[int64]*model.TelegramMessage{},
		external: map[int64]string{},
	}
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx database.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{s: m.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.state = tx.s
	return nil
}

func (m *memStore) order(id int64) *model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.state.orders[id]; ok {
		return o.Clone()
	}
	return nil
}

func (m *memStore) courier(id int64) model.Courier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state.couriers[id]
}

func (m *memStore) institution(id int64) model.Institution {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state.institutions[id]
}

func (m *memStore) ledger() []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Transaction(nil), m.state.ledger...)
}

func (m *memStore) GetOrder(_ context.Context, id int64) (*model.Order, error) {
	if o := m.order(id); o != nil {
		return o, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) GetCourier(_ context.Context, id int64) (*model.Courier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.state.couriers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) GetInstitution(_ context.Context, id int64) (*model.Institution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.state.institutions[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) GetGlobalSettings(context.Context) (*model.GlobalSettings, error) {
	g := m.global
	return &g, nil
}

func (m *memStore) ListBranches(context.Context, int64) ([]model.Branch, error) { return nil, nil }
func (m *memStore) ListAllBranches(context.Context) ([]model.Branch, error)     { return nil, nil }

func (m *memStore) GetProducts(_ context.Context, ids []int64) (map[int64]model.Product, error) {
	out := map[int64]model.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memStore) GetOptions(_ context.Context, ids []int64) (map[int64]model.Option, error) {
	out := map[int64]model.Option{}
	for _, id := range ids {
		if o, ok := m.options[id]; ok {
			out[id] = o
		}
	}
	return out, nil
}

func (m *memStore) ListOrdersForReconciliation(context.Context) ([]model.Order, error) {
	return nil, nil
}

func (m *memStore) SetRestaurantStatus(context.Context, int64, model.RestaurantStatus) error {
	return nil
}

func (m *memStore) SetExternalID(_ context.Context, orderID int64, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.external[orderID] = externalID
	if o, ok := m.state.orders[orderID]; ok {
		o.ExternalID = &externalID
	}
	return nil
}

func (m *memStore) StampPreparingStart(context.Context, int64, time.Time) error { return nil }

func (m *memStore) GetTelegramMessage(_ context.Context, orderID int64) (*model.TelegramMessage, error) {
	return m.messages[orderID], nil
}

func (m *memStore) SaveTelegramMessage(_ context.Context, msg *model.TelegramMessage) error {
	m.messages[msg.OrderID] = msg
	return nil
}

func (m *memStore) Close() error { return nil }

type memTx struct {
	s *memState
}

func (t *memTx) LockOrder(_ context.Context, id int64) (*model.Order, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return o.Clone(), nil
}

func (t *memTx) LockCourier(_ context.Context, id int64) (*model.Courier, error) {
	c, ok := t.s.couriers[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) CreateOrder(_ context.Context, o *model.Order) error {
	t.s.nextID++
	o.ID = t.s.nextID
	for i := range o.Groups {
		o.Groups[i].ID = o.ID*10 + int64(i)
		o.Groups[i].OrderID = o.ID
	}
	o.Timeline.OrderID = o.ID
	t.s.orders[o.ID] = o.Clone()
	return nil
}

func (t *memTx) UpdateOrder(_ context.Context, o *model.Order) error {
	if _, ok := t.s.orders[o.ID]; !ok {
		return database.ErrNotFound
	}
	t.s.orders[o.ID] = o.Clone()
	return nil
}

func (t *memTx) UpdateTimeline(_ context.Context, tl *model.Timeline) error {
	if o, ok := t.s.orders[tl.OrderID]; ok {
		o.Timeline = *tl
	}
	return nil
}

func (t *memTx) PickOperator(context.Context) (*int64, error) {
	if len(t.s.operators) == 0 {
		return nil, nil
	}
	best, bestLoad := t.s.operators[0], -1
	for _, op := range t.s.operators {
		load := 0
		for _, o := range t.s.orders {
			if o.OperatorID != nil && *o.OperatorID == op && !o.Status.IsTerminal() {
				load++
			}
		}
		if bestLoad < 0 || load < bestLoad {
			best, bestLoad = op, load
		}
	}
	return &best, nil
}

func (t *memTx) UpdateCourierStatus(_ context.Context, id int64, status model.CourierStatus) error {
	c, ok := t.s.couriers[id]
	if !ok {
		return database.ErrNotFound
	}
	c.Status = status
	return nil
}

func (t *memTx) CountActiveCourierOrders(_ context.Context, courierID, excludeOrderID int64) (int, error) {
	n := 0
	for _, o := range t.s.orders {
		if o.ID == excludeOrderID || o.CourierID == nil || *o.CourierID != courierID {
			continue
		}
		if o.Status == model.StatusAccepted || o.Status == model.StatusShipped {
			n++
		}
	}
	return n, nil
}

func (t *memTx) RecordCourierTransaction(_ context.Context, tr *model.Transaction) error {
	c, ok := t.s.couriers[tr.CourierID]
	if !ok {
		return database.ErrNotFound
	}
	tr.ID = int64(len(t.s.ledger) + 1)
	t.s.ledger = append(t.s.ledger, *tr)
	c.Balance += tr.Delta()
	return nil
}

func (t *memTx) AdjustInstitutionBalance(_ context.Context, id, delta int64) error {
	i, ok := t.s.institutions[id]
	if !ok {
		return database.ErrNotFound
	}
	i.Balance += delta
	return nil
}

func (t *memTx) CreatePayment(_ context.Context, p *model.Payment) error {
	p.ID = int64(len(t.s.payments) + 1)
	t.s.payments = append(t.s.payments, *p)
	return nil
}

func (t *memTx) GetPromoCode(_ context.Context, code string) (*model.PromoCode, error) {
	p, ok := t.s.promos[code]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) HasPromoUsage(_ context.Context, userID, promoID int64) (bool, error) {
	for _, u := range t.s.usages {
		if u.UserID == userID && u.PromoCodeID == promoID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreatePromoUsage(ctx context.Context, u *model.PromoUsage) error {
	if used, _ := t.HasPromoUsage(ctx, u.UserID, u.PromoCodeID); used {
		return database.ErrDuplicate
	}
	u.ID = int64(len(t.s.usages) + 1)
	t.s.usages = append(t.s.usages, *u)
	return nil
}

func (t *memTx) DeletePromoUsage(_ context.Context, userID, orderID int64) error {
	kept := t.s.usages[:0]
	for _, u := range t.s.usages {
		if u.UserID != userID || u.OrderID != orderID {
			kept = append(kept, u)
		}
	}
	t.s.usages = kept
	return nil
}
