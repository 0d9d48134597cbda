package notify

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrNoMessage - у заказа нет сохраненного сообщения в Telegram, редактировать нечего.
var ErrNoMessage = errors.New("сообщение заказа в Telegram не найдено")

// Options задает размеры пула рассылки.
type Options struct {
	Workers     int
	QueueSize   int
	StepTimeout time.Duration
	AdminChatID int64
}

type job struct {
	id      string
	order   *model.Order
	actions []Action
}

// Dispatcher выполняет рассылки после коммита транзакции.
// Задания одного заказа попадают в один воркер и выполняются по порядку.
type Dispatcher struct {
	publisher Publisher
	bot       ChatBot
	pusher    Pusher
	messages  MessageStore
	opts      Options
	log       *zap.Logger
	tracer    trace.Tracer

	queues []chan job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(publisher Publisher, bot ChatBot, pusher Pusher, messages MessageStore, opts Options, log *zap.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		publisher: publisher,
		bot:       bot,
		pusher:    pusher,
		messages:  messages,
		opts:      opts,
		log:       log,
		tracer:    otel.Tracer("notify-dispatcher"),
		queues:    make([]chan job, opts.Workers),
	}
	for i := range d.queues {
		d.queues[i] = make(chan job, opts.QueueSize)
	}
	return d
}

// Start запускает воркеры.
func (d *Dispatcher) Start() {
	for i, q := range d.queues {
		d.wg.Add(1)
		go func(n int, q chan job) {
			defer d.wg.Done()
			for j := range q {
				metrics.NotificationQueueDepth.Dec()
				d.run(j)
			}
			d.log.Debug("воркер рассылки остановлен", zap.Int("worker", n))
		}(i, q)
	}
	d.log.Info("диспетчер уведомлений запущен", zap.Int("workers", len(d.queues)))
}

// Enqueue ставит рассылку в очередь. Заказ копируется, вызывающий может менять его дальше.
// Не блокирует вызывающего: при переполненной очереди задание отбрасывается.
// Возвращает id задания или пустую строку, если диспетчер остановлен или очередь полна.
func (d *Dispatcher) Enqueue(order *model.Order, actions ...Action) string {
	if order == nil || len(actions) == 0 {
		return ""
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("диспетчер остановлен, рассылка пропущена", zap.Int64("order_id", order.ID))
		return ""
	}

	j := job{id: ulid.Make().String(), order: order.Clone(), actions: actions}
	idx := order.ID % int64(len(d.queues))
	if idx < 0 {
		idx = -idx
	}
	select {
	case d.queues[idx] <- j:
		metrics.NotificationQueueDepth.Inc()
		return j.id
	default:
		metrics.NotificationSteps.WithLabelValues("enqueue", "dropped").Inc()
		d.log.Error("очередь рассылки переполнена, задание отброшено",
			zap.Int64("order_id", order.ID), zap.String("job_id", j.id), zap.Int("queue_size", cap(d.queues[idx])))
		return ""
	}
}

// Close перестает принимать задания и ждет, пока очереди опустеют.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("очереди рассылки обработаны")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("очереди рассылки не обработаны до остановки: %w", ctx.Err())
	}
}

func (d *Dispatcher) run(j job) {
	ctx, span := d.tracer.Start(context.Background(), "Dispatcher.run",
		trace.WithAttributes(attribute.Int64("order_id", j.order.ID), attribute.String("job_id", j.id)))
	defer span.End()

	for _, a := range j.actions {
		d.runStep(ctx, j, a)
	}
}

// runStep выполняет один шаг. Ошибка или паника шага не мешает следующим.
func (d *Dispatcher) runStep(ctx context.Context, j job, a Action) {
	log := d.log.With(zap.String("job_id", j.id), zap.Int64("order_id", j.order.ID), zap.String("step", a.step()))

	ctx, cancel := context.WithTimeout(ctx, d.opts.StepTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationSteps.WithLabelValues(a.step(), "panic").Inc()
			log.Error("паника в шаге рассылки", zap.Any("panic", r))
		}
	}()

	if !d.enabled(a) {
		metrics.NotificationSteps.WithLabelValues(a.step(), "skipped").Inc()
		log.Debug("канал рассылки не подключен, шаг пропущен")
		return
	}

	if err := d.execute(ctx, j.order, a); err != nil {
		metrics.NotificationSteps.WithLabelValues(a.step(), "error").Inc()
		log.Error("ошибка шага рассылки", zap.Error(err))
		return
	}
	metrics.NotificationSteps.WithLabelValues(a.step(), "success").Inc()
}

// enabled - транспорт шага подключен. Без токенов Telegram или Firebase
// соответствующие шаги пропускаются.
func (d *Dispatcher) enabled(a Action) bool {
	switch a.(type) {
	case Realtime, ReadyPool:
		return d.publisher != nil
	case CourierPool, PushMessage:
		return d.pusher != nil
	case ChatSend, ChatEdit:
		return d.bot != nil
	default:
		return true
	}
}

func (d *Dispatcher) execute(ctx context.Context, o *model.Order, a Action) error {
	switch a := a.(type) {
	case Realtime:
		return d.realtime(ctx, o, a.Channels)
	case ReadyPool:
		return d.publish(ctx, "ready_orders", ReadyOrdersChannel, readyPayload(o))
	case CourierPool:
		return d.pusher.Send(ctx, Push{
			Topic: CouriersTopic,
			Title: "Новый заказ",
			Body:  "Новый заказ",
			Data:  map[string]string{"order_id": strconv.FormatInt(o.ID, 10)},
		})
	case PushMessage:
		return d.push(ctx, o, a)
	case ChatSend:
		return d.chatSend(ctx, o, a.Kind)
	case ChatEdit:
		return d.chatEdit(ctx, o, a)
	case Call:
		return a.Fn(ctx, o)
	default:
		return fmt.Errorf("неизвестный шаг рассылки %T", a)
	}
}

func (d *Dispatcher) publish(ctx context.Context, kind, channel string, payload any) error {
	if err := d.publisher.Publish(ctx, channel, payload); err != nil {
		metrics.RealtimePublished.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("канал %s: %w", channel, err)
	}
	metrics.RealtimePublished.WithLabelValues(kind, "success").Inc()
	return nil
}

// realtime публикует снимок заказа во все каналы, даже если какой-то из них недоступен.
func (d *Dispatcher) realtime(ctx context.Context, o *model.Order, channels []ChannelKind) error {
	g := o.Group()
	var errs []error
	for _, ch := range channels {
		if ch != ChannelClient && g == nil {
			errs = append(errs, fmt.Errorf("канал %s: у заказа нет групп", ch))
			continue
		}
		var err error
		switch ch {
		case ChannelInstitution:
			err = d.publish(ctx, string(ch), InstitutionChannel(g.Institution.ID), institutionPayload(o, g))
		case ChannelOperator:
			err = d.publish(ctx, string(ch), OperatorChannel, operatorPayload(o, g))
		case ChannelCourier:
			err = d.publish(ctx, string(ch), CourierChannel, courierPayload(o, g))
		case ChannelClient:
			err = d.publish(ctx, string(ch), ClientChannel(o.CustomerID), clientPayload(o))
		default:
			err = fmt.Errorf("неизвестный канал %s", ch)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) push(ctx context.Context, o *model.Order, p PushMessage) error {
	id := strconv.FormatInt(o.ID, 10)
	switch p.Audience {
	case AudienceCustomer:
		return d.pusher.Send(ctx, Push{
			Topic: ClientChannel(o.CustomerID),
			Title: p.Title,
			Body:  p.Body,
			Data:  map[string]string{"order_id": id},
		})
	case AudienceInstitution:
		g := o.Group()
		if g == nil {
			return errors.New("у заказа нет заведения")
		}
		return d.pusher.Send(ctx, Push{
			Topic:    InstitutionChannel(g.Institution.ID),
			Title:    p.Title,
			Body:     p.Body,
			Data:     map[string]string{"order_id": id},
			DataOnly: true,
			Sound:    p.Sound,
		})
	default:
		return fmt.Errorf("неизвестный получатель %q", p.Audience)
	}
}

func (d *Dispatcher) branchChats(g *model.ItemGroup) []int64 {
	ids, invalid := ParseChatIDs(g.Branch.TelegramChatIDs)
	if len(invalid) > 0 {
		d.log.Warn("некорректные id чатов филиала", zap.Int64("branch_id", g.Branch.ID), zap.Strings("ids", invalid))
	}
	return ids
}

// chatSend отправляет сообщение в чаты филиала и в чат-зеркало.
// Для нового заказа сохраняет id сообщений и текст без подсказки.
func (d *Dispatcher) chatSend(ctx context.Context, o *model.Order, kind SendKind) error {
	g := o.Group()
	if g == nil {
		return errors.New("у заказа нет филиала")
	}

	var text string
	switch kind {
	case SendNewOrder:
		text = NewOrderText(o, g)
	case SendCourier:
		if o.Courier == nil {
			return errors.New("у заказа нет курьера")
		}
		text = CourierText(o, o.Courier)
	case SendCancel:
		text = CancelText(o.ID)
	default:
		return fmt.Errorf("неизвестный тип сообщения %q", kind)
	}
	keyboard := keyboardFor(kind, o, &g.Branch)

	var errs []error
	var first, admin *int64
	for _, chatID := range d.branchChats(g) {
		id, err := d.bot.Send(ctx, chatID, text, keyboard)
		if err != nil {
			errs = append(errs, fmt.Errorf("чат %d: %w", chatID, err))
			continue
		}
		if first == nil {
			first = &id
		}
	}
	if d.opts.AdminChatID != 0 {
		id, err := d.bot.Send(ctx, d.opts.AdminChatID, text, keyboard)
		if err != nil {
			errs = append(errs, fmt.Errorf("чат-зеркало: %w", err))
		} else {
			admin = &id
		}
	}

	if kind == SendNewOrder && (first != nil || admin != nil) {
		msg := &model.TelegramMessage{
			OrderID:    o.ID,
			MessageID:  first,
			MessageID2: admin,
			Text:       strings.Replace(text, AcceptPrompt, "", 1),
		}
		if err := d.messages.SaveTelegramMessage(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("сохранение сообщения: %w", err))
		}
	}
	return errors.Join(errs...)
}

// chatEdit дописывает баннер к сохраненному сообщению и сохраняет новый текст.
func (d *Dispatcher) chatEdit(ctx context.Context, o *model.Order, e ChatEdit) error {
	msg, err := d.messages.GetTelegramMessage(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoMessage, err)
	}
	if msg == nil {
		return ErrNoMessage
	}

	text := EditedText(msg.Text, e)
	var errs []error
	if msg.MessageID != nil {
		if g := o.Group(); g != nil {
			for _, chatID := range d.branchChats(g) {
				if err := d.bot.Edit(ctx, chatID, *msg.MessageID, text); err != nil {
					errs = append(errs, fmt.Errorf("чат %d: %w", chatID, err))
				}
			}
		}
	}
	if msg.MessageID2 != nil && d.opts.AdminChatID != 0 {
		if err := d.bot.Edit(ctx, d.opts.AdminChatID, *msg.MessageID2, text); err != nil {
			errs = append(errs, fmt.Errorf("чат-зеркало: %w", err))
		}
	}

	msg.Text = text
	if err := d.messages.SaveTelegramMessage(ctx, msg); err != nil {
		errs = append(errs, fmt.Errorf("сохранение сообщения: %w", err))
	}

	if e.Kind == EditCancel {
		if err := d.chatSend(ctx, o, SendCancel); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
