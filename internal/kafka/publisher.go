package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"order_lifecycle/internal/config"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Event - сообщение канала реального времени. Шлюз websocket доставляет Payload
// подписчикам канала Channel.
type Event struct {
	ID          string          `json:"id"`
	Channel     string          `json:"channel"`
	Payload     json.RawMessage `json:"payload"`
	PublishedAt time.Time       `json:"published_at"`
}

// Publisher пишет события реального времени в один топик. Ключ сообщения - канал,
// поэтому события канала сохраняют порядок.
type Publisher struct {
	writer messageWriter
	tracer trace.Tracer
	now    func() time.Time
}

func NewPublisher(cfg config.KafkaConfig) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.RealtimeTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		tracer: otel.Tracer("kafka-publisher"),
		now:    time.Now,
	}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload any) error {
	ctx, span := p.tracer.Start(ctx, "Publisher.Publish")
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события канала %s: %w", channel, err)
	}
	ev := Event{ID: ulid.Make().String(), Channel: channel, Payload: body, PublishedAt: p.now().UTC()}
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события канала %s: %w", channel, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(channel),
		Value:   value,
		Headers: []kafka.Header{{Key: "X-Event-ID", Value: []byte(ev.ID)}},
	})
	if err != nil {
		return fmt.Errorf("не удалось опубликовать событие в канал %s: %w", channel, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// CommandWriter публикует команды над заказами. Используется симулятором нагрузки.
type CommandWriter struct {
	writer messageWriter
}

func NewCommandWriter(cfg config.KafkaConfig) *CommandWriter {
	return &CommandWriter{writer: &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.CommandsTopic,
		Balancer: &kafka.Hash{},
	}}
}

// Write присваивает команде id, если его нет, и публикует ее с ключом id заказа.
func (w *CommandWriter) Write(ctx context.Context, cmd Command) error {
	if cmd.ID == "" {
		cmd.ID = ulid.Make().String()
	}
	value, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("ошибка сериализации команды: %w", err)
	}
	return w.writer.WriteMessages(ctx, kafka.Message{Key: []byte(fmt.Sprint(cmd.OrderID)), Value: value})
}

func (w *CommandWriter) Close() error {
	return w.writer.Close()
}
