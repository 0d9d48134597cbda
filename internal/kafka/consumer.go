package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"order_lifecycle/internal/config"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/metrics"
	"order_lifecycle/internal/model"
	"order_lifecycle/internal/orders"
	"order_lifecycle/internal/validator"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

//go:generate mockgen -source=consumer.go -destination=./mocks/consumer_mock.go -package=mocks Orders

// Orders - операции контроллера заказов, доступные командам.
type Orders interface {
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, preparingTime *int) (*model.Order, error)
	Cancel(ctx context.Context, orderID int64, ignoreConstraints bool) (*model.Order, error)
	AssignCourier(ctx context.Context, orderID, courierID int64) (*orders.AssignResult, error)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// errRejected - команда отклонена правилами заказа. Повторять ее бессмысленно.
var errRejected = errors.New("команда отклонена")

// Consumer читает команды над заказами и выполняет их через контроллер.
type Consumer struct {
	reader     messageReader
	dlqWriter  messageWriter // Продюсер для отправки "битых" сообщений в DLQ
	orders     Orders
	log        *zap.Logger
	tracer     trace.Tracer
	maxRetries int // Количество попыток для временных ошибок
	backoff    func(attempt int) time.Duration
}

// NewConsumer создает новый экземпляр Consumer.
func NewConsumer(cfg config.KafkaConfig, o Orders, log *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.CommandsTopic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		// Коммиты выполняются вручную после обработки.
	})

	dlqWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.DLQTopic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Consumer{
		reader:     reader,
		dlqWriter:  dlqWriter,
		orders:     o,
		log:        log,
		tracer:     otel.Tracer("kafka-consumer"),
		maxRetries: max(cfg.MaxRetries, 1),
		backoff:    func(attempt int) time.Duration { return time.Second * time.Duration(attempt) },
	}
}

// Run запускает цикл чтения команд до отмены контекста.
func (c *Consumer) Run(ctx context.Context) {
	c.log.Info("Kafka-консюмер команд запущен")
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.log.Error("Ошибка закрытия Kafka-ридера", zap.Error(err))
		}
		if err := c.dlqWriter.Close(); err != nil {
			c.log.Error("Ошибка закрытия Kafka (DLQ) writer", zap.Error(err))
		}
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Kafka-консюмер команд останавливается")
				return
			}
			c.log.Error("Ошибка чтения сообщения из Kafka", zap.Error(err))
			continue
		}

		if err := c.processMessage(ctx, msg); err != nil {
			// Не коммитим: Kafka доставит сообщение повторно.
			c.log.Warn("Ошибка обработки команды, ждем повторной доставки",
				zap.String("key", string(msg.Key)), zap.Error(err))
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("Ошибка коммита сообщения", zap.Error(err))
		}
	}
}

// processMessage разбирает, проверяет и выполняет команду.
// Возвращает error, только если сообщение нужно прочитать повторно (контекст отменен).
// Невалидные команды и команды, не выполненные после всех попыток, уходят в DLQ.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	ctx, span := c.tracer.Start(ctx, "Consumer.processMessage")
	defer span.End()

	var cmd Command
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		c.log.Warn("Невалидное JSON-сообщение, отправка в DLQ", zap.Error(err))
		c.sendToDLQ(ctx, msg, "json_unmarshal_error", err)
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_validation").Inc()
		return nil
	}
	log := c.log.With(zap.String("command_id", cmd.ID), zap.String("type", string(cmd.Type)),
		zap.Int64("order_id", cmd.OrderID))

	if err := validator.ValidateStruct(&cmd); err != nil {
		log.Warn("Ошибка валидации команды, отправка в DLQ", zap.Error(err))
		c.sendToDLQ(ctx, msg, "validation_error", err)
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_validation").Inc()
		return nil
	}

	var err error
	for i := 0; i < c.maxRetries; i++ {
		err = c.execute(ctx, cmd)
		if err == nil || rejected(err) {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("Ошибка выполнения команды", zap.Int("attempt", i+1), zap.Int("max", c.maxRetries), zap.Error(err))
		if i < c.maxRetries-1 {
			time.Sleep(c.backoff(i + 1))
		}
	}

	switch {
	case err == nil:
		log.Info("Команда выполнена")
		metrics.KafkaMessagesProcessed.WithLabelValues("success").Inc()
	case rejected(err):
		log.Info("Команда отклонена", zap.Error(err))
		metrics.KafkaMessagesProcessed.WithLabelValues("rejected").Inc()
	default:
		log.Error("Команда не выполнена после всех попыток, отправка в DLQ", zap.Error(err))
		c.sendToDLQ(ctx, msg, "processing_error", err)
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_processing_error").Inc()
	}
	return nil
}

// rejected - ошибка бизнес-правил. Таймаут блокировки заказа повторяется.
func rejected(err error) bool {
	if errors.Is(err, database.ErrLockTimeout) {
		return false
	}
	return errors.Is(err, errRejected) || orders.IsClientError(err)
}

func (c *Consumer) execute(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case CommandStatus:
		_, err := c.orders.UpdateStatus(ctx, cmd.OrderID, cmd.Status, cmd.PreparingTime)
		return err
	case CommandCancel:
		_, err := c.orders.Cancel(ctx, cmd.OrderID, cmd.IgnoreConstraints)
		return err
	case CommandAssign:
		res, err := c.orders.AssignCourier(ctx, cmd.OrderID, cmd.CourierID)
		if err != nil {
			return err
		}
		if !res.Status {
			return fmt.Errorf("%w: %s", errRejected, res.Message.Ru)
		}
		return nil
	default:
		return fmt.Errorf("%w: неизвестный тип %q", errRejected, cmd.Type)
	}
}

// sendToDLQ отправляет "битое" сообщение в DLQ топик.
func (c *Consumer) sendToDLQ(ctx context.Context, originalMsg kafka.Message, reason string, procErr error) {
	ctx, span := c.tracer.Start(ctx, "Consumer.sendToDLQ")
	defer span.End()

	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   originalMsg.Key,
		Value: originalMsg.Value,
		Headers: []kafka.Header{
			{Key: "X-Original-Topic", Value: []byte(originalMsg.Topic)},
			{Key: "X-Original-Offset", Value: []byte(strconv.FormatInt(originalMsg.Offset, 10))},
			{Key: "X-Error-Reason", Value: []byte(reason)},
			{Key: "X-Error-Details", Value: []byte(procErr.Error())},
		},
	})
	if err != nil {
		c.log.Error("КРИТИЧНО: не удалось отправить сообщение в DLQ",
			zap.String("key", string(originalMsg.Key)), zap.Error(err))
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_failed_write").Inc()
		return
	}
	c.log.Info("Сообщение отправлено в DLQ", zap.String("key", string(originalMsg.Key)), zap.String("reason", reason))
}
