package main

import (
	"context"
	"fmt"
	"order_lifecycle/internal/config"
	"order_lifecycle/internal/generator"
	"order_lifecycle/internal/kafka"
	"order_lifecycle/internal/logger"
	"order_lifecycle/internal/model"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
)

// simulatorConfig - какие заказы двигает симулятор и как часто.
type simulatorConfig struct {
	FirstOrderID int64         `env:"SIM_FIRST_ORDER_ID" env-default:"1"`
	LastOrderID  int64         `env:"SIM_LAST_ORDER_ID" env-default:"20"`
	MaxCourierID int64         `env:"SIM_MAX_COURIER_ID" env-default:"10"`
	Interval     time.Duration `env:"SIM_INTERVAL" env-default:"2s"`
	Seed         int64         `env:"SIM_SEED" env-default:"0"`
}

// Producer отправляет в Kafka команды, имитируя заведения, операторов и курьеров.
type Producer struct {
	writer   *kafka.CommandWriter
	gen      *generator.Generator
	cfg      simulatorConfig
	statuses map[int64]model.OrderStatus
	log      *zap.Logger
}

// NewProducer создает симулятор. Все заказы диапазона считаются созданными.
func NewProducer(kcfg config.KafkaConfig, cfg simulatorConfig, log *zap.Logger) *Producer {
	statuses := make(map[int64]model.OrderStatus)
	for id := cfg.FirstOrderID; id <= cfg.LastOrderID; id++ {
		statuses[id] = model.StatusCreated
	}
	return &Producer{
		writer:   kafka.NewCommandWriter(kcfg),
		gen:      generator.New(cfg.Seed),
		cfg:      cfg,
		statuses: statuses,
		log:      log,
	}
}

// nextCommand выбирает случайный незавершенный заказ и команду для него.
func (p *Producer) nextCommand() (kafka.Command, bool) {
	if len(p.statuses) == 0 {
		return kafka.Command{}, false
	}
	orderID := p.gen.Pick(p.cfg.FirstOrderID, p.cfg.LastOrderID)
	current, ok := p.statuses[orderID]
	if !ok {
		return kafka.Command{}, false
	}

	cmd := kafka.Command{OrderID: orderID, IssuedAt: time.Now()}
	switch {
	case p.gen.Chance(25):
		cmd.Type = kafka.CommandCancel
		delete(p.statuses, orderID)
	case current == model.StatusAccepted && p.gen.Chance(2):
		cmd.Type = kafka.CommandAssign
		cmd.CourierID = p.gen.Pick(1, p.cfg.MaxCourierID)
	default:
		next, ok := p.gen.Next(current)
		if !ok {
			delete(p.statuses, orderID)
			return kafka.Command{}, false
		}
		cmd.Type = kafka.CommandStatus
		cmd.Status = next
		if next == model.StatusAccepted {
			pt := p.gen.PreparingTime()
			cmd.PreparingTime = &pt
		}
		if next.IsTerminal() {
			delete(p.statuses, orderID)
		} else {
			p.statuses[orderID] = next
		}
	}
	return cmd, true
}

// Run запускает цикл отправки команд до отмены контекста или завершения всех заказов.
func (p *Producer) Run(ctx context.Context) {
	p.log.Info("Продюсер запущен. Нажмите CTRL+C для остановки.")
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Продюсер останавливается.")
			return
		case <-ticker.C:
			if len(p.statuses) == 0 {
				p.log.Info("Все заказы завершены.")
				return
			}
			cmd, ok := p.nextCommand()
			if !ok {
				continue
			}
			if err := p.writer.Write(ctx, cmd); err != nil {
				p.log.Error("Ошибка отправки команды", zap.Error(err))
				continue
			}
			p.log.Info("Отправлена команда",
				zap.String("type", string(cmd.Type)),
				zap.Int64("order_id", cmd.OrderID),
				zap.String("status", string(cmd.Status)),
			)
		}
	}
}

func (p *Producer) Close() {
	if err := p.writer.Close(); err != nil {
		p.log.Error("Ошибка закрытия Kafka writer", zap.Error(err))
	}
}

func main() {
	cfg := config.Get()
	log, err := logger.New(cfg.Log.Level, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "не удалось создать логгер: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	var sim simulatorConfig
	if err := cleanenv.ReadEnv(&sim); err != nil {
		log.Fatal("Некорректные настройки симулятора", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer := NewProducer(cfg.Kafka, sim, log)
	defer producer.Close()

	producer.Run(ctx)
}
