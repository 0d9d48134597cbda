package main

import (
	"context"
	"fmt"
	"order_lifecycle/internal/api"
	"order_lifecycle/internal/bot"
	"order_lifecycle/internal/branch"
	"order_lifecycle/internal/cache"
	"order_lifecycle/internal/config"
	"order_lifecycle/internal/database"
	"order_lifecycle/internal/kafka"
	"order_lifecycle/internal/logger"
	"order_lifecycle/internal/notify"
	"order_lifecycle/internal/orders"
	"order_lifecycle/internal/payment"
	"order_lifecycle/internal/pricing"
	"order_lifecycle/internal/push"
	"order_lifecycle/internal/rkeeper"
	"order_lifecycle/internal/telegram"
	"order_lifecycle/internal/tracing"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	serviceName     = "order-lifecycle"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg := config.Get()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "не удалось создать логгер: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := config.DotEnvError(); err != nil {
		log.Debug("Файл .env не загружен, используются переменные окружения", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracerProvider(serviceName, cfg.Tracing, log)
		if err != nil {
			log.Warn("Трассировка отключена", zap.Error(err))
		} else {
			defer shutdownTracer(context.Background())
		}
	}

	// Инициализация хранилища
	storage, err := database.New(cfg.Postgres.URL, cfg.Postgres.MigrationsPath, cfg.Postgres.LockTimeout, log)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища", zap.Error(err))
	}
	defer storage.Close()

	// Кэш заказов, филиалов и настроек
	lru := cache.NewLRUCache(cfg.Cache.Size, cfg.Cache.TTL)
	if err := cache.WarmUp(ctx, storage, lru, log); err != nil {
		log.Warn("Ошибка при прогреве кэша", zap.Error(err))
	}

	publisher := kafka.NewPublisher(cfg.Kafka)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Ошибка закрытия Kafka writer", zap.Error(err))
		}
	}()

	// Telegram и Firebase необязательны: без них соответствующие шаги уведомлений пропускаются.
	var (
		chatBot notify.ChatBot
		tg      *telegram.Bot
	)
	if cfg.Telegram.Token != "" {
		tg, err = telegram.New(cfg.Telegram.Token, log)
		if err != nil {
			log.Error("Telegram-бот не запущен", zap.Error(err))
		} else {
			chatBot = tg
		}
	}

	var pusher notify.Pusher
	if cfg.Firebase.ProjectID != "" {
		fcm, err := push.NewFCM(ctx, cfg.Firebase, log)
		if err != nil {
			log.Error("Push-уведомления отключены", zap.Error(err))
		} else {
			pusher = fcm
		}
	}

	dispatcher := notify.NewDispatcher(publisher, chatBot, pusher, storage, notify.Options{
		Workers:     cfg.Notify.Workers,
		QueueSize:   cfg.Notify.QueueSize,
		StepTimeout: cfg.Notify.StepTimeout,
		AdminChatID: cfg.Telegram.AdminChatID,
	}, log)
	dispatcher.Start()

	payments := payment.NewTrigger(
		payment.NewPaymeClient(cfg.Payme, cfg.External.Timeout),
		payment.NewOFDClient(cfg.OFD, cfg.External.Timeout),
		cfg.OFD.Enabled,
		cfg.External.Timeout,
		log,
	)
	kitchen := rkeeper.NewClient(cfg.RKeeper.BaseURL, cfg.External.Timeout)
	selector := branch.NewSelector(storage, lru)
	calculator := pricing.NewCalculator(pricing.NewCachedSettings(storage, lru), selector)

	controller, err := orders.NewController(orders.Deps{
		Storage:  storage,
		Notifier: dispatcher,
		Payments: payments,
		Kitchen:  kitchen,
		Cache:    lru,
		Pricing:  calculator,
		Branches: selector,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("Ошибка инициализации контроллера заказов", zap.Error(err))
	}

	var wg sync.WaitGroup

	// Запуск Kafka Consumer
	consumer := kafka.NewConsumer(cfg.Kafka, controller, log)
	wg.Go(func() { consumer.Run(ctx) })

	if cfg.RKeeper.Enabled {
		reconciler := rkeeper.NewReconciler(storage, kitchen, controller, dispatcher, cfg.RKeeper.PollInterval, log)
		wg.Go(func() { reconciler.Run(ctx) })
	}

	if tg != nil && cfg.Telegram.Polling {
		poller := telegram.NewPoller(tg.API(), bot.NewHandler(controller, log), log)
		wg.Go(func() {
			if err := poller.Run(ctx); err != nil {
				log.Error("Ошибка чтения обновлений Telegram", zap.Error(err))
			}
		})
	}

	// Запуск HTTP-сервера
	server := api.NewServer(cfg.HTTP.Port, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, controller, log)
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Run() }()

	// Ожидание сигнала для корректного завершения работы
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Error("Ошибка HTTP-сервера", zap.Error(err))
		}
	}
	stop()

	log.Info("Сервис останавливается...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	wg.Wait()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error("Не все уведомления доставлены до остановки", zap.Error(err))
	}
	log.Info("Сервис успешно остановлен.")
}
