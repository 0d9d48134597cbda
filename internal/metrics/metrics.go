package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HttpRequestsTotal - Счетчик HTTP-запросов
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Количество HTTP запросов",
		},
		[]string{"handler", "status"},
	)

	// HttpRequestDuration - Гистограмма длительности HTTP-запросов
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Длительность HTTP запросов",
		},
		[]string{"handler"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Количество попаданий в кэш",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Количество промахов кэша",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size_items",
			Help: "Текущий размер кэша в элементах",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Количество вытесненных из кэша элементов",
		},
	)

	// KafkaMessagesProcessed - Счетчик обработанных команд из Kafka
	KafkaMessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Количество обработанных сообщений Kafka",
		},
		[]string{"status"}, // "success", "rejected", "dlq_validation", "dlq_command_error", "dlq_failed_write"
	)

	// RealtimePublished - сообщения, отправленные в канал реального времени
	RealtimePublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_messages_published_total",
			Help: "Количество событий, опубликованных в каналы реального времени",
		},
		[]string{"channel_kind", "result"},
	)

	// DBErrors - Счетчик ошибок базы данных
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Количество ошибок при работе с БД",
		},
		[]string{"operation"},
	)

	// StatusTransitions - переходы статусов заказа
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Количество попыток смены статуса заказа",
		},
		[]string{"status", "result"},
	)

	// TransitionDuration - длительность транзакции смены статуса (вместе с удержанием блокировки)
	TransitionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_status_transition_duration_seconds",
			Help:    "Длительность смены статуса заказа под блокировкой",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// CourierAssignments - попытки назначить курьера
	CourierAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_assignments_total",
			Help: "Количество попыток назначения курьера на заказ",
		},
		[]string{"result"},
	)

	// NotificationSteps - шаги рассылки уведомлений по каналам
	NotificationSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_steps_total",
			Help: "Количество выполненных шагов рассылки уведомлений",
		},
		[]string{"step", "result"},
	)

	// NotificationQueueDepth - задания в очередях рассылки
	NotificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_queue_depth",
			Help: "Количество заданий рассылки в очередях",
		},
	)

	// PaymentCalls - вызовы платежного шлюза и ОФД
	PaymentCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_calls_total",
			Help: "Количество обращений к платежному шлюзу и фискальному сервису",
		},
		[]string{"provider", "operation", "result"},
	)

	// LedgerEntries - записи журнала баланса курьеров
	LedgerEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_ledger_entries_total",
			Help: "Количество записей в журнале баланса курьеров",
		},
		[]string{"name", "type"},
	)

	// ReconciliationPolls - опросы внешней кухонной системы
	ReconciliationPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitchen_reconciliation_polls_total",
			Help: "Количество опросов статусов заказов во внешней кухонной системе",
		},
		[]string{"result"},
	)
)
