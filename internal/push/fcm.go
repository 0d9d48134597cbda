// Package push отправляет уведомления в топики Firebase Cloud Messaging.
package push

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/config"
	"order_lifecycle/internal/notify"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Sender - часть клиента messaging, которая нужна для отправки.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCM реализует notify.Pusher.
type FCM struct {
	client Sender
	log    *zap.Logger
	tracer trace.Tracer
}

// NewFCM инициализирует приложение Firebase и клиент messaging.
func NewFCM(ctx context.Context, cfg config.FirebaseConfig, log *zap.Logger) (*FCM, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("не задан FIREBASE_PROJECT_ID")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase Messaging: %w", err)
	}
	return NewWithSender(client, log), nil
}

func NewWithSender(client Sender, log *zap.Logger) *FCM {
	return &FCM{client: client, log: log, tracer: otel.Tracer("fcm")}
}

// Message собирает сообщение в топик. Уведомление без баннера несет заголовок и текст в data,
// приложение заведения показывает его само.
func Message(p notify.Push) *messaging.Message {
	data := make(map[string]string, len(p.Data)+2)
	for k, v := range p.Data {
		data[k] = v
	}

	msg := &messaging.Message{Topic: p.Topic, Data: data}
	if p.DataOnly {
		data["title"] = p.Title
		data["body"] = p.Body
		aps := &messaging.Aps{ContentAvailable: true}
		priority := "5"
		if p.Sound != "" {
			data["sound"] = p.Sound
			aps.Sound = p.Sound
			priority = "10"
		}
		msg.Android = &messaging.AndroidConfig{Priority: "high"}
		msg.APNS = &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": priority},
			Payload: &messaging.APNSPayload{Aps: aps},
		}
		return msg
	}
	msg.Notification = &messaging.Notification{Title: p.Title, Body: p.Body}
	return msg
}

func (f *FCM) Send(ctx context.Context, p notify.Push) error {
	ctx, span := f.tracer.Start(ctx, "FCM.Send", trace.WithAttributes(attribute.String("topic", p.Topic)))
	defer span.End()

	id, err := f.client.Send(ctx, Message(p))
	if err != nil {
		return fmt.Errorf("не удалось отправить уведомление в топик %s: %w", p.Topic, err)
	}
	f.log.Debug("уведомление отправлено", zap.String("topic", p.Topic), zap.String("message_id", id))
	return nil
}
