package tracing

import (
	"context"
	"fmt"
	"order_lifecycle/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// newJaegerExporter создает экспортер, который отправляет трейсы в Jaeger.
func newJaegerExporter(url string) (sdktrace.SpanExporter, error) {
	return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(url)))
}

// sampler уважает решение вызывающего сервиса, а корневые спаны отбирает с долей ratio.
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// InitTracerProvider настраивает и регистрирует OpenTelemetry-провайдер.
// Возвращает функцию остановки, которая выгружает накопленные спаны.
func InitTracerProvider(serviceName string, cfg config.TracingConfig, log *zap.Logger) (func(context.Context), error) {
	exporter, err := newJaegerExporter(cfg.JaegerURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Jaeger-экспортера: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	log.Info("OpenTelemetry (Jaeger) инициализирован",
		zap.String("endpoint", cfg.JaegerURL),
		zap.Float64("sample_ratio", cfg.SampleRatio),
	)

	return func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Ошибка остановки TracerProvider", zap.Error(err))
		}
	}, nil
}
