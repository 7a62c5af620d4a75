package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/arena-maps/internal/logging"
)

// InstrumentationName имя трейсера для спанов хранилища карт
const InstrumentationName = "github.com/annel0/arena-maps"

// InitTelemetry настраивает OTLP экспортер и устанавливает глобальный TracerProvider.
// endpoint вида "localhost:4318"; пустая строка берёт значение из OTEL_EXPORTER_OTLP_ENDPOINT.
// Возвращает функцию shutdown, которую нужно вызвать при завершении приложения.
func InitTelemetry(ctx context.Context, serviceName, endpoint string, insecure bool) (func(context.Context) error, error) {
	var opts []otlptracehttp.Option
	if endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	logging.Info("📡 OpenTelemetry инициализирован (OTLP → %s, service=%s)", endpoint, serviceName)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}
	return shutdown, nil
}

// Tracer возвращает трейсер хранилища карт из глобального провайдера
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartSpan открывает спан с атрибутом идентификатора карты
func StartSpan(ctx context.Context, name, mapID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attribute.String("map.id", mapID)))
}

// EndSpan закрывает спан, отмечая ошибку
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
