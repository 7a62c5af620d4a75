package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpansAreRecorded(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, ok := StartSpan(context.Background(), "maps.load", "arena:castle")
	EndSpan(ok, nil)

	_, failed := StartSpan(context.Background(), "maps.save", "arena:castle")
	EndSpan(failed, errors.New("диск заполнен"))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "maps.load", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "arena:castle", spans[1].Attributes()[0].Value.AsString())
}
