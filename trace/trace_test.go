package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ceyewan/dsorch/xerrors"
)

func TestConfigValidate(t *testing.T) {
	cfg := &Config{ServiceName: "svc"}
	require.NoError(t, cfg.validate())
	assert.Equal(t, 1.0, cfg.Sampler)
	assert.Equal(t, "batch", cfg.Batcher)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"缺少 service_name", Config{}},
		{"采样率越界", Config{ServiceName: "svc", Sampler: 1.5}},
		{"未知 batcher", Config{ServiceName: "svc", Batcher: "async"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			assert.True(t, errors.Is(err, xerrors.ErrInvalidInput))
		})
	}

	_, _, err := New(nil)
	assert.True(t, errors.Is(err, xerrors.ErrInvalidInput))
}

func TestNewWithoutEndpoint(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp, shutdown, err := New(&Config{ServiceName: "svc"}, sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().HasTraceID(), "未配置 endpoint 时仍应生成 TraceID")
	span.End()

	require.Len(t, exporter.GetSpans(), 1)
	assert.Equal(t, "op", exporter.GetSpans()[0].Name)
}
