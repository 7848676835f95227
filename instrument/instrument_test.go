package instrument

import (
	"context"
	"errors"
	"testing"

	"github.com/jmgilman/go/storage/azure"
	"github.com/jmgilman/go/storage/billy"
	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/objstore/memory"
	"github.com/jmgilman/go/storage/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// bareStorage implements core.Storage without core.Lister.
type bareStorage struct {
	core.Storage
}

func setup(t *testing.T, inner core.Storage) (core.Storage, *Metrics, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	metrics := NewMetrics(prometheus.NewRegistry())
	return Wrap(inner, WithMetrics(metrics), WithTracerProvider(tp)), metrics, recorder
}

func hasAttribute(attrs []attribute.KeyValue, key string, value attribute.Value) bool {
	for _, kv := range attrs {
		if string(kv.Key) == key && kv.Value.Type() == value.Type() && kv.Value.Emit() == value.Emit() {
			return true
		}
	}
	return false
}

func TestListerPreserved(t *testing.T) {
	s, _, _ := setup(t, s3.New(memory.New()))
	_, ok := s.(core.Lister)
	assert.True(t, ok)

	s, _, _ = setup(t, bareStorage{s3.New(memory.New())})
	_, ok = s.(core.Lister)
	assert.False(t, ok)
	assert.Equal(t, core.TypeFlatListing, s.Type())
}

func TestRecordsSuccess(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Put(ctx, "a.txt", []byte("a")))
	s, metrics, recorder := setup(t, s3.New(store))

	require.NoError(t, s.Move(ctx, "a.txt", "b.txt", false))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("flat-listing", "Move", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "storage.Move", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)
	assert.True(t, hasAttribute(span.Attributes(), "storage.path", attribute.StringValue("a.txt")))
	assert.True(t, hasAttribute(span.Attributes(), "storage.destination", attribute.StringValue("b.txt")))
	assert.True(t, hasAttribute(span.Attributes(), "storage.backend", attribute.StringValue("flat-listing")))
}

func TestRecordsErrorCode(t *testing.T) {
	ctx := context.Background()
	s, metrics, recorder := setup(t, azure.New(memory.New()))

	err := s.RemoveTree(ctx, "dir")
	require.ErrorIs(t, err, core.ErrUnsupported)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("flat-marker", "RemoveTree", "not_implemented")))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestExistenceChecks(t *testing.T) {
	ctx := context.Background()
	inner := billy.NewMemory()
	require.NoError(t, inner.MakeDirectories(ctx, "docs"))
	s, metrics, recorder := setup(t, inner)

	assert.True(t, s.IsDirectory(ctx, "docs"))
	assert.False(t, s.IsFile(ctx, "docs"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("hierarchical", "IsDirectory", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("hierarchical", "IsFile", "ok")))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.True(t, hasAttribute(spans[0].Attributes(), "storage.result", attribute.BoolValue(true)))
	assert.True(t, hasAttribute(spans[1].Attributes(), "storage.result", attribute.BoolValue(false)))
}

func TestListDirectory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Put(ctx, "photos/a.jpg", nil))
	s, metrics, _ := setup(t, s3.New(store))

	listing, err := s.(core.Lister).ListDirectory(ctx, "photos")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, listing.Files)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("flat-listing", "ListDirectory", "ok")))
}

func TestUnwrap(t *testing.T) {
	inner := s3.New(memory.New())
	s, _, _ := setup(t, bareStorage{inner})
	w, ok := s.(*Storage)
	require.True(t, ok)
	assert.Equal(t, bareStorage{inner}, w.Unwrap())
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "unknown", resultLabel(errors.New("plain")))
}

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.operations.WithLabelValues("hierarchical", "Move", "ok").Inc()

	count, err := testutil.GatherAndCount(reg, "storage_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.NotNil(t, NewMetrics(nil))
	assert.Same(t, DefaultMetrics(), DefaultMetrics())
}

func TestNewMetricsSharesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics(reg)
	second := NewMetrics(reg)

	assert.Same(t, first.operations, second.operations)
	assert.Same(t, first.duration, second.duration)

	second.operations.WithLabelValues("flat-listing", "Move", "ok").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.operations.WithLabelValues("flat-listing", "Move", "ok")))
}

func TestNewMetricsConflictPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "operations_total",
		Help:      "Total number of storage operations by outcome.",
	}))

	assert.Panics(t, func() { NewMetrics(reg) })
}
