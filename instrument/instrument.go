// Package instrument decorates a core.Storage with Prometheus metrics and
// OpenTelemetry spans.
//
//	reg := prometheus.NewRegistry()
//	s := instrument.Wrap(backend, instrument.WithMetrics(instrument.NewMetrics(reg)))
//
// Every operation increments storage_operations_total{backend,operation,result}
// and observes storage_operation_duration_seconds{backend,operation}. The
// result label is "ok" or the lower-cased error code, e.g. "not_found". The
// existence checks never fail and always record "ok"; their answer is kept
// on the span as storage.result.
//
// Spans are named "storage.<Operation>". The wrapper implements core.Lister
// exactly when the wrapped storage does.
package instrument

import (
	"context"
	"time"

	"github.com/jmgilman/go/storage/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jmgilman/go/storage/instrument"

// Option configures Wrap.
type Option func(*options)

type options struct {
	metrics        *Metrics
	tracerProvider trace.TracerProvider
}

// WithMetrics records into m instead of DefaultMetrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracerProvider creates spans from tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// Storage is an instrumented core.Storage.
type Storage struct {
	inner   core.Storage
	backend string
	metrics *Metrics
	tracer  trace.Tracer
}

type listingStorage struct {
	*Storage
	lister core.Lister
}

// Wrap returns s decorated with metrics and tracing. The result also
// implements core.Lister if s does.
func Wrap(s core.Storage, opts ...Option) core.Storage {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = DefaultMetrics()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	w := &Storage{
		inner:   s,
		backend: s.Type().String(),
		metrics: o.metrics,
		tracer:  o.tracerProvider.Tracer(tracerName),
	}
	if l, ok := s.(core.Lister); ok {
		return &listingStorage{Storage: w, lister: l}
	}
	return w
}

// Unwrap returns the decorated storage.
func (s *Storage) Unwrap() core.Storage {
	return s.inner
}

// Type returns the type of the decorated storage.
func (s *Storage) Type() core.StorageType {
	return s.inner.Type()
}

func (s *Storage) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	attrs = append(attrs, attribute.String("storage.backend", s.backend))
	ctx, span := s.tracer.Start(ctx, "storage."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, span, time.Now()
}

func (s *Storage) finish(span trace.Span, op string, start time.Time, err error) {
	s.metrics.operations.WithLabelValues(s.backend, op, resultLabel(err)).Inc()
	s.metrics.duration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (s *Storage) check(ctx context.Context, op, name string, fn func(context.Context, string) bool) bool {
	ctx, span, start := s.start(ctx, op, attribute.String("storage.path", name))
	result := fn(ctx, name)
	span.SetAttributes(attribute.Bool("storage.result", result))
	s.finish(span, op, start, nil)
	return result
}

func (s *Storage) run(ctx context.Context, op, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	attrs = append(attrs, attribute.String("storage.path", name))
	ctx, span, start := s.start(ctx, op, attrs...)
	err := fn(ctx)
	s.finish(span, op, start, err)
	return err
}

// IsDirectory implements core.Storage.
func (s *Storage) IsDirectory(ctx context.Context, name string) bool {
	return s.check(ctx, "IsDirectory", name, s.inner.IsDirectory)
}

// IsFile implements core.Storage.
func (s *Storage) IsFile(ctx context.Context, name string) bool {
	return s.check(ctx, "IsFile", name, s.inner.IsFile)
}

// Move implements core.Storage.
func (s *Storage) Move(ctx context.Context, oldName, newName string, allowOverwrite bool) error {
	return s.run(ctx, "Move", oldName, func(ctx context.Context) error {
		return s.inner.Move(ctx, oldName, newName, allowOverwrite)
	},
		attribute.String("storage.destination", newName),
		attribute.Bool("storage.overwrite", allowOverwrite),
	)
}

// MakeDirectories implements core.Storage.
func (s *Storage) MakeDirectories(ctx context.Context, name string) error {
	return s.run(ctx, "MakeDirectories", name, func(ctx context.Context) error {
		return s.inner.MakeDirectories(ctx, name)
	})
}

// RemoveTree implements core.Storage.
func (s *Storage) RemoveTree(ctx context.Context, name string) error {
	return s.run(ctx, "RemoveTree", name, func(ctx context.Context) error {
		return s.inner.RemoveTree(ctx, name)
	})
}

// SetPermissions implements core.Storage.
func (s *Storage) SetPermissions(ctx context.Context, name string) error {
	return s.run(ctx, "SetPermissions", name, func(ctx context.Context) error {
		return s.inner.SetPermissions(ctx, name)
	})
}

// ListDirectory implements core.Lister.
func (s *listingStorage) ListDirectory(ctx context.Context, name string) (core.Listing, error) {
	var listing core.Listing
	err := s.run(ctx, "ListDirectory", name, func(ctx context.Context) error {
		var err error
		listing, err = s.lister.ListDirectory(ctx, name)
		return err
	})
	return listing, err
}

var (
	_ core.Storage = (*Storage)(nil)
	_ core.Lister  = (*listingStorage)(nil)
)
