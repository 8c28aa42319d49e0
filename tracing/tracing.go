package tracing

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/viant/budgetflow"

// Span kinds accepted by StartSpan.
const (
	KindInternal = "INTERNAL"
	KindServer   = "SERVER"
	KindClient   = "CLIENT"
	KindProducer = "PRODUCER"
	KindConsumer = "CONSUMER"
)

var (
	providerMux sync.Mutex
	provider    *sdktrace.TracerProvider
	output      io.Closer
)

// Init installs a stdout exporter writing to outputFile, or to os.Stdout when
// outputFile is empty.  It is a no-op while a provider is installed.
func Init(serviceName, serviceVersion, outputFile string) error {
	providerMux.Lock()
	defer providerMux.Unlock()
	if provider != nil {
		return nil
	}
	var w io.Writer = os.Stdout
	var f *os.File
	if outputFile != "" {
		if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
			return err
		}
		var err error
		if f, err = os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
			return err
		}
		w = f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err == nil {
		err = install(serviceName, serviceVersion, exporter)
	}
	if err != nil {
		if f != nil {
			_ = f.Close()
		}
		return err
	}
	if f != nil {
		output = f
	}
	return nil
}

// InitWithExporter installs exporter as the global span sink.  It is a no-op
// while a provider is installed.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	providerMux.Lock()
	defer providerMux.Unlock()
	if provider != nil {
		return nil
	}
	return install(serviceName, serviceVersion, exporter)
}

func install(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return err
	}
	provider = sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return nil
}

// Shutdown flushes and stops the installed provider and closes the output
// file opened by Init.  A later Init installs a fresh provider.
func Shutdown(ctx context.Context) error {
	providerMux.Lock()
	defer providerMux.Unlock()
	if provider == nil {
		return nil
	}
	err := provider.Shutdown(ctx)
	if output != nil {
		err = errors.Join(err, output.Close())
	}
	provider, output = nil, nil
	return err
}

// Span wraps an OpenTelemetry span.
type Span struct {
	span trace.Span
}

// WithAttributes attaches string attributes; empty values are dropped.
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		if v == "" {
			continue
		}
		kv = append(kv, attribute.String(k, v))
	}
	s.span.SetAttributes(kv...)
	return s
}

// SetStatus records err on the span, or an OK status when err is nil.
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// StartSpan starts a child span of whatever span ctx carries.
func StartSpan(ctx context.Context, name, kind string) (context.Context, *Span) {
	tracer := otel.Tracer(instrumentationName)
	ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(spanKind(kind)))
	return ctx, &Span{span: span}
}

// EndSpan records the outcome and ends the span.
func EndSpan(sp *Span, err error) {
	if sp == nil {
		return
	}
	sp.SetStatus(err)
	sp.span.End()
}

func spanKind(kind string) trace.SpanKind {
	switch kind {
	case KindServer:
		return trace.SpanKindServer
	case KindClient:
		return trace.SpanKindClient
	case KindProducer:
		return trace.SpanKindProducer
	case KindConsumer:
		return trace.SpanKindConsumer
	}
	return trace.SpanKindInternal
}
