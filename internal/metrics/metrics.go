package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/prometheus/client_golang/prometheus"
)

var _ interface {
	graphql.HandlerExtension
	graphql.ResponseInterceptor
	graphql.FieldInterceptor
} = (*Tracer)(nil)

// Tracer is a gqlgen handler extension that records operations and resolver calls.
type Tracer struct {
	operations        *prometheus.CounterVec
	operationErrors   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	resolverCalls     *prometheus.CounterVec
}

func NewTracer(reg prometheus.Registerer) (*Tracer, error) {
	t := &Tracer{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookgraph",
			Name:      "operations_total",
			Help:      "Number of executed GraphQL operations.",
		}, []string{"operation", "name"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookgraph",
			Name:      "operation_errors_total",
			Help:      "Number of executed GraphQL operations whose response carried errors.",
		}, []string{"operation", "name"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookgraph",
			Name:      "operation_duration_seconds",
			Help:      "Time spent executing GraphQL operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		resolverCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookgraph",
			Name:      "resolver_calls_total",
			Help:      "Number of resolver invocations per schema field.",
		}, []string{"object", "field"}),
	}

	for _, c := range []prometheus.Collector{t.operations, t.operationErrors, t.operationDuration, t.resolverCalls} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}

	return t, nil
}

func (t *Tracer) ExtensionName() string {
	return "Metrics"
}

func (t *Tracer) Validate(schema graphql.ExecutableSchema) error {
	return nil
}

func (t *Tracer) InterceptResponse(ctx context.Context, next graphql.ResponseHandler) *graphql.Response {
	if !graphql.HasOperationContext(ctx) {
		return next(ctx)
	}

	start := time.Now()
	resp := next(ctx)
	if resp == nil {
		return nil
	}

	oc := graphql.GetOperationContext(ctx)
	operation := "unknown"
	name := oc.OperationName
	if oc.Operation != nil {
		operation = string(oc.Operation.Operation)
		if name == "" {
			name = oc.Operation.Name
		}
	}
	if name == "" {
		name = "anonymous"
	}

	t.operations.WithLabelValues(operation, name).Inc()
	t.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if len(resp.Errors) != 0 {
		t.operationErrors.WithLabelValues(operation, name).Inc()
	}

	return resp
}

func (t *Tracer) InterceptField(ctx context.Context, next graphql.Resolver) (interface{}, error) {
	fc := graphql.GetFieldContext(ctx)
	if fc != nil && fc.IsResolver {
		t.resolverCalls.WithLabelValues(fc.Object, fc.Field.Name).Inc()
	}

	return next(ctx)
}
