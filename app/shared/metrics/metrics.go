// Package metrics defines the operation metrics recorded by every service.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics is implemented by Prometheus and by Noop.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordPointsAwarded(ctx context.Context, points int)
	RecordBudgetSpent(ctx context.Context, kind string, amount int)
}

// Prometheus records operation metrics on a prometheus registry.
type Prometheus struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	points    prometheus.Histogram
	spent     *prometheus.CounterVec
}

// NewPrometheus registers the collectors on reg. Registering twice on the same
// registry reuses the existing collectors.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	var err error
	p := &Prometheus{}

	if p.attempts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_attempts_total",
		Help:      "Service operations started.",
	}, []string{"operation", "service"})); err != nil {
		return nil, err
	}
	if p.successes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_success_total",
		Help:      "Service operations that completed without an infrastructure error.",
	}, []string{"operation", "service"})); err != nil {
		return nil, err
	}
	if p.failures, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_failure_total",
		Help:      "Service operations that failed with an infrastructure error or panic.",
	}, []string{"operation", "service"})); err != nil {
		return nil, err
	}
	if p.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Service operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "service"})); err != nil {
		return nil, err
	}
	if p.points, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "decision_points_awarded",
		Help:      "Points awarded per scored decision.",
		Buckets:   []float64{-100, -80, -50, -20, 0, 20, 50, 70, 100},
	})); err != nil {
		return nil, err
	}
	if p.spent, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "budget_spent_total",
		Help:      "Budget debited from teams.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}

	return p, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (p *Prometheus) RecordOperationAttempt(_ context.Context, operation, service string) {
	p.attempts.WithLabelValues(operation, service).Inc()
}

func (p *Prometheus) RecordOperationSuccess(_ context.Context, operation, service string) {
	p.successes.WithLabelValues(operation, service).Inc()
}

func (p *Prometheus) RecordOperationFailure(_ context.Context, operation, service string) {
	p.failures.WithLabelValues(operation, service).Inc()
}

func (p *Prometheus) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	p.duration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (p *Prometheus) RecordPointsAwarded(_ context.Context, points int) {
	p.points.Observe(float64(points))
}

func (p *Prometheus) RecordBudgetSpent(_ context.Context, kind string, amount int) {
	if amount <= 0 {
		return
	}
	p.spent.WithLabelValues(kind).Add(float64(amount))
}

// Noop discards everything.
type Noop struct{}

func NewNoop() OperationMetrics { return Noop{} }

func (Noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (Noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (Noop) RecordOperationFailure(context.Context, string, string)                 {}
func (Noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (Noop) RecordPointsAwarded(context.Context, int)                               {}
func (Noop) RecordBudgetSpent(context.Context, string, int)                         {}

var (
	_ OperationMetrics = (*Prometheus)(nil)
	_ OperationMetrics = Noop{}
)
