// Package metrics wires rule and action dispatch counters into prometheus,
// grounded on _examples/purpleidea-mgmt/prometheus/prometheus.go's
// Init/Start/Stop/AddManagedResource shape, generalized from "managed
// resources" to "configured rules".
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the counters and gauges this engine exposes: how many
// rules are configured, how often each rule's condition evaluates per
// truth value, and how many action dispatches have run, by kind and
// outcome.
type Metrics struct {
	Listen string

	rulesConfigured prometheus.Gauge
	evaluations     *prometheus.CounterVec
	dispatches      *prometheus.CounterVec

	server *http.Server
}

// Init builds the metric collectors and registers them with reg.
func Init(reg *prometheus.Registry, listen string) *Metrics {
	m := &Metrics{
		Listen: listen,
		rulesConfigured: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ruled",
			Name:      "rules_configured",
			Help:      "Number of rules currently configured.",
		}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ruled",
			Name:      "condition_evaluations_total",
			Help:      "Number of condition evaluations, by resulting truth value.",
		}, []string{"result"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ruled",
			Name:      "action_dispatches_total",
			Help:      "Number of action dispatches, by action kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(m.rulesConfigured, m.evaluations, m.dispatches)
	return m
}

// SetRulesConfigured updates the rules-configured gauge.
func (m *Metrics) SetRulesConfigured(n int) {
	m.rulesConfigured.Set(float64(n))
}

// ObserveEvaluation records one condition evaluation's result.
func (m *Metrics) ObserveEvaluation(result bool) {
	label := "false"
	if result {
		label = "true"
	}
	m.evaluations.WithLabelValues(label).Inc()
}

// ObserveDispatch records one action dispatch's kind and outcome ("ok" or
// "error").
func (m *Metrics) ObserveDispatch(kind string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.dispatches.WithLabelValues(kind, outcome).Inc()
}

// Start serves /metrics on m.Listen until Stop is called.
func (m *Metrics) Start(reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	m.server = &http.Server{Addr: m.Listen, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return fmt.Errorf("metrics: %w", err)
	default:
		return nil
	}
}

// Stop gracefully shuts down the metrics HTTP server.
func (m *Metrics) Stop(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
