// Package exporter writes check results in the Prometheus text format so that
// node_exporter's textfile collector can pick them up.
package exporter

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amiskov/jmx-check/pkg/models"
)

var labels = []string{"host", "mbean", "attribute", "key"}

type Textfile struct {
	path     string
	registry *prometheus.Registry
	severity *prometheus.GaugeVec
	value    *prometheus.GaugeVec
}

func NewTextfile(path string) *Textfile {
	t := &Textfile{
		path:     path,
		registry: prometheus.NewRegistry(),
		severity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "jmx_check_severity",
			Help: "Result of the JMX check: 0 - OK, 1 - WARNING, 2 - CRITICAL",
		}, labels),
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "jmx_check_value",
			Help: "Checked MBean value, a percentage when compared to a second MBean",
		}, labels),
	}
	t.registry.MustRegister(t.severity, t.value)
	return t
}

// Record stores the evaluation; non-numeric values only get a severity.
func (t *Textfile) Record(mbean models.MBean, ev models.Evaluation) {
	lv := labelValues(mbean)
	t.severity.WithLabelValues(lv...).Set(float64(ev.Severity))
	if ev.Unresolved {
		return
	}
	if v, err := ev.Value.Float64(); err == nil {
		t.value.WithLabelValues(lv...).Set(v)
	}
}

// RecordError marks a check which could not be evaluated.
func (t *Textfile) RecordError(mbean models.MBean) {
	t.severity.WithLabelValues(labelValues(mbean)...).Set(float64(models.Critical))
}

// Write atomically replaces the textfile with all recorded results.
func (t *Textfile) Write() error {
	if err := prometheus.WriteToTextfile(t.path, t.registry); err != nil {
		return fmt.Errorf("exporter: failed writing `%s`: %w", t.path, err)
	}
	return nil
}

func labelValues(m models.MBean) []string {
	return []string{m.Agent.Host, m.Name, m.Attribute, m.Key}
}
