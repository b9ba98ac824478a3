// Package metrics exposes the service's own counters in Prometheus text
// exposition format at /metrics: audits run, audit wall-clock time, and
// collector outcomes per source and status.
package metrics

import (
	"net/http"
	"sort"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/auditkit/auditkit/pkg/types"
)

// Registry accumulates service counters. It implements audit.Recorder.
// Safe for concurrent use.
type Registry struct {
	mu sync.Mutex

	auditsTotal  map[string]float64 // key: audit type
	auditSeconds map[string]float64 // key: audit type

	collectorResults map[collectorKey]float64
}

type collectorKey struct {
	source string
	status string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		auditsTotal:      make(map[string]float64),
		auditSeconds:     make(map[string]float64),
		collectorResults: make(map[collectorKey]float64),
	}
}

// ObserveAudit records one completed audit run and its wall-clock time.
func (r *Registry) ObserveAudit(typ types.AuditType, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auditsTotal[string(typ)]++
	r.auditSeconds[string(typ)] += elapsed.Seconds()
}

// ObserveCollector records one settled collector result.
func (r *Registry) ObserveCollector(source string, status types.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectorResults[collectorKey{source: source, status: string(status)}]++
}

// ServeHTTP renders all counters in the Prometheus text format.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	families := r.gather()

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return
		}
	}
}

// gather snapshots the counters into metric families with sorted label
// values, so the exposition is deterministic.
func (r *Registry) gather() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	families := []*dto.MetricFamily{
		counterFamily("auditkit_audits_total",
			"Total number of audits run, by audit type.",
			byTypeMetrics(r.auditsTotal, "type")),
		counterFamily("auditkit_audit_seconds_total",
			"Total wall-clock seconds spent running audits, by audit type.",
			byTypeMetrics(r.auditSeconds, "type")),
		counterFamily("auditkit_collector_results_total",
			"Total collector invocations, by source and result status.",
			collectorMetrics(r.collectorResults)),
	}

	out := families[:0]
	for _, mf := range families {
		if len(mf.Metric) > 0 {
			out = append(out, mf)
		}
	}
	return out
}

func counterFamily(name, help string, metrics []*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   strPtr(name),
		Help:   strPtr(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: metrics,
	}
}

func byTypeMetrics(values map[string]float64, label string) []*dto.Metric {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*dto.Metric, 0, len(keys))
	for _, k := range keys {
		out = append(out, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: strPtr(label), Value: strPtr(k)}},
			Counter: &dto.Counter{Value: f64Ptr(values[k])},
		})
	}
	return out
}

func collectorMetrics(values map[collectorKey]float64) []*dto.Metric {
	keys := make([]collectorKey, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].source != keys[j].source {
			return keys[i].source < keys[j].source
		}
		return keys[i].status < keys[j].status
	})

	out := make([]*dto.Metric, 0, len(keys))
	for _, k := range keys {
		out = append(out, &dto.Metric{
			Label: []*dto.LabelPair{
				{Name: strPtr("source"), Value: strPtr(k.source)},
				{Name: strPtr("status"), Value: strPtr(k.status)},
			},
			Counter: &dto.Counter{Value: f64Ptr(values[k])},
		})
	}
	return out
}

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }
