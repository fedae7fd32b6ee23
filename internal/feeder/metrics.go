package feeder

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/streamfeed/internal/stream"
)

// feederMetrics holds Prometheus metrics for a feeder.
type feederMetrics struct {
	emitted  *prometheus.CounterVec
	fed      *prometheus.CounterVec
	backoffs prometheus.Counter
	blocked  prometheus.Counter
	plans    prometheus.Counter
	depth    *prometheus.GaugeVec
}

// newFeederMetrics creates feeder metrics and registers them with reg. A nil
// reg leaves the metrics unregistered.
func newFeederMetrics(reg prometheus.Registerer) (*feederMetrics, error) {
	m := &feederMetrics{
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamfeed",
			Subsystem: "feeder",
			Name:      "emitted_total",
			Help:      "Total number of entities posted to the output",
		}, []string{"kind"}),
		fed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamfeed",
			Subsystem: "feeder",
			Name:      "fed_total",
			Help:      "Total number of entities queued",
		}, []string{"kind"}),
		backoffs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamfeed",
			Subsystem: "feeder",
			Name:      "backoffs_total",
			Help:      "Total number of idle backoffs",
		}),
		blocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamfeed",
			Subsystem: "feeder",
			Name:      "blocked_total",
			Help:      "Total number of work calls skipped because the output was full",
		}),
		plans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamfeed",
			Subsystem: "feeder",
			Name:      "plans_total",
			Help:      "Total number of test plans built",
		}),
		depth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "streamfeed",
			Subsystem: "feeder",
			Name:      "queue_depth",
			Help:      "Current number of queued entities",
		}, []string{"kind"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.emitted, m.fed, m.backoffs, m.blocked, m.plans, m.depth} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *feederMetrics) recordFed(kind stream.Kind, n int) {
	m.fed.WithLabelValues(string(kind)).Add(float64(n))
}

func (m *feederMetrics) recordEmitted(kind stream.Kind) {
	m.emitted.WithLabelValues(string(kind)).Inc()
}

func (m *feederMetrics) recordDepth(p Pending) {
	m.depth.WithLabelValues(string(stream.KindBuffer)).Set(float64(p.Buffers))
	m.depth.WithLabelValues(string(stream.KindLabel)).Set(float64(p.Labels))
	m.depth.WithLabelValues(string(stream.KindMessage)).Set(float64(p.Messages))
	m.depth.WithLabelValues(string(stream.KindPacket)).Set(float64(p.Packets))
}
