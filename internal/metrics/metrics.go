package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector собирает метрики жизненного цикла заказов и доставки событий.
// Методы безопасны для nil-получателя: без коллектора вызовы ничего не делают.
type Collector struct {
	outboxEnqueued  *prometheus.CounterVec
	outboxDelivered *prometheus.CounterVec
	outboxFailed    *prometheus.CounterVec
	outboxDead      *prometheus.CounterVec
	outboxLatency   prometheus.Histogram

	invitations    *prometheus.CounterVec
	jobTransitions *prometheus.CounterVec
	proposals      prometheus.Counter
	wsConnections  prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewCollector регистрирует метрики в reg. Если reg реализует Gatherer,
// Handler отдаёт именно его, иначе глобальный реестр.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		outboxEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsvc_outbox_events_enqueued_total",
			Help: "Total number of outbox events enqueued",
		}, []string{"kind"}),
		outboxDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsvc_outbox_events_delivered_total",
			Help: "Total number of outbox events delivered",
		}, []string{"kind"}),
		outboxFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsvc_outbox_events_failed_total",
			Help: "Total number of failed outbox delivery attempts",
		}, []string{"kind"}),
		outboxDead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsvc_outbox_events_dead_total",
			Help: "Total number of outbox events that exhausted their attempts",
		}, []string{"kind"}),
		outboxLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobsvc_outbox_delivery_seconds",
			Help:    "Outbox handler latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		invitations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsvc_invitations_total",
			Help: "Invitations processed by fan-out, by result",
		}, []string{"result"}),
		jobTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsvc_job_transitions_total",
			Help: "Job status transitions, by target status",
		}, []string{"status"}),
		proposals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobsvc_proposals_submitted_total",
			Help: "Total number of proposals submitted",
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobsvc_ws_connections",
			Help: "Current number of websocket connections",
		}),
	}

	reg.MustRegister(
		c.outboxEnqueued, c.outboxDelivered, c.outboxFailed, c.outboxDead, c.outboxLatency,
		c.invitations, c.jobTransitions, c.proposals, c.wsConnections,
	)

	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	} else {
		c.gatherer = prometheus.DefaultGatherer
	}
	return c
}

func (c *Collector) RecordEnqueued(kind string) {
	if c == nil {
		return
	}
	c.outboxEnqueued.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordDelivered(kind string, latencySeconds float64) {
	if c == nil {
		return
	}
	c.outboxDelivered.WithLabelValues(kind).Inc()
	c.outboxLatency.Observe(latencySeconds)
}

func (c *Collector) RecordFailed(kind string) {
	if c == nil {
		return
	}
	c.outboxFailed.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordDead(kind string) {
	if c == nil {
		return
	}
	c.outboxDead.WithLabelValues(kind).Inc()
}

// RecordInvitation считает результат одной итерации рассылки: "sent" или "failed".
func (c *Collector) RecordInvitation(success bool) {
	if c == nil {
		return
	}
	result := "sent"
	if !success {
		result = "failed"
	}
	c.invitations.WithLabelValues(result).Inc()
}

func (c *Collector) RecordJobTransition(status string) {
	if c == nil {
		return
	}
	c.jobTransitions.WithLabelValues(status).Inc()
}

func (c *Collector) RecordProposal() {
	if c == nil {
		return
	}
	c.proposals.Inc()
}

func (c *Collector) WSConnected() {
	if c == nil {
		return
	}
	c.wsConnections.Inc()
}

func (c *Collector) WSDisconnected() {
	if c == nil {
		return
	}
	c.wsConnections.Dec()
}

// Handler отдаёт метрики в формате Prometheus.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
