package alert

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the monitor's operational counters. A nil *Metrics is valid
// and turns every increment into a no-op, which keeps tests quiet.
type Metrics struct {
	PassesCompleted     prometheus.Counter
	PassFailures        prometheus.Counter
	AlertsTriggered     *prometheus.CounterVec
	PriceFetches        prometheus.Counter
	FetchFailures       *prometheus.CounterVec
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		PassesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketwatch",
			Subsystem: "monitor",
			Name:      "passes_completed",
			Help:      "The total number of completed monitor passes",
		}),
		PassFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketwatch",
			Subsystem: "monitor",
			Name:      "pass_failures",
			Help:      "The total number of monitor passes aborted by persistence errors",
		}),
		AlertsTriggered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marketwatch",
				Subsystem: "monitor",
				Name:      "alerts_triggered",
				Help:      "The total number of alerts that transitioned to triggered",
			},
			[]string{"market_type"},
		),
		PriceFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketwatch",
			Subsystem: "monitor",
			Name:      "price_fetches",
			Help:      "The total number of upstream price fetches (cache misses)",
		}),
		FetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marketwatch",
				Subsystem: "monitor",
				Name:      "fetch_failures",
				Help:      "The total number of failed upstream price fetches",
			},
			[]string{"provider"},
		),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketwatch",
			Subsystem: "monitor",
			Name:      "notifications_sent",
			Help:      "The total number of alert notifications delivered",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketwatch",
			Subsystem: "monitor",
			Name:      "notifications_failed",
			Help:      "The total number of alert notifications that failed to send",
		}),
	}

	prometheus.MustRegister(m.PassesCompleted)
	prometheus.MustRegister(m.PassFailures)
	prometheus.MustRegister(m.AlertsTriggered)
	prometheus.MustRegister(m.PriceFetches)
	prometheus.MustRegister(m.FetchFailures)
	prometheus.MustRegister(m.NotificationsSent)
	prometheus.MustRegister(m.NotificationsFailed)

	return m
}

func (m *Metrics) incPass() {
	if m != nil {
		m.PassesCompleted.Inc()
	}
}

func (m *Metrics) incPassFailure() {
	if m != nil {
		m.PassFailures.Inc()
	}
}

func (m *Metrics) incTriggered(marketType string) {
	if m != nil {
		m.AlertsTriggered.WithLabelValues(marketType).Inc()
	}
}

func (m *Metrics) incFetch() {
	if m != nil {
		m.PriceFetches.Inc()
	}
}

func (m *Metrics) incFetchFailure(provider string) {
	if m != nil {
		m.FetchFailures.WithLabelValues(provider).Inc()
	}
}

func (m *Metrics) incNotified(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.NotificationsSent.Inc()
	} else {
		m.NotificationsFailed.Inc()
	}
}
