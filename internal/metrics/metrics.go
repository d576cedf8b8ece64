package metrics

import "github.com/prometheus/client_golang/prometheus"

// SiteMetrics exposes counters/histograms for slot lookups and outbound clicks.
type SiteMetrics struct {
	proxyFetchTotal   *prometheus.CounterVec
	proxyFetchLatency *prometheus.HistogramVec
	cardRenderTotal   *prometheus.CounterVec
	clickTotal        *prometheus.CounterVec
	refreshTotal      *prometheus.CounterVec
}

func NewSiteMetrics(reg prometheus.Registerer) *SiteMetrics {
	m := &SiteMetrics{
		proxyFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaxx",
			Subsystem: "availability",
			Name:      "proxy_fetch_total",
			Help:      "Total slot lookups sent to the availability proxy",
		}, []string{"outcome"}),
		proxyFetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vaxx",
			Subsystem: "availability",
			Name:      "proxy_fetch_latency_seconds",
			Help:      "Latency of availability proxy slot lookups",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		cardRenderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaxx",
			Subsystem: "bookings",
			Name:      "card_render_total",
			Help:      "Location cards rendered, by loader state and whether anything was shown",
		}, []string{"state", "shown"}),
		clickTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaxx",
			Subsystem: "analytics",
			Name:      "click_total",
			Help:      "Outbound link clicks recorded",
		}, []string{"event"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaxx",
			Subsystem: "catalog",
			Name:      "fallback_refresh_total",
			Help:      "Fallback slot snapshot refreshes per location",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.proxyFetchTotal, m.proxyFetchLatency, m.cardRenderTotal, m.clickTotal, m.refreshTotal)
	return m
}

func (m *SiteMetrics) ObserveFetch(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.proxyFetchTotal.WithLabelValues(outcome).Inc()
	m.proxyFetchLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *SiteMetrics) ObserveCard(state string, shown bool) {
	if m == nil {
		return
	}
	label := "false"
	if shown {
		label = "true"
	}
	m.cardRenderTotal.WithLabelValues(state, label).Inc()
}

func (m *SiteMetrics) ObserveClick(event string) {
	if m == nil {
		return
	}
	m.clickTotal.WithLabelValues(event).Inc()
}

func (m *SiteMetrics) ObserveRefresh(status string) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(status).Inc()
}
