package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты попыток refresh (значения лейбла result).
const (
	refreshOK      = "ok"
	refreshSkipped = "skipped"
	refreshFailed  = "failed"
	refreshShared  = "shared"
)

// Metrics — клиентские метрики API-шлюза. Нулевой указатель допустим: методы no-op.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	refresh  *prometheus.CounterVec
}

// NewMetrics регистрирует метрики в reg. reg == nil — метрики создаются без регистрации.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dogdir",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Outgoing API requests by method and resulting status.",
		}, []string{"method", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dogdir",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Outgoing API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refresh: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dogdir",
			Name:      "token_refresh_total",
			Help:      "Token refresh attempts by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) observeRequest(method string, status int, dur time.Duration) {
	if m == nil {
		return
	}

	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}

	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(dur.Seconds())
}

func (m *Metrics) observeRefresh(result string) {
	if m == nil {
		return
	}

	m.refresh.WithLabelValues(result).Inc()
}
