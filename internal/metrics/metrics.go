package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	leaseRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slavemarket",
			Name:      "lease_requests_total",
			Help:      "Count of lease requests by result.",
		},
		[]string{"result"},
	)

	leaseErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slavemarket",
			Name:      "lease_errors_total",
			Help:      "Count of lease errors by kind.",
		},
		[]string{"kind"},
	)

	leasePrice = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "slavemarket",
			Name:      "lease_price",
			Help:      "Price of created lease contracts.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slavemarket",
			Name:      "http_requests_total",
			Help:      "Count of API requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(leaseRequests, leaseErrors, leasePrice, httpRequests)
	})
}

func IncLeaseRequest(result string) {
	leaseRequests.WithLabelValues(result).Inc()
}

func IncLeaseError(kind string) {
	leaseErrors.WithLabelValues(kind).Inc()
}

func ObserveLeasePrice(price float64) {
	leasePrice.Observe(price)
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
