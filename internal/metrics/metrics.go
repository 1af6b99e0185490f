package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "orders",
		Name:      "submitted_total",
		Help:      "Total number of orders submitted.",
	})
	StatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Applied order status transitions.",
	}, []string{"from", "to"})
	RejectedTransitions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "orders",
		Name:      "rejected_transitions_total",
		Help:      "Status transitions rejected as invalid.",
	})
	StreamSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pos",
		Subsystem: "stream",
		Name:      "subscribers",
		Help:      "Currently attached live-stream subscribers.",
	})
)

func init() {
	prometheus.MustRegister(OrdersSubmitted, StatusTransitions, RejectedTransitions, StreamSubscribers)
}

// Serve exposes /metrics on its own listener so scraping never competes
// with API traffic.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
