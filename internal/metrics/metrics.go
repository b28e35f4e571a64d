package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	ChatInvocations prometheus.Counter
	ChatFailures    prometheus.Counter
}

var (
	once   sync.Once
	global *Metrics
)

func Global() *Metrics {
	once.Do(func() {
		global = &Metrics{
			RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "wrapforge",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method and status",
			}, []string{"method", "status"}),
			ChatInvocations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "wrapforge",
				Name:      "chat_invocations_total",
				Help:      "Total model invocations attempted",
			}),
			ChatFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "wrapforge",
				Name:      "chat_failures_total",
				Help:      "Total model invocations that failed",
			}),
		}
		prometheus.MustRegister(global.RequestsTotal, global.ChatInvocations, global.ChatFailures)
	})
	return global
}
