// Package metrics registers the service counters and exposes the scrape
// handler mounted at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coffee",
		Name:      "orders_created_total",
		Help:      "Orders successfully created with a payment invoice.",
	})

	Reconciliations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coffee",
		Name:      "payment_reconciliations_total",
		Help:      "Status polls broken down by resulting order status.",
	}, []string{"status"})

	MenuCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coffee",
		Name:      "menu_cache_hits_total",
		Help:      "Menu reads served from the cache.",
	})

	MenuCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coffee",
		Name:      "menu_cache_misses_total",
		Help:      "Menu reads assembled from the catalog store.",
	})
)

func init() {
	prometheus.MustRegister(OrdersCreated, Reconciliations, MenuCacheHits, MenuCacheMisses)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
