package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Requests      prometheus.Counter
	Hits          prometheus.Counter
	Misses        prometheus.Counter
	Shared        prometheus.Counter
	Invalidations prometheus.Counter
	Errors        prometheus.Counter
}

// NewMetrics creates the cache counters and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace: "mediahub",
			Subsystem: "query",
			Name:      name,
			Help:      help,
		})
	}

	return &Metrics{
		Requests:      counter("requests_total", "Network fetches started by the cache."),
		Hits:          counter("hits_total", "Queries answered from fresh cached data."),
		Misses:        counter("misses_total", "Queries that had to wait for a fetch."),
		Shared:        counter("shared_total", "Fetch results delivered to more than one waiting caller."),
		Invalidations: counter("invalidations_total", "Entries marked stale."),
		Errors:        counter("errors_total", "Fetches that failed at the transport level."),
	}
}
