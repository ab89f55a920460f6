package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks sockets currently joined to a room.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_connections_active",
		Help: "Number of live room connections.",
	})

	// EventsRelayed counts inbound events accepted for fan-out.
	EventsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_events_total",
		Help: "Inbound events handed to the broadcast router.",
	})

	// SendsDropped counts frames discarded because a recipient's outbound
	// queue was full or its connection had already closed.
	SendsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_sends_dropped_total",
		Help: "Per-recipient sends dropped during best-effort fan-out.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
