package server

import (
	"net/http"

	"github.com/louisbranch/presenced/internal/presence"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics collects presence counters plus occupancy gauges read straight
// from the registry. Each server owns its own prometheus registry so tests
// can run several servers in one process.
type metrics struct {
	prom        *prometheus.Registry
	joins       prometheus.Counter
	leaves      prometheus.Counter
	heartbeats  prometheus.Counter
	disconnects prometheus.Counter
	broadcasts  prometheus.Counter
}

func newMetrics(store *presence.Registry) *metrics {
	prom := prometheus.NewRegistry()
	m := &metrics{
		prom: prom,
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "presenced_joins_total",
			Help: "Room joins handled.",
		}),
		leaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "presenced_leaves_total",
			Help: "Explicit room leaves handled.",
		}),
		heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "presenced_heartbeats_total",
			Help: "Heartbeat pings acknowledged.",
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "presenced_disconnects_total",
			Help: "Connections lost while their session was in a room.",
		}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "presenced_broadcasts_total",
			Help: "Fan-out rounds to room or global audiences.",
		}),
	}
	prom.MustRegister(m.joins, m.leaves, m.heartbeats, m.disconnects, m.broadcasts)
	prom.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "presenced_sessions",
		Help: "Sessions currently joined to a room.",
	}, func() float64 {
		return float64(store.Statistics().Sessions)
	}))
	prom.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "presenced_rooms",
		Help: "Rooms with at least one member.",
	}, func() float64 {
		return float64(store.Statistics().Rooms)
	}))
	prom.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "presenced_online_users",
		Help: "Distinct usernames currently online.",
	}, func() float64 {
		return float64(store.Statistics().Users)
	}))
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.prom, promhttp.HandlerOpts{})
}
