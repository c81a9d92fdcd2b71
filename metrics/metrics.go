// Package metrics exports memory and store activity as Prometheus metrics.
//
// Observer implements both memory.Observer and store.Observer, so one value
// can be handed to memory.WithObserver, store.Config and engine.Config:
//
//	obs := metrics.NewObserver(prometheus.DefaultRegisterer)
//	s := store.New(&store.Config{Observer: obs, MemoryObserver: obs})
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/wasm-store/memory"
	"github.com/wippyai/wasm-store/store"
)

const namespace = "wasmstore"

var (
	_ memory.Observer = (*Observer)(nil)
	_ store.Observer  = (*Observer)(nil)
)

// Observer records mapping and store events.
type Observer struct {
	mappedBytes prometheus.Gauge
	mappings    prometheus.Gauge
	maps        prometheus.Counter
	unmaps      prometheus.Counter
	mapFailures prometheus.Counter
	storeEvents *prometheus.CounterVec
}

// NewObserver creates an Observer and registers its collectors with reg.
// It panics if registration fails, like prometheus.MustRegister.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		mappedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mapped_bytes",
			Help:      "Bytes currently mapped by observed buffers",
		}),
		mappings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_mappings",
			Help:      "Mappings currently held by observed buffers",
		}),
		maps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maps_total",
			Help:      "Total anonymous mappings created",
		}),
		unmaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmaps_total",
			Help:      "Total anonymous mappings released",
		}),
		mapFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_failures_total",
			Help:      "Total failed mapping requests",
		}),
		storeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_events_total",
			Help:      "Store arena accesses by entity and event",
		}, []string{"entity", "event"}),
	}

	reg.MustRegister(
		o.mappedBytes,
		o.mappings,
		o.maps,
		o.unmaps,
		o.mapFailures,
		o.storeEvents,
	)
	return o
}

// OnMap implements memory.Observer.
func (o *Observer) OnMap(size int) {
	o.mappedBytes.Add(float64(size))
	o.mappings.Inc()
	o.maps.Inc()
}

// OnUnmap implements memory.Observer.
func (o *Observer) OnUnmap(size int) {
	o.mappedBytes.Sub(float64(size))
	o.mappings.Dec()
	o.unmaps.Inc()
}

// OnMapFailed implements memory.Observer.
func (o *Observer) OnMapFailed(int, error) {
	o.mapFailures.Inc()
}

// OnStoreEvent implements store.Observer.
func (o *Observer) OnStoreEvent(e store.Event) {
	o.storeEvents.WithLabelValues(e.Entity, e.Type.String()).Inc()
}
