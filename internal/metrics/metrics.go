// Package metrics exposes decoder statistics to Prometheus. Collectors
// read the decoder's counters on scrape, so there is nothing to update
// from the hot path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/msf-clock/internal/msf"
)

func counter(name, help string, fn func() float64) prometheus.CounterFunc {
	return prometheus.NewCounterFunc(prometheus.CounterOpts{Name: name, Help: help}, fn)
}

// Register installs collectors bound to the given decoder. dropped
// reports the edge source's discard count and may be nil.
func Register(reg prometheus.Registerer, d *msf.Decoder, dropped func() uint64) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "msf_synced",
			Help: "1 when the decoder is synchronized to the broadcast.",
		}, func() float64 {
			if d.Synced() {
				return 1
			}
			return 0
		}),
		counter("msf_edges_total",
			"Carrier transitions processed.",
			func() float64 { return float64(d.Counts().Edges) }),
		counter("msf_sync_acquired_total",
			"Transitions from unsynced to synced.",
			func() float64 { return float64(d.Counts().SyncAcquired) }),
		counter("msf_sync_lost_total",
			"Transitions from synced to unsynced.",
			func() float64 { return float64(d.Counts().SyncLost) }),
		counter("msf_frames_decoded_total",
			"Frames that validated and published a date/time.",
			func() float64 { return float64(d.Counts().FramesDecoded) }),
		counter("msf_frames_rejected_total",
			"Frames discarded by fixed-bit or parity validation.",
			func() float64 { return float64(d.Counts().FramesRejected) }),
	)
	if dropped != nil {
		reg.MustRegister(counter("msf_dropped_edges_total",
			"Edges discarded because the decode loop was behind.",
			func() float64 { return float64(dropped()) }))
	}
}
