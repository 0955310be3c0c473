// vi: sw=4 ts=4:

/*

	Mnemonic:	metrics
	Abstract:	Prometheus counters for admission outcomes -- the distilled
				spec's §7 asks for "counters ... for observability" without
				naming a mechanism; this supplies one, grounded on
				malbeclabs-doublezero's use of github.com/prometheus/
				client_golang for its own control-plane metrics.
	Date:		2026

*/

package admission

import "github.com/prometheus/client_golang/prometheus"

var (
	admissionsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tegu_mrt",
		Subsystem: "admission",
		Name:      "accepted_total",
		Help:      "Number of register_flow calls admitted by the schedulability analyzer.",
	})
	admissionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tegu_mrt",
		Subsystem: "admission",
		Name:      "rejected_total",
		Help:      "Number of register_flow calls rejected by the schedulability analyzer.",
	})
)

// Registry is the set of collectors this package owns; cmd/tegu-mrt
// registers it once against the process-wide Prometheus registry.
func Registry() []prometheus.Collector {
	return []prometheus.Collector{admissionsAccepted, admissionsRejected}
}
