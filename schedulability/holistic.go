// vi: sw=4 ts=4:

/*

	Mnemonic:	holistic
	Abstract:	The Holistic Approach (HA) worst-case response time analysis:
				an iterative fixed point over the static path delay plus
				interference from equal-or-higher priority flows sharing any
				link of the path. Grounded line-for-line on
				original_source/schedulability/analysis.py's
				HolisticApproach.calculate_wcrt.
	Date:		2026

*/

package schedulability

import (
	"math"

	"github.com/esdaniels/tegu-mrt/ofdb"
)

// HolisticWCRT computes the Holistic Approach worst-case response time, in
// milliseconds, for flow within the candidate set all (which must include
// flow itself). The iteration starts from w = static_delay + ci and repeats
// until it converges within ConvergenceEpsilon, or returns early the moment
// w exceeds flow.Di -- a deadline miss is already decided at that point and
// there is no need to keep refining the bound.
func HolisticWCRT(flow *ofdb.RTAttributes, all []*ofdb.RTAttributes) float64 {
	staticDelay := 0.0
	pathJitterSum := 0.0
	for _, link := range flow.RouteLinks {
		staticDelay += link.TransmissionDelay(flow.Ci * BitsPerCiMillisecond)
		staticDelay += link.PropDelay + link.SwitchDelay + link.ProcDelay + link.QueuingDelay
		pathJitterSum += link.Jitter
	}
	staticDelay += flow.ProcessingDelay

	interfering := interferersAlongRoute(flow, all)

	w := staticDelay + flow.Ci
	prevW := 0.0

	for math.Abs(w-prevW) > ConvergenceEpsilon {
		if w > flow.Di {
			return w
		}
		prevW = w

		interference := 0.0
		for _, fj := range interfering {
			interference += math.Ceil((prevW+fj.MeasuredJitter)/fj.Ti) * fj.Ci
		}

		w = staticDelay + flow.Ci + interference + pathJitterSum
	}

	return w
}
