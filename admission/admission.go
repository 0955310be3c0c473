// vi: sw=4 ts=4:

/*

	Mnemonic:	admission
	Abstract:	The Admission Controller (C4): decides whether a candidate flow
				(plus every flow it might push past its deadline) remains
				schedulable under the Trajectory Approach. Grounded on
				original_source/schedulability/analysis.py's
				AdmissionControl.check_admissibility, and on the teacher's
				managers/res_mgr.go, which plays the same inventory-gatekeeper
				role for bandwidth pledges.
	Date:		2026

*/

package admission

import (
	"fmt"

	log "github.com/apex/log"

	"github.com/esdaniels/tegu-mrt/ofdb"
	"github.com/esdaniels/tegu-mrt/schedulability"
)

var sheep = log.WithField("component", "admission")

// Verdict is the outcome of an admissibility check: whether the candidate
// flow was admitted, and -- on rejection -- which flow's deadline would have
// been violated and by how much, for diagnostics and the REST 503 body.
type Verdict struct {
	Admitted     bool
	ViolatedFlow string
	WCRT         float64
	Deadline     float64
}

func (v Verdict) String() string {
	if v.Admitted {
		return "admitted"
	}
	return fmt.Sprintf("rejected: %s WCRT %.3f > deadline %.3f", v.ViolatedFlow, v.WCRT, v.Deadline)
}

// Check decides whether candidate can be admitted alongside existing, per
// spec §4.4: build F' = existing ∪ {candidate}, verify TA_WCRT(candidate,
// F') <= candidate.Di, then verify TA_WCRT(g, F') <= g.Di for every flow g
// already admitted -- a new flow is rejected not only if it can't meet its
// own deadline, but if admitting it would break anyone else's.
func Check(candidate *ofdb.RTAttributes, existing []*ofdb.RTAttributes) Verdict {
	candidateSet := make([]*ofdb.RTAttributes, 0, len(existing)+1)
	candidateSet = append(candidateSet, existing...)
	candidateSet = append(candidateSet, candidate)

	wcrtNew := schedulability.TrajectoryWCRT(candidate, candidateSet)
	if wcrtNew > candidate.Di {
		admissionsRejected.Inc()
		sheep.WithField("topic", candidate.Topic).
			WithField("wcrt", wcrtNew).
			WithField("deadline", candidate.Di).
			Warn("reject: candidate flow would miss its own deadline")
		return Verdict{Admitted: false, ViolatedFlow: candidate.Topic, WCRT: wcrtNew, Deadline: candidate.Di}
	}

	for _, g := range existing {
		wcrt := schedulability.TrajectoryWCRT(g, candidateSet)
		if wcrt > g.Di {
			admissionsRejected.Inc()
			sheep.WithField("topic", candidate.Topic).
				WithField("violated", g.Topic).
				WithField("wcrt", wcrt).
				WithField("deadline", g.Di).
				Warn("reject: candidate flow would violate an existing flow's deadline")
			return Verdict{Admitted: false, ViolatedFlow: g.Topic, WCRT: wcrt, Deadline: g.Di}
		}
	}

	admissionsAccepted.Inc()
	sheep.WithField("topic", candidate.Topic).WithField("wcrt", wcrtNew).Info("accept")
	return Verdict{Admitted: true, WCRT: wcrtNew, Deadline: candidate.Di}
}
