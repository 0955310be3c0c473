// vi: sw=4 ts=4:

/*

	Mnemonic:	interference
	Abstract:	Finds the set of flows that interfere with a subject flow on a
				given link: any other admitted (or candidate) flow that
				traverses the same link at equal or higher priority. Grounded
				on original_source/schedulability/analysis.py's
				SchedulabilityUtils.get_interfering_flows_on_link.
	Date:		2026

*/

package schedulability

import "github.com/esdaniels/tegu-mrt/ofdb"

// interferingFlowsOnLink returns every flow in all other than subject that
// shares link and whose priority is >= subject's (higher Pi meaning
// equal-or-higher precedence in this controller's convention).
func interferingFlowsOnLink(link *ofdb.Link, subject *ofdb.RTAttributes, all []*ofdb.RTAttributes) []*ofdb.RTAttributes {
	var out []*ofdb.RTAttributes
	for _, f := range all {
		if f.Topic == subject.Topic {
			continue
		}
		if !flowTraverses(f, link) {
			continue
		}
		if f.Pi >= subject.Pi {
			out = append(out, f)
		}
	}
	return out
}

func flowTraverses(f *ofdb.RTAttributes, link *ofdb.Link) bool {
	for _, l := range f.RouteLinks {
		if l.Src == link.Src && l.Dst == link.Dst {
			return true
		}
	}
	return false
}

// interferersAlongRoute is the union (deduplicated by topic) of
// interferingFlowsOnLink across every link of subject's route -- used by the
// Holistic Approach, which bounds interference globally across the whole
// path rather than per hop.
func interferersAlongRoute(subject *ofdb.RTAttributes, all []*ofdb.RTAttributes) []*ofdb.RTAttributes {
	seen := map[string]*ofdb.RTAttributes{}
	for _, link := range subject.RouteLinks {
		for _, f := range interferingFlowsOnLink(link, subject, all) {
			seen[f.Topic] = f
		}
	}
	out := make([]*ofdb.RTAttributes, 0, len(seen))
	for _, f := range seen {
		out = append(out, f)
	}
	return out
}
