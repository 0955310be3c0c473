// vi: sw=4 ts=4:

/*

	Mnemonic:	trajectory
	Abstract:	The Trajectory Approach (TA) worst-case response time analysis:
				models the flow hop-by-hop along each branch of its route to
				a destination, taking the worst (max) branch. Grounded
				line-for-line on original_source/schedulability/analysis.py's
				TrajectoryApproach.calculate_wcrt, including its choice to
				bound per-link interference by ceil(di/tj)*cj rather than the
				Holistic Approach's iterative bound.
	Date:		2026

*/

package schedulability

import (
	"math"

	"github.com/esdaniels/tegu-mrt/ofdb"
)

// TrajectoryWCRT computes the Trajectory Approach worst-case response time,
// in milliseconds, for flow within the candidate set all.
func TrajectoryWCRT(flow *ofdb.RTAttributes, all []*ofdb.RTAttributes) float64 {
	adj := map[string][]*ofdb.Link{}
	for _, l := range flow.RouteLinks {
		adj[l.Src] = append(adj[l.Src], l)
	}

	maxBranch := 0.0
	for _, dst := range dedupe(flow.DstIPs) {
		path, ok := bfsPath(adj, flow.SrcIP, dst)
		if !ok {
			continue
		}
		val := branchWCRT(flow, path, all)
		if val > maxBranch {
			maxBranch = val
		}
	}

	if flow.Qi > 0 {
		maxBranch += flow.ProcessingDelay
	}

	return maxBranch
}

// branchWCRT is _compute_path_wcrt from the Python original: hardware delay
// along the branch, plus ci, plus the worst-case interference contributed by
// every equal-or-higher priority flow sharing any link of the branch.
func branchWCRT(flow *ofdb.RTAttributes, path []*ofdb.Link, all []*ofdb.RTAttributes) float64 {
	if len(path) == 0 {
		return 0
	}
	hwDelay := 0.0
	for _, l := range path {
		hwDelay += l.PropDelay + l.SwitchDelay + l.ProcDelay
	}

	segment := hwDelay + flow.Ci
	for _, link := range path {
		for _, fj := range interferingFlowsOnLink(link, flow, all) {
			segment += math.Ceil(flow.Di/fj.Ti) * fj.Ci
		}
	}
	return segment
}

// bfsPath finds the (unique, since route_links form a tree) directed path
// from src to dst within adj, built only from the flow's own committed
// route_links -- not the full topology.
func bfsPath(adj map[string][]*ofdb.Link, src, dst string) ([]*ofdb.Link, bool) {
	if src == dst {
		return nil, true
	}
	type frame struct {
		node string
		path []*ofdb.Link
	}
	visited := map[string]bool{src: true}
	queue := []frame{{node: src}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, l := range adj[cur.node] {
			if visited[l.Dst] {
				continue
			}
			nextPath := append(append([]*ofdb.Link{}, cur.path...), l)
			if l.Dst == dst {
				return nextPath, true
			}
			visited[l.Dst] = true
			queue = append(queue, frame{node: l.Dst, path: nextPath})
		}
	}
	return nil, false
}

func dedupe(ss []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
