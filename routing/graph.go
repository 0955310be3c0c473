// vi: sw=4 ts=4:

/*

	Mnemonic:	graph
	Abstract:	Builds the weighted routing graph from an OF-DB link snapshot
				and implements single-source Dijkstra over it. Grounded
				directly on the teacher's gizmos/switch.go Path_to/
				probe_neighbours (breadth-first expansion with a running cost,
				generalized here to a proper priority-ordered Dijkstra since
				our edge weights are real delay/utilization costs, not the
				uniform per-hop cost tegu assumed) and on the cost formula of
				original_source/sdn_controller/routing.py's _build_graph.
	Date:		2026

*/

package routing

import (
	"container/heap"
	"sort"

	"github.com/esdaniels/tegu-mrt/ofdb"
)

// edge is one traversable hop of the routing graph, carrying the real Link
// object so a resolved path can be converted back into something the
// data-plane programmer can install.
type edge struct {
	to     string
	link   *ofdb.Link
	weight float64
}

// graph is an undirected adjacency list built fresh from a link snapshot on
// every call -- matching routing.py's _build_graph, which rebuilds
// nx.Graph() each time rather than maintaining one incrementally, so that a
// concurrent bandwidth update is always reflected in the next calculation.
type graph struct {
	adj map[string][]edge
}

// cost is the spec §4.2 edge weight: (prop+switch+proc)/(1-u), where u is
// the link's capped utilization. Queuing delay is deliberately excluded
// here -- it is a schedulability-analysis input (§4.3), not a routing cost.
func cost(l *ofdb.Link) float64 {
	base := l.PropDelay + l.SwitchDelay + l.ProcDelay
	return base / (1 - l.Utilization())
}

func buildGraph(links []*ofdb.Link) *graph {
	g := &graph{adj: make(map[string][]edge)}
	for _, l := range links {
		w := cost(l)
		g.adj[l.Src] = append(g.adj[l.Src], edge{to: l.Dst, link: l, weight: w})
		g.adj[l.Dst] = append(g.adj[l.Dst], edge{to: l.Src, link: l, weight: w})
	}
	return g
}

func (g *graph) hasNode(n string) bool {
	_, ok := g.adj[n]
	return ok
}

// nodes returns every node in the graph, sorted for deterministic iteration
// (RP election and tests depend on this).
func (g *graph) nodes() []string {
	out := make([]string, 0, len(g.adj))
	for n := range g.adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// --- Dijkstra -------------------------------------------------------------

type pqItem struct {
	node string
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstraFrom computes shortest-path distance and predecessor maps from src
// to every node reachable in g.
func dijkstraFrom(g *graph, src string) (dist map[string]float64, prev map[string]string) {
	dist = map[string]float64{src: 0}
	prev = map[string]string{}
	visited := map[string]bool{}

	pq := &priorityQueue{{node: src, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		for _, e := range g.adj[cur.node] {
			nd := cur.dist + e.weight
			if existing, ok := dist[e.to]; !ok || nd < existing {
				dist[e.to] = nd
				prev[e.to] = cur.node
				heap.Push(pq, pqItem{node: e.to, dist: nd})
			}
		}
	}
	return dist, prev
}

// dijkstraPath returns the ordered node path from src to dst, or ok=false if
// dst is unreachable.
func dijkstraPath(g *graph, src, dst string) (path []string, ok bool) {
	if src == dst {
		return []string{src}, true
	}
	_, prev := dijkstraFrom(g, src)
	if _, reached := prev[dst]; !reached {
		return nil, false
	}
	for n := dst; n != src; n = prev[n] {
		path = append([]string{n}, path...)
	}
	path = append([]string{src}, path...)
	return path, true
}

// nodesToLinks walks a node path and returns the Link traversed at each hop.
func nodesToLinks(g *graph, nodes []string) []*ofdb.Link {
	var out []*ofdb.Link
	for i := 0; i+1 < len(nodes); i++ {
		u, v := nodes[i], nodes[i+1]
		for _, e := range g.adj[u] {
			if e.to == v {
				out = append(out, e.link)
				break
			}
		}
	}
	return out
}
