// vi: sw=4 ts=4:

/*

	Mnemonic:	routing
	Abstract:	The Routing Engine (C2): delay-aware unicast Dijkstra,
				Steiner-tree-approximation multicast trees with a union-of-
				unicast-paths fallback, and rendezvous-point election by
				minimax eccentricity over the subscriber set. Grounded on
				original_source/sdn_controller/routing.py's RoutingEngine,
				carried into Go in the teacher's own path-finding idiom
				(gizmos/switch.go).
	Date:		2026

*/

package routing

import (
	"errors"

	log "github.com/apex/log"

	"github.com/esdaniels/tegu-mrt/ofdb"
)

var sheep = log.WithField("component", "routing")

// ErrNoSource is returned when the requested source is not present in the
// current topology snapshot.
var ErrNoSource = errors.New("routing: source not in topology")

// ErrNoDestinations is returned when none of the requested destinations are
// present in the current topology snapshot.
var ErrNoDestinations = errors.New("routing: no valid destinations in topology")

// ErrNoSubscribers is returned by SelectRP when none of the candidate
// subscribers are present in the topology.
var ErrNoSubscribers = errors.New("routing: no valid subscribers in topology")

// CalculatePath computes the set of links connecting src to every address in
// dsts. A single valid destination resolves to a plain Dijkstra shortest
// path; more than one resolves to an approximate Steiner tree spanning src
// and all destinations, falling back to the union of independent unicast
// paths if the tree cannot be made to span every terminal (disconnected
// topology). Unreachable destinations are silently dropped from the result,
// mirroring routing.py's best-effort behaviour -- the caller (the
// orchestrator) is responsible for deciding whether a partial tree is
// acceptable. A caller that passes no destinations at all, with a source
// present in the topology, gets back an empty, error-free route (an unknown
// source is still ErrNoSource) -- spec §4.5 explicitly allows a qi=0 flow to be
// registered with "possibly empty set initially", growing only later via
// subscriber joins.
func CalculatePath(links []*ofdb.Link, src string, dsts []string) ([]*ofdb.Link, error) {
	g := buildGraph(links)

	if !g.hasNode(src) {
		return nil, ErrNoSource
	}

	if len(dsts) == 0 {
		return nil, nil
	}

	validDsts := make([]string, 0, len(dsts))
	seen := map[string]bool{}
	for _, d := range dsts {
		if d == "" || seen[d] || d == src {
			continue
		}
		if g.hasNode(d) {
			validDsts = append(validDsts, d)
			seen[d] = true
		}
	}
	if len(validDsts) == 0 {
		return nil, ErrNoDestinations
	}

	if len(validDsts) == 1 {
		path, ok := dijkstraPath(g, src, validDsts[0])
		if !ok {
			sheep.WithField("dst", validDsts[0]).Warn("no path found")
			return nil, nil
		}
		return nodesToLinks(g, path), nil
	}

	terminals := append([]string{src}, validDsts...)
	tree := steinerTree(g, terminals)
	if spans(g, tree, terminals) {
		return tree, nil
	}

	sheep.Warn("steiner tree failed to span all terminals, falling back to unicast union")
	return unicastUnion(g, src, validDsts), nil
}

// unicastUnion returns the deduplicated union of independent unicast paths
// from src to each destination, skipping any destination that is
// unreachable.
func unicastUnion(g *graph, src string, dsts []string) []*ofdb.Link {
	linkSet := map[string]*ofdb.Link{}
	for _, d := range dsts {
		path, ok := dijkstraPath(g, src, d)
		if !ok {
			continue
		}
		for _, l := range nodesToLinks(g, path) {
			linkSet[l.ID()] = l
		}
	}
	out := make([]*ofdb.Link, 0, len(linkSet))
	for _, l := range linkSet {
		out = append(out, l)
	}
	return out
}

// spans reports whether the given link set connects every terminal to every
// other terminal (i.e. is a valid Steiner tree / forest covering them all).
func spans(g *graph, links []*ofdb.Link, terminals []string) bool {
	if len(links) == 0 {
		return len(terminals) <= 1
	}
	adj := map[string][]string{}
	for _, l := range links {
		adj[l.Src] = append(adj[l.Src], l.Dst)
		adj[l.Dst] = append(adj[l.Dst], l.Src)
	}
	start := terminals[0]
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, nb := range adj[n] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	for _, t := range terminals {
		if !visited[t] {
			return false
		}
	}
	return true
}

// SelectRP picks the rendezvous point that minimizes the maximum weighted
// distance to any subscriber in the set (minimax eccentricity), matching
// original_source/sdn_controller/routing.py's select_optimal_rp. Ties are
// broken by the lexicographically smallest node id, for determinism.
func SelectRP(links []*ofdb.Link, subscribers []string) (string, error) {
	g := buildGraph(links)
	if len(g.adj) == 0 {
		return "", ErrNoSubscribers
	}

	validSubs := make([]string, 0, len(subscribers))
	for _, s := range subscribers {
		if g.hasNode(s) {
			validSubs = append(validSubs, s)
		}
	}
	if len(validSubs) == 0 {
		return "", ErrNoSubscribers
	}

	best := ""
	minMax := -1.0
	for _, node := range g.nodes() {
		dist, _ := dijkstraFrom(g, node)
		maxDist := 0.0
		reachable := true
		for _, s := range validSubs {
			d, ok := dist[s]
			if !ok {
				reachable = false
				break
			}
			if d > maxDist {
				maxDist = d
			}
		}
		if !reachable {
			continue
		}
		if best == "" || maxDist < minMax {
			minMax = maxDist
			best = node
		}
	}

	if best == "" {
		return "", ErrNoSubscribers
	}
	return best, nil
}
