// vi: sw=4 ts=4:

/*

	Mnemonic:	db
	Abstract:	The OF-DB itself: a single exclusive-lock registry of switches,
				links, admitted flows and subscribers (spec §4.1/§5). Grounded
				on the teacher's managers/network.go, which owns the topology
				graph behind a single goroutine reading off a request channel;
				here the same "one writer at a time, readers see a consistent
				snapshot" contract is expressed directly with sync.RWMutex,
				per spec §5's instruction that the model is "a single
				exclusive lock", not a library wrapping one.
	Date:		2026

*/

package ofdb

import (
	"fmt"
	"sort"
	"sync"

	log "github.com/apex/log"
)

var sheep = log.WithField("component", "ofdb")

// linkKey uniquely identifies a directed link.
func linkKey(src, dst string, portOut int) string {
	return fmt.Sprintf("%s->%s:%d", src, dst, portOut)
}

// OFDB is the controller's single topology/flow/subscriber registry. The
// orchestrator holds Lock()/Unlock() across an entire register() or
// handle_new_subscriber() sequence so that admission, routing and commit see
// (and leave) one consistent view -- see orchestrator.Orchestrator.Register.
type OFDB struct {
	mu sync.RWMutex

	switches    map[string]*Switch
	links       map[string]*Link
	flows       map[string]*RTAttributes
	subscribers map[string]map[string]struct{} // topic -> set of subscriber IPs
}

// New returns an empty OF-DB.
func New() *OFDB {
	return &OFDB{
		switches:    make(map[string]*Switch),
		links:       make(map[string]*Link),
		flows:       make(map[string]*RTAttributes),
		subscribers: make(map[string]map[string]struct{}),
	}
}

// --- switches ---------------------------------------------------------

// AddSwitch registers (or replaces) a switch.
func (db *OFDB) AddSwitch(sw *Switch) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.switches[sw.ID] = sw
	sheep.WithField("dpid", sw.ID).Info("switch added")
}

// RemoveSwitch drops a switch from the topology. Links attached to it are
// left for the caller to remove explicitly -- the OF-DB does not infer link
// membership from switch identity, since a link's endpoints may name either
// a switch dpid or a host/broker IP (design note 9, heterogeneous identifier
// unification).
func (db *OFDB) RemoveSwitch(id string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.switches, id)
}

// GetSwitch returns the switch with the given id, if known.
func (db *OFDB) GetSwitch(id string) (*Switch, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	sw, ok := db.switches[id]
	return sw, ok
}

// ListSwitches returns a snapshot of all known switches.
func (db *OFDB) ListSwitches() []*Switch {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]*Switch, 0, len(db.switches))
	for _, sw := range db.switches {
		out = append(out, sw)
	}
	return out
}

// --- links --------------------------------------------------------------

// AddLink registers (or replaces, same src/dst/port) a directed link.
func (db *OFDB) AddLink(l *Link) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.links[linkKey(l.Src, l.Dst, l.PortOut)] = l
}

// RemoveLink drops a directed link from the topology.
func (db *OFDB) RemoveLink(src, dst string, portOut int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.links, linkKey(src, dst, portOut))
}

// SnapshotLinks returns a consistent point-in-time copy of the link set for
// the routing engine and the monitor to iterate without holding the lock
// for the duration of a (possibly expensive) graph computation.
func (db *OFDB) SnapshotLinks() []*Link {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.linksLocked()
}

// linksLocked returns every link sorted by its stable ID, not map iteration
// order -- Go randomizes map range order, and the routing engine's Dijkstra
// tie-breaking between equal-weight edges depends on the adjacency order it
// is handed, so an unsorted slice here would make repeated identical
// registrations pick different paths from run to run.
func (db *OFDB) linksLocked() []*Link {
	out := make([]*Link, 0, len(db.links))
	for _, l := range db.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// --- exclusive multi-step sequences --------------------------------------
//
// Lock/Unlock are exported so the orchestrator can hold the OF-DB's single
// exclusive lock across an entire admission-routing-commit sequence (spec
// §5: "the lock is held for the duration of admission, routing and commit
// for a single flow registration"). The *Locked methods below assume the
// caller already holds the lock and must never take it themselves.

func (db *OFDB) Lock()   { db.mu.Lock() }
func (db *OFDB) Unlock() { db.mu.Unlock() }

// LinksSnapshotLocked is SnapshotLinks for a caller that already holds the
// exclusive lock (e.g. the orchestrator mid-registration).
func (db *OFDB) LinksSnapshotLocked() []*Link {
	return db.linksLocked()
}

// ListFlowsLocked returns every currently admitted flow.
func (db *OFDB) ListFlowsLocked() []*RTAttributes {
	out := make([]*RTAttributes, 0, len(db.flows))
	for _, f := range db.flows {
		out = append(out, f)
	}
	return out
}

// GetFlowLocked looks up a flow by topic.
func (db *OFDB) GetFlowLocked(topic string) (*RTAttributes, bool) {
	f, ok := db.flows[topic]
	return f, ok
}

// AddFlowLocked installs a newly admitted and committed flow, and accounts
// its requested bandwidth against every link in its route.
func (db *OFDB) AddFlowLocked(f *RTAttributes) {
	db.flows[f.Topic] = f
	for _, l := range f.RouteLinks {
		l.BWUsed += f.BWi
	}
}

// RemoveFlowLocked withdraws a flow and releases the bandwidth it held.
// Exposed for completeness (spec §9 open question: flow withdrawal is not
// exercised anywhere else in this controller, no REST verb calls it today).
func (db *OFDB) RemoveFlowLocked(topic string) {
	f, ok := db.flows[topic]
	if !ok {
		return
	}
	for _, l := range f.RouteLinks {
		l.BWUsed -= f.BWi
		if l.BWUsed < 0 {
			l.BWUsed = 0
		}
	}
	delete(db.flows, topic)
}

// ReplaceRouteLocked swaps a flow's route (used by subscriber-graft
// recomputation), adjusting the bandwidth ledger for links that left or
// joined the tree.
func (db *OFDB) ReplaceRouteLocked(f *RTAttributes, newRoute []*Link) {
	old := make(map[string]*Link, len(f.RouteLinks))
	for _, l := range f.RouteLinks {
		old[l.ID()] = l
	}
	next := make(map[string]*Link, len(newRoute))
	for _, l := range newRoute {
		next[l.ID()] = l
	}
	for id, l := range old {
		if _, stillThere := next[id]; !stillThere {
			l.BWUsed -= f.BWi
			if l.BWUsed < 0 {
				l.BWUsed = 0
			}
		}
	}
	for id, l := range next {
		if _, wasThere := old[id]; !wasThere {
			l.BWUsed += f.BWi
		}
	}
	f.RouteLinks = newRoute
}

// AddSubscriberLocked records a subscriber against a topic. It returns true
// if the subscriber was not already present.
func (db *OFDB) AddSubscriberLocked(topic, ip string) bool {
	set, ok := db.subscribers[topic]
	if !ok {
		set = make(map[string]struct{})
		db.subscribers[topic] = set
	}
	if _, already := set[ip]; already {
		return false
	}
	set[ip] = struct{}{}
	return true
}

// ListSubscribersLocked returns every subscriber IP recorded for topic.
func (db *OFDB) ListSubscribersLocked(topic string) []string {
	set := db.subscribers[topic]
	out := make([]string, 0, len(set))
	for ip := range set {
		out = append(out, ip)
	}
	return out
}

// --- convenience read wrappers (take the lock themselves) ---------------

// GetFlow looks up a flow by topic without requiring the caller to manage
// the exclusive lock -- for read-only callers that do not already hold it.
func (db *OFDB) GetFlow(topic string) (*RTAttributes, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.GetFlowLocked(topic)
}

// ListFlows is ListFlowsLocked for a caller that does not already hold the
// lock.
func (db *OFDB) ListFlows() []*RTAttributes {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ListFlowsLocked()
}

// ListSubscribers is ListSubscribersLocked for a caller that does not
// already hold the lock.
func (db *OFDB) ListSubscribers(topic string) []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ListSubscribersLocked(topic)
}
