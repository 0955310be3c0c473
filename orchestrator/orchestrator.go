// vi: sw=4 ts=4:

/*

	Mnemonic:	orchestrator
	Abstract:	The Flow Orchestrator (C5): register() runs admission, routing
				and data-plane commit for one new flow under the OF-DB's
				single exclusive lock, end to end; handle_new_subscriber()
				grafts a new destination onto an already-admitted flow's
				multicast tree. Grounded on original_source/sdn_controller/
				ryu_mrt_app.py's register_rt_flow/handle_new_subscriber, and
				on the teacher's managers/network.go + managers/res_mgr.go,
				whose single-writer goroutines play the same role of being
				the one place admission state and topology are both mutated
				together.
	Date:		2026

*/

package orchestrator

import (
	"context"
	"errors"
	"fmt"

	log "github.com/apex/log"
	"github.com/google/uuid"

	"github.com/esdaniels/tegu-mrt/admission"
	"github.com/esdaniels/tegu-mrt/dataplane"
	"github.com/esdaniels/tegu-mrt/ofdb"
	"github.com/esdaniels/tegu-mrt/routing"
)

var sheep = log.WithField("component", "orchestrator")

// ErrRejected wraps an admission.Verdict whose Admitted field is false.
var ErrRejected = errors.New("orchestrator: flow rejected by admission control")

// ErrNoRoute is returned when the routing engine cannot produce any usable
// path/tree for a flow that was otherwise admitted.
var ErrNoRoute = errors.New("orchestrator: no route available")

// ErrUnknownFlow is returned by HandleNewSubscriber for a topic that has no
// admitted flow.
var ErrUnknownFlow = errors.New("orchestrator: unknown flow")

// Orchestrator is the C5 entry point used by the REST surface.
type Orchestrator struct {
	db         *ofdb.OFDB
	programmer *dataplane.Programmer
	states     *stateTracker
}

// New builds an Orchestrator over the given OF-DB and data-plane programmer.
func New(db *ofdb.OFDB, programmer *dataplane.Programmer) *Orchestrator {
	return &Orchestrator{db: db, programmer: programmer, states: newStateTracker()}
}

// State returns the current observability state of topic's registration.
func (o *Orchestrator) State(topic string) State {
	return o.states.get(topic)
}

// RegisterResult is what Register reports back to the REST handler.
type RegisterResult struct {
	Verdict       admission.Verdict
	CorrelationID string
}

// Register admits, routes and commits a single new flow. It holds the
// OF-DB's exclusive lock for the full admission+routing+commit sequence
// (spec §5) so that no other registration, graft or topology mutation can
// interleave and observe (or cause) a half-finished flow.
func (o *Orchestrator) Register(ctx context.Context, attrs *ofdb.RTAttributes) (RegisterResult, error) {
	correlationID := uuid.NewString()
	entry := sheep.WithField("topic", attrs.Topic).WithField("correlation_id", correlationID)

	o.states.set(attrs.Topic, StateAdmitting)

	o.db.Lock()
	defer o.db.Unlock()

	existing := o.db.ListFlowsLocked()
	verdict := admission.Check(attrs, existing)
	if !verdict.Admitted {
		o.states.set(attrs.Topic, StateUnknown)
		entry.WithField("reason", verdict.String()).Warn("register_flow rejected")
		return RegisterResult{Verdict: verdict, CorrelationID: correlationID}, fmt.Errorf("%w: %s", ErrRejected, verdict.String())
	}

	route, err := o.computeRoute(attrs)
	// A flow registered with no destinations/brokers yet (spec §4.5: qi=0
	// may start with a "possibly empty set initially", growing only via
	// later register_subscriber calls) legitimately yields an empty route --
	// that is only a failure when the flow actually had targets to reach.
	hasTargets := len(attrs.DstIPs) > 0 || len(attrs.BrokerIPs) > 0
	if err != nil || (len(route) == 0 && hasTargets) {
		o.states.set(attrs.Topic, StateUnknown)
		entry.WithError(err).Warn("register_flow admitted but no route could be computed")
		if err == nil {
			err = ErrNoRoute
		}
		return RegisterResult{Verdict: verdict, CorrelationID: correlationID}, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}
	attrs.RouteLinks = route

	o.states.set(attrs.Topic, StateProgramming)

	if attrs.MulticastGroupID == 0 {
		existingIDs := map[int]bool{}
		for _, f := range existing {
			existingIDs[f.MulticastGroupID] = true
		}
		attrs.MulticastGroupID = AssignGroupID(attrs.Topic, func(id int) bool { return existingIDs[id] })
	}

	if err := o.programmer.Commit(ctx, attrs); err != nil {
		o.states.set(attrs.Topic, StateUnknown)
		entry.WithError(err).Error("register_flow admitted and routed but data-plane commit failed")
		return RegisterResult{Verdict: verdict, CorrelationID: correlationID}, fmt.Errorf("dataplane commit: %w", err)
	}

	o.db.AddFlowLocked(attrs)
	o.states.set(attrs.Topic, StateAdmitted)
	entry.Info("register_flow committed")

	return RegisterResult{Verdict: verdict, CorrelationID: correlationID}, nil
}

// computeRoute implements §4.5's branch between a direct (QoS 0) multicast
// tree straight to the subscribers, and a QoS>0 tree routed to the broker(s)
// -- electing a rendezvous point first if none was supplied.
func (o *Orchestrator) computeRoute(attrs *ofdb.RTAttributes) ([]*ofdb.Link, error) {
	links := o.db.LinksSnapshotLocked()

	if attrs.Qi == 0 {
		return routing.CalculatePath(links, attrs.SrcIP, attrs.DstIPs)
	}

	brokers := attrs.BrokerIPs
	if len(brokers) == 0 {
		subs := o.db.ListSubscribersLocked(attrs.Topic)
		rp, err := routing.SelectRP(links, subs)
		if err != nil {
			sheep.WithField("topic", attrs.Topic).WithError(err).Warn("no rendezvous point could be elected, falling back to direct destinations")
			return routing.CalculatePath(links, attrs.SrcIP, attrs.DstIPs)
		}
		brokers = []string{rp}
		attrs.BrokerIPs = brokers
	}
	return routing.CalculatePath(links, attrs.SrcIP, brokers)
}

// HandleNewSubscriber grafts subIP onto an already-admitted flow's
// multicast tree, recomputing the full tree and idempotently re-programming
// it. Per spec §9 Open Question 2, this does NOT re-run admission control --
// a known hazard, flagged here at warn level rather than silently accepted.
func (o *Orchestrator) HandleNewSubscriber(ctx context.Context, topic, subIP string) error {
	o.db.Lock()
	defer o.db.Unlock()

	flow, ok := o.db.GetFlowLocked(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFlow, topic)
	}

	isNew := o.db.AddSubscriberLocked(topic, subIP)
	if !isNew {
		return nil
	}

	sheep.WithField("topic", topic).WithField("subscriber", subIP).
		Warn("grafting subscriber without re-running admission control")

	o.states.set(topic, StateRegrafting)

	flow.DstIPs = appendUnique(flow.DstIPs, subIP)

	links := o.db.LinksSnapshotLocked()
	newRoute, err := routing.CalculatePath(links, flow.SrcIP, flow.DstIPs)
	if err != nil || len(newRoute) == 0 {
		o.states.set(topic, StateAdmitted)
		if err == nil {
			err = ErrNoRoute
		}
		return fmt.Errorf("graft route recompute: %w", err)
	}

	o.db.ReplaceRouteLocked(flow, newRoute)

	if err := o.programmer.Commit(ctx, flow); err != nil {
		o.states.set(topic, StateAdmitted)
		return fmt.Errorf("graft dataplane commit: %w", err)
	}

	o.states.set(topic, StateAdmitted)
	return nil
}

func appendUnique(ss []string, v string) []string {
	for _, s := range ss {
		if s == v {
			return ss
		}
	}
	return append(ss, v)
}
