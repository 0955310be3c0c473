// vi: sw=4 ts=4:

/*

	Mnemonic:	programmer
	Abstract:	The Data-plane Programmer (C6): derives the per-switch forward
				port set from a flow's route_links, and issues the abstract
				meter/group/flow commands that realize it -- idempotently, so
				a subscriber graft can simply re-run Commit against the new
				tree. Grounded on original_source/sdn_controller/
				ryu_mrt_app.py's _install_multicast_tree/register_rt_flow and
				on the teacher's managers/fq_mgr.go, which shells commands out
				to an external program rather than speaking OpenFlow itself.
	Date:		2026

*/

package dataplane

import (
	"context"
	"fmt"

	log "github.com/apex/log"

	"github.com/esdaniels/tegu-mrt/ofdb"
)

var sheep = log.WithField("component", "dataplane")

// Transport delivers a Command to the external agent/program that actually
// touches the switch. The spec keeps concrete switch-programming syntax out
// of scope, so Transport is the system boundary: what happens on the other
// side of Send is somebody else's concern.
type Transport interface {
	Send(ctx context.Context, cmd Command) error
}

// Programmer is the C6 entry point used by the orchestrator.
type Programmer struct {
	transport Transport
}

// New returns a Programmer that delivers commands over the given Transport.
func New(t Transport) *Programmer {
	return &Programmer{transport: t}
}

// InstallTableMiss is invoked once per newly discovered switch (§4.6).
func (p *Programmer) InstallTableMiss(ctx context.Context, dpid string) error {
	return p.transport.Send(ctx, Command{Type: CmdInstallTableMiss, Switch: dpid})
}

// forwardMap derives, for every switch along the route, the set of egress
// ports a multicast packet must be replicated onto -- one per downstream
// link leaving that switch (ryu_mrt_app.py's fwd_map).
func forwardMap(route []*ofdb.Link) map[string][]int {
	fwd := map[string][]int{}
	seen := map[string]map[int]bool{}
	for _, l := range route {
		if seen[l.Src] == nil {
			seen[l.Src] = map[int]bool{}
		}
		if seen[l.Src][l.PortOut] {
			continue
		}
		seen[l.Src][l.PortOut] = true
		fwd[l.Src] = append(fwd[l.Src], l.PortOut)
	}
	return fwd
}

// Commit (re-)programs every switch on flow's current route to forward
// matching traffic into its multicast group, metered to its requested
// bandwidth. It is always a full overwrite of the group/flow state for this
// topic -- calling it again after a route change (subscriber graft) is the
// intended, idempotent way to re-program the tree (§4.5 handle_new_subscriber:
// "re-install/overwrite group as idempotent modify").
func (p *Programmer) Commit(ctx context.Context, flow *ofdb.RTAttributes) error {
	fwd := forwardMap(flow.RouteLinks)
	if len(fwd) == 0 {
		// A flow with no destinations/brokers yet (spec §4.5: qi=0 may be
		// registered with an initially empty dst_ips) has nothing to program
		// on any switch -- not an error, just a no-op until a subscriber
		// joins and HandleNewSubscriber re-commits a non-empty tree.
		sheep.WithField("topic", flow.Topic).Info("commit called with an empty route, nothing to program")
		return nil
	}

	rateKbps := flow.BWi * 1000
	priority := 100 + flow.Pi

	var programmed []string
	for dpid, ports := range fwd {
		if err := p.transport.Send(ctx, Command{
			Type:   CmdInstallMeter,
			Switch: dpid,
			Meter:  &MeterSpec{ID: flow.MulticastGroupID, RateKbps: rateKbps},
		}); err != nil {
			return p.failAndRollback(ctx, flow, programmed, fmt.Errorf("install_meter on %s: %w", dpid, err))
		}

		if err := p.transport.Send(ctx, Command{
			Type:   CmdInstallGroup,
			Switch: dpid,
			Group:  &GroupSpec{ID: flow.MulticastGroupID, Ports: ports},
		}); err != nil {
			return p.failAndRollback(ctx, flow, programmed, fmt.Errorf("install_multicast_group on %s: %w", dpid, err))
		}

		if err := p.transport.Send(ctx, Command{
			Type:   CmdInstallFlow,
			Switch: dpid,
			Flow: &FlowSpec{
				Priority: priority,
				Topic:    flow.Topic,
				GroupID:  flow.MulticastGroupID,
				MeterID:  flow.MulticastGroupID,
			},
		}); err != nil {
			return p.failAndRollback(ctx, flow, programmed, fmt.Errorf("install_flow on %s: %w", dpid, err))
		}

		programmed = append(programmed, dpid)
	}

	return nil
}

// failAndRollback attempts a best-effort uninstall of whatever was already
// programmed for this registration attempt before surfacing the original
// error -- per spec §7, "an inconsistent flow must not be visible to
// routing", so a partially programmed flow is never added to the OF-DB by
// the orchestrator regardless of whether rollback itself succeeds.
func (p *Programmer) failAndRollback(ctx context.Context, flow *ofdb.RTAttributes, programmed []string, cause error) error {
	sheep.WithField("topic", flow.Topic).WithError(cause).Warn("commit failed, rolling back partially programmed switches")
	if err := p.Rollback(ctx, flow, programmed); err != nil {
		sheep.WithField("topic", flow.Topic).WithError(err).Error("rollback also failed, data plane may be left inconsistent")
	}
	return cause
}

// Rollback removes the flow entry, the multicast group and the meter
// installed on each of the given switches -- spec §7: "rollback is
// best-effort (delete group/meter on already-programmed switches)". It keeps
// trying every switch/command even after a failure so one bad switch doesn't
// leave the rest of a partially committed registration uncleaned.
func (p *Programmer) Rollback(ctx context.Context, flow *ofdb.RTAttributes, switches []string) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, dpid := range switches {
		record(p.transport.Send(ctx, Command{Type: CmdUninstallFlow, Switch: dpid, Flow: &FlowSpec{Topic: flow.Topic}}))
		record(p.transport.Send(ctx, Command{Type: CmdUninstallGroup, Switch: dpid, Group: &GroupSpec{ID: flow.MulticastGroupID}}))
		record(p.transport.Send(ctx, Command{Type: CmdUninstallMeter, Switch: dpid, Meter: &MeterSpec{ID: flow.MulticastGroupID}}))
	}
	return firstErr
}
