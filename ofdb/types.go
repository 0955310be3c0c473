// vi: sw=4 ts=4:

/*

	Mnemonic:	types
	Abstract:	Data model for the OpenFlow database (OF-DB): switches, links, the
				real-time attributes attached to a registered flow, and the
				per-topic subscriber set. Grounded on the teacher's
				gizmos/switch.go (Switch) and gizmos/pledge.go (the shape of a
				long-lived reservation object, here re-purposed as RTAttributes)
				but generalized to the delay/jitter/bandwidth model of the
				multicast real-time control plane instead of a bandwidth-only
				pledge.
	Date:		2026

*/

package ofdb

import "fmt"

// Switch is a single OpenFlow datapath known to the controller.
type Switch struct {
	ID       string
	MgmtAddr string
	Ports    map[int]struct{}
}

// NewSwitch builds a Switch with its port set initialized.
func NewSwitch(id, mgmtAddr string) *Switch {
	return &Switch{
		ID:       id,
		MgmtAddr: mgmtAddr,
		Ports:    make(map[int]struct{}),
	}
}

// AddPort records that the switch owns the given OpenFlow port number.
func (s *Switch) AddPort(port int) {
	s.Ports[port] = struct{}{}
}

// Link is a single directed edge of the topology graph: a physical (or
// logical) connection leaving switch Src on port PortOut and terminating at
// Dst. Delay components follow the paper's additive delay model; BWUsed is
// derived bookkeeping, maintained by the OFDB's flow methods; a Link holds no
// reference to the flows that use it.
type Link struct {
	Src      string
	Dst      string
	PortOut  int

	PropDelay    float64 // ms, propagation
	SwitchDelay  float64 // ms, switching latency
	ProcDelay    float64 // ms, per-hop processing
	QueuingDelay float64 // ms, queuing latency
	Jitter       float64 // ms, measured jitter (sample stdev over recent probes)

	BWCapacity float64 // Mbps
	BWUsed     float64 // Mbps, sum of bwi over flows whose route traverses this link
}

// ID returns a stable string key for the link, used for map keys and for
// route_links membership comparisons in the schedulability package.
func (l *Link) ID() string {
	return fmt.Sprintf("%s->%s:%d", l.Src, l.Dst, l.PortOut)
}

// TransmissionDelay returns the serialization delay, in milliseconds, for a
// payload of payloadBits bits crossing this link at its configured capacity.
// Zero-capacity links (never provisioned, or a test fixture) contribute zero
// rather than +Inf -- callers that care about that case should reject the
// link during admission, not rely on this returning a penalty.
func (l *Link) TransmissionDelay(payloadBits float64) float64 {
	if l.BWCapacity <= 0 {
		return 0
	}
	// bits / (Mbps * 1000) == bits / (kbit/s) == ms
	return payloadBits / (l.BWCapacity * 1000)
}

// Utilization returns bw_used/bw_capacity capped at 0.99, matching the
// routing engine's cost formula (§4.2); an unprovisioned link (capacity <= 0)
// is treated as fully loaded so the router avoids it unless there is no
// alternative.
func (l *Link) Utilization() float64 {
	if l.BWCapacity <= 0 {
		return 0.99
	}
	u := l.BWUsed / l.BWCapacity
	if u > 0.99 {
		return 0.99
	}
	return u
}

// RTAttributes describes one registered real-time multicast flow: the
// MQTT-over-SDN "pledge" that the spec's REST surface admits, routes and
// programs. Field names mirror the spec's glossary (ci, pi, ti, di, bwi)
// directly rather than translating them into longer Go names, since they are
// a recognized vocabulary for anyone reading the schedulability literature.
type RTAttributes struct {
	Topic string // ft_i

	Qi int     // MQTT QoS level requested: 0, 1 or 2
	Ci float64 // ms, worst-case transmission/computation time
	Pi int     // priority (higher admits precedence in interference)
	Ti float64 // ms, minimum inter-arrival period
	Di float64 // ms, end-to-end deadline
	BWi float64 // Mbps, requested bandwidth

	SrcIP     string
	DstIPs    []string
	BrokerIPs []string

	RouteLinks        []*Link
	MulticastGroupID  int
	ProcessingDelay   float64 // ms, broker processing delay when Qi > 0
	MeasuredJitter    float64 // ms, jitter attributed to this flow by the monitor
}

// Subscriber is a single subscriber endpoint recorded against a topic.
type Subscriber struct {
	Topic string
	IP    string
}
