// vi: sw=4 ts=4:

/*

	Mnemonic:	commands
	Abstract:	Abstract data-plane command family (C6). These are the same
				kind of thing as the teacher's managers/agent.go
				agent_cmd{Ctype, Actions[]}/action{Atype, Hosts, Dscps} JSON
				blobs pushed to an external "agent" process instead of a
				concrete OpenFlow wire message -- the spec explicitly keeps
				real switch-programming syntax out of scope (§1, §4.6), so
				these Command values are as far down as this controller goes;
				an external agent/script is assumed to translate them the way
				tegu's agent process and fq_mgr.go's adjust_queues script do.
	Date:		2026

*/

package dataplane

// Command is one abstract instruction handed to the data-plane agent.
// At most one of the Meter/Group/Flow fields is populated, selected by Type;
// a table-miss install carries none of them.
type Command struct {
	Type   string     `json:"ctype"`
	Switch string     `json:"switch"`
	Meter  *MeterSpec `json:"meter,omitempty"`
	Group  *GroupSpec `json:"group,omitempty"`
	Flow   *FlowSpec  `json:"flow,omitempty"`
}

const (
	// CmdInstallTableMiss installs the catch-all, priority-0 table-miss
	// entry on a newly discovered switch.
	CmdInstallTableMiss = "install_table_miss"
	// CmdInstallMeter installs (or replaces) a rate-limiting meter.
	CmdInstallMeter = "install_meter"
	// CmdInstallGroup installs (or replaces) a type-ALL multicast group.
	CmdInstallGroup = "install_multicast_group"
	// CmdInstallFlow installs (or replaces) the flow entry that directs
	// matching traffic into a multicast group via a meter.
	CmdInstallFlow = "install_flow"
	// CmdUninstallFlow removes a previously installed flow entry --  used
	// by Rollback on a partially committed registration.
	CmdUninstallFlow = "uninstall_flow"
	// CmdUninstallMeter removes a previously installed meter -- used by
	// Rollback alongside CmdUninstallGroup and CmdUninstallFlow, per spec
	// §7's "delete group/meter on already-programmed switches".
	CmdUninstallMeter = "uninstall_meter"
	// CmdUninstallGroup removes a previously installed multicast group --
	// used by Rollback alongside CmdUninstallMeter and CmdUninstallFlow.
	CmdUninstallGroup = "uninstall_multicast_group"
)

// MeterSpec rate-limits a multicast group to the flow's requested bandwidth.
// RateKbps mirrors ryu_mrt_app.py's install_meter, which scales the
// requested megabits-per-second bandwidth by 1000 for an OFPMeterBandDrop.
type MeterSpec struct {
	ID       int     `json:"id"`
	RateKbps float64 `json:"rate_kbps"`
}

// GroupSpec is a type-ALL (fan-out-to-every-bucket) OpenFlow group: one
// output port per downstream neighbour on the multicast tree.
type GroupSpec struct {
	ID    int   `json:"id"`
	Ports []int `json:"ports"`
}

// FlowSpec matches the registered topic to the installed group, metered on
// the way. Priority follows ryu_mrt_app.py's 100+pi convention so that
// higher-priority flows' table entries are preferred on overlapping matches.
type FlowSpec struct {
	Priority int    `json:"priority"`
	Topic    string `json:"topic"`
	GroupID  int    `json:"group_id"`
	MeterID  int    `json:"meter_id"`
}
