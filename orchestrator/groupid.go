// vi: sw=4 ts=4:

/*

	Mnemonic:	groupid
	Abstract:	Deterministic multicast group id assignment. Grounded on
				original_source/sdn_controller/ryu_mrt_app.py's
				_install_multicast_tree: `abs(hash(ft_i)) % 2000 + 1` when a
				flow arrives with no group id yet assigned. Python's hash() is
				not stable across runs, which the original code tolerates
				because the controller keeps the mapping in memory for its
				own lifetime; we use FNV-1a for a hash that is at least
				stable across restarts (a UX improvement, not a compatibility
				requirement). Collisions are resolved deterministically (spec
				§9 Open Question 4 leaves the exact scheme to the
				implementer): the base is forced odd, and we probe upward in
				twos until an id not already in use is found.
	Date:		2026

*/

package orchestrator

import "hash/fnv"

// AssignGroupID returns a multicast group id for topic, probing past
// collisions reported by inUse.
func AssignGroupID(topic string, inUse func(id int) bool) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(topic))
	base := int(h.Sum32()%2000) + 1
	if base%2 == 0 {
		base++
	}
	id := base
	for inUse(id) {
		id += 2
	}
	return id
}
