// vi: sw=4 ts=4:

/*

	Mnemonic:	state
	Abstract:	The per-topic registration state machine (spec §4.5):
				Unknown -> Admitting -> Programming -> Admitted, with a
				Regrafting excursion back to Admitted when a subscriber
				joins. Tracked purely for observability (read through
				Orchestrator.State) -- correctness never depends on reading this
				map, only on the OF-DB lock held across each transition.
	Date:		2026

*/

package orchestrator

import "sync"

// State is one point in a flow's registration lifecycle.
type State string

const (
	StateUnknown     State = "unknown"
	StateAdmitting   State = "admitting"
	StateProgramming State = "programming"
	StateAdmitted    State = "admitted"
	StateRegrafting  State = "regrafting"
)

type stateTracker struct {
	mu     sync.Mutex
	states map[string]State
}

func newStateTracker() *stateTracker {
	return &stateTracker{states: make(map[string]State)}
}

func (t *stateTracker) set(topic string, s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[topic] = s
}

func (t *stateTracker) get(topic string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.states[topic]; ok {
		return s
	}
	return StateUnknown
}
