// vi: sw=4 ts=4:

/*

	Mnemonic:	sampler
	Abstract:	Pluggable delay sampling strategies for the Network Monitor
				(C7): a simulation-mode sampler matching
				original_source/simulation/monitor.py's _get_latency formula
				exactly, and a real ICMP-probe sampler built on
				github.com/prometheus-community/pro-bing (malbeclabs-
				doublezero's choice of ICMP client), reporting RTT/2 the same
				way the Python original's scapy-based probe did.
	Date:		2026

*/

package monitor

import (
	"context"
	"math/rand"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/esdaniels/tegu-mrt/ofdb"
)

// ProbeFailureSentinelMS is returned (never an error that bubbles to the
// caller) whenever a real probe cannot produce a measurement -- timeout, a
// host without a management IP, or any other probe-layer failure. Per spec
// §4.7/§7, probe failures degrade to this sentinel value rather than halt
// monitoring or propagate an error to the orchestrator.
const ProbeFailureSentinelMS = 0.1

// Sampler measures the current one-way delay of a link, in milliseconds.
type Sampler interface {
	Sample(ctx context.Context, link *ofdb.Link) (float64, error)
}

// SimSampler fabricates a plausible delay reading for a link that has no
// real network to probe: a 5ms base, +/-0.5ms of uniform noise, plus a load
// term proportional to current utilization -- exactly
// original_source/simulation/monitor.py's _get_latency(simulation_mode=True).
type SimSampler struct {
	rng *rand.Rand
}

// NewSimSampler returns a SimSampler seeded from seed (tests pass a fixed
// seed for determinism; production wiring seeds from a real entropy source
// once at startup).
func NewSimSampler(seed int64) *SimSampler {
	return &SimSampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *SimSampler) Sample(_ context.Context, link *ofdb.Link) (float64, error) {
	const base = 5.0
	noise := s.rng.Float64() - 0.5
	loadFactor := 0.0
	if link.BWCapacity > 0 {
		loadFactor = (link.BWUsed / link.BWCapacity) * 2.0
	}
	return base + noise + loadFactor, nil
}

// ICMPSampler issues a real one-shot ICMP echo to a link's destination
// management address and reports half the measured round trip -- the same
// RTT/2 approximation the Python original used for its scapy probe.
type ICMPSampler struct {
	db      *ofdb.OFDB
	Timeout time.Duration
}

// NewICMPSampler builds an ICMPSampler that resolves a link's destination
// switch management address via db.
func NewICMPSampler(db *ofdb.OFDB) *ICMPSampler {
	return &ICMPSampler{db: db, Timeout: 1 * time.Second}
}

func (s *ICMPSampler) Sample(_ context.Context, link *ofdb.Link) (float64, error) {
	sw, ok := s.db.GetSwitch(link.Dst)
	if !ok || sw.MgmtAddr == "" {
		return ProbeFailureSentinelMS, nil
	}

	pinger, err := probing.NewPinger(sw.MgmtAddr)
	if err != nil {
		return ProbeFailureSentinelMS, nil
	}
	pinger.Count = 1
	pinger.Timeout = s.Timeout

	if err := pinger.Run(); err != nil {
		return ProbeFailureSentinelMS, nil
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return ProbeFailureSentinelMS, nil
	}
	return stats.AvgRtt.Seconds() * 1000.0 / 2.0, nil
}
