package ofdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diamondLinks() []*Link {
	return []*Link{
		{Src: "1", Dst: "2", PortOut: 1, PropDelay: 5, BWCapacity: 100},
		{Src: "1", Dst: "3", PortOut: 2, PropDelay: 5, BWCapacity: 100},
		{Src: "2", Dst: "4", PortOut: 1, PropDelay: 5, BWCapacity: 100},
		{Src: "3", Dst: "4", PortOut: 1, PropDelay: 5, BWCapacity: 100},
	}
}

func TestAddFlowLockedAccumulatesBandwidth(t *testing.T) {
	db := New()
	links := diamondLinks()
	for _, l := range links {
		db.AddLink(l)
	}

	f := &RTAttributes{Topic: "t1", BWi: 10, RouteLinks: []*Link{links[0], links[2]}}
	db.Lock()
	db.AddFlowLocked(f)
	db.Unlock()

	assert.Equal(t, 10.0, links[0].BWUsed)
	assert.Equal(t, 10.0, links[2].BWUsed)
	assert.Equal(t, 0.0, links[1].BWUsed)

	got, ok := db.GetFlow("t1")
	require.True(t, ok)
	assert.Equal(t, f, got)
}

func TestRemoveFlowLockedReleasesBandwidth(t *testing.T) {
	db := New()
	links := diamondLinks()
	for _, l := range links {
		db.AddLink(l)
	}
	f := &RTAttributes{Topic: "t1", BWi: 10, RouteLinks: []*Link{links[0]}}
	db.Lock()
	db.AddFlowLocked(f)
	db.RemoveFlowLocked("t1")
	db.Unlock()

	assert.Equal(t, 0.0, links[0].BWUsed)
	_, ok := db.GetFlow("t1")
	assert.False(t, ok)
}

func TestReplaceRouteLockedAdjustsOnlyChangedLinks(t *testing.T) {
	db := New()
	links := diamondLinks()
	for _, l := range links {
		db.AddLink(l)
	}
	f := &RTAttributes{Topic: "t1", BWi: 5, RouteLinks: []*Link{links[0], links[2]}}
	db.Lock()
	db.AddFlowLocked(f)
	db.ReplaceRouteLocked(f, []*Link{links[0], links[3], links[1]})
	db.Unlock()

	assert.Equal(t, 5.0, links[0].BWUsed) // stayed in the route
	assert.Equal(t, 0.0, links[2].BWUsed) // left the route
	assert.Equal(t, 5.0, links[3].BWUsed) // joined
	assert.Equal(t, 5.0, links[1].BWUsed) // joined
}

func TestAddSubscriberLockedIsIdempotent(t *testing.T) {
	db := New()
	db.Lock()
	first := db.AddSubscriberLocked("t1", "10.0.0.5")
	second := db.AddSubscriberLocked("t1", "10.0.0.5")
	db.Unlock()

	assert.True(t, first)
	assert.False(t, second)
	assert.ElementsMatch(t, []string{"10.0.0.5"}, db.ListSubscribers("t1"))
}

func TestLinkUtilizationCapsAndDefaults(t *testing.T) {
	l := &Link{BWCapacity: 0}
	assert.Equal(t, 0.99, l.Utilization())

	l = &Link{BWCapacity: 100, BWUsed: 150}
	assert.Equal(t, 0.99, l.Utilization())

	l = &Link{BWCapacity: 100, BWUsed: 50}
	assert.Equal(t, 0.5, l.Utilization())
}

func TestLinkTransmissionDelayZeroCapacity(t *testing.T) {
	l := &Link{BWCapacity: 0}
	assert.Equal(t, 0.0, l.TransmissionDelay(500))

	l = &Link{BWCapacity: 100}
	assert.InDelta(t, 0.005, l.TransmissionDelay(500), 1e-9)
}
