package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/esdaniels/tegu-mrt/ofdb"
)

func diamondRoute() []*ofdb.Link {
	return []*ofdb.Link{
		{Src: "1", Dst: "2", PropDelay: 5, BWCapacity: 100},
		{Src: "2", Dst: "4", PropDelay: 5, BWCapacity: 100},
	}
}

func TestCheckRejectsOwnDeadlineMiss(t *testing.T) {
	a := &ofdb.RTAttributes{
		Topic: "A", Ci: 0.5, Pi: 1, Ti: 100, Di: 10, BWi: 1,
		SrcIP: "1", DstIPs: []string{"4"}, RouteLinks: diamondRoute(),
	}
	v := Check(a, nil)
	assert.False(t, v.Admitted)
	assert.Equal(t, "A", v.ViolatedFlow)
}

func TestCheckAdmitsLowInterferenceCandidateThenRevalidatesExisting(t *testing.T) {
	b := &ofdb.RTAttributes{
		Topic: "B", Ci: 5, Pi: 5, Ti: 50, Di: 50, BWi: 10,
		SrcIP: "1", DstIPs: []string{"4"}, RouteLinks: diamondRoute(),
	}
	vb := Check(b, nil)
	assert.True(t, vb.Admitted)

	c := &ofdb.RTAttributes{
		Topic: "C", Ci: 0.5, Pi: 10, Ti: 20, Di: 50, BWi: 1,
		SrcIP: "1", DstIPs: []string{"4"}, RouteLinks: diamondRoute(),
	}
	vc := Check(c, []*ofdb.RTAttributes{b})
	assert.True(t, vc.Admitted)
}
