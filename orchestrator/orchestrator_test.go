package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esdaniels/tegu-mrt/dataplane"
	"github.com/esdaniels/tegu-mrt/ofdb"
)

type recordingTransport struct {
	sent []dataplane.Command
}

func (r *recordingTransport) Send(_ context.Context, cmd dataplane.Command) error {
	r.sent = append(r.sent, cmd)
	return nil
}

func diamondDB() *ofdb.OFDB {
	db := ofdb.New()
	for _, l := range []*ofdb.Link{
		{Src: "1", Dst: "2", PortOut: 1, PropDelay: 5, BWCapacity: 100},
		{Src: "1", Dst: "3", PortOut: 2, PropDelay: 5, BWCapacity: 100},
		{Src: "2", Dst: "4", PortOut: 1, PropDelay: 5, BWCapacity: 100},
		{Src: "3", Dst: "4", PortOut: 1, PropDelay: 5, BWCapacity: 100},
	} {
		db.AddLink(l)
	}
	return db
}

func TestRegisterAdmitsAndCommitsDirectFlow(t *testing.T) {
	db := diamondDB()
	tr := &recordingTransport{}
	o := New(db, dataplane.New(tr))

	flow := &ofdb.RTAttributes{
		Topic: "sensors/temp", Ci: 5, Pi: 5, Ti: 50, Di: 50, BWi: 10,
		SrcIP: "1", DstIPs: []string{"4"},
	}
	res, err := o.Register(context.Background(), flow)
	require.NoError(t, err)
	assert.True(t, res.Verdict.Admitted)
	assert.NotEmpty(t, res.CorrelationID)
	assert.Equal(t, StateAdmitted, o.State("sensors/temp"))

	got, ok := db.GetFlow("sensors/temp")
	require.True(t, ok)
	assert.Len(t, got.RouteLinks, 2)
	assert.NotZero(t, got.MulticastGroupID)
	assert.NotEmpty(t, tr.sent)
}

func TestRegisterRejectsDeadlineMiss(t *testing.T) {
	db := diamondDB()
	o := New(db, dataplane.New(&recordingTransport{}))

	flow := &ofdb.RTAttributes{
		Topic: "urgent", Ci: 0.5, Pi: 1, Ti: 100, Di: 10, BWi: 1,
		SrcIP: "1", DstIPs: []string{"4"},
	}
	_, err := o.Register(context.Background(), flow)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, StateUnknown, o.State("urgent"))

	_, ok := db.GetFlow("urgent")
	assert.False(t, ok)
}

func TestHandleNewSubscriberGraftsAndReprograms(t *testing.T) {
	db := diamondDB()
	tr := &recordingTransport{}
	o := New(db, dataplane.New(tr))

	flow := &ofdb.RTAttributes{
		Topic: "sensors/temp", Ci: 5, Pi: 5, Ti: 50, Di: 50, BWi: 10,
		SrcIP: "1", DstIPs: []string{"4"},
	}
	_, err := o.Register(context.Background(), flow)
	require.NoError(t, err)

	tr.sent = nil
	err = o.HandleNewSubscriber(context.Background(), "sensors/temp", "3")
	require.NoError(t, err)

	got, _ := db.GetFlow("sensors/temp")
	assert.ElementsMatch(t, []string{"4", "3"}, got.DstIPs)
	assert.NotEmpty(t, tr.sent)
}

func TestHandleNewSubscriberUnknownFlow(t *testing.T) {
	o := New(diamondDB(), dataplane.New(&recordingTransport{}))
	err := o.HandleNewSubscriber(context.Background(), "nope", "3")
	assert.ErrorIs(t, err, ErrUnknownFlow)
}

func TestHandleNewSubscriberIdempotentOnRepeatJoin(t *testing.T) {
	db := diamondDB()
	tr := &recordingTransport{}
	o := New(db, dataplane.New(tr))

	flow := &ofdb.RTAttributes{
		Topic: "sensors/temp", Ci: 5, Pi: 5, Ti: 50, Di: 50, BWi: 10,
		SrcIP: "1", DstIPs: []string{"4"},
	}
	_, err := o.Register(context.Background(), flow)
	require.NoError(t, err)

	require.NoError(t, o.HandleNewSubscriber(context.Background(), "sensors/temp", "4"))
	got, _ := db.GetFlow("sensors/temp")
	assert.Equal(t, []string{"4"}, got.DstIPs)
}
