package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esdaniels/tegu-mrt/dataplane"
	"github.com/esdaniels/tegu-mrt/ofdb"
	"github.com/esdaniels/tegu-mrt/orchestrator"
)

type nopTransport struct{}

func (nopTransport) Send(context.Context, dataplane.Command) error { return nil }

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

func newTestServer() *Server {
	db := diamondDB()
	orch := orchestrator.New(db, dataplane.New(nopTransport{}))
	return New(orch, nil)
}

func doPost(s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRegisterFlowAcceptsAdmissibleFlow(t *testing.T) {
	s := newTestServer()
	rec := doPost(s, "/mrt/register_flow", registerFlowRequest{
		Topic: "sensors/temp",
		RTAttributes: rtAttributesBody{
			FtI: "sensors/temp", Ci: 5, Pi: 5, Ti: 50, Di: 50, BWi: 10,
			DstIPs: []string{"4"},
		},
		SrcIP: "1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp registerFlowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.NotEmpty(t, resp.CorrelationID)
}

func TestRegisterFlowRejectsOnDeadlineMiss(t *testing.T) {
	s := newTestServer()
	rec := doPost(s, "/mrt/register_flow", registerFlowRequest{
		Topic: "urgent",
		RTAttributes: rtAttributesBody{
			FtI: "urgent", Ci: 0.5, Pi: 1, Ti: 100, Di: 10, BWi: 1,
			DstIPs: []string{"4"},
		},
		SrcIP: "1",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegisterFlowMissingBodyIsBadRequest(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/mrt/register_flow", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterFlowEmptyDstIPsSucceeds(t *testing.T) {
	// spec §4.5: a qi=0 flow may be registered with "a possibly empty set
	// initially", growing only later via register_subscriber.
	s := newTestServer()
	rec := doPost(s, "/mrt/register_flow", registerFlowRequest{
		Topic: "sensors/temp",
		RTAttributes: rtAttributesBody{
			FtI: "sensors/temp", Ci: 5, Pi: 5, Ti: 50, Di: 50, BWi: 10,
		},
		SrcIP: "1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp registerFlowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
}

func TestRegisterFlowUserPropertiesOverrideRTAttributes(t *testing.T) {
	s := newTestServer()
	rec := doPost(s, "/mrt/register_flow", registerFlowRequest{
		Topic:        "sensors/temp",
		RTAttributes: rtAttributesBody{FtI: "sensors/temp", DstIPs: []string{"4"}},
		SrcIP:        "1",
		UserProperties: map[string]string{
			"Ci": "5ms", "Pi": "5", "Ti": "50ms", "Di": "50ms", "BWi": "10Mbps",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterFlowMalformedUserPropertiesIsBadRequest(t *testing.T) {
	s := newTestServer()
	rec := doPost(s, "/mrt/register_flow", registerFlowRequest{
		Topic:        "sensors/temp",
		RTAttributes: rtAttributesBody{FtI: "sensors/temp", DstIPs: []string{"4"}},
		SrcIP:        "1",
		UserProperties: map[string]string{
			"Ci": "5ms", "Pi": "5", "Ti": "50ms", "Di": "50ms",
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterSubscriberGraftsOntoAdmittedFlow(t *testing.T) {
	s := newTestServer()
	rec := doPost(s, "/mrt/register_flow", registerFlowRequest{
		Topic: "sensors/temp",
		RTAttributes: rtAttributesBody{
			FtI: "sensors/temp", Ci: 5, Pi: 5, Ti: 50, Di: 50, BWi: 10,
			DstIPs: []string{"4"},
		},
		SrcIP: "1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doPost(s, "/mrt/register_subscriber", registerSubscriberRequest{
		Topic: "sensors/temp", SubscriberIP: "3",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterSubscriberUnknownTopicIsBadRequest(t *testing.T) {
	s := newTestServer()
	rec := doPost(s, "/mrt/register_subscriber", registerSubscriberRequest{
		Topic: "never-registered", SubscriberIP: "3",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterSubscriberMissingFieldsIsBadRequest(t *testing.T) {
	s := newTestServer()
	rec := doPost(s, "/mrt/register_subscriber", registerSubscriberRequest{Topic: "sensors/temp"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
