// vi: sw=4 ts=4:

/*

	Mnemonic:	handlers
	Abstract:	Request/response bodies and handlers for the two northbound
				operations named in spec §6: register_flow and
				register_subscriber. Validation failures (missing or
				unparsable fields) answer 400, per §7's error taxonomy;
				admission/routing infeasibility answers 503 with a
				diagnostic comment; success answers 200. No state change
				occurs on either a 400 or a 503 response.
	Date:		2026

*/

package restapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/esdaniels/tegu-mrt/flowdesc"
	"github.com/esdaniels/tegu-mrt/ofdb"
	"github.com/esdaniels/tegu-mrt/orchestrator"
)

// rtAttributesBody is the wire shape of the rt_attributes object carried by
// a register_flow request; field names follow the spec's glossary (ft_i,
// qi, ci, pi, ti, di, bwi) rather than Go convention, since the REST
// contract is fixed by §6.
type rtAttributesBody struct {
	FtI     string   `json:"ft_i"`
	Qi      int      `json:"qi"`
	Ci      float64  `json:"ci"`
	Pi      int      `json:"pi"`
	Ti      float64  `json:"ti"`
	Di      float64  `json:"di"`
	BWi     float64  `json:"bwi"`
	DstIPs  []string `json:"dst_ips"`
}

// registerFlowRequest is the full register_flow body.
type registerFlowRequest struct {
	Topic        string           `json:"topic"`
	RTAttributes rtAttributesBody `json:"rt_attributes"`
	SrcIP        string           `json:"src_ip"`
	BrokerIP     string           `json:"broker_ip"`
	// UserProperties, when present, are the raw MQTT v5 user-property
	// key/value pairs a broker-side monitor forwards alongside a publish,
	// under the same strict Ci/Pi/Ti/Di/BWi contract flowdesc.Parse enforces
	// (spec §6). When set, these take precedence over rt_attributes' own
	// Ci/Pi/Ti/Di/BWi fields, so a caller can forward the raw MQTT properties
	// without parsing them itself first.
	UserProperties map[string]string `json:"user_properties,omitempty"`
}

type registerFlowResponse struct {
	Status        string `json:"status"`
	Comment       string `json:"comment"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// handleRegisterFlow implements POST /mrt/register_flow.
func (s *Server) handleRegisterFlow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "register_flow requires POST")
		return
	}

	data, err := digData(r)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "missing request body")
		return
	}

	var req registerFlowRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
		return
	}

	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "missing topic")
		return
	}
	if req.SrcIP == "" {
		writeError(w, http.StatusBadRequest, "missing src_ip")
		return
	}
	// dst_ips may legitimately be empty here: §4.5 allows a qi=0 flow to be
	// registered with "a possibly empty set initially", growing only later
	// via register_subscriber -- so no minimum-length check belongs here.

	attrs := &ofdb.RTAttributes{
		Topic:  req.Topic,
		Qi:     req.RTAttributes.Qi,
		Ci:     req.RTAttributes.Ci,
		Pi:     req.RTAttributes.Pi,
		Ti:     req.RTAttributes.Ti,
		Di:     req.RTAttributes.Di,
		BWi:    req.RTAttributes.BWi,
		SrcIP:  req.SrcIP,
		DstIPs: req.RTAttributes.DstIPs,
	}
	if req.BrokerIP != "" {
		attrs.BrokerIPs = []string{req.BrokerIP}
	}

	if len(req.UserProperties) > 0 {
		desc, err := flowdesc.Parse(req.UserProperties)
		if err != nil {
			writeError(w, http.StatusBadRequest, "user_properties: "+err.Error())
			return
		}
		attrs.Ci, attrs.Pi, attrs.Ti, attrs.Di, attrs.BWi = desc.Ci, desc.Pi, desc.Ti, desc.Di, desc.BWi
	}

	result, err := s.orch.Register(r.Context(), attrs)
	if err != nil {
		if errors.Is(err, orchestrator.ErrRejected) {
			writeJSON(w, http.StatusServiceUnavailable, registerFlowResponse{
				Status:        "REJECTED",
				Comment:       result.Verdict.String(),
				CorrelationID: result.CorrelationID,
			})
			return
		}
		if errors.Is(err, orchestrator.ErrNoRoute) {
			writeJSON(w, http.StatusServiceUnavailable, registerFlowResponse{
				Status:        "REJECTED",
				Comment:       "no route available for requested destinations",
				CorrelationID: result.CorrelationID,
			})
			return
		}
		sheep.WithField("topic", req.Topic).WithError(err).Error("register_flow failed")
		writeJSON(w, http.StatusServiceUnavailable, registerFlowResponse{
			Status:        "REJECTED",
			Comment:       err.Error(),
			CorrelationID: result.CorrelationID,
		})
		return
	}

	if s.announcer != nil {
		s.announcer.Announce(r.Context(), attrs.Topic, attrs.SrcIP)
	}

	writeJSON(w, http.StatusOK, registerFlowResponse{
		Status:        "OK",
		Comment:       "Flow Registered",
		CorrelationID: result.CorrelationID,
	})
}

// registerSubscriberRequest is the register_subscriber body.
type registerSubscriberRequest struct {
	Topic         string `json:"topic"`
	SubscriberIP  string `json:"subscriber_ip"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// handleRegisterSubscriber implements POST /mrt/register_subscriber.
func (s *Server) handleRegisterSubscriber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "register_subscriber requires POST")
		return
	}

	data, err := digData(r)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "missing request body")
		return
	}

	var req registerSubscriberRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
		return
	}
	if req.Topic == "" || req.SubscriberIP == "" {
		writeError(w, http.StatusBadRequest, "missing topic or subscriber_ip")
		return
	}

	if err := s.orch.HandleNewSubscriber(r.Context(), req.Topic, req.SubscriberIP); err != nil {
		if errors.Is(err, orchestrator.ErrUnknownFlow) {
			writeError(w, http.StatusBadRequest, "unknown topic: "+req.Topic)
			return
		}
		sheep.WithField("topic", req.Topic).WithError(err).Error("register_subscriber failed")
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "REJECTED", Comment: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "OK", Comment: "Subscriber Registered"})
}
