// vi: sw=4 ts=4:

/*

	Mnemonic:	server
	Abstract:	The northbound REST surface (C5's doorway, spec §6): a raw
				net/http ServeMux with one HandleFunc per path, reading the
				whole request body with io.ReadAll before unmarshalling --
				the same shape as the teacher's managers/http_api.go
				api_deal_with dispatch, modernised to use encoding/json
				instead of hand-built format strings since the spec defines
				an actual JSON wire contract rather than a semicolon-record
				one. Each handler is a thin translation from HTTP to
				orchestrator calls; all flow/topology semantics live in the
				orchestrator, routing, admission and schedulability packages.
	Date:		2026

*/

package restapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	log "github.com/apex/log"

	"github.com/esdaniels/tegu-mrt/orchestrator"
)

var sheep = log.WithField("component", "restapi")

// SourceAnnouncer is the MSDP client's shape, as seen by the REST surface:
// once a flow is admitted, its source becomes announceable to peer
// controllers (spec §6, MSDP peer protocol). Declared locally rather than
// imported from the msdp package so this package does not need to depend on
// MSDP's transport details -- only on the one capability it consumes.
type SourceAnnouncer interface {
	Announce(ctx context.Context, topic, srcIP string)
}

// Server is the HTTP front end wired to a single Orchestrator.
type Server struct {
	orch      *orchestrator.Orchestrator
	announcer SourceAnnouncer
	mux       *http.ServeMux
}

// New builds a Server bound to orch. Call Handler to obtain the
// http.Handler to pass to http.ListenAndServe (or http.Server.Handler),
// which is how cmd/tegu-mrt wires it up alongside the monitor and MSDP
// goroutines rather than owning the listener itself. announcer may be nil,
// in which case successful registrations are never gossiped to MSDP peers.
func New(orch *orchestrator.Orchestrator, announcer SourceAnnouncer) *Server {
	s := &Server{orch: orch, announcer: announcer, mux: http.NewServeMux()}
	s.mux.HandleFunc("/mrt/register_flow", s.handleRegisterFlow)
	s.mux.HandleFunc("/mrt/register_subscriber", s.handleRegisterSubscriber)
	return s
}

// Handler returns the http.Handler implementing the full REST surface.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// digData reads and returns the full request body, mirroring the teacher's
// dig_data -- a missing or empty body is the caller's job to reject, not
// this helper's.
func digData(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 1<<20))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		sheep.WithError(err).Error("failed to encode response body")
	}
}

type errorResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func writeError(w http.ResponseWriter, status int, comment string) {
	writeJSON(w, status, errorResponse{Status: "ERROR", Comment: comment})
}
