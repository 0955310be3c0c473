// vi: sw=4 ts=4:

/*

	Mnemonic:	msdp
	Abstract:	MSDP-style inter-controller source-active gossip: a one-shot,
				connection-close-framed JSON message per announcement,
				exactly like original_source/sdn_controller/msdp.py's
				MSDP_Signaling. The teacher's own managers code favors raw
				net.Conn handling over a framing library for this kind of
				short-lived control message (see managers/agent.go's
				connman-managed sockets), so this package does the same with
				stdlib net + encoding/json. The one addition over the Python
				original is a bounded backoff retry on send -- still
				fire-and-forget from the caller's point of view, never
				surfaced as an error to the flow orchestrator (spec §7: MSDP
				errors are logged-only).
	Date:		2026

*/

package msdp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	log "github.com/apex/log"
)

var sheep = log.WithField("component", "msdp")

// DefaultPort is the well-known MSDP signaling port used by the original.
const DefaultPort = 1791

// saMessage is the wire shape of a Source Active announcement.
type saMessage struct {
	Type       string `json:"type"`
	Topic      string `json:"topic"`
	SrcIP      string `json:"src_ip"`
	OriginConn string `json:"origin_conn"`
}

// SourceTable is the local controller's view of which origin domain first
// announced a topic's source.
type SourceTable struct {
	mu     sync.Mutex
	active map[string]string // topic -> src_ip
}

// NewSourceTable returns an empty SourceTable.
func NewSourceTable() *SourceTable {
	return &SourceTable{active: make(map[string]string)}
}

// RecordIfAbsent records srcIP as the source for topic only if no source is
// already known -- matching msdp.py's process_sa_message, which never
// overwrites an existing entry.
func (t *SourceTable) RecordIfAbsent(topic, srcIP string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.active[topic]; ok {
		return false
	}
	t.active[topic] = srcIP
	return true
}

// SourceOf returns the known source IP for topic, if any.
func (t *SourceTable) SourceOf(topic string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ip, ok := t.active[topic]
	return ip, ok
}

// Server listens for SA announcements from peer controllers.
type Server struct {
	myIP  string
	table *SourceTable
}

// NewServer builds a Server that records incoming announcements into table.
func NewServer(myIP string, table *SourceTable) *Server {
	return &Server{myIP: myIP, table: table}
}

// ListenAndServe accepts connections on addr (host:port, typically
// ":1791") until ctx is canceled. Each connection carries exactly one JSON
// object; the connection is closed after it is read, mirroring the
// Python original's one-shot per-connection protocol.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("msdp: listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	sheep.WithField("addr", addr).Info("MSDP listener started")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				sheep.WithError(err).Error("listener error")
				continue
			}
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	peerAddr := conn.RemoteAddr().String()
	data, err := io.ReadAll(io.LimitReader(conn, 64*1024))
	if err != nil {
		sheep.WithField("peer", peerAddr).WithError(err).Error("peer read error")
		return
	}
	if len(data) == 0 {
		return
	}

	var msg saMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		sheep.WithField("peer", peerAddr).WithError(err).Error("malformed SA message")
		return
	}
	if msg.Type != "SA" {
		return
	}

	sheep.WithField("topic", msg.Topic).WithField("src_ip", msg.SrcIP).WithField("peer", peerAddr).Info("received SA")
	s.table.RecordIfAbsent(msg.Topic, msg.SrcIP)
}

// Client announces source-active topics to a fixed set of peer controllers.
type Client struct {
	myIP  string
	peers []string
}

// NewClient builds a Client that gossips to peers (host[:port] entries; a
// missing port defaults to DefaultPort).
func NewClient(myIP string, peers []string) *Client {
	return &Client{myIP: myIP, peers: peers}
}

// Announce sends a Source Active message for topic/srcIP to every peer,
// each on its own goroutine with a short bounded backoff retry. It never
// blocks the caller waiting for delivery and never returns an error --
// delivery failures are logged only (spec §7: "best-effort... do not affect
// local flows").
func (c *Client) Announce(ctx context.Context, topic, srcIP string) {
	msg, err := json.Marshal(saMessage{Type: "SA", Topic: topic, SrcIP: srcIP, OriginConn: c.myIP})
	if err != nil {
		sheep.WithError(err).Error("failed to encode SA message")
		return
	}

	for _, peer := range c.peers {
		go c.sendWithRetry(ctx, peer, msg)
	}
}

func (c *Client) sendWithRetry(ctx context.Context, peer string, msg []byte) {
	addr := peer
	if _, _, err := net.SplitHostPort(peer); err != nil {
		addr = fmt.Sprintf("%s:%d", peer, DefaultPort)
	}

	op := func() error {
		conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
		if err != nil {
			return err
		}
		defer conn.Close()
		_, err = conn.Write(msg)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		sheep.WithField("peer", addr).WithError(err).Warn("failed to deliver SA message after retries")
		return
	}
	sheep.WithField("peer", addr).Info("delivered SA message")
}
