// vi: sw=4 ts=4:

/*

	Mnemonic:	transport
	Abstract:	A concrete Transport that serializes each Command as a single
				line of JSON and writes it to an io.Writer -- standing in for
				the teacher's managers/agent.go, which buffers/frames JSON
				blobs over a connman-managed socket to an external agent
				process. We keep the framing (one JSON object, newline
				terminated) but write to any io.Writer so the same type
				serves a real agent connection (net.Conn) or a test buffer.
	Date:		2026

*/

package dataplane

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// WriterTransport sends each Command as newline-delimited JSON to an
// underlying io.Writer (typically a net.Conn to the agent process).
type WriterTransport struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterTransport wraps w as a Transport.
func NewWriterTransport(w io.Writer) *WriterTransport {
	return &WriterTransport{w: w}
}

// Send writes cmd as a single JSON line. Concurrent callers are serialized
// so commands from different goroutines never interleave mid-object.
func (t *WriterTransport) Send(_ context.Context, cmd Command) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("dataplane: marshal command: %w", err)
	}
	b = append(b, '\n')
	if _, err := t.w.Write(b); err != nil {
		return fmt.Errorf("dataplane: write to agent: %w", err)
	}
	return nil
}
