// File: control/trace.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded trace of recently intercepted operations.

package control

import (
	"sync"
	"time"

	"github.com/eapache/queue"
)

// TraceEntry records one intercepted operation.
type TraceEntry struct {
	Op string
	At time.Time
}

// Trace keeps the most recent intercepted operations in a FIFO of fixed
// depth. Older entries are evicted as new ones arrive.
type Trace struct {
	mu    sync.Mutex
	q     *queue.Queue
	depth int
}

// NewTrace creates a trace keeping at most depth entries.
func NewTrace(depth int) *Trace {
	if depth < 1 {
		depth = 1
	}
	return &Trace{q: queue.New(), depth: depth}
}

// Record appends an operation, evicting the oldest entry when full.
func (t *Trace) Record(op string) {
	t.mu.Lock()
	if t.q.Length() >= t.depth {
		t.q.Remove()
	}
	t.q.Add(TraceEntry{Op: op, At: time.Now()})
	t.mu.Unlock()
}

// Snapshot returns the buffered entries, oldest first.
func (t *Trace) Snapshot() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEntry, 0, t.q.Length())
	for i := 0; i < t.q.Length(); i++ {
		out = append(out, t.q.Get(i).(TraceEntry))
	}
	return out
}

// Len returns the number of buffered entries.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.q.Length()
}
