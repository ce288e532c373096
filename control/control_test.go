// File: control/control_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control_test

import (
	"testing"

	"github.com/momentics/cpuvisor/control"
)

func TestTraceEvictsOldest(t *testing.T) {
	tr := control.NewTrace(3)
	for _, op := range []string{"a", "b", "c", "d", "e"} {
		tr.Record(op)
	}
	if tr.Len() != 3 {
		t.Fatalf("len = %d, expected 3", tr.Len())
	}
	entries := tr.Snapshot()
	for i, want := range []string{"c", "d", "e"} {
		if entries[i].Op != want {
			t.Errorf("entry %d = %q, expected %q", i, entries[i].Op, want)
		}
	}
}

func TestTraceMinimumDepth(t *testing.T) {
	tr := control.NewTrace(0)
	tr.Record("a")
	tr.Record("b")
	if tr.Len() != 1 {
		t.Errorf("len = %d, expected depth to be clamped to 1", tr.Len())
	}
	if got := tr.Snapshot()[0].Op; got != "b" {
		t.Errorf("surviving entry = %q, expected %q", got, "b")
	}
}

func TestFirstCallLatchesPerOp(t *testing.T) {
	f := control.NewFirstCall()
	if !f.Observe("x") {
		t.Error("first observation must report true")
	}
	if f.Observe("x") {
		t.Error("second observation must report false")
	}
	if !f.Observe("y") {
		t.Error("a different operation latches independently")
	}
}

func TestProbesDump(t *testing.T) {
	p := control.NewProbes()
	p.Register("answer", func() any { return 42 })
	p.Register("answer", func() any { return 43 }) // replaces

	out := p.Dump()
	if len(out) != 1 {
		t.Fatalf("dump holds %d probes, expected 1", len(out))
	}
	if out["answer"] != 43 {
		t.Errorf("answer = %v, expected 43", out["answer"])
	}
}
