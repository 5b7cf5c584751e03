package ugen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/tapirlisp/tapirgo/pkg/transport"
	"github.com/tapirlisp/tapirgo/pkg/ugen"
)

// countingUG wraps another UG, counting how many times its Proc body
// actually runs -- used to verify the once-per-tick memoization
// invariant independent of a node's multiplicity in the graph.
type countingUG struct {
	inner ugen.UG
	calls int
}

func (c *countingUG) Walk(f ugen.VisitFunc)             { c.inner.Walk(f) }
func (c *countingUG) Dump(shared []ugen.Aug) ugen.UgNode { return c.inner.Dump(shared) }
func (c *countingUG) Get(n string) (ugen.Aug, error)    { return c.inner.Get(n) }
func (c *countingUG) GetStr(n string) (string, error)   { return c.inner.GetStr(n) }
func (c *countingUG) Set(n string, v ugen.Aug) (bool, error) {
	return c.inner.Set(n, v)
}
func (c *countingUG) SetStr(n, d string) (bool, error) { return c.inner.SetStr(n, d) }
func (c *countingUG) Clear(n string)                   { c.inner.Clear(n) }
func (c *countingUG) Proc(t *transport.Transport) ugen.Signal {
	c.calls++
	return c.inner.Proc(t)
}

func TestMemoizationRunsEachNodeOncePerTick(t *testing.T) {
	tr := transport.New(48000, 120.0, transport.Measure{Beat: 4, Note: 4})

	shared := &countingUG{inner: &sineStub{}}
	sharedAug := ugen.New(shared)

	// Reference the shared node twice: sum(shared, shared).
	root := ugen.NewAdd([]ugen.Aug{sharedAug, sharedAug})

	root.Proc(tr)
	assert.Equal(t, 1, shared.calls)

	root.Proc(tr)
	assert.Equal(t, 1, shared.calls, "second call within the same tick must hit the memo")

	tr.Inc()
	root.Proc(tr)
	assert.Equal(t, 2, shared.calls, "a new tick must re-evaluate exactly once")
}

// sineStub is a minimal UG used only to exercise countingUG; it carries
// no Aug-typed children.
type sineStub struct{}

func (s *sineStub) Walk(f ugen.VisitFunc)              {}
func (s *sineStub) Dump(shared []ugen.Aug) ugen.UgNode { return ugen.UgNode{Op: "stub"} }
func (s *sineStub) Get(n string) (ugen.Aug, error)     { return ugen.Aug{}, nil }
func (s *sineStub) GetStr(n string) (string, error)    { return "", nil }
func (s *sineStub) Set(n string, v ugen.Aug) (bool, error) {
	return true, nil
}
func (s *sineStub) SetStr(n, d string) (bool, error) { return true, nil }
func (s *sineStub) Clear(n string)                   {}
func (s *sineStub) Proc(t *transport.Transport) ugen.Signal {
	return ugen.Signal{L: 1.0, R: 1.0}
}

func TestFirstTickAtZeroStillEvaluates(t *testing.T) {
	tr := transport.New(48000, 120.0, transport.Measure{Beat: 4, Note: 4})
	shared := &countingUG{inner: &sineStub{}}
	a := ugen.New(shared)

	a.Proc(tr)
	assert.Equal(t, 1, shared.calls, "tick 0 must not collide with the lastTick sentinel")
}

func TestValRoundtripsThroughToVal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.Float64().Draw(rt, "v")
		a := ugen.Val(v)
		got, ok := a.ToVal()
		assert.True(rt, ok)
		assert.Equal(rt, v, got)
	})
}
