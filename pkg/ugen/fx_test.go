package ugen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapirlisp/tapirgo/pkg/transport"
	"github.com/tapirlisp/tapirgo/pkg/ugen"
)

// impulseUG emits 1.0 on its first Proc call and 0.0 thereafter.
type impulseUG struct {
	fired bool
}

func (u *impulseUG) Walk(f ugen.VisitFunc)              {}
func (u *impulseUG) Dump(shared []ugen.Aug) ugen.UgNode { return ugen.UgNode{Op: "impulse"} }
func (u *impulseUG) Get(n string) (ugen.Aug, error)     { return ugen.Aug{}, nil }
func (u *impulseUG) GetStr(n string) (string, error)    { return "", nil }
func (u *impulseUG) Set(n string, v ugen.Aug) (bool, error) {
	return true, nil
}
func (u *impulseUG) SetStr(n, d string) (bool, error) { return true, nil }
func (u *impulseUG) Clear(n string)                   {}
func (u *impulseUG) Proc(t *transport.Transport) ugen.Signal {
	if u.fired {
		return ugen.Signal{}
	}
	u.fired = true
	return ugen.Signal{L: 1.0, R: 1.0}
}

// TestDelayImpulseResponse exercises the dry multi-tap echo formula against
// an impulse. With time=0.25s at sample_rate=4, dt = sample_rate*time = 1,
// so every buffer slot that still holds the original impulse contributes a
// tap weighted by feedback^n, giving a geometric decay that ends once the
// impulse ages out of the 2*sample_rate-length buffer.
func TestDelayImpulseResponse(t *testing.T) {
	tr := transport.New(4, 120.0, transport.Measure{Beat: 4, Note: 4})
	src := ugen.New(&impulseUG{})
	delay := ugen.NewDelay(ugen.Val(0.25), ugen.Val(0.5), ugen.Val(1.0), src, 4)

	want := []float64{1, 0.5, 0.25, 0.125, 0.0625, 0.03125, 0.015625, 0.0078125, 0, 0}
	for i, w := range want {
		sig := delay.Proc(tr)
		assert.InDelta(t, w, sig.L, 1e-9, "sample %d", i)
		tr.Inc()
	}
}

func TestDelayRunsPastTwoSecondBufferWithoutPanicking(t *testing.T) {
	sampleRate := uint32(48000)
	delay := ugen.NewDelay(ugen.Val(0.1), ugen.Val(0.3), ugen.Val(0.5), ugen.Val(0.0), sampleRate)
	tr := transport.New(sampleRate, 120.0, transport.Measure{Beat: 4, Note: 4})

	for i := 0; i < 100; i++ {
		delay.Proc(tr)
		tr.Inc()
	}
	// Internal buffer length is fixed at construction; Dump never exposes
	// it directly, so this test only asserts Proc stays well-behaved over
	// more samples than the construction-time sample rate.
	assert.NotPanics(t, func() {
		for i := 0; i < int(sampleRate)*3; i++ {
			delay.Proc(tr)
			tr.Inc()
		}
	})
}

func TestBiquadLowpassConvergesToDCGainOne(t *testing.T) {
	tr := transport.New(48000, 120.0, transport.Measure{Beat: 4, Note: 4})
	lpf := ugen.NewLPFilter(ugen.Val(1000.0), ugen.Val(0.707), ugen.Val(1.0))

	var sig ugen.Signal
	for i := 0; i < 10000; i++ {
		sig = lpf.Proc(tr)
		tr.Inc()
	}

	assert.InDelta(t, 1.0, sig.L, 1e-6)
}
