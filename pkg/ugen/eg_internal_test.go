package ugen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapirlisp/tapirgo/pkg/transport"
)

// Internal (white-box) tests for the release path, which is only reachable
// in production through a gating node's withEg call (seqUG, OneshotOsc) --
// there is no Operate-level way to drive ADSRRelease from outside the
// package, matching the original design where release is a state-machine
// signal, not a settable parameter.

func TestEgReleaseCapturesLevelAndRampsToZero(t *testing.T) {
	tr := transport.New(1, 120.0, transport.Measure{Beat: 4, Note: 4})
	eg := &egUG{
		attack:  Val(1.0),
		decay:   Val(1.0),
		sustain: Val(0.6),
		release: Val(10.0),
		state:   ADSRAttack,
	}

	// Drive into sustain.
	for i := 0; i < 2; i++ {
		eg.Proc(tr)
		tr.Inc()
	}
	assert.Equal(t, ADSRSustain, eg.GetState())

	eg.SetState(ADSRRelease, 0)
	assert.Equal(t, 0.6, eg.releaseStart, "releaseStart must capture the level at the moment of transition")

	var sig Signal
	for i := 0; i < 10; i++ {
		sig = eg.Proc(tr)
		tr.Inc()
	}
	assert.InDelta(t, 0.0, sig.L, 1e-9)
	assert.Equal(t, ADSRNone, eg.GetState())
}

func TestEgReleaseWithZeroLengthIsImmediate(t *testing.T) {
	tr := transport.New(48000, 120.0, transport.Measure{Beat: 4, Note: 4})
	eg := &egUG{
		attack:  Val(0.0),
		decay:   Val(0.0),
		sustain: Val(0.8),
		release: Val(0.0),
		state:   ADSRAttack,
	}
	eg.Proc(tr) // zero-length attack: transitions to decay
	tr.Inc()
	eg.Proc(tr) // zero-length decay: transitions to sustain
	assert.Equal(t, ADSRSustain, eg.GetState())

	eg.SetState(ADSRRelease, 0)
	sig := eg.Proc(tr)
	assert.Equal(t, 0.0, sig.L)
	assert.Equal(t, ADSRNone, eg.GetState())
}
