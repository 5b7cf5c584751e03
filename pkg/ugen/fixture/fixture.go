// Package fixture provides small, hand-built unit-generator graphs and
// pattern data for tests, standing in for the tapirlisp parser/evaluator
// (out of scope for this engine -- see SPEC_FULL.md).
package fixture

import (
	clone "github.com/huandu/go-clone/generic"

	"github.com/tapirlisp/tapirgo/pkg/transport"
	"github.com/tapirlisp/tapirgo/pkg/ugen"
)

// DefaultTransport returns a 48kHz, 120bpm, 4/4 transport for tests.
func DefaultTransport() *transport.Transport {
	return transport.New(48000, 120.0, transport.Measure{Beat: 4, Note: 4})
}

// SimpleSine builds a bare sine oscillator at freq Hz.
func SimpleSine(freq float64) ugen.Aug {
	return ugen.NewSine(ugen.Val(0.0), ugen.Val(freq))
}

// SimpleVoice builds a one-shot sine gated by a short ADSR envelope,
// suitable as a seq's driven voice in tests. attack/decay/release are
// in seconds, sustain is a level in [0, 1].
func SimpleVoice(freq float64, attack, decay, sustain, release float64) ugen.Aug {
	osc := ugen.NewSine(ugen.Val(0.0), ugen.Val(freq))
	eg := ugen.NewEg(ugen.Val(attack), ugen.Val(decay), ugen.Val(sustain), ugen.Val(release))
	return ugen.NewOneshotOsc(osc, eg)
}

// TestPattern is a canonical four-message pattern (note, rest, kick, loop)
// used by the sequencer tests and the tapirplay demo graph.
var TestPattern = []ugen.Message{
	{Kind: ugen.MsgNote, Pitch: ugen.Pitch{Kind: ugen.PitchNote, NoteNum: 0, Octave: 4}, Length: 4},
	{Kind: ugen.MsgNote, Pitch: ugen.Pitch{Kind: ugen.PitchRest}, Length: 4},
	{Kind: ugen.MsgNote, Pitch: ugen.Pitch{Kind: ugen.PitchKick}, Length: 8},
	{Kind: ugen.MsgLoop},
}

// ClonePattern returns a deep copy of TestPattern so concurrent test
// cases never share backing message slices.
func ClonePattern() []ugen.Message {
	return clone.Clone(TestPattern)
}
