package ugen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapirlisp/tapirgo/pkg/transport"
	"github.com/tapirlisp/tapirgo/pkg/ugen"
	"github.com/tapirlisp/tapirgo/pkg/ugen/fixture"
)

// probeVoice stands in for a real Osc+Eg composite, recording every
// SetFreq/SetState call a sequencer makes against it so tests can assert on
// trigger timing without depending on real oscillator/envelope math.
type probeVoice struct {
	freq     ugen.Aug
	ph       float64
	state    ugen.ADSRState
	freqLog  []float64
	stateLog []ugen.ADSRState
}

func (p *probeVoice) Walk(f ugen.VisitFunc)              {}
func (p *probeVoice) Dump(shared []ugen.Aug) ugen.UgNode { return ugen.UgNode{Op: "probe"} }
func (p *probeVoice) Get(n string) (ugen.Aug, error)     { return ugen.Aug{}, nil }
func (p *probeVoice) GetStr(n string) (string, error)    { return "", nil }
func (p *probeVoice) Set(n string, v ugen.Aug) (bool, error) {
	return true, nil
}
func (p *probeVoice) SetStr(n, d string) (bool, error) { return true, nil }
func (p *probeVoice) Clear(n string)                   {}
func (p *probeVoice) Proc(t *transport.Transport) ugen.Signal {
	return ugen.Signal{}
}

func (p *probeVoice) GetPh() float64 { return p.ph }
func (p *probeVoice) SetPh(ph float64) {
	p.ph = ph
}
func (p *probeVoice) GetFreq() ugen.Aug { return p.freq }
func (p *probeVoice) SetFreq(a ugen.Aug) {
	p.freq = a
	if v, ok := a.ToVal(); ok {
		p.freqLog = append(p.freqLog, v)
	}
}

func (p *probeVoice) GetState() ugen.ADSRState { return p.state }
func (p *probeVoice) SetState(state ugen.ADSRState, elapsed uint64) {
	p.state = state
	p.stateLog = append(p.stateLog, state)
}

// TestSeqTriggersNotesRestsAndLoopsOnSchedule drives a seq over one full
// cycle of fixture.TestPattern (note c4:4, rest:4, kick:8, loop) at a tiny
// sample rate chosen so every message boundary lands on an exact tick,
// and checks the trigger sequence the seq drives into its voice.
func TestSeqTriggersNotesRestsAndLoopsOnSchedule(t *testing.T) {
	tr := transport.New(8, 120.0, transport.Measure{Beat: 4, Note: 4})
	probe := &probeVoice{}
	voice := ugen.New(probe)
	pattern := ugen.NewPattern(fixture.ClonePattern())
	seq := ugen.NewSeq(pattern, voice)

	for i := 0; i < 11; i++ {
		seq.Proc(tr)
		tr.Inc()
	}

	c4 := ugen.NoteToFreq(ugen.Pitch{Kind: ugen.PitchNote, NoteNum: 0, Octave: 4})
	wantFreqs := []float64{c4, 60.0, c4}
	wantStates := []ugen.ADSRState{
		ugen.ADSRAttack, // tick0: note c4 triggers
		ugen.ADSRRelease, // tick4: rest triggers release
		ugen.ADSRAttack,  // tick8: kick triggers
		ugen.ADSRAttack,  // tick10: pattern loops back to note c4
	}

	assert.Equal(t, wantFreqs, probe.freqLog)
	assert.Equal(t, wantStates, probe.stateLog)
}

// TestSeqUsesRealVoiceWithoutPanicking exercises the seq against an actual
// OneshotOsc+Eg voice (the production composition) to confirm the two
// packages compose, without pinning exact sample values.
func TestSeqUsesRealVoiceWithoutPanicking(t *testing.T) {
	tr := fixture.DefaultTransport()
	voice := fixture.SimpleVoice(220.0, 10, 10, 0.5, 10)
	pattern := ugen.NewPattern(fixture.ClonePattern())
	seq := ugen.NewSeq(pattern, voice)

	assert.NotPanics(t, func() {
		for i := 0; i < 100; i++ {
			seq.Proc(tr)
			tr.Inc()
		}
	})
}

func TestSeqSetStrParsesPattern(t *testing.T) {
	voice := ugen.New(&probeVoice{})
	seq := ugen.NewSeq(ugen.NewPattern(nil), voice)

	ok, err := seq.SetStr("pattern", "c4:4 rest:4 loop")
	assert.NoError(t, err)
	assert.True(t, ok)

	_, err = seq.SetStr("pattern", "not-a-valid-token")
	assert.Error(t, err)
}
