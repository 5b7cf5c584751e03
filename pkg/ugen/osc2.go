package ugen

import (
	"math"
	"math/rand"

	"github.com/tapirlisp/tapirgo/pkg/transport"
)

// --- Rand ---------------------------------------------------------------

// randUG emits a new uniform draw each time its sample counter reaches
// freq, then restarts the count from zero, so successive draws are freq+1
// samples apart (freq is a sample count here, not a frequency in Hz --
// spec.md section 4.4 open question 2: this is preserved exactly from the
// original). Seeded deterministically so dumps and golden-file tests
// reproduce.
type randUG struct {
	rng   *rand.Rand
	freq  Aug
	count uint64
	v     float64
}

// NewRand builds a Rand oscillator.
func NewRand(freq Aug) Aug {
	return New(&randUG{rng: rand.New(rand.NewSource(0)), freq: freq, v: 0.15})
}

func (u *randUG) Walk(f VisitFunc) {
	if f(u.freq) {
		u.freq.Walk(f)
	}
}

func (u *randUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "rand", Slots: []Slot{
		{Name: "freq", Value: dumpSlot(u.freq, shared)},
	}}
}

// Get has no gettable parameters, matching the original's asymmetric
// get/set surface for this variant.
func (u *randUG) Get(name string) (Aug, error) { return Aug{}, errParamNotFound("rand", name) }

func (u *randUG) GetStr(name string) (string, error) {
	_, err := u.Get(name)
	return "", err
}

func (u *randUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "freq":
		u.freq = v
		return true, nil
	default:
		return false, errParamNotFound("rand", name)
	}
}

func (u *randUG) SetStr(name, data string) (bool, error) {
	switch name {
	case "freq":
		v, err := strToVal("rand", name, data)
		if err != nil {
			return false, err
		}
		return u.Set(name, v)
	default:
		return false, errParamNotFound("rand", name)
	}
}

func (u *randUG) Clear(name string) {}

func (u *randUG) Proc(t *transport.Transport) Signal {
	if u.count >= uint64(u.freq.Proc(t).L) {
		u.v = u.rng.Float64()
		u.count = 0
	} else {
		u.count++
	}
	return Signal{L: u.v, R: u.v}
}

func (u *randUG) GetPh() float64 { return 0.0 }
func (u *randUG) SetPh(ph float64) {}
func (u *randUG) GetFreq() Aug   { return Val(0.0) }
func (u *randUG) SetFreq(a Aug)  { u.freq = a }

// --- Phase ----------------------------------------------------------------

// phaseUG rescales an oscillator's bipolar [-1, 1] output into a unipolar
// phase signal in [0.5, 1.5], via root = offset(1, gain(0.5, clip(-1, 1, osc))).
type phaseUG struct {
	root Aug
	osc  Aug
}

func makePhaseRoot(osc Aug) Aug {
	return NewOffset(Val(1.0), NewGain(Val(0.5), NewClip(Val(-1.0), Val(1.0), osc)))
}

// NewPhase builds a Phase node wrapping osc.
func NewPhase(osc Aug) Aug {
	return New(&phaseUG{root: makePhaseRoot(osc), osc: osc})
}

func (u *phaseUG) Walk(f VisitFunc) {
	if f(u.osc) {
		u.osc.Walk(f)
	}
}

func (u *phaseUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "phase", Slots: []Slot{
		{Name: "osc", Value: dumpSlot(u.osc, shared)},
	}}
}

func (u *phaseUG) Get(name string) (Aug, error) {
	switch name {
	case "osc":
		return u.osc, nil
	default:
		return Aug{}, errParamNotFound("phase", name)
	}
}

func (u *phaseUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("phase", name, a)
}

func (u *phaseUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "osc":
		u.osc = v
		u.root = makePhaseRoot(u.osc)
		return true, nil
	default:
		return false, errParamNotFound("phase", name)
	}
}

func (u *phaseUG) SetStr(name, data string) (bool, error) {
	switch name {
	case "osc":
		v, err := strToVal("phase", name, data)
		if err != nil {
			return false, err
		}
		return u.Set(name, v)
	default:
		return false, errParamNotFound("phase", name)
	}
}

func (u *phaseUG) Clear(name string) {}

func (u *phaseUG) Proc(t *transport.Transport) Signal {
	return u.root.Proc(t)
}

func (u *phaseUG) GetPh() float64 {
	var ph float64
	withOsc(u.osc, func(oc OscCapable) { ph = oc.GetPh() })
	return ph
}

func (u *phaseUG) SetPh(ph float64) {
	withOsc(u.osc, func(oc OscCapable) { oc.SetPh(ph) })
}

func (u *phaseUG) GetFreq() Aug { return Val(0.0) }

func (u *phaseUG) SetFreq(freq Aug) {
	withOsc(u.osc, func(oc OscCapable) { oc.SetFreq(freq) })
}

// --- WaveTable --------------------------------------------------------

// waveTableUG reads a fixed table of samples through a driving phase
// oscillator, with linear interpolation between adjacent samples.
type waveTableUG struct {
	table Aug
	ph    Aug
}

const waveTableLen = 256

// NewWaveTableFromOsc renders 256 samples of osc at a synthetic
// sample rate of 128 Hz (one full low-frequency cycle) into a Tab node,
// then builds a WaveTable driven by ph.
func NewWaveTableFromOsc(osc Aug, ph Aug, bpm float64, measure transport.Measure) Aug {
	tmp := transport.New(waveTableLen/2, bpm, measure)
	data := make([]float64, waveTableLen)
	for i := 0; i < waveTableLen; i++ {
		data[i] = osc.Proc(tmp).L
		tmp.Inc()
	}
	return NewWaveTableFromTable(NewTable(data), ph)
}

// NewWaveTableFromTable builds a WaveTable directly from an existing
// Tab node.
func NewWaveTableFromTable(table Aug, ph Aug) Aug {
	return New(&waveTableUG{table: table, ph: ph})
}

func linearInterpol(v1, v2, r float64) float64 {
	r = math.Mod(r, 1.0)
	return v1*r + v2*(1.0-r)
}

func (u *waveTableUG) Walk(f VisitFunc) {
	if f(u.table) {
		u.table.Walk(f)
	}
	if f(u.ph) {
		u.ph.Walk(f)
	}
}

func (u *waveTableUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "wavetable", Slots: []Slot{
		{Name: "table", Value: dumpSlot(u.table, shared)},
		{Name: "ph", Value: dumpSlot(u.ph, shared)},
	}}
}

func (u *waveTableUG) Get(name string) (Aug, error) {
	switch name {
	case "table":
		return u.table, nil
	case "ph":
		return u.ph, nil
	default:
		return Aug{}, errParamNotFound("wavetable", name)
	}
}

func (u *waveTableUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("wavetable", name, a)
}

func (u *waveTableUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "table":
		u.table = v
	case "ph":
		u.ph = v
	default:
		return false, errParamNotFound("wavetable", name)
	}
	return true, nil
}

func (u *waveTableUG) SetStr(name, data string) (bool, error) {
	switch name {
	case "table":
		vals, ok := ParseTableStr(data)
		if !ok {
			return false, errCannotParseNumber("wavetable", name, data)
		}
		u.table = NewTable(vals)
		return true, nil
	case "ph":
		v, err := strToVal("wavetable", name, data)
		if err != nil {
			return false, err
		}
		return u.Set(name, v)
	default:
		return false, errParamNotFound("wavetable", name)
	}
}

func (u *waveTableUG) Clear(name string) {
	switch name {
	case "table":
		u.table = NewTable([]float64{0.0, 0.0})
	case "ph":
		u.ph = Val(0.0)
	}
}

func (u *waveTableUG) Proc(t *transport.Transport) Signal {
	data, ok := tableData(u.table)
	if !ok || len(data) == 0 {
		return Signal{}
	}
	n := len(data)
	length := float64(n)
	p := u.ph.Proc(t).L * length
	pos1 := ((int(math.Floor(p)) % n) + n) % n
	pos2 := ((int(math.Ceil(p)) % n) + n) % n
	frac := p - math.Floor(p)
	v := linearInterpol(data[pos1], data[pos2], frac)
	return Signal{L: v, R: v}
}

func (u *waveTableUG) GetPh() float64 {
	var ph float64
	withOsc(u.ph, func(oc OscCapable) { ph = oc.GetPh() })
	return ph
}

func (u *waveTableUG) SetPh(ph float64) {
	withOsc(u.ph, func(oc OscCapable) { oc.SetPh(ph) })
}

func (u *waveTableUG) GetFreq() Aug { return Val(0.0) }

func (u *waveTableUG) SetFreq(freq Aug) {
	withOsc(u.ph, func(oc OscCapable) { oc.SetFreq(freq) })
}

// --- OneshotOsc -------------------------------------------------------

// oneshotUG gates an oscillator with an envelope generator: it plays osc
// while the envelope is in attack/decay/sustain, resets osc's phase and
// the envelope's state once a full oscillator cycle completes or once
// the envelope releases/idles, and is silent otherwise.
type oneshotUG struct {
	osc Aug
	eg  Aug
}

// NewOneshotOsc builds a one-shot oscillator gated by eg.
func NewOneshotOsc(osc, eg Aug) Aug {
	return New(&oneshotUG{osc: osc, eg: eg})
}

func (u *oneshotUG) Walk(f VisitFunc) {
	if f(u.osc) {
		u.osc.Walk(f)
	}
	if f(u.eg) {
		u.eg.Walk(f)
	}
}

func (u *oneshotUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "oneshot", Slots: []Slot{
		{Name: "osc", Value: dumpSlot(u.osc, shared)},
		{Name: "eg", Value: dumpSlot(u.eg, shared)},
	}}
}

func (u *oneshotUG) Get(name string) (Aug, error) {
	switch name {
	case "osc":
		return u.osc, nil
	case "eg":
		return u.eg, nil
	default:
		return Aug{}, errParamNotFound("oneshot", name)
	}
}

func (u *oneshotUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("oneshot", name, a)
}

func (u *oneshotUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "osc":
		u.osc = v
	case "eg":
		u.eg = v
	default:
		return false, errParamNotFound("oneshot", name)
	}
	return true, nil
}

func (u *oneshotUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("oneshot", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *oneshotUG) Clear(name string) {}

func (u *oneshotUG) Proc(t *transport.Transport) Signal {
	u.eg.Proc(t)

	var ph float64
	state := ADSRNone
	withOsc(u.osc, func(oc OscCapable) { ph = oc.GetPh() })
	withEg(u.eg, func(ec EgCapable) { state = ec.GetState() })

	switch state {
	case ADSRAttack, ADSRDecay, ADSRSustain:
		v := u.osc.Proc(t).L
		if ph >= 1.0 {
			withOsc(u.osc, func(oc OscCapable) { oc.SetPh(0.0) })
			withEg(u.eg, func(ec EgCapable) { ec.SetState(ADSRNone, 0) })
		}
		return Signal{L: v, R: v}
	case ADSRRelease, ADSRNone:
		withOsc(u.osc, func(oc OscCapable) { oc.SetPh(0.0) })
		withEg(u.eg, func(ec EgCapable) { ec.SetState(ADSRNone, 0) })
	}
	return Signal{}
}

func (u *oneshotUG) GetPh() float64 {
	var ph float64
	withOsc(u.osc, func(oc OscCapable) { ph = oc.GetPh() })
	return ph
}

func (u *oneshotUG) SetPh(ph float64) {
	withOsc(u.osc, func(oc OscCapable) { oc.SetPh(ph) })
}

func (u *oneshotUG) GetFreq() Aug {
	var freq Aug = Val(0.0)
	withOsc(u.osc, func(oc OscCapable) { freq = oc.GetFreq() })
	return freq
}

func (u *oneshotUG) SetFreq(freq Aug) {
	withOsc(u.osc, func(oc OscCapable) { oc.SetFreq(freq) })
}

func (u *oneshotUG) GetState() ADSRState {
	state := ADSRNone
	withEg(u.eg, func(ec EgCapable) { state = ec.GetState() })
	return state
}

func (u *oneshotUG) SetState(state ADSRState, elapsed uint64) {
	withEg(u.eg, func(ec EgCapable) { ec.SetState(state, elapsed) })
}
