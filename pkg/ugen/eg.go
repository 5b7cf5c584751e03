package ugen

import "github.com/tapirlisp/tapirgo/pkg/transport"

// egUG is an ADSR envelope generator: attack/decay/release are durations
// in seconds, sustain is a level in [0, 1]. It outputs its current level
// as a mono signal and exposes EgCapable so a gating node (OneshotOsc) can
// read and drive its state machine directly.
type egUG struct {
	attack  Aug
	decay   Aug
	sustain Aug
	release Aug

	state        ADSRState
	elapsed      uint64
	level        float64
	releaseStart float64
}

// NewEg builds an envelope generator starting in the attack phase.
func NewEg(attack, decay, sustain, release Aug) Aug {
	return New(&egUG{attack: attack, decay: decay, sustain: sustain, release: release, state: ADSRAttack})
}

func (u *egUG) Walk(f VisitFunc) {
	if f(u.attack) {
		u.attack.Walk(f)
	}
	if f(u.decay) {
		u.decay.Walk(f)
	}
	if f(u.sustain) {
		u.sustain.Walk(f)
	}
	if f(u.release) {
		u.release.Walk(f)
	}
}

func (u *egUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "eg", Slots: []Slot{
		{Name: "attack", Value: dumpSlot(u.attack, shared)},
		{Name: "decay", Value: dumpSlot(u.decay, shared)},
		{Name: "sustain", Value: dumpSlot(u.sustain, shared)},
		{Name: "release", Value: dumpSlot(u.release, shared)},
	}}
}

func (u *egUG) Get(name string) (Aug, error) {
	switch name {
	case "attack":
		return u.attack, nil
	case "decay":
		return u.decay, nil
	case "sustain":
		return u.sustain, nil
	case "release":
		return u.release, nil
	default:
		return Aug{}, errParamNotFound("eg", name)
	}
}

func (u *egUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("eg", name, a)
}

func (u *egUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "attack":
		u.attack = v
	case "decay":
		u.decay = v
	case "sustain":
		u.sustain = v
	case "release":
		u.release = v
	default:
		return false, errParamNotFound("eg", name)
	}
	return true, nil
}

func (u *egUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("eg", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *egUG) Clear(name string) {
	switch name {
	case "attack", "decay", "sustain", "release":
		_, _ = u.Set(name, Val(0.0))
	}
}

func (u *egUG) Proc(t *transport.Transport) Signal {
	switch u.state {
	case ADSRAttack:
		attackSamples := float64(t.SecToSamples(u.attack.Proc(t).L))
		if attackSamples <= 0 {
			u.level = 1.0
			u.state = ADSRDecay
			u.elapsed = 0
			break
		}
		u.elapsed++
		u.level = float64(u.elapsed) / attackSamples
		if u.level >= 1.0 {
			u.level = 1.0
			u.state = ADSRDecay
			u.elapsed = 0
		}
	case ADSRDecay:
		decaySamples := float64(t.SecToSamples(u.decay.Proc(t).L))
		sustainLevel := u.sustain.Proc(t).L
		if decaySamples <= 0 {
			u.level = sustainLevel
			u.state = ADSRSustain
			u.elapsed = 0
			break
		}
		u.elapsed++
		frac := float64(u.elapsed) / decaySamples
		u.level = 1.0 - (1.0-sustainLevel)*frac
		if frac >= 1.0 {
			u.level = sustainLevel
			u.state = ADSRSustain
			u.elapsed = 0
		}
	case ADSRSustain:
		u.level = u.sustain.Proc(t).L
	case ADSRRelease:
		releaseSamples := float64(t.SecToSamples(u.release.Proc(t).L))
		if releaseSamples <= 0 || u.level <= 0.0001 {
			u.level = 0
			u.state = ADSRNone
			u.elapsed = 0
			break
		}
		u.elapsed++
		frac := float64(u.elapsed) / releaseSamples
		if frac >= 1.0 {
			frac = 1.0
		}
		u.level = u.releaseStart * (1.0 - frac)
		if u.level <= 0.0001 {
			u.level = 0
			u.state = ADSRNone
			u.elapsed = 0
		}
	case ADSRNone:
		u.level = 0
	}
	return Signal{L: u.level, R: u.level}
}

func (u *egUG) GetState() ADSRState { return u.state }

func (u *egUG) SetState(state ADSRState, elapsed uint64) {
	if state == ADSRRelease {
		u.releaseStart = u.level
	}
	u.state = state
	u.elapsed = elapsed
}
