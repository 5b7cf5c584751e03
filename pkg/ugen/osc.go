package ugen

import (
	"math"
	"strconv"
	"strings"

	"github.com/tapirlisp/tapirgo/pkg/transport"
)

// numToStr renders an Aug's scalar value as a string, or
// CannotRepresentAsString if the Aug isn't a constant.
func numToStr(op, name string, a Aug) (string, error) {
	v, ok := a.ToVal()
	if !ok {
		return "", errCannotRepresentAsString(op, name)
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

// strToVal parses a set_str payload (spaces/newlines stripped per the
// teacher/original convention) into a constant Aug.
func strToVal(op, name, data string) (Aug, error) {
	clean := strings.Map(func(r rune) rune {
		if r == '\n' || r == ' ' {
			return -1
		}
		return r
	}, data)
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return Aug{}, errCannotParseNumber(op, name, data)
	}
	return Val(v), nil
}

// --- Sine -------------------------------------------------------------

type sineUG struct {
	initPh Aug
	ph     float64
	freq   Aug
}

// NewSine builds a sine oscillator: v = sin(init_ph + ph), with phase
// advancing by freq / (sample_rate * pi) per sample (spec.md section 4.4
// open question 1: this unconventional divisor is preserved exactly).
func NewSine(initPh, freq Aug) Aug {
	return New(&sineUG{initPh: initPh, freq: freq})
}

func (u *sineUG) Walk(f VisitFunc) {
	if f(u.initPh) {
		u.initPh.Walk(f)
	}
	if f(u.freq) {
		u.freq.Walk(f)
	}
}

func (u *sineUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "sine", Slots: []Slot{
		{Name: "init_ph", Value: dumpSlot(u.initPh, shared)},
		{Name: "freq", Value: dumpSlot(u.freq, shared)},
	}}
}

func (u *sineUG) Get(name string) (Aug, error) {
	switch name {
	case "init_ph":
		return u.initPh, nil
	case "freq":
		return u.freq, nil
	default:
		return Aug{}, errParamNotFound("sine", name)
	}
}

func (u *sineUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("sine", name, a)
}

func (u *sineUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "init_ph":
		u.initPh = v
	case "freq":
		u.freq = v
	default:
		return false, errParamNotFound("sine", name)
	}
	return true, nil
}

func (u *sineUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("sine", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *sineUG) Clear(name string) {
	switch name {
	case "init_ph", "freq":
		_, _ = u.Set(name, Val(0.0))
	}
}

func (u *sineUG) Proc(t *transport.Transport) Signal {
	initPh := u.initPh.Proc(t).L
	v := math.Sin(initPh + u.ph)
	phDiff := float64(t.SampleRate) * math.Pi
	u.ph += u.freq.Proc(t).L / phDiff
	return Signal{L: v, R: v}
}

func (u *sineUG) GetPh() float64   { return u.ph }
func (u *sineUG) SetPh(ph float64) { u.ph = ph }
func (u *sineUG) GetFreq() Aug     { return u.freq }
func (u *sineUG) SetFreq(a Aug)    { u.freq = a }

// --- shared helper for Tri/Saw/Pulse (2*sample_rate phase divisor) ---

func advancePhase2(ph *float64, initPh, freq Aug, t *transport.Transport) float64 {
	total := initPh.Proc(t).L + *ph
	phDiff := float64(t.SampleRate) * 2.0
	*ph += freq.Proc(t).L / phDiff
	return total
}

// --- Tri ----------------------------------------------------------------

type triUG struct {
	initPh Aug
	ph     float64
	freq   Aug
}

// NewTri builds a triangle oscillator.
func NewTri(initPh, freq Aug) Aug {
	return New(&triUG{initPh: initPh, freq: freq})
}

func (u *triUG) Walk(f VisitFunc) {
	if f(u.initPh) {
		u.initPh.Walk(f)
	}
	if f(u.freq) {
		u.freq.Walk(f)
	}
}

func (u *triUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "tri", Slots: []Slot{
		{Name: "init_ph", Value: dumpSlot(u.initPh, shared)},
		{Name: "freq", Value: dumpSlot(u.freq, shared)},
	}}
}

func (u *triUG) Get(name string) (Aug, error) {
	switch name {
	case "init_ph":
		return u.initPh, nil
	case "freq":
		return u.freq, nil
	default:
		return Aug{}, errParamNotFound("tri", name)
	}
}

func (u *triUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("tri", name, a)
}

func (u *triUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "init_ph":
		u.initPh = v
	case "freq":
		u.freq = v
	default:
		return false, errParamNotFound("tri", name)
	}
	return true, nil
}

func (u *triUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("tri", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *triUG) Clear(name string) {
	switch name {
	case "init_ph", "freq":
		_, _ = u.Set(name, Val(0.0))
	}
}

func (u *triUG) Proc(t *transport.Transport) Signal {
	ph := advancePhase2(&u.ph, u.initPh, u.freq, t)
	x := math.Mod(ph, 1.0)
	if x < 0 {
		x += 1.0
	}
	var v float64
	switch {
	case x >= 3.0/4.0:
		v = 4.0*x - 4.0
	case x >= 1.0/4.0:
		v = -4.0*x + 2.0
	default:
		v = 4.0 * x
	}
	return Signal{L: v, R: v}
}

func (u *triUG) GetPh() float64   { return u.ph }
func (u *triUG) SetPh(ph float64) { u.ph = ph }
func (u *triUG) GetFreq() Aug     { return u.freq }
func (u *triUG) SetFreq(a Aug)    { u.freq = a }

// --- Saw ------------------------------------------------------------

type sawUG struct {
	initPh Aug
	ph     float64
	freq   Aug
}

// NewSaw builds a sawtooth oscillator.
func NewSaw(initPh, freq Aug) Aug {
	return New(&sawUG{initPh: initPh, freq: freq})
}

func (u *sawUG) Walk(f VisitFunc) {
	if f(u.initPh) {
		u.initPh.Walk(f)
	}
	if f(u.freq) {
		u.freq.Walk(f)
	}
}

func (u *sawUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "saw", Slots: []Slot{
		{Name: "init_ph", Value: dumpSlot(u.initPh, shared)},
		{Name: "freq", Value: dumpSlot(u.freq, shared)},
	}}
}

func (u *sawUG) Get(name string) (Aug, error) {
	switch name {
	case "init_ph":
		return u.initPh, nil
	case "freq":
		return u.freq, nil
	default:
		return Aug{}, errParamNotFound("saw", name)
	}
}

func (u *sawUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("saw", name, a)
}

func (u *sawUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "init_ph":
		u.initPh = v
	case "freq":
		u.freq = v
	default:
		return false, errParamNotFound("saw", name)
	}
	return true, nil
}

func (u *sawUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("saw", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *sawUG) Clear(name string) {
	switch name {
	case "init_ph", "freq":
		_, _ = u.Set(name, Val(0.0))
	}
}

func (u *sawUG) Proc(t *transport.Transport) Signal {
	ph := advancePhase2(&u.ph, u.initPh, u.freq, t)
	x := math.Mod(ph, 1.0)
	if x < 0 {
		x += 1.0
	}
	var v float64
	if x >= 0.5 {
		v = 2.0*x - 2.0
	} else {
		v = 2.0 * x
	}
	return Signal{L: v, R: v}
}

func (u *sawUG) GetPh() float64   { return u.ph }
func (u *sawUG) SetPh(ph float64) { u.ph = ph }
func (u *sawUG) GetFreq() Aug     { return u.freq }
func (u *sawUG) SetFreq(a Aug)    { u.freq = a }

// --- Pulse ------------------------------------------------------------

type pulseUG struct {
	initPh Aug
	ph     float64
	freq   Aug
	duty   Aug
}

// NewPulse builds a pulse (variable duty square) oscillator.
func NewPulse(initPh, freq, duty Aug) Aug {
	return New(&pulseUG{initPh: initPh, freq: freq, duty: duty})
}

func (u *pulseUG) Walk(f VisitFunc) {
	if f(u.initPh) {
		u.initPh.Walk(f)
	}
	if f(u.freq) {
		u.freq.Walk(f)
	}
	if f(u.duty) {
		u.duty.Walk(f)
	}
}

func (u *pulseUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "pulse", Slots: []Slot{
		{Name: "init_ph", Value: dumpSlot(u.initPh, shared)},
		{Name: "freq", Value: dumpSlot(u.freq, shared)},
		{Name: "duty", Value: dumpSlot(u.duty, shared)},
	}}
}

func (u *pulseUG) Get(name string) (Aug, error) {
	switch name {
	case "init_ph":
		return u.initPh, nil
	case "freq":
		return u.freq, nil
	case "duty":
		return u.duty, nil
	default:
		return Aug{}, errParamNotFound("pulse", name)
	}
}

func (u *pulseUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("pulse", name, a)
}

func (u *pulseUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "init_ph":
		u.initPh = v
	case "freq":
		u.freq = v
	case "duty":
		u.duty = v
	default:
		return false, errParamNotFound("pulse", name)
	}
	return true, nil
}

func (u *pulseUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("pulse", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *pulseUG) Clear(name string) {
	switch name {
	case "init_ph", "freq", "duty":
		_, _ = u.Set(name, Val(0.0))
	}
}

func (u *pulseUG) Proc(t *transport.Transport) Signal {
	ph := advancePhase2(&u.ph, u.initPh, u.freq, t)
	duty := u.duty.Proc(t).L
	x := math.Mod(ph, 1.0)
	if x < 0 {
		x += 1.0
	}
	var v float64
	if x < duty {
		v = 1.0
	} else {
		v = -1.0
	}
	return Signal{L: v, R: v}
}

func (u *pulseUG) GetPh() float64   { return u.ph }
func (u *pulseUG) SetPh(ph float64) { u.ph = ph }
func (u *pulseUG) GetFreq() Aug     { return u.freq }
func (u *pulseUG) SetFreq(a Aug)    { u.freq = a }
