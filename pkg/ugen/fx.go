package ugen

import (
	"math"

	"github.com/tapirlisp/tapirgo/pkg/transport"
)

// --- LPFilter -----------------------------------------------------------

// lpfUG is a second-order RBJ biquad lowpass filter.
type lpfUG struct {
	inbuf  [2]Signal
	outbuf [2]Signal
	freq   Aug
	q      Aug
	src    Aug
}

// NewLPFilter builds an RBJ biquad lowpass filter.
func NewLPFilter(freq, q, src Aug) Aug {
	return New(&lpfUG{freq: freq, q: q, src: src})
}

func (u *lpfUG) Walk(f VisitFunc) {
	if f(u.freq) {
		u.freq.Walk(f)
	}
	if f(u.q) {
		u.q.Walk(f)
	}
	if f(u.src) {
		u.src.Walk(f)
	}
}

func (u *lpfUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "lpf", Slots: []Slot{
		{Name: "freq", Value: dumpSlot(u.freq, shared)},
		{Name: "q", Value: dumpSlot(u.q, shared)},
		{Name: "src", Value: dumpSlot(u.src, shared)},
	}}
}

func (u *lpfUG) Get(name string) (Aug, error) {
	switch name {
	case "freq":
		return u.freq, nil
	case "q":
		return u.q, nil
	case "src":
		return u.src, nil
	default:
		return Aug{}, errParamNotFound("lpf", name)
	}
}

func (u *lpfUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("lpf", name, a)
}

func (u *lpfUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "freq":
		u.freq = v
	case "q":
		u.q = v
	case "src":
		u.src = v
	default:
		return false, errParamNotFound("lpf", name)
	}
	return true, nil
}

func (u *lpfUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("lpf", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *lpfUG) Clear(name string) {
	switch name {
	case "freq", "q", "src":
		_, _ = u.Set(name, Val(0.0))
	}
}

func (u *lpfUG) Proc(t *transport.Transport) Signal {
	freq := u.freq.Proc(t).L
	q := u.q.Proc(t).L
	src := u.src.Proc(t)

	w := (2.0 * math.Pi * freq) / float64(t.SampleRate)
	sw, cw := math.Sin(w), math.Cos(w)
	a := sw / (2.0 * q)
	b0, b1, b2 := (1.0-cw)/2.0, 1.0-cw, (1.0-cw)/2.0
	a0, a1, a2 := 1.0+a, -2.0*cw, 1.0-a

	filter := func(v, in0, in1, out0, out1 float64) float64 {
		return (b0/a0)*v + (b1/a0)*in0 + (b2/a0)*in1 - (a1/a0)*out0 - (a2/a0)*out1
	}

	l := filter(src.L, u.inbuf[0].L, u.inbuf[1].L, u.outbuf[0].L, u.outbuf[1].L)
	r := filter(src.R, u.inbuf[0].R, u.inbuf[1].R, u.outbuf[0].R, u.outbuf[1].R)

	u.inbuf[1] = u.inbuf[0]
	u.inbuf[0] = src
	u.outbuf[1] = u.outbuf[0]
	u.outbuf[0] = Signal{L: l, R: r}

	return Signal{L: l, R: r}
}

// --- Delay --------------------------------------------------------------

// delayUG is a feedback delay line over a fixed-size ring buffer sized
// at construction time to 2 seconds of audio at the declared sample rate.
type delayUG struct {
	buffer   []Signal
	head     int
	time     Aug
	feedback Aug
	mix      Aug
	src      Aug
}

// NewDelay builds a delay line. sampleRate sizes the ring buffer to
// 2 seconds of history, matching the original's fixed allocation.
func NewDelay(time, feedback, mix, src Aug, sampleRate uint32) Aug {
	n := int(sampleRate) * 2
	if n < 1 {
		n = 1
	}
	return New(&delayUG{buffer: make([]Signal, n), time: time, feedback: feedback, mix: mix, src: src})
}

func (u *delayUG) Walk(f VisitFunc) {
	if f(u.time) {
		u.time.Walk(f)
	}
	if f(u.feedback) {
		u.feedback.Walk(f)
	}
	if f(u.mix) {
		u.mix.Walk(f)
	}
	if f(u.src) {
		u.src.Walk(f)
	}
}

func (u *delayUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "delay", Slots: []Slot{
		{Name: "time", Value: dumpSlot(u.time, shared)},
		{Name: "feedback", Value: dumpSlot(u.feedback, shared)},
		{Name: "mix", Value: dumpSlot(u.mix, shared)},
		{Name: "src", Value: dumpSlot(u.src, shared)},
	}}
}

func (u *delayUG) Get(name string) (Aug, error) {
	switch name {
	case "time":
		return u.time, nil
	case "feedback":
		return u.feedback, nil
	case "mix":
		return u.mix, nil
	case "src":
		return u.src, nil
	default:
		return Aug{}, errParamNotFound("delay", name)
	}
}

func (u *delayUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("delay", name, a)
}

func (u *delayUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "time":
		u.time = v
	case "feedback":
		u.feedback = v
	case "mix":
		u.mix = v
	case "src":
		u.src = v
	default:
		return false, errParamNotFound("delay", name)
	}
	return true, nil
}

func (u *delayUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("delay", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *delayUG) Clear(name string) {
	switch name {
	case "time", "feedback", "mix", "src":
		_, _ = u.Set(name, Val(0.0))
	}
}

func (u *delayUG) Proc(t *transport.Transport) Signal {
	n := len(u.buffer)
	u.head = (u.head - 1 + n) % n
	sig := u.src.Proc(t)
	u.buffer[u.head] = sig

	dtime := u.time.Proc(t).L
	dt := uint64(float64(t.SampleRate) * dtime)
	fb := u.feedback.Proc(t).L
	mix := u.mix.Proc(t).L

	var dl, dr float64
	for k := uint64(1); dt != 0 && k*dt < uint64(n); k++ {
		idx := (u.head + int(k*dt)) % n
		s := u.buffer[idx]
		fbr := math.Pow(fb, float64(k))
		dl += s.L * fbr
		dr += s.R * fbr
	}

	return Signal{L: sig.L + dl*mix, R: sig.R + dr*mix}
}
