package ugen

import (
	"math"

	"github.com/tapirlisp/tapirgo/pkg/transport"
)

// mixerUG is the n-ary mixdown operator: it sums its sources with
// 1/sqrt(n) headroom and applies a tanh soft limiter above +-0.9,
// grounded on the teacher's channel mixdown stage.
type mixerUG struct {
	srcs []Aug
}

// NewMixer builds an n-ary mixer node.
func NewMixer(srcs []Aug) Aug {
	return New(&mixerUG{srcs: append([]Aug(nil), srcs...)})
}

func (u *mixerUG) Walk(f VisitFunc) {
	for _, s := range u.srcs {
		if f(s) {
			s.Walk(f)
		}
	}
}

func (u *mixerUG) Dump(shared []Aug) UgNode {
	rest := make([]Value, len(u.srcs))
	for i, s := range u.srcs {
		rest[i] = dumpSlot(s, shared)
	}
	return UgNode{Op: "mixer", Rest: rest}
}

func (u *mixerUG) Get(name string) (Aug, error)       { return Aug{}, errNotUgen() }
func (u *mixerUG) GetStr(name string) (string, error) { return "", errNotUgen() }
func (u *mixerUG) Set(name string, v Aug) (bool, error) {
	return false, errParamNotFound("mixer", name)
}
func (u *mixerUG) SetStr(name, data string) (bool, error) {
	return false, errParamNotFound("mixer", name)
}
func (u *mixerUG) Clear(name string) {}

func softLimit(v float64) float64 {
	switch {
	case v > 0.9:
		return 0.9 + 0.1*math.Tanh((v-0.9)*10)
	case v < -0.9:
		return -0.9 + 0.1*math.Tanh((v+0.9)*10)
	default:
		return v
	}
}

func (u *mixerUG) Proc(t *transport.Transport) Signal {
	var l, r float64
	for _, s := range u.srcs {
		sig := s.Proc(t)
		l += sig.L
		r += sig.R
	}
	n := float64(len(u.srcs))
	if n > 1 {
		l /= math.Sqrt(n)
		r /= math.Sqrt(n)
	}
	return Signal{L: softLimit(l), R: softLimit(r)}
}
