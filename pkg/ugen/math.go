package ugen

import "github.com/tapirlisp/tapirgo/pkg/transport"

// gainUG scales its source by a factor: v = src * gain.
type gainUG struct {
	gain Aug
	src  Aug
}

// NewGain builds a gain (amplitude scale) node.
func NewGain(gain, src Aug) Aug {
	return New(&gainUG{gain: gain, src: src})
}

func (u *gainUG) Walk(f VisitFunc) {
	if f(u.gain) {
		u.gain.Walk(f)
	}
	if f(u.src) {
		u.src.Walk(f)
	}
}

func (u *gainUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "gain", Slots: []Slot{
		{Name: "gain", Value: dumpSlot(u.gain, shared)},
		{Name: "src", Value: dumpSlot(u.src, shared)},
	}}
}

func (u *gainUG) Get(name string) (Aug, error) {
	switch name {
	case "gain":
		return u.gain, nil
	case "src":
		return u.src, nil
	default:
		return Aug{}, errParamNotFound("gain", name)
	}
}

func (u *gainUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("gain", name, a)
}

func (u *gainUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "gain":
		u.gain = v
	case "src":
		u.src = v
	default:
		return false, errParamNotFound("gain", name)
	}
	return true, nil
}

func (u *gainUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("gain", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *gainUG) Clear(name string) {
	switch name {
	case "gain", "src":
		_, _ = u.Set(name, Val(0.0))
	}
}

func (u *gainUG) Proc(t *transport.Transport) Signal {
	g := u.gain.Proc(t)
	s := u.src.Proc(t)
	return Signal{L: g.L * s.L, R: g.R * s.R}
}

// offsetUG shifts its source by a constant: v = src + offset.
type offsetUG struct {
	offset Aug
	src    Aug
}

// NewOffset builds an offset (DC shift) node.
func NewOffset(offset, src Aug) Aug {
	return New(&offsetUG{offset: offset, src: src})
}

func (u *offsetUG) Walk(f VisitFunc) {
	if f(u.offset) {
		u.offset.Walk(f)
	}
	if f(u.src) {
		u.src.Walk(f)
	}
}

func (u *offsetUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "offset", Slots: []Slot{
		{Name: "offset", Value: dumpSlot(u.offset, shared)},
		{Name: "src", Value: dumpSlot(u.src, shared)},
	}}
}

func (u *offsetUG) Get(name string) (Aug, error) {
	switch name {
	case "offset":
		return u.offset, nil
	case "src":
		return u.src, nil
	default:
		return Aug{}, errParamNotFound("offset", name)
	}
}

func (u *offsetUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("offset", name, a)
}

func (u *offsetUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "offset":
		u.offset = v
	case "src":
		u.src = v
	default:
		return false, errParamNotFound("offset", name)
	}
	return true, nil
}

func (u *offsetUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("offset", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *offsetUG) Clear(name string) {
	switch name {
	case "offset", "src":
		_, _ = u.Set(name, Val(0.0))
	}
}

func (u *offsetUG) Proc(t *transport.Transport) Signal {
	o := u.offset.Proc(t)
	s := u.src.Proc(t)
	return Signal{L: o.L + s.L, R: o.R + s.R}
}

// clipUG clamps its source to [min, max].
type clipUG struct {
	min Aug
	max Aug
	src Aug
}

// NewClip builds a clip (hard clamp) node.
func NewClip(min, max, src Aug) Aug {
	return New(&clipUG{min: min, max: max, src: src})
}

func (u *clipUG) Walk(f VisitFunc) {
	if f(u.min) {
		u.min.Walk(f)
	}
	if f(u.max) {
		u.max.Walk(f)
	}
	if f(u.src) {
		u.src.Walk(f)
	}
}

func (u *clipUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "clip", Slots: []Slot{
		{Name: "min", Value: dumpSlot(u.min, shared)},
		{Name: "max", Value: dumpSlot(u.max, shared)},
		{Name: "src", Value: dumpSlot(u.src, shared)},
	}}
}

func (u *clipUG) Get(name string) (Aug, error) {
	switch name {
	case "min":
		return u.min, nil
	case "max":
		return u.max, nil
	case "src":
		return u.src, nil
	default:
		return Aug{}, errParamNotFound("clip", name)
	}
}

func (u *clipUG) GetStr(name string) (string, error) {
	a, err := u.Get(name)
	if err != nil {
		return "", err
	}
	return numToStr("clip", name, a)
}

func (u *clipUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "min":
		u.min = v
	case "max":
		u.max = v
	case "src":
		u.src = v
	default:
		return false, errParamNotFound("clip", name)
	}
	return true, nil
}

func (u *clipUG) SetStr(name, data string) (bool, error) {
	v, err := strToVal("clip", name, data)
	if err != nil {
		return false, err
	}
	return u.Set(name, v)
}

func (u *clipUG) Clear(name string) {
	switch name {
	case "min", "max", "src":
		_, _ = u.Set(name, Val(0.0))
	}
}

func clampOne(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (u *clipUG) Proc(t *transport.Transport) Signal {
	lo := u.min.Proc(t)
	hi := u.max.Proc(t)
	s := u.src.Proc(t)
	return Signal{L: clampOne(s.L, lo.L, hi.L), R: clampOne(s.R, lo.R, hi.R)}
}

// addUG is the n-ary "+" operator: a plain unweighted sum of its
// sources, used for signal combination where mixer's headroom and soft
// limiter are not wanted (spec.md's supplemented math operators).
type addUG struct {
	srcs []Aug
}

// NewAdd builds an n-ary sum node.
func NewAdd(srcs []Aug) Aug {
	return New(&addUG{srcs: append([]Aug(nil), srcs...)})
}

func (u *addUG) Walk(f VisitFunc) {
	for _, s := range u.srcs {
		if f(s) {
			s.Walk(f)
		}
	}
}

func (u *addUG) Dump(shared []Aug) UgNode {
	rest := make([]Value, len(u.srcs))
	for i, s := range u.srcs {
		rest[i] = dumpSlot(s, shared)
	}
	return UgNode{Op: "+", Rest: rest}
}

func (u *addUG) Get(name string) (Aug, error)          { return Aug{}, errNotUgen() }
func (u *addUG) GetStr(name string) (string, error)    { return "", errNotUgen() }
func (u *addUG) Set(name string, v Aug) (bool, error)  { return false, errParamNotFound("+", name) }
func (u *addUG) SetStr(name, data string) (bool, error) {
	return false, errParamNotFound("+", name)
}
func (u *addUG) Clear(name string) {}

func (u *addUG) Proc(t *transport.Transport) Signal {
	var l, r float64
	for _, s := range u.srcs {
		sig := s.Proc(t)
		l += sig.L
		r += sig.R
	}
	return Signal{L: l, R: r}
}
