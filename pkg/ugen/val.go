package ugen

import "github.com/tapirlisp/tapirgo/pkg/transport"

// valUG is a constant scalar, emitted as (v, v).
type valUG struct {
	v float64
}

func (u *valUG) Walk(f VisitFunc) {}

func (u *valUG) Dump(shared []Aug) UgNode {
	return UgNode{IsVal: true, Val: NumberValue(u.v)}
}

func (u *valUG) Get(name string) (Aug, error)            { return Aug{}, errNotUgen() }
func (u *valUG) GetStr(name string) (string, error)      { return "", errNotUgen() }
func (u *valUG) Set(name string, v Aug) (bool, error)     { return true, nil }
func (u *valUG) SetStr(name, data string) (bool, error)   { return true, nil }
func (u *valUG) Clear(name string)                        {}

func (u *valUG) Proc(t *transport.Transport) Signal {
	return Signal{L: u.v, R: u.v}
}
