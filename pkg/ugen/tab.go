package ugen

import "github.com/tapirlisp/tapirgo/pkg/transport"

// tabUG wraps a table of f64 samples; it produces no signal itself and
// carries no Aug-typed children.
type tabUG struct {
	data []float64
}

// NewTable wraps data as a Tab node.
func NewTable(data []float64) Aug {
	return New(&tabUG{data: data})
}

func (u *tabUG) Walk(f VisitFunc) {}

func (u *tabUG) Dump(shared []Aug) UgNode {
	return UgNode{IsVal: true, Val: TableValue(append([]float64(nil), u.data...))}
}

func (u *tabUG) Get(name string) (Aug, error)          { return Aug{}, errNotUgen() }
func (u *tabUG) GetStr(name string) (string, error)    { return "", errNotUgen() }
func (u *tabUG) Set(name string, v Aug) (bool, error)   { return true, nil }
func (u *tabUG) SetStr(name, data string) (bool, error) { return true, nil }
func (u *tabUG) Clear(name string)                      {}

func (u *tabUG) Proc(t *transport.Transport) Signal { return Signal{} }

// tableData returns a's backing slice if it wraps a Tab node.
func tableData(a Aug) ([]float64, bool) {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.ug.(*tabUG); ok {
		return t.data, true
	}
	return nil, false
}

// patternMsgs returns a's backing messages if it wraps a Pat node.
func patternMsgs(a Aug) ([]Message, bool) {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	if p, ok := n.ug.(*patUG); ok {
		return p.msgs, true
	}
	return nil, false
}

// patUG wraps a sequence of pattern messages; non-producing like tabUG.
type patUG struct {
	msgs []Message
}

// NewPattern wraps msgs as a Pat node.
func NewPattern(msgs []Message) Aug {
	return New(&patUG{msgs: msgs})
}

func (u *patUG) Walk(f VisitFunc) {}

func (u *patUG) Dump(shared []Aug) UgNode {
	return UgNode{IsVal: true, Val: PatternValue(messagesToTokens(u.msgs))}
}

func (u *patUG) Get(name string) (Aug, error)          { return Aug{}, errNotUgen() }
func (u *patUG) GetStr(name string) (string, error)    { return "", errNotUgen() }
func (u *patUG) Set(name string, v Aug) (bool, error)   { return true, nil }
func (u *patUG) SetStr(name, data string) (bool, error) { return true, nil }
func (u *patUG) Clear(name string)                      {}

func (u *patUG) Proc(t *transport.Transport) Signal { return Signal{} }
