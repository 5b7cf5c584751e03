// Package ugen implements the unit-generator graph runtime: the data
// model for arbitrary DAG-shaped synthesis graphs and the per-sample
// evaluation protocol that traverses them with memoization.
package ugen

import (
	"sync"
	"sync/atomic"

	"github.com/tapirlisp/tapirgo/pkg/transport"
)

// VisitFunc is called by Walk for each direct child Aug; returning true
// tells the walker to recurse into that child.
type VisitFunc func(Aug) bool

// Walker enumerates a node's Aug-typed parameters in declaration order.
type Walker interface {
	Walk(f VisitFunc)
}

// Slot is one named, positional argument of a dumped node.
type Slot struct {
	Name  string
	Value Value
}

// UgNode is the dump-time shape of one node: either a bare Value, or an
// operator application with named slots and, for table/pat, trailing
// rest values.
type UgNode struct {
	IsVal bool
	Val   Value
	Op    string
	Slots []Slot
	Rest  []Value
}

// Dumper produces the canonical dump shape of a node, replacing any
// occurrence of a shared node in `shared` with a Value.Shared reference.
type Dumper interface {
	Dump(shared []Aug) UgNode
}

// Operate is parameter reflection: every Osc/Eg/Proc variant exposes
// get/set/clear over its named Aug-typed parameters.
type Operate interface {
	Get(name string) (Aug, error)
	GetStr(name string) (string, error)
	Set(name string, a Aug) (bool, error)
	SetStr(name string, data string) (bool, error)
	Clear(name string)
}

// Processor produces one Signal per transport tick.
type Processor interface {
	Proc(t *transport.Transport) Signal
}

// UG is the closed set of unit-generator capability categories: any
// concrete variant implements all four facets uniformly (non-applicable
// methods return NotUgen / no-ops per spec.md section 7).
type UG interface {
	Walker
	Dumper
	Operate
	Processor
}

// OscCapable is implemented by UG variants with a phase/frequency pair
// that can be read and driven externally (e.g. by OneshotOsc or Phase).
type OscCapable interface {
	GetPh() float64
	SetPh(ph float64)
	GetFreq() Aug
	SetFreq(a Aug)
}

// ADSRState is an envelope generator's current phase.
type ADSRState int

const (
	ADSRAttack ADSRState = iota
	ADSRDecay
	ADSRSustain
	ADSRRelease
	ADSRNone
)

// EgCapable is implemented by the envelope-generator UG variant.
type EgCapable interface {
	GetState() ADSRState
	SetState(state ADSRState, elapsed uint64)
}

var nextID uint64

// UGen is the uniform wrapper around any signal producer: stable
// identity, last-tick memo, last-signal cache, and the variant payload.
type UGen struct {
	id       uint64
	mu       sync.Mutex
	lastTick uint64
	lastSig  Signal
	ug       UG
}

// Aug is a shared handle to a UGen. Two Augs are equal iff they refer
// to the same underlying node; Aug's own equality (==) already has
// this meaning since it wraps a single pointer.
type Aug struct {
	node *UGen
}

// New wraps a UG variant in a fresh, uniquely identified node. lastTick
// is initialized to the max sentinel (spec.md section 4.3 resolution a)
// so the very first Proc call at tick 0 still evaluates the variant.
func New(ug UG) Aug {
	return Aug{node: &UGen{
		id:       atomic.AddUint64(&nextID, 1),
		lastTick: ^uint64(0),
		ug:       ug,
	}}
}

// Val creates a constant scalar node.
func Val(v float64) Aug {
	return New(&valUG{v: v})
}

// IsNil reports whether this Aug holds no node.
func (a Aug) IsNil() bool { return a.node == nil }

// ToVal returns the node's value if it's a constant scalar.
func (a Aug) ToVal() (float64, bool) {
	if a.node == nil {
		return 0, false
	}
	if v, ok := a.node.ug.(*valUG); ok {
		return v.v, true
	}
	return 0, false
}

// Proc enforces the core memoization invariant: for any node and any
// transport tick, the variant's Proc body runs at most once. The first
// call for a given tick evaluates and caches; later calls for the same
// tick return the cached Signal.
func (a Aug) Proc(t *transport.Transport) Signal {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastTick == t.Tick {
		return n.lastSig
	}
	sig := n.ug.Proc(t)
	n.lastTick = t.Tick
	n.lastSig = sig
	return sig
}

// Walk enumerates this node's direct children.
func (a Aug) Walk(f VisitFunc) {
	n := a.node
	n.mu.Lock()
	ug := n.ug
	n.mu.Unlock()
	ug.Walk(f)
}

// Dump produces this node's dump-time shape.
func (a Aug) Dump(shared []Aug) UgNode {
	n := a.node
	n.mu.Lock()
	ug := n.ug
	n.mu.Unlock()
	return ug.Dump(shared)
}

func (a Aug) Get(name string) (Aug, error) {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ug.Get(name)
}

func (a Aug) GetStr(name string) (string, error) {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ug.GetStr(name)
}

func (a Aug) Set(name string, v Aug) (bool, error) {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ug.Set(name, v)
}

func (a Aug) SetStr(name string, data string) (bool, error) {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ug.SetStr(name, data)
}

func (a Aug) Clear(name string) {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ug.Clear(name)
}

// withOsc holds a's node lock only for the duration of f, mirroring the
// teacher's pattern of locking a child node just long enough to read or
// mutate its phase/frequency state -- used by composite oscillators
// (oneshot, phase, wavetable) that reach into a child's OscCapable facet.
func withOsc(a Aug, f func(OscCapable)) bool {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	oc, ok := n.ug.(OscCapable)
	if !ok {
		return false
	}
	f(oc)
	return true
}

// withEg is withOsc's counterpart for the EgCapable facet.
func withEg(a Aug, f func(EgCapable)) bool {
	n := a.node
	n.mu.Lock()
	defer n.mu.Unlock()
	ec, ok := n.ug.(EgCapable)
	if !ok {
		return false
	}
	f(ec)
	return true
}

// dumpSlot resolves the Value for a child Aug at dump time: a Shared
// reference if it's in `shared`, otherwise its inline Ug form.
func dumpSlot(child Aug, shared []Aug) Value {
	for i, s := range shared {
		if s == child {
			return SharedValue(i, child)
		}
	}
	return UgValue(child)
}
