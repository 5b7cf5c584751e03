// Package sound wires a ugen graph to an audio backend: it owns the
// transport, advances it one tick per stereo sample pair, and exposes a
// callback-based contract any backend (realtime device, file writer,
// test harness) can drive.
package sound

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tapirlisp/tapirgo/pkg/transport"
	"github.com/tapirlisp/tapirgo/pkg/ugen"
)

// Backend feeds a SoundSystem's callback into some audio sink. Depending
// on the backend, Run either blocks until a fixed amount of audio has been
// rendered or starts playback that continues until Close.
type Backend interface {
	Run(callback func(buf []float32)) error
	Close() error
}

// SoundSystem holds the root of a unit-generator graph, the transport
// driving it, and the coordination mutex the control thread (REPL,
// CLI mutator) must hold while swapping a parameter Aug so a mutation
// lands atomically relative to a sample boundary.
type SoundSystem struct {
	mu        sync.Mutex
	root      ugen.Aug
	transport *transport.Transport
	logger    *log.Logger
}

// New builds a SoundSystem over root, driven by t.
func New(root ugen.Aug, t *transport.Transport, logger *log.Logger) *SoundSystem {
	if logger == nil {
		logger = log.Default()
	}
	return &SoundSystem{root: root, transport: t, logger: logger}
}

// WithRoot swaps the graph root under the coordination mutex, for use
// by the control thread between audio callbacks.
func (s *SoundSystem) WithRoot(f func(root ugen.Aug) ugen.Aug) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = f(s.root)
}

// Callback fills buf (interleaved stereo f32, L, R, L, R, ...) by
// calling root.Proc once per sample pair and advancing the transport.
// If buf has an odd length, the trailing slot is left untouched.
func (s *SoundSystem) Callback(buf []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(buf) / 2
	for i := 0; i < n; i++ {
		sig := s.root.Proc(s.transport)
		s.transport.Inc()
		buf[2*i] = float32(sig.L)
		buf[2*i+1] = float32(sig.R)
	}
}

// Run drives backend's callback loop using this SoundSystem's Callback.
func (s *SoundSystem) Run(backend Backend) error {
	s.logger.Info("starting audio callback loop", "sample_rate", s.transport.SampleRate)
	return backend.Run(s.Callback)
}

// Dump renders the current graph as canonical tapirlisp source text.
func (s *SoundSystem) Dump() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ugen.Dump(s.root, s.transport)
}
