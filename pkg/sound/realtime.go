package sound

import (
	"encoding/binary"
	"math"

	"github.com/ebitengine/oto/v3"
)

// RealtimeBackend plays a SoundSystem's callback output live through the
// default system audio device, interleaved stereo 16-bit PCM.
type RealtimeBackend struct {
	ctx        *oto.Context
	player     *oto.Player
	sampleRate uint32
	running    bool
}

// NewRealtimeBackend opens an oto context at sampleRate, stereo.
func NewRealtimeBackend(sampleRate uint32) (*RealtimeBackend, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	return &RealtimeBackend{ctx: ctx, sampleRate: sampleRate, running: true}, nil
}

// Run starts playback and returns immediately; the player keeps invoking
// callback to fill the device's buffer until Close is called.
func (rt *RealtimeBackend) Run(callback func(buf []float32)) error {
	rt.player = rt.ctx.NewPlayer(&stereoStream{rt: rt, callback: callback})
	rt.player.SetBufferSize(int(rt.sampleRate) / 10)
	rt.player.Play()
	return nil
}

// Close stops playback and releases the device.
func (rt *RealtimeBackend) Close() error {
	rt.running = false
	if rt.player != nil {
		return rt.player.Close()
	}
	return nil
}

// stereoStream adapts a float32 interleaved-stereo callback to oto's
// io.Reader contract (16-bit PCM).
type stereoStream struct {
	rt       *RealtimeBackend
	callback func(buf []float32)
	scratch  []float32
}

func clampSample(v float32) float32 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}

func (s *stereoStream) Read(buf []byte) (int, error) {
	if !s.rt.running {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}

	// 16-bit stereo: 4 bytes per sample pair.
	pairs := len(buf) / 4
	need := pairs * 2
	if cap(s.scratch) < need {
		s.scratch = make([]float32, need)
	}
	s.scratch = s.scratch[:need]

	s.callback(s.scratch)

	for i := 0; i < pairs; i++ {
		l := clampSample(s.scratch[2*i])
		r := clampSample(s.scratch[2*i+1])
		binary.LittleEndian.PutUint16(buf[4*i:], uint16(int16(l*math.MaxInt16)))
		binary.LittleEndian.PutUint16(buf[4*i+2:], uint16(int16(r*math.MaxInt16)))
	}

	return pairs * 4, nil
}
