package sound_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapirlisp/tapirgo/pkg/sound"
	"github.com/tapirlisp/tapirgo/pkg/transport"
	"github.com/tapirlisp/tapirgo/pkg/ugen"
)

func TestCallbackFillsInterleavedStereoAndAdvancesTransport(t *testing.T) {
	tr := transport.New(48000, 120.0, transport.Measure{Beat: 4, Note: 4})
	root := ugen.Val(0.25)
	sys := sound.New(root, tr, nil)

	buf := make([]float32, 8) // 4 stereo pairs
	sys.Callback(buf)

	for i, v := range buf {
		assert.InDelta(t, float32(0.25), v, 1e-6, "sample %d", i)
	}
	assert.Equal(t, uint64(4), tr.Tick)
}

func TestCallbackTruncatesOddBufferLength(t *testing.T) {
	tr := transport.New(48000, 120.0, transport.Measure{Beat: 4, Note: 4})
	root := ugen.Val(1.0)
	sys := sound.New(root, tr, nil)

	buf := make([]float32, 5) // 2 complete pairs, 1 trailing slot untouched
	sys.Callback(buf)

	assert.Equal(t, float32(1.0), buf[0])
	assert.Equal(t, float32(1.0), buf[3])
	assert.Equal(t, float32(0), buf[4], "odd trailing slot is left untouched")
	assert.Equal(t, uint64(2), tr.Tick)
}

func TestDumpReflectsCurrentRoot(t *testing.T) {
	tr := transport.New(48000, 135.0, transport.Measure{Beat: 3, Note: 4})
	sys := sound.New(ugen.Val(0.0), tr, nil)

	out := sys.Dump()
	assert.Contains(t, out, "(bpm 135)")
	assert.Contains(t, out, "(measure 3 4)")
}

func TestWAVBackendWritesValidHeaderAndSampleCount(t *testing.T) {
	var buf bytes.Buffer
	backend := sound.NewWAVBackend(&buf, 8, 1.0) // 1 second at 8Hz = 8 stereo pairs

	err := backend.Run(func(b []float32) {
		for i := range b {
			b[i] = 0.5
		}
	})
	assert.NoError(t, err)

	data := buf.Bytes()
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, "data", string(data[36:40]))

	dataSize := binary.LittleEndian.Uint32(data[40:44])
	wantSamples := 8
	wantDataSize := wantSamples * 2 * 2 // stereo, 16-bit
	assert.Equal(t, uint32(wantDataSize), dataSize)
	assert.Equal(t, 44+wantDataSize, len(data))

	assert.NoError(t, backend.Close())
}
