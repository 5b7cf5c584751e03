package sound

import (
	"encoding/binary"
	"io"
)

// WAVBackend renders a fixed duration of audio to a WAV file instead of
// a live device -- useful for CI, golden-file tests, and headless runs.
type WAVBackend struct {
	w          io.Writer
	sampleRate uint32
	channels   int
	samples    int // total stereo sample pairs to render
}

// NewWAVBackend builds a backend that writes duration seconds of
// interleaved-stereo 16-bit PCM WAV data to w.
func NewWAVBackend(w io.Writer, sampleRate uint32, duration float64) *WAVBackend {
	return &WAVBackend{
		w:          w,
		sampleRate: sampleRate,
		channels:   2,
		samples:    int(duration * float64(sampleRate)),
	}
}

func (b *WAVBackend) writeHeader(dataSize int) error {
	if _, err := b.w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(b.w, binary.LittleEndian, uint32(dataSize+36)); err != nil {
		return err
	}
	if _, err := b.w.Write([]byte("WAVE")); err != nil {
		return err
	}
	if _, err := b.w.Write([]byte("fmt ")); err != nil {
		return err
	}
	byteRate := b.sampleRate * uint32(b.channels) * 2
	blockAlign := uint16(b.channels * 2)
	for _, v := range []any{
		uint32(16), uint16(1), uint16(b.channels), b.sampleRate, byteRate, blockAlign, uint16(16),
	} {
		if err := binary.Write(b.w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := b.w.Write([]byte("data")); err != nil {
		return err
	}
	return binary.Write(b.w, binary.LittleEndian, uint32(dataSize))
}

// Run renders b.samples stereo sample pairs through callback and writes
// them out as a complete WAV file.
func (b *WAVBackend) Run(callback func(buf []float32)) error {
	dataSize := b.samples * b.channels * 2
	if err := b.writeHeader(dataSize); err != nil {
		return err
	}

	const chunk = 4096
	buf := make([]float32, chunk*2)
	written := 0
	for written < b.samples {
		n := chunk
		if remaining := b.samples - written; remaining < n {
			n = remaining
		}
		callback(buf[:n*2])
		for i := 0; i < n*2; i++ {
			s := buf[i]
			if s > 1.0 {
				s = 1.0
			}
			if s < -1.0 {
				s = -1.0
			}
			if err := binary.Write(b.w, binary.LittleEndian, int16(s*32767)); err != nil {
				return err
			}
		}
		written += n
	}
	return nil
}

// Close is a no-op; the caller owns and closes the underlying writer.
func (b *WAVBackend) Close() error { return nil }
