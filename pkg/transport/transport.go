// Package transport holds the musical-time clock that drives sequencers
// and is read by every unit generator on every sample.
package transport

import "math"

// Measure is a time signature: beats per bar and the note value of one beat.
type Measure struct {
	Beat uint32
	Note uint32
}

// Pos is a musical position: bar, beat, and fractional position within
// the current beat.
type Pos struct {
	Bar  uint32
	Beat uint32
	Pos  float64
}

// Transport holds sample-rate, tempo and the monotonic tick counter,
// advanced by exactly one sample per Inc call.
type Transport struct {
	SampleRate uint32
	Tick       uint64
	BPM        float64
	Measure    Measure
	Pos        Pos
}

// New creates a Transport at tick 0, position (0, 0, 0.0).
func New(sampleRate uint32, bpm float64, measure Measure) *Transport {
	return &Transport{
		SampleRate: sampleRate,
		Tick:       0,
		BPM:        bpm,
		Measure:    measure,
		Pos:        Pos{Bar: 0, Beat: 0, Pos: 0.0},
	}
}

// Inc advances the tick by one sample and recomputes Pos from scratch so
// that Pos is always a pure function of (Tick, SampleRate, BPM, Measure).
func (t *Transport) Inc() {
	t.Tick++
	t.Pos = t.derivePos()
}

// derivePos recomputes the musical position directly from the tick
// counter, avoiding float accumulation error across a long session.
func (t *Transport) derivePos() Pos {
	beatsPerSample := t.BPM / (60.0 * float64(t.SampleRate))
	totalBeats := beatsPerSample * float64(t.Tick)

	beatsPerBar := float64(t.Measure.Beat)
	if beatsPerBar <= 0 {
		beatsPerBar = 1
	}

	bar := math.Floor(totalBeats / beatsPerBar)
	beatInBar := totalBeats - bar*beatsPerBar
	beat := math.Floor(beatInBar)
	frac := beatInBar - beat

	return Pos{
		Bar:  uint32(bar),
		Beat: uint32(beat),
		Pos:  frac,
	}
}

// SecToSamples converts a duration in seconds to a sample count, floored.
func (t *Transport) SecToSamples(sec float64) uint64 {
	return uint64(math.Floor(float64(t.SampleRate) * sec))
}
