package ugen

import "github.com/tapirlisp/tapirgo/pkg/transport"

// kickFreq is the fixed trigger frequency used for "kick" pitch tokens,
// which name a drum hit rather than a pitched note.
const kickFreq = 60.0

// seqUG ("seq") drives a gated voice (an Osc+Eg composite such as
// OneshotOsc) from a Pattern: each message occupies a duration derived
// from the transport's BPM and measure note value, retriggering the
// voice's envelope at the start of each note and releasing it on rest,
// grounded on the teacher's row-clocked TriggerNote/NoteOff dispatch.
type seqUG struct {
	pattern   Aug
	voice     Aug
	msgs      []Message
	loaded    bool
	idx       int
	loopPoint int
	elapsed   uint64
}

// NewSeq builds a sequencer driving voice from pattern.
func NewSeq(pattern, voice Aug) Aug {
	return New(&seqUG{pattern: pattern, voice: voice})
}

func (u *seqUG) Walk(f VisitFunc) {
	if f(u.pattern) {
		u.pattern.Walk(f)
	}
	if f(u.voice) {
		u.voice.Walk(f)
	}
}

func (u *seqUG) Dump(shared []Aug) UgNode {
	return UgNode{Op: "seq", Slots: []Slot{
		{Name: "pattern", Value: dumpSlot(u.pattern, shared)},
		{Name: "voice", Value: dumpSlot(u.voice, shared)},
	}}
}

func (u *seqUG) Get(name string) (Aug, error) {
	switch name {
	case "pattern":
		return u.pattern, nil
	case "voice":
		return u.voice, nil
	default:
		return Aug{}, errParamNotFound("seq", name)
	}
}

func (u *seqUG) GetStr(name string) (string, error) {
	return "", errCannotRepresentAsString("seq", name)
}

func (u *seqUG) Set(name string, v Aug) (bool, error) {
	switch name {
	case "pattern":
		u.pattern = v
		u.msgs = nil
		u.loaded = false
		u.idx, u.loopPoint, u.elapsed = 0, 0, 0
	case "voice":
		u.voice = v
	default:
		return false, errParamNotFound("seq", name)
	}
	return true, nil
}

func (u *seqUG) SetStr(name, data string) (bool, error) {
	switch name {
	case "pattern":
		msgs, ok := ParsePatternStr(data)
		if !ok {
			return false, errCannotParsePattern("seq", name, data)
		}
		u.pattern = NewPattern(msgs)
		u.msgs = nil
		u.loaded = false
		u.idx, u.loopPoint, u.elapsed = 0, 0, 0
		return true, nil
	default:
		return false, errParamNotFound("seq", name)
	}
}

func (u *seqUG) Clear(name string) {}

func noteFreq(p Pitch) float64 {
	if p.Kind == PitchKick {
		return kickFreq
	}
	return NoteToFreq(p)
}

func (u *seqUG) triggerMsg(msg Message) {
	if msg.Pitch.Kind == PitchRest {
		withEg(u.voice, func(ec EgCapable) { ec.SetState(ADSRRelease, 0) })
		return
	}
	freq := noteFreq(msg.Pitch)
	withOsc(u.voice, func(oc OscCapable) {
		oc.SetFreq(Val(freq))
		oc.SetPh(0.0)
	})
	withEg(u.voice, func(ec EgCapable) { ec.SetState(ADSRAttack, 0) })
}

func (u *seqUG) durationSamples(t *transport.Transport, msg Message) float64 {
	if msg.Length == 0 {
		return 1
	}
	beatsPerMsg := float64(t.Measure.Note) / float64(msg.Length)
	samplesPerBeat := 60.0 / t.BPM * float64(t.SampleRate)
	d := beatsPerMsg * samplesPerBeat
	if d < 1 {
		d = 1
	}
	return d
}

func (u *seqUG) Proc(t *transport.Transport) Signal {
	if !u.loaded {
		u.msgs, _ = patternMsgs(u.pattern)
		u.loaded = true
	}
	if len(u.msgs) == 0 {
		return Signal{}
	}

	for i := 0; i < len(u.msgs) && u.msgs[u.idx].Kind == MsgLoop; i++ {
		u.loopPoint = u.idx
		u.idx = (u.idx + 1) % len(u.msgs)
	}
	msg := u.msgs[u.idx]

	if u.elapsed == 0 {
		u.triggerMsg(msg)
	}

	sig := u.voice.Proc(t)

	u.elapsed++
	if float64(u.elapsed) >= u.durationSamples(t, msg) {
		u.elapsed = 0
		if u.idx+1 >= len(u.msgs) {
			u.idx = u.loopPoint
		} else {
			u.idx++
		}
	}
	return sig
}
