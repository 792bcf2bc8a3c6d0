package sequencer

import (
	"time"

	"gridseq/debug"
)

// stealWindow is how close to its scheduled release a sustained voice
// may be before a re-dispatch retriggers instead of re-enveloping
const stealWindow = 20 * time.Millisecond

// Note durations relative to the step: non-legato voices leave a 10%
// gap so adjacent steps never overlap; legato voices deliberately
// overlap into the next step so a re-envelope, not a gap, is heard.
const (
	legatoStretch = 2.0
	gateFraction  = 0.9
)

type voiceKey struct {
	synth int
	note  int
}

type activeVoice struct {
	handle    VoiceHandle
	releaseAt time.Time
}

// Dispatcher turns active grid cells into backend voice requests and
// owns the registry of sustained legato voices. Non-legato voices are
// fire-and-forget and never enter the registry.
type Dispatcher struct {
	backend  Backend
	registry map[voiceKey]*activeVoice
	now      func() time.Time
}

// NewDispatcher creates a dispatcher against the synthesis backend
func NewDispatcher(backend Backend) *Dispatcher {
	return &Dispatcher{
		backend:  backend,
		registry: make(map[voiceKey]*activeVoice),
		now:      time.Now,
	}
}

// MIDINote converts a grid pitch slot to its MIDI note number
func MIDINote(pitch int) int {
	return BaseNote + (NumPitches - 1 - pitch)
}

// DispatchStep plays every active cell of the pattern's local step,
// one layer per synth
func (d *Dispatcher) DispatchStep(pat *Pattern, localStep int, synths []*Synth, stepDur time.Duration) {
	now := d.now()
	for i, synth := range synths {
		if synth.Muted || i >= len(pat.Layers) {
			continue
		}
		layer := pat.Layers[i]
		if localStep < 0 || localStep >= len(layer) {
			continue
		}
		for pitch, on := range layer[localStep] {
			if !on {
				continue
			}
			d.playNote(synth, MIDINote(pitch), now, stepDur)
		}
	}
}

// playNote starts or re-envelopes one voice
func (d *Dispatcher) playNote(synth *Synth, note int, now time.Time, stepDur time.Duration) {
	if !synth.Legato {
		dur := time.Duration(float64(stepDur) * gateFraction)
		d.backend.PlayVoice(note, now, dur, synth.Timbre())
		return
	}

	dur := time.Duration(float64(stepDur) * legatoStretch)
	releaseAt := now.Add(dur)
	key := voiceKey{synth: synth.ID, note: note}

	if av, ok := d.registry[key]; ok {
		if av.releaseAt.Sub(now) > stealWindow {
			// still sounding: tie the notes by reshaping the envelope
			// in place instead of retriggering
			av.handle.ReEnvelope(releaseAt)
			av.releaseAt = releaseAt
			debug.Log("dispatch", "re-envelope synth=%d note=%d", synth.ID, note)
			return
		}
		// stale: already within the release ramp, kill it and retrigger
		av.handle.Stop()
		delete(d.registry, key)
	}

	handle := d.backend.PlayVoice(note, now, dur, synth.Timbre())
	if handle != nil {
		d.registry[key] = &activeVoice{handle: handle, releaseAt: releaseAt}
	}
}

// FlushAll force-terminates every registry-tracked voice and clears the
// registry. Called on transport stop and teardown so no entry outlives
// playback.
func (d *Dispatcher) FlushAll() {
	for key, av := range d.registry {
		av.handle.Stop()
		delete(d.registry, key)
	}
}

// SustainedVoices returns the number of registry-tracked voices
func (d *Dispatcher) SustainedVoices() int {
	return len(d.registry)
}
