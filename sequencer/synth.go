package sequencer

import "time"

// Waveform identifies a synth oscillator shape
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveSquare   Waveform = "square"
	WaveSawtooth Waveform = "sawtooth"
	WaveTriangle Waveform = "triangle"
)

// Synth describes one voice of the session. Pattern layer i is rendered
// by synth i.
type Synth struct {
	ID       int
	Name     string
	Waveform Waveform
	Volume   float64 // 0-1
	Attack   time.Duration
	Release  time.Duration
	Legato   bool
	Muted    bool
}

// Timbre is the sound description handed to the backend with each note
type Timbre struct {
	Waveform Waveform
	Volume   float64
	Attack   time.Duration
	Release  time.Duration
	Legato   bool
}

// Timbre returns the synth's current timbre snapshot
func (s *Synth) Timbre() Timbre {
	return Timbre{
		Waveform: s.Waveform,
		Volume:   s.Volume,
		Attack:   s.Attack,
		Release:  s.Release,
		Legato:   s.Legato,
	}
}

// VoiceHandle is a playing voice owned by the backend
type VoiceHandle interface {
	// Stop terminates the voice immediately
	Stop()
	// ReEnvelope holds the voice at its current level and reshapes the
	// release to end near releaseAt, instead of retriggering
	ReEnvelope(releaseAt time.Time)
}

// Backend is the external synthesis service. Requests are fire-and-forget;
// the sequencer never waits on them.
type Backend interface {
	PlayVoice(note int, start time.Time, duration time.Duration, timbre Timbre) VoiceHandle
}

// DefaultSynths returns the session's fixed voice bank
func DefaultSynths() []*Synth {
	return []*Synth{
		{ID: 0, Name: "Lead", Waveform: WaveSquare, Volume: 0.8, Attack: 5 * time.Millisecond, Release: 80 * time.Millisecond},
		{ID: 1, Name: "Pad", Waveform: WaveTriangle, Volume: 0.6, Attack: 40 * time.Millisecond, Release: 250 * time.Millisecond, Legato: true},
		{ID: 2, Name: "Bass", Waveform: WaveSawtooth, Volume: 0.9, Attack: 5 * time.Millisecond, Release: 120 * time.Millisecond},
		{ID: 3, Name: "Pluck", Waveform: WaveSine, Volume: 0.7, Attack: 2 * time.Millisecond, Release: 60 * time.Millisecond},
	}
}
