// Package midi renders sequencer voice requests onto a MIDI output
// port. It is the one concrete synthesis backend: a voice becomes a
// NoteOn now plus a NoteOff timer at the requested duration, so the
// sequencer's fire-and-forget contract maps directly onto the wire.
package midi

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"gridseq/debug"
	"gridseq/sequencer"
)

// Backend sends voices to one MIDI output port
type Backend struct {
	portName string
	send     func(gomidi.Message) error
	channel  uint8 // 0-based wire channel

	mu sync.Mutex
}

// Open connects to the named output port (1-based config channel)
func Open(portName string, channel int) (*Backend, error) {
	if channel < 1 || channel > 16 {
		channel = 1
	}
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, err
			}
			debug.Log("midi", "opened port %q", portName)
			return &Backend{portName: portName, send: send, channel: uint8(channel - 1)}, nil
		}
	}
	return nil, fmt.Errorf("midi output port %q not found", portName)
}

// OutPorts lists the available MIDI output port names
func OutPorts() []string {
	var names []string
	for _, port := range gomidi.GetOutPorts() {
		names = append(names, port.String())
	}
	return names
}

// PlayVoice implements sequencer.Backend: NoteOn immediately, NoteOff
// when the duration elapses. Attack/release shaping is up to the
// receiving synth; volume maps to velocity.
func (b *Backend) PlayVoice(note int, start time.Time, duration time.Duration, timbre sequencer.Timbre) sequencer.VoiceHandle {
	if note < 0 || note > 127 {
		return nil
	}
	vel := uint8(timbre.Volume * 127)
	b.mu.Lock()
	if err := b.send(gomidi.NoteOn(b.channel, uint8(note), vel)); err != nil {
		debug.Log("midi", "note on %d failed: %v", note, err)
	}
	b.mu.Unlock()

	v := &voice{backend: b, note: uint8(note)}
	v.timer = time.AfterFunc(time.Until(start.Add(duration)), v.off)
	return v
}

// voice is one sounding note with its pending NoteOff
type voice struct {
	backend *Backend
	note    uint8

	mu    sync.Mutex
	timer *time.Timer
	done  bool
}

func (v *voice) off() {
	v.mu.Lock()
	if v.done {
		v.mu.Unlock()
		return
	}
	v.done = true
	v.mu.Unlock()

	v.backend.mu.Lock()
	if err := v.backend.send(gomidi.NoteOff(v.backend.channel, v.note)); err != nil {
		debug.Log("midi", "note off %d failed: %v", v.note, err)
	}
	v.backend.mu.Unlock()
}

// Stop implements sequencer.VoiceHandle: NoteOff now
func (v *voice) Stop() {
	v.mu.Lock()
	if v.timer != nil {
		v.timer.Stop()
	}
	v.mu.Unlock()
	v.off()
}

// ReEnvelope implements sequencer.VoiceHandle: the note keeps sounding
// and its NoteOff moves to the new release time
func (v *voice) ReEnvelope(releaseAt time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.done || v.timer == nil {
		return
	}
	v.timer.Reset(time.Until(releaseAt))
}

// Discard is a backend that plays nothing, used when no MIDI port is
// configured or available
type Discard struct{}

func (Discard) PlayVoice(note int, start time.Time, duration time.Duration, timbre sequencer.Timbre) sequencer.VoiceHandle {
	return nil
}
