package sequencer

import (
	"time"
)

// fakeVoice records what the dispatcher did to it
type fakeVoice struct {
	stopped     bool
	reEnvelopes int
	lastRelease time.Time
}

func (v *fakeVoice) Stop() { v.stopped = true }

func (v *fakeVoice) ReEnvelope(releaseAt time.Time) {
	v.reEnvelopes++
	v.lastRelease = releaseAt
}

// playedNote is one PlayVoice call seen by the fake backend
type playedNote struct {
	note   int
	dur    time.Duration
	timbre Timbre
	voice  *fakeVoice
}

type fakeBackend struct {
	played []playedNote
}

func (b *fakeBackend) PlayVoice(note int, start time.Time, duration time.Duration, timbre Timbre) VoiceHandle {
	v := &fakeVoice{}
	b.played = append(b.played, playedNote{note: note, dur: duration, timbre: timbre, voice: v})
	return v
}

// manualScheduler lets tests fire ticks by hand
type manualScheduler struct {
	armed bool
	d     time.Duration
	f     func()
}

func (s *manualScheduler) Arm(d time.Duration, f func()) {
	s.armed = true
	s.d = d
	s.f = f
}

func (s *manualScheduler) Cancel() {
	s.armed = false
	s.f = nil
}

// fire runs the armed callback; the callback rearms for the next tick
func (s *manualScheduler) fire() {
	f := s.f
	s.f = nil
	s.armed = false
	if f != nil {
		f()
	}
}

// newTestSession builds a session over the fake backend with a manual
// scheduler so nothing fires on its own
func newTestSession() (*Session, *fakeBackend, *manualScheduler) {
	backend := &fakeBackend{}
	s := NewSession(backend)
	sched := &manualScheduler{}
	s.transport.sched = sched
	return s, backend, sched
}
