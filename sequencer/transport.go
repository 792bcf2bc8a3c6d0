package sequencer

import (
	"math"
	"time"

	"gridseq/debug"
)

// Tempo bounds in BPM
const (
	MinTempo = 20
	MaxTempo = 300
)

// scheduler is the single-shot deferred-execution primitive driving
// playback. At most one callback is ever armed.
type scheduler interface {
	Arm(d time.Duration, f func())
	Cancel()
}

// timerScheduler arms a real one-shot timer
type timerScheduler struct {
	timer *time.Timer
}

func (s *timerScheduler) Arm(d time.Duration, f func()) {
	s.Cancel()
	s.timer = time.AfterFunc(d, f)
}

func (s *timerScheduler) Cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Transport drives playback across the timeline. It is open-loop: each
// deadline is "now + stepDuration", so drift accumulates; tempo and
// meter changes apply from the next step without a restart.
type Transport struct {
	sched    scheduler
	timeline *Timeline

	// read live session state and dispatch, all under the owner's lock
	run      func(func())
	bpm      func() int
	dispatch func(loc Location, stepDur time.Duration)
	flush    func()

	playing     bool
	currentStep int
}

// NewTransport wires a transport to its owner's locked state. run must
// execute the callback under the same exclusive lock that guards every
// other call into the transport.
func NewTransport(sched scheduler, timeline *Timeline, run func(func()), bpm func() int, dispatch func(Location, time.Duration), flush func()) *Transport {
	return &Transport{
		sched:    sched,
		timeline: timeline,
		run:      run,
		bpm:      bpm,
		dispatch: dispatch,
		flush:    flush,
	}
}

// Playing reports whether the transport is running
func (t *Transport) Playing() bool {
	return t.playing
}

// CurrentStep returns the global step last dispatched
func (t *Transport) CurrentStep() int {
	return t.currentStep
}

// Start begins playback from the first step of sequence entry seqIndex,
// dispatching that step immediately. No-op while playing.
func (t *Transport) Start(seqIndex int) {
	if t.playing {
		return
	}
	t.playing = true
	t.currentStep = t.timeline.FirstStepOf(seqIndex)
	debug.Log("transport", "start seq=%d step=%d", seqIndex, t.currentStep)
	t.sched.Arm(t.dispatchCurrent(), t.tick)
}

// Stop cancels the outstanding timer and force-terminates every
// registry-tracked sustained voice. No-op while stopped.
func (t *Transport) Stop() {
	if !t.playing {
		return
	}
	t.playing = false
	t.sched.Cancel()
	t.flush()
	debug.Log("transport", "stop at step=%d", t.currentStep)
}

// tick is the timer callback: advance, dispatch, rearm
func (t *Transport) tick() {
	t.run(func() {
		if !t.playing {
			return
		}
		t.currentStep = (t.currentStep + 1) % t.timeline.TotalSteps()
		debug.LogEvery(64, "transport", "step=%d total=%d", t.currentStep, t.timeline.TotalSteps())
		t.sched.Arm(t.dispatchCurrent(), t.tick)
	})
}

// dispatchCurrent plays the current step and returns its duration,
// recomputed fresh from the live tempo and meter
func (t *Transport) dispatchCurrent() time.Duration {
	stepsPerBeat := 4
	loc, ok := t.timeline.Locate(t.currentStep)
	if ok {
		stepsPerBeat = clampMeter(t.timeline.pool[loc.PatternID].StepsPerBeat, MinStepsPerBeat, MaxStepsPerBeat)
	}
	stepDur := StepDuration(t.bpm(), stepsPerBeat)
	if ok {
		t.dispatch(loc, stepDur)
	}
	// a resolve miss means nothing to play this tick, never fatal
	return stepDur
}

// StepDuration converts tempo and meter to one step's length:
// 60 / (bpm * stepsPerBeat) seconds
func StepDuration(bpm, stepsPerBeat int) time.Duration {
	b := clampMeter(bpm, MinTempo, MaxTempo)
	s := clampMeter(stepsPerBeat, MinStepsPerBeat, MaxStepsPerBeat)
	return time.Duration(60.0 / float64(b*s) * float64(time.Second))
}

// ClampTempo confines a BPM value; non-finite maps to the minimum
func ClampTempo(bpm float64) int {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return MinTempo
	}
	return clampMeter(int(bpm), MinTempo, MaxTempo)
}
