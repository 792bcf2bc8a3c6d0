package sequencer

import (
	"testing"
	"time"
)

// newTestTransport wires a transport over the given timeline with a
// manual scheduler, recording dispatches
func newTestTransport(tl *Timeline, bpm int) (*Transport, *manualScheduler, *[]Location, *int) {
	sched := &manualScheduler{}
	var dispatched []Location
	flushes := 0
	tr := NewTransport(sched, tl,
		func(f func()) { f() },
		func() int { return bpm },
		func(loc Location, stepDur time.Duration) { dispatched = append(dispatched, loc) },
		func() { flushes++ },
	)
	return tr, sched, &dispatched, &flushes
}

func TestTransportAdvancesModuloTotal(t *testing.T) {
	pool := poolWithSteps(t, 8, 16, 8)
	tl := NewTimeline(pool)
	tl.entries = []int{0, 1, 2} // 32 steps

	tr, sched, dispatched, _ := newTestTransport(tl, 120)
	tr.Start(0)

	if tr.CurrentStep() != 0 {
		t.Fatalf("start step = %d, want 0", tr.CurrentStep())
	}
	if len(*dispatched) != 1 {
		t.Fatalf("start dispatched %d steps, want 1 (immediate)", len(*dispatched))
	}

	const n = 70
	for i := 0; i < n; i++ {
		if !sched.armed {
			t.Fatalf("tick %d: no timer armed", i)
		}
		sched.fire()
	}
	if got, want := tr.CurrentStep(), n%32; got != want {
		t.Fatalf("after %d ticks currentStep = %d, want %d", n, got, want)
	}
}

func TestTransportStopStartResets(t *testing.T) {
	pool := poolWithSteps(t, 8, 16, 8)
	tl := NewTimeline(pool)
	tl.entries = []int{0, 1, 2}

	tr, sched, _, flushes := newTestTransport(tl, 120)
	tr.Start(0)
	for i := 0; i < 5; i++ {
		sched.fire()
	}

	tr.Stop()
	if sched.armed {
		t.Fatal("Stop left a timer armed")
	}
	if *flushes != 1 {
		t.Fatalf("Stop flushed %d times, want 1", *flushes)
	}

	tr.Start(2)
	if got := tr.CurrentStep(); got != 24 {
		t.Fatalf("restart at entry 2: currentStep = %d, want 24", got)
	}
}

func TestTransportStartStopAreIdempotent(t *testing.T) {
	pool := poolWithSteps(t, 8)
	tl := NewTimeline(pool)

	tr, sched, dispatched, flushes := newTestTransport(tl, 120)
	tr.Stop() // stop while stopped: nothing
	if *flushes != 0 {
		t.Fatal("stop while stopped flushed")
	}

	tr.Start(0)
	for i := 0; i < 3; i++ {
		sched.fire()
	}
	before := len(*dispatched)
	tr.Start(0) // start while playing: no restart
	if tr.CurrentStep() != 3 || len(*dispatched) != before {
		t.Fatal("start while playing restarted playback")
	}
}

func TestStepDuration(t *testing.T) {
	tests := []struct {
		name string
		bpm  int
		spb  int
		want time.Duration
	}{
		{"120bpm 4spb", 120, 4, 125 * time.Millisecond},
		{"60bpm 1spb", 60, 1, time.Second},
		{"clamped low bpm", 0, 1, 3 * time.Second}, // bpm floors at 20
		{"clamped high spb", 120, 99, 60 * time.Second / (120 * 16)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StepDuration(tt.bpm, tt.spb); got != tt.want {
				t.Errorf("StepDuration(%d, %d) = %v, want %v", tt.bpm, tt.spb, got, tt.want)
			}
		})
	}
}

func TestTempoChangeAppliesNextTick(t *testing.T) {
	pool := poolWithSteps(t, 8)
	tl := NewTimeline(pool)

	bpm := 120
	sched := &manualScheduler{}
	tr := NewTransport(sched, tl,
		func(f func()) { f() },
		func() int { return bpm },
		func(Location, time.Duration) {},
		func() {},
	)

	tr.Start(0)
	firstArm := sched.d
	bpm = 240
	sched.fire()
	if sched.d >= firstArm {
		t.Fatalf("tempo change did not shorten the next step: %v -> %v", firstArm, sched.d)
	}
	if sched.d != StepDuration(240, 2) {
		t.Fatalf("rearmed with %v, want %v", sched.d, StepDuration(240, 2))
	}
}

func TestClampTempoNonFinite(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{140, 140},
		{1e9, MaxTempo},
		{-5, MinTempo},
	}
	for _, tt := range tests {
		if got := ClampTempo(tt.in); got != tt.want {
			t.Errorf("ClampTempo(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
