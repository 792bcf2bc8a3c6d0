package sequencer

import "testing"

// poolWithSteps builds a pattern pool where pattern i has the given
// step count (steps must divide into a valid meter; we use beats=n/2,
// stepsPerBeat=2 for even n)
func poolWithSteps(t *testing.T, counts ...int) []*Pattern {
	t.Helper()
	pool := make([]*Pattern, NumPatterns)
	for i := range pool {
		pool[i] = NewPattern(i, 1)
	}
	for i, n := range counts {
		if n%2 != 0 {
			t.Fatalf("step count %d not expressible with stepsPerBeat=2", n)
		}
		pool[i].Resize(n/2, 2)
		if pool[i].NumSteps() != n {
			t.Fatalf("pattern %d steps = %d, want %d", i, pool[i].NumSteps(), n)
		}
	}
	return pool
}

func TestTimelineResolution(t *testing.T) {
	pool := poolWithSteps(t, 8, 16, 8)
	tl := NewTimeline(pool)
	tl.entries = []int{0, 1, 2}

	if got := tl.TotalSteps(); got != 32 {
		t.Fatalf("TotalSteps() = %d, want 32", got)
	}
	if got := tl.FirstStepOf(2); got != 24 {
		t.Fatalf("FirstStepOf(2) = %d, want 24", got)
	}

	tests := []struct {
		step     int
		wantOK   bool
		wantSeq  int
		wantPat  int
		wantStep int
	}{
		{0, true, 0, 0, 0},
		{7, true, 0, 0, 7},
		{8, true, 1, 1, 0},
		{23, true, 1, 1, 15},
		{24, true, 2, 2, 0},
		{31, true, 2, 2, 7},
		{32, false, 0, 0, 0},
		{-1, false, 0, 0, 0},
	}
	for _, tt := range tests {
		loc, ok := tl.Locate(tt.step)
		if ok != tt.wantOK {
			t.Fatalf("Locate(%d) ok = %v, want %v", tt.step, ok, tt.wantOK)
		}
		if !ok {
			continue
		}
		if loc.SequenceIndex != tt.wantSeq || loc.PatternID != tt.wantPat || loc.LocalStep != tt.wantStep {
			t.Errorf("Locate(%d) = %+v, want seq=%d pat=%d local=%d",
				tt.step, loc, tt.wantSeq, tt.wantPat, tt.wantStep)
		}
	}
}

func TestTotalStepsFlooredAtOne(t *testing.T) {
	pool := []*Pattern{}
	tl := &Timeline{pool: pool, entries: []int{0}}
	if got := tl.TotalSteps(); got != 1 {
		t.Fatalf("TotalSteps() = %d, want floor of 1", got)
	}
}

func TestCyclePatternWraps(t *testing.T) {
	pool := poolWithSteps(t)
	tl := NewTimeline(pool)
	tl.entries = []int{NumPatterns - 1}

	tl.CyclePattern(0, +1)
	if got := tl.PatternAt(0); got != 0 {
		t.Fatalf("cycle up from last = %d, want 0 (wrap)", got)
	}
	tl.CyclePattern(0, -1)
	if got := tl.PatternAt(0); got != NumPatterns-1 {
		t.Fatalf("cycle down from 0 = %d, want %d (wrap)", got, NumPatterns-1)
	}
	// sequence length never changes
	if tl.Len() != 1 {
		t.Fatal("CyclePattern changed sequence length")
	}
}

func TestMoveEntry(t *testing.T) {
	pool := poolWithSteps(t)
	tl := NewTimeline(pool)
	tl.entries = []int{0, 1, 2}

	tl.MoveEntry(0, -1) // boundary no-op
	tl.MoveEntry(2, +1) // boundary no-op
	if got := tl.Entries(); got[0] != 0 || got[2] != 2 {
		t.Fatalf("boundary moves changed entries: %v", got)
	}

	tl.MoveEntry(0, +1)
	if got := tl.Entries(); got[0] != 1 || got[1] != 0 {
		t.Fatalf("MoveEntry(0,+1) = %v, want [1 0 2]", got)
	}
}

func TestAppendRemoveBounds(t *testing.T) {
	pool := poolWithSteps(t)
	tl := NewTimeline(pool)

	// cannot drop the last entry
	tl.Remove(0)
	if tl.Len() != 1 {
		t.Fatalf("Remove emptied the sequence: len=%d", tl.Len())
	}

	for i := 0; i < 12; i++ {
		tl.Append(1)
	}
	if tl.Len() != MaxSequenceLen {
		t.Fatalf("Append ignored the cap: len=%d", tl.Len())
	}

	tl.Remove(3)
	if tl.Len() != MaxSequenceLen-1 {
		t.Fatalf("Remove failed: len=%d", tl.Len())
	}
}
