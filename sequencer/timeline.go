package sequencer

const (
	// MinSequenceLen and MaxSequenceLen bound the playable sequence
	MinSequenceLen = 1
	MaxSequenceLen = 8
)

// Timeline is the ordered list of pattern references forming the song.
// It references patterns in the pool by id and owns nothing.
type Timeline struct {
	pool    []*Pattern
	entries []int
}

// Location is a resolved (sequence entry, pattern, local step) triple
type Location struct {
	SequenceIndex int
	PatternID     int
	LocalStep     int
}

// NewTimeline creates a timeline over the pattern pool, starting with a
// single entry referencing pattern 0
func NewTimeline(pool []*Pattern) *Timeline {
	return &Timeline{pool: pool, entries: []int{0}}
}

// Entries returns the sequence as pattern ids
func (t *Timeline) Entries() []int {
	return t.entries
}

// Len returns the number of sequence entries
func (t *Timeline) Len() int {
	return len(t.entries)
}

// PatternAt returns the id referenced at sequence position i (-1 if out of range)
func (t *Timeline) PatternAt(i int) int {
	if i < 0 || i >= len(t.entries) {
		return -1
	}
	return t.entries[i]
}

// StepsPerPattern returns the step count of the pattern at a pool id
func (t *Timeline) StepsPerPattern(id int) int {
	if id < 0 || id >= len(t.pool) {
		return 0
	}
	return t.pool[id].NumSteps()
}

// TotalSteps sums the step counts of every referenced pattern, floored at 1
func (t *Timeline) TotalSteps() int {
	total := 0
	for _, id := range t.entries {
		total += t.StepsPerPattern(id)
	}
	if total < 1 {
		return 1
	}
	return total
}

// FirstStepOf returns the global step where sequence entry i begins
func (t *Timeline) FirstStepOf(i int) int {
	first := 0
	for j := 0; j < i && j < len(t.entries); j++ {
		first += t.StepsPerPattern(t.entries[j])
	}
	return first
}

// Locate resolves a global step to a (sequence entry, pattern, local step)
// triple. ok is false when step falls beyond the sequence.
func (t *Timeline) Locate(step int) (loc Location, ok bool) {
	if step < 0 {
		return Location{}, false
	}
	acc := 0
	for i, id := range t.entries {
		n := t.StepsPerPattern(id)
		if step < acc+n {
			return Location{SequenceIndex: i, PatternID: id, LocalStep: step - acc}, true
		}
		acc += n
	}
	return Location{}, false
}

// CyclePattern replaces the pattern referenced at position i with the
// next/previous id in the pool, wrapping. Sequence length is unchanged.
func (t *Timeline) CyclePattern(i, dir int) {
	if i < 0 || i >= len(t.entries) {
		return
	}
	n := len(t.pool)
	t.entries[i] = ((t.entries[i]+dir)%n + n) % n
}

// MoveEntry swaps the entries at i and i+dir; no-op at either boundary
func (t *Timeline) MoveEntry(i, dir int) {
	j := i + dir
	if i < 0 || i >= len(t.entries) || j < 0 || j >= len(t.entries) {
		return
	}
	t.entries[i], t.entries[j] = t.entries[j], t.entries[i]
}

// Append adds a reference to the pattern at the end (no-op at max length)
func (t *Timeline) Append(id int) {
	if len(t.entries) >= MaxSequenceLen || id < 0 || id >= len(t.pool) {
		return
	}
	t.entries = append(t.entries, id)
}

// Remove drops the entry at position i, keeping at least one entry
func (t *Timeline) Remove(i int) {
	if i < 0 || i >= len(t.entries) || len(t.entries) <= MinSequenceLen {
		return
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
}
