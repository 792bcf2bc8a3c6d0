package sequencer

import (
	"sync"
	"time"

	"gridseq/debug"
)

// Session is the single exclusive owner of all sequencer state: the
// pattern pool, the synth bank, the timeline, the selection and the
// transport. Every mutation, including the transport's timer callback,
// runs behind one mutex, so edits land between ticks, never mid-tick.
// Observers watch via UpdateChan, never via shared state.
type Session struct {
	mu sync.Mutex

	patterns []*Pattern
	synths   []*Synth
	timeline *Timeline

	transport  *Transport
	dispatcher *Dispatcher
	editor     *Editor

	tempo         int
	key           string
	scale         string
	allowNonScale bool

	editPattern int // displayed pattern id
	editLayer   int // selected layer / synth
	seqCursor   int // selected sequence position, transport start point

	// Notify observers of updates
	UpdateChan chan struct{}
}

// NewSession allocates the fixed pattern pool and wires the transport,
// dispatcher and editor against the backend
func NewSession(backend Backend) *Session {
	s := &Session{
		synths:     DefaultSynths(),
		tempo:      120,
		key:        "C",
		scale:      "Major",
		UpdateChan: make(chan struct{}, 1),
	}
	s.patterns = make([]*Pattern, NumPatterns)
	for i := range s.patterns {
		s.patterns[i] = NewPattern(i, len(s.synths))
	}
	s.timeline = NewTimeline(s.patterns)
	s.dispatcher = NewDispatcher(backend)
	s.editor = NewEditor(s)
	s.transport = NewTransport(
		&timerScheduler{},
		s.timeline,
		s.runLocked,
		func() int { return s.tempo },
		s.dispatchStep,
		s.dispatcher.FlushAll,
	)
	return s
}

// runLocked serializes a transport timer callback with the rest of the
// session and notifies observers afterwards
func (s *Session) runLocked(f func()) {
	s.mu.Lock()
	f()
	s.mu.Unlock()
	s.notify()
}

// dispatchStep plays one resolved step; the caller holds the lock
func (s *Session) dispatchStep(loc Location, stepDur time.Duration) {
	s.dispatcher.DispatchStep(s.patterns[loc.PatternID], loc.LocalStep, s.synths, stepDur)
}

// notify wakes observers without ever blocking
func (s *Session) notify() {
	select {
	case s.UpdateChan <- struct{}{}:
	default:
	}
}

// Transport control

// Play starts playback from the selected sequence position
func (s *Session) Play() {
	s.mu.Lock()
	s.transport.Start(s.seqCursor)
	s.mu.Unlock()
	s.notify()
}

// Stop halts playback and silences every sustained voice
func (s *Session) Stop() {
	s.mu.Lock()
	s.transport.Stop()
	s.mu.Unlock()
	s.notify()
}

// PlayToggle starts or stops depending on the current state
func (s *Session) PlayToggle() {
	s.mu.Lock()
	s.togglePlayLocked()
	s.mu.Unlock()
	s.notify()
}

func (s *Session) togglePlayLocked() {
	if s.transport.Playing() {
		s.transport.Stop()
	} else {
		s.transport.Start(s.seqCursor)
	}
}

// Playing reports whether the transport is running
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport.Playing()
}

// CurrentStep returns the global step last dispatched
func (s *Session) CurrentStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport.CurrentStep()
}

// PlayheadInPattern returns the local playhead step when the playing
// pattern is the displayed one, else -1
func (s *Session) PlayheadInPattern() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.transport.Playing() {
		return -1
	}
	loc, ok := s.timeline.Locate(s.transport.CurrentStep())
	if !ok || loc.PatternID != s.editPattern {
		return -1
	}
	return loc.LocalStep
}

// PlayingSequenceIndex returns the sequence entry under the playhead,
// or -1 when stopped
func (s *Session) PlayingSequenceIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.transport.Playing() {
		return -1
	}
	loc, ok := s.timeline.Locate(s.transport.CurrentStep())
	if !ok {
		return -1
	}
	return loc.SequenceIndex
}

// Tempo and musical context

// SetTempo clamps and stores the session BPM; live changes apply from
// the next scheduler tick, no restart needed
func (s *Session) SetTempo(bpm int) {
	s.mu.Lock()
	s.tempo = clampMeter(bpm, MinTempo, MaxTempo)
	s.mu.Unlock()
	s.notify()
}

// Tempo returns the session BPM
func (s *Session) Tempo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempo
}

// SetKeyScale sets the musical key and scale used for shading and the
// scale lock
func (s *Session) SetKeyScale(key, scale string) {
	s.mu.Lock()
	s.key = key
	s.scale = scale
	s.mu.Unlock()
	s.notify()
}

// KeyScale returns the current key and scale names
func (s *Session) KeyScale() (key, scale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, s.scale
}

// SetAllowNonScale toggles whether out-of-scale cells accept new notes
func (s *Session) SetAllowNonScale(allow bool) {
	s.mu.Lock()
	s.allowNonScale = allow
	s.mu.Unlock()
	s.notify()
}

// AllowNonScale reports the scale-lock setting
func (s *Session) AllowNonScale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowNonScale
}

// Pattern and layer focus

// SelectPattern switches the displayed pattern. Editing focus only;
// playback follows the timeline.
func (s *Session) SelectPattern(id int) {
	s.mu.Lock()
	if id >= 0 && id < len(s.patterns) && id != s.editPattern {
		s.editPattern = id
		s.editor.clearTransient()
	}
	s.mu.Unlock()
	s.notify()
}

// EditPattern returns the displayed pattern id
func (s *Session) EditPattern() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editPattern
}

// SelectLayer switches the selected voice layer
func (s *Session) SelectLayer(i int) {
	s.mu.Lock()
	if i >= 0 && i < len(s.synths) && i != s.editLayer {
		s.editLayer = i
		s.editor.clearTransient()
	}
	s.mu.Unlock()
	s.notify()
}

// EditLayer returns the selected voice layer index
func (s *Session) EditLayer() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editLayer
}

// Synths returns a snapshot of the voice bank. Observers read the
// copy; the live synths only change under the session lock.
func (s *Session) Synths() []Synth {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Synth, len(s.synths))
	for i, syn := range s.synths {
		out[i] = *syn
	}
	return out
}

// ToggleMute flips a voice layer's mute flag
func (s *Session) ToggleMute(i int) {
	s.mu.Lock()
	if i >= 0 && i < len(s.synths) {
		s.synths[i].Muted = !s.synths[i].Muted
	}
	s.mu.Unlock()
	s.notify()
}

// Meter of the displayed pattern

// SetMeter resizes the displayed pattern in place; shrinking drops
// notes beyond the new length
func (s *Session) SetMeter(beats, stepsPerBeat int) {
	s.mu.Lock()
	s.patterns[s.editPattern].Resize(beats, stepsPerBeat)
	s.editor.clearTransient()
	s.mu.Unlock()
	s.notify()
}

// Meter returns the displayed pattern's beats per measure and steps per beat
func (s *Session) Meter() (beats, stepsPerBeat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.patterns[s.editPattern]
	return p.BeatsPerMeasure, p.StepsPerBeat
}

// PatternSteps returns the displayed pattern's step count
func (s *Session) PatternSteps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patterns[s.editPattern].NumSteps()
}

// ClearPattern wipes every note of the displayed pattern
func (s *Session) ClearPattern() {
	s.mu.Lock()
	s.patterns[s.editPattern].Clear()
	s.editor.clearTransient()
	s.mu.Unlock()
	s.notify()
}

// ContentMask reports which pool patterns hold any notes
func (s *Session) ContentMask() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mask := make([]bool, len(s.patterns))
	for i, p := range s.patterns {
		mask[i] = p.HasContent()
	}
	return mask
}

// Sequence editing

// SequenceEntries returns the timeline as pattern ids
func (s *Session) SequenceEntries() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.timeline.Entries()...)
}

// SeqCursor returns the selected sequence position
func (s *Session) SeqCursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqCursor
}

// SetSeqCursor moves the selected sequence position
func (s *Session) SetSeqCursor(i int) {
	s.mu.Lock()
	if i >= 0 && i < s.timeline.Len() {
		s.seqCursor = i
	}
	s.mu.Unlock()
	s.notify()
}

// CycleSequencePattern swaps which pattern plays at sequence position i
func (s *Session) CycleSequencePattern(i, dir int) {
	s.mu.Lock()
	s.timeline.CyclePattern(i, dir)
	s.mu.Unlock()
	s.notify()
}

// MoveSequenceEntry swaps adjacent sequence entries, carrying the
// cursor with the moved entry
func (s *Session) MoveSequenceEntry(i, dir int) {
	s.mu.Lock()
	s.timeline.MoveEntry(i, dir)
	if j := i + dir; s.seqCursor == i && j >= 0 && j < s.timeline.Len() {
		s.seqCursor = j
	}
	s.mu.Unlock()
	s.notify()
}

// AppendSequenceEntry adds the displayed pattern to the end of the sequence
func (s *Session) AppendSequenceEntry() {
	s.mu.Lock()
	s.timeline.Append(s.editPattern)
	s.mu.Unlock()
	s.notify()
}

// RemoveSequenceEntry drops the sequence entry at the cursor
func (s *Session) RemoveSequenceEntry() {
	s.mu.Lock()
	s.timeline.Remove(s.seqCursor)
	if s.seqCursor >= s.timeline.Len() {
		s.seqCursor = s.timeline.Len() - 1
	}
	s.mu.Unlock()
	s.notify()
}

// TotalSteps returns the sequence length in steps
func (s *Session) TotalSteps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.TotalSteps()
}

// Editor input: the UI layer translates device events into these

// PointerDown forwards a press on a grid cell
func (s *Session) PointerDown(c Cell, mods Modifiers) {
	s.mu.Lock()
	s.editor.PointerDown(c, mods)
	s.mu.Unlock()
	s.notify()
}

// PointerEnter forwards pointer motion into a grid cell
func (s *Session) PointerEnter(c Cell) {
	s.mu.Lock()
	s.editor.PointerEnter(c)
	s.mu.Unlock()
	s.notify()
}

// PointerUp forwards a global release
func (s *Session) PointerUp() {
	s.mu.Lock()
	s.editor.PointerUp()
	s.mu.Unlock()
	s.notify()
}

// KeyDown forwards an abstract key event
func (s *Session) KeyDown(key string) {
	s.mu.Lock()
	s.editor.KeyDown(key)
	s.mu.Unlock()
	s.notify()
}

// Grid queries for rendering

// CellActive reports whether the cell holds a note
func (s *Session) CellActive(c Cell) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cellActive(c)
}

// CellSelected reports whether the cell is selected
func (s *Session) CellSelected(c Cell) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Selected(c)
}

// CellInRect reports whether the cell lies inside the in-progress marquee
func (s *Session) CellInRect(c Cell) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	anchor, extent, ok := s.editor.RectSelecting()
	if !ok {
		return false
	}
	s0, s1 := ordered(anchor.Step, extent.Step)
	p0, p1 := ordered(anchor.Pitch, extent.Pitch)
	return c.Step >= s0 && c.Step <= s1 && c.Pitch >= p0 && c.Pitch <= p1
}

// SelectionSize returns the number of selected cells
func (s *Session) SelectionSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.SelectionSize()
}

// internal grid access for the editor; callers hold the lock

func (s *Session) cellActive(c Cell) bool {
	return s.patterns[s.editPattern].Active(s.editLayer, c.Step, c.Pitch)
}

func (s *Session) cellInBounds(c Cell) bool {
	return c.Step >= 0 && c.Step < s.patterns[s.editPattern].NumSteps() &&
		c.Pitch >= 0 && c.Pitch < NumPitches
}

// writeCell paints a cell honoring bounds and the scale lock.
// Activating an out-of-scale cell is rejected while the lock is on;
// clears always pass, so notes placed before the lock was enabled
// stay removable.
func (s *Session) writeCell(c Cell, on bool) {
	if !s.cellInBounds(c) {
		return
	}
	if on && !s.allowNonScale && !IsInScale(c.Pitch, s.key, s.scale) {
		debug.Log("editor", "scale lock rejected step=%d pitch=%d", c.Step, c.Pitch)
		return
	}
	s.patterns[s.editPattern].Set(s.editLayer, c.Step, c.Pitch, on)
}

// setCellRaw bypasses the scale lock for restores, deletes and nudges
func (s *Session) setCellRaw(c Cell, on bool) {
	s.patterns[s.editPattern].Set(s.editLayer, c.Step, c.Pitch, on)
}

// Close stops playback and silences everything
func (s *Session) Close() {
	s.mu.Lock()
	s.transport.Stop()
	s.dispatcher.FlushAll()
	s.mu.Unlock()
}
