package sequencer

import "testing"

func TestSelectPatternDropsSelection(t *testing.T) {
	s, _, _ := newTestSession()
	s.SetAllowNonScale(true)
	c := Cell{Step: 0, Pitch: 10}
	paint(s, c)
	shiftClick(s, c)

	s.SelectPattern(1)

	if s.EditPattern() != 1 {
		t.Fatalf("edit pattern = %d, want 1", s.EditPattern())
	}
	if s.SelectionSize() != 0 {
		t.Fatal("selection survived a pattern switch")
	}
	// the note itself lives on pattern 0
	s.SelectPattern(0)
	if !s.CellActive(c) {
		t.Fatal("note lost after switching back")
	}
}

func TestSelectLayerDropsSelection(t *testing.T) {
	s, _, _ := newTestSession()
	s.SetAllowNonScale(true)
	c := Cell{Step: 0, Pitch: 10}
	paint(s, c)
	shiftClick(s, c)

	s.SelectLayer(1)

	if s.SelectionSize() != 0 {
		t.Fatal("selection survived a layer switch")
	}
	if s.CellActive(c) {
		t.Fatal("layer 1 shows layer 0's note")
	}
}

func TestSetMeterTruncatesAndClamps(t *testing.T) {
	s, _, _ := newTestSession()
	s.SetAllowNonScale(true)
	paint(s, Cell{Step: 10, Pitch: 5})
	shiftClick(s, Cell{Step: 10, Pitch: 5})

	s.SetMeter(2, 4)

	if got := s.PatternSteps(); got != 8 {
		t.Fatalf("pattern steps = %d, want 8", got)
	}
	if s.SelectionSize() != 0 {
		t.Fatal("selection survived a meter change")
	}

	// re-grow: the truncated note is gone for good
	s.SetMeter(4, 4)
	if s.CellActive(Cell{Step: 10, Pitch: 5}) {
		t.Fatal("truncated note reappeared after re-growing")
	}

	s.SetMeter(99, -3)
	beats, spb := s.Meter()
	if beats != MaxBeats || spb != MinStepsPerBeat {
		t.Fatalf("meter = %dx%d, want %dx%d", beats, spb, MaxBeats, MinStepsPerBeat)
	}
}

func TestToggleMute(t *testing.T) {
	s, _, _ := newTestSession()
	s.ToggleMute(0)
	if !s.Synths()[0].Muted {
		t.Fatal("mute did not stick")
	}
	s.ToggleMute(0)
	if s.Synths()[0].Muted {
		t.Fatal("unmute did not stick")
	}
	s.ToggleMute(99) // out of range, no-op
}

func TestSynthsReturnsSnapshot(t *testing.T) {
	s, _, _ := newTestSession()
	bank := s.Synths()

	// writing the copy never reaches the session
	bank[0].Muted = true
	if s.Synths()[0].Muted {
		t.Fatal("mutating the returned bank leaked into the session")
	}

	// and session changes never reach an already-taken copy
	s.ToggleMute(0)
	stale := s.Synths()
	s.ToggleMute(0)
	if !stale[0].Muted {
		t.Fatal("snapshot changed after it was taken")
	}
}

func TestSequenceCursorFollowsMove(t *testing.T) {
	s, _, _ := newTestSession()
	s.AppendSequenceEntry()
	s.AppendSequenceEntry()
	s.SetSeqCursor(1)

	s.MoveSequenceEntry(1, 1)
	if s.SeqCursor() != 2 {
		t.Fatalf("cursor = %d, want 2 (carried with the entry)", s.SeqCursor())
	}

	s.RemoveSequenceEntry()
	s.RemoveSequenceEntry()
	if got := len(s.SequenceEntries()); got != 1 {
		t.Fatalf("sequence length = %d, want 1", got)
	}
	if s.SeqCursor() != 0 {
		t.Fatalf("cursor = %d, want 0 after shrinking", s.SeqCursor())
	}
}

func TestPlaybackDispatchesPaintedNotes(t *testing.T) {
	s, backend, sched := newTestSession()
	s.SetAllowNonScale(true)
	s.SetMeter(1, 2) // 2 steps
	paint(s, Cell{Step: 0, Pitch: 10})
	paint(s, Cell{Step: 1, Pitch: 20})

	s.Play()
	if len(backend.played) != 1 {
		t.Fatalf("played %d notes at start, want 1", len(backend.played))
	}
	if got, want := backend.played[0].note, MIDINote(10); got != want {
		t.Errorf("first note = %d, want %d", got, want)
	}

	sched.fire()
	if len(backend.played) != 2 {
		t.Fatalf("played %d notes after one tick, want 2", len(backend.played))
	}
	if got, want := backend.played[1].note, MIDINote(20); got != want {
		t.Errorf("second note = %d, want %d", got, want)
	}

	sched.fire() // wraps back to step 0
	if len(backend.played) != 3 || backend.played[2].note != MIDINote(10) {
		t.Fatal("loop did not wrap to the first step")
	}
}

func TestPlayheadInPatternTracksDisplay(t *testing.T) {
	s, _, _ := newTestSession()
	if s.PlayheadInPattern() != -1 {
		t.Fatal("stopped transport reported a playhead")
	}

	s.Play()
	if got := s.PlayheadInPattern(); got != 0 {
		t.Fatalf("playhead = %d, want 0", got)
	}

	// displayed pattern is not the playing one
	s.SelectPattern(1)
	if s.PlayheadInPattern() != -1 {
		t.Fatal("playhead shown on a pattern that is not playing")
	}
	s.Stop()
}

func TestCloseSilencesEverything(t *testing.T) {
	s, backend, _ := newTestSession()
	s.SetAllowNonScale(true)

	// sustain a legato voice through the pad layer
	s.SelectLayer(1)
	paint(s, Cell{Step: 0, Pitch: 10})
	s.Play()
	if s.dispatcher.SustainedVoices() != 1 {
		t.Fatalf("sustained voices = %d, want 1", s.dispatcher.SustainedVoices())
	}

	s.Close()
	if s.Playing() {
		t.Fatal("close left the transport running")
	}
	if s.dispatcher.SustainedVoices() != 0 {
		t.Fatal("close left sustained voices")
	}
	for _, n := range backend.played {
		if !n.voice.stopped {
			t.Fatal("close left a voice sounding")
		}
	}
}
