package sequencer

import "fmt"

// Keys in chromatic order starting at C
var KeyNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ScaleNames lists the selectable scales in menu order
var ScaleNames = []string{
	"Major",
	"Minor",
	"Harmonic Minor",
	"Melodic Minor",
	"Dorian",
	"Phrygian",
	"Lydian",
	"Mixolydian",
	"Locrian",
	"Major Pentatonic",
	"Minor Pentatonic",
	"Blues",
	"Chromatic",
}

// scaleIntervals maps a scale name to its interval set (semitones above the root)
var scaleIntervals = map[string][]int{
	"Major":            {0, 2, 4, 5, 7, 9, 11},
	"Minor":            {0, 2, 3, 5, 7, 8, 10},
	"Harmonic Minor":   {0, 2, 3, 5, 7, 8, 11},
	"Melodic Minor":    {0, 2, 3, 5, 7, 9, 11},
	"Dorian":           {0, 2, 3, 5, 7, 9, 10},
	"Phrygian":         {0, 1, 3, 5, 7, 8, 10},
	"Lydian":           {0, 2, 4, 6, 7, 9, 11},
	"Mixolydian":       {0, 2, 4, 5, 7, 9, 10},
	"Locrian":          {0, 1, 3, 5, 6, 8, 10},
	"Major Pentatonic": {0, 2, 4, 7, 9},
	"Minor Pentatonic": {0, 3, 5, 7, 10},
	"Blues":            {0, 3, 5, 6, 7, 10},
	"Chromatic":        {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

// KeyIndex returns the chromatic index of a key name (0 for unknown)
func KeyIndex(key string) int {
	for i, k := range KeyNames {
		if k == key {
			return i
		}
	}
	return 0
}

// pitchOffset converts a grid pitch slot to its chromatic offset.
// Slot 0 is the highest pitch, so the offset counts up from the bottom row.
func pitchOffset(pitch int) int {
	return ((NumPitches-1-pitch)%12 + 12) % 12
}

// IsRootNote reports whether the pitch slot is the root of the key
func IsRootNote(pitch int, key string) bool {
	return pitchOffset(pitch) == KeyIndex(key)
}

// IsFifthNote reports whether the pitch slot is a perfect fifth above the root
func IsFifthNote(pitch int, key string) bool {
	return pitchOffset(pitch) == (KeyIndex(key)+7)%12
}

// IsInScale reports whether the pitch slot belongs to the named scale in the key.
// Unknown scale names contain nothing.
func IsInScale(pitch int, key, scale string) bool {
	interval := (pitchOffset(pitch) - KeyIndex(key) + 12) % 12
	for _, i := range scaleIntervals[scale] {
		if i == interval {
			return true
		}
	}
	return false
}

// IsFifthInScale reports whether the pitch slot is the fifth and the scale contains it
func IsFifthInScale(pitch int, key, scale string) bool {
	return IsFifthNote(pitch, key) && IsInScale(pitch, key, scale)
}

// NoteName renders a pitch slot as a note name with octave, e.g. "C4"
func NoteName(pitch int) string {
	n := MIDINote(pitch)
	return fmt.Sprintf("%s%d", KeyNames[n%12], n/12-1)
}
