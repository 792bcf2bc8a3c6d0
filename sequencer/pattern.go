package sequencer

import "math"

const (
	// NumPatterns is the fixed pattern pool size
	NumPatterns = 8
	// NumPitches is the grid height: 6 octaves, slot 0 highest
	NumPitches = 72
	// BaseNote is the MIDI note of the lowest pitch slot (C1)
	BaseNote = 24

	// Meter bounds
	MinBeats        = 1
	MaxBeats        = 16
	MinStepsPerBeat = 1
	MaxStepsPerBeat = 16
)

// Step holds one active flag per pitch slot for a single time slice
type Step [NumPitches]bool

// Pattern is a fixed-meter block of steps, one layer per synth voice.
// All layers always have the same length: BeatsPerMeasure*StepsPerBeat.
type Pattern struct {
	ID              int
	BeatsPerMeasure int
	StepsPerBeat    int
	Layers          [][]Step
}

// NewPattern creates a pattern with the default 4/4 meter and one layer
// per voice
func NewPattern(id, numVoices int) *Pattern {
	p := &Pattern{
		ID:              id,
		BeatsPerMeasure: 4,
		StepsPerBeat:    4,
		Layers:          make([][]Step, numVoices),
	}
	for i := range p.Layers {
		p.Layers[i] = make([]Step, p.NumSteps())
	}
	return p
}

// NumSteps returns the pattern's current step count
func (p *Pattern) NumSteps() int {
	return clampMeter(p.BeatsPerMeasure, MinBeats, MaxBeats) *
		clampMeter(p.StepsPerBeat, MinStepsPerBeat, MaxStepsPerBeat)
}

// Resize sets the meter and grows or shrinks every layer in place.
// Growing pads with inactive steps; shrinking truncates, dropping any
// notes beyond the new boundary.
func (p *Pattern) Resize(beats, stepsPerBeat int) {
	p.BeatsPerMeasure = clampMeter(beats, MinBeats, MaxBeats)
	p.StepsPerBeat = clampMeter(stepsPerBeat, MinStepsPerBeat, MaxStepsPerBeat)
	n := p.BeatsPerMeasure * p.StepsPerBeat
	for i, layer := range p.Layers {
		if len(layer) > n {
			p.Layers[i] = layer[:n]
		} else {
			for len(p.Layers[i]) < n {
				p.Layers[i] = append(p.Layers[i], Step{})
			}
		}
	}
}

// ResizeFloat clamps possibly non-finite meter values before resizing.
// Non-finite input maps to the minimum bound, fractions truncate.
func (p *Pattern) ResizeFloat(beats, stepsPerBeat float64) {
	p.Resize(floatToMeter(beats), floatToMeter(stepsPerBeat))
}

// Clear wipes every note in every layer, keeping the meter
func (p *Pattern) Clear() {
	for i := range p.Layers {
		for s := range p.Layers[i] {
			p.Layers[i][s] = Step{}
		}
	}
}

// Active reports whether the cell is in bounds and holds a note
func (p *Pattern) Active(layer, step, pitch int) bool {
	if layer < 0 || layer >= len(p.Layers) {
		return false
	}
	if step < 0 || step >= len(p.Layers[layer]) {
		return false
	}
	if pitch < 0 || pitch >= NumPitches {
		return false
	}
	return p.Layers[layer][step][pitch]
}

// Set writes a cell; out-of-bounds writes are silent no-ops
func (p *Pattern) Set(layer, step, pitch int, on bool) {
	if layer < 0 || layer >= len(p.Layers) {
		return
	}
	if step < 0 || step >= len(p.Layers[layer]) {
		return
	}
	if pitch < 0 || pitch >= NumPitches {
		return
	}
	p.Layers[layer][step][pitch] = on
}

// HasContent reports whether any layer holds any note
func (p *Pattern) HasContent() bool {
	for _, layer := range p.Layers {
		for _, step := range layer {
			for _, on := range step {
				if on {
					return true
				}
			}
		}
	}
	return false
}

func clampMeter(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floatToMeter(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MinBeats
	}
	return int(v)
}
