package sequencer

import "gridseq/debug"

// Cell addresses one grid position of the displayed pattern's selected
// layer: Step is the column, Pitch the row (0 highest).
type Cell struct {
	Step  int
	Pitch int
}

// Modifiers are the abstract modifier keys delivered with pointer
// events. Ctrl starts a rectangle selection, Shift toggles membership,
// Alt turns a drag into a clone.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

type editorState int

const (
	stateIdle editorState = iota
	statePainting
	stateRectSelecting
	stateDragging
)

// dragState is the transient payload of an in-progress move or clone
type dragState struct {
	anchor  Cell
	payload []Cell
	cloning bool

	// what the previous move wrote, and which of those cells already
	// held a note, so each move can be rolled back before the next
	lastWritten     []Cell
	lastOverwritten []Cell
}

// Editor is the pointer/keyboard state machine for painting,
// multi-select, rectangle select and drag move/clone. It mutates the
// session's displayed pattern directly, whether or not the transport
// is running.
type Editor struct {
	session *Session

	state       editorState
	paintTarget bool
	selection   map[Cell]struct{}

	rectAnchor Cell
	rectExtent Cell

	drag dragState
}

// NewEditor creates an idle editor over the session grid
func NewEditor(session *Session) *Editor {
	return &Editor{
		session:   session,
		selection: make(map[Cell]struct{}),
	}
}

// clearTransient drops the selection and any in-progress gesture.
// Called when the displayed pattern or layer changes, since selection
// coordinates only mean anything on the grid they were made on.
func (e *Editor) clearTransient() {
	e.selection = make(map[Cell]struct{})
	e.drag = dragState{}
	e.state = stateIdle
}

// Selected reports whether the cell is in the current selection
func (e *Editor) Selected(c Cell) bool {
	_, ok := e.selection[c]
	return ok
}

// SelectionSize returns the number of selected cells
func (e *Editor) SelectionSize() int {
	return len(e.selection)
}

// Dragging reports whether a drag is in progress
func (e *Editor) Dragging() bool {
	return e.state == stateDragging
}

// RectSelecting returns the in-progress marquee corners (ok=false when idle)
func (e *Editor) RectSelecting() (anchor, extent Cell, ok bool) {
	if e.state != stateRectSelecting {
		return Cell{}, Cell{}, false
	}
	return e.rectAnchor, e.rectExtent, true
}

// PointerDown handles a press on cell c. Ignored unless idle.
func (e *Editor) PointerDown(c Cell, mods Modifiers) {
	if e.state != stateIdle {
		return
	}

	switch {
	case mods.Ctrl:
		e.state = stateRectSelecting
		e.rectAnchor = c
		e.rectExtent = c

	case mods.Shift && e.session.cellActive(c):
		// additive: toggle membership, stay idle
		if e.Selected(c) {
			delete(e.selection, c)
		} else {
			e.selection[c] = struct{}{}
		}

	case e.Selected(c) && len(e.selection) > 0:
		// grab the whole selection as the drag payload
		payload := make([]Cell, 0, len(e.selection))
		for cell := range e.selection {
			payload = append(payload, cell)
		}
		e.selection = make(map[Cell]struct{})
		e.drag = dragState{anchor: c, payload: payload, cloning: mods.Alt}
		if !e.drag.cloning {
			// the first move lifts the originals; a clone leaves them
			e.drag.lastWritten = append([]Cell(nil), payload...)
		}
		e.state = stateDragging
		debug.Log("editor", "drag start cells=%d clone=%v", len(payload), mods.Alt)

	default:
		e.selection = make(map[Cell]struct{})
		e.paintTarget = !e.session.cellActive(c)
		e.session.writeCell(c, e.paintTarget)
		e.state = statePainting
	}
}

// PointerEnter handles the pointer crossing into cell c while active
func (e *Editor) PointerEnter(c Cell) {
	switch e.state {
	case stateRectSelecting:
		e.rectExtent = c

	case statePainting:
		e.session.writeCell(c, e.paintTarget)

	case stateDragging:
		e.moveDrag(c)
	}
}

// moveDrag rolls back the previous move and writes the payload at the
// new offset, remembering what it covered
func (e *Editor) moveDrag(c Cell) {
	for _, w := range e.drag.lastWritten {
		e.session.setCellRaw(w, false)
	}
	for _, o := range e.drag.lastOverwritten {
		e.session.setCellRaw(o, true)
	}

	dStep := c.Step - e.drag.anchor.Step
	dPitch := c.Pitch - e.drag.anchor.Pitch

	// targets bypass the scale lock: a drag moves existing notes, it
	// never places new ones
	var written, overwritten []Cell
	for _, p := range e.drag.payload {
		target := Cell{Step: p.Step + dStep, Pitch: p.Pitch + dPitch}
		if !e.session.cellInBounds(target) {
			continue
		}
		had := e.session.cellActive(target)
		e.session.setCellRaw(target, true)
		written = append(written, target)
		if had {
			overwritten = append(overwritten, target)
		}
	}
	e.drag.lastWritten = written
	e.drag.lastOverwritten = overwritten
}

// cancelDrag rolls back the in-progress move and restores the payload
// at its original coordinates
func (e *Editor) cancelDrag() {
	for _, w := range e.drag.lastWritten {
		e.session.setCellRaw(w, false)
	}
	for _, o := range e.drag.lastOverwritten {
		e.session.setCellRaw(o, true)
	}
	for _, p := range e.drag.payload {
		e.session.setCellRaw(p, true)
	}
	e.drag = dragState{}
	e.state = stateIdle
}

// PointerUp ends whatever gesture is in progress (global release)
func (e *Editor) PointerUp() {
	switch e.state {
	case stateRectSelecting:
		e.commitRect()
	case stateDragging:
		// payload stays committed at its final position
		e.drag = dragState{}
	}
	e.state = stateIdle
}

// commitRect adds every note-bearing cell inside the marquee to the selection
func (e *Editor) commitRect() {
	s0, s1 := ordered(e.rectAnchor.Step, e.rectExtent.Step)
	p0, p1 := ordered(e.rectAnchor.Pitch, e.rectExtent.Pitch)
	for step := s0; step <= s1; step++ {
		for pitch := p0; pitch <= p1; pitch++ {
			c := Cell{Step: step, Pitch: pitch}
			if e.session.cellActive(c) {
				e.selection[c] = struct{}{}
			}
		}
	}
}

// KeyDown handles an abstract keyboard event. The UI layer is
// responsible for suppressing these while a text entry has focus.
func (e *Editor) KeyDown(key string) {
	switch key {
	case "delete", "backspace":
		for c := range e.selection {
			e.session.setCellRaw(c, false)
		}
		e.selection = make(map[Cell]struct{})

	case "esc":
		if e.state == stateDragging {
			e.cancelDrag()
		}
		if e.state == stateRectSelecting {
			e.state = stateIdle
		}
		e.selection = make(map[Cell]struct{})

	case "up":
		e.nudge(0, -1)
	case "down":
		e.nudge(0, 1)
	case "left":
		e.nudge(-1, 0)
	case "right":
		e.nudge(1, 0)

	case " ", "space":
		e.session.togglePlayLocked()
	}
}

// nudge translates the whole selection by one unit. The move is atomic:
// if any member would leave the grid, nothing changes.
func (e *Editor) nudge(dStep, dPitch int) {
	if len(e.selection) == 0 {
		return
	}
	targets := make(map[Cell]struct{}, len(e.selection))
	for c := range e.selection {
		t := Cell{Step: c.Step + dStep, Pitch: c.Pitch + dPitch}
		if !e.session.cellInBounds(t) {
			return
		}
		targets[t] = struct{}{}
	}
	for c := range e.selection {
		e.session.setCellRaw(c, false)
	}
	for t := range targets {
		e.session.setCellRaw(t, true)
	}
	e.selection = targets
}

func ordered(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
