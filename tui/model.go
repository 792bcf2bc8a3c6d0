package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridseq/sequencer"
	"gridseq/theme"
	"gridseq/widgets"
)

// viewRows is how many pitch rows are visible at once
const viewRows = 24

// labelWidth is the note-name gutter before the grid cells
const labelWidth = 5

// layoutBounds holds cached layout info for mouse hit testing
type layoutBounds struct {
	gridTop int
}

type Model struct {
	Session *sequencer.Session
	Theme   *theme.Theme

	pitchTop int // topmost visible pitch slot
	bounds   *layoutBounds
	lastCell sequencer.Cell
	hasCell  bool
	quitting bool
}

type UpdateMsg struct{}

func NewModel(session *sequencer.Session, th *theme.Theme) Model {
	return Model{
		Session:  session,
		Theme:    th,
		pitchTop: 24, // start around the middle octaves
		bounds:   &layoutBounds{},
	}
}

func ListenForUpdates(session *sequencer.Session) tea.Cmd {
	return func() tea.Msg {
		<-session.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Session)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.Session)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Session.Close()
		return m, tea.Quit

	// editor keys go to the core state machine
	case " ", "esc", "up", "down", "left", "right", "delete", "backspace":
		m.Session.KeyDown(msg.String())

	case "+", "=":
		m.Session.SetTempo(m.Session.Tempo() + 5)
	case "-", "_":
		m.Session.SetTempo(m.Session.Tempo() - 5)

	case "1", "2", "3", "4", "5", "6", "7", "8":
		m.Session.SelectPattern(int(msg.String()[0] - '1'))

	case "tab":
		m.Session.SelectLayer((m.Session.EditLayer() + 1) % len(m.Session.Synths()))
	case "m":
		m.Session.ToggleMute(m.Session.EditLayer())

	case "[":
		b, s := m.Session.Meter()
		m.Session.SetMeter(b-1, s)
	case "]":
		b, s := m.Session.Meter()
		m.Session.SetMeter(b+1, s)
	case "{":
		b, s := m.Session.Meter()
		m.Session.SetMeter(b, s-1)
	case "}":
		b, s := m.Session.Meter()
		m.Session.SetMeter(b, s+1)

	case "h":
		m.Session.SetSeqCursor(m.Session.SeqCursor() - 1)
	case "l":
		m.Session.SetSeqCursor(m.Session.SeqCursor() + 1)
	case ",":
		m.Session.CycleSequencePattern(m.Session.SeqCursor(), -1)
	case ".":
		m.Session.CycleSequencePattern(m.Session.SeqCursor(), +1)
	case "H":
		m.Session.MoveSequenceEntry(m.Session.SeqCursor(), -1)
	case "L":
		m.Session.MoveSequenceEntry(m.Session.SeqCursor(), +1)
	case "a":
		m.Session.AppendSequenceEntry()
	case "x":
		m.Session.RemoveSequenceEntry()

	case "k":
		key, scale := m.Session.KeyScale()
		m.Session.SetKeyScale(cycleName(sequencer.KeyNames, key, 1), scale)
	case "K":
		key, scale := m.Session.KeyScale()
		m.Session.SetKeyScale(key, cycleName(sequencer.ScaleNames, scale, 1))
	case "n":
		m.Session.SetAllowNonScale(!m.Session.AllowNonScale())

	case "pgup", "u":
		m.pitchTop = clamp(m.pitchTop-viewRows/2, 0, sequencer.NumPitches-viewRows)
	case "pgdown", "d":
		m.pitchTop = clamp(m.pitchTop+viewRows/2, 0, sequencer.NumPitches-viewRows)

	case "c":
		m.Session.ClearPattern()
	}

	return m, nil
}

// handleMouse translates terminal mouse events into the core's
// abstract pointer protocol
func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if cell, ok := m.cellAt(msg.X, msg.Y); ok {
			m.lastCell, m.hasCell = cell, true
			m.Session.PointerDown(cell, sequencer.Modifiers{
				Shift: msg.Shift,
				Ctrl:  msg.Ctrl,
				Alt:   msg.Alt,
			})
		}

	case tea.MouseActionMotion:
		cell, ok := m.cellAt(msg.X, msg.Y)
		if !ok {
			return
		}
		if !m.hasCell || cell != m.lastCell {
			m.lastCell, m.hasCell = cell, true
			m.Session.PointerEnter(cell)
		}

	case tea.MouseActionRelease:
		m.hasCell = false
		m.Session.PointerUp()
	}
}

// cellAt maps screen coordinates to a grid cell
func (m *Model) cellAt(x, y int) (sequencer.Cell, bool) {
	row := y - m.bounds.gridTop
	col := (x - labelWidth) / 2
	if row < 0 || row >= viewRows || x < labelWidth || col < 0 {
		return sequencer.Cell{}, false
	}
	cell := sequencer.Cell{Step: col, Pitch: m.pitchTop + row}
	if cell.Step >= m.Session.PatternSteps() || cell.Pitch >= sequencer.NumPitches {
		return sequencer.Cell{}, false
	}
	return cell, true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	header := headerStyle.Render(m.headerLine())
	seqLine := m.sequenceLine()
	voices := m.voiceLine()
	grid := m.gridView()
	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "click/drag", Desc: "paint notes  shift:select  ctrl:rectangle  alt:clone drag"},
			{Key: "arrows", Desc: "nudge selection   del: clear selection   esc: deselect"},
			{Key: "space", Desc: "play/stop   +/-: tempo   1-8: pattern   tab: voice   m: mute"},
			{Key: "[ ] { }", Desc: "beats / steps-per-beat   h l , . H L a x: sequence"},
			{Key: "k K n", Desc: "key / scale / allow non-scale   u d: scroll   q: quit"},
		}},
	}))

	// Layout: blank, header, blank, sequence, voices, blank, grid
	m.bounds.gridTop = 1 + lipgloss.Height(header) + 1 +
		lipgloss.Height(seqLine) + lipgloss.Height(voices) + 1

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(seqLine)
	out.WriteString("\n")
	out.WriteString(voices)
	out.WriteString("\n\n")
	out.WriteString(grid)
	out.WriteString("\n\n")
	out.WriteString(help)

	return out.String()
}

func (m Model) headerLine() string {
	playState := "STOP"
	if m.Session.Playing() {
		playState = "PLAY"
	}
	key, scale := m.Session.KeyScale()
	lock := "locked"
	if m.Session.AllowNonScale() {
		lock = "free"
	}
	synth := m.Session.Synths()[m.Session.EditLayer()]
	muted := ""
	if synth.Muted {
		muted = " (muted)"
	}
	beats, spb := m.Session.Meter()
	return fmt.Sprintf("gridseq  %s  %3dbpm  pat:%d %d/%d  voice:%s%s  %s %s (%s)",
		playState, m.Session.Tempo(), m.Session.EditPattern()+1, beats, spb,
		synth.Name, muted, key, scale, lock)
}

// sequenceLine renders the pattern chain with the cursor and playhead
func (m Model) sequenceLine() string {
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Selected())
	playStyle := lipgloss.NewStyle().Foreground(m.Theme.Playhead())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())

	entries := m.Session.SequenceEntries()
	cursor := m.Session.SeqCursor()
	playingAt := -1
	if m.Session.Playing() {
		playingAt = m.playingSequenceIndex()
	}

	var parts []string
	for i, id := range entries {
		cell := fmt.Sprintf("%d", id+1)
		switch {
		case i == playingAt:
			cell = playStyle.Render("▶" + cell)
		case i == cursor:
			cell = cursorStyle.Render("[" + cell + "]")
		default:
			cell = dimStyle.Render(" " + cell + " ")
		}
		parts = append(parts, cell)
	}
	return "seq: " + strings.Join(parts, " ")
}

// voiceLine renders a swatch per voice, the edit layer highlighted
func (m Model) voiceLine() string {
	var parts []string
	for i, syn := range m.Session.Synths() {
		role := theme.RoleMuted
		if i == m.Session.EditLayer() {
			role = theme.RoleAccent
		}
		name := syn.Name
		if syn.Muted {
			name += "(m)"
		}
		parts = append(parts, widgets.RenderSwatch([3]uint8(m.Theme.RGB(role)))+" "+name)
	}
	return "voices: " + strings.Join(parts, "  ")
}

// playingSequenceIndex finds which sequence entry holds the playhead
func (m Model) playingSequenceIndex() int {
	return m.Session.PlayingSequenceIndex()
}

// gridView renders the visible pitch window of the displayed pattern
func (m Model) gridView() string {
	steps := m.Session.PatternSteps()
	playhead := m.Session.PlayheadInPattern()
	key, scale := m.Session.KeyScale()
	sym := m.Theme.Symbols

	noteStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.Selected())
	playStyle := lipgloss.NewStyle().Foreground(m.Theme.Playhead())
	marqStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	var lines []string
	for row := 0; row < viewRows; row++ {
		pitch := m.pitchTop + row
		if pitch >= sequencer.NumPitches {
			break
		}

		label := ""
		if sequencer.IsRootNote(pitch, key) {
			label = sequencer.NoteName(pitch)
		}
		rowStyle := lipgloss.NewStyle().Foreground(m.Theme.Color(rowRole(pitch, key, scale)))

		var line strings.Builder
		line.WriteString(fmt.Sprintf("%*s ", labelWidth-1, label))
		for step := 0; step < steps; step++ {
			c := sequencer.Cell{Step: step, Pitch: pitch}
			var glyph string
			switch {
			case m.Session.CellSelected(c):
				glyph = selStyle.Render(string(sym.CellSelected))
			case m.Session.CellActive(c):
				if step == playhead {
					glyph = playStyle.Render(string(sym.CellActive))
				} else {
					glyph = noteStyle.Render(string(sym.CellActive))
				}
			case m.Session.CellInRect(c):
				glyph = marqStyle.Render(string(sym.CellMarquee))
			case step == playhead:
				glyph = playStyle.Render(string(sym.CellPlayhead))
			default:
				glyph = rowStyle.Render(string(sym.CellEmpty))
			}
			line.WriteString(glyph)
			line.WriteString(" ")
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// rowRole picks the shading role for an empty cell by scale membership
func rowRole(pitch int, key, scale string) float64 {
	switch {
	case sequencer.IsRootNote(pitch, key):
		return theme.RoleRootRow
	case sequencer.IsFifthInScale(pitch, key, scale):
		return theme.RoleFifthRow
	case sequencer.IsInScale(pitch, key, scale):
		return theme.RoleInScaleRow
	default:
		return theme.RoleOutScaleRow
	}
}

func cycleName(names []string, current string, dir int) string {
	for i, n := range names {
		if n == current {
			return names[((i+dir)%len(names)+len(names))%len(names)]
		}
	}
	return names[0]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
