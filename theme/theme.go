package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Grid states (no cursor)
	CellEmpty    rune // · inactive cell
	CellActive   rune // ● holds a note
	CellPlayhead rune // ▶ playhead column marker
	CellSelected rune // ◉ selected note
	CellMarquee  rune // □ inside an in-progress rectangle
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			CellEmpty:    '·',
			CellActive:   '●',
			CellPlayhead: '▶',
			CellSelected: '◉',
			CellMarquee:  '□',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG       = 0.0 // deep violet
	RoleMuted    = 0.15
	RoleFG       = 0.4
	RoleAccent   = 0.55
	RoleSelected = 0.7
	RoleWarning  = 0.85
	RolePlayhead = 1.0 // bright yellow
)

// Scale-membership shading for empty grid rows: the root row pops, the
// fifth is clearly visible, in-scale rows sit between, out-of-scale
// rows recede.
const (
	RoleRootRow     = 0.6
	RoleFifthRow    = 0.45
	RoleInScaleRow  = 0.3
	RoleOutScaleRow = 0.08
)

func (t *Theme) BG() lipgloss.Color       { return rgbToLipgloss(t.Palette.Lookup(RoleBG)) }
func (t *Theme) FG() lipgloss.Color       { return rgbToLipgloss(t.Palette.Lookup(RoleFG)) }
func (t *Theme) Accent() lipgloss.Color   { return rgbToLipgloss(t.Palette.Lookup(RoleAccent)) }
func (t *Theme) Muted() lipgloss.Color    { return rgbToLipgloss(t.Palette.Lookup(RoleMuted)) }
func (t *Theme) Selected() lipgloss.Color { return rgbToLipgloss(t.Palette.Lookup(RoleSelected)) }
func (t *Theme) Warning() lipgloss.Color  { return rgbToLipgloss(t.Palette.Lookup(RoleWarning)) }
func (t *Theme) Playhead() lipgloss.Color { return rgbToLipgloss(t.Palette.Lookup(RolePlayhead)) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
