package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/physics"
	"github.com/vovakirdan/tower-race/internal/race"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4d4d")),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4d4dff")),
	core.ColorBrown:   lipgloss.NewStyle().Foreground(lipgloss.Color("#654321")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("#32CD32")),
	core.ColorGold:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// Glyphs used for each kind of drawable.
const (
	glyphPlatform = '█'
	glyphGrass    = '▀'
	glyphGoal     = '░'
	glyphRacer    = '█'
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// cellMapper scales world coordinates onto a cell rectangle.
type cellMapper struct {
	area           core.Rect
	worldW, worldH float64
}

func newCellMapper(area core.Rect, worldW, worldH float64) cellMapper {
	return cellMapper{area: area, worldW: worldW, worldH: worldH}
}

// scale maps v from [0, world] to [0, cells]. Multiplying first keeps
// whole-number layouts exact.
func scale(v float64, cells int, world float64) float64 {
	if world <= 0 {
		return 0
	}
	return v * float64(cells) / world
}

// rect returns the cells covered by a box. Every box covers at least one
// cell so thin platforms stay visible.
func (m cellMapper) rect(b physics.AABB) core.Rect {
	x0 := int(math.Floor(scale(b.X, m.area.W, m.worldW)))
	y0 := int(math.Floor(scale(b.Y, m.area.H, m.worldH)))
	x1 := int(math.Ceil(scale(b.X+b.W, m.area.W, m.worldW)))
	y1 := int(math.Ceil(scale(b.Y+b.H, m.area.H, m.worldH)))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	x0 = core.Clamp(x0, 0, m.area.W)
	x1 = core.Clamp(x1, 0, m.area.W)
	y0 = core.Clamp(y0, 0, m.area.H)
	y1 = core.Clamp(y1, 0, m.area.H)
	return core.NewRect(m.area.X+x0, m.area.Y+y0, x1-x0, y1-y0)
}

// DrawView draws a frame into area, scaling the world to fit.
// Platforms get a grass top, the goal its label, racers a solid block.
func DrawView(s *core.Screen, area core.Rect, v race.View) {
	if area.Empty() {
		return
	}
	m := newCellMapper(area, v.Width, v.Height)

	for _, d := range v.Items {
		r := m.rect(d.Box)
		if r.Empty() {
			continue
		}
		switch d.Kind {
		case race.KindPlatform:
			s.DrawRect(r, glyphPlatform, d.Color)
			s.DrawHLine(r.X, r.Y, r.W, glyphGrass, core.ColorGreen)
		case race.KindGoal:
			s.DrawRect(r, glyphGoal, d.Color)
			drawLabel(s, r, d.Label, d.Color)
		case race.KindRacer:
			s.DrawRect(r, glyphRacer, d.Color)
		}
	}
}

// drawLabel centers text on the middle row of r, or above r when the text
// is wider than the box.
func drawLabel(s *core.Screen, r core.Rect, text string, c core.Color) {
	if text == "" {
		return
	}
	n := len([]rune(text))
	y := r.Y + r.H/2
	if n > r.W {
		y = r.Y - 1
	}
	x := r.X + (r.W-n)/2
	s.DrawText(x, y, text, c)
}

// DrawBanner draws a boxed message in the middle of the screen.
func DrawBanner(s *core.Screen, text string) {
	if text == "" {
		return
	}
	w := len([]rune(text)) + 4
	h := 3
	box := core.NewRect((s.Width()-w)/2, (s.Height()-h)/2, w, h)
	s.DrawRect(box, ' ', core.ColorDefault)
	s.DrawBox(box, core.ColorGold)
	s.DrawText(box.X+2, box.Y+1, text, core.ColorWhite)
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}
