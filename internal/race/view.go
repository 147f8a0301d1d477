package race

import (
	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/physics"
)

// Kind identifies what a Drawable represents.
type Kind int

const (
	KindPlatform Kind = iota
	KindGoal
	KindRacer
)

// Drawable is one box to render.
type Drawable struct {
	Kind   Kind
	Box    physics.AABB
	Color  core.Color
	Label  string
	Player core.PlayerID // Set for racers
}

// View is everything a renderer needs for one frame, in draw order:
// platforms, then the goal, then the racers.
type View struct {
	Width  float64
	Height float64
	Tick   uint64
	Items  []Drawable
}

// Racers returns the racer drawables.
func (v View) Racers() []Drawable {
	var out []Drawable
	for _, d := range v.Items {
		if d.Kind == KindRacer {
			out = append(out, d)
		}
	}
	return out
}

// Goal returns the goal drawable and whether the view has one.
func (v View) Goal() (Drawable, bool) {
	for _, d := range v.Items {
		if d.Kind == KindGoal {
			return d, true
		}
	}
	return Drawable{}, false
}

// Platforms returns the platform drawables.
func (v View) Platforms() []Drawable {
	var out []Drawable
	for _, d := range v.Items {
		if d.Kind == KindPlatform {
			out = append(out, d)
		}
	}
	return out
}

// View returns the current frame.
func (m *Match) View() View {
	return m.level.View(m.world, m.Snapshot())
}

// View builds a frame for the level from a snapshot, as a client that
// only receives snapshots does.
func (l Level) View(world physics.World, snap Snapshot) View {
	w, h := world.Width, world.Height
	if l.Width > 0 {
		w = l.Width
	}
	if l.Height > 0 {
		h = l.Height
	}

	v := View{
		Width:  w,
		Height: h,
		Tick:   snap.Tick,
		Items:  make([]Drawable, 0, len(l.Platforms)+3),
	}
	for _, p := range l.Platforms {
		v.Items = append(v.Items, Drawable{Kind: KindPlatform, Box: p, Color: core.ColorBrown})
	}
	v.Items = append(v.Items, Drawable{Kind: KindGoal, Box: l.Goal, Color: core.ColorGold, Label: "GOAL"})
	for i, r := range snap.Racers {
		id := core.Players[i]
		v.Items = append(v.Items, Drawable{
			Kind:   KindRacer,
			Box:    r.Box,
			Color:  core.PlayerColor(id),
			Label:  r.Name,
			Player: id,
		})
	}
	return v
}
