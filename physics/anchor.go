// Package physics implements the arena entities: snakes, food, the jewel and
// the shrinking circular field, plus the overlap tests between them.
package physics

import "snake-arena/models"

// Anchor is embedded by entities to get a liveness flag that late callbacks
// can check.
type Anchor struct {
	destroyed bool
}

func (a *Anchor) Destroy()        { a.destroyed = true }
func (a *Anchor) Destroyed() bool { return a == nil || a.destroyed }

type Food struct {
	Anchor
	Pos  models.Vec
	Word string
}

func NewFood(pos models.Vec, word string) *Food {
	return &Food{Pos: pos, Word: word}
}

// Jewel is the free floating form of the singleton collectible. While owned it
// only exists as the trailing segment of the owner's snake.
type Jewel struct {
	Anchor
	Pos models.Vec
}

func NewJewel(pos models.Vec) *Jewel {
	return &Jewel{Pos: pos}
}

func (j *Jewel) Respawn(pos models.Vec) {
	j.Pos = pos
}

// Field is the circular play area. Width is the diameter.
type Field struct {
	Width float64
	Tier  int
}

func NewField(radius float64, tier int) *Field {
	return &Field{Width: 2 * radius, Tier: tier}
}

func (f *Field) Radius() float64 { return f.Width / 2 }

// Narrow shrinks the field by perSec radius units per second, never below minRadius.
func (f *Field) Narrow(perSec float64, fps int, minRadius float64) {
	w := f.Width - 2*perSec/float64(fps)
	if w < 2*minRadius {
		w = 2 * minRadius
	}
	f.Width = w
}

// RaiseTier moves to a higher population tier. Tiers never decrease.
func (f *Field) RaiseTier(tier int) bool {
	if tier <= f.Tier {
		return false
	}
	f.Tier = tier
	return true
}

// Touches reports whether p is on or beyond the boundary.
func (f *Field) Touches(p models.Vec) bool {
	r := f.Radius()
	return p.Norm2() >= r*r
}

// Outside reports whether p lies beyond radius+margin.
func (f *Field) Outside(p models.Vec, margin float64) bool {
	r := f.Radius() + margin
	return p.Norm2() > r*r
}
