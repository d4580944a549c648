package physics

import "snake-arena/models"

// Sizes are the hit widths of each sprite kind. Every hit box is square.
type Sizes struct {
	Head  float64
	Knot  float64
	Food  float64
	Jewel float64
}

// Area is an axis aligned box given by its top-left corner.
type Area struct {
	X, Y, Width, Height float64
}

func AreaAt(center models.Vec, size float64) Area {
	return Area{X: center.X - size/2, Y: center.Y - size/2, Width: size, Height: size}
}

func (a Area) Center() models.Vec {
	return models.Vec{X: a.X + a.Width/2, Y: a.Y + a.Height/2}
}

// WithinAreas reports whether the centers of a and b are at most distance apart.
func WithinAreas(a, b Area, distance float64) bool {
	return a.Center().Sub(b.Center()).Norm2() <= distance*distance
}

func HeadArea(s *Snake, sz Sizes) Area {
	return AreaAt(s.Head.Pos, sz.Head)
}

// HeadHits reports whether attacker's head runs into target's head or any of
// its knots. The trailing jewel never kills.
func HeadHits(attacker, target *Snake, sz Sizes) bool {
	if attacker == nil || target == nil {
		return false
	}
	head := HeadArea(attacker, sz)
	if WithinAreas(head, HeadArea(target, sz), sz.Head/2) {
		return true
	}
	for _, seg := range target.Segments {
		if seg.Kind == SegmentJewel {
			continue
		}
		if WithinAreas(head, AreaAt(seg.Pos, sz.Knot), (sz.Knot+sz.Head)/2) {
			return true
		}
	}
	return false
}

func EatsFood(s *Snake, f *Food, sz Sizes) bool {
	if s == nil || f == nil {
		return false
	}
	return WithinAreas(AreaAt(f.Pos, sz.Food), HeadArea(s, sz), (sz.Food+sz.Head)/2)
}

// TouchesJewel reports whether s's head overlaps a jewel centered at pos.
func TouchesJewel(s *Snake, pos models.Vec, sz Sizes) bool {
	if s == nil {
		return false
	}
	return WithinAreas(AreaAt(pos, sz.Jewel), HeadArea(s, sz), (sz.Jewel+sz.Head)/2)
}
