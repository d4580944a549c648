package physics

import (
	"math"

	"snake-arena/constants"
	"snake-arena/models"
)

type SegmentKind string

const (
	SegmentKnot  SegmentKind = "knot"
	SegmentJewel SegmentKind = "jewel"
)

type Rotation string

const (
	RotateNone             Rotation = "noRotate"
	RotateClockwise        Rotation = "onClockwise"
	RotateCounterClockwise Rotation = "onCounterClockwise"
)

type Sample struct {
	Pos   models.Vec
	Angle float64
}

type Segment struct {
	Kind  SegmentKind
	Word  string
	Pos   models.Vec
	Angle float64
}

type SnakeParams struct {
	BaseSpeed     float64
	MaxSpeedScale int
	MaxKnots      int
}

// Snake is a head followed by knots that trace the head's recent path.
// Angles are in degrees, 0 pointing up and growing clockwise.
type Snake struct {
	Anchor
	Type     string
	Head     Sample
	Segments []Segment
	Words    []string
	Rotate   Rotation
	HasJewel bool

	interval int
	history  *history
	params   SnakeParams
}

func headingVector(deg float64) models.Vec {
	rad := deg * math.Pi / 180
	return models.Vec{X: math.Sin(rad), Y: -math.Cos(rad)}
}

// HistoryInterval is the number of history samples between two knots.
func HistoryInterval(baseSpeed float64) int {
	if baseSpeed <= 0 {
		return 1
	}
	n := int(math.Round(constants.HISTORY_DISTANCE_BASE / baseSpeed))
	if n < 1 {
		n = 1
	}
	return n
}

// NewSnake builds a snake at pos facing heading with one knot per word. The
// initial path is laid out straight behind the head.
func NewSnake(pos models.Vec, heading float64, words []string, snakeType string, p SnakeParams) *Snake {
	if p.MaxSpeedScale < 1 {
		p.MaxSpeedScale = 1
	}
	if len(words) > p.MaxKnots {
		words = words[:p.MaxKnots]
	}
	interval := HistoryInterval(p.BaseSpeed)
	s := &Snake{
		Type:     snakeType,
		Head:     Sample{Pos: pos, Angle: heading},
		Words:    append([]string(nil), words...),
		Rotate:   RotateNone,
		interval: interval,
		history:  newHistory(interval * (p.MaxKnots + constants.HISTORY_MARGIN)),
		params:   p,
	}

	back := headingVector(heading).Scale(-p.BaseSpeed)
	frames := (len(words) + 1) * interval
	for f := frames - 1; f >= 0; f-- {
		s.history.push(Sample{Pos: pos.Add(back.Scale(float64(f))), Angle: heading})
	}

	for _, w := range words {
		s.Segments = append(s.Segments, Segment{Kind: SegmentKnot, Word: w})
	}
	s.placeSegments()
	return s
}

func (s *Snake) Interval() int   { return s.interval }
func (s *Snake) HistoryLen() int { return s.history.len() }

// HistoryAt returns the i-th newest sample.
func (s *Snake) HistoryAt(i int) (Sample, bool) { return s.history.at(i) }

func (s *Snake) Speed(boosting bool) float64 {
	if boosting {
		return s.params.BaseSpeed * float64(s.params.MaxSpeedScale)
	}
	return s.params.BaseSpeed
}

// Update advances the head one tick along angle, slides along the wall when the
// move would leave a field of the given width, and drags the knots behind.
func (s *Snake) Update(angle float64, boosting bool, fieldWidth float64) {
	prev := s.Head.Pos
	speed := s.Speed(boosting)
	next := prev.Add(headingVector(angle).Scale(speed))
	s.Head = Sample{Pos: next, Angle: angle}

	limit := fieldWidth / 2
	if next.Norm2() >= limit*limit {
		s.followWall(prev, angle, speed, limit)
	} else {
		s.Rotate = RotateNone
	}

	s.record(boosting)
	s.placeSegments()
}

// followWall moves the head along the tangent of the boundary instead. The
// rotation sense is picked on first contact and kept while the head stays on
// the wall.
func (s *Snake) followWall(prev models.Vec, angle, speed, limit float64) {
	radial := prev
	if radial.Norm2() == 0 {
		radial = s.Head.Pos
	}
	if radial.Norm2() == 0 {
		return
	}
	radial = radial.Scale(1 / radial.Norm())

	if s.Rotate == RotateNone {
		s.Rotate = rotationFor(radial, angle)
	}

	tangent := models.Vec{X: -radial.Y, Y: radial.X}
	if s.Rotate == RotateCounterClockwise {
		tangent = tangent.Scale(-1)
	}

	pos := prev.Add(tangent.Scale(speed))
	if n := pos.Norm(); n > 0 {
		pos = pos.Scale(limit / n)
	}
	heading := math.Atan2(tangent.X, -tangent.Y) * 180 / math.Pi
	if heading < 0 {
		heading += 360
	}
	s.Head = Sample{Pos: pos, Angle: heading}
}

// rotationFor picks the wall sense from the sign of pos x heading.
func rotationFor(pos models.Vec, angle float64) Rotation {
	d := headingVector(angle)
	if pos.X*d.Y-pos.Y*d.X > 0 {
		return RotateClockwise
	}
	return RotateCounterClockwise
}

// Steer points the head at angle. While following the wall the rotation sense
// is picked again against the new heading.
func (s *Snake) Steer(angle float64) {
	s.Head.Angle = angle
	if s.Rotate != RotateNone {
		s.Rotate = rotationFor(s.Head.Pos, angle)
	}
}

func (s *Snake) record(boosting bool) {
	cur := s.Head
	scale := s.params.MaxSpeedScale
	if last, ok := s.history.at(0); ok && boosting && scale > 1 {
		step := cur.Pos.Sub(last.Pos).Scale(1 / float64(scale))
		da := (cur.Angle - last.Angle) / float64(scale)
		for i := 1; i < scale; i++ {
			s.history.push(Sample{
				Pos:   last.Pos.Add(step.Scale(float64(i))),
				Angle: last.Angle + da*float64(i),
			})
		}
	}
	s.history.push(cur)
}

func (s *Snake) placeSegments() {
	for i := range s.Segments {
		smp, ok := s.history.at((i + 1) * s.interval)
		if !ok {
			smp = s.Head
		}
		s.Segments[i].Pos = smp.Pos
		s.Segments[i].Angle = smp.Angle
	}
}

func (s *Snake) KnotCount() int {
	n := len(s.Segments)
	if s.HasJewel {
		n--
	}
	return n
}

// EatFood grows the snake by one head-adjacent knot. Past the knot cap the
// oldest knot at the tail end is dropped. The jewel always stays last.
// Words keeps eating order (name first, latest food last), which is the
// order the result log reports; it is not the visible knot order.
func (s *Snake) EatFood(word string) {
	s.Words = append(s.Words, word)

	knots := make([]Segment, 0, len(s.Segments)+1)
	knots = append(knots, Segment{Kind: SegmentKnot, Word: word})
	for _, seg := range s.Segments {
		if seg.Kind == SegmentKnot {
			knots = append(knots, seg)
		}
	}
	if len(knots) > s.params.MaxKnots {
		knots = knots[:s.params.MaxKnots]
	}
	if s.HasJewel {
		knots = append(knots, Segment{Kind: SegmentJewel})
	}
	s.Segments = knots
	s.placeSegments()
}

func (s *Snake) EatJewel() {
	if s.HasJewel {
		return
	}
	s.HasJewel = true
	s.Segments = append(s.Segments, Segment{Kind: SegmentJewel})
	s.placeSegments()
}

func (s *Snake) RemoveJewel() {
	if !s.HasJewel {
		return
	}
	s.HasJewel = false
	if n := len(s.Segments); n > 0 && s.Segments[n-1].Kind == SegmentJewel {
		s.Segments = s.Segments[:n-1]
	}
}

// JewelPos is where the carried jewel sits.
func (s *Snake) JewelPos() (models.Vec, bool) {
	if !s.HasJewel || len(s.Segments) == 0 {
		return models.Vec{}, false
	}
	return s.Segments[len(s.Segments)-1].Pos, true
}

// history is a fixed capacity ring of samples, newest first.
type history struct {
	buf  []Sample
	head int
	n    int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = 1
	}
	return &history{buf: make([]Sample, capacity)}
}

func (h *history) push(s Sample) {
	c := len(h.buf)
	h.head = (h.head - 1 + c) % c
	h.buf[h.head] = s
	if h.n < c {
		h.n++
	}
}

func (h *history) at(i int) (Sample, bool) {
	if i < 0 || i >= h.n {
		return Sample{}, false
	}
	return h.buf[(h.head+i)%len(h.buf)], true
}

func (h *history) len() int { return h.n }
