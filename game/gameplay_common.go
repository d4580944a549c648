package game

import (
	"math"
	"strings"

	"github.com/rivo/uniseg"

	"snake-arena/constants"
	"snake-arena/models"
	"snake-arena/physics"
	"snake-arena/sim"
)

// graphemes splits s into user-perceived characters.
func graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// nameWords turns a display name into exactly n snake words, truncating long
// names and padding short ones with blanks.
func nameWords(name string, n int) []string {
	words := graphemes(name)
	if len(words) > n {
		words = words[:n]
	}
	for len(words) < n {
		words = append(words, constants.BLANK_WORD)
	}
	return words
}

func joinWords(words []string) string {
	return strings.Join(words, "")
}

// inscribedSide is the side of the square inscribed in a circle of radius r,
// snapped down to whole units per half side.
func inscribedSide(r float64) float64 {
	if r <= 0 {
		return 0
	}
	return math.Floor(r/math.Sqrt2) * 2
}

func randomInSquare(rng *sim.Rand, side float64) models.Vec {
	x := rng.Float64()*side - side/2
	y := rng.Float64()*side - side/2
	return models.Vec{X: x, Y: y}
}

// spawnSquareSide is the square used for initial placement and jewel spawns.
func (gm *Manager) spawnSquareSide(tier int) float64 {
	return inscribedSide(gm.cfg.Field.Radius[tier] - constants.FIELD_SPAWN_MARGIN)
}

// directionDeg converts a quantized direction into a heading in degrees.
func (gm *Manager) directionDeg(direction int) float64 {
	f := float64(gm.cfg.Input.RadianFineness)
	return math.Mod(float64(direction)/f*360+90, 360)
}

// directionOf quantizes a heading back into a direction index.
func (gm *Manager) directionOf(angle float64) int {
	f := gm.cfg.Input.RadianFineness
	unit := 360 / float64(f)
	d := int(math.Floor((angle+90+180)/unit)) % f
	if d < 0 {
		d += f
	}
	return d
}

func (gm *Manager) newSnake(pos models.Vec, direction int, name, snakeType string) *physics.Snake {
	words := nameWords(name, gm.cfg.Snake.MaxNameLength)
	return physics.NewSnake(pos, gm.directionDeg(direction), words, snakeType, gm.params)
}

// respawnLayout draws a fresh position and a left or right facing direction
// from the shared stream.
func (gm *Manager) respawnLayout() (models.Vec, int) {
	rng := gm.ctx.Rand
	interval := float64(physics.HistoryInterval(gm.cfg.Snake.BaseSpeed))
	maxLength := gm.field.Width - gm.cfg.Snake.BaseSpeed*float64(gm.cfg.Snake.MaxNameLength)*interval*2
	if maxLength < 0 {
		maxLength = 0
	}
	f := gm.cfg.Input.RadianFineness
	dir := int(math.Ceil(float64(rng.Range(0, 1)) * float64(f-1) / 2))
	x := (rng.Float64() - 0.5) * maxLength
	y := (rng.Float64() - 0.5) * maxLength
	return models.Vec{X: x, Y: y}, dir
}
