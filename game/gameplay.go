package game

import (
	"time"

	"snake-arena/constants"
	"snake-arena/models"
	"snake-arena/physics"
)

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// simulate advances the arena one tick on every instance: snakes move, the
// field shrinks and the counted lengths follow the snakes.
func (gm *Manager) simulate() {
	gm.each(func(p *Player) {
		if p.Snake == nil || !p.can(models.CanMove) {
			return
		}
		if gm.auth != nil {
			gm.auth.syncWallHeading(p)
		}
		boosting := p.Touch == models.TouchOnDoubleTap
		p.Snake.Update(gm.directionDeg(p.Direction), boosting, gm.field.Width)
	})

	gm.updateField()

	gm.each(func(p *Player) {
		if p.Snake != nil && p.can(models.CanCount) {
			p.LengthCount = len(p.Snake.Words)
		}
	})
}

// updateField raises the tier as players drop out and shrinks the field
// towards the tier's radius.
func (gm *Manager) updateField() {
	if !gm.cfg.Debug.SkipLottery || gm.cfg.Debug.ForcedTier >= 0 {
		gm.field.RaiseTier(gm.currentTier())
	}
	gm.field.Narrow(gm.cfg.Field.NarrowRadiusPerSec, gm.ctx.FPS, gm.cfg.Field.Radius[gm.field.Tier])
}

// spawnFoods runs on every instance from the shared stream. New food waits
// until the next eatenFoods report before it becomes edible.
func (gm *Manager) spawnFoods() {
	if gm.field == nil {
		return
	}
	if gm.countPlayers(models.CanCount) == 0 || len(gm.foods) > constants.MAX_FOOD_LIST_LENGTH {
		return
	}
	rng := gm.ctx.Rand
	tier := gm.field.Tier
	half := gm.cfg.Field.Radius[tier] / 2
	chars := gm.cfg.Food.Chars
	for i := 0; i < gm.cfg.Food.Volume[tier]; i++ {
		x := rng.Float64()*half*2 - half
		y := rng.Float64()*half*2 - half
		word := chars[rng.Range(0, len(chars)-1)]
		gm.waitingFoods = append(gm.waitingFoods, physics.NewFood(models.Vec{X: x, Y: y}, word))
	}
}
