package game

import (
	"sort"

	"snake-arena/models"
	"snake-arena/physics"
	"snake-arena/protocol"
)

// check runs the per-tick authoritative checks in their fixed order.
func (a *authoritative) check() {
	a.checkEatenFoods()
	a.checkJewel()
	a.checkCollisions()
	a.updateRanking()
	a.checkGameEnd()
	a.checkJewelOutside()
}

// syncWallHeading reports the heading a snake was turned to by the wall so
// every instance steers it the same way.
func (a *authoritative) syncWallHeading(p *Player) {
	gm := a.gm
	if a.wallInFlight[p.ID] || !gm.field.Touches(p.Snake.Head.Pos) {
		return
	}
	dir := gm.directionOf(p.Snake.Head.Angle)
	if dir == p.Direction {
		return
	}
	se := false
	a.wallInFlight[p.ID] = true
	gm.publish(protocol.ChangeUserTouchState{
		ID:           p.ID,
		NewDirection: &dir,
		NewState:     p.Touch,
		CanPlaySE:    &se,
	})
}

func (a *authoritative) checkEatenFoods() {
	gm := a.gm
	if gm.gameOver || a.foodsInFlight {
		return
	}
	var eaten []models.EatenFood
	noEaten := []int{}
	for i, f := range gm.foods {
		eater := ""
		for _, id := range gm.order {
			p := gm.players[id]
			if p.Snake == nil || !p.can(models.CanDrop) {
				continue
			}
			if physics.EatsFood(p.Snake, f, gm.sizes) {
				eater = id
				break
			}
		}
		if eater == "" {
			noEaten = append(noEaten, i)
			continue
		}
		eaten = append(eaten, models.EatenFood{EaterID: eater, EatenIndex: i})
	}
	if len(eaten) == 0 && len(gm.waitingFoods) == 0 {
		return
	}
	a.foodsInFlight = true
	gm.publish(protocol.EatenFoods{
		EatenFoodInfo:        eaten,
		NoEatenFoodIndexList: noEaten,
		FieldRadius:          gm.field.Radius(),
	})
}

func (a *authoritative) checkJewel() {
	gm := a.gm
	if gm.gameOver || a.jewelInFlight {
		return
	}
	owner := gm.jewelOwner
	var pos models.Vec
	if owner != "" {
		op, ok := gm.players[owner]
		if !ok || op.Snake == nil || !op.can(models.CanDrop) {
			return
		}
		var carried bool
		if pos, carried = op.Snake.JewelPos(); !carried {
			return
		}
	} else {
		if gm.jewel == nil {
			return
		}
		pos = gm.jewel.Pos
	}

	next := owner
	for _, id := range gm.order {
		p := gm.players[id]
		if id == owner || p.Snake == nil || !p.can(models.CanDrop) {
			continue
		}
		if physics.TouchesJewel(p.Snake, pos, gm.sizes) {
			next = id
			break
		}
	}
	if next == owner {
		return
	}
	a.jewelInFlight = true
	gm.publish(protocol.UpdateJewelOwner{OwnerID: next})
}

func (a *authoritative) checkCollisions() {
	gm := a.gm
	if gm.gameOver || a.conflictsInFlight {
		return
	}
	var hits []models.CollisionInfo
	for _, id := range gm.order {
		p := gm.players[id]
		if p.Snake == nil || !p.can(models.CanCollide) {
			continue
		}
		for _, eid := range gm.order {
			if eid == id {
				continue
			}
			e := gm.players[eid]
			if e.Snake == nil || !e.can(models.CanCollide) {
				continue
			}
			if physics.HeadHits(p.Snake, e.Snake, gm.sizes) {
				hits = append(hits, models.CollisionInfo{DeadPlayerID: id, KillerPlayerID: eid})
			}
		}
	}
	if len(hits) == 0 {
		return
	}
	a.conflictsInFlight = true
	gm.publish(protocol.PlayersInConflict{PlayersInConflict: hits})
}

// updateRanking publishes the live length ranking whenever it changes.
func (a *authoritative) updateRanking() {
	gm := a.gm
	var ranking []models.RankedCount
	gm.each(func(p *Player) {
		if p.State == models.StatePlaying && p.Snake != nil {
			ranking = append(ranking, models.RankedCount{PlayerID: p.ID, Count: len(p.Snake.Words)})
		}
	})
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})
	if a.rankingSent && sameRanking(ranking, a.lastRanking) {
		return
	}
	a.rankingSent = true
	a.lastRanking = ranking
	gm.publish(protocol.RankingAccountData{RankingAccountData: ranking})
}

func sameRanking(a, b []models.RankedCount) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (a *authoritative) checkGameEnd() {
	gm := a.gm
	if gm.gameOver || gm.cfg.Debug.SkipLottery || gm.cfg.Debug.BanEndingGameByNumberOfPlayers {
		return
	}
	if gm.countPlayers(models.CanCount) <= 1 {
		a.endGame()
	}
}

// checkJewelOutside brings a free jewel the field has shrunk past back in.
func (a *authoritative) checkJewelOutside() {
	gm := a.gm
	if gm.jewelOwner != "" || gm.jewel == nil || a.respawnInFlight {
		return
	}
	r := gm.field.Radius()
	if gm.jewel.Pos.Norm2() <= r*r {
		return
	}
	side := gm.spawnSquareSide(gm.currentTier())
	a.respawnInFlight = true
	gm.publish(protocol.RespawnJewel{Position: randomInSquare(a.rand(), side)})
}
