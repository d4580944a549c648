package game

import (
	"snake-arena/constants"
	"snake-arena/models"
	"snake-arena/physics"
	"snake-arena/protocol"
)

// anyInstance applies the effects every instance must agree on.
type anyInstance struct {
	gm *Manager
}

func (h anyInstance) StartRecruitment(from string, m protocol.StartRecruitment) {}

func (h anyInstance) WaitRecruitment(from string, m protocol.WaitRecruitment) {
	gm := h.gm
	gm.phase = PhaseRecruiting
	gm.broadcasterID = m.BroadcasterID
	gm.broadcaster = m.Broadcaster
	gm.recruitStart = m.StartTime
	gm.clearPlayers()
}

func (h anyInstance) JoinRequest(from string, m protocol.JoinRequest) {}

func (h anyInstance) LotteryResult(from string, m protocol.LotteryResult) {
	gm := h.gm
	gm.phase = PhaseLottery
	gm.numPlayers = m.NumPlayers
	gm.resetPlayers(m.PlayerList)
}

func (h anyInstance) StartGame(from string, m protocol.StartGame) {
	gm := h.gm
	gm.phase = PhaseMainGame
	gm.gameOver = false
	gm.result = nil
	gm.ranking = nil
	gm.countDown = ""
	gm.remainTime = gm.cfg.Time.Limit
	gm.foods = nil
	gm.waitingFoods = nil
	gm.jewel = nil
	gm.jewelOwner = ""

	tier := gm.currentTier()
	if gm.cfg.Debug.SkipLottery && gm.cfg.Debug.ForcedTier < 0 {
		tier = 0
	}
	gm.field = physics.NewField(gm.cfg.Field.Radius[tier], tier)
}

func (h anyInstance) RestartRecruitment(from string, m protocol.RestartRecruitment) {
	gm := h.gm
	gm.phase = PhaseIdle
	gm.clearPlayers()
	gm.sched.CancelAll()
}

func (h anyInstance) InitMainGame(from string, m protocol.InitMainGame) {
	gm := h.gm
	if gm.phase != PhaseMainGame || gm.field == nil {
		return
	}
	for _, l := range m.PlayerInitLayoutList {
		p, ok := gm.players[l.PlayerID]
		if !ok {
			continue
		}
		name := l.Name
		if name == "" {
			name = p.User.Name
		}
		p.Snake = gm.newSnake(l.Position, l.Direction, name, p.SnakeType)
		p.Touch = l.State
		p.Direction = l.Direction
	}

	side := gm.spawnSquareSide(gm.currentTier())
	gm.jewel = physics.NewJewel(randomInSquare(gm.ctx.Rand, side))
	gm.jewelOwner = ""

	gm.sched.CancelOwner(ownerFood)
	gm.sched.Every(ownerFood, msDuration(gm.cfg.Food.Interval), gm.spawnFoods)
}

func (h anyInstance) SetPlaying(from string, m protocol.SetPlaying) {
	gm := h.gm
	switch m.Scope {
	case models.ScopeAll:
		gm.each(func(p *Player) {
			if p.Snake != nil && p.State == models.StateInvincible {
				p.setState(models.StatePlaying)
			}
		})
	case models.ScopeOne:
		if p, ok := gm.players[m.PlayerID]; ok && p.Snake != nil && p.State == models.StateInvincible {
			p.setState(models.StatePlaying)
		}
	}
}

func (h anyInstance) CountDown(from string, m protocol.CountDown) {
	h.gm.countDown = m.CountDownType
}

func (h anyInstance) Animation(from string, m protocol.Animation) {
	gm := h.gm
	apply := func(p *Player) {
		switch m.AnimationType {
		case models.AnimationBlinking:
			p.Blinking = true
		case models.AnimationToBroadcasterView:
			p.ToBroadcasterView = true
		}
	}
	if m.Scope == models.ScopeAll {
		gm.each(apply)
		return
	}
	if p, ok := gm.players[m.PlayerID]; ok {
		apply(p)
	}
}

func (h anyInstance) ChangeUserTouchState(from string, m protocol.ChangeUserTouchState) {
	id := m.ID
	if id == "" {
		id = from
	}
	h.gm.applyTouchState(id, m.NewState, m.NewDirection)
}

func (h anyInstance) PlayersInConflict(from string, m protocol.PlayersInConflict) {
	h.gm.applyConflicts(m.PlayersInConflict)
}

func (h anyInstance) DestroySnake(from string, m protocol.DestroySnake) {
	h.gm.destroySnake(m.DeadPlayerID)
}

func (h anyInstance) RespawnSnake(from string, m protocol.RespawnSnake) {
	gm := h.gm
	p, ok := gm.players[from]
	if !ok || gm.field == nil || gm.gameOver || p.State != models.StateDead || p.RespawnTimes <= 0 {
		return
	}
	if !p.setState(models.StateInvincible) {
		return
	}
	p.RespawnTimes--
	pos, dir := gm.respawnLayout()
	p.Snake = gm.newSnake(pos, dir, p.User.Name, p.SnakeType)
	p.Direction = dir
	p.Touch = models.TouchNoPoint
	p.Prevent = models.PreventTouchState
	p.Blinking = false
	p.ToBroadcasterView = false
	gm.respawnedAt[from] = gm.ctx.Tick
	if from == gm.selfID {
		gm.input.reset()
	}
}

func (h anyInstance) RespawnAngelSnake(from string, m protocol.RespawnAngelSnake) {
	gm := h.gm
	p, ok := gm.players[gm.broadcasterID]
	if !ok || gm.field == nil || gm.gameOver || p.State != models.StateDead {
		return
	}
	if !p.setState(models.StateGhost) {
		return
	}
	pos, dir := gm.respawnLayout()
	p.Snake = gm.newSnake(pos, dir, p.User.Name, p.SnakeType)
	p.Direction = dir
	p.Touch = models.TouchNoPoint
	p.ToBroadcasterView = false
}

func (h anyInstance) RespawnJewel(from string, m protocol.RespawnJewel) {
	gm := h.gm
	if gm.jewelOwner != "" || gm.jewel == nil {
		return
	}
	gm.jewel.Respawn(m.Position)
}

func (h anyInstance) EatenFoods(from string, m protocol.EatenFoods) {
	h.gm.applyEatenFoods(m)
}

func (h anyInstance) UpdateJewelOwner(from string, m protocol.UpdateJewelOwner) {
	h.gm.moveJewel(m.OwnerID)
}

func (h anyInstance) RankingAccountData(from string, m protocol.RankingAccountData) {
	h.gm.ranking = m.RankingAccountData
}

func (h anyInstance) UpdateRemainTime(from string, m protocol.UpdateRemainTime) {
	h.gm.remainTime = m.RemainTime
}

func (h anyInstance) PreventUsertouch(from string, m protocol.PreventUsertouch) {
	if p, ok := h.gm.players[m.PlayerID]; ok {
		p.Prevent = m.PreventType
	}
}

func (h anyInstance) FinishGame(from string, m protocol.FinishGame) {
	gm := h.gm
	if gm.gameOver {
		return
	}
	gm.gameOver = true
	gm.countDown = models.CountDownFinish
	gm.each(func(p *Player) {
		if p.can(models.CanCount) && p.Snake != nil {
			p.LastWords = joinWords(p.Snake.Words)
		}
	})
}

func (h anyInstance) StartResult(from string, m protocol.StartResult) {
	gm := h.gm
	gm.phase = PhaseResult
	gm.sched.CancelOwner(ownerFood)
	gm.sched.CancelOwner(ownerGame)
	gm.shown = models.RankingLength
}

func (h anyInstance) InitResult(from string, m protocol.InitResult) {
	h.gm.result = h.gm.buildResult(m)
}

func (h anyInstance) NextRankingType(from string, m protocol.NextRankingType) {
	h.gm.shown = m.NextRankingType
}

func (h anyInstance) ChangeScrollSpeed(from string, m protocol.ChangeScrollSpeed) {
	h.gm.scrollSpeed[m.RankingType] = m.SpeedType
}

// applyTouchState records a player's input. Steering while on the wall picks
// the rotation sense again.
func (gm *Manager) applyTouchState(id string, state models.TouchState, dir *int) {
	p, ok := gm.players[id]
	if !ok {
		return
	}
	p.Touch = state
	if dir != nil {
		p.Direction = *dir
	}
	if p.Snake != nil && state == models.TouchOnPoint && dir != nil {
		p.Snake.Steer(gm.directionDeg(p.Direction))
	}
}

// applyConflicts kills every victim still playing. Each reported killer gets
// credit once per entry; the victim's knots turn into food.
func (gm *Manager) applyConflicts(list []models.CollisionInfo) {
	victims := make(map[string]bool)
	for _, c := range list {
		if v, ok := gm.players[c.DeadPlayerID]; ok && v.State == models.StatePlaying && v.Snake != nil {
			victims[c.DeadPlayerID] = true
		}
	}
	for _, c := range list {
		if !victims[c.DeadPlayerID] {
			continue
		}
		if k, ok := gm.players[c.KillerPlayerID]; ok {
			k.KillCount++
		}
	}
	for _, c := range list {
		if !victims[c.DeadPlayerID] {
			continue
		}
		delete(victims, c.DeadPlayerID)
		v := gm.players[c.DeadPlayerID]
		for _, seg := range v.Snake.Segments {
			if seg.Kind == physics.SegmentJewel {
				continue
			}
			gm.waitingFoods = append(gm.waitingFoods, physics.NewFood(seg.Pos, seg.Word))
		}
		v.setState(models.StateStaging)
	}
}

// destroySnake removes a staged snake. A carried jewel drops where it was.
func (gm *Manager) destroySnake(id string) {
	p, ok := gm.players[id]
	if !ok || p.State != models.StateStaging {
		return
	}
	if p.Snake != nil {
		if gm.jewelOwner == id {
			pos, _ := p.Snake.JewelPos()
			p.Snake.RemoveJewel()
			gm.jewel = physics.NewJewel(pos)
			gm.jewelOwner = ""
		}
		p.LastWords = joinWords(p.Snake.Words)
		p.Snake.Destroy()
		p.Snake = nil
	}
	p.setState(models.StateDead)
	p.Touch = models.TouchNoPoint
	gm.sched.CancelOwner(snakeOwner(id))
}

// moveJewel hands the jewel to ownerID.
func (gm *Manager) moveJewel(ownerID string) {
	p, ok := gm.players[ownerID]
	if !ok || p.Snake == nil || ownerID == gm.jewelOwner {
		return
	}
	if prev, ok := gm.players[gm.jewelOwner]; ok && prev.Snake != nil {
		prev.Snake.RemoveJewel()
	}
	p.Snake.EatJewel()
	if gm.jewel != nil {
		gm.jewel.Destroy()
		gm.jewel = nil
	}
	gm.jewelOwner = ownerID
}

// applyEatenFoods grows the eaters, drops food that drifted out of the field
// and promotes the waiting food.
func (gm *Manager) applyEatenFoods(m protocol.EatenFoods) {
	for _, e := range m.EatenFoodInfo {
		if e.EatenIndex < 0 || e.EatenIndex >= len(gm.foods) {
			continue
		}
		f := gm.foods[e.EatenIndex]
		if f.Destroyed() {
			continue
		}
		f.Destroy()
		if p, ok := gm.players[e.EaterID]; ok && p.Snake != nil {
			p.Snake.EatFood(f.Word)
		}
	}

	limit := m.FieldRadius + constants.FOOD_DESPAWN_MARGIN
	kept := make([]*physics.Food, 0, len(m.NoEatenFoodIndexList)+len(gm.waitingFoods))
	for _, i := range m.NoEatenFoodIndexList {
		if i < 0 || i >= len(gm.foods) {
			continue
		}
		f := gm.foods[i]
		if f.Destroyed() {
			continue
		}
		if f.Pos.Norm2() > limit*limit {
			f.Destroy()
			continue
		}
		kept = append(kept, f)
	}
	for _, f := range gm.foods {
		if !f.Destroyed() && !containsFood(kept, f) {
			f.Destroy()
		}
	}
	kept = append(kept, gm.waitingFoods...)
	gm.waitingFoods = nil
	gm.foods = kept
}

func containsFood(list []*physics.Food, f *physics.Food) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}
