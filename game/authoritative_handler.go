package game

import (
	"snake-arena/constants"
	"snake-arena/models"
	"snake-arena/protocol"
	"snake-arena/sim"
)

// authoritative runs only on the active instance. It reacts to the same
// events as anyInstance, after it, and publishes outcomes that every instance
// then applies. Each outcome kind is held back while a previous report of the
// same kind has not come back on the wire yet.
type authoritative struct {
	gm *Manager

	recruiting    bool
	recruitStart  uint64
	broadcasterID string
	broadcaster   models.AccountData
	applicants    []models.AccountData
	lotteryRand   *sim.Rand

	remain      int
	remainTimer sim.TaskID
	finishing   bool

	destroying        map[string]bool
	wallInFlight      map[string]bool
	foodsInFlight     bool
	jewelInFlight     bool
	conflictsInFlight bool
	respawnInFlight   bool
	lastRanking       []models.RankedCount
	rankingSent       bool
}

func newAuthoritative(gm *Manager) *authoritative {
	return &authoritative{
		gm:           gm,
		destroying:   make(map[string]bool),
		wallInFlight: make(map[string]bool),
	}
}

func (a *authoritative) resetGame() {
	a.remain = 0
	a.remainTimer = 0
	a.finishing = false
	a.destroying = make(map[string]bool)
	a.wallInFlight = make(map[string]bool)
	a.foodsInFlight = false
	a.jewelInFlight = false
	a.conflictsInFlight = false
	a.respawnInFlight = false
	a.lastRanking = nil
	a.rankingSent = false
}

func (a *authoritative) StartRecruitment(from string, m protocol.StartRecruitment) {
	a.openRecruitment(from, m.BroadcasterUser)
}

func (a *authoritative) WaitRecruitment(from string, m protocol.WaitRecruitment) {}

func (a *authoritative) JoinRequest(from string, m protocol.JoinRequest) {
	a.addApplicant(from, m.JoinUser)
}

func (a *authoritative) LotteryResult(from string, m protocol.LotteryResult) {
	a.lotteryOutcome(m)
}

func (a *authoritative) StartGame(from string, m protocol.StartGame) {
	a.resetGame()
	a.gm.publish(protocol.InitMainGame{PlayerInitLayoutList: a.initialLayout()})
	a.endInvincibility(models.ScopeAll, "")
}

func (a *authoritative) RestartRecruitment(from string, m protocol.RestartRecruitment) {
	a.recruiting = false
}

func (a *authoritative) InitMainGame(from string, m protocol.InitMainGame) {}

func (a *authoritative) SetPlaying(from string, m protocol.SetPlaying) {
	if m.Scope == models.ScopeAll {
		a.startRemainClock()
	}
}

func (a *authoritative) CountDown(from string, m protocol.CountDown) {}

func (a *authoritative) Animation(from string, m protocol.Animation) {}

func (a *authoritative) ChangeUserTouchState(from string, m protocol.ChangeUserTouchState) {
	id := m.ID
	if id == "" {
		id = from
	}
	delete(a.wallInFlight, id)
}

func (a *authoritative) PlayersInConflict(from string, m protocol.PlayersInConflict) {
	gm := a.gm
	a.conflictsInFlight = false
	for _, c := range m.PlayersInConflict {
		id := c.DeadPlayerID
		p, ok := gm.players[id]
		if !ok || p.State != models.StateStaging || p.Snake == nil || a.destroying[id] {
			continue
		}
		a.destroying[id] = true
		a.scheduleDestruction(p)
	}
}

func (a *authoritative) DestroySnake(from string, m protocol.DestroySnake) {
	delete(a.destroying, m.DeadPlayerID)
}

func (a *authoritative) RespawnSnake(from string, m protocol.RespawnSnake) {
	gm := a.gm
	at, ok := gm.respawnedAt[from]
	if !ok || at != gm.ctx.Tick {
		return
	}
	a.endInvincibility(models.ScopeOne, from)
	gm.sched.After(snakeOwner(from), constants.REBORN_EFFECT_TIME, func() {
		gm.publish(protocol.PreventUsertouch{PlayerID: from, PreventType: models.PreventNone})
	})
}

func (a *authoritative) RespawnAngelSnake(from string, m protocol.RespawnAngelSnake) {}

func (a *authoritative) RespawnJewel(from string, m protocol.RespawnJewel) {
	a.respawnInFlight = false
}

func (a *authoritative) EatenFoods(from string, m protocol.EatenFoods) {
	a.foodsInFlight = false
}

func (a *authoritative) UpdateJewelOwner(from string, m protocol.UpdateJewelOwner) {
	a.jewelInFlight = false
}

func (a *authoritative) RankingAccountData(from string, m protocol.RankingAccountData) {}

func (a *authoritative) UpdateRemainTime(from string, m protocol.UpdateRemainTime) {}

func (a *authoritative) PreventUsertouch(from string, m protocol.PreventUsertouch) {}

func (a *authoritative) FinishGame(from string, m protocol.FinishGame) {
	gm := a.gm
	if a.remainTimer != 0 {
		gm.sched.Cancel(a.remainTimer)
		a.remainTimer = 0
	}
	gm.sched.After(ownerSession, constants.RESULT_DELAY, func() {
		gm.publish(protocol.StartResult{})
	})
}

func (a *authoritative) StartResult(from string, m protocol.StartResult) {
	a.gm.publish(a.gm.resultRanking())
}

func (a *authoritative) InitResult(from string, m protocol.InitResult) {
	a.gm.submitResult()
}

func (a *authoritative) NextRankingType(from string, m protocol.NextRankingType) {}

func (a *authoritative) ChangeScrollSpeed(from string, m protocol.ChangeScrollSpeed) {}
