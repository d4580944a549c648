package game

import (
	"log"
	"time"

	"snake-arena/constants"
	"snake-arena/models"
	"snake-arena/protocol"
)

// openRecruitment starts the entry window. The sender of startRecruitment is
// the broadcaster and always takes part.
func (a *authoritative) openRecruitment(from string, user models.AccountData) {
	gm := a.gm
	if a.recruiting || gm.phase == PhaseLottery || gm.phase == PhaseMainGame {
		log.Printf("Ignoring recruitment from %s during %s", from, gm.phase)
		return
	}
	user.ID = from
	a.recruiting = true
	a.recruitStart = gm.ctx.Tick
	a.broadcasterID = from
	a.broadcaster = user
	a.applicants = nil

	gm.publish(protocol.WaitRecruitment{
		StartTime:     a.recruitStart,
		BroadcasterID: from,
		Broadcaster:   user,
	})
	window := time.Duration(gm.cfg.EntrySec) * time.Second
	gm.sched.After(ownerSession, window, a.runLottery)
}

// addApplicant records a join request made inside the entry window.
func (a *authoritative) addApplicant(from string, user models.AccountData) {
	gm := a.gm
	if !a.recruiting || from == a.broadcasterID {
		return
	}
	if gm.ctx.Tick-a.recruitStart > gm.ctx.Ticks(time.Duration(gm.cfg.EntrySec)*time.Second) {
		return
	}
	for _, ap := range a.applicants {
		if ap.ID == from {
			return
		}
	}
	user.ID = from
	a.applicants = append(a.applicants, user)
}

// runLottery closes the window, draws the participants and announces them
// after a short buffer.
func (a *authoritative) runLottery() {
	gm := a.gm
	a.recruiting = false
	a.lotteryRand = newLotteryRand(a.lotterySeed())

	list := a.drawPlayers()
	log.Printf("Lottery drew %d players from %d applicants", len(list), len(a.applicants))

	gm.sched.After(ownerSession, constants.LOTTERY_BUFFER, func() {
		gm.publish(protocol.LotteryResult{PlayerList: list, NumPlayers: len(list)})
	})
}

// lotteryOutcome starts the game once everybody has seen the draw, or goes
// back to recruitment when nobody joined.
func (a *authoritative) lotteryOutcome(m protocol.LotteryResult) {
	gm := a.gm
	if m.NumPlayers > 1 || gm.cfg.Debug.SkipLottery {
		gm.sched.After(ownerSession, constants.START_GAME_BUFFER, func() {
			gm.publish(protocol.StartGame{})
		})
		return
	}
	gm.sched.After(ownerSession, constants.RESTART_BUFFER, func() {
		gm.publish(protocol.RestartRecruitment{})
	})
}

// StartRecruitment asks for a new entry window with user as broadcaster. The
// relay only forwards it from the broadcaster's instance.
func (gm *Manager) StartRecruitment(user models.AccountData) {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	gm.publish(protocol.StartRecruitment{BroadcasterUser: user})
}

// RequestJoin applies for the running recruitment.
func (gm *Manager) RequestJoin(user models.AccountData) bool {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	if gm.phase != PhaseRecruiting {
		return false
	}
	gm.publish(protocol.JoinRequest{JoinUser: user})
	return true
}

// ShowNextRanking pages the result screen to the other ranking.
func (gm *Manager) ShowNextRanking() {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	if gm.phase != PhaseResult {
		return
	}
	gm.publish(protocol.NextRankingType{NextRankingType: gm.shown.Other()})
}

func (gm *Manager) SetScrollSpeed(r models.RankingType, s models.ScrollSpeed) {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	gm.publish(protocol.ChangeScrollSpeed{RankingType: r, SpeedType: s})
}
