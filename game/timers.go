package game

import (
	"time"

	"snake-arena/constants"
	"snake-arena/models"
	"snake-arena/protocol"
)

var countDownSteps = []struct {
	before time.Duration
	kind   models.CountDownType
}{
	{4 * time.Second, models.CountDownThree},
	{3 * time.Second, models.CountDownTwo},
	{2 * time.Second, models.CountDownOne},
	{1 * time.Second, models.CountDownStart},
}

// endInvincibility schedules the blinking warning, the countdown for the whole
// arena and finally setPlaying.
func (a *authoritative) endInvincibility(scope models.Scope, playerID string) {
	gm := a.gm
	total := msDuration(gm.cfg.Snake.InvincibleTime)
	owner := ownerGame
	if scope == models.ScopeOne {
		owner = playerOwner(playerID)
	}

	gm.sched.After(owner, total*3/4, func() {
		gm.publish(protocol.Animation{AnimationType: models.AnimationBlinking, Scope: scope, PlayerID: playerID})
	})
	if scope == models.ScopeAll {
		for _, step := range countDownSteps {
			kind := step.kind
			at := total - step.before
			if at < 0 {
				at = 0
			}
			gm.sched.After(owner, at, func() {
				gm.publish(protocol.CountDown{CountDownType: kind})
			})
		}
	}
	gm.sched.After(owner, total, func() {
		gm.publish(protocol.SetPlaying{Scope: scope, PlayerID: playerID})
	})
}

// startRemainClock counts the time limit down once per second.
func (a *authoritative) startRemainClock() {
	gm := a.gm
	if !gm.cfg.Time.IsTimeBased || a.remainTimer != 0 {
		return
	}
	a.remain = gm.cfg.Time.Limit
	a.remainTimer = gm.sched.Every(ownerGame, constants.REMAIN_TIME_INTERVAL, func() {
		if a.remain <= 0 {
			gm.sched.Cancel(a.remainTimer)
			a.remainTimer = 0
			a.endGame()
			return
		}
		a.remain--
		gm.publish(protocol.UpdateRemainTime{RemainTime: a.remain})
	})
}

// endGame announces the end once.
func (a *authoritative) endGame() {
	if a.gm.gameOver || a.finishing {
		return
	}
	a.finishing = true
	a.gm.publish(protocol.FinishGame{})
}

// scheduleDestruction lets the explosion play, then removes the snake. Other
// players are shown the broadcaster's view before their snake goes away.
func (a *authoritative) scheduleDestruction(p *Player) {
	gm := a.gm
	id := p.ID
	delay := constants.EXPLOSION_STEP*time.Duration(len(p.Snake.Segments)+1) + constants.EXPLOSION_TAIL
	gm.sched.After(playerOwner(id), delay, func() {
		if gm.gameOver || id == gm.broadcasterID {
			gm.publish(protocol.DestroySnake{DeadPlayerID: id})
			return
		}
		gm.publish(protocol.Animation{AnimationType: models.AnimationToBroadcasterView, Scope: models.ScopeOne, PlayerID: id})
		gm.sched.After(playerOwner(id), constants.TO_BROADCASTER_DELAY, func() {
			gm.publish(protocol.DestroySnake{DeadPlayerID: id})
		})
	})
}
