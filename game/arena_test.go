package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snake-arena/config"
	"snake-arena/constants"
	"snake-arena/models"
	"snake-arena/physics"
	"snake-arena/protocol"
)

type published struct {
	msgs []protocol.Message
}

func (p *published) last() protocol.Message {
	if len(p.msgs) == 0 {
		return nil
	}
	return p.msgs[len(p.msgs)-1]
}

func (p *published) tags() []string {
	var out []string
	for _, m := range p.msgs {
		out = append(out, m.Tag())
	}
	return out
}

// newTestManager returns an active manager already in the main game with the
// given players. The first id is the broadcaster and the local player.
func newTestManager(t *testing.T, s config.Session, ids ...string) (*Manager, *published) {
	t.Helper()
	gm := NewManager(Options{Session: s, SelfID: ids[0], SessionID: "session-1", Active: true, Seed: 7})
	out := &published{}
	gm.onPublish = func(m protocol.Message) { out.msgs = append(out.msgs, m) }

	host := models.AccountData{ID: ids[0], Name: ids[0]}
	gm.anyTable.WaitRecruitment(ids[0], protocol.WaitRecruitment{BroadcasterID: ids[0], Broadcaster: host})

	var list []models.PlayerEntry
	for i, id := range ids {
		list = append(list, models.PlayerEntry{
			ID:            id,
			User:          models.AccountData{ID: id, Name: id},
			SnakeType:     "A",
			IsBroadcaster: i == 0,
		})
	}
	gm.anyTable.LotteryResult(ids[0], protocol.LotteryResult{PlayerList: list, NumPlayers: len(list)})
	gm.anyTable.StartGame(ids[0], protocol.StartGame{})
	require.Equal(t, PhaseMainGame, gm.phase)
	require.NotNil(t, gm.field)
	return gm, out
}

func place(gm *Manager, id string, pos models.Vec, dir int) *Player {
	p := gm.players[id]
	p.Snake = gm.newSnake(pos, dir, p.User.Name, p.SnakeType)
	p.Direction = dir
	p.State = models.StatePlaying
	return p
}

func advance(gm *Manager, ticks uint64) {
	for i := uint64(1); i <= ticks; i++ {
		gm.sched.Advance(gm.sched.Now() + 1)
	}
}

func TestHeadOnCollisionKillsBoth(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host", "alice")
	host := place(gm, "host", models.Vec{X: 0, Y: 0}, 0)
	alice := place(gm, "alice", models.Vec{X: 30, Y: 0}, 16)

	gm.auth.checkCollisions()
	require.Len(t, out.msgs, 1)
	conflict, ok := out.last().(protocol.PlayersInConflict)
	require.True(t, ok)
	assert.ElementsMatch(t, []models.CollisionInfo{
		{DeadPlayerID: "host", KillerPlayerID: "alice"},
		{DeadPlayerID: "alice", KillerPlayerID: "host"},
	}, conflict.PlayersInConflict)

	gm.auth.checkCollisions()
	assert.Len(t, out.msgs, 1, "second report held back until the first is applied")

	gm.anyTable.PlayersInConflict("host", conflict)
	gm.auth.PlayersInConflict("host", conflict)

	assert.Equal(t, models.StateStaging, host.State)
	assert.Equal(t, models.StateStaging, alice.State)
	assert.Equal(t, 1, host.KillCount)
	assert.Equal(t, 1, alice.KillCount)
	assert.Len(t, gm.waitingFoods, 2*testSession().Snake.MaxNameLength)

	// A replayed report changes nothing once the victims are staging.
	gm.anyTable.PlayersInConflict("host", conflict)
	assert.Equal(t, 1, host.KillCount)
	assert.Len(t, gm.waitingFoods, 2*testSession().Snake.MaxNameLength)

	advance(gm, 45)
	require.Equal(t, []string{
		constants.MSG_PLAYERS_IN_CONFLICT,
		constants.MSG_DESTROY_SNAKE,
		constants.MSG_ANIMATION,
	}, out.tags())
	assert.Equal(t, protocol.DestroySnake{DeadPlayerID: "host"}, out.msgs[1])
	assert.Equal(t, protocol.Animation{
		AnimationType: models.AnimationToBroadcasterView,
		Scope:         models.ScopeOne,
		PlayerID:      "alice",
	}, out.msgs[2])

	advance(gm, 90)
	assert.Equal(t, protocol.DestroySnake{DeadPlayerID: "alice"}, out.last())
}

func TestCollisionIgnoresInvincible(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host", "alice")
	place(gm, "host", models.Vec{X: 0, Y: 0}, 0)
	alice := place(gm, "alice", models.Vec{X: 30, Y: 0}, 16)
	alice.State = models.StateInvincible

	gm.auth.checkCollisions()
	assert.Empty(t, out.msgs)

	gm.applyConflicts([]models.CollisionInfo{{DeadPlayerID: "alice", KillerPlayerID: "host"}})
	assert.Equal(t, models.StateInvincible, alice.State)
	assert.Zero(t, gm.players["host"].KillCount)
}

func TestDestroySnakeDropsJewel(t *testing.T) {
	gm, _ := newTestManager(t, testSession(), "host", "alice")
	alice := place(gm, "alice", models.Vec{X: 100, Y: 0}, 0)
	gm.moveJewel("alice")
	require.True(t, alice.Snake.HasJewel)
	require.Nil(t, gm.jewel)

	gm.destroySnake("alice")
	assert.NotNil(t, alice.Snake, "only staging snakes are destroyed")

	alice.setState(models.StateStaging)
	gm.destroySnake("alice")
	assert.Nil(t, alice.Snake)
	assert.Equal(t, models.StateDead, alice.State)
	assert.Equal(t, models.TouchNoPoint, alice.Touch)
	assert.Equal(t, "alice　", alice.LastWords)
	assert.Empty(t, gm.jewelOwner)
	require.NotNil(t, gm.jewel)
}

func TestJewelGoesToFirstPlayerInOrder(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host", "alice", "bob")
	place(gm, "host", models.Vec{X: 0, Y: -400}, 0)
	place(gm, "alice", models.Vec{X: 0, Y: 0}, 0)
	place(gm, "bob", models.Vec{X: 40, Y: 0}, 0)
	gm.jewel = physics.NewJewel(models.Vec{X: 20, Y: 0})

	gm.auth.checkJewel()
	require.Len(t, out.msgs, 1)
	assert.Equal(t, protocol.UpdateJewelOwner{OwnerID: "alice"}, out.last())

	gm.auth.checkJewel()
	assert.Len(t, out.msgs, 1)

	gm.anyTable.UpdateJewelOwner("host", protocol.UpdateJewelOwner{OwnerID: "alice"})
	gm.auth.UpdateJewelOwner("host", protocol.UpdateJewelOwner{OwnerID: "alice"})
	assert.Equal(t, "alice", gm.jewelOwner)
	assert.Nil(t, gm.jewel)
	assert.True(t, gm.players["alice"].Snake.HasJewel)

	gm.moveJewel("bob")
	assert.Equal(t, "bob", gm.jewelOwner)
	assert.False(t, gm.players["alice"].Snake.HasJewel)
	assert.True(t, gm.players["bob"].Snake.HasJewel)
}

func TestRespawnJewelOnlyWhenFree(t *testing.T) {
	gm, _ := newTestManager(t, testSession(), "host", "alice")
	place(gm, "alice", models.Vec{X: 0, Y: 0}, 0)
	gm.jewel = physics.NewJewel(models.Vec{X: 900, Y: 0})

	gm.auth.checkJewelOutside()
	gm.anyTable.RespawnJewel("host", protocol.RespawnJewel{Position: models.Vec{X: 10, Y: 10}})
	assert.Equal(t, models.Vec{X: 10, Y: 10}, gm.jewel.Pos)

	gm.moveJewel("alice")
	gm.anyTable.RespawnJewel("host", protocol.RespawnJewel{Position: models.Vec{X: 50, Y: 50}})
	assert.Nil(t, gm.jewel)
	assert.Equal(t, "alice", gm.jewelOwner)
}

func TestJewelOutsideFieldRespawnsOnce(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host")
	gm.jewel = physics.NewJewel(models.Vec{X: 900, Y: 0})

	gm.auth.checkJewelOutside()
	gm.auth.checkJewelOutside()
	require.Len(t, out.msgs, 1)
	msg, ok := out.last().(protocol.RespawnJewel)
	require.True(t, ok)
	half := gm.spawnSquareSide(gm.currentTier()) / 2
	assert.LessOrEqual(t, msg.Position.X, half)
	assert.GreaterOrEqual(t, msg.Position.X, -half)

	gm.auth.RespawnJewel("host", msg)
	gm.anyTable.RespawnJewel("host", msg)
	gm.auth.checkJewelOutside()
	assert.Len(t, out.msgs, 1)
}

func TestEatenFoodsReportAndApply(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host")
	host := place(gm, "host", models.Vec{X: 0, Y: 0}, 0)
	eaten := physics.NewFood(models.Vec{X: 30, Y: 0}, "か")
	kept := physics.NewFood(models.Vec{X: 300, Y: 300}, "き")
	drifted := physics.NewFood(models.Vec{X: 1000, Y: 0}, "く")
	gm.foods = []*physics.Food{eaten, kept, drifted}
	waiting := physics.NewFood(models.Vec{X: -200, Y: 0}, "け")
	gm.waitingFoods = []*physics.Food{waiting}

	gm.auth.checkEatenFoods()
	require.Len(t, out.msgs, 1)
	msg, ok := out.last().(protocol.EatenFoods)
	require.True(t, ok)
	assert.Equal(t, []models.EatenFood{{EaterID: "host", EatenIndex: 0}}, msg.EatenFoodInfo)
	assert.Equal(t, []int{1, 2}, msg.NoEatenFoodIndexList)
	assert.Equal(t, gm.field.Radius(), msg.FieldRadius)

	gm.auth.checkEatenFoods()
	assert.Len(t, out.msgs, 1)

	gm.anyTable.EatenFoods("host", msg)
	gm.auth.EatenFoods("host", msg)

	assert.Len(t, host.Snake.Words, testSession().Snake.MaxNameLength+1)
	assert.Equal(t, "か", host.Snake.Words[len(host.Snake.Words)-1])
	assert.True(t, eaten.Destroyed())
	assert.True(t, drifted.Destroyed())
	assert.Equal(t, []*physics.Food{kept, waiting}, gm.foods)
	assert.Empty(t, gm.waitingFoods)
	assert.False(t, gm.auth.foodsInFlight)
}

func TestEatenFoodsSilentWithoutChanges(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host")
	place(gm, "host", models.Vec{X: 0, Y: 0}, 0)
	gm.foods = []*physics.Food{physics.NewFood(models.Vec{X: 300, Y: 300}, "さ")}

	gm.auth.checkEatenFoods()
	assert.Empty(t, out.msgs)
}

func TestSpawnFoodsWaitsForNextReport(t *testing.T) {
	gm, _ := newTestManager(t, testSession(), "host")
	gm.spawnFoods()

	tier := gm.field.Tier
	require.Len(t, gm.waitingFoods, testSession().Food.Volume[tier])
	assert.Empty(t, gm.foods)
	half := testSession().Field.Radius[tier] / 2
	for _, f := range gm.waitingFoods {
		assert.LessOrEqual(t, f.Pos.X, half)
		assert.GreaterOrEqual(t, f.Pos.Y, -half)
		assert.Contains(t, testSession().Food.Chars, f.Word)
	}
}

func TestRespawnConsumesBudget(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host", "alice")
	alice := place(gm, "alice", models.Vec{X: 0, Y: 0}, 0)
	alice.setState(models.StateStaging)
	gm.destroySnake("alice")
	require.Equal(t, 2, alice.RespawnTimes)

	gm.anyTable.RespawnSnake("alice", protocol.RespawnSnake{})
	gm.auth.RespawnSnake("alice", protocol.RespawnSnake{})

	assert.Equal(t, models.StateInvincible, alice.State)
	assert.Equal(t, 1, alice.RespawnTimes)
	assert.NotNil(t, alice.Snake)
	assert.Equal(t, models.PreventTouchState, alice.Prevent)
	assert.Equal(t, 2, gm.sched.Pending(playerOwner("alice")))
	assert.Equal(t, 1, gm.sched.Pending(snakeOwner("alice")))

	gm.anyTable.RespawnSnake("alice", protocol.RespawnSnake{})
	assert.Equal(t, 1, alice.RespawnTimes, "only dead players respawn")

	advance(gm, 30)
	assert.Contains(t, out.msgs, protocol.SetPlaying{Scope: models.ScopeOne, PlayerID: "alice"})

	advance(gm, 75)
	assert.Equal(t, protocol.PreventUsertouch{PlayerID: "alice", PreventType: models.PreventNone}, out.last())

	alice.State = models.StateDead
	alice.RespawnTimes = 0
	gm.anyTable.RespawnSnake("alice", protocol.RespawnSnake{})
	assert.Equal(t, models.StateDead, alice.State)
}

func TestRespawnRejectedAfterGameOver(t *testing.T) {
	gm, _ := newTestManager(t, testSession(), "host", "alice")
	alice := gm.players["alice"]
	alice.State = models.StateDead
	gm.gameOver = true

	gm.anyTable.RespawnSnake("alice", protocol.RespawnSnake{})
	assert.Equal(t, models.StateDead, alice.State)
	assert.Equal(t, 2, alice.RespawnTimes)
}

func TestAngelSnakeOnlyForBroadcaster(t *testing.T) {
	gm, _ := newTestManager(t, testSession(), "host", "alice")
	host := gm.players["host"]
	host.State = models.StateDead
	host.RespawnTimes = 0

	gm.anyTable.RespawnAngelSnake("host", protocol.RespawnAngelSnake{})
	assert.Equal(t, models.StateGhost, host.State)
	assert.NotNil(t, host.Snake)
	assert.False(t, host.can(models.CanCollide))
}

func TestGameEndsOnceWhenOnePlayerLeft(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host", "alice")
	place(gm, "host", models.Vec{X: 0, Y: 0}, 0)
	gm.players["alice"].State = models.StateDead

	gm.auth.checkGameEnd()
	gm.auth.checkGameEnd()
	require.Equal(t, []string{constants.MSG_FINISH_GAME}, out.tags())

	gm.anyTable.FinishGame("host", protocol.FinishGame{})
	gm.auth.FinishGame("host", protocol.FinishGame{})
	assert.True(t, gm.gameOver)
	assert.Equal(t, models.CountDownFinish, gm.countDown)
	assert.Equal(t, "host　　", gm.players["host"].LastWords)

	advance(gm, 149)
	assert.Len(t, out.msgs, 1)
	advance(gm, 1)
	assert.Equal(t, protocol.StartResult{}, out.last())
}

func TestGameEndCanBeBanned(t *testing.T) {
	s := testSession()
	s.Debug.BanEndingGameByNumberOfPlayers = true
	gm, out := newTestManager(t, s, "host", "alice")
	gm.players["alice"].State = models.StateDead

	gm.auth.checkGameEnd()
	assert.Empty(t, out.msgs)
}

func TestRemainClockCountsDownThenFinishes(t *testing.T) {
	s := testSession()
	s.Time.Limit = 2
	gm, out := newTestManager(t, s, "host", "alice")

	gm.auth.startRemainClock()
	gm.auth.startRemainClock()
	advance(gm, 30)
	assert.Equal(t, protocol.UpdateRemainTime{RemainTime: 1}, out.last())
	advance(gm, 30)
	assert.Equal(t, protocol.UpdateRemainTime{RemainTime: 0}, out.last())
	advance(gm, 30)
	assert.Equal(t, protocol.FinishGame{}, out.last())
	advance(gm, 90)
	assert.Len(t, out.msgs, 3)
}

func TestEndInvincibilityCountsDown(t *testing.T) {
	s := testSession()
	s.Snake.InvincibleTime = 5000
	gm, out := newTestManager(t, s, "host", "alice")

	gm.auth.endInvincibility(models.ScopeAll, "")
	advance(gm, 150)

	assert.Equal(t, []protocol.Message{
		protocol.CountDown{CountDownType: models.CountDownThree},
		protocol.CountDown{CountDownType: models.CountDownTwo},
		protocol.CountDown{CountDownType: models.CountDownOne},
		protocol.Animation{AnimationType: models.AnimationBlinking, Scope: models.ScopeAll},
		protocol.CountDown{CountDownType: models.CountDownStart},
		protocol.SetPlaying{Scope: models.ScopeAll},
	}, out.msgs)
}

func TestRankingPublishedOnChange(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host", "alice")
	place(gm, "host", models.Vec{X: 0, Y: 0}, 0)
	alice := place(gm, "alice", models.Vec{X: 300, Y: 0}, 0)

	gm.auth.updateRanking()
	gm.auth.updateRanking()
	require.Len(t, out.msgs, 1)

	alice.Snake.EatFood("た")
	gm.auth.updateRanking()
	require.Len(t, out.msgs, 2)
	assert.Equal(t, protocol.RankingAccountData{RankingAccountData: []models.RankedCount{
		{PlayerID: "alice", Count: 7},
		{PlayerID: "host", Count: 6},
	}}, out.last())
}

type fakeSink struct {
	logs []models.ResultLog
	err  error
}

func (f *fakeSink) Submit(ctx context.Context, log models.ResultLog) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	f.logs = append(f.logs, log)
	return f.err
}

func TestResultRankingAndLog(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host", "alice", "bob")
	sink := &fakeSink{}
	gm.results = sink

	host, alice, bob := gm.players["host"], gm.players["alice"], gm.players["bob"]
	host.LengthCount, alice.LengthCount, bob.LengthCount = 8, 6, 9
	host.KillCount, alice.KillCount, bob.KillCount = 0, 2, 1
	alice.LastWords = "alice"
	gm.jewelOwner = "alice"

	gm.anyTable.StartResult("host", protocol.StartResult{})
	gm.auth.StartResult("host", protocol.StartResult{})
	require.Len(t, out.msgs, 1)
	ranking, ok := out.last().(protocol.InitResult)
	require.True(t, ok)
	assert.Equal(t, []models.RankedCount{
		{PlayerID: "bob", Count: 9},
		{PlayerID: "host", Count: 8},
		{PlayerID: "alice", Count: 6},
	}, ranking.LengthRankingPlayerIDList)
	assert.Equal(t, []models.RankedCount{
		{PlayerID: "alice", Count: 2},
		{PlayerID: "bob", Count: 1},
		{PlayerID: "host", Count: 0},
	}, ranking.KillRankingPlayerIDList)
	assert.Equal(t, "alice", ranking.JewelOwnerID)

	gm.anyTable.InitResult("host", ranking)
	gm.auth.InitResult("host", ranking)

	require.Len(t, sink.logs, 1)
	got := sink.logs[0]
	assert.Equal(t, constants.RESULT_LOG_TYPE, got.Type)
	assert.Equal(t, "session-1", got.SessionID)
	require.Len(t, got.Data, 3)
	assert.Equal(t, models.ResultEntry{
		Rank:   3,
		UserID: "alice",
		Score:  6,
		Params: models.ResultParams{
			UserID:      "alice",
			UserName:    "alice",
			LengthCount: 6,
			LengthRank:  3,
			Words:       "alice",
			KillCount:   2,
			KillRank:    1,
			HaveJewel:   true,
		},
	}, got.Data[2])
	assert.Equal(t, PhaseResult, gm.phase)
}

func TestSubmitResultFailureIsLogged(t *testing.T) {
	gm, _ := newTestManager(t, testSession(), "host")
	sink := &fakeSink{err: errors.New("store down")}
	gm.results = sink
	gm.result = gm.buildResult(gm.resultRanking())

	assert.NotPanics(t, gm.submitResult)
	assert.Len(t, sink.logs, 1)
}

func TestTouchStateSteersOwnAndRelayedIDs(t *testing.T) {
	gm, _ := newTestManager(t, testSession(), "host", "alice")
	alice := place(gm, "alice", models.Vec{X: 0, Y: 0}, 0)

	dir := 8
	gm.anyTable.ChangeUserTouchState("alice", protocol.ChangeUserTouchState{NewState: models.TouchOnPoint, NewDirection: &dir})
	assert.Equal(t, 8, alice.Direction)
	assert.Equal(t, models.TouchOnPoint, alice.Touch)
	assert.Equal(t, 180.0, alice.Snake.Head.Angle)

	wall := 24
	gm.anyTable.ChangeUserTouchState("host", protocol.ChangeUserTouchState{ID: "alice", NewState: models.TouchOnPoint, NewDirection: &wall})
	assert.Equal(t, 24, alice.Direction)

	gm.anyTable.ChangeUserTouchState("alice", protocol.ChangeUserTouchState{NewState: models.TouchNoPoint})
	assert.Equal(t, models.TouchNoPoint, alice.Touch)
	assert.Equal(t, 24, alice.Direction)
}

func TestInputDoubleTapDrainsGauge(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host")
	place(gm, "host", models.Vec{X: 0, Y: 0}, 0)
	in := gm.Input()
	full := gm.dashTicks()

	in.PointDown(models.Vec{X: 1, Y: 0})
	first, ok := out.last().(protocol.ChangeUserTouchState)
	require.True(t, ok)
	assert.Equal(t, models.TouchOnPoint, first.NewState)
	assert.Equal(t, "host", first.ID)

	in.PointUp()
	in.PointDown(models.Vec{X: 1, Y: 0})
	second := out.last().(protocol.ChangeUserTouchState)
	require.Equal(t, models.TouchOnDoubleTap, second.NewState)
	gm.anyTable.ChangeUserTouchState("host", second)

	sent := len(out.msgs)
	for i := 0; i < int(full); i++ {
		in.tick()
	}
	assert.Zero(t, in.Gauge())
	assert.Len(t, out.msgs, sent)

	in.tick()
	in.tick()
	require.Len(t, out.msgs, sent+1)
	hold := out.last().(protocol.ChangeUserTouchState)
	assert.Equal(t, models.TouchOnHold, hold.NewState)

	gm.anyTable.ChangeUserTouchState("host", hold)
	in.PointMove(models.Vec{X: 0, Y: -50})
	assert.Len(t, out.msgs, sent+1, "steering is locked while holding")

	in.tick()
	assert.Equal(t, testSession().Snake.DashRecovery, in.Gauge())
}

func TestInputPointMoveNeedsDistanceAndNewDirection(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host")
	place(gm, "host", models.Vec{X: 0, Y: 0}, 0)
	in := gm.Input()

	in.PointMove(models.Vec{X: 5, Y: 0})
	in.PointMove(models.Vec{X: 50, Y: 0})
	assert.Empty(t, out.msgs)

	in.PointMove(models.Vec{X: 0, Y: 50})
	require.Len(t, out.msgs, 1)
	msg := out.last().(protocol.ChangeUserTouchState)
	require.NotNil(t, msg.NewDirection)
	assert.Equal(t, 8, *msg.NewDirection)
}

func TestInputBlockedWhilePrevented(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host")
	p := place(gm, "host", models.Vec{X: 0, Y: 0}, 0)
	p.Prevent = models.PreventTouchState

	gm.Input().PointDown(models.Vec{X: 1, Y: 0})
	gm.Input().PointUp()
	assert.Empty(t, out.msgs)
}

func TestRequestRespawn(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host")
	in := gm.Input()
	p := gm.players["host"]

	assert.False(t, in.RequestRespawn())
	p.State = models.StateDead
	assert.True(t, in.RequestRespawn())
	assert.Equal(t, protocol.RespawnSnake{}, out.last())

	p.RespawnTimes = 0
	assert.True(t, in.RequestRespawn())
	assert.Equal(t, protocol.RespawnAngelSnake{}, out.last())
}

func TestWallHeadingIsReportedOnce(t *testing.T) {
	gm, out := newTestManager(t, testSession(), "host")
	r := gm.field.Radius()
	p := place(gm, "host", models.Vec{X: r, Y: 0}, 24)
	p.Snake.Head.Angle = 180

	gm.auth.syncWallHeading(p)
	gm.auth.syncWallHeading(p)
	require.Len(t, out.msgs, 1)
	msg := out.last().(protocol.ChangeUserTouchState)
	assert.Equal(t, "host", msg.ID)
	require.NotNil(t, msg.NewDirection)
	assert.Equal(t, 8, *msg.NewDirection)

	gm.auth.ChangeUserTouchState("host", msg)
	assert.False(t, gm.auth.wallInFlight["host"])
}

func TestDirectionRoundTrip(t *testing.T) {
	gm := NewManager(Options{Session: testSession(), SelfID: "x"})
	for d := 0; d < gm.cfg.Input.RadianFineness; d++ {
		assert.Equal(t, d, gm.directionOf(gm.directionDeg(d)), "direction %d", d)
	}
	assert.Equal(t, 90.0, gm.directionDeg(0))
	assert.Equal(t, 0.0, gm.directionDeg(24))
}

func TestDirectionFromPoint(t *testing.T) {
	tests := []struct {
		name string
		p    models.Vec
		want int
	}{
		{"right", models.Vec{X: 1, Y: 0}, 0},
		{"down", models.Vec{X: 0, Y: 1}, 8},
		{"left", models.Vec{X: -1, Y: 0}, 16},
		{"up", models.Vec{X: 0, Y: -1}, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, directionFromPoint(tt.p, 32))
		})
	}
}

func TestNameWords(t *testing.T) {
	assert.Equal(t, []string{"へ", "び", constants.BLANK_WORD}, nameWords("へび", 3))
	assert.Equal(t, []string{"👍🏽", "o"}, nameWords("👍🏽ok", 2))
	assert.Equal(t, []string{constants.BLANK_WORD}, nameWords("", 1))
	assert.Equal(t, "へび", joinWords([]string{"へ", "び"}))
}

func TestPopulationTier(t *testing.T) {
	tests := map[int]int{0: 4, 10: 4, 11: 3, 30: 3, 31: 2, 50: 2, 51: 1, 70: 1, 71: 0, 100: 0}
	for counted, want := range tests {
		assert.Equal(t, want, populationTier(counted), "counted %d", counted)
	}
}

func TestForcedTierOverridesPopulation(t *testing.T) {
	s := testSession()
	s.Debug.ForcedTier = 1
	gm, _ := newTestManager(t, s, "host")
	assert.Equal(t, 1, gm.currentTier())
	assert.Equal(t, s.Field.Radius[1], gm.field.Radius())
}

func TestSkipLotteryUsesFixedSeed(t *testing.T) {
	s := testSession()
	s.Debug.SkipLottery = true
	gm := NewManager(Options{Session: s, SelfID: "host", Active: true})
	assert.Equal(t, int64(constants.SKIP_LOTTERY_SEED), gm.auth.lotterySeed())
}

func TestLotterySeedDependsOnApplicantSet(t *testing.T) {
	gm := NewManager(Options{Session: testSession(), SelfID: "host", Active: true})
	a := gm.auth
	a.broadcasterID = "host"
	a.applicants = []models.AccountData{{ID: "alice"}, {ID: "bob"}}
	first := a.lotterySeed()

	a.applicants = []models.AccountData{{ID: "bob"}, {ID: "alice"}}
	assert.Equal(t, first, a.lotterySeed(), "arrival order does not change the seed")

	a.applicants = []models.AccountData{{ID: "alice"}, {ID: "carol"}}
	assert.NotEqual(t, first, a.lotterySeed())

	a.applicants = []models.AccountData{{ID: "alice"}}
	assert.NotEqual(t, first, a.lotterySeed())
}

func TestDrawPlayersPutsBroadcasterFirst(t *testing.T) {
	s := testSession()
	s.NumPlayers = 1
	s.Debug.PlayerNames = []string{"renamed"}
	gm := NewManager(Options{Session: s, SelfID: "host", Active: true})
	a := gm.auth
	a.broadcasterID = "host"
	a.broadcaster = models.AccountData{ID: "host", Name: "host"}
	a.applicants = []models.AccountData{{ID: "alice", Name: "alice"}, {ID: "bob", Name: "bob"}}
	a.lotteryRand = newLotteryRand(a.lotterySeed())

	list := a.drawPlayers()
	require.Len(t, list, 2)
	assert.Equal(t, "host", list[0].ID)
	assert.True(t, list[0].IsBroadcaster)
	assert.False(t, list[1].IsBroadcaster)
	assert.Equal(t, "renamed", list[1].User.Name)
	for _, e := range list {
		assert.Contains(t, constants.SNAKE_TYPES, e.SnakeType)
	}
}

func TestJoinWindowCloses(t *testing.T) {
	gm := NewManager(Options{Session: testSession(), SelfID: "host", Active: true})
	a := gm.auth
	a.openRecruitment("host", models.AccountData{Name: "host"})

	a.addApplicant("host", models.AccountData{Name: "host"})
	a.addApplicant("alice", models.AccountData{Name: "alice"})
	a.addApplicant("alice", models.AccountData{Name: "alice again"})
	gm.ctx.Tick = uint64(testSession().EntrySec*testSession().FPS) + 1
	a.addApplicant("bob", models.AccountData{Name: "bob"})

	require.Len(t, a.applicants, 1)
	assert.Equal(t, "alice", a.applicants[0].ID)
}

func TestSetStateRejectsIllegalStep(t *testing.T) {
	p := &Player{ID: "x", State: models.StateDead}
	assert.False(t, p.setState(models.StatePlaying))
	assert.Equal(t, models.StateDead, p.State)
	assert.True(t, p.setState(models.StateInvincible))
}

func TestResetPlayersBudgets(t *testing.T) {
	gm := NewManager(Options{Session: testSession(), SelfID: "host"})
	gm.resetPlayers([]models.PlayerEntry{
		{ID: "host", IsBroadcaster: true},
		{ID: "alice", User: models.AccountData{IsPremium: true}},
		{ID: "bob"},
		{ID: "bob"},
	})
	assert.Equal(t, []string{"host", "alice", "bob"}, gm.order)
	assert.Equal(t, 3, gm.players["host"].RespawnTimes)
	assert.Equal(t, 3, gm.players["alice"].RespawnTimes)
	assert.Equal(t, 2, gm.players["bob"].RespawnTimes)
	assert.Equal(t, models.StateInvincible, gm.players["bob"].State)
}

func TestRunStopsOnContext(t *testing.T) {
	gm := NewManager(Options{Session: testSession(), SelfID: "host"})
	frames := make(chan protocol.Frame, 2)
	frames <- protocol.Frame{Age: 1}
	frames <- protocol.Frame{Age: 2}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	applied := 0
	err := gm.Run(ctx, frames, func() { applied++ })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, applied)
	assert.Equal(t, uint64(2), gm.Age())

	close(frames)
	assert.NoError(t, gm.Run(context.Background(), frames, nil))
}
