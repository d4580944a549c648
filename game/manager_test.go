package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snake-arena/broadcast"
	"snake-arena/config"
	"snake-arena/models"
	"snake-arena/protocol"
)

func testSession() config.Session {
	s := config.Default()
	s.EntrySec = 1
	s.Snake.InvincibleTime = 1000
	s.Time.Limit = 3
	return s
}

type arena struct {
	bus      *broadcast.Loopback
	managers []*Manager
}

func newArena(s config.Session, ids ...string) *arena {
	a := &arena{bus: broadcast.NewLoopback()}
	for i, id := range ids {
		member := a.bus.Join(id, i == 0)
		a.managers = append(a.managers, NewManager(Options{
			Session:   s,
			SelfID:    id,
			SessionID: "session-1",
			Active:    member.Active(),
			Seed:      42,
			Publisher: member,
		}))
	}
	return a
}

func (a *arena) step(n int) {
	for i := 0; i < n; i++ {
		f := a.bus.Step()
		for _, m := range a.managers {
			m.ApplyFrame(f)
		}
	}
}

func (a *arena) host() *Manager { return a.managers[0] }

// recruitFor opens recruitment, lets every other instance join and then
// steps the given number of ticks.
func (a *arena) recruitFor(t *testing.T, ticks int) {
	t.Helper()
	a.host().StartRecruitment(models.AccountData{Name: "host"})
	a.step(2)
	for _, m := range a.managers[1:] {
		require.True(t, m.RequestJoin(models.AccountData{Name: m.SelfID()}))
	}
	a.step(ticks)
}

func (a *arena) recruit(t *testing.T) { a.recruitFor(t, 260) }

func TestSessionReachesMainGame(t *testing.T) {
	a := newArena(testSession(), "host", "alice", "bob")
	a.recruitFor(t, 213)

	for _, m := range a.managers {
		assert.Equal(t, PhaseMainGame, m.Phase())
		require.Equal(t, []string{"host", "alice", "bob"}, m.PlayerIDs())
		for _, id := range m.PlayerIDs() {
			p, ok := m.Player(id)
			require.True(t, ok)
			assert.True(t, p.HasSnake, id)
			assert.Equal(t, models.StateInvincible, p.State, id)
			assert.Len(t, p.Words, testSession().Snake.MaxNameLength)
		}
	}
	host, _ := a.host().Player("host")
	assert.True(t, host.IsBroadcaster)
	assert.Equal(t, 3, host.RespawnTimes)
	alice, _ := a.host().Player("alice")
	assert.Equal(t, 2, alice.RespawnTimes)
	assert.Equal(t, []string{"a", "l", "i", "c", "e", "　"}, alice.Words)

	a.step(40)
	for _, id := range a.host().PlayerIDs() {
		p, _ := a.host().Player(id)
		assert.NotEqual(t, models.StateInvincible, p.State, id)
	}
}

func TestSessionEndsWithResult(t *testing.T) {
	a := newArena(testSession(), "host", "alice", "bob")
	a.recruitFor(t, 560)

	for _, m := range a.managers {
		require.Equal(t, PhaseResult, m.Phase())
		assert.True(t, m.GameOver())
		res := m.Result()
		require.NotNil(t, res)
		assert.Len(t, res.LengthRanking, 3)
		assert.Len(t, res.KillRanking, 3)
		require.Len(t, res.Log.Data, 3)
		assert.Equal(t, "multi:result", res.Log.Type)
		assert.Equal(t, "session-1", res.Log.SessionID)
		assert.Equal(t, 1, res.Log.Data[0].Rank)
		for _, row := range res.Log.Data {
			assert.NotEmpty(t, row.Params.Words, row.UserID)
		}
	}

	a.host().ShowNextRanking()
	a.step(1)
	for _, m := range a.managers {
		assert.Equal(t, models.RankingKill, m.ShownRanking())
	}

	a.managers[1].ShowNextRanking()
	a.step(1)
	assert.Equal(t, models.RankingKill, a.host().ShownRanking())
}

func snapshot(m *Manager) map[string]PlayerView {
	out := make(map[string]PlayerView)
	for _, id := range m.PlayerIDs() {
		p, _ := m.Player(id)
		out[id] = p
	}
	return out
}

func TestInstancesStayInLockstep(t *testing.T) {
	a := newArena(testSession(), "host", "alice", "bob")
	a.recruit(t)

	alice, bob := a.managers[1], a.managers[2]
	alice.Input().PointDown(models.Vec{X: 1, Y: 0})
	a.step(40)
	bob.Input().PointDown(models.Vec{X: 0, Y: -1})
	a.step(5)
	bob.Input().PointUp()
	a.step(3)
	bob.Input().PointDown(models.Vec{X: -1, Y: 1})
	a.step(120)
	alice.Input().PointMove(models.Vec{X: -40, Y: -40})
	a.step(200)

	want := snapshot(a.host())
	for _, m := range a.managers[1:] {
		assert.Equal(t, want, snapshot(m), m.SelfID())
		assert.Equal(t, a.host().FoodCount(), m.FoodCount())
		assert.Equal(t, a.host().FieldRadius(), m.FieldRadius())
		assert.Equal(t, a.host().Ranking(), m.Ranking())
		hp, ho := a.host().Jewel()
		mp, mo := m.Jewel()
		assert.Equal(t, hp, mp)
		assert.Equal(t, ho, mo)
	}
}

func TestLateJoinerReplaysJournal(t *testing.T) {
	a := newArena(testSession(), "host", "alice")
	a.recruit(t)
	a.managers[1].Input().PointDown(models.Vec{X: 0, Y: 1})
	a.step(60)

	late := NewManager(Options{Session: testSession(), SelfID: "late", SessionID: "session-1", Seed: 42})
	for _, f := range a.bus.Journal() {
		late.ApplyFrame(f)
	}
	a.managers = append(a.managers, late)
	a.step(10)

	assert.Equal(t, a.host().Age(), late.Age())
	assert.Equal(t, snapshot(a.host()), snapshot(late))
	assert.Equal(t, a.host().FoodCount(), late.FoodCount())
}

func TestApplyFrameDropsStaleAndFillsGaps(t *testing.T) {
	gm := NewManager(Options{Session: testSession(), SelfID: "host", Seed: 1})
	ticks := 0
	gm.sched.Every("test", gm.ctx.Elapsed(1), func() { ticks++ })

	gm.ApplyFrame(protocol.Frame{Age: 1})
	gm.ApplyFrame(protocol.Frame{Age: 5})
	assert.Equal(t, uint64(5), gm.Age())
	assert.Equal(t, 5, ticks)

	gm.ApplyFrame(protocol.Frame{Age: 3})
	gm.ApplyFrame(protocol.Frame{Age: 5})
	assert.Equal(t, uint64(5), gm.Age())
	assert.Equal(t, 5, ticks)
}

func TestUndecodableEventIsSkipped(t *testing.T) {
	a := newArena(testSession(), "host")
	f := protocol.Frame{Age: 0, Events: []protocol.Event{
		{Seq: 1, From: "host", Envelope: protocol.Envelope{T: "teleport"}},
		{Seq: 2, From: "host", Envelope: protocol.Envelope{T: "startRecruitment", P: []byte(`{"broadcasterUser":{"name":"host"}}`)}},
	}}
	a.host().ApplyFrame(f)
	a.step(1)
	assert.Equal(t, PhaseRecruiting, a.host().Phase())
	assert.Equal(t, "host", a.host().BroadcasterID())
}

func TestLoneBroadcasterRestartsRecruitment(t *testing.T) {
	a := newArena(testSession(), "host")
	a.host().StartRecruitment(models.AccountData{Name: "host"})
	a.step(250)
	assert.Equal(t, PhaseIdle, a.host().Phase())
	assert.Empty(t, a.host().PlayerIDs())
}

func TestRestartRecruitmentDropsPendingTasks(t *testing.T) {
	gm, _ := newTestManager(t, testSession(), "host", "alice")
	fired := false
	gm.sched.After(ownerSession, time.Second, func() { fired = true })
	gm.sched.After(playerOwner("alice"), time.Second, func() { fired = true })

	gm.anyTable.RestartRecruitment("host", protocol.RestartRecruitment{})
	assert.Equal(t, PhaseIdle, gm.phase)
	assert.Zero(t, gm.sched.Pending(ownerSession))
	assert.Zero(t, gm.sched.Pending(playerOwner("alice")))

	gm.sched.Advance(gm.ctx.Tick + uint64(gm.ctx.FPS)*2)
	assert.False(t, fired)
}

func TestRequestJoinOutsideRecruitment(t *testing.T) {
	a := newArena(testSession(), "host", "alice")
	assert.False(t, a.managers[1].RequestJoin(models.AccountData{Name: "alice"}))
}
