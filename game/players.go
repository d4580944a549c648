package game

import (
	"log"

	"snake-arena/models"
	"snake-arena/physics"
)

// Player is one lottery winner and everything the session tracks about it.
type Player struct {
	ID            string
	User          models.AccountData
	SnakeType     string
	IsBroadcaster bool

	State        models.PlayerState
	RespawnTimes int
	KillCount    int
	LengthCount  int
	LastWords    string

	Snake     *physics.Snake
	Touch     models.TouchState
	Direction int
	Prevent   models.PreventType

	Blinking          bool
	ToBroadcasterView bool
}

// PlayerView is a read-only snapshot handed out by the Manager.
type PlayerView struct {
	ID            string
	Name          string
	IsPremium     bool
	IsBroadcaster bool
	SnakeType     string
	State         models.PlayerState
	RespawnTimes  int
	KillCount     int
	LengthCount   int
	LastWords     string
	Touch         models.TouchState
	Direction     int
	Prevent       models.PreventType
	HasSnake      bool
	HasJewel      bool
	Head          models.Vec
	HeadAngle     float64
	Words         []string
	Segments      int
}

func (p *Player) view() PlayerView {
	v := PlayerView{
		ID:            p.ID,
		Name:          p.User.Name,
		IsPremium:     p.User.IsPremium,
		IsBroadcaster: p.IsBroadcaster,
		SnakeType:     p.SnakeType,
		State:         p.State,
		RespawnTimes:  p.RespawnTimes,
		KillCount:     p.KillCount,
		LengthCount:   p.LengthCount,
		LastWords:     p.LastWords,
		Touch:         p.Touch,
		Direction:     p.Direction,
		Prevent:       p.Prevent,
	}
	if p.Snake != nil {
		v.HasSnake = true
		v.HasJewel = p.Snake.HasJewel
		v.Head = p.Snake.Head.Pos
		v.HeadAngle = p.Snake.Head.Angle
		v.Words = append([]string(nil), p.Snake.Words...)
		v.Segments = len(p.Snake.Segments)
	}
	return v
}

func (p *Player) can(c models.Capability) bool {
	return p.State.Can(c)
}

// setState moves p along the lifecycle. Illegal steps are logged and ignored.
func (p *Player) setState(to models.PlayerState) bool {
	if !models.CanTransition(p.State, to) {
		log.Printf("Ignoring state change for %s: %s -> %s", p.ID, p.State, to)
		return false
	}
	p.State = to
	return true
}

// resetPlayers builds the participant list from the lottery result, keeping
// its order.
func (gm *Manager) resetPlayers(list []models.PlayerEntry) {
	gm.order = gm.order[:0]
	gm.players = make(map[string]*Player, len(list))
	for _, e := range list {
		if _, dup := gm.players[e.ID]; dup {
			continue
		}
		budget := gm.cfg.Snake.RespawnTimes
		if e.User.IsPremium || e.IsBroadcaster {
			budget = gm.cfg.Snake.PremiumRespawnTimes
		}
		gm.players[e.ID] = &Player{
			ID:            e.ID,
			User:          e.User,
			SnakeType:     e.SnakeType,
			IsBroadcaster: e.IsBroadcaster,
			State:         models.StateInvincible,
			RespawnTimes:  budget,
			Touch:         models.TouchNoPoint,
			Prevent:       models.PreventNone,
		}
		gm.order = append(gm.order, e.ID)
	}
}

func (gm *Manager) clearPlayers() {
	for _, id := range gm.order {
		gm.sched.CancelOwner(playerOwner(id))
		gm.sched.CancelOwner(snakeOwner(id))
	}
	gm.order = nil
	gm.players = make(map[string]*Player)
	gm.respawnedAt = make(map[string]uint64)
}

// each calls fn for every player in lottery order.
func (gm *Manager) each(fn func(p *Player)) {
	for _, id := range gm.order {
		if p, ok := gm.players[id]; ok {
			fn(p)
		}
	}
}

func (gm *Manager) countPlayers(c models.Capability) int {
	n := 0
	gm.each(func(p *Player) {
		if p.can(c) {
			n++
		}
	})
	return n
}

// populationTier maps the number of counted players to a field tier.
// Fewer players give a higher tier and a smaller field.
func populationTier(counted int) int {
	switch {
	case counted <= 10:
		return 4
	case counted <= 30:
		return 3
	case counted <= 50:
		return 2
	case counted <= 70:
		return 1
	default:
		return 0
	}
}

func (gm *Manager) currentTier() int {
	if gm.cfg.Debug.ForcedTier >= 0 {
		return gm.cfg.Debug.ForcedTier
	}
	return populationTier(gm.countPlayers(models.CanCount))
}
