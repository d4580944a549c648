package game

import (
	"hash/fnv"
	"math"

	"snake-arena/constants"
	"snake-arena/lottery"
	"snake-arena/models"
	"snake-arena/sim"
)

func idHash(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

func newLotteryRand(seed int64) *sim.Rand {
	return sim.NewRand(seed)
}

// lotterySeed derives the draw seed from the broadcaster and the applicant
// set. The sum does not depend on arrival order.
func (a *authoritative) lotterySeed() int64 {
	if a.gm.cfg.Debug.SkipLottery {
		return constants.SKIP_LOTTERY_SEED
	}
	seed := idHash(a.broadcasterID)
	for i, ap := range a.applicants {
		seed += idHash(ap.ID) + uint64(i)
	}
	return int64(seed)
}

func (a *authoritative) rand() *sim.Rand {
	if a.lotteryRand == nil {
		a.lotteryRand = newLotteryRand(constants.SKIP_LOTTERY_SEED)
	}
	return a.lotteryRand
}

func (a *authoritative) snakeType() string {
	i := int(math.Floor(a.rand().Float64() * float64(len(constants.SNAKE_TYPES))))
	return string(constants.SNAKE_TYPES[i])
}

// drawPlayers returns the broadcaster followed by the lottery winners.
func (a *authoritative) drawPlayers() []models.PlayerEntry {
	cfg := a.gm.cfg
	k := len(a.applicants)
	if k > cfg.NumPlayers {
		k = cfg.NumPlayers
	}
	winners := lottery.Weighted(a.applicants, k, cfg.PremiumWeight, a.rand(), func(u models.AccountData) bool {
		return u.IsPremium
	})

	list := make([]models.PlayerEntry, 0, len(winners)+1)
	list = append(list, models.PlayerEntry{
		ID:            a.broadcasterID,
		User:          a.broadcaster,
		SnakeType:     a.snakeType(),
		IsBroadcaster: true,
	})
	for i, w := range winners {
		if name := debugName(cfg.Debug.PlayerNames, i); name != "" {
			w.Name = name
		}
		list = append(list, models.PlayerEntry{
			ID:        w.ID,
			User:      w,
			SnakeType: a.snakeType(),
		})
	}
	return list
}

func debugName(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return ""
}

// initialLayout places every player uniformly in the spawn square.
func (a *authoritative) initialLayout() []models.PlayerLayout {
	gm := a.gm
	rng := a.rand()
	side := gm.spawnSquareSide(gm.currentTier())
	f := gm.cfg.Input.RadianFineness

	var out []models.PlayerLayout
	gm.each(func(p *Player) {
		dir := rng.Range(0, f-1)
		pos := randomInSquare(rng, side)
		out = append(out, models.PlayerLayout{
			PlayerID:  p.ID,
			Position:  pos,
			State:     models.TouchNoPoint,
			Direction: dir,
			Name:      p.User.Name,
		})
	})
	return out
}
