// Package game is the session orchestrator. Every instance runs one Manager
// and feeds it the relay's frames; all instances reach the same state because
// they apply the same events in the same order with the same seeded RNG. The
// active instance additionally runs the authoritative checks and publishes
// their outcomes.
package game

import (
	"context"
	"log"
	"sync"

	"snake-arena/broadcast"
	"snake-arena/config"
	"snake-arena/models"
	"snake-arena/physics"
	"snake-arena/protocol"
	"snake-arena/sim"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRecruiting Phase = "recruiting"
	PhaseLottery    Phase = "lottery"
	PhaseMainGame   Phase = "mainGame"
	PhaseResult     Phase = "result"
)

// Scheduler owners.
const (
	ownerSession = "session"
	ownerGame    = "game"
	ownerFood    = "food"
)

func playerOwner(id string) string { return "player:" + id }
func snakeOwner(id string) string  { return "snake:" + id }

// ResultSink receives the result log once a session ends.
type ResultSink interface {
	Submit(ctx context.Context, log models.ResultLog) error
}

type Options struct {
	Session   config.Session
	SelfID    string
	SessionID string
	Active    bool
	Seed      int64
	Publisher broadcast.Publisher
	Results   ResultSink
}

type Manager struct {
	Mutex sync.Mutex

	cfg       config.Session
	selfID    string
	sessionID string
	pub       broadcast.Publisher
	results   ResultSink
	ctx       *sim.Context
	sched     *sim.Scheduler
	sizes     physics.Sizes
	params    physics.SnakeParams

	anyTable  protocol.Handler
	auth      *authoritative
	lastAge   uint64
	started   bool
	onPublish func(protocol.Message)

	phase         Phase
	broadcasterID string
	broadcaster   models.AccountData
	recruitStart  uint64

	order      []string
	players    map[string]*Player
	numPlayers int

	field        *physics.Field
	foods        []*physics.Food
	waitingFoods []*physics.Food
	jewel        *physics.Jewel
	jewelOwner   string
	respawnedAt  map[string]uint64

	ranking     []models.RankedCount
	remainTime  int
	gameOver    bool
	countDown   models.CountDownType
	result      *Result
	shown       models.RankingType
	scrollSpeed map[models.RankingType]models.ScrollSpeed

	input *Input
}

func NewManager(opts Options) *Manager {
	cfg := opts.Session
	gm := &Manager{
		cfg:       cfg,
		selfID:    opts.SelfID,
		sessionID: opts.SessionID,
		pub:       opts.Publisher,
		results:   opts.Results,
		ctx:       sim.NewContext(cfg.FPS, opts.Seed),
		sched:     sim.NewScheduler(cfg.FPS),
		sizes: physics.Sizes{
			Head:  cfg.Widths.Head,
			Knot:  cfg.Widths.Knot,
			Food:  cfg.Widths.Food,
			Jewel: cfg.Widths.Jewel,
		},
		params: physics.SnakeParams{
			BaseSpeed:     cfg.Snake.BaseSpeed,
			MaxSpeedScale: cfg.Snake.MaxSpeedScale,
			MaxKnots:      cfg.Snake.MaxKnotLength,
		},
		phase:       PhaseIdle,
		players:     make(map[string]*Player),
		respawnedAt: make(map[string]uint64),
		shown:       models.RankingLength,
		scrollSpeed: map[models.RankingType]models.ScrollSpeed{
			models.RankingLength: models.ScrollNormal,
			models.RankingKill:   models.ScrollNormal,
		},
	}
	gm.anyTable = anyInstance{gm: gm}
	if opts.Active {
		gm.auth = newAuthoritative(gm)
	}
	gm.input = newInput(gm)
	return gm
}

// ApplyFrame advances the session to the frame's age. Stale frames are
// dropped and missing ages are stepped as empty ticks.
func (gm *Manager) ApplyFrame(f protocol.Frame) {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()

	if gm.started && f.Age <= gm.lastAge {
		return
	}
	if gm.started {
		for age := gm.lastAge + 1; age < f.Age; age++ {
			gm.step(age, nil)
		}
	}
	gm.step(f.Age, f.Events)
	gm.started = true
}

func (gm *Manager) step(age uint64, events []protocol.Event) {
	gm.ctx.Tick = age
	for _, ev := range events {
		msg, err := protocol.Decode(ev.Envelope)
		if err != nil {
			log.Printf("Skipping event %d from %s: %v", ev.Seq, ev.From, err)
			continue
		}
		msg.Dispatch(ev.From, gm.anyTable)
		if gm.auth != nil {
			msg.Dispatch(ev.From, gm.auth)
		}
	}

	gm.sched.Advance(age)

	if gm.phase == PhaseMainGame && gm.field != nil {
		gm.simulate()
		if gm.auth != nil {
			gm.auth.check()
		}
	}
	gm.lastAge = age
	gm.input.tick()
}

func (gm *Manager) publish(m protocol.Message) {
	if gm.onPublish != nil {
		gm.onPublish(m)
	}
	if gm.pub == nil {
		return
	}
	if err := gm.pub.Publish(m); err != nil {
		log.Printf("Failed to publish %s: %v", m.Tag(), err)
	}
}

// Run feeds frames into the manager until ctx is done or frames is closed.
// afterFrame, when set, is called after every applied frame.
func (gm *Manager) Run(ctx context.Context, frames <-chan protocol.Frame, afterFrame func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			gm.ApplyFrame(f)
			if afterFrame != nil {
				afterFrame()
			}
		}
	}
}

func (gm *Manager) SelfID() string          { return gm.selfID }
func (gm *Manager) Authoritative() bool     { return gm.auth != nil }
func (gm *Manager) Input() *Input           { return gm.input }
func (gm *Manager) Session() config.Session { return gm.cfg }

func (gm *Manager) Phase() Phase {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return gm.phase
}

func (gm *Manager) Age() uint64 {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return gm.lastAge
}

func (gm *Manager) BroadcasterID() string {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return gm.broadcasterID
}

func (gm *Manager) GameOver() bool {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return gm.gameOver
}

func (gm *Manager) RemainTime() int {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return gm.remainTime
}

func (gm *Manager) Ranking() []models.RankedCount {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return append([]models.RankedCount(nil), gm.ranking...)
}

func (gm *Manager) ShownRanking() models.RankingType {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return gm.shown
}

func (gm *Manager) ScrollSpeed(r models.RankingType) models.ScrollSpeed {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return gm.scrollSpeed[r]
}

// Result is nil until initResult has been applied.
func (gm *Manager) Result() *Result {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return gm.result
}

// PlayerIDs returns the participants in lottery order.
func (gm *Manager) PlayerIDs() []string {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return append([]string(nil), gm.order...)
}

// Player returns a copy of the player's public view.
func (gm *Manager) Player(id string) (PlayerView, bool) {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	p, ok := gm.players[id]
	if !ok {
		return PlayerView{}, false
	}
	return p.view(), true
}

func (gm *Manager) FieldRadius() float64 {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	if gm.field == nil {
		return 0
	}
	return gm.field.Radius()
}

func (gm *Manager) FoodCount() int {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return len(gm.foods)
}

// Jewel reports where the jewel is and who carries it, if anyone.
func (gm *Manager) Jewel() (models.Vec, string) {
	gm.Mutex.Lock()
	defer gm.Mutex.Unlock()
	return gm.jewelPos(), gm.jewelOwner
}

func (gm *Manager) jewelPos() models.Vec {
	if gm.jewelOwner != "" {
		if p, ok := gm.players[gm.jewelOwner]; ok && p.Snake != nil {
			if pos, ok := p.Snake.JewelPos(); ok {
				return pos
			}
		}
	}
	if gm.jewel != nil {
		return gm.jewel.Pos
	}
	return models.Vec{}
}
