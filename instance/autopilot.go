package instance

import (
	"log"
	"math"

	"snake-arena/game"
	"snake-arena/models"
	"snake-arena/sim"
)

// steerRadius is how far from the screen center the autopilot presses.
const steerRadius = 100

// Autopilot plays one instance without a human. The broadcaster opens
// recruitment and pages the result; other players join and wander.
type Autopilot struct {
	gm          *game.Manager
	user        models.AccountData
	broadcaster bool
	rng         *sim.Rand

	phase      game.Phase
	joined     bool
	nextAction uint64
}

// NewAutopilot builds a pilot with its own random stream. A zero seed picks
// a random one.
func NewAutopilot(gm *game.Manager, user models.AccountData, broadcaster bool, seed int64) *Autopilot {
	if seed == 0 {
		s, err := sim.NewSeed()
		if err != nil {
			log.Printf("Autopilot falls back to a fixed seed: %v", err)
			s = 1
		}
		seed = s
	}
	return &Autopilot{
		gm:          gm,
		user:        user,
		broadcaster: broadcaster,
		rng:         sim.NewRand(seed),
	}
}

// Step is called after every applied frame.
func (a *Autopilot) Step() {
	age := a.gm.Age()
	phase := a.gm.Phase()
	if phase != a.phase {
		a.phase = phase
		a.joined = false
		a.nextAction = age
	}
	if age < a.nextAction {
		return
	}
	fps := uint64(a.gm.Session().FPS)

	switch phase {
	case game.PhaseIdle:
		if a.broadcaster {
			a.gm.StartRecruitment(a.user)
			a.nextAction = age + 2*fps
		}
	case game.PhaseRecruiting:
		if !a.broadcaster && !a.joined && a.gm.RequestJoin(a.user) {
			a.joined = true
		}
	case game.PhaseMainGame:
		a.play(age, fps)
	case game.PhaseResult:
		if a.broadcaster {
			a.gm.ShowNextRanking()
			a.nextAction = age + 3*fps
		}
	}
}

func (a *Autopilot) play(age, fps uint64) {
	me, ok := a.gm.Player(a.user.ID)
	if !ok {
		return
	}
	if me.State == models.StateDead {
		a.gm.Input().RequestRespawn()
		a.nextAction = age + fps
		return
	}
	if !me.HasSnake {
		return
	}

	in := a.gm.Input()
	if radius := a.gm.FieldRadius(); radius > 0 && me.Head.Norm() > radius*0.7 {
		in.PointDown(me.Head.Scale(-steerRadius / me.Head.Norm()))
	} else {
		angle := a.rng.Float64() * 2 * math.Pi
		if a.rng.Range(0, 7) == 0 {
			in.PointUp()
		}
		in.PointDown(models.Vec{X: math.Cos(angle) * steerRadius, Y: math.Sin(angle) * steerRadius})
	}
	a.nextAction = age + uint64(a.rng.Range(int(fps/2), int(2*fps)))
}
